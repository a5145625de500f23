package cart

import (
	"context"

	"github.com/satori/go.uuid"
)

// Write tracks the persistence of one mutation. Callers are free to drop it.
type Write struct {
	id       string
	snapshot Snapshot
	done     chan struct{}
	err      error
}

func newWrite(s Snapshot) *Write {
	return &Write{
		id:       uuid.NewV4().String(),
		snapshot: s,
		done:     make(chan struct{}),
	}
}

// completed builds a Write for mutations that had nothing to persist.
func completed(s Snapshot) *Write {
	w := newWrite(s)
	close(w.done)
	return w
}

func (w *Write) finish(err error) {
	w.err = err
	close(w.done)
}

// ID correlates the write with log lines and failure reports.
func (w *Write) ID() string {
	return w.id
}

// Snapshot being written.
func (w *Write) Snapshot() Snapshot {
	return w.snapshot.clone()
}

// Done is closed once the bucket acknowledged or rejected the write.
func (w *Write) Done() <-chan struct{} {
	return w.done
}

// Err is nil until Done is closed, then holds the bucket error if any.
func (w *Write) Err() error {
	select {
	case <-w.done:
		return w.err
	default:
		return nil
	}
}

// Wait blocks until the write finished or ctx expires.
func (w *Write) Wait(ctx context.Context) error {
	select {
	case <-w.done:
		return w.err
	case <-ctx.Done():
		return ctx.Err()
	}
}
