package cart

import (
	"context"
	"sync"
	"time"

	"github.com/op/go-logging"
)

var log = logging.MustGetLogger("cart")

// Option tweaks a Cart at construction.
type Option func(*Cart)

// WithNamespace sets the namespace of the storage key.
func WithNamespace(namespace string) Option {
	return func(c *Cart) {
		c.key = StorageKey(namespace)
	}
}

// WithWriteTimeout bounds every bucket write. Zero means no bound.
func WithWriteTimeout(d time.Duration) Option {
	return func(c *Cart) {
		c.timeout = d
	}
}

// OnPersistError is called with every write the bucket rejected.
func OnPersistError(fn func(err error, s Snapshot)) Option {
	return func(c *Cart) {
		c.onError = fn
	}
}

// OnPersisted is called after every write, successful or not.
func OnPersisted(fn func(id string, took time.Duration, err error)) Option {
	return func(c *Cart) {
		c.onPersisted = fn
	}
}

type subscriber struct {
	id int
	fn func(Snapshot)
}

// Cart keeps the line items in memory and writes every new snapshot through
// to its bucket under a single key.
type Cart struct {
	mu    sync.RWMutex
	items Snapshot
	tail  <-chan struct{}
	subs  []subscriber
	subID int

	// pending snapshots wait for delivery in mutation order. Only the
	// goroutine that set delivering drains them.
	pending    []Snapshot
	delivering bool

	restore sync.Once

	key         string
	storage     Bucket
	timeout     time.Duration
	onError     func(error, Snapshot)
	onPersisted func(string, time.Duration, error)
}

// New builds an empty cart. Restore must run before the cart reflects what
// the bucket holds.
func New(storage Bucket, opts ...Option) *Cart {
	idle := make(chan struct{})
	close(idle)

	c := &Cart{
		items:   Snapshot{},
		tail:    idle,
		key:     StorageKey(DefaultNamespace),
		storage: storage,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Boot builds a cart and restores the last persisted snapshot.
func Boot(ctx context.Context, storage Bucket, opts ...Option) *Cart {
	c := New(storage, opts...)
	c.Restore(ctx)
	return c
}

// Restore loads the persisted snapshot once. Unreachable storage and
// malformed values leave the cart empty.
func (c *Cart) Restore(ctx context.Context) {
	c.restore.Do(func() {
		items, err := c.load(ctx)
		if err != nil {
			log.Warningf("Starting with an empty cart: %v", err)
			return
		}
		if len(items) == 0 {
			return
		}

		c.mu.Lock()
		c.items = items
		drain := c.enqueue(items)
		c.mu.Unlock()

		log.Infof("Restored %d items from %s", len(items), c.key)
		if drain {
			c.deliver()
		}
	})
}

func (c *Cart) load(ctx context.Context) (Snapshot, error) {
	data, err := c.storage.Get(ctx, c.key)
	if err != nil {
		return nil, err
	}
	if data == nil {
		return Snapshot{}, nil
	}
	return Decode(c.key, data)
}

// Add puts one more unit of the candidate in the cart. An item already in
// the cart keeps its position and takes the candidate's metadata.
func (c *Cart) Add(candidate Candidate) *Write {
	return c.mutate(func(items Snapshot) (Snapshot, bool) {
		next := items.clone()
		if i := next.index(candidate.ID); i >= 0 {
			next[i] = candidate.withQuantity(next[i].Quantity + 1)
			return next, true
		}
		return append(next, candidate.withQuantity(1)), true
	})
}

// Increment the quantity of item id. Unknown ids leave the cart untouched.
func (c *Cart) Increment(id string) *Write {
	return c.mutate(func(items Snapshot) (Snapshot, bool) {
		i := items.index(id)
		if i < 0 {
			return items, false
		}
		next := items.clone()
		next[i].Quantity++
		return next, true
	})
}

// Decrement the quantity of item id, dropping it when it reaches zero.
// Unknown ids leave the cart untouched.
func (c *Cart) Decrement(id string) *Write {
	return c.mutate(func(items Snapshot) (Snapshot, bool) {
		if items.index(id) < 0 {
			return items, false
		}
		next := make(Snapshot, 0, len(items))
		for _, item := range items {
			if item.ID == id {
				item.Quantity--
			}
			if item.Quantity > 0 {
				next = append(next, item)
			}
		}
		return next, true
	})
}

// mutate publishes the next snapshot before returning and hands its
// persistence to a goroutine chained behind the previous write.
func (c *Cart) mutate(next func(Snapshot) (Snapshot, bool)) *Write {
	c.mu.Lock()
	items, changed := next(c.items)
	if !changed {
		c.mu.Unlock()
		return completed(items)
	}

	w := newWrite(items)
	prev := c.tail
	c.items = items
	c.tail = w.done
	drain := c.enqueue(items)
	c.mu.Unlock()

	go c.persist(prev, w)

	if drain {
		c.deliver()
	}
	return w
}

// enqueue queues s for the subscribers and reports whether the caller must
// drain the queue. c.mu must be held.
func (c *Cart) enqueue(s Snapshot) bool {
	c.pending = append(c.pending, s)
	if c.delivering {
		return false
	}
	c.delivering = true
	return true
}

// deliver hands queued snapshots to the subscribers until none is left.
// Snapshots published meanwhile, even from inside a subscriber, join the
// queue and are delivered after the current one.
func (c *Cart) deliver() {
	drained := false
	defer func() {
		// a panicking subscriber hands the queue to the next publisher
		if !drained {
			c.mu.Lock()
			c.delivering = false
			c.mu.Unlock()
		}
	}()

	for {
		c.mu.Lock()
		if len(c.pending) == 0 {
			c.delivering = false
			c.mu.Unlock()
			drained = true
			return
		}
		s := c.pending[0]
		c.pending = c.pending[1:]
		subs := c.subscribers()
		c.mu.Unlock()

		notify(subs, s)
	}
}

func (c *Cart) persist(prev <-chan struct{}, w *Write) {
	<-prev

	ctx := context.Background()
	if c.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}

	started := time.Now()
	data, err := Encode(w.snapshot)
	if err == nil {
		err = c.storage.Set(ctx, c.key, data)
	}
	took := time.Since(started)

	if err != nil {
		log.Errorf("Write %s of %s failed after %v: %v", w.id, c.key, took, err)
		if c.onError != nil {
			c.onError(err, w.snapshot.clone())
		}
	} else {
		log.Debugf("Write %s of %s stored %d items in %v", w.id, c.key, len(w.snapshot), took)
	}

	if c.onPersisted != nil {
		c.onPersisted(w.id, took, err)
	}
	w.finish(err)
}

// Subscribe calls fn with every snapshot published from now on, in the order
// mutations happened. fn runs on a mutating goroutine, one call at a time.
// A mutation made from fn returns before its own snapshot reaches the
// subscribers: it is delivered once fn returns.
func (c *Cart) Subscribe(fn func(Snapshot)) (cancel func()) {
	c.mu.Lock()
	c.subID++
	id := c.subID
	c.subs = append(c.subs, subscriber{id, fn})
	c.mu.Unlock()

	return func() {
		c.mu.Lock()
		defer c.mu.Unlock()
		for i, s := range c.subs {
			if s.id == id {
				c.subs = append(c.subs[:i:i], c.subs[i+1:]...)
				return
			}
		}
	}
}

func (c *Cart) subscribers() []subscriber {
	out := make([]subscriber, len(c.subs))
	copy(out, c.subs)
	return out
}

func notify(subs []subscriber, s Snapshot) {
	for _, sub := range subs {
		sub.fn(s.clone())
	}
}

// Flush waits for every write issued so far.
func (c *Cart) Flush(ctx context.Context) error {
	c.mu.RLock()
	tail := c.tail
	c.mu.RUnlock()

	select {
	case <-tail:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Items returns a copy of the current contents.
func (c *Cart) Items() Snapshot {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.items.clone()
}

// Find the item stored under id.
func (c *Cart) Find(id string) (LineItem, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.items.Find(id)
}

func (c *Cart) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.items)
}

// IsEmpty checks if no items in cart object.
func (c *Cart) IsEmpty() bool {
	return c.Len() == 0
}

// Count of units across every item.
func (c *Cart) Count() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.items.Count()
}

// Key the cart is persisted under.
func (c *Cart) Key() string {
	return c.key
}
