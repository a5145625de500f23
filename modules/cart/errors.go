package cart

import (
	"errors"
)

var (
	errQuantity    = errors.New("item quantity below one")
	errDuplicateID = errors.New("duplicated item id")
)

// StorageUnavailable is returned by buckets that could not reach their medium.
type StorageUnavailable struct {
	Op  string
	Key string
	Err error
}

func (e *StorageUnavailable) Error() string {
	return "storage unavailable: " + e.Op + " " + e.Key + ": " + e.Err.Error()
}

func (e *StorageUnavailable) Unwrap() error {
	return e.Err
}

// MalformedState means the persisted value could not be read back as a cart.
type MalformedState struct {
	Key string
	Err error
}

func (e *MalformedState) Error() string {
	return "malformed cart state under " + e.Key + ": " + e.Err.Error()
}

func (e *MalformedState) Unwrap() error {
	return e.Err
}

// NotInitialized is raised when the cart is used before a Provider was wired.
type NotInitialized struct{}

func (e *NotInitialized) Error() string {
	return "cart must be provided before it is used"
}

var (
	// ErrNotInitialized is the NotInitialized value Provider hands out.
	ErrNotInitialized error = &NotInitialized{}

	// ErrAlreadyProvided rejects wiring a second cart into a Provider.
	ErrAlreadyProvided = errors.New("a different cart was already provided")
)
