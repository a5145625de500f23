package cart

import (
	"sync"
)

// Provider hands the process wide cart to its consumers. Modules receive the
// Provider through injection and ask for the cart when they need it.
type Provider struct {
	mu   sync.RWMutex
	cart *Cart
}

// Provide wires c. Providing the same cart twice is harmless, a different one
// is rejected.
func (p *Provider) Provide(c *Cart) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.cart != nil && p.cart != c {
		return ErrAlreadyProvided
	}
	p.cart = c
	return nil
}

// Use returns the wired cart or ErrNotInitialized.
func (p *Provider) Use() (*Cart, error) {
	if p == nil {
		return nil, ErrNotInitialized
	}

	p.mu.RLock()
	defer p.mu.RUnlock()

	if p.cart == nil {
		return nil, ErrNotInitialized
	}
	return p.cart, nil
}

// MustUse panics with ErrNotInitialized when no cart was wired.
func (p *Provider) MustUse() *Cart {
	c, err := p.Use()
	if err != nil {
		panic(err)
	}
	return c
}
