package deps

import (
	"io"

	"github.com/olebedev/config"
	"github.com/op/go-logging"
	"github.com/tryanzu/cart/modules/cart"
	"github.com/tryanzu/cart/modules/exceptions"
)

type Deps struct {
	ConfigFile         string
	ConfigProvider     *config.Config
	LoggerProvider     *logging.Logger
	BucketProvider     cart.Bucket
	ExceptionsProvider *exceptions.ExceptionsModule
	CartProvider       *cart.Provider

	// closers release what the ignitors opened, last opened first.
	closers []io.Closer
}

func (d Deps) Config() *config.Config {
	return d.ConfigProvider
}

func (d Deps) Log() *logging.Logger {
	return d.LoggerProvider
}

func (d Deps) Bucket() cart.Bucket {
	return d.BucketProvider
}

func (d Deps) Exceptions() *exceptions.ExceptionsModule {
	return d.ExceptionsProvider
}

func (d Deps) Carts() *cart.Provider {
	return d.CartProvider
}

// Close releases every resource opened while bootstrapping.
func (d Deps) Close() error {
	var first error
	for i := len(d.closers) - 1; i >= 0; i-- {
		if err := d.closers[i].Close(); err != nil && first == nil {
			first = err
		}
	}
	return first
}
