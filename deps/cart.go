package deps

import (
	"context"

	"github.com/tryanzu/cart/core/config"
	"github.com/tryanzu/cart/modules/cart"
)

// IgniteCart restores the process wide cart and wires it into its Provider.
func IgniteCart(container Deps) (Deps, error) {
	timeout, err := config.LookupDuration(container.Config(), "cart.write_timeout", 0)
	if err != nil {
		return container, err
	}

	opts := []cart.Option{
		cart.WithNamespace(container.Config().UString("cart.namespace", cart.DefaultNamespace)),
		cart.WithWriteTimeout(timeout),
	}
	if exceptions := container.Exceptions(); exceptions != nil {
		opts = append(opts,
			cart.OnPersistError(exceptions.PersistFailed),
			cart.OnPersisted(exceptions.Persisted),
		)
	}

	c := cart.New(container.Bucket(), opts...)
	if exceptions := container.Exceptions(); exceptions != nil {
		c.Subscribe(exceptions.Published)
	}
	c.Restore(context.Background())

	provider := container.Carts()
	if provider == nil {
		provider = &cart.Provider{}
	}
	if err := provider.Provide(c); err != nil {
		return container, err
	}

	container.CartProvider = provider
	return container, nil
}
