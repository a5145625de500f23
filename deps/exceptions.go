package deps

import (
	"github.com/tryanzu/cart/modules/exceptions"
)

func IgniteExceptions(container Deps) (Deps, error) {
	module, err := exceptions.Boot(container.Config().UString("sentry.dsn", ""), container.Log())
	if err != nil {
		return container, err
	}

	container.ExceptionsProvider = module
	return container, nil
}
