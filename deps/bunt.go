package deps

import (
	"github.com/tryanzu/cart/modules/buckets"
)

func openBuntDB(container Deps) (*buckets.Bunt, error) {
	path := container.Config().UString("store.bunt.path", ":memory:")
	return buckets.OpenBunt(path)
}
