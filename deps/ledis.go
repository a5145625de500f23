package deps

import (
	"github.com/tryanzu/cart/modules/buckets"
)

func openLedisDB(container Deps) (*buckets.Ledis, error) {
	path := container.Config().UString("store.ledis.path", "./var/ledis")
	return buckets.OpenLedis(path)
}
