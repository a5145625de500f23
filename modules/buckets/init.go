// Package buckets holds the storage drivers a cart can be written through to.
package buckets

import (
	"github.com/op/go-logging"
	"github.com/tryanzu/cart/modules/cart"
)

var log = logging.MustGetLogger("buckets")

func unavailable(op, key string, err error) error {
	return &cart.StorageUnavailable{Op: op, Key: key, Err: err}
}
