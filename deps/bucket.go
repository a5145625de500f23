package deps

import (
	"fmt"
	"io"

	"github.com/tryanzu/cart/modules/buckets"
	"github.com/tryanzu/cart/modules/cart"
)

// IgniteBucket opens the store named by store.driver.
func IgniteBucket(container Deps) (Deps, error) {
	var (
		bucket cart.Bucket
		err    error
	)

	driver := container.Config().UString("store.driver", "ledis")
	switch driver {
	case "ledis":
		bucket, err = openLedisDB(container)
	case "bunt":
		bucket, err = openBuntDB(container)
	case "redis":
		bucket, err = openRedis(container)
	case "mongo":
		bucket, err = openMongoDB(container)
	case "memory":
		bucket = buckets.NewMemory()
	default:
		err = fmt.Errorf("unknown store driver %q", driver)
	}
	if err != nil {
		return container, err
	}

	if closer, ok := bucket.(io.Closer); ok {
		container.closers = append(container.closers, closer)
	}

	log.Infof("Cart store driver: %s", driver)
	container.BucketProvider = bucket
	return container, nil
}
