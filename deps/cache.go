package deps

import (
	"context"
	"time"

	"github.com/tryanzu/cart/modules/buckets"
)

func openRedis(container Deps) (*buckets.Redis, error) {
	address, err := container.Config().String("store.redis.address")
	if err != nil {
		return nil, err
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return buckets.DialRedis(ctx, address, container.Config().UInt("store.redis.db", 0))
}
