package deps

import (
	"time"

	"github.com/tryanzu/cart/core/config"
	"github.com/tryanzu/cart/modules/buckets"
)

func openMongoDB(container Deps) (*buckets.Mongo, error) {
	url, err := container.Config().String("store.mongo.url")
	if err != nil {
		return nil, err
	}

	timeout, err := config.LookupDuration(container.Config(), "store.mongo.timeout", 10*time.Second)
	if err != nil {
		return nil, err
	}

	database := container.Config().UString("store.mongo.database", "cart")
	collection := container.Config().UString("store.mongo.collection", "carts")

	// The url may carry credentials, keep it out of the log.
	bucket, err := buckets.DialMongo(url, database, collection, timeout)
	if err != nil {
		log.Errorf("Could not reach mongo store %s.%s: %v", database, collection, err)
		return nil, err
	}
	return bucket, nil
}
