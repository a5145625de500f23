package buckets

import (
	"context"

	"github.com/go-redis/redis/v8"
)

// Redis stores values as plain redis strings.
type Redis struct {
	client *redis.Client
}

// DialRedis connects to address and checks the server answers.
func DialRedis(ctx context.Context, address string, db int) (*Redis, error) {
	client := redis.NewClient(&redis.Options{
		Addr: address,
		DB:   db,
	})
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, err
	}

	log.Infof("Connected to redis store at %s/%d", address, db)
	return &Redis{client: client}, nil
}

func NewRedis(client *redis.Client) *Redis {
	return &Redis{client: client}
}

func (r *Redis) Get(ctx context.Context, key string) ([]byte, error) {
	value, err := r.client.Get(ctx, key).Bytes()
	switch {
	case err == redis.Nil:
		return nil, nil
	case err != nil:
		return nil, unavailable("get", key, err)
	}
	return value, nil
}

func (r *Redis) Set(ctx context.Context, key string, value []byte) error {
	if err := r.client.Set(ctx, key, value, 0).Err(); err != nil {
		return unavailable("set", key, err)
	}
	return nil
}

func (r *Redis) Close() error {
	return r.client.Close()
}
