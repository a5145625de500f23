package buckets

import (
	"context"

	"github.com/tidwall/buntdb"
)

// Bunt stores values in a buntdb file, or in memory for ":memory:".
type Bunt struct {
	db *buntdb.DB
}

func OpenBunt(path string) (*Bunt, error) {
	if path == "" {
		path = ":memory:"
	}

	db, err := buntdb.Open(path)
	if err != nil {
		return nil, err
	}

	log.Infof("Opened buntdb store at %s", path)
	return &Bunt{db: db}, nil
}

func (b *Bunt) Get(ctx context.Context, key string) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, unavailable("get", key, err)
	}

	var value []byte
	err := b.db.View(func(tx *buntdb.Tx) error {
		v, err := tx.Get(key)
		if err != nil {
			return err
		}
		value = []byte(v)
		return nil
	})

	switch err {
	case nil:
		return value, nil
	case buntdb.ErrNotFound:
		return nil, nil
	default:
		return nil, unavailable("get", key, err)
	}
}

func (b *Bunt) Set(ctx context.Context, key string, value []byte) error {
	if err := ctx.Err(); err != nil {
		return unavailable("set", key, err)
	}

	err := b.db.Update(func(tx *buntdb.Tx) error {
		_, _, err := tx.Set(key, string(value), nil)
		return err
	})
	if err != nil {
		return unavailable("set", key, err)
	}
	return nil
}

func (b *Bunt) Close() error {
	return b.db.Close()
}
