package buckets

import (
	"context"

	lediscfg "github.com/siddontang/ledisdb/config"
	"github.com/siddontang/ledisdb/ledis"
)

// Ledis stores values in an embedded ledisdb database.
type Ledis struct {
	conn *ledis.Ledis
	db   *ledis.DB
}

// OpenLedis opens (or creates) the database under dir and selects index 0.
func OpenLedis(dir string) (*Ledis, error) {
	conf := lediscfg.NewConfigDefault()
	if dir != "" {
		conf.DataDir = dir
	}

	conn, err := ledis.Open(conf)
	if err != nil {
		return nil, err
	}

	db, err := conn.Select(0)
	if err != nil {
		conn.Close()
		return nil, err
	}

	log.Infof("Opened ledis store at %s", conf.DataDir)
	return &Ledis{conn: conn, db: db}, nil
}

// NewLedis wraps an already selected database.
func NewLedis(db *ledis.DB) *Ledis {
	return &Ledis{db: db}
}

func (l *Ledis) Get(ctx context.Context, key string) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, unavailable("get", key, err)
	}

	// ledis answers nil, nil for missing keys.
	value, err := l.db.Get([]byte(key))
	if err != nil {
		return nil, unavailable("get", key, err)
	}
	return value, nil
}

func (l *Ledis) Set(ctx context.Context, key string, value []byte) error {
	if err := ctx.Err(); err != nil {
		return unavailable("set", key, err)
	}

	if err := l.db.Set([]byte(key), value); err != nil {
		return unavailable("set", key, err)
	}
	return nil
}

// Close releases the database when it was opened by OpenLedis.
func (l *Ledis) Close() error {
	if l.conn != nil {
		l.conn.Close()
	}
	return nil
}
