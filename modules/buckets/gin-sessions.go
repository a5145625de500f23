package buckets

import (
	"context"
	"fmt"

	"github.com/gin-gonic/contrib/sessions"
	"github.com/tryanzu/cart/modules/cart"
)

// Session keeps the cart inside a web session, one cart per visitor. It is
// not selectable through store.driver: a gin handler builds one per request
// from sessions.Default(c) and boots a cart over it.
type Session struct {
	Session sessions.Session
}

func (s Session) Get(ctx context.Context, key string) ([]byte, error) {
	switch data := s.Session.Get(key).(type) {
	case nil:
		return nil, nil
	case string:
		return []byte(data), nil
	case []byte:
		return data, nil
	default:
		return nil, &cart.MalformedState{Key: key, Err: fmt.Errorf("unexpected session value %T", data)}
	}
}

func (s Session) Set(ctx context.Context, key string, value []byte) error {
	s.Session.Set(key, string(value))
	if err := s.Session.Save(); err != nil {
		return unavailable("set", key, err)
	}
	return nil
}
