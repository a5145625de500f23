package buckets

import (
	"context"
	"time"

	"gopkg.in/mgo.v2"
	"gopkg.in/mgo.v2/bson"
)

type mongoValue struct {
	Key   string `bson:"_id"`
	Value string `bson:"value"`
}

// Mongo stores each key as a {_id, value} document of one collection.
type Mongo struct {
	session    *mgo.Session
	database   string
	collection string
}

// DialMongo connects to url, giving up after timeout.
func DialMongo(url, database, collection string, timeout time.Duration) (*Mongo, error) {
	session, err := mgo.DialWithTimeout(url, timeout)
	if err != nil {
		return nil, err
	}

	log.Infof("Connected to mongo store %s.%s", database, collection)
	return NewMongo(session, database, collection), nil
}

func NewMongo(session *mgo.Session, database, collection string) *Mongo {
	if collection == "" {
		collection = "carts"
	}
	return &Mongo{session: session, database: database, collection: collection}
}

// Every operation runs on its own copy of the session.
func (m *Mongo) c() (*mgo.Session, *mgo.Collection) {
	session := m.session.Copy()
	return session, session.DB(m.database).C(m.collection)
}

func (m *Mongo) Get(ctx context.Context, key string) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, unavailable("get", key, err)
	}

	session, c := m.c()
	defer session.Close()

	var doc mongoValue
	err := c.FindId(key).One(&doc)
	switch {
	case err == mgo.ErrNotFound:
		return nil, nil
	case err != nil:
		return nil, unavailable("get", key, err)
	}
	return []byte(doc.Value), nil
}

func (m *Mongo) Set(ctx context.Context, key string, value []byte) error {
	if err := ctx.Err(); err != nil {
		return unavailable("set", key, err)
	}

	session, c := m.c()
	defer session.Close()

	_, err := c.UpsertId(key, bson.M{"$set": bson.M{"value": string(value)}})
	if err != nil {
		return unavailable("set", key, err)
	}
	return nil
}

func (m *Mongo) Close() error {
	m.session.Close()
	return nil
}
