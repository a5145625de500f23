package cart

import (
	"context"
	"errors"
	"math"
	"math/rand"
	"strconv"
	"sync"
	"testing"
	"time"

	. "github.com/smartystreets/goconvey/convey"
)

type memoryBucket struct {
	mu     sync.Mutex
	data   map[string][]byte
	sets   int
	getErr error
	setErr error
}

func newMemoryBucket() *memoryBucket {
	return &memoryBucket{data: map[string][]byte{}}
}

func (b *memoryBucket) Get(ctx context.Context, key string) ([]byte, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.getErr != nil {
		return nil, &StorageUnavailable{Op: "get", Key: key, Err: b.getErr}
	}
	return b.data[key], nil
}

func (b *memoryBucket) Set(ctx context.Context, key string, value []byte) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.sets++
	if b.setErr != nil {
		return &StorageUnavailable{Op: "set", Key: key, Err: b.setErr}
	}
	b.data[key] = append([]byte(nil), value...)
	return nil
}

func (b *memoryBucket) stored(key string) string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return string(b.data[key])
}

func (b *memoryBucket) writes() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.sets
}

// gatedBucket holds every Set until the test releases it.
type gatedBucket struct {
	*memoryBucket
	started chan string
	release chan struct{}
}

func (b *gatedBucket) Set(ctx context.Context, key string, value []byte) error {
	b.started <- string(value)
	<-b.release
	return b.memoryBucket.Set(ctx, key, value)
}

var product = Candidate{ID: "1", Title: "A", ImageURL: "u", Price: 10}

func isClosed(ch <-chan struct{}) bool {
	select {
	case <-ch:
		return true
	default:
		return false
	}
}

func flushed(c *Cart) {
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	So(c.Flush(ctx), ShouldBeNil)
}

func TestCartMutations(t *testing.T) {
	Convey("Given an empty cart", t, func() {
		bucket := newMemoryBucket()
		c := Boot(context.Background(), bucket)

		So(c.IsEmpty(), ShouldBeTrue)
		So(c.Key(), ShouldEqual, "@GoMarketpace:cart")

		Convey("Walking through add, add, increment and three decrements", func() {
			c.Add(product)
			So(c.Items(), ShouldResemble, Snapshot{{ID: "1", Title: "A", ImageURL: "u", Price: 10, Quantity: 1}})

			c.Add(product)
			item, _ := c.Find("1")
			So(c.Len(), ShouldEqual, 1)
			So(item.Quantity, ShouldEqual, 2)

			c.Increment("1")
			item, _ = c.Find("1")
			So(item.Quantity, ShouldEqual, 3)

			c.Decrement("1")
			c.Decrement("1")
			c.Decrement("1")
			So(c.Items(), ShouldBeEmpty)

			flushed(c)
			So(bucket.stored(c.Key()), ShouldEqual, "[]")
		})

		Convey("Adding the same id twice keeps the latest metadata", func() {
			c.Add(product)
			c.Add(Candidate{ID: "1", Title: "B", ImageURL: "v", Price: 12.5})

			So(c.Items(), ShouldResemble, Snapshot{{ID: "1", Title: "B", ImageURL: "v", Price: 12.5, Quantity: 2}})
		})

		Convey("Existing items keep their position", func() {
			c.Add(Candidate{ID: "a"})
			c.Add(Candidate{ID: "b"})
			c.Add(Candidate{ID: "c"})
			c.Add(Candidate{ID: "a", Title: "again"})
			c.Increment("b")

			items := c.Items()
			So(len(items), ShouldEqual, 3)
			So(items[0].ID, ShouldEqual, "a")
			So(items[0].Title, ShouldEqual, "again")
			So(items[1].ID, ShouldEqual, "b")
			So(items[1].Quantity, ShouldEqual, 2)
			So(items[2].ID, ShouldEqual, "c")
			So(c.Count(), ShouldEqual, 5)
		})

		Convey("Decrementing a single unit removes the item", func() {
			c.Add(Candidate{ID: "a"})
			c.Add(Candidate{ID: "b"})
			c.Decrement("a")

			_, found := c.Find("a")
			So(found, ShouldBeFalse)
			So(c.Len(), ShouldEqual, 1)
		})

		Convey("Unknown ids are a no-op without a write", func() {
			c.Add(product)
			flushed(c)
			before := c.Items()
			writes := bucket.writes()

			inc := c.Increment("missing")
			dec := c.Decrement("missing")

			So(c.Items(), ShouldResemble, before)
			So(inc.Err(), ShouldBeNil)
			So(dec.Err(), ShouldBeNil)
			So(isClosed(inc.Done()), ShouldBeTrue)
			So(isClosed(dec.Done()), ShouldBeTrue)
			flushed(c)
			So(bucket.writes(), ShouldEqual, writes)
		})

		Convey("A non-finite price is stored as null and never blocks later writes", func() {
			c.Add(Candidate{ID: "good", Price: 1})
			c.Add(Candidate{ID: "bad", Price: math.Inf(1)})
			So(c.Increment("good").Wait(context.Background()), ShouldBeNil)

			So(bucket.stored(c.Key()), ShouldEqual,
				`[{"id":"good","title":"","image_url":"","price":1,"quantity":2},{"id":"bad","title":"","image_url":"","price":null,"quantity":1}]`)

			restored := Boot(context.Background(), bucket)
			item, _ := restored.Find("bad")
			So(item.Price, ShouldEqual, 0)
		})

		Convey("Every mutation writes the whole list through", func() {
			w := c.Add(product)
			So(w.Wait(context.Background()), ShouldBeNil)
			So(bucket.stored(c.Key()), ShouldEqual, `[{"id":"1","title":"A","image_url":"u","price":10,"quantity":1}]`)
		})
	})
}

func TestCartInvariants(t *testing.T) {
	Convey("Random mutation sequences keep ids unique and quantities positive", t, func() {
		rnd := rand.New(rand.NewSource(42))
		c := New(newMemoryBucket())

		for i := 0; i < 2000; i++ {
			id := strconv.Itoa(rnd.Intn(6))
			switch rnd.Intn(3) {
			case 0:
				c.Add(Candidate{ID: id, Title: "t" + id})
			case 1:
				c.Increment(id)
			case 2:
				c.Decrement(id)
			}

			seen := map[string]bool{}
			for _, item := range c.Items() {
				So(seen[item.ID], ShouldBeFalse)
				So(item.Quantity, ShouldBeGreaterThanOrEqualTo, 1)
				seen[item.ID] = true
			}
		}
		flushed(c)
	})
}

func TestCartRestore(t *testing.T) {
	Convey("Given a bucket shared across restarts", t, func() {
		bucket := newMemoryBucket()
		ctx := context.Background()

		Convey("A restarted cart holds the last persisted snapshot", func() {
			first := Boot(ctx, bucket, WithNamespace("@shop"))
			first.Add(product)
			first.Add(Candidate{ID: "2", Title: "B", ImageURL: "w", Price: 3.25})
			first.Increment("2")
			first.Decrement("1")
			first.Add(Candidate{ID: "3", Title: "C"})
			flushed(first)

			second := Boot(ctx, bucket, WithNamespace("@shop"))
			So(second.Key(), ShouldEqual, "@shop:cart")
			So(second.Items(), ShouldResemble, first.Items())
		})

		Convey("Absent values start empty", func() {
			c := Boot(ctx, bucket)
			So(c.IsEmpty(), ShouldBeTrue)
		})

		Convey("Malformed values start empty", func() {
			for _, raw := range []string{
				"{not json",
				`{"id":"1"}`,
				`[{"id":"1","quantity":0}]`,
				`[{"id":"1","quantity":1},{"id":"1","quantity":2}]`,
			} {
				bucket.data[StorageKey("")] = []byte(raw)
				c := Boot(ctx, bucket)
				So(c.IsEmpty(), ShouldBeTrue)
			}
		})

		Convey("Unreachable storage starts empty and stays usable", func() {
			bucket.getErr = errors.New("disk gone")
			c := Boot(ctx, bucket)
			So(c.IsEmpty(), ShouldBeTrue)

			c.Add(product)
			So(c.Len(), ShouldEqual, 1)
			flushed(c)
		})

		Convey("Restore only runs once", func() {
			bucket.data[StorageKey("")] = []byte(`[{"id":"1","title":"A","image_url":"u","price":10,"quantity":4}]`)
			c := New(bucket)
			var published []Snapshot
			c.Subscribe(func(s Snapshot) { published = append(published, s) })

			c.Restore(ctx)
			c.Decrement("1")
			c.Restore(ctx)

			item, _ := c.Find("1")
			So(item.Quantity, ShouldEqual, 3)
			So(len(published), ShouldEqual, 2)
			So(published[0][0].Quantity, ShouldEqual, 4)
			flushed(c)
		})
	})
}

func TestCartPersistence(t *testing.T) {
	Convey("Given a bucket that blocks every write", t, func() {
		bucket := &gatedBucket{
			memoryBucket: newMemoryBucket(),
			started:      make(chan string, 4),
			release:      make(chan struct{}),
		}
		c := New(bucket)

		Convey("Writes land one after another in call order", func() {
			first := c.Add(Candidate{ID: "a"})
			second := c.Add(Candidate{ID: "b"})

			So(c.Len(), ShouldEqual, 2)
			So(<-bucket.started, ShouldEqual, `[{"id":"a","title":"","image_url":"","price":0,"quantity":1}]`)

			select {
			case <-bucket.started:
				t.Fatal("second write started before the first finished")
			case <-time.After(20 * time.Millisecond):
			}

			bucket.release <- struct{}{}
			So(first.Wait(context.Background()), ShouldBeNil)
			So(second.Err(), ShouldBeNil)

			<-bucket.started
			bucket.release <- struct{}{}
			So(second.Wait(context.Background()), ShouldBeNil)

			restored := Boot(context.Background(), bucket.memoryBucket)
			So(restored.Items(), ShouldResemble, c.Items())
		})

		Convey("Flush honours its context", func() {
			c.Add(Candidate{ID: "a"})
			<-bucket.started

			ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
			defer cancel()
			So(c.Flush(ctx), ShouldEqual, context.DeadlineExceeded)

			bucket.release <- struct{}{}
			flushed(c)
		})
	})

	Convey("Given a bucket that rejects writes", t, func() {
		bucket := newMemoryBucket()
		bucket.setErr = errors.New("read-only")

		var (
			mu       sync.Mutex
			failures []Snapshot
			observed []error
		)
		c := New(bucket,
			OnPersistError(func(err error, s Snapshot) {
				mu.Lock()
				defer mu.Unlock()
				failures = append(failures, s)
			}),
			OnPersisted(func(id string, took time.Duration, err error) {
				mu.Lock()
				defer mu.Unlock()
				observed = append(observed, err)
			}),
		)

		Convey("The cart keeps the mutation and reports the failure", func() {
			w := c.Add(product)
			So(c.Len(), ShouldEqual, 1)

			err := w.Wait(context.Background())
			var unavailable *StorageUnavailable
			So(errors.As(err, &unavailable), ShouldBeTrue)
			So(unavailable.Op, ShouldEqual, "set")
			So(w.Err(), ShouldEqual, err)
			So(w.ID(), ShouldNotBeEmpty)

			mu.Lock()
			defer mu.Unlock()
			So(len(failures), ShouldEqual, 1)
			So(failures[0], ShouldResemble, w.Snapshot())
			So(observed, ShouldHaveLength, 1)
			So(observed[0], ShouldEqual, err)
		})
	})

	Convey("Given a write timeout", t, func() {
		c := New(slowBucket{}, WithWriteTimeout(5*time.Millisecond))

		Convey("Writes that outlive it fail", func() {
			w := c.Add(product)
			So(w.Wait(context.Background()), ShouldEqual, context.DeadlineExceeded)
		})
	})
}

// slowBucket never answers a write before its context expires.
type slowBucket struct{}

func (slowBucket) Get(ctx context.Context, key string) ([]byte, error) {
	return nil, nil
}

func (slowBucket) Set(ctx context.Context, key string, value []byte) error {
	<-ctx.Done()
	return ctx.Err()
}

func TestCartSubscribers(t *testing.T) {
	Convey("Subscribers see snapshots in mutation order", t, func() {
		c := New(newMemoryBucket())
		var seen []int
		cancel := c.Subscribe(func(s Snapshot) {
			seen = append(seen, s.Count())
			So(c.Items(), ShouldResemble, s)
		})

		c.Add(product)
		c.Increment("1")
		c.Increment("missing")
		c.Decrement("1")
		So(seen, ShouldResemble, []int{1, 2, 1})

		Convey("Published snapshots are copies", func() {
			var got Snapshot
			c.Subscribe(func(s Snapshot) { got = s })
			c.Increment("1")
			got[0].Quantity = 99

			item, _ := c.Find("1")
			So(item.Quantity, ShouldEqual, 2)
		})

		Convey("A subscriber may mutate the cart without hanging it", func() {
			var counts []int
			c.Subscribe(func(s Snapshot) {
				counts = append(counts, s.Count())
				if _, found := s.Find("2"); !found {
					c.Add(Candidate{ID: "2"})
				}
			})

			c.Increment("1")
			So(counts, ShouldResemble, []int{2, 3})
			So(seen, ShouldResemble, []int{1, 2, 1, 2, 3})
			So(c.Count(), ShouldEqual, 3)
		})

		Convey("A panicking subscriber does not stop later deliveries", func() {
			c.Subscribe(func(s Snapshot) {
				if s.Count() == 2 {
					panic("boom")
				}
			})

			So(func() { c.Increment("1") }, ShouldPanic)
			c.Decrement("1")
			So(seen, ShouldResemble, []int{1, 2, 1, 2, 1})
		})

		Convey("Cancelled subscribers stop receiving", func() {
			cancel()
			c.Increment("1")
			So(seen, ShouldResemble, []int{1, 2, 1})
		})

		flushed(c)
	})
}

func TestProvider(t *testing.T) {
	Convey("Given a provider", t, func() {
		var p Provider

		Convey("Using it before wiring fails loudly", func() {
			_, err := p.Use()
			var notInitialized *NotInitialized
			So(errors.As(err, &notInitialized), ShouldBeTrue)
			So(func() { p.MustUse() }, ShouldPanicWith, ErrNotInitialized)
		})

		Convey("A nil provider is not initialized either", func() {
			var missing *Provider
			_, err := missing.Use()
			So(err, ShouldEqual, ErrNotInitialized)
		})

		Convey("It hands out a single cart", func() {
			c := New(newMemoryBucket())
			So(p.Provide(c), ShouldBeNil)
			So(p.Provide(c), ShouldBeNil)
			So(p.Provide(New(newMemoryBucket())), ShouldEqual, ErrAlreadyProvided)
			So(p.MustUse(), ShouldPointTo, c)
		})
	})
}

func TestCodec(t *testing.T) {
	var tests = []struct {
		in  Snapshot
		out string
	}{
		{nil, "[]"},
		{Snapshot{}, "[]"},
		{Snapshot{{ID: "x", Title: "T", ImageURL: "http://i", Price: 1.5, Quantity: 2}}, `[{"id":"x","title":"T","image_url":"http://i","price":1.5,"quantity":2}]`},
		{Snapshot{{ID: "x", Price: math.Inf(1), Quantity: 1}}, `[{"id":"x","title":"","image_url":"","price":null,"quantity":1}]`},
		{Snapshot{{ID: "x", Price: math.NaN(), Quantity: 1}}, `[{"id":"x","title":"","image_url":"","price":null,"quantity":1}]`},
	}

	for _, test := range tests {
		data, err := Encode(test.in)
		if err != nil {
			t.Fatal(err)
		}
		if string(data) != test.out {
			t.Errorf("%v: %q != %q", test.in, data, test.out)
		}
		back, err := Decode("k", data)
		if err != nil {
			t.Fatal(err)
		}
		if len(back) != len(test.in) {
			t.Errorf("%q decoded to %d items", data, len(back))
		}
	}
}
