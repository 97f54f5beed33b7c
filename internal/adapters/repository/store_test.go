package repository

import (
	"context"
	"errors"
	"fmt"
	"os"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	. "github.com/smartystreets/goconvey/convey"

	"github.com/ridershield/ridershield/internal/domain/model"
)

func episode(i int) model.EpisodeRecord {
	return model.EpisodeRecord{
		Episode:  fmt.Sprintf("ep-%d", i),
		Severity: model.SeverityHigh,
		Outcome:  model.OutcomeEscalated,
		ArmedAt:  time.Date(2026, 3, 1, 8, 0, i, 0, time.UTC),
		Dials:    []model.DialResult{{Name: "Wife", Phone: "+60123456789", Priority: 2}},
	}
}

func exerciseStore(ctx context.Context, s Store) {
	Convey("When it is empty", func() {
		out, err := s.Recent(ctx, 10)

		Convey("Then no records are returned", func() {
			So(err, ShouldBeNil)
			So(out, ShouldBeEmpty)
			n, _ := s.Count(ctx)
			So(n, ShouldEqual, 0)
		})
	})

	Convey("When more records are written than it retains", func() {
		for i := 1; i <= 5; i++ {
			So(s.Record(ctx, episode(i)), ShouldBeNil)
		}

		Convey("Then only the newest are kept, newest first", func() {
			out, err := s.Recent(ctx, 10)
			So(err, ShouldBeNil)
			So(out, ShouldHaveLength, 3)
			So(out[0].Episode, ShouldEqual, "ep-5")
			So(out[2].Episode, ShouldEqual, "ep-3")
			So(out[0].Dials[0].Name, ShouldEqual, "Wife")

			n, err := s.Count(ctx)
			So(err, ShouldBeNil)
			So(n, ShouldEqual, 3)
		})

		Convey("Then the limit is honoured", func() {
			out, _ := s.Recent(ctx, 2)
			So(out, ShouldHaveLength, 2)
			So(out[1].Episode, ShouldEqual, "ep-4")
		})
	})

	Convey("When asking for fewer than one record", func() {
		_, err := s.Recent(ctx, 0)

		Convey("Then ErrInvalidLimit is returned", func() {
			So(errors.Is(err, ErrInvalidLimit), ShouldBeTrue)
		})
	})
}

func TestMemoryStore(t *testing.T) {
	Convey("Given a memory store retaining 3 records", t, func() {
		ctx := context.Background()
		exerciseStore(ctx, Instrumented{Store: NewMemoryStore(WithCapacity(3))})
	})
}

// TestRedisStore runs against a live server when RIDERSHIELD_TEST_REDIS is set.
func TestRedisStore(t *testing.T) {
	addr := os.Getenv("RIDERSHIELD_TEST_REDIS")
	if addr == "" {
		t.Skip("RIDERSHIELD_TEST_REDIS not set")
	}

	Convey("Given a redis store retaining 3 records", t, func() {
		ctx := context.Background()
		client := redis.NewClient(&redis.Options{Addr: addr})
		key := fmt.Sprintf("ridershield:test:%d", time.Now().UnixNano())
		s := NewRedisStore(client, WithCapacity(3), WithKey(key))
		So(s.Ping(ctx), ShouldBeNil)
		defer client.Del(ctx, key)

		exerciseStore(ctx, s)
	})
}

func TestRedisStoreUnavailable(t *testing.T) {
	Convey("Given a redis store pointing at a closed port", t, func() {
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		client := redis.NewClient(&redis.Options{
			Addr:        "127.0.0.1:1",
			DialTimeout: 100 * time.Millisecond,
			MaxRetries:  -1,
		})
		defer client.Close()
		s := NewRedisStore(client)

		Convey("Then every call reports ErrUnavailable", func() {
			So(errors.Is(s.Ping(ctx), ErrUnavailable), ShouldBeTrue)
			So(errors.Is(s.Record(ctx, episode(1)), ErrUnavailable), ShouldBeTrue)
			_, err := s.Recent(ctx, 1)
			So(errors.Is(err, ErrUnavailable), ShouldBeTrue)
			_, err = s.Count(ctx)
			So(errors.Is(err, ErrUnavailable), ShouldBeTrue)
		})
	})
}
