package scheduler

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	. "github.com/smartystreets/goconvey/convey"

	"github.com/ridershield/ridershield/internal/domain/model"
)

// chanDispatcher runs timer events on the test goroutine's behalf.
type chanDispatcher struct {
	events chan model.Event
	full   bool
}

func (d *chanDispatcher) Enqueue(_ context.Context, e model.Event) error {
	if d.full {
		return errors.New("queue full")
	}
	d.events <- e
	return nil
}

func TestAfter(t *testing.T) {
	Convey("Given a scheduler feeding a dispatcher", t, func() {
		d := &chanDispatcher{events: make(chan model.Event, 4)}
		s := New(d)

		Convey("When a one-shot timer elapses", func() {
			var ran atomic.Int32
			s.After(10*time.Millisecond, func(context.Context) { ran.Add(1) })

			var ev model.Event
			select {
			case ev = <-d.events:
			case <-time.After(time.Second):
			}

			Convey("Then a timer event is queued instead of running directly", func() {
				So(ev.Kind, ShouldEqual, model.EventTimer)
				So(ran.Load(), ShouldEqual, 0)
				ev.Timer(context.Background())
				So(ran.Load(), ShouldEqual, 1)
			})
		})

		Convey("When a one-shot timer is stopped first", func() {
			tm := s.After(20*time.Millisecond, func(context.Context) {})
			first := tm.Stop()
			second := tm.Stop()
			time.Sleep(50 * time.Millisecond)

			Convey("Then nothing is queued", func() {
				So(first, ShouldBeTrue)
				So(second, ShouldBeFalse)
				So(d.events, ShouldBeEmpty)
			})
		})

		Convey("When the queue is full", func() {
			d.full = true
			done := make(chan struct{})
			s.After(5*time.Millisecond, func(context.Context) { close(done) })

			Convey("Then the one-shot job runs inline", func() {
				select {
				case <-done:
					So(true, ShouldBeTrue)
				case <-time.After(time.Second):
					So("timer did not run", ShouldBeEmpty)
				}
			})
		})
	})
}

func TestEvery(t *testing.T) {
	Convey("Given a started scheduler without a dispatcher", t, func() {
		s := New(nil)
		s.Start()
		defer s.Stop()

		Convey("When a one second ticker runs", func() {
			ticks := make(chan struct{}, 8)
			tm := s.Every(time.Second, func(context.Context) { ticks <- struct{}{} })

			select {
			case <-ticks:
			case <-time.After(3 * time.Second):
			}
			tm.Stop()
			drained := len(ticks)
			time.Sleep(1200 * time.Millisecond)

			Convey("Then it fired and stops firing once stopped", func() {
				So(len(ticks), ShouldEqual, drained)
				So(tm.Stop(), ShouldBeFalse)
			})
		})
	})
}

func TestToFields(t *testing.T) {
	Convey("Given cron key/value pairs", t, func() {
		fields := toFields([]interface{}{"entry", 1, "next", "soon", "dangling"})

		Convey("Then complete pairs become fields", func() {
			So(fields, ShouldHaveLength, 2)
			So(fields[0].Key, ShouldEqual, "entry")
			So(fields[1].Value, ShouldEqual, "soon")
		})
	})
}
