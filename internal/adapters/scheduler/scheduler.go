// Package scheduler provides the countdown ticker and one-shot timers used by
// the escalation engine. Callbacks are not run on the timer goroutine; they
// are pushed onto the event queue so the dispatch loop runs them in order
// with telemetry and transcripts.
package scheduler

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/ridershield/ridershield/internal/domain/escalation"
	"github.com/ridershield/ridershield/internal/domain/model"
	"github.com/ridershield/ridershield/pkg/logger"
)

// Dispatcher accepts events for the dispatch loop.
type Dispatcher interface {
	Enqueue(ctx context.Context, e model.Event) error
}

// Scheduler runs repeating jobs on a cron instance and one-shot jobs on
// time.AfterFunc.
type Scheduler struct {
	cron     *cron.Cron
	loc      *time.Location
	dispatch Dispatcher
	ctx      context.Context
	log      logger.Logger

	mu      sync.Mutex
	started bool
}

// Option configures a Scheduler.
type Option func(*Scheduler)

// WithLogger sets the logger.
func WithLogger(l logger.Logger) Option {
	return func(s *Scheduler) {
		if l != nil {
			s.log = l
		}
	}
}

// WithLocation sets the cron time zone.
func WithLocation(loc *time.Location) Option {
	return func(s *Scheduler) {
		if loc != nil {
			s.loc = loc
		}
	}
}

// New creates a scheduler feeding d. A nil dispatcher runs callbacks inline.
func New(d Dispatcher, opts ...Option) *Scheduler {
	s := &Scheduler{
		dispatch: d,
		loc:      time.Local,
		ctx:      context.Background(),
		log:      logger.Nop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.cron = newCron(s.loc, s.log)
	return s
}

func newCron(loc *time.Location, l logger.Logger) *cron.Cron {
	cl := cronLogger{l: l}
	return cron.New(cron.WithLocation(loc), cron.WithLogger(cl), cron.WithChain(cron.Recover(cl)))
}

// Start begins running repeating jobs.
func (s *Scheduler) Start() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.started {
		s.cron.Start()
		s.started = true
	}
}

// Stop halts the cron loop and waits for running jobs.
func (s *Scheduler) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.started {
		<-s.cron.Stop().Done()
		s.started = false
	}
}

// Timer is a handle to a scheduled job.
type Timer struct {
	stopped atomic.Bool
	stop    func()
}

// Stop cancels the job. It reports whether the job was still active.
func (t *Timer) Stop() bool {
	if t.stopped.Swap(true) {
		return false
	}
	if t.stop != nil {
		t.stop()
	}
	return true
}

// Every schedules fn every d, rounded up to whole seconds.
func (s *Scheduler) Every(d time.Duration, fn func(ctx context.Context)) escalation.Timer {
	if d < time.Second {
		d = time.Second
	}
	t := &Timer{}
	id, err := s.cron.AddFunc(fmt.Sprintf("@every %s", d.Round(time.Second)), func() {
		s.fire(t, fn, false)
	})
	if err != nil {
		s.log.Error(s.ctx, "schedule repeating timer failed", logger.Error(err))
		t.stopped.Store(true)
		return t
	}
	t.stop = func() { s.cron.Remove(id) }
	return t
}

// After schedules fn once after d.
func (s *Scheduler) After(d time.Duration, fn func(ctx context.Context)) escalation.Timer {
	t := &Timer{}
	at := time.AfterFunc(d, func() { s.fire(t, fn, true) })
	t.stop = func() { at.Stop() }
	return t
}

// fire routes the callback through the dispatch loop. A full queue drops a
// repeating tick (the next one follows in a second) but runs a one-shot job
// inline so it is never lost.
func (s *Scheduler) fire(t *Timer, fn func(context.Context), oneShot bool) {
	if t.stopped.Load() {
		return
	}
	if oneShot {
		t.stopped.Store(true)
	}
	job := func(ctx context.Context) {
		if !oneShot && t.stopped.Load() {
			return
		}
		fn(ctx)
	}
	if s.dispatch == nil {
		job(s.ctx)
		return
	}
	if err := s.dispatch.Enqueue(s.ctx, model.Event{Kind: model.EventTimer, Timer: job}); err != nil {
		if oneShot {
			s.log.Warn(s.ctx, "timer enqueue failed, running inline", logger.Error(err))
			job(s.ctx)
			return
		}
		s.log.Warn(s.ctx, "tick dropped", logger.Error(err))
	}
}

// cronLogger adapts logger.Logger to cron.Logger.
type cronLogger struct {
	l logger.Logger
}

func (c cronLogger) Info(msg string, keysAndValues ...interface{}) {
	c.l.Debug(context.Background(), "cron: "+msg, toFields(keysAndValues)...)
}

func (c cronLogger) Error(err error, msg string, keysAndValues ...interface{}) {
	c.l.Error(context.Background(), "cron: "+msg, append(toFields(keysAndValues), logger.Error(err))...)
}

func toFields(kv []interface{}) []logger.Field {
	fields := make([]logger.Field, 0, len(kv)/2)
	for i := 0; i+1 < len(kv); i += 2 {
		fields = append(fields, logger.Any(fmt.Sprint(kv[i]), kv[i+1]))
	}
	return fields
}

var _ escalation.Scheduler = (*Scheduler)(nil)
