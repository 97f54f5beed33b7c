// Package worker runs the single dispatch loop that drains the event queue.
package worker

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/ridershield/ridershield/internal/domain/model"
	"github.com/ridershield/ridershield/pkg/logger"
	"github.com/ridershield/ridershield/pkg/metrics"
)

// Event abstracts what the worker reads off the queue.
type Event = model.Event

// Handler consumes stream events. Timer events carry their own callback.
type Handler interface {
	HandleTelemetry(ctx context.Context, s model.TelemetrySample) error
	HandleTranscript(ctx context.Context, text string) error
}

// Queue defines how the worker receives events.
type Queue interface {
	Dequeue(ctx context.Context) <-chan Event
}

// Worker processes events one at a time, in arrival order.
type Worker struct {
	queue   Queue
	handler Handler
	name    string

	shutdown     chan struct{}
	shutdownOnce sync.Once
	done         chan struct{}

	logger logger.Logger
}

// New creates a dispatch worker.
func New(q Queue, h Handler, opts ...Option) *Worker {
	w := &Worker{
		queue:    q,
		handler:  h,
		name:     "dispatch",
		shutdown: make(chan struct{}),
		done:     make(chan struct{}),
		logger:   logger.Nop(),
	}
	for _, opt := range opts {
		opt(w)
	}
	w.logger = w.logger.Named(w.name)
	return w
}

// Run starts the loop until ctx is cancelled, Shutdown is called or the
// queue is closed.
func (w *Worker) Run(ctx context.Context) {
	defer close(w.done)

	events := w.queue.Dequeue(ctx)
	for {
		select {
		case <-ctx.Done():
			return
		case <-w.shutdown:
			return
		case event, ok := <-events:
			if !ok {
				return
			}
			if err := w.process(ctx, event); err != nil {
				w.logger.Error(ctx, "error processing event",
					logger.String("kind", event.Kind.String()),
					logger.String("eventID", event.EventID),
					logger.Error(err))
			}
		}
	}
}

// Shutdown stops the loop and waits for the current event to finish.
func (w *Worker) Shutdown(ctx context.Context) error {
	w.shutdownOnce.Do(func() { close(w.shutdown) })

	select {
	case <-w.done:
		return nil
	case <-ctx.Done():
		w.logger.Warn(ctx, "shutdown timed out")
		return fmt.Errorf("shutdown timed out: %w", ctx.Err())
	}
}

func (w *Worker) process(ctx context.Context, e Event) error { //nolint:gocritic // hugeParam: mirrors queue value semantics
	start := time.Now()
	defer func() {
		metrics.RecordEventProcessingLatency(float64(time.Since(start).Microseconds()) / 1000)
	}()

	var err error
	switch e.Kind {
	case model.EventTelemetry:
		metrics.RecordTelemetrySample()
		err = w.handler.HandleTelemetry(ctx, e.Telemetry)
	case model.EventTranscript:
		err = w.handler.HandleTranscript(ctx, e.Transcript)
	case model.EventTimer:
		if e.Timer == nil {
			err = ErrNilTimer
			break
		}
		e.Timer(ctx)
	default:
		err = fmt.Errorf("%w: %d", ErrUnknownEvent, e.Kind)
	}

	if err != nil {
		metrics.RecordErrorByComponent("worker", e.Kind.String())
		return err
	}
	return nil
}
