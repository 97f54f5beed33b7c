package notify

import (
	"context"
	"errors"
	"fmt"

	"github.com/ridershield/ridershield/internal/domain/model"
	"github.com/ridershield/ridershield/pkg/logger"
	"github.com/ridershield/ridershield/pkg/metrics"
)

// Announcer delivers an alert announcement.
type Announcer interface {
	Announce(ctx context.Context, p model.AlertPayload) error
}

// Dialer places a call to one contact.
type Dialer interface {
	Dial(ctx context.Context, c model.EmergencyContact) error
}

// Named attaches a metrics label to a sink.
type Named[T any] struct {
	Name string
	Sink T
}

// AnnounceFanout sends every announcement to all sinks, one after another.
// A failing sink does not stop the rest.
type AnnounceFanout struct {
	sinks []Named[Announcer]
	log   logger.Logger
}

// NewAnnounceFanout creates a fan-out over sinks.
func NewAnnounceFanout(l logger.Logger, sinks ...Named[Announcer]) *AnnounceFanout {
	if l == nil {
		l = logger.Nop()
	}
	return &AnnounceFanout{sinks: sinks, log: l}
}

// Announce delivers p to every sink and joins their errors.
func (f *AnnounceFanout) Announce(ctx context.Context, p model.AlertPayload) error {
	var errs []error
	for _, s := range f.sinks {
		if err := s.Sink.Announce(ctx, p); err != nil {
			metrics.RecordAnnouncement(s.Name, "error")
			metrics.RecordErrorByComponent("notify", s.Name)
			f.log.Warn(ctx, "announcement sink failed", logger.String("sink", s.Name), logger.Error(err))
			errs = append(errs, fmt.Errorf("%s: %w", s.Name, err))
			continue
		}
		metrics.RecordAnnouncement(s.Name, "ok")
	}
	return errors.Join(errs...)
}

// DialFanout sends every dial action to all sinks. The dial succeeds when any
// sink accepted it.
type DialFanout struct {
	sinks []Named[Dialer]
	log   logger.Logger
}

// NewDialFanout creates a fan-out over sinks.
func NewDialFanout(l logger.Logger, sinks ...Named[Dialer]) *DialFanout {
	if l == nil {
		l = logger.Nop()
	}
	return &DialFanout{sinks: sinks, log: l}
}

// Dial forwards c to every sink.
func (f *DialFanout) Dial(ctx context.Context, c model.EmergencyContact) error {
	var errs []error
	accepted := false
	for _, s := range f.sinks {
		if err := s.Sink.Dial(ctx, c); err != nil {
			f.log.Warn(ctx, "dial sink failed", logger.String("sink", s.Name), logger.Error(err))
			errs = append(errs, fmt.Errorf("%s: %w", s.Name, err))
			continue
		}
		accepted = true
	}
	if accepted {
		return nil
	}
	if len(errs) == 0 {
		return ErrNoSinks
	}
	return errors.Join(errs...)
}
