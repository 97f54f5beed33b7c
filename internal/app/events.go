package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/ridershield/ridershield/internal/adapters/device"
	workerpool "github.com/ridershield/ridershield/internal/adapters/mq/worker"
	"github.com/ridershield/ridershield/internal/domain/model"
	"github.com/ridershield/ridershield/pkg/logger"
	"github.com/ridershield/ridershield/pkg/metrics"
)

var (
	_ device.Inbound     = (*Service)(nil)
	_ workerpool.Handler = (*Service)(nil)
)

// Submit pushes a stream event onto the dispatch queue. Events carrying an
// id already seen are reported as duplicates and dropped; a full queue
// returns ErrBackpressure and forgets the id so the sender can retry.
func (s *Service) Submit(ctx context.Context, e model.Event) (bool, error) { //nolint:gocritic // hugeParam: queued by value
	if e.EventID != "" && s.deduper.SeenAndRecord(ctx, e.EventID) {
		metrics.RecordEventDuplicate()
		s.logger.Debug(ctx, "duplicate event detected, skipping",
			logger.String("eventID", e.EventID),
			logger.String("kind", e.Kind.String()),
		)
		return true, nil
	}

	if err := s.eventQueue.Enqueue(ctx, e); err != nil {
		if e.EventID != "" {
			s.deduper.Unrecord(ctx, e.EventID)
		}
		return false, fmt.Errorf("%w: %w", ErrBackpressure, err)
	}
	return false, nil
}

// SubmitTelemetry queues a GPS sample.
func (s *Service) SubmitTelemetry(ctx context.Context, eventID string, sample model.TelemetrySample) error {
	_, err := s.Submit(ctx, model.Event{
		EventID:   eventID,
		Kind:      model.EventTelemetry,
		Telemetry: sample,
	})
	return err
}

// SubmitTranscript queues a recognized utterance.
func (s *Service) SubmitTranscript(ctx context.Context, eventID, text string) error {
	if strings.TrimSpace(text) == "" {
		return ErrEmptyInput
	}
	_, err := s.Submit(ctx, model.Event{
		EventID:    eventID,
		Kind:       model.EventTranscript,
		Transcript: text,
	})
	return err
}

// HandleTelemetry runs on the dispatch loop.
func (s *Service) HandleTelemetry(ctx context.Context, sample model.TelemetrySample) error {
	s.monitor.Observe(ctx, sample)
	return nil
}

// HandleTranscript runs on the dispatch loop.
func (s *Service) HandleTranscript(ctx context.Context, text string) error {
	if !s.interpreter.Listening() {
		s.logger.Debug(ctx, "transcript dropped, not listening")
		return nil
	}
	cmd := s.interpreter.Handle(ctx, text)
	metrics.RecordVoiceCommand(string(cmd.Kind))
	return nil
}
