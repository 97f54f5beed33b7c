// Package notify provides the announce and dial sinks used on escalation.
package notify

import (
	"context"

	"github.com/ridershield/ridershield/internal/domain/model"
	"github.com/ridershield/ridershield/pkg/logger"
)

// LogSink writes announcements and dial actions to the log. It never fails
// and is always part of the fan-out so every escalation leaves a trace.
type LogSink struct {
	log logger.Logger
}

// NewLogSink creates a LogSink.
func NewLogSink(l logger.Logger) *LogSink {
	if l == nil {
		l = logger.Nop()
	}
	return &LogSink{log: l}
}

// Announce logs the alert message.
func (s *LogSink) Announce(ctx context.Context, p model.AlertPayload) error {
	s.log.Warn(ctx, "EMERGENCY ANNOUNCEMENT",
		logger.String("episode", p.Episode),
		logger.String("severity", string(p.Severity)),
		logger.String("message", p.Message))
	return nil
}

// Dial logs the dial action.
func (s *LogSink) Dial(ctx context.Context, c model.EmergencyContact) error {
	s.log.Info(ctx, "DIALING",
		logger.Int("priority", c.Priority),
		logger.String("name", c.Name),
		logger.String("phone", c.Phone))
	return nil
}
