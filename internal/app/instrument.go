package service

import (
	"context"
	"time"

	"github.com/ridershield/ridershield/internal/domain/escalation"
	"github.com/ridershield/ridershield/internal/domain/model"
	"github.com/ridershield/ridershield/pkg/metrics"
)

// meteredDialer counts dial attempts by origin.
type meteredDialer struct {
	origin string
	next   escalation.Dialer
}

func (d meteredDialer) Dial(ctx context.Context, c model.EmergencyContact) error {
	if err := d.next.Dial(ctx, c); err != nil {
		metrics.RecordDial(d.origin, "error")
		return err
	}
	metrics.RecordDial(d.origin, "ok")
	return nil
}

// meteredCapture counts evidence capture starts.
type meteredCapture struct {
	next escalation.Capture
}

func (c meteredCapture) StartCapture(ctx context.Context, maxDuration time.Duration) (string, error) {
	handle, err := c.next.StartCapture(ctx, maxDuration)
	if err != nil {
		metrics.RecordCapture("failed")
		return "", err
	}
	metrics.RecordCapture("started")
	return handle, nil
}

func (c meteredCapture) StopCapture(ctx context.Context, handle string) error {
	metrics.RecordCapture("stopped")
	return c.next.StopCapture(ctx, handle)
}

// cancellerFunc lets the voice interpreter cancel through the service.
type cancellerFunc func(ctx context.Context, source model.CancelSource) bool

func (f cancellerFunc) Cancel(ctx context.Context, source model.CancelSource) bool {
	return f(ctx, source)
}
