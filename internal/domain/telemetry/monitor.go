// Package telemetry tracks the latest location sample and the riding latch.
package telemetry

import (
	"context"
	"sync"

	"github.com/ridershield/ridershield/internal/domain/model"
	"github.com/ridershield/ridershield/pkg/logger"
)

// Monitor consumes telemetry samples. Riding mode latches on once a sample
// exceeds the threshold and only StopRiding turns it off.
type Monitor struct {
	mu        sync.RWMutex
	threshold float64
	riding    bool
	last      model.TelemetrySample
	hasLast   bool
	samples   uint64
	observers []func(bool)
	log       logger.Logger
}

// NewMonitor creates a Monitor with the default threshold.
func NewMonitor(opts ...Option) *Monitor {
	m := &Monitor{
		threshold: DefaultRidingSpeedKmh,
		log:       logger.Nop(),
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Observe records a sample and reports whether it switched riding mode on.
func (m *Monitor) Observe(ctx context.Context, s model.TelemetrySample) bool {
	m.mu.Lock()
	m.last = s
	m.hasLast = true
	m.samples++
	flipped := false
	if !m.riding && s.Speed() > m.threshold {
		m.riding = true
		flipped = true
	}
	m.mu.Unlock()

	if flipped {
		m.log.Info(ctx, "riding mode detected from speed", logger.Float64("speed_kmh", s.Speed()))
		m.notify(true)
	}
	return flipped
}

// StartRiding turns riding mode on explicitly. Returns false if already on.
func (m *Monitor) StartRiding(ctx context.Context) bool {
	return m.setRiding(ctx, true)
}

// StopRiding turns riding mode off. Returns false if already off.
func (m *Monitor) StopRiding(ctx context.Context) bool {
	return m.setRiding(ctx, false)
}

// IsRiding reports the latch.
func (m *Monitor) IsRiding() bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.riding
}

// LastSample returns the most recent sample, if any.
func (m *Monitor) LastSample() (model.TelemetrySample, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.last, m.hasLast
}

// Samples returns how many samples were observed.
func (m *Monitor) Samples() uint64 {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.samples
}

func (m *Monitor) setRiding(ctx context.Context, on bool) bool {
	m.mu.Lock()
	if m.riding == on {
		m.mu.Unlock()
		return false
	}
	m.riding = on
	m.mu.Unlock()

	m.log.Info(ctx, "riding mode changed", logger.Bool("riding", on))
	m.notify(on)
	return true
}

func (m *Monitor) notify(riding bool) {
	for _, fn := range m.observers {
		fn(riding)
	}
}
