package telemetry

import "github.com/ridershield/ridershield/pkg/logger"

// DefaultRidingSpeedKmh is the speed above which riding mode latches on.
const DefaultRidingSpeedKmh = 15.0

// Option configures a Monitor.
type Option func(*Monitor)

// WithRidingSpeed sets the latch threshold in km/h. Negative values are ignored.
func WithRidingSpeed(kmh float64) Option {
	return func(m *Monitor) {
		if kmh >= 0 {
			m.threshold = kmh
		}
	}
}

// WithLogger sets the logger.
func WithLogger(l logger.Logger) Option {
	return func(m *Monitor) {
		if l != nil {
			m.log = l
		}
	}
}

// WithRidingObserver registers a callback invoked after every riding flag change.
func WithRidingObserver(fn func(riding bool)) Option {
	return func(m *Monitor) {
		if fn != nil {
			m.observers = append(m.observers, fn)
		}
	}
}
