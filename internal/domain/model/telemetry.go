package model

import "time"

// TelemetrySample is one location/speed reading from the phone.
type TelemetrySample struct {
	Latitude  float64   `json:"latitude"`
	Longitude float64   `json:"longitude"`
	SpeedKmh  *float64  `json:"speed_kmh,omitempty"` // nil when the device could not measure speed
	Timestamp time.Time `json:"timestamp"`
}

// Speed returns the speed in km/h, treating an unavailable reading as 0.
func (s TelemetrySample) Speed() float64 {
	if s.SpeedKmh == nil {
		return 0
	}
	return *s.SpeedKmh
}

// SpeedOf is a helper for building samples with a known speed.
func SpeedOf(v float64) *float64 { return &v }
