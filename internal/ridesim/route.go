package ridesim

import (
	"crypto/rand"
	"math/big"
	"time"

	"github.com/google/uuid"
)

// The simulated ride heads north on the North-South Expressway near Seremban.
const (
	routeStartLat = 2.7258
	routeStartLon = 101.9424
	headingLat    = 0.6
	headingLon    = 0.8

	metersPerDegree    = 111_320.0
	randomFloatDivisor = 1000000
	speedJitter        = 0.1
)

// getRandomFloat returns a random float64 between 0.0 and 1.0 using crypto/rand.
func getRandomFloat() float64 {
	n, _ := rand.Int(rand.Reader, big.NewInt(randomFloatDivisor))
	return float64(n.Int64()) / float64(randomFloatDivisor)
}

// generateRoute returns n samples spaced interval apart at roughly speedKmh.
func generateRoute(n int, interval time.Duration, speedKmh float64, start time.Time) []Telemetry {
	samples := make([]Telemetry, 0, n)
	lat, lon := routeStartLat, routeStartLon
	for i := 0; i < n; i++ {
		speed := speedKmh * (1 - speedJitter + 2*speedJitter*getRandomFloat())
		meters := speed / 3.6 * interval.Seconds()
		lat += headingLat * meters / metersPerDegree
		lon += headingLon * meters / metersPerDegree

		s := speed
		samples = append(samples, Telemetry{
			EventID:   uuid.NewString(),
			Latitude:  lat,
			Longitude: lon,
			SpeedKmh:  &s,
			TS:        start.Add(time.Duration(i) * interval).UTC().Format(time.RFC3339),
		})
	}
	return samples
}
