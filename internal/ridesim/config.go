// Package ridesim drives a running RiderShield service over HTTP with
// scripted rides, so the countdown, cancellation and escalation paths can be
// exercised without a phone.
package ridesim

import "time"

// Scenario names accepted by Run.
const (
	ScenarioRide     = "ride"
	ScenarioCancel   = "cancel"
	ScenarioEscalate = "escalate"
	ScenarioVoice    = "voice"
)

// Config holds configuration for a simulated ride.
type Config struct {
	BaseURL  string        // Base URL of the service
	Timeout  time.Duration // HTTP request timeout
	Samples  int           // GPS samples pushed before the crash
	Interval time.Duration // Delay between samples
	SpeedKmh float64       // Cruising speed
	Severity string        // Severity sent with the trigger
	Wait     time.Duration // How long to wait for a state change
	Poll     time.Duration // State polling interval
	Phrase   string        // Transcript used by the voice scenario
	Verbose  bool          // Log every request
}

// Telemetry is the body of POST /telemetry.
type Telemetry struct {
	EventID   string   `json:"event_id"`
	Latitude  float64  `json:"latitude"`
	Longitude float64  `json:"longitude"`
	SpeedKmh  *float64 `json:"speed_kmh,omitempty"`
	TS        string   `json:"ts"`
}

// Transcript is the body of POST /voice/transcripts.
type Transcript struct {
	EventID string `json:"event_id"`
	Text    string `json:"text"`
}

// AckResponse represents the response from stream submission.
type AckResponse struct {
	Status    string `json:"status"`
	Duplicate bool   `json:"duplicate"`
}

// Payload is the part of the alert payload the simulator checks.
type Payload struct {
	Episode       string  `json:"episode"`
	Latitude      float64 `json:"latitude"`
	Longitude     float64 `json:"longitude"`
	LocationKnown bool    `json:"location_known"`
	Message       string  `json:"message"`
}

// Snapshot is the engine part of GET /state.
type Snapshot struct {
	State            string   `json:"state"`
	Episode          string   `json:"episode"`
	Severity         string   `json:"severity"`
	RemainingSeconds int      `json:"remaining_seconds"`
	LastPayload      *Payload `json:"last_payload"`
}

// Command is the last recognized voice command.
type Command struct {
	Kind     string `json:"kind"`
	Feedback string `json:"feedback"`
}

// State is GET /state.
type State struct {
	Engine      Snapshot `json:"engine"`
	Riding      bool     `json:"riding"`
	Listening   bool     `json:"listening"`
	LastCommand *Command `json:"last_command"`
}

// Stats holds simulation statistics.
type Stats struct {
	SamplesSubmitted int
	SamplesAccepted  int
	SamplesDuplicate int
	SamplesFailed    int
	FinalState       string
	Episode          string
	StartTime        time.Time
	EndTime          time.Time
	Duration         time.Duration
}

// DefaultConfig returns a short ride against a local service.
func DefaultConfig() *Config {
	return &Config{
		BaseURL:  "http://localhost:9080",
		Timeout:  10 * time.Second,
		Samples:  10,
		Interval: 200 * time.Millisecond,
		SpeedKmh: 80,
		Severity: "High",
		Wait:     45 * time.Second,
		Poll:     500 * time.Millisecond,
		Phrase:   "cancel",
	}
}
