package model

import "context"

// EventKind tags the payload of an Event.
type EventKind int

const (
	EventTelemetry EventKind = iota + 1
	EventTranscript
	EventTimer
)

func (k EventKind) String() string {
	switch k {
	case EventTelemetry:
		return "telemetry"
	case EventTranscript:
		return "transcript"
	case EventTimer:
		return "timer"
	}
	return "unknown"
}

// Event is one unit of work for the dispatch loop. Exactly one of the
// payload fields is set, matching Kind.
type Event struct {
	EventID    string // optional, for idempotency of pushed events
	Kind       EventKind
	Telemetry  TelemetrySample
	Transcript string
	Timer      func(ctx context.Context) // scheduler callback run on the loop
}
