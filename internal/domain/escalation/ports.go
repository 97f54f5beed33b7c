package escalation

import (
	"context"
	"time"

	"github.com/ridershield/ridershield/internal/domain/model"
)

// Timer is a cancellable scheduled callback.
type Timer interface {
	// Stop prevents further runs. It reports whether the timer was active.
	Stop() bool
}

// Scheduler runs callbacks on the service's dispatch loop.
type Scheduler interface {
	Every(d time.Duration, fn func(ctx context.Context)) Timer
	After(d time.Duration, fn func(ctx context.Context)) Timer
}

// Capture controls the evidence recorder.
type Capture interface {
	StartCapture(ctx context.Context, max time.Duration) (handle string, err error)
	StopCapture(ctx context.Context, handle string) error
}

// Announcer speaks or pushes the alert message.
type Announcer interface {
	Announce(ctx context.Context, p model.AlertPayload) error
}

// Dialer places a call to one contact.
type Dialer interface {
	Dial(ctx context.Context, c model.EmergencyContact) error
}

// Haptics vibrates the device.
type Haptics interface {
	Vibrate(ctx context.Context, pattern []time.Duration) error
}

// ContactSource yields the primary dial sequence in priority order.
type ContactSource interface {
	Primary() []model.EmergencyContact
}

// ProfileSource yields the rider profile.
type ProfileSource interface {
	Profile() model.RiderProfile
}

// LocationSource yields the last telemetry sample.
type LocationSource interface {
	LastSample() (model.TelemetrySample, bool)
}

// Recorder keeps the audit trail of finished episodes.
type Recorder interface {
	Record(ctx context.Context, rec model.EpisodeRecord) error
}

// MessageRenderer produces the localized status line and announcement text.
type MessageRenderer interface {
	Status(lang model.Language) string
	Announcement(lang model.Language, p model.AlertPayload) string
}
