package model

// CommandKind classifies a recognized utterance.
type CommandKind string

const (
	CommandCallContact CommandKind = "call_contact"
	CommandCancelAlert CommandKind = "cancel_alert"
	CommandUnknown     CommandKind = "unknown"
)

// VoiceCommand is derived from one transcript and never stored.
type VoiceCommand struct {
	Kind       CommandKind       `json:"kind"`
	Contact    *EmergencyContact `json:"contact,omitempty"`
	Transcript string            `json:"transcript"`
	Feedback   string            `json:"feedback,omitempty"`
}
