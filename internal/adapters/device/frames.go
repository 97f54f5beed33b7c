package device

import (
	"github.com/ridershield/ridershield/internal/domain/model"
)

// Frame types exchanged with the phone app.
const (
	// device -> server
	FrameTelemetry  = "telemetry"
	FrameTranscript = "transcript"
	FramePing       = "ping"

	// server -> device
	FrameDial         = "dial"
	FrameAnnounce     = "announce"
	FrameCaptureStart = "capture_start"
	FrameCaptureStop  = "capture_stop"
	FrameVibrate      = "vibrate"
	FrameListenStart  = "listen_start"
	FrameListenStop   = "listen_stop"
	FrameState        = "state"
	FramePong         = "pong"
	FrameError        = "error"
)

// Frame is the JSON envelope of every websocket message. Only the fields
// relevant to Type are set.
type Frame struct {
	Type string `json:"type"`
	ID   string `json:"id,omitempty"`

	// telemetry / transcript
	Telemetry *model.TelemetrySample `json:"telemetry,omitempty"`
	Text      string                 `json:"text,omitempty"`

	// dial
	Contact *model.EmergencyContact `json:"contact,omitempty"`

	// announce
	Message string              `json:"message,omitempty"`
	Payload *model.AlertPayload `json:"payload,omitempty"`

	// capture
	Handle     string `json:"handle,omitempty"`
	MaxSeconds int    `json:"max_seconds,omitempty"`

	// vibrate
	PatternMs []int64 `json:"pattern_ms,omitempty"`

	// listen
	Locale string `json:"locale,omitempty"`

	// state
	State interface{} `json:"state,omitempty"`

	Error string `json:"error,omitempty"`
}
