package model

import (
	"fmt"
	"strings"
	"time"
)

// Severity is the impact severity carried by a crash alert.
type Severity string

const (
	SeverityLow    Severity = "Low"
	SeverityMedium Severity = "Medium"
	SeverityHigh   Severity = "High"
)

// ParseSeverity accepts Low, Medium or High (case-insensitive). Empty input
// defaults to Medium.
func ParseSeverity(s string) (Severity, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "":
		return SeverityMedium, nil
	case "low":
		return SeverityLow, nil
	case "medium":
		return SeverityMedium, nil
	case "high":
		return SeverityHigh, nil
	}
	return "", fmt.Errorf("%w: %q", ErrInvalidSeverity, s)
}

// CrashAlert is the transient alert owned by the escalation engine while armed.
type CrashAlert struct {
	Episode               string    `json:"episode"`
	Severity              Severity  `json:"severity"`
	RemainingSeconds      int       `json:"remaining_seconds"`
	ArmedAt               time.Time `json:"armed_at"`
	EvidenceCaptureActive bool      `json:"evidence_capture_active"`
}

// AlertPayload is what gets announced and audited when an alert escalates.
type AlertPayload struct {
	Episode       string    `json:"episode"`
	RiderName     string    `json:"rider_name"`
	IDNumber      string    `json:"id_number"`
	BloodType     string    `json:"blood_type,omitempty"`
	Vehicle       string    `json:"vehicle"`
	VehicleBrand  string    `json:"vehicle_brand,omitempty"`
	VehicleColor  string    `json:"vehicle_color,omitempty"`
	LicensePlate  string    `json:"license_plate"`
	Latitude      float64   `json:"latitude"`
	Longitude     float64   `json:"longitude"`
	LocationKnown bool      `json:"location_known"`
	Nearby        string    `json:"nearby"`
	Severity      Severity  `json:"severity"`
	Status        string    `json:"status"`
	Message       string    `json:"message"`
	CreatedAt     time.Time `json:"created_at"`
}

// Outcome is how an alert episode ended.
type Outcome string

const (
	OutcomeCancelled Outcome = "cancelled"
	OutcomeEscalated Outcome = "escalated"
)

// DialResult records one dial action of an escalation.
type DialResult struct {
	ContactID string `json:"contact_id"`
	Name      string `json:"name"`
	Phone     string `json:"phone"`
	Priority  int    `json:"priority"`
	Error     string `json:"error,omitempty"`
}

// EpisodeRecord is the audit entry written when an alert episode ends.
type EpisodeRecord struct {
	Episode     string        `json:"episode"`
	Severity    Severity      `json:"severity"`
	Outcome     Outcome       `json:"outcome"`
	CancelledBy string        `json:"cancelled_by,omitempty"`
	ArmedAt     time.Time     `json:"armed_at"`
	EndedAt     time.Time     `json:"ended_at"`
	Payload     *AlertPayload `json:"payload,omitempty"`
	Dials       []DialResult  `json:"dials,omitempty"`
}

// CancelSource names who cancelled an armed alert.
type CancelSource string

const (
	CancelManual CancelSource = "manual"
	CancelVoice  CancelSource = "voice"
)
