package api

import (
	"time"

	"github.com/ridershield/ridershield/internal/domain/model"
)

type triggerRequest struct {
	Severity string `json:"severity" validate:"omitempty,max=16"`
}

type cancelResponse struct {
	Cancelled bool `json:"cancelled"`
}

type telemetryRequest struct {
	EventID   string   `json:"event_id" validate:"omitempty,max=128"`
	Latitude  float64  `json:"latitude" validate:"gte=-90,lte=90"`
	Longitude float64  `json:"longitude" validate:"gte=-180,lte=180"`
	SpeedKmh  *float64 `json:"speed_kmh" validate:"omitempty,gte=0"`
	TS        string   `json:"ts" validate:"omitempty,datetime=2006-01-02T15:04:05Z07:00"`
}

func (t telemetryRequest) sample(now time.Time) model.TelemetrySample {
	ts := now
	if t.TS != "" {
		if parsed, err := time.Parse(time.RFC3339, t.TS); err == nil {
			ts = parsed
		}
	}
	return model.TelemetrySample{
		Latitude:  t.Latitude,
		Longitude: t.Longitude,
		SpeedKmh:  t.SpeedKmh,
		Timestamp: ts,
	}
}

type transcriptRequest struct {
	EventID string `json:"event_id" validate:"omitempty,max=128"`
	Text    string `json:"text" validate:"required,max=512"`
}

type listenRequest struct {
	Active *bool `json:"active" validate:"required"`
}

type listenResponse struct {
	Listening bool `json:"listening"`
}

type rideResponse struct {
	Riding  bool `json:"riding"`
	Changed bool `json:"changed"`
}

type contactRequest struct {
	Name  string `json:"name" validate:"required,max=64"`
	Phone string `json:"phone" validate:"required,max=32,excludesall=;<>"`
}

type priorityRequest struct {
	Priority int `json:"priority" validate:"required,min=1,max=1000"`
}

type profileRequest struct {
	FullName     string `json:"full_name" validate:"required,max=128"`
	IDNumber     string `json:"id_number" validate:"required,max=64"`
	IDVerified   bool   `json:"id_verified"`
	BloodType    string `json:"blood_type" validate:"omitempty,max=8"`
	Allergies    string `json:"allergies" validate:"max=256"`
	Medications  string `json:"medications" validate:"max=256"`
	Conditions   string `json:"conditions" validate:"max=256"`
	VehicleBrand string `json:"vehicle_brand" validate:"max=64"`
	VehicleColor string `json:"vehicle_color" validate:"max=64"`
	LicensePlate string `json:"license_plate" validate:"max=32"`
	PhotoRef     string `json:"photo_ref" validate:"omitempty,max=512"`
}

func (p profileRequest) profile() model.RiderProfile { //nolint:gocritic // hugeParam: request copy
	return model.RiderProfile{
		FullName:     p.FullName,
		IDNumber:     p.IDNumber,
		IDVerified:   p.IDVerified,
		BloodType:    p.BloodType,
		Allergies:    p.Allergies,
		Medications:  p.Medications,
		Conditions:   p.Conditions,
		VehicleBrand: p.VehicleBrand,
		VehicleColor: p.VehicleColor,
		LicensePlate: p.LicensePlate,
		PhotoRef:     p.PhotoRef,
	}
}

type languageRequest struct {
	Language string `json:"language" validate:"required"`
}

type languageResponse struct {
	Language model.Language `json:"language"`
	Locale   string         `json:"locale"`
}
