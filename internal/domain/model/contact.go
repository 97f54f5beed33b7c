// Package model contains domain models passed between layers.
package model

// PrimaryMaxPriority is the last priority that still belongs to the primary
// dial sequence.
const PrimaryMaxPriority = 4

// EmergencyContact is one entry of the rider's contact directory.
type EmergencyContact struct {
	ID        string `json:"id" yaml:"id" koanf:"id"`
	Name      string `json:"name" yaml:"name" koanf:"name"`
	Phone     string `json:"phone" yaml:"phone" koanf:"phone"`
	Priority  int    `json:"priority" yaml:"priority" koanf:"priority"` // 1 is dialed first
	Protected bool   `json:"protected" yaml:"protected" koanf:"protected"`
}

// IsPrimary reports whether the contact is dialed on escalation.
func (c EmergencyContact) IsPrimary() bool {
	return c.Priority >= 1 && c.Priority <= PrimaryMaxPriority
}

// RiderProfile is the medical ID and vehicle record read into the alert payload.
type RiderProfile struct {
	FullName     string `json:"full_name" yaml:"full_name" koanf:"full_name"`
	IDNumber     string `json:"id_number" yaml:"id_number" koanf:"id_number"`
	IDVerified   bool   `json:"id_verified" yaml:"id_verified" koanf:"id_verified"`
	BloodType    string `json:"blood_type" yaml:"blood_type" koanf:"blood_type"`
	Allergies    string `json:"allergies" yaml:"allergies" koanf:"allergies"`
	Medications  string `json:"medications" yaml:"medications" koanf:"medications"`
	Conditions   string `json:"conditions" yaml:"conditions" koanf:"conditions"`
	VehicleBrand string `json:"vehicle_brand" yaml:"vehicle_brand" koanf:"vehicle_brand"`
	VehicleColor string `json:"vehicle_color" yaml:"vehicle_color" koanf:"vehicle_color"`
	LicensePlate string `json:"license_plate" yaml:"license_plate" koanf:"license_plate"`
	PhotoRef     string `json:"photo_ref,omitempty" yaml:"photo_ref" koanf:"photo_ref"`
}

// VehicleDescription renders "<color> <brand>".
func (p RiderProfile) VehicleDescription() string {
	switch {
	case p.VehicleColor == "":
		return p.VehicleBrand
	case p.VehicleBrand == "":
		return p.VehicleColor
	}
	return p.VehicleColor + " " + p.VehicleBrand
}
