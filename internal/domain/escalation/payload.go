package escalation

import (
	"fmt"
	"time"

	"github.com/ridershield/ridershield/internal/domain/model"
)

// DefaultNearbyLabel is used when no nearby-location label is configured.
const DefaultNearbyLabel = "KM 254.3 PLUS North-South Expressway (Near Seremban)"

// BuildPayload assembles the alert payload. The message is left empty; the
// renderer fills it in.
func BuildPayload(episode string, sev model.Severity, profile model.RiderProfile,
	sample model.TelemetrySample, hasSample bool, nearby, status string, now time.Time,
) model.AlertPayload {
	p := model.AlertPayload{
		Episode:       episode,
		RiderName:     profile.FullName,
		IDNumber:      profile.IDNumber,
		BloodType:     profile.BloodType,
		Vehicle:       profile.VehicleDescription(),
		VehicleBrand:  profile.VehicleBrand,
		VehicleColor:  profile.VehicleColor,
		LicensePlate:  profile.LicensePlate,
		LocationKnown: hasSample,
		Nearby:        nearby,
		Severity:      sev,
		Status:        status,
		CreatedAt:     now,
	}
	if hasSample {
		p.Latitude = sample.Latitude
		p.Longitude = sample.Longitude
	}
	return p
}

// FormatCoordinate renders a coordinate for speech, or "unknown" without a fix.
func FormatCoordinate(v float64, known bool) string {
	if !known {
		return "unknown"
	}
	return fmt.Sprintf("%.6f", v)
}

// englishRenderer is the fallback when no catalog is wired.
type englishRenderer struct{}

func (englishRenderer) Status(model.Language) string {
	return "Rider is UNRESPONSIVE. Immediate medical rescue required."
}

func (englishRenderer) Announcement(_ model.Language, p model.AlertPayload) string {
	return fmt.Sprintf("EMERGENCY ALERT. Automated call from RiderShield. Rider: %s. IC Number: %s. "+
		"Vehicle: %s, License Plate: %s. Location: Latitude %s, Longitude %s. Nearby Highway: %s. "+
		"IMPACT SEVERITY: %s level collision detected. STATUS: %s",
		p.RiderName, p.IDNumber, p.Vehicle, p.LicensePlate,
		FormatCoordinate(p.Latitude, p.LocationKnown), FormatCoordinate(p.Longitude, p.LocationKnown),
		p.Nearby, p.Severity, p.Status)
}
