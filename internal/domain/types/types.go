// Package types contains read models shared by the service and the API.
package types

import (
	"github.com/ridershield/ridershield/internal/domain/escalation"
	"github.com/ridershield/ridershield/internal/domain/model"
)

// StateView is what the rider's screen shows.
type StateView struct {
	Engine         escalation.Snapshot `json:"engine"`
	Riding         bool                `json:"riding"`
	Listening      bool                `json:"listening"`
	LastCommand    *model.VoiceCommand `json:"last_command,omitempty"`
	DeviceSessions int                 `json:"device_sessions"`
}

// ContactsView lists the directory with its escalation split.
type ContactsView struct {
	All       []model.EmergencyContact `json:"all"`
	Primary   []model.EmergencyContact `json:"primary"`
	Secondary []model.EmergencyContact `json:"secondary"`
}

// NewContactsView splits contacts, already in directory order, into the
// primary group dialed on escalation and the rest.
func NewContactsView(all []model.EmergencyContact) ContactsView {
	v := ContactsView{
		All:       all,
		Primary:   []model.EmergencyContact{},
		Secondary: []model.EmergencyContact{},
	}
	if v.All == nil {
		v.All = []model.EmergencyContact{}
	}
	for _, c := range all {
		if c.IsPrimary() {
			v.Primary = append(v.Primary, c)
		} else {
			v.Secondary = append(v.Secondary, c)
		}
	}
	return v
}
