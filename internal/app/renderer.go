package service

import (
	"github.com/ridershield/ridershield/internal/domain/escalation"
	"github.com/ridershield/ridershield/internal/domain/model"
	"github.com/ridershield/ridershield/internal/domain/voice"
	"github.com/ridershield/ridershield/pkg/i18n"
)

// catalogRenderer renders alert and voice texts from the locale catalog.
type catalogRenderer struct {
	catalog *i18n.Catalog
}

var _ escalation.MessageRenderer = catalogRenderer{}

func (r catalogRenderer) Status(lang model.Language) string {
	return r.catalog.T(lang.Tag(), i18n.MsgAlertStatus, nil)
}

func (r catalogRenderer) Announcement(lang model.Language, p model.AlertPayload) string { //nolint:gocritic // hugeParam: template data
	return r.catalog.T(lang.Tag(), i18n.MsgAlertAnnouncement, map[string]interface{}{
		"Name":         p.RiderName,
		"IDNumber":     p.IDNumber,
		"VehicleColor": p.VehicleColor,
		"VehicleBrand": p.VehicleBrand,
		"LicensePlate": p.LicensePlate,
		"Latitude":     escalation.FormatCoordinate(p.Latitude, p.LocationKnown),
		"Longitude":    escalation.FormatCoordinate(p.Longitude, p.LocationKnown),
		"Nearby":       p.Nearby,
		"Severity":     string(p.Severity),
		"Status":       p.Status,
	})
}

func (r catalogRenderer) Calling(lang model.Language, name string) string {
	return r.catalog.T(lang.Tag(), i18n.MsgVoiceCalling, map[string]interface{}{"Name": name})
}

// lexicon merges keyword sets of every loaded language.
func (r catalogRenderer) lexicon() voice.Lexicon {
	lex := voice.Lexicon{
		Cancel: r.catalog.AllKeywords(i18n.MsgKeywordsCancel),
		Call:   r.catalog.AllKeywords(i18n.MsgKeywordsCall),
	}
	if len(lex.Cancel) == 0 || len(lex.Call) == 0 {
		return voice.DefaultLexicon()
	}
	return lex
}
