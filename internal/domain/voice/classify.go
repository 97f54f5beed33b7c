// Package voice turns recognized speech into commands and manages the
// listening toggle.
package voice

import (
	"strings"

	"github.com/ridershield/ridershield/internal/domain/contacts"
	"github.com/ridershield/ridershield/internal/domain/model"
)

// Lexicon holds the keyword alternatives that mark a command. Entries are
// matched by case-insensitive containment.
type Lexicon struct {
	Cancel []string
	Call   []string
}

// DefaultLexicon covers the three supported languages.
func DefaultLexicon() Lexicon {
	return Lexicon{
		Cancel: []string{"cancel", "取消", "batal"},
		Call:   []string{"call", "打给", "panggil"},
	}
}

// Classify maps a transcript to a command. Cancel keywords win over call
// keywords; a call needs a contact name in the transcript, first match in
// directory order.
func Classify(transcript string, cs []model.EmergencyContact, lex Lexicon) model.VoiceCommand {
	cmd := model.VoiceCommand{Kind: model.CommandUnknown, Transcript: transcript}
	text := strings.ToLower(transcript)

	if containsAny(text, lex.Cancel) {
		cmd.Kind = model.CommandCancelAlert
		return cmd
	}
	if containsAny(text, lex.Call) {
		if c, ok := contacts.FindIn(text, cs); ok {
			cmd.Kind = model.CommandCallContact
			cmd.Contact = &c
		}
	}
	return cmd
}

func containsAny(text string, keywords []string) bool {
	for _, k := range keywords {
		k = strings.ToLower(strings.TrimSpace(k))
		if k != "" && strings.Contains(text, k) {
			return true
		}
	}
	return false
}
