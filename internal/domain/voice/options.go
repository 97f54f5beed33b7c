package voice

import (
	"github.com/ridershield/ridershield/internal/domain/model"
	"github.com/ridershield/ridershield/pkg/logger"
)

// Option configures an Interpreter.
type Option func(*Interpreter)

// WithRecognizer sets the speech recognition control.
func WithRecognizer(r Recognizer) Option {
	return func(i *Interpreter) { i.recognizer = r }
}

// WithDialer sets the dial sink used by call commands.
func WithDialer(d Dialer) Option {
	return func(i *Interpreter) { i.dialer = d }
}

// WithCanceller sets where cancel commands are routed.
func WithCanceller(c Canceller) Option {
	return func(i *Interpreter) { i.canceller = c }
}

// WithContacts sets the contact lookup.
func WithContacts(c ContactSource) Option {
	return func(i *Interpreter) { i.contacts = c }
}

// WithLexicon replaces the keyword sets.
func WithLexicon(lex Lexicon) Option {
	return func(i *Interpreter) { i.lexicon = lex }
}

// WithLanguage sets the initial language.
func WithLanguage(l model.Language) Option {
	return func(i *Interpreter) { i.lang = l }
}

// WithFeedback sets the renderer for the "calling" feedback text.
func WithFeedback(fn func(lang model.Language, name string) string) Option {
	return func(i *Interpreter) {
		if fn != nil {
			i.feedback = fn
		}
	}
}

// WithLogger sets the logger.
func WithLogger(l logger.Logger) Option {
	return func(i *Interpreter) {
		if l != nil {
			i.log = l
		}
	}
}
