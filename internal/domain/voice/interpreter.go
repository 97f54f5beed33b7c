package voice

import (
	"context"
	"fmt"
	"sync"

	"github.com/ridershield/ridershield/internal/domain/model"
	"github.com/ridershield/ridershield/pkg/logger"
)

// Recognizer controls the continuous speech recognition stream.
type Recognizer interface {
	StartRecognition(ctx context.Context, locale string) error
	StopRecognition(ctx context.Context) error
}

// Dialer places a call to one contact.
type Dialer interface {
	Dial(ctx context.Context, c model.EmergencyContact) error
}

// Canceller receives cancel commands.
type Canceller interface {
	Cancel(ctx context.Context, source model.CancelSource) bool
}

// ContactSource lists contacts in directory order.
type ContactSource interface {
	All() []model.EmergencyContact
}

// Interpreter owns the listening toggle and routes classified commands.
type Interpreter struct {
	mu        sync.Mutex
	listening bool
	lang      model.Language
	lexicon   Lexicon
	last      *model.VoiceCommand

	recognizer Recognizer
	dialer     Dialer
	canceller  Canceller
	contacts   ContactSource
	feedback   func(model.Language, string) string
	log        logger.Logger
}

// NewInterpreter creates an Interpreter that is not listening.
func NewInterpreter(opts ...Option) *Interpreter {
	i := &Interpreter{
		lang:    model.LanguageEN,
		lexicon: DefaultLexicon(),
		feedback: func(_ model.Language, name string) string {
			return fmt.Sprintf("Calling %s...", name)
		},
		log: logger.Nop(),
	}
	for _, opt := range opts {
		opt(i)
	}
	return i
}

// Start begins continuous recognition. It is a no-op when already listening
// and leaves listening off when the recognizer fails.
func (i *Interpreter) Start(ctx context.Context) bool {
	i.mu.Lock()
	defer i.mu.Unlock()

	if i.listening {
		return false
	}
	if i.recognizer != nil {
		if err := i.recognizer.StartRecognition(ctx, i.lang.Locale()); err != nil {
			i.log.Warn(ctx, "speech recognition unavailable", logger.Error(err))
			return false
		}
	}
	i.listening = true
	i.log.Info(ctx, "voice listening started", logger.String("locale", i.lang.Locale()))
	return true
}

// Stop ends recognition. It is a no-op when not listening.
func (i *Interpreter) Stop(ctx context.Context) bool {
	i.mu.Lock()
	defer i.mu.Unlock()

	if !i.listening {
		return false
	}
	if i.recognizer != nil {
		if err := i.recognizer.StopRecognition(ctx); err != nil {
			i.log.Warn(ctx, "stop recognition failed", logger.Error(err))
		}
	}
	i.listening = false
	i.log.Info(ctx, "voice listening stopped")
	return true
}

// Listening reports the toggle.
func (i *Interpreter) Listening() bool {
	i.mu.Lock()
	defer i.mu.Unlock()
	return i.listening
}

// Language returns the active language.
func (i *Interpreter) Language() model.Language {
	i.mu.Lock()
	defer i.mu.Unlock()
	return i.lang
}

// SetLanguage switches the recognition locale, restarting an active stream.
func (i *Interpreter) SetLanguage(ctx context.Context, l model.Language) {
	i.mu.Lock()
	defer i.mu.Unlock()

	if i.lang == l {
		return
	}
	i.lang = l
	if !i.listening || i.recognizer == nil {
		return
	}
	if err := i.recognizer.StopRecognition(ctx); err != nil {
		i.log.Warn(ctx, "stop recognition failed", logger.Error(err))
	}
	if err := i.recognizer.StartRecognition(ctx, l.Locale()); err != nil {
		i.log.Warn(ctx, "speech recognition unavailable", logger.Error(err))
		i.listening = false
	}
}

// LastCommand returns the most recently routed command.
func (i *Interpreter) LastCommand() (model.VoiceCommand, bool) {
	i.mu.Lock()
	defer i.mu.Unlock()
	if i.last == nil {
		return model.VoiceCommand{}, false
	}
	return *i.last, true
}

// Handle classifies a transcript and performs its side effect. Transcripts
// arriving while not listening are dropped.
func (i *Interpreter) Handle(ctx context.Context, transcript string) model.VoiceCommand {
	i.mu.Lock()
	if !i.listening {
		i.mu.Unlock()
		i.log.Debug(ctx, "transcript dropped, not listening")
		return model.VoiceCommand{Kind: model.CommandUnknown, Transcript: transcript}
	}
	var cs []model.EmergencyContact
	if i.contacts != nil {
		cs = i.contacts.All()
	}
	cmd := Classify(transcript, cs, i.lexicon)
	if cmd.Kind == model.CommandCallContact {
		cmd.Feedback = i.feedback(i.lang, cmd.Contact.Name)
	}
	if cmd.Kind != model.CommandUnknown {
		last := cmd
		i.last = &last
	}
	i.mu.Unlock()

	switch cmd.Kind {
	case model.CommandCallContact:
		i.log.Info(ctx, cmd.Feedback, logger.String("contact", cmd.Contact.ID))
		if i.dialer != nil {
			if err := i.dialer.Dial(ctx, *cmd.Contact); err != nil {
				i.log.Warn(ctx, "voice dial failed", logger.String("contact", cmd.Contact.Name), logger.Error(err))
			}
		}
	case model.CommandCancelAlert:
		if i.canceller != nil {
			i.canceller.Cancel(ctx, model.CancelVoice)
		}
	case model.CommandUnknown:
		i.log.Debug(ctx, "transcript not understood", logger.String("transcript", transcript))
	}
	return cmd
}
