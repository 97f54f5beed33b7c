package voice

import (
	"context"
	"testing"

	. "github.com/smartystreets/goconvey/convey"

	"github.com/ridershield/ridershield/internal/domain/model"
)

type fakeRecognizer struct {
	started []string
	stopped int
	fail    error
}

func (f *fakeRecognizer) StartRecognition(_ context.Context, locale string) error {
	if f.fail != nil {
		return f.fail
	}
	f.started = append(f.started, locale)
	return nil
}

func (f *fakeRecognizer) StopRecognition(context.Context) error {
	f.stopped++
	return nil
}

type fakeDialer struct {
	dialed []model.EmergencyContact
}

func (f *fakeDialer) Dial(_ context.Context, c model.EmergencyContact) error {
	f.dialed = append(f.dialed, c)
	return nil
}

type fakeCanceller struct {
	sources []model.CancelSource
}

func (f *fakeCanceller) Cancel(_ context.Context, s model.CancelSource) bool {
	f.sources = append(f.sources, s)
	return true
}

type staticContacts []model.EmergencyContact

func (s staticContacts) All() []model.EmergencyContact { return s }

func TestInterpreter(t *testing.T) {
	Convey("Given an interpreter with fakes", t, func() {
		ctx := context.Background()
		rec := &fakeRecognizer{}
		dialer := &fakeDialer{}
		canceller := &fakeCanceller{}
		in := NewInterpreter(
			WithRecognizer(rec),
			WithDialer(dialer),
			WithCanceller(canceller),
			WithContacts(staticContacts(directory)),
		)

		Convey("When a transcript arrives before listening", func() {
			cmd := in.Handle(ctx, "cancel")

			Convey("Then it is dropped", func() {
				So(cmd.Kind, ShouldEqual, model.CommandUnknown)
				So(canceller.sources, ShouldBeEmpty)
			})
		})

		Convey("When listening is toggled", func() {
			So(in.Start(ctx), ShouldBeTrue)
			So(in.Start(ctx), ShouldBeFalse)

			Convey("Then recognition starts once in the English locale", func() {
				So(rec.started, ShouldResemble, []string{"en-US"})
				So(in.Listening(), ShouldBeTrue)
			})

			Convey("Then stopping twice stops once", func() {
				So(in.Stop(ctx), ShouldBeTrue)
				So(in.Stop(ctx), ShouldBeFalse)
				So(rec.stopped, ShouldEqual, 1)
				So(in.Listening(), ShouldBeFalse)
			})
		})

		Convey("When listening and a call transcript arrives", func() {
			in.Start(ctx)
			cmd := in.Handle(ctx, "call wife")

			Convey("Then exactly one dial is issued to Wife", func() {
				So(cmd.Kind, ShouldEqual, model.CommandCallContact)
				So(cmd.Feedback, ShouldEqual, "Calling Wife...")
				So(dialer.dialed, ShouldHaveLength, 1)
				So(dialer.dialed[0].Name, ShouldEqual, "Wife")
				So(canceller.sources, ShouldBeEmpty)

				last, ok := in.LastCommand()
				So(ok, ShouldBeTrue)
				So(last.Contact.Name, ShouldEqual, "Wife")
			})
		})

		Convey("When listening and a cancel transcript arrives", func() {
			in.Start(ctx)
			cmd := in.Handle(ctx, "hi rino cancel")

			Convey("Then the cancel is routed with the voice source", func() {
				So(cmd.Kind, ShouldEqual, model.CommandCancelAlert)
				So(canceller.sources, ShouldResemble, []model.CancelSource{model.CancelVoice})
				So(dialer.dialed, ShouldBeEmpty)
			})
		})

		Convey("When the language changes while listening", func() {
			in.Start(ctx)
			in.SetLanguage(ctx, model.LanguageBM)

			Convey("Then recognition restarts in the new locale", func() {
				So(rec.started, ShouldResemble, []string{"en-US", "ms-MY"})
				So(rec.stopped, ShouldEqual, 1)
				So(in.Language(), ShouldEqual, model.LanguageBM)
				So(in.Listening(), ShouldBeTrue)
			})
		})
	})

	Convey("Given a recognizer without microphone access", t, func() {
		in := NewInterpreter(WithRecognizer(&fakeRecognizer{fail: ErrRecognizerUnavailable}))

		Convey("Then starting fails gracefully and listening stays off", func() {
			So(in.Start(context.Background()), ShouldBeFalse)
			So(in.Listening(), ShouldBeFalse)
		})
	})

	Convey("Given a custom feedback renderer", t, func() {
		in := NewInterpreter(
			WithContacts(staticContacts(directory)),
			WithLanguage(model.LanguageBM),
			WithFeedback(func(l model.Language, name string) string { return string(l) + ":" + name }),
		)
		in.Start(context.Background())

		Convey("Then it is used for call commands", func() {
			cmd := in.Handle(context.Background(), "panggil brother")
			So(cmd.Feedback, ShouldEqual, "BM:Brother")
		})
	})
}
