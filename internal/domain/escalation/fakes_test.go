package escalation

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/ridershield/ridershield/internal/domain/model"
)

type fakeTimer struct {
	d       time.Duration
	fn      func(context.Context)
	repeat  bool
	stopped bool
}

func (t *fakeTimer) Stop() bool {
	was := !t.stopped
	t.stopped = true
	return was
}

// manualScheduler records timers; tests fire them by hand.
type manualScheduler struct {
	timers []*fakeTimer
}

func (s *manualScheduler) Every(d time.Duration, fn func(context.Context)) Timer {
	t := &fakeTimer{d: d, fn: fn, repeat: true}
	s.timers = append(s.timers, t)
	return t
}

func (s *manualScheduler) After(d time.Duration, fn func(context.Context)) Timer {
	t := &fakeTimer{d: d, fn: fn}
	s.timers = append(s.timers, t)
	return t
}

func (s *manualScheduler) active() []*fakeTimer {
	var out []*fakeTimer
	for _, t := range s.timers {
		if !t.stopped {
			out = append(out, t)
		}
	}
	return out
}

func (s *manualScheduler) tickers() []*fakeTimer {
	var out []*fakeTimer
	for _, t := range s.timers {
		if t.repeat {
			out = append(out, t)
		}
	}
	return out
}

type fakeCapture struct {
	started int
	stopped []string
	fail    error
}

func (c *fakeCapture) StartCapture(context.Context, time.Duration) (string, error) {
	if c.fail != nil {
		return "", c.fail
	}
	c.started++
	return fmt.Sprintf("cap-%d", c.started), nil
}

func (c *fakeCapture) StopCapture(_ context.Context, handle string) error {
	c.stopped = append(c.stopped, handle)
	return nil
}

type fakeDialer struct {
	calls []string
	fail  map[string]bool
}

func (d *fakeDialer) Dial(_ context.Context, c model.EmergencyContact) error {
	d.calls = append(d.calls, c.Name)
	if d.fail[c.Name] {
		return errors.New("line busy")
	}
	return nil
}

type fakeAnnouncer struct {
	mu   sync.Mutex
	got  []model.AlertPayload
	done chan struct{}
	fail bool
}

func newFakeAnnouncer() *fakeAnnouncer { return &fakeAnnouncer{done: make(chan struct{}, 4)} }

func (a *fakeAnnouncer) Announce(_ context.Context, p model.AlertPayload) error {
	a.mu.Lock()
	a.got = append(a.got, p)
	a.mu.Unlock()
	a.done <- struct{}{}
	if a.fail {
		return errors.New("tts down")
	}
	return nil
}

type fakeHaptics struct{ patterns [][]time.Duration }

func (h *fakeHaptics) Vibrate(_ context.Context, p []time.Duration) error {
	h.patterns = append(h.patterns, p)
	return nil
}

type staticContacts []model.EmergencyContact

func (s staticContacts) Primary() []model.EmergencyContact {
	var out []model.EmergencyContact
	for _, c := range s {
		if c.IsPrimary() {
			out = append(out, c)
		}
	}
	return out
}

// unfilteredContacts returns every contact as primary, in source order.
type unfilteredContacts []model.EmergencyContact

func (s unfilteredContacts) Primary() []model.EmergencyContact { return s }

type staticProfile model.RiderProfile

func (p staticProfile) Profile() model.RiderProfile { return model.RiderProfile(p) }

type staticLocation struct {
	sample model.TelemetrySample
	ok     bool
}

func (l staticLocation) LastSample() (model.TelemetrySample, bool) { return l.sample, l.ok }

type memRecorder struct{ records []model.EpisodeRecord }

func (r *memRecorder) Record(_ context.Context, rec model.EpisodeRecord) error {
	r.records = append(r.records, rec)
	return nil
}
