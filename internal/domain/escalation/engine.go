// Package escalation implements the crash alert state machine: arming,
// the cancellable countdown, evidence capture control and the escalation
// to emergency contacts.
package escalation

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/ridershield/ridershield/internal/domain/model"
	"github.com/ridershield/ridershield/pkg/logger"
)

// State of the engine.
type State int

const (
	Idle State = iota
	Armed
	Escalating
	Resolved
)

func (s State) String() string {
	switch s {
	case Idle:
		return "idle"
	case Armed:
		return "armed"
	case Escalating:
		return "escalating"
	case Resolved:
		return "resolved"
	}
	return "unknown"
}

// MarshalText encodes the state by name.
func (s State) MarshalText() ([]byte, error) { return []byte(s.String()), nil }

// Snapshot is a consistent copy of the engine state.
type Snapshot struct {
	Seq                   uint64              `json:"seq"`
	State                 State               `json:"state"`
	Episode               string              `json:"episode,omitempty"`
	Severity              model.Severity      `json:"severity,omitempty"`
	RemainingSeconds      int                 `json:"remaining_seconds"`
	ArmedAt               *time.Time          `json:"armed_at,omitempty"`
	EvidenceCaptureActive bool                `json:"evidence_capture_active"`
	AutoSave              bool                `json:"auto_save"`
	Language              model.Language      `json:"language"`
	LastPayload           *model.AlertPayload `json:"last_payload,omitempty"`
}

// Engine owns the single CrashAlert. All transitions happen under mu; side
// effects on collaborators are dispatched without waiting on their outcome.
type Engine struct {
	mu            sync.Mutex
	state         State
	alert         *model.CrashAlert
	captureHandle string
	ticker        Timer
	captureTimer  Timer
	lastPayload   *model.AlertPayload
	observers     []func(Snapshot)
	seq           uint64

	// notifyMu orders deliveries; delivered is the newest Seq handed out.
	notifyMu  sync.Mutex
	delivered uint64

	countdown     int
	captureWindow time.Duration
	autoSave      bool
	lang          model.Language
	nearby        string

	scheduler Scheduler
	capture   Capture
	announcer Announcer
	dialer    Dialer
	haptics   Haptics
	contacts  ContactSource
	profile   ProfileSource
	location  LocationSource
	recorder  Recorder
	renderer  MessageRenderer
	now       func() time.Time
	newID     func() string
	log       logger.Logger
}

// New creates an idle engine.
func New(opts ...Option) *Engine {
	e := &Engine{
		countdown:     DefaultCountdownSeconds,
		captureWindow: DefaultCaptureWindow,
		autoSave:      true,
		lang:          model.LanguageEN,
		nearby:        DefaultNearbyLabel,
		renderer:      englishRenderer{},
		now:           time.Now,
		newID:         uuid.NewString,
		log:           logger.Nop(),
	}
	for _, opt := range opts {
		opt(e)
	}
	if e.countdown <= 0 {
		e.countdown = DefaultCountdownSeconds
	}
	if e.captureWindow <= 0 {
		e.captureWindow = DefaultCaptureWindow
	}
	return e
}

// Subscribe registers fn to receive a snapshot after every transition.
// Deliveries are serialized, so fn must not arm or cancel the engine itself.
func (e *Engine) Subscribe(fn func(Snapshot)) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.observers = append(e.observers, fn)
}

// Snapshot returns the current state.
func (e *Engine) Snapshot() Snapshot {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.snapshotLocked()
}

// SetLanguage selects the announcement language for later escalations.
func (e *Engine) SetLanguage(l model.Language) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.lang = l
}

// SetAutoSave toggles evidence capture on arming.
func (e *Engine) SetAutoSave(on bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.autoSave = on
}

// SetNearbyLabel replaces the nearby-location label.
func (e *Engine) SetNearbyLabel(label string) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.nearby = label
}

// Trigger arms a new alert. It returns false when an alert is already in
// progress; a second trigger never restarts the countdown or the capture.
func (e *Engine) Trigger(ctx context.Context, sev model.Severity) bool {
	sev, err := model.ParseSeverity(string(sev))
	if err != nil {
		e.log.Warn(ctx, "trigger rejected", logger.Error(err))
		return false
	}

	e.mu.Lock()
	if e.state != Idle {
		state := e.state
		e.mu.Unlock()
		e.log.Debug(ctx, "trigger ignored, alert already in progress", logger.String("state", state.String()))
		return false
	}

	episode := e.newID()
	e.alert = &model.CrashAlert{
		Episode:          episode,
		Severity:         sev,
		RemainingSeconds: e.countdown,
		ArmedAt:          e.now(),
	}
	e.state = Armed
	if e.scheduler != nil {
		e.ticker = e.scheduler.Every(TickInterval, func(ctx context.Context) { e.tick(ctx, episode) })
	}
	if e.autoSave {
		e.startCaptureLocked(ctx, episode)
	}
	snap := e.snapshotLocked()
	e.mu.Unlock()

	e.log.Info(ctx, "crash alert armed",
		logger.String("episode", episode),
		logger.String("severity", string(sev)),
		logger.Int("countdown", snap.RemainingSeconds),
		logger.Bool("capture", snap.EvidenceCaptureActive))

	if e.haptics != nil {
		if err := e.haptics.Vibrate(ctx, VibrationPattern); err != nil {
			e.log.Warn(ctx, "vibrate failed", logger.Error(err))
		}
	}
	e.notify(snap)
	return true
}

// Tick advances the countdown of the current alert by one second. It returns
// false when no alert is armed.
func (e *Engine) Tick(ctx context.Context) bool {
	return e.tick(ctx, "")
}

// Cancel disarms the current alert. Cancelling without an armed alert is a
// no-op and returns false.
func (e *Engine) Cancel(ctx context.Context, source model.CancelSource) bool {
	e.mu.Lock()
	if e.state != Armed {
		e.mu.Unlock()
		e.log.Debug(ctx, "cancel ignored, no armed alert", logger.String("source", string(source)))
		return false
	}

	alert := *e.alert
	e.stopTimersLocked()
	e.stopCaptureLocked(ctx)
	e.alert = nil
	e.state = Idle
	snap := e.snapshotLocked()
	e.mu.Unlock()

	e.log.Info(ctx, "crash alert cancelled",
		logger.String("episode", alert.Episode),
		logger.String("source", string(source)),
		logger.Int("remaining", alert.RemainingSeconds))

	e.notify(snap)
	e.record(ctx, model.EpisodeRecord{
		Episode:     alert.Episode,
		Severity:    alert.Severity,
		Outcome:     model.OutcomeCancelled,
		CancelledBy: string(source),
		ArmedAt:     alert.ArmedAt,
		EndedAt:     e.now(),
	})
	return true
}

// tick decrements the countdown. A non-empty episode ties the call to the
// alert that scheduled it; callbacks from an earlier alert are dropped.
func (e *Engine) tick(ctx context.Context, episode string) bool {
	e.mu.Lock()
	if e.state != Armed || (episode != "" && e.alert.Episode != episode) {
		e.mu.Unlock()
		e.log.Debug(ctx, "tick ignored", logger.String("episode", episode))
		return false
	}

	if e.alert.RemainingSeconds > 0 {
		e.alert.RemainingSeconds--
	}
	if e.alert.RemainingSeconds > 0 {
		snap := e.snapshotLocked()
		e.mu.Unlock()
		e.notify(snap)
		return true
	}

	// Countdown reached zero: Armed -> Escalating.
	alert := *e.alert
	e.stopTimersLocked()
	e.stopCaptureLocked(ctx)
	e.state = Escalating

	var sample model.TelemetrySample
	var hasSample bool
	if e.location != nil {
		sample, hasSample = e.location.LastSample()
	}
	var profile model.RiderProfile
	if e.profile != nil {
		profile = e.profile.Profile()
	}
	payload := BuildPayload(alert.Episode, alert.Severity, profile, sample, hasSample,
		e.nearby, e.renderer.Status(e.lang), e.now())
	payload.Message = e.renderer.Announcement(e.lang, payload)
	e.lastPayload = &payload
	snap := e.snapshotLocked()
	e.mu.Unlock()

	if !hasSample {
		e.log.Warn(ctx, "escalating without a location fix", logger.String("episode", alert.Episode))
	}
	e.notify(snap)
	dials := e.escalate(ctx, payload)

	e.mu.Lock()
	e.state = Resolved
	resolved := e.snapshotLocked()
	e.alert = nil
	e.state = Idle
	idle := e.snapshotLocked()
	e.mu.Unlock()

	e.notify(resolved)
	e.notify(idle)
	e.record(ctx, model.EpisodeRecord{
		Episode:  alert.Episode,
		Severity: alert.Severity,
		Outcome:  model.OutcomeEscalated,
		ArmedAt:  alert.ArmedAt,
		EndedAt:  e.now(),
		Payload:  &payload,
		Dials:    dials,
	})
	return true
}

// escalate hands the payload to the announcer without waiting, then dials the
// primary contacts one after another in priority order.
func (e *Engine) escalate(ctx context.Context, payload model.AlertPayload) []model.DialResult {
	e.log.Info(ctx, "escalating crash alert",
		logger.String("episode", payload.Episode),
		logger.String("severity", string(payload.Severity)),
		logger.String("message", payload.Message))

	if e.announcer != nil {
		actx := context.WithoutCancel(ctx)
		go func() {
			if err := e.announcer.Announce(actx, payload); err != nil {
				e.log.Warn(actx, "announcement failed", logger.String("episode", payload.Episode), logger.Error(err))
			}
		}()
	}

	var primary []model.EmergencyContact
	if e.contacts != nil {
		primary = dialSequence(e.contacts.Primary())
	}
	dials := make([]model.DialResult, 0, len(primary))
	for _, c := range primary {
		res := model.DialResult{ContactID: c.ID, Name: c.Name, Phone: c.Phone, Priority: c.Priority}
		e.log.Info(ctx, "sequential dialing",
			logger.Int("priority", c.Priority),
			logger.String("name", c.Name),
			logger.String("phone", c.Phone))

		err := ErrNoSink
		if e.dialer != nil {
			err = e.dialer.Dial(ctx, c)
		}
		if err != nil {
			res.Error = err.Error()
			e.log.Warn(ctx, "dial failed, continuing", logger.String("name", c.Name), logger.Error(err))
		}
		dials = append(dials, res)
	}
	return dials
}

// dialSequence keeps the primary contacts of cs ordered by ascending priority.
// Equal priorities keep the source order.
func dialSequence(cs []model.EmergencyContact) []model.EmergencyContact {
	out := make([]model.EmergencyContact, 0, len(cs))
	for _, c := range cs {
		if c.IsPrimary() {
			out = append(out, c)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Priority < out[j].Priority })
	return out
}

func (e *Engine) startCaptureLocked(ctx context.Context, episode string) {
	if e.capture == nil {
		return
	}
	handle, err := e.capture.StartCapture(ctx, e.captureWindow)
	if err != nil {
		e.log.Warn(ctx, "evidence capture unavailable", logger.Error(err))
		return
	}
	e.captureHandle = handle
	e.alert.EvidenceCaptureActive = true
	if e.scheduler != nil {
		e.captureTimer = e.scheduler.After(e.captureWindow, func(ctx context.Context) { e.captureElapsed(ctx, episode) })
	}
}

// captureElapsed ends the capture window of an alert that is still armed.
func (e *Engine) captureElapsed(ctx context.Context, episode string) {
	e.mu.Lock()
	if e.state != Armed || e.alert.Episode != episode || !e.alert.EvidenceCaptureActive {
		e.mu.Unlock()
		return
	}
	e.captureTimer = nil
	e.stopCaptureLocked(ctx)
	snap := e.snapshotLocked()
	e.mu.Unlock()

	e.log.Info(ctx, "evidence capture window elapsed", logger.String("episode", episode))
	e.notify(snap)
}

func (e *Engine) stopCaptureLocked(ctx context.Context) {
	if e.alert == nil || !e.alert.EvidenceCaptureActive {
		return
	}
	if err := e.capture.StopCapture(ctx, e.captureHandle); err != nil {
		e.log.Warn(ctx, "stop capture failed", logger.Error(err))
	}
	e.alert.EvidenceCaptureActive = false
	e.captureHandle = ""
}

func (e *Engine) stopTimersLocked() {
	if e.ticker != nil {
		e.ticker.Stop()
		e.ticker = nil
	}
	if e.captureTimer != nil {
		e.captureTimer.Stop()
		e.captureTimer = nil
	}
}

func (e *Engine) snapshotLocked() Snapshot {
	e.seq++
	s := Snapshot{
		Seq:              e.seq,
		State:            e.state,
		RemainingSeconds: e.countdown,
		AutoSave:         e.autoSave,
		Language:         e.lang,
		LastPayload:      e.lastPayload,
	}
	if e.alert != nil {
		armedAt := e.alert.ArmedAt
		s.Episode = e.alert.Episode
		s.Severity = e.alert.Severity
		s.RemainingSeconds = e.alert.RemainingSeconds
		s.ArmedAt = &armedAt
		s.EvidenceCaptureActive = e.alert.EvidenceCaptureActive
	}
	return s
}

// notify delivers s to every observer. Deliveries are serialized and a
// snapshot older than one already delivered is dropped, so observers never
// end on a stale state.
func (e *Engine) notify(s Snapshot) { //nolint:gocritic // hugeParam: snapshot copy
	e.notifyMu.Lock()
	defer e.notifyMu.Unlock()
	if s.Seq <= e.delivered {
		e.log.Debug(context.Background(), "stale snapshot dropped",
			logger.String("state", s.State.String()), logger.Int("remaining", s.RemainingSeconds))
		return
	}
	e.delivered = s.Seq

	e.mu.Lock()
	observers := make([]func(Snapshot), len(e.observers))
	copy(observers, e.observers)
	e.mu.Unlock()

	for _, fn := range observers {
		fn(s)
	}
}

func (e *Engine) record(ctx context.Context, rec model.EpisodeRecord) {
	if e.recorder == nil {
		return
	}
	if err := e.recorder.Record(ctx, rec); err != nil {
		e.log.Warn(ctx, "episode audit failed", logger.String("episode", rec.Episode), logger.Error(err))
	}
}
