package escalation

import (
	"time"

	"github.com/ridershield/ridershield/internal/domain/model"
	"github.com/ridershield/ridershield/pkg/logger"
)

// Defaults.
const (
	DefaultCountdownSeconds = 30
	DefaultCaptureWindow    = 15 * time.Second
	TickInterval            = time.Second
)

// VibrationPattern is played when an alert arms.
var VibrationPattern = []time.Duration{ //nolint:gochecknoglobals // fixed pattern
	1000 * time.Millisecond, 500 * time.Millisecond,
	1000 * time.Millisecond, 500 * time.Millisecond,
	1000 * time.Millisecond,
}

// Option configures an Engine.
type Option func(*Engine)

func WithScheduler(s Scheduler) Option         { return func(e *Engine) { e.scheduler = s } }
func WithCapture(c Capture) Option             { return func(e *Engine) { e.capture = c } }
func WithAnnouncer(a Announcer) Option         { return func(e *Engine) { e.announcer = a } }
func WithDialer(d Dialer) Option               { return func(e *Engine) { e.dialer = d } }
func WithHaptics(h Haptics) Option             { return func(e *Engine) { e.haptics = h } }
func WithContacts(c ContactSource) Option      { return func(e *Engine) { e.contacts = c } }
func WithProfile(p ProfileSource) Option       { return func(e *Engine) { e.profile = p } }
func WithLocation(l LocationSource) Option     { return func(e *Engine) { e.location = l } }
func WithRecorder(r Recorder) Option           { return func(e *Engine) { e.recorder = r } }
func WithLanguage(l model.Language) Option     { return func(e *Engine) { e.lang = l } }
func WithAutoSave(on bool) Option              { return func(e *Engine) { e.autoSave = on } }
func WithClock(now func() time.Time) Option    { return func(e *Engine) { e.now = now } }
func WithIDGenerator(gen func() string) Option { return func(e *Engine) { e.newID = gen } }
func WithRenderer(r MessageRenderer) Option    { return func(e *Engine) { e.renderer = r } }
func WithLogger(l logger.Logger) Option        { return func(e *Engine) { e.log = l } }
func WithNearbyLabel(label string) Option      { return func(e *Engine) { e.nearby = label } }
func WithCaptureWindow(d time.Duration) Option { return func(e *Engine) { e.captureWindow = d } }
func WithCountdown(seconds int) Option         { return func(e *Engine) { e.countdown = seconds } }
