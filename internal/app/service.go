// Package service wires the RiderShield components together and implements
// the dependencies required by the HTTP API and the device hub.
package service

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/ridershield/ridershield/internal/adapters/device"
	eventqueue "github.com/ridershield/ridershield/internal/adapters/mq/queue"
	workerpool "github.com/ridershield/ridershield/internal/adapters/mq/worker"
	"github.com/ridershield/ridershield/internal/adapters/notify"
	"github.com/ridershield/ridershield/internal/adapters/repository"
	"github.com/ridershield/ridershield/internal/adapters/scheduler"
	"github.com/ridershield/ridershield/internal/config"
	"github.com/ridershield/ridershield/internal/domain/contacts"
	"github.com/ridershield/ridershield/internal/domain/dedupe"
	"github.com/ridershield/ridershield/internal/domain/escalation"
	"github.com/ridershield/ridershield/internal/domain/telemetry"
	"github.com/ridershield/ridershield/internal/domain/voice"
	"github.com/ridershield/ridershield/pkg/i18n"
	"github.com/ridershield/ridershield/pkg/logger"
	"github.com/ridershield/ridershield/pkg/metrics"
)

const redisPingTimeout = 2 * time.Second

// Service owns every component of one rider's escalation system.
type Service struct {
	mu sync.RWMutex

	cfg      *config.Config
	renderer catalogRenderer

	// Core components
	directory   *contacts.Directory
	profile     *profileStore
	monitor     *telemetry.Monitor
	interpreter *voice.Interpreter
	engine      *escalation.Engine
	deduper     dedupe.Deduper
	eventQueue  *eventqueue.InMemoryQueue
	worker      *workerpool.Worker
	scheduler   *scheduler.Scheduler
	hub         *device.Hub
	store       repository.Store
	redis       *redis.Client

	schedulerOverride escalation.Scheduler
	extraAnnouncers   []notify.Named[notify.Announcer]

	// Last engine state seen by the snapshot observer.
	stateMu   sync.Mutex
	lastState escalation.State

	// State
	started   bool
	startedAt time.Time
	cancelRun context.CancelFunc

	logger logger.Logger
}

// New builds the service from cfg. Nothing runs until Start.
func New(ctx context.Context, cfg *config.Config, opts ...Option) (*Service, error) {
	if cfg == nil {
		cfg = config.New(ctx)
		cfg.Contacts = config.DefaultContacts()
	}
	s := &Service{cfg: cfg, profile: &profileStore{profile: cfg.Rider}}
	for _, opt := range opts {
		opt(s)
	}
	if s.logger == nil {
		s.logger = logger.Get()
	}

	catalog, err := i18n.New(cfg.Lang().Tag())
	if err != nil {
		return nil, fmt.Errorf("load locale catalog: %w", err)
	}
	s.renderer = catalogRenderer{catalog: catalog}

	s.directory = contacts.NewDirectory(contacts.WithLogger(s.logger.Named("contacts")))
	s.directory.Seed(cfg.Contacts...)

	s.monitor = telemetry.NewMonitor(
		telemetry.WithRidingSpeed(cfg.RidingSpeedKmh),
		telemetry.WithLogger(s.logger.Named("telemetry")),
		telemetry.WithRidingObserver(s.onRiding),
	)

	s.deduper = dedupe.NewInMemoryDeduper(dedupe.WithMaxSize(cfg.DedupeSize))
	s.eventQueue = eventqueue.NewInMemoryQueue(eventqueue.WithCapacity(cfg.EventQueueSize))
	s.hub = device.NewHub(device.WithLogger(s.logger.Named("device")), device.WithInbound(s))

	sch := s.schedulerOverride
	if sch == nil {
		s.scheduler = scheduler.New(s.eventQueue, scheduler.WithLogger(s.logger.Named("scheduler")))
		sch = s.scheduler
	}

	if s.store == nil {
		s.store = s.openStore(ctx)
	}

	logSink := notify.NewLogSink(s.logger.Named("notify"))
	announcers := []notify.Named[notify.Announcer]{
		{Name: "log", Sink: logSink},
		{Name: "device", Sink: s.hub},
	}
	if cfg.FirebaseCredentials != "" {
		push, err := notify.NewFirebaseAnnouncer(ctx, cfg.FirebaseCredentials, cfg.FirebaseTopic, s.logger.Named("fcm"))
		if err != nil {
			s.logger.Warn(ctx, "push announcements disabled", logger.Error(err))
		} else {
			announcers = append(announcers, notify.Named[notify.Announcer]{Name: "fcm", Sink: push})
		}
	}
	announcers = append(announcers, s.extraAnnouncers...)
	dialer := notify.NewDialFanout(s.logger.Named("notify"),
		notify.Named[notify.Dialer]{Name: "log", Sink: logSink},
		notify.Named[notify.Dialer]{Name: "device", Sink: s.hub},
	)

	s.engine = escalation.New(
		escalation.WithScheduler(sch),
		escalation.WithCapture(meteredCapture{next: s.hub}),
		escalation.WithAnnouncer(notify.NewAnnounceFanout(s.logger.Named("notify"), announcers...)),
		escalation.WithDialer(meteredDialer{origin: "escalation", next: dialer}),
		escalation.WithHaptics(s.hub),
		escalation.WithContacts(s.directory),
		escalation.WithProfile(s.profile),
		escalation.WithLocation(s.monitor),
		escalation.WithRecorder(repository.Instrumented{Store: s.store}),
		escalation.WithRenderer(s.renderer),
		escalation.WithLanguage(cfg.Lang()),
		escalation.WithAutoSave(cfg.AutoSave),
		escalation.WithNearbyLabel(cfg.NearbyLabel),
		escalation.WithCaptureWindow(cfg.CaptureWindow()),
		escalation.WithCountdown(cfg.CountdownSeconds),
		escalation.WithLogger(s.logger.Named("escalation")),
	)
	s.engine.Subscribe(s.onSnapshot)

	s.interpreter = voice.NewInterpreter(
		voice.WithRecognizer(s.hub),
		voice.WithDialer(meteredDialer{origin: "voice", next: dialer}),
		voice.WithCanceller(cancellerFunc(s.cancel)),
		voice.WithContacts(s.directory),
		voice.WithLexicon(s.renderer.lexicon()),
		voice.WithLanguage(cfg.Lang()),
		voice.WithFeedback(s.renderer.Calling),
		voice.WithLogger(s.logger.Named("voice")),
	)

	s.worker = workerpool.New(s.eventQueue, s, workerpool.WithLogger(s.logger))
	return s, nil
}

// openStore picks Redis when configured and reachable, memory otherwise.
func (s *Service) openStore(ctx context.Context) repository.Store {
	opts := []repository.Option{
		repository.WithCapacity(s.cfg.AuditCapacity),
		repository.WithKey(s.cfg.RedisKey),
	}
	if s.cfg.RedisAddr == "" {
		return repository.NewMemoryStore(opts...)
	}

	client := redis.NewClient(&redis.Options{
		Addr:     s.cfg.RedisAddr,
		Password: s.cfg.RedisPassword,
		DB:       s.cfg.RedisDB,
	})
	store := repository.NewRedisStore(client, opts...)

	pingCtx, cancel := context.WithTimeout(ctx, redisPingTimeout)
	defer cancel()
	if err := store.Ping(pingCtx); err != nil {
		s.logger.Warn(ctx, "redis unavailable, keeping audit trail in memory",
			logger.String("addr", s.cfg.RedisAddr), logger.Error(err))
		_ = client.Close()
		return repository.NewMemoryStore(opts...)
	}
	s.redis = client
	s.logger.Info(ctx, "using redis audit store", logger.String("addr", s.cfg.RedisAddr))
	return store
}

// Start runs the dispatch loop and the scheduler.
func (s *Service) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.started {
		return nil
	}

	s.logger.Info(ctx, "starting ridershield service...")

	runCtx, cancel := context.WithCancel(context.WithoutCancel(ctx))
	s.cancelRun = cancel
	if s.scheduler != nil {
		s.scheduler.Start()
	}
	go s.worker.Run(runCtx)

	metrics.UpdateVoiceListening(false)
	metrics.UpdateRiding(false)
	if err := metrics.UpdateEngineState(escalation.Idle.String()); err != nil {
		s.logger.Debug(ctx, "state gauge", logger.Error(err))
	}

	s.started = true
	s.startedAt = time.Now()
	s.logger.Info(ctx, "ridershield service started",
		logger.Int("queueSize", s.eventQueue.Capacity()),
		logger.Int("contacts", s.directory.Len()),
		logger.Int("countdown", s.cfg.CountdownSeconds),
		logger.String("language", s.cfg.Language),
	)
	return nil
}

// Stop gracefully shuts down the service. A stopped service cannot be restarted.
func (s *Service) Stop(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.started {
		return nil
	}

	s.logger.Info(ctx, "stopping ridershield service...")

	if s.scheduler != nil {
		s.scheduler.Stop()
	}
	err := s.worker.Shutdown(ctx)
	s.cancelRun()
	_ = s.eventQueue.Close()
	s.hub.Close()
	if s.redis != nil {
		if cerr := s.redis.Close(); cerr != nil {
			s.logger.Warn(ctx, "redis close failed", logger.Error(cerr))
		}
	}

	s.started = false
	s.logger.Info(ctx, "ridershield service stopped")
	return err
}

// Hub exposes the device websocket endpoint.
func (s *Service) Hub() *device.Hub { return s.hub }

// Started reports whether Start has run.
func (s *Service) Started() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.started
}
