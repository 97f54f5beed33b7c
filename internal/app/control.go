package service

import (
	"context"
	"fmt"
	"time"

	"github.com/ridershield/ridershield/internal/domain/escalation"
	"github.com/ridershield/ridershield/internal/domain/model"
	"github.com/ridershield/ridershield/internal/domain/types"
	"github.com/ridershield/ridershield/pkg/logger"
	"github.com/ridershield/ridershield/pkg/metrics"
)

// Trigger arms a crash alert and reports whether it did. An alert already in
// progress is left untouched and its snapshot returned.
func (s *Service) Trigger(ctx context.Context, severity string) (escalation.Snapshot, bool, error) {
	sev, err := model.ParseSeverity(severity)
	if err != nil {
		return escalation.Snapshot{}, false, err
	}
	if !s.engine.Trigger(ctx, sev) {
		metrics.RecordRetriggerIgnored()
		return s.engine.Snapshot(), false, nil
	}
	metrics.RecordAlertArmed(string(sev))
	return s.engine.Snapshot(), true, nil
}

// Cancel is the "I AM OK" action. It reports whether an alert was disarmed.
func (s *Service) Cancel(ctx context.Context) bool {
	return s.cancel(ctx, model.CancelManual)
}

func (s *Service) cancel(ctx context.Context, source model.CancelSource) bool {
	if !s.engine.Cancel(ctx, source) {
		return false
	}
	metrics.RecordAlertCancelled(string(source))
	return true
}

// StartRide latches riding mode on.
func (s *Service) StartRide(ctx context.Context) bool { return s.monitor.StartRiding(ctx) }

// StopRide latches riding mode off.
func (s *Service) StopRide(ctx context.Context) bool { return s.monitor.StopRiding(ctx) }

// SetListening toggles voice recognition and reports whether it is active.
func (s *Service) SetListening(ctx context.Context, active bool) bool {
	if active {
		s.interpreter.Start(ctx)
	} else {
		s.interpreter.Stop(ctx)
	}
	listening := s.interpreter.Listening()
	metrics.UpdateVoiceListening(listening)
	s.publishState(ctx, s.engine.Snapshot())
	return listening
}

// Contacts returns the directory in escalation order.
func (s *Service) Contacts() types.ContactsView {
	return types.NewContactsView(s.directory.All())
}

// AddContact appends a contact at the lowest priority.
func (s *Service) AddContact(ctx context.Context, name, phone string) (model.EmergencyContact, error) {
	return s.directory.Add(ctx, name, phone)
}

// RemoveContact deletes a contact.
func (s *Service) RemoveContact(ctx context.Context, id string) error {
	return s.directory.Remove(ctx, id)
}

// ReassignContact moves a contact to a new priority.
func (s *Service) ReassignContact(ctx context.Context, id string, priority int) (model.EmergencyContact, error) {
	if err := s.directory.Reassign(ctx, id, priority); err != nil {
		return model.EmergencyContact{}, err
	}
	c, _ := s.directory.Get(id)
	return c, nil
}

// Profile returns the rider profile.
func (s *Service) Profile() model.RiderProfile { return s.profile.Profile() }

// ReplaceProfile swaps the rider profile. Alerts already escalated keep the
// payload they were built with.
func (s *Service) ReplaceProfile(ctx context.Context, p model.RiderProfile) { //nolint:gocritic // hugeParam: stored by value
	s.profile.Replace(p)
	s.logger.Info(ctx, "rider profile replaced", logger.String("rider", p.FullName))
}

// SetLanguage switches announcement, feedback and recognition language.
func (s *Service) SetLanguage(ctx context.Context, l model.Language) {
	s.engine.SetLanguage(l)
	s.interpreter.SetLanguage(ctx, l)
	s.logger.Info(ctx, "language changed", logger.String("language", string(l)), logger.String("locale", l.Locale()))
	s.publishState(ctx, s.engine.Snapshot())
}

// RecentAlerts returns up to limit finished episodes, newest first.
func (s *Service) RecentAlerts(ctx context.Context, limit int) ([]model.EpisodeRecord, error) {
	recs, err := s.store.Recent(ctx, limit)
	if err != nil {
		return nil, fmt.Errorf("recent alerts: %w", err)
	}
	return recs, nil
}

// MaxAlertsLimit caps RecentAlerts requests from the API.
func (s *Service) MaxAlertsLimit() int { return s.cfg.MaxAlertsLimit }

// State returns the current screen state.
func (s *Service) State() types.StateView {
	return s.stateView(s.engine.Snapshot())
}

func (s *Service) stateView(snap escalation.Snapshot) types.StateView { //nolint:gocritic // hugeParam: snapshot copy
	v := types.StateView{
		Engine:         snap,
		Riding:         s.monitor.IsRiding(),
		Listening:      s.interpreter.Listening(),
		DeviceSessions: s.hub.Sessions(),
	}
	if cmd, ok := s.interpreter.LastCommand(); ok {
		v.LastCommand = &cmd
	}
	return v
}

// GetStats returns service statistics for monitoring.
func (s *Service) GetStats() map[string]interface{} {
	s.mu.RLock()
	defer s.mu.RUnlock()

	ctx := context.Background()
	snap := s.engine.Snapshot()
	stats := map[string]interface{}{
		"started":          s.started,
		"state":            snap.State.String(),
		"riding":           s.monitor.IsRiding(),
		"listening":        s.interpreter.Listening(),
		"language":         string(snap.Language),
		"contacts":         s.directory.Len(),
		"telemetrySamples": s.monitor.Samples(),
		"deviceSessions":   s.hub.Sessions(),
		"queueCapacity":    s.eventQueue.Capacity(),
		"dedupeSize":       s.deduper.Size(),
	}

	if s.started {
		queueLen := s.eventQueue.Len(ctx)
		stats["queueLength"] = queueLen
		stats["uptimeSeconds"] = int64(time.Since(s.startedAt).Seconds())
		metrics.UpdateQueueSize(queueLen)
	}
	if n, err := s.store.Count(ctx); err == nil {
		stats["auditRecords"] = n
	}
	return stats
}

// onSnapshot mirrors engine transitions into metrics and the device screen.
func (s *Service) onSnapshot(snap escalation.Snapshot) { //nolint:gocritic // hugeParam: observer signature
	ctx := context.Background()

	s.stateMu.Lock()
	prev := s.lastState
	s.lastState = snap.State
	s.stateMu.Unlock()

	if snap.State == escalation.Escalating && prev != escalation.Escalating {
		metrics.RecordEscalation()
	}
	if err := metrics.UpdateEngineState(snap.State.String()); err != nil {
		s.logger.Debug(ctx, "state gauge", logger.Error(err))
	}
	metrics.UpdateCountdownRemaining(snap.RemainingSeconds)
	s.publishState(ctx, snap)
}

func (s *Service) onRiding(riding bool) {
	metrics.UpdateRiding(riding)
	if s.engine != nil {
		s.publishState(context.Background(), s.engine.Snapshot())
	}
}

func (s *Service) publishState(ctx context.Context, snap escalation.Snapshot) { //nolint:gocritic // hugeParam: snapshot copy
	s.hub.PublishState(ctx, s.stateView(snap))
}
