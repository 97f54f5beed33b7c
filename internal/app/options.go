package service

import (
	"github.com/ridershield/ridershield/internal/adapters/notify"
	"github.com/ridershield/ridershield/internal/adapters/repository"
	"github.com/ridershield/ridershield/internal/domain/escalation"
	"github.com/ridershield/ridershield/pkg/logger"
)

// Option applies a configuration option to the Service.
type Option func(*Service)

// WithLogger sets a custom logger for the service.
func WithLogger(l logger.Logger) Option {
	return func(s *Service) {
		if l != nil {
			s.logger = l
		}
	}
}

// WithStore replaces the episode audit store chosen from configuration.
func WithStore(store repository.Store) Option {
	return func(s *Service) {
		if store != nil {
			s.store = store
		}
	}
}

// WithScheduler replaces the cron backed scheduler.
func WithScheduler(sch escalation.Scheduler) Option {
	return func(s *Service) {
		if sch != nil {
			s.schedulerOverride = sch
		}
	}
}

// WithAnnouncer adds an announcement sink next to the log and device sinks.
func WithAnnouncer(name string, a notify.Announcer) Option {
	return func(s *Service) {
		if a != nil {
			s.extraAnnouncers = append(s.extraAnnouncers, notify.Named[notify.Announcer]{Name: name, Sink: a})
		}
	}
}
