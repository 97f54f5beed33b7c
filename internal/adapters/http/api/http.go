// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"context"
	"net/http"
)

// Default limits for GET /alerts.
const (
	DefaultAlertsLimit = 20
	DefaultMaxAlerts   = 100
)

// Dependencies required by HTTP handlers. Using an interface bundle keeps
// the handler layer loosely coupled to implementations in other packages.
type Dependencies interface {
	StatsProvider
	AlertDependencies
	StreamDependencies
	ContactDependencies
	ProfileDependencies
}

// Server wires HTTP routes for the business API.
type Server struct {
	healthHandler  *HealthHandler
	statsHandler   *StatsHandler
	alertHandler   *AlertHandler
	streamHandler  *StreamHandler
	contactHandler *ContactHandler
	profileHandler *ProfileHandler
	device         http.Handler
}

// Option configures the Server.
type Option func(*Server)

// WithMaxAlerts caps GET /alerts?limit.
func WithMaxAlerts(n int) Option {
	return func(s *Server) {
		if n > 0 {
			s.alertHandler.maxLimit = n
		}
	}
}

// WithDeviceHandler mounts the phone websocket at /ws.
func WithDeviceHandler(h http.Handler) Option {
	return func(s *Server) { s.device = h }
}

// NewServer creates a new API server with all handlers.
func NewServer(deps Dependencies, opts ...Option) *Server {
	s := &Server{
		healthHandler:  NewHealthHandler(),
		statsHandler:   NewStatsHandler(deps),
		alertHandler:   NewAlertHandler(deps, DefaultMaxAlerts),
		streamHandler:  NewStreamHandler(deps),
		contactHandler: NewContactHandler(deps),
		profileHandler: NewProfileHandler(deps),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Register attaches all HTTP routes to mux.
func (s *Server) Register(_ context.Context, mux *http.ServeMux) {
	mux.HandleFunc("GET /healthz", MetricsMiddleware(s.healthHandler.HandleHealth, "healthz"))
	mux.HandleFunc("GET /stats", MetricsMiddleware(s.statsHandler.HandleStats, "stats"))

	mux.HandleFunc("GET /state", MetricsMiddleware(s.alertHandler.HandleState, "state"))
	mux.HandleFunc("POST /alert/trigger", MetricsMiddleware(s.alertHandler.HandleTrigger, "alert_trigger"))
	mux.HandleFunc("POST /alert/cancel", MetricsMiddleware(s.alertHandler.HandleCancel, "alert_cancel"))
	mux.HandleFunc("GET /alerts", MetricsMiddleware(s.alertHandler.HandleRecent, "alerts"))

	mux.HandleFunc("POST /telemetry", MetricsMiddleware(s.streamHandler.HandleTelemetry, "telemetry"))
	mux.HandleFunc("POST /ride/start", MetricsMiddleware(s.streamHandler.HandleRideStart, "ride_start"))
	mux.HandleFunc("POST /ride/stop", MetricsMiddleware(s.streamHandler.HandleRideStop, "ride_stop"))
	mux.HandleFunc("POST /voice/listen", MetricsMiddleware(s.streamHandler.HandleListen, "voice_listen"))
	mux.HandleFunc("POST /voice/transcripts", MetricsMiddleware(s.streamHandler.HandleTranscript, "voice_transcripts"))

	mux.HandleFunc("GET /contacts", MetricsMiddleware(s.contactHandler.HandleList, "contacts"))
	mux.HandleFunc("POST /contacts", MetricsMiddleware(s.contactHandler.HandleAdd, "contacts"))
	mux.HandleFunc("DELETE /contacts/{id}", MetricsMiddleware(s.contactHandler.HandleRemove, "contacts"))
	mux.HandleFunc("PUT /contacts/{id}/priority", MetricsMiddleware(s.contactHandler.HandleReassign, "contacts_priority"))

	mux.HandleFunc("GET /profile", MetricsMiddleware(s.profileHandler.HandleGet, "profile"))
	mux.HandleFunc("PUT /profile", MetricsMiddleware(s.profileHandler.HandleReplace, "profile"))
	mux.HandleFunc("PUT /language", MetricsMiddleware(s.profileHandler.HandleLanguage, "language"))

	if s.device != nil {
		mux.Handle("GET /ws", s.device)
	}
}
