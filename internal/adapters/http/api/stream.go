package api

import (
	"context"
	"net/http"
	"time"

	"github.com/ridershield/ridershield/internal/domain/model"
)

// StreamDependencies defines the pushed inputs and the mode toggles.
type StreamDependencies interface {
	// Submit queues a stream event. Duplicates are reported, not queued.
	Submit(ctx context.Context, e model.Event) (duplicate bool, err error)
	StartRide(ctx context.Context) bool
	StopRide(ctx context.Context) bool
	SetListening(ctx context.Context, active bool) bool
}

// StreamHandler handles telemetry, transcripts and mode toggles.
type StreamHandler struct {
	deps StreamDependencies
	now  func() time.Time
}

// NewStreamHandler creates a new stream handler.
func NewStreamHandler(deps StreamDependencies) *StreamHandler {
	return &StreamHandler{deps: deps, now: time.Now}
}

// HandleTelemetry handles POST /telemetry requests.
func (h *StreamHandler) HandleTelemetry(w http.ResponseWriter, r *http.Request) {
	const op = "api.post_telemetry"
	var req telemetryRequest
	if err := decode(r, &req, false); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", WrapKind(op, ErrBadRequest, err))
		return
	}
	h.submit(w, r, op, model.Event{
		EventID:   req.EventID,
		Kind:      model.EventTelemetry,
		Telemetry: req.sample(h.now()),
	})
}

// HandleTranscript handles POST /voice/transcripts requests.
func (h *StreamHandler) HandleTranscript(w http.ResponseWriter, r *http.Request) {
	const op = "api.post_transcript"
	var req transcriptRequest
	if err := decode(r, &req, false); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", WrapKind(op, ErrBadRequest, err))
		return
	}
	h.submit(w, r, op, model.Event{
		EventID:    req.EventID,
		Kind:       model.EventTranscript,
		Transcript: req.Text,
	})
}

func (h *StreamHandler) submit(w http.ResponseWriter, r *http.Request, op string, e model.Event) { //nolint:gocritic // hugeParam: queued by value
	duplicate, err := h.deps.Submit(r.Context(), e)
	if err != nil {
		writeError(w, http.StatusTooManyRequests, "backpressure", WrapKind(op, ErrBackpressure, err))
		return
	}
	if duplicate {
		writeJSON(w, http.StatusOK, ackResponse{Status: "duplicate", Duplicate: true})
		return
	}
	writeJSON(w, http.StatusAccepted, ackResponse{Status: "accepted", Duplicate: false})
}

// HandleRideStart handles POST /ride/start requests.
func (h *StreamHandler) HandleRideStart(w http.ResponseWriter, r *http.Request) {
	changed := h.deps.StartRide(r.Context())
	writeJSON(w, http.StatusOK, rideResponse{Riding: true, Changed: changed})
}

// HandleRideStop handles POST /ride/stop requests.
func (h *StreamHandler) HandleRideStop(w http.ResponseWriter, r *http.Request) {
	changed := h.deps.StopRide(r.Context())
	writeJSON(w, http.StatusOK, rideResponse{Riding: false, Changed: changed})
}

// HandleListen handles POST /voice/listen requests.
func (h *StreamHandler) HandleListen(w http.ResponseWriter, r *http.Request) {
	const op = "api.voice_listen"
	var req listenRequest
	if err := decode(r, &req, false); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", WrapKind(op, ErrBadRequest, err))
		return
	}
	writeJSON(w, http.StatusOK, listenResponse{Listening: h.deps.SetListening(r.Context(), *req.Active)})
}
