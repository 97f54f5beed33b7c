package api

import (
	"context"
	"errors"
	"net/http"
	"strconv"

	"github.com/ridershield/ridershield/internal/domain/escalation"
	"github.com/ridershield/ridershield/internal/domain/model"
	"github.com/ridershield/ridershield/internal/domain/types"
)

// AlertDependencies defines the crash alert operations.
type AlertDependencies interface {
	Trigger(ctx context.Context, severity string) (escalation.Snapshot, bool, error)
	Cancel(ctx context.Context) bool
	State() types.StateView
	RecentAlerts(ctx context.Context, limit int) ([]model.EpisodeRecord, error)
}

// AlertHandler handles alert requests.
type AlertHandler struct {
	deps     AlertDependencies
	maxLimit int
}

// NewAlertHandler creates a new alert handler.
func NewAlertHandler(deps AlertDependencies, maxLimit int) *AlertHandler {
	if maxLimit < 1 {
		maxLimit = DefaultMaxAlerts
	}
	return &AlertHandler{deps: deps, maxLimit: maxLimit}
}

// HandleState handles GET /state requests.
func (h *AlertHandler) HandleState(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, h.deps.State())
}

// HandleTrigger handles POST /alert/trigger requests. An alert already in
// progress answers 409 with the running snapshot.
func (h *AlertHandler) HandleTrigger(w http.ResponseWriter, r *http.Request) {
	const op = "api.alert_trigger"
	var req triggerRequest
	if err := decode(r, &req, true); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", WrapKind(op, ErrBadRequest, err))
		return
	}
	snap, armed, err := h.deps.Trigger(r.Context(), req.Severity)
	if err != nil {
		if errors.Is(err, model.ErrInvalidSeverity) {
			writeError(w, http.StatusBadRequest, "invalid_severity", WrapKind(op, ErrBadRequest, err))
			return
		}
		writeError(w, http.StatusInternalServerError, "internal_error", Wrap(op, err))
		return
	}
	if !armed {
		writeJSON(w, http.StatusConflict, snap)
		return
	}
	writeJSON(w, http.StatusOK, snap)
}

// HandleCancel handles POST /alert/cancel requests. Cancelling with nothing
// armed is not an error.
func (h *AlertHandler) HandleCancel(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, cancelResponse{Cancelled: h.deps.Cancel(r.Context())})
}

// HandleRecent handles GET /alerts?limit=N requests.
func (h *AlertHandler) HandleRecent(w http.ResponseWriter, r *http.Request) {
	const op = "api.alerts"
	n := DefaultAlertsLimit
	if n > h.maxLimit {
		n = h.maxLimit
	}
	if limitStr := r.URL.Query().Get("limit"); limitStr != "" {
		v, err := strconv.Atoi(limitStr)
		if err != nil || v < 1 {
			writeError(w, http.StatusBadRequest, "bad_request", NewKind(op, ErrBadRequest))
			return
		}
		if v > h.maxLimit {
			writeError(w, http.StatusBadRequest, "limit_exceeded", NewKind(op, ErrBadRequest))
			return
		}
		n = v
	}
	recs, err := h.deps.RecentAlerts(r.Context(), n)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "internal_error", Wrap(op, err))
		return
	}
	if recs == nil {
		recs = []model.EpisodeRecord{}
	}
	writeJSON(w, http.StatusOK, recs)
}
