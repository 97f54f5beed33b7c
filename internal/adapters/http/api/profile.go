package api

import (
	"context"
	"net/http"

	"github.com/ridershield/ridershield/internal/domain/model"
)

// ProfileDependencies defines rider profile and language operations.
type ProfileDependencies interface {
	Profile() model.RiderProfile
	ReplaceProfile(ctx context.Context, p model.RiderProfile)
	SetLanguage(ctx context.Context, l model.Language)
}

// ProfileHandler handles profile and language requests.
type ProfileHandler struct {
	deps ProfileDependencies
}

// NewProfileHandler creates a new profile handler.
func NewProfileHandler(deps ProfileDependencies) *ProfileHandler {
	return &ProfileHandler{deps: deps}
}

// HandleGet handles GET /profile requests.
func (h *ProfileHandler) HandleGet(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, h.deps.Profile())
}

// HandleReplace handles PUT /profile requests.
func (h *ProfileHandler) HandleReplace(w http.ResponseWriter, r *http.Request) {
	const op = "api.replace_profile"
	var req profileRequest
	if err := decode(r, &req, false); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", WrapKind(op, ErrBadRequest, err))
		return
	}
	p := req.profile()
	h.deps.ReplaceProfile(r.Context(), p)
	writeJSON(w, http.StatusOK, p)
}

// HandleLanguage handles PUT /language requests.
func (h *ProfileHandler) HandleLanguage(w http.ResponseWriter, r *http.Request) {
	const op = "api.set_language"
	var req languageRequest
	if err := decode(r, &req, false); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", WrapKind(op, ErrBadRequest, err))
		return
	}
	lang, err := model.ParseLanguage(req.Language)
	if err != nil {
		writeError(w, http.StatusBadRequest, "unknown_language", WrapKind(op, ErrBadRequest, err))
		return
	}
	h.deps.SetLanguage(r.Context(), lang)
	writeJSON(w, http.StatusOK, languageResponse{Language: lang, Locale: lang.Locale()})
}
