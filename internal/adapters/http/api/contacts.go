package api

import (
	"context"
	"errors"
	"net/http"

	"github.com/ridershield/ridershield/internal/domain/contacts"
	"github.com/ridershield/ridershield/internal/domain/model"
	"github.com/ridershield/ridershield/internal/domain/types"
)

// ContactDependencies defines the directory operations.
type ContactDependencies interface {
	Contacts() types.ContactsView
	AddContact(ctx context.Context, name, phone string) (model.EmergencyContact, error)
	RemoveContact(ctx context.Context, id string) error
	ReassignContact(ctx context.Context, id string, priority int) (model.EmergencyContact, error)
}

// ContactHandler handles contact directory requests.
type ContactHandler struct {
	deps ContactDependencies
}

// NewContactHandler creates a new contact handler.
func NewContactHandler(deps ContactDependencies) *ContactHandler {
	return &ContactHandler{deps: deps}
}

// HandleList handles GET /contacts requests.
func (h *ContactHandler) HandleList(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, h.deps.Contacts())
}

// HandleAdd handles POST /contacts requests.
func (h *ContactHandler) HandleAdd(w http.ResponseWriter, r *http.Request) {
	const op = "api.add_contact"
	var req contactRequest
	if err := decode(r, &req, false); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", WrapKind(op, ErrBadRequest, err))
		return
	}
	c, err := h.deps.AddContact(r.Context(), req.Name, req.Phone)
	if err != nil {
		writeContactError(w, op, err)
		return
	}
	writeJSON(w, http.StatusCreated, c)
}

// HandleRemove handles DELETE /contacts/{id} requests.
func (h *ContactHandler) HandleRemove(w http.ResponseWriter, r *http.Request) {
	const op = "api.remove_contact"
	if err := h.deps.RemoveContact(r.Context(), r.PathValue("id")); err != nil {
		writeContactError(w, op, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// HandleReassign handles PUT /contacts/{id}/priority requests.
func (h *ContactHandler) HandleReassign(w http.ResponseWriter, r *http.Request) {
	const op = "api.reassign_contact"
	var req priorityRequest
	if err := decode(r, &req, false); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", WrapKind(op, ErrBadRequest, err))
		return
	}
	c, err := h.deps.ReassignContact(r.Context(), r.PathValue("id"), req.Priority)
	if err != nil {
		writeContactError(w, op, err)
		return
	}
	writeJSON(w, http.StatusOK, c)
}

func writeContactError(w http.ResponseWriter, op string, err error) {
	switch {
	case errors.Is(err, contacts.ErrNotFound):
		writeError(w, http.StatusNotFound, "not_found", WrapKind(op, ErrNotFound, err))
	case errors.Is(err, contacts.ErrProtected):
		writeError(w, http.StatusForbidden, "protected", WrapKind(op, ErrForbidden, err))
	case errors.Is(err, contacts.ErrInvalidPriority), errors.Is(err, contacts.ErrInvalidContact):
		writeError(w, http.StatusBadRequest, "bad_request", WrapKind(op, ErrBadRequest, err))
	default:
		writeError(w, http.StatusInternalServerError, "internal_error", WrapKind(op, ErrInternal, err))
	}
}
