package handlers

import (
	"errors"
	"net/http"
	"time"

	"github.com/eventease/server/internal/api/middleware"
	"github.com/eventease/server/internal/api/problem"
	"github.com/eventease/server/internal/domain/registrations"
)

type RegistrationsHandler struct {
	Registrations *registrations.Service
}

func NewRegistrationsHandler(service *registrations.Service) *RegistrationsHandler {
	return &RegistrationsHandler{Registrations: service}
}

type registrationResponse struct {
	ID        int64     `json:"id"`
	UserID    int64     `json:"user_id"`
	EventID   int64     `json:"event_id"`
	CreatedAt time.Time `json:"created_at"`
}

func toRegistrationResponse(reg registrations.Registration) registrationResponse {
	return registrationResponse{
		ID:        reg.ID,
		UserID:    reg.UserID,
		EventID:   reg.EventID,
		CreatedAt: reg.CreatedAt,
	}
}

// Register signs the authenticated user up for an event.
func (h *RegistrationsHandler) Register(w http.ResponseWriter, r *http.Request) {
	eventID, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	principal, ok := middleware.PrincipalFromContext(r.Context())
	if !ok {
		problem.Unauthorized(w, r, "authentication required")
		return
	}

	reg, err := h.Registrations.Register(r.Context(), principal.UserID, eventID)
	if err != nil {
		switch {
		case errors.Is(err, registrations.ErrEventNotFound):
			problem.NotFound(w, r, "event not found")
		case errors.Is(err, registrations.ErrAlreadyRegistered):
			problem.Conflict(w, r, "already registered for this event")
		case errors.Is(err, registrations.ErrEventFull):
			problem.Conflict(w, r, "event is full")
		default:
			problem.Internal(w, r, err)
		}
		return
	}
	writeJSON(w, http.StatusCreated, toRegistrationResponse(*reg))
}

// Unregister removes the authenticated user's registration for an event.
func (h *RegistrationsHandler) Unregister(w http.ResponseWriter, r *http.Request) {
	eventID, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	principal, ok := middleware.PrincipalFromContext(r.Context())
	if !ok {
		problem.Unauthorized(w, r, "authentication required")
		return
	}

	if err := h.Registrations.Unregister(r.Context(), principal.UserID, eventID); err != nil {
		if errors.Is(err, registrations.ErrNotFound) {
			problem.NotFound(w, r, "registration not found")
			return
		}
		problem.Internal(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// ListForEvent returns every registration for one event.
func (h *RegistrationsHandler) ListForEvent(w http.ResponseWriter, r *http.Request) {
	eventID, ok := pathID(w, r, "id")
	if !ok {
		return
	}

	listed, err := h.Registrations.ListForEvent(r.Context(), eventID)
	if err != nil {
		if errors.Is(err, registrations.ErrEventNotFound) {
			problem.NotFound(w, r, "event not found")
			return
		}
		problem.Internal(w, r, err)
		return
	}

	items := make([]registrationResponse, 0, len(listed))
	for _, reg := range listed {
		items = append(items, toRegistrationResponse(reg))
	}
	writeJSON(w, http.StatusOK, map[string]any{"items": items, "total": len(items)})
}
