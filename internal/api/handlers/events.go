package handlers

import (
	"errors"
	"net/http"
	"time"

	"github.com/eventease/server/internal/api/middleware"
	"github.com/eventease/server/internal/api/pagination"
	"github.com/eventease/server/internal/api/problem"
	"github.com/eventease/server/internal/domain/events"
	"github.com/eventease/server/internal/domain/users"
	"github.com/eventease/server/internal/ingest"
)

type EventsHandler struct {
	Events   *events.Service
	Users    users.Repository
	Ingestor *ingest.Ingestor
}

func NewEventsHandler(eventsService *events.Service, usersRepo users.Repository, ingestor *ingest.Ingestor) *EventsHandler {
	return &EventsHandler{Events: eventsService, Users: usersRepo, Ingestor: ingestor}
}

type eventRequest struct {
	Title       string     `json:"title" validate:"required,max=300"`
	Description string     `json:"description"`
	Address     *string    `json:"address"`
	City        *string    `json:"city"`
	Country     *string    `json:"country"`
	Capacity    *int       `json:"capacity" validate:"omitempty,min=1"`
	Latitude    *float64   `json:"latitude" validate:"omitempty,latitude"`
	Longitude   *float64   `json:"longitude" validate:"omitempty,longitude"`
	Source      *string    `json:"source"`
	URL         *string    `json:"url" validate:"omitempty,url"`
	EventType   *string    `json:"event_type"`
	Image       *string    `json:"image"`
	MapImage    *string    `json:"map_image"`
	StartTime   time.Time  `json:"start_time" validate:"required"`
	EndTime     *time.Time `json:"end_time"`
}

func (in eventRequest) params() events.EventParams {
	return events.EventParams{
		Title:       in.Title,
		Description: in.Description,
		Address:     in.Address,
		City:        in.City,
		Country:     in.Country,
		Capacity:    in.Capacity,
		Latitude:    in.Latitude,
		Longitude:   in.Longitude,
		Source:      in.Source,
		URL:         in.URL,
		EventType:   in.EventType,
		Image:       in.Image,
		MapImage:    in.MapImage,
		StartTime:   in.StartTime,
		EndTime:     in.EndTime,
	}
}

type eventResponse struct {
	ID          int64      `json:"id"`
	Title       string     `json:"title"`
	Description string     `json:"description"`
	Address     *string    `json:"address,omitempty"`
	City        *string    `json:"city,omitempty"`
	Country     *string    `json:"country,omitempty"`
	Capacity    *int       `json:"capacity,omitempty"`
	Latitude    *float64   `json:"latitude,omitempty"`
	Longitude   *float64   `json:"longitude,omitempty"`
	Source      *string    `json:"source,omitempty"`
	URL         *string    `json:"url,omitempty"`
	EventType   *string    `json:"event_type,omitempty"`
	Image       *string    `json:"image,omitempty"`
	MapImage    *string    `json:"map_image,omitempty"`
	StartTime   time.Time  `json:"start_time"`
	EndTime     *time.Time `json:"end_time,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
}

func toEventResponse(e events.Event) eventResponse {
	return eventResponse{
		ID:          e.ID,
		Title:       e.Title,
		Description: e.Description,
		Address:     e.Address,
		City:        e.City,
		Country:     e.Country,
		Capacity:    e.Capacity,
		Latitude:    e.Latitude,
		Longitude:   e.Longitude,
		Source:      e.Source,
		URL:         e.URL,
		EventType:   e.EventType,
		Image:       e.Image,
		MapImage:    e.MapImage,
		StartTime:   e.StartTime,
		EndTime:     e.EndTime,
		CreatedAt:   e.CreatedAt,
		UpdatedAt:   e.UpdatedAt,
	}
}

// List returns ranked events for the viewer. An authenticated viewer's saved
// location profile drives the location-aware strategies; anonymous viewers
// get the same ranking with an empty profile.
func (h *EventsHandler) List(w http.ResponseWriter, r *http.Request) {
	opts, err := events.ParseRankOptions(r.URL.Query())
	if err != nil {
		problem.BadRequest(w, r, err, problem.WithDetail(err.Error()))
		return
	}
	limit, offset, err := pagination.ParseParams(r.URL.Query())
	if err != nil {
		problem.BadRequest(w, r, err, problem.WithDetail(err.Error()))
		return
	}

	viewer := h.viewerProfile(r)
	ranked, err := h.Events.Ranked(r.Context(), viewer, opts)
	if err != nil {
		problem.Internal(w, r, err)
		return
	}

	items := make([]eventResponse, 0, len(ranked))
	for _, e := range ranked {
		items = append(items, toEventResponse(e))
	}

	page, err := pagination.Window(items, limit, offset)
	if err != nil {
		problem.BadRequest(w, r, err, problem.WithDetail(err.Error()))
		return
	}
	writeJSON(w, http.StatusOK, page)
}

func (h *EventsHandler) viewerProfile(r *http.Request) events.ViewerProfile {
	principal, ok := middleware.PrincipalFromContext(r.Context())
	if !ok {
		return events.ViewerProfile{}
	}
	user, err := h.Users.GetByID(r.Context(), principal.UserID)
	if err != nil {
		return events.ViewerProfile{}
	}
	return events.ViewerProfile{
		Latitude:  user.Latitude,
		Longitude: user.Longitude,
		City:      user.City,
		Country:   user.Country,
	}
}

func (h *EventsHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}

	event, err := h.Events.GetByID(r.Context(), id)
	if err != nil {
		if errors.Is(err, events.ErrNotFound) {
			problem.NotFound(w, r, "event not found")
			return
		}
		problem.Internal(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toEventResponse(*event))
}

func (h *EventsHandler) Create(w http.ResponseWriter, r *http.Request) {
	var in eventRequest
	if !decodeValid(w, r, &in) {
		return
	}
	if in.EndTime != nil && !in.EndTime.After(in.StartTime) {
		problem.BadRequest(w, r, nil, problem.WithErrors(map[string]string{"end_time": "must be after start_time"}))
		return
	}

	event, err := h.Events.Create(r.Context(), in.params())
	if err != nil {
		if errors.Is(err, events.ErrConflict) {
			problem.Conflict(w, r, "an event with this source and url already exists")
			return
		}
		problem.Internal(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, toEventResponse(*event))
}

func (h *EventsHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}

	var in eventRequest
	if !decodeValid(w, r, &in) {
		return
	}
	if in.EndTime != nil && !in.EndTime.After(in.StartTime) {
		problem.BadRequest(w, r, nil, problem.WithErrors(map[string]string{"end_time": "must be after start_time"}))
		return
	}

	event, err := h.Events.Update(r.Context(), id, in.params())
	if err != nil {
		switch {
		case errors.Is(err, events.ErrNotFound):
			problem.NotFound(w, r, "event not found")
		case errors.Is(err, events.ErrConflict):
			problem.Conflict(w, r, "an event with this source and url already exists")
		default:
			problem.Internal(w, r, err)
		}
		return
	}
	writeJSON(w, http.StatusOK, toEventResponse(*event))
}

func (h *EventsHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}

	if err := h.Events.Delete(r.Context(), id); err != nil {
		if errors.Is(err, events.ErrNotFound) {
			problem.NotFound(w, r, "event not found")
			return
		}
		problem.Internal(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// Refresh pulls fresh events from every configured provider.
func (h *EventsHandler) Refresh(w http.ResponseWriter, r *http.Request) {
	summary, err := h.Ingestor.RunEvents(r.Context())
	if err != nil {
		problem.Write(w, r, http.StatusBadGateway, "about:blank", "Bad Gateway", err,
			problem.WithDetail("all event providers failed"))
		return
	}
	writeJSON(w, http.StatusOK, summary)
}
