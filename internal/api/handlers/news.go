package handlers

import (
	"errors"
	"net/http"
	"time"

	"github.com/eventease/server/internal/api/pagination"
	"github.com/eventease/server/internal/api/problem"
	"github.com/eventease/server/internal/domain/news"
	"github.com/eventease/server/internal/ingest"
)

type NewsHandler struct {
	News     *news.Service
	Ingestor *ingest.Ingestor
}

func NewNewsHandler(newsService *news.Service, ingestor *ingest.Ingestor) *NewsHandler {
	return &NewsHandler{News: newsService, Ingestor: ingestor}
}

type newsRequest struct {
	Title       string    `json:"title" validate:"required,max=300"`
	Summary     *string   `json:"summary"`
	URL         string    `json:"url" validate:"required,url"`
	ImageURL    *string   `json:"image_url" validate:"omitempty,url"`
	Source      *string   `json:"source"`
	Topic       string    `json:"topic"`
	PublishedAt time.Time `json:"published_at" validate:"required"`
}

func (in newsRequest) params() news.ItemParams {
	return news.ItemParams{
		Title:       in.Title,
		Summary:     in.Summary,
		URL:         in.URL,
		ImageURL:    in.ImageURL,
		Source:      in.Source,
		Topic:       in.Topic,
		PublishedAt: in.PublishedAt,
	}
}

type newsResponse struct {
	ID          int64     `json:"id"`
	Title       string    `json:"title"`
	Summary     *string   `json:"summary,omitempty"`
	URL         string    `json:"url"`
	ImageURL    *string   `json:"image_url,omitempty"`
	Source      *string   `json:"source,omitempty"`
	Topic       string    `json:"topic"`
	PublishedAt time.Time `json:"published_at"`
	CreatedAt   time.Time `json:"created_at"`
}

func toNewsResponse(item news.Item) newsResponse {
	return newsResponse{
		ID:          item.ID,
		Title:       item.Title,
		Summary:     item.Summary,
		URL:         item.URL,
		ImageURL:    item.ImageURL,
		Source:      item.Source,
		Topic:       item.Topic,
		PublishedAt: item.PublishedAt,
		CreatedAt:   item.CreatedAt,
	}
}

// List returns news items newest first, optionally filtered by topic.
func (h *NewsHandler) List(w http.ResponseWriter, r *http.Request) {
	limit, offset, err := pagination.ParseParams(r.URL.Query())
	if err != nil {
		problem.BadRequest(w, r, err, problem.WithDetail(err.Error()))
		return
	}

	listed, err := h.News.List(r.Context(), r.URL.Query().Get("topic"))
	if err != nil {
		problem.Internal(w, r, err)
		return
	}

	items := make([]newsResponse, 0, len(listed))
	for _, item := range listed {
		items = append(items, toNewsResponse(item))
	}

	page, err := pagination.Window(items, limit, offset)
	if err != nil {
		problem.BadRequest(w, r, err, problem.WithDetail(err.Error()))
		return
	}
	writeJSON(w, http.StatusOK, page)
}

func (h *NewsHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}

	item, err := h.News.GetByID(r.Context(), id)
	if err != nil {
		if errors.Is(err, news.ErrNotFound) {
			problem.NotFound(w, r, "news item not found")
			return
		}
		problem.Internal(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toNewsResponse(*item))
}

func (h *NewsHandler) Create(w http.ResponseWriter, r *http.Request) {
	var in newsRequest
	if !decodeValid(w, r, &in) {
		return
	}

	item, err := h.News.Create(r.Context(), in.params())
	if err != nil {
		if errors.Is(err, news.ErrConflict) {
			problem.Conflict(w, r, "a news item with this url already exists")
			return
		}
		problem.Internal(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, toNewsResponse(*item))
}

func (h *NewsHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}

	var in newsRequest
	if !decodeValid(w, r, &in) {
		return
	}

	item, err := h.News.Update(r.Context(), id, in.params())
	if err != nil {
		switch {
		case errors.Is(err, news.ErrNotFound):
			problem.NotFound(w, r, "news item not found")
		case errors.Is(err, news.ErrConflict):
			problem.Conflict(w, r, "a news item with this url already exists")
		default:
			problem.Internal(w, r, err)
		}
		return
	}
	writeJSON(w, http.StatusOK, toNewsResponse(*item))
}

func (h *NewsHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}

	if err := h.News.Delete(r.Context(), id); err != nil {
		if errors.Is(err, news.ErrNotFound) {
			problem.NotFound(w, r, "news item not found")
			return
		}
		problem.Internal(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// Refresh pulls fresh items from every configured news feed.
func (h *NewsHandler) Refresh(w http.ResponseWriter, r *http.Request) {
	summary, err := h.Ingestor.RunNews(r.Context())
	if err != nil {
		problem.Write(w, r, http.StatusBadGateway, "about:blank", "Bad Gateway", err,
			problem.WithDetail("all news providers failed"))
		return
	}
	writeJSON(w, http.StatusOK, summary)
}
