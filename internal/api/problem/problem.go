// Package problem renders API errors as RFC 7807 problem+json documents.
package problem

import (
	"encoding/json"
	"net/http"

	"github.com/rs/zerolog"
)

const contentType = "application/problem+json"

type Details struct {
	Type     string            `json:"type"`
	Title    string            `json:"title"`
	Status   int               `json:"status"`
	Detail   string            `json:"detail,omitempty"`
	Instance string            `json:"instance,omitempty"`
	Errors   map[string]string `json:"errors,omitempty"`
}

type Option func(*Details)

func WithDetail(detail string) Option {
	return func(p *Details) {
		p.Detail = detail
	}
}

// WithErrors attaches per-field validation messages.
func WithErrors(errs map[string]string) Option {
	return func(p *Details) {
		p.Errors = errs
	}
}

// Write renders a problem document and logs server errors. Detail falls
// back to the generic status text so internals never leak to clients.
func Write(w http.ResponseWriter, r *http.Request, status int, typ, title string, err error, opts ...Option) {
	p := Details{
		Type:   typ,
		Title:  title,
		Status: status,
	}

	for _, opt := range opts {
		opt(&p)
	}

	if p.Detail == "" {
		p.Detail = http.StatusText(status)
	}
	if r != nil {
		p.Instance = r.URL.Path

		logger := zerolog.Ctx(r.Context())
		if status >= 500 {
			logger.Error().
				Err(err).
				Int("status", status).
				Str("path", r.URL.Path).
				Str("method", r.Method).
				Msg(title)
		} else if err != nil {
			logger.Warn().
				Err(err).
				Int("status", status).
				Str("path", r.URL.Path).
				Str("method", r.Method).
				Msg(title)
		}
	}

	writeDetails(w, p)
}

func writeDetails(w http.ResponseWriter, p Details) {
	w.Header().Set("Content-Type", contentType)

	payload, err := json.Marshal(p)
	if err != nil {
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = w.Write([]byte(`{"type":"about:blank","title":"Internal Server Error","status":500}`))
		return
	}

	w.WriteHeader(p.Status)
	_, _ = w.Write(payload)
}

// Shorthand writers for the statuses handlers actually produce.

func NotFound(w http.ResponseWriter, r *http.Request, detail string) {
	Write(w, r, http.StatusNotFound, "about:blank", "Not Found", nil, WithDetail(detail))
}

func BadRequest(w http.ResponseWriter, r *http.Request, err error, opts ...Option) {
	Write(w, r, http.StatusBadRequest, "about:blank", "Bad Request", err, opts...)
}

func Conflict(w http.ResponseWriter, r *http.Request, detail string) {
	Write(w, r, http.StatusConflict, "about:blank", "Conflict", nil, WithDetail(detail))
}

func Unauthorized(w http.ResponseWriter, r *http.Request, detail string) {
	Write(w, r, http.StatusUnauthorized, "about:blank", "Unauthorized", nil, WithDetail(detail))
}

func Forbidden(w http.ResponseWriter, r *http.Request, detail string) {
	Write(w, r, http.StatusForbidden, "about:blank", "Forbidden", nil, WithDetail(detail))
}

func Internal(w http.ResponseWriter, r *http.Request, err error) {
	Write(w, r, http.StatusInternalServerError, "about:blank", "Internal Server Error", err)
}
