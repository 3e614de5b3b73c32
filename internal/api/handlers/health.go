package handlers

import (
	"context"
	"net/http"
	"time"
)

// Pinger is the slice of the database pool the health check needs.
type Pinger interface {
	Ping(ctx context.Context) error
}

type HealthHandler struct {
	DB      Pinger
	Version string
}

func NewHealthHandler(db Pinger, version string) *HealthHandler {
	return &HealthHandler{DB: db, Version: version}
}

type healthCheck struct {
	Status    string `json:"status"`
	LatencyMs int64  `json:"latency_ms"`
	Message   string `json:"message,omitempty"`
}

type healthResponse struct {
	Status    string                 `json:"status"`
	Version   string                 `json:"version"`
	Checks    map[string]healthCheck `json:"checks"`
	Timestamp string                 `json:"timestamp"`
}

func (h *HealthHandler) Health(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	checks := map[string]healthCheck{
		"database": h.checkDatabase(ctx),
	}

	status := "healthy"
	code := http.StatusOK
	for _, check := range checks {
		if check.Status == "fail" {
			status = "unhealthy"
			code = http.StatusServiceUnavailable
			break
		}
	}

	writeJSON(w, code, healthResponse{
		Status:    status,
		Version:   h.Version,
		Checks:    checks,
		Timestamp: time.Now().UTC().Format(time.RFC3339),
	})
}

func (h *HealthHandler) checkDatabase(ctx context.Context) healthCheck {
	start := time.Now()
	if h.DB == nil {
		return healthCheck{Status: "fail", Message: "no database pool"}
	}
	if err := h.DB.Ping(ctx); err != nil {
		return healthCheck{Status: "fail", Message: err.Error(), LatencyMs: time.Since(start).Milliseconds()}
	}
	return healthCheck{Status: "pass", LatencyMs: time.Since(start).Milliseconds()}
}
