// Package api assembles the HTTP surface: routes, middleware, and metrics.
package api

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"

	"github.com/eventease/server/internal/api/handlers"
	"github.com/eventease/server/internal/api/middleware"
	"github.com/eventease/server/internal/auth"
	"github.com/eventease/server/internal/metrics"
)

// Deps carries the constructed handlers and shared services the router wires
// together.
type Deps struct {
	Events        *handlers.EventsHandler
	News          *handlers.NewsHandler
	Registrations *handlers.RegistrationsHandler
	Users         *handlers.UsersHandler
	Health        *handlers.HealthHandler
	JWT           *auth.JWTManager
	Logger        zerolog.Logger
}

func NewRouter(deps Deps) http.Handler {
	mux := http.NewServeMux()

	requireAuth := middleware.RequireAuth(deps.JWT)
	optionalAuth := middleware.OptionalAuth(deps.JWT)
	admin := func(h http.HandlerFunc) http.Handler {
		return requireAuth(middleware.RequireAdmin(h))
	}

	mux.HandleFunc("GET /healthz", deps.Health.Health)
	mux.Handle("GET /metrics", promhttp.HandlerFor(metrics.Registry, promhttp.HandlerOpts{}))

	mux.HandleFunc("POST /v1/auth/signup", deps.Users.Signup)
	mux.HandleFunc("POST /v1/auth/login", deps.Users.Login)

	mux.Handle("GET /v1/users/me", requireAuth(http.HandlerFunc(deps.Users.Me)))
	mux.Handle("PUT /v1/users/me/location", requireAuth(http.HandlerFunc(deps.Users.UpdateLocation)))
	mux.Handle("GET /v1/users", admin(deps.Users.List))
	mux.Handle("GET /v1/users/{id}", admin(deps.Users.Get))
	mux.Handle("PUT /v1/users/{id}", admin(deps.Users.Update))
	mux.Handle("DELETE /v1/users/{id}", admin(deps.Users.Delete))

	mux.Handle("GET /v1/events", optionalAuth(http.HandlerFunc(deps.Events.List)))
	mux.HandleFunc("GET /v1/events/{id}", deps.Events.Get)
	mux.Handle("POST /v1/events", admin(deps.Events.Create))
	mux.Handle("PUT /v1/events/{id}", admin(deps.Events.Update))
	mux.Handle("DELETE /v1/events/{id}", admin(deps.Events.Delete))
	mux.Handle("POST /v1/events/refresh", admin(deps.Events.Refresh))

	mux.Handle("POST /v1/registrations/{id}", requireAuth(http.HandlerFunc(deps.Registrations.Register)))
	mux.Handle("DELETE /v1/registrations/{id}", requireAuth(http.HandlerFunc(deps.Registrations.Unregister)))
	mux.Handle("GET /v1/events/{id}/registrations", admin(deps.Registrations.ListForEvent))

	mux.HandleFunc("GET /v1/news", deps.News.List)
	mux.HandleFunc("GET /v1/news/{id}", deps.News.Get)
	mux.Handle("POST /v1/news", admin(deps.News.Create))
	mux.Handle("PUT /v1/news/{id}", admin(deps.News.Update))
	mux.Handle("DELETE /v1/news/{id}", admin(deps.News.Delete))
	mux.Handle("POST /v1/news/refresh", admin(deps.News.Refresh))

	var handler http.Handler = mux
	handler = middleware.Metrics()(handler)
	handler = middleware.RequestLogging()(handler)
	handler = middleware.CorrelationID(deps.Logger)(handler)
	return handler
}
