package middleware

import (
	"context"
	"net/http"

	"github.com/eventease/server/internal/api/problem"
	"github.com/eventease/server/internal/auth"
)

const principalKey contextKey = "principal"

// Principal is the authenticated identity attached to a request.
type Principal struct {
	UserID  int64
	IsAdmin bool
}

// PrincipalFromContext returns the request's authenticated identity, if any.
func PrincipalFromContext(ctx context.Context) (Principal, bool) {
	p, ok := ctx.Value(principalKey).(Principal)
	return p, ok
}

// RequireAuth rejects requests without a valid bearer token and stores the
// resolved principal in the request context.
func RequireAuth(manager *auth.JWTManager) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token, err := auth.TokenFromHeader(r.Header.Get("Authorization"))
			if err != nil {
				problem.Unauthorized(w, r, "missing or malformed Authorization header")
				return
			}

			claims, err := manager.Validate(token)
			if err != nil {
				problem.Unauthorized(w, r, "invalid or expired token")
				return
			}

			userID, err := claims.UserID()
			if err != nil {
				problem.Unauthorized(w, r, "invalid or expired token")
				return
			}

			principal := Principal{UserID: userID, IsAdmin: claims.IsAdmin}
			next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), principalKey, principal)))
		})
	}
}

// OptionalAuth resolves a principal when a valid token is present but lets
// anonymous requests through untouched.
func OptionalAuth(manager *auth.JWTManager) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token, err := auth.TokenFromHeader(r.Header.Get("Authorization"))
			if err != nil {
				next.ServeHTTP(w, r)
				return
			}

			claims, err := manager.Validate(token)
			if err != nil {
				problem.Unauthorized(w, r, "invalid or expired token")
				return
			}
			userID, err := claims.UserID()
			if err != nil {
				problem.Unauthorized(w, r, "invalid or expired token")
				return
			}

			principal := Principal{UserID: userID, IsAdmin: claims.IsAdmin}
			next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), principalKey, principal)))
		})
	}
}

// RequireAdmin allows only authenticated admins through. It must run inside
// RequireAuth.
func RequireAdmin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		principal, ok := PrincipalFromContext(r.Context())
		if !ok {
			problem.Unauthorized(w, r, "authentication required")
			return
		}
		if !principal.IsAdmin {
			problem.Forbidden(w, r, "admin access required")
			return
		}
		next.ServeHTTP(w, r)
	})
}
