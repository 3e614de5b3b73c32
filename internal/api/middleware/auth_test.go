package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/eventease/server/internal/auth"
)

func newManager(t *testing.T) *auth.JWTManager {
	t.Helper()
	return auth.NewJWTManager("test-secret", time.Hour, "eventease")
}

func principalEcho(t *testing.T, captured *Principal) http.Handler {
	t.Helper()
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		p, ok := PrincipalFromContext(r.Context())
		if ok {
			*captured = p
		}
		w.WriteHeader(http.StatusNoContent)
	})
}

func TestRequireAuthValidToken(t *testing.T) {
	manager := newManager(t)
	token, err := manager.Generate(7, true)
	require.NoError(t, err)

	var got Principal
	handler := RequireAuth(manager)(principalEcho(t, &got))

	req := httptest.NewRequest(http.MethodGet, "/v1/users/me", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Equal(t, int64(7), got.UserID)
	assert.True(t, got.IsAdmin)
}

func TestRequireAuthRejectsMissingAndBadTokens(t *testing.T) {
	manager := newManager(t)
	handler := RequireAuth(manager)(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		t.Fatal("handler must not run")
	}))

	req := httptest.NewRequest(http.MethodGet, "/v1/users/me", nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	req = httptest.NewRequest(http.MethodGet, "/v1/users/me", nil)
	req.Header.Set("Authorization", "Bearer not.a.token")
	rec = httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestOptionalAuthAllowsAnonymous(t *testing.T) {
	manager := newManager(t)

	var got Principal
	handler := OptionalAuth(manager)(principalEcho(t, &got))

	req := httptest.NewRequest(http.MethodGet, "/v1/events", nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Zero(t, got.UserID)
}

func TestOptionalAuthRejectsGarbageToken(t *testing.T) {
	manager := newManager(t)
	handler := OptionalAuth(manager)(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		t.Fatal("handler must not run")
	}))

	req := httptest.NewRequest(http.MethodGet, "/v1/events", nil)
	req.Header.Set("Authorization", "Bearer bogus")
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestRequireAdmin(t *testing.T) {
	manager := newManager(t)

	handler := RequireAuth(manager)(RequireAdmin(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	})))

	adminToken, err := manager.Generate(1, true)
	require.NoError(t, err)
	userToken, err := manager.Generate(2, false)
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodDelete, "/v1/events/1", nil)
	req.Header.Set("Authorization", "Bearer "+adminToken)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusNoContent, rec.Code)

	req = httptest.NewRequest(http.MethodDelete, "/v1/events/1", nil)
	req.Header.Set("Authorization", "Bearer "+userToken)
	rec = httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusForbidden, rec.Code)
}
