package handlers

import (
	"errors"
	"net/http"
	"time"

	"github.com/eventease/server/internal/api/middleware"
	"github.com/eventease/server/internal/api/problem"
	"github.com/eventease/server/internal/auth"
	"github.com/eventease/server/internal/domain/users"
)

type UsersHandler struct {
	Users *users.Service
	JWT   *auth.JWTManager
}

func NewUsersHandler(usersService *users.Service, jwtManager *auth.JWTManager) *UsersHandler {
	return &UsersHandler{Users: usersService, JWT: jwtManager}
}

type signupRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Name     string `json:"name" validate:"required,max=200"`
	Password string `json:"password" validate:"required,strongpassword"`
}

type loginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type locationRequest struct {
	Latitude  *float64 `json:"latitude" validate:"omitempty,latitude"`
	Longitude *float64 `json:"longitude" validate:"omitempty,longitude"`
	City      *string  `json:"city"`
	Country   *string  `json:"country"`
}

type userResponse struct {
	ID        int64     `json:"id"`
	Email     string    `json:"email"`
	Name      string    `json:"name"`
	Latitude  *float64  `json:"latitude,omitempty"`
	Longitude *float64  `json:"longitude,omitempty"`
	City      *string   `json:"city,omitempty"`
	Country   *string   `json:"country,omitempty"`
	IsAdmin   bool      `json:"is_admin"`
	CreatedAt time.Time `json:"created_at"`
}

func toUserResponse(u users.User) userResponse {
	return userResponse{
		ID:        u.ID,
		Email:     u.Email,
		Name:      u.Name,
		Latitude:  u.Latitude,
		Longitude: u.Longitude,
		City:      u.City,
		Country:   u.Country,
		IsAdmin:   u.IsAdmin,
		CreatedAt: u.CreatedAt,
	}
}

// Signup creates a user account.
func (h *UsersHandler) Signup(w http.ResponseWriter, r *http.Request) {
	var in signupRequest
	if !decodeValid(w, r, &in) {
		return
	}

	user, err := h.Users.Create(r.Context(), users.UserParams{Email: in.Email, Name: in.Name}, in.Password)
	if err != nil {
		if errors.Is(err, users.ErrConflict) {
			problem.Conflict(w, r, "a user with this email already exists")
			return
		}
		problem.Internal(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, toUserResponse(*user))
}

// Login exchanges credentials for a bearer token.
func (h *UsersHandler) Login(w http.ResponseWriter, r *http.Request) {
	var in loginRequest
	if !decodeValid(w, r, &in) {
		return
	}

	user, err := h.Users.Authenticate(r.Context(), in.Email, in.Password)
	if err != nil {
		if errors.Is(err, users.ErrInvalidCredentials) {
			problem.Unauthorized(w, r, "invalid email or password")
			return
		}
		problem.Internal(w, r, err)
		return
	}

	token, err := h.JWT.Generate(user.ID, user.IsAdmin)
	if err != nil {
		problem.Internal(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"access_token": token,
		"token_type":   "bearer",
		"user":         toUserResponse(*user),
	})
}

// Me returns the authenticated user's own profile.
func (h *UsersHandler) Me(w http.ResponseWriter, r *http.Request) {
	principal, ok := middleware.PrincipalFromContext(r.Context())
	if !ok {
		problem.Unauthorized(w, r, "authentication required")
		return
	}

	user, err := h.Users.GetByID(r.Context(), principal.UserID)
	if err != nil {
		if errors.Is(err, users.ErrNotFound) {
			problem.NotFound(w, r, "user not found")
			return
		}
		problem.Internal(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toUserResponse(*user))
}

// UpdateLocation replaces the viewer location profile used by event ranking.
// Coordinates come as a pair or not at all.
func (h *UsersHandler) UpdateLocation(w http.ResponseWriter, r *http.Request) {
	principal, ok := middleware.PrincipalFromContext(r.Context())
	if !ok {
		problem.Unauthorized(w, r, "authentication required")
		return
	}

	var in locationRequest
	if !decodeValid(w, r, &in) {
		return
	}
	if (in.Latitude == nil) != (in.Longitude == nil) {
		problem.BadRequest(w, r, nil, problem.WithErrors(map[string]string{
			"latitude": "latitude and longitude must be provided together",
		}))
		return
	}

	user, err := h.Users.UpdateLocation(r.Context(), principal.UserID, users.LocationParams{
		Latitude:  in.Latitude,
		Longitude: in.Longitude,
		City:      in.City,
		Country:   in.Country,
	})
	if err != nil {
		if errors.Is(err, users.ErrNotFound) {
			problem.NotFound(w, r, "user not found")
			return
		}
		problem.Internal(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toUserResponse(*user))
}

// List returns every user account.
func (h *UsersHandler) List(w http.ResponseWriter, r *http.Request) {
	listed, err := h.Users.List(r.Context())
	if err != nil {
		problem.Internal(w, r, err)
		return
	}

	items := make([]userResponse, 0, len(listed))
	for _, u := range listed {
		items = append(items, toUserResponse(u))
	}
	writeJSON(w, http.StatusOK, map[string]any{"items": items, "total": len(items)})
}

func (h *UsersHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}

	user, err := h.Users.GetByID(r.Context(), id)
	if err != nil {
		if errors.Is(err, users.ErrNotFound) {
			problem.NotFound(w, r, "user not found")
			return
		}
		problem.Internal(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toUserResponse(*user))
}

// Update replaces a user's account fields, including the password.
func (h *UsersHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}

	var in signupRequest
	if !decodeValid(w, r, &in) {
		return
	}

	user, err := h.Users.Update(r.Context(), id, users.UserParams{Email: in.Email, Name: in.Name}, in.Password)
	if err != nil {
		switch {
		case errors.Is(err, users.ErrNotFound):
			problem.NotFound(w, r, "user not found")
		case errors.Is(err, users.ErrConflict):
			problem.Conflict(w, r, "a user with this email already exists")
		default:
			problem.Internal(w, r, err)
		}
		return
	}
	writeJSON(w, http.StatusOK, toUserResponse(*user))
}

func (h *UsersHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}

	if err := h.Users.Delete(r.Context(), id); err != nil {
		if errors.Is(err, users.ErrNotFound) {
			problem.NotFound(w, r, "user not found")
			return
		}
		problem.Internal(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
