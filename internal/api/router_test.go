package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sort"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/eventease/server/internal/api/handlers"
	"github.com/eventease/server/internal/auth"
	"github.com/eventease/server/internal/domain/events"
	"github.com/eventease/server/internal/domain/news"
	"github.com/eventease/server/internal/domain/registrations"
	"github.com/eventease/server/internal/domain/users"
	"github.com/eventease/server/internal/ingest"
)

// In-memory repositories backing the full router for end to end tests.

type memStore struct {
	mu            sync.Mutex
	events        map[int64]events.Event
	news          map[int64]news.Item
	users         map[int64]users.User
	registrations map[int64]registrations.Registration
	nextID        int64
}

func newMemStore() *memStore {
	return &memStore{
		events:        make(map[int64]events.Event),
		news:          make(map[int64]news.Item),
		users:         make(map[int64]users.User),
		registrations: make(map[int64]registrations.Registration),
	}
}

func (s *memStore) id() int64 {
	s.nextID++
	return s.nextID
}

type memEvents struct{ store *memStore }

func (r *memEvents) List(_ context.Context) ([]events.Event, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	out := make([]events.Event, 0, len(r.store.events))
	for _, e := range r.store.events {
		out = append(out, e)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (r *memEvents) GetByID(_ context.Context, id int64) (*events.Event, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	e, ok := r.store.events[id]
	if !ok {
		return nil, events.ErrNotFound
	}
	return &e, nil
}

func (r *memEvents) Create(_ context.Context, params events.EventParams) (*events.Event, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	now := time.Now()
	e := events.Event{
		ID: r.store.id(), Title: params.Title, Description: params.Description,
		Address: params.Address, City: params.City, Country: params.Country,
		Capacity: params.Capacity, Latitude: params.Latitude, Longitude: params.Longitude,
		Source: params.Source, URL: params.URL, EventType: params.EventType,
		Image: params.Image, MapImage: params.MapImage,
		StartTime: params.StartTime, EndTime: params.EndTime,
		CreatedAt: now, UpdatedAt: now,
	}
	r.store.events[e.ID] = e
	return &e, nil
}

func (r *memEvents) Update(ctx context.Context, id int64, params events.EventParams) (*events.Event, error) {
	r.store.mu.Lock()
	existing, ok := r.store.events[id]
	r.store.mu.Unlock()
	if !ok {
		return nil, events.ErrNotFound
	}
	updated, err := r.Create(ctx, params)
	if err != nil {
		return nil, err
	}
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	delete(r.store.events, updated.ID)
	updated.ID = id
	updated.CreatedAt = existing.CreatedAt
	r.store.events[id] = *updated
	return updated, nil
}

func (r *memEvents) Delete(_ context.Context, id int64) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	if _, ok := r.store.events[id]; !ok {
		return events.ErrNotFound
	}
	delete(r.store.events, id)
	return nil
}

func (r *memEvents) FindByURL(_ context.Context, url string) (*events.Event, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	for _, e := range r.store.events {
		if e.URL != nil && *e.URL == url {
			return &e, nil
		}
	}
	return nil, events.ErrNotFound
}

func (r *memEvents) FindByTitle(_ context.Context, title string) (*events.Event, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	for _, e := range r.store.events {
		if e.Title == title {
			return &e, nil
		}
	}
	return nil, events.ErrNotFound
}

type memNews struct{ store *memStore }

func (r *memNews) List(_ context.Context, topic string) ([]news.Item, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	var out []news.Item
	for _, item := range r.store.news {
		if topic == "" || item.Topic == topic {
			out = append(out, item)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].PublishedAt.After(out[j].PublishedAt) })
	return out, nil
}

func (r *memNews) GetByID(_ context.Context, id int64) (*news.Item, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	item, ok := r.store.news[id]
	if !ok {
		return nil, news.ErrNotFound
	}
	return &item, nil
}

func (r *memNews) Create(_ context.Context, params news.ItemParams) (*news.Item, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	for _, existing := range r.store.news {
		if existing.URL == params.URL {
			return nil, news.ErrConflict
		}
	}
	item := news.Item{
		ID: r.store.id(), Title: params.Title, Summary: params.Summary, URL: params.URL,
		ImageURL: params.ImageURL, Source: params.Source, Topic: params.Topic,
		PublishedAt: params.PublishedAt, CreatedAt: time.Now(),
	}
	r.store.news[item.ID] = item
	return &item, nil
}

func (r *memNews) Update(_ context.Context, id int64, params news.ItemParams) (*news.Item, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	item, ok := r.store.news[id]
	if !ok {
		return nil, news.ErrNotFound
	}
	item.Title = params.Title
	item.Summary = params.Summary
	item.URL = params.URL
	item.ImageURL = params.ImageURL
	item.Source = params.Source
	item.Topic = params.Topic
	item.PublishedAt = params.PublishedAt
	r.store.news[id] = item
	return &item, nil
}

func (r *memNews) Delete(_ context.Context, id int64) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	if _, ok := r.store.news[id]; !ok {
		return news.ErrNotFound
	}
	delete(r.store.news, id)
	return nil
}

func (r *memNews) FindByURL(_ context.Context, url string) (*news.Item, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	for _, item := range r.store.news {
		if item.URL == url {
			return &item, nil
		}
	}
	return nil, news.ErrNotFound
}

type memUsers struct{ store *memStore }

func (r *memUsers) List(_ context.Context) ([]users.User, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	var out []users.User
	for _, u := range r.store.users {
		out = append(out, u)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (r *memUsers) GetByID(_ context.Context, id int64) (*users.User, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	u, ok := r.store.users[id]
	if !ok {
		return nil, users.ErrNotFound
	}
	return &u, nil
}

func (r *memUsers) GetByEmail(_ context.Context, email string) (*users.User, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	for _, u := range r.store.users {
		if u.Email == email {
			return &u, nil
		}
	}
	return nil, users.ErrNotFound
}

func (r *memUsers) Create(_ context.Context, params users.UserParams) (*users.User, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	for _, existing := range r.store.users {
		if existing.Email == params.Email {
			return nil, users.ErrConflict
		}
	}
	u := users.User{
		ID: r.store.id(), Email: params.Email, Name: params.Name,
		PasswordHash: params.PasswordHash, Latitude: params.Latitude,
		Longitude: params.Longitude, City: params.City, Country: params.Country,
		CreatedAt: time.Now(),
	}
	r.store.users[u.ID] = u
	return &u, nil
}

func (r *memUsers) Update(_ context.Context, id int64, params users.UserParams) (*users.User, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	u, ok := r.store.users[id]
	if !ok {
		return nil, users.ErrNotFound
	}
	u.Email = params.Email
	u.Name = params.Name
	u.PasswordHash = params.PasswordHash
	u.Latitude = params.Latitude
	u.Longitude = params.Longitude
	u.City = params.City
	u.Country = params.Country
	r.store.users[id] = u
	return &u, nil
}

func (r *memUsers) UpdateLocation(_ context.Context, id int64, params users.LocationParams) (*users.User, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	u, ok := r.store.users[id]
	if !ok {
		return nil, users.ErrNotFound
	}
	u.Latitude = params.Latitude
	u.Longitude = params.Longitude
	u.City = params.City
	u.Country = params.Country
	r.store.users[id] = u
	return &u, nil
}

func (r *memUsers) Delete(_ context.Context, id int64) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	if _, ok := r.store.users[id]; !ok {
		return users.ErrNotFound
	}
	delete(r.store.users, id)
	return nil
}

type memRegistrations struct{ store *memStore }

func (r *memRegistrations) Find(_ context.Context, userID, eventID int64) (*registrations.Registration, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	return r.findLocked(userID, eventID)
}

func (r *memRegistrations) findLocked(userID, eventID int64) (*registrations.Registration, error) {
	for _, reg := range r.store.registrations {
		if reg.UserID == userID && reg.EventID == eventID {
			return &reg, nil
		}
	}
	return nil, registrations.ErrNotFound
}

func (r *memRegistrations) ListForEvent(_ context.Context, eventID int64) ([]registrations.Registration, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	var out []registrations.Registration
	for _, reg := range r.store.registrations {
		if reg.EventID == eventID {
			out = append(out, reg)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (r *memRegistrations) CountForEvent(_ context.Context, eventID int64) (int, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	count := 0
	for _, reg := range r.store.registrations {
		if reg.EventID == eventID {
			count++
		}
	}
	return count, nil
}

func (r *memRegistrations) Register(_ context.Context, userID, eventID int64) (*registrations.Registration, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	event, ok := r.store.events[eventID]
	if !ok {
		return nil, registrations.ErrEventNotFound
	}
	if existing, _ := r.findLocked(userID, eventID); existing != nil {
		return nil, registrations.ErrAlreadyRegistered
	}
	if event.Capacity != nil {
		count := 0
		for _, reg := range r.store.registrations {
			if reg.EventID == eventID {
				count++
			}
		}
		if count >= *event.Capacity {
			return nil, registrations.ErrEventFull
		}
	}

	reg := registrations.Registration{ID: r.store.id(), UserID: userID, EventID: eventID, CreatedAt: time.Now()}
	r.store.registrations[reg.ID] = reg
	return &reg, nil
}

func (r *memRegistrations) Delete(_ context.Context, userID, eventID int64) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	for id, reg := range r.store.registrations {
		if reg.UserID == userID && reg.EventID == eventID {
			delete(r.store.registrations, id)
			return nil
		}
	}
	return registrations.ErrNotFound
}

func newTestRouter(t *testing.T) (http.Handler, *memStore) {
	t.Helper()
	store := newMemStore()
	eventsRepo := &memEvents{store: store}
	newsRepo := &memNews{store: store}
	usersRepo := &memUsers{store: store}
	regsRepo := &memRegistrations{store: store}

	jwtManager := auth.NewJWTManager("test-secret", time.Hour, "eventease")
	ingestor := ingest.NewIngestor(eventsRepo, newsRepo, zerolog.Nop())

	router := NewRouter(Deps{
		Events:        handlers.NewEventsHandler(events.NewService(eventsRepo), usersRepo, ingestor),
		News:          handlers.NewNewsHandler(news.NewService(newsRepo), ingestor),
		Registrations: handlers.NewRegistrationsHandler(registrations.NewService(regsRepo)),
		Users:         handlers.NewUsersHandler(users.NewService(usersRepo), jwtManager),
		Health:        handlers.NewHealthHandler(nil, "test"),
		JWT:           jwtManager,
		Logger:        zerolog.Nop(),
	})
	return router, store
}

func doJSON(t *testing.T, router http.Handler, method, path, token string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func signupAndLogin(t *testing.T, router http.Handler, email string) (token string, userID int64) {
	t.Helper()
	rec := doJSON(t, router, http.MethodPost, "/v1/auth/signup", "", map[string]any{
		"email":    email,
		"name":     "Test User",
		"password": "Sup3r-Secret!",
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	rec = doJSON(t, router, http.MethodPost, "/v1/auth/login", "", map[string]any{
		"email":    email,
		"password": "Sup3r-Secret!",
	})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var out struct {
		AccessToken string `json:"access_token"`
		User        struct {
			ID int64 `json:"id"`
		} `json:"user"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out))
	require.NotEmpty(t, out.AccessToken)
	return out.AccessToken, out.User.ID
}

func adminToken(t *testing.T, router http.Handler, store *memStore) string {
	t.Helper()
	token, userID := signupAndLogin(t, router, fmt.Sprintf("admin-%d@example.com", time.Now().UnixNano()))

	store.mu.Lock()
	u := store.users[userID]
	u.IsAdmin = true
	store.users[userID] = u
	store.mu.Unlock()

	// Re-login so the token carries the admin claim.
	rec := doJSON(t, router, http.MethodPost, "/v1/auth/login", "", map[string]any{
		"email":    u.Email,
		"password": "Sup3r-Secret!",
	})
	require.Equal(t, http.StatusOK, rec.Code)
	var out struct {
		AccessToken string `json:"access_token"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out))
	_ = token
	return out.AccessToken
}

func TestSignupValidation(t *testing.T) {
	router, _ := newTestRouter(t)

	rec := doJSON(t, router, http.MethodPost, "/v1/auth/signup", "", map[string]any{
		"email":    "weak@example.com",
		"name":     "Weak",
		"password": "alllowercase",
	})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "password")

	rec = doJSON(t, router, http.MethodPost, "/v1/auth/signup", "", map[string]any{
		"email":    "not-an-email",
		"name":     "Bad Email",
		"password": "Sup3r-Secret!",
	})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestSignupDuplicateEmailConflicts(t *testing.T) {
	router, _ := newTestRouter(t)
	signupAndLogin(t, router, "dup@example.com")

	rec := doJSON(t, router, http.MethodPost, "/v1/auth/signup", "", map[string]any{
		"email":    "dup@example.com",
		"name":     "Again",
		"password": "Sup3r-Secret!",
	})
	assert.Equal(t, http.StatusConflict, rec.Code)
}

func TestLoginRejectsBadCredentials(t *testing.T) {
	router, _ := newTestRouter(t)
	signupAndLogin(t, router, "login@example.com")

	rec := doJSON(t, router, http.MethodPost, "/v1/auth/login", "", map[string]any{
		"email":    "login@example.com",
		"password": "Wrong-Passw0rd!",
	})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestEventCRUDRequiresAdmin(t *testing.T) {
	router, store := newTestRouter(t)
	userTok, _ := signupAndLogin(t, router, "user@example.com")
	adminTok := adminToken(t, router, store)

	body := map[string]any{
		"title":      "Go Meetup",
		"start_time": time.Now().Add(24 * time.Hour).Format(time.RFC3339),
	}

	rec := doJSON(t, router, http.MethodPost, "/v1/events", "", body)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = doJSON(t, router, http.MethodPost, "/v1/events", userTok, body)
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec = doJSON(t, router, http.MethodPost, "/v1/events", adminTok, body)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	var created struct {
		ID int64 `json:"id"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &created))

	rec = doJSON(t, router, http.MethodGet, fmt.Sprintf("/v1/events/%d", created.ID), "", nil)
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = doJSON(t, router, http.MethodDelete, fmt.Sprintf("/v1/events/%d", created.ID), adminTok, nil)
	assert.Equal(t, http.StatusNoContent, rec.Code)

	rec = doJSON(t, router, http.MethodGet, fmt.Sprintf("/v1/events/%d", created.ID), "", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestEventListRanksForViewerLocation(t *testing.T) {
	router, store := newTestRouter(t)
	adminTok := adminToken(t, router, store)
	userTok, _ := signupAndLogin(t, router, "viewer@example.com")

	// Set the viewer's saved location to London.
	rec := doJSON(t, router, http.MethodPut, "/v1/users/me/location", userTok, map[string]any{
		"latitude":  51.5074,
		"longitude": -0.1278,
		"city":      "London",
		"country":   "UK",
	})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	mk := func(title, city string, lat, lon float64) {
		rec := doJSON(t, router, http.MethodPost, "/v1/events", adminTok, map[string]any{
			"title":      title,
			"city":       city,
			"latitude":   lat,
			"longitude":  lon,
			"start_time": time.Now().Add(48 * time.Hour).Format(time.RFC3339),
		})
		require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	}
	mk("Tokyo Conf", "Tokyo", 35.6762, 139.6503)
	mk("London Hack Night", "London", 51.5072, -0.1276)

	rec = doJSON(t, router, http.MethodGet, "/v1/events?strategy=location", userTok, nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var page struct {
		Total int `json:"total"`
		Items []struct {
			Title string `json:"title"`
		} `json:"items"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &page))
	// The coordinate tier is the first non-empty tier and only London is
	// within the default radius, so Tokyo drops out entirely.
	require.Equal(t, 1, page.Total)
	assert.Equal(t, "London Hack Night", page.Items[0].Title)
}

func TestEventListPagination(t *testing.T) {
	router, store := newTestRouter(t)
	adminTok := adminToken(t, router, store)

	for i := 0; i < 5; i++ {
		rec := doJSON(t, router, http.MethodPost, "/v1/events", adminTok, map[string]any{
			"title":      fmt.Sprintf("Event %d", i),
			"start_time": time.Now().Add(time.Duration(i) * time.Hour).Format(time.RFC3339),
		})
		require.Equal(t, http.StatusCreated, rec.Code)
	}

	rec := doJSON(t, router, http.MethodGet, "/v1/events?limit=2&offset=4", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var page struct {
		Total  int               `json:"total"`
		Limit  int               `json:"limit"`
		Offset int               `json:"offset"`
		Items  []json.RawMessage `json:"items"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &page))
	assert.Equal(t, 5, page.Total)
	assert.Len(t, page.Items, 1)

	rec = doJSON(t, router, http.MethodGet, "/v1/events?limit=-1", "", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestRegistrationLifecycle(t *testing.T) {
	router, store := newTestRouter(t)
	adminTok := adminToken(t, router, store)
	userTok, _ := signupAndLogin(t, router, "attendee@example.com")
	otherTok, _ := signupAndLogin(t, router, "other@example.com")

	rec := doJSON(t, router, http.MethodPost, "/v1/events", adminTok, map[string]any{
		"title":      "Tiny Workshop",
		"capacity":   1,
		"start_time": time.Now().Add(24 * time.Hour).Format(time.RFC3339),
	})
	require.Equal(t, http.StatusCreated, rec.Code)
	var created struct {
		ID int64 `json:"id"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &created))
	path := fmt.Sprintf("/v1/registrations/%d", created.ID)
	listPath := fmt.Sprintf("/v1/events/%d/registrations", created.ID)

	// Unknown event.
	rec = doJSON(t, router, http.MethodPost, "/v1/registrations/9999", userTok, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	// First registration succeeds.
	rec = doJSON(t, router, http.MethodPost, path, userTok, nil)
	assert.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	// Registering twice conflicts.
	rec = doJSON(t, router, http.MethodPost, path, userTok, nil)
	assert.Equal(t, http.StatusConflict, rec.Code)
	assert.Contains(t, rec.Body.String(), "already registered")

	// Capacity of one is exhausted for the next user.
	rec = doJSON(t, router, http.MethodPost, path, otherTok, nil)
	assert.Equal(t, http.StatusConflict, rec.Code)
	assert.Contains(t, rec.Body.String(), "full")

	// Unregister frees the slot.
	rec = doJSON(t, router, http.MethodDelete, path, userTok, nil)
	assert.Equal(t, http.StatusNoContent, rec.Code)

	rec = doJSON(t, router, http.MethodPost, path, otherTok, nil)
	assert.Equal(t, http.StatusCreated, rec.Code)

	// Admin sees the registration list; a plain user does not.
	rec = doJSON(t, router, http.MethodGet, listPath, adminTok, nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	rec = doJSON(t, router, http.MethodGet, listPath, userTok, nil)
	assert.Equal(t, http.StatusForbidden, rec.Code)
}

func TestNewsTopicFilterAndClassification(t *testing.T) {
	router, store := newTestRouter(t)
	adminTok := adminToken(t, router, store)

	mk := func(title, url string) {
		rec := doJSON(t, router, http.MethodPost, "/v1/news", adminTok, map[string]any{
			"title":        title,
			"url":          url,
			"published_at": time.Now().Format(time.RFC3339),
		})
		require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	}
	mk("Ransomware gang hits hospital", "https://wire.example/ransom")
	mk("New GPU benchmarks released", "https://wire.example/gpu")

	rec := doJSON(t, router, http.MethodGet, "/v1/news?topic=Security", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var page struct {
		Total int `json:"total"`
		Items []struct {
			Title string `json:"title"`
			Topic string `json:"topic"`
		} `json:"items"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &page))
	require.Equal(t, 1, page.Total)
	assert.Equal(t, "Security", page.Items[0].Topic)

	// Duplicate url conflicts.
	rec = doJSON(t, router, http.MethodPost, "/v1/news", adminTok, map[string]any{
		"title":        "Same link again",
		"url":          "https://wire.example/gpu",
		"published_at": time.Now().Format(time.RFC3339),
	})
	assert.Equal(t, http.StatusConflict, rec.Code)
}

func TestMeAndLocationPairing(t *testing.T) {
	router, _ := newTestRouter(t)
	userTok, userID := signupAndLogin(t, router, "me@example.com")

	rec := doJSON(t, router, http.MethodGet, "/v1/users/me", userTok, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var me struct {
		ID    int64  `json:"id"`
		Email string `json:"email"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &me))
	assert.Equal(t, userID, me.ID)
	assert.Equal(t, "me@example.com", me.Email)

	// Latitude without longitude is rejected.
	rec = doJSON(t, router, http.MethodPut, "/v1/users/me/location", userTok, map[string]any{
		"latitude": 51.5,
	})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestHealthEndpointWithoutDatabase(t *testing.T) {
	router, _ := newTestRouter(t)
	rec := doJSON(t, router, http.MethodGet, "/healthz", "", nil)
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	assert.Contains(t, rec.Body.String(), "unhealthy")
}

func TestMetricsEndpoint(t *testing.T) {
	router, _ := newTestRouter(t)
	rec := doJSON(t, router, http.MethodGet, "/metrics", "", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
}
