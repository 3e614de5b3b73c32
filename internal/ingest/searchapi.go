package ingest

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/markusmobius/go-dateparser"
	"github.com/rs/zerolog"

	"github.com/eventease/server/internal/domain/events"
)

const searchAPIBaseURL = "https://www.searchapi.io/api/v1/search"

// SourceSearchAPI tags events ingested from the SearchApi.io events engine.
// The ranking resolver's provider-priority strategy matches this value
// case-insensitively.
const SourceSearchAPI = "SearchApi.io"

// SearchAPIProvider fetches events from the SearchApi.io google_events
// engine.
type SearchAPIProvider struct {
	apiKey     string
	query      string
	location   string
	baseURL    string
	httpClient *http.Client
	logger     zerolog.Logger
	now        func() time.Time
}

type SearchAPIOption func(*SearchAPIProvider)

// WithSearchAPIBaseURL redirects API calls, used by tests.
func WithSearchAPIBaseURL(baseURL string) SearchAPIOption {
	return func(p *SearchAPIProvider) { p.baseURL = baseURL }
}

// WithSearchAPIClock fixes the reference time for date reconstruction.
func WithSearchAPIClock(now func() time.Time) SearchAPIOption {
	return func(p *SearchAPIProvider) { p.now = now }
}

func NewSearchAPIProvider(apiKey, query, location string, logger zerolog.Logger, opts ...SearchAPIOption) *SearchAPIProvider {
	if query == "" {
		query = "tech events"
	}
	p := &SearchAPIProvider{
		apiKey:     apiKey,
		query:      query,
		location:   location,
		baseURL:    searchAPIBaseURL,
		httpClient: &http.Client{Timeout: 15 * time.Second},
		logger:     logger.With().Str("provider", SourceSearchAPI).Logger(),
		now:        time.Now,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

func (p *SearchAPIProvider) Name() string { return SourceSearchAPI }

func (p *SearchAPIProvider) Fetch(ctx context.Context) ([]events.EventParams, error) {
	params := url.Values{
		"engine":   {"google_events"},
		"q":        {p.query},
		"api_key":  {p.apiKey},
		"location": {p.location},
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, p.baseURL+"?"+params.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}

	resp, err := p.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch searchapi events: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("searchapi responded %d", resp.StatusCode)
	}

	var payload saResponse
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, fmt.Errorf("decode searchapi response: %w", err)
	}

	candidates := make([]events.EventParams, 0, len(payload.Events))
	for _, item := range payload.Events {
		candidate, err := p.normalize(item)
		if err != nil {
			p.logger.Warn().Err(err).Str("title", item.Title).Msg("dropping malformed event")
			continue
		}
		candidates = append(candidates, candidate)
	}
	return candidates, nil
}

type saResponse struct {
	Events []saEvent `json:"events"`
}

type saEvent struct {
	Title       string   `json:"title"`
	Description string   `json:"description"`
	Link        string   `json:"link"`
	Thumbnail   string   `json:"thumbnail"`
	Address     []string `json:"address"`
	Date        struct {
		StartDate string `json:"start_date"`
		When      string `json:"when"`
	} `json:"date"`
	Venue *struct {
		Name string `json:"name"`
	} `json:"venue"`
	EventLocationMap *struct {
		Image string `json:"image"`
	} `json:"event_location_map"`
}

func (p *SearchAPIProvider) normalize(item saEvent) (events.EventParams, error) {
	if strings.TrimSpace(item.Title) == "" {
		return events.EventParams{}, fmt.Errorf("missing event title")
	}

	description := item.Description
	if description == "" {
		description = item.Date.When
	}
	if description == "" {
		description = "No description"
	}

	candidate := events.EventParams{
		Title:       item.Title,
		Description: description,
		Source:      ptr(SourceSearchAPI),
		StartTime:   p.reconstructDate(item.Date.StartDate),
	}
	if item.Link != "" {
		candidate.URL = ptr(item.Link)
	}
	if item.Thumbnail != "" {
		candidate.Image = ptr(item.Thumbnail)
	}
	if item.EventLocationMap != nil && item.EventLocationMap.Image != "" {
		candidate.MapImage = ptr(item.EventLocationMap.Image)
	}
	if len(item.Address) > 0 {
		candidate.Address = ptr(strings.Join(item.Address, ", "))
		// The last address element is typically "City, Country".
		if parts := strings.Split(item.Address[len(item.Address)-1], ","); len(parts) == 2 {
			candidate.City = ptr(strings.TrimSpace(parts[0]))
			candidate.Country = ptr(strings.TrimSpace(parts[1]))
		}
	}
	return candidate, nil
}

// reconstructDate parses the engine's bare day/month date ("Jun 15") against
// the current calendar year. Events whose month has already passed in the
// source year are therefore misdated into the current year; that matches the
// upstream contract, which carries no year at all. Unparseable dates fall
// back to now rather than failing the item.
func (p *SearchAPIProvider) reconstructDate(raw string) time.Time {
	now := p.now()
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return now
	}
	parsed, err := dateparser.Parse(&dateparser.Configuration{CurrentTime: now}, raw)
	if err != nil {
		p.logger.Debug().Str("date", raw).Msg("unparseable event date, using now")
		return now
	}
	return parsed.Time
}
