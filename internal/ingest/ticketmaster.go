package ingest

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/time/rate"

	"github.com/eventease/server/internal/domain/events"
)

const ticketmasterBaseURL = "https://app.ticketmaster.com/discovery/v2/events.json"

// SourceTicketmaster tags events ingested from the Ticketmaster discovery API.
const SourceTicketmaster = "Ticketmaster"

// defaultEventDuration fills the end time when the upstream item has none.
const defaultEventDuration = 2 * time.Hour

// TicketmasterProvider fetches tech events from the Ticketmaster discovery
// API. Queries are tried in priority order and the first non-empty result
// page wins, mirroring how the discovery API surfaces niche categories.
type TicketmasterProvider struct {
	apiKey     string
	city       string
	pageSize   int
	baseURL    string
	httpClient *http.Client
	limiter    *rate.Limiter
	logger     zerolog.Logger
}

type TicketmasterOption func(*TicketmasterProvider)

// WithTicketmasterBaseURL redirects API calls, used by tests.
func WithTicketmasterBaseURL(baseURL string) TicketmasterOption {
	return func(p *TicketmasterProvider) { p.baseURL = baseURL }
}

func NewTicketmasterProvider(apiKey, city string, pageSize int, logger zerolog.Logger, opts ...TicketmasterOption) *TicketmasterProvider {
	if pageSize <= 0 {
		pageSize = 10
	}
	p := &TicketmasterProvider{
		apiKey:     apiKey,
		city:       city,
		pageSize:   pageSize,
		baseURL:    ticketmasterBaseURL,
		httpClient: &http.Client{Timeout: 15 * time.Second},
		// The discovery API allows 5 req/s per key.
		limiter: rate.NewLimiter(rate.Limit(5), 1),
		logger:  logger.With().Str("provider", SourceTicketmaster).Logger(),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

func (p *TicketmasterProvider) Name() string { return SourceTicketmaster }

// Fetch tries the prioritized queries and normalizes the first non-empty
// result set. Items that fail normalization are logged and dropped.
func (p *TicketmasterProvider) Fetch(ctx context.Context) ([]events.EventParams, error) {
	queries := []url.Values{
		{"classificationName": {"Science & Tech"}},
		{"keyword": {"technology"}},
		{"keyword": {"conference"}},
		{},
	}

	for _, query := range queries {
		page, err := p.fetchPage(ctx, query)
		if err != nil {
			return nil, err
		}
		if len(page) == 0 {
			continue
		}

		candidates := make([]events.EventParams, 0, len(page))
		for _, item := range page {
			candidate, err := normalizeTicketmasterEvent(item)
			if err != nil {
				p.logger.Warn().Err(err).Str("title", item.Name).Msg("dropping malformed event")
				continue
			}
			candidates = append(candidates, candidate)
		}
		return candidates, nil
	}
	return nil, nil
}

func (p *TicketmasterProvider) fetchPage(ctx context.Context, query url.Values) ([]tmEvent, error) {
	if err := p.limiter.Wait(ctx); err != nil {
		return nil, err
	}

	params := url.Values{}
	for key, values := range query {
		params[key] = values
	}
	params.Set("apikey", p.apiKey)
	params.Set("city", p.city)
	params.Set("size", strconv.Itoa(p.pageSize))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, p.baseURL+"?"+params.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}

	resp, err := p.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch ticketmaster events: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("ticketmaster responded %d", resp.StatusCode)
	}

	var payload tmResponse
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, fmt.Errorf("decode ticketmaster response: %w", err)
	}
	if payload.Embedded == nil {
		return nil, nil
	}
	return payload.Embedded.Events, nil
}

type tmResponse struct {
	Embedded *struct {
		Events []tmEvent `json:"events"`
	} `json:"_embedded"`
}

type tmEvent struct {
	Name       string    `json:"name"`
	Info       string    `json:"info"`
	PleaseNote string    `json:"pleaseNote"`
	URL        string    `json:"url"`
	Images     []tmImage `json:"images"`
	Dates      struct {
		Start struct {
			DateTime string `json:"dateTime"`
		} `json:"start"`
		End struct {
			DateTime string `json:"dateTime"`
		} `json:"end"`
	} `json:"dates"`
	Classifications []struct {
		Segment *tmNamed `json:"segment"`
		Genre   *tmNamed `json:"genre"`
	} `json:"classifications"`
	Embedded *struct {
		Venues []tmVenue `json:"venues"`
	} `json:"_embedded"`
}

type tmNamed struct {
	Name string `json:"name"`
}

type tmImage struct {
	Ratio  string `json:"ratio"`
	URL    string `json:"url"`
	Width  int    `json:"width"`
	Height int    `json:"height"`
}

type tmVenue struct {
	City *struct {
		Name string `json:"name"`
	} `json:"city"`
	Country *struct {
		Name string `json:"name"`
	} `json:"country"`
	Address *struct {
		Line1 string `json:"line1"`
	} `json:"address"`
	Location *struct {
		Latitude  string `json:"latitude"`
		Longitude string `json:"longitude"`
	} `json:"location"`
}

// normalizeTicketmasterEvent maps one discovery API item into the canonical
// event shape. The start time is required; everything else degrades to nil.
func normalizeTicketmasterEvent(item tmEvent) (events.EventParams, error) {
	if strings.TrimSpace(item.Name) == "" {
		return events.EventParams{}, fmt.Errorf("missing event name")
	}

	start, err := time.Parse(time.RFC3339, item.Dates.Start.DateTime)
	if err != nil {
		return events.EventParams{}, fmt.Errorf("parse start time %q: %w", item.Dates.Start.DateTime, err)
	}

	var end time.Time
	if item.Dates.End.DateTime != "" {
		end, err = time.Parse(time.RFC3339, item.Dates.End.DateTime)
		if err != nil {
			return events.EventParams{}, fmt.Errorf("parse end time %q: %w", item.Dates.End.DateTime, err)
		}
	} else {
		end = start.Add(defaultEventDuration)
	}

	description := item.Info
	if description == "" {
		description = item.PleaseNote
	}
	if description == "" {
		description = "No description"
	}

	candidate := events.EventParams{
		Title:       item.Name,
		Description: description,
		Source:      ptr(SourceTicketmaster),
		StartTime:   start,
		EndTime:     &end,
	}
	if item.URL != "" {
		candidate.URL = ptr(item.URL)
	}
	if eventType := classificationLabel(item); eventType != "" {
		candidate.EventType = ptr(eventType)
	}
	if image := pickImage(item.Images); image != "" {
		candidate.Image = ptr(image)
	}
	applyVenue(&candidate, item)
	return candidate, nil
}

// classificationLabel joins the non-empty segment and genre labels.
func classificationLabel(item tmEvent) string {
	if len(item.Classifications) == 0 {
		return ""
	}
	var parts []string
	if segment := item.Classifications[0].Segment; segment != nil && segment.Name != "" {
		parts = append(parts, segment.Name)
	}
	if genre := item.Classifications[0].Genre; genre != nil && genre.Name != "" {
		parts = append(parts, genre.Name)
	}
	return strings.Join(parts, " - ")
}

// pickImage prefers a 16:9 variant at least 640px wide, then falls back to
// the first image.
func pickImage(images []tmImage) string {
	for _, image := range images {
		if image.Ratio == "16_9" && image.Width >= 640 {
			return image.URL
		}
	}
	if len(images) > 0 {
		return images[0].URL
	}
	return ""
}

func applyVenue(candidate *events.EventParams, item tmEvent) {
	if item.Embedded == nil || len(item.Embedded.Venues) == 0 {
		return
	}
	venue := item.Embedded.Venues[0]
	if venue.City != nil && venue.City.Name != "" {
		candidate.City = ptr(venue.City.Name)
	}
	if venue.Country != nil && venue.Country.Name != "" {
		candidate.Country = ptr(venue.Country.Name)
	}
	if venue.Address != nil && venue.Address.Line1 != "" {
		candidate.Address = ptr(venue.Address.Line1)
	}
	if venue.Location != nil {
		if lat, err := strconv.ParseFloat(venue.Location.Latitude, 64); err == nil {
			if lon, err := strconv.ParseFloat(venue.Location.Longitude, 64); err == nil {
				candidate.Latitude = &lat
				candidate.Longitude = &lon
			}
		}
	}
}

func ptr[T any](v T) *T { return &v }
