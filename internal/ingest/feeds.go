package ingest

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/microcosm-cc/bluemonday"
	"github.com/mmcdole/gofeed"
	"github.com/rs/zerolog"

	"github.com/eventease/server/internal/domain/events"
	"github.com/eventease/server/internal/domain/news"
)

// FeedEventProvider ingests events from an RSS/Atom feed, such as a
// university seminar calendar. Location details ride along as custom item
// elements (city, country, latitude, longitude) when the feed carries them.
type FeedEventProvider struct {
	name    string
	feedURL string
	limit   int
	parser  *gofeed.Parser
	logger  zerolog.Logger
	now     func() time.Time
}

func NewFeedEventProvider(name, feedURL string, limit int, logger zerolog.Logger) *FeedEventProvider {
	if limit <= 0 {
		limit = 10
	}
	return &FeedEventProvider{
		name:    name,
		feedURL: feedURL,
		limit:   limit,
		parser:  gofeed.NewParser(),
		logger:  logger.With().Str("provider", name).Logger(),
		now:     time.Now,
	}
}

func (p *FeedEventProvider) Name() string { return p.name }

func (p *FeedEventProvider) Fetch(ctx context.Context) ([]events.EventParams, error) {
	feed, err := p.parser.ParseURLWithContext(p.feedURL, ctx)
	if err != nil {
		return nil, fmt.Errorf("parse feed %s: %w", p.feedURL, err)
	}

	items := feed.Items
	if len(items) > p.limit {
		items = items[:p.limit]
	}

	candidates := make([]events.EventParams, 0, len(items))
	for _, item := range items {
		if strings.TrimSpace(item.Title) == "" {
			p.logger.Warn().Str("link", item.Link).Msg("dropping untitled feed entry")
			continue
		}

		start := p.now()
		if item.PublishedParsed != nil {
			start = *item.PublishedParsed
		}

		candidate := events.EventParams{
			Title:       item.Title,
			Description: sanitizeText(item.Description),
			Source:      ptr(p.name),
			StartTime:   start,
		}
		if item.Link != "" {
			candidate.URL = ptr(item.Link)
		}
		applyFeedLocation(&candidate, item)
		candidates = append(candidates, candidate)
	}
	return candidates, nil
}

// applyFeedLocation reads the optional location elements some event feeds
// attach to items. Coordinates apply both-or-neither.
func applyFeedLocation(candidate *events.EventParams, item *gofeed.Item) {
	if city := customField(item, "city"); city != "" {
		candidate.City = ptr(city)
	}
	if country := customField(item, "country"); country != "" {
		candidate.Country = ptr(country)
	}
	latRaw := customField(item, "latitude")
	lonRaw := customField(item, "longitude")
	if latRaw == "" || lonRaw == "" {
		return
	}
	lat, latErr := strconv.ParseFloat(latRaw, 64)
	lon, lonErr := strconv.ParseFloat(lonRaw, 64)
	if latErr == nil && lonErr == nil {
		candidate.Latitude = &lat
		candidate.Longitude = &lon
	}
}

func customField(item *gofeed.Item, key string) string {
	if item.Custom == nil {
		return ""
	}
	return strings.TrimSpace(item.Custom[key])
}

// FeedNewsProvider ingests news items from an RSS feed (e.g. TechCrunch) and
// classifies each entry's topic from its title.
type FeedNewsProvider struct {
	name    string
	feedURL string
	parser  *gofeed.Parser
	logger  zerolog.Logger
	now     func() time.Time
}

func NewFeedNewsProvider(name, feedURL string, logger zerolog.Logger) *FeedNewsProvider {
	return &FeedNewsProvider{
		name:    name,
		feedURL: feedURL,
		parser:  gofeed.NewParser(),
		logger:  logger.With().Str("provider", name).Logger(),
		now:     time.Now,
	}
}

func (p *FeedNewsProvider) Name() string { return p.name }

func (p *FeedNewsProvider) Fetch(ctx context.Context) ([]news.ItemParams, error) {
	feed, err := p.parser.ParseURLWithContext(p.feedURL, ctx)
	if err != nil {
		return nil, fmt.Errorf("parse feed %s: %w", p.feedURL, err)
	}

	candidates := make([]news.ItemParams, 0, len(feed.Items))
	for _, item := range feed.Items {
		if strings.TrimSpace(item.Link) == "" {
			p.logger.Warn().Str("title", item.Title).Msg("dropping feed entry without link")
			continue
		}

		published := p.now()
		if item.PublishedParsed != nil {
			published = *item.PublishedParsed
		}

		candidate := news.ItemParams{
			Title:       item.Title,
			URL:         item.Link,
			Source:      ptr(p.name),
			Topic:       news.ClassifyTopic(item.Title),
			PublishedAt: published,
		}
		if summary := sanitizeText(item.Description); summary != "" {
			candidate.Summary = ptr(summary)
		}
		if image := feedImage(item); image != "" {
			candidate.ImageURL = ptr(image)
		}
		candidates = append(candidates, candidate)
	}
	return candidates, nil
}

// feedImage prefers the item's own image, then the first media:content URL.
func feedImage(item *gofeed.Item) string {
	if item.Image != nil && item.Image.URL != "" {
		return item.Image.URL
	}
	if media, ok := item.Extensions["media"]; ok {
		for _, content := range media["content"] {
			if url := content.Attrs["url"]; url != "" {
				return url
			}
		}
	}
	for _, enclosure := range item.Enclosures {
		if strings.HasPrefix(enclosure.Type, "image/") {
			return enclosure.URL
		}
	}
	return ""
}

var summaryPolicy = bluemonday.StrictPolicy()

// sanitizeText strips markup feeds embed in summaries before persistence.
func sanitizeText(raw string) string {
	return strings.TrimSpace(summaryPolicy.Sanitize(raw))
}
