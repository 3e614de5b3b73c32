// Package ingest implements the provider ingestion pipeline: fetch payloads
// from third-party event and news sources, normalize them into canonical
// records, deduplicate against the store, and persist what is new.
package ingest

import (
	"context"
	"errors"

	"github.com/eventease/server/internal/domain/events"
	"github.com/eventease/server/internal/domain/news"
)

// ErrUnknownProvider is returned when a refresh names a provider that was
// never registered.
var ErrUnknownProvider = errors.New("unknown provider")

// EventProvider fetches and normalizes third-party event payloads. Fetch
// returns one candidate per upstream item; malformed items are dropped by the
// provider, not surfaced as batch errors.
type EventProvider interface {
	Name() string
	Fetch(ctx context.Context) ([]events.EventParams, error)
}

// NewsProvider is the news-side equivalent of EventProvider.
type NewsProvider interface {
	Name() string
	Fetch(ctx context.Context) ([]news.ItemParams, error)
}

// Summary aggregates the outcome of one ingestion batch.
type Summary struct {
	Added   int `json:"added"`
	Skipped int `json:"skipped"`
	Failed  int `json:"failed"`
}

func (s *Summary) merge(other Summary) {
	s.Added += other.Added
	s.Skipped += other.Skipped
	s.Failed += other.Failed
}
