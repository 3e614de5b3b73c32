package ingest

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/eventease/server/internal/domain/events"
	"github.com/eventease/server/internal/domain/news"
	"github.com/eventease/server/internal/metrics"
)

// defaultProviderTimeout bounds one provider's fetch so a slow upstream
// cannot stall the rest of a refresh cycle.
const defaultProviderTimeout = 30 * time.Second

// Ingestor runs provider batches: fetch, normalize (inside the provider),
// dedupe against the store, persist. Per-item failures never abort a batch.
type Ingestor struct {
	eventsRepo     events.Repository
	newsRepo       news.Repository
	eventProviders map[string]EventProvider
	newsProviders  map[string]NewsProvider
	order          []string
	timeout        time.Duration
	logger         zerolog.Logger
}

func NewIngestor(eventsRepo events.Repository, newsRepo news.Repository, logger zerolog.Logger) *Ingestor {
	return &Ingestor{
		eventsRepo:     eventsRepo,
		newsRepo:       newsRepo,
		eventProviders: make(map[string]EventProvider),
		newsProviders:  make(map[string]NewsProvider),
		timeout:        defaultProviderTimeout,
		logger:         logger,
	}
}

// WithTimeout overrides the per-provider fetch timeout.
func (ing *Ingestor) WithTimeout(timeout time.Duration) *Ingestor {
	if timeout > 0 {
		ing.timeout = timeout
	}
	return ing
}

func (ing *Ingestor) RegisterEventProvider(provider EventProvider) {
	ing.eventProviders[provider.Name()] = provider
	ing.order = append(ing.order, provider.Name())
}

func (ing *Ingestor) RegisterNewsProvider(provider NewsProvider) {
	ing.newsProviders[provider.Name()] = provider
	ing.order = append(ing.order, provider.Name())
}

// Providers returns registered provider names in registration order.
func (ing *Ingestor) Providers() []string {
	out := make([]string, len(ing.order))
	copy(out, ing.order)
	return out
}

// Run executes one provider's batch and reports how many items were added,
// skipped as duplicates, or failed.
func (ing *Ingestor) Run(ctx context.Context, providerName string) (Summary, error) {
	start := time.Now()
	summary, err := ing.run(ctx, providerName)
	metrics.IngestDuration.WithLabelValues(providerName).Observe(time.Since(start).Seconds())

	result := "ok"
	if err != nil {
		result = "error"
	}
	metrics.IngestRuns.WithLabelValues(providerName, result).Inc()

	ing.logger.Info().
		Str("provider", providerName).
		Int("added", summary.Added).
		Int("skipped", summary.Skipped).
		Int("failed", summary.Failed).
		Err(err).
		Msg("ingestion run finished")
	return summary, err
}

func (ing *Ingestor) run(ctx context.Context, providerName string) (Summary, error) {
	ctx, cancel := context.WithTimeout(ctx, ing.timeout)
	defer cancel()

	if provider, ok := ing.eventProviders[providerName]; ok {
		candidates, err := provider.Fetch(ctx)
		if err != nil {
			// A timed-out or failing provider contributes zero items, it is
			// not fatal for the refresh cycle.
			return Summary{}, fmt.Errorf("fetch %s: %w", providerName, err)
		}
		return ing.storeEvents(ctx, providerName, candidates), nil
	}

	if provider, ok := ing.newsProviders[providerName]; ok {
		candidates, err := provider.Fetch(ctx)
		if err != nil {
			return Summary{}, fmt.Errorf("fetch %s: %w", providerName, err)
		}
		return ing.storeNews(ctx, providerName, candidates), nil
	}

	return Summary{}, fmt.Errorf("%w: %s", ErrUnknownProvider, providerName)
}

// EventProviderNames returns the registered event providers in
// registration order.
func (ing *Ingestor) EventProviderNames() []string {
	var out []string
	for _, name := range ing.order {
		if _, ok := ing.eventProviders[name]; ok {
			out = append(out, name)
		}
	}
	return out
}

// NewsProviderNames returns the registered news providers in registration
// order.
func (ing *Ingestor) NewsProviderNames() []string {
	var out []string
	for _, name := range ing.order {
		if _, ok := ing.newsProviders[name]; ok {
			out = append(out, name)
		}
	}
	return out
}

// RunAll refreshes every registered provider concurrently. It fails only
// when every provider fails; partial upstream outages are reported through
// the summary and logs.
func (ing *Ingestor) RunAll(ctx context.Context) (Summary, error) {
	return ing.runMany(ctx, ing.Providers())
}

// RunEvents refreshes only the event providers.
func (ing *Ingestor) RunEvents(ctx context.Context) (Summary, error) {
	return ing.runMany(ctx, ing.EventProviderNames())
}

// RunNews refreshes only the news providers.
func (ing *Ingestor) RunNews(ctx context.Context) (Summary, error) {
	return ing.runMany(ctx, ing.NewsProviderNames())
}

func (ing *Ingestor) runMany(ctx context.Context, providers []string) (Summary, error) {
	if len(providers) == 0 {
		return Summary{}, nil
	}

	summaries := make([]Summary, len(providers))
	failures := make([]error, len(providers))

	group, groupCtx := errgroup.WithContext(ctx)
	for i, name := range providers {
		group.Go(func() error {
			summary, err := ing.Run(groupCtx, name)
			summaries[i] = summary
			failures[i] = err
			// Errors are collected, not returned, so one provider cannot
			// cancel its siblings through the group context.
			return nil
		})
	}
	_ = group.Wait()

	var total Summary
	failed := 0
	for i := range providers {
		total.merge(summaries[i])
		if failures[i] != nil {
			failed++
		}
	}
	if failed == len(providers) {
		return total, fmt.Errorf("all %d providers failed: %w", failed, errors.Join(failures...))
	}
	return total, nil
}

// storeEvents dedupes and persists event candidates. Identity is the
// candidate's non-nil url (exact match); candidates without a url fall back
// to exact title match. Duplicates are skipped, never updated.
func (ing *Ingestor) storeEvents(ctx context.Context, providerName string, candidates []events.EventParams) Summary {
	var summary Summary
	for _, candidate := range candidates {
		duplicate, err := ing.eventExists(ctx, candidate)
		if err != nil {
			summary.Failed++
			metrics.IngestItems.WithLabelValues(providerName, "failed").Inc()
			ing.logger.Error().Err(err).Str("title", candidate.Title).Msg("dedup check failed")
			continue
		}
		if duplicate {
			summary.Skipped++
			metrics.IngestItems.WithLabelValues(providerName, "skipped").Inc()
			continue
		}

		if _, err := ing.eventsRepo.Create(ctx, candidate); err != nil {
			if errors.Is(err, events.ErrConflict) {
				// A concurrent refresh inserted the same record between the
				// existence check and the insert; the store constraint is
				// authoritative.
				summary.Skipped++
				metrics.IngestItems.WithLabelValues(providerName, "skipped").Inc()
				continue
			}
			summary.Failed++
			metrics.IngestItems.WithLabelValues(providerName, "failed").Inc()
			ing.logger.Error().Err(err).Str("title", candidate.Title).Msg("insert failed")
			continue
		}
		summary.Added++
		metrics.IngestItems.WithLabelValues(providerName, "added").Inc()
	}
	return summary
}

func (ing *Ingestor) eventExists(ctx context.Context, candidate events.EventParams) (bool, error) {
	var err error
	if candidate.URL != nil {
		_, err = ing.eventsRepo.FindByURL(ctx, *candidate.URL)
	} else {
		_, err = ing.eventsRepo.FindByTitle(ctx, candidate.Title)
	}
	if err == nil {
		return true, nil
	}
	if errors.Is(err, events.ErrNotFound) {
		return false, nil
	}
	return false, err
}

// storeNews dedupes news candidates on exact url match.
func (ing *Ingestor) storeNews(ctx context.Context, providerName string, candidates []news.ItemParams) Summary {
	var summary Summary
	for _, candidate := range candidates {
		_, err := ing.newsRepo.FindByURL(ctx, candidate.URL)
		if err == nil {
			summary.Skipped++
			metrics.IngestItems.WithLabelValues(providerName, "skipped").Inc()
			continue
		}
		if !errors.Is(err, news.ErrNotFound) {
			summary.Failed++
			metrics.IngestItems.WithLabelValues(providerName, "failed").Inc()
			ing.logger.Error().Err(err).Str("url", candidate.URL).Msg("dedup check failed")
			continue
		}

		if _, err := ing.newsRepo.Create(ctx, candidate); err != nil {
			if errors.Is(err, news.ErrConflict) {
				summary.Skipped++
				metrics.IngestItems.WithLabelValues(providerName, "skipped").Inc()
				continue
			}
			summary.Failed++
			metrics.IngestItems.WithLabelValues(providerName, "failed").Inc()
			ing.logger.Error().Err(err).Str("url", candidate.URL).Msg("insert failed")
			continue
		}
		summary.Added++
		metrics.IngestItems.WithLabelValues(providerName, "added").Inc()
	}
	return summary
}
