package events

import (
	"context"
	"fmt"
	"net/url"
	"strconv"
	"strings"
)

type Service struct {
	repo Repository
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

// Ranked loads all events and applies the ranking resolver for the viewer.
func (s *Service) Ranked(ctx context.Context, viewer ViewerProfile, opts RankOptions) ([]Event, error) {
	items, err := s.repo.List(ctx)
	if err != nil {
		return nil, err
	}
	return Rank(items, viewer, opts), nil
}

func (s *Service) GetByID(ctx context.Context, id int64) (*Event, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *Service) Create(ctx context.Context, params EventParams) (*Event, error) {
	return s.repo.Create(ctx, params)
}

// Update replaces all mutable fields of an existing event.
func (s *Service) Update(ctx context.Context, id int64, params EventParams) (*Event, error) {
	return s.repo.Update(ctx, id, params)
}

// Delete removes an event; dependent registrations cascade at the store.
func (s *Service) Delete(ctx context.Context, id int64) error {
	return s.repo.Delete(ctx, id)
}

type FilterError struct {
	Field   string
	Message string
}

func (e FilterError) Error() string {
	if e.Field == "" {
		return e.Message
	}
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Message)
}

// ParseRankOptions reads q, radius, and strategy query parameters.
func ParseRankOptions(values url.Values) (RankOptions, error) {
	opts := RankOptions{
		Strategy: StrategyProviderPriority,
		Query:    strings.TrimSpace(values.Get("q")),
		RadiusKm: DefaultRadiusKm,
	}

	if raw := strings.TrimSpace(values.Get("radius")); raw != "" {
		radius, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			return opts, FilterError{Field: "radius", Message: "must be a number"}
		}
		if radius <= 0 {
			return opts, FilterError{Field: "radius", Message: "must be positive"}
		}
		opts.RadiusKm = radius
	}

	if raw := strings.TrimSpace(values.Get("strategy")); raw != "" {
		switch Strategy(strings.ToLower(raw)) {
		case StrategyProviderPriority:
			opts.Strategy = StrategyProviderPriority
		case StrategyLocationTiers:
			opts.Strategy = StrategyLocationTiers
		default:
			return opts, FilterError{Field: "strategy", Message: "must be provider or location"}
		}
	}

	return opts, nil
}
