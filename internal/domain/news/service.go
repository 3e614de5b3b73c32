package news

import (
	"context"
	"strings"
)

type Service struct {
	repo Repository
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

// List returns news items, optionally filtered by topic, newest first.
func (s *Service) List(ctx context.Context, topic string) ([]Item, error) {
	return s.repo.List(ctx, strings.TrimSpace(topic))
}

func (s *Service) GetByID(ctx context.Context, id int64) (*Item, error) {
	return s.repo.GetByID(ctx, id)
}

// Create persists an admin-authored item. A missing topic is classified from
// the title the same way ingestion classifies feed entries.
func (s *Service) Create(ctx context.Context, params ItemParams) (*Item, error) {
	if strings.TrimSpace(params.Topic) == "" {
		params.Topic = ClassifyTopic(params.Title)
	}
	return s.repo.Create(ctx, params)
}

func (s *Service) Update(ctx context.Context, id int64, params ItemParams) (*Item, error) {
	if strings.TrimSpace(params.Topic) == "" {
		params.Topic = ClassifyTopic(params.Title)
	}
	return s.repo.Update(ctx, id, params)
}

func (s *Service) Delete(ctx context.Context, id int64) error {
	return s.repo.Delete(ctx, id)
}
