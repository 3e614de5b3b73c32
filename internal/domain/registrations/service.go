package registrations

import (
	"context"
	"errors"
)

type Service struct {
	repo Repository
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

// Register moves the (user, event) pair from unregistered to registered.
// The explicit pre-check gives a clean conflict answer in the common case;
// the repository's transactional guard is authoritative under races.
func (s *Service) Register(ctx context.Context, userID, eventID int64) (*Registration, error) {
	existing, err := s.repo.Find(ctx, userID, eventID)
	if err != nil && !errors.Is(err, ErrNotFound) {
		return nil, err
	}
	if existing != nil {
		return nil, ErrAlreadyRegistered
	}
	return s.repo.Register(ctx, userID, eventID)
}

// Unregister returns the pair to the unregistered state.
func (s *Service) Unregister(ctx context.Context, userID, eventID int64) error {
	return s.repo.Delete(ctx, userID, eventID)
}

// ListForEvent returns every registration for one event.
func (s *Service) ListForEvent(ctx context.Context, eventID int64) ([]Registration, error) {
	return s.repo.ListForEvent(ctx, eventID)
}
