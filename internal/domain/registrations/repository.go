package registrations

import (
	"context"
	"errors"
	"time"
)

var (
	ErrEventNotFound     = errors.New("event not found")
	ErrNotFound          = errors.New("registration not found")
	ErrAlreadyRegistered = errors.New("user already registered for this event")
	ErrEventFull         = errors.New("event is full")
)

// Registration links a user to an event. Immutable once created; unique on
// (user_id, event_id).
type Registration struct {
	ID        int64
	UserID    int64
	EventID   int64
	CreatedAt time.Time
}

type Repository interface {
	Find(ctx context.Context, userID, eventID int64) (*Registration, error)
	ListForEvent(ctx context.Context, eventID int64) ([]Registration, error)
	CountForEvent(ctx context.Context, eventID int64) (int, error)

	// Register performs the capacity check and insert as one transaction with
	// the event row locked, so concurrent registrants cannot exceed capacity.
	// Returns ErrEventNotFound, ErrAlreadyRegistered, or ErrEventFull.
	Register(ctx context.Context, userID, eventID int64) (*Registration, error)

	Delete(ctx context.Context, userID, eventID int64) error
}
