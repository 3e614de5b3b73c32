package events

import (
	"context"
	"errors"
	"time"
)

var ErrNotFound = errors.New("event not found")

var ErrConflict = errors.New("event conflict")

// Event is a plain value record. Optional columns are pointers; an Event with
// a non-nil Source and URL is unique on (source, url) among persisted events.
type Event struct {
	ID          int64
	Title       string
	Description string
	Address     *string
	City        *string
	Country     *string
	Capacity    *int
	Latitude    *float64
	Longitude   *float64
	Source      *string
	URL         *string
	EventType   *string
	Image       *string
	MapImage    *string
	StartTime   time.Time
	EndTime     *time.Time
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// HasCoordinates reports whether both latitude and longitude are set.
func (e Event) HasCoordinates() bool {
	return e.Latitude != nil && e.Longitude != nil
}

// EventParams carries all mutable fields for create and replace-all update.
type EventParams struct {
	Title       string
	Description string
	Address     *string
	City        *string
	Country     *string
	Capacity    *int
	Latitude    *float64
	Longitude   *float64
	Source      *string
	URL         *string
	EventType   *string
	Image       *string
	MapImage    *string
	StartTime   time.Time
	EndTime     *time.Time
}

type Repository interface {
	List(ctx context.Context) ([]Event, error)
	GetByID(ctx context.Context, id int64) (*Event, error)
	Create(ctx context.Context, params EventParams) (*Event, error)
	Update(ctx context.Context, id int64, params EventParams) (*Event, error)
	Delete(ctx context.Context, id int64) error
	FindByURL(ctx context.Context, url string) (*Event, error)
	FindByTitle(ctx context.Context, title string) (*Event, error)
}
