package news

import (
	"context"
	"errors"
	"time"
)

var ErrNotFound = errors.New("news item not found")

var ErrConflict = errors.New("news item conflict")

// Item is a curated news record. URL is the dedup key and unique in the store.
type Item struct {
	ID          int64
	Title       string
	Summary     *string
	URL         string
	ImageURL    *string
	Source      *string
	Topic       string
	PublishedAt time.Time
	CreatedAt   time.Time
}

type ItemParams struct {
	Title       string
	Summary     *string
	URL         string
	ImageURL    *string
	Source      *string
	Topic       string
	PublishedAt time.Time
}

type Repository interface {
	List(ctx context.Context, topic string) ([]Item, error)
	GetByID(ctx context.Context, id int64) (*Item, error)
	Create(ctx context.Context, params ItemParams) (*Item, error)
	Update(ctx context.Context, id int64, params ItemParams) (*Item, error)
	Delete(ctx context.Context, id int64) error
	FindByURL(ctx context.Context, url string) (*Item, error)
}
