package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/eventease/server/internal/domain/events"
)

var _ events.Repository = (*EventRepository)(nil)

type EventRepository struct {
	pool *pgxpool.Pool
	tx   pgx.Tx
}

func (r *EventRepository) queryer() queryer {
	if r.tx != nil {
		return r.tx
	}
	return r.pool
}

const eventColumns = `id, title, description, address, city, country, capacity,
       latitude, longitude, source, url, event_type, image, map_image,
       start_time, end_time, created_at, updated_at`

func scanEvent(row pgx.Row) (*events.Event, error) {
	var e events.Event
	err := row.Scan(
		&e.ID, &e.Title, &e.Description, &e.Address, &e.City, &e.Country, &e.Capacity,
		&e.Latitude, &e.Longitude, &e.Source, &e.URL, &e.EventType, &e.Image, &e.MapImage,
		&e.StartTime, &e.EndTime, &e.CreatedAt, &e.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &e, nil
}

func (r *EventRepository) List(ctx context.Context) ([]events.Event, error) {
	rows, err := r.queryer().Query(ctx, `
SELECT `+eventColumns+`
  FROM events
 ORDER BY start_time DESC, id DESC
`)
	if err != nil {
		return nil, fmt.Errorf("list events: %w", err)
	}
	defer rows.Close()

	var items []events.Event
	for rows.Next() {
		e, err := scanEvent(rows)
		if err != nil {
			return nil, fmt.Errorf("scan event: %w", err)
		}
		items = append(items, *e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list events: %w", err)
	}
	return items, nil
}

func (r *EventRepository) GetByID(ctx context.Context, id int64) (*events.Event, error) {
	e, err := scanEvent(r.queryer().QueryRow(ctx, `
SELECT `+eventColumns+`
  FROM events
 WHERE id = $1
`, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, events.ErrNotFound
		}
		return nil, fmt.Errorf("get event: %w", err)
	}
	return e, nil
}

func (r *EventRepository) Create(ctx context.Context, params events.EventParams) (*events.Event, error) {
	e, err := scanEvent(r.queryer().QueryRow(ctx, `
INSERT INTO events (title, description, address, city, country, capacity,
                    latitude, longitude, source, url, event_type, image, map_image,
                    start_time, end_time)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15)
RETURNING `+eventColumns,
		params.Title, params.Description, params.Address, params.City, params.Country,
		params.Capacity, params.Latitude, params.Longitude, params.Source, params.URL,
		params.EventType, params.Image, params.MapImage, params.StartTime, params.EndTime,
	))
	if err != nil {
		if isUniqueViolation(err) {
			return nil, events.ErrConflict
		}
		return nil, fmt.Errorf("create event: %w", err)
	}
	return e, nil
}

func (r *EventRepository) Update(ctx context.Context, id int64, params events.EventParams) (*events.Event, error) {
	e, err := scanEvent(r.queryer().QueryRow(ctx, `
UPDATE events
   SET title = $2, description = $3, address = $4, city = $5, country = $6,
       capacity = $7, latitude = $8, longitude = $9, source = $10, url = $11,
       event_type = $12, image = $13, map_image = $14, start_time = $15,
       end_time = $16, updated_at = now()
 WHERE id = $1
RETURNING `+eventColumns,
		id, params.Title, params.Description, params.Address, params.City, params.Country,
		params.Capacity, params.Latitude, params.Longitude, params.Source, params.URL,
		params.EventType, params.Image, params.MapImage, params.StartTime, params.EndTime,
	))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, events.ErrNotFound
		}
		if isUniqueViolation(err) {
			return nil, events.ErrConflict
		}
		return nil, fmt.Errorf("update event: %w", err)
	}
	return e, nil
}

func (r *EventRepository) Delete(ctx context.Context, id int64) error {
	tag, err := r.queryer().Exec(ctx, `DELETE FROM events WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete event: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return events.ErrNotFound
	}
	return nil
}

func (r *EventRepository) FindByURL(ctx context.Context, url string) (*events.Event, error) {
	e, err := scanEvent(r.queryer().QueryRow(ctx, `
SELECT `+eventColumns+`
  FROM events
 WHERE url = $1
 ORDER BY id
 LIMIT 1
`, url))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, events.ErrNotFound
		}
		return nil, fmt.Errorf("find event by url: %w", err)
	}
	return e, nil
}

func (r *EventRepository) FindByTitle(ctx context.Context, title string) (*events.Event, error) {
	e, err := scanEvent(r.queryer().QueryRow(ctx, `
SELECT `+eventColumns+`
  FROM events
 WHERE title = $1
 ORDER BY id
 LIMIT 1
`, title))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, events.ErrNotFound
		}
		return nil, fmt.Errorf("find event by title: %w", err)
	}
	return e, nil
}
