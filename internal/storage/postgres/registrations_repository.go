package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/eventease/server/internal/domain/registrations"
)

var _ registrations.Repository = (*RegistrationRepository)(nil)

type RegistrationRepository struct {
	pool *pgxpool.Pool
	tx   pgx.Tx
}

func (r *RegistrationRepository) queryer() queryer {
	if r.tx != nil {
		return r.tx
	}
	return r.pool
}

func (r *RegistrationRepository) Find(ctx context.Context, userID, eventID int64) (*registrations.Registration, error) {
	var reg registrations.Registration
	err := r.queryer().QueryRow(ctx, `
SELECT id, user_id, event_id, created_at
  FROM registrations
 WHERE user_id = $1 AND event_id = $2
`, userID, eventID).Scan(&reg.ID, &reg.UserID, &reg.EventID, &reg.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, registrations.ErrNotFound
		}
		return nil, fmt.Errorf("find registration: %w", err)
	}
	return &reg, nil
}

func (r *RegistrationRepository) ListForEvent(ctx context.Context, eventID int64) ([]registrations.Registration, error) {
	rows, err := r.queryer().Query(ctx, `
SELECT id, user_id, event_id, created_at
  FROM registrations
 WHERE event_id = $1
 ORDER BY created_at, id
`, eventID)
	if err != nil {
		return nil, fmt.Errorf("list registrations: %w", err)
	}
	defer rows.Close()

	var items []registrations.Registration
	for rows.Next() {
		var reg registrations.Registration
		if err := rows.Scan(&reg.ID, &reg.UserID, &reg.EventID, &reg.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan registration: %w", err)
		}
		items = append(items, reg)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list registrations: %w", err)
	}
	return items, nil
}

func (r *RegistrationRepository) CountForEvent(ctx context.Context, eventID int64) (int, error) {
	var count int
	err := r.queryer().QueryRow(ctx,
		`SELECT count(*) FROM registrations WHERE event_id = $1`, eventID).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("count registrations: %w", err)
	}
	return count, nil
}

// Register locks the event row, checks capacity against the current count,
// and inserts, all in one transaction. The row lock serializes concurrent
// registrants so a full event never oversells.
func (r *RegistrationRepository) Register(ctx context.Context, userID, eventID int64) (*registrations.Registration, error) {
	if r.tx != nil {
		return r.register(ctx, r.tx, userID, eventID)
	}

	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("begin register tx: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	reg, err := r.register(ctx, tx, userID, eventID)
	if err != nil {
		return nil, err
	}
	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("commit register tx: %w", err)
	}
	return reg, nil
}

func (r *RegistrationRepository) register(ctx context.Context, tx pgx.Tx, userID, eventID int64) (*registrations.Registration, error) {
	var capacity *int
	err := tx.QueryRow(ctx,
		`SELECT capacity FROM events WHERE id = $1 FOR UPDATE`, eventID).Scan(&capacity)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, registrations.ErrEventNotFound
		}
		return nil, fmt.Errorf("lock event: %w", err)
	}

	if capacity != nil {
		var count int
		err := tx.QueryRow(ctx,
			`SELECT count(*) FROM registrations WHERE event_id = $1`, eventID).Scan(&count)
		if err != nil {
			return nil, fmt.Errorf("count registrations: %w", err)
		}
		if count >= *capacity {
			return nil, registrations.ErrEventFull
		}
	}

	var reg registrations.Registration
	err = tx.QueryRow(ctx, `
INSERT INTO registrations (user_id, event_id)
VALUES ($1, $2)
RETURNING id, user_id, event_id, created_at
`, userID, eventID).Scan(&reg.ID, &reg.UserID, &reg.EventID, &reg.CreatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return nil, registrations.ErrAlreadyRegistered
		}
		if isForeignKeyViolation(err) {
			return nil, registrations.ErrEventNotFound
		}
		return nil, fmt.Errorf("insert registration: %w", err)
	}
	return &reg, nil
}

func (r *RegistrationRepository) Delete(ctx context.Context, userID, eventID int64) error {
	tag, err := r.queryer().Exec(ctx,
		`DELETE FROM registrations WHERE user_id = $1 AND event_id = $2`, userID, eventID)
	if err != nil {
		return fmt.Errorf("delete registration: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return registrations.ErrNotFound
	}
	return nil
}
