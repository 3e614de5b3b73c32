package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/eventease/server/internal/domain/users"
)

var _ users.Repository = (*UserRepository)(nil)

type UserRepository struct {
	pool *pgxpool.Pool
	tx   pgx.Tx
}

func (r *UserRepository) queryer() queryer {
	if r.tx != nil {
		return r.tx
	}
	return r.pool
}

const userColumns = `id, email, name, password_hash, latitude, longitude, city, country, is_admin, created_at`

func scanUser(row pgx.Row) (*users.User, error) {
	var u users.User
	err := row.Scan(
		&u.ID, &u.Email, &u.Name, &u.PasswordHash, &u.Latitude, &u.Longitude,
		&u.City, &u.Country, &u.IsAdmin, &u.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &u, nil
}

func (r *UserRepository) List(ctx context.Context) ([]users.User, error) {
	rows, err := r.queryer().Query(ctx, `
SELECT `+userColumns+`
  FROM users
 ORDER BY id
`)
	if err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	defer rows.Close()

	var items []users.User
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, fmt.Errorf("scan user: %w", err)
		}
		items = append(items, *u)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	return items, nil
}

func (r *UserRepository) GetByID(ctx context.Context, id int64) (*users.User, error) {
	u, err := scanUser(r.queryer().QueryRow(ctx, `
SELECT `+userColumns+`
  FROM users
 WHERE id = $1
`, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, users.ErrNotFound
		}
		return nil, fmt.Errorf("get user: %w", err)
	}
	return u, nil
}

func (r *UserRepository) GetByEmail(ctx context.Context, email string) (*users.User, error) {
	u, err := scanUser(r.queryer().QueryRow(ctx, `
SELECT `+userColumns+`
  FROM users
 WHERE email = $1
`, email))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, users.ErrNotFound
		}
		return nil, fmt.Errorf("get user by email: %w", err)
	}
	return u, nil
}

func (r *UserRepository) Create(ctx context.Context, params users.UserParams) (*users.User, error) {
	u, err := scanUser(r.queryer().QueryRow(ctx, `
INSERT INTO users (email, name, password_hash, latitude, longitude, city, country)
VALUES ($1, $2, $3, $4, $5, $6, $7)
RETURNING `+userColumns,
		params.Email, params.Name, params.PasswordHash,
		params.Latitude, params.Longitude, params.City, params.Country,
	))
	if err != nil {
		if isUniqueViolation(err) {
			return nil, users.ErrConflict
		}
		return nil, fmt.Errorf("create user: %w", err)
	}
	return u, nil
}

func (r *UserRepository) Update(ctx context.Context, id int64, params users.UserParams) (*users.User, error) {
	u, err := scanUser(r.queryer().QueryRow(ctx, `
UPDATE users
   SET email = $2, name = $3, password_hash = $4, latitude = $5, longitude = $6,
       city = $7, country = $8
 WHERE id = $1
RETURNING `+userColumns,
		id, params.Email, params.Name, params.PasswordHash,
		params.Latitude, params.Longitude, params.City, params.Country,
	))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, users.ErrNotFound
		}
		if isUniqueViolation(err) {
			return nil, users.ErrConflict
		}
		return nil, fmt.Errorf("update user: %w", err)
	}
	return u, nil
}

func (r *UserRepository) UpdateLocation(ctx context.Context, id int64, params users.LocationParams) (*users.User, error) {
	u, err := scanUser(r.queryer().QueryRow(ctx, `
UPDATE users
   SET latitude = $2, longitude = $3, city = $4, country = $5
 WHERE id = $1
RETURNING `+userColumns,
		id, params.Latitude, params.Longitude, params.City, params.Country,
	))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, users.ErrNotFound
		}
		return nil, fmt.Errorf("update user location: %w", err)
	}
	return u, nil
}

func (r *UserRepository) Delete(ctx context.Context, id int64) error {
	tag, err := r.queryer().Exec(ctx, `DELETE FROM users WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete user: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return users.ErrNotFound
	}
	return nil
}
