// Package postgres implements the domain repositories on PostgreSQL.
package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/eventease/server/internal/config"
	"github.com/eventease/server/internal/domain/events"
	"github.com/eventease/server/internal/domain/news"
	"github.com/eventease/server/internal/domain/registrations"
	"github.com/eventease/server/internal/domain/users"
)

// NewPool opens a connection pool sized from configuration.
func NewPool(ctx context.Context, cfg config.DatabaseConfig) (*pgxpool.Pool, error) {
	poolCfg, err := pgxpool.ParseConfig(cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("parse database url: %w", err)
	}
	if cfg.MaxConnections > 0 {
		poolCfg.MaxConns = int32(cfg.MaxConnections)
	}

	pool, err := pgxpool.NewWithConfig(ctx, poolCfg)
	if err != nil {
		return nil, fmt.Errorf("connect database: %w", err)
	}
	return pool, nil
}

// Store bundles the repositories over one pool. Inside WithTx the
// repositories share a single transaction.
type Store struct {
	pool *pgxpool.Pool
	tx   pgx.Tx
}

func NewStore(pool *pgxpool.Pool) (*Store, error) {
	if pool == nil {
		return nil, fmt.Errorf("postgres store: pool is nil")
	}
	return &Store{pool: pool}, nil
}

func (s *Store) Events() events.Repository {
	return &EventRepository{pool: s.pool, tx: s.tx}
}

func (s *Store) News() news.Repository {
	return &NewsRepository{pool: s.pool, tx: s.tx}
}

func (s *Store) Users() users.Repository {
	return &UserRepository{pool: s.pool, tx: s.tx}
}

func (s *Store) Registrations() registrations.Repository {
	return &RegistrationRepository{pool: s.pool, tx: s.tx}
}

func (s *Store) WithTx(ctx context.Context, fn func(context.Context, *Store) error) error {
	if s.tx != nil {
		return fn(ctx, s)
	}

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}

	wrapped := &Store{pool: s.pool, tx: tx}
	if err := fn(ctx, wrapped); err != nil {
		_ = tx.Rollback(ctx)
		return err
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit tx: %w", err)
	}
	return nil
}
