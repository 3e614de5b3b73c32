package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/eventease/server/internal/domain/news"
)

var _ news.Repository = (*NewsRepository)(nil)

type NewsRepository struct {
	pool *pgxpool.Pool
	tx   pgx.Tx
}

func (r *NewsRepository) queryer() queryer {
	if r.tx != nil {
		return r.tx
	}
	return r.pool
}

const newsColumns = `id, title, summary, url, image_url, source, topic, published_at, created_at`

func scanNewsItem(row pgx.Row) (*news.Item, error) {
	var item news.Item
	err := row.Scan(
		&item.ID, &item.Title, &item.Summary, &item.URL, &item.ImageURL,
		&item.Source, &item.Topic, &item.PublishedAt, &item.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &item, nil
}

func (r *NewsRepository) List(ctx context.Context, topic string) ([]news.Item, error) {
	rows, err := r.queryer().Query(ctx, `
SELECT `+newsColumns+`
  FROM news_items
 WHERE ($1 = '' OR topic = $1)
 ORDER BY published_at DESC, id DESC
`, topic)
	if err != nil {
		return nil, fmt.Errorf("list news: %w", err)
	}
	defer rows.Close()

	var items []news.Item
	for rows.Next() {
		item, err := scanNewsItem(rows)
		if err != nil {
			return nil, fmt.Errorf("scan news item: %w", err)
		}
		items = append(items, *item)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list news: %w", err)
	}
	return items, nil
}

func (r *NewsRepository) GetByID(ctx context.Context, id int64) (*news.Item, error) {
	item, err := scanNewsItem(r.queryer().QueryRow(ctx, `
SELECT `+newsColumns+`
  FROM news_items
 WHERE id = $1
`, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, news.ErrNotFound
		}
		return nil, fmt.Errorf("get news item: %w", err)
	}
	return item, nil
}

func (r *NewsRepository) Create(ctx context.Context, params news.ItemParams) (*news.Item, error) {
	item, err := scanNewsItem(r.queryer().QueryRow(ctx, `
INSERT INTO news_items (title, summary, url, image_url, source, topic, published_at)
VALUES ($1, $2, $3, $4, $5, $6, $7)
RETURNING `+newsColumns,
		params.Title, params.Summary, params.URL, params.ImageURL,
		params.Source, params.Topic, params.PublishedAt,
	))
	if err != nil {
		if isUniqueViolation(err) {
			return nil, news.ErrConflict
		}
		return nil, fmt.Errorf("create news item: %w", err)
	}
	return item, nil
}

func (r *NewsRepository) Update(ctx context.Context, id int64, params news.ItemParams) (*news.Item, error) {
	item, err := scanNewsItem(r.queryer().QueryRow(ctx, `
UPDATE news_items
   SET title = $2, summary = $3, url = $4, image_url = $5, source = $6,
       topic = $7, published_at = $8
 WHERE id = $1
RETURNING `+newsColumns,
		id, params.Title, params.Summary, params.URL, params.ImageURL,
		params.Source, params.Topic, params.PublishedAt,
	))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, news.ErrNotFound
		}
		if isUniqueViolation(err) {
			return nil, news.ErrConflict
		}
		return nil, fmt.Errorf("update news item: %w", err)
	}
	return item, nil
}

func (r *NewsRepository) Delete(ctx context.Context, id int64) error {
	tag, err := r.queryer().Exec(ctx, `DELETE FROM news_items WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete news item: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return news.ErrNotFound
	}
	return nil
}

func (r *NewsRepository) FindByURL(ctx context.Context, url string) (*news.Item, error) {
	item, err := scanNewsItem(r.queryer().QueryRow(ctx, `
SELECT `+newsColumns+`
  FROM news_items
 WHERE url = $1
`, url))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, news.ErrNotFound
		}
		return nil, fmt.Errorf("find news item by url: %w", err)
	}
	return item, nil
}
