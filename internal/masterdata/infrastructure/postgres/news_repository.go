package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/georgysavva/scany/v2/sqlscan"
	"github.com/google/uuid"

	masterdata "energy-audit/internal/masterdata/domain"
)

const defaultNewsTable = "news"

// NewsRepository is a Postgres implementation for the news feed.
type NewsRepository struct {
	db    DBTX
	table string
}

// NewNewsRepository constructs a repository.
func NewNewsRepository(db DBTX) *NewsRepository {
	return &NewsRepository{db: db, table: defaultNewsTable}
}

var newsColumns = []string{
	"id", "slug", "title", "summary", "body", "cover_image",
	"COALESCE(author_id, '') AS author_id", "published", "published_at",
}

// Save upserts a news item.
func (r *NewsRepository) Save(ctx context.Context, news *masterdata.News) error {
	if r == nil || r.db == nil {
		return errors.New("news repo: nil db")
	}
	if news == nil {
		return errors.New("news repo: nil news")
	}
	if news.ID == "" {
		news.ID = uuid.NewString()
	}

	query := fmt.Sprintf(`
INSERT INTO %s (id, slug, title, summary, body, cover_image, author_id, published)
VALUES ($1, $2, $3, $4, $5, $6, NULLIF($7, ''), $8)
ON CONFLICT (id)
DO UPDATE SET
	slug = EXCLUDED.slug,
	title = EXCLUDED.title,
	summary = EXCLUDED.summary,
	body = EXCLUDED.body,
	cover_image = EXCLUDED.cover_image,
	published = EXCLUDED.published
RETURNING published_at`, r.table)

	var publishedAt time.Time
	if err := r.db.QueryRowContext(ctx, query,
		news.ID, news.Slug, news.Title, news.Summary, news.Body, news.CoverImage, news.AuthorID, news.Published,
	).Scan(&publishedAt); err != nil {
		return translate(err)
	}
	news.PublishedAt = publishedAt.UTC()
	return nil
}

// ListPublished returns published items, newest first.
func (r *NewsRepository) ListPublished(ctx context.Context, limit int) ([]masterdata.News, error) {
	if r == nil || r.db == nil {
		return nil, errors.New("news repo: nil db")
	}
	q := builder.Select(newsColumns...).
		From(r.table).
		Where("published = ?", true).
		OrderBy("published_at DESC", "id ASC")
	if limit > 0 {
		q = q.Limit(uint64(limit))
	}
	query, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}
	var items []masterdata.News
	if err := sqlscan.Select(ctx, r.db, &items, query, args...); err != nil {
		return nil, err
	}
	for i := range items {
		items[i].PublishedAt = items[i].PublishedAt.UTC()
	}
	return items, nil
}
