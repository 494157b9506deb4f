package memory

import (
	"context"
	"errors"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	masterdata "energy-audit/internal/masterdata/domain"
)

// NewsRepository is an in-memory repository for demo/testing.
type NewsRepository struct {
	mu   sync.RWMutex
	data map[string]masterdata.News
}

// NewNewsRepository constructs a repository.
func NewNewsRepository() *NewsRepository {
	return &NewsRepository{data: make(map[string]masterdata.News)}
}

// Save inserts or updates a news item. Slugs are unique.
func (r *NewsRepository) Save(ctx context.Context, news *masterdata.News) error {
	_ = ctx
	if news == nil {
		return errors.New("news repo: nil news")
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	for id, existing := range r.data {
		if id != news.ID && existing.Slug == news.Slug {
			return masterdata.ErrDuplicate
		}
	}
	if news.ID == "" {
		news.ID = uuid.NewString()
	}
	if news.PublishedAt.IsZero() {
		news.PublishedAt = time.Now().UTC()
	}
	r.data[news.ID] = *news
	return nil
}

// ListPublished returns published items, newest first.
func (r *NewsRepository) ListPublished(ctx context.Context, limit int) ([]masterdata.News, error) {
	_ = ctx
	r.mu.RLock()
	defer r.mu.RUnlock()
	result := make([]masterdata.News, 0, len(r.data))
	for _, news := range r.data {
		if news.Published {
			result = append(result, news)
		}
	}
	sort.Slice(result, func(i, j int) bool {
		if !result[i].PublishedAt.Equal(result[j].PublishedAt) {
			return result[i].PublishedAt.After(result[j].PublishedAt)
		}
		return result[i].ID < result[j].ID
	})
	if limit > 0 && len(result) > limit {
		result = result[:limit]
	}
	return result, nil
}
