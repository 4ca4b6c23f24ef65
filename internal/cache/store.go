// Package cache provides time-boxed memoization of produced pages keyed by page identifier.
package cache

import (
	"context"
	"time"

	"teletext/internal/domain"
)

//go:generate go run go.uber.org/mock/mockgen -source=store.go -destination=../mocks/mock_store.go -package=mocks

// Store is a page cache with per-entry TTL. Expired entries are treated as absent.
// A ttl <= 0 expires the entry immediately.
type Store interface {
	Get(ctx context.Context, key string) (*domain.Page, bool, error)
	Set(ctx context.Context, key string, page *domain.Page, ttl time.Duration) error
	Has(ctx context.Context, key string) (bool, error)
	Delete(ctx context.Context, key string) error
	Clear(ctx context.Context) error
	Size(ctx context.Context) (int, error)
}

// Entry is what the stores keep per key.
type Entry struct {
	Key       string        `json:"key"`
	Page      *domain.Page  `json:"page"`
	CreatedAt time.Time     `json:"created_at"`
	TTL       time.Duration `json:"ttl"`
}

// Expired reports whether the entry is stale at now.
func (e Entry) Expired(now time.Time) bool {
	if e.TTL <= 0 {
		return true
	}
	return now.Sub(e.CreatedAt) > e.TTL
}
