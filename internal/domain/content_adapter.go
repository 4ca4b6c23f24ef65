package domain

import (
	"context"
	"time"
)

//go:generate go run go.uber.org/mock/mockgen -source=content_adapter.go -destination=../mocks/mock_content_adapter.go -package=mocks

// ContentAdapter turns a page id into a Page. Implementations may do network I/O but must not
// retry; rows may have any shape since the dispatcher normalizes them.
type ContentAdapter interface {
	Name() string
	GetPage(ctx context.Context, id PageID, params map[string]string) (*Page, error)
}

// CachePolicy lets an adapter choose the TTL for a page. Zero or negative disables caching.
type CachePolicy interface {
	CacheTTL(id PageID) time.Duration
}

// CacheKeyParams lets an adapter declare which query parameters affect its content.
// Adapters without it have every parameter folded into the cache key.
type CacheKeyParams interface {
	CacheParams(params map[string]string) map[string]string
}
