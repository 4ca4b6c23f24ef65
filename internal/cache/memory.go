package cache

import (
	"context"
	"fmt"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"

	"teletext/internal/domain"
)

// DefaultMaxEntries bounds the in-memory cache when no size is configured.
const DefaultMaxEntries = 4096

// MemoryStore is a process-local Store. Entries are copied in and out so cached pages are never
// mutated by callers. Expiry is lazy; the LRU bound only applies once the cache is full.
type MemoryStore struct {
	entries *lru.Cache[string, Entry]
	now     func() time.Time
}

type MemoryOption func(*MemoryStore)

// WithClock injects the time source used for expiry.
func WithClock(now func() time.Time) MemoryOption {
	return func(s *MemoryStore) { s.now = now }
}

func NewMemoryStore(maxEntries int, opts ...MemoryOption) (*MemoryStore, error) {
	if maxEntries <= 0 {
		maxEntries = DefaultMaxEntries
	}
	entries, err := lru.New[string, Entry](maxEntries)
	if err != nil {
		return nil, fmt.Errorf("failed to create lru cache: %w", err)
	}
	s := &MemoryStore{entries: entries, now: time.Now}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

func (s *MemoryStore) Get(_ context.Context, key string) (*domain.Page, bool, error) {
	e, ok := s.entries.Get(key)
	if !ok {
		return nil, false, nil
	}
	if e.Expired(s.now()) {
		s.removeIfSame(key, e)
		return nil, false, nil
	}
	return e.Page.Clone(), true, nil
}

func (s *MemoryStore) Set(_ context.Context, key string, page *domain.Page, ttl time.Duration) error {
	if page == nil {
		return fmt.Errorf("cache: nil page for key %q", key)
	}
	s.entries.Add(key, Entry{
		Key:       key,
		Page:      page.Clone(),
		CreatedAt: s.now(),
		TTL:       ttl,
	})
	return nil
}

func (s *MemoryStore) Has(_ context.Context, key string) (bool, error) {
	e, ok := s.entries.Peek(key)
	if !ok {
		return false, nil
	}
	if e.Expired(s.now()) {
		s.removeIfSame(key, e)
		return false, nil
	}
	return true, nil
}

func (s *MemoryStore) Delete(_ context.Context, key string) error {
	s.entries.Remove(key)
	return nil
}

func (s *MemoryStore) Clear(_ context.Context) error {
	s.entries.Purge()
	return nil
}

// Size purges expired entries before counting.
func (s *MemoryStore) Size(_ context.Context) (int, error) {
	now := s.now()
	for _, key := range s.entries.Keys() {
		if e, ok := s.entries.Peek(key); ok && e.Expired(now) {
			s.removeIfSame(key, e)
		}
	}
	return s.entries.Len(), nil
}

// removeIfSame drops key unless a concurrent Set replaced the stale entry in the meantime.
func (s *MemoryStore) removeIfSame(key string, stale Entry) {
	current, ok := s.entries.Peek(key)
	if ok && current.CreatedAt.Equal(stale.CreatedAt) {
		s.entries.Remove(key)
	}
}
