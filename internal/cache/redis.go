package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"teletext/internal/domain"
)

// DefaultKeyPrefix namespaces page entries in a shared Redis.
const DefaultKeyPrefix = "teletext:page:"

const scanBatch = 200

// RedisStore keeps pages in Redis so several server instances share one cache.
// Redis expires keys natively; the stored createdAt/ttl pair is checked again on read.
type RedisStore struct {
	client *redis.Client
	prefix string
	now    func() time.Time
}

// NewRedisStore wraps an existing client.
func NewRedisStore(client *redis.Client, prefix string) *RedisStore {
	if prefix == "" {
		prefix = DefaultKeyPrefix
	}
	return &RedisStore{client: client, prefix: prefix, now: time.Now}
}

// NewRedisStoreWithURL creates a client from a redis:// URL.
func NewRedisStoreWithURL(url, prefix string) (*RedisStore, error) {
	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("invalid redis url: %w", err)
	}
	return NewRedisStore(redis.NewClient(opts), prefix), nil
}

// Ping checks connectivity; used by the readiness probe.
func (s *RedisStore) Ping(ctx context.Context) error {
	return s.client.Ping(ctx).Err()
}

// Close closes the Redis connection.
func (s *RedisStore) Close() error {
	return s.client.Close()
}

func (s *RedisStore) Get(ctx context.Context, key string) (*domain.Page, bool, error) {
	raw, err := s.client.Get(ctx, s.prefix+key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("redis get %q: %w", key, err)
	}

	var e Entry
	if err := json.Unmarshal(raw, &e); err != nil {
		// Corrupt payloads are dropped and treated as a miss.
		_ = s.client.Del(ctx, s.prefix+key).Err()
		return nil, false, fmt.Errorf("redis decode %q: %w", key, err)
	}
	if e.Page == nil || e.Expired(s.now()) {
		_ = s.client.Del(ctx, s.prefix+key).Err()
		return nil, false, nil
	}
	return e.Page, true, nil
}

func (s *RedisStore) Set(ctx context.Context, key string, page *domain.Page, ttl time.Duration) error {
	if page == nil {
		return fmt.Errorf("cache: nil page for key %q", key)
	}
	if ttl <= 0 {
		// Expires immediately: nothing to keep, but drop any older value.
		return s.Delete(ctx, key)
	}

	payload, err := json.Marshal(Entry{Key: key, Page: page, CreatedAt: s.now(), TTL: ttl})
	if err != nil {
		return fmt.Errorf("redis encode %q: %w", key, err)
	}
	if err := s.client.Set(ctx, s.prefix+key, payload, ttl).Err(); err != nil {
		return fmt.Errorf("redis set %q: %w", key, err)
	}
	return nil
}

func (s *RedisStore) Has(ctx context.Context, key string) (bool, error) {
	_, ok, err := s.Get(ctx, key)
	return ok, err
}

func (s *RedisStore) Delete(ctx context.Context, key string) error {
	if err := s.client.Del(ctx, s.prefix+key).Err(); err != nil {
		return fmt.Errorf("redis del %q: %w", key, err)
	}
	return nil
}

func (s *RedisStore) Clear(ctx context.Context) error {
	return s.scan(ctx, func(keys []string) error {
		return s.client.Del(ctx, keys...).Err()
	})
}

// Size counts live keys under the prefix; Redis has already evicted expired ones.
func (s *RedisStore) Size(ctx context.Context) (int, error) {
	total := 0
	err := s.scan(ctx, func(keys []string) error {
		total += len(keys)
		return nil
	})
	return total, err
}

func (s *RedisStore) scan(ctx context.Context, fn func(keys []string) error) error {
	var cursor uint64
	for {
		keys, next, err := s.client.Scan(ctx, cursor, s.prefix+"*", scanBatch).Result()
		if err != nil {
			return fmt.Errorf("redis scan: %w", err)
		}
		if len(keys) > 0 {
			if err := fn(keys); err != nil {
				return err
			}
		}
		if next == 0 {
			return nil
		}
		cursor = next
	}
}
