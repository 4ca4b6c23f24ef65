package cache

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupTestRedisStore(t *testing.T) (*RedisStore, *miniredis.Miniredis) {
	t.Helper()

	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("failed to start miniredis: %v", err)
	}
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	store := NewRedisStore(client, "test:")

	t.Cleanup(func() {
		_ = store.Close()
		mr.Close()
	})
	return store, mr
}

func TestRedisStore_GetSet(t *testing.T) {
	ctx := context.Background()

	t.Run("round trip", func(t *testing.T) {
		store, mr := setupTestRedisStore(t)
		want := testPage("200")
		require.NoError(t, store.Set(ctx, "200", want, 300*time.Second))
		assert.True(t, mr.Exists("test:200"))

		got, ok, err := store.Get(ctx, "200")
		require.NoError(t, err)
		require.True(t, ok)
		assert.Equal(t, want.ID, got.ID)
		assert.Equal(t, want.Rows, got.Rows)
		assert.Equal(t, want.Links, got.Links)
		assert.Equal(t, "test", got.Meta["source"])
	})

	t.Run("miss", func(t *testing.T) {
		store, _ := setupTestRedisStore(t)
		page, ok, err := store.Get(ctx, "404")
		require.NoError(t, err)
		assert.False(t, ok)
		assert.Nil(t, page)
	})

	t.Run("non-positive ttl stores nothing", func(t *testing.T) {
		store, mr := setupTestRedisStore(t)
		require.NoError(t, store.Set(ctx, "200", testPage("200"), time.Minute))
		require.NoError(t, store.Set(ctx, "200", testPage("200"), -1))

		assert.False(t, mr.Exists("test:200"))
		_, ok, err := store.Get(ctx, "200")
		require.NoError(t, err)
		assert.False(t, ok)
	})

	t.Run("key expires with ttl", func(t *testing.T) {
		store, mr := setupTestRedisStore(t)
		require.NoError(t, store.Set(ctx, "200", testPage("200"), time.Minute))

		mr.FastForward(time.Minute + time.Second)
		has, err := store.Has(ctx, "200")
		require.NoError(t, err)
		assert.False(t, has)
	})

	t.Run("corrupt payload is dropped", func(t *testing.T) {
		store, mr := setupTestRedisStore(t)
		require.NoError(t, mr.Set("test:200", "{not json"))

		_, ok, err := store.Get(ctx, "200")
		assert.Error(t, err)
		assert.False(t, ok)
		assert.False(t, mr.Exists("test:200"))
	})
}

func TestRedisStore_SizeDeleteClear(t *testing.T) {
	ctx := context.Background()
	store, mr := setupTestRedisStore(t)
	require.NoError(t, mr.Set("other:key", "untouched"))

	for _, id := range []string{"200", "201", "202"} {
		require.NoError(t, store.Set(ctx, id, testPage(id), time.Minute))
	}

	size, err := store.Size(ctx)
	require.NoError(t, err)
	assert.Equal(t, 3, size)

	require.NoError(t, store.Delete(ctx, "201"))
	size, err = store.Size(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, size)

	require.NoError(t, store.Clear(ctx))
	size, err = store.Size(ctx)
	require.NoError(t, err)
	assert.Zero(t, size)
	assert.True(t, mr.Exists("other:key"))
}

func TestRedisStore_Ping(t *testing.T) {
	store, mr := setupTestRedisStore(t)
	require.NoError(t, store.Ping(context.Background()))

	mr.Close()
	assert.Error(t, store.Ping(context.Background()))
}

func TestNewRedisStoreWithURL(t *testing.T) {
	_, err := NewRedisStoreWithURL("not-a-url", "")
	assert.Error(t, err)

	store, err := NewRedisStoreWithURL("redis://localhost:6379/0", "")
	require.NoError(t, err)
	assert.Equal(t, DefaultKeyPrefix, store.prefix)
	_ = store.Close()
}
