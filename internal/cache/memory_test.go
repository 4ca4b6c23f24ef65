package cache

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"teletext/internal/domain"
)

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func newFakeClock() *fakeClock {
	return &fakeClock{now: time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)}
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

func testPage(id string) *domain.Page {
	return &domain.Page{
		ID:    id,
		Title: "Page " + id,
		Rows:  domain.NormalizeRows([]string{"hello", "world"}),
		Links: []domain.Link{{Label: "Index", TargetPage: "100", Color: domain.LinkColorRed}},
		Meta:  map[string]any{domain.MetaSource: "test"},
	}
}

func newTestMemoryStore(t *testing.T, maxEntries int) (*MemoryStore, *fakeClock) {
	t.Helper()
	clock := newFakeClock()
	store, err := NewMemoryStore(maxEntries, WithClock(clock.Now))
	require.NoError(t, err)
	return store, clock
}

func TestMemoryStore_GetSet(t *testing.T) {
	ctx := context.Background()

	t.Run("negative ttl is never served", func(t *testing.T) {
		store, _ := newTestMemoryStore(t, 10)
		require.NoError(t, store.Set(ctx, "200", testPage("200"), -1))

		page, ok, err := store.Get(ctx, "200")
		require.NoError(t, err)
		assert.False(t, ok)
		assert.Nil(t, page)
	})

	t.Run("zero ttl is never served", func(t *testing.T) {
		store, _ := newTestMemoryStore(t, 10)
		require.NoError(t, store.Set(ctx, "200", testPage("200"), 0))

		has, err := store.Has(ctx, "200")
		require.NoError(t, err)
		assert.False(t, has)
	})

	t.Run("live entry returns an equal page", func(t *testing.T) {
		store, clock := newTestMemoryStore(t, 10)
		want := testPage("200")
		require.NoError(t, store.Set(ctx, "200", want, 300*time.Second))

		clock.Advance(299 * time.Second)
		got, ok, err := store.Get(ctx, "200")
		require.NoError(t, err)
		require.True(t, ok)
		assert.Equal(t, want, got)
	})

	t.Run("entry expires after ttl", func(t *testing.T) {
		store, clock := newTestMemoryStore(t, 10)
		require.NoError(t, store.Set(ctx, "200", testPage("200"), time.Minute))

		clock.Advance(time.Minute + time.Millisecond)
		_, ok, err := store.Get(ctx, "200")
		require.NoError(t, err)
		assert.False(t, ok)
	})

	t.Run("nil page is rejected", func(t *testing.T) {
		store, _ := newTestMemoryStore(t, 10)
		assert.Error(t, store.Set(ctx, "200", nil, time.Minute))
	})

	t.Run("callers cannot mutate cached pages", func(t *testing.T) {
		store, _ := newTestMemoryStore(t, 10)
		original := testPage("200")
		require.NoError(t, store.Set(ctx, "200", original, time.Minute))
		original.Rows[0] = "mutated"

		got, ok, err := store.Get(ctx, "200")
		require.NoError(t, err)
		require.True(t, ok)
		got.Links[0].Label = "changed"

		again, _, _ := store.Get(ctx, "200")
		assert.NotEqual(t, "mutated", again.Rows[0])
		assert.Equal(t, "Index", again.Links[0].Label)
	})
}

func TestMemoryStore_SizeExcludesExpired(t *testing.T) {
	ctx := context.Background()
	store, clock := newTestMemoryStore(t, 10)

	require.NoError(t, store.Set(ctx, "short", testPage("200"), time.Second))
	require.NoError(t, store.Set(ctx, "long", testPage("201"), time.Hour))
	require.NoError(t, store.Set(ctx, "dead", testPage("202"), -1))

	size, err := store.Size(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, size)

	clock.Advance(2 * time.Second)
	size, err = store.Size(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, size)
}

func TestMemoryStore_DeleteAndClear(t *testing.T) {
	ctx := context.Background()
	store, _ := newTestMemoryStore(t, 10)

	for _, id := range []string{"200", "201", "202"} {
		require.NoError(t, store.Set(ctx, id, testPage(id), time.Minute))
	}

	require.NoError(t, store.Delete(ctx, "201"))
	has, err := store.Has(ctx, "201")
	require.NoError(t, err)
	assert.False(t, has)

	require.NoError(t, store.Delete(ctx, "missing"))

	require.NoError(t, store.Clear(ctx))
	size, err := store.Size(ctx)
	require.NoError(t, err)
	assert.Zero(t, size)
}

func TestMemoryStore_EvictsLeastRecentlyUsed(t *testing.T) {
	ctx := context.Background()
	store, _ := newTestMemoryStore(t, 2)

	require.NoError(t, store.Set(ctx, "a", testPage("200"), time.Minute))
	require.NoError(t, store.Set(ctx, "b", testPage("201"), time.Minute))
	_, _, _ = store.Get(ctx, "a")
	require.NoError(t, store.Set(ctx, "c", testPage("202"), time.Minute))

	hasA, _ := store.Has(ctx, "a")
	hasB, _ := store.Has(ctx, "b")
	hasC, _ := store.Has(ctx, "c")
	assert.True(t, hasA)
	assert.False(t, hasB)
	assert.True(t, hasC)
}

func TestMemoryStore_Concurrent(t *testing.T) {
	ctx := context.Background()
	store, _ := newTestMemoryStore(t, 64)

	var wg sync.WaitGroup
	for i := range 16 {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			key := fmt.Sprintf("%d", 200+i%4)
			for range 100 {
				_ = store.Set(ctx, key, testPage(key), time.Minute)
				_, _, _ = store.Get(ctx, key)
				_, _ = store.Size(ctx)
			}
		}(i)
	}
	wg.Wait()

	size, err := store.Size(ctx)
	require.NoError(t, err)
	assert.Equal(t, 4, size)
}

func TestEntry_Expired(t *testing.T) {
	created := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	tests := map[string]struct {
		ttl  time.Duration
		at   time.Duration
		want bool
	}{
		"negative ttl":   {ttl: -time.Second, at: 0, want: true},
		"zero ttl":       {ttl: 0, at: 0, want: true},
		"within ttl":     {ttl: time.Minute, at: 30 * time.Second, want: false},
		"exactly at ttl": {ttl: time.Minute, at: time.Minute, want: false},
		"past ttl":       {ttl: time.Minute, at: time.Minute + 1, want: true},
	}
	for name, tc := range tests {
		t.Run(name, func(t *testing.T) {
			e := Entry{CreatedAt: created, TTL: tc.ttl}
			assert.Equal(t, tc.want, e.Expired(created.Add(tc.at)))
		})
	}
}
