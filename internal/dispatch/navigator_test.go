package dispatch_test

import (
	"context"
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"teletext/internal/dispatch"
	"teletext/internal/domain"
	"teletext/internal/router"
)

type transitionLog struct {
	mu      sync.Mutex
	entries []string
}

func (l *transitionLog) record(pageID string, from, to dispatch.NavState) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.entries = append(l.entries, fmt.Sprintf("%s:%s->%s", pageID, from, to))
}

func (l *transitionLog) all() []string {
	l.mu.Lock()
	defer l.mu.Unlock()
	return append([]string(nil), l.entries...)
}

func TestNavigator_Lifecycle(t *testing.T) {
	ctx := context.Background()
	news := &stubAdapter{name: "news", fn: shortPage("Headlines")}
	d, _ := newTestDispatcher(t, router.Adapters{News: news})

	log := &transitionLog{}
	nav := dispatch.NewNavigator(d, testLogger(), log.record)

	res, err := nav.Navigate(ctx, "200", nil)
	require.NoError(t, err)
	assert.False(t, res.CacheHit)

	res, err = nav.Navigate(ctx, "200", nil)
	require.NoError(t, err)
	assert.True(t, res.CacheHit)

	state, page := nav.State()
	assert.Equal(t, dispatch.NavSucceeded, state)
	assert.Equal(t, "200", page)

	// The cache hit never enters Requesting.
	assert.Equal(t, []string{
		"200:idle->requesting",
		"200:requesting->succeeded",
	}, log.all())
}

func TestNavigator_Failure(t *testing.T) {
	ctx := context.Background()
	sports := &stubAdapter{name: "sports", fn: func(_ context.Context, id domain.PageID, _ map[string]string) (*domain.Page, error) {
		return nil, domain.NewAdapterError(domain.CodeUpstream, "sports", id, "fetch failed", nil)
	}}
	d, _ := newTestDispatcher(t, router.Adapters{Sports: sports})
	log := &transitionLog{}
	nav := dispatch.NewNavigator(d, testLogger(), log.record)

	res, err := nav.Navigate(ctx, "300", nil)
	require.NoError(t, err)
	assert.True(t, res.Fallback)
	assert.Equal(t, "error", res.Page.Meta[domain.MetaFallback])

	state, _ := nav.State()
	assert.Equal(t, dispatch.NavFailed, state)
	assert.Equal(t, []string{"300:idle->requesting", "300:requesting->failed"}, log.all())
}

func TestNavigator_InvalidIDStaysIdle(t *testing.T) {
	d, _ := newTestDispatcher(t, router.Adapters{})
	log := &transitionLog{}
	nav := dispatch.NewNavigator(d, testLogger(), log.record)

	res, err := nav.Navigate(context.Background(), "042", nil)
	require.NoError(t, err)
	assert.Equal(t, "042", res.Page.ID)
	assert.Equal(t, "not_found", res.Page.Meta[domain.MetaFallback])

	state, _ := nav.State()
	assert.Equal(t, dispatch.NavIdle, state)
	assert.Empty(t, log.all())
}

func TestNavigator_SupersededRequestIsDiscarded(t *testing.T) {
	ctx := context.Background()
	started := make(chan struct{})
	release := make(chan struct{})
	defer close(release)

	news := &stubAdapter{name: "news", fn: func(_ context.Context, id domain.PageID, _ map[string]string) (*domain.Page, error) {
		close(started)
		<-release
		return &domain.Page{ID: id.String(), Title: "Stale"}, nil
	}}
	sports := &stubAdapter{name: "sports", fn: shortPage("Fresh")}
	d, _ := newTestDispatcher(t, router.Adapters{News: news, Sports: sports})

	log := &transitionLog{}
	nav := dispatch.NewNavigator(d, testLogger(), log.record)

	type outcome struct {
		res *dispatch.Result
		err error
	}
	first := make(chan outcome, 1)
	go func() {
		res, err := nav.Navigate(ctx, "200", nil)
		first <- outcome{res, err}
	}()
	<-started

	res, err := nav.Navigate(ctx, "300", nil)
	require.NoError(t, err)
	assert.Equal(t, "Fresh", res.Page.Title)

	stale := <-first
	assert.Nil(t, stale.res)
	assert.ErrorIs(t, stale.err, dispatch.ErrRequestSuperseded)

	state, page := nav.State()
	assert.Equal(t, dispatch.NavSucceeded, state)
	assert.Equal(t, "300", page)
	assert.Equal(t, []string{
		"200:idle->requesting",
		"200:requesting->cancelled",
		"300:cancelled->requesting",
		"300:requesting->succeeded",
	}, log.all())
}

func TestNavigator_CallerContextEnded(t *testing.T) {
	release := make(chan struct{})
	defer close(release)
	started := make(chan struct{})
	news := &stubAdapter{name: "news", fn: func(_ context.Context, id domain.PageID, _ map[string]string) (*domain.Page, error) {
		close(started)
		<-release
		return &domain.Page{ID: id.String()}, nil
	}}
	d, _ := newTestDispatcher(t, router.Adapters{News: news})
	nav := dispatch.NewNavigator(d, testLogger(), nil)

	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		<-started
		cancel()
	}()

	res, err := nav.Navigate(ctx, "200", nil)
	assert.Nil(t, res)
	assert.ErrorIs(t, err, context.Canceled)
	assert.NotErrorIs(t, err, dispatch.ErrRequestSuperseded)
}

func TestNavigatorRegistry(t *testing.T) {
	d, _ := newTestDispatcher(t, router.Adapters{})
	reg, err := dispatch.NewNavigatorRegistry(d, 2, testLogger(), nil)
	require.NoError(t, err)

	a := reg.Get("a")
	assert.Same(t, a, reg.Get("a"))
	b := reg.Get("b")
	assert.NotSame(t, a, b)
	assert.Equal(t, 2, reg.Len())

	reg.Get("c")
	assert.Equal(t, 2, reg.Len())
	assert.Same(t, b, reg.Get("b"))
	assert.NotSame(t, a, reg.Get("a"), "oldest stream was evicted")
}

func TestNavState_String(t *testing.T) {
	assert.Equal(t, "requesting", dispatch.NavRequesting.String())
	assert.Equal(t, "cancelled", dispatch.NavCancelled.String())
	assert.Equal(t, "NavState(42)", dispatch.NavState(42).String())
}
