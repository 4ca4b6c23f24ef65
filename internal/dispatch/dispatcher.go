// ABOUTME: The page pipeline: parse -> cache -> route -> adapter (retried, coalesced) -> normalize -> cache
// ABOUTME: Every caller gets a page back; only unexpected failures surface as errors
package dispatch

import (
	"context"
	"errors"
	"log/slog"
	"sync/atomic"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/sync/singleflight"

	"teletext/internal/cache"
	"teletext/internal/domain"
	"teletext/internal/metrics"
	"teletext/internal/retry"
	"teletext/internal/router"
)

const (
	// DefaultTTL applies to adapters that do not implement domain.CachePolicy.
	DefaultTTL = 300 * time.Second

	// DefaultFetchTimeout bounds one coalesced adapter call including its retries.
	DefaultFetchTimeout = 30 * time.Second
)

// Result is a produced page plus how it was obtained.
type Result struct {
	Page     *domain.Page
	Key      string
	Adapter  string
	CacheHit bool
	Fallback bool
	// Err is the recovered failure behind a fallback page.
	Err error
}

// Stats summarises cache activity for diagnostics.
type Stats struct {
	Entries     int
	Hits        uint64
	Misses      uint64
	CacheErrors uint64
	Fetches     uint64
}

// Dispatcher is the explicitly constructed context object of the pipeline. Independent
// instances share nothing.
type Dispatcher struct {
	router       *router.Router
	store        cache.Store
	retrier      *retry.Retrier
	logger       *slog.Logger
	tracer       trace.Tracer
	defaultTTL   time.Duration
	fetchTimeout time.Duration
	group        singleflight.Group

	hits        atomic.Uint64
	misses      atomic.Uint64
	cacheErrors atomic.Uint64
	fetches     atomic.Uint64
}

type Option func(*Dispatcher)

func WithDefaultTTL(ttl time.Duration) Option {
	return func(d *Dispatcher) { d.defaultTTL = ttl }
}

func WithFetchTimeout(timeout time.Duration) Option {
	return func(d *Dispatcher) {
		if timeout > 0 {
			d.fetchTimeout = timeout
		}
	}
}

func WithTracer(tracer trace.Tracer) Option {
	return func(d *Dispatcher) { d.tracer = tracer }
}

func NewDispatcher(rt *router.Router, store cache.Store, retrier *retry.Retrier, logger *slog.Logger, opts ...Option) *Dispatcher {
	if logger == nil {
		logger = slog.Default()
	}
	d := &Dispatcher{
		router:       rt,
		store:        store,
		retrier:      retrier,
		logger:       logger,
		tracer:       otel.Tracer("teletext/dispatch"),
		defaultTTL:   DefaultTTL,
		fetchTimeout: DefaultFetchTimeout,
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Router exposes the routing table the dispatcher uses.
func (d *Dispatcher) Router() *router.Router {
	return d.router
}

// Resolve runs the whole pipeline for a raw id and always yields a page unless the failure is
// unexpected (for example the caller's context ending). Invalid ids produce the not-found page;
// adapter failures produce the error page.
func (d *Dispatcher) Resolve(ctx context.Context, rawID string, params map[string]string) (*Result, error) {
	id, err := domain.ParsePageID(rawID)
	if err != nil {
		return d.Recover(rawID, err)
	}
	res, err := d.Dispatch(ctx, id, params)
	if err != nil {
		return d.Recover(rawID, err)
	}
	return res, nil
}

// Recover maps a pipeline error onto its fallback page. Errors outside the domain taxonomy are
// returned unchanged.
func (d *Dispatcher) Recover(rawID string, err error) (*Result, error) {
	switch {
	case errors.Is(err, domain.ErrInvalidIdentifier):
		metrics.RecordPageRequest("none", "invalid")
		return &Result{Page: domain.NotFoundPage(rawID), Fallback: true, Err: err}, nil
	case domain.IsAdapterFailure(err):
		var ae *domain.AdapterError
		adapter := "unknown"
		if errors.As(err, &ae) {
			adapter = ae.Adapter
		}
		return &Result{Page: domain.ErrorPage(rawID, err), Adapter: adapter, Fallback: true, Err: err}, nil
	default:
		return nil, err
	}
}

// Dispatch serves id from the cache or its adapter.
func (d *Dispatcher) Dispatch(ctx context.Context, id domain.PageID, params map[string]string) (*Result, error) {
	if res, ok := d.Lookup(ctx, id, params); ok {
		return res, nil
	}
	return d.Fetch(ctx, id, params)
}

// Lookup consults the cache only. Storage errors count as a miss.
func (d *Dispatcher) Lookup(ctx context.Context, id domain.PageID, params map[string]string) (*Result, bool) {
	handle := d.router.Route(id)
	key := d.cacheKey(handle, id, params)

	page, ok, err := d.store.Get(ctx, key)
	if err != nil {
		d.cacheError(ctx, "get", key, err)
		ok = false
	}
	metrics.RecordCacheLookup(ok)
	if !ok {
		d.misses.Add(1)
		return nil, false
	}
	d.hits.Add(1)
	metrics.RecordPageRequest(handle.Name, "cache_hit")

	page = page.Clone()
	page.SetMetaDefault(domain.MetaCache, "hit")
	return &Result{Page: page, Key: key, Adapter: handle.Name, CacheHit: true}, true
}

// Fetch calls the adapter for id, bypassing the cache read. Concurrent fetches of the same key
// share one adapter call; the shared call is detached from any single caller's cancellation so
// a superseded caller does not fail the others.
func (d *Dispatcher) Fetch(ctx context.Context, id domain.PageID, params map[string]string) (*Result, error) {
	handle := d.router.Route(id)
	key := d.cacheKey(handle, id, params)

	ctx, span := d.tracer.Start(ctx, "dispatch.fetch", trace.WithAttributes(
		attribute.String("teletext.page.id", id.String()),
		attribute.String("teletext.adapter", handle.Name),
		attribute.String("teletext.cache.key", key),
	))
	defer span.End()

	ch := d.group.DoChan(key, func() (any, error) {
		fetchCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), d.fetchTimeout)
		defer cancel()
		return d.produce(fetchCtx, handle, id, params, key)
	})

	select {
	case <-ctx.Done():
		span.SetStatus(codes.Error, "caller cancelled")
		return nil, ctx.Err()
	case r := <-ch:
		if r.Err != nil {
			span.RecordError(r.Err)
			span.SetStatus(codes.Error, r.Err.Error())
			return nil, r.Err
		}
		span.SetAttributes(attribute.Bool("teletext.coalesced", r.Shared))
		page := r.Val.(*domain.Page).Clone()
		page.SetMetaDefault(domain.MetaCache, "miss")
		return &Result{Page: page, Key: key, Adapter: handle.Name}, nil
	}
}

func (d *Dispatcher) produce(ctx context.Context, handle router.Handle, id domain.PageID, params map[string]string, key string) (*domain.Page, error) {
	d.fetches.Add(1)
	start := time.Now()

	page, err := retry.Execute(ctx, d.retrier, "adapter."+handle.Name, func(ctx context.Context) (*domain.Page, error) {
		ctx, span := d.tracer.Start(ctx, "adapter.get_page", trace.WithAttributes(
			attribute.String("teletext.adapter", handle.Name),
			attribute.String("teletext.page.id", id.String()),
		))
		defer span.End()

		p, err := handle.Adapter.GetPage(ctx, id, params)
		if err == nil && p == nil {
			err = domain.NewAdapterError(domain.CodeValidation, handle.Name, id, "adapter returned no page", nil)
		}
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
		}
		return p, err
	})
	metrics.RecordAdapterCall(handle.Name, time.Since(start))
	if err != nil {
		metrics.RecordPageRequest(handle.Name, "error")
		d.logger.WarnContext(ctx, "adapter failed",
			"teletext.page.id", id.String(),
			"teletext.adapter", handle.Name,
			"error", err)
		return nil, err
	}

	normalized := domain.NormalizePage(page)
	if normalized.ID == "" {
		normalized.ID = id.String()
	}
	normalized.SetMetaDefault(domain.MetaSource, handle.Name)
	metrics.RecordPageRequest(handle.Name, "ok")

	if ttl := d.ttlFor(handle, id); ttl > 0 {
		if err := d.store.Set(ctx, key, normalized, ttl); err != nil {
			d.cacheError(ctx, "set", key, err)
		}
	}
	return normalized, nil
}

// Invalidate drops the cached copy of id for the given parameters.
func (d *Dispatcher) Invalidate(ctx context.Context, id domain.PageID, params map[string]string) error {
	key := d.cacheKey(d.router.Route(id), id, params)
	if err := d.store.Delete(ctx, key); err != nil {
		d.cacheError(ctx, "delete", key, err)
		return err
	}
	return nil
}

// Clear empties the cache.
func (d *Dispatcher) Clear(ctx context.Context) error {
	if err := d.store.Clear(ctx); err != nil {
		d.cacheError(ctx, "clear", "*", err)
		return err
	}
	return nil
}

// Stats reports cache counters. A failing Size is logged and reported as -1 entries.
func (d *Dispatcher) Stats(ctx context.Context) Stats {
	entries, err := d.store.Size(ctx)
	if err != nil {
		d.cacheError(ctx, "size", "*", err)
		entries = -1
	}
	return Stats{
		Entries:     entries,
		Hits:        d.hits.Load(),
		Misses:      d.misses.Load(),
		CacheErrors: d.cacheErrors.Load(),
		Fetches:     d.fetches.Load(),
	}
}

func (d *Dispatcher) cacheKey(handle router.Handle, id domain.PageID, params map[string]string) string {
	if narrower, ok := handle.Adapter.(domain.CacheKeyParams); ok {
		params = narrower.CacheParams(params)
	}
	return id.CacheKey(params)
}

func (d *Dispatcher) ttlFor(handle router.Handle, id domain.PageID) time.Duration {
	if policy, ok := handle.Adapter.(domain.CachePolicy); ok {
		return policy.CacheTTL(id)
	}
	return d.defaultTTL
}

func (d *Dispatcher) cacheError(ctx context.Context, op, key string, err error) {
	d.cacheErrors.Add(1)
	metrics.RecordCacheError(op)
	d.logger.ErrorContext(ctx, "cache operation failed",
		"operation", op,
		"key", key,
		"error", err)
}
