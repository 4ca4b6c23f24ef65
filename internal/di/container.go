package di

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"teletext/internal/adapter/ai"
	"teletext/internal/adapter/devtools"
	"teletext/internal/adapter/games"
	"teletext/internal/adapter/markets"
	"teletext/internal/adapter/news"
	"teletext/internal/adapter/settings"
	"teletext/internal/adapter/sports"
	"teletext/internal/adapter/static"
	"teletext/internal/adapter/upstream"
	"teletext/internal/adapter/weather"
	"teletext/internal/cache"
	"teletext/internal/dispatch"
	"teletext/internal/domain"
	"teletext/internal/handler"
	"teletext/internal/infra/config"
	"teletext/internal/metrics"
	"teletext/internal/retry"
	"teletext/internal/router"
	"teletext/internal/worker"
)

// pinger is implemented by stores with a remote backend.
type pinger interface {
	Ping(ctx context.Context) error
}

// ApplicationComponents holds all wired dependencies for the application.
type ApplicationComponents struct {
	Store      cache.Store
	Reporter   *retry.StatusReporter
	Retrier    *retry.Retrier
	Router     *router.Router
	Dispatcher *dispatch.Dispatcher
	Navigators *dispatch.NavigatorRegistry
	Handler    *handler.Handler

	// Prefetcher is nil when prefetching is disabled.
	Prefetcher *worker.Prefetcher

	closers []func() error
}

// NewApplicationComponents wires the pipeline from config. now is the clock handed to the
// date-dependent adapters; nil means time.Now.
func NewApplicationComponents(cfg *config.Config, log *slog.Logger, now func() time.Time) (*ApplicationComponents, error) {
	if now == nil {
		now = time.Now
	}
	c := &ApplicationComponents{}

	store, err := newStore(cfg.Cache)
	if err != nil {
		return nil, err
	}
	c.Store = store
	if closer, ok := store.(interface{ Close() error }); ok {
		c.closers = append(c.closers, closer.Close)
	}

	c.Reporter = retry.NewStatusReporter()
	c.Reporter.Subscribe(func(s retry.State) {
		if s.IsRetrying && s.NextDelay > 0 {
			metrics.RecordRetry(s.Operation)
		}
	})
	c.Retrier = retry.New(retry.Config{
		MaxAttempts:       cfg.Retry.MaxAttempts,
		InitialDelay:      cfg.Retry.InitialDelay,
		MaxDelay:          cfg.Retry.MaxDelay,
		BackoffMultiplier: cfg.Retry.BackoffMultiplier,
	}, log, retry.WithReporter(c.Reporter))

	c.Router = router.New(newAdapters(cfg, c, now))
	c.Dispatcher = dispatch.NewDispatcher(c.Router, c.Store, c.Retrier, log,
		dispatch.WithDefaultTTL(cfg.Cache.DefaultTTL),
		dispatch.WithFetchTimeout(cfg.Server.FetchTimeout),
	)

	c.Navigators, err = dispatch.NewNavigatorRegistry(c.Dispatcher, cfg.Navigation.MaxStreams, log,
		func(pageID string, from, to dispatch.NavState) {
			log.Debug("navigation transition", "teletext.page.id", pageID, "from", from.String(), "to", to.String())
		})
	if err != nil {
		return nil, fmt.Errorf("failed to create navigator registry: %w", err)
	}

	var ready handler.ReadyFunc
	if p, ok := store.(pinger); ok {
		ready = p.Ping
	}
	c.Handler = handler.NewHandler(c.Dispatcher, c.Navigators, ready, log)

	if cfg.Prefetch.Enabled && len(cfg.Prefetch.Pages) > 0 {
		ids := make([]domain.PageID, 0, len(cfg.Prefetch.Pages))
		for _, raw := range cfg.Prefetch.Pages {
			id, err := domain.ParsePageID(raw)
			if err != nil {
				return nil, fmt.Errorf("invalid prefetch page %q: %w", raw, err)
			}
			ids = append(ids, id)
		}
		c.Prefetcher = worker.NewPrefetcher(c.Dispatcher, ids, cfg.Prefetch.Interval, cfg.Prefetch.Concurrency, log)
	}

	return c, nil
}

// Close releases the store connection.
func (c *ApplicationComponents) Close() error {
	var errs []string
	for _, closer := range c.closers {
		if err := closer(); err != nil {
			errs = append(errs, err.Error())
		}
	}
	if len(errs) > 0 {
		return fmt.Errorf("close errors: %s", strings.Join(errs, "; "))
	}
	return nil
}

func newStore(cfg config.CacheConfig) (cache.Store, error) {
	switch cfg.Backend {
	case config.CacheBackendRedis:
		store, err := cache.NewRedisStoreWithURL(cfg.RedisURL, cfg.KeyPrefix)
		if err != nil {
			return nil, fmt.Errorf("failed to create redis store: %w", err)
		}
		return store, nil
	default:
		store, err := cache.NewMemoryStore(cfg.MaxEntries)
		if err != nil {
			return nil, fmt.Errorf("failed to create memory store: %w", err)
		}
		return store, nil
	}
}

func newAdapters(cfg *config.Config, c *ApplicationComponents, now func() time.Time) router.Adapters {
	// one limiter so a host shared by several adapters is throttled once
	limiter := upstream.NewHostRateLimiter(cfg.Upstream.HostInterval, cfg.Upstream.HostBurst)
	clientCfg := upstream.Config{
		Timeout:      cfg.Upstream.Timeout,
		UserAgent:    cfg.Upstream.UserAgent,
		MaxBodyBytes: cfg.Upstream.MaxBodyBytes,
	}
	aiCfg := clientCfg
	aiCfg.Timeout = cfg.AI.Timeout

	feeds := make([]news.Feed, len(cfg.News.Feeds))
	for i, e := range cfg.News.Feeds {
		feeds[i] = news.Feed{Page: e.Page, Title: e.Name, URL: e.Value}
	}
	leagues := make([]sports.League, len(cfg.Sports.Leagues))
	for i, e := range cfg.Sports.Leagues {
		leagues[i] = sports.League{Page: e.Page, Title: e.Name, Code: e.Value}
	}
	boards := make([]markets.Board, len(cfg.Markets.Boards))
	for i, e := range cfg.Markets.Boards {
		boards[i] = markets.Board{Page: e.Page, Title: e.Name, Symbols: strings.Split(e.Value, ",")}
	}
	locations := make([]weather.Location, len(cfg.Weather.Locations))
	for i, e := range cfg.Weather.Locations {
		locations[i] = weather.Location{Page: e.Page, Name: e.Name, Query: e.Value}
	}
	prompts := make([]ai.Prompt, len(cfg.AI.Prompts))
	for i, e := range cfg.AI.Prompts {
		prompts[i] = ai.Prompt{Page: e.Page, Title: e.Name, Prompt: e.Value}
	}

	return router.Adapters{
		System: static.NewSystem(static.DefaultSections),
		News: news.New(news.Config{Feeds: feeds, TTL: cfg.News.TTL, ListItems: cfg.News.ListItems},
			upstream.New(news.Name, clientCfg, limiter)),
		Sports: sports.New(sports.Config{BaseURL: cfg.Sports.BaseURL, Leagues: leagues, TTL: cfg.Sports.TTL},
			upstream.New(sports.Name, clientCfg, limiter)),
		Markets: markets.New(markets.Config{BaseURL: cfg.Markets.BaseURL, Boards: boards, TTL: cfg.Markets.TTL},
			upstream.New(markets.Name, clientCfg, limiter)),
		Weather: weather.New(weather.Config{BaseURL: cfg.Weather.BaseURL, Locations: locations, TTL: cfg.Weather.TTL},
			upstream.New(weather.Name, clientCfg, limiter)),
		AI: ai.New(ai.Config{
			BaseURL:     cfg.AI.BaseURL,
			Model:       cfg.AI.Model,
			Prompts:     prompts,
			Temperature: cfg.AI.Temperature,
			MaxTokens:   cfg.AI.MaxTokens,
			TTL:         cfg.AI.TTL,
		}, upstream.New(ai.Name, aiCfg, limiter)),
		Games:    games.New(now),
		Settings: settings.New(),
		// The dispatcher and router do not exist yet; the closures read them per request.
		DevTools: devtools.New(devtools.Sources{
			Stats:     func(ctx context.Context) dispatch.Stats { return c.Dispatcher.Stats(ctx) },
			Routes:    func() []router.Binding { return c.Router.Table() },
			Retries:   c.Reporter.Latest,
			StartedAt: now(),
			Now:       now,
		}),
		Default: static.NewDefault(),
	}
}
