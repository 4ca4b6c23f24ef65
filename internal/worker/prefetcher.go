package worker

import (
	"context"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"golang.org/x/sync/errgroup"

	"teletext/internal/dispatch"
	"teletext/internal/domain"
	"teletext/internal/metrics"
)

const (
	defaultConcurrency = 4
	passTimeout        = 2 * time.Minute
)

// PageFetcher refreshes one page into the cache.
type PageFetcher interface {
	Fetch(ctx context.Context, id domain.PageID, params map[string]string) (*dispatch.Result, error)
}

// Prefetcher keeps popular pages warm by refetching them on an interval.
type Prefetcher struct {
	fetcher     PageFetcher
	pages       []domain.PageID
	interval    time.Duration
	concurrency int
	logger      *slog.Logger

	stopChan chan struct{}
	done     chan struct{}
	stopOnce sync.Once
}

func NewPrefetcher(fetcher PageFetcher, pages []domain.PageID, interval time.Duration, concurrency int, logger *slog.Logger) *Prefetcher {
	if concurrency <= 0 {
		concurrency = defaultConcurrency
	}
	return &Prefetcher{
		fetcher:     fetcher,
		pages:       pages,
		interval:    interval,
		concurrency: concurrency,
		logger:      logger,
		stopChan:    make(chan struct{}),
		done:        make(chan struct{}),
	}
}

// Start runs one pass immediately, then one per interval until Stop.
func (p *Prefetcher) Start() {
	p.logger.Info("Starting prefetcher", "pages", len(p.pages), "interval", p.interval)
	go p.run()
}

// Stop ends the loop and waits for an in-flight pass to finish.
func (p *Prefetcher) Stop() {
	p.stopOnce.Do(func() {
		p.logger.Info("Stopping prefetcher")
		close(p.stopChan)
	})
	<-p.done
}

func (p *Prefetcher) run() {
	defer close(p.done)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go func() {
		select {
		case <-p.stopChan:
			cancel()
		case <-ctx.Done():
		}
	}()

	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()

	p.RunOnce(ctx)
	for {
		select {
		case <-p.stopChan:
			return
		case <-ticker.C:
			p.RunOnce(ctx)
		}
	}
}

// RunOnce refetches every configured page, at most concurrency at a time, and returns how many
// failed. A failing page never stops the others.
func (p *Prefetcher) RunOnce(ctx context.Context) int {
	ctx, cancel := context.WithTimeout(ctx, passTimeout)
	defer cancel()

	start := time.Now()
	var failed atomic.Int32

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(p.concurrency)
	for _, id := range p.pages {
		g.Go(func() error {
			if _, err := p.fetcher.Fetch(gctx, id, nil); err != nil {
				failed.Add(1)
				p.logger.WarnContext(gctx, "prefetch failed", "teletext.page.id", id.String(), "error", err)
			}
			return nil
		})
	}
	_ = g.Wait()

	n := int(failed.Load())
	status := "ok"
	switch {
	case len(p.pages) > 0 && n == len(p.pages):
		status = "failed"
	case n > 0:
		status = "partial"
	}
	metrics.RecordPrefetch(status)
	p.logger.Info("prefetch pass completed",
		"pages", len(p.pages),
		"failed", n,
		"status", status,
		"duration_ms", time.Since(start).Milliseconds())
	return n
}
