// Package devtools renders pipeline introspection pages (800s): cache counters, the routing
// table, retry status and process info.
package devtools

import (
	"context"
	"fmt"
	"runtime"
	"strconv"
	"time"

	"teletext/internal/adapter/layout"
	"teletext/internal/dispatch"
	"teletext/internal/domain"
	"teletext/internal/retry"
	"teletext/internal/router"
)

const Name = "devtools"

const (
	indexPage   = 800
	cachePage   = 801
	routesPage  = 802
	retryPage   = 803
	runtimePage = 804
)

// Sources are read lazily on every request. They are closures so the adapter can be bound into
// the router before the dispatcher that owns the cache exists.
type Sources struct {
	Stats     func(ctx context.Context) dispatch.Stats
	Routes    func() []router.Binding
	Retries   func() []retry.State
	StartedAt time.Time
	Now       func() time.Time
}

type Adapter struct {
	src Sources
}

func New(src Sources) *Adapter {
	if src.Now == nil {
		src.Now = time.Now
	}
	if src.StartedAt.IsZero() {
		src.StartedAt = src.Now()
	}
	return &Adapter{src: src}
}

func (a *Adapter) Name() string {
	return Name
}

// CacheTTL disables caching; these pages must show live values.
func (a *Adapter) CacheTTL(domain.PageID) time.Duration {
	return 0
}

func (a *Adapter) GetPage(ctx context.Context, id domain.PageID, _ map[string]string) (*domain.Page, error) {
	if id.HasSub() {
		return nil, domain.NewAdapterError(domain.CodeNotFound, Name, id, "dev tools pages have no sub-pages", nil)
	}

	var b *layout.Builder
	switch id.Number {
	case indexPage:
		b = a.index(id)
	case cachePage:
		if a.src.Stats == nil {
			return nil, unavailable(id, "cache stats")
		}
		b = a.cache(id, a.src.Stats(ctx))
	case routesPage:
		if a.src.Routes == nil {
			return nil, unavailable(id, "routing table")
		}
		b = a.routes(id, a.src.Routes())
	case retryPage:
		if a.src.Retries == nil {
			return nil, unavailable(id, "retry status")
		}
		b = a.retries(id, a.src.Retries())
	case runtimePage:
		b = a.runtime(id)
	default:
		page := domain.ComingSoonPage(id)
		page.Meta[domain.MetaSource] = Name
		return page, nil
	}
	if id.Number != indexPage {
		b.Link("Dev tools", strconv.Itoa(indexPage), domain.LinkColorRed)
	}
	return b.Build(), nil
}

func unavailable(id domain.PageID, what string) error {
	return domain.NewAdapterError(domain.CodeContentUnavailable, Name, id, what+" not wired", nil)
}

func (a *Adapter) index(id domain.PageID) *layout.Builder {
	return layout.NewBuilder(id, "DEV", "Dev tools").
		Pair("Cache statistics", "801").
		Pair("Routing table", "802").
		Pair("Retry status", "803").
		Pair("Runtime", "804").
		Link("Cache", "801", domain.LinkColorGreen).
		Link("Routes", "802", domain.LinkColorYellow).
		Link("Retry", "803", domain.LinkColorCyan).
		Link("Index", "100", domain.LinkColorRed)
}

func (a *Adapter) cache(id domain.PageID, s dispatch.Stats) *layout.Builder {
	entries := strconv.Itoa(s.Entries)
	if s.Entries < 0 {
		entries = "unknown"
	}
	ratio := "-"
	if total := s.Hits + s.Misses; total > 0 {
		ratio = fmt.Sprintf("%.1f%%", float64(s.Hits)*100/float64(total))
	}
	return layout.NewBuilder(id, "DEV", "Cache").
		Pair("Entries", entries).
		Pair("Hits", strconv.FormatUint(s.Hits, 10)).
		Pair("Misses", strconv.FormatUint(s.Misses, 10)).
		Pair("Hit ratio", ratio).
		Pair("Fetches", strconv.FormatUint(s.Fetches, 10)).
		Pair("Cache errors", strconv.FormatUint(s.CacheErrors, 10)).
		Meta("stats", s)
}

func (a *Adapter) routes(id domain.PageID, bindings []router.Binding) *layout.Builder {
	b := layout.NewBuilder(id, "DEV", "Routes")
	for _, bind := range bindings {
		b.Pair(bind.Range, bind.Adapter)
	}
	return b
}

func (a *Adapter) retries(id domain.PageID, states []retry.State) *layout.Builder {
	b := layout.NewBuilder(id, "DEV", "Retry status")
	if len(states) == 0 {
		return b.Line("No retried operations yet.")
	}
	for _, st := range states {
		if b.Remaining() < 2 {
			break
		}
		status := "ok"
		switch {
		case st.IsRetrying:
			status = "retry in " + st.NextDelay.String()
		case st.LastError != nil:
			status = "failed"
		}
		b.Pair(st.Operation, fmt.Sprintf("%d/%d", st.Attempt, st.TotalAttempts))
		b.Line("  " + status)
	}
	return b
}

func (a *Adapter) runtime(id domain.PageID) *layout.Builder {
	var mem runtime.MemStats
	runtime.ReadMemStats(&mem)
	uptime := a.src.Now().Sub(a.src.StartedAt).Truncate(time.Second)
	return layout.NewBuilder(id, "DEV", "Runtime").
		Pair("Go", runtime.Version()).
		Pair("Uptime", uptime.String()).
		Pair("Goroutines", strconv.Itoa(runtime.NumGoroutine())).
		Pair("Heap", fmt.Sprintf("%.1f MiB", float64(mem.HeapAlloc)/(1<<20))).
		Pair("GC cycles", strconv.FormatUint(uint64(mem.NumGC), 10))
}
