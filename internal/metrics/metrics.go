// Package metrics provides Prometheus metrics for the teletext service.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// PageRequestsTotal counts dispatched page requests by adapter and outcome.
	PageRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "teletext",
			Name:      "page_requests_total",
			Help:      "Total number of page requests",
		},
		[]string{"adapter", "outcome"},
	)

	// AdapterDuration measures adapter calls including retries.
	AdapterDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "teletext",
			Name:      "adapter_duration_seconds",
			Help:      "Duration of adapter calls in seconds",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"adapter"},
	)

	// CacheLookupsTotal counts cache lookups by result (hit, miss).
	CacheLookupsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "teletext",
			Name:      "cache_lookups_total",
			Help:      "Total number of cache lookups",
		},
		[]string{"result"},
	)

	// CacheErrorsTotal counts cache failures that were swallowed.
	CacheErrorsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "teletext",
			Name:      "cache_errors_total",
			Help:      "Total number of cache storage errors",
		},
		[]string{"operation"},
	)

	// RetryAttemptsTotal counts retries scheduled by the retrier.
	RetryAttemptsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "teletext",
			Name:      "retry_attempts_total",
			Help:      "Total number of retried attempts",
		},
		[]string{"operation"},
	)

	// SupersededTotal counts navigation requests discarded because a newer one arrived.
	SupersededTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Namespace: "teletext",
			Name:      "navigation_superseded_total",
			Help:      "Total number of superseded navigation requests",
		},
	)

	// PrefetchRunsTotal counts prefetch cycles by status.
	PrefetchRunsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "teletext",
			Name:      "prefetch_runs_total",
			Help:      "Total number of prefetch cycles",
		},
		[]string{"status"},
	)
)

// RecordPageRequest records one dispatched request.
func RecordPageRequest(adapter, outcome string) {
	PageRequestsTotal.WithLabelValues(adapter, outcome).Inc()
}

// RecordAdapterCall records the latency of an adapter call.
func RecordAdapterCall(adapter string, d time.Duration) {
	AdapterDuration.WithLabelValues(adapter).Observe(d.Seconds())
}

// RecordCacheLookup records a cache hit or miss.
func RecordCacheLookup(hit bool) {
	result := "miss"
	if hit {
		result = "hit"
	}
	CacheLookupsTotal.WithLabelValues(result).Inc()
}

// RecordCacheError records a swallowed cache error.
func RecordCacheError(operation string) {
	CacheErrorsTotal.WithLabelValues(operation).Inc()
}

// RecordRetry records a scheduled retry.
func RecordRetry(operation string) {
	RetryAttemptsTotal.WithLabelValues(operation).Inc()
}

// RecordSuperseded records a discarded navigation result.
func RecordSuperseded() {
	SupersededTotal.Inc()
}

// RecordPrefetch records a prefetch cycle.
func RecordPrefetch(status string) {
	PrefetchRunsTotal.WithLabelValues(status).Inc()
}
