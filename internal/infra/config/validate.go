package config

import (
	"fmt"
	"strings"

	"teletext/internal/domain"
)

type pageRange struct {
	first, last int
	exclude     [2]int
}

func (r pageRange) contains(page int) bool {
	if page < r.first || page > r.last {
		return false
	}
	return r.exclude == [2]int{} || page < r.exclude[0] || page > r.exclude[1]
}

func validateConfig(config *Config) error {
	if config.Server.Port <= 0 || config.Server.Port > 65535 {
		return fmt.Errorf("invalid server port: %d", config.Server.Port)
	}

	if config.Server.FetchTimeout <= 0 {
		return fmt.Errorf("fetch timeout must be positive: %v", config.Server.FetchTimeout)
	}

	if config.Retry.MaxAttempts <= 0 {
		return fmt.Errorf("retry max attempts must be positive: %d", config.Retry.MaxAttempts)
	}

	if config.Retry.InitialDelay < 0 {
		return fmt.Errorf("retry initial delay must be non-negative: %v", config.Retry.InitialDelay)
	}

	if config.Retry.MaxDelay < config.Retry.InitialDelay {
		return fmt.Errorf("retry max delay %v is below initial delay %v", config.Retry.MaxDelay, config.Retry.InitialDelay)
	}

	if config.Retry.BackoffMultiplier < 1.0 {
		return fmt.Errorf("backoff multiplier must be at least 1.0: %f", config.Retry.BackoffMultiplier)
	}

	switch config.Cache.Backend {
	case CacheBackendMemory:
	case CacheBackendRedis:
		if config.Cache.RedisURL == "" {
			return fmt.Errorf("REDIS_URL cannot be empty when CACHE_BACKEND is redis")
		}
	default:
		return fmt.Errorf("unknown cache backend: %q", config.Cache.Backend)
	}

	if config.Cache.MaxEntries <= 0 {
		return fmt.Errorf("cache max entries must be positive: %d", config.Cache.MaxEntries)
	}

	if config.Upstream.Timeout <= 0 {
		return fmt.Errorf("upstream timeout must be positive: %v", config.Upstream.Timeout)
	}

	if config.Upstream.HostInterval > 0 && config.Upstream.HostBurst <= 0 {
		return fmt.Errorf("upstream host burst must be positive: %d", config.Upstream.HostBurst)
	}

	if config.AI.Timeout <= 0 {
		return fmt.Errorf("AI timeout must be positive: %v", config.AI.Timeout)
	}

	if config.AI.Temperature < 0 || config.AI.Temperature > 2 {
		return fmt.Errorf("AI temperature must be within [0, 2]: %f", config.AI.Temperature)
	}

	sections := []struct {
		name    string
		entries []PageEntry
		pages   pageRange
	}{
		{"NEWS_FEEDS", config.News.Feeds, pageRange{first: 200, last: 299}},
		{"SPORTS_LEAGUES", config.Sports.Leagues, pageRange{first: 301, last: 399}},
		{"MARKETS_BOARDS", config.Markets.Boards, pageRange{first: 401, last: 499, exclude: [2]int{420, 449}}},
		{"WEATHER_LOCATIONS", config.Weather.Locations, pageRange{first: 421, last: 449}},
		{"AI_PROMPTS", config.AI.Prompts, pageRange{first: 501, last: 599}},
	}
	for _, s := range sections {
		if err := validateEntries(s.name, s.entries, s.pages); err != nil {
			return err
		}
	}

	if config.Navigation.DebounceWindow <= 0 {
		return fmt.Errorf("debounce window must be positive: %v", config.Navigation.DebounceWindow)
	}

	if config.Navigation.MaxStreams <= 0 {
		return fmt.Errorf("navigation max streams must be positive: %d", config.Navigation.MaxStreams)
	}

	if config.Prefetch.Enabled {
		if config.Prefetch.Interval <= 0 {
			return fmt.Errorf("prefetch interval must be positive: %v", config.Prefetch.Interval)
		}
		if config.Prefetch.Concurrency <= 0 {
			return fmt.Errorf("prefetch concurrency must be positive: %d", config.Prefetch.Concurrency)
		}
		for _, raw := range config.Prefetch.Pages {
			if _, err := domain.ParsePageID(raw); err != nil {
				return fmt.Errorf("invalid prefetch page %q: %w", raw, err)
			}
		}
	}

	if config.OTel.SampleRatio < 0 || config.OTel.SampleRatio > 1 {
		return fmt.Errorf("otel sample ratio must be within [0, 1]: %f", config.OTel.SampleRatio)
	}

	if config.OTel.Enabled && config.OTel.Endpoint == "" {
		return fmt.Errorf("otel endpoint cannot be empty when OTEL_ENABLED is true")
	}

	return nil
}

func validateEntries(name string, entries []PageEntry, r pageRange) error {
	seen := make(map[int]bool, len(entries))
	for _, e := range entries {
		if !r.contains(e.Page) {
			return fmt.Errorf("%s: page %d is outside %d-%d", name, e.Page, r.first, r.last)
		}
		if seen[e.Page] {
			return fmt.Errorf("%s: page %d configured twice", name, e.Page)
		}
		seen[e.Page] = true
		if strings.TrimSpace(e.Name) == "" || strings.TrimSpace(e.Value) == "" {
			return fmt.Errorf("%s: page %d needs both a name and a value", name, e.Page)
		}
	}
	return nil
}
