package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// LoadConfig builds the configuration from defaults and overrides provided via environment variables.
func LoadConfig() (*Config, error) {
	config := defaultConfig()

	if err := loadFromEnv(config); err != nil {
		return nil, fmt.Errorf("failed to load from environment: %w", err)
	}

	if err := validateConfig(config); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return config, nil
}

func loadFromEnv(config *Config) error {
	if err := loadServerConfig(&config.Server); err != nil {
		return fmt.Errorf("failed to load server config: %w", err)
	}

	if err := loadRetryConfig(&config.Retry); err != nil {
		return fmt.Errorf("failed to load retry config: %w", err)
	}

	if err := loadCacheConfig(&config.Cache); err != nil {
		return fmt.Errorf("failed to load cache config: %w", err)
	}

	if err := loadUpstreamConfig(&config.Upstream); err != nil {
		return fmt.Errorf("failed to load upstream config: %w", err)
	}

	if err := loadNewsConfig(&config.News); err != nil {
		return fmt.Errorf("failed to load news config: %w", err)
	}

	if err := loadSportsConfig(&config.Sports); err != nil {
		return fmt.Errorf("failed to load sports config: %w", err)
	}

	if err := loadMarketsConfig(&config.Markets); err != nil {
		return fmt.Errorf("failed to load markets config: %w", err)
	}

	if err := loadWeatherConfig(&config.Weather); err != nil {
		return fmt.Errorf("failed to load weather config: %w", err)
	}

	if err := loadAIConfig(&config.AI); err != nil {
		return fmt.Errorf("failed to load AI config: %w", err)
	}

	if err := loadNavigationConfig(&config.Navigation); err != nil {
		return fmt.Errorf("failed to load navigation config: %w", err)
	}

	if err := loadPrefetchConfig(&config.Prefetch); err != nil {
		return fmt.Errorf("failed to load prefetch config: %w", err)
	}

	if err := loadMetricsConfig(&config.Metrics); err != nil {
		return fmt.Errorf("failed to load metrics config: %w", err)
	}

	if err := loadOTelConfig(&config.OTel); err != nil {
		return fmt.Errorf("failed to load otel config: %w", err)
	}

	if level := os.Getenv("LOG_LEVEL"); level != "" {
		config.LogLevel = level
	}

	return nil
}

func loadServerConfig(cfg *ServerConfig) error {
	var err error

	if cfg.Port, err = parseIntEnv("SERVER_PORT", cfg.Port); err != nil {
		return err
	}

	if cfg.ReadTimeout, err = parseDurationEnv("SERVER_READ_TIMEOUT", cfg.ReadTimeout); err != nil {
		return err
	}

	if cfg.WriteTimeout, err = parseDurationEnv("SERVER_WRITE_TIMEOUT", cfg.WriteTimeout); err != nil {
		return err
	}

	if cfg.ShutdownTimeout, err = parseDurationEnv("SERVER_SHUTDOWN_TIMEOUT", cfg.ShutdownTimeout); err != nil {
		return err
	}

	if cfg.FetchTimeout, err = parseDurationEnv("SERVER_FETCH_TIMEOUT", cfg.FetchTimeout); err != nil {
		return err
	}

	return nil
}

func loadRetryConfig(cfg *RetryConfig) error {
	var err error

	if cfg.MaxAttempts, err = parseIntEnv("RETRY_MAX_ATTEMPTS", cfg.MaxAttempts); err != nil {
		return err
	}

	if cfg.InitialDelay, err = parseDurationEnv("RETRY_INITIAL_DELAY", cfg.InitialDelay); err != nil {
		return err
	}

	if cfg.MaxDelay, err = parseDurationEnv("RETRY_MAX_DELAY", cfg.MaxDelay); err != nil {
		return err
	}

	if cfg.BackoffMultiplier, err = parseFloatEnv("RETRY_BACKOFF_MULTIPLIER", cfg.BackoffMultiplier); err != nil {
		return err
	}

	return nil
}

func loadCacheConfig(cfg *CacheConfig) error {
	var err error

	if backend := os.Getenv("CACHE_BACKEND"); backend != "" {
		cfg.Backend = strings.ToLower(backend)
	}

	if cfg.MaxEntries, err = parseIntEnv("CACHE_MAX_ENTRIES", cfg.MaxEntries); err != nil {
		return err
	}

	if cfg.DefaultTTL, err = parseDurationEnv("CACHE_DEFAULT_TTL", cfg.DefaultTTL); err != nil {
		return err
	}

	if url := os.Getenv("REDIS_URL"); url != "" {
		cfg.RedisURL = url
	}

	if prefix := os.Getenv("CACHE_KEY_PREFIX"); prefix != "" {
		cfg.KeyPrefix = prefix
	}

	return nil
}

func loadUpstreamConfig(cfg *UpstreamConfig) error {
	var err error

	if cfg.Timeout, err = parseDurationEnv("UPSTREAM_TIMEOUT", cfg.Timeout); err != nil {
		return err
	}

	if agent := os.Getenv("UPSTREAM_USER_AGENT"); agent != "" {
		cfg.UserAgent = agent
	}

	if cfg.HostInterval, err = parseDurationEnv("UPSTREAM_HOST_INTERVAL", cfg.HostInterval); err != nil {
		return err
	}

	if cfg.HostBurst, err = parseIntEnv("UPSTREAM_HOST_BURST", cfg.HostBurst); err != nil {
		return err
	}

	maxBody, err := parseIntEnv("UPSTREAM_MAX_BODY_BYTES", int(cfg.MaxBodyBytes))
	if err != nil {
		return err
	}
	cfg.MaxBodyBytes = int64(maxBody)

	return nil
}

func loadNewsConfig(cfg *NewsConfig) error {
	var err error

	if cfg.Feeds, err = parsePageEntriesEnv("NEWS_FEEDS", cfg.Feeds); err != nil {
		return err
	}

	if cfg.TTL, err = parseDurationEnv("NEWS_TTL", cfg.TTL); err != nil {
		return err
	}

	if cfg.ListItems, err = parseIntEnv("NEWS_LIST_ITEMS", cfg.ListItems); err != nil {
		return err
	}

	return nil
}

func loadSportsConfig(cfg *SportsConfig) error {
	var err error

	if url := os.Getenv("SPORTS_BASE_URL"); url != "" {
		cfg.BaseURL = url
	}

	if cfg.Leagues, err = parsePageEntriesEnv("SPORTS_LEAGUES", cfg.Leagues); err != nil {
		return err
	}

	if cfg.TTL, err = parseDurationEnv("SPORTS_TTL", cfg.TTL); err != nil {
		return err
	}

	return nil
}

func loadMarketsConfig(cfg *MarketsConfig) error {
	var err error

	if url := os.Getenv("MARKETS_BASE_URL"); url != "" {
		cfg.BaseURL = url
	}

	if cfg.Boards, err = parsePageEntriesEnv("MARKETS_BOARDS", cfg.Boards); err != nil {
		return err
	}

	if cfg.TTL, err = parseDurationEnv("MARKETS_TTL", cfg.TTL); err != nil {
		return err
	}

	return nil
}

func loadWeatherConfig(cfg *WeatherConfig) error {
	var err error

	if url := os.Getenv("WEATHER_BASE_URL"); url != "" {
		cfg.BaseURL = url
	}

	if cfg.Locations, err = parsePageEntriesEnv("WEATHER_LOCATIONS", cfg.Locations); err != nil {
		return err
	}

	if cfg.TTL, err = parseDurationEnv("WEATHER_TTL", cfg.TTL); err != nil {
		return err
	}

	return nil
}

func loadAIConfig(cfg *AIConfig) error {
	var err error

	if url := os.Getenv("AI_BASE_URL"); url != "" {
		cfg.BaseURL = url
	}

	if model := os.Getenv("AI_MODEL"); model != "" {
		cfg.Model = model
	}

	if cfg.Prompts, err = parsePageEntriesEnv("AI_PROMPTS", cfg.Prompts); err != nil {
		return err
	}

	if cfg.Temperature, err = parseFloatEnv("AI_TEMPERATURE", cfg.Temperature); err != nil {
		return err
	}

	if cfg.MaxTokens, err = parseIntEnv("AI_MAX_TOKENS", cfg.MaxTokens); err != nil {
		return err
	}

	if cfg.Timeout, err = parseDurationEnv("AI_TIMEOUT", cfg.Timeout); err != nil {
		return err
	}

	if cfg.TTL, err = parseDurationEnv("AI_TTL", cfg.TTL); err != nil {
		return err
	}

	return nil
}

func loadNavigationConfig(cfg *NavigationConfig) error {
	var err error

	if cfg.DebounceWindow, err = parseDurationEnv("NAVIGATION_DEBOUNCE_WINDOW", cfg.DebounceWindow); err != nil {
		return err
	}

	if cfg.MaxStreams, err = parseIntEnv("NAVIGATION_MAX_STREAMS", cfg.MaxStreams); err != nil {
		return err
	}

	return nil
}

func loadPrefetchConfig(cfg *PrefetchConfig) error {
	var err error

	if cfg.Enabled, err = parseBoolEnv("PREFETCH_ENABLED", cfg.Enabled); err != nil {
		return err
	}

	if cfg.Interval, err = parseDurationEnv("PREFETCH_INTERVAL", cfg.Interval); err != nil {
		return err
	}

	if cfg.Concurrency, err = parseIntEnv("PREFETCH_CONCURRENCY", cfg.Concurrency); err != nil {
		return err
	}

	if pages := os.Getenv("PREFETCH_PAGES"); pages != "" {
		cfg.Pages = splitList(pages, ",")
	}

	return nil
}

func loadMetricsConfig(cfg *MetricsConfig) error {
	var err error

	if cfg.Enabled, err = parseBoolEnv("METRICS_ENABLED", cfg.Enabled); err != nil {
		return err
	}

	return nil
}

func loadOTelConfig(cfg *OTelConfig) error {
	var err error

	if cfg.Enabled, err = parseBoolEnv("OTEL_ENABLED", cfg.Enabled); err != nil {
		return err
	}

	if name := os.Getenv("OTEL_SERVICE_NAME"); name != "" {
		cfg.ServiceName = name
	}

	if version := os.Getenv("SERVICE_VERSION"); version != "" {
		cfg.ServiceVersion = version
	}

	if env := os.Getenv("DEPLOYMENT_ENV"); env != "" {
		cfg.Environment = env
	}

	if endpoint := os.Getenv("OTEL_EXPORTER_OTLP_ENDPOINT"); endpoint != "" {
		cfg.Endpoint = endpoint
	}

	if cfg.SampleRatio, err = parseFloatEnv("OTEL_TRACE_SAMPLE_RATIO", cfg.SampleRatio); err != nil {
		return err
	}

	return nil
}

func parseDurationEnv(key string, defaultValue time.Duration) (time.Duration, error) {
	if value := os.Getenv(key); value != "" {
		d, err := time.ParseDuration(value)
		if err != nil {
			return 0, fmt.Errorf("invalid %s: %s", key, value)
		}
		return d, nil
	}
	return defaultValue, nil
}

func parseIntEnv(key string, defaultValue int) (int, error) {
	if value := os.Getenv(key); value != "" {
		i, err := strconv.Atoi(value)
		if err != nil {
			return 0, fmt.Errorf("invalid %s: %s", key, value)
		}
		return i, nil
	}
	return defaultValue, nil
}

func parseBoolEnv(key string, defaultValue bool) (bool, error) {
	if value := os.Getenv(key); value != "" {
		b, err := strconv.ParseBool(value)
		if err != nil {
			return false, fmt.Errorf("invalid %s: %s", key, value)
		}
		return b, nil
	}
	return defaultValue, nil
}

func parseFloatEnv(key string, defaultValue float64) (float64, error) {
	if value := os.Getenv(key); value != "" {
		f, err := strconv.ParseFloat(value, 64)
		if err != nil {
			return 0, fmt.Errorf("invalid %s: %s", key, value)
		}
		return f, nil
	}
	return defaultValue, nil
}

// parsePageEntriesEnv reads "page=name|value" items separated by ";". A set variable replaces the
// defaults entirely.
func parsePageEntriesEnv(key string, defaultValue []PageEntry) ([]PageEntry, error) {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue, nil
	}

	var entries []PageEntry
	for _, item := range splitList(value, ";") {
		pagePart, rest, ok := strings.Cut(item, "=")
		if !ok {
			return nil, fmt.Errorf("invalid %s: %q missing '='", key, item)
		}
		page, err := strconv.Atoi(strings.TrimSpace(pagePart))
		if err != nil {
			return nil, fmt.Errorf("invalid %s: %q has a non-numeric page", key, item)
		}
		name, val, ok := strings.Cut(rest, "|")
		if !ok {
			return nil, fmt.Errorf("invalid %s: %q missing '|'", key, item)
		}
		entries = append(entries, PageEntry{
			Page:  page,
			Name:  strings.TrimSpace(name),
			Value: strings.TrimSpace(val),
		})
	}
	return entries, nil
}

func splitList(value, sep string) []string {
	var out []string
	for _, part := range strings.Split(value, sep) {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
