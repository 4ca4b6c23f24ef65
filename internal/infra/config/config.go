package config

import "time"

func defaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Port:            9300,
			ReadTimeout:     15 * time.Second,
			WriteTimeout:    45 * time.Second,
			ShutdownTimeout: 10 * time.Second,
			FetchTimeout:    30 * time.Second,
		},
		Retry: RetryConfig{
			MaxAttempts:       3,
			InitialDelay:      time.Second,
			MaxDelay:          10 * time.Second,
			BackoffMultiplier: 2.0,
		},
		Cache: CacheConfig{
			Backend:    CacheBackendMemory,
			MaxEntries: 4096,
			DefaultTTL: 5 * time.Minute,
			RedisURL:   "redis://localhost:6379/0",
			KeyPrefix:  "teletext:page:",
		},
		Upstream: UpstreamConfig{
			Timeout:      10 * time.Second,
			UserAgent:    "teletext/1.0 (+https://github.com/teletext)",
			HostInterval: 200 * time.Millisecond,
			HostBurst:    5,
			MaxBodyBytes: 4 << 20,
		},
		News: NewsConfig{
			Feeds: []PageEntry{
				{Page: 200, Name: "Top stories", Value: "https://feeds.bbci.co.uk/news/rss.xml"},
				{Page: 201, Name: "World", Value: "https://feeds.bbci.co.uk/news/world/rss.xml"},
				{Page: 202, Name: "Technology", Value: "https://feeds.bbci.co.uk/news/technology/rss.xml"},
				{Page: 203, Name: "Science", Value: "https://feeds.bbci.co.uk/news/science_and_environment/rss.xml"},
			},
			TTL:       5 * time.Minute,
			ListItems: 18,
		},
		Sports: SportsConfig{
			BaseURL: "http://localhost:8091",
			Leagues: []PageEntry{
				{Page: 301, Name: "Premier League", Value: "EPL"},
				{Page: 302, Name: "La Liga", Value: "LALIGA"},
				{Page: 303, Name: "Bundesliga", Value: "BL1"},
			},
			TTL: time.Minute,
		},
		Markets: MarketsConfig{
			BaseURL: "http://localhost:8092",
			Boards: []PageEntry{
				{Page: 401, Name: "World indices", Value: "SPX,NDX,FTSE,DAX,N225"},
				{Page: 402, Name: "Currencies", Value: "EURUSD,GBPUSD,USDJPY"},
				{Page: 403, Name: "Commodities", Value: "GOLD,BRENT,WTI"},
			},
			TTL: time.Minute,
		},
		Weather: WeatherConfig{
			BaseURL: "http://localhost:8093",
			Locations: []PageEntry{
				{Page: 421, Name: "London", Value: "london,uk"},
				{Page: 422, Name: "Manchester", Value: "manchester,uk"},
				{Page: 423, Name: "Edinburgh", Value: "edinburgh,uk"},
			},
			TTL: 10 * time.Minute,
		},
		AI: AIConfig{
			BaseURL: "http://localhost:11434",
			Model:   "gemma3:4b",
			Prompts: []PageEntry{
				{Page: 501, Name: "Daily digest", Value: "Write a short, upbeat digest of things worth knowing today."},
				{Page: 502, Name: "Word of the day", Value: "Pick an unusual English word, define it and use it in a sentence."},
				{Page: 503, Name: "On this day", Value: "Describe one notable historical event that happened on this calendar day."},
			},
			Temperature: 0.2,
			MaxTokens:   256,
			Timeout:     60 * time.Second,
			TTL:         30 * time.Minute,
		},
		Navigation: NavigationConfig{
			DebounceWindow: 100 * time.Millisecond,
			MaxStreams:     1024,
		},
		Prefetch: PrefetchConfig{
			Enabled:     true,
			Interval:    4 * time.Minute,
			Concurrency: 4,
			Pages:       []string{"100", "200", "201", "300", "400", "421"},
		},
		Metrics: MetricsConfig{
			Enabled: true,
		},
		OTel: OTelConfig{
			Enabled:        false,
			ServiceName:    "teletext",
			ServiceVersion: "0.0.0",
			Environment:    "development",
			Endpoint:       "http://localhost:4318",
			SampleRatio:    0.1,
		},
		LogLevel: "info",
	}
}
