package config

import "time"

// Config is the full service configuration. Every field has a default and can be overridden
// from the environment.
type Config struct {
	Server     ServerConfig
	Retry      RetryConfig
	Cache      CacheConfig
	Upstream   UpstreamConfig
	News       NewsConfig
	Sports     SportsConfig
	Markets    MarketsConfig
	Weather    WeatherConfig
	AI         AIConfig
	Navigation NavigationConfig
	Prefetch   PrefetchConfig
	Metrics    MetricsConfig
	OTel       OTelConfig
	LogLevel   string
}

type ServerConfig struct {
	Port            int
	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	ShutdownTimeout time.Duration
	// FetchTimeout bounds one shared adapter fetch including its retries.
	FetchTimeout time.Duration
}

type RetryConfig struct {
	MaxAttempts       int
	InitialDelay      time.Duration
	MaxDelay          time.Duration
	BackoffMultiplier float64
}

// Cache backends.
const (
	CacheBackendMemory = "memory"
	CacheBackendRedis  = "redis"
)

type CacheConfig struct {
	Backend    string
	MaxEntries int
	DefaultTTL time.Duration
	RedisURL   string
	KeyPrefix  string
}

type UpstreamConfig struct {
	Timeout      time.Duration
	UserAgent    string
	HostInterval time.Duration
	HostBurst    int
	MaxBodyBytes int64
}

// PageEntry binds a page number to two adapter-specific strings, parsed from
// "page=name|value" list items.
type PageEntry struct {
	Page  int
	Name  string
	Value string
}

type NewsConfig struct {
	Feeds     []PageEntry // Name: title, Value: feed URL
	TTL       time.Duration
	ListItems int
}

type SportsConfig struct {
	BaseURL string
	Leagues []PageEntry // Name: title, Value: league code
	TTL     time.Duration
}

type MarketsConfig struct {
	BaseURL string
	Boards  []PageEntry // Name: title, Value: comma separated symbols
	TTL     time.Duration
}

type WeatherConfig struct {
	BaseURL   string
	Locations []PageEntry // Name: display name, Value: location query
	TTL       time.Duration
}

type AIConfig struct {
	BaseURL     string
	Model       string
	Prompts     []PageEntry // Name: title, Value: prompt
	Temperature float64
	MaxTokens   int
	Timeout     time.Duration
	TTL         time.Duration
}

type NavigationConfig struct {
	DebounceWindow time.Duration
	MaxStreams     int
}

type PrefetchConfig struct {
	Enabled     bool
	Interval    time.Duration
	Concurrency int
	Pages       []string
}

type MetricsConfig struct {
	Enabled bool
}

type OTelConfig struct {
	Enabled        bool
	ServiceName    string
	ServiceVersion string
	Environment    string
	Endpoint       string
	SampleRatio    float64
}
