package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/structs"
	"github.com/knadh/koanf/v2"
)

const ConfigPathEnvVar = "CONFIG_PATH"

var DefaultConfigPaths = []string{"config.yaml", "config.yml"}

type Config struct {
	Server    ServerConfig    `koanf:"server"`
	Log       LogConfig       `koanf:"log"`
	Recommend RecommendConfig `koanf:"recommend"`
	Source    SourceConfig    `koanf:"source"`
	Database  DatabaseConfig  `koanf:"database"`
	Cache     CacheConfig     `koanf:"cache"`
}

type ServerConfig struct {
	Port              int           `koanf:"port" validate:"min=1,max=65535"`
	RequestTimeout    time.Duration `koanf:"request_timeout" validate:"gt=0"`
	CORSOrigins       []string      `koanf:"cors_origins"`
	RateLimitRequests int           `koanf:"rate_limit_requests" validate:"min=0"`
	RateLimitWindow   time.Duration `koanf:"rate_limit_window"`
}

type LogConfig struct {
	Level  string `koanf:"level" validate:"omitempty,oneof=trace debug info warn error"`
	Format string `koanf:"format" validate:"omitempty,oneof=json console"`
}

type RecommendConfig struct {
	Strategy          string  `koanf:"strategy" validate:"oneof=centroid proximity match"`
	DefaultTopK       int     `koanf:"default_top_k" validate:"min=1"`
	MaxTopK           int     `koanf:"max_top_k" validate:"gtefield=DefaultTopK"`
	TopCuisines       int     `koanf:"top_cuisines" validate:"min=1"`
	ProximityRadiusKm float64 `koanf:"proximity_radius_km" validate:"gte=0"`
	CandidateLimit    int     `koanf:"candidate_limit" validate:"min=0,max=50"`
}

type SourceConfig struct {
	Kind            string        `koanf:"kind" validate:"oneof=yelp mock catalog"`
	YelpAPIKey      string        `koanf:"yelp_api_key" validate:"required_if=Kind yelp"`
	YelpBaseURL     string        `koanf:"yelp_base_url" validate:"omitempty,url"`
	Timeout         time.Duration `koanf:"timeout" validate:"gt=0"`
	RateLimit       float64       `koanf:"rate_limit" validate:"gt=0"`
	RateBurst       int           `koanf:"rate_burst" validate:"min=1"`
	MaxRetries      int           `koanf:"max_retries" validate:"min=0,max=10"`
	RetryBaseDelay  time.Duration `koanf:"retry_base_delay"`
	RetryMaxDelay   time.Duration `koanf:"retry_max_delay"`
	BreakerFailures uint32        `koanf:"breaker_failures" validate:"min=1"`
	BreakerTimeout  time.Duration `koanf:"breaker_timeout"`
	FanOutLimit     int           `koanf:"fan_out_limit" validate:"min=1"`
	MockPerCuisine  int           `koanf:"mock_per_cuisine" validate:"min=1"`
}

type DatabaseConfig struct {
	URL        string `koanf:"url"`
	PoolSize   int    `koanf:"pool_size" validate:"min=1"`
	Seed       bool   `koanf:"seed"`
	PerCuisine int    `koanf:"seed_per_cuisine" validate:"min=1"`
}

type CacheConfig struct {
	Enabled  bool          `koanf:"enabled"`
	RedisURL string        `koanf:"redis_url"`
	TTL      time.Duration `koanf:"ttl"`
}

func defaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Port:              8080,
			RequestTimeout:    30 * time.Second,
			CORSOrigins:       []string{"*"},
			RateLimitRequests: 100,
			RateLimitWindow:   time.Minute,
		},
		Log: LogConfig{Level: "info", Format: "json"},
		Recommend: RecommendConfig{
			Strategy:       "centroid",
			DefaultTopK:    10,
			MaxTopK:        50,
			TopCuisines:    3,
			CandidateLimit: 30,
		},
		Source: SourceConfig{
			Kind:            "mock",
			Timeout:         10 * time.Second,
			RateLimit:       5,
			RateBurst:       5,
			MaxRetries:      2,
			RetryBaseDelay:  200 * time.Millisecond,
			RetryMaxDelay:   2 * time.Second,
			BreakerFailures: 5,
			BreakerTimeout:  30 * time.Second,
			FanOutLimit:     4,
			MockPerCuisine:  50,
		},
		Database: DatabaseConfig{
			URL:        "",
			PoolSize:   20,
			PerCuisine: 50,
		},
		Cache: CacheConfig{
			Enabled:  false,
			RedisURL: "redis://localhost:6379",
			TTL:      10 * time.Minute,
		},
	}
}

// Load layers defaults, an optional YAML file and environment variables,
// later layers winning.
func Load() (*Config, error) {
	k := koanf.New(".")

	if err := k.Load(structs.Provider(defaultConfig(), "koanf"), nil); err != nil {
		return nil, fmt.Errorf("load defaults: %w", err)
	}

	if path := findConfigFile(); path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("load config file %s: %w", path, err)
		}
	}

	if err := k.Load(env.Provider("", ".", envKey), nil); err != nil {
		return nil, fmt.Errorf("load environment: %w", err)
	}

	if err := splitCommaList(k, "server.cors_origins"); err != nil {
		return nil, err
	}

	cfg := &Config{}
	if err := k.Unmarshal("", cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

func (c *Config) Validate() error {
	if err := validator.New(validator.WithRequiredStructEnabled()).Struct(c); err != nil {
		return err
	}
	if c.Source.Kind == "catalog" && c.Database.URL == "" {
		return fmt.Errorf("source kind catalog requires DATABASE_URL")
	}
	return nil
}

func (c *Config) Addr() string {
	return fmt.Sprintf(":%d", c.Server.Port)
}

func findConfigFile() string {
	if p := os.Getenv(ConfigPathEnvVar); p != "" {
		return p
	}
	for _, p := range DefaultConfigPaths {
		if _, err := os.Stat(p); err == nil {
			return p
		}
	}
	return ""
}

var envKeys = map[string]string{
	"port":                "server.port",
	"request_timeout":     "server.request_timeout",
	"cors_origins":        "server.cors_origins",
	"rate_limit_requests": "server.rate_limit_requests",
	"rate_limit_window":   "server.rate_limit_window",
	"log_level":           "log.level",
	"log_format":          "log.format",
	"scoring_strategy":    "recommend.strategy",
	"default_top_k":       "recommend.default_top_k",
	"max_top_k":           "recommend.max_top_k",
	"top_cuisines":        "recommend.top_cuisines",
	"proximity_radius_km": "recommend.proximity_radius_km",
	"candidate_limit":     "recommend.candidate_limit",
	"source_kind":         "source.kind",
	"yelp_api_key":        "source.yelp_api_key",
	"yelp_base_url":       "source.yelp_base_url",
	"source_timeout":      "source.timeout",
	"source_rate_limit":   "source.rate_limit",
	"source_rate_burst":   "source.rate_burst",
	"source_max_retries":  "source.max_retries",
	"breaker_failures":    "source.breaker_failures",
	"breaker_timeout":     "source.breaker_timeout",
	"fan_out_limit":       "source.fan_out_limit",
	"mock_per_cuisine":    "source.mock_per_cuisine",
	"database_url":        "database.url",
	"db_pool_size":        "database.pool_size",
	"db_seed":             "database.seed",
	"db_seed_per_cuisine": "database.seed_per_cuisine",
	"cache_enabled":       "cache.enabled",
	"redis_url":           "cache.redis_url",
	"cache_ttl":           "cache.ttl",
}

// envKey maps an environment variable to its config path. Unknown variables
// map to "" and are skipped.
func envKey(name string) string {
	return envKeys[strings.ToLower(name)]
}

func splitCommaList(k *koanf.Koanf, path string) error {
	raw, ok := k.Get(path).(string)
	if !ok {
		return nil
	}
	var items []string
	for _, s := range strings.Split(raw, ",") {
		if s = strings.TrimSpace(s); s != "" {
			items = append(items, s)
		}
	}
	if err := k.Set(path, items); err != nil {
		return fmt.Errorf("set %s: %w", path, err)
	}
	return nil
}
