package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

// Config is the full runtime configuration. Values come from the YAML
// file when present, then PRICEWATCH_* environment overrides.
type Config struct {
	Server  ServerConfig  `yaml:"server"`
	Logging LoggingConfig `yaml:"logging"`
	Fetch   FetchConfig   `yaml:"fetch"`
	Retry   RetryConfig   `yaml:"retry"`
	Catalog CatalogConfig `yaml:"catalog"`
	Store   StoreConfig   `yaml:"store"`
	Cache   CacheConfig   `yaml:"cache"`
}

type ServerConfig struct {
	Addr        string `yaml:"addr"`
	MetricsAddr string `yaml:"metricsAddr"`
}

type LoggingConfig struct {
	Level string `yaml:"level"`
	JSON  bool   `yaml:"json"`
}

type FetchConfig struct {
	Timeout      time.Duration `yaml:"timeout"`
	UserAgent    string        `yaml:"userAgent"`
	MaxRedirects int           `yaml:"maxRedirects"`
	MaxBodyBytes int64         `yaml:"maxBodyBytes"`
}

type RetryConfig struct {
	MaxAttempts        int                      `yaml:"maxAttempts"`
	BaseDelay          time.Duration            `yaml:"baseDelay"`
	PlatformBaseDelays map[string]time.Duration `yaml:"platformBaseDelays"`
	MaxJitter          time.Duration            `yaml:"maxJitter"`
	NetworkRetryDelay  time.Duration            `yaml:"networkRetryDelay"`
	AttemptTimeout     time.Duration            `yaml:"attemptTimeout"`
}

type CatalogConfig struct {
	// Path points at an optional YAML overlay merged over the built-in
	// solution definitions.
	Path string `yaml:"path"`
}

type StoreConfig struct {
	Enabled bool   `yaml:"enabled"`
	Path    string `yaml:"path"`
}

type CacheConfig struct {
	Enabled  bool          `yaml:"enabled"`
	Addr     string        `yaml:"addr"`
	Password string        `yaml:"password"`
	DB       int           `yaml:"db"`
	Timeout  time.Duration `yaml:"timeout"`
}

func defaultConfig() Config {
	return Config{
		Server: ServerConfig{
			Addr:        ":8080",
			MetricsAddr: ":9090",
		},
		Logging: LoggingConfig{
			Level: "info",
			JSON:  true,
		},
		Fetch: FetchConfig{
			Timeout:      30 * time.Second,
			UserAgent:    "pricewatch-guard/1.0",
			MaxRedirects: 10,
			MaxBodyBytes: 2 << 20,
		},
		Retry: RetryConfig{
			MaxAttempts:       3,
			BaseDelay:         time.Second,
			MaxJitter:         500 * time.Millisecond,
			NetworkRetryDelay: 250 * time.Millisecond,
			AttemptTimeout:    30 * time.Second,
		},
		Store: StoreConfig{
			Enabled: true,
			Path:    "data/settings",
		},
		Cache: CacheConfig{
			Enabled: false,
			Addr:    "localhost:6379",
			Timeout: 3 * time.Second,
		},
	}
}

// Load reads the YAML file at path (missing file means defaults) and
// applies environment overrides.
func Load(path string) (Config, error) {
	cfg := defaultConfig()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			if !os.IsNotExist(err) {
				return Config{}, fmt.Errorf("read config: %w", err)
			}
		} else if err := yaml.Unmarshal(data, &cfg); err != nil {
			return Config{}, fmt.Errorf("parse config: %w", err)
		}
	}

	applyEnvOverrides(&cfg)
	return cfg, nil
}

func applyEnvOverrides(cfg *Config) {
	setString("PRICEWATCH_SERVER_ADDR", &cfg.Server.Addr)
	setString("PRICEWATCH_METRICS_ADDR", &cfg.Server.MetricsAddr)
	setString("PRICEWATCH_LOG_LEVEL", &cfg.Logging.Level)
	setBool("PRICEWATCH_LOG_JSON", &cfg.Logging.JSON)
	setDuration("PRICEWATCH_FETCH_TIMEOUT", &cfg.Fetch.Timeout)
	setString("PRICEWATCH_FETCH_USER_AGENT", &cfg.Fetch.UserAgent)
	setInt("PRICEWATCH_RETRY_MAX_ATTEMPTS", &cfg.Retry.MaxAttempts)
	setDuration("PRICEWATCH_RETRY_BASE_DELAY", &cfg.Retry.BaseDelay)
	setDuration("PRICEWATCH_RETRY_MAX_JITTER", &cfg.Retry.MaxJitter)
	setString("PRICEWATCH_CATALOG_PATH", &cfg.Catalog.Path)
	setBool("PRICEWATCH_STORE_ENABLED", &cfg.Store.Enabled)
	setString("PRICEWATCH_STORE_PATH", &cfg.Store.Path)
	setBool("PRICEWATCH_CACHE_ENABLED", &cfg.Cache.Enabled)
	setString("PRICEWATCH_CACHE_ADDR", &cfg.Cache.Addr)
	setString("PRICEWATCH_CACHE_PASSWORD", &cfg.Cache.Password)
	setInt("PRICEWATCH_CACHE_DB", &cfg.Cache.DB)
}

func setString(key string, dst *string) {
	if v := os.Getenv(key); v != "" {
		*dst = v
	}
}

func setBool(key string, dst *bool) {
	if v := os.Getenv(key); v != "" {
		if parsed, err := strconv.ParseBool(v); err == nil {
			*dst = parsed
		}
	}
}

func setInt(key string, dst *int) {
	if v := os.Getenv(key); v != "" {
		if parsed, err := strconv.Atoi(v); err == nil {
			*dst = parsed
		}
	}
}

func setDuration(key string, dst *time.Duration) {
	if v := os.Getenv(key); v != "" {
		if parsed, err := time.ParseDuration(v); err == nil {
			*dst = parsed
		}
	}
}
