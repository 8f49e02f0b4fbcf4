// Package config loads service settings from YAML with environment overrides.
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"

	"credit-score/model"
	"credit-score/repository"
)

const (
	BackendMemory = "memory"
	BackendRedis  = "redis"
	BackendSQLite = "sqlite"

	FormatText = "text"
	FormatJSON = "json"
)

type Config struct {
	Server   ServerConfig   `yaml:"server"`
	Model    ModelConfig    `yaml:"model"`
	Narrator NarratorConfig `yaml:"narrator"`
	Cache    CacheConfig    `yaml:"cache"`
	Store    StoreConfig    `yaml:"store"`
	Log      LogConfig      `yaml:"log"`
}

type ServerConfig struct {
	Address         string          `yaml:"address"`
	ReadTimeout     time.Duration   `yaml:"read_timeout"`
	WriteTimeout    time.Duration   `yaml:"write_timeout"`
	IdleTimeout     time.Duration   `yaml:"idle_timeout"`
	ShutdownTimeout time.Duration   `yaml:"shutdown_timeout"`
	RateLimit       RateLimitConfig `yaml:"rate_limit"`
}

// RateLimitConfig allows Capacity requests per client per Window.
// A zero Capacity disables limiting.
type RateLimitConfig struct {
	Capacity int           `yaml:"capacity"`
	Window   time.Duration `yaml:"window"`
}

type ModelConfig struct {
	// Local path or s3://bucket/key.
	Path string         `yaml:"path"`
	S3   model.S3Config `yaml:"s3"`
}

type NarratorConfig struct {
	APIKey     string        `yaml:"api_key"`
	URL        string        `yaml:"url"`
	Model      string        `yaml:"model"`
	MaxTokens  int           `yaml:"max_tokens"`
	Timeout    time.Duration `yaml:"timeout"`
	MaxRetries int           `yaml:"max_retries"`
	RetryDelay time.Duration `yaml:"retry_delay"`
	CacheTTL   time.Duration `yaml:"cache_ttl"`
}

type CacheConfig struct {
	Backend string `yaml:"backend"`
	// How often the memory backend drops expired entries.
	SweepInterval time.Duration           `yaml:"sweep_interval"`
	Redis         repository.RedisOptions `yaml:"redis"`
}

type StoreConfig struct {
	Backend string `yaml:"backend"`
	// Records kept by the memory backend before the oldest is evicted.
	MemoryCapacity int    `yaml:"memory_capacity"`
	SQLitePath     string `yaml:"sqlite_path"`
}

type LogConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// Default returns the settings used when nothing is configured.
func Default() *Config {
	return &Config{
		Server: ServerConfig{
			Address:         ":8000",
			ReadTimeout:     15 * time.Second,
			WriteTimeout:    15 * time.Second,
			IdleTimeout:     60 * time.Second,
			ShutdownTimeout: 10 * time.Second,
			RateLimit: RateLimitConfig{
				Capacity: 60,
				Window:   time.Minute,
			},
		},
		Model: ModelConfig{
			Path: "credit_score_model.json",
		},
		Narrator: NarratorConfig{
			MaxTokens:  300,
			Timeout:    5 * time.Second,
			MaxRetries: 1,
			RetryDelay: 250 * time.Millisecond,
			CacheTTL:   24 * time.Hour,
		},
		Cache: CacheConfig{
			Backend:       BackendMemory,
			SweepInterval: 10 * time.Minute,
			Redis:         repository.RedisOptions{Address: "localhost:6379"},
		},
		Store: StoreConfig{
			Backend:        BackendMemory,
			MemoryCapacity: repository.DefaultMemoryRecordCapacity,
			SQLitePath:     "scores.db",
		},
		Log: LogConfig{
			Level:  "info",
			Format: FormatText,
		},
	}
}

// Load reads the YAML file at path over the defaults, then applies
// environment overrides. An empty path skips the file.
func Load(path string) (*Config, error) {
	return load(path, os.Getenv)
}

func load(path string, getenv func(string) string) (*Config, error) {
	cfg := Default()

	if path != "" {
		b, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("reading config file %s: %w", path, err)
		}
		if err := yaml.Unmarshal(b, cfg); err != nil {
			return nil, fmt.Errorf("parsing config file %s: %w", path, err)
		}
	}

	if err := applyEnv(cfg, getenv); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func applyEnv(cfg *Config, getenv func(string) string) error {
	setString := func(key string, dst *string) {
		if v := getenv(key); v != "" {
			*dst = v
		}
	}
	setString("CREDIT_ADDRESS", &cfg.Server.Address)
	setString("CREDIT_MODEL_PATH", &cfg.Model.Path)
	setString("CREDIT_S3_ENDPOINT", &cfg.Model.S3.Endpoint)
	setString("CREDIT_S3_REGION", &cfg.Model.S3.Region)
	setString("CREDIT_S3_ACCESS_KEY", &cfg.Model.S3.AccessKey)
	setString("CREDIT_S3_SECRET_KEY", &cfg.Model.S3.SecretKey)
	setString("OPENAI_API_KEY", &cfg.Narrator.APIKey)
	setString("OPENAI_MODEL", &cfg.Narrator.Model)
	setString("CREDIT_CACHE_BACKEND", &cfg.Cache.Backend)
	setString("REDIS_ADDR", &cfg.Cache.Redis.Address)
	setString("REDIS_PASSWORD", &cfg.Cache.Redis.Password)
	setString("CREDIT_STORE_BACKEND", &cfg.Store.Backend)
	setString("CREDIT_SQLITE_PATH", &cfg.Store.SQLitePath)
	setString("CREDIT_LOG_LEVEL", &cfg.Log.Level)
	setString("CREDIT_LOG_FORMAT", &cfg.Log.Format)

	if v := getenv("CREDIT_NARRATOR_TIMEOUT"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("parsing CREDIT_NARRATOR_TIMEOUT: %w", err)
		}
		cfg.Narrator.Timeout = d
	}
	if v := getenv("CREDIT_RATE_LIMIT"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("parsing CREDIT_RATE_LIMIT: %w", err)
		}
		cfg.Server.RateLimit.Capacity = n
	}
	return nil
}

// Validate reports the first invalid setting.
func (c *Config) Validate() error {
	switch {
	case c.Server.Address == "":
		return errors.New("server.address is required")
	case c.Server.RateLimit.Capacity < 0:
		return errors.New("server.rate_limit.capacity must not be negative")
	case c.Server.RateLimit.Capacity > 0 && c.Server.RateLimit.Window <= 0:
		return errors.New("server.rate_limit.window must be positive")
	case c.Model.Path == "":
		return errors.New("model.path is required")
	case c.Narrator.Timeout <= 0:
		return errors.New("narrator.timeout must be positive")
	case c.Narrator.MaxRetries < 0:
		return errors.New("narrator.max_retries must not be negative")
	case c.Cache.SweepInterval < 0:
		return errors.New("cache.sweep_interval must not be negative")
	case c.Store.MemoryCapacity < 0:
		return errors.New("store.memory_capacity must not be negative")
	}

	switch c.Cache.Backend {
	case BackendMemory:
	case BackendRedis:
		if c.Cache.Redis.Address == "" {
			return errors.New("cache.redis.address is required for the redis backend")
		}
	default:
		return fmt.Errorf("unknown cache.backend %q", c.Cache.Backend)
	}

	switch c.Store.Backend {
	case BackendMemory:
	case BackendSQLite:
		if c.Store.SQLitePath == "" {
			return errors.New("store.sqlite_path is required for the sqlite backend")
		}
	default:
		return fmt.Errorf("unknown store.backend %q", c.Store.Backend)
	}

	if c.Log.Format != FormatText && c.Log.Format != FormatJSON {
		return fmt.Errorf("unknown log.format %q", c.Log.Format)
	}
	return nil
}
