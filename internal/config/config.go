// Cinematch - Movie and Series Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cinematch

package config

import (
	"time"

	"github.com/tomtom215/cinematch/internal/catalog"
	"github.com/tomtom215/cinematch/internal/dataset"
	"github.com/tomtom215/cinematch/internal/events"
	"github.com/tomtom215/cinematch/internal/logging"
	"github.com/tomtom215/cinematch/internal/preference"
	"github.com/tomtom215/cinematch/internal/recommend"
)

// Model store backends.
const (
	BackendFile   = "file"
	BackendBadger = "badger"
	BackendNone   = "none"
)

// Config is the complete service configuration.
type Config struct {
	Server     ServerConfig     `koanf:"server"`
	Logging    LoggingConfig    `koanf:"logging"`
	Data       DataConfig       `koanf:"data"`
	Recommend  RecommendConfig  `koanf:"recommend"`
	ModelStore ModelStoreConfig `koanf:"model_store"`
	Metadata   MetadataConfig   `koanf:"metadata"`
	Preference PreferenceConfig `koanf:"preference"`
	Events     EventsConfig     `koanf:"events"`
	Security   SecurityConfig   `koanf:"security"`
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Host    string        `koanf:"host"`
	Port    int           `koanf:"port" validate:"gte=1,lte=65535"`
	Timeout time.Duration `koanf:"timeout" validate:"gt=0"`

	// ShutdownTimeout bounds graceful shutdown of in-flight requests.
	ShutdownTimeout time.Duration `koanf:"shutdown_timeout" validate:"gt=0"`
}

// LoggingConfig holds logging settings for zerolog.
//
// Environment Variables:
//   - LOG_LEVEL: trace, debug, info, warn, error (default: info)
//   - LOG_FORMAT: json, console (default: json)
//   - LOG_CALLER: include caller file:line (default: false)
type LoggingConfig struct {
	Level  string `koanf:"level"`
	Format string `koanf:"format" validate:"oneof=json console"`
	Caller bool   `koanf:"caller"`
}

// DataConfig locates the CSV dataset.
type DataConfig struct {
	CatalogPath      string `koanf:"catalog_path"`
	StreamingPath    string `koanf:"streaming_path"`
	InteractionsPath string `koanf:"interactions_path"`

	// DuckDBPath is ":memory:" unless the loaded tables should persist.
	DuckDBPath   string        `koanf:"duckdb_path"`
	QueryTimeout time.Duration `koanf:"query_timeout" validate:"gt=0"`
}

// RecommendConfig holds engine, training and serving settings.
type RecommendConfig struct {
	Factors         int     `koanf:"factors" validate:"gt=0"`
	Alpha           float64 `koanf:"alpha" validate:"gt=0"`
	MinInteractions int     `koanf:"min_interactions" validate:"gte=1"`
	TestSize        float64 `koanf:"test_size" validate:"gt=0,lt=1"`
	RandomState     int64   `koanf:"random_state"`

	// Solver is "svd" (default) or "als".
	Solver          string  `koanf:"solver" validate:"oneof=svd als"`
	PowerIterations int     `koanf:"power_iterations" validate:"gte=0"`
	Oversamples     int     `koanf:"oversamples" validate:"gte=0"`
	Iterations      int     `koanf:"iterations" validate:"gt=0"`
	Regularization  float64 `koanf:"regularization" validate:"gte=0"`
	NumWorkers      int     `koanf:"num_workers" validate:"gte=0"`

	OverFetchFactor int `koanf:"over_fetch_factor" validate:"gte=1"`
	DefaultN        int `koanf:"default_n" validate:"gt=0"`
	MaxN            int `koanf:"max_n" validate:"gtefield=DefaultN"`

	// DiversityLambda is the MMR relevance weight used when a query asks
	// for diverse results.
	DiversityLambda float64 `koanf:"diversity_lambda" validate:"gte=0,lte=1"`

	TrainOnStartup bool `koanf:"train_on_startup"`

	// TrainInterval schedules periodic retraining; zero disables it.
	TrainInterval   time.Duration `koanf:"train_interval" validate:"gte=0"`
	TrainingTimeout time.Duration `koanf:"training_timeout" validate:"gt=0"`

	CacheEnabled bool          `koanf:"cache_enabled"`
	CacheTTL     time.Duration `koanf:"cache_ttl" validate:"gte=0"`
}

// ModelStoreConfig selects where trained models are persisted.
type ModelStoreConfig struct {
	Backend      string `koanf:"backend" validate:"oneof=file badger none"`
	Path         string `koanf:"path" validate:"required_unless=Backend none"`
	KeepVersions int    `koanf:"keep_versions" validate:"gte=0"`
}

// MetadataConfig guards catalog lookups.
type MetadataConfig struct {
	Timeout     time.Duration `koanf:"timeout" validate:"gt=0"`
	MaxRequests uint32        `koanf:"max_requests" validate:"gte=1"`
	Interval    time.Duration `koanf:"interval" validate:"gte=0"`
	OpenTimeout time.Duration `koanf:"open_timeout" validate:"gt=0"`
	CacheTTL    time.Duration `koanf:"cache_ttl" validate:"gte=0"`
}

// PreferenceConfig selects the free-text preference extractor.
type PreferenceConfig struct {
	Mode      string        `koanf:"mode" validate:"oneof=pattern remote"`
	Endpoint  string        `koanf:"endpoint" validate:"omitempty,url"`
	APIKey    string        `koanf:"api_key"`
	Timeout   time.Duration `koanf:"timeout" validate:"gt=0"`
	RateLimit float64       `koanf:"rate_limit" validate:"gt=0"`
	Burst     int           `koanf:"burst" validate:"gte=1"`
}

// EventsConfig tunes the in-process event router.
type EventsConfig struct {
	RetryMaxRetries int           `koanf:"retry_max_retries" validate:"gte=0"`
	CloseTimeout    time.Duration `koanf:"close_timeout" validate:"gt=0"`
}

// SecurityConfig holds CORS and rate limiting settings.
type SecurityConfig struct {
	CORSOrigins       []string      `koanf:"cors_origins"`
	RateLimitReqs     int           `koanf:"rate_limit_reqs" validate:"gte=1"`
	RateLimitWindow   time.Duration `koanf:"rate_limit_window" validate:"gt=0"`
	RateLimitDisabled bool          `koanf:"rate_limit_disabled"`
}

// EngineConfig converts the recommend section to the engine's config.
func (c *Config) EngineConfig() *recommend.Config {
	r := c.Recommend
	cfg := recommend.DefaultConfig()
	cfg.Factors = r.Factors
	cfg.Alpha = r.Alpha
	cfg.MinInteractions = r.MinInteractions
	cfg.TestSize = r.TestSize
	cfg.RandomState = r.RandomState
	cfg.Solver = r.Solver
	cfg.SVD.PowerIterations = r.PowerIterations
	cfg.SVD.Oversamples = r.Oversamples
	cfg.ALS.Iterations = r.Iterations
	cfg.ALS.Regularization = r.Regularization
	cfg.ALS.NumWorkers = r.NumWorkers
	cfg.OverFetchFactor = r.OverFetchFactor
	cfg.Training.Timeout = r.TrainingTimeout
	cfg.Limits.DefaultN = r.DefaultN
	cfg.Limits.MaxN = r.MaxN
	cfg.Cache.Enabled = r.CacheEnabled && r.CacheTTL > 0
	cfg.Cache.TTL = r.CacheTTL
	return cfg
}

// DatasetConfig converts the data section to the loader's config.
func (c *Config) DatasetConfig() dataset.Config {
	return dataset.Config{
		CatalogPath:      c.Data.CatalogPath,
		StreamingPath:    c.Data.StreamingPath,
		InteractionsPath: c.Data.InteractionsPath,
		DuckDBPath:       c.Data.DuckDBPath,
		QueryTimeout:     c.Data.QueryTimeout,
	}
}

// BreakerConfig converts the metadata section to the catalog breaker's
// config.
func (c *Config) BreakerConfig() catalog.BreakerConfig {
	cfg := catalog.DefaultBreakerConfig()
	cfg.Timeout = c.Metadata.Timeout
	cfg.MaxRequests = c.Metadata.MaxRequests
	cfg.Interval = c.Metadata.Interval
	cfg.OpenTimeout = c.Metadata.OpenTimeout
	return cfg
}

// PreferenceConfig converts the preference section to the extractor's
// config.
func (c *Config) PreferenceConfig() preference.Config {
	remote := preference.DefaultRemoteConfig()
	remote.Endpoint = c.Preference.Endpoint
	remote.APIKey = c.Preference.APIKey
	remote.Timeout = c.Preference.Timeout
	remote.RateLimit = c.Preference.RateLimit
	remote.Burst = c.Preference.Burst
	return preference.Config{Mode: c.Preference.Mode, Remote: remote}
}

// EventsConfig converts the events section to the bus config.
func (c *Config) EventsConfig() events.Config {
	cfg := events.DefaultConfig()
	cfg.RetryMaxRetries = c.Events.RetryMaxRetries
	cfg.CloseTimeout = c.Events.CloseTimeout
	return cfg
}

// LoggingConfig converts the logging section to the logger's config.
func (c *Config) LoggingConfig() logging.Config {
	cfg := logging.DefaultConfig()
	cfg.Level = c.Logging.Level
	cfg.Format = c.Logging.Format
	cfg.Caller = c.Logging.Caller
	return cfg
}
