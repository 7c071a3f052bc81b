// Cinematch - Movie and Series Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cinematch

package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/structs"
	"github.com/knadh/koanf/v2"
)

// DefaultConfigPaths lists the paths where config files are searched in order of priority.
// The first file found will be used.
var DefaultConfigPaths = []string{
	"config.yaml",
	"config.yml",
	"/etc/cinematch/config.yaml",
	"/etc/cinematch/config.yml",
}

// ConfigPathEnvVar is the environment variable that can override the config file path.
const ConfigPathEnvVar = "CONFIG_PATH"

// defaultConfig returns a Config with all default values. These are applied
// first, then overridden by the config file and environment variables.
func defaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Host:            "0.0.0.0",
			Port:            8000,
			Timeout:         30 * time.Second,
			ShutdownTimeout: 15 * time.Second,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
			Caller: false,
		},
		Data: DataConfig{
			CatalogPath:      "data/titles.csv",
			StreamingPath:    "data/streaming.csv",
			InteractionsPath: "data/ratings.csv",
			DuckDBPath:       ":memory:",
			QueryTimeout:     5 * time.Minute,
		},
		Recommend: RecommendConfig{
			Factors:         200,
			Alpha:           40.0,
			MinInteractions: 3,
			TestSize:        0.2,
			RandomState:     42,
			Solver:          "svd",
			PowerIterations: 5,
			Oversamples:     10,
			Iterations:      50,
			Regularization:  0.01,
			NumWorkers:      4,
			OverFetchFactor: 3,
			DefaultN:        10,
			MaxN:            100,
			DiversityLambda: 0.7,
			TrainOnStartup:  true,
			TrainInterval:   0, // Disabled; retrain via POST /api/v1/train
			TrainingTimeout: 30 * time.Minute,
			CacheEnabled:    true,
			CacheTTL:        5 * time.Minute,
		},
		ModelStore: ModelStoreConfig{
			Backend:      BackendFile,
			Path:         "data/models",
			KeepVersions: 3,
		},
		Metadata: MetadataConfig{
			Timeout:     2 * time.Second,
			MaxRequests: 3,
			Interval:    time.Minute,
			OpenTimeout: 30 * time.Second,
			CacheTTL:    10 * time.Minute,
		},
		Preference: PreferenceConfig{
			Mode:      "pattern",
			Timeout:   5 * time.Second,
			RateLimit: 2,
			Burst:     5,
		},
		Events: EventsConfig{
			RetryMaxRetries: 2,
			CloseTimeout:    30 * time.Second,
		},
		Security: SecurityConfig{
			CORSOrigins:       []string{"*"},
			RateLimitReqs:     100,
			RateLimitWindow:   time.Minute,
			RateLimitDisabled: false,
		},
	}
}

// Load loads configuration with layered sources:
//  1. Defaults: built-in defaults
//  2. Config File: optional YAML file (CONFIG_PATH or DefaultConfigPaths)
//  3. Environment Variables: override any mapped setting
//
// Precedence is ENV > File > Defaults. The result is validated.
func Load() (*Config, error) {
	return LoadFile(findConfigFile())
}

// LoadFile is Load with an explicit config file path. An empty path skips
// the file layer.
func LoadFile(configPath string) (*Config, error) {
	k := koanf.New(".")

	// Layer 1: Load defaults from struct
	if err := k.Load(structs.Provider(defaultConfig(), "koanf"), nil); err != nil {
		return nil, fmt.Errorf("failed to load defaults: %w", err)
	}

	// Layer 2: Load config file (optional)
	if configPath != "" {
		if err := k.Load(file.Provider(configPath), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("failed to load config file %s: %w", configPath, err)
		}
	}

	// Layer 3: Load environment variables (highest priority)
	// RECOMMEND_FACTORS -> recommend.factors
	// HTTP_PORT -> server.port
	if err := k.Load(env.Provider("", ".", envTransformFunc), nil); err != nil {
		return nil, fmt.Errorf("failed to load environment variables: %w", err)
	}

	if err := processSliceFields(k); err != nil {
		return nil, fmt.Errorf("failed to process slice fields: %w", err)
	}

	cfg := &Config{}
	if err := k.Unmarshal("", cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal configuration: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return cfg, nil
}

// findConfigFile returns the first existing config file, or "" if none.
func findConfigFile() string {
	if envPath := os.Getenv(ConfigPathEnvVar); envPath != "" {
		if _, err := os.Stat(envPath); err == nil {
			return envPath
		}
	}

	for _, path := range DefaultConfigPaths {
		if _, err := os.Stat(path); err == nil {
			return path
		}
	}

	return ""
}

// sliceConfigPaths defines which config paths should be parsed as comma-separated slices
var sliceConfigPaths = []string{
	"security.cors_origins",
}

// processSliceFields converts comma-separated string values to slices for known slice fields.
// Env vars arrive as strings while YAML already yields slices.
func processSliceFields(k *koanf.Koanf) error {
	for _, path := range sliceConfigPaths {
		strVal, ok := k.Get(path).(string)
		if !ok || strVal == "" {
			continue
		}
		parts := strings.Split(strVal, ",")
		trimmed := make([]string, 0, len(parts))
		for _, p := range parts {
			if p = strings.TrimSpace(p); p != "" {
				trimmed = append(trimmed, p)
			}
		}
		if len(trimmed) > 0 {
			if err := k.Set(path, trimmed); err != nil {
				return fmt.Errorf("failed to set %s: %w", path, err)
			}
		}
	}
	return nil
}

// envMappings maps environment variable names (lowercased) to koanf paths.
var envMappings = map[string]string{
	// Server
	"http_host":        "server.host",
	"http_port":        "server.port",
	"http_timeout":     "server.timeout",
	"shutdown_timeout": "server.shutdown_timeout",

	// Logging
	"log_level":  "logging.level",
	"log_format": "logging.format",
	"log_caller": "logging.caller",

	// Dataset
	"catalog_path":       "data.catalog_path",
	"streaming_path":     "data.streaming_path",
	"interactions_path":  "data.interactions_path",
	"duckdb_path":        "data.duckdb_path",
	"data_query_timeout": "data.query_timeout",

	// Recommendation engine
	"recommend_factors":           "recommend.factors",
	"recommend_alpha":             "recommend.alpha",
	"recommend_min_interactions":  "recommend.min_interactions",
	"recommend_test_size":         "recommend.test_size",
	"recommend_random_state":      "recommend.random_state",
	"recommend_solver":            "recommend.solver",
	"recommend_power_iterations":  "recommend.power_iterations",
	"recommend_oversamples":       "recommend.oversamples",
	"recommend_iterations":        "recommend.iterations",
	"recommend_regularization":    "recommend.regularization",
	"recommend_num_workers":       "recommend.num_workers",
	"recommend_over_fetch_factor": "recommend.over_fetch_factor",
	"recommend_default_n":         "recommend.default_n",
	"recommend_max_n":             "recommend.max_n",
	"recommend_diversity_lambda":  "recommend.diversity_lambda",
	"recommend_train_on_startup":  "recommend.train_on_startup",
	"recommend_train_interval":    "recommend.train_interval",
	"recommend_training_timeout":  "recommend.training_timeout",
	"recommend_cache_enabled":     "recommend.cache_enabled",
	"recommend_cache_ttl":         "recommend.cache_ttl",

	// Model persistence
	"model_store_backend":       "model_store.backend",
	"model_store_path":          "model_store.path",
	"model_store_keep_versions": "model_store.keep_versions",

	// Catalog metadata guard
	"metadata_timeout":      "metadata.timeout",
	"metadata_open_timeout": "metadata.open_timeout",
	"metadata_cache_ttl":    "metadata.cache_ttl",

	// Preference extraction
	"preference_mode":       "preference.mode",
	"preference_endpoint":   "preference.endpoint",
	"preference_api_key":    "preference.api_key",
	"preference_timeout":    "preference.timeout",
	"preference_rate_limit": "preference.rate_limit",
	"preference_burst":      "preference.burst",

	// Events
	"events_retry_max_retries": "events.retry_max_retries",
	"events_close_timeout":     "events.close_timeout",

	// Security
	"cors_origins":       "security.cors_origins",
	"rate_limit_reqs":    "security.rate_limit_reqs",
	"rate_limit_window":  "security.rate_limit_window",
	"disable_rate_limit": "security.rate_limit_disabled",
}

// envTransformFunc maps environment variable names to koanf config paths.
// Unmapped variables return "" and are ignored, so unrelated environment
// (PATH, HOME) never leaks into the configuration.
//
// Examples:
//   - HTTP_PORT -> server.port
//   - RECOMMEND_SOLVER -> recommend.solver
//   - DUCKDB_PATH -> data.duckdb_path
func envTransformFunc(key string) string {
	return envMappings[strings.ToLower(key)]
}
