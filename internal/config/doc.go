// Cinematch - Movie and Series Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cinematch

/*
Package config provides centralized configuration management for Cinematch.

Configuration is loaded with Koanf v2 from three layers, later layers
overriding earlier ones:

 1. Built-in defaults (defaultConfig)
 2. An optional YAML file: CONFIG_PATH, else config.yaml, config.yml or
    /etc/cinematch/config.yaml
 3. Environment variables listed in envMappings

Unmapped environment variables are ignored.

# Configuration Structure

  - ServerConfig: HTTP bind address, port and timeouts
  - LoggingConfig: zerolog level, format and caller
  - DataConfig: CSV paths and the DuckDB database used to read them
  - RecommendConfig: factorization, serving limits, training schedule, cache
  - ModelStoreConfig: model persistence backend (file, badger or none)
  - MetadataConfig: circuit breaker and cache around catalog lookups
  - PreferenceConfig: free-text preference extractor (pattern or remote)
  - EventsConfig: in-process event router retries
  - SecurityConfig: CORS origins and per-IP rate limiting

# Environment Variables

Server:
  - HTTP_HOST: Bind address (default: 0.0.0.0)
  - HTTP_PORT: Listen port (default: 8000)
  - HTTP_TIMEOUT: Request timeout (default: 30s)

Dataset:
  - CATALOG_PATH: Title metadata CSV (default: data/titles.csv)
  - STREAMING_PATH: Platform availability CSV (default: data/streaming.csv)
  - INTERACTIONS_PATH: Ratings CSV (default: data/ratings.csv)
  - DUCKDB_PATH: DuckDB database (default: :memory:)

Recommendation engine:
  - RECOMMEND_FACTORS: Latent factors (default: 200)
  - RECOMMEND_ALPHA: Confidence scaling (default: 40)
  - RECOMMEND_MIN_INTERACTIONS: Row filter threshold (default: 3)
  - RECOMMEND_SOLVER: svd or als (default: svd)
  - RECOMMEND_DEFAULT_N / RECOMMEND_MAX_N: Result limits (default: 10 / 100)
  - RECOMMEND_TRAIN_ON_STARTUP: Train when the server starts (default: true)
  - RECOMMEND_TRAIN_INTERVAL: Periodic retraining, 0 disables (default: 0)

Model store:
  - MODEL_STORE_BACKEND: file, badger or none (default: file)
  - MODEL_STORE_PATH: Directory for model versions (default: data/models)

Preference extraction:
  - PREFERENCE_MODE: pattern or remote (default: pattern)
  - PREFERENCE_ENDPOINT: Remote extractor URL (required for remote)
  - PREFERENCE_API_KEY: Bearer token for the remote extractor

Security:
  - CORS_ORIGINS: Comma-separated allowed origins (default: *)
  - RATE_LIMIT_REQS / RATE_LIMIT_WINDOW: Per-IP limit (default: 100 per 1m)
  - DISABLE_RATE_LIMIT: Turn rate limiting off (default: false)

# Usage

	cfg, err := config.Load()
	if err != nil {
	    log.Fatal().Err(err).Msg("Failed to load configuration")
	}
	engine, err := recommend.NewEngine(cfg.EngineConfig(), logging.Logger())
*/
package config
