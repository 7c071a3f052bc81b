// Cinematch - Movie and Series Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cinematch

/*
Package main is the entry point for the Cinematch recommendation server.

Cinematch trains an implicit-feedback matrix factorization model on user
ratings and serves personalized recommendations, similar-title lookups and
free-text queries over HTTP.

# Application Architecture

	cinematch
	├── data-layer
	│   └── event bus (watermill gochannel router)
	├── messaging-layer
	│   └── training scheduler (startup and interval training)
	└── api-layer
	    └── HTTP server (chi)

Component initialization order:

 1. Configuration: koanf v2 defaults, config.yaml, environment
 2. Logging: zerolog, JSON or console
 3. Dataset: DuckDB reads the catalog, streaming and ratings CSV files
 4. Catalog: in-memory store behind a circuit breaker and TTL cache
 5. Engine: factorization engine, model store restore (file or badger)
 6. Preferences: pattern rules or a remote extraction service
 7. Event bus: train requests from the API are handled asynchronously
 8. Supervisor tree and HTTP server

# Configuration

See package config for every key. Common overrides:

	HTTP_PORT=8000
	INTERACTIONS_PATH=data/ratings.csv
	RECOMMEND_SOLVER=als
	MODEL_STORE_BACKEND=badger

# Signal Handling

SIGINT and SIGTERM cancel the root context. The HTTP server drains for up
to SHUTDOWN_TIMEOUT, an in-flight training run is cancelled and the model
store is closed.
*/
package main
