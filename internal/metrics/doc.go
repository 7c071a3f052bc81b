// Cinematch - Movie and Series Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cinematch

/*
Package metrics provides Prometheus metrics collection and export for observability.

All collectors are registered with the default registry through promauto at
package initialization and are exposed by the API on /metrics.

# Overview

The package provides metrics for:
  - HTTP request latency and throughput
  - Recommendation serving paths (model, popularity, similarity, cache)
  - Training runs and the shape of the serving model
  - Metadata lookups and circuit breaker state transitions
  - Preference extraction fallbacks and internal events

# Usage

	start := time.Now()
	// ... serve request ...
	metrics.RecordRecommendation("user", "model", time.Since(start))
*/
package metrics
