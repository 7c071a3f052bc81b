// Cinematch - Movie and Series Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cinematch

package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// API Metrics
	APIRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "api_requests_total",
			Help: "Total number of API requests",
		},
		[]string{"method", "endpoint", "status_code"},
	)

	APIRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "api_request_duration_seconds",
			Help:    "API request latency in seconds",
			Buckets: []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5},
		},
		[]string{"method", "endpoint"},
	)

	APIActiveRequests = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "api_active_requests",
			Help: "Current number of active API requests",
		},
	)

	// Recommendation Metrics
	RecommendRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "recommend_requests_total",
			Help: "Total number of recommendation requests by kind and serving path",
		},
		[]string{"kind", "source"}, // kind: "user", "similar"; source: "model", "popularity", "similarity", "cache"
	)

	RecommendLatency = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "recommend_latency_seconds",
			Help:    "Latency of recommendation scoring in seconds",
			Buckets: []float64{0.0005, 0.001, 0.0025, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25},
		},
		[]string{"kind"},
	)

	RecommendFilterExhausted = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "recommend_filter_exhausted_total",
			Help: "Requests where the category filter left fewer results than requested",
		},
	)

	TrainingDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "recommend_training_duration_seconds",
			Help:    "Duration of model training runs in seconds",
			Buckets: []float64{0.1, 0.5, 1, 5, 10, 30, 60, 300, 900, 1800},
		},
	)

	TrainingRuns = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "recommend_training_runs_total",
			Help: "Total number of training runs by result",
		},
		[]string{"result"}, // "success", "insufficient_data", "error", "rejected"
	)

	ModelVersion = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "recommend_model_version",
			Help: "Version of the model currently serving requests",
		},
	)

	ModelDimensions = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "recommend_model_dimensions",
			Help: "Shape of the serving model",
		},
		[]string{"dimension"}, // "users", "items", "rank", "nnz"
	)

	// Metadata Lookup Metrics
	MetadataLookups = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "metadata_lookups_total",
			Help: "Total number of item metadata lookups by result",
		},
		[]string{"result"}, // "hit", "miss", "unknown", "placeholder"
	)

	// Preference Extraction Metrics
	PreferenceExtractions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "preference_extractions_total",
			Help: "Total number of preference extractions by extractor and result",
		},
		[]string{"extractor", "result"}, // result: "success", "fallback"
	)

	// Event Metrics
	EventsPublished = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "events_published_total",
			Help: "Total number of events published by topic",
		},
		[]string{"topic"},
	)

	EventsHandled = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "events_handled_total",
			Help: "Total number of events handled by topic and result",
		},
		[]string{"topic", "result"},
	)

	// Circuit Breaker Metrics
	CircuitBreakerState = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "circuit_breaker_state",
			Help: "Circuit breaker state (0=closed, 1=half-open, 2=open)",
		},
		[]string{"name"},
	)

	CircuitBreakerRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "circuit_breaker_requests_total",
			Help: "Total number of requests through circuit breaker",
		},
		[]string{"name", "result"}, // result: "success", "failure", "rejected", "cancelled"
	)

	CircuitBreakerConsecutiveFailures = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "circuit_breaker_consecutive_failures",
			Help: "Current number of consecutive failures",
		},
		[]string{"name"},
	)

	CircuitBreakerTransitions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "circuit_breaker_state_transitions_total",
			Help: "Total number of circuit breaker state transitions",
		},
		[]string{"name", "from_state", "to_state"},
	)
)

// RecordAPIRequest records an API request metric
func RecordAPIRequest(method, endpoint, statusCode string, duration time.Duration) {
	APIRequestsTotal.WithLabelValues(method, endpoint, statusCode).Inc()
	APIRequestDuration.WithLabelValues(method, endpoint).Observe(duration.Seconds())
}

// RecordRecommendation records a served recommendation request
func RecordRecommendation(kind, source string, duration time.Duration) {
	RecommendRequests.WithLabelValues(kind, source).Inc()
	RecommendLatency.WithLabelValues(kind).Observe(duration.Seconds())
}

// RecordTraining records the outcome of a training run
func RecordTraining(result string, duration time.Duration) {
	TrainingRuns.WithLabelValues(result).Inc()
	if result == "success" {
		TrainingDuration.Observe(duration.Seconds())
	}
}

// RecordModel publishes the shape of a newly swapped model
func RecordModel(version, users, items, rank, nnz int) {
	ModelVersion.Set(float64(version))
	ModelDimensions.WithLabelValues("users").Set(float64(users))
	ModelDimensions.WithLabelValues("items").Set(float64(items))
	ModelDimensions.WithLabelValues("rank").Set(float64(rank))
	ModelDimensions.WithLabelValues("nnz").Set(float64(nnz))
}
