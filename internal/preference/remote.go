// Cinematch - Movie and Series Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cinematch

package preference

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/goccy/go-json"
	"github.com/rs/zerolog"
	gobreaker "github.com/sony/gobreaker/v2"
	"golang.org/x/time/rate"

	"github.com/tomtom215/cinematch/internal/metrics"
)

// ErrRateLimited is returned when the outbound limiter has no tokens.
var ErrRateLimited = errors.New("preference service rate limited")

// maxResponseBytes caps the body read from the remote service.
const maxResponseBytes = 64 << 10

const extractionPrompt = `Extract movie preferences from the user query. Return a JSON object with
the fields genres, exclude_genres, mood, min_rating (0-10), year_from, year_to,
language and keywords. Only include fields that are clearly mentioned.`

// RemoteConfig configures a Remote extractor.
type RemoteConfig struct {
	// Endpoint receives POST {"prompt", "query"} and answers with a
	// Preferences JSON object.
	Endpoint string

	// APIKey is sent as a bearer token when set.
	APIKey string

	// Timeout bounds a single call.
	Timeout time.Duration

	// RateLimit is the sustained outbound request rate per second.
	RateLimit float64

	// Burst is the limiter bucket size.
	Burst int

	// FailureThreshold is the number of consecutive failures that opens
	// the breaker.
	FailureThreshold uint32

	// OpenTimeout is how long the breaker stays open.
	OpenTimeout time.Duration
}

// DefaultRemoteConfig returns remote settings without an endpoint.
func DefaultRemoteConfig() RemoteConfig {
	return RemoteConfig{
		Timeout:          5 * time.Second,
		RateLimit:        2,
		Burst:            5,
		FailureThreshold: 5,
		OpenTimeout:      time.Minute,
	}
}

type remoteRequest struct {
	Prompt string `json:"prompt"`
	Query  string `json:"query"`
}

// Remote asks an external language service to extract preferences. Any
// failure (rate limit, open breaker, transport, status or decode error)
// falls back to the pattern extractor.
type Remote struct {
	cfg      RemoteConfig
	client   *http.Client
	limiter  *rate.Limiter
	cb       *gobreaker.CircuitBreaker[Preferences]
	fallback *Pattern
	logger   zerolog.Logger
}

// NewRemote creates a remote extractor.
//
//nolint:gocritic // logger passed by value is acceptable for zerolog
func NewRemote(cfg RemoteConfig, logger zerolog.Logger) *Remote {
	def := DefaultRemoteConfig()
	if cfg.Timeout <= 0 {
		cfg.Timeout = def.Timeout
	}
	if cfg.RateLimit <= 0 {
		cfg.RateLimit = def.RateLimit
	}
	if cfg.Burst <= 0 {
		cfg.Burst = def.Burst
	}
	if cfg.FailureThreshold == 0 {
		cfg.FailureThreshold = def.FailureThreshold
	}
	if cfg.OpenTimeout <= 0 {
		cfg.OpenTimeout = def.OpenTimeout
	}

	r := &Remote{
		cfg:      cfg,
		client:   &http.Client{Timeout: cfg.Timeout},
		limiter:  rate.NewLimiter(rate.Limit(cfg.RateLimit), cfg.Burst),
		fallback: NewPattern(),
		logger:   logger.With().Str("component", "preference").Logger(),
	}

	const breakerName = "preference-remote"
	metrics.CircuitBreakerState.WithLabelValues(breakerName).Set(0)
	r.cb = gobreaker.NewCircuitBreaker[Preferences](gobreaker.Settings{
		Name:        breakerName,
		MaxRequests: 1,
		Timeout:     cfg.OpenTimeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= cfg.FailureThreshold
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			r.logger.Warn().Str("from", from.String()).Str("to", to.String()).Msg("circuit state transition")
			metrics.CircuitBreakerTransitions.WithLabelValues(name, from.String(), to.String()).Inc()
			switch to {
			case gobreaker.StateOpen:
				metrics.CircuitBreakerState.WithLabelValues(name).Set(2)
			case gobreaker.StateHalfOpen:
				metrics.CircuitBreakerState.WithLabelValues(name).Set(1)
			default:
				metrics.CircuitBreakerState.WithLabelValues(name).Set(0)
			}
		},
	})
	return r
}

// Name returns "remote".
func (r *Remote) Name() string { return "remote" }

// Extract implements Extractor.
func (r *Remote) Extract(ctx context.Context, query string) Preferences {
	prefs, err := r.fetch(ctx, query)
	if err == nil {
		metrics.PreferenceExtractions.WithLabelValues(r.Name(), "success").Inc()
		return prefs
	}

	metrics.PreferenceExtractions.WithLabelValues(r.Name(), "fallback").Inc()
	r.logger.Warn().Err(err).Msg("remote extraction failed, using pattern rules")
	return r.fallback.Extract(ctx, query)
}

// fetch performs one guarded remote call.
func (r *Remote) fetch(ctx context.Context, query string) (Preferences, error) {
	if !r.limiter.Allow() {
		return Preferences{}, ErrRateLimited
	}
	return r.cb.Execute(func() (Preferences, error) {
		return r.call(ctx, query)
	})
}

func (r *Remote) call(ctx context.Context, query string) (Preferences, error) {
	body, err := json.Marshal(remoteRequest{Prompt: extractionPrompt, Query: query})
	if err != nil {
		return Preferences{}, fmt.Errorf("encode request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, r.cfg.Endpoint, bytes.NewReader(body))
	if err != nil {
		return Preferences{}, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	if r.cfg.APIKey != "" {
		req.Header.Set("Authorization", "Bearer "+r.cfg.APIKey)
	}

	resp, err := r.client.Do(req)
	if err != nil {
		return Preferences{}, fmt.Errorf("request failed: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return Preferences{}, fmt.Errorf("unexpected status %d", resp.StatusCode)
	}

	var prefs Preferences
	if err := json.NewDecoder(io.LimitReader(resp.Body, maxResponseBytes)).Decode(&prefs); err != nil {
		return Preferences{}, fmt.Errorf("decode response: %w", err)
	}
	if prefs.YearFrom > prefs.YearTo || (prefs.YearFrom == 0) != (prefs.YearTo == 0) {
		prefs.YearFrom, prefs.YearTo = 0, 0
	}
	return prefs, nil
}

// State returns the breaker state.
func (r *Remote) State() gobreaker.State {
	return r.cb.State()
}

// Config selects and configures an extractor.
type Config struct {
	// Mode is "pattern" or "remote".
	Mode   string
	Remote RemoteConfig
}

// New returns the configured extractor. Remote mode without an endpoint
// degrades to the pattern extractor.
//
//nolint:gocritic // logger passed by value is acceptable for zerolog
func New(cfg Config, logger zerolog.Logger) Extractor {
	if cfg.Mode == "remote" && cfg.Remote.Endpoint != "" {
		return NewRemote(cfg.Remote, logger)
	}
	if cfg.Mode == "remote" {
		logger.Warn().Msg("remote preference extraction has no endpoint, using pattern rules")
	}
	return NewPattern()
}

var _ Extractor = (*Remote)(nil)
