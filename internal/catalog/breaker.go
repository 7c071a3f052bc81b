// Cinematch - Movie and Series Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cinematch

package catalog

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"
	gobreaker "github.com/sony/gobreaker/v2"

	"github.com/tomtom215/cinematch/internal/metrics"
)

// errCallerDone marks a call abandoned because the caller's context ended.
// The store did not fail, so the breaker does not count it.
var errCallerDone = errors.New("caller context done")

// BreakerConfig configures a BreakerStore.
type BreakerConfig struct {
	// Name labels the breaker in logs and metrics.
	Name string

	// Timeout bounds each call to the wrapped store.
	Timeout time.Duration

	// MaxRequests is the number of trial calls allowed while half-open.
	MaxRequests uint32

	// Interval resets the failure counts while closed.
	Interval time.Duration

	// OpenTimeout is how long the breaker stays open before probing.
	OpenTimeout time.Duration

	// MinRequests is the sample size needed before the breaker may trip.
	MinRequests uint32

	// FailureRatio trips the breaker once reached.
	FailureRatio float64
}

// DefaultBreakerConfig returns the production breaker settings.
func DefaultBreakerConfig() BreakerConfig {
	return BreakerConfig{
		Name:         "metadata-store",
		Timeout:      2 * time.Second,
		MaxRequests:  3,
		Interval:     time.Minute,
		OpenTimeout:  2 * time.Minute,
		MinRequests:  10,
		FailureRatio: 0.6,
	}
}

// BreakerStore guards a Store with a per-call timeout and a circuit breaker.
// Every failure, including a rejected call, is reported as ErrUnavailable
// wrapped around the cause. A call whose own context is cancelled or expired
// fails too, but never counts toward tripping the breaker.
//
// The breaker runs on wall-clock time, so tests exercise tripping through
// request counts rather than waiting out OpenTimeout.
type BreakerStore struct {
	inner   Store
	cb      *gobreaker.CircuitBreaker[any]
	name    string
	timeout time.Duration
	logger  zerolog.Logger
}

// NewBreakerStore wraps inner.
//
//nolint:gocritic // logger passed by value is acceptable for zerolog
func NewBreakerStore(inner Store, cfg BreakerConfig, logger zerolog.Logger) *BreakerStore {
	def := DefaultBreakerConfig()
	if cfg.Name == "" {
		cfg.Name = def.Name
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = def.Timeout
	}
	if cfg.MinRequests == 0 {
		cfg.MinRequests = def.MinRequests
	}
	if cfg.FailureRatio <= 0 {
		cfg.FailureRatio = def.FailureRatio
	}

	bs := &BreakerStore{
		inner:   inner,
		name:    cfg.Name,
		timeout: cfg.Timeout,
		logger:  logger.With().Str("component", "catalog").Str("breaker", cfg.Name).Logger(),
	}

	metrics.CircuitBreakerState.WithLabelValues(cfg.Name).Set(0)
	metrics.CircuitBreakerConsecutiveFailures.WithLabelValues(cfg.Name).Set(0)

	bs.cb = gobreaker.NewCircuitBreaker[any](gobreaker.Settings{
		Name:        cfg.Name,
		MaxRequests: cfg.MaxRequests,
		Interval:    cfg.Interval,
		Timeout:     cfg.OpenTimeout,
		IsSuccessful: func(err error) bool {
			return err == nil || errors.Is(err, errCallerDone)
		},
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			if counts.Requests < cfg.MinRequests {
				return false
			}
			ratio := float64(counts.TotalFailures) / float64(counts.Requests)
			if ratio >= cfg.FailureRatio {
				bs.logger.Warn().
					Uint32("failures", counts.TotalFailures).
					Float64("failure_rate", ratio*100).
					Msg("opening circuit")
				return true
			}
			return false
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			fromStr, toStr := stateToString(from), stateToString(to)
			bs.logger.Info().Str("from", fromStr).Str("to", toStr).Msg("circuit state transition")

			metrics.CircuitBreakerState.WithLabelValues(name).Set(stateToFloat(to))
			metrics.CircuitBreakerTransitions.WithLabelValues(name, fromStr, toStr).Inc()
			if to == gobreaker.StateClosed {
				metrics.CircuitBreakerConsecutiveFailures.WithLabelValues(name).Set(0)
			}
		},
	})

	return bs
}

// State returns the current breaker state as "closed", "half-open" or "open".
func (bs *BreakerStore) State() string {
	return stateToString(bs.cb.State())
}

// Get implements Store.
func (bs *BreakerStore) Get(ctx context.Context, id string) (*Item, error) {
	res, err := bs.execute(ctx, func(ctx context.Context) (any, error) {
		return bs.inner.Get(ctx, id)
	})
	if err != nil {
		return nil, err
	}
	item, _ := res.(*Item)
	return item, nil
}

// Popular implements Store.
func (bs *BreakerStore) Popular(ctx context.Context) ([]*Item, error) {
	res, err := bs.execute(ctx, func(ctx context.Context) (any, error) {
		return bs.inner.Popular(ctx)
	})
	if err != nil {
		return nil, err
	}
	items, ok := res.([]*Item)
	if !ok && res != nil {
		return nil, fmt.Errorf("circuit breaker: unexpected result type %T", res)
	}
	return items, nil
}

func (bs *BreakerStore) execute(ctx context.Context, fn func(context.Context) (any, error)) (any, error) {
	if err := ctx.Err(); err != nil {
		metrics.CircuitBreakerRequests.WithLabelValues(bs.name, "cancelled").Inc()
		return nil, fmt.Errorf("%w: %w", ErrUnavailable, err)
	}

	result, err := bs.cb.Execute(func() (any, error) {
		callCtx, cancel := context.WithTimeout(ctx, bs.timeout)
		defer cancel()

		res, err := fn(callCtx)
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, fmt.Errorf("%w: %w", errCallerDone, ctxErr)
		}
		if err == nil && callCtx.Err() != nil {
			err = callCtx.Err()
		}
		return res, err
	})

	if err != nil {
		switch {
		case errors.Is(err, errCallerDone):
			metrics.CircuitBreakerRequests.WithLabelValues(bs.name, "cancelled").Inc()
		case errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests):
			metrics.CircuitBreakerRequests.WithLabelValues(bs.name, "rejected").Inc()
			bs.logger.Debug().Err(err).Msg("request rejected")
		default:
			metrics.CircuitBreakerRequests.WithLabelValues(bs.name, "failure").Inc()
			counts := bs.cb.Counts()
			metrics.CircuitBreakerConsecutiveFailures.WithLabelValues(bs.name).Set(float64(counts.ConsecutiveFailures))
		}
		return nil, fmt.Errorf("%w: %w", ErrUnavailable, err)
	}

	metrics.CircuitBreakerRequests.WithLabelValues(bs.name, "success").Inc()
	metrics.CircuitBreakerConsecutiveFailures.WithLabelValues(bs.name).Set(0)
	return result, nil
}

func stateToFloat(state gobreaker.State) float64 {
	switch state {
	case gobreaker.StateClosed:
		return 0
	case gobreaker.StateHalfOpen:
		return 1
	case gobreaker.StateOpen:
		return 2
	default:
		return -1
	}
}

func stateToString(state gobreaker.State) string {
	switch state {
	case gobreaker.StateClosed:
		return "closed"
	case gobreaker.StateHalfOpen:
		return "half-open"
	case gobreaker.StateOpen:
		return "open"
	default:
		return "unknown"
	}
}

var _ Store = (*BreakerStore)(nil)
