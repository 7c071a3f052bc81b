// Cinematch - Movie and Series Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cinematch

package recommend

import (
	"fmt"
	"time"
)

// Solver names accepted by Config.Solver.
const (
	SolverSVD = "svd"
	SolverALS = "als"
)

// Config contains all configuration for the recommendation engine.
type Config struct {
	// Factors is the requested latent rank. The trained rank is capped at
	// min(Factors, min(users, items) - 1).
	// Default: 200.
	Factors int `json:"factors"`

	// Alpha amplifies ratings into confidence weights.
	// Default: 40.0.
	Alpha float64 `json:"alpha"`

	// MinInteractions is the per-user and per-item row threshold applied
	// before indexing.
	// Default: 3.
	MinInteractions int `json:"min_interactions"`

	// TestSize is the fraction of each user's history held out by TemporalSplit.
	// Default: 0.2.
	TestSize float64 `json:"test_size"`

	// RandomState seeds every stochastic step of training.
	// Default: 42.
	RandomState int64 `json:"random_state"`

	// Solver selects the factorization algorithm ("svd" or "als").
	// Default: "svd".
	Solver string `json:"solver"`

	// SVD contains parameters for the randomized truncated SVD solver.
	SVD SVDConfig `json:"svd"`

	// ALS contains parameters for the implicit ALS solver.
	ALS ALSConfig `json:"als"`

	// OverFetchFactor multiplies n when a category filter is active, so
	// that filter attrition still leaves enough candidates.
	// Default: 3.
	OverFetchFactor int `json:"over_fetch_factor"`

	// Training contains training parameters.
	Training TrainingConfig `json:"training"`

	// Limits contains operational limits.
	Limits LimitsConfig `json:"limits"`

	// Cache contains response caching parameters.
	Cache CacheConfig `json:"cache"`
}

// SVDConfig contains parameters for the randomized SVD solver.
type SVDConfig struct {
	// PowerIterations sharpens the range sketch.
	// Default: 5.
	PowerIterations int `json:"power_iterations"`

	// Oversamples is the number of extra sketch columns beyond the rank.
	// Default: 10.
	Oversamples int `json:"oversamples"`
}

// ALSConfig contains parameters for the ALS solver.
type ALSConfig struct {
	// Iterations is the number of alternating rounds.
	// Default: 50.
	Iterations int `json:"iterations"`

	// Regularization is the L2 penalty.
	// Default: 0.01.
	Regularization float64 `json:"regularization"`

	// NumWorkers is the number of goroutines per half-step.
	// Default: 4.
	NumWorkers int `json:"num_workers"`
}

// TrainingConfig contains training parameters.
type TrainingConfig struct {
	// MinInteractions is the minimum number of rows that must survive
	// filtering for training to proceed.
	// Default: 1.
	MinInteractions int `json:"min_interactions"`

	// Timeout bounds a single training run.
	// Default: 30m.
	Timeout time.Duration `json:"timeout"`
}

// LimitsConfig contains operational limits.
type LimitsConfig struct {
	// DefaultN is used when a request does not specify n.
	// Default: 10.
	DefaultN int `json:"default_n"`

	// MaxN caps n for a single request.
	// Default: 100.
	MaxN int `json:"max_n"`
}

// CacheConfig contains response caching parameters.
type CacheConfig struct {
	// Enabled turns the response cache on.
	Enabled bool `json:"enabled"`

	// TTL is the cache entry time-to-live.
	// Default: 5m.
	TTL time.Duration `json:"ttl"`
}

// DefaultConfig returns a Config with production defaults.
func DefaultConfig() *Config {
	return &Config{
		Factors:         200,
		Alpha:           40.0,
		MinInteractions: 3,
		TestSize:        0.2,
		RandomState:     42,
		Solver:          SolverSVD,
		SVD: SVDConfig{
			PowerIterations: 5,
			Oversamples:     10,
		},
		ALS: ALSConfig{
			Iterations:     50,
			Regularization: 0.01,
			NumWorkers:     4,
		},
		OverFetchFactor: 3,
		Training: TrainingConfig{
			MinInteractions: 1,
			Timeout:         30 * time.Minute,
		},
		Limits: LimitsConfig{
			DefaultN: 10,
			MaxN:     100,
		},
		Cache: CacheConfig{
			Enabled: true,
			TTL:     5 * time.Minute,
		},
	}
}

// Validate checks the configuration for errors.
//
//nolint:gocyclo // validation needs to check many fields
func (c *Config) Validate() error {
	if c.Factors < 1 {
		return fmt.Errorf("factors must be positive, got %d", c.Factors)
	}
	if c.Alpha <= 0 {
		return fmt.Errorf("alpha must be positive, got %f", c.Alpha)
	}
	if c.MinInteractions < 1 {
		return fmt.Errorf("min_interactions must be at least 1, got %d", c.MinInteractions)
	}
	if c.TestSize <= 0 || c.TestSize >= 1 {
		return fmt.Errorf("test_size must be in (0, 1), got %f", c.TestSize)
	}
	switch c.Solver {
	case SolverSVD, SolverALS:
	default:
		return fmt.Errorf("solver must be %q or %q, got %q", SolverSVD, SolverALS, c.Solver)
	}
	if c.SVD.PowerIterations < 0 {
		return fmt.Errorf("svd.power_iterations must be non-negative, got %d", c.SVD.PowerIterations)
	}
	if c.SVD.Oversamples < 0 {
		return fmt.Errorf("svd.oversamples must be non-negative, got %d", c.SVD.Oversamples)
	}
	if c.ALS.Iterations < 1 {
		return fmt.Errorf("als.iterations must be positive, got %d", c.ALS.Iterations)
	}
	if c.ALS.Regularization < 0 {
		return fmt.Errorf("als.regularization must be non-negative, got %f", c.ALS.Regularization)
	}
	if c.OverFetchFactor < 1 {
		return fmt.Errorf("over_fetch_factor must be at least 1, got %d", c.OverFetchFactor)
	}
	if c.Training.MinInteractions < 1 {
		return fmt.Errorf("training.min_interactions must be at least 1, got %d", c.Training.MinInteractions)
	}
	if c.Training.Timeout <= 0 {
		return fmt.Errorf("training.timeout must be positive, got %v", c.Training.Timeout)
	}
	if c.Limits.DefaultN < 1 {
		return fmt.Errorf("limits.default_n must be positive, got %d", c.Limits.DefaultN)
	}
	if c.Limits.MaxN < c.Limits.DefaultN {
		return fmt.Errorf("limits.max_n must be >= limits.default_n, got %d < %d", c.Limits.MaxN, c.Limits.DefaultN)
	}
	return nil
}

// Clone returns a deep copy of the configuration.
func (c *Config) Clone() *Config {
	// All nested structs contain only value types.
	clone := *c
	return &clone
}
