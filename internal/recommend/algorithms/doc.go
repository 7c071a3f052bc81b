// Cinematch - Movie and Series Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cinematch

// Package algorithms implements the low-rank factorizers behind the
// recommendation engine.
//
// Each solver implements Factorizer: it reads a sparse confidence matrix
// through the Matrix interface and returns dense user and item factors of a
// shared rank K. K is clamped by EffectiveRank to min(factors, min(U, I) - 1)
// so no solver can produce factors of mismatched width.
//
// # Solvers
//
//   - SVD: randomized truncated SVD (range finder plus power iterations).
//     User factors are component scores and item factors are component
//     loadings.
//   - ALS: implicit-feedback Alternating Least Squares with a Cholesky
//     solve per row, parallelized across a fixed worker pool.
//
// # Determinism
//
// Both solvers draw from a math/rand/v2 PCG source seeded by the configured
// seed. Worker goroutines in ALS write disjoint rows, so results do not
// depend on scheduling.
//
// # Thread Safety
//
// Solvers hold only configuration. Fit may be called concurrently; the
// returned Factors are owned by the caller.
package algorithms
