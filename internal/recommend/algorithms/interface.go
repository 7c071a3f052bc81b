// Cinematch - Movie and Series Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cinematch

package algorithms

import (
	"context"
	"errors"
	"fmt"

	"gonum.org/v1/gonum/floats"
)

// ErrInsufficientRank is returned when the matrix cannot support a
// factorization of rank one or more.
var ErrInsufficientRank = errors.New("matrix rank too small for factorization")

// Matrix is the read-only sparse view that factorizers train on.
// Row and Col return index and value slices that must not be modified.
type Matrix interface {
	Dims() (users, items int)
	Row(u int) (cols []int, vals []float64)
	Col(i int) (rows []int, vals []float64)
}

// Factors holds the trained latent factor matrices.
type Factors struct {
	// Users is the U x K user factor matrix.
	Users [][]float64

	// Items is the I x K item factor matrix.
	Items [][]float64

	// K is the latent dimension shared by Users and Items.
	K int

	// Solver is the name of the algorithm that produced the factors.
	Solver string
}

// Dims returns (U, I, K).
func (f *Factors) Dims() (users, items, k int) {
	return len(f.Users), len(f.Items), f.K
}

// Factorizer computes a low-rank decomposition of an interaction matrix.
// Implementations must be deterministic for a fixed configuration and input.
type Factorizer interface {
	// Name returns the solver identifier.
	Name() string

	// Fit trains on m and returns new factors. It never mutates m.
	Fit(ctx context.Context, m Matrix) (*Factors, error)
}

// EffectiveRank returns min(factors, min(users, items) - 1), or
// ErrInsufficientRank when that is below one.
func EffectiveRank(factors, users, items int) (int, error) {
	limit := min(users, items) - 1
	k := min(factors, limit)
	if k < 1 {
		return 0, fmt.Errorf("%w: factors=%d users=%d items=%d", ErrInsufficientRank, factors, users, items)
	}
	return k, nil
}

// Dot returns the inner product of two equal-length vectors.
func Dot(a, b []float64) float64 {
	return floats.Dot(a, b)
}

// ContextCancelled checks if the context has been canceled.
func ContextCancelled(ctx context.Context) bool {
	select {
	case <-ctx.Done():
		return true
	default:
		return false
	}
}

// newMatrix allocates a rows x cols matrix backed by one slice.
func newMatrix(rows, cols int) [][]float64 {
	backing := make([]float64, rows*cols)
	m := make([][]float64, rows)
	for r := range m {
		m[r] = backing[r*cols : (r+1)*cols : (r+1)*cols]
	}
	return m
}
