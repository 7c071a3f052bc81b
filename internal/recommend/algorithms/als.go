// Cinematch - Movie and Series Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cinematch

package algorithms

import (
	"context"
	"math"
	"math/rand/v2"
	"sync"

	"gonum.org/v1/gonum/mat"
)

// ALSConfig contains configuration for the ALS algorithm.
type ALSConfig struct {
	// NumFactors is the requested rank before clamping.
	// Typical range: 50-200.
	NumFactors int

	// NumIterations is the number of ALS iterations to run.
	// Typical range: 10-50.
	NumIterations int

	// Regularization is the L2 regularization parameter.
	// Typical range: 0.01-0.1.
	Regularization float64

	// NumWorkers is the number of parallel workers for training.
	// If <= 0, defaults to 4.
	NumWorkers int

	// Seed drives factor initialization.
	Seed int64
}

// DefaultALSConfig returns default ALS configuration.
func DefaultALSConfig() ALSConfig {
	return ALSConfig{
		NumFactors:     200,
		NumIterations:  50,
		Regularization: 0.01,
		NumWorkers:     4,
		Seed:           42,
	}
}

// ALS implements the Alternating Least Squares algorithm for implicit feedback.
// Reference: "Collaborative Filtering for Implicit Feedback Datasets" (Hu, Koren, Volinsky, 2008)
//
// The matrix entries are used directly as confidences c_ui, and every stored
// entry is a positive preference p_ui = 1. The objective minimizes:
//
//	sum_{u,i} c_ui * (p_ui - x_u' * y_i)^2 + lambda * (||x_u||^2 + ||y_i||^2)
//
// where missing entries carry c_ui = 1 and p_ui = 0.
type ALS struct {
	config ALSConfig
}

// NewALS creates a new ALS solver with the given configuration.
func NewALS(cfg ALSConfig) *ALS {
	if cfg.NumFactors <= 0 {
		cfg.NumFactors = 200
	}
	if cfg.NumIterations <= 0 {
		cfg.NumIterations = 50
	}
	if cfg.Regularization < 0 {
		cfg.Regularization = 0.01
	}
	if cfg.NumWorkers <= 0 {
		cfg.NumWorkers = 4
	}
	return &ALS{config: cfg}
}

// Name returns "als".
func (a *ALS) Name() string { return "als" }

// Fit trains user and item factors by alternating optimization.
func (a *ALS) Fit(ctx context.Context, m Matrix) (*Factors, error) {
	if ContextCancelled(ctx) {
		return nil, ctx.Err()
	}

	numUsers, numItems := m.Dims()
	numFactors, err := EffectiveRank(a.config.NumFactors, numUsers, numItems)
	if err != nil {
		return nil, err
	}

	rng := rand.New(rand.NewPCG(uint64(a.config.Seed), uint64(a.config.Seed)^0x9e3779b97f4a7c15)) //nolint:gosec // deterministic seeding is required

	x := newMatrix(numUsers, numFactors)
	y := newMatrix(numItems, numFactors)
	for u := range x {
		for f := range x[u] {
			x[u][f] = 0.1 * (rng.Float64() - 0.5)
		}
	}
	for i := range y {
		for f := range y[i] {
			y[i][f] = 0.1 * (rng.Float64() - 0.5)
		}
	}

	lambda := a.config.Regularization
	for iter := 0; iter < a.config.NumIterations; iter++ {
		if ContextCancelled(ctx) {
			return nil, ctx.Err()
		}

		// Fix Y, solve for X.
		a.halfStep(x, y, numFactors, lambda, m.Row)

		if ContextCancelled(ctx) {
			return nil, ctx.Err()
		}

		// Fix X, solve for Y.
		a.halfStep(y, x, numFactors, lambda, m.Col)
	}

	return &Factors{Users: x, Items: y, K: numFactors, Solver: a.Name()}, nil
}

// halfStep recomputes every row of target while fixed is held constant.
// entries returns the sparse (index, confidence) list for a target row.
func (a *ALS) halfStep(target, fixed [][]float64, numFactors int, lambda float64, entries func(int) ([]int, []float64)) {
	gram := gramMatrix(fixed, numFactors)

	var wg sync.WaitGroup
	chunkSize := (len(target) + a.config.NumWorkers - 1) / a.config.NumWorkers

	for w := 0; w < a.config.NumWorkers; w++ {
		start := w * chunkSize
		end := min(start+chunkSize, len(target))
		if start >= end {
			break
		}

		wg.Add(1)
		go func(lo, hi int) {
			defer wg.Done()
			for r := lo; r < hi; r++ {
				idx, conf := entries(r)
				target[r] = solveRow(gram, fixed, idx, conf, numFactors, lambda)
			}
		}(start, end)
	}

	wg.Wait()
}

// gramMatrix returns F'F for a row-major factor matrix F.
func gramMatrix(f [][]float64, numFactors int) [][]float64 {
	g := newMatrix(numFactors, numFactors)
	for _, row := range f {
		for f1 := 0; f1 < numFactors; f1++ {
			for f2 := f1; f2 < numFactors; f2++ {
				g[f1][f2] += row[f1] * row[f2]
			}
		}
	}
	for f1 := 0; f1 < numFactors; f1++ {
		for f2 := 0; f2 < f1; f2++ {
			g[f1][f2] = g[f2][f1]
		}
	}
	return g
}

// solveRow solves (F'F + F' (C - I) F + lambda*I) x = F' C p for one row.
//
//nolint:gocritic // A follows standard linear algebra notation
func solveRow(gram, fixed [][]float64, idx []int, conf []float64, numFactors int, lambda float64) []float64 {
	A := mat.NewSymDense(numFactors, nil)
	for f1 := 0; f1 < numFactors; f1++ {
		for f2 := f1; f2 < numFactors; f2++ {
			v := gram[f1][f2]
			if f1 == f2 {
				v += lambda
			}
			A.SetSym(f1, f2, v)
		}
	}

	b := make([]float64, numFactors)
	for n, j := range idx {
		vec := fixed[j]
		c := conf[n]
		cMinus1 := c - 1.0
		for f1 := 0; f1 < numFactors; f1++ {
			for f2 := f1; f2 < numFactors; f2++ {
				A.SetSym(f1, f2, A.At(f1, f2)+cMinus1*vec[f1]*vec[f2])
			}
			b[f1] += c * vec[f1]
		}
	}

	var chol mat.Cholesky
	if chol.Factorize(A) {
		var x mat.VecDense
		if err := chol.SolveVecTo(&x, mat.NewVecDense(numFactors, b)); err == nil {
			return x.RawVector().Data
		}
	}
	return solveLinearSystem(A, b)
}

// solveLinearSystem solves A*x = b with a guarded Cholesky decomposition
// that clamps non-positive pivots. It is the fallback when A is not
// numerically positive definite.
//
//nolint:gocritic // A, L follow standard linear algebra notation
func solveLinearSystem(A mat.Symmetric, b []float64) []float64 {
	n := len(b)

	L := newMatrix(n, n)
	for i := 0; i < n; i++ {
		for j := 0; j <= i; j++ {
			sum := A.At(i, j)
			for k := 0; k < j; k++ {
				sum -= L[i][k] * L[j][k]
			}

			if i == j {
				if sum <= 0 {
					sum = 1e-10
				}
				L[i][j] = math.Sqrt(sum)
			} else if L[j][j] != 0 {
				L[i][j] = sum / L[j][j]
			}
		}
	}

	// Forward substitution: L z = b.
	z := make([]float64, n)
	for i := 0; i < n; i++ {
		sum := b[i]
		for j := 0; j < i; j++ {
			sum -= L[i][j] * z[j]
		}
		if L[i][i] != 0 {
			z[i] = sum / L[i][i]
		}
	}

	// Back substitution: L' x = z.
	x := make([]float64, n)
	for i := n - 1; i >= 0; i-- {
		sum := z[i]
		for j := i + 1; j < n; j++ {
			sum -= L[j][i] * x[j]
		}
		if L[i][i] != 0 {
			x[i] = sum / L[i][i]
		}
	}

	return x
}

var _ Factorizer = (*ALS)(nil)
