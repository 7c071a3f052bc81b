// Cinematch - Movie and Series Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cinematch

package algorithms

import (
	"context"
	"fmt"
	"math/rand/v2"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
)

// SVDConfig contains configuration for the randomized SVD solver.
type SVDConfig struct {
	// NumFactors is the requested rank before clamping.
	NumFactors int

	// PowerIterations is the number of subspace iterations applied to the
	// range sketch. More iterations sharpen the leading components.
	PowerIterations int

	// Oversamples is the number of extra sketch vectors beyond the rank.
	Oversamples int

	// Seed drives the Gaussian test matrix.
	Seed int64
}

// DefaultSVDConfig returns default SVD configuration.
func DefaultSVDConfig() SVDConfig {
	return SVDConfig{
		NumFactors:      200,
		PowerIterations: 5,
		Oversamples:     10,
		Seed:            42,
	}
}

// SVD computes a rank-K truncated singular value decomposition using the
// randomized range finder of Halko, Martinsson and Tropp (2011).
//
// The matrix X (U x I) is only touched through sparse products. A seeded
// Gaussian sketch is multiplied through X, orthonormalized, refined by power
// iterations, and projected to a small dense matrix B = Q'X whose exact SVD
// is taken with gonum. The item factors are the leading right singular
// vectors V_k and the user factors are the component scores X*V_k, so
// dot(users[u], items[i]) is the rank-K reconstruction of X[u][i].
type SVD struct {
	config SVDConfig
}

// NewSVD creates a new SVD solver with the given configuration.
func NewSVD(cfg SVDConfig) *SVD {
	if cfg.NumFactors <= 0 {
		cfg.NumFactors = 200
	}
	if cfg.PowerIterations < 0 {
		cfg.PowerIterations = 0
	}
	if cfg.Oversamples < 0 {
		cfg.Oversamples = 0
	}
	return &SVD{config: cfg}
}

// Name returns "svd".
func (s *SVD) Name() string { return "svd" }

// Fit factorizes m.
func (s *SVD) Fit(ctx context.Context, m Matrix) (*Factors, error) {
	numUsers, numItems := m.Dims()
	k, err := EffectiveRank(s.config.NumFactors, numUsers, numItems)
	if err != nil {
		return nil, err
	}
	l := min(k+s.config.Oversamples, numUsers, numItems)

	rng := rand.New(rand.NewPCG(uint64(s.config.Seed), uint64(s.config.Seed)^0x9e3779b97f4a7c15)) //nolint:gosec // deterministic seeding is required

	omega := make([][]float64, l)
	for c := range omega {
		omega[c] = make([]float64, numItems)
		for i := range omega[c] {
			omega[c][i] = rng.NormFloat64()
		}
	}

	q := mulX(m, omega, numUsers)
	orthonormalize(q)

	for it := 0; it < s.config.PowerIterations; it++ {
		if ContextCancelled(ctx) {
			return nil, ctx.Err()
		}
		z := mulXT(m, q, numItems)
		orthonormalize(z)
		q = mulX(m, z, numUsers)
		orthonormalize(q)
	}

	if ContextCancelled(ctx) {
		return nil, ctx.Err()
	}

	// Rows of B = Q'X are the columns of X'Q.
	bt := mulXT(m, q, numItems)
	b := mat.NewDense(l, numItems, nil)
	for c := range bt {
		b.SetRow(c, bt[c])
	}

	var svd mat.SVD
	if ok := svd.Factorize(b, mat.SVDThin); !ok {
		return nil, fmt.Errorf("svd factorization did not converge")
	}
	var v mat.Dense
	svd.VTo(&v)

	items := newMatrix(numItems, k)
	for i := 0; i < numItems; i++ {
		for f := 0; f < k; f++ {
			items[i][f] = v.At(i, f)
		}
	}

	users := newMatrix(numUsers, k)
	for u := 0; u < numUsers; u++ {
		cols, vals := m.Row(u)
		for n, i := range cols {
			floats.AddScaled(users[u], vals[n], items[i])
		}
	}

	return &Factors{Users: users, Items: items, K: k, Solver: s.Name()}, nil
}

// mulX returns X*src where src holds column vectors of length I; the
// result holds column vectors of length U.
func mulX(m Matrix, src [][]float64, numUsers int) [][]float64 {
	out := make([][]float64, len(src))
	for c := range src {
		out[c] = make([]float64, numUsers)
		for u := 0; u < numUsers; u++ {
			cols, vals := m.Row(u)
			var sum float64
			for n, i := range cols {
				sum += vals[n] * src[c][i]
			}
			out[c][u] = sum
		}
	}
	return out
}

// mulXT returns X'*src where src holds column vectors of length U; the
// result holds column vectors of length I.
func mulXT(m Matrix, src [][]float64, numItems int) [][]float64 {
	out := make([][]float64, len(src))
	for c := range src {
		out[c] = make([]float64, numItems)
		for i := 0; i < numItems; i++ {
			rows, vals := m.Col(i)
			var sum float64
			for n, u := range rows {
				sum += vals[n] * src[c][u]
			}
			out[c][i] = sum
		}
	}
	return out
}

// orthonormalize applies modified Gram-Schmidt twice to the vectors in
// place. Vectors that collapse to numerical zero are zeroed, which keeps
// the basis size fixed for rank-deficient input.
func orthonormalize(vs [][]float64) {
	const tol = 1e-10
	for j := range vs {
		orig := floats.Norm(vs[j], 2)
		for pass := 0; pass < 2; pass++ {
			for p := 0; p < j; p++ {
				proj := floats.Dot(vs[p], vs[j])
				if proj != 0 {
					floats.AddScaled(vs[j], -proj, vs[p])
				}
			}
		}
		norm := floats.Norm(vs[j], 2)
		if orig == 0 || norm <= tol*orig {
			for n := range vs[j] {
				vs[j][n] = 0
			}
			continue
		}
		floats.Scale(1/norm, vs[j])
	}
}

var _ Factorizer = (*SVD)(nil)
