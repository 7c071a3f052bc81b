// Cinematch - Movie and Series Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cinematch

package recommend

import (
	"math"
	"sort"

	"github.com/tomtom215/cinematch/internal/recommend/algorithms"
)

// Confidence converts a rating into a confidence weight.
//
// When every rating lies in [0, 1] (maxRating <= 1) the transform is linear,
// 1 + alpha*r. Otherwise it is log-dampened against the rating ceiling,
// 1 + alpha*log(1 + r/maxRating). Negative ratings are treated as zero so the
// weight never drops below 1.
func Confidence(rating, maxRating, alpha float64) float64 {
	if rating < 0 {
		rating = 0
	}
	if maxRating <= 1 {
		return 1 + alpha*rating
	}
	return 1 + alpha*math.Log1p(rating/maxRating)
}

type pairKey struct {
	user string
	item string
}

// DedupeInteractions keeps one row per (user, item) pair. The row keeps the
// position of the pair's first occurrence and the values of its last one.
//
//nolint:gocritic // rangeValCopy: Interaction is small
func DedupeInteractions(rows []Interaction) []Interaction {
	pos := make(map[pairKey]int, len(rows))
	out := make([]Interaction, 0, len(rows))
	for _, r := range rows {
		k := pairKey{r.UserID, r.ItemID}
		if i, ok := pos[k]; ok {
			out[i] = r
			continue
		}
		pos[k] = len(out)
		out = append(out, r)
	}
	return out
}

// InteractionMatrix is a sparse U x I matrix of confidence weights in
// compressed row form, with a compressed column view for item-side access.
// Columns within a row (and rows within a column) are sorted ascending.
type InteractionMatrix struct {
	users int
	items int

	rowPtr []int
	colIdx []int
	rowVal []float64

	colPtr []int
	rowIdx []int
	colVal []float64
}

type matrixEntry struct {
	u, i int
	w    float64
}

// BuildMatrix produces the confidence matrix for rows under ids. Duplicate
// pairs are resolved last-write-wins and rows with unmapped ids are skipped.
// The confidence scale is the maximum rating over every mapped row, including
// duplicates that lose. The shape is always (ids.NumUsers(), ids.NumItems()).
//
//nolint:gocritic // rangeValCopy: Interaction is small
func BuildMatrix(rows []Interaction, ids *IdentityMap, alpha float64) *InteractionMatrix {
	maxRating := math.Inf(-1)
	for _, r := range rows {
		if ids.Has(r.UserID, r.ItemID) && r.Rating > maxRating {
			maxRating = r.Rating
		}
	}

	rows = DedupeInteractions(rows)
	entries := make([]matrixEntry, 0, len(rows))
	for _, r := range rows {
		u, ok := ids.UserIndex(r.UserID)
		if !ok {
			continue
		}
		i, ok := ids.ItemIndex(r.ItemID)
		if !ok {
			continue
		}
		entries = append(entries, matrixEntry{u: u, i: i, w: r.Rating})
	}
	for k := range entries {
		entries[k].w = Confidence(entries[k].w, maxRating, alpha)
	}

	return newInteractionMatrix(ids.NumUsers(), ids.NumItems(), entries)
}

func newInteractionMatrix(users, items int, entries []matrixEntry) *InteractionMatrix {
	sort.Slice(entries, func(a, b int) bool {
		if entries[a].u != entries[b].u {
			return entries[a].u < entries[b].u
		}
		return entries[a].i < entries[b].i
	})

	m := &InteractionMatrix{
		users:  users,
		items:  items,
		rowPtr: make([]int, users+1),
		colIdx: make([]int, len(entries)),
		rowVal: make([]float64, len(entries)),
		colPtr: make([]int, items+1),
		rowIdx: make([]int, len(entries)),
		colVal: make([]float64, len(entries)),
	}

	for k, e := range entries {
		m.rowPtr[e.u+1]++
		m.colPtr[e.i+1]++
		m.colIdx[k] = e.i
		m.rowVal[k] = e.w
	}
	for u := 0; u < users; u++ {
		m.rowPtr[u+1] += m.rowPtr[u]
	}
	for i := 0; i < items; i++ {
		m.colPtr[i+1] += m.colPtr[i]
	}

	// Entries are sorted by row, so filling columns in order keeps each
	// column's rows ascending.
	next := append([]int(nil), m.colPtr[:items]...)
	for _, e := range entries {
		p := next[e.i]
		m.rowIdx[p] = e.u
		m.colVal[p] = e.w
		next[e.i]++
	}
	return m
}

// Dims returns (U, I).
func (m *InteractionMatrix) Dims() (users, items int) {
	return m.users, m.items
}

// NNZ returns the number of stored entries.
func (m *InteractionMatrix) NNZ() int {
	return len(m.colIdx)
}

// Row returns the item indices and weights of user u. The slices alias
// internal storage and must not be modified.
func (m *InteractionMatrix) Row(u int) (cols []int, vals []float64) {
	lo, hi := m.rowPtr[u], m.rowPtr[u+1]
	return m.colIdx[lo:hi], m.rowVal[lo:hi]
}

// Col returns the user indices and weights of item i. The slices alias
// internal storage and must not be modified.
func (m *InteractionMatrix) Col(i int) (rows []int, vals []float64) {
	lo, hi := m.colPtr[i], m.colPtr[i+1]
	return m.rowIdx[lo:hi], m.colVal[lo:hi]
}

// Weight returns the confidence of (u, i), or 0 when there is no entry.
func (m *InteractionMatrix) Weight(u, i int) float64 {
	cols, vals := m.Row(u)
	k := sort.SearchInts(cols, i)
	if k < len(cols) && cols[k] == i {
		return vals[k]
	}
	return 0
}

// Triplets returns the matrix as parallel (row, col, value) slices in
// row-major order, the layout used for persistence.
func (m *InteractionMatrix) Triplets() (rows, cols []int, vals []float64) {
	rows = make([]int, 0, m.NNZ())
	for u := 0; u < m.users; u++ {
		for k := m.rowPtr[u]; k < m.rowPtr[u+1]; k++ {
			rows = append(rows, u)
		}
	}
	return rows, append([]int(nil), m.colIdx...), append([]float64(nil), m.rowVal...)
}

// NewInteractionMatrixFromTriplets rebuilds a matrix from Triplets output.
func NewInteractionMatrixFromTriplets(users, items int, rows, cols []int, vals []float64) *InteractionMatrix {
	entries := make([]matrixEntry, len(rows))
	for k := range rows {
		entries[k] = matrixEntry{u: rows[k], i: cols[k], w: vals[k]}
	}
	return newInteractionMatrix(users, items, entries)
}

var _ algorithms.Matrix = (*InteractionMatrix)(nil)
