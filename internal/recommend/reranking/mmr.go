// Cinematch - Movie and Series Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cinematch

package reranking

import (
	"math"
	"strings"

	"github.com/tomtom215/cinematch/internal/recommend"
)

// maxRerankSize bounds the pairwise similarity matrix.
const maxRerankSize = 1000

// MMR implements Maximal Marginal Relevance reranking:
//
//	MMR = argmax[lambda * rel(i) - (1-lambda) * max(sim(i, s)) for s in selected]
//
// rel(i) is the item's score min-max normalized over the candidate list, so
// relevance and the genre Jaccard similarity share a [0, 1] scale.
//
// Reference:
// Carbonell, J., & Goldstein, J. (1998). "The Use of MMR, Diversity-Based
// Reranking for Reordering Documents and Producing Summaries." SIGIR 1998.
type MMR struct {
	// lambda balances relevance (1.0) against diversity (0.0).
	lambda float64
}

// NewMMR creates a new MMR reranker. lambda is clamped to [0, 1].
func NewMMR(lambda float64) *MMR {
	if lambda < 0 {
		lambda = 0
	}
	if lambda > 1 {
		lambda = 1
	}
	return &MMR{lambda: lambda}
}

// Name returns the reranker identifier.
func (m *MMR) Name() string {
	return "mmr"
}

// Lambda returns the relevance weight.
func (m *MMR) Lambda() float64 {
	return m.lambda
}

// Rerank selects up to k results from items. Scores are carried through
// unchanged; only the order differs. The input is not modified.
func (m *MMR) Rerank(items []recommend.Result, k int) []recommend.Result {
	if len(items) == 0 || k <= 0 {
		return nil
	}
	if len(items) > maxRerankSize {
		items = items[:maxRerankSize]
	}
	if k > len(items) {
		k = len(items)
	}

	if m.lambda >= 1.0 {
		out := make([]recommend.Result, k)
		copy(out, items[:k])
		return out
	}

	relevance := normalize(items)
	similarities := buildSimilarityMatrix(items)

	selected := make([]recommend.Result, 0, k)
	selectedIdx := make([]int, 0, k)
	taken := make([]bool, len(items))

	for len(selected) < k {
		bestIdx := -1
		bestMMR := math.Inf(-1)

		for i := range items {
			if taken[i] {
				continue
			}
			maxSim := 0.0
			for _, j := range selectedIdx {
				if s := similarities[i][j]; s > maxSim {
					maxSim = s
				}
			}

			// Strict comparison keeps the earlier item on ties.
			if score := m.lambda*relevance[i] - (1-m.lambda)*maxSim; score > bestMMR {
				bestMMR = score
				bestIdx = i
			}
		}

		if bestIdx < 0 {
			break
		}
		taken[bestIdx] = true
		selectedIdx = append(selectedIdx, bestIdx)
		selected = append(selected, items[bestIdx])
	}

	return selected
}

func normalize(items []recommend.Result) []float64 {
	lo, hi := math.Inf(1), math.Inf(-1)
	for i := range items {
		lo = math.Min(lo, items[i].Score)
		hi = math.Max(hi, items[i].Score)
	}
	rel := make([]float64, len(items))
	for i := range items {
		if hi > lo {
			rel[i] = (items[i].Score - lo) / (hi - lo)
		} else {
			rel[i] = 1
		}
	}
	return rel
}

// buildSimilarityMatrix computes pairwise genre-based similarity.
func buildSimilarityMatrix(items []recommend.Result) [][]float64 {
	n := len(items)
	genres := make([][]string, n)
	for i := range items {
		if items[i].Item != nil {
			genres[i] = items[i].Item.Genres
		}
	}

	similarities := make([][]float64, n)
	for i := range similarities {
		similarities[i] = make([]float64, n)
	}
	for i := 0; i < n; i++ {
		for j := i + 1; j < n; j++ {
			sim := genreSimilarity(genres[i], genres[j])
			similarities[i][j] = sim
			similarities[j][i] = sim
		}
	}
	return similarities
}

// genreSimilarity computes the Jaccard similarity between genre lists.
func genreSimilarity(a, b []string) float64 {
	if len(a) == 0 && len(b) == 0 {
		return 0
	}

	setA := make(map[string]struct{}, len(a))
	for _, g := range a {
		setA[strings.ToLower(g)] = struct{}{}
	}
	setB := make(map[string]struct{}, len(b))
	for _, g := range b {
		setB[strings.ToLower(g)] = struct{}{}
	}

	intersection := 0
	for g := range setA {
		if _, ok := setB[g]; ok {
			intersection++
		}
	}

	union := len(setA) + len(setB) - intersection
	if union == 0 {
		return 0
	}
	return float64(intersection) / float64(union)
}
