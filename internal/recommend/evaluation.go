// Cinematch - Movie and Series Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cinematch

package recommend

import (
	"context"
	"fmt"
	"math"
	"slices"
)

// DefaultEvaluationKs are the cutoffs reported by Evaluate.
var DefaultEvaluationKs = []int{5, 10, 20}

// RankingMetrics are mean top-K metrics across evaluated users.
type RankingMetrics struct {
	Precision float64 `json:"precision"`
	Recall    float64 `json:"recall"`
	NDCG      float64 `json:"ndcg"`
	HitRate   float64 `json:"hit_rate"`
}

// EvaluationReport is the outcome of an offline evaluation.
type EvaluationReport struct {
	// Users is the number of test users known to the model.
	Users int `json:"users"`

	// Skipped is the number of test users absent from the model.
	Skipped int `json:"skipped"`

	// Metrics maps each cutoff K to its mean metrics.
	Metrics map[int]RankingMetrics `json:"metrics"`

	// CTR is precision@10 expressed as a percentage, an estimate of the
	// click-through lift. Zero when K=10 is not evaluated.
	CTR float64 `json:"estimated_ctr_improvement_pct"`

	ModelVersion int `json:"model_version"`
}

// Evaluate scores the engine's current model against held-out rows. Each
// test user known to the model gets max(ks) recommendations with seen items
// filtered, and the relevant set is that user's distinct test items.
func Evaluate(ctx context.Context, e *Engine, test []Interaction, ks []int) (*EvaluationReport, error) {
	if len(ks) == 0 {
		ks = DefaultEvaluationKs
	}
	m := e.Model()
	if m == nil {
		return nil, ErrNoModel
	}
	for _, k := range ks {
		if k < 1 {
			return nil, fmt.Errorf("evaluation cutoff must be positive, got %d", k)
		}
	}
	maxK := slices.Max(ks)

	var users []string
	relevant := make(map[string]map[string]struct{})
	for _, r := range test {
		set, ok := relevant[r.UserID]
		if !ok {
			set = make(map[string]struct{})
			relevant[r.UserID] = set
			users = append(users, r.UserID)
		}
		set[r.ItemID] = struct{}{}
	}

	report := &EvaluationReport{
		Metrics:      make(map[int]RankingMetrics, len(ks)),
		ModelVersion: m.Version,
	}
	sums := make(map[int]*RankingMetrics, len(ks))
	for _, k := range ks {
		sums[k] = &RankingMetrics{}
	}

	for _, user := range users {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		u, ok := m.IDs.UserIndex(user)
		if !ok {
			report.Skipped++
			continue
		}
		report.Users++

		ranked, _ := e.rankForUser(ctx, m, u, Options{N: maxK, FilterSeen: true})
		recs := make([]string, len(ranked))
		for n, r := range ranked {
			recs[n] = r.ItemID
		}

		rel := relevant[user]
		for _, k := range ks {
			s := sums[k]
			s.Precision += PrecisionAtK(recs, rel, k)
			s.Recall += RecallAtK(recs, rel, k)
			s.NDCG += NDCGAtK(recs, rel, k)
			s.HitRate += HitRateAtK(recs, rel, k)
		}
	}

	for _, k := range ks {
		s := sums[k]
		if report.Users > 0 {
			n := float64(report.Users)
			s.Precision /= n
			s.Recall /= n
			s.NDCG /= n
			s.HitRate /= n
		}
		report.Metrics[k] = *s
	}
	if p10, ok := report.Metrics[10]; ok {
		report.CTR = p10.Precision * 100
	}

	e.logger.Info().
		Int("users", report.Users).
		Int("skipped", report.Skipped).
		Float64("ctr_pct", report.CTR).
		Msg("evaluation complete")

	return report, nil
}

func hitsAtK(recs []string, relevant map[string]struct{}, k int) int {
	hits := 0
	for _, id := range recs[:min(k, len(recs))] {
		if _, ok := relevant[id]; ok {
			hits++
		}
	}
	return hits
}

// PrecisionAtK is the fraction of the K slots holding a relevant item. Short
// lists are not renormalized.
func PrecisionAtK(recs []string, relevant map[string]struct{}, k int) float64 {
	if len(relevant) == 0 || k == 0 {
		return 0
	}
	return float64(hitsAtK(recs, relevant, k)) / float64(k)
}

// RecallAtK is the fraction of relevant items found in the top K.
func RecallAtK(recs []string, relevant map[string]struct{}, k int) float64 {
	if len(relevant) == 0 {
		return 0
	}
	return float64(hitsAtK(recs, relevant, k)) / float64(len(relevant))
}

// NDCGAtK is binary-relevance normalized discounted cumulative gain.
func NDCGAtK(recs []string, relevant map[string]struct{}, k int) float64 {
	if len(relevant) == 0 {
		return 0
	}
	var dcg float64
	for idx, id := range recs[:min(k, len(recs))] {
		if _, ok := relevant[id]; ok {
			dcg += 1 / math.Log2(float64(idx+2))
		}
	}
	var idcg float64
	for idx := 0; idx < min(len(relevant), k); idx++ {
		idcg += 1 / math.Log2(float64(idx+2))
	}
	if idcg == 0 {
		return 0
	}
	return dcg / idcg
}

// HitRateAtK is 1 if any relevant item is in the top K, else 0.
func HitRateAtK(recs []string, relevant map[string]struct{}, k int) float64 {
	if hitsAtK(recs, relevant, k) > 0 {
		return 1
	}
	return 0
}
