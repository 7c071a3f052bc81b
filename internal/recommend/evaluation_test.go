// Cinematch - Movie and Series Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cinematch

package recommend

import (
	"context"
	"errors"
	"math"
	"testing"
)

func set(ids ...string) map[string]struct{} {
	out := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		out[id] = struct{}{}
	}
	return out
}

func TestRankingMetrics(t *testing.T) {
	recs := []string{"a", "b", "c", "d"}

	tests := []struct {
		name      string
		relevant  map[string]struct{}
		k         int
		precision float64
		recall    float64
		ndcg      float64
		hit       float64
	}{
		{
			name:      "first slot hit",
			relevant:  set("a"),
			k:         2,
			precision: 0.5,
			recall:    1,
			ndcg:      1,
			hit:       1,
		},
		{
			name:      "second slot hit",
			relevant:  set("b", "z"),
			k:         2,
			precision: 0.5,
			recall:    0.5,
			ndcg:      (1 / math.Log2(3)) / (1 + 1/math.Log2(3)),
			hit:       1,
		},
		{
			name:     "miss",
			relevant: set("z"),
			k:        4,
		},
		{
			name:      "k beyond list",
			relevant:  set("d"),
			k:         10,
			precision: 0.1,
			recall:    1,
			ndcg:      1 / math.Log2(5),
			hit:       1,
		},
		{
			name:     "empty relevant set",
			relevant: set(),
			k:        3,
		},
	}

	const eps = 1e-12
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := PrecisionAtK(recs, tt.relevant, tt.k); math.Abs(got-tt.precision) > eps {
				t.Errorf("PrecisionAtK() = %v, want %v", got, tt.precision)
			}
			if got := RecallAtK(recs, tt.relevant, tt.k); math.Abs(got-tt.recall) > eps {
				t.Errorf("RecallAtK() = %v, want %v", got, tt.recall)
			}
			if got := NDCGAtK(recs, tt.relevant, tt.k); math.Abs(got-tt.ndcg) > eps {
				t.Errorf("NDCGAtK() = %v, want %v", got, tt.ndcg)
			}
			if got := HitRateAtK(recs, tt.relevant, tt.k); got != tt.hit {
				t.Errorf("HitRateAtK() = %v, want %v", got, tt.hit)
			}
		})
	}
}

func TestEvaluate(t *testing.T) {
	ctx := context.Background()
	data := syntheticRows(17, 30, 15, 6)
	train, test, err := TemporalSplit(data, 0.2)
	if err != nil {
		t.Fatalf("TemporalSplit() error = %v", err)
	}

	e := newTestEngine(t, func(c *Config) { c.Factors = 6 })

	if _, err := Evaluate(ctx, e, test, nil); !errors.Is(err, ErrNoModel) {
		t.Fatalf("Evaluate() before training error = %v, want ErrNoModel", err)
	}

	if err := e.TrainOn(ctx, train); err != nil {
		t.Fatalf("TrainOn() error = %v", err)
	}

	withStranger := append(append([]Interaction{}, test...), timed("stranger", "m01", 1))
	report, err := Evaluate(ctx, e, withStranger, nil)
	if err != nil {
		t.Fatalf("Evaluate() error = %v", err)
	}

	if report.Skipped != 1 {
		t.Errorf("Skipped = %d, want 1", report.Skipped)
	}
	if report.Users == 0 {
		t.Fatal("Users = 0, want evaluated users")
	}
	if report.ModelVersion != 1 {
		t.Errorf("ModelVersion = %d, want 1", report.ModelVersion)
	}

	for _, k := range DefaultEvaluationKs {
		m, ok := report.Metrics[k]
		if !ok {
			t.Fatalf("Metrics missing K=%d", k)
		}
		for name, v := range map[string]float64{
			"precision": m.Precision, "recall": m.Recall, "ndcg": m.NDCG, "hit_rate": m.HitRate,
		} {
			if v < 0 || v > 1 || math.IsNaN(v) {
				t.Errorf("K=%d %s = %v, want in [0, 1]", k, name, v)
			}
		}
	}
	if report.CTR != report.Metrics[10].Precision*100 {
		t.Errorf("CTR = %v, want precision@10 x 100", report.CTR)
	}

	t.Run("recall grows with k", func(t *testing.T) {
		if report.Metrics[5].Recall > report.Metrics[20].Recall {
			t.Errorf("Recall@5 = %v > Recall@20 = %v", report.Metrics[5].Recall, report.Metrics[20].Recall)
		}
	})

	t.Run("invalid cutoff", func(t *testing.T) {
		if _, err := Evaluate(ctx, e, test, []int{5, 0}); err == nil {
			t.Error("Evaluate() accepted k = 0")
		}
	})
}
