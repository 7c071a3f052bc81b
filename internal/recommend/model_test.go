// Cinematch - Movie and Series Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cinematch

package recommend

import (
	"context"
	"testing"

	"github.com/tomtom215/cinematch/internal/recommend/algorithms"
)

func TestNewModelShapeMismatch(t *testing.T) {
	in := scenarioRows()
	ids := NewIdentityMap(in)
	seen := BuildMatrix(in, ids, 40)

	tests := []struct {
		name    string
		factors *algorithms.Factors
	}{
		{
			name:    "too few users",
			factors: &algorithms.Factors{Users: [][]float64{{1}}, Items: [][]float64{{1}, {2}}, K: 1},
		},
		{
			name:    "too many items",
			factors: &algorithms.Factors{Users: [][]float64{{1}, {2}}, Items: [][]float64{{1}, {2}, {3}}, K: 1},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := NewModel(tt.factors, ids, seen); err == nil {
				t.Error("NewModel() accepted mismatched shapes")
			}
		})
	}
}

func TestModelSnapshotRoundTrip(t *testing.T) {
	e := newTestEngine(t, func(c *Config) { c.Factors = 3 })
	if err := e.TrainOn(context.Background(), syntheticRows(2, 8, 6, 3)); err != nil {
		t.Fatalf("TrainOn() error = %v", err)
	}
	m := e.Model()
	meta := m.Metadata(DefaultModelName)

	restored, err := ModelFromSnapshot(m.Snapshot(), &meta)
	if err != nil {
		t.Fatalf("ModelFromSnapshot() error = %v", err)
	}

	if restored.Version != m.Version || restored.Rank() != m.Rank() || restored.Solver() != m.Solver() {
		t.Errorf("restored = v%d rank %d %s, want v%d rank %d %s",
			restored.Version, restored.Rank(), restored.Solver(), m.Version, m.Rank(), m.Solver())
	}
	if restored.Interactions != m.Interactions {
		t.Errorf("Interactions = %d, want %d", restored.Interactions, m.Interactions)
	}
	for u := 0; u < m.IDs.NumUsers(); u++ {
		if restored.IDs.UserID(u) != m.IDs.UserID(u) {
			t.Errorf("UserID(%d) = %s, want %s", u, restored.IDs.UserID(u), m.IDs.UserID(u))
		}
		for i := 0; i < m.IDs.NumItems(); i++ {
			if restored.Seen.Weight(u, i) != m.Seen.Weight(u, i) {
				t.Errorf("Seen.Weight(%d, %d) differs after round trip", u, i)
			}
		}
	}
}

func TestModelFromSnapshotRejectsCorrupt(t *testing.T) {
	e := newTestEngine(t, func(c *Config) { c.Factors = 1 })
	if err := e.TrainOn(context.Background(), scenarioRows()); err != nil {
		t.Fatalf("TrainOn() error = %v", err)
	}

	cases := map[string]func(*Model) error{
		"missing user id": func(m *Model) error {
			s := m.Snapshot()
			s.UserIDs = s.UserIDs[:1]
			_, err := ModelFromSnapshot(s, nil)
			return err
		},
		"wrong rank": func(m *Model) error {
			s := m.Snapshot()
			s.Rank = 2
			_, err := ModelFromSnapshot(s, nil)
			return err
		},
		"seen out of range": func(m *Model) error {
			s := m.Snapshot()
			s.SeenCols[0] = 99
			_, err := ModelFromSnapshot(s, nil)
			return err
		},
		"triplet length mismatch": func(m *Model) error {
			s := m.Snapshot()
			s.SeenVals = s.SeenVals[:1]
			_, err := ModelFromSnapshot(s, nil)
			return err
		},
	}
	for name, run := range cases {
		t.Run(name, func(t *testing.T) {
			if err := run(e.Model()); err == nil {
				t.Error("ModelFromSnapshot() accepted corrupt snapshot")
			}
		})
	}
}
