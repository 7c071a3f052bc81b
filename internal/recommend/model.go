// Cinematch - Movie and Series Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cinematch

package recommend

import (
	"fmt"
	"time"

	"github.com/tomtom215/cinematch/internal/recommend/algorithms"
	"github.com/tomtom215/cinematch/internal/recommend/storage"
)

// Model is an immutable trained snapshot. The engine swaps whole models;
// nothing mutates one after construction, so any number of readers may
// share it.
type Model struct {
	// Factors holds the U x K user and I x K item matrices.
	Factors *algorithms.Factors

	// IDs maps external ids to factor rows.
	IDs *IdentityMap

	// Seen is the training matrix used for seen-item exclusion.
	Seen *InteractionMatrix

	// Version is assigned by the engine and increases with every swap.
	Version int

	TrainedAt time.Time

	// TrainingDuration is how long Fit and matrix construction took.
	TrainingDuration time.Duration

	// Interactions is the number of rows that survived filtering.
	Interactions int
}

// NewModel validates that factors, ids and seen agree in shape.
func NewModel(f *algorithms.Factors, ids *IdentityMap, seen *InteractionMatrix) (*Model, error) {
	users, items, _ := f.Dims()
	if users != ids.NumUsers() || items != ids.NumItems() {
		return nil, fmt.Errorf("factor shape %dx%d does not match identity map %dx%d",
			users, items, ids.NumUsers(), ids.NumItems())
	}
	su, si := seen.Dims()
	if su != users || si != items {
		return nil, fmt.Errorf("seen matrix shape %dx%d does not match factors %dx%d", su, si, users, items)
	}
	return &Model{Factors: f, IDs: ids, Seen: seen, Interactions: seen.NNZ()}, nil
}

// Solver returns the algorithm that produced the factors.
func (m *Model) Solver() string { return m.Factors.Solver }

// Rank returns the latent dimension K.
func (m *Model) Rank() int { return m.Factors.K }

// Snapshot converts the model to its persisted form.
func (m *Model) Snapshot() *storage.Snapshot {
	rows, cols, vals := m.Seen.Triplets()
	return &storage.Snapshot{
		Solver:      m.Factors.Solver,
		Rank:        m.Factors.K,
		UserIDs:     m.IDs.UserIDs(),
		ItemIDs:     m.IDs.ItemIDs(),
		UserFactors: m.Factors.Users,
		ItemFactors: m.Factors.Items,
		SeenRows:    rows,
		SeenCols:    cols,
		SeenVals:    vals,
	}
}

// Metadata describes the model for the model store.
func (m *Model) Metadata(name string) storage.Metadata {
	return storage.Metadata{
		Name:               name,
		Version:            m.Version,
		Solver:             m.Factors.Solver,
		Rank:               m.Factors.K,
		TrainedAt:          m.TrainedAt,
		InteractionCount:   m.Interactions,
		UserCount:          m.IDs.NumUsers(),
		ItemCount:          m.IDs.NumItems(),
		TrainingDurationMS: m.TrainingDuration.Milliseconds(),
	}
}

// ModelFromSnapshot rebuilds a model from its persisted form.
func ModelFromSnapshot(s *storage.Snapshot, meta *storage.Metadata) (*Model, error) {
	if len(s.UserFactors) != len(s.UserIDs) || len(s.ItemFactors) != len(s.ItemIDs) {
		return nil, fmt.Errorf("snapshot factor rows do not match id lists")
	}
	if len(s.SeenRows) != len(s.SeenCols) || len(s.SeenRows) != len(s.SeenVals) {
		return nil, fmt.Errorf("snapshot seen triplets have mismatched lengths")
	}
	for _, row := range s.UserFactors {
		if len(row) != s.Rank {
			return nil, fmt.Errorf("user factor width %d does not match rank %d", len(row), s.Rank)
		}
	}
	for _, row := range s.ItemFactors {
		if len(row) != s.Rank {
			return nil, fmt.Errorf("item factor width %d does not match rank %d", len(row), s.Rank)
		}
	}
	for k := range s.SeenRows {
		if s.SeenRows[k] < 0 || s.SeenRows[k] >= len(s.UserIDs) || s.SeenCols[k] < 0 || s.SeenCols[k] >= len(s.ItemIDs) {
			return nil, fmt.Errorf("seen triplet %d out of range", k)
		}
	}

	ids := NewIdentityMapFromIDs(s.UserIDs, s.ItemIDs)
	seen := NewInteractionMatrixFromTriplets(len(s.UserIDs), len(s.ItemIDs), s.SeenRows, s.SeenCols, s.SeenVals)
	factors := &algorithms.Factors{
		Users:  s.UserFactors,
		Items:  s.ItemFactors,
		K:      s.Rank,
		Solver: s.Solver,
	}

	m, err := NewModel(factors, ids, seen)
	if err != nil {
		return nil, err
	}
	if meta != nil {
		m.Version = meta.Version
		m.TrainedAt = meta.TrainedAt
		m.TrainingDuration = time.Duration(meta.TrainingDurationMS) * time.Millisecond
		if meta.InteractionCount > 0 {
			m.Interactions = meta.InteractionCount
		}
	}
	return m, nil
}
