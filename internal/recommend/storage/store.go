// Cinematch - Movie and Series Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cinematch

package storage

import (
	"context"
	"errors"
	"time"
)

var (
	// ErrModelNotFound is returned when no model exists for a name or version.
	ErrModelNotFound = errors.New("model not found")

	// ErrChecksumMismatch is returned when stored model data fails integrity
	// verification.
	ErrChecksumMismatch = errors.New("model checksum mismatch")
)

// Metadata describes a stored model.
type Metadata struct {
	// Name groups model versions (for example "default").
	Name string `json:"name"`

	// Version is monotonically increasing per name.
	Version int `json:"version"`

	// Solver is the factorization algorithm that produced the model.
	Solver string `json:"solver"`

	// Rank is the latent dimension.
	Rank int `json:"rank"`

	TrainedAt time.Time `json:"trained_at"`
	SavedAt   time.Time `json:"saved_at"`

	InteractionCount int `json:"interaction_count"`
	UserCount        int `json:"user_count"`
	ItemCount        int `json:"item_count"`

	// Checksum is the hex SHA-256 of the uncompressed snapshot encoding.
	Checksum string `json:"checksum"`

	// SizeBytes is the compressed size.
	SizeBytes int64 `json:"size_bytes"`

	TrainingDurationMS int64 `json:"training_duration_ms"`
}

// Snapshot is the serializable state of a trained model. Index r of
// UserFactors belongs to UserIDs[r] and index c of ItemFactors to
// ItemIDs[c]; the seen matrix uses the same indices.
type Snapshot struct {
	Solver string
	Rank   int

	UserIDs []string
	ItemIDs []string

	UserFactors [][]float64
	ItemFactors [][]float64

	// SeenRows, SeenCols and SeenVals hold the training matrix as triplets.
	SeenRows []int
	SeenCols []int
	SeenVals []float64
}

// Store persists model snapshots by name and version.
type Store interface {
	// Save writes snap under meta.Name and meta.Version.
	Save(ctx context.Context, snap *Snapshot, meta Metadata) error

	// Load reads a snapshot. Version 0 selects the latest version.
	Load(ctx context.Context, name string, version int) (*Snapshot, *Metadata, error)

	// LatestVersion returns the newest version stored for name.
	LatestVersion(name string) (int, bool)

	// Versions returns every stored version of name, newest first.
	Versions(ctx context.Context, name string) ([]int, error)

	// List returns metadata for the latest version of every name.
	List(ctx context.Context) ([]Metadata, error)

	// Prune removes all but the newest keep versions of name.
	Prune(ctx context.Context, name string, keep int) error

	// Close releases backend resources.
	Close() error
}
