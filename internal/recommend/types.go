// Cinematch - Movie and Series Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cinematch

package recommend

import (
	"context"
	"time"

	"github.com/tomtom215/cinematch/internal/catalog"
)

// Interaction represents a single user-item rating event.
type Interaction struct {
	// UserID is the external user identifier.
	UserID string `json:"user_id"`

	// ItemID is the external item identifier.
	ItemID string `json:"item_id"`

	// Rating is the explicit rating, normally an integer in [1, 5].
	Rating float64 `json:"rating"`

	// Timestamp is the event time in epoch seconds.
	Timestamp int64 `json:"timestamp"`
}

// Source identifies which path produced a result list.
type Source string

const (
	// SourceModel marks results scored by the latent factor model.
	SourceModel Source = "model"
	// SourcePopularity marks results from the popularity fallback.
	SourcePopularity Source = "popularity"
	// SourceSimilarity marks item-to-item neighbours.
	SourceSimilarity Source = "similarity"
)

// Options controls a Recommend call.
type Options struct {
	// N caps the number of results.
	N int `json:"n"`

	// FilterSeen excludes every item the user interacted with in training.
	FilterSeen bool `json:"filter_seen"`

	// Categories restricts results to items whose availability tags
	// intersect this set. Empty means no filter.
	Categories []string `json:"categories,omitempty"`
}

// DefaultOptions returns options with seen-item filtering on.
func DefaultOptions(n int) Options {
	return Options{N: n, FilterSeen: true}
}

// Result is a single ranked item.
type Result struct {
	// ItemID is the external item identifier.
	ItemID string `json:"item_id"`

	// Score is the raw dot product (or quality rating for popularity).
	// It is unbounded and not a probability.
	Score float64 `json:"score"`

	// Item is the display metadata. It is never nil in served results;
	// lookups that fail carry a placeholder instead.
	Item *catalog.Item `json:"item"`
}

// Response wraps a result list with serving metadata.
type Response struct {
	// Results is the ranked list, possibly shorter than requested.
	Results []Result `json:"results"`

	// Source is the path that produced Results.
	Source Source `json:"source"`

	// ModelVersion is the version of the model that served the request,
	// zero when no model was involved.
	ModelVersion int `json:"model_version"`

	// Cached indicates the response came from the response cache.
	Cached bool `json:"cached"`

	// Latency is the time taken to serve the request.
	Latency time.Duration `json:"-"`
}

// DataProvider loads the full interaction table before each training run.
type DataProvider interface {
	LoadInteractions(ctx context.Context) ([]Interaction, error)
}

// StaticProvider serves a fixed interaction table.
type StaticProvider []Interaction

// LoadInteractions returns a copy of the table.
func (p StaticProvider) LoadInteractions(_ context.Context) ([]Interaction, error) {
	out := make([]Interaction, len(p))
	copy(out, p)
	return out, nil
}

// TrainingStatus describes the state of the training lifecycle.
type TrainingStatus struct {
	// InProgress reports whether a training run is active.
	InProgress bool `json:"in_progress"`

	// StartedAt is when the current or last run started.
	StartedAt time.Time `json:"started_at,omitempty"`

	// LastTrainedAt is when the current model finished training.
	LastTrainedAt time.Time `json:"last_trained_at,omitempty"`

	// LastDuration is how long the last successful run took.
	LastDuration time.Duration `json:"last_duration_ns"`

	// LastError is the error from the last failed run, if any.
	LastError string `json:"last_error,omitempty"`

	// ModelVersion is the version of the serving model.
	ModelVersion int `json:"model_version"`

	// Users, Items and Interactions describe the serving model.
	Users        int `json:"users"`
	Items        int `json:"items"`
	Interactions int `json:"interactions"`

	// Rank is the trained latent dimension.
	Rank int `json:"rank"`

	// Solver is the algorithm that produced the serving model.
	Solver string `json:"solver,omitempty"`
}
