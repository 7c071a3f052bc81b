// Cinematch - Movie and Series Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cinematch

package models

import (
	"github.com/tomtom215/cinematch/internal/catalog"
	"github.com/tomtom215/cinematch/internal/preference"
	"github.com/tomtom215/cinematch/internal/recommend"
)

// Recommendation is one served item with its display metadata.
type Recommendation struct {
	ItemID         string   `json:"item_id"`
	Title          string   `json:"title"`
	Kind           string   `json:"kind,omitempty"`
	Year           int      `json:"year,omitempty"`
	Genres         []string `json:"genres"`
	Rating         float64  `json:"rating"`
	RuntimeMinutes int      `json:"runtime_minutes,omitempty"`
	Platforms      []string `json:"platforms"`
	Score          float64  `json:"score"`
}

// RecommendationList is the data payload of the user and query endpoints.
type RecommendationList struct {
	UserID          string           `json:"user_id,omitempty"`
	Count           int              `json:"count"`
	Source          string           `json:"source"`
	Recommendations []Recommendation `json:"recommendations"`

	// Preferences is set by the query endpoint only.
	Preferences *preference.Preferences `json:"preferences,omitempty"`

	// Extractor names the preference extractor used by the query endpoint.
	Extractor string `json:"extractor,omitempty"`
}

// SimilarList is the data payload of the similar-items endpoint.
type SimilarList struct {
	ItemID  string           `json:"item_id"`
	Count   int              `json:"count"`
	Similar []Recommendation `json:"similar"`
}

// NewRecommendation flattens a ranked result. A result without metadata is
// rendered as a placeholder so clients always see title and platforms.
//
//nolint:gocritic // hugeParam: results are copied out of the ranked slice
func NewRecommendation(r recommend.Result) Recommendation {
	item := r.Item
	if item == nil {
		item = catalog.Placeholder(r.ItemID)
	}
	genres := item.Genres
	if genres == nil {
		genres = []string{}
	}
	platforms := item.Platforms
	if len(platforms) == 0 {
		platforms = []string{catalog.NotAvailable}
	}
	return Recommendation{
		ItemID:         r.ItemID,
		Title:          item.Title,
		Kind:           item.Kind,
		Year:           item.Year,
		Genres:         genres,
		Rating:         item.QualityRating,
		RuntimeMinutes: item.RuntimeMinutes,
		Platforms:      platforms,
		Score:          r.Score,
	}
}

// NewRecommendations converts a ranked list, preserving order. It never
// returns nil.
func NewRecommendations(results []recommend.Result) []Recommendation {
	out := make([]Recommendation, 0, len(results))
	for i := range results {
		out = append(out, NewRecommendation(results[i]))
	}
	return out
}

// HealthStatus is the data payload of the health endpoint.
type HealthStatus struct {
	Status       string  `json:"status"`
	ModelLoaded  bool    `json:"model_loaded"`
	ModelVersion int     `json:"model_version,omitempty"`
	Training     bool    `json:"training"`
	Uptime       float64 `json:"uptime_seconds"`
	Version      string  `json:"version,omitempty"`
}

// TrainAccepted is the data payload returned when a training run is queued.
type TrainAccepted struct {
	RequestID string `json:"request_id"`
	Message   string `json:"message"`
}
