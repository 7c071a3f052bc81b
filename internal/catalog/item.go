// Cinematch - Movie and Series Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cinematch

package catalog

import "strings"

// NotAvailable is the display value for metadata that could not be resolved.
const NotAvailable = "Not Available"

// Item kinds.
const (
	KindMovie  = "movie"
	KindSeries = "series"
)

// Item is the display metadata for a movie or series.
type Item struct {
	// ID is the external item identifier (an IMDb-style tconst).
	ID string `json:"id"`

	Title string `json:"title"`

	// Kind is "movie" or "series".
	Kind string `json:"kind,omitempty"`

	Year int `json:"year,omitempty"`

	Genres []string `json:"genres,omitempty"`

	// QualityRating is the average audience rating on a 0-10 scale. It
	// drives the popularity fallback.
	QualityRating float64 `json:"quality_rating"`

	NumVotes int `json:"num_votes,omitempty"`

	RuntimeMinutes int `json:"runtime_minutes,omitempty"`

	Director string `json:"director,omitempty"`

	Language string `json:"language,omitempty"`

	Mood string `json:"mood,omitempty"`

	// Platforms lists the streaming services the item is available on.
	// These are the availability tags matched by category filters.
	Platforms []string `json:"platforms"`
}

// Placeholder returns the stand-in served when metadata for id is missing
// or the store is unavailable.
func Placeholder(id string) *Item {
	return &Item{
		ID:        id,
		Title:     NotAvailable,
		Platforms: []string{NotAvailable},
	}
}

// IsPlaceholder reports whether the item carries no resolved metadata.
func (it *Item) IsPlaceholder() bool {
	return it.Title == NotAvailable && len(it.Platforms) == 1 && it.Platforms[0] == NotAvailable
}

// HasAnyPlatform reports whether the item's platforms intersect categories.
// Matching is case-insensitive. An empty categories set matches every item.
func (it *Item) HasAnyPlatform(categories []string) bool {
	if len(categories) == 0 {
		return true
	}
	for _, p := range it.Platforms {
		for _, c := range categories {
			if strings.EqualFold(strings.TrimSpace(p), strings.TrimSpace(c)) {
				return true
			}
		}
	}
	return false
}

// HasGenre reports whether the item is tagged with genre (case-insensitive).
func (it *Item) HasGenre(genre string) bool {
	for _, g := range it.Genres {
		if strings.EqualFold(g, genre) {
			return true
		}
	}
	return false
}

// Clone returns a deep copy.
func (it *Item) Clone() *Item {
	c := *it
	c.Genres = append([]string(nil), it.Genres...)
	c.Platforms = append([]string(nil), it.Platforms...)
	return &c
}
