// Cinematch - Movie and Series Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cinematch

package preference

import (
	"context"
	"sort"
	"strings"

	"github.com/tomtom215/cinematch/internal/catalog"
	"github.com/tomtom215/cinematch/internal/recommend"
)

// Rerank bonuses.
const (
	GenreBonus      = 2.0
	RatingBonus     = 1.5
	YearBonus       = 1.0
	LanguageBonus   = 1.5
	ExcludedPenalty = -3.0
)

// Preferences is what a free-text query asks for. Zero values mean the
// query did not mention the field.
type Preferences struct {
	Genres        []string `json:"genres,omitempty"`
	ExcludeGenres []string `json:"exclude_genres,omitempty"`
	Mood          string   `json:"mood,omitempty"`

	// MinRating is the lowest acceptable quality rating on a 0-10 scale.
	MinRating float64 `json:"min_rating,omitempty"`

	// YearFrom and YearTo bound the release year, inclusive. Both are set
	// or neither is.
	YearFrom int `json:"year_from,omitempty"`
	YearTo   int `json:"year_to,omitempty"`

	Language string   `json:"language,omitempty"`
	Keywords []string `json:"keywords,omitempty"`
}

// Empty reports whether no preference was extracted.
func (p *Preferences) Empty() bool {
	return len(p.Genres) == 0 && len(p.ExcludeGenres) == 0 && p.Mood == "" &&
		p.MinRating == 0 && p.YearFrom == 0 && p.YearTo == 0 && p.Language == "" && len(p.Keywords) == 0
}

// Extractor turns a free-text query into Preferences.
type Extractor interface {
	// Name identifies the extractor in logs and metrics.
	Name() string

	// Extract never fails; an extractor that cannot do better returns the
	// pattern-based result.
	Extract(ctx context.Context, query string) Preferences
}

// Bonus returns the score adjustment item earns under p. Every matching
// preferred genre adds GenreBonus and every excluded genre the item carries
// adds ExcludedPenalty.
func Bonus(item *catalog.Item, p *Preferences) float64 {
	if item == nil {
		return 0
	}
	var bonus float64
	for _, g := range p.Genres {
		if item.HasGenre(g) {
			bonus += GenreBonus
		}
	}
	if p.MinRating > 0 && item.QualityRating >= p.MinRating {
		bonus += RatingBonus
	}
	if p.YearFrom != 0 && item.Year != 0 && item.Year >= p.YearFrom && item.Year <= p.YearTo {
		bonus += YearBonus
	}
	if p.Language != "" && strings.Contains(strings.ToLower(item.Language), strings.ToLower(p.Language)) {
		bonus += LanguageBonus
	}
	for _, g := range p.ExcludeGenres {
		if item.HasGenre(g) {
			bonus += ExcludedPenalty
		}
	}
	return bonus
}

// Rerank returns a copy of results with each score raised by its Bonus,
// stable-sorted by the new score. The input is not modified.
func Rerank(results []recommend.Result, p *Preferences) []recommend.Result {
	out := make([]recommend.Result, len(results))
	copy(out, results)
	if p == nil || p.Empty() {
		return out
	}
	for i := range out {
		out[i].Score += Bonus(out[i].Item, p)
	}
	sort.SliceStable(out, func(a, b int) bool {
		return out[a].Score > out[b].Score
	})
	return out
}
