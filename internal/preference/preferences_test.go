// Cinematch - Movie and Series Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cinematch

package preference

import (
	"math"
	"testing"

	"github.com/tomtom215/cinematch/internal/catalog"
	"github.com/tomtom215/cinematch/internal/recommend"
)

func TestBonus(t *testing.T) {
	item := &catalog.Item{
		ID:            "tt1",
		Genres:        []string{"Comedy", "Romance", "Horror"},
		QualityRating: 8.2,
		Year:          1995,
		Language:      "English",
	}

	tests := []struct {
		name  string
		prefs Preferences
		want  float64
	}{
		{"nothing", Preferences{}, 0},
		{"one genre", Preferences{Genres: []string{"comedy"}}, GenreBonus},
		{"each matching genre", Preferences{Genres: []string{"Comedy", "Romance", "Drama"}}, 2 * GenreBonus},
		{"rating met", Preferences{MinRating: 8}, RatingBonus},
		{"rating missed", Preferences{MinRating: 8.5}, 0},
		{"year in range", Preferences{YearFrom: 1990, YearTo: 1999}, YearBonus},
		{"year out of range", Preferences{YearFrom: 2000, YearTo: 2009}, 0},
		{"language", Preferences{Language: "english"}, LanguageBonus},
		{"excluded", Preferences{ExcludeGenres: []string{"Horror"}}, ExcludedPenalty},
		{
			"combined",
			Preferences{Genres: []string{"Comedy"}, ExcludeGenres: []string{"Horror"}, MinRating: 7},
			GenreBonus + RatingBonus + ExcludedPenalty,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Bonus(item, &tt.prefs); math.Abs(got-tt.want) > 1e-12 {
				t.Errorf("Bonus() = %v, want %v", got, tt.want)
			}
		})
	}

	if got := Bonus(nil, &Preferences{Genres: []string{"Comedy"}}); got != 0 {
		t.Errorf("Bonus(nil) = %v, want 0", got)
	}
	if got := Bonus(catalog.Placeholder("tt2"), &Preferences{YearFrom: 1990, YearTo: 1999}); got != 0 {
		t.Errorf("Bonus(placeholder) = %v, want 0", got)
	}
}

func TestRerank(t *testing.T) {
	results := []recommend.Result{
		{ItemID: "a", Score: 1, Item: &catalog.Item{ID: "a", Genres: []string{"Comedy"}}},
		{ItemID: "b", Score: 2, Item: &catalog.Item{ID: "b", Genres: []string{"Horror"}}},
		{ItemID: "c", Score: 1.5, Item: &catalog.Item{ID: "c", Genres: []string{"Drama"}, QualityRating: 9}},
		{ItemID: "d", Score: 0.5},
	}
	prefs := &Preferences{
		Genres:        []string{"Comedy"},
		ExcludeGenres: []string{"Horror"},
		MinRating:     8,
	}

	got := Rerank(results, prefs)

	// a and c tie at 3 and keep their input order.
	wantOrder := []string{"a", "c", "d", "b"}
	wantScores := []float64{3, 3, 0.5, -1}
	if len(got) != len(wantOrder) {
		t.Fatalf("len = %d, want %d", len(got), len(wantOrder))
	}
	for i := range wantOrder {
		if got[i].ItemID != wantOrder[i] || math.Abs(got[i].Score-wantScores[i]) > 1e-12 {
			t.Errorf("got[%d] = %s/%v, want %s/%v", i, got[i].ItemID, got[i].Score, wantOrder[i], wantScores[i])
		}
	}

	if results[0].ItemID != "a" || results[0].Score != 1 || results[1].ItemID != "b" {
		t.Error("Rerank modified its input")
	}
}

func TestRerankWithoutPreferences(t *testing.T) {
	results := []recommend.Result{{ItemID: "x", Score: 1}, {ItemID: "y", Score: 2}}

	for name, p := range map[string]*Preferences{"nil": nil, "empty": {}} {
		t.Run(name, func(t *testing.T) {
			got := Rerank(results, p)
			if len(got) != 2 || got[0].ItemID != "x" || got[1].ItemID != "y" {
				t.Errorf("Rerank() = %+v, want input order", got)
			}
		})
	}
}
