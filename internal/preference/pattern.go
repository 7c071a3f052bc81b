// Cinematch - Movie and Series Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cinematch

package preference

import (
	"context"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/tomtom215/cinematch/internal/metrics"
)

type vocabulary struct {
	name     string
	keywords []string
}

// Genre vocabulary, in output order.
var genreVocabulary = []vocabulary{
	{"Action", []string{"action", "fight", "combat", "battle", "explosive"}},
	{"Comedy", []string{"comedy", "comedies", "funny", "humor", "laugh", "hilarious", "comic"}},
	{"Drama", []string{"drama", "dramas", "serious", "touching"}},
	{"Romance", []string{"romance", "romantic", "love", "dating", "relationship"}},
	{"Horror", []string{"horror", "scary", "frightening", "terrifying", "spooky"}},
	{"Thriller", []string{"thriller", "thrillers", "suspense", "suspenseful", "tense"}},
	{"Sci-Fi", []string{"sci-fi", "scifi", "science fiction", "futuristic", "space", "alien", "aliens"}},
	{"Fantasy", []string{"fantasy", "magic", "magical", "wizard", "dragon", "dragons"}},
	{"Adventure", []string{"adventure", "adventures", "journey", "quest", "expedition"}},
	{"Mystery", []string{"mystery", "mysteries", "detective", "investigation", "whodunit"}},
	{"Documentary", []string{"documentary", "documentaries", "factual", "educational"}},
	{"Animation", []string{"animation", "animated", "cartoon", "cartoons", "anime"}},
	{"Crime", []string{"crime", "criminal", "gangster", "heist", "mafia"}},
	{"Biography", []string{"biography", "biographical", "biopic", "true story"}},
	{"Family", []string{"family", "kids", "children"}},
	{"War", []string{"war", "wartime"}},
}

var moodVocabulary = []vocabulary{
	{"happy", []string{"happy", "cheerful", "uplifting", "joyful", "feel-good", "lighthearted"}},
	{"sad", []string{"sad", "melancholic", "depressing", "tearjerker"}},
	{"excited", []string{"excited", "exciting", "energetic", "pumped", "adrenaline"}},
	{"relaxed", []string{"relaxed", "relaxing", "calm", "peaceful", "chill", "easy"}},
	{"thoughtful", []string{"thoughtful", "deep", "philosophical", "meaningful", "thought-provoking"}},
	{"thrilled", []string{"thrilled", "thrilling", "intense", "gripping"}},
	{"dark", []string{"dark", "gritty", "bleak"}},
	{"romantic", []string{"romantic"}},
}

var languageVocabulary = []string{
	"english", "hindi", "spanish", "french", "japanese", "korean",
	"chinese", "tamil", "telugu", "german", "italian", "portuguese",
}

var keywordVocabulary = []string{
	"oscar", "award", "winning", "popular", "trending",
	"blockbuster", "indie", "independent", "short", "long",
}

var negations = []string{"no", "not", "without", "avoid", "except"}

var (
	ratingPattern  = regexp.MustCompile(`rat(?:ing|ed)\s*(?:of|above|over|at least|>=?|:)?\s*(\d+(?:\.\d+)?)`)
	yearPattern    = regexp.MustCompile(`\b(19\d{2}|20\d{2})\b`)
	decadePattern  = regexp.MustCompile(`\b(19\d0|20\d0|\d0)'?s\b`)
	afterPattern   = regexp.MustCompile(`\b(?:after|since|from)\s+(19\d{2}|20\d{2})\b`)
	beforePattern  = regexp.MustCompile(`\b(?:before|until|pre)\s+(19\d{2}|20\d{2})\b`)
	nonWordPattern = regexp.MustCompile(`[^a-z0-9\- ]+`)
)

// Pattern extracts preferences with keyword and regular expression rules.
type Pattern struct {
	now func() time.Time
}

// NewPattern creates a pattern extractor.
func NewPattern() *Pattern {
	return &Pattern{now: time.Now}
}

// Name returns "pattern".
func (p *Pattern) Name() string { return "pattern" }

// Extract implements Extractor.
func (p *Pattern) Extract(_ context.Context, query string) Preferences {
	prefs := p.extract(query)
	metrics.PreferenceExtractions.WithLabelValues(p.Name(), "success").Inc()
	return prefs
}

func (p *Pattern) extract(query string) Preferences {
	lower := strings.ToLower(query)
	text := " " + strings.Join(strings.Fields(nonWordPattern.ReplaceAllString(lower, " ")), " ") + " "

	var prefs Preferences

	for _, g := range genreVocabulary {
		mentioned, negated := false, false
		for _, kw := range g.keywords {
			if !hasPhrase(text, kw) {
				continue
			}
			mentioned = true
			for _, neg := range negations {
				if hasPhrase(text, neg+" "+kw) {
					negated = true
				}
			}
		}
		switch {
		case negated:
			prefs.ExcludeGenres = append(prefs.ExcludeGenres, g.name)
		case mentioned:
			prefs.Genres = append(prefs.Genres, g.name)
		}
	}

	for _, m := range moodVocabulary {
		if hasAny(text, m.keywords) {
			prefs.Mood = m.name
			break
		}
	}

	if m := ratingPattern.FindStringSubmatch(lower); m != nil {
		if v, err := strconv.ParseFloat(m[1], 64); err == nil && v <= 10 {
			prefs.MinRating = v
		}
	}
	if prefs.MinRating == 0 {
		switch {
		case hasAny(text, []string{"top rated", "top-rated", "best"}):
			prefs.MinRating = 8.0
		case hasAny(text, []string{"highly rated", "highly-rated", "high rating", "well rated", "well-rated", "acclaimed"}):
			prefs.MinRating = 7.5
		}
	}

	prefs.YearFrom, prefs.YearTo = p.yearRange(lower, text)

	for _, lang := range languageVocabulary {
		if hasPhrase(text, lang) {
			prefs.Language = strings.ToUpper(lang[:1]) + lang[1:]
			break
		}
	}

	for _, kw := range keywordVocabulary {
		if hasPhrase(text, kw) {
			prefs.Keywords = append(prefs.Keywords, kw)
		}
	}

	return prefs
}

// yearRange resolves explicit bounds first, then decades, then bare years,
// then relative words.
func (p *Pattern) yearRange(lower, text string) (from, to int) {
	current := p.now().Year()

	if m := afterPattern.FindStringSubmatch(lower); m != nil {
		y, _ := strconv.Atoi(m[1])
		return y, current
	}
	if m := beforePattern.FindStringSubmatch(lower); m != nil {
		y, _ := strconv.Atoi(m[1])
		return 1900, y - 1
	}
	if m := decadePattern.FindStringSubmatch(lower); m != nil {
		d, _ := strconv.Atoi(m[1])
		if d < 100 {
			d += 1900
			if d < 1930 {
				d += 100
			}
		}
		return d, d + 9
	}

	var years []int
	for _, m := range yearPattern.FindAllStringSubmatch(lower, -1) {
		y, _ := strconv.Atoi(m[1])
		years = append(years, y)
	}
	switch {
	case len(years) >= 2:
		from, to = years[0], years[0]
		for _, y := range years[1:] {
			from, to = min(from, y), max(to, y)
		}
		return from, to
	case len(years) == 1:
		return years[0] - 5, years[0] + 5
	case hasAny(text, []string{"recent", "new", "latest"}):
		return current - 9, current
	case hasAny(text, []string{"old", "classic", "classics", "vintage"}):
		return 1900, 1999
	}
	return 0, 0
}

func hasPhrase(text, phrase string) bool {
	return strings.Contains(text, " "+phrase+" ")
}

func hasAny(text string, phrases []string) bool {
	for _, ph := range phrases {
		if hasPhrase(text, ph) {
			return true
		}
	}
	return false
}

var _ Extractor = (*Pattern)(nil)
