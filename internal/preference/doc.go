// Cinematch - Movie and Series Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cinematch

// Package preference turns free-text queries such as "funny 90s movies, no
// horror" into structured Preferences and reranks recommendation lists with
// them.
//
// Pattern matches a fixed vocabulary of genres, moods, languages and rating
// and year phrases. Remote posts the query to an external language service
// behind a rate limiter and a circuit breaker, and falls back to Pattern on
// any failure.
//
// Rerank adds a bonus per match (see GenreBonus and friends) and stable-sorts
// by the adjusted score.
package preference
