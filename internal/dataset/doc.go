// Cinematch - Movie and Series Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cinematch

// Package dataset loads the ratings table and the title catalog from CSV
// files using DuckDB.
//
// Three files make up a dataset:
//
//   - the interactions CSV: user_id, movie_id (or item_id), rating and an
//     optional epoch-seconds timestamp
//   - the catalog CSV in IMDb layout: tconst, titleType, primaryTitle,
//     startYear, runtimeMinutes, genres, averageRating, numVotes, plus
//     optional director, language and mood columns
//   - the streaming CSV: movie_id and one 0/1 column per platform
//
// DuckDBLoader implements recommend.DataProvider, so the engine reloads the
// interactions file on every training run.
package dataset
