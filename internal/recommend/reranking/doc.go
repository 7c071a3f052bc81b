// Cinematch - Movie and Series Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cinematch

// Package reranking implements post-processing for recommendation diversity.
//
// Rerankers operate on lists the engine has already scored and filtered,
// and only reorder or truncate them:
//
//	Engine -> Recommend (relevance) -> Rerank (diversity) -> Response
//
// # Maximal Marginal Relevance
//
// MMR iteratively selects items that are both relevant and dissimilar to
// already-selected items, using genre Jaccard similarity:
//
//	sim(a, b) = |genres(a) intersection genres(b)| / |genres(a) union genres(b)|
//
// Lambda guidelines:
//   - 0.9-1.0: mostly relevance
//   - 0.7-0.9: balanced
//   - below 0.7: strong diversity push
//
// Placeholder items carry no genres and are never considered similar to
// anything.
//
// MMR costs O(k * n^2) time and O(n^2) space; callers over-fetch a small
// multiple of k rather than the whole catalog.
//
// Rerankers are stateless and safe for concurrent use.
package reranking
