// Cinematch - Movie and Series Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cinematch

// Package recommend implements a latent factor recommender for movies and
// series.
//
// # Pipeline
//
// Training runs leaf-first:
//
//   - FilterSparse drops users, then items, with fewer than min_interactions
//     rows. The filter is a single pass, so an entity may end up below the
//     threshold after the item pass removes some of its rows.
//   - NewIdentityMap assigns contiguous indices in first-seen order.
//   - BuildMatrix deduplicates (user, item) pairs, last row wins, and turns
//     ratings into confidence weights (see Confidence).
//   - A solver from the algorithms package factorizes the matrix into user
//     and item factors of rank K = min(factors, min(U, I) - 1).
//
// The result is an immutable Model, swapped atomically into the Engine.
//
// # Serving
//
//   - Recommend scores a known user against every item by dot product, masks
//     seen items with -Inf when asked, stable-sorts descending, and applies
//     an optional category (platform) filter inside an over-fetch window of
//     over_fetch_factor x N candidates. Unknown users get the catalog ranked
//     by quality rating.
//   - SimilarItems ranks items by dot product with the query item's factors,
//     excluding the item itself.
//
// Items scored -Inf are never returned and result lists are never padded.
// Metadata comes from a catalog.Store; lookups that fail serve a placeholder.
//
// # Usage
//
//	engine, err := recommend.NewEngine(recommend.DefaultConfig(), logger)
//	if err != nil {
//	    return err
//	}
//	engine.SetDataProvider(loader)
//	engine.SetCatalog(store)
//
//	if err := engine.Train(ctx); err != nil {
//	    return err
//	}
//	resp, err := engine.Recommend(ctx, "u42", recommend.DefaultOptions(10))
//
// # Thread Safety
//
// Recommend and SimilarItems load the current model once per call and never
// block on training. Train is exclusive: a concurrent call returns
// ErrTrainingInProgress immediately.
//
// # Offline Evaluation
//
// TemporalSplit holds out each user's most recent interactions and Evaluate
// reports precision, recall, NDCG and hit rate at K for a trained engine.
package recommend
