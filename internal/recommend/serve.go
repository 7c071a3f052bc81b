// Cinematch - Movie and Series Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cinematch

package recommend

import (
	"context"
	"math"
	"sort"
	"time"

	"github.com/tomtom215/cinematch/internal/cache"
	"github.com/tomtom215/cinematch/internal/catalog"
	"github.com/tomtom215/cinematch/internal/metrics"
	"github.com/tomtom215/cinematch/internal/recommend/algorithms"
)

// Recommend returns up to opts.N items for userID.
//
// Known users are scored against every item by dot product. Unknown users,
// and every user before the first model exists, get the popularity fallback.
// The result may be shorter than N: seen-item exclusion and category
// filtering never pad the list. The only error is a cancelled context.
//
//nolint:gocritic // hugeParam: opts passed by value for immutability
func (e *Engine) Recommend(ctx context.Context, userID string, opts Options) (*Response, error) {
	start := time.Now()
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if opts.N <= 0 {
		opts.N = e.config.Limits.DefaultN
	}

	m := e.model.Load()
	key := e.responseKey("user", userID, m, opts)
	if resp := e.cachedResponse(key, start); resp != nil {
		metrics.RecordRecommendation("user", "cache", resp.Latency)
		return resp, nil
	}

	var (
		resp     *Response
		degraded bool
	)
	if u, ok := e.userIndex(m, userID); ok {
		var results []Result
		results, degraded = e.rankForUser(ctx, m, u, opts)
		resp = &Response{
			Results:      results,
			Source:       SourceModel,
			ModelVersion: m.Version,
		}
	} else {
		var results []Result
		results, degraded = e.popular(ctx, opts)
		resp = &Response{
			Results: results,
			Source:  SourcePopularity,
		}
		if m != nil {
			resp.ModelVersion = m.Version
		}
	}

	if len(opts.Categories) > 0 && len(resp.Results) < opts.N {
		metrics.RecommendFilterExhausted.Inc()
	}

	resp.Latency = time.Since(start)
	e.storeResponse(ctx, key, resp, degraded)
	metrics.RecordRecommendation("user", string(resp.Source), resp.Latency)

	e.logger.Debug().
		Str("user_id", userID).
		Str("source", string(resp.Source)).
		Int("requested", opts.N).
		Int("returned", len(resp.Results)).
		Dur("latency", resp.Latency).
		Msg("recommendation complete")

	return resp, nil
}

// SimilarItems returns up to n items closest to itemID in the item factor
// space. An unknown item, or no trained model, yields an empty list.
func (e *Engine) SimilarItems(ctx context.Context, itemID string, n int) (*Response, error) {
	start := time.Now()
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if n <= 0 {
		n = e.config.Limits.DefaultN
	}

	resp := &Response{Results: []Result{}, Source: SourceSimilarity}

	m := e.model.Load()
	if m == nil {
		resp.Latency = time.Since(start)
		return resp, nil
	}
	resp.ModelVersion = m.Version

	i, ok := m.IDs.ItemIndex(itemID)
	if !ok {
		resp.Latency = time.Since(start)
		metrics.RecordRecommendation("similar", string(SourceSimilarity), resp.Latency)
		return resp, nil
	}

	key := e.responseKey("similar", itemID, m, Options{N: n})
	if cached := e.cachedResponse(key, start); cached != nil {
		metrics.RecordRecommendation("similar", "cache", cached.Latency)
		return cached, nil
	}

	var degraded bool
	target := m.Factors.Items[i]
	scores := make([]float64, len(m.Factors.Items))
	for j, vec := range m.Factors.Items {
		scores[j] = algorithms.Dot(target, vec)
	}
	scores[i] = math.Inf(-1)

	for _, j := range rankIndices(scores) {
		if len(resp.Results) >= n {
			break
		}
		if math.IsInf(scores[j], -1) {
			break
		}
		id := m.IDs.ItemID(j)
		item, ok := e.lookupItem(ctx, id)
		degraded = degraded || !ok
		resp.Results = append(resp.Results, Result{ItemID: id, Score: scores[j], Item: item})
	}

	resp.Latency = time.Since(start)
	e.storeResponse(ctx, key, resp, degraded)
	metrics.RecordRecommendation("similar", string(SourceSimilarity), resp.Latency)
	return resp, nil
}

// Scores returns the raw score of every item for userID, indexed like the
// model's item list, or nil if the user or model is unknown. Seen items are
// not masked.
func (e *Engine) Scores(userID string) []float64 {
	m := e.model.Load()
	u, ok := e.userIndex(m, userID)
	if !ok {
		return nil
	}
	return userScores(m, u)
}

func (e *Engine) userIndex(m *Model, userID string) (int, bool) {
	if m == nil {
		return 0, false
	}
	return m.IDs.UserIndex(userID)
}

func userScores(m *Model, u int) []float64 {
	user := m.Factors.Users[u]
	scores := make([]float64, len(m.Factors.Items))
	for i, vec := range m.Factors.Items {
		scores[i] = algorithms.Dot(user, vec)
	}
	return scores
}

// rankForUser scores, masks, sorts and filters the catalog for user u.
// degraded reports that at least one metadata lookup failed.
//
//nolint:gocritic // hugeParam: opts passed by value for immutability
func (e *Engine) rankForUser(ctx context.Context, m *Model, u int, opts Options) (results []Result, degraded bool) {
	scores := userScores(m, u)
	if opts.FilterSeen {
		cols, vals := m.Seen.Row(u)
		for k, i := range cols {
			if vals[k] != 0 {
				scores[i] = math.Inf(-1)
			}
		}
	}

	order := rankIndices(scores)

	// With a category filter the candidate window is a fixed multiple of N;
	// filtering inside it only removes entries, so relative order matches
	// the unfiltered ranking.
	window := len(order)
	if len(opts.Categories) > 0 {
		window = min(window, e.config.OverFetchFactor*opts.N)
	}

	results = make([]Result, 0, opts.N)
	for _, i := range order[:window] {
		if len(results) >= opts.N {
			break
		}
		if math.IsInf(scores[i], -1) {
			break
		}
		id := m.IDs.ItemID(i)
		item, ok := e.lookupItem(ctx, id)
		degraded = degraded || !ok
		if !item.HasAnyPlatform(opts.Categories) {
			continue
		}
		results = append(results, Result{ItemID: id, Score: scores[i], Item: item})
	}
	return results, degraded
}

// popular returns the top of the catalog by quality rating, filtered by
// category. It never fails; an unavailable catalog yields an empty list and
// degraded set.
//
//nolint:gocritic // hugeParam: opts passed by value for immutability
func (e *Engine) popular(ctx context.Context, opts Options) (results []Result, degraded bool) {
	results = make([]Result, 0, opts.N)

	store := e.catalogStore()
	if store == nil {
		return results, false
	}
	items, err := store.Popular(ctx)
	if err != nil {
		e.logger.Warn().Err(err).Msg("popularity fallback unavailable")
		return results, true
	}

	for _, it := range items {
		if len(results) >= opts.N {
			break
		}
		if !it.HasAnyPlatform(opts.Categories) {
			continue
		}
		results = append(results, Result{ItemID: it.ID, Score: it.QualityRating, Item: it})
	}
	return results, false
}

// lookupItem resolves metadata, substituting a placeholder when the item is
// unknown to the catalog or the catalog fails. ok is false only for a
// failure; an item the catalog does not know is a definitive answer.
func (e *Engine) lookupItem(ctx context.Context, id string) (item *catalog.Item, ok bool) {
	store := e.catalogStore()
	if store == nil {
		return catalog.Placeholder(id), true
	}
	item, err := store.Get(ctx, id)
	if err != nil {
		metrics.MetadataLookups.WithLabelValues("placeholder").Inc()
		e.logger.Debug().Err(err).Str("item_id", id).Msg("metadata lookup failed")
		return catalog.Placeholder(id), false
	}
	if item == nil {
		metrics.MetadataLookups.WithLabelValues("unknown").Inc()
		return catalog.Placeholder(id), true
	}
	return item, true
}

// rankIndices returns item indices ordered by score descending. The sort is
// stable over ascending indices, so ties go to the lower index.
func rankIndices(scores []float64) []int {
	order := make([]int, len(scores))
	for i := range order {
		order[i] = i
	}
	sort.SliceStable(order, func(a, b int) bool {
		return scores[order[a]] > scores[order[b]]
	})
	return order
}

//nolint:gocritic // hugeParam: opts passed by value for immutability
func (e *Engine) responseKey(kind, id string, m *Model, opts Options) string {
	if e.responses == nil {
		return ""
	}
	version := 0
	if m != nil {
		version = m.Version
	}
	return cache.GenerateKey(kind, struct {
		ID      string
		Version int
		Options Options
	}{id, version, opts})
}

func (e *Engine) cachedResponse(key string, start time.Time) *Response {
	if key == "" {
		return nil
	}
	resp, ok := e.responses.Get(key)
	if !ok {
		return nil
	}
	out := *resp
	out.Results = append([]Result(nil), resp.Results...)
	out.Cached = true
	out.Latency = time.Since(start)
	return &out
}

// storeResponse caches resp unless it was built from failed metadata
// lookups or under a cancelled context. Those answers are served once and
// recomputed on the next request.
func (e *Engine) storeResponse(ctx context.Context, key string, resp *Response, degraded bool) {
	if key == "" {
		return
	}
	if degraded || ctx.Err() != nil {
		e.logger.Debug().Bool("degraded", degraded).Msg("response not cached")
		return
	}
	stored := *resp
	stored.Results = append([]Result(nil), resp.Results...)
	e.responses.Set(key, &stored)
}
