// Cinematch - Movie and Series Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cinematch

package catalog

import (
	"context"
	"time"

	"github.com/tomtom215/cinematch/internal/cache"
	"github.com/tomtom215/cinematch/internal/metrics"
)

const popularKey = "\x00popular"

// CachedStore is a read-through TTL cache in front of another Store.
// Unknown ids and errors are not cached.
type CachedStore struct {
	inner   Store
	items   *cache.Cache[*Item]
	popular *cache.Cache[[]*Item]
}

// NewCachedStore wraps inner with a cache of the given TTL.
func NewCachedStore(inner Store, ttl time.Duration) *CachedStore {
	return &CachedStore{
		inner:   inner,
		items:   cache.New[*Item](ttl),
		popular: cache.New[[]*Item](ttl),
	}
}

// Get implements Store.
func (cs *CachedStore) Get(ctx context.Context, id string) (*Item, error) {
	if it, ok := cs.items.Get(id); ok {
		metrics.MetadataLookups.WithLabelValues("hit").Inc()
		return it, nil
	}
	metrics.MetadataLookups.WithLabelValues("miss").Inc()

	it, err := cs.inner.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if it != nil {
		cs.items.Set(id, it)
	}
	return it, nil
}

// Popular implements Store.
func (cs *CachedStore) Popular(ctx context.Context) ([]*Item, error) {
	if p, ok := cs.popular.Get(popularKey); ok {
		return p, nil
	}
	p, err := cs.inner.Popular(ctx)
	if err != nil {
		return nil, err
	}
	cs.popular.Set(popularKey, p)
	return p, nil
}

// Invalidate drops every cached entry.
func (cs *CachedStore) Invalidate() {
	cs.items.Clear()
	cs.popular.Clear()
}

// Stats returns the item cache statistics.
func (cs *CachedStore) Stats() cache.Stats {
	return cs.items.GetStats()
}

// Close stops the cache sweepers.
func (cs *CachedStore) Close() {
	cs.items.Close()
	cs.popular.Close()
}

var _ Store = (*CachedStore)(nil)
