// Cinematch - Movie and Series Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cinematch

package catalog

import (
	"context"
	"sort"
	"sync"
)

// Store resolves item metadata.
type Store interface {
	// Get returns the item with the given id, or (nil, nil) if it is unknown.
	Get(ctx context.Context, id string) (*Item, error)

	// Popular returns the whole catalog ordered by QualityRating descending,
	// ties broken by ascending ID. The slice must not be modified.
	Popular(ctx context.Context) ([]*Item, error)
}

// SortByQuality orders items by QualityRating descending, then ID ascending.
func SortByQuality(items []*Item) {
	sort.SliceStable(items, func(a, b int) bool {
		if items[a].QualityRating != items[b].QualityRating {
			return items[a].QualityRating > items[b].QualityRating
		}
		return items[a].ID < items[b].ID
	})
}

// MemoryStore is an in-memory Store. It is safe for concurrent use.
type MemoryStore struct {
	mu      sync.RWMutex
	items   map[string]*Item
	popular []*Item // nil when stale
}

// NewMemoryStore creates a store holding items.
func NewMemoryStore(items ...*Item) *MemoryStore {
	s := &MemoryStore{items: make(map[string]*Item, len(items))}
	s.Put(items...)
	return s
}

// Put inserts or replaces items by ID.
func (s *MemoryStore) Put(items ...*Item) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, it := range items {
		if it == nil || it.ID == "" {
			continue
		}
		s.items[it.ID] = it
	}
	s.popular = nil
}

// Replace swaps the whole catalog.
func (s *MemoryStore) Replace(items []*Item) {
	m := make(map[string]*Item, len(items))
	for _, it := range items {
		if it == nil || it.ID == "" {
			continue
		}
		m[it.ID] = it
	}
	s.mu.Lock()
	s.items = m
	s.popular = nil
	s.mu.Unlock()
}

// Len returns the number of items.
func (s *MemoryStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.items)
}

// Get implements Store.
func (s *MemoryStore) Get(_ context.Context, id string) (*Item, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.items[id], nil
}

// Popular implements Store. The sorted order is computed once per change.
func (s *MemoryStore) Popular(_ context.Context) ([]*Item, error) {
	s.mu.RLock()
	p := s.popular
	s.mu.RUnlock()
	if p != nil {
		return p, nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.popular != nil {
		return s.popular, nil
	}
	p = make([]*Item, 0, len(s.items))
	for _, it := range s.items {
		p = append(p, it)
	}
	SortByQuality(p)
	s.popular = p
	return p, nil
}

var _ Store = (*MemoryStore)(nil)
