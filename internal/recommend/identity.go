// Cinematch - Movie and Series Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cinematch

package recommend

// FilterSparse drops sparse users and then sparse items.
//
// Users with fewer than minInteractions rows are removed first. Item counts
// are then taken over the user-filtered rows, and items below the threshold
// are removed. The two passes run once each and are not repeated until
// stable, so a user can end up below the threshold after the item pass.
//
//nolint:gocritic // rangeValCopy: Interaction is small
func FilterSparse(rows []Interaction, minInteractions int) []Interaction {
	userCounts := make(map[string]int)
	for _, r := range rows {
		userCounts[r.UserID]++
	}

	byUser := make([]Interaction, 0, len(rows))
	for _, r := range rows {
		if userCounts[r.UserID] >= minInteractions {
			byUser = append(byUser, r)
		}
	}

	itemCounts := make(map[string]int)
	for _, r := range byUser {
		itemCounts[r.ItemID]++
	}

	out := make([]Interaction, 0, len(byUser))
	for _, r := range byUser {
		if itemCounts[r.ItemID] >= minInteractions {
			out = append(out, r)
		}
	}
	return out
}

// IdentityMap is a bidirectional mapping between external ids and dense
// matrix indices. It is immutable once built.
type IdentityMap struct {
	userIndex map[string]int
	itemIndex map[string]int
	users     []string
	items     []string
}

// NewIdentityMap assigns indices in order of first appearance in rows.
// An empty table yields an empty map.
//
//nolint:gocritic // rangeValCopy: Interaction is small
func NewIdentityMap(rows []Interaction) *IdentityMap {
	m := &IdentityMap{
		userIndex: make(map[string]int),
		itemIndex: make(map[string]int),
	}
	for _, r := range rows {
		if _, ok := m.userIndex[r.UserID]; !ok {
			m.userIndex[r.UserID] = len(m.users)
			m.users = append(m.users, r.UserID)
		}
		if _, ok := m.itemIndex[r.ItemID]; !ok {
			m.itemIndex[r.ItemID] = len(m.items)
			m.items = append(m.items, r.ItemID)
		}
	}
	return m
}

// NewIdentityMapFromIDs rebuilds a map from ordered id lists, as persisted
// alongside a model. Index i maps to users[i] and items[i].
func NewIdentityMapFromIDs(users, items []string) *IdentityMap {
	m := &IdentityMap{
		userIndex: make(map[string]int, len(users)),
		itemIndex: make(map[string]int, len(items)),
		users:     append([]string(nil), users...),
		items:     append([]string(nil), items...),
	}
	for i, id := range m.users {
		m.userIndex[id] = i
	}
	for i, id := range m.items {
		m.itemIndex[id] = i
	}
	return m
}

// UserIndex returns the dense index of a user.
func (m *IdentityMap) UserIndex(id string) (int, bool) {
	idx, ok := m.userIndex[id]
	return idx, ok
}

// ItemIndex returns the dense index of an item.
func (m *IdentityMap) ItemIndex(id string) (int, bool) {
	idx, ok := m.itemIndex[id]
	return idx, ok
}

// Has reports whether both the user and the item are mapped.
func (m *IdentityMap) Has(userID, itemID string) bool {
	_, okUser := m.userIndex[userID]
	_, okItem := m.itemIndex[itemID]
	return okUser && okItem
}

// UserID returns the external id for a user index.
func (m *IdentityMap) UserID(idx int) string {
	return m.users[idx]
}

// ItemID returns the external id for an item index.
func (m *IdentityMap) ItemID(idx int) string {
	return m.items[idx]
}

// NumUsers returns U.
func (m *IdentityMap) NumUsers() int { return len(m.users) }

// NumItems returns I.
func (m *IdentityMap) NumItems() int { return len(m.items) }

// UserIDs returns a copy of the index-ordered user ids.
func (m *IdentityMap) UserIDs() []string {
	return append([]string(nil), m.users...)
}

// ItemIDs returns a copy of the index-ordered item ids.
func (m *IdentityMap) ItemIDs() []string {
	return append([]string(nil), m.items...)
}
