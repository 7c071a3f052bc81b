// Cinematch - Movie and Series Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cinematch

package recommend

import (
	"fmt"
	"sort"
)

// TemporalSplit holds out the most recent testSize fraction of every user's
// history. Each user contributes max(1, floor(n*testSize)) rows to test, so
// a user with a single row lands entirely in test.
//
// Rows are ordered by timestamp (stable, so input order breaks ties) and
// grouped by user in order of each user's earliest row.
func TemporalSplit(rows []Interaction, testSize float64) (train, test []Interaction, err error) {
	if testSize <= 0 || testSize >= 1 {
		return nil, nil, fmt.Errorf("test_size must be in (0, 1), got %f", testSize)
	}

	sorted := make([]Interaction, len(rows))
	copy(sorted, rows)
	sort.SliceStable(sorted, func(a, b int) bool {
		return sorted[a].Timestamp < sorted[b].Timestamp
	})

	var order []string
	byUser := make(map[string][]Interaction)
	for _, r := range sorted {
		if _, ok := byUser[r.UserID]; !ok {
			order = append(order, r.UserID)
		}
		byUser[r.UserID] = append(byUser[r.UserID], r)
	}

	train = make([]Interaction, 0, len(rows))
	test = make([]Interaction, 0, len(rows)/4+len(order))
	for _, user := range order {
		history := byUser[user]
		nTest := max(1, int(float64(len(history))*testSize))
		cut := len(history) - nTest
		train = append(train, history[:cut]...)
		test = append(test, history[cut:]...)
	}
	return train, test, nil
}
