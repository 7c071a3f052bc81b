// Cinematch - Movie and Series Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cinematch

/*
Package catalog holds movie and series metadata and the stores that serve it.

Stores compose as decorators:

	mem := catalog.NewMemoryStore(items...)
	guarded := catalog.NewBreakerStore(mem, catalog.DefaultBreakerConfig(), logger)
	store := catalog.NewCachedStore(guarded, 10*time.Minute)

A Store returns (nil, nil) for an unknown id. Failures of the backend surface
as ErrUnavailable; the recommendation engine substitutes Placeholder(id) in
that case so that a metadata outage never fails a recommendation.

Platforms are the availability tags matched by category filters. Items that
are not on any known platform carry the single tag NotAvailable.
*/
package catalog
