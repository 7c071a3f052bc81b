// Cinematch - Movie and Series Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cinematch

/*
Package cache provides a thread-safe, generic in-memory cache with TTL
expiration.

# Use Cases

  - Recommendation responses keyed by (user, options), cleared whenever a
    new model is swapped in
  - Item metadata lookups in front of the catalog store (read-through)

# Usage

	c := cache.New[*catalog.Item](10 * time.Minute)
	defer c.Close()

	c.Set("tt0111161", item)
	if item, ok := c.Get("tt0111161"); ok {
	    // use item
	}

	key := cache.GenerateKey("recommend", opts)

# Expiration

Entries are checked on Get and swept every DefaultCleanupInterval by a
background goroutine. Close stops the sweeper.

# Thread Safety

All methods are safe for concurrent use. Statistics are tracked under a
separate mutex so reads of GetStats never block cache access.
*/
package cache
