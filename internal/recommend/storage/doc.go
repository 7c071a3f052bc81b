// Cinematch - Movie and Series Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cinematch

// Package storage persists trained recommendation models.
//
// A Snapshot holds everything needed to serve again without retraining: user
// and item factors, the two identity lists that give those factors meaning,
// and the training matrix used for seen-item filtering. Index alignment
// between the id lists and the factor rows is preserved exactly.
//
// # Encoding
//
// Snapshots are gob-encoded, gzip-compressed, and checksummed with SHA-256
// over the uncompressed bytes. A checksum failure on load returns
// ErrChecksumMismatch.
//
// # Backends
//
//   - FileStore: one file per version, {name}_v{version}.gob.gz
//   - BadgerStore: embedded BadgerDB, key model:{name}:{version}
//
// Both are safe for concurrent use.
package storage
