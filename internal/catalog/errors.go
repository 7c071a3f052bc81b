// Cinematch - Movie and Series Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cinematch

package catalog

import "errors"

// ErrUnavailable is returned when the metadata backend cannot be reached,
// times out, or is shed by the circuit breaker.
var ErrUnavailable = errors.New("metadata store unavailable")
