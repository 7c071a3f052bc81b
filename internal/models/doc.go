// Cinematch - Movie and Series Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cinematch

/*
Package models defines the HTTP response structures for Cinematch.

Every endpoint answers with an APIResponse envelope:

  - APIResponse: status, data, metadata and an optional error
  - Metadata: timestamp, serving latency, cache flag, model version
  - APIError: machine-readable code, message and details

Payloads:

  - RecommendationList: user and free-text query recommendations
  - SimilarList: item-to-item neighbours
  - HealthStatus: liveness and model state

NewRecommendation flattens a recommend.Result and its catalog metadata into
the wire shape, substituting placeholder metadata when none was resolved.
*/
package models
