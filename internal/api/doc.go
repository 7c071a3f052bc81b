// Cinematch - Movie and Series Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cinematch

/*
Package api provides the HTTP interface for Cinematch.

Routing uses Chi. Every response is wrapped in a models.APIResponse envelope.

# Endpoints

	GET  /api/v1/health                                   liveness and model state
	GET  /api/v1/recommendations/user/{userID}            personalized recommendations
	GET  /api/v1/recommendations/similar/{itemID}         item-to-item neighbours
	POST /api/v1/recommendations/query                    free-text recommendations
	POST /api/v1/recommendations/train                    queue a training run
	GET  /api/v1/recommendations/status                   training status
	GET  /metrics                                         Prometheus metrics

User recommendations accept n (default recommend.default_n, capped at
recommend.max_n), filter_seen (default true) and platform, which may repeat
or be comma-separated:

	GET /api/v1/recommendations/user/42?n=5&platform=Netflix,Hulu

The query endpoint takes a JSON body:

	{"text": "funny 90s movies without horror", "n": 10, "user_id": "42", "diversity": true}

# Middleware

Applied to every route, in order: request ID with logging context, RealIP,
Recoverer, CORS (go-chi/cors). API routes add per-IP rate limiting
(go-chi/httprate) and Prometheus request metrics.

# Errors

Error responses carry a machine-readable code: VALIDATION_ERROR,
INVALID_JSON, INSUFFICIENT_DATA (422), TRAINING_IN_PROGRESS (409),
EVENTS_UNAVAILABLE (503), RATE_LIMIT_EXCEEDED (429) and INTERNAL_ERROR.
*/
package api
