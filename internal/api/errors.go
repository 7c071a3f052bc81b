// Cinematch - Movie and Series Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cinematch

package api

import "errors"

// Error codes returned in models.APIError.Code.
const (
	CodeInvalidJSON        = "INVALID_JSON"
	CodeInsufficientData   = "INSUFFICIENT_DATA"
	CodeTrainingInProgress = "TRAINING_IN_PROGRESS"
	CodeEventsUnavailable  = "EVENTS_UNAVAILABLE"
	CodeRateLimited        = "RATE_LIMIT_EXCEEDED"
	CodeRequestCancelled   = "REQUEST_CANCELLED"
	CodeInternal           = "INTERNAL_ERROR"
)

// ErrNoPublisher indicates training was requested without an event bus.
var ErrNoPublisher = errors.New("no event publisher configured")
