// Cinematch - Movie and Series Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cinematch

package models

import (
	"time"
)

// APIResponse represents a standardized API response wrapper used by all HTTP endpoints.
// It provides consistent structure for both successful and error responses, with metadata
// for observability and caching information.
//
// Status field values:
//   - "success": Request completed successfully, see Data field
//   - "error": Request failed, see Error field for details
//
// Example successful response:
//
//	{
//	  "status": "success",
//	  "data": {"user_id": "42", "count": 10, "source": "model", "recommendations": [...]},
//	  "metadata": {
//	    "timestamp": "2026-10-18T12:00:00Z",
//	    "query_time_ms": 3,
//	    "model_version": 7
//	  }
//	}
//
// Example error response:
//
//	{
//	  "status": "error",
//	  "error": {
//	    "code": "VALIDATION_ERROR",
//	    "message": "text is required",
//	    "details": {"text": "text is required"}
//	  },
//	  "metadata": {"timestamp": "2026-10-18T12:00:00Z"}
//	}
type APIResponse struct {
	Status   string      `json:"status"`
	Data     interface{} `json:"data"`
	Metadata Metadata    `json:"metadata"`
	Error    *APIError   `json:"error,omitempty"`
}

// Metadata contains response metadata for observability.
//
// Fields:
//   - Timestamp: Server time when response was generated (RFC3339 format)
//   - QueryTimeMS: Serving latency in milliseconds
//   - Cached: Whether the response came from the engine's response cache
//   - ModelVersion: Version of the model that served the request (omitted if none)
//   - RequestID: Request ID for correlating with server logs
type Metadata struct {
	Timestamp    time.Time `json:"timestamp"`
	QueryTimeMS  int64     `json:"query_time_ms,omitempty"`
	Cached       bool      `json:"cached,omitempty"`
	ModelVersion int       `json:"model_version,omitempty"`
	RequestID    string    `json:"request_id,omitempty"`
}

// APIError represents an error response with structured error details.
//
// Common error codes:
//   - VALIDATION_ERROR: Invalid request parameters
//   - INVALID_JSON: Request body could not be decoded
//   - INSUFFICIENT_DATA: Too few interactions to train a model
//   - TRAINING_IN_PROGRESS: A training run is already active
//   - RATE_LIMIT_EXCEEDED: Too many requests from the client IP
//   - INTERNAL_ERROR: Unexpected server error
type APIError struct {
	Code    string                 `json:"code"`
	Message string                 `json:"message"`
	Details map[string]interface{} `json:"details,omitempty"`
}
