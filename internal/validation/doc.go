// Cinematch - Movie and Series Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cinematch

// Package validation wraps go-playground/validator v10 with a shared
// instance and messages shaped for the API's VALIDATION_ERROR responses.
//
//	type QueryRequest struct {
//	    Text string `json:"text" validate:"required,notblank,max=500"`
//	    N    int    `json:"n" validate:"gte=0,lte=100"`
//	}
//
//	if verr := validation.ValidateStruct(&req); verr != nil {
//	    apiErr := verr.ToAPIError()
//	    // respond 400 with apiErr.Code and apiErr.Message
//	}
//
// Config structs are validated with the same instance; their koanf tags
// name the fields in error messages.
package validation
