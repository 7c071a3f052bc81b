// Cinematch - Movie and Series Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cinematch

package recommend

import "errors"

var (
	// ErrInsufficientData is returned by Train when the filtered data cannot
	// support a model of rank one or more.
	ErrInsufficientData = errors.New("insufficient data")

	// ErrTrainingInProgress is returned when Train is called while another
	// training run holds the lock.
	ErrTrainingInProgress = errors.New("training already in progress")

	// ErrNoDataProvider is returned by Train when no interaction source is set.
	ErrNoDataProvider = errors.New("no data provider configured")

	// ErrNoModel is returned by operations that need a trained model.
	ErrNoModel = errors.New("no trained model")
)
