// Cinematch - Movie and Series Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cinematch

// Package events carries training lifecycle events over an in-process
// watermill pub/sub.
//
// The HTTP train endpoint publishes TrainRequested on
// "model.train.requested"; TrainHandler consumes it, runs the engine and
// publishes ModelTrained on "model.trained". Payloads are JSON.
//
// The bus runs as a supervised service: Run blocks until its context is
// cancelled.
package events
