// Cinematch - Movie and Series Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cinematch

package api

import (
	"time"

	"github.com/tomtom215/cinematch/internal/events"
	"github.com/tomtom215/cinematch/internal/preference"
	"github.com/tomtom215/cinematch/internal/recommend"
	"github.com/tomtom215/cinematch/internal/recommend/reranking"
)

// maxBodyBytes caps JSON request bodies.
const maxBodyBytes = 64 << 10

// HandlerConfig holds serving options that are not part of the engine.
type HandlerConfig struct {
	// DiversityLambda is the MMR relevance weight for diverse queries.
	DiversityLambda float64

	// Version is reported by the health endpoint.
	Version string
}

// Handler serves the recommendation endpoints.
type Handler struct {
	engine    *recommend.Engine
	extractor preference.Extractor
	publisher events.Publisher
	diversity *reranking.MMR
	version   string
	startTime time.Time
}

// NewHandler creates a handler. A nil extractor defaults to the pattern
// extractor. A nil publisher disables asynchronous training requests.
func NewHandler(engine *recommend.Engine, extractor preference.Extractor, publisher events.Publisher, cfg HandlerConfig) *Handler {
	if extractor == nil {
		extractor = preference.NewPattern()
	}
	return &Handler{
		engine:    engine,
		extractor: extractor,
		publisher: publisher,
		diversity: reranking.NewMMR(cfg.DiversityLambda),
		version:   cfg.Version,
		startTime: time.Now(),
	}
}
