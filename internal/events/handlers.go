// Cinematch - Movie and Series Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cinematch

package events

import (
	"context"
	"errors"
	"time"

	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/rs/zerolog"

	"github.com/tomtom215/cinematch/internal/recommend"
)

// Trainer is the part of the recommendation engine the training handler
// drives.
type Trainer interface {
	Train(ctx context.Context) error
	Status() recommend.TrainingStatus
}

// TrainHandler consumes TrainRequested events, runs a training pass and
// publishes ModelTrained with the outcome. A request that arrives while
// another run is active is acknowledged and dropped. Failed runs are
// reported, not retried.
type TrainHandler struct {
	trainer   Trainer
	publisher Publisher
	logger    zerolog.Logger
}

// NewTrainHandler creates a training handler.
//
//nolint:gocritic // logger passed by value is acceptable for zerolog
func NewTrainHandler(trainer Trainer, publisher Publisher, logger zerolog.Logger) *TrainHandler {
	return &TrainHandler{
		trainer:   trainer,
		publisher: publisher,
		logger:    logger.With().Str("handler", "train").Logger(),
	}
}

// Handle implements message.NoPublishHandlerFunc. A malformed payload is
// returned as an error so the router's retry middleware logs it.
func (h *TrainHandler) Handle(msg *message.Message) error {
	var req TrainRequested
	if err := Decode(msg, &req); err != nil {
		return err
	}

	log := h.logger.With().Str("request_id", req.RequestID).Str("reason", req.Reason).Logger()
	log.Info().Msg("training requested")

	start := time.Now()
	err := h.trainer.Train(msg.Context())
	if errors.Is(err, recommend.ErrTrainingInProgress) {
		log.Info().Msg("training already in progress, request dropped")
		return nil
	}

	status := h.trainer.Status()
	out := ModelTrained{
		RequestID: req.RequestID,
		Version:   status.ModelVersion,
		Users:     status.Users,
		Items:     status.Items,
		Rank:      status.Rank,
		Solver:    status.Solver,
		Duration:  time.Since(start),
		TrainedAt: time.Now(),
	}
	if err != nil {
		out.Error = err.Error()
	}

	if h.publisher != nil {
		if perr := h.publisher.PublishModelTrained(msg.Context(), out); perr != nil {
			log.Warn().Err(perr).Msg("failed to publish training result")
		}
	}
	return nil
}
