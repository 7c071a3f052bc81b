// Cinematch - Movie and Series Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cinematch

package services

import (
	"context"
	"errors"
	"time"

	"github.com/rs/zerolog"

	"github.com/tomtom215/cinematch/internal/recommend"
)

// Trainer is the part of *recommend.Engine the scheduler drives.
type Trainer interface {
	Train(ctx context.Context) error
	Model() *recommend.Model
}

// RecommendServiceConfig controls when the scheduler trains.
type RecommendServiceConfig struct {
	// TrainOnStartup trains once when the service starts.
	TrainOnStartup bool

	// SkipStartupIfLoaded suppresses the startup run when a model was
	// restored from the model store.
	SkipStartupIfLoaded bool

	// TrainInterval is the retraining period. Zero disables scheduled
	// retraining; training then only happens on request.
	TrainInterval time.Duration
}

// RecommendService schedules training runs for the engine. Training
// failures are logged and never stop the service; the serving model is
// only replaced by a successful run.
type RecommendService struct {
	trainer Trainer
	config  RecommendServiceConfig
	logger  zerolog.Logger
}

// NewRecommendService creates the training scheduler.
//
//nolint:gocritic // logger passed by value is acceptable for zerolog
func NewRecommendService(trainer Trainer, cfg RecommendServiceConfig, logger zerolog.Logger) *RecommendService {
	return &RecommendService{
		trainer: trainer,
		config:  cfg,
		logger:  logger.With().Str("service", "recommend").Logger(),
	}
}

// Serve implements suture.Service.
func (s *RecommendService) Serve(ctx context.Context) error {
	s.logger.Info().
		Bool("train_on_startup", s.config.TrainOnStartup).
		Dur("train_interval", s.config.TrainInterval).
		Msg("recommendation service starting")

	if s.config.TrainOnStartup {
		if s.config.SkipStartupIfLoaded && s.trainer.Model() != nil {
			s.logger.Info().Int("model_version", s.trainer.Model().Version).Msg("restored model found, skipping startup training")
		} else {
			s.train(ctx, "startup")
		}
	}

	var tick <-chan time.Time
	if s.config.TrainInterval > 0 {
		ticker := time.NewTicker(s.config.TrainInterval)
		defer ticker.Stop()
		tick = ticker.C
	}

	for {
		select {
		case <-ctx.Done():
			s.logger.Info().Msg("recommendation service shutting down")
			return ctx.Err()
		case <-tick:
			s.train(ctx, "scheduled")
		}
	}
}

func (s *RecommendService) train(ctx context.Context, reason string) {
	log := s.logger.With().Str("reason", reason).Logger()
	start := time.Now()
	log.Info().Msg("starting model training")

	err := s.trainer.Train(ctx)
	switch {
	case err == nil:
		ev := log.Info().Dur("duration", time.Since(start))
		if m := s.trainer.Model(); m != nil {
			ev = ev.Int("model_version", m.Version)
		}
		ev.Msg("model training complete")
	case errors.Is(err, recommend.ErrTrainingInProgress):
		log.Info().Msg("training already in progress, skipped")
	case errors.Is(err, recommend.ErrInsufficientData):
		log.Warn().Err(err).Msg("not enough interactions to train, keeping current model")
	case ctx.Err() != nil:
		log.Info().Msg("training cancelled")
	default:
		log.Error().Err(err).Msg("model training failed")
	}
}

// String identifies the service in supervisor events.
func (s *RecommendService) String() string {
	return "recommend-service"
}
