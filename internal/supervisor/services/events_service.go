// Cinematch - Movie and Series Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cinematch

package services

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"
	"github.com/thejerf/suture/v4"
)

// EventRouter is the lifecycle subset of *events.Bus.
type EventRouter interface {
	Run(ctx context.Context) error
}

// EventBusService runs the event router under supervision. Handlers must
// be registered on the bus before the tree starts.
//
// A closed router cannot be started again, so an unexpected exit is
// reported with suture.ErrDoNotRestart instead of looping.
type EventBusService struct {
	router EventRouter
	logger zerolog.Logger
}

// NewEventBusService wraps router.
//
//nolint:gocritic // logger passed by value is acceptable for zerolog
func NewEventBusService(router EventRouter, logger zerolog.Logger) *EventBusService {
	return &EventBusService{
		router: router,
		logger: logger.With().Str("service", "event-bus").Logger(),
	}
}

// Serve implements suture.Service.
func (s *EventBusService) Serve(ctx context.Context) error {
	s.logger.Info().Msg("event router starting")
	err := s.router.Run(ctx)
	if ctx.Err() != nil {
		return ctx.Err()
	}
	if err != nil {
		s.logger.Error().Err(err).Msg("event router stopped")
		return fmt.Errorf("%w: event router: %v", suture.ErrDoNotRestart, err)
	}
	s.logger.Warn().Msg("event router closed")
	return suture.ErrDoNotRestart
}

// String identifies the service in supervisor events.
func (s *EventBusService) String() string {
	return "event-bus"
}
