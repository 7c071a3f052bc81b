// Cinematch - Movie and Series Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cinematch

// Package logging provides the process-wide zerolog logger.
//
// Initialize once at startup from configuration:
//
//	logging.Init(logging.Config{Level: "info", Format: "json", Timestamp: true})
//
// Components take a zerolog.Logger in their constructors, usually derived
// with Component:
//
//	engine, err := recommend.NewEngine(cfg, logging.Component("recommend"))
//
// HTTP handlers log through Ctx, which attaches the request ID set by the
// API middleware:
//
//	logging.Ctx(r.Context()).Warn().Err(err).Msg("metadata lookup failed")
//
// Libraries that only accept *slog.Logger (the supervisor event hook and
// the message router) get one from NewSlogLogger, so all output shares a
// format and level.
//
// Always terminate an event with Msg or Send; an unterminated event is
// never written.
package logging
