// Cinematch - Movie and Series Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cinematch

/*
Package supervisor provides process supervision for Cinematch using suture v4.

# Overview

Long-running services are organized into three layers for failure
isolation:

	cinematch
	├── data-layer
	│   └── EventBusService
	├── messaging-layer
	│   └── RecommendService (startup and scheduled training)
	└── api-layer
	    └── HTTPServerService

A training run that panics or loops on failure is restarted with backoff
inside the messaging layer while the API keeps answering from the last
installed model.

# Logging

Supervisor events are routed through sutureslog. Pass an *slog.Logger
backed by zerolog so they share the application's output:

	tree, err := supervisor.NewSupervisorTree(
	    logging.NewSlogLogger(logging.Logger()),
	    supervisor.DefaultTreeConfig(),
	)

# Shutdown

Serve returns once ctx is cancelled and every service has stopped or
exceeded TreeConfig.ShutdownTimeout. Services that did not stop are logged.
*/
package supervisor
