// Cinematch - Movie and Series Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cinematch

/*
Package services adapts Cinematch components to suture.Service.

Each wrapper translates a component's own lifecycle (ListenAndServe,
router Run, a ticker loop) into Serve(ctx) with graceful shutdown on
context cancellation, and implements fmt.Stringer so supervisor events
name the service.

# Available Services

HTTPServerService wraps *http.Server. Cancellation calls Shutdown with a
bounded drain timeout; http.ErrServerClosed is not treated as a failure.

EventBusService runs the events.Bus router. A router that exits on its
own is not restarted, since watermill routers cannot be reused.

RecommendService schedules training: optionally once at startup, then on
a fixed interval. Training errors are logged and the previous model keeps
serving. ErrTrainingInProgress is logged at info, since an on-demand run
from the API may already hold the training lock.
*/
package services
