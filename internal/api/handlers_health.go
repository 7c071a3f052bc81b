// Cinematch - Movie and Series Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cinematch

package api

import (
	"net/http"
	"time"

	"github.com/tomtom215/cinematch/internal/models"
)

func (h *Handler) healthStatus() models.HealthStatus {
	status := models.HealthStatus{
		Status:   "healthy",
		Training: h.engine.Status().InProgress,
		Uptime:   time.Since(h.startTime).Seconds(),
		Version:  h.version,
	}
	if m := h.engine.Model(); m != nil {
		status.ModelLoaded = true
		status.ModelVersion = m.Version
	}
	return status
}

// Health handles GET /api/v1/health.
// The service is healthy without a model; unknown users are served from the
// popularity fallback until the first training run completes.
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	respondSuccess(w, r, http.StatusOK, h.healthStatus(), models.Metadata{})
}

// HealthLive handles GET /api/v1/health/live.
func (h *Handler) HealthLive(w http.ResponseWriter, r *http.Request) {
	respondSuccess(w, r, http.StatusOK, map[string]string{"status": "alive"}, models.Metadata{})
}

// HealthReady handles GET /api/v1/health/ready. It reports 503 until a
// model is serving.
func (h *Handler) HealthReady(w http.ResponseWriter, r *http.Request) {
	status := h.healthStatus()
	if !status.ModelLoaded {
		status.Status = "not_ready"
		respondJSON(w, http.StatusServiceUnavailable, &models.APIResponse{
			Status:   "error",
			Data:     status,
			Metadata: models.Metadata{Timestamp: time.Now()},
			Error:    &models.APIError{Code: "NOT_READY", Message: "No model has been trained yet"},
		})
		return
	}
	status.Status = "ready"
	respondSuccess(w, r, http.StatusOK, status, models.Metadata{})
}
