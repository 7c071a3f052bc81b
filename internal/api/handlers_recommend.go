// Cinematch - Movie and Series Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cinematch

package api

import (
	"context"
	"errors"
	"io"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/goccy/go-json"

	"github.com/tomtom215/cinematch/internal/events"
	"github.com/tomtom215/cinematch/internal/logging"
	"github.com/tomtom215/cinematch/internal/models"
	"github.com/tomtom215/cinematch/internal/preference"
	"github.com/tomtom215/cinematch/internal/recommend"
	"github.com/tomtom215/cinematch/internal/validation"
)

func responseMetadata(resp *recommend.Response) models.Metadata {
	return models.Metadata{
		QueryTimeMS:  resp.Latency.Milliseconds(),
		Cached:       resp.Cached,
		ModelVersion: resp.ModelVersion,
	}
}

// respondServeError maps a serving error. The engine only fails on a
// cancelled or expired context.
func respondServeError(w http.ResponseWriter, r *http.Request, err error) {
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		respondError(w, r, http.StatusServiceUnavailable, CodeRequestCancelled, "Request cancelled", err)
		return
	}
	respondError(w, r, http.StatusInternalServerError, CodeInternal, "Failed to generate recommendations", err)
}

// GetRecommendations handles GET /api/v1/recommendations/user/{userID}.
//
// Query parameters:
//   - n: number of results (default recommend.default_n, capped at max_n)
//   - filter_seen: exclude items the user already rated (default true)
//   - platform: availability filter, repeatable or comma-separated
func (h *Handler) GetRecommendations(w http.ResponseWriter, r *http.Request) {
	n, err := getIntParam(r, "n", 0)
	if err != nil {
		respondError(w, r, http.StatusBadRequest, validation.CodeValidationError, err.Error(), nil)
		return
	}
	filterSeen, err := getBoolParam(r, "filter_seen", true)
	if err != nil {
		respondError(w, r, http.StatusBadRequest, validation.CodeValidationError, err.Error(), nil)
		return
	}

	req := UserRecommendationsRequest{
		UserID:     chi.URLParam(r, "userID"),
		N:          n,
		FilterSeen: filterSeen,
		Platforms:  getListParam(r, "platform"),
	}
	if apiErr := validateRequest(&req); apiErr != nil {
		respondValidationError(w, r, apiErr)
		return
	}

	limits := h.engine.Config().Limits
	opts := recommend.Options{
		N:          clampN(req.N, limits.DefaultN, limits.MaxN),
		FilterSeen: req.FilterSeen,
		Categories: req.Platforms,
	}

	resp, err := h.engine.Recommend(r.Context(), req.UserID, opts)
	if err != nil {
		respondServeError(w, r, err)
		return
	}

	respondSuccess(w, r, http.StatusOK, models.RecommendationList{
		UserID:          req.UserID,
		Count:           len(resp.Results),
		Source:          string(resp.Source),
		Recommendations: models.NewRecommendations(resp.Results),
	}, responseMetadata(resp))
}

// GetSimilar handles GET /api/v1/recommendations/similar/{itemID}.
// An unknown item yields an empty list, not an error.
func (h *Handler) GetSimilar(w http.ResponseWriter, r *http.Request) {
	n, err := getIntParam(r, "n", 0)
	if err != nil {
		respondError(w, r, http.StatusBadRequest, validation.CodeValidationError, err.Error(), nil)
		return
	}

	req := SimilarItemsRequest{ItemID: chi.URLParam(r, "itemID"), N: n}
	if apiErr := validateRequest(&req); apiErr != nil {
		respondValidationError(w, r, apiErr)
		return
	}

	limits := h.engine.Config().Limits
	resp, err := h.engine.SimilarItems(r.Context(), req.ItemID, clampN(req.N, limits.DefaultN, limits.MaxN))
	if err != nil {
		respondServeError(w, r, err)
		return
	}

	respondSuccess(w, r, http.StatusOK, models.SimilarList{
		ItemID:  req.ItemID,
		Count:   len(resp.Results),
		Similar: models.NewRecommendations(resp.Results),
	}, responseMetadata(resp))
}

// Query handles POST /api/v1/recommendations/query.
//
// The free-text query is turned into preferences, candidates are fetched
// for the user (or from the popularity fallback when user_id is empty or
// unknown), reranked by preference bonus and optionally diversified.
func (h *Handler) Query(w http.ResponseWriter, r *http.Request) {
	var req QueryRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes)).Decode(&req); err != nil {
		respondError(w, r, http.StatusBadRequest, CodeInvalidJSON, "Invalid JSON body", nil)
		return
	}
	if apiErr := validateRequest(&req); apiErr != nil {
		respondValidationError(w, r, apiErr)
		return
	}

	cfg := h.engine.Config()
	n := clampN(req.N, cfg.Limits.DefaultN, cfg.Limits.MaxN)

	prefs := h.extractor.Extract(r.Context(), req.Text)

	// Over-fetch so the rerank can promote items from below the cut.
	resp, err := h.engine.Recommend(r.Context(), req.UserID, recommend.Options{
		N:          n * cfg.OverFetchFactor,
		FilterSeen: true,
		Categories: req.Platforms,
	})
	if err != nil {
		respondServeError(w, r, err)
		return
	}

	ranked := preference.Rerank(resp.Results, &prefs)
	if req.Diversity {
		ranked = h.diversity.Rerank(ranked, n)
	} else if len(ranked) > n {
		ranked = ranked[:n]
	}

	logging.Ctx(r.Context()).Debug().
		Str("extractor", h.extractor.Name()).
		Strs("genres", prefs.Genres).
		Strs("exclude_genres", prefs.ExcludeGenres).
		Int("candidates", len(resp.Results)).
		Int("returned", len(ranked)).
		Msg("query served")

	respondSuccess(w, r, http.StatusOK, models.RecommendationList{
		UserID:          req.UserID,
		Count:           len(ranked),
		Source:          string(resp.Source),
		Recommendations: models.NewRecommendations(ranked),
		Preferences:     &prefs,
		Extractor:       h.extractor.Name(),
	}, responseMetadata(resp))
}

// TriggerTraining handles POST /api/v1/recommendations/train.
//
// By default the request is published on the event bus and answered with
// 202; the training service picks it up. With ?wait=true training runs
// inline and the outcome is returned: 200 with the new status, 409 when a
// run is already active, 422 when there is too little data.
func (h *Handler) TriggerTraining(w http.ResponseWriter, r *http.Request) {
	var req TrainRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes)).Decode(&req); err != nil && !errors.Is(err, io.EOF) {
		respondError(w, r, http.StatusBadRequest, CodeInvalidJSON, "Invalid JSON body", nil)
		return
	}
	if apiErr := validateRequest(&req); apiErr != nil {
		respondValidationError(w, r, apiErr)
		return
	}
	wait, err := getBoolParam(r, "wait", false)
	if err != nil {
		respondError(w, r, http.StatusBadRequest, validation.CodeValidationError, err.Error(), nil)
		return
	}

	if h.engine.Status().InProgress {
		respondError(w, r, http.StatusConflict, CodeTrainingInProgress, "Training is already in progress", nil)
		return
	}

	if wait {
		h.trainInline(w, r)
		return
	}

	if h.publisher == nil {
		respondError(w, r, http.StatusServiceUnavailable, CodeEventsUnavailable, "Training requests are unavailable", ErrNoPublisher)
		return
	}

	requestID := logging.RequestIDFromContext(r.Context())
	if requestID == "" {
		requestID = logging.NewRequestID()
	}
	reason := req.Reason
	if reason == "" {
		reason = "api"
	}
	if err := h.publisher.PublishTrainRequested(r.Context(), events.TrainRequested{
		RequestID:   requestID,
		Reason:      reason,
		RequestedAt: time.Now(),
	}); err != nil {
		respondError(w, r, http.StatusServiceUnavailable, CodeEventsUnavailable, "Failed to queue training", err)
		return
	}

	logging.Ctx(r.Context()).Info().Str("reason", sanitizeLogValue(reason)).Msg("training requested")
	respondSuccess(w, r, http.StatusAccepted, models.TrainAccepted{
		RequestID: requestID,
		Message:   "Training queued",
	}, models.Metadata{})
}

func (h *Handler) trainInline(w http.ResponseWriter, r *http.Request) {
	err := h.engine.Train(r.Context())
	switch {
	case err == nil:
		status := h.engine.Status()
		respondSuccess(w, r, http.StatusOK, status, models.Metadata{ModelVersion: status.ModelVersion})
	case errors.Is(err, recommend.ErrTrainingInProgress):
		respondError(w, r, http.StatusConflict, CodeTrainingInProgress, "Training is already in progress", nil)
	case errors.Is(err, recommend.ErrInsufficientData):
		respondError(w, r, http.StatusUnprocessableEntity, CodeInsufficientData, err.Error(), err)
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		respondError(w, r, http.StatusServiceUnavailable, CodeRequestCancelled, "Training cancelled", err)
	default:
		respondError(w, r, http.StatusInternalServerError, CodeInternal, "Training failed", err)
	}
}

// statusPayload is the data of GET /recommendations/status.
type statusPayload struct {
	Training recommend.TrainingStatus `json:"training"`
	Config   *recommend.Config        `json:"config"`
}

// GetStatus handles GET /api/v1/recommendations/status.
func (h *Handler) GetStatus(w http.ResponseWriter, r *http.Request) {
	status := h.engine.Status()
	respondSuccess(w, r, http.StatusOK, statusPayload{
		Training: status,
		Config:   h.engine.Config(),
	}, models.Metadata{ModelVersion: status.ModelVersion})
}
