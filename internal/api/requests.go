// Cinematch - Movie and Series Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cinematch

package api

// UserRecommendationsRequest holds the validated parameters of
// GET /recommendations/user/{userID}.
type UserRecommendationsRequest struct {
	UserID     string   `json:"user_id" validate:"required,notblank,max=256"`
	N          int      `json:"n" validate:"gte=0"`
	FilterSeen bool     `json:"filter_seen"`
	Platforms  []string `json:"platform" validate:"max=32,dive,notblank"`
}

// SimilarItemsRequest holds the validated parameters of
// GET /recommendations/similar/{itemID}.
type SimilarItemsRequest struct {
	ItemID string `json:"item_id" validate:"required,notblank,max=256"`
	N      int    `json:"n" validate:"gte=0"`
}

// QueryRequest is the body of POST /recommendations/query.
type QueryRequest struct {
	Text      string   `json:"text" validate:"required,notblank,max=1000"`
	N         int      `json:"n" validate:"gte=0"`
	UserID    string   `json:"user_id" validate:"max=256"`
	Platforms []string `json:"platforms" validate:"max=32,dive,notblank"`
	Diversity bool     `json:"diversity"`
}

// TrainRequest is the optional body of POST /recommendations/train.
type TrainRequest struct {
	Reason string `json:"reason" validate:"max=256"`
}
