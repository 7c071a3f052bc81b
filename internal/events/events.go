// Cinematch - Movie and Series Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cinematch

package events

import (
	"fmt"
	"time"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/goccy/go-json"
)

// Topics.
const (
	// TopicTrainRequested carries TrainRequested events.
	TopicTrainRequested = "model.train.requested"

	// TopicModelTrained carries ModelTrained events, for successes and
	// failures alike.
	TopicModelTrained = "model.trained"
)

// Metadata keys set on every message.
const (
	MetadataRequestID = "request_id"
	MetadataEventType = "event_type"
)

// TrainRequested asks the recommendation service to retrain.
type TrainRequested struct {
	RequestID   string    `json:"request_id"`
	Reason      string    `json:"reason"`
	RequestedAt time.Time `json:"requested_at"`
}

// ModelTrained reports the outcome of a training run. Error is empty on
// success, in which case Version is the newly published model.
type ModelTrained struct {
	RequestID string        `json:"request_id,omitempty"`
	Version   int           `json:"version"`
	Users     int           `json:"users"`
	Items     int           `json:"items"`
	Rank      int           `json:"rank"`
	Solver    string        `json:"solver"`
	Duration  time.Duration `json:"duration_ns"`
	TrainedAt time.Time     `json:"trained_at"`
	Error     string        `json:"error,omitempty"`
}

// Succeeded reports whether the run published a model.
func (e *ModelTrained) Succeeded() bool {
	return e.Error == ""
}

// NewMessage encodes event as a JSON message.
func NewMessage(eventType, requestID string, event any) (*message.Message, error) {
	payload, err := json.Marshal(event)
	if err != nil {
		return nil, fmt.Errorf("marshal %s: %w", eventType, err)
	}
	msg := message.NewMessage(watermill.NewUUID(), payload)
	msg.Metadata.Set(MetadataEventType, eventType)
	if requestID != "" {
		msg.Metadata.Set(MetadataRequestID, requestID)
	}
	return msg, nil
}

// Decode unmarshals a message payload into out.
func Decode(msg *message.Message, out any) error {
	if err := json.Unmarshal(msg.Payload, out); err != nil {
		return fmt.Errorf("unmarshal %s: %w", msg.Metadata.Get(MetadataEventType), err)
	}
	return nil
}
