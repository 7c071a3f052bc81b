// Cinematch - Movie and Series Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cinematch

package events

import (
	"context"
	"fmt"
	"time"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/message/router/middleware"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	"github.com/rs/zerolog"
)

// Config holds bus and router settings.
type Config struct {
	// OutputBuffer is the per-subscriber channel buffer.
	OutputBuffer int64

	// CloseTimeout is how long Close waits for in-flight handlers.
	CloseTimeout time.Duration

	RetryMaxRetries      int
	RetryInitialInterval time.Duration
	RetryMaxInterval     time.Duration
}

// DefaultConfig returns production defaults.
func DefaultConfig() Config {
	return Config{
		OutputBuffer:         64,
		CloseTimeout:         30 * time.Second,
		RetryMaxRetries:      2,
		RetryInitialInterval: time.Second,
		RetryMaxInterval:     10 * time.Second,
	}
}

// Publisher publishes domain events. *Bus implements it.
type Publisher interface {
	PublishTrainRequested(ctx context.Context, event TrainRequested) error
	PublishModelTrained(ctx context.Context, event ModelTrained) error
}

// Bus is an in-process pub/sub with a router for consumers. Messages are
// not persisted; events published before a handler subscribes are lost.
type Bus struct {
	pubsub *gochannel.GoChannel
	router *message.Router
	logger zerolog.Logger
}

// NewBus creates the pub/sub and its router with recovery and retry
// middleware installed.
//
//nolint:gocritic // logger passed by value is acceptable for zerolog
func NewBus(cfg Config, logger zerolog.Logger) (*Bus, error) {
	def := DefaultConfig()
	if cfg.OutputBuffer <= 0 {
		cfg.OutputBuffer = def.OutputBuffer
	}
	if cfg.CloseTimeout <= 0 {
		cfg.CloseTimeout = def.CloseTimeout
	}
	if cfg.RetryInitialInterval <= 0 {
		cfg.RetryInitialInterval = def.RetryInitialInterval
	}
	if cfg.RetryMaxInterval <= 0 {
		cfg.RetryMaxInterval = def.RetryMaxInterval
	}

	logger = logger.With().Str("component", "events").Logger()
	wmLogger := NewLoggerAdapter(logger)

	pubsub := gochannel.NewGoChannel(gochannel.Config{
		OutputChannelBuffer: cfg.OutputBuffer,
	}, wmLogger)

	router, err := message.NewRouter(message.RouterConfig{CloseTimeout: cfg.CloseTimeout}, wmLogger)
	if err != nil {
		_ = pubsub.Close()
		return nil, fmt.Errorf("create router: %w", err)
	}

	router.AddMiddleware(middleware.Recoverer)
	if cfg.RetryMaxRetries > 0 {
		retry := middleware.Retry{
			MaxRetries:      cfg.RetryMaxRetries,
			InitialInterval: cfg.RetryInitialInterval,
			MaxInterval:     cfg.RetryMaxInterval,
			Multiplier:      2.0,
			Logger:          wmLogger,
		}
		router.AddMiddleware(retry.Middleware)
	}

	return &Bus{pubsub: pubsub, router: router, logger: logger}, nil
}

// Handle registers a consumer for topic. Handlers must be registered
// before Run.
func (b *Bus) Handle(name, topic string, handler message.NoPublishHandlerFunc) {
	b.router.AddConsumerHandler(name, topic, b.pubsub, handler)
}

// Run starts the router and blocks until ctx is cancelled or Close is
// called.
func (b *Bus) Run(ctx context.Context) error {
	return b.router.Run(ctx)
}

// Running is closed once all handlers are subscribed.
func (b *Bus) Running() chan struct{} {
	return b.router.Running()
}

// Subscribe returns a raw subscription, bypassing the router.
func (b *Bus) Subscribe(ctx context.Context, topic string) (<-chan *message.Message, error) {
	return b.pubsub.Subscribe(ctx, topic)
}

// Close stops the router and the pub/sub.
func (b *Bus) Close() error {
	rerr := b.router.Close()
	perr := b.pubsub.Close()
	if rerr != nil {
		return rerr
	}
	return perr
}

// PublishTrainRequested implements Publisher.
func (b *Bus) PublishTrainRequested(_ context.Context, event TrainRequested) error {
	return b.publish(TopicTrainRequested, event.RequestID, event)
}

// PublishModelTrained implements Publisher.
func (b *Bus) PublishModelTrained(_ context.Context, event ModelTrained) error {
	return b.publish(TopicModelTrained, event.RequestID, event)
}

func (b *Bus) publish(topic, requestID string, event any) error {
	msg, err := NewMessage(topic, requestID, event)
	if err != nil {
		return err
	}
	if err := b.pubsub.Publish(topic, msg); err != nil {
		return fmt.Errorf("publish %s: %w", topic, err)
	}
	b.logger.Debug().Str("topic", topic).Str("message_id", msg.UUID).Msg("event published")
	return nil
}

var _ Publisher = (*Bus)(nil)

// compile-time check that the adapter satisfies watermill's interface
var _ watermill.LoggerAdapter = (*zerologAdapter)(nil)
