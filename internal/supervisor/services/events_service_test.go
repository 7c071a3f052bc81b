// Cinematch - Movie and Series Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cinematch

package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/rs/zerolog"
	"github.com/thejerf/suture/v4"

	"github.com/tomtom215/cinematch/internal/events"
)

type stubRouter struct {
	err error
}

func (s stubRouter) Run(context.Context) error { return s.err }

func TestEventBusService_RunsBus(t *testing.T) {
	bus, err := events.NewBus(events.DefaultConfig(), zerolog.Nop())
	if err != nil {
		t.Fatalf("NewBus() error = %v", err)
	}
	t.Cleanup(func() { _ = bus.Close() })
	bus.Handle("noop", "test.topic", func(*message.Message) error { return nil })

	svc := NewEventBusService(bus, zerolog.Nop())
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- svc.Serve(ctx) }()

	select {
	case <-bus.Running():
	case <-time.After(2 * time.Second):
		t.Fatal("router never reported running")
	}
	cancel()

	select {
	case err := <-done:
		if !errors.Is(err, context.Canceled) {
			t.Errorf("Serve() = %v, want context.Canceled", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("Serve() did not return")
	}
}

func TestEventBusService_DoesNotRestartClosedRouter(t *testing.T) {
	tests := []struct {
		name string
		err  error
	}{
		{"clean exit", nil},
		{"router error", errors.New("boom")},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := NewEventBusService(stubRouter{err: tt.err}, zerolog.Nop()).Serve(context.Background())
			if !errors.Is(err, suture.ErrDoNotRestart) {
				t.Errorf("Serve() = %v, want ErrDoNotRestart", err)
			}
		})
	}
}
