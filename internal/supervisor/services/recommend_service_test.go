// Cinematch - Movie and Series Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cinematch

package services

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/tomtom215/cinematch/internal/recommend"
)

type mockTrainer struct {
	mu         sync.Mutex
	trainCalls int
	trainErr   error
	trainDelay time.Duration
	model      *recommend.Model
}

func (m *mockTrainer) Train(ctx context.Context) error {
	m.mu.Lock()
	m.trainCalls++
	delay, err := m.trainDelay, m.trainErr
	m.mu.Unlock()

	if delay > 0 {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(delay):
		}
	}
	return err
}

func (m *mockTrainer) Model() *recommend.Model {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.model
}

func (m *mockTrainer) calls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.trainCalls
}

func runFor(t *testing.T, svc *RecommendService, d time.Duration) error {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), d)
	defer cancel()
	return svc.Serve(ctx)
}

func TestRecommendService_Startup(t *testing.T) {
	tests := []struct {
		name      string
		cfg       RecommendServiceConfig
		model     *recommend.Model
		wantCalls int
	}{
		{"trains on startup", RecommendServiceConfig{TrainOnStartup: true}, nil, 1},
		{"startup disabled", RecommendServiceConfig{}, nil, 0},
		{"restored model skips", RecommendServiceConfig{TrainOnStartup: true, SkipStartupIfLoaded: true}, &recommend.Model{Version: 4}, 0},
		{"no restored model", RecommendServiceConfig{TrainOnStartup: true, SkipStartupIfLoaded: true}, nil, 1},
		{"restored model without skip", RecommendServiceConfig{TrainOnStartup: true}, &recommend.Model{Version: 4}, 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			trainer := &mockTrainer{model: tt.model}
			err := runFor(t, NewRecommendService(trainer, tt.cfg, zerolog.Nop()), 100*time.Millisecond)
			if !errors.Is(err, context.DeadlineExceeded) {
				t.Errorf("Serve() error = %v", err)
			}
			if got := trainer.calls(); got != tt.wantCalls {
				t.Errorf("Train() called %d times, want %d", got, tt.wantCalls)
			}
		})
	}
}

func TestRecommendService_ScheduledTraining(t *testing.T) {
	trainer := &mockTrainer{}
	svc := NewRecommendService(trainer, RecommendServiceConfig{TrainInterval: 50 * time.Millisecond}, zerolog.Nop())

	_ = runFor(t, svc, 130*time.Millisecond)

	if got := trainer.calls(); got < 2 {
		t.Errorf("Train() called %d times, want >= 2", got)
	}
}

func TestRecommendService_ZeroIntervalNeverTicks(t *testing.T) {
	trainer := &mockTrainer{}
	svc := NewRecommendService(trainer, RecommendServiceConfig{}, zerolog.Nop())

	_ = runFor(t, svc, 100*time.Millisecond)

	if got := trainer.calls(); got != 0 {
		t.Errorf("Train() called %d times, want 0", got)
	}
}

func TestRecommendService_KeepsRunningAfterTrainingErrors(t *testing.T) {
	errs := []error{
		recommend.ErrTrainingInProgress,
		fmt.Errorf("train: %w", recommend.ErrInsufficientData),
		errors.New("disk on fire"),
	}
	for _, trainErr := range errs {
		t.Run(trainErr.Error(), func(t *testing.T) {
			trainer := &mockTrainer{trainErr: trainErr}
			svc := NewRecommendService(trainer, RecommendServiceConfig{
				TrainOnStartup: true,
				TrainInterval:  30 * time.Millisecond,
			}, zerolog.Nop())

			err := runFor(t, svc, 100*time.Millisecond)
			if !errors.Is(err, context.DeadlineExceeded) {
				t.Errorf("Serve() error = %v, want deadline", err)
			}
			if got := trainer.calls(); got < 2 {
				t.Errorf("Train() called %d times, want >= 2", got)
			}
		})
	}
}

func TestRecommendService_GracefulShutdown(t *testing.T) {
	trainer := &mockTrainer{trainDelay: time.Second}
	svc := NewRecommendService(trainer, RecommendServiceConfig{TrainOnStartup: true}, zerolog.Nop())

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- svc.Serve(ctx) }()

	time.Sleep(20 * time.Millisecond)
	cancel()

	select {
	case err := <-done:
		if !errors.Is(err, context.Canceled) {
			t.Errorf("Serve() = %v, want context.Canceled", err)
		}
	case <-time.After(time.Second):
		t.Fatal("Serve() did not return after cancel")
	}
}

func TestRecommendService_String(t *testing.T) {
	if got := NewRecommendService(&mockTrainer{}, RecommendServiceConfig{}, zerolog.Nop()).String(); got != "recommend-service" {
		t.Errorf("String() = %q", got)
	}
}
