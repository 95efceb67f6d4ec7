// Reclens - User-Based Collaborative Filtering over MovieLens-Style Ratings
// Copyright 2026 The Reclens Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/reclens-io/reclens

package services

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/rs/zerolog"
)

// mockTrainingEngine counts Train calls.
type mockTrainingEngine struct {
	calls atomic.Int64
	err   error
}

func (m *mockTrainingEngine) Train(_ context.Context) error {
	m.calls.Add(1)
	return m.err
}

func TestTrainingServiceTrainsOnStartup(t *testing.T) {
	t.Parallel()

	engine := &mockTrainingEngine{}
	svc := NewTrainingService(engine, TrainingServiceConfig{
		TrainOnStartup: true,
		TrainInterval:  time.Hour,
	}, zerolog.Nop())

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() {
		done <- svc.Serve(ctx)
	}()

	// Startup training happens before the ticker loop
	deadline := time.After(2 * time.Second)
	for engine.calls.Load() == 0 {
		select {
		case <-deadline:
			t.Fatal("startup training never ran")
		case <-time.After(10 * time.Millisecond):
		}
	}

	cancel()
	if err := <-done; !errors.Is(err, context.Canceled) {
		t.Errorf("Serve() = %v, want context.Canceled", err)
	}
}

func TestTrainingServicePeriodicRetraining(t *testing.T) {
	t.Parallel()

	engine := &mockTrainingEngine{}
	svc := NewTrainingService(engine, TrainingServiceConfig{
		TrainOnStartup: false,
		TrainInterval:  20 * time.Millisecond,
	}, zerolog.Nop())

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() {
		done <- svc.Serve(ctx)
	}()

	deadline := time.After(2 * time.Second)
	for engine.calls.Load() < 2 {
		select {
		case <-deadline:
			t.Fatalf("expected at least 2 scheduled runs, got %d", engine.calls.Load())
		case <-time.After(10 * time.Millisecond):
		}
	}

	cancel()
	<-done
}

func TestTrainingServiceSurvivesTrainingFailure(t *testing.T) {
	t.Parallel()

	engine := &mockTrainingEngine{err: errors.New("load failed")}
	svc := NewTrainingService(engine, TrainingServiceConfig{
		TrainOnStartup: true,
		TrainInterval:  20 * time.Millisecond,
	}, zerolog.Nop())

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() {
		done <- svc.Serve(ctx)
	}()

	// Failures are logged and retried, never returned from Serve
	deadline := time.After(2 * time.Second)
	for engine.calls.Load() < 2 {
		select {
		case <-deadline:
			t.Fatalf("expected retries after failure, got %d calls", engine.calls.Load())
		case <-time.After(10 * time.Millisecond):
		}
	}

	cancel()
	if err := <-done; !errors.Is(err, context.Canceled) {
		t.Errorf("Serve() = %v, want context.Canceled", err)
	}
}

func TestTrainingServiceDefaults(t *testing.T) {
	t.Parallel()

	svc := NewTrainingService(&mockTrainingEngine{}, TrainingServiceConfig{}, zerolog.Nop())
	if svc.config.TrainInterval != 24*time.Hour {
		t.Errorf("TrainInterval = %v, want 24h", svc.config.TrainInterval)
	}
	if svc.config.TrainTimeout != 30*time.Minute {
		t.Errorf("TrainTimeout = %v, want 30m", svc.config.TrainTimeout)
	}
	if svc.String() != "training-service" {
		t.Errorf("String() = %q", svc.String())
	}
}
