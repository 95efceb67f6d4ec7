// Reclens - User-Based Collaborative Filtering over MovieLens-Style Ratings
// Copyright 2026 The Reclens Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/reclens-io/reclens

// Package services provides suture service wrappers for the application's
// long-lived components.
package services

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"github.com/reclens-io/reclens/internal/metrics"
)

// TrainingEngine defines the interface the training service drives.
// It allows the service to work with the engine without circular imports.
type TrainingEngine interface {
	// Train rebuilds the model from the data provider's observations.
	Train(ctx context.Context) error
}

// TrainingServiceConfig holds configuration for the training service.
type TrainingServiceConfig struct {
	// TrainOnStartup triggers training when the service starts.
	TrainOnStartup bool

	// TrainInterval is how often to retrain the model.
	// Default: 24h
	TrainInterval time.Duration

	// TrainTimeout bounds a single training run.
	// Default: 30m
	TrainTimeout time.Duration
}

// TrainingService keeps the recommendation model fresh under suture
// supervision. It optionally trains at startup, then retrains on a
// fixed interval until the context is canceled.
type TrainingService struct {
	engine TrainingEngine
	config TrainingServiceConfig
	logger zerolog.Logger
	name   string
}

// NewTrainingService creates a new training service.
//
//nolint:gocritic // logger passed by value is acceptable for zerolog
func NewTrainingService(engine TrainingEngine, cfg TrainingServiceConfig, logger zerolog.Logger) *TrainingService {
	if cfg.TrainInterval <= 0 {
		cfg.TrainInterval = 24 * time.Hour
	}
	if cfg.TrainTimeout <= 0 {
		cfg.TrainTimeout = 30 * time.Minute
	}
	return &TrainingService{
		engine: engine,
		config: cfg,
		logger: logger.With().Str("service", "training").Logger(),
		name:   "training-service",
	}
}

// Serve implements the suture.Service interface.
// It manages the training loop for the recommendation engine.
func (s *TrainingService) Serve(ctx context.Context) error {
	s.logger.Info().
		Bool("train_on_startup", s.config.TrainOnStartup).
		Dur("train_interval", s.config.TrainInterval).
		Msg("training service starting")

	if s.config.TrainOnStartup {
		if err := s.train(ctx); err != nil {
			s.logger.Warn().Err(err).Msg("initial training failed (will retry on schedule)")
		}
	}

	ticker := time.NewTicker(s.config.TrainInterval)
	defer ticker.Stop()

	s.logger.Info().Msg("training service running")

	for {
		select {
		case <-ctx.Done():
			s.logger.Info().Msg("training service shutting down")
			return ctx.Err()

		case <-ticker.C:
			s.logger.Debug().Msg("scheduled training triggered")
			if err := s.train(ctx); err != nil {
				s.logger.Warn().Err(err).Msg("scheduled training failed")
			}
		}
	}
}

// train performs one training cycle with its own timeout.
func (s *TrainingService) train(ctx context.Context) error {
	trainCtx, cancel := context.WithTimeout(ctx, s.config.TrainTimeout)
	defer cancel()

	start := time.Now()
	s.logger.Info().Msg("starting model training")

	err := s.engine.Train(trainCtx)
	metrics.RecordTrainingRun(err == nil, time.Since(start))
	if err != nil {
		return err
	}

	s.logger.Info().
		Dur("duration", time.Since(start)).
		Msg("model training complete")

	return nil
}

// String returns the service name for logging.
func (s *TrainingService) String() string {
	return s.name
}
