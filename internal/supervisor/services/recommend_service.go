// TuneIsland - Song Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/tuneisland

package services

import (
	"context"
	"errors"
	"time"

	"github.com/rs/zerolog"

	"github.com/tomtom215/tuneisland/internal/metrics"
	"github.com/tomtom215/tuneisland/internal/recommend"
)

// RecommendEngine is the training entry point of recommend.Engine.
type RecommendEngine interface {
	// Train loads every user and song and runs one training cycle.
	Train(ctx context.Context) error
}

// RecommendServiceConfig holds configuration for the recommendation service.
type RecommendServiceConfig struct {
	// TrainOnStartup triggers training when the service starts.
	TrainOnStartup bool

	// TrainInterval is how often to retrain. Default: 24h
	TrainInterval time.Duration

	// TrainTimeout bounds a single cycle. Default: 30m
	TrainTimeout time.Duration
}

// RecommendService is the training scheduler. It runs a cycle on startup
// when configured and then on every tick; a failed cycle is logged and
// retried on the next tick.
type RecommendService struct {
	engine RecommendEngine
	config RecommendServiceConfig
	logger zerolog.Logger
	name   string
}

// NewRecommendService creates a new recommendation service.
//
//nolint:gocritic // logger passed by value is acceptable for zerolog
func NewRecommendService(engine RecommendEngine, cfg RecommendServiceConfig, logger zerolog.Logger) *RecommendService {
	if cfg.TrainInterval <= 0 {
		cfg.TrainInterval = 24 * time.Hour
	}
	if cfg.TrainTimeout <= 0 {
		cfg.TrainTimeout = 30 * time.Minute
	}
	return &RecommendService{
		engine: engine,
		config: cfg,
		logger: logger.With().Str("service", "recommend").Logger(),
		name:   "recommend-service",
	}
}

// Serve implements the suture.Service interface.
func (s *RecommendService) Serve(ctx context.Context) error {
	s.logger.Info().
		Bool("train_on_startup", s.config.TrainOnStartup).
		Dur("train_interval", s.config.TrainInterval).
		Msg("recommendation service starting")

	if s.config.TrainOnStartup {
		s.logger.Info().Msg("training on startup")
		s.runCycle(ctx)
	}

	ticker := time.NewTicker(s.config.TrainInterval)
	defer ticker.Stop()

	s.logger.Info().Msg("recommendation service running")

	for {
		select {
		case <-ctx.Done():
			s.logger.Info().Msg("recommendation service shutting down")
			return ctx.Err()

		case <-ticker.C:
			s.logger.Debug().Msg("scheduled training triggered")
			s.runCycle(ctx)
		}
	}
}

// runCycle trains once and logs the outcome. Empty data and an overlapping
// cycle count as skipped.
func (s *RecommendService) runCycle(ctx context.Context) {
	err := s.train(ctx)
	switch {
	case err == nil:
	case errors.Is(err, recommend.ErrDataEmpty):
		s.logger.Info().Msg("training skipped: no users or songs")
	case errors.Is(err, recommend.ErrTrainingInProgress):
		metrics.RecordTrainingCycle("skipped", 0)
		s.logger.Info().Msg("training skipped: cycle already running")
	case ctx.Err() != nil:
		s.logger.Debug().Err(err).Msg("training interrupted by shutdown")
	default:
		s.logger.Warn().Err(err).Msg("training failed (will retry on schedule)")
	}
}

// train performs a training cycle bounded by TrainTimeout.
func (s *RecommendService) train(ctx context.Context) error {
	trainCtx, cancel := context.WithTimeout(ctx, s.config.TrainTimeout)
	defer cancel()

	start := time.Now()
	s.logger.Info().Msg("starting training cycle")

	if err := s.engine.Train(trainCtx); err != nil {
		return err
	}

	s.logger.Info().
		Dur("duration", time.Since(start)).
		Msg("training cycle complete")

	return nil
}

// String returns the service name for logging.
func (s *RecommendService) String() string {
	return s.name
}
