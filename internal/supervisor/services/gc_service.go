// TuneIsland - Song Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/tuneisland

package services

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"github.com/tomtom215/tuneisland/internal/recommend"
)

// GarbageCollector reclaims storage space, e.g. store.DB.
type GarbageCollector interface {
	RunGC() error
}

// StoreGCService runs value log garbage collection on an interval.
type StoreGCService struct {
	store    GarbageCollector
	interval time.Duration
	logger   zerolog.Logger
}

// NewStoreGCService creates a GC service. A non-positive interval defaults
// to one hour.
//
//nolint:gocritic // logger passed by value is acceptable for zerolog
func NewStoreGCService(store GarbageCollector, interval time.Duration, logger zerolog.Logger) *StoreGCService {
	if interval <= 0 {
		interval = time.Hour
	}
	return &StoreGCService{
		store:    store,
		interval: interval,
		logger:   logger.With().Str("service", "store-gc").Logger(),
	}
}

// Serve implements suture.Service. A failed GC pass is logged; the next tick
// retries.
func (s *StoreGCService) Serve(ctx context.Context) error {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			if err := s.store.RunGC(); err != nil {
				s.logger.Warn().Err(err).Msg("store GC failed")
			}
		}
	}
}

// AfterTraining runs one GC pass outside the schedule. It is registered with
// Engine.OnCycleComplete, since a cycle rewrites every user document.
func (s *StoreGCService) AfterTraining(result *recommend.CycleResult) {
	if err := s.store.RunGC(); err != nil {
		s.logger.Warn().Err(err).Str("run_id", result.RunID).Msg("post-training store GC failed")
		return
	}
	s.logger.Debug().Str("run_id", result.RunID).Msg("post-training store GC complete")
}

// String implements fmt.Stringer for logging.
func (s *StoreGCService) String() string {
	return "store-gc"
}
