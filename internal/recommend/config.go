// TuneIsland - Song Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/tuneisland

package recommend

import (
	"fmt"
	"math"
	"runtime"
	"time"

	"github.com/tomtom215/tuneisland/internal/recommend/algorithms"
)

// Strategy names accepted by Config.Strategy.
const (
	StrategyHybrid     = "hybrid"
	StrategyGenerative = "generative"
)

// weightTolerance is the allowed deviation of the weight sum from 1.0.
const weightTolerance = 1e-9

// Config contains all configuration for the recommendation engine.
type Config struct {
	// Factors configures the matrix factorization trainer.
	Factors algorithms.FactorConfig `koanf:"factors"`

	// Weights defines the hybrid score blend. Unlike ensemble weights these are
	// not normalized at runtime and must sum to 1.0.
	Weights ScoreWeights `koanf:"weights"`

	// DefaultCount is the number of songs stored per user per cycle.
	DefaultCount int `koanf:"default_count"`

	// Strategy selects the per-user recommender: "hybrid" or "generative".
	Strategy string `koanf:"strategy"`

	// Workers bounds per-user scoring parallelism.
	Workers int `koanf:"workers"`

	// TrainTimeout bounds one complete training cycle.
	TrainTimeout time.Duration `koanf:"train_timeout"`

	// HotListSize is the number of most played songs kept in the hot cache.
	HotListSize int `koanf:"hot_list_size"`

	// HotListTTL is how long the cached hot list is served before reloading.
	HotListTTL time.Duration `koanf:"hot_list_ttl"`
}

// ScoreWeights defines the contribution of each signal to the hybrid score.
type ScoreWeights struct {
	ML         float64 `koanf:"ml"`
	Tag        float64 `koanf:"tag"`
	Like       float64 `koanf:"like"`
	Popularity float64 `koanf:"popularity"`
	Rating     float64 `koanf:"rating"`
}

// DefaultScoreWeights returns the production blend.
func DefaultScoreWeights() ScoreWeights {
	return ScoreWeights{
		ML:         0.60,
		Tag:        0.20,
		Like:       0.09,
		Popularity: 0.10,
		Rating:     0.01,
	}
}

// Sum returns the total of all weights.
func (w ScoreWeights) Sum() float64 {
	return w.ML + w.Tag + w.Like + w.Popularity + w.Rating
}

// validate checks that every weight is non-negative and the total is 1.0.
func (w ScoreWeights) validate() error {
	for name, v := range map[string]float64{
		"ml":         w.ML,
		"tag":        w.Tag,
		"like":       w.Like,
		"popularity": w.Popularity,
		"rating":     w.Rating,
	} {
		if v < 0 {
			return fmt.Errorf("weights.%s must be non-negative, got %f", name, v)
		}
	}
	if sum := w.Sum(); math.Abs(sum-1.0) > weightTolerance {
		return fmt.Errorf("weights must sum to 1.0, got %.12f", sum)
	}
	return nil
}

// DefaultConfig returns a Config with production defaults.
func DefaultConfig() *Config {
	return &Config{
		Factors:      algorithms.DefaultFactorConfig(),
		Weights:      DefaultScoreWeights(),
		DefaultCount: 10,
		Strategy:     StrategyHybrid,
		Workers:      runtime.NumCPU(),
		TrainTimeout: 30 * time.Minute,
		HotListSize:  30,
		HotListTTL:   10 * time.Minute,
	}
}

// Validate checks the configuration for errors.
func (c *Config) Validate() error {
	if c.Factors.Factors <= 0 {
		return fmt.Errorf("factors.factors must be positive, got %d", c.Factors.Factors)
	}
	if c.Factors.LearningRate <= 0 {
		return fmt.Errorf("factors.learning_rate must be positive, got %f", c.Factors.LearningRate)
	}
	if c.Factors.Regularization < 0 {
		return fmt.Errorf("factors.regularization must be non-negative, got %f", c.Factors.Regularization)
	}
	if c.Factors.MaxEpochs <= 0 {
		return fmt.Errorf("factors.max_epochs must be positive, got %d", c.Factors.MaxEpochs)
	}
	if c.Factors.Patience <= 0 {
		return fmt.Errorf("factors.patience must be positive, got %d", c.Factors.Patience)
	}
	if err := c.Weights.validate(); err != nil {
		return err
	}
	if c.DefaultCount <= 0 {
		return fmt.Errorf("default_count must be positive, got %d", c.DefaultCount)
	}
	if c.Strategy != StrategyHybrid && c.Strategy != StrategyGenerative {
		return fmt.Errorf("strategy must be %q or %q, got %q", StrategyHybrid, StrategyGenerative, c.Strategy)
	}
	if c.Workers <= 0 {
		return fmt.Errorf("workers must be positive, got %d", c.Workers)
	}
	if c.TrainTimeout <= 0 {
		return fmt.Errorf("train_timeout must be positive, got %v", c.TrainTimeout)
	}
	if c.HotListSize <= 0 {
		return fmt.Errorf("hot_list_size must be positive, got %d", c.HotListSize)
	}
	return nil
}

// Clone creates a copy of the configuration.
func (c *Config) Clone() *Config {
	clone := *c
	return &clone
}
