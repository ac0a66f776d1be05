// TuneIsland - Song Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/tuneisland

package config

import (
	"fmt"
	"math"
)

// weightTolerance is the allowed deviation of the weight sum from 1.
const weightTolerance = 1e-9

// Validate checks that required configuration is present and valid
func (c *Config) Validate() error {
	if err := c.validateRecommend(); err != nil {
		return err
	}

	if err := c.validateLLM(); err != nil {
		return err
	}

	if err := c.validateStorage(); err != nil {
		return err
	}

	if err := c.validateServer(); err != nil {
		return err
	}

	if err := c.validateCache(); err != nil {
		return err
	}

	return c.validateLogging()
}

// validateRecommend validates training hyperparameters and scoring settings
func (c *Config) validateRecommend() error {
	r := c.Recommend
	if r.Factors <= 0 {
		return fmt.Errorf("RECOMMEND_FACTORS must be positive, got %d", r.Factors)
	}
	if r.LearningRate <= 0 {
		return fmt.Errorf("RECOMMEND_LEARNING_RATE must be positive, got %g", r.LearningRate)
	}
	if r.Regularization < 0 {
		return fmt.Errorf("RECOMMEND_REGULARIZATION must not be negative, got %g", r.Regularization)
	}
	if r.MaxEpochs <= 0 {
		return fmt.Errorf("RECOMMEND_MAX_EPOCHS must be positive, got %d", r.MaxEpochs)
	}
	if r.Patience <= 0 {
		return fmt.Errorf("RECOMMEND_PATIENCE must be positive, got %d", r.Patience)
	}
	if r.InitScale <= 0 {
		return fmt.Errorf("RECOMMEND_INIT_SCALE must be positive, got %g", r.InitScale)
	}
	if err := c.validateWeights(); err != nil {
		return err
	}
	if r.DefaultCount < 1 || r.DefaultCount > 100 {
		return fmt.Errorf("RECOMMEND_DEFAULT_COUNT must be between 1 and 100, got %d", r.DefaultCount)
	}
	if r.Strategy != "hybrid" && r.Strategy != "generative" {
		return fmt.Errorf("RECOMMEND_STRATEGY must be one of: hybrid, generative")
	}
	if r.Workers < 0 {
		return fmt.Errorf("RECOMMEND_WORKERS must not be negative, got %d", r.Workers)
	}
	if r.TrainInterval <= 0 {
		return fmt.Errorf("RECOMMEND_TRAIN_INTERVAL must be positive, got %v", r.TrainInterval)
	}
	if r.TrainTimeout <= 0 {
		return fmt.Errorf("RECOMMEND_TRAIN_TIMEOUT must be positive, got %v", r.TrainTimeout)
	}
	return nil
}

// validateWeights checks the hybrid blend is non-negative and sums to 1
func (c *Config) validateWeights() error {
	w := c.Recommend.Weights
	for _, v := range []float64{w.ML, w.Tag, w.Like, w.Popularity, w.Rating} {
		if v < 0 {
			return fmt.Errorf("recommend.weights must not be negative, got %g", v)
		}
	}
	sum := w.ML + w.Tag + w.Like + w.Popularity + w.Rating
	if math.Abs(sum-1) > weightTolerance {
		return fmt.Errorf("recommend.weights must sum to 1, got %.12f", sum)
	}
	return nil
}

// validateLLM validates the text-generation settings. The URL is required
// when the service is enabled or when the generative strategy is selected.
func (c *Config) validateLLM() error {
	needsURL := c.LLM.Enabled || c.Recommend.Strategy == "generative"
	if !needsURL {
		return nil
	}
	if c.LLM.URL == "" {
		return fmt.Errorf("LLM_URL is required when LLM_ENABLED=true or RECOMMEND_STRATEGY=generative")
	}
	if err := validateEndpointURL(c.LLM.URL, "LLM_URL"); err != nil {
		return err
	}
	if c.LLM.Timeout <= 0 {
		return fmt.Errorf("LLM_TIMEOUT must be positive, got %v", c.LLM.Timeout)
	}
	if c.LLM.MaxTokens <= 0 {
		return fmt.Errorf("LLM_MAX_TOKENS must be positive, got %d", c.LLM.MaxTokens)
	}
	if c.LLM.Temperature < 0 || c.LLM.Temperature > 2 {
		return fmt.Errorf("LLM_TEMPERATURE must be between 0 and 2, got %g", c.LLM.Temperature)
	}
	if c.LLM.RateLimit < 0 {
		return fmt.Errorf("LLM_RATE_LIMIT must not be negative, got %g", c.LLM.RateLimit)
	}
	return nil
}

// validateStorage validates BadgerDB settings
func (c *Config) validateStorage() error {
	if !c.Storage.InMemory && c.Storage.Path == "" {
		return fmt.Errorf("BADGER_PATH is required unless BADGER_IN_MEMORY=true")
	}
	if c.Storage.GCRatio <= 0 || c.Storage.GCRatio >= 1 {
		return fmt.Errorf("BADGER_GC_RATIO must be between 0 and 1 (exclusive), got %g", c.Storage.GCRatio)
	}
	if c.Storage.GCInterval <= 0 {
		return fmt.Errorf("BADGER_GC_INTERVAL must be positive, got %v", c.Storage.GCInterval)
	}
	return nil
}

// validateServer validates server configuration
func (c *Config) validateServer() error {
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("HTTP_PORT must be between 1 and 65535")
	}
	if c.Server.Timeout <= 0 {
		return fmt.Errorf("HTTP_TIMEOUT must be positive, got %v", c.Server.Timeout)
	}
	if !c.Server.RateLimitDisabled {
		if c.Server.RateLimitReqs <= 0 {
			return fmt.Errorf("RATE_LIMIT_REQUESTS must be positive, got %d", c.Server.RateLimitReqs)
		}
		if c.Server.RateLimitWindow <= 0 {
			return fmt.Errorf("RATE_LIMIT_WINDOW must be positive, got %v", c.Server.RateLimitWindow)
		}
	}
	return nil
}

// validateCache validates hot-list cache settings
func (c *Config) validateCache() error {
	if c.Cache.HotSize <= 0 {
		return fmt.Errorf("HOT_CACHE_SIZE must be positive, got %d", c.Cache.HotSize)
	}
	if c.Cache.HotTTL <= 0 {
		return fmt.Errorf("HOT_CACHE_TTL must be positive, got %v", c.Cache.HotTTL)
	}
	return nil
}

// validLogLevels defines the allowed log levels
var validLogLevels = map[string]bool{
	"trace": true,
	"debug": true,
	"info":  true,
	"warn":  true,
	"error": true,
}

// validLogFormats defines the allowed log formats
var validLogFormats = map[string]bool{
	"json":    true,
	"console": true,
}

// validateLogging validates logging configuration
func (c *Config) validateLogging() error {
	if !validLogLevels[c.Logging.Level] {
		return fmt.Errorf("LOG_LEVEL must be one of: trace, debug, info, warn, error")
	}
	if c.Logging.Format != "" && !validLogFormats[c.Logging.Format] {
		return fmt.Errorf("LOG_FORMAT must be one of: json, console")
	}
	return nil
}
