// TuneIsland - Song Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/tuneisland

package config

import (
	"fmt"
	"time"

	"github.com/tomtom215/tuneisland/internal/llm"
	"github.com/tomtom215/tuneisland/internal/recommend"
	"github.com/tomtom215/tuneisland/internal/recommend/algorithms"
	"github.com/tomtom215/tuneisland/internal/recommend/generative"
	"github.com/tomtom215/tuneisland/internal/store"
)

// Config holds all application configuration loaded from defaults, an
// optional YAML file and environment variables.
//
// Configuration Loading Order (Koanf v2):
//  1. Defaults: Built-in values for every setting
//  2. Config File: Optional config.yaml
//  3. Environment Variables: Override any setting
//
// Configuration Categories:
//   - Recommend: training hyperparameters, score weights, scheduling
//   - LLM: text-generation endpoint for the generative strategy
//   - Storage: BadgerDB location and durability
//   - Server: HTTP listener
//   - Cache: hot-songs cache
//   - Logging: level and output format
//
// Example:
//
//	cfg, err := config.LoadWithKoanf()
//	if err != nil {
//	    log.Fatal("Failed to load config:", err)
//	}
//	engine, err := recommend.NewEngine(cfg.EngineConfig(), logger)
type Config struct {
	Recommend RecommendConfig `koanf:"recommend"`
	LLM       LLMConfig       `koanf:"llm"`
	Storage   StorageConfig   `koanf:"storage"`
	Server    ServerConfig    `koanf:"server"`
	Cache     CacheConfig     `koanf:"cache"`
	Logging   LoggingConfig   `koanf:"logging"`
}

// RecommendConfig holds training and scoring settings.
type RecommendConfig struct {
	// Matrix factorization hyperparameters.
	Factors        int     `koanf:"factors"`
	LearningRate   float64 `koanf:"learning_rate"`
	Regularization float64 `koanf:"regularization"`
	MaxEpochs      int     `koanf:"max_epochs"`
	Patience       int     `koanf:"patience"`
	InitScale      float64 `koanf:"init_scale"`

	// Seed fixes the factor initialization. 0 draws a fresh seed per cycle.
	Seed int64 `koanf:"seed"`

	Weights WeightsConfig `koanf:"weights"`

	// DefaultCount is how many songs are stored per user and returned when a
	// request does not specify n.
	DefaultCount int `koanf:"default_count"`

	// Strategy is "hybrid" or "generative".
	Strategy string `koanf:"strategy"`

	// Workers bounds per-user scoring parallelism. 0 = runtime.NumCPU().
	Workers int `koanf:"workers"`

	TrainInterval  time.Duration `koanf:"train_interval"`
	TrainOnStartup bool          `koanf:"train_on_startup"`
	TrainTimeout   time.Duration `koanf:"train_timeout"`
}

// WeightsConfig is the hybrid score blend. The five weights must sum to 1.
type WeightsConfig struct {
	ML         float64 `koanf:"ml"`
	Tag        float64 `koanf:"tag"`
	Like       float64 `koanf:"like"`
	Popularity float64 `koanf:"popularity"`
	Rating     float64 `koanf:"rating"`
}

// LLMConfig configures the text-generation endpoint.
type LLMConfig struct {
	Enabled     bool          `koanf:"enabled"`
	URL         string        `koanf:"url"`
	APIKey      string        `koanf:"api_key"`
	Timeout     time.Duration `koanf:"timeout"`
	MaxTokens   int           `koanf:"max_tokens"`
	Temperature float64       `koanf:"temperature"`

	// RateLimit is requests per second; 0 disables limiting.
	RateLimit float64 `koanf:"rate_limit"`
	RateBurst int     `koanf:"rate_burst"`

	// CatalogLimit caps how many songs are rendered into the prompt.
	CatalogLimit int `koanf:"catalog_limit"`
}

// StorageConfig configures BadgerDB.
type StorageConfig struct {
	Path        string        `koanf:"path"`
	InMemory    bool          `koanf:"in_memory"`
	SyncWrites  bool          `koanf:"sync_writes"`
	Compression bool          `koanf:"compression"`
	GCInterval  time.Duration `koanf:"gc_interval"`
	GCRatio     float64       `koanf:"gc_ratio"`
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Port    int           `koanf:"port"`
	Host    string        `koanf:"host"`
	Timeout time.Duration `koanf:"timeout"`

	CORSOrigins []string `koanf:"cors_origins"`

	// RateLimitReqs requests per RateLimitWindow per client IP.
	RateLimitReqs     int           `koanf:"rate_limit_reqs"`
	RateLimitWindow   time.Duration `koanf:"rate_limit_window"`
	RateLimitDisabled bool          `koanf:"rate_limit_disabled"`
}

// CacheConfig configures the hot-songs cache.
type CacheConfig struct {
	HotTTL  time.Duration `koanf:"hot_ttl"`
	HotSize int           `koanf:"hot_size"`
}

// LoggingConfig holds logging configuration.
type LoggingConfig struct {
	// Level is the minimum log level: trace, debug, info, warn, error.
	// Default: info
	Level string `koanf:"level"`

	// Format is the output format: json or console.
	// Default: json
	Format string `koanf:"format"`

	// Caller includes caller file and line number in logs.
	// Default: false
	Caller bool `koanf:"caller"`
}

// Addr returns the HTTP listen address.
func (s ServerConfig) Addr() string {
	return fmt.Sprintf("%s:%d", s.Host, s.Port)
}

// EngineConfig converts the recommend and cache sections into the engine's
// configuration.
func (c *Config) EngineConfig() *recommend.Config {
	cfg := recommend.DefaultConfig()
	r := c.Recommend

	cfg.Factors = algorithms.FactorConfig{
		Factors:        r.Factors,
		LearningRate:   r.LearningRate,
		Regularization: r.Regularization,
		MaxEpochs:      r.MaxEpochs,
		Patience:       r.Patience,
		InitScale:      r.InitScale,
		Seed:           r.Seed,
		LogEvery:       cfg.Factors.LogEvery,
	}
	cfg.Weights = recommend.ScoreWeights{
		ML:         r.Weights.ML,
		Tag:        r.Weights.Tag,
		Like:       r.Weights.Like,
		Popularity: r.Weights.Popularity,
		Rating:     r.Weights.Rating,
	}
	cfg.DefaultCount = r.DefaultCount
	cfg.Strategy = r.Strategy
	if r.Workers > 0 {
		cfg.Workers = r.Workers
	}
	cfg.TrainTimeout = r.TrainTimeout
	cfg.HotListSize = c.Cache.HotSize
	cfg.HotListTTL = c.Cache.HotTTL
	return cfg
}

// LLMClientConfig returns the completion client settings.
func (c *Config) LLMClientConfig() llm.Config {
	return llm.Config{
		URL:       c.LLM.URL,
		APIKey:    c.LLM.APIKey,
		Timeout:   c.LLM.Timeout,
		RateLimit: c.LLM.RateLimit,
		RateBurst: c.LLM.RateBurst,
	}
}

// GenerativeConfig returns the generative recommender settings.
func (c *Config) GenerativeConfig() generative.Config {
	limits := generative.DefaultPromptLimits()
	if c.LLM.CatalogLimit > 0 {
		limits.Catalog = c.LLM.CatalogLimit
	}
	return generative.Config{
		MaxTokens:   c.LLM.MaxTokens,
		Temperature: c.LLM.Temperature,
		Limits:      limits,
	}
}

// StoreConfig returns the BadgerDB settings.
func (c *Config) StoreConfig() store.Config {
	return store.Config{
		Path:        c.Storage.Path,
		InMemory:    c.Storage.InMemory,
		SyncWrites:  c.Storage.SyncWrites,
		Compression: c.Storage.Compression,
		GCRatio:     c.Storage.GCRatio,
	}
}
