// TuneIsland - Song Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/tuneisland

package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/structs"
	"github.com/knadh/koanf/v2"
)

// DefaultConfigPaths lists the paths where config files are searched in order of priority.
// The first file found will be used.
var DefaultConfigPaths = []string{
	"config.yaml",
	"config.yml",
	"/etc/tuneisland/config.yaml",
	"/etc/tuneisland/config.yml",
}

// ConfigPathEnvVar is the environment variable that can override the config file path.
const ConfigPathEnvVar = "CONFIG_PATH"

// DefaultConfig returns a Config struct with all default values.
// These defaults are applied first, then overridden by config file and env vars.
func DefaultConfig() *Config {
	return &Config{
		Recommend: RecommendConfig{
			Factors:        50,
			LearningRate:   0.005,
			Regularization: 0.015,
			MaxEpochs:      1000,
			Patience:       10,
			InitScale:      0.1,
			Seed:           0,
			Weights: WeightsConfig{
				ML:         0.60,
				Tag:        0.20,
				Like:       0.09,
				Popularity: 0.10,
				Rating:     0.01,
			},
			DefaultCount:   10,
			Strategy:       "hybrid",
			Workers:        0, // 0 = use runtime.NumCPU()
			TrainInterval:  24 * time.Hour,
			TrainOnStartup: false,
			TrainTimeout:   30 * time.Minute,
		},
		LLM: LLMConfig{
			Enabled:      false,
			URL:          "",
			APIKey:       "",
			Timeout:      30 * time.Second,
			MaxTokens:    100,
			Temperature:  0.7,
			RateLimit:    5,
			RateBurst:    5,
			CatalogLimit: 50,
		},
		Storage: StorageConfig{
			Path:        "/data/tuneisland",
			InMemory:    false,
			SyncWrites:  true,
			Compression: false,
			GCInterval:  time.Hour,
			GCRatio:     0.5,
		},
		Server: ServerConfig{
			Port:              8080,
			Host:              "0.0.0.0",
			Timeout:           30 * time.Second,
			CORSOrigins:       []string{"*"},
			RateLimitReqs:     100,
			RateLimitWindow:   time.Minute,
			RateLimitDisabled: false,
		},
		Cache: CacheConfig{
			HotTTL:  10 * time.Minute,
			HotSize: 30,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
			Caller: false,
		},
	}
}

// LoadWithKoanf loads configuration using Koanf v2 with layered sources:
//  1. Defaults: Built-in defaults
//  2. Config File: Optional YAML config file (if exists)
//  3. Environment Variables: Override any setting
//
// Precedence is ENV > File > Defaults.
func LoadWithKoanf() (*Config, error) {
	k := koanf.New(".")

	// Layer 1: Load defaults from struct
	if err := k.Load(structs.Provider(DefaultConfig(), "koanf"), nil); err != nil {
		return nil, fmt.Errorf("failed to load defaults: %w", err)
	}

	// Layer 2: Load config file (optional)
	if configPath := findConfigFile(); configPath != "" {
		if err := k.Load(file.Provider(configPath), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("failed to load config file %s: %w", configPath, err)
		}
	}

	// Layer 3: Load environment variables (highest priority)
	if err := k.Load(env.Provider("", ".", envTransformFunc), nil); err != nil {
		return nil, fmt.Errorf("failed to load environment variables: %w", err)
	}

	if err := processSliceFields(k); err != nil {
		return nil, fmt.Errorf("failed to process slice fields: %w", err)
	}

	cfg := &Config{}
	if err := k.Unmarshal("", cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal configuration: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return cfg, nil
}

// findConfigFile searches for a config file in the default paths.
// Returns the path to the first file found, or empty string if none found.
func findConfigFile() string {
	if envPath := os.Getenv(ConfigPathEnvVar); envPath != "" {
		if _, err := os.Stat(envPath); err == nil {
			return envPath
		}
	}

	for _, path := range DefaultConfigPaths {
		if _, err := os.Stat(path); err == nil {
			return path
		}
	}
	return ""
}

// sliceConfigPaths defines which config paths should be parsed as comma-separated slices
var sliceConfigPaths = []string{
	"server.cors_origins",
}

// processSliceFields converts comma-separated string values to slices for known slice fields.
// Env vars come in as strings, but the config expects slices.
func processSliceFields(k *koanf.Koanf) error {
	for _, path := range sliceConfigPaths {
		strVal, ok := k.Get(path).(string)
		if !ok || strVal == "" {
			continue
		}

		parts := strings.Split(strVal, ",")
		trimmed := make([]string, 0, len(parts))
		for _, p := range parts {
			if p = strings.TrimSpace(p); p != "" {
				trimmed = append(trimmed, p)
			}
		}
		if len(trimmed) > 0 {
			if err := k.Set(path, trimmed); err != nil {
				return fmt.Errorf("failed to set %s: %w", path, err)
			}
		}
	}
	return nil
}

// envMappings maps environment variable names (lower case) to koanf paths.
var envMappings = map[string]string{
	// Recommendation engine
	"recommend_factors":          "recommend.factors",
	"recommend_learning_rate":    "recommend.learning_rate",
	"recommend_regularization":   "recommend.regularization",
	"recommend_max_epochs":       "recommend.max_epochs",
	"recommend_patience":         "recommend.patience",
	"recommend_init_scale":       "recommend.init_scale",
	"recommend_seed":             "recommend.seed",
	"recommend_weight_ml":        "recommend.weights.ml",
	"recommend_weight_tag":       "recommend.weights.tag",
	"recommend_weight_like":      "recommend.weights.like",
	"recommend_weight_popular":   "recommend.weights.popularity",
	"recommend_weight_rating":    "recommend.weights.rating",
	"recommend_default_count":    "recommend.default_count",
	"recommend_strategy":         "recommend.strategy",
	"recommend_workers":          "recommend.workers",
	"recommend_train_interval":   "recommend.train_interval",
	"recommend_train_on_startup": "recommend.train_on_startup",
	"recommend_train_timeout":    "recommend.train_timeout",

	// Text-generation service
	"llm_enabled":       "llm.enabled",
	"llm_url":           "llm.url",
	"llm_api_key":       "llm.api_key",
	"llm_timeout":       "llm.timeout",
	"llm_max_tokens":    "llm.max_tokens",
	"llm_temperature":   "llm.temperature",
	"llm_rate_limit":    "llm.rate_limit",
	"llm_rate_burst":    "llm.rate_burst",
	"llm_catalog_limit": "llm.catalog_limit",

	// Storage
	"badger_path":        "storage.path",
	"badger_in_memory":   "storage.in_memory",
	"badger_sync_writes": "storage.sync_writes",
	"badger_compression": "storage.compression",
	"badger_gc_interval": "storage.gc_interval",
	"badger_gc_ratio":    "storage.gc_ratio",

	// Server
	"http_port":           "server.port",
	"http_host":           "server.host",
	"http_timeout":        "server.timeout",
	"cors_origins":        "server.cors_origins",
	"rate_limit_requests": "server.rate_limit_reqs",
	"rate_limit_window":   "server.rate_limit_window",
	"disable_rate_limit":  "server.rate_limit_disabled",

	// Cache
	"hot_cache_ttl":  "cache.hot_ttl",
	"hot_cache_size": "cache.hot_size",

	// Logging
	"log_level":  "logging.level",
	"log_format": "logging.format",
	"log_caller": "logging.caller",
}

// envTransformFunc transforms environment variable names to koanf config paths.
// Unmapped variables return "" and are ignored.
//
// Examples:
//   - RECOMMEND_FACTORS -> recommend.factors
//   - LLM_API_KEY -> llm.api_key
//   - HTTP_PORT -> server.port
func envTransformFunc(key string) string {
	if path, ok := envMappings[strings.ToLower(key)]; ok {
		return path
	}
	return ""
}
