// TuneIsland - Song Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/tuneisland

package config

import (
	"os"
	"path/filepath"
	"slices"
	"strings"
	"testing"
	"time"
)

// isolateEnv points CONFIG_PATH at a missing file so no stray config.yaml is read.
func isolateEnv(t *testing.T) {
	t.Helper()
	t.Setenv(ConfigPathEnvVar, filepath.Join(t.TempDir(), "missing.yaml"))
}

// TestDefaultConfig verifies that DefaultConfig() returns proper defaults
func TestDefaultConfig(t *testing.T) {
	t.Parallel()

	cfg := DefaultConfig()

	if cfg.Recommend.Factors != 50 {
		t.Errorf("Recommend.Factors = %d, want 50", cfg.Recommend.Factors)
	}
	if cfg.Recommend.LearningRate != 0.005 || cfg.Recommend.Regularization != 0.015 {
		t.Errorf("learning rate/regularization = %g/%g", cfg.Recommend.LearningRate, cfg.Recommend.Regularization)
	}
	if cfg.Recommend.MaxEpochs != 1000 || cfg.Recommend.Patience != 10 {
		t.Errorf("max epochs/patience = %d/%d", cfg.Recommend.MaxEpochs, cfg.Recommend.Patience)
	}
	if cfg.Recommend.DefaultCount != 10 {
		t.Errorf("Recommend.DefaultCount = %d, want 10", cfg.Recommend.DefaultCount)
	}
	if cfg.Recommend.TrainInterval != 24*time.Hour {
		t.Errorf("Recommend.TrainInterval = %v, want 24h", cfg.Recommend.TrainInterval)
	}
	if cfg.LLM.MaxTokens != 100 || cfg.LLM.Temperature != 0.7 || cfg.LLM.CatalogLimit != 50 {
		t.Errorf("LLM defaults = %+v", cfg.LLM)
	}
	if cfg.Cache.HotSize != 30 {
		t.Errorf("Cache.HotSize = %d, want 30", cfg.Cache.HotSize)
	}
	if cfg.Logging.Level != "info" || cfg.Logging.Format != "json" {
		t.Errorf("Logging = %+v", cfg.Logging)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("DefaultConfig().Validate() error = %v", err)
	}
}

func TestEnvTransformFunc(t *testing.T) {
	t.Parallel()

	tests := []struct {
		input string
		want  string
	}{
		{"RECOMMEND_FACTORS", "recommend.factors"},
		{"RECOMMEND_WEIGHT_POPULAR", "recommend.weights.popularity"},
		{"LLM_API_KEY", "llm.api_key"},
		{"HTTP_PORT", "server.port"},
		{"BADGER_PATH", "storage.path"},
		{"HOT_CACHE_SIZE", "cache.hot_size"},
		{"log_level", "logging.level"},
		{"HOME", ""},
		{"PATH", ""},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			t.Parallel()
			if got := envTransformFunc(tt.input); got != tt.want {
				t.Errorf("envTransformFunc(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestFindConfigFile_EnvPath(t *testing.T) {
	path := filepath.Join(t.TempDir(), "custom.yaml")
	if err := os.WriteFile(path, []byte("logging:\n  level: info\n"), 0o600); err != nil {
		t.Fatalf("Failed to create config file: %v", err)
	}
	t.Setenv(ConfigPathEnvVar, path)

	if got := findConfigFile(); got != path {
		t.Errorf("findConfigFile() = %q, want %q", got, path)
	}
}

func TestLoadWithKoanfEnvVars(t *testing.T) {
	isolateEnv(t)
	t.Setenv("HTTP_PORT", "9000")
	t.Setenv("LOG_LEVEL", "debug")
	t.Setenv("RECOMMEND_FACTORS", "16")
	t.Setenv("RECOMMEND_TRAIN_INTERVAL", "6h")
	t.Setenv("RECOMMEND_TRAIN_ON_STARTUP", "true")
	t.Setenv("CORS_ORIGINS", "https://a.example, https://b.example")
	t.Setenv("BADGER_IN_MEMORY", "true")

	cfg, err := LoadWithKoanf()
	if err != nil {
		t.Fatalf("LoadWithKoanf() error = %v", err)
	}

	if cfg.Server.Port != 9000 {
		t.Errorf("Server.Port = %d, want 9000", cfg.Server.Port)
	}
	if cfg.Logging.Level != "debug" {
		t.Errorf("Logging.Level = %q, want debug", cfg.Logging.Level)
	}
	if cfg.Recommend.Factors != 16 {
		t.Errorf("Recommend.Factors = %d, want 16", cfg.Recommend.Factors)
	}
	if cfg.Recommend.TrainInterval != 6*time.Hour || !cfg.Recommend.TrainOnStartup {
		t.Errorf("schedule = %v/%v", cfg.Recommend.TrainInterval, cfg.Recommend.TrainOnStartup)
	}
	if !slices.Equal(cfg.Server.CORSOrigins, []string{"https://a.example", "https://b.example"}) {
		t.Errorf("Server.CORSOrigins = %v", cfg.Server.CORSOrigins)
	}
	if !cfg.Storage.InMemory {
		t.Error("Storage.InMemory should be true")
	}

	// Defaults survive for unset values
	if cfg.Server.Host != "0.0.0.0" {
		t.Errorf("Server.Host = %q, want 0.0.0.0 (default)", cfg.Server.Host)
	}
	if cfg.Recommend.Weights.ML != 0.60 {
		t.Errorf("Recommend.Weights.ML = %g, want 0.60 (default)", cfg.Recommend.Weights.ML)
	}
}

func TestLoadWithKoanfConfigFile(t *testing.T) {
	configContent := `
recommend:
  factors: 20
  strategy: generative
  weights:
    ml: 0.5
    tag: 0.3
    like: 0.09
    popularity: 0.1
    rating: 0.01
llm:
  url: "https://llm.example/v1/completions"
server:
  port: 8888
logging:
  level: warn
`
	configPath := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(configPath, []byte(configContent), 0o600); err != nil {
		t.Fatalf("Failed to create config file: %v", err)
	}
	t.Setenv(ConfigPathEnvVar, configPath)
	t.Setenv("HTTP_PORT", "7000")

	cfg, err := LoadWithKoanf()
	if err != nil {
		t.Fatalf("LoadWithKoanf() error = %v", err)
	}

	if cfg.Recommend.Factors != 20 || cfg.Recommend.Strategy != "generative" {
		t.Errorf("Recommend = %+v", cfg.Recommend)
	}
	if cfg.Recommend.Weights.ML != 0.5 || cfg.Recommend.Weights.Tag != 0.3 {
		t.Errorf("Recommend.Weights = %+v", cfg.Recommend.Weights)
	}
	if cfg.Server.Port != 7000 {
		t.Errorf("Server.Port = %d, want env override 7000", cfg.Server.Port)
	}
	if cfg.Logging.Level != "warn" {
		t.Errorf("Logging.Level = %q, want warn", cfg.Logging.Level)
	}
	if cfg.Storage.Path != "/data/tuneisland" {
		t.Errorf("Storage.Path = %q, want default", cfg.Storage.Path)
	}
}

func TestLoadWithKoanfValidation(t *testing.T) {
	tests := []struct {
		name    string
		env     map[string]string
		wantErr string
	}{
		{"bad port", map[string]string{"HTTP_PORT": "70000"}, "HTTP_PORT"},
		{"bad log level", map[string]string{"LOG_LEVEL": "verbose"}, "LOG_LEVEL"},
		{"weights off by more than tolerance", map[string]string{"RECOMMEND_WEIGHT_ML": "0.61"}, "sum to 1"},
		{"generative without url", map[string]string{"RECOMMEND_STRATEGY": "generative"}, "LLM_URL"},
		{"unknown strategy", map[string]string{"RECOMMEND_STRATEGY": "random"}, "RECOMMEND_STRATEGY"},
		{"zero factors", map[string]string{"RECOMMEND_FACTORS": "0"}, "RECOMMEND_FACTORS"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			isolateEnv(t)
			for k, v := range tt.env {
				t.Setenv(k, v)
			}
			_, err := LoadWithKoanf()
			if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("LoadWithKoanf() error = %v, want containing %q", err, tt.wantErr)
			}
		})
	}
}
