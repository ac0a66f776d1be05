// TuneIsland - Song Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/tuneisland

package main

import (
	"fmt"

	"github.com/rs/zerolog"

	"github.com/tomtom215/tuneisland/internal/api"
	"github.com/tomtom215/tuneisland/internal/config"
	"github.com/tomtom215/tuneisland/internal/llm"
	"github.com/tomtom215/tuneisland/internal/logging"
	"github.com/tomtom215/tuneisland/internal/recommend"
	"github.com/tomtom215/tuneisland/internal/recommend/generative"
	"github.com/tomtom215/tuneisland/internal/store"
	"github.com/tomtom215/tuneisland/internal/supervisor"
	"github.com/tomtom215/tuneisland/internal/supervisor/services"
)

// initEngine builds the recommendation engine and, when an LLM endpoint is
// configured, registers the generative strategy.
//
//nolint:gocritic // hugeParam: logger passed by value for zerolog chaining
func initEngine(cfg *config.Config, stores api.Stores, logger zerolog.Logger) (*recommend.Engine, error) {
	logger.Info().
		Int("factors", cfg.Recommend.Factors).
		Int("max_epochs", cfg.Recommend.MaxEpochs).
		Dur("train_interval", cfg.Recommend.TrainInterval).
		Bool("train_on_startup", cfg.Recommend.TrainOnStartup).
		Msg("initializing recommendation engine")

	engine, err := recommend.NewEngine(cfg.EngineConfig(), logger)
	if err != nil {
		return nil, fmt.Errorf("create recommendation engine: %w", err)
	}
	engine.SetStores(stores.Users, stores.Songs, stores.Songlists)

	if !cfg.LLM.Enabled && cfg.Recommend.Strategy != recommend.StrategyGenerative {
		return engine, nil
	}

	client, err := llm.NewClient(cfg.LLMClientConfig(), logging.WithComponent("llm"))
	if err != nil {
		return nil, fmt.Errorf("create llm client: %w", err)
	}
	engine.SetGenerative(generative.New(client, cfg.GenerativeConfig(), logger))

	logger.Info().
		Str("llm_url", cfg.LLM.URL).
		Str("strategy", cfg.Recommend.Strategy).
		Msg("generative recommender registered")

	return engine, nil
}

// addDataServices registers the training scheduler and store GC. GC also
// runs after every completed training cycle.
func addDataServices(tree *supervisor.SupervisorTree, cfg *config.Config, engine *recommend.Engine, db *store.DB) {
	recCfg := services.RecommendServiceConfig{
		TrainOnStartup: cfg.Recommend.TrainOnStartup,
		TrainInterval:  cfg.Recommend.TrainInterval,
		TrainTimeout:   cfg.Recommend.TrainTimeout,
	}
	tree.AddDataService(services.NewRecommendService(engine, recCfg, logging.WithComponent("recommend")))

	if !cfg.Storage.InMemory {
		gc := services.NewStoreGCService(db, cfg.Storage.GCInterval, logging.WithComponent("store"))
		engine.OnCycleComplete(gc.AfterTraining)
		tree.AddDataService(gc)
	}
}
