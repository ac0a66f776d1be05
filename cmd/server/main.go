// TuneIsland - Song Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/tuneisland

package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/tomtom215/tuneisland/internal/api"
	"github.com/tomtom215/tuneisland/internal/config"
	"github.com/tomtom215/tuneisland/internal/logging"
	"github.com/tomtom215/tuneisland/internal/store"
	"github.com/tomtom215/tuneisland/internal/supervisor"
	"github.com/tomtom215/tuneisland/internal/supervisor/services"
)

const shutdownTimeout = 10 * time.Second

func main() {
	if err := run(); err != nil {
		logging.Fatal().Err(err).Msg("TuneIsland exited with error")
	}
}

func run() error {
	// Load configuration first to get logging settings
	cfg, err := config.LoadWithKoanf()
	if err != nil {
		return err
	}

	logCfg := logging.DefaultConfig()
	logCfg.Level = cfg.Logging.Level
	logCfg.Format = cfg.Logging.Format
	logCfg.Caller = cfg.Logging.Caller
	logging.Init(logCfg)

	logging.Info().
		Str("strategy", cfg.Recommend.Strategy).
		Str("storage_path", cfg.Storage.Path).
		Bool("in_memory", cfg.Storage.InMemory).
		Bool("llm_enabled", cfg.LLM.Enabled).
		Msg("Starting TuneIsland with supervisor tree")

	db, err := store.Open(cfg.StoreConfig(), logging.WithComponent("store"))
	if err != nil {
		return err
	}
	defer func() {
		if err := db.Close(); err != nil {
			logging.Error().Err(err).Msg("Error closing store")
		}
	}()

	stores := api.Stores{
		Users:     store.NewUserStore(db),
		Songs:     store.NewSongStore(db),
		Songlists: store.NewSonglistStore(db),
	}

	engine, err := initEngine(cfg, stores, logging.WithComponent("recommend"))
	if err != nil {
		return err
	}

	tree, err := supervisor.NewSupervisorTree(logging.NewSlogLogger(), supervisor.DefaultTreeConfig())
	if err != nil {
		return err
	}

	addDataServices(tree, cfg, engine, db)

	handler := api.NewHandler(engine, stores, db, cfg)
	router := api.NewRouter(handler, api.ChiMiddlewareConfigFromServer(cfg.Server))

	server := &http.Server{
		Handler:           router.SetupChi(),
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       cfg.Server.Timeout,
		WriteTimeout:      cfg.Server.Timeout,
		IdleTimeout:       2 * cfg.Server.Timeout,
	}
	tree.AddAPIService(services.NewHTTPServerService(server, cfg.Server.Addr(), shutdownTimeout, logging.WithComponent("api")))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	err = tree.Serve(ctx)

	if report, reportErr := tree.UnstoppedServiceReport(); reportErr == nil && len(report) > 0 {
		for _, svc := range report {
			logging.Warn().Str("service", svc.Name).Msg("Service did not stop within timeout")
		}
	}

	if err != nil && !errors.Is(err, context.Canceled) {
		return err
	}

	logging.Info().Msg("TuneIsland stopped")
	return nil
}
