// Lumeris - Game Recommendation and DeFi Forecasting Engine
// Copyright 2026 Alexandr Fenrir (AlexandrFenrir)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/AlexandrFenrir/lumeris

package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/AlexandrFenrir/lumeris/internal/config"
	"github.com/AlexandrFenrir/lumeris/internal/engine"
	"github.com/AlexandrFenrir/lumeris/internal/events"
	"github.com/AlexandrFenrir/lumeris/internal/logging"
	"github.com/AlexandrFenrir/lumeris/internal/source"
	"github.com/AlexandrFenrir/lumeris/internal/supervisor"
	"github.com/AlexandrFenrir/lumeris/internal/supervisor/services"
)

func main() {
	if err := run(); err != nil {
		logging.Fatal().Err(err).Msg("Lumeris exited with error")
	}
}

func run() error {
	cfg, err := config.LoadWithKoanf()
	if err != nil {
		return err
	}
	logging.Init(cfg.Logging.ToLoggingConfig())
	logger := logging.Logger()

	logger.Info().
		Str("addr", cfg.Server.Addr()).
		Bool("backend_enabled", cfg.Backend.Enabled).
		Bool("state_enabled", cfg.State.Enabled).
		Uint64("seed", cfg.Engine.Seed).
		Msg("Starting Lumeris")

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	eng := engine.New(cfg.Engine.ToEngineConfig(), logger)

	bus := events.NewBus(events.DefaultBusConfig(), logger)
	defer func() {
		if err := bus.Close(); err != nil {
			logger.Error().Err(err).Msg("Error closing event bus")
		}
	}()
	eng.AddObserver(events.NewNotifier(bus))

	tree := supervisor.NewSupervisorTree(logging.NewSlogLogger(), supervisor.DefaultTreeConfig())

	// State store: restore before anything serves, then keep it current.
	var persister *services.SnapshotService
	if cfg.State.Enabled {
		st, closeStore, err := openState(ctx, cfg, eng)
		if err != nil {
			return err
		}
		defer closeStore()

		var sub services.EventSubscriber
		if cfg.State.PersistOnPublish {
			sub = bus
		}
		persister = services.NewSnapshotService(eng, st, sub, logger)
		// Subscribe now so the startup build's event is not dropped.
		if err := persister.Subscribe(ctx); err != nil {
			return err
		}
		tree.AddDataService(persister)
	}

	// Backend fetcher stays a nil interface when disabled so the loader
	// goes straight to the built-in dataset.
	var fetcher source.Fetcher
	if cfg.Backend.Enabled {
		client := source.NewClient(cfg.Backend.ToSourceConfig())
		probeBackend(ctx, client, cfg.Backend.Timeout)
		fetcher = client
	}
	retrainer := services.NewRetrainService(eng, source.NewLoader(fetcher, logger), services.RetrainServiceConfig{
		OnStartup: cfg.Retrain.OnStartup,
		Interval:  cfg.Retrain.Interval,
		Timeout:   cfg.Retrain.Timeout,
	}, logger)
	tree.AddMessagingService(retrainer)

	tree.AddAPIService(services.NewHTTPServerService(newHTTPServer(cfg, eng, retrainer, persister, logger), cfg.Server.ShutdownTimeout, logger))

	logger.Info().Msg("Supervisor tree starting")
	if err := tree.Serve(ctx); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	logger.Info().Msg("Lumeris stopped")
	return nil
}

// probeBackend logs backend reachability. An unreachable backend is not
// fatal; the loader falls back to built-in data part by part.
func probeBackend(ctx context.Context, client *source.Client, timeout time.Duration) {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	probeCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	if err := client.Health(probeCtx); err != nil {
		logging.Warn().Err(err).Msg("Backend health check failed; built-in data will fill missing parts")
		return
	}
	logging.Info().Msg("Backend reachable")
}
