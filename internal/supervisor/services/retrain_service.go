// Lumeris - Game Recommendation and DeFi Forecasting Engine
// Copyright 2026 Alexandr Fenrir (AlexandrFenrir)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/AlexandrFenrir/lumeris

package services

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"github.com/AlexandrFenrir/lumeris/internal/catalog"
	"github.com/AlexandrFenrir/lumeris/internal/engine"
)

// GenerationBuilder builds and publishes a new generation.
type GenerationBuilder interface {
	Initialize(ctx context.Context, ds catalog.Dataset) (engine.Summary, error)
	Ready() bool
}

// DatasetLoader supplies the raw dataset for a build.
type DatasetLoader interface {
	Load(ctx context.Context) catalog.Dataset
}

// RetrainServiceConfig holds configuration for the retrain service.
type RetrainServiceConfig struct {
	// OnStartup builds a generation when the service starts, unless one is
	// already serving (for example restored from a snapshot).
	OnStartup bool

	// Interval between scheduled rebuilds; zero disables the schedule.
	Interval time.Duration

	// Timeout bounds a single rebuild.
	Timeout time.Duration
}

// RetrainService keeps the engine generation fresh.
type RetrainService struct {
	builder GenerationBuilder
	loader  DatasetLoader
	config  RetrainServiceConfig
	logger  zerolog.Logger
}

// NewRetrainService creates a retrain service.
//
//nolint:gocritic // logger passed by value is acceptable for zerolog
func NewRetrainService(builder GenerationBuilder, loader DatasetLoader, cfg RetrainServiceConfig, logger zerolog.Logger) *RetrainService {
	if cfg.Timeout <= 0 {
		cfg.Timeout = 5 * time.Minute
	}
	return &RetrainService{
		builder: builder,
		loader:  loader,
		config:  cfg,
		logger:  logger.With().Str("service", "retrain").Logger(),
	}
}

// Serve implements the suture.Service interface.
func (s *RetrainService) Serve(ctx context.Context) error {
	s.logger.Info().
		Bool("on_startup", s.config.OnStartup).
		Dur("interval", s.config.Interval).
		Msg("retrain service starting")

	if s.config.OnStartup && !s.builder.Ready() {
		if _, err := s.Retrain(ctx); err != nil {
			s.logger.Warn().Err(err).Msg("initial build failed (will retry on schedule)")
		}
	}

	if s.config.Interval <= 0 {
		<-ctx.Done()
		return ctx.Err()
	}

	ticker := time.NewTicker(s.config.Interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			s.logger.Info().Msg("retrain service shutting down")
			return ctx.Err()

		case <-ticker.C:
			if _, err := s.Retrain(ctx); err != nil {
				s.logger.Warn().Err(err).Msg("scheduled build failed")
			}
		}
	}
}

// Retrain loads a fresh dataset and builds a generation from it. On failure
// the previous generation keeps serving.
func (s *RetrainService) Retrain(ctx context.Context) (engine.Summary, error) {
	ctx, cancel := context.WithTimeout(ctx, s.config.Timeout)
	defer cancel()

	start := time.Now()
	ds := s.loader.Load(ctx)
	summary, err := s.builder.Initialize(ctx, ds)
	if err != nil {
		return engine.Summary{}, err
	}

	s.logger.Info().
		Int64("version", summary.Version).
		Dur("duration", time.Since(start)).
		Msg("build complete")
	return summary, nil
}

func (s *RetrainService) String() string {
	return "retrain-service"
}
