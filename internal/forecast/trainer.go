// Lumeris - Game Recommendation and DeFi Forecasting Engine
// Copyright 2026 Alexandr Fenrir (AlexandrFenrir)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/AlexandrFenrir/lumeris

package forecast

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"
)

// Config controls history synthesis, training and forecasting.
type Config struct {
	// HistoryDays is the length of each synthesized series.
	HistoryDays int

	Forest   ForestConfig
	Boosting BoostingConfig

	// DefaultHorizon is used when a caller passes a non-positive horizon.
	DefaultHorizon int

	// MaxHorizon caps the forecast length.
	MaxHorizon int
}

// DefaultConfig returns the production defaults.
func DefaultConfig() Config {
	return Config{
		HistoryDays:    30,
		Forest:         ForestConfig{Trees: 100, MaxDepth: 10, MinSamplesSplit: 2, Workers: 4},
		Boosting:       BoostingConfig{Stages: 100, MaxDepth: 5, LearningRate: 0.1},
		DefaultHorizon: 7,
		MaxHorizon:     30,
	}
}

// Models is the fitted price/trend pair plus the scaler both share.
// A Models with Rows == 0 has nil estimators and serves no predictions.
type Models struct {
	Scaler *Scaler
	Price  *Forest
	Trend  *Booster
	Rows   int
}

// Fitted reports whether the estimators are present.
func (m *Models) Fitted() bool {
	return m != nil && m.Rows > 0 && m.Scaler != nil && m.Price != nil && m.Trend != nil
}

// Train fits the scaler, the price forest and the trend booster on ds.
// The same rows are used for fitting and for the reported confidence;
// there is no held-out split.
//
//nolint:gocritic // hugeParam: Config is read once per build
func Train(ctx context.Context, ds Dataset, cfg Config, seed uint64, logger zerolog.Logger) (*Models, error) {
	if ds.Len() == 0 {
		logger.Warn().Msg("No training rows, forecasting disabled for this generation")
		return &Models{}, nil
	}

	start := time.Now()
	scaler, err := FitScaler(ds.X)
	if err != nil {
		return nil, fmt.Errorf("train: %w", err)
	}
	scaled := scaler.TransformAll(ds.X)

	price, err := FitForest(ctx, scaled, ds.Price, cfg.Forest, seed)
	if err != nil {
		return nil, fmt.Errorf("train price model: %w", err)
	}

	trend, err := FitBooster(ctx, scaled, ds.Trend, cfg.Boosting)
	if err != nil {
		return nil, fmt.Errorf("train trend model: %w", err)
	}

	logger.Info().
		Int("rows", ds.Len()).
		Int("trees", len(price.Trees)).
		Int("stages", len(trend.Stages)).
		Strs("classes", trend.Classes).
		Dur("duration", time.Since(start)).
		Msg("Trend models trained")

	return &Models{Scaler: scaler, Price: price, Trend: trend, Rows: ds.Len()}, nil
}
