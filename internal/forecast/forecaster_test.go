// Lumeris - Game Recommendation and DeFi Forecasting Engine
// Copyright 2026 Alexandr Fenrir (AlexandrFenrir)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/AlexandrFenrir/lumeris

package forecast

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AlexandrFenrir/lumeris/internal/catalog"
)

func testConfig() Config {
	cfg := DefaultConfig()
	cfg.Forest = ForestConfig{Trees: 8, MaxDepth: 5, MinSamplesSplit: 2, Workers: 2}
	cfg.Boosting = BoostingConfig{Stages: 15, MaxDepth: 3, LearningRate: 0.1}
	return cfg
}

func newTestForecaster(t *testing.T, seed uint64) *Forecaster {
	t.Helper()

	c := catalog.New(catalog.Dataset{Pools: catalog.DefaultPools()}, zerolog.Nop())
	cfg := testConfig()

	order := make([]string, 0, len(c.Pools()))
	for _, p := range c.Pools() {
		order = append(order, p.ID)
	}
	h := Synthesize(c.Pools(), cfg.HistoryDays, testEnd, seeded(seed))
	models, err := Train(context.Background(), BuildDataset(order, h), cfg, seed, zerolog.Nop())
	require.NoError(t, err)
	require.True(t, models.Fitted())
	assert.Equal(t, 4*28, models.Rows)

	f, err := NewForecaster(c, h, models, seed, cfg)
	require.NoError(t, err)
	return f
}

func TestPredictUnknownPool(t *testing.T) {
	t.Parallel()

	f := newTestForecaster(t, 11)
	pred, err := f.Predict("pool_999", 7)
	assert.Nil(t, pred)
	assert.True(t, errors.Is(err, ErrPoolNotFound))
}

func TestPredictShape(t *testing.T) {
	t.Parallel()

	f := newTestForecaster(t, 11)
	pred, err := f.Predict("pool_001", 14)
	require.NoError(t, err)

	series := f.History()["pool_001"]
	latest := series[len(series)-1]

	assert.Equal(t, "ETH/USDC", pred.PoolName)
	assert.Equal(t, latest.Price, pred.CurrentPrice)
	assert.InDelta(t, (pred.PredictedPrice-pred.CurrentPrice)/pred.CurrentPrice*100, pred.PriceChangePct, 1e-9)
	assert.Contains(t, []string{TrendUp, TrendDown, TrendStable}, pred.Trend)
	assert.Equal(t, pred.TrendProbabilities[pred.Trend], pred.TrendConfidence)

	require.Len(t, pred.Forecast, 14)
	for i, p := range pred.Forecast {
		assert.Equal(t, i+1, p.Day)
		assert.GreaterOrEqual(t, p.Confidence, 0.5)
		if i > 0 {
			assert.LessOrEqual(t, p.Confidence, pred.Forecast[i-1].Confidence)
		}
	}

	assert.Equal(t, AssessRisk(latest.Volatility, latest.TVL, pred.Trend), pred.Risk)
	assert.NotEmpty(t, pred.Signals)
}

func TestPredictIsRepeatable(t *testing.T) {
	t.Parallel()

	f := newTestForecaster(t, 5)
	first, err := f.Predict("pool_003", 7)
	require.NoError(t, err)

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			again, err := f.Predict("pool_003", 7)
			assert.NoError(t, err)
			assert.Equal(t, first, again)
		}()
	}
	wg.Wait()

	// Noise for day d does not depend on the horizon requested.
	longer, err := f.Predict("pool_003", 10)
	require.NoError(t, err)
	assert.Equal(t, first.Forecast, longer.Forecast[:7])
}

func TestPredictHorizonBounds(t *testing.T) {
	t.Parallel()

	f := newTestForecaster(t, 5)

	pred, err := f.Predict("pool_002", 0)
	require.NoError(t, err)
	assert.Len(t, pred.Forecast, 7)

	pred, err = f.Predict("pool_002", 500)
	require.NoError(t, err)
	assert.Len(t, pred.Forecast, 30)
}

func TestPredictAll(t *testing.T) {
	t.Parallel()

	f := newTestForecaster(t, 3)
	all := f.PredictAll(5)
	require.Len(t, all, 4)
	for i, p := range catalog.DefaultPools() {
		assert.Equal(t, p.ID, all[i].PoolID)
	}
}

func TestPredictWithoutModels(t *testing.T) {
	t.Parallel()

	c := catalog.New(catalog.Dataset{Pools: catalog.DefaultPools()[:1]}, zerolog.Nop())
	h := Synthesize(c.Pools(), 2, testEnd, seeded(1))
	f, err := NewForecaster(c, h, &Models{}, 1, DefaultConfig())
	require.NoError(t, err)

	_, err = f.Predict("pool_001", 3)
	assert.ErrorIs(t, err, ErrModelUnavailable)
	assert.Empty(t, f.PredictAll(3))
}

func TestNewForecasterMissingHistory(t *testing.T) {
	t.Parallel()

	c := catalog.New(catalog.Dataset{Pools: catalog.DefaultPools()}, zerolog.Nop())
	_, err := NewForecaster(c, History{}, &Models{}, 1, DefaultConfig())
	assert.Error(t, err)
}
