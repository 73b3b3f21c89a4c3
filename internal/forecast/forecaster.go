// Lumeris - Game Recommendation and DeFi Forecasting Engine
// Copyright 2026 Alexandr Fenrir (AlexandrFenrir)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/AlexandrFenrir/lumeris

package forecast

import (
	"errors"
	"fmt"
	"hash/fnv"
	"math"
	"math/rand/v2"

	"github.com/AlexandrFenrir/lumeris/internal/catalog"
)

var (
	// ErrPoolNotFound is returned for an unknown pool id.
	ErrPoolNotFound = errors.New("pool not found")

	// ErrModelUnavailable is returned when the generation trained no models.
	ErrModelUnavailable = errors.New("forecast model unavailable")
)

const (
	confidenceFloor = 0.5
	confidenceDecay = 0.1
	momentumDamping = 0.5
	dailyNoiseStd   = 0.01
)

// ForecastPoint is the projection for one future day.
type ForecastPoint struct {
	Day            int     `json:"day"`
	PredictedPrice float64 `json:"predicted_price"`
	Confidence     float64 `json:"confidence"`
}

// Prediction is the full forecast for one pool.
type Prediction struct {
	PoolID         string  `json:"pool_id"`
	PoolName       string  `json:"pool_name"`
	CurrentPrice   float64 `json:"current_price"`
	PredictedPrice float64 `json:"predicted_price"`
	PriceChangePct float64 `json:"price_change_pct"`
	Trend          string  `json:"trend"`

	// TrendConfidence is the in-sample posterior of the predicted class.
	TrendConfidence    float64            `json:"trend_confidence"`
	TrendProbabilities map[string]float64 `json:"trend_probabilities"`

	Forecast []ForecastPoint `json:"forecast"`
	Risk     Risk            `json:"risk"`
	Signals  []Signal        `json:"trading_signals"`
}

// Forecaster serves predictions from one trained generation. It holds no
// mutable state and is safe for concurrent use.
type Forecaster struct {
	catalog *catalog.Catalog
	history History
	models  *Models
	seed    uint64

	defaultHorizon int
	maxHorizon     int
}

// NewForecaster checks that history and models line up with the catalog.
//
//nolint:gocritic // hugeParam: Config is read once per build
func NewForecaster(c *catalog.Catalog, h History, m *Models, seed uint64, cfg Config) (*Forecaster, error) {
	for _, p := range c.Pools() {
		if len(h[p.ID]) == 0 {
			return nil, fmt.Errorf("forecaster: no history for pool %s", p.ID)
		}
		for d, o := range h[p.ID] {
			if d > 0 && o.Date.Before(h[p.ID][d-1].Date) {
				return nil, fmt.Errorf("forecaster: history for pool %s is not date ordered", p.ID)
			}
		}
	}
	if m.Fitted() && m.Scaler.Dim() != FeatureCount {
		return nil, fmt.Errorf("forecaster: scaler has %d columns, want %d", m.Scaler.Dim(), FeatureCount)
	}
	if cfg.DefaultHorizon <= 0 {
		cfg.DefaultHorizon = DefaultConfig().DefaultHorizon
	}
	if cfg.MaxHorizon < cfg.DefaultHorizon {
		cfg.MaxHorizon = cfg.DefaultHorizon
	}
	return &Forecaster{
		catalog:        c,
		history:        h,
		models:         m,
		seed:           seed,
		defaultHorizon: cfg.DefaultHorizon,
		maxHorizon:     cfg.MaxHorizon,
	}, nil
}

// History returns the synthesized series the models were trained on.
func (f *Forecaster) History() History { return f.history }

// Models returns the fitted estimators.
func (f *Forecaster) Models() *Models { return f.models }

// Predict forecasts poolID over horizon days. A non-positive horizon uses
// the default; larger than the maximum is capped.
func (f *Forecaster) Predict(poolID string, horizon int) (*Prediction, error) {
	idx, ok := f.catalog.PoolIndex(poolID)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrPoolNotFound, poolID)
	}
	if !f.models.Fitted() {
		return nil, ErrModelUnavailable
	}
	pool := f.catalog.Pools()[idx]
	horizon = f.clampHorizon(horizon)

	series := f.history[poolID]
	last := len(series) - 1
	latest := series[last]
	row := f.models.Scaler.Transform(FeatureRow(series, last))

	predicted := f.models.Price.Predict(row)
	trend, confidence, dist := f.models.Trend.Predict(row)
	risk := AssessRisk(latest.Volatility, latest.TVL, trend)

	return &Prediction{
		PoolID:             pool.ID,
		PoolName:           pool.Name,
		CurrentPrice:       latest.Price,
		PredictedPrice:     predicted,
		PriceChangePct:     (predicted - latest.Price) / latest.Price * 100,
		Trend:              trend,
		TrendConfidence:    confidence,
		TrendProbabilities: dist,
		Forecast:           f.project(poolID, latest, horizon),
		Risk:               risk,
		Signals:            TradingSignals(latest.Momentum, latest.APY, trend, risk),
	}, nil
}

// PredictAll forecasts every pool in catalog order. Pools that fail are
// left out; the rest are still returned.
func (f *Forecaster) PredictAll(horizon int) []Prediction {
	out := make([]Prediction, 0, len(f.catalog.Pools()))
	for _, p := range f.catalog.Pools() {
		pred, err := f.Predict(p.ID, horizon)
		if err != nil {
			continue
		}
		out = append(out, *pred)
	}
	return out
}

func (f *Forecaster) clampHorizon(h int) int {
	if h <= 0 {
		return f.defaultHorizon
	}
	return min(h, f.maxHorizon)
}

// project extrapolates damped momentum with noise that widens each day.
//
//nolint:gocritic // hugeParam: Observation is read-only here
func (f *Forecaster) project(poolID string, latest Observation, horizon int) []ForecastPoint {
	rng := f.noiseSource(poolID)
	points := make([]ForecastPoint, horizon)
	for d := 1; d <= horizon; d++ {
		change := latest.Momentum * float64(d) * momentumDamping
		noise := rng.NormFloat64() * dailyNoiseStd * float64(d)
		points[d-1] = ForecastPoint{
			Day:            d,
			PredictedPrice: latest.Price * (1 + change + noise),
			Confidence:     ForecastConfidence(d),
		}
	}
	return points
}

// noiseSource is a fresh generator per call so reads never share state.
func (f *Forecaster) noiseSource(poolID string) *rand.Rand {
	h := fnv.New64a()
	_, _ = h.Write([]byte(poolID))
	return rand.New(rand.NewPCG(f.seed, h.Sum64())) //nolint:gosec // simulation noise
}

// ForecastConfidence is max(0.5, 1 - 0.1*day).
func ForecastConfidence(day int) float64 {
	return math.Max(confidenceFloor, 1-confidenceDecay*float64(day))
}
