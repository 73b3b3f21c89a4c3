// Lumeris - Game Recommendation and DeFi Forecasting Engine
// Copyright 2026 Alexandr Fenrir (AlexandrFenrir)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/AlexandrFenrir/lumeris

// Package forecast synthesizes pool history, trains the price and trend
// models over it, and turns model output into forecasts, risk scores and
// trading signals.
//
// Everything in a trained Forecaster is read-only; Predict draws its noise
// from a generator seeded by (generation seed, pool id) so repeated calls
// with the same inputs return the same result.
package forecast

import (
	"math"
	"math/rand/v2"
	"time"

	"gonum.org/v1/gonum/stat"

	"github.com/AlexandrFenrir/lumeris/internal/catalog"
)

const (
	priceNoiseStd  = 0.02
	trendDrift     = 0.001
	tvlNoiseStd    = 0.01
	volumeNoiseStd = 0.1
	apyNoiseStd    = 0.05
	smaWindow      = 7
)

// Observation is one synthesized day for one pool.
type Observation struct {
	Date           time.Time `json:"date"`
	Price          float64   `json:"price"`
	TVL            float64   `json:"tvl"`
	Volume         float64   `json:"volume_24h"`
	APY            float64   `json:"apy"`
	SMA7           float64   `json:"sma_7"`
	Momentum       float64   `json:"momentum"`
	VolumeTVLRatio float64   `json:"volume_tvl_ratio"`
	Volatility     float64   `json:"volatility"`
}

// History maps pool id to its date-ordered observations.
type History map[string][]Observation

// Synthesize generates days observations per pool, the last one dated end.
// Pools are processed in slice order so a seeded rng gives a reproducible
// history.
func Synthesize(pools []catalog.Pool, days int, end time.Time, rng *rand.Rand) History {
	h := make(History, len(pools))
	if days <= 0 {
		return h
	}
	start := end.AddDate(0, 0, -(days - 1))
	for i := range pools {
		h[pools[i].ID] = synthesizePool(&pools[i], days, start, rng)
	}
	return h
}

func synthesizePool(p *catalog.Pool, days int, start time.Time, rng *rand.Rand) []Observation {
	series := make([]Observation, days)
	prices := make([]float64, days)
	prev := p.CurrentPrice

	for d := 0; d < days; d++ {
		drift := trendDrift
		if d >= days/2 {
			drift = -trendDrift
		}
		noise := rng.NormFloat64() * priceNoiseStd
		price := prev * (1 + noise + drift)
		prices[d] = price

		tvl := p.TVL * (1 + rng.NormFloat64()*tvlNoiseStd)

		volatility := math.Abs(noise)
		volume := math.Max(0, p.Volume24h*(1+volatility+rng.NormFloat64()*volumeNoiseStd))

		apy := p.APY * (1 + rng.NormFloat64()*apyNoiseStd)
		if tvl > 0 {
			apy *= p.TVL / tvl
		}

		sma := price
		if d >= smaWindow {
			sma = stat.Mean(prices[d-smaWindow+1:d+1], nil)
		}

		momentum := 0.0
		if d > 0 {
			momentum = (price - prices[d-1]) / prices[d-1]
		}

		ratio := 0.0
		if tvl > 0 {
			ratio = volume / tvl
		}

		series[d] = Observation{
			Date:           start.AddDate(0, 0, d),
			Price:          price,
			TVL:            tvl,
			Volume:         volume,
			APY:            apy,
			SMA7:           sma,
			Momentum:       momentum,
			VolumeTVLRatio: ratio,
			Volatility:     volatility,
		}
		prev = price
	}
	return series
}
