// Lumeris - Game Recommendation and DeFi Forecasting Engine
// Copyright 2026 Alexandr Fenrir (AlexandrFenrir)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/AlexandrFenrir/lumeris

package forecast

// Trend labels.
const (
	TrendUp     = "up"
	TrendDown   = "down"
	TrendStable = "stable"
)

// trendBand is the fractional next-day move that separates up/down from stable.
const trendBand = 0.02

// FeatureNames lists the model input columns in order.
var FeatureNames = []string{
	"price", "tvl", "volume_24h", "apy", "sma_7", "momentum",
	"volume_tvl_ratio", "volatility", "price_lag_1", "volume_lag_1",
}

// FeatureCount is len(FeatureNames).
var FeatureCount = len(FeatureNames)

// Dataset is the supervised training set built from a History.
type Dataset struct {
	X     [][]float64
	Price []float64
	Trend []string
}

// Len is the number of training rows.
func (d *Dataset) Len() int { return len(d.X) }

// TrendLabel classifies the move from current to next.
func TrendLabel(current, next float64) string {
	if current == 0 {
		return TrendStable
	}
	change := (next - current) / current
	switch {
	case change > trendBand:
		return TrendUp
	case change < -trendBand:
		return TrendDown
	default:
		return TrendStable
	}
}

// FeatureRow builds the model input for day d of series. Lag columns use
// day d-1; on the first day they repeat day d.
func FeatureRow(series []Observation, d int) []float64 {
	o := series[d]
	lag := o
	if d > 0 {
		lag = series[d-1]
	}
	return []float64{
		o.Price, o.TVL, o.Volume, o.APY, o.SMA7, o.Momentum,
		o.VolumeTVLRatio, o.Volatility, lag.Price, lag.Volume,
	}
}

// BuildDataset turns history into rows for the pools in order. A pool's
// first day has no lag and its last day has no target; both are skipped.
func BuildDataset(order []string, h History) Dataset {
	var ds Dataset
	for _, id := range order {
		series := h[id]
		for d := 1; d < len(series)-1; d++ {
			ds.X = append(ds.X, FeatureRow(series, d))
			ds.Price = append(ds.Price, series[d+1].Price)
			ds.Trend = append(ds.Trend, TrendLabel(series[d].Price, series[d+1].Price))
		}
	}
	return ds
}
