// Lumeris - Game Recommendation and DeFi Forecasting Engine
// Copyright 2026 Alexandr Fenrir (AlexandrFenrir)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/AlexandrFenrir/lumeris

package forecast

import (
	"fmt"
	"math"
)

// Risk levels.
const (
	RiskLow    = "low"
	RiskMedium = "medium"
	RiskHigh   = "high"
)

const (
	volatilityWeight = 0.4
	liquidityWeight  = 0.3
	trendWeight      = 0.3

	maxComponent = 10.0

	lowRiskBelow    = 3.0
	mediumRiskBelow = 6.0
)

// Risk is the composite risk assessment of one pool.
type Risk struct {
	Score      float64        `json:"overall_score"`
	Level      string         `json:"level"`
	Components RiskComponents `json:"components"`
}

// RiskComponents are the 0-10 inputs to the overall score.
type RiskComponents struct {
	Volatility float64 `json:"volatility_risk"`
	Liquidity  float64 `json:"liquidity_risk"`
	Trend      float64 `json:"trend_risk"`
}

// AssessRisk combines volatility, liquidity and predicted direction.
// A non-positive TVL is treated as maximal liquidity risk.
func AssessRisk(volatility, tvl float64, trend string) Risk {
	c := RiskComponents{
		Volatility: math.Min(volatility*100, maxComponent),
		Liquidity:  maxComponent,
		Trend:      trendRisk(trend),
	}
	if tvl > 0 {
		c.Liquidity = math.Max(0, maxComponent-math.Log10(tvl))
	}

	score := volatilityWeight*c.Volatility + liquidityWeight*c.Liquidity + trendWeight*c.Trend
	return Risk{Score: score, Level: RiskLevel(score), Components: c}
}

func trendRisk(trend string) float64 {
	switch trend {
	case TrendDown:
		return 3
	case TrendUp:
		return 1
	default:
		return 2
	}
}

// RiskLevel maps a score to low (<3), medium (<6) or high.
func RiskLevel(score float64) string {
	switch {
	case score < lowRiskBelow:
		return RiskLow
	case score < mediumRiskBelow:
		return RiskMedium
	default:
		return RiskHigh
	}
}

// Signal is one advisory trading action.
type Signal struct {
	Type       string  `json:"type"`
	Reason     string  `json:"reason"`
	Strength   string  `json:"strength"`
	Confidence float64 `json:"confidence"`
}

const (
	momentumThreshold = 0.02
	highAPYThreshold  = 30.0
)

// TradingSignals applies every rule independently and returns those that
// fire, in rule order. With nothing firing it returns a single hold.
func TradingSignals(momentum, apy float64, trend string, risk Risk) []Signal {
	var signals []Signal

	switch {
	case momentum > momentumThreshold:
		signals = append(signals, Signal{Type: "buy", Reason: "Strong positive momentum", Strength: "strong", Confidence: 0.8})
	case momentum < -momentumThreshold:
		signals = append(signals, Signal{Type: "sell", Reason: "Strong negative momentum", Strength: "strong", Confidence: 0.8})
	}

	switch {
	case trend == TrendUp && risk.Level != RiskHigh:
		signals = append(signals, Signal{Type: "buy", Reason: "Upward trend with acceptable risk", Strength: "medium", Confidence: 0.7})
	case trend == TrendDown:
		signals = append(signals, Signal{Type: "sell", Reason: "Downward trend predicted", Strength: "medium", Confidence: 0.7})
	}

	if apy > highAPYThreshold {
		signals = append(signals, Signal{Type: "stake", Reason: fmt.Sprintf("High APY: %.1f%%", apy), Strength: "medium", Confidence: 0.65})
	}

	if risk.Level == RiskHigh {
		signals = append(signals, Signal{Type: "warning", Reason: "High risk detected - exercise caution", Strength: "strong", Confidence: 0.9})
	}

	if len(signals) == 0 {
		return []Signal{{Type: "hold", Reason: "No strong signals detected", Strength: "weak", Confidence: 0.5}}
	}
	return signals
}
