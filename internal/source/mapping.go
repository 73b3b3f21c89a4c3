// Lumeris - Game Recommendation and DeFi Forecasting Engine
// Copyright 2026 Alexandr Fenrir (AlexandrFenrir)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/AlexandrFenrir/lumeris

package source

import (
	"math"
	"strings"

	"github.com/AlexandrFenrir/lumeris/internal/catalog"
)

type backendGame struct {
	ID           string `json:"id"`
	Title        string `json:"title"`
	Genre        string `json:"genre"`
	Players      int    `json:"players"`
	MaxPlayers   int    `json:"maxPlayers"`
	Requirements struct {
		MinLevel int `json:"minLevel"`
	} `json:"requirements"`
	Rewards struct {
		Daily float64 `json:"daily"`
	} `json:"rewards"`
}

type backendPool struct {
	ID        string   `json:"id"`
	Pair      string   `json:"pair"`
	TVL       float64  `json:"tvl"`
	Volume24h float64  `json:"volume24h"`
	APY       float64  `json:"apy"`
	Fees      *float64 `json:"fees"`
}

type backendPlay struct {
	UserID   string  `json:"userId"`
	GameID   string  `json:"gameId"`
	Playtime float64 `json:"playtime"`
	Score    float64 `json:"score"`
	Wins     int     `json:"wins"`
}

// genrePlaytime is the typical session length in minutes by genre.
var genrePlaytime = map[string]float64{
	"rpg":      60,
	"strategy": 45,
	"racing":   20,
	"card":     25,
	"action":   30,
}

const defaultPlaytime = 30

// tokenPrices are reference prices for well-known tokens.
var tokenPrices = map[string]float64{
	"Lumeris": 2.45,
	"ETH":     3500,
	"BTC":     65000,
	"USDC":    1,
	"USDT":    1,
	"GAMING":  0.85,
}

const defaultFeeTier = 0.3

func (g *backendGame) toGame() catalog.Game {
	genre := strings.ToLower(g.Genre)
	return catalog.Game{
		ID:          g.ID,
		Name:        g.Title,
		Category:    genre,
		Difficulty:  estimateDifficulty(g.Requirements.MinLevel),
		AvgPlaytime: estimatePlaytime(genre),
		RewardRate:  rewardRate(g.Rewards.Daily),
		PlayerCount: g.Players,
		Rating:      estimateRating(g.Players, g.MaxPlayers),
	}
}

func estimateDifficulty(minLevel int) string {
	switch {
	case minLevel >= 10:
		return "hard"
	case minLevel >= 5:
		return "medium"
	default:
		return "easy"
	}
}

func estimatePlaytime(genre string) float64 {
	if p, ok := genrePlaytime[genre]; ok {
		return p
	}
	return defaultPlaytime
}

// rewardRate normalizes daily rewards against a 200/day ceiling.
func rewardRate(daily float64) float64 {
	return math.Max(0, math.Min(daily/200, 1))
}

// estimateRating gives fuller games a higher rating, from 4.0 up to 5.0.
func estimateRating(players, maxPlayers int) float64 {
	if maxPlayers <= 0 {
		maxPlayers = 1
	}
	return math.Min(4+float64(players)/float64(maxPlayers)*0.8, 5)
}

func (p *backendPool) toPool() catalog.Pool {
	tokenA, tokenB := splitPair(p.Pair)
	fee := defaultFeeTier
	if p.Fees != nil {
		fee = *p.Fees
	}
	return catalog.Pool{
		ID:           p.ID,
		Name:         p.Pair,
		TokenA:       tokenA,
		TokenB:       tokenB,
		CurrentPrice: estimatePrice(tokenA, p.TVL),
		TVL:          p.TVL,
		Volume24h:    p.Volume24h,
		APY:          p.APY,
		FeeTier:      fee,
	}
}

func splitPair(pair string) (string, string) {
	a, b, _ := strings.Cut(pair, "/")
	a, b = strings.TrimSpace(a), strings.TrimSpace(b)
	if a == "" {
		a = "TOKEN_A"
	}
	if b == "" {
		b = "TOKEN_B"
	}
	return a, b
}

// estimatePrice uses the reference price for known tokens, otherwise a
// coarse tier by pool TVL.
func estimatePrice(token string, tvl float64) float64 {
	if p, ok := tokenPrices[token]; ok {
		return p
	}
	switch {
	case tvl > 50_000_000:
		return 50000
	case tvl > 10_000_000:
		return 5000
	case tvl > 1_000_000:
		return 100
	default:
		return 1
	}
}

func (p *backendPlay) toPlay() catalog.PlayRecord {
	return catalog.PlayRecord{
		UserID:   p.UserID,
		GameID:   p.GameID,
		Playtime: p.Playtime,
		Score:    p.Score,
		Wins:     p.Wins,
	}
}
