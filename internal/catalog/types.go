// Lumeris - Game Recommendation and DeFi Forecasting Engine
// Copyright 2026 Alexandr Fenrir (AlexandrFenrir)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/AlexandrFenrir/lumeris

// Package catalog holds the normalized game and pool records plus the
// per-user play history that every feature builder reads from.
//
// A Catalog is immutable once built. A reload produces a new Catalog.
package catalog

// Game is a recommendable game.
type Game struct {
	// ID uniquely identifies the game.
	ID string `json:"id" validate:"required"`

	// Name is the display title.
	Name string `json:"name"`

	// Category is the lower-cased genre (strategy, rpg, card, action, ...).
	Category string `json:"category"`

	// Difficulty is easy, medium or hard.
	Difficulty string `json:"difficulty"`

	// AvgPlaytime is the typical session length in minutes.
	AvgPlaytime float64 `json:"avg_playtime" validate:"finite,gte=0"`

	// RewardRate is the normalized reward yield in [0, 1].
	RewardRate float64 `json:"reward_rate" validate:"finite,gte=0"`

	// PlayerCount is the number of active players.
	PlayerCount int `json:"player_count" validate:"gte=0"`

	// Rating is the community rating in [0, 5].
	Rating float64 `json:"rating" validate:"finite,gte=0,lte=5"`
}

// Pool is a liquidity pool snapshot.
type Pool struct {
	ID           string  `json:"id" validate:"required"`
	Name         string  `json:"name"`
	TokenA       string  `json:"token_a"`
	TokenB       string  `json:"token_b"`
	CurrentPrice float64 `json:"current_price" validate:"finite,gt=0"`
	TVL          float64 `json:"tvl" validate:"finite,gte=0"`
	Volume24h    float64 `json:"volume_24h" validate:"finite,gte=0"`
	APY          float64 `json:"apy" validate:"finite,gte=-100"`
	FeeTier      float64 `json:"fee_tier" validate:"finite,gte=0"`
}

// PlayRecord is one user's engagement with one game.
type PlayRecord struct {
	UserID   string  `json:"user_id" validate:"required"`
	GameID   string  `json:"game_id" validate:"required"`
	Playtime float64 `json:"playtime" validate:"finite,gte=0"`
	Wins     int     `json:"wins" validate:"gte=0"`
	Score    float64 `json:"score" validate:"finite,gte=0"`
}

// Dataset is the raw input to a catalog build, as fetched from the backend
// or taken from the built-in fallback.
type Dataset struct {
	Games []Game       `json:"games"`
	Pools []Pool       `json:"pools"`
	Plays []PlayRecord `json:"plays"`
}
