// Lumeris - Game Recommendation and DeFi Forecasting Engine
// Copyright 2026 Alexandr Fenrir (AlexandrFenrir)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/AlexandrFenrir/lumeris

package catalog

// DefaultGames is the built-in game catalog used when the backend is
// unreachable or returns nothing.
func DefaultGames() []Game {
	return []Game{
		{ID: "game-1", Name: "Stellar Conquest", Category: "strategy", Difficulty: "medium", AvgPlaytime: 45, RewardRate: 0.8, PlayerCount: 15420, Rating: 4.6},
		{ID: "game-2", Name: "Crypto Raiders", Category: "rpg", Difficulty: "hard", AvgPlaytime: 60, RewardRate: 0.9, PlayerCount: 12350, Rating: 4.7},
		{ID: "game-3", Name: "NFT Poker", Category: "card", Difficulty: "easy", AvgPlaytime: 20, RewardRate: 0.7, PlayerCount: 8920, Rating: 4.4},
		{ID: "game-4", Name: "Battle Royale X", Category: "action", Difficulty: "medium", AvgPlaytime: 30, RewardRate: 0.75, PlayerCount: 25000, Rating: 4.8},
	}
}

// DefaultPools is the built-in pool catalog.
func DefaultPools() []Pool {
	return []Pool{
		{ID: "pool_001", Name: "ETH/USDC", TokenA: "ETH", TokenB: "USDC", CurrentPrice: 3500, TVL: 25_000_000, Volume24h: 5_000_000, APY: 12.5, FeeTier: 0.3},
		{ID: "pool_002", Name: "BTC/USDT", TokenA: "BTC", TokenB: "USDT", CurrentPrice: 65000, TVL: 50_000_000, Volume24h: 10_000_000, APY: 8.2, FeeTier: 0.3},
		{ID: "pool_003", Name: "LUMERIS/ETH", TokenA: "LUMERIS", TokenB: "ETH", CurrentPrice: 2.5, TVL: 5_000_000, Volume24h: 800_000, APY: 45.3, FeeTier: 1.0},
		{ID: "pool_004", Name: "USDC/USDT", TokenA: "USDC", TokenB: "USDT", CurrentPrice: 1.0, TVL: 100_000_000, Volume24h: 20_000_000, APY: 3.5, FeeTier: 0.01},
	}
}

// samplePlay refers to a game by its position in the loaded catalog.
type samplePlay struct {
	user     string
	game     int
	playtime float64
	score    float64
	wins     int
}

var samplePlays = []samplePlay{
	{"user_001", 0, 120, 8500, 15},
	{"user_001", 1, 200, 12000, 8},
	{"user_001", 2, 60, 3000, 10},
	{"user_002", 0, 80, 6000, 10},
	{"user_002", 1, 150, 15000, 20},
	{"user_003", 1, 250, 18000, 12},
	{"user_003", 2, 100, 9000, 15},
}

// DefaultPlays builds the sample play history over the first three games
// of whatever catalog was loaded. With fewer than three games there is no
// sample history.
func DefaultPlays(games []Game) []PlayRecord {
	if len(games) < 3 {
		return []PlayRecord{}
	}
	plays := make([]PlayRecord, 0, len(samplePlays))
	for _, s := range samplePlays {
		plays = append(plays, PlayRecord{
			UserID:   s.user,
			GameID:   games[s.game].ID,
			Playtime: s.playtime,
			Score:    s.score,
			Wins:     s.wins,
		})
	}
	return plays
}

// DefaultDataset is the complete built-in dataset.
func DefaultDataset() Dataset {
	games := DefaultGames()
	return Dataset{Games: games, Pools: DefaultPools(), Plays: DefaultPlays(games)}
}
