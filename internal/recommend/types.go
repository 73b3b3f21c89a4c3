// Lumeris - Game Recommendation and DeFi Forecasting Engine
// Copyright 2026 Alexandr Fenrir (AlexandrFenrir)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/AlexandrFenrir/lumeris

package recommend

// Strategy names which path produced a recommendation list.
type Strategy string

const (
	// StrategyHybrid is the content + collaborative blend for known users.
	StrategyHybrid Strategy = "hybrid"

	// StrategyPopularity is the cold-start ranking for unknown users.
	StrategyPopularity Strategy = "popularity"
)

// Recommendation is one ranked game for a user.
type Recommendation struct {
	// GameID is the catalog identifier of the game.
	GameID string `json:"game_id"`

	// Name is the display title.
	Name string `json:"name"`

	// Category is the game's genre.
	Category string `json:"category"`

	// Difficulty is easy, medium or hard.
	Difficulty string `json:"difficulty"`

	// Rating is the community rating.
	Rating float64 `json:"rating"`

	// PlayerCount is the popularity metric shown with the item.
	PlayerCount int `json:"player_count"`

	// Score is the blended hybrid score, or rating*ln(players+1) on cold start.
	Score float64 `json:"recommendation_score"`

	// Reason is a short human-readable justification.
	Reason string `json:"reason"`
}

// SimilarItem is one neighbor of a game in feature space.
type SimilarItem struct {
	GameID     string  `json:"game_id"`
	Name       string  `json:"name"`
	Category   string  `json:"category"`
	Similarity float64 `json:"similarity_score"`
}

// Result wraps a recommendation list with the strategy that produced it.
type Result struct {
	UserID          string           `json:"user_id"`
	Strategy        Strategy         `json:"strategy"`
	Recommendations []Recommendation `json:"recommendations"`
}
