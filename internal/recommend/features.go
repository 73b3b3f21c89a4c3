// Lumeris - Game Recommendation and DeFi Forecasting Engine
// Copyright 2026 Alexandr Fenrir (AlexandrFenrir)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/AlexandrFenrir/lumeris

package recommend

import (
	"errors"
	"fmt"
	"math"

	"gonum.org/v1/gonum/floats"

	"github.com/AlexandrFenrir/lumeris/internal/catalog"
)

// Closed vocabularies for one-hot encoding. A value outside the list
// encodes as all zeros.
var (
	Categories   = []string{"strategy", "rpg", "card", "action"}
	Difficulties = []string{"easy", "medium", "hard"}
)

// FeatureDim is the length of every game feature vector.
var FeatureDim = len(Categories) + len(Difficulties) + 4

const (
	playtimeScale = 100.0
	playerScale   = 30000.0
	ratingScale   = 5.0

	engagementPlaytime = 300.0
	engagementWins     = 25.0
	engagementScore    = 20000.0
	engagementCap      = 5.0
)

// ErrShape is returned when derived matrices disagree on dimensions.
var ErrShape = errors.New("matrix shape mismatch")

// Model is the derived numeric state for one catalog generation.
// Exported fields so the whole thing can be persisted and restored.
type Model struct {
	// Features has one row per game, FeatureDim columns.
	Features [][]float64

	// Similarity is the games x games cosine similarity matrix.
	Similarity [][]float64

	// UserItem has one row per user in catalog.Users order and one column
	// per game; each cell is a capped engagement score.
	UserItem [][]float64
}

// FeatureVector encodes a single game.
//
//nolint:gocritic // hugeParam: Game is read-only here
func FeatureVector(g catalog.Game) []float64 {
	v := make([]float64, 0, FeatureDim)
	v = appendOneHot(v, Categories, g.Category)
	v = appendOneHot(v, Difficulties, g.Difficulty)
	return append(v,
		g.AvgPlaytime/playtimeScale,
		g.RewardRate,
		float64(g.PlayerCount)/playerScale,
		g.Rating/ratingScale,
	)
}

func appendOneHot(v []float64, vocab []string, value string) []float64 {
	for _, term := range vocab {
		if term == value {
			v = append(v, 1)
		} else {
			v = append(v, 0)
		}
	}
	return v
}

// EngagementScore collapses one play record into a bounded scalar.
//
//nolint:gocritic // hugeParam: PlayRecord is read-only here
func EngagementScore(p catalog.PlayRecord) float64 {
	s := p.Playtime/engagementPlaytime + float64(p.Wins)/engagementWins + p.Score/engagementScore
	return math.Min(s, engagementCap)
}

// contentWeight is how strongly one play pulls similar games up.
//
//nolint:gocritic // hugeParam: PlayRecord is read-only here
func contentWeight(p catalog.PlayRecord) float64 {
	return p.Playtime / engagementPlaytime
}

// Cosine returns the cosine similarity of a and b, or 0 when either vector
// is all zeros or the lengths differ.
func Cosine(a, b []float64) float64 {
	if len(a) != len(b) || len(a) == 0 {
		return 0
	}
	na, nb := floats.Norm(a, 2), floats.Norm(b, 2)
	if na == 0 || nb == 0 {
		return 0
	}
	return floats.Dot(a, b) / (na * nb)
}

// BuildModel derives features, similarity and the user-item matrix from c.
// An empty catalog yields empty matrices.
func BuildModel(c *catalog.Catalog) *Model {
	games := c.Games()
	m := &Model{
		Features:   make([][]float64, len(games)),
		Similarity: make([][]float64, len(games)),
		UserItem:   make([][]float64, len(c.Users())),
	}

	for i := range games {
		m.Features[i] = FeatureVector(games[i])
	}

	// Fill both triangles from one computation so the matrix is exactly symmetric.
	for i := range games {
		m.Similarity[i] = make([]float64, len(games))
	}
	for i := range games {
		for j := i; j < len(games); j++ {
			s := Cosine(m.Features[i], m.Features[j])
			m.Similarity[i][j] = s
			m.Similarity[j][i] = s
		}
	}

	for u, userID := range c.Users() {
		row := make([]float64, len(games))
		for _, p := range c.History(userID) {
			if gi, ok := c.GameIndex(p.GameID); ok {
				row[gi] = EngagementScore(p)
			}
		}
		m.UserItem[u] = row
	}

	return m
}

// Validate checks that m matches a catalog with the given game and user counts.
func (m *Model) Validate(games, users int) error {
	if len(m.Features) != games {
		return fmt.Errorf("%w: %d feature rows for %d games", ErrShape, len(m.Features), games)
	}
	for i, row := range m.Features {
		if len(row) != FeatureDim {
			return fmt.Errorf("%w: feature row %d has %d columns, want %d", ErrShape, i, len(row), FeatureDim)
		}
	}
	if len(m.Similarity) != games {
		return fmt.Errorf("%w: %d similarity rows for %d games", ErrShape, len(m.Similarity), games)
	}
	for i, row := range m.Similarity {
		if len(row) != games {
			return fmt.Errorf("%w: similarity row %d has %d columns, want %d", ErrShape, i, len(row), games)
		}
	}
	if len(m.UserItem) != users {
		return fmt.Errorf("%w: %d user rows for %d users", ErrShape, len(m.UserItem), users)
	}
	for i, row := range m.UserItem {
		if len(row) != games {
			return fmt.Errorf("%w: user row %d has %d columns, want %d", ErrShape, i, len(row), games)
		}
	}
	return nil
}
