// Lumeris - Game Recommendation and DeFi Forecasting Engine
// Copyright 2026 Alexandr Fenrir (AlexandrFenrir)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/AlexandrFenrir/lumeris

package recommend

import (
	"cmp"
	"fmt"
	"math"
	"slices"
	"strconv"
	"strings"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"gonum.org/v1/gonum/floats"

	"github.com/AlexandrFenrir/lumeris/internal/catalog"
)

const (
	contentWeightBlend = 0.6
	collabWeightBlend  = 0.4

	// playedSentinel forces already-played games below every positive score.
	playedSentinel = -1.0

	highRatingThreshold = 4.7
	trendingThreshold   = 20000
)

// Scorer answers recommendation and similarity queries against one
// catalog generation. It never mutates its inputs and is safe for
// concurrent use.
type Scorer struct {
	catalog *catalog.Catalog
	model   *Model
}

// NewScorer binds a model to the catalog it was built from.
func NewScorer(c *catalog.Catalog, m *Model) (*Scorer, error) {
	if err := m.Validate(len(c.Games()), len(c.Users())); err != nil {
		return nil, err
	}
	return &Scorer{catalog: c, model: m}, nil
}

// Model returns the underlying matrices.
func (s *Scorer) Model() *Model { return s.model }

// Recommend returns up to k games for userID. Unknown users get the
// popularity ranking; known users get the hybrid blend with played games
// excluded and only positive scores kept.
func (s *Scorer) Recommend(userID string, k int) Result {
	res := Result{UserID: userID, Strategy: StrategyHybrid, Recommendations: []Recommendation{}}
	if k <= 0 {
		return res
	}

	row, known := s.catalog.UserIndex(userID)
	if !known {
		res.Strategy = StrategyPopularity
		res.Recommendations = s.popular(k)
		return res
	}

	scores := s.hybridScores(userID, row)
	favorite := s.favoriteCategory(userID)

	for _, i := range rankDescending(scores) {
		if len(res.Recommendations) == k || scores[i] <= 0 {
			break
		}
		g := s.catalog.Games()[i]
		res.Recommendations = append(res.Recommendations, recommendation(g, scores[i], reasonFor(g, favorite)))
	}
	return res
}

// hybridScores blends content and collaborative signal for one user and
// marks played games with the sentinel.
func (s *Scorer) hybridScores(userID string, row int) []float64 {
	n := len(s.catalog.Games())
	history := s.catalog.History(userID)

	content := make([]float64, n)
	for _, p := range history {
		if gi, ok := s.catalog.GameIndex(p.GameID); ok {
			floats.AddScaled(content, contentWeight(p), s.model.Similarity[gi])
		}
	}

	collab := make([]float64, n)
	self := s.model.UserItem[row]
	for other, vec := range s.model.UserItem {
		if other == row {
			continue
		}
		floats.AddScaled(collab, Cosine(self, vec), vec)
	}

	scores := make([]float64, n)
	floats.AddScaled(scores, contentWeightBlend, content)
	floats.AddScaled(scores, collabWeightBlend, collab)

	for _, p := range history {
		if gi, ok := s.catalog.GameIndex(p.GameID); ok {
			scores[gi] = playedSentinel
		}
	}
	return scores
}

// favoriteCategory is the category with the highest cumulative playtime.
// Ties go to the category seen first in the user's history.
func (s *Scorer) favoriteCategory(userID string) string {
	totals := make(map[string]float64)
	var order []string
	for _, p := range s.catalog.History(userID) {
		gi, ok := s.catalog.GameIndex(p.GameID)
		if !ok {
			continue
		}
		cat := s.catalog.Games()[gi].Category
		if _, seen := totals[cat]; !seen {
			order = append(order, cat)
		}
		totals[cat] += p.Playtime
	}

	best, bestTotal := "", math.Inf(-1)
	for _, cat := range order {
		if totals[cat] > bestTotal {
			best, bestTotal = cat, totals[cat]
		}
	}
	return best
}

// popular ranks every game by rating * ln(players + 1).
func (s *Scorer) popular(k int) []Recommendation {
	games := s.catalog.Games()
	scores := make([]float64, len(games))
	for i := range games {
		scores[i] = games[i].Rating * math.Log(float64(games[i].PlayerCount)+1)
	}

	ranked := rankDescending(scores)
	if len(ranked) > k {
		ranked = ranked[:k]
	}

	out := make([]Recommendation, 0, len(ranked))
	for _, i := range ranked {
		g := games[i]
		out = append(out, recommendation(g, scores[i], "Popular choice with "+groupThousands(g.PlayerCount)+" players"))
	}
	return out
}

// SimilarItems returns the n games closest to itemID, never itemID itself.
// An unknown id or n <= 0 yields an empty list.
func (s *Scorer) SimilarItems(itemID string, n int) []SimilarItem {
	out := []SimilarItem{}
	idx, ok := s.catalog.GameIndex(itemID)
	if !ok || n <= 0 {
		return out
	}

	// Scratch copy with self masked; the shared row stays untouched.
	row := slices.Clone(s.model.Similarity[idx])
	row[idx] = playedSentinel

	for _, i := range rankDescending(row) {
		if len(out) == n {
			break
		}
		if i == idx {
			continue
		}
		g := s.catalog.Games()[i]
		out = append(out, SimilarItem{GameID: g.ID, Name: g.Name, Category: g.Category, Similarity: row[i]})
	}
	return out
}

// rankDescending returns indices of scores ordered by score, highest first,
// with ties kept in index (catalog) order.
func rankDescending(scores []float64) []int {
	idx := make([]int, len(scores))
	for i := range idx {
		idx[i] = i
	}
	slices.SortStableFunc(idx, func(a, b int) int {
		return cmp.Compare(scores[b], scores[a])
	})
	return idx
}

//nolint:gocritic // hugeParam: Game is read-only here
func recommendation(g catalog.Game, score float64, reason string) Recommendation {
	return Recommendation{
		GameID:      g.ID,
		Name:        g.Name,
		Category:    g.Category,
		Difficulty:  g.Difficulty,
		Rating:      g.Rating,
		PlayerCount: g.PlayerCount,
		Score:       score,
		Reason:      reason,
	}
}

// reasonFor applies the justification rules in order; the first match wins.
//
//nolint:gocritic // hugeParam: Game is read-only here
func reasonFor(g catalog.Game, favorite string) string {
	switch {
	case favorite != "" && g.Category == favorite:
		return fmt.Sprintf("Based on your love for %s games", g.Category)
	case g.Rating >= highRatingThreshold:
		return "Highly rated by the community (" + formatRating(g.Rating) + " stars)"
	case g.PlayerCount > trendingThreshold:
		return "Trending with " + groupThousands(g.PlayerCount) + " active players"
	default:
		return "You might enjoy this hidden gem"
	}
}

// formatRating prints the rating unrounded, keeping one decimal on whole
// numbers ("5.0", "4.76").
func formatRating(r float64) string {
	out := strconv.FormatFloat(r, 'f', -1, 64)
	if !strings.ContainsAny(out, ".eEnN") {
		out += ".0"
	}
	return out
}

// groupThousands renders n with comma digit grouping.
func groupThousands(n int) string {
	return message.NewPrinter(language.English).Sprintf("%d", n)
}
