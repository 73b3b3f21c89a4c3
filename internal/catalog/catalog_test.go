// Lumeris - Game Recommendation and DeFi Forecasting Engine
// Copyright 2026 Alexandr Fenrir (AlexandrFenrir)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/AlexandrFenrir/lumeris

package catalog

import (
	"math"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewDefaultDataset(t *testing.T) {
	t.Parallel()

	c := New(DefaultDataset(), zerolog.Nop())

	require.Len(t, c.Games(), 4)
	require.Len(t, c.Pools(), 4)
	assert.Equal(t, []string{"user_001", "user_002", "user_003"}, c.Users())
	assert.Zero(t, c.Dropped())

	idx, ok := c.GameIndex("game-3")
	require.True(t, ok)
	assert.Equal(t, 2, idx)

	history := c.History("user_001")
	require.Len(t, history, 3)
	assert.Equal(t, "game-1", history[0].GameID)
	assert.InDelta(t, 120.0, history[0].Playtime, 1e-12)
}

func TestNewDropsBadRecords(t *testing.T) {
	t.Parallel()

	ds := Dataset{
		Games: []Game{
			{ID: "g1", Category: " Strategy ", Difficulty: "MEDIUM", Rating: 4},
			{ID: "g1", Category: "rpg"},
			{ID: "", Category: "card"},
			{ID: "g2", Rating: 7},
		},
		Pools: []Pool{
			{ID: "p1", CurrentPrice: 1},
			{ID: "p2", CurrentPrice: 0},
		},
		Plays: []PlayRecord{
			{UserID: "u1", GameID: "g1", Playtime: 10},
			{UserID: "u1", GameID: "missing", Playtime: 10},
			{UserID: "u1", GameID: "g1", Playtime: 99},
		},
	}

	c := New(ds, zerolog.Nop())

	require.Len(t, c.Games(), 1)
	assert.Equal(t, "strategy", c.Games()[0].Category)
	assert.Equal(t, "medium", c.Games()[0].Difficulty)
	require.Len(t, c.Pools(), 1)
	assert.Equal(t, 5, c.Dropped())

	history := c.History("u1")
	require.Len(t, history, 1)
	assert.InDelta(t, 99.0, history[0].Playtime, 1e-12, "later duplicate replaces earlier")
}

func TestNewEmpty(t *testing.T) {
	t.Parallel()

	c := New(Dataset{}, zerolog.Nop())
	assert.Empty(t, c.Games())
	assert.Empty(t, c.Pools())
	assert.Empty(t, c.Users())
	assert.Nil(t, c.History("anyone"))
}

func TestDefaultPlaysShortCatalog(t *testing.T) {
	t.Parallel()

	assert.Empty(t, DefaultPlays(nil))
	assert.Empty(t, DefaultPlays([]Game{{ID: "only"}}))
	assert.Empty(t, DefaultPlays([]Game{{ID: "a"}, {ID: "b"}}))

	plays := DefaultPlays([]Game{{ID: "a"}, {ID: "b"}, {ID: "c"}, {ID: "d"}})
	require.Len(t, plays, 7)
	for _, p := range plays {
		assert.Contains(t, []string{"a", "b", "c"}, p.GameID)
	}
}

func TestNewDropsNonFiniteNumbers(t *testing.T) {
	t.Parallel()

	ds := Dataset{
		Games: []Game{
			{ID: "g1", Rating: 4},
			{ID: "g2", Rating: math.NaN()},
			{ID: "g3", AvgPlaytime: math.Inf(1)},
		},
		Pools: []Pool{
			{ID: "p1", CurrentPrice: 1, APY: 12.5},
			{ID: "nan_apy", CurrentPrice: 1, APY: math.NaN()},
			{ID: "inf_apy", CurrentPrice: 1, APY: math.Inf(1)},
			{ID: "inf_tvl", CurrentPrice: 1, TVL: math.Inf(1)},
		},
		Plays: []PlayRecord{
			{UserID: "u1", GameID: "g1", Playtime: math.NaN()},
		},
	}

	c := New(ds, zerolog.Nop())
	require.Len(t, c.Games(), 1)
	require.Len(t, c.Pools(), 1)
	assert.Equal(t, "p1", c.Pools()[0].ID)
	assert.Empty(t, c.Users())
	assert.Equal(t, 6, c.Dropped())
}

func TestDatasetRoundTrip(t *testing.T) {
	t.Parallel()

	c := New(DefaultDataset(), zerolog.Nop())
	again := New(c.Dataset(), zerolog.Nop())

	assert.Equal(t, c.Games(), again.Games())
	assert.Equal(t, c.Pools(), again.Pools())
	assert.Equal(t, c.Users(), again.Users())
	assert.Equal(t, c.History("user_002"), again.History("user_002"))
}
