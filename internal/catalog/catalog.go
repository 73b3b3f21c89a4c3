// Lumeris - Game Recommendation and DeFi Forecasting Engine
// Copyright 2026 Alexandr Fenrir (AlexandrFenrir)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/AlexandrFenrir/lumeris

package catalog

import (
	"strings"

	"github.com/rs/zerolog"

	"github.com/AlexandrFenrir/lumeris/internal/validation"
)

// Catalog is the normalized, indexed form of a Dataset.
type Catalog struct {
	games []Game
	pools []Pool

	gameIndex map[string]int
	poolIndex map[string]int

	// users is the stable row order of the user-item matrix.
	users     []string
	userIndex map[string]int
	plays     map[string][]PlayRecord

	dropped int
}

// New normalizes ds into a Catalog.
//
// Records that fail validation or repeat an already-seen ID are dropped.
// Plays that reference an unknown game are dropped. When a (user, game)
// pair appears more than once, the later record replaces the earlier one
// in place. Nothing here is fatal: an empty dataset yields an empty Catalog.
//
//nolint:gocritic // Dataset is consumed once per build
func New(ds Dataset, logger zerolog.Logger) *Catalog {
	c := &Catalog{
		gameIndex: make(map[string]int, len(ds.Games)),
		poolIndex: make(map[string]int, len(ds.Pools)),
		userIndex: make(map[string]int),
		plays:     make(map[string][]PlayRecord),
	}

	for i := range ds.Games {
		g := ds.Games[i]
		g.Category = strings.ToLower(strings.TrimSpace(g.Category))
		g.Difficulty = strings.ToLower(strings.TrimSpace(g.Difficulty))
		if err := validation.Struct(&g); err != nil {
			logger.Warn().Err(err).Str("game_id", g.ID).Msg("Dropping invalid game record")
			c.dropped++
			continue
		}
		if _, dup := c.gameIndex[g.ID]; dup {
			logger.Warn().Str("game_id", g.ID).Msg("Dropping duplicate game record")
			c.dropped++
			continue
		}
		c.gameIndex[g.ID] = len(c.games)
		c.games = append(c.games, g)
	}

	for i := range ds.Pools {
		p := ds.Pools[i]
		if err := validation.Struct(&p); err != nil {
			logger.Warn().Err(err).Str("pool_id", p.ID).Msg("Dropping invalid pool record")
			c.dropped++
			continue
		}
		if _, dup := c.poolIndex[p.ID]; dup {
			logger.Warn().Str("pool_id", p.ID).Msg("Dropping duplicate pool record")
			c.dropped++
			continue
		}
		c.poolIndex[p.ID] = len(c.pools)
		c.pools = append(c.pools, p)
	}

	for i := range ds.Plays {
		c.addPlay(ds.Plays[i], logger)
	}

	return c
}

//nolint:gocritic // PlayRecord is copied into the catalog
func (c *Catalog) addPlay(p PlayRecord, logger zerolog.Logger) {
	if err := validation.Struct(&p); err != nil {
		logger.Warn().Err(err).Str("user_id", p.UserID).Msg("Dropping invalid play record")
		c.dropped++
		return
	}
	if _, ok := c.gameIndex[p.GameID]; !ok {
		logger.Debug().Str("user_id", p.UserID).Str("game_id", p.GameID).Msg("Dropping play for unknown game")
		c.dropped++
		return
	}

	history := c.plays[p.UserID]
	for i := range history {
		if history[i].GameID == p.GameID {
			history[i] = p
			return
		}
	}

	if _, ok := c.userIndex[p.UserID]; !ok {
		c.userIndex[p.UserID] = len(c.users)
		c.users = append(c.users, p.UserID)
	}
	c.plays[p.UserID] = append(history, p)
}

// Games returns the games in catalog order. The slice must not be modified.
func (c *Catalog) Games() []Game { return c.games }

// Pools returns the pools in catalog order. The slice must not be modified.
func (c *Catalog) Pools() []Pool { return c.pools }

// Users returns user IDs in matrix row order.
func (c *Catalog) Users() []string { return c.users }

// GameIndex returns the catalog position of a game.
func (c *Catalog) GameIndex(id string) (int, bool) {
	i, ok := c.gameIndex[id]
	return i, ok
}

// PoolIndex returns the catalog position of a pool.
func (c *Catalog) PoolIndex(id string) (int, bool) {
	i, ok := c.poolIndex[id]
	return i, ok
}

// UserIndex returns the matrix row of a user.
func (c *Catalog) UserIndex(id string) (int, bool) {
	i, ok := c.userIndex[id]
	return i, ok
}

// History returns a user's plays in first-seen order, or nil.
func (c *Catalog) History(userID string) []PlayRecord { return c.plays[userID] }

// Dropped is the number of input records rejected during normalization.
func (c *Catalog) Dropped() int { return c.dropped }

// Dataset reconstructs the normalized input, suitable for persisting.
func (c *Catalog) Dataset() Dataset {
	ds := Dataset{
		Games: append([]Game(nil), c.games...),
		Pools: append([]Pool(nil), c.pools...),
	}
	for _, u := range c.users {
		ds.Plays = append(ds.Plays, c.plays[u]...)
	}
	return ds
}
