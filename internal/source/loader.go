// Lumeris - Game Recommendation and DeFi Forecasting Engine
// Copyright 2026 Alexandr Fenrir (AlexandrFenrir)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/AlexandrFenrir/lumeris

package source

import (
	"context"

	"github.com/rs/zerolog"

	"github.com/AlexandrFenrir/lumeris/internal/catalog"
	"github.com/AlexandrFenrir/lumeris/internal/metrics"
)

// Fetcher is the subset of Client the Loader needs.
type Fetcher interface {
	FetchGames(ctx context.Context) ([]catalog.Game, error)
	FetchPools(ctx context.Context) ([]catalog.Pool, error)
	FetchPlays(ctx context.Context) ([]catalog.PlayRecord, error)
}

// Loader assembles a build dataset from the backend with per-part fallback.
type Loader struct {
	fetcher Fetcher
	logger  zerolog.Logger
}

// NewLoader creates a loader. A nil fetcher always yields the built-in dataset.
func NewLoader(f Fetcher, logger zerolog.Logger) *Loader {
	return &Loader{fetcher: f, logger: logger.With().Str("component", "source").Logger()}
}

// Load never fails: each part that cannot be fetched, or comes back empty,
// is replaced by the built-in fallback. Fallback plays are laid over the
// loaded game list so their ids always resolve.
func (l *Loader) Load(ctx context.Context) catalog.Dataset {
	if l.fetcher == nil {
		return catalog.DefaultDataset()
	}

	games, err := l.fetcher.FetchGames(ctx)
	games = fallback(l, "games", games, err, catalog.DefaultGames)

	pools, err := l.fetcher.FetchPools(ctx)
	pools = fallback(l, "pools", pools, err, catalog.DefaultPools)

	plays, err := l.fetcher.FetchPlays(ctx)
	plays = fallback(l, "plays", plays, err, func() []catalog.PlayRecord {
		return catalog.DefaultPlays(games)
	})

	return catalog.Dataset{Games: games, Pools: pools, Plays: plays}
}

func fallback[T any](l *Loader, resource string, got []T, err error, def func() []T) []T {
	switch {
	case err != nil:
		l.logger.Warn().Err(err).Str("resource", resource).Msg("Backend unavailable, using fallback data")
		metrics.RecordUpstreamFetch(resource, "error")
	case len(got) == 0:
		l.logger.Warn().Str("resource", resource).Msg("Backend returned no records, using fallback data")
		metrics.RecordUpstreamFetch(resource, "empty")
	default:
		l.logger.Info().Str("resource", resource).Int("count", len(got)).Msg("Loaded records from backend")
		metrics.RecordUpstreamFetch(resource, "success")
		return got
	}
	metrics.RecordUpstreamFetch(resource, "fallback")
	return def()
}
