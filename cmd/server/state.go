// Lumeris - Game Recommendation and DeFi Forecasting Engine
// Copyright 2026 Alexandr Fenrir (AlexandrFenrir)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/AlexandrFenrir/lumeris

package main

import (
	"context"
	"errors"
	"fmt"

	"github.com/AlexandrFenrir/lumeris/internal/config"
	"github.com/AlexandrFenrir/lumeris/internal/engine"
	"github.com/AlexandrFenrir/lumeris/internal/logging"
	"github.com/AlexandrFenrir/lumeris/internal/statestore"
)

// openState opens the badger store and, when configured, imports the last
// snapshot into eng. A missing or corrupt snapshot is not fatal; the
// retrain service builds a fresh generation instead. A corrupt snapshot is
// removed.
func openState(ctx context.Context, cfg *config.Config, eng *engine.Engine) (*statestore.Store, func(), error) {
	st, err := statestore.Open(cfg.State.ToStoreConfig())
	if err != nil {
		return nil, nil, fmt.Errorf("open state store: %w", err)
	}
	closeStore := func() {
		if err := st.Close(); err != nil {
			logging.Error().Err(err).Msg("Error closing state store")
		}
	}

	if !cfg.State.RestoreOnStartup {
		if meta, err := st.Meta(ctx); err == nil {
			logging.Info().
				Str("generation_id", meta.GenerationID).
				Time("saved_at", meta.SavedAt).
				Msg("Saved engine state present but restore is disabled")
		}
		return st, closeStore, nil
	}

	blob, meta, err := st.Load(ctx)
	switch {
	case errors.Is(err, statestore.ErrNoSnapshot):
		logging.Info().Str("path", cfg.State.Path).Msg("No saved engine state; training from scratch")
	case err != nil:
		logging.Warn().Err(err).Msg("Failed to read saved engine state")
	default:
		summary, err := eng.ImportState(ctx, blob)
		if err != nil {
			logging.Warn().Err(err).Str("generation_id", meta.GenerationID).Msg("Saved engine state rejected; training from scratch")
			if errors.Is(err, engine.ErrStateCorrupt) {
				// Never restorable; drop it so later starts do not retry it.
				if err := st.Delete(ctx); err != nil {
					logging.Warn().Err(err).Msg("Failed to remove corrupt engine state")
				}
			}
			break
		}
		logging.Info().
			Str("generation_id", summary.ID).
			Time("saved_at", meta.SavedAt).
			Msg("Engine state restored")
	}
	return st, closeStore, nil
}
