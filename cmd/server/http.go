// Lumeris - Game Recommendation and DeFi Forecasting Engine
// Copyright 2026 Alexandr Fenrir (AlexandrFenrir)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/AlexandrFenrir/lumeris

package main

import (
	"net/http"

	"github.com/rs/zerolog"

	"github.com/AlexandrFenrir/lumeris/internal/api"
	"github.com/AlexandrFenrir/lumeris/internal/config"
	"github.com/AlexandrFenrir/lumeris/internal/engine"
	"github.com/AlexandrFenrir/lumeris/internal/supervisor/services"
)

// newHTTPServer wires the API handler. persister is nil when the state
// store is disabled; it must reach the handler as a nil interface.
//
//nolint:gocritic // hugeParam: logger passed by value for zerolog chaining
func newHTTPServer(cfg *config.Config, eng *engine.Engine, retrainer *services.RetrainService, persister *services.SnapshotService, logger zerolog.Logger) *http.Server {
	var p api.Persister
	if persister != nil {
		p = persister
	}

	handler := api.NewHandler(eng, retrainer, p, api.Limits{
		DefaultRecommendations: cfg.Engine.DefaultRecommendations,
		MaxRecommendations:     cfg.Engine.MaxRecommendations,
		DefaultHorizon:         cfg.Engine.DefaultHorizon,
		MaxHorizon:             cfg.Engine.MaxHorizon,
	})

	routerCfg := api.DefaultRouterConfig()
	routerCfg.CORSAllowedOrigins = cfg.Server.CORSOrigins
	routerCfg.RateLimitRequests = cfg.Server.RateLimitReqs
	routerCfg.RateLimitWindow = cfg.Server.RateLimitWindow
	routerCfg.RateLimitDisabled = cfg.Server.RateLimitDisabled

	if cfg.Server.RateLimitDisabled {
		logger.Warn().Msg("Rate limiting is DISABLED")
	}
	for _, o := range cfg.Server.CORSOrigins {
		if o == "*" && cfg.Server.Environment == "production" {
			logger.Warn().Msg("CORS allows any origin (CORS_ORIGINS=*) in production")
			break
		}
	}

	return &http.Server{
		Addr:              cfg.Server.Addr(),
		Handler:           api.NewRouter(handler, routerCfg, logger),
		ReadTimeout:       cfg.Server.ReadTimeout,
		ReadHeaderTimeout: cfg.Server.ReadTimeout,
		WriteTimeout:      cfg.Server.WriteTimeout,
	}
}
