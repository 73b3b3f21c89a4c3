// Lumeris - Game Recommendation and DeFi Forecasting Engine
// Copyright 2026 Alexandr Fenrir (AlexandrFenrir)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/AlexandrFenrir/lumeris

package api

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/go-chi/httprate"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"

	"github.com/AlexandrFenrir/lumeris/internal/middleware"
)

// RouterConfig holds CORS and rate limit settings.
type RouterConfig struct {
	CORSAllowedOrigins []string
	CORSMaxAge         int // seconds

	RateLimitRequests int
	RateLimitWindow   time.Duration
	RateLimitDisabled bool
}

// DefaultRouterConfig returns permissive CORS and 100 requests per minute.
func DefaultRouterConfig() RouterConfig {
	return RouterConfig{
		CORSAllowedOrigins: []string{"*"},
		CORSMaxAge:         86400,
		RateLimitRequests:  100,
		RateLimitWindow:    time.Minute,
	}
}

func (c RouterConfig) rateLimit() func(http.Handler) http.Handler {
	if c.RateLimitDisabled || c.RateLimitRequests <= 0 {
		return func(next http.Handler) http.Handler { return next }
	}
	window := c.RateLimitWindow
	if window <= 0 {
		window = time.Minute
	}
	return httprate.Limit(
		c.RateLimitRequests,
		window,
		httprate.WithKeyFuncs(httprate.KeyByIP),
		httprate.WithLimitHandler(func(w http.ResponseWriter, r *http.Request) {
			respondError(w, r, time.Now(), http.StatusTooManyRequests, CodeRateLimited, "Too many requests", nil)
		}),
	)
}

// NewRouter builds the chi router.
//
//nolint:gocritic // logger passed by value is acceptable for zerolog
func NewRouter(h *Handler, cfg RouterConfig, logger zerolog.Logger) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(chimiddleware.Recoverer)
	r.Use(middleware.RequestLogger(logger.With().Str("component", "http").Logger()))
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: cfg.CORSAllowedOrigins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowedHeaders: []string{"Content-Type", middleware.HeaderRequestID},
		ExposedHeaders: []string{middleware.HeaderRequestID},
		MaxAge:         cfg.CORSMaxAge,
	}))
	r.Use(middleware.PrometheusMetrics)

	r.Get("/health", h.Health)
	r.Handle("/metrics", promhttp.Handler())

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(cfg.rateLimit())

		r.Route("/gaming", func(r chi.Router) {
			r.Get("/games", h.Games)
			r.Get("/recommendations/{userID}", h.RecommendationsByPath)
			r.Post("/recommendations", h.RecommendationsByBody)
			r.Get("/similar/{gameID}", h.Similar)
		})

		r.Route("/defi", func(r chi.Router) {
			r.Get("/pools", h.Pools)
			r.Post("/predict", h.Predict)
			r.Get("/predictions", h.Predictions)
		})

		r.Route("/models", func(r chi.Router) {
			r.Post("/retrain", h.Retrain)
			r.Post("/save", h.Save)
			r.Get("/status", h.Status)
		})
	})

	return r
}
