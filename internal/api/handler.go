// Lumeris - Game Recommendation and DeFi Forecasting Engine
// Copyright 2026 Alexandr Fenrir (AlexandrFenrir)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/AlexandrFenrir/lumeris

package api

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/AlexandrFenrir/lumeris/internal/catalog"
	"github.com/AlexandrFenrir/lumeris/internal/engine"
	"github.com/AlexandrFenrir/lumeris/internal/forecast"
	"github.com/AlexandrFenrir/lumeris/internal/recommend"
	"github.com/AlexandrFenrir/lumeris/internal/statestore"
)

// Engine is the read surface of *engine.Engine.
type Engine interface {
	Ready() bool
	Status() engine.Status
	Games() ([]catalog.Game, error)
	Pools() ([]catalog.Pool, error)
	Recommend(userID string, k int) (recommend.Result, error)
	SimilarItems(itemID string, n int) ([]recommend.SimilarItem, error)
	Predict(poolID string, horizon int) (*forecast.Prediction, error)
	PredictAll(horizon int) ([]forecast.Prediction, error)
}

// Retrainer rebuilds the serving generation from the data source.
type Retrainer interface {
	Retrain(ctx context.Context) (engine.Summary, error)
}

// Persister saves the serving generation to the state store.
type Persister interface {
	Persist(ctx context.Context) (statestore.Meta, error)
}

// Limits bound request sizes.
type Limits struct {
	DefaultRecommendations int
	MaxRecommendations     int
	DefaultHorizon         int
	MaxHorizon             int
}

// DefaultLimits mirrors the configuration defaults.
func DefaultLimits() Limits {
	return Limits{
		DefaultRecommendations: 5,
		MaxRecommendations:     50,
		DefaultHorizon:         7,
		MaxHorizon:             30,
	}
}

// Handler holds the dependencies of every route.
type Handler struct {
	engine    Engine
	retrainer Retrainer
	persister Persister
	limits    Limits
	startTime time.Time
}

// NewHandler creates a handler. persister may be nil when the state store
// is disabled.
func NewHandler(eng Engine, retrainer Retrainer, persister Persister, limits Limits) *Handler {
	return &Handler{
		engine:    eng,
		retrainer: retrainer,
		persister: persister,
		limits:    limits,
		startTime: time.Now(),
	}
}

// recommendationCount applies the default and clamps to the maximum.
func (h *Handler) recommendationCount(n int) int {
	if n <= 0 {
		return h.limits.DefaultRecommendations
	}
	if n > h.limits.MaxRecommendations {
		return h.limits.MaxRecommendations
	}
	return n
}

// horizon applies the default; values above the maximum are rejected.
func (h *Handler) horizon(days int, field string) (int, error) {
	if days <= 0 {
		return h.limits.DefaultHorizon, nil
	}
	if days > h.limits.MaxHorizon {
		return 0, &requestError{
			message: field + " exceeds the maximum forecast horizon",
			details: map[string]int{"max": h.limits.MaxHorizon},
		}
	}
	return days, nil
}

// fail maps an error to a response.
func (h *Handler) fail(w http.ResponseWriter, r *http.Request, start time.Time, err error) {
	var reqErr *requestError
	switch {
	case errors.As(err, &reqErr):
		respondError(w, r, start, http.StatusBadRequest, CodeValidation, reqErr.message, reqErr.details)
	case errors.Is(err, engine.ErrNotReady):
		respondError(w, r, start, http.StatusServiceUnavailable, CodeNotReady, "Engine is still initializing", nil)
	case errors.Is(err, forecast.ErrPoolNotFound):
		respondError(w, r, start, http.StatusNotFound, CodePoolNotFound, err.Error(), nil)
	default:
		respondError(w, r, start, http.StatusInternalServerError, CodeInternal, "Internal server error", nil)
	}
}
