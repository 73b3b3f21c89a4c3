// Lumeris - Game Recommendation and DeFi Forecasting Engine
// Copyright 2026 Alexandr Fenrir (AlexandrFenrir)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/AlexandrFenrir/lumeris

package api

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/AlexandrFenrir/lumeris/internal/logging"
)

// Games lists the game catalog.
func (h *Handler) Games(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	games, err := h.engine.Games()
	if err != nil {
		h.fail(w, r, start, err)
		return
	}
	respondJSON(w, r, start, http.StatusOK, map[string]interface{}{
		"games": games,
		"total": len(games),
	})
}

// RecommendationsByPath handles GET /gaming/recommendations/{userID}.
func (h *Handler) RecommendationsByPath(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	n, err := queryInt(r, "n")
	if err != nil {
		h.fail(w, r, start, err)
		return
	}
	h.recommend(w, r, start, chi.URLParam(r, "userID"), n)
}

// RecommendationsByBody handles POST /gaming/recommendations.
func (h *Handler) RecommendationsByBody(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	var req RecommendationRequest
	if err := decodeBody(r, &req); err != nil {
		h.fail(w, r, start, err)
		return
	}
	h.recommend(w, r, start, req.UserID, req.N)
}

func (h *Handler) recommend(w http.ResponseWriter, r *http.Request, start time.Time, userID string, n int) {
	res, err := h.engine.Recommend(userID, h.recommendationCount(n))
	if err != nil {
		h.fail(w, r, start, err)
		return
	}
	logging.Ctx(r.Context()).Debug().
		Str("user_id", userID).
		Str("strategy", string(res.Strategy)).
		Int("count", len(res.Recommendations)).
		Msg("Recommendations served")
	respondJSON(w, r, start, http.StatusOK, res)
}

// Similar handles GET /gaming/similar/{gameID}. Unknown games yield an
// empty list.
func (h *Handler) Similar(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	n, err := queryInt(r, "n")
	if err != nil {
		h.fail(w, r, start, err)
		return
	}
	gameID := chi.URLParam(r, "gameID")
	items, err := h.engine.SimilarItems(gameID, h.recommendationCount(n))
	if err != nil {
		h.fail(w, r, start, err)
		return
	}
	respondJSON(w, r, start, http.StatusOK, map[string]interface{}{
		"game_id":       gameID,
		"similar_games": items,
	})
}
