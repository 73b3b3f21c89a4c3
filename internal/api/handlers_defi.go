// Lumeris - Game Recommendation and DeFi Forecasting Engine
// Copyright 2026 Alexandr Fenrir (AlexandrFenrir)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/AlexandrFenrir/lumeris

package api

import (
	"net/http"
	"time"
)

// Pools lists the pool catalog.
func (h *Handler) Pools(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	pools, err := h.engine.Pools()
	if err != nil {
		h.fail(w, r, start, err)
		return
	}
	respondJSON(w, r, start, http.StatusOK, map[string]interface{}{
		"pools": pools,
		"total": len(pools),
	})
}

// Predict handles POST /defi/predict.
func (h *Handler) Predict(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	var req PredictRequest
	if err := decodeBody(r, &req); err != nil {
		h.fail(w, r, start, err)
		return
	}
	days, err := h.horizon(req.DaysAhead, "days_ahead")
	if err != nil {
		h.fail(w, r, start, err)
		return
	}

	pred, err := h.engine.Predict(req.PoolID, days)
	if err != nil {
		h.fail(w, r, start, err)
		return
	}
	respondJSON(w, r, start, http.StatusOK, pred)
}

// Predictions handles GET /defi/predictions?days=.
func (h *Handler) Predictions(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	raw, err := queryInt(r, "days")
	if err != nil {
		h.fail(w, r, start, err)
		return
	}
	days, err := h.horizon(raw, "days")
	if err != nil {
		h.fail(w, r, start, err)
		return
	}

	preds, err := h.engine.PredictAll(days)
	if err != nil {
		h.fail(w, r, start, err)
		return
	}
	respondJSON(w, r, start, http.StatusOK, map[string]interface{}{
		"predictions": preds,
		"days_ahead":  days,
		"total":       len(preds),
	})
}
