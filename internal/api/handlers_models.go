// Lumeris - Game Recommendation and DeFi Forecasting Engine
// Copyright 2026 Alexandr Fenrir (AlexandrFenrir)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/AlexandrFenrir/lumeris

package api

import (
	"errors"
	"net/http"
	"time"

	"github.com/AlexandrFenrir/lumeris/internal/engine"
	"github.com/AlexandrFenrir/lumeris/internal/logging"
)

// Health reports readiness. It answers 503 until the first generation is
// serving so orchestrators hold traffic back.
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	st := h.engine.Status()

	body := map[string]interface{}{
		"status":         "healthy",
		"models_loaded":  st.Ready,
		"uptime_seconds": int64(time.Since(h.startTime).Seconds()),
	}
	if st.Generation != nil {
		body["generation"] = st.Generation.Version
	}

	status := http.StatusOK
	if !st.Ready {
		body["status"] = "initializing"
		status = http.StatusServiceUnavailable
	}
	respondJSON(w, r, start, status, body)
}

// Status handles GET /models/status.
func (h *Handler) Status(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	respondJSON(w, r, start, http.StatusOK, h.engine.Status())
}

// Retrain handles POST /models/retrain. It blocks until the new generation
// is published; reads keep hitting the old one meanwhile.
func (h *Handler) Retrain(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	summary, err := h.retrainer.Retrain(r.Context())
	if err != nil {
		if errors.Is(err, engine.ErrInvariant) {
			respondError(w, r, start, http.StatusInternalServerError, CodeRetrainFailed, "Rebuilt state failed consistency checks", nil)
			return
		}
		respondError(w, r, start, http.StatusInternalServerError, CodeRetrainFailed, "Retrain failed", nil)
		return
	}
	logging.Ctx(r.Context()).Info().
		Int64("version", summary.Version).
		Msg("Retrain requested over API completed")
	respondJSON(w, r, start, http.StatusOK, summary)
}

// Save handles POST /models/save.
func (h *Handler) Save(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	if h.persister == nil {
		respondError(w, r, start, http.StatusServiceUnavailable, CodeStateDisabled, "State store is disabled", nil)
		return
	}
	meta, err := h.persister.Persist(r.Context())
	if err != nil {
		if errors.Is(err, engine.ErrNotReady) {
			h.fail(w, r, start, err)
			return
		}
		respondError(w, r, start, http.StatusInternalServerError, CodeSaveFailed, "Failed to save engine state", nil)
		return
	}
	respondJSON(w, r, start, http.StatusOK, meta)
}
