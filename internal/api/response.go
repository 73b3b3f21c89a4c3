// Lumeris - Game Recommendation and DeFi Forecasting Engine
// Copyright 2026 Alexandr Fenrir (AlexandrFenrir)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/AlexandrFenrir/lumeris

package api

import (
	"net/http"
	"time"

	"github.com/goccy/go-json"

	"github.com/AlexandrFenrir/lumeris/internal/logging"
)

// Error codes.
const (
	CodeValidation    = "VALIDATION_ERROR"
	CodeNotReady      = "ENGINE_NOT_READY"
	CodePoolNotFound  = "POOL_NOT_FOUND"
	CodeRetrainFailed = "RETRAIN_FAILED"
	CodeSaveFailed    = "SAVE_FAILED"
	CodeStateDisabled = "STATE_STORE_DISABLED"
	CodeRateLimited   = "RATE_LIMITED"
	CodeInternal      = "INTERNAL_ERROR"
)

// APIResponse is the envelope of every JSON response.
type APIResponse struct {
	Status   string      `json:"status"`
	Data     interface{} `json:"data"`
	Metadata Metadata    `json:"metadata"`
	Error    *APIError   `json:"error,omitempty"`
}

// Metadata describes how the response was produced.
type Metadata struct {
	Timestamp   time.Time `json:"timestamp"`
	QueryTimeMS int64     `json:"query_time_ms"`
	RequestID   string    `json:"request_id,omitempty"`
}

// APIError is the error payload.
type APIError struct {
	Code    string      `json:"code"`
	Message string      `json:"message"`
	Details interface{} `json:"details,omitempty"`
}

func metadata(r *http.Request, start time.Time) Metadata {
	return Metadata{
		Timestamp:   time.Now().UTC(),
		QueryTimeMS: time.Since(start).Milliseconds(),
		RequestID:   logging.RequestIDFromContext(r.Context()),
	}
}

func writeJSON(w http.ResponseWriter, status int, resp *APIResponse) {
	data, err := json.Marshal(resp)
	if err != nil {
		logging.Error().Err(err).Msg("Failed to marshal JSON response")
		w.WriteHeader(http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Cache-Control", "no-store")
	w.WriteHeader(status)
	if _, err := w.Write(data); err != nil {
		logging.Error().Err(err).Msg("Failed to write JSON response")
	}
}

func respondJSON(w http.ResponseWriter, r *http.Request, start time.Time, status int, data interface{}) {
	writeJSON(w, status, &APIResponse{
		Status:   "success",
		Data:     data,
		Metadata: metadata(r, start),
	})
}

// respondError logs server-side failures; client errors are not logged.
func respondError(w http.ResponseWriter, r *http.Request, start time.Time, status int, code, message string, details interface{}) {
	if status >= http.StatusInternalServerError {
		logging.Ctx(r.Context()).Error().
			Str("code", code).
			Str("path", r.URL.Path).
			Msg(message)
	}
	writeJSON(w, status, &APIResponse{
		Status:   "error",
		Metadata: metadata(r, start),
		Error: &APIError{
			Code:    code,
			Message: message,
			Details: details,
		},
	})
}
