// Lumeris - Game Recommendation and DeFi Forecasting Engine
// Copyright 2026 Alexandr Fenrir (AlexandrFenrir)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/AlexandrFenrir/lumeris

package api

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"

	"github.com/goccy/go-json"

	"github.com/AlexandrFenrir/lumeris/internal/validation"
)

// maxBodyBytes caps request bodies; every body here is a few fields.
const maxBodyBytes = 64 << 10

// RecommendationRequest is the body of POST /gaming/recommendations.
type RecommendationRequest struct {
	UserID string `json:"user_id" validate:"required,max=128"`
	N      int    `json:"n_recommendations" validate:"gte=0"`
}

// PredictRequest is the body of POST /defi/predict.
type PredictRequest struct {
	PoolID    string `json:"pool_id" validate:"required,max=128"`
	DaysAhead int    `json:"days_ahead" validate:"gte=0"`
}

// requestError is a 400 with optional field details.
type requestError struct {
	message string
	details interface{}
}

func (e *requestError) Error() string { return e.message }

// decodeBody reads a JSON body into dst and validates it.
func decodeBody(r *http.Request, dst interface{}) error {
	body, err := io.ReadAll(io.LimitReader(r.Body, maxBodyBytes+1))
	if err != nil {
		return &requestError{message: "failed to read request body"}
	}
	if len(body) > maxBodyBytes {
		return &requestError{message: "request body too large"}
	}
	if len(body) == 0 {
		return &requestError{message: "request body is required"}
	}
	if err := json.Unmarshal(body, dst); err != nil {
		return &requestError{message: "invalid JSON body"}
	}

	if err := validation.Struct(dst); err != nil {
		var verr *validation.Error
		if errors.As(err, &verr) {
			return &requestError{message: verr.Error(), details: verr.Details()}
		}
		return &requestError{message: err.Error()}
	}
	return nil
}

// queryInt parses an optional positive integer query parameter. Absent
// yields 0.
func queryInt(r *http.Request, name string) (int, error) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return 0, nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil || v < 1 {
		return 0, &requestError{
			message: fmt.Sprintf("%s must be a positive integer", name),
			details: map[string]string{"field": name, "value": raw},
		}
	}
	return v, nil
}
