// Lumeris - Game Recommendation and DeFi Forecasting Engine
// Copyright 2026 Alexandr Fenrir (AlexandrFenrir)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/AlexandrFenrir/lumeris

package api

import (
	"bytes"
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/goccy/go-json"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AlexandrFenrir/lumeris/internal/catalog"
	"github.com/AlexandrFenrir/lumeris/internal/engine"
	"github.com/AlexandrFenrir/lumeris/internal/forecast"
	"github.com/AlexandrFenrir/lumeris/internal/statestore"
)

// sharedEngine is trained once; handlers never mutate it.
var (
	sharedOnce   sync.Once
	sharedEngine *engine.Engine
)

func testEngineConfig() engine.Config {
	fc := forecast.DefaultConfig()
	fc.Forest = forecast.ForestConfig{Trees: 4, MaxDepth: 4, MinSamplesSplit: 2, Workers: 2}
	fc.Boosting = forecast.BoostingConfig{Stages: 5, MaxDepth: 2, LearningRate: 0.1}
	return engine.Config{Forecast: fc, Seed: 42}
}

func readyEngine(t *testing.T) *engine.Engine {
	t.Helper()
	sharedOnce.Do(func() {
		sharedEngine = engine.New(testEngineConfig(), zerolog.Nop())
		_, err := sharedEngine.Initialize(context.Background(), catalog.DefaultDataset())
		if err != nil {
			panic(err)
		}
	})
	return sharedEngine
}

type stubRetrainer struct {
	summary engine.Summary
	err     error
	calls   int
}

func (s *stubRetrainer) Retrain(context.Context) (engine.Summary, error) {
	s.calls++
	return s.summary, s.err
}

type stubPersister struct {
	meta statestore.Meta
	err  error
}

func (s *stubPersister) Persist(context.Context) (statestore.Meta, error) {
	return s.meta, s.err
}

type decoded struct {
	Status   string          `json:"status"`
	Data     json.RawMessage `json:"data"`
	Metadata Metadata        `json:"metadata"`
	Error    *APIError       `json:"error"`
}

func newTestRouter(eng Engine, rt Retrainer, p Persister, cfg RouterConfig) http.Handler {
	return NewRouter(NewHandler(eng, rt, p, DefaultLimits()), cfg, zerolog.Nop())
}

func noLimit() RouterConfig {
	cfg := DefaultRouterConfig()
	cfg.RateLimitDisabled = true
	return cfg
}

func do(t *testing.T, h http.Handler, method, path, body string) (*httptest.ResponseRecorder, decoded) {
	t.Helper()
	var rdr *bytes.Reader
	if body != "" {
		rdr = bytes.NewReader([]byte(body))
	} else {
		rdr = bytes.NewReader(nil)
	}
	req := httptest.NewRequest(method, path, rdr)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	var out decoded
	if strings.HasPrefix(rec.Header().Get("Content-Type"), "application/json") {
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out), rec.Body.String())
	}
	return rec, out
}

func TestHealth(t *testing.T) {
	t.Parallel()

	notReady := engine.New(testEngineConfig(), zerolog.Nop())
	rec, out := do(t, newTestRouter(notReady, &stubRetrainer{}, nil, noLimit()), http.MethodGet, "/health", "")
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	assert.Contains(t, string(out.Data), `"models_loaded":false`)

	rec, out = do(t, newTestRouter(readyEngine(t), &stubRetrainer{}, nil, noLimit()), http.MethodGet, "/health", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "success", out.Status)
	assert.Contains(t, string(out.Data), `"models_loaded":true`)
	assert.NotEmpty(t, out.Metadata.RequestID)
	assert.Equal(t, out.Metadata.RequestID, rec.Header().Get("X-Request-ID"))
}

func TestNotReadyReturns503(t *testing.T) {
	t.Parallel()

	h := newTestRouter(engine.New(testEngineConfig(), zerolog.Nop()), &stubRetrainer{}, nil, noLimit())
	paths := []struct{ method, path, body string }{
		{http.MethodGet, "/api/v1/gaming/games", ""},
		{http.MethodGet, "/api/v1/gaming/recommendations/user_001", ""},
		{http.MethodGet, "/api/v1/gaming/similar/game-1", ""},
		{http.MethodGet, "/api/v1/defi/pools", ""},
		{http.MethodPost, "/api/v1/defi/predict", `{"pool_id":"pool_001"}`},
		{http.MethodGet, "/api/v1/defi/predictions", ""},
	}
	for _, p := range paths {
		rec, out := do(t, h, p.method, p.path, p.body)
		assert.Equal(t, http.StatusServiceUnavailable, rec.Code, p.path)
		require.NotNil(t, out.Error, p.path)
		assert.Equal(t, CodeNotReady, out.Error.Code, p.path)
	}
}

func TestCatalogListing(t *testing.T) {
	t.Parallel()
	h := newTestRouter(readyEngine(t), &stubRetrainer{}, nil, noLimit())

	rec, out := do(t, h, http.MethodGet, "/api/v1/gaming/games", "")
	require.Equal(t, http.StatusOK, rec.Code)
	var games struct {
		Games []catalog.Game `json:"games"`
		Total int            `json:"total"`
	}
	require.NoError(t, json.Unmarshal(out.Data, &games))
	assert.Equal(t, 4, games.Total)
	assert.Len(t, games.Games, 4)

	rec, out = do(t, h, http.MethodGet, "/api/v1/defi/pools", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, string(out.Data), `"total":4`)
}

func TestRecommendations(t *testing.T) {
	t.Parallel()
	eng := readyEngine(t)
	h := newTestRouter(eng, &stubRetrainer{}, nil, noLimit())

	want, err := eng.Recommend("user_001", 2)
	require.NoError(t, err)

	rec, out := do(t, h, http.MethodGet, "/api/v1/gaming/recommendations/user_001?n=2", "")
	require.Equal(t, http.StatusOK, rec.Code)
	wantJSON, err := json.Marshal(want)
	require.NoError(t, err)
	assert.JSONEq(t, string(wantJSON), string(out.Data))

	rec, out = do(t, h, http.MethodPost, "/api/v1/gaming/recommendations", `{"user_id":"user_001","n_recommendations":2}`)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, string(wantJSON), string(out.Data))

	// Cold start with the default count.
	rec, out = do(t, h, http.MethodGet, "/api/v1/gaming/recommendations/stranger", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, string(out.Data), `"strategy":"popularity"`)
}

func TestRecommendationValidation(t *testing.T) {
	t.Parallel()
	h := newTestRouter(readyEngine(t), &stubRetrainer{}, nil, noLimit())

	tests := []struct {
		name, method, path, body string
	}{
		{"non-numeric n", http.MethodGet, "/api/v1/gaming/recommendations/user_001?n=abc", ""},
		{"zero n", http.MethodGet, "/api/v1/gaming/recommendations/user_001?n=0", ""},
		{"missing user", http.MethodPost, "/api/v1/gaming/recommendations", `{"n_recommendations":3}`},
		{"negative count", http.MethodPost, "/api/v1/gaming/recommendations", `{"user_id":"u","n_recommendations":-1}`},
		{"malformed json", http.MethodPost, "/api/v1/gaming/recommendations", `{"user_id":`},
		{"empty body", http.MethodPost, "/api/v1/gaming/recommendations", ""},
	}
	for _, tt := range tests {
		rec, out := do(t, h, tt.method, tt.path, tt.body)
		assert.Equal(t, http.StatusBadRequest, rec.Code, tt.name)
		require.NotNil(t, out.Error, tt.name)
		assert.Equal(t, CodeValidation, out.Error.Code, tt.name)
	}
}

func TestRecommendationCountClamped(t *testing.T) {
	t.Parallel()

	h := NewHandler(readyEngine(t), &stubRetrainer{}, nil, Limits{DefaultRecommendations: 2, MaxRecommendations: 3, DefaultHorizon: 7, MaxHorizon: 30})
	assert.Equal(t, 2, h.recommendationCount(0))
	assert.Equal(t, 3, h.recommendationCount(100))
	assert.Equal(t, 1, h.recommendationCount(1))
}

func TestSimilar(t *testing.T) {
	t.Parallel()
	h := newTestRouter(readyEngine(t), &stubRetrainer{}, nil, noLimit())

	rec, out := do(t, h, http.MethodGet, "/api/v1/gaming/similar/game-1?n=2", "")
	require.Equal(t, http.StatusOK, rec.Code)
	var body struct {
		GameID  string            `json:"game_id"`
		Similar []json.RawMessage `json:"similar_games"`
	}
	require.NoError(t, json.Unmarshal(out.Data, &body))
	assert.Equal(t, "game-1", body.GameID)
	assert.Len(t, body.Similar, 2)
	assert.NotContains(t, string(out.Data), `"game_id":"game-1","name"`)

	rec, out = do(t, h, http.MethodGet, "/api/v1/gaming/similar/missing", "")
	require.Equal(t, http.StatusOK, rec.Code)
	require.NoError(t, json.Unmarshal(out.Data, &body))
	assert.Empty(t, body.Similar)
}

func TestPredict(t *testing.T) {
	t.Parallel()
	eng := readyEngine(t)
	h := newTestRouter(eng, &stubRetrainer{}, nil, noLimit())

	rec, out := do(t, h, http.MethodPost, "/api/v1/defi/predict", `{"pool_id":"pool_002","days_ahead":5}`)
	require.Equal(t, http.StatusOK, rec.Code)
	var pred forecast.Prediction
	require.NoError(t, json.Unmarshal(out.Data, &pred))
	assert.Equal(t, "pool_002", pred.PoolID)
	assert.Len(t, pred.Forecast, 5)

	// Default horizon.
	rec, out = do(t, h, http.MethodPost, "/api/v1/defi/predict", `{"pool_id":"pool_002"}`)
	require.Equal(t, http.StatusOK, rec.Code)
	require.NoError(t, json.Unmarshal(out.Data, &pred))
	assert.Len(t, pred.Forecast, DefaultLimits().DefaultHorizon)

	rec, out = do(t, h, http.MethodPost, "/api/v1/defi/predict", `{"pool_id":"pool_999"}`)
	assert.Equal(t, http.StatusNotFound, rec.Code)
	require.NotNil(t, out.Error)
	assert.Equal(t, CodePoolNotFound, out.Error.Code)

	rec, out = do(t, h, http.MethodPost, "/api/v1/defi/predict", `{"pool_id":"pool_002","days_ahead":365}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	require.NotNil(t, out.Error)
	assert.Equal(t, CodeValidation, out.Error.Code)

	rec, _ = do(t, h, http.MethodPost, "/api/v1/defi/predict", `{"days_ahead":3}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestPredictions(t *testing.T) {
	t.Parallel()
	h := newTestRouter(readyEngine(t), &stubRetrainer{}, nil, noLimit())

	rec, out := do(t, h, http.MethodGet, "/api/v1/defi/predictions?days=3", "")
	require.Equal(t, http.StatusOK, rec.Code)
	var body struct {
		Predictions []forecast.Prediction `json:"predictions"`
		DaysAhead   int                   `json:"days_ahead"`
		Total       int                   `json:"total"`
	}
	require.NoError(t, json.Unmarshal(out.Data, &body))
	assert.Equal(t, 3, body.DaysAhead)
	assert.Equal(t, 4, body.Total)
	for _, p := range body.Predictions {
		assert.Len(t, p.Forecast, 3)
	}

	rec, _ = do(t, h, http.MethodGet, "/api/v1/defi/predictions?days=-2", "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestModelsEndpoints(t *testing.T) {
	t.Parallel()

	rt := &stubRetrainer{summary: engine.Summary{ID: "gen-x", Version: 9}}
	p := &stubPersister{meta: statestore.Meta{GenerationID: "gen-x", Version: 9, Size: 100}}
	h := newTestRouter(readyEngine(t), rt, p, noLimit())

	rec, out := do(t, h, http.MethodPost, "/api/v1/models/retrain", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, string(out.Data), `"version":9`)
	assert.Equal(t, 1, rt.calls)

	rec, out = do(t, h, http.MethodPost, "/api/v1/models/save", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, string(out.Data), `"generation_id":"gen-x"`)

	rec, out = do(t, h, http.MethodGet, "/api/v1/models/status", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, string(out.Data), `"ready":true`)
	assert.Contains(t, string(out.Data), `"training_rows"`)
	assert.Contains(t, string(out.Data), `"prediction_cache"`)
}

func TestModelsEndpointFailures(t *testing.T) {
	t.Parallel()

	rt := &stubRetrainer{err: errors.New("upstream exploded")}
	h := newTestRouter(readyEngine(t), rt, nil, noLimit())

	rec, out := do(t, h, http.MethodPost, "/api/v1/models/retrain", "")
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	require.NotNil(t, out.Error)
	assert.Equal(t, CodeRetrainFailed, out.Error.Code)
	assert.NotContains(t, rec.Body.String(), "exploded")

	rec, out = do(t, h, http.MethodPost, "/api/v1/models/save", "")
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	require.NotNil(t, out.Error)
	assert.Equal(t, CodeStateDisabled, out.Error.Code)

	h = newTestRouter(readyEngine(t), rt, &stubPersister{err: engine.ErrNotReady}, noLimit())
	rec, _ = do(t, h, http.MethodPost, "/api/v1/models/save", "")
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)

	h = newTestRouter(readyEngine(t), rt, &stubPersister{err: errors.New("disk full")}, noLimit())
	rec, out = do(t, h, http.MethodPost, "/api/v1/models/save", "")
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	require.NotNil(t, out.Error)
	assert.Equal(t, CodeSaveFailed, out.Error.Code)
}

func TestRateLimit(t *testing.T) {
	t.Parallel()

	cfg := DefaultRouterConfig()
	cfg.RateLimitRequests = 2
	cfg.RateLimitWindow = time.Minute
	h := newTestRouter(readyEngine(t), &stubRetrainer{}, nil, cfg)

	for i := 0; i < 2; i++ {
		rec, _ := do(t, h, http.MethodGet, "/api/v1/gaming/games", "")
		require.Equal(t, http.StatusOK, rec.Code)
	}
	rec, out := do(t, h, http.MethodGet, "/api/v1/gaming/games", "")
	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
	require.NotNil(t, out.Error)
	assert.Equal(t, CodeRateLimited, out.Error.Code)

	// Health is outside the limited group.
	rec, _ = do(t, h, http.MethodGet, "/health", "")
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestCORSPreflight(t *testing.T) {
	t.Parallel()
	h := newTestRouter(readyEngine(t), &stubRetrainer{}, nil, noLimit())

	req := httptest.NewRequest(http.MethodOptions, "/api/v1/defi/predict", nil)
	req.Header.Set("Origin", "https://app.example.com")
	req.Header.Set("Access-Control-Request-Method", http.MethodPost)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	assert.Equal(t, "*", rec.Header().Get("Access-Control-Allow-Origin"))
}

func TestMetricsEndpoint(t *testing.T) {
	t.Parallel()
	h := newTestRouter(readyEngine(t), &stubRetrainer{}, nil, noLimit())

	req := httptest.NewRequest(http.MethodGet, "/metrics", nil)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "lumeris_engine_generation")
}
