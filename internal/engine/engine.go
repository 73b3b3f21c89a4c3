// Lumeris - Game Recommendation and DeFi Forecasting Engine
// Copyright 2026 Alexandr Fenrir (AlexandrFenrir)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/AlexandrFenrir/lumeris

// Package engine owns the serving generation: catalog, recommendation
// matrices, synthesized pool history and trained forecast models.
//
// A generation is built off to the side and published with one atomic
// pointer swap. Readers load the pointer once per call and work against
// that snapshot, so an in-flight read never sees a half-built generation.
// Builds are serialized by a single writer lock.
package engine

import (
	"context"
	"errors"
	"fmt"
	"math/rand/v2"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/AlexandrFenrir/lumeris/internal/cache"
	"github.com/AlexandrFenrir/lumeris/internal/catalog"
	"github.com/AlexandrFenrir/lumeris/internal/forecast"
	"github.com/AlexandrFenrir/lumeris/internal/metrics"
	"github.com/AlexandrFenrir/lumeris/internal/recommend"
)

var (
	// ErrNotReady is returned by reads before the first generation is published.
	ErrNotReady = errors.New("engine not initialized")

	// ErrInvariant wraps any build or import failure caused by derived
	// state that does not line up. The previous generation keeps serving.
	ErrInvariant = errors.New("engine invariant violated")
)

// Generation sources.
const (
	SourceTrained  = "trained"
	SourceRestored = "restored"
)

// Config controls generation builds.
type Config struct {
	Forecast forecast.Config

	// Seed fixes all randomness in a build. Zero draws a fresh seed per build.
	Seed uint64
}

// Generation is one immutable, fully built set of serving state.
type Generation struct {
	ID      string
	Version int64
	BuiltAt time.Time
	Seed    uint64
	Source  string

	Catalog    *catalog.Catalog
	Scorer     *recommend.Scorer
	Forecaster *forecast.Forecaster

	// predictions memoizes PredictAll by horizon. Forecasts are a pure
	// function of the generation, so entries never go stale.
	predictions *cache.LRU[int, []forecast.Prediction]
}

// predictionCacheSize bounds the memoized horizons per generation.
const predictionCacheSize = 32

// Summary describes a published generation.
type Summary struct {
	ID           string    `json:"id"`
	Version      int64     `json:"version"`
	BuiltAt      time.Time `json:"built_at"`
	Seed         uint64    `json:"seed"`
	Source       string    `json:"source"`
	Games        int       `json:"games"`
	Pools        int       `json:"pools"`
	Users        int       `json:"users"`
	TrainingRows int       `json:"training_rows"`
	Dropped      int       `json:"dropped_records"`
}

// Observer is notified after a generation is published.
type Observer interface {
	GenerationPublished(ctx context.Context, s Summary)
}

// Engine is the single owner of serving state.
type Engine struct {
	cfg    Config
	logger zerolog.Logger

	current atomic.Pointer[Generation]
	version atomic.Int64

	buildMu   sync.Mutex
	observers []Observer

	lastErr atomic.Pointer[string]

	now func() time.Time
}

// New creates an engine with no generation; call Initialize or ImportState
// before serving.
//
//nolint:gocritic // hugeParam: Config is copied once at construction
func New(cfg Config, logger zerolog.Logger) *Engine {
	return &Engine{
		cfg:    cfg,
		logger: logger.With().Str("component", "engine").Logger(),
		now:    time.Now,
	}
}

// AddObserver registers o for publish notifications.
func (e *Engine) AddObserver(o Observer) {
	e.buildMu.Lock()
	defer e.buildMu.Unlock()
	e.observers = append(e.observers, o)
}

// Initialize builds a new generation from ds and publishes it. On error the
// previous generation, if any, keeps serving.
//
//nolint:gocritic // hugeParam: Dataset is consumed once per build
func (e *Engine) Initialize(ctx context.Context, ds catalog.Dataset) (Summary, error) {
	e.buildMu.Lock()
	defer e.buildMu.Unlock()

	seed := e.cfg.Seed
	if seed == 0 {
		seed = rand.Uint64() //nolint:gosec // simulation seed
	}

	start := time.Now()
	gen, rows, err := e.build(ctx, ds, seed)
	metrics.RecordInitialization(SourceTrained, err)
	if err != nil {
		e.recordError(err)
		return Summary{}, err
	}
	metrics.RecordBuildPhase("total", time.Since(start))

	gen.ID = uuid.New().String()
	gen.BuiltAt = e.now().UTC()
	gen.Source = SourceTrained
	return e.publish(ctx, gen, rows), nil
}

//nolint:gocritic // hugeParam: Dataset is consumed once per build
func (e *Engine) build(ctx context.Context, ds catalog.Dataset, seed uint64) (*Generation, int, error) {
	phase := time.Now()
	cat := catalog.New(ds, e.logger)
	metrics.RecordBuildPhase("catalog", time.Since(phase))

	phase = time.Now()
	scorer, err := recommend.NewScorer(cat, recommend.BuildModel(cat))
	if err != nil {
		return nil, 0, fmt.Errorf("%w: %w", ErrInvariant, err)
	}
	metrics.RecordBuildPhase("features", time.Since(phase))

	phase = time.Now()
	end := e.now().UTC().Truncate(24 * time.Hour)
	rng := rand.New(rand.NewPCG(seed, ^seed)) //nolint:gosec // simulation noise
	history := forecast.Synthesize(cat.Pools(), e.cfg.Forecast.HistoryDays, end, rng)
	ds2 := forecast.BuildDataset(poolOrder(cat), history)
	metrics.RecordBuildPhase("history", time.Since(phase))

	phase = time.Now()
	models, err := forecast.Train(ctx, ds2, e.cfg.Forecast, seed, e.logger)
	if err != nil {
		return nil, 0, fmt.Errorf("train forecast models: %w", err)
	}
	metrics.RecordBuildPhase("training", time.Since(phase))

	forecaster, err := forecast.NewForecaster(cat, history, models, seed, e.cfg.Forecast)
	if err != nil {
		return nil, 0, fmt.Errorf("%w: %w", ErrInvariant, err)
	}

	return &Generation{Seed: seed, Catalog: cat, Scorer: scorer, Forecaster: forecaster}, models.Rows, nil
}

func poolOrder(c *catalog.Catalog) []string {
	ids := make([]string, len(c.Pools()))
	for i, p := range c.Pools() {
		ids[i] = p.ID
	}
	return ids
}

// publish swaps gen in and notifies observers. Must be called with buildMu held.
func (e *Engine) publish(ctx context.Context, gen *Generation, rows int) Summary {
	gen.Version = e.version.Add(1)
	gen.predictions = cache.NewLRU[int, []forecast.Prediction](predictionCacheSize)
	e.current.Store(gen)
	e.lastErr.Store(nil)

	s := summarize(gen, rows)
	metrics.UpdateGeneration(s.Version, s.Games, s.Pools, s.Users, s.TrainingRows)
	e.logger.Info().
		Str("generation_id", s.ID).
		Int64("version", s.Version).
		Str("source", s.Source).
		Int("games", s.Games).
		Int("pools", s.Pools).
		Int("users", s.Users).
		Int("training_rows", s.TrainingRows).
		Msg("Generation published")

	for _, o := range e.observers {
		o.GenerationPublished(ctx, s)
	}
	return s
}

func summarize(gen *Generation, rows int) Summary {
	return Summary{
		ID:           gen.ID,
		Version:      gen.Version,
		BuiltAt:      gen.BuiltAt,
		Seed:         gen.Seed,
		Source:       gen.Source,
		Games:        len(gen.Catalog.Games()),
		Pools:        len(gen.Catalog.Pools()),
		Users:        len(gen.Catalog.Users()),
		TrainingRows: rows,
		Dropped:      gen.Catalog.Dropped(),
	}
}

func (e *Engine) recordError(err error) {
	msg := err.Error()
	e.lastErr.Store(&msg)
	e.logger.Error().Err(err).Msg("Generation build failed")
}

// Current returns the serving generation or nil.
func (e *Engine) Current() *Generation {
	return e.current.Load()
}

// Ready reports whether a generation is serving.
func (e *Engine) Ready() bool {
	return e.current.Load() != nil
}

// Recommend ranks up to k games for userID.
func (e *Engine) Recommend(userID string, k int) (recommend.Result, error) {
	gen := e.current.Load()
	if gen == nil {
		return recommend.Result{}, ErrNotReady
	}
	res := gen.Scorer.Recommend(userID, k)
	metrics.Recommendations.WithLabelValues(string(res.Strategy)).Inc()
	return res, nil
}

// SimilarItems returns up to n games most similar to itemID.
func (e *Engine) SimilarItems(itemID string, n int) ([]recommend.SimilarItem, error) {
	gen := e.current.Load()
	if gen == nil {
		return nil, ErrNotReady
	}
	return gen.Scorer.SimilarItems(itemID, n), nil
}

// Predict forecasts one pool. Unknown pools return forecast.ErrPoolNotFound.
func (e *Engine) Predict(poolID string, horizon int) (*forecast.Prediction, error) {
	gen := e.current.Load()
	if gen == nil {
		return nil, ErrNotReady
	}
	pred, err := gen.Forecaster.Predict(poolID, horizon)
	switch {
	case errors.Is(err, forecast.ErrPoolNotFound):
		metrics.Predictions.WithLabelValues("not_found").Inc()
	case err != nil:
		metrics.Predictions.WithLabelValues("unavailable").Inc()
	default:
		metrics.Predictions.WithLabelValues("ok").Inc()
	}
	return pred, err
}

// PredictAll forecasts every pool; failures are skipped. The returned slice
// may be shared with other callers and must not be modified.
func (e *Engine) PredictAll(horizon int) ([]forecast.Prediction, error) {
	gen := e.current.Load()
	if gen == nil {
		return nil, ErrNotReady
	}
	preds, hit := gen.predictions.GetOrCompute(horizon, func() []forecast.Prediction {
		return gen.Forecaster.PredictAll(horizon)
	})
	metrics.RecordPredictionCache(hit)
	return preds, nil
}

// Games lists the serving game catalog.
func (e *Engine) Games() ([]catalog.Game, error) {
	gen := e.current.Load()
	if gen == nil {
		return nil, ErrNotReady
	}
	return gen.Catalog.Games(), nil
}

// Pools lists the serving pool catalog.
func (e *Engine) Pools() ([]catalog.Pool, error) {
	gen := e.current.Load()
	if gen == nil {
		return nil, ErrNotReady
	}
	return gen.Catalog.Pools(), nil
}

// CacheStats reports batch forecast memoization for the serving generation.
type CacheStats struct {
	Entries int   `json:"entries"`
	Hits    int64 `json:"hits"`
	Misses  int64 `json:"misses"`
}

// Status is a point-in-time view of the engine.
type Status struct {
	Ready           bool        `json:"ready"`
	Generation      *Summary    `json:"generation,omitempty"`
	PredictionCache *CacheStats `json:"prediction_cache,omitempty"`
	LastError       string      `json:"last_error,omitempty"`
}

// Status reports the serving generation and the last build failure, if any.
func (e *Engine) Status() Status {
	st := Status{}
	if gen := e.current.Load(); gen != nil {
		s := summarize(gen, gen.Forecaster.Models().Rows)
		st.Ready = true
		st.Generation = &s

		hits, misses, size := gen.predictions.Stats()
		st.PredictionCache = &CacheStats{Entries: size, Hits: hits, Misses: misses}
	}
	if msg := e.lastErr.Load(); msg != nil {
		st.LastError = *msg
	}
	return st
}
