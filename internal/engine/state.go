// Lumeris - Game Recommendation and DeFi Forecasting Engine
// Copyright 2026 Alexandr Fenrir (AlexandrFenrir)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/AlexandrFenrir/lumeris

package engine

import (
	"bytes"
	"compress/gzip"
	"context"
	"crypto/sha256"
	"encoding/gob"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/AlexandrFenrir/lumeris/internal/catalog"
	"github.com/AlexandrFenrir/lumeris/internal/forecast"
	"github.com/AlexandrFenrir/lumeris/internal/metrics"
	"github.com/AlexandrFenrir/lumeris/internal/recommend"
)

// stateFormat is bumped whenever the snapshot layout changes.
const stateFormat = 1

// ErrStateCorrupt is returned when an imported blob fails its checksum or
// cannot be decoded.
var ErrStateCorrupt = errors.New("engine state corrupt")

// snapshot is the full fitted state of one generation.
type snapshot struct {
	ID      string
	BuiltAt time.Time
	Seed    uint64

	Dataset catalog.Dataset
	Model   *recommend.Model
	History forecast.History
	Models  *forecast.Models
}

// envelope frames the compressed snapshot with its checksum.
type envelope struct {
	Format   int
	Checksum string
	Payload  []byte
}

// ExportState serializes the serving generation into an opaque blob.
func (e *Engine) ExportState() ([]byte, error) {
	blob, _, err := e.Snapshot()
	return blob, err
}

// Snapshot is ExportState plus the summary of the exported generation,
// both taken from the same generation.
func (e *Engine) Snapshot() ([]byte, Summary, error) {
	gen := e.current.Load()
	if gen == nil {
		return nil, Summary{}, ErrNotReady
	}
	blob, err := encodeState(gen)
	if err != nil {
		return nil, Summary{}, err
	}
	return blob, summarize(gen, gen.Forecaster.Models().Rows), nil
}

func encodeState(gen *Generation) ([]byte, error) {
	snap := snapshot{
		ID:      gen.ID,
		BuiltAt: gen.BuiltAt,
		Seed:    gen.Seed,
		Dataset: gen.Catalog.Dataset(),
		Model:   gen.Scorer.Model(),
		History: gen.Forecaster.History(),
		Models:  gen.Forecaster.Models(),
	}

	var raw bytes.Buffer
	if err := gob.NewEncoder(&raw).Encode(&snap); err != nil {
		return nil, fmt.Errorf("encode state: %w", err)
	}
	sum := sha256.Sum256(raw.Bytes())

	var compressed bytes.Buffer
	gzw := gzip.NewWriter(&compressed)
	if _, err := gzw.Write(raw.Bytes()); err != nil {
		return nil, fmt.Errorf("compress state: %w", err)
	}
	if err := gzw.Close(); err != nil {
		return nil, fmt.Errorf("finalize compression: %w", err)
	}

	var out bytes.Buffer
	env := envelope{Format: stateFormat, Checksum: hex.EncodeToString(sum[:]), Payload: compressed.Bytes()}
	if err := gob.NewEncoder(&out).Encode(&env); err != nil {
		return nil, fmt.Errorf("encode envelope: %w", err)
	}
	return out.Bytes(), nil
}

// ImportState restores a generation from a blob produced by ExportState and
// publishes it. No retraining happens; outputs match the exporting engine.
func (e *Engine) ImportState(ctx context.Context, blob []byte) (Summary, error) {
	snap, err := decodeState(blob)
	if err != nil {
		metrics.RecordInitialization(SourceRestored, err)
		return Summary{}, err
	}

	e.buildMu.Lock()
	defer e.buildMu.Unlock()

	gen, err := e.restore(snap)
	metrics.RecordInitialization(SourceRestored, err)
	if err != nil {
		e.recordError(err)
		return Summary{}, err
	}
	return e.publish(ctx, gen, snap.Models.Rows), nil
}

func decodeState(blob []byte) (*snapshot, error) {
	var env envelope
	if err := gob.NewDecoder(bytes.NewReader(blob)).Decode(&env); err != nil {
		return nil, fmt.Errorf("%w: decode envelope: %w", ErrStateCorrupt, err)
	}
	if env.Format != stateFormat {
		return nil, fmt.Errorf("%w: unsupported format %d", ErrStateCorrupt, env.Format)
	}

	gzr, err := gzip.NewReader(bytes.NewReader(env.Payload))
	if err != nil {
		return nil, fmt.Errorf("%w: decompress: %w", ErrStateCorrupt, err)
	}
	defer func() { _ = gzr.Close() }() //nolint:errcheck // close after full read is not actionable

	raw, err := io.ReadAll(gzr)
	if err != nil {
		return nil, fmt.Errorf("%w: read payload: %w", ErrStateCorrupt, err)
	}
	sum := sha256.Sum256(raw)
	if hex.EncodeToString(sum[:]) != env.Checksum {
		return nil, fmt.Errorf("%w: checksum mismatch", ErrStateCorrupt)
	}

	var snap snapshot
	if err := gob.NewDecoder(bytes.NewReader(raw)).Decode(&snap); err != nil {
		return nil, fmt.Errorf("%w: decode snapshot: %w", ErrStateCorrupt, err)
	}
	if snap.Model == nil {
		snap.Model = &recommend.Model{}
	}
	if snap.Models == nil {
		snap.Models = &forecast.Models{}
	}
	return &snap, nil
}

func (e *Engine) restore(snap *snapshot) (*Generation, error) {
	cat := catalog.New(snap.Dataset, e.logger)

	scorer, err := recommend.NewScorer(cat, snap.Model)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvariant, err)
	}
	forecaster, err := forecast.NewForecaster(cat, snap.History, snap.Models, snap.Seed, e.cfg.Forecast)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvariant, err)
	}

	return &Generation{
		ID:         snap.ID,
		BuiltAt:    snap.BuiltAt,
		Seed:       snap.Seed,
		Source:     SourceRestored,
		Catalog:    cat,
		Scorer:     scorer,
		Forecaster: forecaster,
	}, nil
}
