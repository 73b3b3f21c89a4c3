// Lumeris - Game Recommendation and DeFi Forecasting Engine
// Copyright 2026 Alexandr Fenrir (AlexandrFenrir)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/AlexandrFenrir/lumeris

// Package statestore persists exported engine state in BadgerDB so a
// restarted server can serve the last generation without retraining.
//
// The store keeps the latest blob under a fixed key together with a small
// JSON metadata record. Older snapshots are overwritten; BadgerDB value-log
// GC reclaims the space.
package statestore

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/goccy/go-json"

	"github.com/AlexandrFenrir/lumeris/internal/logging"
)

// Keys for BadgerDB storage
const (
	stateKey = "state:latest"
	metaKey  = "state_meta:latest"
)

// ErrNoSnapshot is returned by Load when nothing has been saved yet.
var ErrNoSnapshot = errors.New("no saved snapshot")

// Meta describes a saved snapshot.
type Meta struct {
	GenerationID string    `json:"generation_id"`
	Version      int64     `json:"version"`
	Seed         uint64    `json:"seed"`
	Size         int       `json:"size"`
	SavedAt      time.Time `json:"saved_at"`
}

// Config controls how the store opens BadgerDB.
type Config struct {
	// Path is the BadgerDB directory. Empty with InMemory false is invalid.
	Path string

	// InMemory keeps everything in RAM; used by tests and ephemeral runs.
	InMemory bool

	// SyncWrites fsyncs every write.
	SyncWrites bool
}

// Store is a BadgerDB-backed snapshot store.
type Store struct {
	db *badger.DB
}

// Open opens (or creates) the store described by cfg.
func Open(cfg Config) (*Store, error) {
	if cfg.Path == "" && !cfg.InMemory {
		return nil, errors.New("state store path is required")
	}

	opts := badger.DefaultOptions(cfg.Path)
	if cfg.InMemory {
		opts = badger.DefaultOptions("").WithInMemory(true)
	}
	opts.Logger = nil // Suppress BadgerDB internal logs
	opts.SyncWrites = cfg.SyncWrites
	// Snapshots are a few MB at most
	opts.ValueLogFileSize = 64 << 20

	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("open badger db for engine state: %w", err)
	}

	logging.Info().
		Str("path", cfg.Path).
		Bool("in_memory", cfg.InMemory).
		Msg("State store opened")
	return &Store{db: db}, nil
}

// Save replaces the latest snapshot with blob.
func (s *Store) Save(ctx context.Context, blob []byte, meta Meta) error {
	if len(blob) == 0 {
		return errors.New("snapshot blob cannot be empty")
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	meta.Size = len(blob)
	if meta.SavedAt.IsZero() {
		meta.SavedAt = time.Now().UTC()
	}
	data, err := json.Marshal(meta)
	if err != nil {
		return fmt.Errorf("marshal snapshot meta: %w", err)
	}

	err = s.db.Update(func(txn *badger.Txn) error {
		if err := txn.Set([]byte(stateKey), blob); err != nil {
			return fmt.Errorf("set snapshot: %w", err)
		}
		if err := txn.Set([]byte(metaKey), data); err != nil {
			return fmt.Errorf("set snapshot meta: %w", err)
		}
		return nil
	})
	if err != nil {
		return err
	}

	logging.Debug().
		Str("generation_id", meta.GenerationID).
		Int("bytes", meta.Size).
		Msg("Snapshot written")
	return nil
}

// Load returns the latest snapshot and its metadata.
func (s *Store) Load(ctx context.Context) ([]byte, Meta, error) {
	var (
		blob []byte
		meta Meta
	)
	if err := ctx.Err(); err != nil {
		return nil, meta, err
	}

	err := s.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get([]byte(stateKey))
		if errors.Is(err, badger.ErrKeyNotFound) {
			return ErrNoSnapshot
		}
		if err != nil {
			return fmt.Errorf("get snapshot: %w", err)
		}
		if blob, err = item.ValueCopy(nil); err != nil {
			return fmt.Errorf("read snapshot: %w", err)
		}

		item, err = txn.Get([]byte(metaKey))
		if errors.Is(err, badger.ErrKeyNotFound) {
			return nil
		}
		if err != nil {
			return fmt.Errorf("get snapshot meta: %w", err)
		}
		return item.Value(func(val []byte) error {
			return json.Unmarshal(val, &meta)
		})
	})
	if err != nil {
		return nil, Meta{}, err
	}
	return blob, meta, nil
}

// Meta returns only the metadata of the latest snapshot.
func (s *Store) Meta(ctx context.Context) (Meta, error) {
	var meta Meta
	if err := ctx.Err(); err != nil {
		return meta, err
	}
	err := s.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get([]byte(metaKey))
		if errors.Is(err, badger.ErrKeyNotFound) {
			return ErrNoSnapshot
		}
		if err != nil {
			return fmt.Errorf("get snapshot meta: %w", err)
		}
		return item.Value(func(val []byte) error {
			return json.Unmarshal(val, &meta)
		})
	})
	return meta, err
}

// Delete removes the saved snapshot, if any.
func (s *Store) Delete(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return s.db.Update(func(txn *badger.Txn) error {
		for _, k := range []string{stateKey, metaKey} {
			if err := txn.Delete([]byte(k)); err != nil && !errors.Is(err, badger.ErrKeyNotFound) {
				return fmt.Errorf("delete %s: %w", k, err)
			}
		}
		return nil
	})
}

// RunGC runs one value-log GC cycle. badger.ErrNoRewrite means nothing to do.
func (s *Store) RunGC(ratio float64) error {
	err := s.db.RunValueLogGC(ratio)
	if errors.Is(err, badger.ErrNoRewrite) || errors.Is(err, badger.ErrGCInMemoryMode) {
		return nil
	}
	return err
}

// Close closes the underlying database.
func (s *Store) Close() error {
	return s.db.Close()
}
