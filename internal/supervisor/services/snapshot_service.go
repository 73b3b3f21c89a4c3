// Lumeris - Game Recommendation and DeFi Forecasting Engine
// Copyright 2026 Alexandr Fenrir (AlexandrFenrir)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/AlexandrFenrir/lumeris

package services

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/rs/zerolog"

	"github.com/AlexandrFenrir/lumeris/internal/engine"
	"github.com/AlexandrFenrir/lumeris/internal/events"
	"github.com/AlexandrFenrir/lumeris/internal/metrics"
	"github.com/AlexandrFenrir/lumeris/internal/statestore"
)

// errSubscriptionClosed makes the supervisor restart the service.
var errSubscriptionClosed = errors.New("generation event subscription closed")

// StateSnapshotter exports the serving generation.
type StateSnapshotter interface {
	Snapshot() ([]byte, engine.Summary, error)
}

// SnapshotStore persists exported state.
type SnapshotStore interface {
	Save(ctx context.Context, blob []byte, meta statestore.Meta) error
}

// valueLogCollector is implemented by stores that can reclaim the space
// held by replaced snapshots.
type valueLogCollector interface {
	RunGC(ratio float64) error
}

// gcDiscardRatio is the value-log discard ratio used after each save.
const gcDiscardRatio = 0.5

// EventSubscriber delivers bus messages by topic.
type EventSubscriber interface {
	Subscribe(ctx context.Context, topic string) (<-chan *message.Message, error)
}

// SnapshotService writes the engine state to the store after every
// generation swap.
type SnapshotService struct {
	engine StateSnapshotter
	store  SnapshotStore
	events EventSubscriber
	logger zerolog.Logger

	mu   sync.Mutex
	msgs <-chan *message.Message
}

// NewSnapshotService creates a snapshot service. events may be nil when
// only on-demand Persist is wanted.
//
//nolint:gocritic // logger passed by value is acceptable for zerolog
func NewSnapshotService(eng StateSnapshotter, store SnapshotStore, sub EventSubscriber, logger zerolog.Logger) *SnapshotService {
	return &SnapshotService{
		engine: eng,
		store:  store,
		events: sub,
		logger: logger.With().Str("service", "snapshot").Logger(),
	}
}

// Subscribe attaches to the generation topic ahead of Serve. The bus drops
// events published before a subscriber exists, so call it before anything
// can publish a generation. The subscription lives as long as ctx.
func (s *SnapshotService) Subscribe(ctx context.Context) error {
	if s.events == nil {
		return nil
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.msgs != nil {
		return nil
	}
	msgs, err := s.events.Subscribe(ctx, events.TopicGenerationPublished)
	if err != nil {
		return fmt.Errorf("subscribe to generation events: %w", err)
	}
	s.msgs = msgs
	return nil
}

// takeSubscription hands the pending subscription to one Serve call.
func (s *SnapshotService) takeSubscription() <-chan *message.Message {
	s.mu.Lock()
	defer s.mu.Unlock()
	msgs := s.msgs
	s.msgs = nil
	return msgs
}

// Serve implements the suture.Service interface.
func (s *SnapshotService) Serve(ctx context.Context) error {
	if s.events == nil {
		<-ctx.Done()
		return ctx.Err()
	}

	msgs := s.takeSubscription()
	if msgs == nil {
		var err error
		if msgs, err = s.events.Subscribe(ctx, events.TopicGenerationPublished); err != nil {
			return fmt.Errorf("subscribe to generation events: %w", err)
		}
	}

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case msg, ok := <-msgs:
			if !ok {
				if ctx.Err() != nil {
					return ctx.Err()
				}
				return errSubscriptionClosed
			}
			s.handle(ctx, msg)
		}
	}
}

func (s *SnapshotService) handle(ctx context.Context, msg *message.Message) {
	// Persist failures are logged and acked; the next swap retries with
	// fresher state, so redelivering a stale event has no value.
	defer msg.Ack()

	ev, err := events.DecodeGeneration(msg)
	if err != nil {
		s.logger.Warn().Err(err).Msg("dropping undecodable generation event")
		return
	}
	if ev.Summary.Source == engine.SourceRestored {
		// Already on disk.
		return
	}
	if _, err := s.Persist(ctx); err != nil {
		s.logger.Error().Err(err).Str("generation_id", ev.Summary.ID).Msg("snapshot save failed")
	}
}

// Persist exports the serving generation and saves it.
func (s *SnapshotService) Persist(ctx context.Context) (statestore.Meta, error) {
	blob, summary, err := s.engine.Snapshot()
	if err != nil {
		return statestore.Meta{}, fmt.Errorf("export state: %w", err)
	}

	meta := statestore.Meta{
		GenerationID: summary.ID,
		Version:      summary.Version,
		Seed:         summary.Seed,
		Size:         len(blob),
		SavedAt:      time.Now().UTC(),
	}
	err = s.store.Save(ctx, blob, meta)
	metrics.RecordSnapshotSave(len(blob), err)
	if err != nil {
		return statestore.Meta{}, fmt.Errorf("save snapshot: %w", err)
	}

	if gc, ok := s.store.(valueLogCollector); ok {
		if err := gc.RunGC(gcDiscardRatio); err != nil {
			s.logger.Warn().Err(err).Msg("value log GC failed")
		}
	}

	s.logger.Info().
		Str("generation_id", meta.GenerationID).
		Int64("version", meta.Version).
		Int("bytes", meta.Size).
		Msg("snapshot saved")
	return meta, nil
}

func (s *SnapshotService) String() string {
	return "snapshot-service"
}
