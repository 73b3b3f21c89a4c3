// Lumeris - Game Recommendation and DeFi Forecasting Engine
// Copyright 2026 Alexandr Fenrir (AlexandrFenrir)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/AlexandrFenrir/lumeris

package events

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/goccy/go-json"
	"github.com/google/uuid"

	"github.com/AlexandrFenrir/lumeris/internal/engine"
)

// TopicGenerationPublished carries one message per generation swap.
const TopicGenerationPublished = "engine.generation.published"

// GenerationEvent is the payload of TopicGenerationPublished.
type GenerationEvent struct {
	EventID    string         `json:"event_id"`
	OccurredAt time.Time      `json:"occurred_at"`
	Summary    engine.Summary `json:"summary"`
}

// Notifier publishes generation events. It implements engine.Observer.
type Notifier struct {
	bus *Bus
	now func() time.Time
}

// NewNotifier creates a notifier publishing on bus.
func NewNotifier(bus *Bus) *Notifier {
	return &Notifier{bus: bus, now: time.Now}
}

// GenerationPublished emits s. Failures are logged; the swap has already
// happened and must not be undone by a delivery problem.
func (n *Notifier) GenerationPublished(_ context.Context, s engine.Summary) {
	ev := GenerationEvent{
		EventID:    uuid.New().String(),
		OccurredAt: n.now().UTC(),
		Summary:    s,
	}
	msg, err := EncodeGeneration(ev)
	if err != nil {
		n.bus.logger.Error().Err(err).Msg("Failed to encode generation event")
		return
	}
	if err := n.bus.Publish(TopicGenerationPublished, msg); err != nil {
		n.bus.logger.Warn().Err(err).Str("generation_id", s.ID).Msg("Failed to publish generation event")
		return
	}
	n.bus.logger.Debug().
		Str("event_id", ev.EventID).
		Int64("version", s.Version).
		Msg("Generation event published")
}

// EncodeGeneration builds the Watermill message for ev.
func EncodeGeneration(ev GenerationEvent) (*message.Message, error) {
	data, err := json.Marshal(ev)
	if err != nil {
		return nil, fmt.Errorf("marshal generation event: %w", err)
	}
	msg := message.NewMessage(ev.EventID, data)
	msg.Metadata.Set("source", ev.Summary.Source)
	msg.Metadata.Set("version", strconv.FormatInt(ev.Summary.Version, 10))
	return msg, nil
}

// DecodeGeneration parses a message from TopicGenerationPublished.
func DecodeGeneration(msg *message.Message) (GenerationEvent, error) {
	var ev GenerationEvent
	if err := json.Unmarshal(msg.Payload, &ev); err != nil {
		return ev, fmt.Errorf("unmarshal generation event %s: %w", msg.UUID, err)
	}
	return ev, nil
}
