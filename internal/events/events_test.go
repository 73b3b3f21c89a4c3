// Lumeris - Game Recommendation and DeFi Forecasting Engine
// Copyright 2026 Alexandr Fenrir (AlexandrFenrir)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/AlexandrFenrir/lumeris

package events

import (
	"bytes"
	"context"
	"testing"
	"time"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AlexandrFenrir/lumeris/internal/engine"
)

func receive(t *testing.T, ch <-chan *message.Message) *message.Message {
	t.Helper()

	select {
	case msg := <-ch:
		require.NotNil(t, msg)
		return msg
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for message")
		return nil
	}
}

func TestNotifierPublishesGeneration(t *testing.T) {
	t.Parallel()

	bus := NewBus(DefaultBusConfig(), zerolog.Nop())
	defer func() { _ = bus.Close() }()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	ch, err := bus.Subscribe(ctx, TopicGenerationPublished)
	require.NoError(t, err)

	var observer engine.Observer = NewNotifier(bus)
	summary := engine.Summary{ID: "gen-1", Version: 3, Seed: 42, Source: engine.SourceTrained, Games: 4}
	observer.GenerationPublished(ctx, summary)

	msg := receive(t, ch)
	msg.Ack()

	ev, err := DecodeGeneration(msg)
	require.NoError(t, err)
	assert.Equal(t, msg.UUID, ev.EventID)
	assert.Equal(t, summary, ev.Summary)
	assert.Equal(t, "3", msg.Metadata.Get("version"))
	assert.Equal(t, engine.SourceTrained, msg.Metadata.Get("source"))
}

func TestPublishWithoutSubscriber(t *testing.T) {
	t.Parallel()

	bus := NewBus(DefaultBusConfig(), zerolog.Nop())
	defer func() { _ = bus.Close() }()

	msg := message.NewMessage(watermill.NewUUID(), []byte(`{}`))
	assert.NoError(t, bus.Publish(TopicGenerationPublished, msg))
}

func TestClosedBus(t *testing.T) {
	t.Parallel()

	bus := NewBus(DefaultBusConfig(), zerolog.Nop())
	require.NoError(t, bus.Close())
	require.NoError(t, bus.Close())

	err := bus.Publish(TopicGenerationPublished, message.NewMessage("x", nil))
	assert.ErrorIs(t, err, ErrClosed)

	_, err = bus.Subscribe(context.Background(), TopicGenerationPublished)
	assert.ErrorIs(t, err, ErrClosed)

	// A notifier on a closed bus only logs.
	NewNotifier(bus).GenerationPublished(context.Background(), engine.Summary{ID: "late"})
}

func TestDecodeGenerationInvalid(t *testing.T) {
	t.Parallel()

	_, err := DecodeGeneration(message.NewMessage("bad", []byte("not json")))
	assert.Error(t, err)
}

func TestLoggerAdapter(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	adapter := NewLoggerAdapter(zerolog.New(&buf)).With(watermill.LogFields{"topic": "t1"})
	adapter.Info("subscribed", watermill.LogFields{"subscribers": 1})

	out := buf.String()
	assert.Contains(t, out, `"topic":"t1"`)
	assert.Contains(t, out, `"subscribers":1`)
	assert.Contains(t, out, "subscribed")
}
