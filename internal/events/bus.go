// Lumeris - Game Recommendation and DeFi Forecasting Engine
// Copyright 2026 Alexandr Fenrir (AlexandrFenrir)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/AlexandrFenrir/lumeris

// Package events carries engine lifecycle events over an in-process
// Watermill pub/sub.
//
// The engine publishes one event per generation swap. Consumers such as the
// snapshot persister subscribe by topic and must Ack every message.
package events

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	"github.com/rs/zerolog"
)

// ErrClosed is returned when publishing on or subscribing to a closed bus.
var ErrClosed = errors.New("event bus is closed")

// BusConfig tunes the in-process pub/sub.
type BusConfig struct {
	// OutputBuffer is the per-subscriber channel buffer.
	OutputBuffer int64

	// BlockUntilAck makes Publish wait for subscribers to Ack.
	BlockUntilAck bool
}

// DefaultBusConfig returns the settings used by the server.
func DefaultBusConfig() BusConfig {
	return BusConfig{OutputBuffer: 16}
}

// Bus is a closable wrapper around a Watermill GoChannel.
type Bus struct {
	pubsub *gochannel.GoChannel
	logger zerolog.Logger

	mu     sync.RWMutex
	closed bool
}

// NewBus creates an in-process event bus.
func NewBus(cfg BusConfig, logger zerolog.Logger) *Bus {
	logger = logger.With().Str("component", "events").Logger()
	pubsub := gochannel.NewGoChannel(gochannel.Config{
		OutputChannelBuffer:            cfg.OutputBuffer,
		BlockPublishUntilSubscriberAck: cfg.BlockUntilAck,
	}, NewLoggerAdapter(logger))

	return &Bus{pubsub: pubsub, logger: logger}
}

// Publish sends msgs on topic. Messages published with no subscriber are dropped.
func (b *Bus) Publish(topic string, msgs ...*message.Message) error {
	b.mu.RLock()
	defer b.mu.RUnlock()
	if b.closed {
		return ErrClosed
	}
	if err := b.pubsub.Publish(topic, msgs...); err != nil {
		return fmt.Errorf("publish to %s: %w", topic, err)
	}
	return nil
}

// Subscribe returns a channel of messages on topic. The channel closes when
// ctx is done or the bus closes.
func (b *Bus) Subscribe(ctx context.Context, topic string) (<-chan *message.Message, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	if b.closed {
		return nil, ErrClosed
	}
	ch, err := b.pubsub.Subscribe(ctx, topic)
	if err != nil {
		return nil, fmt.Errorf("subscribe to %s: %w", topic, err)
	}
	return ch, nil
}

// Close shuts the bus down. Safe to call more than once.
func (b *Bus) Close() error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.closed {
		return nil
	}
	b.closed = true
	return b.pubsub.Close()
}
