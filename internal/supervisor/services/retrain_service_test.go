// Lumeris - Game Recommendation and DeFi Forecasting Engine
// Copyright 2026 Alexandr Fenrir (AlexandrFenrir)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/AlexandrFenrir/lumeris

package services

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/thejerf/suture/v4"

	"github.com/AlexandrFenrir/lumeris/internal/catalog"
	"github.com/AlexandrFenrir/lumeris/internal/engine"
)

type mockBuilder struct {
	mu     sync.Mutex
	ready  bool
	builds int
	err    error
	built  chan struct{}
}

func newMockBuilder() *mockBuilder {
	return &mockBuilder{built: make(chan struct{}, 16)}
}

func (m *mockBuilder) Initialize(_ context.Context, ds catalog.Dataset) (engine.Summary, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.builds++
	select {
	case m.built <- struct{}{}:
	default:
	}
	if m.err != nil {
		return engine.Summary{}, m.err
	}
	m.ready = true
	return engine.Summary{Version: int64(m.builds), Games: len(ds.Games)}, nil
}

func (m *mockBuilder) Ready() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.ready
}

func (m *mockBuilder) count() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.builds
}

type staticLoader struct{}

func (staticLoader) Load(context.Context) catalog.Dataset { return catalog.DefaultDataset() }

func TestRetrainService_Interface(t *testing.T) {
	var _ suture.Service = (*RetrainService)(nil)
}

func TestRetrainService_StartupBuild(t *testing.T) {
	b := newMockBuilder()
	svc := NewRetrainService(b, staticLoader{}, RetrainServiceConfig{OnStartup: true}, zerolog.Nop())

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- svc.Serve(ctx) }()

	select {
	case <-b.built:
	case <-time.After(time.Second):
		t.Fatal("startup build did not run")
	}
	cancel()
	if err := <-done; !errors.Is(err, context.Canceled) {
		t.Errorf("Serve() = %v", err)
	}
	if b.count() != 1 {
		t.Errorf("builds = %d, want 1", b.count())
	}
}

func TestRetrainService_SkipsStartupWhenReady(t *testing.T) {
	b := newMockBuilder()
	b.ready = true
	svc := NewRetrainService(b, staticLoader{}, RetrainServiceConfig{OnStartup: true}, zerolog.Nop())

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()
	_ = svc.Serve(ctx)

	if b.count() != 0 {
		t.Errorf("builds = %d, want 0 for an already serving engine", b.count())
	}
}

func TestRetrainService_Schedule(t *testing.T) {
	b := newMockBuilder()
	svc := NewRetrainService(b, staticLoader{}, RetrainServiceConfig{Interval: 10 * time.Millisecond}, zerolog.Nop())

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- svc.Serve(ctx) }()

	for i := 0; i < 2; i++ {
		select {
		case <-b.built:
		case <-time.After(time.Second):
			t.Fatalf("scheduled build %d did not run", i+1)
		}
	}
	cancel()
	<-done
}

func TestRetrainService_FailureKeepsRunning(t *testing.T) {
	b := newMockBuilder()
	b.err = errors.New("shape mismatch")
	svc := NewRetrainService(b, staticLoader{}, RetrainServiceConfig{OnStartup: true, Interval: 10 * time.Millisecond}, zerolog.Nop())

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- svc.Serve(ctx) }()

	for i := 0; i < 2; i++ {
		<-b.built
	}
	cancel()
	if err := <-done; !errors.Is(err, context.Canceled) {
		t.Errorf("Serve() = %v, want context.Canceled", err)
	}
}

func TestRetrainService_Retrain(t *testing.T) {
	b := newMockBuilder()
	svc := NewRetrainService(b, staticLoader{}, RetrainServiceConfig{}, zerolog.Nop())

	s, err := svc.Retrain(context.Background())
	if err != nil {
		t.Fatalf("Retrain() error = %v", err)
	}
	if s.Version != 1 || s.Games != 4 {
		t.Errorf("summary = %+v", s)
	}
	if svc.config.Timeout != 5*time.Minute {
		t.Errorf("default timeout = %v", svc.config.Timeout)
	}

	b.err = errors.New("boom")
	if _, err := svc.Retrain(context.Background()); err == nil {
		t.Error("expected error from failing builder")
	}
}
