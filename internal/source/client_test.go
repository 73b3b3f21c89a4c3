// Lumeris - Game Recommendation and DeFi Forecasting Engine
// Copyright 2026 Alexandr Fenrir (AlexandrFenrir)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/AlexandrFenrir/lumeris

package source

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const gamesBody = `{"success":true,"data":[
 {"id":"g-a","title":"Nebula Raiders","genre":"Action","players":500,"maxPlayers":1000,
  "requirements":{"minLevel":7},"rewards":{"daily":150}},
 {"id":"g-b","title":"Deck Lords","genre":"CARD","players":0,"maxPlayers":0,
  "requirements":{},"rewards":{"daily":900}}
]}`

const poolsBody = `{"success":true,"data":[
 {"id":"p-1","pair":"ETH/USDC","tvl":25000000,"volume24h":5000000,"apy":12.5,"fees":0.05},
 {"id":"p-2","pair":"FOO","tvl":2000000,"volume24h":100000,"apy":40}
]}`

func newBackend(t *testing.T, routes map[string]string) (*httptest.Server, *atomic.Int64) {
	t.Helper()

	var hits atomic.Int64
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		body, ok := routes[r.URL.Path]
		if !ok {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(body))
	}))
	t.Cleanup(srv.Close)
	return srv, &hits
}

func TestFetchGames(t *testing.T) {
	t.Parallel()

	srv, _ := newBackend(t, map[string]string{pathGames: gamesBody})
	c := NewClient(Config{BaseURL: srv.URL + "/"})

	games, err := c.FetchGames(context.Background())
	require.NoError(t, err)
	require.Len(t, games, 2)

	a := games[0]
	assert.Equal(t, "g-a", a.ID)
	assert.Equal(t, "Nebula Raiders", a.Name)
	assert.Equal(t, "action", a.Category)
	assert.Equal(t, "medium", a.Difficulty)
	assert.InDelta(t, 30, a.AvgPlaytime, 1e-9)
	assert.InDelta(t, 0.75, a.RewardRate, 1e-9)
	assert.InDelta(t, 4.4, a.Rating, 1e-9)

	b := games[1]
	assert.Equal(t, "card", b.Category)
	assert.Equal(t, "easy", b.Difficulty)
	assert.InDelta(t, 25, b.AvgPlaytime, 1e-9)
	assert.InDelta(t, 1.0, b.RewardRate, 1e-9)
	assert.InDelta(t, 4.0, b.Rating, 1e-9)
}

func TestFetchPools(t *testing.T) {
	t.Parallel()

	srv, _ := newBackend(t, map[string]string{pathPools: poolsBody})
	c := NewClient(Config{BaseURL: srv.URL})

	pools, err := c.FetchPools(context.Background())
	require.NoError(t, err)
	require.Len(t, pools, 2)

	assert.Equal(t, "ETH", pools[0].TokenA)
	assert.Equal(t, "USDC", pools[0].TokenB)
	assert.InDelta(t, 3500, pools[0].CurrentPrice, 1e-9)
	assert.InDelta(t, 0.05, pools[0].FeeTier, 1e-9)

	assert.Equal(t, "FOO", pools[1].TokenA)
	assert.Equal(t, "TOKEN_B", pools[1].TokenB)
	assert.InDelta(t, 100, pools[1].CurrentPrice, 1e-9)
	assert.InDelta(t, defaultFeeTier, pools[1].FeeTier, 1e-9)
}

func TestFetchFailures(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		body string
	}{
		{"success false", `{"success":false,"error":"maintenance"}`},
		{"not json", `<html>`},
		{"wrong data shape", `{"success":true,"data":{"id":"x"}}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			srv, _ := newBackend(t, map[string]string{pathGames: tt.body})
			c := NewClient(Config{BaseURL: srv.URL})
			_, err := c.FetchGames(context.Background())
			assert.ErrorIs(t, err, ErrUpstream)
		})
	}
}

func TestBreakerOpensAfterConsecutiveFailures(t *testing.T) {
	t.Parallel()

	srv, hits := newBackend(t, map[string]string{})
	c := NewClient(Config{
		BaseURL: srv.URL,
		Breaker: BreakerConfig{ConsecutiveFailures: 2, Timeout: time.Minute},
	})

	ctx := context.Background()
	for i := 0; i < 4; i++ {
		_, err := c.FetchPools(ctx)
		assert.ErrorIs(t, err, ErrUpstream)
	}
	assert.Equal(t, int64(2), hits.Load(), "open breaker must short-circuit requests")
}

func TestHealth(t *testing.T) {
	t.Parallel()

	srv, _ := newBackend(t, map[string]string{pathHealth: `{"status":"ok"}`})
	c := NewClient(Config{BaseURL: srv.URL})
	assert.NoError(t, c.Health(context.Background()))

	down := NewClient(Config{BaseURL: "http://127.0.0.1:1", Timeout: 200 * time.Millisecond})
	assert.ErrorIs(t, down.Health(context.Background()), ErrUpstream)
}

func TestRateLimiterHonorsContext(t *testing.T) {
	t.Parallel()

	srv, _ := newBackend(t, map[string]string{pathGames: gamesBody})
	c := NewClient(Config{BaseURL: srv.URL, RequestsPerSecond: 0.01, Burst: 1})

	_, err := c.FetchGames(context.Background())
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()
	_, err = c.FetchGames(ctx)
	assert.ErrorIs(t, err, ErrUpstream)
}

func TestMappingHelpers(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "hard", estimateDifficulty(10))
	assert.Equal(t, "medium", estimateDifficulty(5))
	assert.Equal(t, "easy", estimateDifficulty(4))

	assert.InDelta(t, 60, estimatePlaytime("rpg"), 1e-9)
	assert.InDelta(t, 20, estimatePlaytime("racing"), 1e-9)
	assert.InDelta(t, defaultPlaytime, estimatePlaytime("puzzle"), 1e-9)

	assert.InDelta(t, 0, rewardRate(-5), 1e-9)
	assert.InDelta(t, 5.0, estimateRating(2000, 1000), 1e-9)

	assert.InDelta(t, 2.45, estimatePrice("Lumeris", 0), 1e-9)
	assert.InDelta(t, 50000, estimatePrice("XYZ", 60_000_000), 1e-9)
	assert.InDelta(t, 5000, estimatePrice("XYZ", 20_000_000), 1e-9)
	assert.InDelta(t, 1, estimatePrice("XYZ", 10), 1e-9)

	a, b := splitPair("")
	assert.Equal(t, "TOKEN_A", a)
	assert.Equal(t, "TOKEN_B", b)
}
