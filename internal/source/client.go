// Lumeris - Game Recommendation and DeFi Forecasting Engine
// Copyright 2026 Alexandr Fenrir (AlexandrFenrir)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/AlexandrFenrir/lumeris

// Package source fetches games, pools and play records from the platform
// backend and maps them into catalog records.
//
// Every call is paced by a token-bucket limiter and guarded by a circuit
// breaker. The Loader turns any failed or empty part into the built-in
// fallback so a build always has a dataset to work from.
package source

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/goccy/go-json"
	gobreaker "github.com/sony/gobreaker/v2"
	"golang.org/x/time/rate"

	"github.com/AlexandrFenrir/lumeris/internal/catalog"
)

// Backend endpoints
const (
	pathGames  = "/api/gaming/games"
	pathPools  = "/api/defi/pools"
	pathPlays  = "/api/gaming/plays"
	pathHealth = "/health"
)

// maxBodyBytes caps a single backend response.
const maxBodyBytes = 8 << 20

// ErrUpstream is wrapped by every backend failure: transport errors,
// non-2xx statuses, undecodable bodies and success=false envelopes.
var ErrUpstream = errors.New("backend request failed")

// Config configures the backend client.
type Config struct {
	BaseURL string
	Timeout time.Duration

	// RequestsPerSecond paces outgoing calls. Zero disables pacing.
	RequestsPerSecond float64
	Burst             int

	Breaker BreakerConfig
}

// envelope is the backend's response wrapper.
type envelope struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
	Error   string          `json:"error,omitempty"`
}

// Client talks to the platform backend.
type Client struct {
	baseURL string
	http    *http.Client
	limiter *rate.Limiter
	cb      *gobreaker.CircuitBreaker[[]byte]
}

// NewClient creates a backend client.
//
//nolint:gocritic // hugeParam: Config is copied once at construction
func NewClient(cfg Config) *Client {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 5 * time.Second
	}

	limiter := rate.NewLimiter(rate.Inf, 0)
	if cfg.RequestsPerSecond > 0 {
		burst := cfg.Burst
		if burst < 1 {
			burst = 1
		}
		limiter = rate.NewLimiter(rate.Limit(cfg.RequestsPerSecond), burst)
	}

	return &Client{
		baseURL: strings.TrimRight(cfg.BaseURL, "/"),
		http:    &http.Client{Timeout: timeout},
		limiter: limiter,
		cb:      newBreaker("backend-api", cfg.Breaker),
	}
}

// get fetches path and returns the raw envelope data.
func (c *Client) get(ctx context.Context, path string) (json.RawMessage, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("%w: rate limiter: %w", ErrUpstream, err)
	}

	body, err := c.cb.Execute(func() ([]byte, error) {
		return c.do(ctx, path)
	})
	if err != nil {
		if errors.Is(err, ErrUpstream) {
			return nil, err
		}
		return nil, fmt.Errorf("%w: %s: %w", ErrUpstream, path, err)
	}

	var env envelope
	if err := json.Unmarshal(body, &env); err != nil {
		return nil, fmt.Errorf("%w: decode %s: %w", ErrUpstream, path, err)
	}
	if !env.Success {
		return nil, fmt.Errorf("%w: %s returned success=false: %s", ErrUpstream, path, env.Error)
	}
	return env.Data, nil
}

func (c *Client) do(ctx context.Context, path string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, http.NoBody)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %w", ErrUpstream, path, err)
	}
	defer func() { _ = resp.Body.Close() }() //nolint:errcheck // body fully read below

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("%w: %s: unexpected status %d", ErrUpstream, path, resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return nil, fmt.Errorf("%w: read %s: %w", ErrUpstream, path, err)
	}
	return body, nil
}

// FetchGames returns the backend game list mapped to catalog records.
func (c *Client) FetchGames(ctx context.Context) ([]catalog.Game, error) {
	data, err := c.get(ctx, pathGames)
	if err != nil {
		return nil, err
	}
	var raw []backendGame
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("%w: decode games: %w", ErrUpstream, err)
	}
	games := make([]catalog.Game, len(raw))
	for i := range raw {
		games[i] = raw[i].toGame()
	}
	return games, nil
}

// FetchPools returns the backend pool list mapped to catalog records.
func (c *Client) FetchPools(ctx context.Context) ([]catalog.Pool, error) {
	data, err := c.get(ctx, pathPools)
	if err != nil {
		return nil, err
	}
	var raw []backendPool
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("%w: decode pools: %w", ErrUpstream, err)
	}
	pools := make([]catalog.Pool, len(raw))
	for i := range raw {
		pools[i] = raw[i].toPool()
	}
	return pools, nil
}

// FetchPlays returns backend play records.
func (c *Client) FetchPlays(ctx context.Context) ([]catalog.PlayRecord, error) {
	data, err := c.get(ctx, pathPlays)
	if err != nil {
		return nil, err
	}
	var raw []backendPlay
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("%w: decode plays: %w", ErrUpstream, err)
	}
	plays := make([]catalog.PlayRecord, len(raw))
	for i := range raw {
		plays[i] = raw[i].toPlay()
	}
	return plays, nil
}

// Health probes the backend. It bypasses the envelope since /health may
// answer with a bare status object.
func (c *Client) Health(ctx context.Context) error {
	if err := c.limiter.Wait(ctx); err != nil {
		return fmt.Errorf("%w: rate limiter: %w", ErrUpstream, err)
	}
	_, err := c.cb.Execute(func() ([]byte, error) {
		return c.do(ctx, pathHealth)
	})
	if err != nil && !errors.Is(err, ErrUpstream) {
		return fmt.Errorf("%w: %s: %w", ErrUpstream, pathHealth, err)
	}
	return err
}
