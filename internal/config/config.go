// Lumeris - Game Recommendation and DeFi Forecasting Engine
// Copyright 2026 Alexandr Fenrir (AlexandrFenrir)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/AlexandrFenrir/lumeris

package config

import (
	"time"

	"github.com/AlexandrFenrir/lumeris/internal/engine"
	"github.com/AlexandrFenrir/lumeris/internal/forecast"
	"github.com/AlexandrFenrir/lumeris/internal/logging"
	"github.com/AlexandrFenrir/lumeris/internal/source"
	"github.com/AlexandrFenrir/lumeris/internal/statestore"
)

// Config holds all application configuration
type Config struct {
	Server  ServerConfig  `koanf:"server"`
	Logging LoggingConfig `koanf:"logging"`
	Backend BackendConfig `koanf:"backend"`
	Engine  EngineConfig  `koanf:"engine"`
	Retrain RetrainConfig `koanf:"retrain"`
	State   StateConfig   `koanf:"state"`
}

// ServerConfig holds HTTP listener settings
type ServerConfig struct {
	Host            string        `koanf:"host"`
	Port            int           `koanf:"port" validate:"min=1,max=65535"`
	ReadTimeout     time.Duration `koanf:"read_timeout" validate:"gte=0"`
	WriteTimeout    time.Duration `koanf:"write_timeout" validate:"gte=0"`
	ShutdownTimeout time.Duration `koanf:"shutdown_timeout" validate:"gte=0"`
	Environment     string        `koanf:"environment" validate:"oneof=development staging production"`

	CORSOrigins []string `koanf:"cors_origins"`

	RateLimitReqs     int           `koanf:"rate_limit_reqs" validate:"gte=0"`
	RateLimitWindow   time.Duration `koanf:"rate_limit_window" validate:"gte=0"`
	RateLimitDisabled bool          `koanf:"rate_limit_disabled"`
}

// LoggingConfig holds logging configuration.
type LoggingConfig struct {
	// Level is the minimum log level: trace, debug, info, warn, error.
	Level string `koanf:"level"`

	// Format is json or console.
	Format string `koanf:"format" validate:"oneof=json console"`

	// Caller includes caller file and line number in logs.
	Caller bool `koanf:"caller"`
}

// BackendConfig points at the platform backend that supplies games,
// pools and play records. When disabled the built-in dataset is used.
type BackendConfig struct {
	Enabled bool          `koanf:"enabled"`
	URL     string        `koanf:"url"`
	Timeout time.Duration `koanf:"timeout" validate:"gte=0"`

	RequestsPerSecond float64 `koanf:"requests_per_second" validate:"gte=0"`
	Burst             int     `koanf:"burst" validate:"gte=0"`

	BreakerFailures uint32        `koanf:"breaker_failures"`
	BreakerTimeout  time.Duration `koanf:"breaker_timeout" validate:"gte=0"`
}

// EngineConfig sizes the models and the serving defaults.
type EngineConfig struct {
	HistoryDays int `koanf:"history_days" validate:"min=3,max=3650"`

	ForestTrees           int `koanf:"forest_trees" validate:"min=1"`
	ForestMaxDepth        int `koanf:"forest_max_depth" validate:"min=1"`
	ForestMinSamplesSplit int `koanf:"forest_min_samples_split" validate:"min=2"`
	ForestWorkers         int `koanf:"forest_workers" validate:"gte=0"`

	BoostingStages       int     `koanf:"boosting_stages" validate:"min=1"`
	BoostingMaxDepth     int     `koanf:"boosting_max_depth" validate:"min=1"`
	BoostingLearningRate float64 `koanf:"boosting_learning_rate" validate:"gt=0,lte=1"`

	DefaultHorizon int `koanf:"default_horizon" validate:"min=1"`
	MaxHorizon     int `koanf:"max_horizon" validate:"min=1"`

	// Seed fixes every random draw in a build; 0 picks a fresh seed each build.
	Seed uint64 `koanf:"seed"`

	DefaultRecommendations int `koanf:"default_recommendations" validate:"min=1"`
	MaxRecommendations     int `koanf:"max_recommendations" validate:"min=1"`
}

// RetrainConfig controls when generations are rebuilt from the source.
type RetrainConfig struct {
	OnStartup bool `koanf:"on_startup"`

	// Interval between scheduled rebuilds; 0 disables the schedule.
	Interval time.Duration `koanf:"interval" validate:"gte=0"`

	Timeout time.Duration `koanf:"timeout" validate:"gte=0"`
}

// StateConfig controls snapshot persistence in BadgerDB.
type StateConfig struct {
	Enabled          bool   `koanf:"enabled"`
	Path             string `koanf:"path"`
	RestoreOnStartup bool   `koanf:"restore_on_startup"`
	PersistOnPublish bool   `koanf:"persist_on_publish"`
	SyncWrites       bool   `koanf:"sync_writes"`
}

// Addr returns the listen address.
func (s *ServerConfig) Addr() string {
	return joinHostPort(s.Host, s.Port)
}

// ToLoggingConfig converts to the logging package configuration.
func (l *LoggingConfig) ToLoggingConfig() logging.Config {
	cfg := logging.DefaultConfig()
	cfg.Level = l.Level
	cfg.Format = l.Format
	cfg.Caller = l.Caller
	return cfg
}

// ToEngineConfig converts to the engine build configuration.
func (e *EngineConfig) ToEngineConfig() engine.Config {
	return engine.Config{
		Seed: e.Seed,
		Forecast: forecast.Config{
			HistoryDays: e.HistoryDays,
			Forest: forecast.ForestConfig{
				Trees:           e.ForestTrees,
				MaxDepth:        e.ForestMaxDepth,
				MinSamplesSplit: e.ForestMinSamplesSplit,
				Workers:         e.ForestWorkers,
			},
			Boosting: forecast.BoostingConfig{
				Stages:       e.BoostingStages,
				MaxDepth:     e.BoostingMaxDepth,
				LearningRate: e.BoostingLearningRate,
			},
			DefaultHorizon: e.DefaultHorizon,
			MaxHorizon:     e.MaxHorizon,
		},
	}
}

// ToSourceConfig converts to the backend client configuration.
func (b *BackendConfig) ToSourceConfig() source.Config {
	return source.Config{
		BaseURL:           b.URL,
		Timeout:           b.Timeout,
		RequestsPerSecond: b.RequestsPerSecond,
		Burst:             b.Burst,
		Breaker: source.BreakerConfig{
			ConsecutiveFailures: b.BreakerFailures,
			Timeout:             b.BreakerTimeout,
		},
	}
}

// ToStoreConfig converts to the state store configuration.
func (s *StateConfig) ToStoreConfig() statestore.Config {
	return statestore.Config{Path: s.Path, SyncWrites: s.SyncWrites}
}
