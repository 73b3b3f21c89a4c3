// Lumeris - Game Recommendation and DeFi Forecasting Engine
// Copyright 2026 Alexandr Fenrir (AlexandrFenrir)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/AlexandrFenrir/lumeris

package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/structs"
	"github.com/knadh/koanf/v2"
)

// DefaultConfigPaths lists the paths where config files are searched in order of priority.
// The first file found will be used.
var DefaultConfigPaths = []string{
	"config.yaml",
	"config.yml",
	"/etc/lumeris/config.yaml",
	"/etc/lumeris/config.yml",
}

// ConfigPathEnvVar is the environment variable that can override the config file path.
const ConfigPathEnvVar = "CONFIG_PATH"

// defaultConfig returns a Config struct with all sensible default values.
// These defaults are applied first, then overridden by config file and env vars.
func defaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Host:              "0.0.0.0",
			Port:              8000,
			ReadTimeout:       15 * time.Second,
			WriteTimeout:      60 * time.Second, // retrain runs inline on POST /models/retrain
			ShutdownTimeout:   10 * time.Second,
			Environment:       "development",
			CORSOrigins:       []string{"*"},
			RateLimitReqs:     100,
			RateLimitWindow:   time.Minute,
			RateLimitDisabled: false,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
			Caller: false,
		},
		Backend: BackendConfig{
			Enabled:           false, // built-in dataset unless a backend is configured
			URL:               "http://localhost:3001",
			Timeout:           5 * time.Second,
			RequestsPerSecond: 10,
			Burst:             3,
			BreakerFailures:   5,
			BreakerTimeout:    30 * time.Second,
		},
		Engine: EngineConfig{
			HistoryDays:            30,
			ForestTrees:            100,
			ForestMaxDepth:         10,
			ForestMinSamplesSplit:  2,
			ForestWorkers:          4,
			BoostingStages:         100,
			BoostingMaxDepth:       5,
			BoostingLearningRate:   0.1,
			DefaultHorizon:         7,
			MaxHorizon:             30,
			Seed:                   0,
			DefaultRecommendations: 5,
			MaxRecommendations:     50,
		},
		Retrain: RetrainConfig{
			OnStartup: true,
			Interval:  0, // manual retrain only
			Timeout:   5 * time.Minute,
		},
		State: StateConfig{
			Enabled:          false,
			Path:             "/data/lumeris-state",
			RestoreOnStartup: true,
			PersistOnPublish: true,
			SyncWrites:       true,
		},
	}
}

// Default returns the built-in defaults, already validated.
func Default() *Config {
	return defaultConfig()
}

// LoadWithKoanf loads configuration using Koanf v2 with layered sources:
//  1. Defaults: Built-in sensible defaults
//  2. Config File: Optional YAML config file (if exists)
//  3. Environment Variables: Override any setting
func LoadWithKoanf() (*Config, error) {
	k := koanf.New(".")

	// Layer 1: Load defaults from struct
	if err := k.Load(structs.Provider(defaultConfig(), "koanf"), nil); err != nil {
		return nil, fmt.Errorf("failed to load defaults: %w", err)
	}

	// Layer 2: Load config file (optional)
	if configPath := findConfigFile(); configPath != "" {
		if err := k.Load(file.Provider(configPath), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("failed to load config file %s: %w", configPath, err)
		}
	}

	// Layer 3: Load environment variables (highest priority)
	if err := k.Load(env.Provider("", ".", envTransformFunc), nil); err != nil {
		return nil, fmt.Errorf("failed to load environment variables: %w", err)
	}

	if err := processSliceFields(k); err != nil {
		return nil, fmt.Errorf("failed to process slice fields: %w", err)
	}

	cfg := &Config{}
	if err := k.Unmarshal("", cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal configuration: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return cfg, nil
}

// findConfigFile searches for a config file in the default paths.
// Returns the path to the first file found, or empty string if none found.
func findConfigFile() string {
	if envPath := os.Getenv(ConfigPathEnvVar); envPath != "" {
		if _, err := os.Stat(envPath); err == nil {
			return envPath
		}
	}

	for _, path := range DefaultConfigPaths {
		if _, err := os.Stat(path); err == nil {
			return path
		}
	}

	return ""
}

// sliceConfigPaths defines which config paths should be parsed as comma-separated slices
var sliceConfigPaths = []string{
	"server.cors_origins",
}

// processSliceFields converts comma-separated string values to slices for known slice fields.
// This is necessary because env vars come in as strings, but the config expects slices.
func processSliceFields(k *koanf.Koanf) error {
	for _, path := range sliceConfigPaths {
		strVal, ok := k.Get(path).(string)
		if !ok || strVal == "" {
			continue
		}

		parts := strings.Split(strVal, ",")
		trimmed := make([]string, 0, len(parts))
		for _, p := range parts {
			if p = strings.TrimSpace(p); p != "" {
				trimmed = append(trimmed, p)
			}
		}
		if len(trimmed) > 0 {
			if err := k.Set(path, trimmed); err != nil {
				return fmt.Errorf("failed to set %s: %w", path, err)
			}
		}
	}
	return nil
}

// envMappings maps lower-cased environment variable names to koanf paths.
var envMappings = map[string]string{
	// Server mappings
	"http_host":             "server.host",
	"http_port":             "server.port",
	"http_read_timeout":     "server.read_timeout",
	"http_write_timeout":    "server.write_timeout",
	"http_shutdown_timeout": "server.shutdown_timeout",
	"environment":           "server.environment",
	"cors_origins":          "server.cors_origins",
	"rate_limit_requests":   "server.rate_limit_reqs",
	"rate_limit_window":     "server.rate_limit_window",
	"disable_rate_limit":    "server.rate_limit_disabled",

	// Logging mappings
	"log_level":  "logging.level",
	"log_format": "logging.format",
	"log_caller": "logging.caller",

	// Backend mappings
	"backend_enabled":         "backend.enabled",
	"backend_url":             "backend.url",
	"backend_timeout":         "backend.timeout",
	"backend_rate_limit":      "backend.requests_per_second",
	"backend_burst":           "backend.burst",
	"backend_breaker_fails":   "backend.breaker_failures",
	"backend_breaker_timeout": "backend.breaker_timeout",

	// Engine mappings
	"engine_history_days":            "engine.history_days",
	"engine_forest_trees":            "engine.forest_trees",
	"engine_forest_max_depth":        "engine.forest_max_depth",
	"engine_forest_min_split":        "engine.forest_min_samples_split",
	"engine_forest_workers":          "engine.forest_workers",
	"engine_boosting_stages":         "engine.boosting_stages",
	"engine_boosting_max_depth":      "engine.boosting_max_depth",
	"engine_boosting_learning_rate":  "engine.boosting_learning_rate",
	"engine_default_horizon":         "engine.default_horizon",
	"engine_max_horizon":             "engine.max_horizon",
	"engine_seed":                    "engine.seed",
	"engine_default_recommendations": "engine.default_recommendations",
	"engine_max_recommendations":     "engine.max_recommendations",

	// Retrain mappings
	"retrain_on_startup": "retrain.on_startup",
	"retrain_interval":   "retrain.interval",
	"retrain_timeout":    "retrain.timeout",

	// State store mappings
	"state_enabled":            "state.enabled",
	"state_path":               "state.path",
	"state_restore_on_startup": "state.restore_on_startup",
	"state_persist_on_publish": "state.persist_on_publish",
	"state_sync_writes":        "state.sync_writes",
}

// envTransformFunc transforms environment variable names to koanf config paths.
//
// Examples:
//   - HTTP_PORT -> server.port
//   - BACKEND_URL -> backend.url
//   - ENGINE_SEED -> engine.seed
//
// Unmapped keys return "" and are skipped, so unrelated environment
// variables never leak into the configuration.
func envTransformFunc(key string) string {
	return envMappings[strings.ToLower(key)]
}
