// Lumeris - Game Recommendation and DeFi Forecasting Engine
// Copyright 2026 Alexandr Fenrir (AlexandrFenrir)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/AlexandrFenrir/lumeris

/*
Package config provides layered configuration for the Lumeris server.

Configuration is loaded with Koanf v2 from three layers, later layers
overriding earlier ones:

 1. Built-in defaults (defaultConfig)
 2. An optional YAML file (CONFIG_PATH, or config.yaml / /etc/lumeris/config.yaml)
 3. Environment variables, through an explicit name mapping

Sections:

  - server:  HTTP listener, timeouts, CORS, rate limiting
  - logging: zerolog level, format, caller
  - backend: platform backend URL, timeout, request pacing, circuit breaker
  - engine:  history length, model sizes, forecast horizons, seed, result sizes
  - retrain: startup training, refresh interval, per-run timeout
  - state:   BadgerDB snapshot directory and restore/persist switches

Example YAML:

	server:
	  port: 8000
	  cors_origins: ["http://localhost:5173"]
	backend:
	  enabled: true
	  url: http://localhost:3001
	engine:
	  seed: 42
	  forest_trees: 100
	retrain:
	  interval: 6h
	state:
	  enabled: true
	  path: /data/lumeris-state

Environment variables use flat legacy-style names such as HTTP_PORT,
BACKEND_URL, ENGINE_SEED, RETRAIN_INTERVAL and STATE_PATH; see
envTransformFunc for the full list. Unknown variables are ignored.
*/
package config
