// Lumeris - Game Recommendation and DeFi Forecasting Engine
// Copyright 2026 Alexandr Fenrir (AlexandrFenrir)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/AlexandrFenrir/lumeris

// Package main is the entry point for the Lumeris server.
//
// Lumeris serves hybrid game recommendations and DeFi pool forecasts from an
// in-memory engine generation that is rebuilt in the background and swapped
// in atomically.
//
// # Startup
//
//  1. Configuration: defaults, then an optional YAML file, then environment
//     variables (Koanf v2).
//  2. Engine: created empty. If the state store is enabled and holds a
//     snapshot, the snapshot is imported; otherwise the retrain service
//     builds the first generation from the backend (or the built-in
//     dataset when the backend is disabled or failing).
//  3. Events: every published generation is announced on an in-process
//     Watermill channel; the snapshot service persists it.
//  4. HTTP: chi router on SERVER_HOST:HTTP_PORT.
//
// # Signal Handling
//
// SIGINT and SIGTERM cancel the supervisor tree. The HTTP server drains
// in-flight requests for up to HTTP_SHUTDOWN_TIMEOUT, then the event bus and
// the state store are closed.
//
// # Example Usage
//
//	export BACKEND_ENABLED=true
//	export BACKEND_URL=http://localhost:3001
//	export STATE_ENABLED=true
//	export STATE_PATH=/var/lib/lumeris
//	./lumeris
package main
