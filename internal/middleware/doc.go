// Lumeris - Game Recommendation and DeFi Forecasting Engine
// Copyright 2026 Alexandr Fenrir (AlexandrFenrir)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/AlexandrFenrir/lumeris

/*
Package middleware provides the chi middleware used by the HTTP layer.

  - RequestID: reuses or generates X-Request-ID and stores it in the request
    context for logging.Ctx and response metadata.
  - RequestLogger: one structured access log line per request.
  - PrometheusMetrics: request counter and latency histogram labeled by chi
    route pattern, so path parameters do not explode label cardinality.

Typical stack:

	r.Use(middleware.RequestID)
	r.Use(chimiddleware.Recoverer)
	r.Use(middleware.RequestLogger(logger))
	r.Use(middleware.PrometheusMetrics)
*/
package middleware
