// Lumeris - Game Recommendation and DeFi Forecasting Engine
// Copyright 2026 Alexandr Fenrir (AlexandrFenrir)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/AlexandrFenrir/lumeris

/*
Package api serves the engine over HTTP using the chi router.

Routes:

	GET  /health
	GET  /api/v1/gaming/games
	GET  /api/v1/gaming/recommendations/{userID}?n=
	POST /api/v1/gaming/recommendations
	GET  /api/v1/gaming/similar/{gameID}?n=
	GET  /api/v1/defi/pools
	POST /api/v1/defi/predict
	GET  /api/v1/defi/predictions?days=
	POST /api/v1/models/retrain
	POST /api/v1/models/save
	GET  /api/v1/models/status
	GET  /metrics

Every JSON body is wrapped in APIResponse. Reads are served from whatever
generation is current when the request arrives; a retrain in flight never
blocks them. Before the first generation is published data endpoints
answer 503 ENGINE_NOT_READY.
*/
package api
