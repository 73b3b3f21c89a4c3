// Lumeris - Game Recommendation and DeFi Forecasting Engine
// Copyright 2026 Alexandr Fenrir (AlexandrFenrir)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/AlexandrFenrir/lumeris

/*
Package services provides suture.Service wrappers for Lumeris components.

Each wrapper implements Serve(ctx context.Context) error and identifies
itself through fmt.Stringer for supervisor logs.

  - HTTPServerService: *http.Server with graceful shutdown.
  - RetrainService: optional startup build plus an interval schedule that
    rebuilds the engine generation from the dataset loader.
  - SnapshotService: consumes generation events and writes the exported
    engine state to the BadgerDB store.

RetrainService and SnapshotService also expose Retrain and Persist so the
HTTP layer can trigger the same work on demand.
*/
package services
