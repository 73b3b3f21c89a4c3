// Lumeris - Game Recommendation and DeFi Forecasting Engine
// Copyright 2026 Alexandr Fenrir (AlexandrFenrir)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/AlexandrFenrir/lumeris

// Package recommend builds the game feature matrix, the item-item cosine
// similarity and the user-item engagement matrix, and ranks games for a
// user from them.
//
// # Scoring
//
// Known users get a hybrid score per game:
//
//	0.6 * content + 0.4 * collaborative
//
// where content sums the similarity rows of the user's played games,
// weighted by playtime, and collaborative sums the other users' engagement
// rows, weighted by their cosine similarity to the user. Games the user already played are excluded. Unknown users get the
// popularity ranking rating*ln(players+1).
//
// A Model holds only derived matrices; it is rebuilt from a catalog by
// BuildModel or restored from a snapshot, and NewScorer checks that its
// shapes match the catalog before anything is served from it.
package recommend
