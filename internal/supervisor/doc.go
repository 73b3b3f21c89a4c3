// Lumeris - Game Recommendation and DeFi Forecasting Engine
// Copyright 2026 Alexandr Fenrir (AlexandrFenrir)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/AlexandrFenrir/lumeris

/*
Package supervisor runs the long-lived Lumeris services under suture v4.

The tree has three layers so a failure in one does not take down another:

	RootSupervisor ("lumeris")
	├── DataSupervisor ("data-layer")
	│   └── SnapshotService (if state.enabled and state.persist_on_publish)
	├── MessagingSupervisor ("messaging-layer")
	│   └── RetrainService
	└── APISupervisor ("api-layer")
	    └── HTTPServerService

A crashing snapshot writer is restarted with backoff while the API keeps
serving the current generation. Supervisor events are logged through
sutureslog into the same zerolog sink as the rest of the server.
*/
package supervisor
