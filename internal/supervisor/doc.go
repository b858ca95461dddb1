// Cratedigger - Vinyl Marketplace Deal Analysis
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cratedigger

// Package supervisor runs the long-lived services of the server under a
// suture supervision tree.
//
// The tree has three layers below the root:
//
//	cratedigger
//	├── data-layer       store value-log GC
//	├── messaging-layer  embedded NATS monitor, event processor
//	└── api-layer        HTTP server
//
// Each layer restarts its own failed services with backoff. Supervisor
// events are logged through sutureslog on top of the zerolog slog adapter.
package supervisor
