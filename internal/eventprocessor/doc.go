// Cratedigger - Vinyl Marketplace Deal Analysis
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cratedigger

// Package eventprocessor runs analyses driven by marketplace search events.
//
// A search.completed message carries the listings of one executed search.
// The processor runs the analysis engine on it, stores the report and
// publishes an analysis.completed summary. Messages that cannot be decoded
// or validated go straight to the poison queue; transient failures are
// retried with backoff before they are poisoned.
//
// Two transports are supported: NATS JetStream through watermill-nats
// (optionally backed by an embedded nats-server), and an in-process
// watermill gochannel for single-binary deployments and tests.
package eventprocessor
