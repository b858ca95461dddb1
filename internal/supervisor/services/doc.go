// Cratedigger - Vinyl Marketplace Deal Analysis
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cratedigger

// Package services adapts long-running components to suture.Service.
//
// HTTPServerService wraps an *http.Server so the api layer can restart it.
// NATSMonitorService watches the embedded NATS server and reports a failure
// to its supervisor when the server stops underneath the process.
package services
