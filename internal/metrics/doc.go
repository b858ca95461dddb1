// Cratedigger - Vinyl Marketplace Deal Analysis
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cratedigger

// Package metrics defines the Prometheus collectors exported by the service
// and small Record helpers that keep label handling in one place.
//
// Collectors are registered with the default registry through promauto and
// served at /metrics by the API router.
package metrics
