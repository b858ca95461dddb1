// Cratedigger - Vinyl Marketplace Deal Analysis
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cratedigger

// Package engine runs one complete analysis: condition filtering, item
// matching against a fresh canonical store, seller analysis and
// recommendation generation.
//
// A run is a pure batch computation over in-memory data. Independent runs
// share no mutable state and may execute in parallel through BatchRunner.
// A cancelled run returns an error and no report, so callers never persist
// partial output.
package engine
