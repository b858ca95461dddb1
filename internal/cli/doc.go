// Cratedigger - Vinyl Marketplace Deal Analysis
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cratedigger

// Package cli implements the cratedigger command line tool. It runs the
// analysis engine locally against a file of listings and prints the report.
package cli
