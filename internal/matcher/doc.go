// Cratedigger - Vinyl Marketplace Deal Analysis
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cratedigger

// Package matcher resolves marketplace listings to canonical release
// identities.
//
// Titles and artists are normalized, combined into a fingerprint used as a
// bucket key, and scored against candidate canonical items with a weighted
// Levenshtein similarity. Listings scoring below the low-confidence
// threshold found a new canonical item. All canonical state lives in a Store
// whose Merge operation updates match counts and running averages
// atomically.
package matcher
