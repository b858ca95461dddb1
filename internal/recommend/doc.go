// Cratedigger - Vinyl Marketplace Deal Analysis
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cratedigger

// Package recommend turns seller analyses and matched items into ranked,
// explainable purchase recommendations.
//
// # Classification
//
// Rules are an ordered list of predicate and builder pairs. Listing-scoped
// rules are evaluated per listing and the first match wins:
//
//   - multi_item: the listing's seller has two or more listings in the run
//   - best_price: price is materially below the run average for its
//     condition tier
//   - high_value: a wanted, unowned item that is rare or expensive in the run
//   - condition_value: a near-mint copy at a mid-condition price
//
// Seller-scoped rules (location_preference, high_feedback) are evaluated
// independently for every seller, so a seller may appear in more than one
// recommendation. Each recommendation carries exactly one type and a
// deterministic id, and duplicates collapse onto that id.
//
// # Scoring
//
// Every recommendation scores the weighted sum of its seller's sub-scores
// (price 0.30, reputation 0.25, inventory 0.25, location 0.20), clamped to
// 100 and mapped to a deal-quality label. Results are sorted by score, then
// type priority, then seller key. The full list is returned; truncation is
// the caller's concern.
//
// # Degradation
//
// A recommendation that would reference a seller or canonical item absent
// from the run is dropped and counted in Result.Dropped instead of failing
// the run.
package recommend
