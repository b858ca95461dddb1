// Cratedigger - Vinyl Marketplace Deal Analysis
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cratedigger

// Package analyzer scores marketplace sellers for one analysis run.
//
// For each seller with at least one listing it computes four independent
// 0-100 sub-scores (reputation, location preference, price competitiveness,
// inventory depth), a weighted overall score and a bundle shipping estimate,
// then ranks sellers by overall score with seller key as the tie-break.
//
// Region parsing, the cross-region preference table and the shipping matrix
// are immutable Tables built once from configuration and shared by every run.
package analyzer
