// Cratedigger - Vinyl Marketplace Deal Analysis
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cratedigger

/*
Package models defines the data structures shared by the analysis engine.

Every entity here is scoped to one analysis run (one executed marketplace
search):

  - Listing: one marketplace offer, immutable once ingested
  - Seller: a platform-scoped marketplace seller
  - CanonicalItem: the deduplicated identity of a release across marketplaces
  - SellerAnalysis: derived per-seller scores, recomputed every run
  - Recommendation: one ranked, explainable purchase suggestion

Monetary values use shopspring/decimal and are rounded to two places at the
boundaries where they are produced (see RoundMoney).
*/
package models
