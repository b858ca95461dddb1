// Cratedigger - Vinyl Marketplace Deal Analysis
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cratedigger

package models

import "github.com/shopspring/decimal"

// SellerAnalysis holds one seller's computed scores for one run.
type SellerAnalysis struct {
	SellerKey  string   `json:"seller_key"`
	Platform   Platform `json:"platform"`
	SellerID   string   `json:"seller_id"`
	SellerName string   `json:"seller_name"`
	Country    string   `json:"country,omitempty"`
	Region     string   `json:"region"`

	ReputationScore float64 `json:"reputation_score"`
	LocationScore   float64 `json:"location_score"`
	PriceScore      float64 `json:"price_score"`
	InventoryScore  float64 `json:"inventory_score"`
	OverallScore    float64 `json:"overall_score"`

	ListingCount    int             `json:"listing_count"`
	WantlistCount   int             `json:"wantlist_count"`
	CollectionCount int             `json:"collection_count"`
	TotalValue      decimal.Decimal `json:"total_value"`

	// ShippingCost covers every listing from the seller in one order.
	// SingleItemShipping is the cost of shipping one item on its own.
	// Both are nil when origin or destination could not be resolved.
	ShippingCost       *decimal.Decimal `json:"shipping_cost"`
	SingleItemShipping *decimal.Decimal `json:"single_item_shipping"`

	Rank       int      `json:"rank"`
	ListingIDs []string `json:"listing_ids"`
}
