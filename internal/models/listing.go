// Cratedigger - Vinyl Marketplace Deal Analysis
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cratedigger

package models

import "github.com/shopspring/decimal"

// Listing is one marketplace offer as delivered by the ingestion layer.
type Listing struct {
	Platform        Platform        `json:"platform" validate:"required,oneof=discogs ebay"`
	ExternalID      string          `json:"external_id" validate:"required,max=128"`
	Title           string          `json:"title" validate:"max=512"`
	Artist          string          `json:"artist" validate:"max=512"`
	Year            int             `json:"year,omitempty" validate:"omitempty,min=1880,max=2100"`
	Price           decimal.Decimal `json:"price" validate:"gte=0"`
	Currency        string          `json:"currency,omitempty" validate:"omitempty,len=3"`
	RecordCondition Condition       `json:"record_condition,omitempty"`
	SleeveCondition Condition       `json:"sleeve_condition,omitempty"`
	SellerID        string          `json:"seller_id" validate:"required,max=128"`
	Location        string          `json:"location,omitempty" validate:"max=256"`
	InCollection    bool            `json:"in_collection"`
	InWantlist      bool            `json:"in_wantlist"`
}

// Key returns the run-unique listing identifier "<platform>:<external id>".
func (l *Listing) Key() string {
	return string(l.Platform) + ":" + l.ExternalID
}

// SellerKey returns the platform-scoped identity of the listing's seller.
func (l *Listing) SellerKey() string {
	return SellerKey(l.Platform, l.SellerID)
}

// HasPrice reports whether the listing carries a usable positive price.
func (l *Listing) HasPrice() bool {
	return l.Price.IsPositive()
}
