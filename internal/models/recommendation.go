// Cratedigger - Vinyl Marketplace Deal Analysis
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cratedigger

package models

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

// RecommendationType is the opportunity class of a recommendation.
type RecommendationType string

const (
	RecMultiItem          RecommendationType = "multi_item"
	RecBestPrice          RecommendationType = "best_price"
	RecHighValue          RecommendationType = "high_value"
	RecConditionValue     RecommendationType = "condition_value"
	RecLocationPreference RecommendationType = "location_preference"
	RecHighFeedback       RecommendationType = "high_feedback"
)

// RecommendationTypes lists every type in priority order.
var RecommendationTypes = []RecommendationType{
	RecMultiItem,
	RecBestPrice,
	RecHighValue,
	RecConditionValue,
	RecLocationPreference,
	RecHighFeedback,
}

// ParseRecommendationType validates a wire value.
func ParseRecommendationType(s string) (RecommendationType, error) {
	for _, t := range RecommendationTypes {
		if string(t) == s {
			return t, nil
		}
	}
	return "", fmt.Errorf("unknown recommendation type %q", s)
}

// Priority orders types for tie-breaks. Lower wins.
func (t RecommendationType) Priority() int {
	for i, rt := range RecommendationTypes {
		if rt == t {
			return i
		}
	}
	return len(RecommendationTypes)
}

// DealQuality is the discrete label derived from a recommendation score.
type DealQuality string

const (
	DealExcellent DealQuality = "excellent"
	DealVeryGood  DealQuality = "very_good"
	DealGood      DealQuality = "good"
	DealFair      DealQuality = "fair"
	DealPoor      DealQuality = "poor"
)

// Label returns the display form of the quality, "very good" for
// DealVeryGood and the wire value otherwise.
func (q DealQuality) Label() string {
	return strings.ReplaceAll(string(q), "_", " ")
}

// Recommendation is one ranked purchase suggestion.
type Recommendation struct {
	ID          string             `json:"id"`
	Type        RecommendationType `json:"type"`
	DealScore   DealQuality        `json:"deal_score"`
	ScoreValue  float64            `json:"score_value"`
	Title       string             `json:"title"`
	Description string             `json:"description"`
	Reason      string             `json:"reason"`
	ListingIDs  []string           `json:"listing_ids"`
	SellerKey   string             `json:"seller_key,omitempty"`
	SellerName  string             `json:"seller_name,omitempty"`

	TotalValue       *decimal.Decimal `json:"total_value"`
	ShippingCost     *decimal.Decimal `json:"shipping_cost"`
	TotalCost        *decimal.Decimal `json:"total_cost"`
	PotentialSavings *decimal.Decimal `json:"potential_savings"`
}
