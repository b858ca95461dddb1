// Cratedigger - Vinyl Marketplace Deal Analysis
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cratedigger

package models

import (
	"strings"

	"github.com/shopspring/decimal"
)

// MoneyPlaces is the precision of every monetary value the engine emits.
const MoneyPlaces = 2

// RoundMoney rounds half away from zero to two places.
func RoundMoney(d decimal.Decimal) decimal.Decimal {
	return d.Round(MoneyPlaces)
}

// MoneyPtr returns a pointer to a rounded copy of d.
func MoneyPtr(d decimal.Decimal) *decimal.Decimal {
	r := RoundMoney(d)
	return &r
}

// Preferences is the per-run user configuration. The engine only reads it.
type Preferences struct {
	// Location is an ISO country code, a region code, or "worldwide".
	// Empty means worldwide.
	Location           string    `json:"location,omitempty" validate:"max=64"`
	MinRecordCondition Condition `json:"min_record_condition,omitempty"`
	MinSleeveCondition Condition `json:"min_sleeve_condition,omitempty"`
	Currency           string    `json:"currency,omitempty" validate:"omitempty,len=3"`
}

// Worldwide reports whether no location preference is in effect.
func (p *Preferences) Worldwide() bool {
	switch strings.ToLower(strings.TrimSpace(p.Location)) {
	case "", "worldwide", "any", "global", "all":
		return true
	}
	return false
}

// ScoreWeights combines the four seller sub-scores into an overall score.
type ScoreWeights struct {
	Price      float64 `json:"price" koanf:"price"`
	Reputation float64 `json:"reputation" koanf:"reputation"`
	Inventory  float64 `json:"inventory" koanf:"inventory"`
	Location   float64 `json:"location" koanf:"location"`
}

// DefaultScoreWeights returns the 30/25/25/20 split.
func DefaultScoreWeights() ScoreWeights {
	return ScoreWeights{Price: 0.30, Reputation: 0.25, Inventory: 0.25, Location: 0.20}
}

// Sum returns the total weight.
func (w ScoreWeights) Sum() float64 {
	return w.Price + w.Reputation + w.Inventory + w.Location
}

// Overall applies the weights to a and clamps the result to [0, 100].
func (w ScoreWeights) Overall(a *SellerAnalysis) float64 {
	score := w.Price*a.PriceScore +
		w.Reputation*a.ReputationScore +
		w.Inventory*a.InventoryScore +
		w.Location*a.LocationScore
	return ClampScore(score)
}

// ClampScore bounds a score to [0, 100].
func ClampScore(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 100 {
		return 100
	}
	return v
}
