// Cratedigger - Vinyl Marketplace Deal Analysis
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cratedigger

package analyzer

import (
	"math"
	"sort"

	"github.com/shopspring/decimal"

	"github.com/tomtom215/cratedigger/internal/models"
)

// RunStats summarizes the price distribution of one run. Listings without a
// positive price are left out.
type RunStats struct {
	prices    []decimal.Decimal
	Mean      decimal.Decimal
	P75       decimal.Decimal
	TierMeans map[models.ConditionTier]decimal.Decimal
	Priced    int
}

// NewRunStats computes run-wide price statistics.
func NewRunStats(listings []models.Listing) *RunStats {
	s := &RunStats{TierMeans: make(map[models.ConditionTier]decimal.Decimal)}

	tierSums := make(map[models.ConditionTier]decimal.Decimal)
	tierCounts := make(map[models.ConditionTier]int64)
	sum := decimal.Zero

	for i := range listings {
		l := &listings[i]
		if !l.HasPrice() {
			continue
		}
		s.prices = append(s.prices, l.Price)
		sum = sum.Add(l.Price)
		tier := l.RecordCondition.Tier()
		tierSums[tier] = tierSums[tier].Add(l.Price)
		tierCounts[tier]++
	}

	s.Priced = len(s.prices)
	if s.Priced == 0 {
		return s
	}

	sort.Slice(s.prices, func(i, j int) bool { return s.prices[i].LessThan(s.prices[j]) })
	s.Mean = sum.Div(decimal.NewFromInt(int64(s.Priced)))
	s.P75, _ = s.Quantile(0.75)
	for tier, total := range tierSums {
		s.TierMeans[tier] = total.Div(decimal.NewFromInt(tierCounts[tier]))
	}
	return s
}

// Quantile uses the nearest-rank method on the sorted prices. It reports
// false for a run without priced listings.
func (s *RunStats) Quantile(q float64) (decimal.Decimal, bool) {
	if s.Priced == 0 {
		return decimal.Zero, false
	}
	rank := int(math.Ceil(q*float64(s.Priced))) - 1
	if rank < 0 {
		rank = 0
	}
	if rank >= s.Priced {
		rank = s.Priced - 1
	}
	return s.prices[rank], true
}

// TierMean returns the mean price of a condition tier.
func (s *RunStats) TierMean(tier models.ConditionTier) (decimal.Decimal, bool) {
	m, ok := s.TierMeans[tier]
	return m, ok
}

// Cheapness returns the fraction of run prices above price, counting equal
// prices as half. 1 means cheaper than everything; an empty run yields 0.5.
func (s *RunStats) Cheapness(price decimal.Decimal) float64 {
	if s.Priced == 0 {
		return 0.5
	}
	below := sort.Search(s.Priced, func(i int) bool { return !s.prices[i].LessThan(price) })
	notAbove := sort.Search(s.Priced, func(i int) bool { return s.prices[i].GreaterThan(price) })
	equal := notAbove - below
	above := s.Priced - notAbove
	return (float64(above) + 0.5*float64(equal)) / float64(s.Priced)
}

// PriceScore maps a cheapness percentile onto the competitiveness bands:
// top decile 90-100, top quartile 80-89, middle 50-70, below 10-49.
func PriceScore(cheapness float64) float64 {
	c := clamp(cheapness, 0, 1)
	switch {
	case c >= 0.90:
		return 90 + (c-0.90)/0.10*10
	case c >= 0.75:
		return 80 + (c-0.75)/0.15*9
	case c >= 0.25:
		return 50 + (c-0.25)/0.50*20
	default:
		return 10 + c/0.25*39
	}
}
