// Cratedigger - Vinyl Marketplace Deal Analysis
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cratedigger

package recommend

import (
	"errors"
	"fmt"

	"github.com/tomtom215/cratedigger/internal/models"
)

// QualityThresholds are the inclusive lower bounds of each deal label.
type QualityThresholds struct {
	Excellent float64 `koanf:"excellent"`
	VeryGood  float64 `koanf:"very_good"`
	Good      float64 `koanf:"good"`
	Fair      float64 `koanf:"fair"`
}

// Label maps a score to its deal-quality label.
func (t QualityThresholds) Label(score float64) models.DealQuality {
	switch {
	case score >= t.Excellent:
		return models.DealExcellent
	case score >= t.VeryGood:
		return models.DealVeryGood
	case score >= t.Good:
		return models.DealGood
	case score >= t.Fair:
		return models.DealFair
	default:
		return models.DealPoor
	}
}

// Config holds recommendation tuning.
type Config struct {
	Weights models.ScoreWeights `koanf:"weights"`
	Quality QualityThresholds   `koanf:"quality"`

	// BestPriceMargin is how far below its tier average a listing must be
	// priced to count as a best price, as a fraction (0.15 = 15%).
	BestPriceMargin float64 `koanf:"best_price_margin"`

	// HighValueQuantile selects the run price quantile a wanted listing
	// must reach to count as high value when it is not rare.
	HighValueQuantile float64 `koanf:"high_value_quantile"`

	// HighFeedbackMin is the minimum reputation sub-score for high_feedback.
	HighFeedbackMin float64 `koanf:"high_feedback_min"`
}

// DefaultConfig returns the production recommendation configuration.
func DefaultConfig() *Config {
	return &Config{
		Weights: models.DefaultScoreWeights(),
		Quality: QualityThresholds{
			Excellent: 90,
			VeryGood:  80,
			Good:      70,
			Fair:      60,
		},
		BestPriceMargin:   0.15,
		HighValueQuantile: 0.75,
		HighFeedbackMin:   90,
	}
}

// Validate checks weights, label ordering and rule parameters.
func (c *Config) Validate() error {
	w := c.Weights
	if w.Price < 0 || w.Reputation < 0 || w.Inventory < 0 || w.Location < 0 {
		return errors.New("recommend weights must be non-negative")
	}
	if w.Sum() <= 0 || w.Sum() > 1.0001 {
		return fmt.Errorf("recommend weights must sum to (0, 1], got %.4f", w.Sum())
	}

	q := c.Quality
	if !(q.Fair < q.Good && q.Good < q.VeryGood && q.VeryGood < q.Excellent) {
		return fmt.Errorf("quality thresholds must be strictly increasing: fair=%.1f good=%.1f very_good=%.1f excellent=%.1f",
			q.Fair, q.Good, q.VeryGood, q.Excellent)
	}
	if q.Fair < 0 || q.Excellent > 100 {
		return fmt.Errorf("quality thresholds must lie within [0, 100]")
	}

	if c.BestPriceMargin < 0 || c.BestPriceMargin >= 1 {
		return fmt.Errorf("best_price_margin must be in [0, 1), got %f", c.BestPriceMargin)
	}
	if c.HighValueQuantile <= 0 || c.HighValueQuantile > 1 {
		return fmt.Errorf("high_value_quantile must be in (0, 1], got %f", c.HighValueQuantile)
	}
	if c.HighFeedbackMin < 0 || c.HighFeedbackMin > 100 {
		return fmt.Errorf("high_feedback_min must be in [0, 100], got %f", c.HighFeedbackMin)
	}
	return nil
}

// Clone returns a copy of the configuration.
func (c *Config) Clone() *Config {
	clone := *c
	return &clone
}
