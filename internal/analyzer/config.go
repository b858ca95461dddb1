// Cratedigger - Vinyl Marketplace Deal Analysis
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cratedigger

package analyzer

import (
	"errors"
	"fmt"
	"strings"

	"github.com/tomtom215/cratedigger/internal/models"
)

// ReputationConfig caps each reputation component. The caps sum to 100.
type ReputationConfig struct {
	FeedbackScoreMax float64 `koanf:"feedback_score_max"`
	CountMax         float64 `koanf:"count_max"`
	PositiveMax      float64 `koanf:"positive_max"`
	// CountSaturation is the feedback count at which the count component
	// reaches its cap.
	CountSaturation int `koanf:"count_saturation"`
}

// InventoryConfig tunes the inventory depth score.
type InventoryConfig struct {
	PerListing        float64 `koanf:"per_listing"`
	MaxBase           float64 `koanf:"max_base"`
	WantlistBonus     float64 `koanf:"wantlist_bonus"`
	MaxBonus          float64 `koanf:"max_bonus"`
	CollectionPenalty float64 `koanf:"collection_penalty"`
}

// LocationConfig tunes the location preference score. CrossRegion keys are
// region pairs such as "NA-EU"; order does not matter.
type LocationConfig struct {
	SameRegion         float64            `koanf:"same_region"`
	DefaultCrossRegion float64            `koanf:"default_cross_region"`
	CrossRegion        map[string]float64 `koanf:"cross_region"`
}

// ShippingConfig holds the base cost matrix in run currency. Domestic and
// IntraRegion are keyed by region code, CrossRegion by region pair.
type ShippingConfig struct {
	Domestic      map[string]float64 `koanf:"domestic"`
	IntraRegion   map[string]float64 `koanf:"intra_region"`
	CrossRegion   map[string]float64 `koanf:"cross_region"`
	ExtraItemRate float64            `koanf:"extra_item_rate"`
}

// Config holds seller analyzer tuning.
type Config struct {
	Weights    models.ScoreWeights `koanf:"weights"`
	Reputation ReputationConfig    `koanf:"reputation"`
	Inventory  InventoryConfig     `koanf:"inventory"`
	Location   LocationConfig      `koanf:"location"`
	Shipping   ShippingConfig      `koanf:"shipping"`
}

// DefaultConfig returns the production analyzer configuration.
func DefaultConfig() *Config {
	return &Config{
		Weights: models.DefaultScoreWeights(),
		Reputation: ReputationConfig{
			FeedbackScoreMax: 40,
			CountMax:         30,
			PositiveMax:      30,
			CountSaturation:  1000,
		},
		Inventory: InventoryConfig{
			PerListing:        10,
			MaxBase:           50,
			WantlistBonus:     15,
			MaxBonus:          50,
			CollectionPenalty: 10,
		},
		Location: LocationConfig{
			SameRegion:         70,
			DefaultCrossRegion: 10,
			CrossRegion: map[string]float64{
				"NA-EU": 30, "NA-AS": 25, "NA-OC": 20, "NA-SA": 40, "NA-AF": 10,
				"EU-AS": 25, "EU-OC": 15, "EU-SA": 20, "EU-AF": 35,
				"AS-OC": 45, "AS-SA": 10, "AS-AF": 15,
				"OC-SA": 10, "OC-AF": 10,
				"SA-AF": 10,
			},
		},
		Shipping: ShippingConfig{
			Domestic: map[string]float64{
				"NA": 5, "EU": 6, "AS": 6, "OC": 8, "SA": 7, "AF": 8,
			},
			IntraRegion: map[string]float64{
				"NA": 12, "EU": 10, "AS": 14, "OC": 12, "SA": 14, "AF": 15,
			},
			CrossRegion: map[string]float64{
				"NA-EU": 20, "NA-AS": 24, "NA-OC": 26, "NA-SA": 22, "NA-AF": 30,
				"EU-AS": 24, "EU-OC": 28, "EU-SA": 26, "EU-AF": 22,
				"AS-OC": 18, "AS-SA": 30, "AS-AF": 28,
				"OC-SA": 32, "OC-AF": 32,
				"SA-AF": 30,
			},
			ExtraItemRate: 0.20,
		},
	}
}

// Validate checks ranges and table completeness.
func (c *Config) Validate() error {
	if err := c.validateWeights(); err != nil {
		return err
	}
	if err := c.validateReputation(); err != nil {
		return err
	}
	if err := c.validateInventory(); err != nil {
		return err
	}
	if err := c.validateLocation(); err != nil {
		return err
	}
	return c.validateShipping()
}

func (c *Config) validateWeights() error {
	w := c.Weights
	if w.Price < 0 || w.Reputation < 0 || w.Inventory < 0 || w.Location < 0 {
		return errors.New("score weights must be non-negative")
	}
	if w.Sum() <= 0 || w.Sum() > 1.0001 {
		return fmt.Errorf("score weights must sum to (0, 1], got %.4f", w.Sum())
	}
	return nil
}

func (c *Config) validateReputation() error {
	r := c.Reputation
	if r.FeedbackScoreMax < 0 || r.CountMax < 0 || r.PositiveMax < 0 {
		return errors.New("reputation caps must be non-negative")
	}
	if total := r.FeedbackScoreMax + r.CountMax + r.PositiveMax; total > 100.0001 {
		return fmt.Errorf("reputation caps must sum to at most 100, got %.2f", total)
	}
	if r.CountSaturation <= 0 {
		return fmt.Errorf("reputation.count_saturation must be positive, got %d", r.CountSaturation)
	}
	return nil
}

func (c *Config) validateInventory() error {
	i := c.Inventory
	if i.PerListing < 0 || i.MaxBase < 0 || i.WantlistBonus < 0 || i.MaxBonus < 0 || i.CollectionPenalty < 0 {
		return errors.New("inventory settings must be non-negative")
	}
	return nil
}

func (c *Config) validateLocation() error {
	l := c.Location
	if l.SameRegion < 0 || l.SameRegion > 100 {
		return fmt.Errorf("location.same_region must be within [0, 100], got %.1f", l.SameRegion)
	}
	if l.DefaultCrossRegion < 10 || l.DefaultCrossRegion > 50 {
		return fmt.Errorf("location.default_cross_region must be within [10, 50], got %.1f", l.DefaultCrossRegion)
	}
	for key, v := range l.CrossRegion {
		if _, err := parsePair(key); err != nil {
			return fmt.Errorf("location.cross_region: %w", err)
		}
		if v < 10 || v > 50 {
			return fmt.Errorf("location.cross_region[%s] must be within [10, 50], got %.1f", key, v)
		}
	}
	return nil
}

func (c *Config) validateShipping() error {
	s := c.Shipping
	if s.ExtraItemRate < 0 {
		return fmt.Errorf("shipping.extra_item_rate must be non-negative, got %f", s.ExtraItemRate)
	}
	for _, table := range []map[string]float64{s.Domestic, s.IntraRegion, s.CrossRegion} {
		for key, v := range table {
			if v < 0 {
				return fmt.Errorf("shipping cost for %s must be non-negative, got %f", key, v)
			}
		}
	}
	for key := range s.CrossRegion {
		if _, err := parsePair(key); err != nil {
			return fmt.Errorf("shipping.cross_region: %w", err)
		}
	}
	for _, table := range []map[string]float64{s.Domestic, s.IntraRegion} {
		for key := range table {
			if _, ok := ParseRegion(key); !ok {
				return fmt.Errorf("shipping: unknown region %q", key)
			}
		}
	}
	return nil
}

// regionPair is an unordered pair of regions stored in sorted order.
type regionPair struct {
	a, b Region
}

func makePair(x, y Region) regionPair {
	if x > y {
		x, y = y, x
	}
	return regionPair{a: x, b: y}
}

func parsePair(key string) (regionPair, error) {
	parts := strings.Split(key, "-")
	if len(parts) != 2 {
		return regionPair{}, fmt.Errorf("invalid region pair %q", key)
	}
	x, ok1 := ParseRegion(parts[0])
	y, ok2 := ParseRegion(parts[1])
	if !ok1 || !ok2 || x == y {
		return regionPair{}, fmt.Errorf("invalid region pair %q", key)
	}
	return makePair(x, y), nil
}
