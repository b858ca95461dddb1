// Cratedigger - Vinyl Marketplace Deal Analysis
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cratedigger

package analyzer

import (
	"math"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/tomtom215/cratedigger/internal/models"
)

// Tables are the immutable lookup structures derived from Config. They are
// built once and shared read-only by every run.
type Tables struct {
	sameRegion         float64
	defaultCrossRegion float64
	crossRegion        map[regionPair]float64

	domestic      map[Region]decimal.Decimal
	intraRegion   map[Region]decimal.Decimal
	crossShipping map[regionPair]decimal.Decimal
	extraItemRate decimal.Decimal
}

// NewTables validates cfg and builds lookup tables from it.
func NewTables(cfg *Config) (*Tables, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	t := &Tables{
		sameRegion:         cfg.Location.SameRegion,
		defaultCrossRegion: cfg.Location.DefaultCrossRegion,
		crossRegion:        make(map[regionPair]float64, len(cfg.Location.CrossRegion)),
		domestic:           make(map[Region]decimal.Decimal, len(cfg.Shipping.Domestic)),
		intraRegion:        make(map[Region]decimal.Decimal, len(cfg.Shipping.IntraRegion)),
		crossShipping:      make(map[regionPair]decimal.Decimal, len(cfg.Shipping.CrossRegion)),
		extraItemRate:      decimal.NewFromFloat(cfg.Shipping.ExtraItemRate),
	}

	for key, v := range cfg.Location.CrossRegion {
		pair, err := parsePair(key)
		if err != nil {
			return nil, err
		}
		t.crossRegion[pair] = v
	}
	for key, v := range cfg.Shipping.Domestic {
		r, _ := ParseRegion(key)
		t.domestic[r] = models.RoundMoney(decimal.NewFromFloat(v))
	}
	for key, v := range cfg.Shipping.IntraRegion {
		r, _ := ParseRegion(key)
		t.intraRegion[r] = models.RoundMoney(decimal.NewFromFloat(v))
	}
	for key, v := range cfg.Shipping.CrossRegion {
		pair, err := parsePair(key)
		if err != nil {
			return nil, err
		}
		t.crossShipping[pair] = models.RoundMoney(decimal.NewFromFloat(v))
	}
	return t, nil
}

// Preference is a parsed user location preference.
type Preference struct {
	Worldwide bool
	Country   string
	Region    Region
}

// Location returns the preference as a shipping destination.
func (p Preference) Location() Location {
	if p.Worldwide {
		return Location{Region: RegionOther}
	}
	return Location{Country: p.Country, Region: p.Region}
}

// ParsePreference resolves a stated preference. Empty, "worldwide" and
// text that names no known place all mean worldwide.
func ParsePreference(raw string) Preference {
	prefs := models.Preferences{Location: raw}
	if prefs.Worldwide() {
		return Preference{Worldwide: true}
	}
	if r, ok := ParseRegion(raw); ok {
		return Preference{Region: r}
	}
	loc := ParseLocation(strings.TrimSpace(raw))
	if !loc.Resolved() {
		return Preference{Worldwide: true}
	}
	return Preference{Country: loc.Country, Region: loc.Region}
}

// LocationScore rates how well a seller location fits the preference.
func (t *Tables) LocationScore(pref Preference, seller Location) float64 {
	if pref.Worldwide {
		return 100
	}
	if pref.Country != "" && seller.Country == pref.Country {
		return 100
	}
	if seller.Region.Resolved() && seller.Region == pref.Region {
		if pref.Country == "" {
			return 100
		}
		return t.sameRegion
	}
	if seller.Region.Resolved() && pref.Region.Resolved() {
		if v, ok := t.crossRegion[makePair(pref.Region, seller.Region)]; ok {
			return v
		}
	}
	return t.defaultCrossRegion
}

// BaseShipping returns the single-item cost from origin to destination.
// The second result is false when either end is unresolved or the matrix
// has no entry.
func (t *Tables) BaseShipping(origin, dest Location) (decimal.Decimal, bool) {
	if !origin.Resolved() || !dest.Resolved() {
		return decimal.Zero, false
	}

	var (
		cost decimal.Decimal
		ok   bool
	)
	switch {
	case origin.Country != "" && origin.Country == dest.Country:
		cost, ok = t.domestic[origin.Region]
	case origin.Region == dest.Region:
		cost, ok = t.intraRegion[origin.Region]
	default:
		cost, ok = t.crossShipping[makePair(origin.Region, dest.Region)]
	}
	return cost, ok
}

// BundleShipping prices an order of items: the base cost for the first
// item plus ExtraItemRate of the base for each additional one.
func (t *Tables) BundleShipping(base decimal.Decimal, items int) decimal.Decimal {
	if items <= 0 {
		return decimal.Zero
	}
	extra := base.Mul(t.extraItemRate).Mul(decimal.NewFromInt(int64(items - 1)))
	return models.RoundMoney(base.Add(extra))
}

// ReputationScore combines feedback score, feedback count and positive
// percentage. Missing inputs score the midpoint of their component.
func ReputationScore(cfg ReputationConfig, s *models.Seller) float64 {
	feedback := cfg.FeedbackScoreMax / 2
	if s.FeedbackScore != nil {
		feedback = clamp(*s.FeedbackScore, 0, 100) / 100 * cfg.FeedbackScoreMax
	}

	count := cfg.CountMax / 2
	if s.FeedbackCount != nil {
		n := *s.FeedbackCount
		if n < 0 {
			n = 0
		}
		ratio := math.Log1p(float64(n)) / math.Log1p(float64(cfg.CountSaturation))
		count = math.Min(1, ratio) * cfg.CountMax
	}

	positive := cfg.PositiveMax / 2
	if s.PositivePercent != nil {
		positive = clamp(*s.PositivePercent, 0, 100) / 100 * cfg.PositiveMax
	}

	return models.ClampScore(feedback + count + positive)
}

// InventoryScore rewards relevant stock and want-list coverage and
// penalizes items the user already owns.
func InventoryScore(cfg InventoryConfig, listings, wanted, owned int) float64 {
	base := math.Min(cfg.MaxBase, cfg.PerListing*float64(listings))
	bonus := math.Min(cfg.MaxBonus, cfg.WantlistBonus*float64(wanted))
	penalty := cfg.CollectionPenalty * float64(owned)
	return models.ClampScore(base + bonus - penalty)
}

func clamp(v, lo, hi float64) float64 {
	return math.Max(lo, math.Min(hi, v))
}
