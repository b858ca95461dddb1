// Cratedigger - Vinyl Marketplace Deal Analysis
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cratedigger

package analyzer

import (
	"fmt"
	"sort"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/tomtom215/cratedigger/internal/models"
)

// SellerGroup is one seller with its listings in the run.
type SellerGroup struct {
	Seller   models.Seller
	Listings []models.Listing
}

// GroupBySeller groups listings by platform-scoped seller identity. Sellers
// referenced by listings but absent from sellers are created from the first
// listing that names them. Groups are sorted by seller key and listings keep
// their input order.
func GroupBySeller(listings []models.Listing, sellers []models.Seller) []SellerGroup {
	known := make(map[string]models.Seller, len(sellers))
	for i := range sellers {
		known[sellers[i].Key()] = sellers[i]
	}

	groups := make(map[string]*SellerGroup)
	for i := range listings {
		l := listings[i]
		key := l.SellerKey()
		g, ok := groups[key]
		if !ok {
			seller, found := known[key]
			if !found {
				seller = models.Seller{Platform: l.Platform, ID: l.SellerID, Location: l.Location}
			}
			g = &SellerGroup{Seller: seller}
			groups[key] = g
		}
		g.Listings = append(g.Listings, l)
	}

	out := make([]SellerGroup, 0, len(groups))
	for _, g := range groups {
		out = append(out, *g)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Seller.Key() < out[j].Seller.Key() })
	return out
}

// Analyzer computes seller analyses. It holds only immutable configuration
// and is safe for concurrent use across runs.
type Analyzer struct {
	config *Config
	tables *Tables
	logger zerolog.Logger
}

// New creates an analyzer. A nil config uses DefaultConfig.
//
//nolint:gocritic // logger passed by value is acceptable for zerolog
func New(cfg *Config, logger zerolog.Logger) (*Analyzer, error) {
	if cfg == nil {
		cfg = DefaultConfig()
	}
	tables, err := NewTables(cfg)
	if err != nil {
		return nil, fmt.Errorf("invalid analyzer config: %w", err)
	}
	return &Analyzer{
		config: cfg,
		tables: tables,
		logger: logger.With().Str("component", "analyzer").Logger(),
	}, nil
}

// Tables returns the analyzer's lookup tables.
func (a *Analyzer) Tables() *Tables {
	return a.tables
}

// Weights returns the overall score weights.
func (a *Analyzer) Weights() models.ScoreWeights {
	return a.config.Weights
}

// Analyze scores every group with at least one listing and returns the
// analyses ranked by overall score descending, seller key ascending.
func (a *Analyzer) Analyze(groups []SellerGroup, stats *RunStats, prefs models.Preferences) []models.SellerAnalysis {
	if stats == nil {
		stats = &RunStats{}
	}
	pref := ParsePreference(prefs.Location)
	dest := pref.Location()

	out := make([]models.SellerAnalysis, 0, len(groups))
	for i := range groups {
		g := &groups[i]
		if len(g.Listings) == 0 {
			continue
		}
		out = append(out, a.analyzeSeller(g, stats, pref, dest))
	}

	Rank(out)

	a.logger.Debug().
		Int("sellers", len(out)).
		Bool("worldwide", pref.Worldwide).
		Msg("sellers analyzed")
	return out
}

func (a *Analyzer) analyzeSeller(g *SellerGroup, stats *RunStats, pref Preference, dest Location) models.SellerAnalysis {
	seller := &g.Seller

	rawLocation := seller.Location
	if rawLocation == "" {
		rawLocation = g.Listings[0].Location
	}
	origin := ParseLocationNear(rawLocation, pref.Region)

	total := decimal.Zero
	ids := make([]string, 0, len(g.Listings))
	var priced, wanted, owned int
	for i := range g.Listings {
		l := &g.Listings[i]
		ids = append(ids, l.Key())
		if l.InWantlist {
			wanted++
		}
		if l.InCollection {
			owned++
		}
		if l.HasPrice() {
			total = total.Add(l.Price)
			priced++
		}
	}

	cheapness := 0.5
	if priced > 0 {
		mean := total.Div(decimal.NewFromInt(int64(priced)))
		cheapness = stats.Cheapness(mean)
	}

	analysis := models.SellerAnalysis{
		SellerKey:       seller.Key(),
		Platform:        seller.Platform,
		SellerID:        seller.ID,
		SellerName:      seller.DisplayName(),
		Country:         origin.Country,
		Region:          string(origin.Region),
		ReputationScore: ReputationScore(a.config.Reputation, seller),
		LocationScore:   a.tables.LocationScore(pref, origin),
		PriceScore:      PriceScore(cheapness),
		InventoryScore:  InventoryScore(a.config.Inventory, len(g.Listings), wanted, owned),
		ListingCount:    len(g.Listings),
		WantlistCount:   wanted,
		CollectionCount: owned,
		TotalValue:      models.RoundMoney(total),
		ListingIDs:      ids,
	}
	analysis.OverallScore = a.config.Weights.Overall(&analysis)

	if base, ok := a.tables.BaseShipping(origin, dest); ok {
		analysis.SingleItemShipping = models.MoneyPtr(base)
		analysis.ShippingCost = models.MoneyPtr(a.tables.BundleShipping(base, len(g.Listings)))
	}
	return analysis
}

// Rank orders analyses by overall score descending with seller key as the
// tie-break and assigns 1-based ranks.
func Rank(analyses []models.SellerAnalysis) {
	sort.SliceStable(analyses, func(i, j int) bool {
		if analyses[i].OverallScore != analyses[j].OverallScore {
			return analyses[i].OverallScore > analyses[j].OverallScore
		}
		return analyses[i].SellerKey < analyses[j].SellerKey
	})
	for i := range analyses {
		analyses[i].Rank = i + 1
	}
}
