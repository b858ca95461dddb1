// Cratedigger - Vinyl Marketplace Deal Analysis
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cratedigger

package recommend

import (
	"github.com/tomtom215/cratedigger/internal/analyzer"
	"github.com/tomtom215/cratedigger/internal/models"
)

// Input is everything one Generate call reads. None of it is mutated.
type Input struct {
	RunID       string
	Analyses    []models.SellerAnalysis
	Items       []models.CanonicalItem
	Listings    []models.Listing
	Matches     []models.ListingMatch
	Stats       *analyzer.RunStats
	Preferences models.Preferences
}

// Result is the ranked output of Generate.
type Result struct {
	Recommendations []models.Recommendation
	// Dropped counts distinct recommendations discarded because they
	// referenced a seller or canonical item absent from the run.
	Dropped int
}

// Facts is the indexed, read-only view of an Input shared by rule
// predicates and builders.
type Facts struct {
	RunID      string
	Config     *Config
	Stats      *analyzer.RunStats
	Preference analyzer.Preference
	Currency   string

	sellers        map[string]*models.SellerAnalysis
	items          map[string]*models.CanonicalItem
	listings       map[string]*models.Listing
	matches        map[string]string
	sellerListings map[string][]*models.Listing
	itemListings   map[string][]*models.Listing
}

func newFacts(in *Input, cfg *Config) *Facts {
	f := &Facts{
		RunID:          in.RunID,
		Config:         cfg,
		Stats:          in.Stats,
		Preference:     analyzer.ParsePreference(in.Preferences.Location),
		Currency:       in.Preferences.Currency,
		sellers:        make(map[string]*models.SellerAnalysis, len(in.Analyses)),
		items:          make(map[string]*models.CanonicalItem, len(in.Items)),
		listings:       make(map[string]*models.Listing, len(in.Listings)),
		matches:        make(map[string]string, len(in.Matches)),
		sellerListings: make(map[string][]*models.Listing),
		itemListings:   make(map[string][]*models.Listing),
	}
	if f.Stats == nil {
		f.Stats = analyzer.NewRunStats(in.Listings)
	}

	for i := range in.Analyses {
		f.sellers[in.Analyses[i].SellerKey] = &in.Analyses[i]
	}
	for i := range in.Items {
		f.items[in.Items[i].Fingerprint] = &in.Items[i]
	}
	for i := range in.Matches {
		f.matches[in.Matches[i].ListingID] = in.Matches[i].Fingerprint
	}
	for i := range in.Listings {
		l := &in.Listings[i]
		f.listings[l.Key()] = l
		f.sellerListings[l.SellerKey()] = append(f.sellerListings[l.SellerKey()], l)
		if fp, ok := f.matches[l.Key()]; ok {
			f.itemListings[fp] = append(f.itemListings[fp], l)
		}
	}
	return f
}

// Seller returns the analysis for a seller key.
func (f *Facts) Seller(key string) (*models.SellerAnalysis, bool) {
	a, ok := f.sellers[key]
	return a, ok
}

// ItemFor returns the canonical item a listing matched to.
func (f *Facts) ItemFor(listingID string) (*models.CanonicalItem, bool) {
	fp, ok := f.matches[listingID]
	if !ok {
		return nil, false
	}
	it, ok := f.items[fp]
	return it, ok
}

// SellerListings returns a seller's listings in input order.
func (f *Facts) SellerListings(sellerKey string) []*models.Listing {
	return f.sellerListings[sellerKey]
}

// ItemListings returns every listing matched to a canonical item.
func (f *Facts) ItemListings(fingerprint string) []*models.Listing {
	return f.itemListings[fingerprint]
}

// Subject is what a rule is evaluated against. Listing is nil for
// seller-scoped rules.
type Subject struct {
	Seller  *models.SellerAnalysis
	Listing *models.Listing
}
