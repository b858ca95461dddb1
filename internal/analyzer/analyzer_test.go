// Cratedigger - Vinyl Marketplace Deal Analysis
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cratedigger

package analyzer

import (
	"math"
	"testing"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/tomtom215/cratedigger/internal/models"
)

func floatPtr(v float64) *float64 { return &v }
func intPtr(v int) *int           { return &v }

func testListing(seller, id, price string) models.Listing {
	return models.Listing{
		Platform:   models.PlatformDiscogs,
		ExternalID: id,
		Title:      "Title " + id,
		Artist:     "Artist",
		Price:      decimal.RequireFromString(price),
		SellerID:   seller,
	}
}

func newTestAnalyzer(t *testing.T) *Analyzer {
	t.Helper()
	a, err := New(nil, zerolog.Nop())
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return a
}

func TestReputationScore(t *testing.T) {
	t.Parallel()

	cfg := DefaultConfig().Reputation
	tests := []struct {
		name   string
		seller models.Seller
		want   float64
	}{
		{"all missing uses midpoints", models.Seller{}, 50},
		{"zero feedback count", models.Seller{FeedbackScore: floatPtr(100), FeedbackCount: intPtr(0), PositivePercent: floatPtr(100)}, 70},
		{"saturated count", models.Seller{FeedbackScore: floatPtr(100), FeedbackCount: intPtr(1000), PositivePercent: floatPtr(100)}, 100},
		{"count beyond saturation is capped", models.Seller{FeedbackScore: floatPtr(100), FeedbackCount: intPtr(50000), PositivePercent: floatPtr(100)}, 100},
		{"out of range inputs clamp", models.Seller{FeedbackScore: floatPtr(250), FeedbackCount: intPtr(-4), PositivePercent: floatPtr(-10)}, 40},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got := ReputationScore(cfg, &tt.seller)
			if math.Abs(got-tt.want) > 1e-9 {
				t.Errorf("ReputationScore = %f, want %f", got, tt.want)
			}
			if got < 0 || got > 100 {
				t.Errorf("ReputationScore = %f outside [0, 100]", got)
			}
		})
	}
}

func TestInventoryScore(t *testing.T) {
	t.Parallel()

	cfg := DefaultConfig().Inventory
	tests := []struct {
		listings, wanted, owned int
		want                    float64
	}{
		{1, 0, 0, 10},
		{4, 3, 0, 85},
		{10, 10, 0, 100},
		{2, 0, 5, 0},
		{3, 1, 1, 35},
	}
	for _, tt := range tests {
		if got := InventoryScore(cfg, tt.listings, tt.wanted, tt.owned); got != tt.want {
			t.Errorf("InventoryScore(%d, %d, %d) = %f, want %f", tt.listings, tt.wanted, tt.owned, got, tt.want)
		}
	}
}

func TestPriceScore(t *testing.T) {
	t.Parallel()

	tests := []struct {
		cheapness float64
		want      float64
	}{
		{1, 100},
		{0.9, 90},
		{0.75, 80},
		{0.5, 60},
		{0.25, 50},
		{0, 10},
	}
	for _, tt := range tests {
		if got := PriceScore(tt.cheapness); math.Abs(got-tt.want) > 1e-9 {
			t.Errorf("PriceScore(%v) = %f, want %f", tt.cheapness, got, tt.want)
		}
	}

	if got := PriceScore(0.8); got < 80 || got >= 90 {
		t.Errorf("top quartile score = %f, want [80, 90)", got)
	}
	if got := PriceScore(0.1); got < 10 || got >= 50 {
		t.Errorf("below middle score = %f, want [10, 50)", got)
	}
}

func TestRunStats(t *testing.T) {
	t.Parallel()

	listings := []models.Listing{
		testListing("a", "1", "10"),
		testListing("a", "2", "20"),
		testListing("b", "3", "30"),
		testListing("c", "4", "40"),
		testListing("c", "5", "0"),
	}
	listings[0].RecordCondition = models.ConditionNearMint
	listings[1].RecordCondition = models.ConditionVeryGood
	listings[2].RecordCondition = models.ConditionVeryGoodPlus

	stats := NewRunStats(listings)
	if stats.Priced != 4 {
		t.Fatalf("Priced = %d, want 4", stats.Priced)
	}
	if !stats.Mean.Equal(decimal.NewFromInt(25)) {
		t.Errorf("Mean = %s, want 25", stats.Mean)
	}
	if !stats.P75.Equal(decimal.NewFromInt(30)) {
		t.Errorf("P75 = %s, want 30", stats.P75)
	}
	if mid, ok := stats.TierMean(models.TierMid); !ok || !mid.Equal(decimal.NewFromInt(25)) {
		t.Errorf("mid tier mean = %s (ok=%v), want 25", mid, ok)
	}

	if got := stats.Cheapness(decimal.NewFromInt(10)); got != 0.875 {
		t.Errorf("Cheapness(10) = %f, want 0.875", got)
	}
	if got := stats.Cheapness(decimal.NewFromInt(5)); got != 1 {
		t.Errorf("Cheapness(5) = %f, want 1", got)
	}
	if got := stats.Cheapness(decimal.NewFromInt(50)); got != 0 {
		t.Errorf("Cheapness(50) = %f, want 0", got)
	}
	if got := NewRunStats(nil).Cheapness(decimal.NewFromInt(1)); got != 0.5 {
		t.Errorf("empty run Cheapness = %f, want 0.5", got)
	}
}

func TestGroupBySeller(t *testing.T) {
	t.Parallel()

	listings := []models.Listing{
		testListing("zed", "1", "10"),
		testListing("amy", "2", "20"),
		testListing("zed", "3", "30"),
	}
	listings[1].Location = "Berlin, Germany"
	sellers := []models.Seller{{Platform: models.PlatformDiscogs, ID: "zed", Name: "Zed Records"}}

	groups := GroupBySeller(listings, sellers)
	if len(groups) != 2 {
		t.Fatalf("got %d groups, want 2", len(groups))
	}
	if groups[0].Seller.ID != "amy" || groups[1].Seller.ID != "zed" {
		t.Errorf("groups not sorted by key: %s, %s", groups[0].Seller.ID, groups[1].Seller.ID)
	}
	if groups[0].Seller.Location != "Berlin, Germany" {
		t.Errorf("synthesized seller location = %q", groups[0].Seller.Location)
	}
	if groups[1].Seller.Name != "Zed Records" || len(groups[1].Listings) != 2 {
		t.Errorf("known seller group = %+v", groups[1])
	}
	if groups[1].Listings[0].ExternalID != "1" || groups[1].Listings[1].ExternalID != "3" {
		t.Error("listing order within group not preserved")
	}
}

func TestAnalyze_RankingAndInvariants(t *testing.T) {
	t.Parallel()

	a := newTestAnalyzer(t)

	listings := []models.Listing{
		testListing("bulk", "1", "15"),
		testListing("bulk", "2", "18"),
		testListing("bulk", "3", "20"),
		testListing("single", "4", "60"),
		testListing("nofeedback", "5", "25"),
	}
	listings[0].InWantlist = true
	listings[1].InWantlist = true
	sellers := []models.Seller{
		{Platform: models.PlatformDiscogs, ID: "bulk", Location: "Chicago, IL", FeedbackScore: floatPtr(99), FeedbackCount: intPtr(800), PositivePercent: floatPtr(99.5)},
		{Platform: models.PlatformDiscogs, ID: "single", Location: "Berlin, Germany", FeedbackScore: floatPtr(80), FeedbackCount: intPtr(20), PositivePercent: floatPtr(95)},
		{Platform: models.PlatformDiscogs, ID: "nofeedback", Location: "Portland, OR", FeedbackCount: intPtr(0)},
	}

	groups := GroupBySeller(listings, sellers)
	stats := NewRunStats(listings)
	prefs := models.Preferences{Location: "US"}

	got := a.Analyze(groups, stats, prefs)
	if len(got) != 3 {
		t.Fatalf("got %d analyses, want 3", len(got))
	}
	if got[0].SellerID != "bulk" {
		t.Errorf("top seller = %s, want bulk", got[0].SellerID)
	}
	for i, an := range got {
		if an.Rank != i+1 {
			t.Errorf("analysis %d rank = %d", i, an.Rank)
		}
		if an.OverallScore < 0 || an.OverallScore > 100 {
			t.Errorf("%s overall score %f outside [0, 100]", an.SellerID, an.OverallScore)
		}
		if i > 0 && got[i-1].OverallScore < an.OverallScore {
			t.Errorf("ranking not descending at %d", i)
		}
	}

	bulk := got[0]
	if bulk.ShippingCost == nil || bulk.ShippingCost.StringFixed(2) != "7.00" {
		t.Errorf("bulk shipping = %v, want 7.00", bulk.ShippingCost)
	}
	if bulk.TotalValue.StringFixed(2) != "53.00" || bulk.WantlistCount != 2 {
		t.Errorf("bulk totals: value=%s wanted=%d", bulk.TotalValue, bulk.WantlistCount)
	}

	again := a.Analyze(GroupBySeller(listings, sellers), NewRunStats(listings), prefs)
	for i := range got {
		if got[i].SellerKey != again[i].SellerKey || got[i].OverallScore != again[i].OverallScore {
			t.Errorf("non-deterministic result at %d", i)
		}
	}
}

func TestAnalyze_TieBreakBySellerKey(t *testing.T) {
	t.Parallel()

	a := newTestAnalyzer(t)
	listings := []models.Listing{
		testListing("b-seller", "1", "20"),
		testListing("a-seller", "2", "20"),
	}
	got := a.Analyze(GroupBySeller(listings, nil), NewRunStats(listings), models.Preferences{})

	if got[0].OverallScore != got[1].OverallScore {
		t.Fatalf("scores differ: %f vs %f", got[0].OverallScore, got[1].OverallScore)
	}
	if got[0].SellerID != "a-seller" || got[0].Rank != 1 || got[1].Rank != 2 {
		t.Errorf("tie order = %s(%d), %s(%d)", got[0].SellerID, got[0].Rank, got[1].SellerID, got[1].Rank)
	}
	if got[0].ShippingCost != nil {
		t.Error("shipping estimated for worldwide preference, want unset")
	}
	if got[0].LocationScore != 100 {
		t.Errorf("worldwide location score = %f, want 100", got[0].LocationScore)
	}
}

func TestAnalyze_CountryCodeSharedWithState(t *testing.T) {
	t.Parallel()

	a := newTestAnalyzer(t)

	listings := []models.Listing{testListing("berlin", "1", "20")}
	sellers := []models.Seller{{Platform: models.PlatformDiscogs, ID: "berlin", Location: "Berlin, DE"}}

	tests := []struct {
		pref     string
		country  string
		location float64
		shipping string
	}{
		{pref: "DE", country: "DE", location: 100, shipping: "6.00"},
		{pref: "EU", country: "DE", location: 100, shipping: ""},
		{pref: "US", country: "US", location: 100, shipping: "5.00"},
	}
	for _, tt := range tests {
		got := a.Analyze(GroupBySeller(listings, sellers), NewRunStats(listings), models.Preferences{Location: tt.pref})
		if len(got) != 1 {
			t.Fatalf("pref %s: got %d analyses", tt.pref, len(got))
		}
		sa := got[0]
		if sa.Country != tt.country || sa.LocationScore != tt.location {
			t.Errorf("pref %s: country=%s location=%v, want %s %v", tt.pref, sa.Country, sa.LocationScore, tt.country, tt.location)
		}
		if tt.shipping != "" && (sa.ShippingCost == nil || sa.ShippingCost.StringFixed(2) != tt.shipping) {
			t.Errorf("pref %s: shipping = %v, want %s", tt.pref, sa.ShippingCost, tt.shipping)
		}
	}
}
