// Cratedigger - Vinyl Marketplace Deal Analysis
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cratedigger

package engine

import (
	"bytes"
	"context"
	"errors"
	"testing"

	"github.com/goccy/go-json"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/tomtom215/cratedigger/internal/models"
)

func newTestEngine(t *testing.T) *Engine {
	t.Helper()
	e, err := New(nil, zerolog.Nop())
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return e
}

func listing(p models.Platform, id, title, artist, price, seller string) models.Listing {
	return models.Listing{
		Platform:   p,
		ExternalID: id,
		Title:      title,
		Artist:     artist,
		Price:      decimal.RequireFromString(price),
		SellerID:   seller,
		Location:   "United States",
	}
}

func sampleRequest() Request {
	a := listing(models.PlatformDiscogs, "1", "Abbey Road", "The Beatles", "25.99", "alpha")
	a.InWantlist = true
	b := listing(models.PlatformEbay, "2", "ABBEY ROAD", "Beatles, The", "26.50", "bravo")
	c := listing(models.PlatformDiscogs, "3", "Kind of Blue", "Miles Davis", "30.00", "alpha")
	c.InWantlist = true
	d := listing(models.PlatformDiscogs, "4", "Blue Train", "John Coltrane", "22.00", "charlie")
	return Request{
		ID:          "run-sample",
		Listings:    []models.Listing{a, b, c, d},
		Preferences: models.Preferences{Location: "US", Currency: "USD"},
	}
}

func TestRun_EmptyListings(t *testing.T) {
	t.Parallel()

	e := newTestEngine(t)
	for _, listings := range [][]models.Listing{nil, {}} {
		report, err := e.Run(context.Background(), Request{Listings: listings})
		if !errors.Is(err, ErrEmptyListings) {
			t.Errorf("err = %v, want ErrEmptyListings", err)
		}
		if report != nil {
			t.Errorf("report = %+v, want nil", report)
		}
	}
	if got := e.Stats().Failures; got != 2 {
		t.Errorf("failures = %d, want 2", got)
	}
}

func TestRun_CrossPlatformMatch(t *testing.T) {
	t.Parallel()

	e := newTestEngine(t)
	report, err := e.Run(context.Background(), sampleRequest())
	if err != nil {
		t.Fatalf("Run: %v", err)
	}

	if report.RunID != "run-sample" {
		t.Errorf("RunID = %q, want run-sample", report.RunID)
	}
	if got := report.Summary.CanonicalItems; got != 3 {
		t.Errorf("canonical items = %d, want 3", got)
	}
	if report.Summary.Matched != 1 {
		t.Errorf("matched = %d, want 1", report.Summary.Matched)
	}

	var first, second *models.ListingMatch
	for i := range report.Matches {
		switch report.Matches[i].ListingID {
		case "discogs:1":
			first = &report.Matches[i]
		case "ebay:2":
			second = &report.Matches[i]
		}
	}
	if first == nil || second == nil {
		t.Fatalf("missing matches: %+v", report.Matches)
	}
	if first.Fingerprint != second.Fingerprint {
		t.Errorf("fingerprints differ: %q vs %q", first.Fingerprint, second.Fingerprint)
	}
	if second.Confidence < 85 {
		t.Errorf("confidence = %f, want >= 85", second.Confidence)
	}
}

func TestRun_ReportInvariants(t *testing.T) {
	t.Parallel()

	e := newTestEngine(t)
	report, err := e.Run(context.Background(), sampleRequest())
	if err != nil {
		t.Fatalf("Run: %v", err)
	}

	if report.Summary.Sellers != 3 {
		t.Errorf("sellers = %d, want 3", report.Summary.Sellers)
	}
	sellers := make(map[string]bool)
	for i, s := range report.Sellers {
		sellers[s.SellerKey] = true
		if s.Rank != i+1 {
			t.Errorf("seller %s rank = %d, want %d", s.SellerKey, s.Rank, i+1)
		}
		if s.OverallScore < 0 || s.OverallScore > 100 {
			t.Errorf("seller %s overall = %f out of range", s.SellerKey, s.OverallScore)
		}
	}

	var bundle bool
	for _, r := range report.Recommendations {
		if r.ScoreValue < 0 || r.ScoreValue > 100 {
			t.Errorf("recommendation %s score = %f out of range", r.ID, r.ScoreValue)
		}
		if r.SellerKey != "" && !sellers[r.SellerKey] {
			t.Errorf("recommendation %s references unknown seller %s", r.ID, r.SellerKey)
		}
		if r.Type == models.RecMultiItem && r.SellerKey == models.SellerKey(models.PlatformDiscogs, "alpha") {
			bundle = true
		}
	}
	if !bundle {
		t.Errorf("no multi-item recommendation for alpha in %+v", report.Recommendations)
	}
	if report.Summary.Recommendations != len(report.Recommendations) {
		t.Errorf("summary recommendations = %d, want %d", report.Summary.Recommendations, len(report.Recommendations))
	}
	if top, ok := report.TopRecommendation(); !ok || top.ID != report.Recommendations[0].ID {
		t.Errorf("TopRecommendation = %+v, %v", top, ok)
	}
}

func TestRun_Deterministic(t *testing.T) {
	t.Parallel()

	e := newTestEngine(t)
	encode := func(r *Report) []byte {
		t.Helper()
		b, err := json.Marshal(struct {
			Items   []models.CanonicalItem
			Matches []models.ListingMatch
			Sellers []models.SellerAnalysis
			Recs    []models.Recommendation
		}{r.CanonicalItems, r.Matches, r.Sellers, r.Recommendations})
		if err != nil {
			t.Fatalf("Marshal: %v", err)
		}
		return b
	}

	first, err := e.Run(context.Background(), sampleRequest())
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	second, err := e.Run(context.Background(), sampleRequest())
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if !bytes.Equal(encode(first), encode(second)) {
		t.Error("identical requests produced different reports")
	}
}

func TestRun_ConditionFilter(t *testing.T) {
	t.Parallel()

	req := sampleRequest()
	req.Listings[0].RecordCondition = models.ConditionGood
	req.Listings[1].SleeveCondition = models.ConditionVeryGoodPlus
	req.Listings[2].RecordCondition = models.ConditionUnknown
	req.Preferences.MinRecordCondition = models.ConditionVeryGood
	req.Preferences.MinSleeveCondition = models.ConditionVeryGood

	report, err := newTestEngine(t).Run(context.Background(), req)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if report.Summary.FilteredByCondition != 1 {
		t.Errorf("filtered = %d, want 1", report.Summary.FilteredByCondition)
	}
	for _, m := range report.Matches {
		if m.ListingID == "discogs:1" {
			t.Error("filtered listing was matched")
		}
	}
}

func TestRun_ExcludesUnmatchableListing(t *testing.T) {
	t.Parallel()

	req := sampleRequest()
	req.Listings = append(req.Listings, listing(models.PlatformDiscogs, "", "Broken", "Nobody", "5.00", "alpha"))

	report, err := newTestEngine(t).Run(context.Background(), req)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if report.Summary.Excluded != 1 {
		t.Errorf("excluded = %d, want 1", report.Summary.Excluded)
	}
	if len(report.Matches) != 4 {
		t.Errorf("matches = %d, want 4", len(report.Matches))
	}
}

func TestRun_ExcludedListingKeepsBundle(t *testing.T) {
	t.Parallel()

	req := sampleRequest()
	req.Listings = append(req.Listings, listing(models.PlatformDiscogs, "", "Broken", "Nobody", "5.00", "alpha"))

	report, err := newTestEngine(t).Run(context.Background(), req)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if report.Summary.Excluded != 1 {
		t.Errorf("excluded = %d, want 1", report.Summary.Excluded)
	}
	if report.Summary.Dropped != 0 {
		t.Errorf("dropped = %d, want 0", report.Summary.Dropped)
	}

	alpha := models.SellerKey(models.PlatformDiscogs, "alpha")
	for _, s := range report.Sellers {
		if s.SellerKey != alpha {
			continue
		}
		if s.ListingCount != 2 {
			t.Errorf("alpha listing count = %d, want 2", s.ListingCount)
		}
		for _, id := range s.ListingIDs {
			if id == "discogs:" {
				t.Errorf("alpha references excluded listing: %v", s.ListingIDs)
			}
		}
	}

	var bundle bool
	for _, r := range report.Recommendations {
		if r.Type == models.RecMultiItem && r.SellerKey == alpha {
			bundle = true
		}
	}
	if !bundle {
		t.Errorf("no multi-item recommendation for alpha in %+v", report.Recommendations)
	}
}

func TestRun_Duplicates(t *testing.T) {
	t.Parallel()

	req := sampleRequest()
	req.Listings = append(req.Listings, req.Listings[0])

	report, err := newTestEngine(t).Run(context.Background(), req)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if report.Summary.Duplicates != 1 {
		t.Errorf("duplicates = %d, want 1", report.Summary.Duplicates)
	}
	if len(report.Matches) != 4 {
		t.Errorf("matches = %d, want 4", len(report.Matches))
	}
}

func TestRun_Cancelled(t *testing.T) {
	t.Parallel()

	e := newTestEngine(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	report, err := e.Run(ctx, sampleRequest())
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("err = %v, want context.Canceled", err)
	}
	if report != nil {
		t.Error("cancelled run returned a report")
	}
	if got := e.Stats().Cancelled; got != 1 {
		t.Errorf("cancelled = %d, want 1", got)
	}
}

func TestRun_AssignsRunID(t *testing.T) {
	t.Parallel()

	req := sampleRequest()
	req.ID = ""
	report, err := newTestEngine(t).Run(context.Background(), req)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if report.RunID == "" {
		t.Error("RunID is empty")
	}
}

func TestConfig_Validate(t *testing.T) {
	t.Parallel()

	cfg := DefaultConfig()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("default config invalid: %v", err)
	}

	cfg.BatchWorkers = 0
	if err := cfg.Validate(); err == nil {
		t.Error("expected error for zero batch workers")
	}

	cfg = DefaultConfig()
	cfg.Matcher = nil
	if _, err := New(cfg, zerolog.Nop()); err == nil {
		t.Error("expected error for missing matcher config")
	}
}
