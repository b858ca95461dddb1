// Cratedigger - Vinyl Marketplace Deal Analysis
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cratedigger

package matcher

import (
	"errors"
	"testing"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/tomtom215/cratedigger/internal/models"
)

func testLogger() zerolog.Logger {
	return zerolog.Nop()
}

func newTestMatcher(t *testing.T) *Matcher {
	t.Helper()
	m, err := New(nil, nil, testLogger())
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return m
}

func listing(platform models.Platform, id, title, artist string, price string) *models.Listing {
	return &models.Listing{
		Platform:   platform,
		ExternalID: id,
		Title:      title,
		Artist:     artist,
		Price:      decimal.RequireFromString(price),
		SellerID:   "seller-" + id,
	}
}

func TestMatcher_CrossPlatformMatch(t *testing.T) {
	t.Parallel()

	m := newTestMatcher(t)

	first, err := m.Match(listing(models.PlatformDiscogs, "1", "Abbey Road", "The Beatles", "25.99"))
	if err != nil {
		t.Fatalf("Match first: %v", err)
	}
	if !first.Created {
		t.Error("first listing should found a canonical item")
	}

	second, err := m.Match(listing(models.PlatformEbay, "2", "ABBEY ROAD", "Beatles, The", "26.50"))
	if err != nil {
		t.Fatalf("Match second: %v", err)
	}
	if second.Created {
		t.Error("second listing created a new item, want attach")
	}
	if second.Item.Fingerprint != first.Item.Fingerprint {
		t.Errorf("fingerprints differ: %q vs %q", second.Item.Fingerprint, first.Item.Fingerprint)
	}
	if second.Confidence < 85 {
		t.Errorf("confidence = %f, want >= 85", second.Confidence)
	}
	if second.Item.MatchCount != 2 {
		t.Errorf("MatchCount = %d, want 2", second.Item.MatchCount)
	}
	if m.Store().Len() != 1 {
		t.Errorf("store has %d items, want 1", m.Store().Len())
	}
}

func TestMatcher_BelowThresholdCreatesItem(t *testing.T) {
	t.Parallel()

	m := newTestMatcher(t)
	_, _ = m.Match(listing(models.PlatformDiscogs, "1", "Abbey Road", "The Beatles", "20"))
	res, err := m.Match(listing(models.PlatformDiscogs, "2", "Let It Be", "The Beatles", "20"))
	if err != nil {
		t.Fatalf("Match: %v", err)
	}
	if !res.Created {
		t.Errorf("different album attached with confidence %f", res.Confidence)
	}
	if m.Store().Len() != 2 {
		t.Errorf("store has %d items, want 2", m.Store().Len())
	}
}

func TestMatcher_EmptyTitleAndArtist(t *testing.T) {
	t.Parallel()

	m := newTestMatcher(t)
	res, err := m.Match(listing(models.PlatformEbay, "1", "", "", "5"))
	if err != nil {
		t.Fatalf("Match: %v", err)
	}
	if res.Item.Fingerprint != "|" {
		t.Errorf("fingerprint = %q, want %q", res.Item.Fingerprint, "|")
	}

	res, err = m.Match(listing(models.PlatformEbay, "2", "  ", "!!", "5"))
	if err != nil {
		t.Fatalf("Match: %v", err)
	}
	if res.Created || res.Item.MatchCount != 2 {
		t.Errorf("second degenerate listing: created=%v count=%d", res.Created, res.Item.MatchCount)
	}
}

func TestMatcher_TieBreaksOnCreationOrder(t *testing.T) {
	t.Parallel()

	store := NewStore()
	_, _ = store.Create(Record{Title: "blue", Artist: "skya"}, "seed-1")
	_, _ = store.Create(Record{Title: "blue", Artist: "skyb"}, "seed-2")

	m, err := New(nil, store, testLogger())
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	res, err := m.Match(listing(models.PlatformDiscogs, "3", "Blue", "Sky", "10"))
	if err != nil {
		t.Fatalf("Match: %v", err)
	}
	if res.Item.Fingerprint != "blue|skya" {
		t.Errorf("attached to %q, want earliest item blue|skya", res.Item.Fingerprint)
	}
	if res.Band != BandHigh {
		t.Errorf("band = %s, want high", res.Band)
	}
}

func TestMatcher_InvalidListings(t *testing.T) {
	t.Parallel()

	m := newTestMatcher(t)
	if _, err := m.Match(nil); !errors.Is(err, ErrNilListing) {
		t.Errorf("Match(nil) error = %v, want ErrNilListing", err)
	}
	if _, err := m.Match(listing(models.PlatformDiscogs, "", "Title", "Artist", "1")); !errors.Is(err, ErrMissingListingID) {
		t.Errorf("Match without id error = %v, want ErrMissingListingID", err)
	}
	if got := m.Stats().Failed; got != 2 {
		t.Errorf("Failed = %d, want 2", got)
	}
}

func TestMatcher_Idempotent(t *testing.T) {
	t.Parallel()

	input := []*models.Listing{
		listing(models.PlatformDiscogs, "1", "Abbey Road", "The Beatles", "25.99"),
		listing(models.PlatformEbay, "2", "ABBEY ROAD", "Beatles, The", "26.50"),
		listing(models.PlatformDiscogs, "3", "Kind of Blue", "Miles Davis", "30"),
		listing(models.PlatformEbay, "4", "Kind Of Blue (Mono)", "Miles Davis", "45"),
		listing(models.PlatformEbay, "5", "", "Miles Davis", "12"),
		listing(models.PlatformDiscogs, "6", "Rumours", "Fleetwood Mac", "18"),
	}

	run := func() ([]Result, []models.CanonicalItem) {
		m := newTestMatcher(t)
		results := make([]Result, 0, len(input))
		for _, l := range input {
			res, err := m.Match(l)
			if err != nil {
				t.Fatalf("Match(%s): %v", l.Key(), err)
			}
			results = append(results, res)
		}
		return results, m.Store().Items()
	}

	r1, items1 := run()
	r2, items2 := run()

	for i := range r1 {
		if r1[i].Item.Fingerprint != r2[i].Item.Fingerprint || r1[i].Confidence != r2[i].Confidence {
			t.Errorf("listing %d differs between runs: %+v vs %+v", i, r1[i], r2[i])
		}
	}
	if len(items1) != len(items2) {
		t.Fatalf("item counts differ: %d vs %d", len(items1), len(items2))
	}
	for i := range items1 {
		if items1[i].Fingerprint != items2[i].Fingerprint || items1[i].MatchCount != items2[i].MatchCount {
			t.Errorf("item %d differs: %+v vs %+v", i, items1[i], items2[i])
		}
	}
}
