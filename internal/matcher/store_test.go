// Cratedigger - Vinyl Marketplace Deal Analysis
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cratedigger

package matcher

import (
	"errors"
	"math"
	"sync"
	"testing"
)

func TestStore_CreateAndMerge(t *testing.T) {
	t.Parallel()

	s := NewStore()
	item, err := s.Create(Record{Title: "abbey road", Artist: "beatles"}, "discogs:1")
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if item.MatchCount != 1 || item.AvgConfidence != 100 || item.Sequence != 0 {
		t.Errorf("new item = %+v, want count 1, avg 100, sequence 0", item)
	}

	item, err = s.Merge(item.Fingerprint, 80, "ebay:2")
	if err != nil {
		t.Fatalf("Merge: %v", err)
	}
	if item.MatchCount != 2 || item.AvgConfidence != 90 {
		t.Errorf("after first merge count=%d avg=%f, want 2 and 90", item.MatchCount, item.AvgConfidence)
	}

	item, err = s.Merge(item.Fingerprint, 70, "ebay:3")
	if err != nil {
		t.Fatalf("Merge: %v", err)
	}
	if item.MatchCount != 3 || math.Abs(item.AvgConfidence-250.0/3) > 1e-9 {
		t.Errorf("after second merge count=%d avg=%f, want 3 and 83.33", item.MatchCount, item.AvgConfidence)
	}
	if len(item.ListingIDs) != 3 || item.ListingIDs[2] != "ebay:3" {
		t.Errorf("ListingIDs = %v", item.ListingIDs)
	}
}

func TestStore_Errors(t *testing.T) {
	t.Parallel()

	s := NewStore()
	if _, err := s.Merge("missing|fp", 90, "x"); !errors.Is(err, ErrUnknownFingerprint) {
		t.Errorf("Merge unknown error = %v, want ErrUnknownFingerprint", err)
	}

	rec := Record{Title: "a", Artist: "b"}
	if _, err := s.Create(rec, "x"); err != nil {
		t.Fatalf("Create: %v", err)
	}
	if _, err := s.Create(rec, "y"); err == nil {
		t.Error("Create with duplicate fingerprint succeeded, want error")
	}
}

func TestStore_ReturnsCopies(t *testing.T) {
	t.Parallel()

	s := NewStore()
	item, _ := s.Create(Record{Title: "kind of blue", Artist: "miles davis"}, "discogs:1")
	item.ListingIDs[0] = "mutated"
	item.MatchCount = 99

	got, ok := s.Get(item.Fingerprint)
	if !ok {
		t.Fatal("Get returned not found")
	}
	if got.MatchCount != 1 || got.ListingIDs[0] != "discogs:1" {
		t.Errorf("store mutated through returned copy: %+v", got)
	}
}

func TestStore_Candidates(t *testing.T) {
	t.Parallel()

	s := NewStore()
	_, _ = s.Create(Record{Title: "abbey road", Artist: "beatles"}, "1")
	_, _ = s.Create(Record{Title: "thriller", Artist: "michael jackson"}, "2")
	_, _ = s.Create(Record{Title: "let it be", Artist: "beatles"}, "3")

	got := s.Candidates(Record{Title: "abbey road", Artist: "beatles"})
	if len(got) != 2 {
		t.Fatalf("Candidates returned %d items, want 2", len(got))
	}
	if got[0].Sequence != 0 || got[1].Sequence != 2 {
		t.Errorf("Candidates not in creation order: %d, %d", got[0].Sequence, got[1].Sequence)
	}

	if got := s.Candidates(Record{Title: "blue train", Artist: "john coltrane"}); len(got) != 0 {
		t.Errorf("Candidates for unrelated record = %d, want 0", len(got))
	}
}

func TestStore_ConcurrentMerge(t *testing.T) {
	t.Parallel()

	s := NewStore()
	item, _ := s.Create(Record{Title: "blue", Artist: "joni mitchell"}, "seed")

	const workers = 50
	var wg sync.WaitGroup
	wg.Add(workers)
	for i := 0; i < workers; i++ {
		go func() {
			defer wg.Done()
			_, _ = s.Merge(item.Fingerprint, 100, "l")
		}()
	}
	wg.Wait()

	got, _ := s.Get(item.Fingerprint)
	if got.MatchCount != workers+1 {
		t.Errorf("MatchCount = %d, want %d", got.MatchCount, workers+1)
	}
	if got.AvgConfidence != 100 {
		t.Errorf("AvgConfidence = %f, want 100", got.AvgConfidence)
	}
}
