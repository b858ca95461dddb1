// Cratedigger - Vinyl Marketplace Deal Analysis
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cratedigger

package matcher

import (
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/tomtom215/cratedigger/internal/models"
)

// ErrUnknownFingerprint is returned by Merge when no item owns the key.
var ErrUnknownFingerprint = errors.New("unknown canonical fingerprint")

// Store is an arena of canonical items keyed by fingerprint. Items are never
// removed; their position in the arena is their creation order. Every method
// is safe for concurrent use, and Merge applies its count and average update
// under a single lock so no partial update is observable.
type Store struct {
	mu            sync.RWMutex
	items         []models.CanonicalItem
	byFingerprint map[string]int
	byToken       map[string][]int
}

// Candidate is a read-only view of a stored item used for scoring.
type Candidate struct {
	Fingerprint string
	Sequence    int
	Record      Record
}

// NewStore creates an empty store.
func NewStore() *Store {
	return &Store{
		byFingerprint: make(map[string]int),
		byToken:       make(map[string][]int),
	}
}

// Len returns the number of canonical items.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.items)
}

// Get returns a copy of the item with the given fingerprint.
func (s *Store) Get(fingerprint string) (models.CanonicalItem, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	idx, ok := s.byFingerprint[fingerprint]
	if !ok {
		return models.CanonicalItem{}, false
	}
	return cloneItem(&s.items[idx]), true
}

// Items returns copies of every item in creation order.
func (s *Store) Items() []models.CanonicalItem {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]models.CanonicalItem, len(s.items))
	for i := range s.items {
		out[i] = cloneItem(&s.items[i])
	}
	return out
}

// Candidates returns the items worth scoring against rec: the exact
// fingerprint bucket plus every item sharing at least one title or artist
// token. Results are in creation order.
func (s *Store) Candidates(rec Record) []Candidate {
	s.mu.RLock()
	defer s.mu.RUnlock()

	seen := make(map[int]struct{})
	if idx, ok := s.byFingerprint[Fingerprint(rec.Title, rec.Artist)]; ok {
		seen[idx] = struct{}{}
	}
	for _, tok := range recordTokens(rec) {
		for _, idx := range s.byToken[tok] {
			seen[idx] = struct{}{}
		}
	}

	indexes := make([]int, 0, len(seen))
	for idx := range seen {
		indexes = append(indexes, idx)
	}
	sort.Ints(indexes)

	out := make([]Candidate, 0, len(indexes))
	for _, idx := range indexes {
		it := &s.items[idx]
		out = append(out, Candidate{
			Fingerprint: it.Fingerprint,
			Sequence:    it.Sequence,
			Record:      Record{Title: it.Title, Artist: it.Artist, Year: it.Year},
		})
	}
	return out
}

// Create founds a new canonical item for rec. The founding listing counts as
// a full-confidence match. Creating an existing fingerprint is an error.
func (s *Store) Create(rec Record, listingID string) (models.CanonicalItem, error) {
	fp := Fingerprint(rec.Title, rec.Artist)

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.byFingerprint[fp]; exists {
		return models.CanonicalItem{}, fmt.Errorf("canonical item %q already exists", fp)
	}

	idx := len(s.items)
	s.items = append(s.items, models.CanonicalItem{
		Fingerprint:   fp,
		Title:         rec.Title,
		Artist:        rec.Artist,
		Year:          rec.Year,
		MatchCount:    1,
		AvgConfidence: 100,
		Sequence:      idx,
		ListingIDs:    []string{listingID},
	})
	s.byFingerprint[fp] = idx
	for _, tok := range recordTokens(rec) {
		s.byToken[tok] = append(s.byToken[tok], idx)
	}
	return cloneItem(&s.items[idx]), nil
}

// Merge attaches a listing to an existing item, folding confidence into the
// running average and incrementing the match count as one operation.
func (s *Store) Merge(fingerprint string, confidence float64, listingID string) (models.CanonicalItem, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	idx, ok := s.byFingerprint[fingerprint]
	if !ok {
		return models.CanonicalItem{}, fmt.Errorf("%w: %q", ErrUnknownFingerprint, fingerprint)
	}

	it := &s.items[idx]
	total := it.AvgConfidence*float64(it.MatchCount) + confidence
	it.MatchCount++
	it.AvgConfidence = total / float64(it.MatchCount)
	it.ListingIDs = append(it.ListingIDs, listingID)
	return cloneItem(it), nil
}

func recordTokens(rec Record) []string {
	title := strings.Fields(rec.Title)
	artist := strings.Fields(rec.Artist)
	return append(title, artist...)
}

func cloneItem(it *models.CanonicalItem) models.CanonicalItem {
	c := *it
	c.ListingIDs = append([]string(nil), it.ListingIDs...)
	return c
}
