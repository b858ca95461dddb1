// Cratedigger - Vinyl Marketplace Deal Analysis
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cratedigger

package matcher

import (
	"errors"
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/rs/zerolog"

	"github.com/tomtom215/cratedigger/internal/models"
)

var (
	// ErrNilListing is returned when Match receives a nil listing.
	ErrNilListing = errors.New("nil listing")

	// ErrMissingListingID is returned for listings without an external id.
	ErrMissingListingID = errors.New("listing has no external id")
)

// Result describes how one listing resolved.
type Result struct {
	Item       models.CanonicalItem
	Confidence float64
	Band       Band
	Created    bool
}

// Stats are cumulative matcher counters.
type Stats struct {
	Matched int64
	Created int64
	Failed  int64
}

// Matcher attaches listings to canonical items in a Store. Calls to Match
// are serialized so each listing's effect on running averages is complete
// before the next listing is scored.
type Matcher struct {
	config     *Config
	normalizer *Normalizer
	store      *Store
	logger     zerolog.Logger

	mu sync.Mutex

	matched atomic.Int64
	created atomic.Int64
	failed  atomic.Int64
}

// New creates a matcher over store. A nil config uses DefaultConfig and a nil
// store starts empty.
//
//nolint:gocritic // logger passed by value is acceptable for zerolog
func New(cfg *Config, store *Store, logger zerolog.Logger) (*Matcher, error) {
	if cfg == nil {
		cfg = DefaultConfig()
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid matcher config: %w", err)
	}
	if store == nil {
		store = NewStore()
	}

	stopWords := cfg.StopWords
	if stopWords == nil {
		stopWords = DefaultStopWords
	}

	return &Matcher{
		config:     cfg,
		normalizer: NewNormalizer(stopWords),
		store:      store,
		logger:     logger.With().Str("component", "matcher").Logger(),
	}, nil
}

// Store returns the backing canonical item store.
func (m *Matcher) Store() *Store {
	return m.store
}

// RecordFor normalizes a listing into a scoring record.
func (m *Matcher) RecordFor(l *models.Listing) Record {
	year := l.Year
	if year < 0 {
		year = 0
	}
	return Record{
		Title:  m.normalizer.Normalize(l.Title),
		Artist: m.normalizer.Normalize(l.Artist),
		Year:   year,
	}
}

// Match resolves l to a canonical item, attaching it to the best candidate
// at or above the low threshold or founding a new item otherwise.
func (m *Matcher) Match(l *models.Listing) (Result, error) {
	if l == nil {
		m.failed.Add(1)
		return Result{}, ErrNilListing
	}
	if l.ExternalID == "" {
		m.failed.Add(1)
		return Result{}, ErrMissingListingID
	}

	rec := m.RecordFor(l)

	m.mu.Lock()
	defer m.mu.Unlock()

	best, bestScore, found := m.bestCandidate(rec)
	if found && bestScore >= m.config.Thresholds.Low {
		item, err := m.store.Merge(best.Fingerprint, bestScore, l.Key())
		if err != nil {
			m.failed.Add(1)
			return Result{}, fmt.Errorf("merge listing %s: %w", l.Key(), err)
		}
		m.matched.Add(1)
		band := m.config.Thresholds.Band(bestScore)
		m.logger.Debug().
			Str("listing", l.Key()).
			Str("fingerprint", item.Fingerprint).
			Float64("confidence", bestScore).
			Str("band", string(band)).
			Msg("listing attached")
		return Result{Item: item, Confidence: bestScore, Band: band}, nil
	}

	item, err := m.store.Create(rec, l.Key())
	if err != nil {
		m.failed.Add(1)
		return Result{}, fmt.Errorf("create canonical item for %s: %w", l.Key(), err)
	}
	m.created.Add(1)
	m.logger.Debug().
		Str("listing", l.Key()).
		Str("fingerprint", item.Fingerprint).
		Float64("best_score", bestScore).
		Msg("canonical item created")
	return Result{Item: item, Confidence: 100, Band: BandExact, Created: true}, nil
}

// bestCandidate scores every candidate. Ties keep the earliest created item
// because candidates arrive in creation order and only a strictly higher
// score replaces the current best.
func (m *Matcher) bestCandidate(rec Record) (Candidate, float64, bool) {
	var (
		best      Candidate
		bestScore = -1.0
		found     bool
	)
	for _, c := range m.store.Candidates(rec) {
		score := Similarity(rec, c.Record, m.config.Weights, m.config.MaxYearDiff)
		if score > bestScore {
			best, bestScore, found = c, score, true
		}
	}
	if !found {
		return Candidate{}, 0, false
	}
	return best, bestScore, true
}

// Stats returns a snapshot of the matcher counters.
func (m *Matcher) Stats() Stats {
	return Stats{
		Matched: m.matched.Load(),
		Created: m.created.Load(),
		Failed:  m.failed.Load(),
	}
}
