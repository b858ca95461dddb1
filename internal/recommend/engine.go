// Cratedigger - Vinyl Marketplace Deal Analysis
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cratedigger

package recommend

import (
	"context"
	"fmt"
	"math"
	"sort"
	"strings"
	"sync/atomic"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/tomtom215/cratedigger/internal/models"
)

// recommendationNamespace scopes deterministic recommendation ids.
var recommendationNamespace = uuid.NewSHA1(uuid.NameSpaceURL, []byte("https://github.com/tomtom215/cratedigger/recommendation"))

// Engine classifies, scores and ranks recommendations. It holds only
// immutable configuration and is safe for concurrent use.
type Engine struct {
	config *Config
	rules  []Rule
	logger zerolog.Logger

	generateCount atomic.Int64
	droppedCount  atomic.Int64
}

// NewEngine creates a recommendation engine with the default rules.
//
//nolint:gocritic // logger passed by value is acceptable for zerolog
func NewEngine(cfg *Config, logger zerolog.Logger) (*Engine, error) {
	if cfg == nil {
		cfg = DefaultConfig()
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return &Engine{
		config: cfg.Clone(),
		rules:  DefaultRules(),
		logger: logger.With().Str("component", "recommend").Logger(),
	}, nil
}

// Rules returns a copy of the engine's rule list.
func (e *Engine) Rules() []Rule {
	return append([]Rule(nil), e.rules...)
}

// Generate produces the ranked recommendation list for one run. It is
// deterministic for identical inputs and returns ctx.Err() if cancelled.
func (e *Engine) Generate(ctx context.Context, in *Input) (*Result, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	e.generateCount.Add(1)

	facts := newFacts(in, e.config)
	acc := newAccumulator()

	for _, l := range sortedListings(in.Listings) {
		seller, ok := facts.Seller(l.SellerKey())
		if !ok {
			acc.drop("seller:"+l.SellerKey()+"|"+l.Key(), e.logger, "seller not in run")
			continue
		}
		subject := Subject{Seller: seller, Listing: l}
		for _, rule := range e.rules {
			if rule.Scope != ScopeListing || !rule.Applies(facts, subject) {
				continue
			}
			e.add(acc, facts, rule.Build(facts, subject))
			break
		}
	}

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	for i := range in.Analyses {
		subject := Subject{Seller: &in.Analyses[i]}
		for _, rule := range e.rules {
			if rule.Scope == ScopeSeller && rule.Applies(facts, subject) {
				e.add(acc, facts, rule.Build(facts, subject))
			}
		}
	}

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	recs := acc.list()
	Sort(recs)

	e.droppedCount.Add(int64(acc.dropped))
	e.logger.Debug().
		Str("run_id", in.RunID).
		Int("recommendations", len(recs)).
		Int("dropped", acc.dropped).
		Msg("recommendations generated")

	return &Result{Recommendations: recs, Dropped: acc.dropped}, nil
}

// add validates references, scores and labels rec, and records it once.
func (e *Engine) add(acc *accumulator, f *Facts, rec models.Recommendation) {
	rec.ID = RecommendationID(f.RunID, rec.Type, rec.SellerKey, rec.ListingIDs)
	if acc.has(rec.ID) {
		return
	}

	seller, ok := f.Seller(rec.SellerKey)
	if rec.SellerKey != "" && !ok {
		acc.drop(rec.ID, e.logger, "seller not in run")
		return
	}
	for _, id := range rec.ListingIDs {
		if _, ok := f.ItemFor(id); !ok {
			acc.drop(rec.ID, e.logger, "canonical item not in run")
			return
		}
	}

	if seller != nil {
		rec.ScoreValue = roundScore(e.config.Weights.Overall(seller))
	}
	rec.DealScore = e.config.Quality.Label(rec.ScoreValue)
	acc.add(rec)
}

// Stats returns cumulative counters: Generate calls and dropped
// recommendations.
func (e *Engine) Stats() (generated, dropped int64) {
	return e.generateCount.Load(), e.droppedCount.Load()
}

// Label maps a score to a deal-quality label with the engine's thresholds.
func (e *Engine) Label(score float64) models.DealQuality {
	return e.config.Quality.Label(score)
}

// Sort orders recommendations by score descending, then type priority,
// then seller key, then first listing id and id.
func Sort(recs []models.Recommendation) {
	sort.SliceStable(recs, func(i, j int) bool {
		a, b := &recs[i], &recs[j]
		if a.ScoreValue != b.ScoreValue {
			return a.ScoreValue > b.ScoreValue
		}
		if pa, pb := a.Type.Priority(), b.Type.Priority(); pa != pb {
			return pa < pb
		}
		if a.SellerKey != b.SellerKey {
			return a.SellerKey < b.SellerKey
		}
		if fa, fb := firstID(a.ListingIDs), firstID(b.ListingIDs); fa != fb {
			return fa < fb
		}
		return a.ID < b.ID
	})
}

// RecommendationID derives a stable id from the run and the
// recommendation's identity so repeated runs upsert the same key.
func RecommendationID(runID string, t models.RecommendationType, sellerKey string, listingIDs []string) string {
	name := runID + "|" + string(t) + "|" + sellerKey + "|" + strings.Join(listingIDs, ",")
	return uuid.NewSHA1(recommendationNamespace, []byte(name)).String()
}

func roundScore(v float64) float64 {
	return models.ClampScore(math.Round(v*100) / 100)
}

func firstID(ids []string) string {
	if len(ids) == 0 {
		return ""
	}
	return ids[0]
}

func sortedListings(listings []models.Listing) []*models.Listing {
	out := make([]*models.Listing, len(listings))
	for i := range listings {
		out[i] = &listings[i]
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Key() < out[j].Key() })
	return out
}

// accumulator collects recommendations by id in insertion order and counts
// distinct drops.
type accumulator struct {
	recs        []models.Recommendation
	seen        map[string]struct{}
	droppedKeys map[string]struct{}
	dropped     int
}

func newAccumulator() *accumulator {
	return &accumulator{
		seen:        make(map[string]struct{}),
		droppedKeys: make(map[string]struct{}),
	}
}

func (a *accumulator) has(id string) bool {
	if _, ok := a.seen[id]; ok {
		return true
	}
	_, ok := a.droppedKeys[id]
	return ok
}

func (a *accumulator) add(rec models.Recommendation) {
	a.seen[rec.ID] = struct{}{}
	a.recs = append(a.recs, rec)
}

//nolint:gocritic // logger passed by value is acceptable for zerolog
func (a *accumulator) drop(key string, logger zerolog.Logger, reason string) {
	if _, ok := a.droppedKeys[key]; ok {
		return
	}
	a.droppedKeys[key] = struct{}{}
	a.dropped++
	logger.Debug().Str("key", key).Str("reason", reason).Msg("recommendation dropped")
}

func (a *accumulator) list() []models.Recommendation {
	return a.recs
}
