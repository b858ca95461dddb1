// Cratedigger - Vinyl Marketplace Deal Analysis
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cratedigger

package engine

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/tomtom215/cratedigger/internal/analyzer"
	"github.com/tomtom215/cratedigger/internal/matcher"
	"github.com/tomtom215/cratedigger/internal/metrics"
	"github.com/tomtom215/cratedigger/internal/models"
	"github.com/tomtom215/cratedigger/internal/recommend"
)

// ErrEmptyListings is returned when a run is requested without listings.
// An empty search result is a caller bug, not an empty report.
var ErrEmptyListings = errors.New("analysis requires at least one listing")

// Engine executes analysis runs. The analyzer and recommendation engine are
// shared across runs; each run gets its own canonical item store.
type Engine struct {
	config    *Config
	analyzer  *analyzer.Analyzer
	recommend *recommend.Engine
	logger    zerolog.Logger

	runs      atomic.Int64
	failures  atomic.Int64
	cancelled atomic.Int64
}

// Stats are cumulative run counters.
type Stats struct {
	Runs      int64 `json:"runs"`
	Failures  int64 `json:"failures"`
	Cancelled int64 `json:"cancelled"`
}

// New creates an engine. A nil config uses DefaultConfig.
//
//nolint:gocritic // logger passed by value is acceptable for zerolog
func New(cfg *Config, logger zerolog.Logger) (*Engine, error) {
	if cfg == nil {
		cfg = DefaultConfig()
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	a, err := analyzer.New(cfg.Analyzer, logger)
	if err != nil {
		return nil, err
	}
	r, err := recommend.NewEngine(cfg.Recommend, logger)
	if err != nil {
		return nil, err
	}

	return &Engine{
		config:    cfg,
		analyzer:  a,
		recommend: r,
		logger:    logger.With().Str("component", "engine").Logger(),
	}, nil
}

// Config returns the engine configuration.
func (e *Engine) Config() *Config {
	return e.config
}

// Stats returns a snapshot of the run counters.
func (e *Engine) Stats() Stats {
	return Stats{
		Runs:      e.runs.Load(),
		Failures:  e.failures.Load(),
		Cancelled: e.cancelled.Load(),
	}
}

// Run analyzes one search result. It returns ErrEmptyListings for an empty
// request and a wrapped ctx.Err() with a nil report when cancelled.
func (e *Engine) Run(ctx context.Context, req Request) (*Report, error) {
	start := time.Now()

	if len(req.Listings) == 0 {
		e.failures.Add(1)
		metrics.RecordAnalysisRun("invalid", time.Since(start), 0)
		return nil, ErrEmptyListings
	}

	runID := req.ID
	if runID == "" {
		runID = uuid.New().String()
	}

	report, err := e.run(ctx, runID, &req)
	duration := time.Since(start)
	if err != nil {
		status := "error"
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			status = "cancelled"
			e.cancelled.Add(1)
		} else {
			e.failures.Add(1)
		}
		metrics.RecordAnalysisRun(status, duration, len(req.Listings))
		e.logger.Warn().Err(err).Str("run_id", runID).Msg("analysis run aborted")
		return nil, err
	}

	e.runs.Add(1)
	report.Summary.DurationMS = duration.Milliseconds()
	metrics.RecordAnalysisRun("success", duration, len(req.Listings))
	e.recordMetrics(report)

	e.logger.Info().
		Str("run_id", runID).
		Int("listings", report.Summary.Listings).
		Int("canonical_items", report.Summary.CanonicalItems).
		Int("sellers", report.Summary.Sellers).
		Int("recommendations", report.Summary.Recommendations).
		Int("excluded", report.Summary.Excluded).
		Int("dropped", report.Summary.Dropped).
		Dur("duration", duration).
		Msg("analysis run completed")

	return report, nil
}

func (e *Engine) run(ctx context.Context, runID string, req *Request) (*Report, error) {
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("run %s: %w", runID, err)
	}

	summary := Summary{
		Listings: len(req.Listings),
		Bands:    make(map[models.MatchBand]int),
	}

	listings := e.admit(req.Listings, req.Preferences, &summary)

	m, err := matcher.New(e.config.Matcher, matcher.NewStore(), e.logger)
	if err != nil {
		return nil, fmt.Errorf("run %s: %w", runID, err)
	}

	matches := make([]models.ListingMatch, 0, len(listings))
	matched := make([]models.Listing, 0, len(listings))
	for i := range listings {
		if err := ctx.Err(); err != nil {
			return nil, fmt.Errorf("run %s: %w", runID, err)
		}
		l := &listings[i]
		res, err := matchListing(m, l)
		if err != nil {
			summary.Excluded++
			e.logger.Warn().Err(err).Str("run_id", runID).Str("listing", l.Key()).Msg("listing excluded from matching")
			continue
		}
		matches = append(matches, models.ListingMatch{
			ListingID:   l.Key(),
			Fingerprint: res.Item.Fingerprint,
			Confidence:  res.Confidence,
			Band:        res.Band,
			Created:     res.Created,
		})
		matched = append(matched, *l)
		if res.Created {
			summary.CanonicalCreated++
		} else {
			summary.Matched++
			summary.Bands[res.Band]++
		}
	}
	items := m.Store().Items()
	summary.CanonicalItems = len(items)

	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("run %s: %w", runID, err)
	}

	// Excluded listings take no further part in the run.
	groups := analyzer.GroupBySeller(matched, req.Sellers)
	stats := analyzer.NewRunStats(matched)
	analyses := e.analyzer.Analyze(groups, stats, req.Preferences)
	summary.Sellers = len(analyses)

	result, err := e.recommend.Generate(ctx, &recommend.Input{
		RunID:       runID,
		Analyses:    analyses,
		Items:       items,
		Listings:    matched,
		Matches:     matches,
		Stats:       stats,
		Preferences: req.Preferences,
	})
	if err != nil {
		return nil, fmt.Errorf("run %s: %w", runID, err)
	}
	summary.Recommendations = len(result.Recommendations)
	summary.Dropped = result.Dropped

	return &Report{
		RunID:           runID,
		CreatedAt:       time.Now().UTC(),
		Preferences:     req.Preferences,
		CanonicalItems:  items,
		Matches:         matches,
		Sellers:         analyses,
		Recommendations: result.Recommendations,
		Summary:         summary,
	}, nil
}

// admit drops repeated listing keys and listings below the minimum grades.
func (e *Engine) admit(in []models.Listing, prefs models.Preferences, summary *Summary) []models.Listing {
	seen := make(map[string]struct{}, len(in))
	out := make([]models.Listing, 0, len(in))
	for i := range in {
		l := in[i]
		if _, dup := seen[l.Key()]; dup {
			summary.Duplicates++
			continue
		}
		seen[l.Key()] = struct{}{}
		if !l.RecordCondition.AtLeast(prefs.MinRecordCondition) || !l.SleeveCondition.AtLeast(prefs.MinSleeveCondition) {
			summary.FilteredByCondition++
			continue
		}
		out = append(out, l)
	}
	return out
}

// matchListing turns a panic inside the matcher into an error so one bad
// listing cannot abort the run.
func matchListing(m *matcher.Matcher, l *models.Listing) (res matcher.Result, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("matching listing %s panicked: %v", l.Key(), r)
		}
	}()
	return m.Match(l)
}

func (e *Engine) recordMetrics(r *Report) {
	bands := make(map[string]int, len(r.Summary.Bands))
	for band, n := range r.Summary.Bands {
		bands[string(band)] = n
	}
	metrics.RecordMatches(bands, r.Summary.CanonicalCreated)
	metrics.RecordExcluded("match_error", r.Summary.Excluded)
	metrics.RecordExcluded("condition", r.Summary.FilteredByCondition)

	byType := make(map[string]int)
	for i := range r.Recommendations {
		byType[string(r.Recommendations[i].Type)]++
	}
	metrics.RecordRecommendations(byType, r.Summary.Dropped)
}
