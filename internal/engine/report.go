// Cratedigger - Vinyl Marketplace Deal Analysis
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cratedigger

package engine

import (
	"time"

	"github.com/tomtom215/cratedigger/internal/models"
)

// Request is the input of one analysis run.
type Request struct {
	// ID identifies the run. A random id is assigned when empty.
	ID          string             `json:"id,omitempty" validate:"omitempty,max=128"`
	Listings    []models.Listing   `json:"listings" validate:"required,min=1,max=10000,dive"`
	Sellers     []models.Seller    `json:"sellers,omitempty" validate:"omitempty,max=10000,dive"`
	Preferences models.Preferences `json:"preferences"`
}

// Summary holds the observability counters of one run.
type Summary struct {
	Listings            int                      `json:"listings"`
	Duplicates          int                      `json:"duplicates"`
	FilteredByCondition int                      `json:"filtered_by_condition"`
	Excluded            int                      `json:"excluded"`
	Matched             int                      `json:"matched"`
	CanonicalItems      int                      `json:"canonical_items"`
	CanonicalCreated    int                      `json:"canonical_created"`
	Bands               map[models.MatchBand]int `json:"bands"`
	Sellers             int                      `json:"sellers"`
	Recommendations     int                      `json:"recommendations"`
	Dropped             int                      `json:"dropped"`
	DurationMS          int64                    `json:"duration_ms"`
}

// Report is the complete output of one run. Every collection is ordered
// deterministically: canonical items by creation, sellers by rank and
// recommendations by score.
type Report struct {
	RunID           string                  `json:"run_id"`
	CreatedAt       time.Time               `json:"created_at"`
	Preferences     models.Preferences      `json:"preferences"`
	CanonicalItems  []models.CanonicalItem  `json:"canonical_items"`
	Matches         []models.ListingMatch   `json:"matches"`
	Sellers         []models.SellerAnalysis `json:"sellers"`
	Recommendations []models.Recommendation `json:"recommendations"`
	Summary         Summary                 `json:"summary"`
}

// TopRecommendation returns the highest ranked recommendation, if any.
func (r *Report) TopRecommendation() (models.Recommendation, bool) {
	if len(r.Recommendations) == 0 {
		return models.Recommendation{}, false
	}
	return r.Recommendations[0], true
}
