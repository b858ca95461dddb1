// Cratedigger - Vinyl Marketplace Deal Analysis
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cratedigger

package models

// CanonicalItem is the deduplicated identity of a release within one run.
// Title and Artist hold normalized text.
type CanonicalItem struct {
	Fingerprint   string   `json:"fingerprint"`
	Title         string   `json:"title"`
	Artist        string   `json:"artist"`
	Year          int      `json:"year,omitempty"`
	MatchCount    int      `json:"match_count"`
	AvgConfidence float64  `json:"avg_confidence"`
	Sequence      int      `json:"sequence"`
	ListingIDs    []string `json:"listing_ids"`
}

// MatchBand is the confidence band a listing attached with.
type MatchBand string

const (
	BandExact  MatchBand = "exact"
	BandHigh   MatchBand = "high"
	BandMedium MatchBand = "medium"
	BandLow    MatchBand = "low"
	BandNone   MatchBand = "none"
)

// NeedsReview reports whether downstream review is expected for the band.
func (b MatchBand) NeedsReview() bool {
	return b == BandMedium || b == BandLow
}

// ListingMatch records how one listing resolved to a canonical item.
type ListingMatch struct {
	ListingID   string    `json:"listing_id"`
	Fingerprint string    `json:"fingerprint"`
	Confidence  float64   `json:"confidence"`
	Band        MatchBand `json:"band"`
	Created     bool      `json:"created"`
}
