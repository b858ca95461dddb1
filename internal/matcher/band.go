// Cratedigger - Vinyl Marketplace Deal Analysis
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cratedigger

package matcher

import "github.com/tomtom215/cratedigger/internal/models"

// Band is a confidence band. BandNone means the listing did not attach.
type Band = models.MatchBand

const (
	BandExact  = models.BandExact
	BandHigh   = models.BandHigh
	BandMedium = models.BandMedium
	BandLow    = models.BandLow
	BandNone   = models.BandNone
)
