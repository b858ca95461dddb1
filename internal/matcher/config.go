// Cratedigger - Vinyl Marketplace Deal Analysis
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cratedigger

package matcher

import (
	"errors"
	"fmt"
)

// Weights controls how title, artist and year similarity combine.
type Weights struct {
	Title  float64 `koanf:"title"`
	Artist float64 `koanf:"artist"`
	Year   float64 `koanf:"year"`
}

// Thresholds are the inclusive lower bounds of each confidence band.
type Thresholds struct {
	Exact  float64 `koanf:"exact"`
	High   float64 `koanf:"high"`
	Medium float64 `koanf:"medium"`
	Low    float64 `koanf:"low"`
}

// Config holds matcher tuning.
type Config struct {
	Weights     Weights    `koanf:"weights"`
	Thresholds  Thresholds `koanf:"thresholds"`
	MaxYearDiff int        `koanf:"max_year_diff"`
	StopWords   []string   `koanf:"stop_words"`
}

// DefaultConfig returns the production matcher configuration.
func DefaultConfig() *Config {
	return &Config{
		Weights: Weights{
			Title:  0.5,
			Artist: 0.4,
			Year:   0.1,
		},
		Thresholds: Thresholds{
			Exact:  95,
			High:   85,
			Medium: 75,
			Low:    65,
		},
		MaxYearDiff: 10,
		StopWords:   append([]string(nil), DefaultStopWords...),
	}
}

// Validate checks weights and band ordering.
func (c *Config) Validate() error {
	if c.Weights.Title < 0 || c.Weights.Artist < 0 || c.Weights.Year < 0 {
		return errors.New("matching weights must be non-negative")
	}
	if c.Weights.Title+c.Weights.Artist <= 0 {
		return errors.New("matching weights: title + artist must be positive")
	}
	t := c.Thresholds
	if t.Low <= 0 || t.Exact > 100 {
		return fmt.Errorf("matching thresholds must lie in (0, 100], got low=%.1f exact=%.1f", t.Low, t.Exact)
	}
	if !(t.Low < t.Medium && t.Medium < t.High && t.High < t.Exact) {
		return fmt.Errorf("matching thresholds must be strictly increasing: low=%.1f medium=%.1f high=%.1f exact=%.1f",
			t.Low, t.Medium, t.High, t.Exact)
	}
	if ceiling := c.yearlessCeiling(); ceiling < t.Low {
		return fmt.Errorf("matching weights cap listings without a year at %.1f, below low threshold %.1f", ceiling, t.Low)
	}
	if c.MaxYearDiff < 0 {
		return fmt.Errorf("max_year_diff must be non-negative, got %d", c.MaxYearDiff)
	}
	return nil
}

// Band maps a confidence to its band.
func (t Thresholds) Band(confidence float64) Band {
	switch {
	case confidence >= t.Exact:
		return BandExact
	case confidence >= t.High:
		return BandHigh
	case confidence >= t.Medium:
		return BandMedium
	case confidence >= t.Low:
		return BandLow
	default:
		return BandNone
	}
}

// yearlessCeiling is the best score a pair can reach when one side has no
// year: a perfect title and artist match over the full weight.
func (c *Config) yearlessCeiling() float64 {
	w := c.Weights
	return (w.Title + w.Artist) / (w.Title + w.Artist + w.Year) * 100
}
