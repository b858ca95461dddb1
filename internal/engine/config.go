// Cratedigger - Vinyl Marketplace Deal Analysis
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cratedigger

package engine

import (
	"errors"
	"fmt"

	"github.com/tomtom215/cratedigger/internal/analyzer"
	"github.com/tomtom215/cratedigger/internal/matcher"
	"github.com/tomtom215/cratedigger/internal/recommend"
)

// Config bundles the component configurations used by every run.
type Config struct {
	Matcher   *matcher.Config
	Analyzer  *analyzer.Config
	Recommend *recommend.Config

	// BatchWorkers bounds the number of runs BatchRunner executes at once.
	BatchWorkers int
}

// DefaultConfig returns the default configuration of every component.
func DefaultConfig() *Config {
	return &Config{
		Matcher:      matcher.DefaultConfig(),
		Analyzer:     analyzer.DefaultConfig(),
		Recommend:    recommend.DefaultConfig(),
		BatchWorkers: 4,
	}
}

// Validate checks each component configuration.
func (c *Config) Validate() error {
	if c.Matcher == nil || c.Analyzer == nil || c.Recommend == nil {
		return errors.New("matcher, analyzer and recommend configs are required")
	}
	if err := c.Matcher.Validate(); err != nil {
		return fmt.Errorf("matcher: %w", err)
	}
	if err := c.Analyzer.Validate(); err != nil {
		return fmt.Errorf("analyzer: %w", err)
	}
	if err := c.Recommend.Validate(); err != nil {
		return fmt.Errorf("recommend: %w", err)
	}
	if c.BatchWorkers < 1 {
		return fmt.Errorf("batch workers must be at least 1, got %d", c.BatchWorkers)
	}
	return nil
}
