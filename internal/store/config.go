// Cratedigger - Vinyl Marketplace Deal Analysis
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cratedigger

package store

import (
	"errors"
	"fmt"
	"time"
)

// Config configures the store.
type Config struct {
	// Path is the badger directory. Ignored when InMemory is set.
	Path     string
	InMemory bool

	// SyncWrites fsyncs every commit.
	SyncWrites bool

	// GCInterval is how often Serve runs value log GC. Zero disables it.
	GCInterval time.Duration
	GCRatio    float64
}

// DefaultConfig returns an on-disk configuration rooted at path.
func DefaultConfig(path string) *Config {
	return &Config{
		Path:       path,
		SyncWrites: true,
		GCInterval: 10 * time.Minute,
		GCRatio:    0.5,
	}
}

// Validate checks the configuration.
func (c *Config) Validate() error {
	if !c.InMemory && c.Path == "" {
		return errors.New("path is required for on-disk storage")
	}
	if c.GCInterval < 0 {
		return fmt.Errorf("gc interval must not be negative, got %v", c.GCInterval)
	}
	if c.GCInterval > 0 && (c.GCRatio <= 0 || c.GCRatio >= 1) {
		return fmt.Errorf("gc ratio must be in (0, 1), got %f", c.GCRatio)
	}
	return nil
}
