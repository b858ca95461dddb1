// Cratedigger - Vinyl Marketplace Deal Analysis
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cratedigger

package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/tomtom215/cratedigger/internal/analyzer"
	"github.com/tomtom215/cratedigger/internal/models"
)

// ErrInvalidConfig wraps every validation failure.
var ErrInvalidConfig = errors.New("invalid configuration")

// Validate checks every section.
func (c *Config) Validate() error {
	validators := []func() error{
		c.validateServer,
		c.validateLogging,
		c.validateStorage,
		c.validateNATS,
		c.validateAnalysis,
		c.validateScoring,
	}
	for _, validator := range validators {
		if err := validator(); err != nil {
			return fmt.Errorf("%w: %w", ErrInvalidConfig, err)
		}
	}
	return nil
}

// Rate limit bounds
const (
	minRateLimitRequests = 1
	maxRateLimitRequests = 100000
	minRateLimitWindow   = time.Second
	maxRateLimitWindow   = time.Hour
)

func (c *Config) validateServer() error {
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("HTTP_PORT must be between 1 and 65535, got %d", c.Server.Port)
	}
	if c.Server.MaxBodyBytes <= 0 {
		return errors.New("HTTP_MAX_BODY_BYTES must be positive")
	}
	return c.validateRateLimits()
}

func (c *Config) validateRateLimits() error {
	if c.Server.RateLimitDisabled {
		return nil
	}
	if c.Server.RateLimitRequests < minRateLimitRequests || c.Server.RateLimitRequests > maxRateLimitRequests {
		return fmt.Errorf("RATE_LIMIT_REQUESTS must be between %d and %d", minRateLimitRequests, maxRateLimitRequests)
	}
	if c.Server.RateLimitWindow < minRateLimitWindow || c.Server.RateLimitWindow > maxRateLimitWindow {
		return fmt.Errorf("RATE_LIMIT_WINDOW must be between %v and %v", minRateLimitWindow, maxRateLimitWindow)
	}
	return nil
}

// IsProduction reports whether the server runs in production mode.
func (c *Config) IsProduction() bool {
	return strings.EqualFold(c.Server.Environment, "production")
}

// ShouldWarnAboutCORS reports a wildcard origin in production.
func (c *Config) ShouldWarnAboutCORS() bool {
	if !c.IsProduction() {
		return false
	}
	for _, origin := range c.Server.CORSOrigins {
		if origin == "*" {
			return true
		}
	}
	return false
}

var validLogLevels = map[string]bool{
	"trace": true,
	"debug": true,
	"info":  true,
	"warn":  true,
	"error": true,
}

var validLogFormats = map[string]bool{
	"json":    true,
	"console": true,
}

func (c *Config) validateLogging() error {
	if !validLogLevels[c.Logging.Level] {
		return fmt.Errorf("LOG_LEVEL must be one of: trace, debug, info, warn, error")
	}
	if c.Logging.Format != "" && !validLogFormats[c.Logging.Format] {
		return fmt.Errorf("LOG_FORMAT must be one of: json, console")
	}
	return nil
}

func (c *Config) validateStorage() error {
	if !c.Storage.InMemory && c.Storage.Path == "" {
		return errors.New("BADGER_PATH is required unless BADGER_IN_MEMORY=true")
	}
	return nil
}

// NATS limits
const (
	natsMinMemory      = 16 * 1024 * 1024  // 16MB
	natsMinStore       = 64 * 1024 * 1024  // 64MB
	natsMaxSubscribers = 32
)

func (c *Config) validateNATS() error {
	if !c.NATS.Enabled {
		return nil
	}
	if err := validateNATSURL(c.NATS.URL); err != nil {
		return fmt.Errorf("NATS_URL is invalid: %w", err)
	}
	if c.NATS.SearchTopic == "" || c.NATS.ResultTopic == "" || c.NATS.PoisonQueueTopic == "" {
		return errors.New("NATS search, result and poison queue topics are required")
	}
	if c.NATS.SearchTopic == c.NATS.ResultTopic {
		return errors.New("NATS_SEARCH_TOPIC and NATS_RESULT_TOPIC must differ")
	}
	if c.NATS.SubscribersCount < 1 || c.NATS.SubscribersCount > natsMaxSubscribers {
		return fmt.Errorf("NATS_SUBSCRIBERS must be between 1 and %d", natsMaxSubscribers)
	}
	if c.NATS.RunsPerSecond < 0 {
		return errors.New("NATS_RUNS_PER_SECOND must not be negative")
	}
	if c.NATS.EmbeddedServer {
		if c.NATS.MaxMemory < natsMinMemory {
			return fmt.Errorf("NATS_MAX_MEMORY must be at least %d bytes", natsMinMemory)
		}
		if c.NATS.MaxStore < natsMinStore {
			return fmt.Errorf("NATS_MAX_STORE must be at least %d bytes", natsMinStore)
		}
		if c.NATS.StoreDir == "" {
			return errors.New("NATS_STORE_DIR is required for the embedded server")
		}
	}
	return nil
}

func (c *Config) validateAnalysis() error {
	for name, raw := range map[string]string{
		"MIN_RECORD_CONDITION": c.Analysis.MinRecordCondition,
		"MIN_SLEEVE_CONDITION": c.Analysis.MinSleeveCondition,
	} {
		if raw != "" && !models.ParseCondition(raw).Known() {
			return fmt.Errorf("%s %q is not a recognized grade", name, raw)
		}
	}
	if len(c.Analysis.Currency) != 3 {
		return fmt.Errorf("ANALYSIS_CURRENCY must be a 3-letter code, got %q", c.Analysis.Currency)
	}
	if c.Analysis.BatchWorkers < 1 {
		return errors.New("BATCH_WORKERS must be at least 1")
	}
	if c.Analysis.RunTimeout <= 0 {
		return errors.New("RUN_TIMEOUT must be positive")
	}
	return nil
}

// validateScoring builds the analyzer tables once so that table errors
// surface at startup, and checks the other component sections.
func (c *Config) validateScoring() error {
	if err := c.Matching.Validate(); err != nil {
		return fmt.Errorf("matching: %w", err)
	}
	if _, err := analyzer.NewTables(&c.Scoring); err != nil {
		return fmt.Errorf("scoring: %w", err)
	}
	if err := c.Recommend.Validate(); err != nil {
		return fmt.Errorf("recommend: %w", err)
	}
	if c.Scoring.Weights != c.Recommend.Weights {
		return fmt.Errorf("scoring.weights %+v and recommend.weights %+v must match", c.Scoring.Weights, c.Recommend.Weights)
	}
	return nil
}
