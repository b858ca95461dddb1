// Cratedigger - Vinyl Marketplace Deal Analysis
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cratedigger

package config

import (
	"time"

	"github.com/tomtom215/cratedigger/internal/analyzer"
	"github.com/tomtom215/cratedigger/internal/engine"
	"github.com/tomtom215/cratedigger/internal/matcher"
	"github.com/tomtom215/cratedigger/internal/models"
	"github.com/tomtom215/cratedigger/internal/recommend"
)

// Config holds all service configuration.
type Config struct {
	Server    ServerConfig     `koanf:"server"`
	Logging   LoggingConfig    `koanf:"logging"`
	Storage   StorageConfig    `koanf:"storage"`
	NATS      NATSConfig       `koanf:"nats"`
	Analysis  AnalysisConfig   `koanf:"analysis"`
	Matching  matcher.Config   `koanf:"matching"`
	Scoring   analyzer.Config  `koanf:"scoring"`
	Recommend recommend.Config `koanf:"recommend"`
}

// ServerConfig configures the HTTP API.
type ServerConfig struct {
	Host            string        `koanf:"host"`
	Port            int           `koanf:"port"`
	ReadTimeout     time.Duration `koanf:"read_timeout"`
	WriteTimeout    time.Duration `koanf:"write_timeout"`
	ShutdownTimeout time.Duration `koanf:"shutdown_timeout"`
	MaxBodyBytes    int64         `koanf:"max_body_bytes"`

	RateLimitRequests int           `koanf:"rate_limit_requests"`
	RateLimitWindow   time.Duration `koanf:"rate_limit_window"`
	RateLimitDisabled bool          `koanf:"rate_limit_disabled"`

	CORSOrigins []string `koanf:"cors_origins"`
	Environment string   `koanf:"environment"`
}

// LoggingConfig configures the global logger.
type LoggingConfig struct {
	Level  string `koanf:"level"`
	Format string `koanf:"format"`
	Caller bool   `koanf:"caller"`
}

// StorageConfig configures the run store.
type StorageConfig struct {
	Path     string `koanf:"path"`
	InMemory bool   `koanf:"in_memory"`
}

// NATSConfig configures event transport. When Enabled is false the event
// router runs on an in-process channel.
type NATSConfig struct {
	Enabled        bool   `koanf:"enabled"`
	EmbeddedServer bool   `koanf:"embedded_server"`
	URL            string `koanf:"url"`
	Host           string `koanf:"host"`
	Port           int    `koanf:"port"`
	StoreDir       string `koanf:"store_dir"`
	MaxMemory      int64  `koanf:"max_memory"`
	MaxStore       int64  `koanf:"max_store"`

	SubscribersCount int           `koanf:"subscribers_count"`
	QueueGroup       string        `koanf:"queue_group"`
	AckWaitTimeout   time.Duration `koanf:"ack_wait_timeout"`

	SearchTopic      string `koanf:"search_topic"`
	ResultTopic      string `koanf:"result_topic"`
	PoisonQueueTopic string `koanf:"poison_queue_topic"`

	RouterRetryCount           int           `koanf:"router_retry_count"`
	RouterRetryInitialInterval time.Duration `koanf:"router_retry_initial_interval"`
	RouterCloseTimeout         time.Duration `koanf:"router_close_timeout"`
	RunsPerSecond              float64       `koanf:"runs_per_second"`
	RunBurst                   int           `koanf:"run_burst"`

	BreakerMaxFailures uint32        `koanf:"breaker_max_failures"`
	BreakerTimeout     time.Duration `koanf:"breaker_timeout"`
}

// AnalysisConfig holds run-level defaults.
type AnalysisConfig struct {
	// DefaultLocation applies when a request carries no location preference.
	DefaultLocation    string        `koanf:"default_location"`
	MinRecordCondition string        `koanf:"min_record_condition"`
	MinSleeveCondition string        `koanf:"min_sleeve_condition"`
	Currency           string        `koanf:"currency"`
	BatchWorkers       int           `koanf:"batch_workers"`
	RunTimeout         time.Duration `koanf:"run_timeout"`
}

// EngineConfig builds the engine configuration from the loaded sections.
func (c *Config) EngineConfig() *engine.Config {
	m := c.Matching
	m.StopWords = append([]string(nil), c.Matching.StopWords...)
	a := c.Scoring
	r := c.Recommend
	return &engine.Config{
		Matcher:      &m,
		Analyzer:     &a,
		Recommend:    r.Clone(),
		BatchWorkers: c.Analysis.BatchWorkers,
	}
}

// ApplyDefaults fills preference fields a request left unset.
func (a *AnalysisConfig) ApplyDefaults(p models.Preferences) models.Preferences {
	if p.Location == "" {
		p.Location = a.DefaultLocation
	}
	if p.MinRecordCondition == models.ConditionUnknown {
		p.MinRecordCondition = models.ParseCondition(a.MinRecordCondition)
	}
	if p.MinSleeveCondition == models.ConditionUnknown {
		p.MinSleeveCondition = models.ParseCondition(a.MinSleeveCondition)
	}
	if p.Currency == "" {
		p.Currency = a.Currency
	}
	return p
}
