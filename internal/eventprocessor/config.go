// Cratedigger - Vinyl Marketplace Deal Analysis
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cratedigger

package eventprocessor

import (
	"fmt"
	"strings"
	"time"

	"github.com/tomtom215/cratedigger/internal/config"
)

// Config holds transport, routing and resilience settings.
type Config struct {
	// URL of the NATS server. Ignored by the gochannel transport.
	URL string

	// StreamName is the JetStream stream holding all processor subjects.
	StreamName      string
	StreamMaxAge    time.Duration
	DuplicateWindow time.Duration

	SearchTopic      string
	ResultTopic      string
	PoisonQueueTopic string

	QueueGroup       string
	DurableName      string
	SubscribersCount int
	AckWaitTimeout   time.Duration
	MaxDeliver       int
	MaxReconnects    int
	ReconnectWait    time.Duration

	Router RouterConfig

	// RunsPerSecond throttles analysis runs. Zero disables throttling.
	RunsPerSecond float64
	RunBurst      int

	BreakerMaxFailures uint32
	BreakerTimeout     time.Duration
}

// DefaultConfig returns defaults matching the config package.
func DefaultConfig() *Config {
	return &Config{
		URL:                "nats://127.0.0.1:4222",
		StreamName:         "CRATEDIGGER",
		StreamMaxAge:       7 * 24 * time.Hour,
		DuplicateWindow:    2 * time.Minute,
		SearchTopic:        "search.completed",
		ResultTopic:        "analysis.completed",
		PoisonQueueTopic:   "dlq.analysis",
		QueueGroup:         "analyzers",
		DurableName:        "cratedigger",
		SubscribersCount:   2,
		AckWaitTimeout:     time.Minute,
		MaxDeliver:         5,
		MaxReconnects:      -1,
		ReconnectWait:      2 * time.Second,
		Router:             DefaultRouterConfig(),
		RunsPerSecond:      10,
		RunBurst:           5,
		BreakerMaxFailures: 5,
		BreakerTimeout:     30 * time.Second,
	}
}

// ConfigFromNATS maps the loaded nats section onto a processor config.
func ConfigFromNATS(n *config.NATSConfig) *Config {
	cfg := DefaultConfig()
	cfg.URL = n.URL
	cfg.SearchTopic = n.SearchTopic
	cfg.ResultTopic = n.ResultTopic
	cfg.PoisonQueueTopic = n.PoisonQueueTopic
	cfg.QueueGroup = n.QueueGroup
	cfg.SubscribersCount = n.SubscribersCount
	cfg.AckWaitTimeout = n.AckWaitTimeout
	cfg.Router.RetryMaxRetries = n.RouterRetryCount
	cfg.Router.RetryInitialInterval = n.RouterRetryInitialInterval
	cfg.Router.CloseTimeout = n.RouterCloseTimeout
	cfg.Router.PoisonQueueTopic = n.PoisonQueueTopic
	cfg.RunsPerSecond = n.RunsPerSecond
	cfg.RunBurst = n.RunBurst
	cfg.BreakerMaxFailures = n.BreakerMaxFailures
	cfg.BreakerTimeout = n.BreakerTimeout
	return cfg
}

// Validate checks the configuration.
func (c *Config) Validate() error {
	if c.SearchTopic == "" || c.ResultTopic == "" || c.PoisonQueueTopic == "" {
		return fmt.Errorf("%w: search, result and poison queue topics are required", ErrInvalidConfig)
	}
	if c.SearchTopic == c.ResultTopic || c.SearchTopic == c.PoisonQueueTopic {
		return fmt.Errorf("%w: search topic must differ from result and poison queue topics", ErrInvalidConfig)
	}
	if c.StreamName == "" || strings.ContainsAny(c.StreamName, ". *>") {
		return fmt.Errorf("%w: stream name %q must be non-empty without '.', '*', '>' or spaces", ErrInvalidConfig, c.StreamName)
	}
	if c.DurableName == "" || strings.ContainsAny(c.DurableName, ". *>") {
		return fmt.Errorf("%w: durable name %q must be non-empty without '.', '*', '>' or spaces", ErrInvalidConfig, c.DurableName)
	}
	if c.SubscribersCount < 1 {
		return fmt.Errorf("%w: subscribers count must be at least 1", ErrInvalidConfig)
	}
	if c.RunsPerSecond < 0 {
		return fmt.Errorf("%w: runs per second must not be negative", ErrInvalidConfig)
	}
	if c.RunsPerSecond > 0 && c.RunBurst < 1 {
		return fmt.Errorf("%w: run burst must be at least 1 when throttling", ErrInvalidConfig)
	}
	if c.BreakerMaxFailures == 0 {
		return fmt.Errorf("%w: breaker max failures must be at least 1", ErrInvalidConfig)
	}
	if c.Router.RetryMaxRetries < 0 {
		return fmt.Errorf("%w: retry count must not be negative", ErrInvalidConfig)
	}
	return nil
}

// Subjects lists every subject the stream must capture.
func (c *Config) Subjects() []string {
	return []string{c.SearchTopic, c.ResultTopic, c.PoisonQueueTopic}
}

// durableFor derives a per-topic consumer name. JetStream consumer names
// cannot contain dots.
func durableFor(durable, topic string) string {
	return durable + "-" + strings.NewReplacer(".", "-", "*", "all", ">", "rest").Replace(topic)
}

// ServerConfig configures the embedded NATS server.
type ServerConfig struct {
	Host      string
	Port      int
	StoreDir  string
	MaxMemory int64
	MaxStore  int64
}

// ServerConfigFromNATS maps the loaded nats section onto a server config.
func ServerConfigFromNATS(n *config.NATSConfig) *ServerConfig {
	return &ServerConfig{
		Host:      n.Host,
		Port:      n.Port,
		StoreDir:  n.StoreDir,
		MaxMemory: n.MaxMemory,
		MaxStore:  n.MaxStore,
	}
}
