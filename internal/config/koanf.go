// Cratedigger - Vinyl Marketplace Deal Analysis
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cratedigger

package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/structs"
	"github.com/knadh/koanf/v2"

	"github.com/tomtom215/cratedigger/internal/analyzer"
	"github.com/tomtom215/cratedigger/internal/matcher"
	"github.com/tomtom215/cratedigger/internal/recommend"
)

// DefaultConfigPaths lists config file locations in priority order.
var DefaultConfigPaths = []string{
	"config.yaml",
	"config.yml",
	"/etc/cratedigger/config.yaml",
	"/etc/cratedigger/config.yml",
}

// ConfigPathEnvVar overrides the config file path.
const ConfigPathEnvVar = "CONFIG_PATH"

// DefaultConfig returns the built-in configuration.
func DefaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Host:              "0.0.0.0",
			Port:              8780,
			ReadTimeout:       15 * time.Second,
			WriteTimeout:      30 * time.Second,
			ShutdownTimeout:   10 * time.Second,
			MaxBodyBytes:      8 << 20, // 8MB
			RateLimitRequests: 120,
			RateLimitWindow:   time.Minute,
			CORSOrigins:       []string{"*"},
			Environment:       "development",
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
		},
		Storage: StorageConfig{
			Path: "/data/cratedigger",
		},
		NATS: NATSConfig{
			Enabled:                    false,
			EmbeddedServer:             true,
			URL:                        "nats://127.0.0.1:4222",
			Host:                       "127.0.0.1",
			Port:                       4222,
			StoreDir:                   "/data/nats/jetstream",
			MaxMemory:                  256 << 20, // 256MB
			MaxStore:                   1 << 30,   // 1GB
			SubscribersCount:           2,
			QueueGroup:                 "analyzers",
			AckWaitTimeout:             time.Minute,
			SearchTopic:                "search.completed",
			ResultTopic:                "analysis.completed",
			PoisonQueueTopic:           "dlq.analysis",
			RouterRetryCount:           3,
			RouterRetryInitialInterval: 100 * time.Millisecond,
			RouterCloseTimeout:         30 * time.Second,
			RunsPerSecond:              10,
			RunBurst:                   5,
			BreakerMaxFailures:         5,
			BreakerTimeout:             30 * time.Second,
		},
		Analysis: AnalysisConfig{
			DefaultLocation: "worldwide",
			Currency:        "USD",
			BatchWorkers:    4,
			RunTimeout:      30 * time.Second,
		},
		Matching:  *matcher.DefaultConfig(),
		Scoring:   *analyzer.DefaultConfig(),
		Recommend: *recommend.DefaultConfig(),
	}
}

// LoadWithKoanf loads configuration with precedence ENV > file > defaults
// and validates the result.
func LoadWithKoanf() (*Config, error) {
	return load(findConfigFile())
}

// LoadFile loads configuration from an explicit YAML path plus environment.
func LoadFile(path string) (*Config, error) {
	return load(path)
}

func load(configPath string) (*Config, error) {
	k := koanf.New(".")

	if err := k.Load(structs.Provider(DefaultConfig(), "koanf"), nil); err != nil {
		return nil, fmt.Errorf("failed to load defaults: %w", err)
	}

	if configPath != "" {
		if err := k.Load(file.Provider(configPath), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("failed to load config file %s: %w", configPath, err)
		}
	}

	// HTTP_PORT -> server.port, NATS_URL -> nats.url
	if err := k.Load(env.Provider("", ".", envTransformFunc), nil); err != nil {
		return nil, fmt.Errorf("failed to load environment variables: %w", err)
	}

	if err := processSliceFields(k); err != nil {
		return nil, fmt.Errorf("failed to process slice fields: %w", err)
	}

	cfg := &Config{}
	if err := k.Unmarshal("", cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal configuration: %w", err)
	}
	mergeTableDefaults(cfg, DefaultConfig())

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return cfg, nil
}

// mergeTableDefaults fills keys missing from the keyed scoring tables with
// their defaults. A file that sets one pair of a table replaces the whole
// map in koanf, so the remaining pairs are restored here.
func mergeTableDefaults(cfg, defaults *Config) {
	tables := []struct {
		dst *map[string]float64
		src map[string]float64
	}{
		{&cfg.Scoring.Location.CrossRegion, defaults.Scoring.Location.CrossRegion},
		{&cfg.Scoring.Shipping.Domestic, defaults.Scoring.Shipping.Domestic},
		{&cfg.Scoring.Shipping.IntraRegion, defaults.Scoring.Shipping.IntraRegion},
		{&cfg.Scoring.Shipping.CrossRegion, defaults.Scoring.Shipping.CrossRegion},
	}
	for _, t := range tables {
		if *t.dst == nil {
			*t.dst = make(map[string]float64, len(t.src))
		}
		for key, v := range t.src {
			if !hasKeyFold(*t.dst, key) {
				(*t.dst)[key] = v
			}
		}
	}
}

func hasKeyFold(m map[string]float64, key string) bool {
	for k := range m {
		if strings.EqualFold(k, key) {
			return true
		}
	}
	return false
}

// findConfigFile returns CONFIG_PATH if it exists, else the first default
// path that exists, else "".
func findConfigFile() string {
	if envPath := os.Getenv(ConfigPathEnvVar); envPath != "" {
		if _, err := os.Stat(envPath); err == nil {
			return envPath
		}
	}

	for _, path := range DefaultConfigPaths {
		if _, err := os.Stat(path); err == nil {
			return path
		}
	}

	return ""
}

// sliceConfigPaths are parsed from comma-separated env values.
var sliceConfigPaths = []string{
	"server.cors_origins",
	"matching.stop_words",
}

// processSliceFields splits comma-separated string values of slice fields.
// YAML already delivers slices; env vars arrive as strings.
func processSliceFields(k *koanf.Koanf) error {
	for _, path := range sliceConfigPaths {
		strVal, ok := k.Get(path).(string)
		if !ok || strVal == "" {
			continue
		}
		parts := strings.Split(strVal, ",")
		trimmed := make([]string, 0, len(parts))
		for _, p := range parts {
			if p = strings.TrimSpace(p); p != "" {
				trimmed = append(trimmed, p)
			}
		}
		if len(trimmed) > 0 {
			if err := k.Set(path, trimmed); err != nil {
				return fmt.Errorf("failed to set %s: %w", path, err)
			}
		}
	}
	return nil
}

// envMappings maps accepted environment variables (lowercased) to config
// paths. Anything not listed is ignored.
var envMappings = map[string]string{
	// Server
	"http_host":              "server.host",
	"http_port":              "server.port",
	"http_read_timeout":      "server.read_timeout",
	"http_write_timeout":     "server.write_timeout",
	"http_shutdown_timeout":  "server.shutdown_timeout",
	"http_max_body_bytes":    "server.max_body_bytes",
	"rate_limit_requests":    "server.rate_limit_requests",
	"rate_limit_window":      "server.rate_limit_window",
	"disable_rate_limit":     "server.rate_limit_disabled",
	"cors_origins":           "server.cors_origins",
	"environment":            "server.environment",

	// Logging
	"log_level":  "logging.level",
	"log_format": "logging.format",
	"log_caller": "logging.caller",

	// Storage
	"badger_path":      "storage.path",
	"badger_in_memory": "storage.in_memory",

	// NATS
	"nats_enabled":            "nats.enabled",
	"nats_embedded":           "nats.embedded_server",
	"nats_url":                "nats.url",
	"nats_host":               "nats.host",
	"nats_port":               "nats.port",
	"nats_store_dir":          "nats.store_dir",
	"nats_max_memory":         "nats.max_memory",
	"nats_max_store":          "nats.max_store",
	"nats_subscribers":        "nats.subscribers_count",
	"nats_queue_group":        "nats.queue_group",
	"nats_ack_wait":           "nats.ack_wait_timeout",
	"nats_search_topic":       "nats.search_topic",
	"nats_result_topic":       "nats.result_topic",
	"nats_poison_queue_topic": "nats.poison_queue_topic",
	"nats_retry_count":        "nats.router_retry_count",
	"nats_runs_per_second":    "nats.runs_per_second",
	"nats_run_burst":          "nats.run_burst",

	// Analysis
	"default_location":     "analysis.default_location",
	"min_record_condition": "analysis.min_record_condition",
	"min_sleeve_condition": "analysis.min_sleeve_condition",
	"analysis_currency":    "analysis.currency",
	"batch_workers":        "analysis.batch_workers",
	"run_timeout":          "analysis.run_timeout",

	// Matching
	"match_stop_words":    "matching.stop_words",
	"match_max_year_diff": "matching.max_year_diff",

	// Recommendation
	"best_price_margin":   "recommend.best_price_margin",
	"high_value_quantile": "recommend.high_value_quantile",
	"high_feedback_min":   "recommend.high_feedback_min",
}

// envTransformFunc maps an environment variable name to a config path, or
// "" to skip it.
func envTransformFunc(key string) string {
	return envMappings[strings.ToLower(key)]
}

// WatchConfigFile invokes callback whenever the file at path changes. The
// caller synchronizes access to any configuration it reloads.
func WatchConfigFile(path string, callback func()) error {
	return file.Provider(path).Watch(func(_ interface{}, err error) {
		if err != nil {
			return
		}
		callback()
	})
}
