// Cratedigger - Vinyl Marketplace Deal Analysis
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cratedigger

// Package config loads service configuration in three layers: struct
// defaults, an optional YAML file and environment variables.
//
// # Precedence
//
// Environment variables override the config file, which overrides defaults.
// The file is read from CONFIG_PATH when set, otherwise from the first of
// DefaultConfigPaths that exists.
//
// # Sections
//
//   - server: HTTP listener, timeouts, rate limiting, CORS
//   - logging: level, format, caller
//   - storage: badger directory or in-memory mode
//   - nats: event transport and embedded JetStream server
//   - analysis: default preferences and batch sizing
//   - matching: item matcher weights, thresholds and stop words
//   - scoring: seller analyzer tables and caps
//   - recommend: overall weights, label thresholds and rule parameters
//
// Only environment variables listed in envTransformFunc are read, so
// unrelated variables never leak into configuration.
//
// # Example
//
//	cfg, err := config.LoadWithKoanf()
//	if err != nil {
//	    return err
//	}
//	eng, err := engine.New(cfg.EngineConfig(), logger)
package config
