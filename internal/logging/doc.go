// Cratedigger - Vinyl Marketplace Deal Analysis
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cratedigger

// Package logging holds the process-wide zerolog logger and the adapters
// that route third-party logging (slog for suture, watermill's
// LoggerAdapter) into it.
//
// Components receive a zerolog.Logger in their constructors and tag it with
// a component field. The package-level helpers exist for main packages and
// for code without an injected logger.
//
//	logging.Init(logging.Config{Level: "info", Format: "json"})
//	logging.Info().Str("addr", addr).Msg("server listening")
//	logging.Ctx(ctx).Warn().Err(err).Msg("run aborted")
//
// Always finish an event with Msg or Send; an unfinished event is dropped.
package logging
