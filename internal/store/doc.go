// Cratedigger - Vinyl Marketplace Deal Analysis
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cratedigger

// Package store persists completed analysis runs in BadgerDB.
//
// A run is written in a single transaction: the report, one key per
// recommendation, one key per seller analysis, a time-ordered index entry
// and one upsert per canonical item fingerprint. Either every key of a run
// is visible or none is. Saving the same run again replaces its keys.
//
// Key layout:
//
//	run:<run id>                     full report
//	runts:<unix nanos BE>:<run id>   RunInfo, newest last
//	rec:<run id>:<recommendation id> recommendation
//	seller:<run id>:<seller key>     seller analysis
//	canon:<blake2b-256 hex>          latest CanonicalRecord for a fingerprint
//
// Fingerprints are hashed because they are unbounded normalized text.
package store
