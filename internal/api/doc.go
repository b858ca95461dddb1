// Cratedigger - Vinyl Marketplace Deal Analysis
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cratedigger

// Package api exposes the analysis engine and the run store over HTTP.
//
// Routes:
//
//	POST /api/v1/analyses                              run and store an analysis
//	GET  /api/v1/analyses                              list stored runs, newest first
//	GET  /api/v1/analyses/{runID}                      full report
//	DELETE /api/v1/analyses/{runID}                    remove a stored run
//	GET  /api/v1/analyses/{runID}/recommendations      ?type=&limit=
//	GET  /api/v1/analyses/{runID}/sellers              seller analyses by rank
//	POST /api/v1/searches                              queue a search for the event processor
//	GET  /api/v1/canonical-items/{fingerprint}         latest canonical item view
//	GET  /health                                       liveness and store status
//	GET  /metrics                                      Prometheus exposition
//
// Every JSON response uses the APIResponse envelope.
package api
