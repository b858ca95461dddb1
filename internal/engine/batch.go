// Cratedigger - Vinyl Marketplace Deal Analysis
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cratedigger

package engine

import (
	"context"

	"golang.org/x/sync/errgroup"
)

// BatchResult pairs one run's report with its error.
type BatchResult struct {
	Report *Report
	Err    error
}

// BatchRunner executes independent runs concurrently.
type BatchRunner struct {
	engine *Engine
	limit  int
}

// NewBatchRunner creates a runner executing at most limit runs at once.
// A limit below 1 uses the engine's configured worker count.
func NewBatchRunner(e *Engine, limit int) *BatchRunner {
	if limit < 1 {
		limit = e.config.BatchWorkers
	}
	return &BatchRunner{engine: e, limit: limit}
}

// RunAll executes every request and returns results in request order. A
// failing run does not stop the others; cancelling ctx stops them all.
func (b *BatchRunner) RunAll(ctx context.Context, reqs []Request) []BatchResult {
	results := make([]BatchResult, len(reqs))

	var g errgroup.Group
	g.SetLimit(b.limit)
	for i := range reqs {
		g.Go(func() error {
			report, err := b.engine.Run(ctx, reqs[i])
			results[i] = BatchResult{Report: report, Err: err}
			return nil
		})
	}
	_ = g.Wait()

	return results
}
