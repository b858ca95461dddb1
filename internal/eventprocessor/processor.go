// Cratedigger - Vinyl Marketplace Deal Analysis
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cratedigger

package eventprocessor

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/rs/zerolog"
	gobreaker "github.com/sony/gobreaker/v2"
	"golang.org/x/time/rate"

	"github.com/tomtom215/cratedigger/internal/config"
	"github.com/tomtom215/cratedigger/internal/engine"
	"github.com/tomtom215/cratedigger/internal/logging"
	"github.com/tomtom215/cratedigger/internal/metrics"
	"github.com/tomtom215/cratedigger/internal/validation"
)

// Runner runs one analysis. Satisfied by *engine.Engine.
type Runner interface {
	Run(ctx context.Context, req engine.Request) (*engine.Report, error)
}

// RunSaver persists a completed report. Satisfied by *store.Store.
type RunSaver interface {
	SaveRun(ctx context.Context, report *engine.Report) error
}

// Stats are cumulative message counters.
type Stats struct {
	Processed int64 `json:"processed"`
	Failed    int64 `json:"failed"`
	Poisoned  int64 `json:"poisoned"`
}

// Processor consumes search.completed events, runs and stores analyses and
// publishes analysis.completed results.
type Processor struct {
	config    *Config
	transport *Transport
	runner    Runner
	saver     RunSaver
	defaults  config.AnalysisConfig
	publisher *Publisher
	limiter   *rate.Limiter
	store     *gobreaker.CircuitBreaker[interface{}]
	logger    zerolog.Logger
	wmLogger  watermill.LoggerAdapter

	ready     chan struct{}
	readyOnce sync.Once

	processed atomic.Int64
	failed    atomic.Int64
	poisoned  atomic.Int64
}

// NewProcessor creates a processor. A nil cfg uses DefaultConfig.
//
//nolint:gocritic // logger passed by value is acceptable for zerolog
func NewProcessor(cfg *Config, transport *Transport, runner Runner, saver RunSaver, defaults config.AnalysisConfig, logger zerolog.Logger) (*Processor, error) {
	if cfg == nil {
		cfg = DefaultConfig()
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	if transport == nil || runner == nil || saver == nil {
		return nil, errors.New("transport, runner and saver are required")
	}

	logger = logger.With().Str("component", "eventprocessor").Logger()

	limit := rate.Inf
	if cfg.RunsPerSecond > 0 {
		limit = rate.Limit(cfg.RunsPerSecond)
	}

	return &Processor{
		config:    cfg,
		transport: transport,
		runner:    runner,
		saver:     saver,
		defaults:  defaults,
		publisher: NewPublisher(transport.Publisher, cfg,
			NewCircuitBreaker("publish", cfg.BreakerMaxFailures, cfg.BreakerTimeout, logger)),
		limiter:  rate.NewLimiter(limit, cfg.RunBurst),
		store:    NewCircuitBreaker("store", cfg.BreakerMaxFailures, cfg.BreakerTimeout, logger),
		logger:   logger,
		wmLogger: logging.NewWatermillAdapter(logger),
		ready:    make(chan struct{}),
	}, nil
}

// Publisher returns the breaker-protected publisher on the processor's
// transport, for callers that submit searches.
func (p *Processor) Publisher() *Publisher {
	return p.publisher
}

// Stats returns cumulative counters.
func (p *Processor) Stats() Stats {
	return Stats{
		Processed: p.processed.Load(),
		Failed:    p.failed.Load(),
		Poisoned:  p.poisoned.Load(),
	}
}

// Ready closes once the router has started consuming.
func (p *Processor) Ready() <-chan struct{} {
	return p.ready
}

// Serve implements suture.Service. A fresh router is built on every call
// since a watermill router cannot be restarted.
func (p *Processor) Serve(ctx context.Context) error {
	router, err := NewRouter(&p.config.Router, p.transport.Publisher, p.wmLogger)
	if err != nil {
		return err
	}
	router.AddConsumerHandler("analyze-search", p.config.SearchTopic, p.transport.Subscriber, p.Handle)

	go func() {
		select {
		case <-router.Running():
			p.readyOnce.Do(func() { close(p.ready) })
			p.logger.Info().
				Str("transport", p.transport.Mode()).
				Str("topic", p.config.SearchTopic).
				Msg("event processor running")
		case <-ctx.Done():
		}
	}()

	if err := router.Run(ctx); err != nil {
		return fmt.Errorf("event router: %w", err)
	}
	return ctx.Err()
}

// String implements fmt.Stringer for suture logging.
func (p *Processor) String() string {
	return "event-processor"
}

// Handle processes one search.completed message. Decode and validation
// failures are permanent; engine, store and publish failures are retried.
func (p *Processor) Handle(msg *message.Message) (err error) {
	topic := p.config.SearchTopic
	defer func() {
		metrics.RecordEventProcessed(topic, err)
		switch {
		case err == nil:
			p.processed.Add(1)
		case IsPermanent(err):
			p.poisoned.Add(1)
		default:
			p.failed.Add(1)
		}
	}()

	ev, err := DecodeSearchCompleted(msg.Payload)
	if err != nil {
		return Permanent(err)
	}
	if verr := validation.ValidateStruct(ev); verr != nil {
		return Permanent(fmt.Errorf("invalid %s: %w", EventSearchCompleted, verr))
	}

	correlationID := msg.Metadata.Get(MetadataCorrelationID)
	if correlationID == "" {
		correlationID = msg.UUID
	}
	ctx := logging.ContextWithCorrelationID(msg.Context(), correlationID)
	ctx = logging.ContextWithLogger(ctx, p.logger)

	if err := p.limiter.Wait(ctx); err != nil {
		return fmt.Errorf("throttle: %w", err)
	}

	req := ev.Request()
	req.Preferences = p.defaults.ApplyDefaults(req.Preferences)
	ctx = logging.ContextWithRunID(ctx, req.ID)

	runCtx := ctx
	if p.defaults.RunTimeout > 0 {
		var cancel context.CancelFunc
		runCtx, cancel = context.WithTimeout(ctx, p.defaults.RunTimeout)
		defer cancel()
	}

	report, err := p.runner.Run(runCtx, req)
	if err != nil {
		if errors.Is(err, engine.ErrEmptyListings) {
			return Permanent(err)
		}
		return fmt.Errorf("analysis run: %w", err)
	}

	if _, err := p.store.Execute(func() (interface{}, error) {
		return nil, p.saver.SaveRun(ctx, report)
	}); err != nil {
		return fmt.Errorf("store run: %w", err)
	}

	if err := p.publisher.PublishResult(ctx, NewAnalysisCompleted(ev.SearchID, report)); err != nil {
		return err
	}

	logging.Ctx(ctx).Info().
		Str("search_id", ev.SearchID).
		Int("listings", report.Summary.Listings).
		Int("recommendations", report.Summary.Recommendations).
		Msg("search analyzed")
	return nil
}
