// Cratedigger - Vinyl Marketplace Deal Analysis
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cratedigger

// Package main runs the Cratedigger analysis service.
//
// Startup order:
//
//  1. Configuration (koanf: defaults, config.yaml, environment)
//  2. Logging
//  3. Run store (BadgerDB)
//  4. Analysis engine
//  5. Event transport: embedded or external NATS JetStream, or an
//     in-process channel when NATS is disabled
//  6. Event processor
//  7. HTTP API
//  8. Supervisor tree
//
// SIGINT and SIGTERM cancel the tree. The embedded NATS server and the store
// are closed only after every supervised service has stopped.
package main

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/ThreeDotsLabs/watermill"

	"github.com/tomtom215/cratedigger/internal/api"
	"github.com/tomtom215/cratedigger/internal/config"
	"github.com/tomtom215/cratedigger/internal/engine"
	"github.com/tomtom215/cratedigger/internal/eventprocessor"
	"github.com/tomtom215/cratedigger/internal/logging"
	"github.com/tomtom215/cratedigger/internal/store"
	"github.com/tomtom215/cratedigger/internal/supervisor"
	"github.com/tomtom215/cratedigger/internal/supervisor/services"
)

func main() {
	if err := run(); err != nil {
		logging.Fatal().Err(err).Msg("Cratedigger exited with error")
	}
}

//nolint:gocyclo // sequential wiring
func run() error {
	cfg, err := config.LoadWithKoanf()
	if err != nil {
		return fmt.Errorf("load configuration: %w", err)
	}

	logging.Init(logging.Config{
		Level:     cfg.Logging.Level,
		Format:    cfg.Logging.Format,
		Caller:    cfg.Logging.Caller,
		Timestamp: true,
	})
	logger := logging.Logger()

	logging.Info().
		Str("version", api.Version).
		Str("storage", cfg.Storage.Path).
		Bool("nats", cfg.NATS.Enabled).
		Msg("Starting Cratedigger")

	if cfg.ShouldWarnAboutCORS() {
		logging.Warn().Msg("CORS allows any origin in production; set server.cors_origins")
	}

	storeCfg := store.DefaultConfig(cfg.Storage.Path)
	storeCfg.InMemory = cfg.Storage.InMemory
	runs, err := store.Open(storeCfg, logger)
	if err != nil {
		return fmt.Errorf("open store: %w", err)
	}
	defer func() {
		if err := runs.Close(); err != nil {
			logging.Error().Err(err).Msg("Error closing store")
		}
	}()

	eng, err := engine.New(cfg.EngineConfig(), logger)
	if err != nil {
		return fmt.Errorf("create engine: %w", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	natsServer, transport, err := initTransport(ctx, cfg, logging.NewWatermillAdapter(logger))
	if err != nil {
		return err
	}
	if natsServer != nil {
		defer func() {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
			defer cancel()
			if err := natsServer.Shutdown(shutdownCtx); err != nil {
				logging.Error().Err(err).Msg("Error shutting down embedded NATS")
			}
		}()
	}
	defer func() {
		if err := transport.Close(); err != nil {
			logging.Error().Err(err).Msg("Error closing event transport")
		}
	}()

	epCfg := eventprocessor.ConfigFromNATS(&cfg.NATS)
	if natsServer != nil {
		epCfg.URL = natsServer.ClientURL()
	}
	processor, err := eventprocessor.NewProcessor(epCfg, transport, eng, runs, cfg.Analysis, logger)
	if err != nil {
		return fmt.Errorf("create event processor: %w", err)
	}

	handler := api.NewHandler(eng, runs, cfg.Analysis, logger)
	handler.SetSearchPublisher(processor.Publisher())
	router := api.NewRouter(handler, api.MiddlewareConfigFromServer(&cfg.Server), logger)

	server := &http.Server{
		Addr:              net.JoinHostPort(cfg.Server.Host, strconv.Itoa(cfg.Server.Port)),
		Handler:           router.Setup(),
		ReadTimeout:       cfg.Server.ReadTimeout,
		ReadHeaderTimeout: 10 * time.Second,
		WriteTimeout:      cfg.Server.WriteTimeout,
		IdleTimeout:       120 * time.Second,
	}

	tree, err := supervisor.NewSupervisorTree(logging.NewSlogLogger(logger), supervisor.TreeConfig{
		ShutdownTimeout: cfg.Server.ShutdownTimeout,
	})
	if err != nil {
		return fmt.Errorf("create supervisor tree: %w", err)
	}
	tree.AddDataService(runs)
	if natsServer != nil {
		tree.AddMessagingService(services.NewNATSMonitorService(natsServer, 0))
	}
	tree.AddMessagingService(processor)
	tree.AddAPIService(services.NewHTTPServerService(server, cfg.Server.ShutdownTimeout))

	logging.Info().
		Str("addr", server.Addr).
		Str("transport", transport.Mode()).
		Msg("Starting supervisor tree")

	for err := range tree.ServeBackground(ctx) {
		if err != nil && !errors.Is(err, context.Canceled) {
			logging.Error().Err(err).Msg("Supervisor tree error")
		}
	}

	unstopped, _ := tree.UnstoppedServiceReport()
	for _, svc := range unstopped {
		logging.Warn().Str("service", svc.Name).Msg("Service failed to stop within timeout")
	}

	logging.Info().Msg("Cratedigger stopped")
	return nil
}

// initTransport picks the event transport. The returned server is nil unless
// an embedded NATS server was started.
func initTransport(ctx context.Context, cfg *config.Config, wmLogger watermill.LoggerAdapter) (*eventprocessor.EmbeddedServer, *eventprocessor.Transport, error) {
	if !cfg.NATS.Enabled {
		logging.Info().Msg("NATS disabled, using in-process event transport")
		return nil, eventprocessor.NewGoChannelTransport(wmLogger), nil
	}

	epCfg := eventprocessor.ConfigFromNATS(&cfg.NATS)

	var srv *eventprocessor.EmbeddedServer
	if cfg.NATS.EmbeddedServer {
		var err error
		srv, err = eventprocessor.NewEmbeddedServer(eventprocessor.ServerConfigFromNATS(&cfg.NATS))
		if err != nil {
			return nil, nil, fmt.Errorf("start embedded NATS: %w", err)
		}
		epCfg.URL = srv.ClientURL()
		logging.Info().
			Str("url", epCfg.URL).
			Bool("jetstream", srv.JetStreamEnabled()).
			Msg("Embedded NATS server started")
	}

	transport, err := eventprocessor.NewNATSTransport(ctx, epCfg, wmLogger)
	if err != nil {
		if srv != nil {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			_ = srv.Shutdown(shutdownCtx)
		}
		return nil, nil, fmt.Errorf("connect NATS transport: %w", err)
	}
	return srv, transport, nil
}
