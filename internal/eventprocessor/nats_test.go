// Cratedigger - Vinyl Marketplace Deal Analysis
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cratedigger

package eventprocessor

import (
	"context"
	"testing"
	"time"

	natsgo "github.com/nats-io/nats.go"
	"github.com/rs/zerolog"

	"github.com/tomtom215/cratedigger/internal/config"
	"github.com/tomtom215/cratedigger/internal/logging"
)

func startEmbeddedServer(t *testing.T) *EmbeddedServer {
	t.Helper()
	srv, err := NewEmbeddedServer(&ServerConfig{
		Host:      "127.0.0.1",
		Port:      -1,
		StoreDir:  t.TempDir(),
		MaxMemory: 64 << 20,
		MaxStore:  256 << 20,
	})
	if err != nil {
		t.Fatalf("NewEmbeddedServer: %v", err)
	}
	t.Cleanup(func() {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		_ = srv.Shutdown(ctx)
	})
	return srv
}

func TestEmbeddedServer(t *testing.T) {
	if testing.Short() {
		t.Skip("starts a NATS server")
	}

	srv := startEmbeddedServer(t)
	if !srv.IsRunning() || !srv.JetStreamEnabled() {
		t.Fatalf("running = %v, jetstream = %v", srv.IsRunning(), srv.JetStreamEnabled())
	}

	cfg := testConfig()
	cfg.URL = srv.ClientURL()
	if err := EnsureStream(context.Background(), cfg); err != nil {
		t.Fatalf("EnsureStream: %v", err)
	}
	// A second call updates the existing stream in place.
	if err := EnsureStream(context.Background(), cfg); err != nil {
		t.Fatalf("EnsureStream again: %v", err)
	}
}

func TestProcessor_NATSTransport(t *testing.T) {
	if testing.Short() {
		t.Skip("starts a NATS server")
	}

	srv := startEmbeddedServer(t)
	cfg := testConfig()
	cfg.URL = srv.ClientURL()
	cfg.SubscribersCount = 1

	wmLogger := logging.NewWatermillAdapter(zerolog.Nop())
	transport, err := NewNATSTransport(context.Background(), cfg, wmLogger)
	if err != nil {
		t.Fatalf("NewNATSTransport: %v", err)
	}
	t.Cleanup(func() { _ = transport.Close() })
	if transport.Mode() != ModeNATS {
		t.Errorf("Mode() = %q, want %q", transport.Mode(), ModeNATS)
	}

	s := testStore(t)
	p, err := NewProcessor(cfg, transport, testEngine(t), s, config.DefaultConfig().Analysis, zerolog.Nop())
	if err != nil {
		t.Fatalf("NewProcessor: %v", err)
	}
	startProcessor(t, p)

	nc, err := natsgo.Connect(cfg.URL)
	if err != nil {
		t.Fatalf("Connect: %v", err)
	}
	t.Cleanup(nc.Close)
	results, err := nc.SubscribeSync(cfg.ResultTopic)
	if err != nil {
		t.Fatalf("SubscribeSync: %v", err)
	}

	ev := searchEvent("search-nats")
	if err := p.Publisher().PublishSearch(context.Background(), ev); err != nil {
		t.Fatalf("PublishSearch: %v", err)
	}

	msg, err := results.NextMsg(15 * time.Second)
	if err != nil {
		t.Fatalf("NextMsg: %v", err)
	}
	got, err := DecodeAnalysisCompleted(msg.Data)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if got.RunID != ev.RunID() {
		t.Errorf("RunID = %q, want %q", got.RunID, ev.RunID())
	}
	if _, err := s.GetRun(context.Background(), ev.RunID()); err != nil {
		t.Errorf("GetRun: %v", err)
	}
}
