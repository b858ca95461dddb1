// Cratedigger - Vinyl Marketplace Deal Analysis
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cratedigger

package services

import (
	"context"
	"errors"
	"time"
)

// ErrNATSStopped is returned when the monitored server is no longer running.
var ErrNATSStopped = errors.New("embedded nats server stopped")

// RunningChecker reports whether a server is still accepting connections.
// Satisfied by *eventprocessor.EmbeddedServer.
type RunningChecker interface {
	IsRunning() bool
}

// NATSMonitorService polls an embedded NATS server. Shutdown of the server
// itself belongs to the owner, which must outlive the supervisor tree so
// in-flight messages can drain.
type NATSMonitorService struct {
	server   RunningChecker
	interval time.Duration
	name     string
}

// NewNATSMonitorService creates the monitor. A non-positive interval
// defaults to 5s.
func NewNATSMonitorService(server RunningChecker, interval time.Duration) *NATSMonitorService {
	if interval <= 0 {
		interval = 5 * time.Second
	}
	return &NATSMonitorService{
		server:   server,
		interval: interval,
		name:     "nats-monitor",
	}
}

// Serve returns ErrNATSStopped as soon as the server is seen down, or
// ctx.Err() on cancellation.
func (n *NATSMonitorService) Serve(ctx context.Context) error {
	if !n.server.IsRunning() {
		return ErrNATSStopped
	}

	ticker := time.NewTicker(n.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			if !n.server.IsRunning() {
				return ErrNATSStopped
			}
		}
	}
}

func (n *NATSMonitorService) String() string {
	return n.name
}
