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

	"github.com/ThreeDotsLabs/watermill/message"
	natsgo "github.com/nats-io/nats.go"
	gobreaker "github.com/sony/gobreaker/v2"

	"github.com/tomtom215/cratedigger/internal/logging"
	"github.com/tomtom215/cratedigger/internal/metrics"
	"github.com/tomtom215/cratedigger/internal/validation"
)

// Publisher wraps a watermill publisher with circuit breaker protection.
type Publisher struct {
	publisher message.Publisher
	breaker   *gobreaker.CircuitBreaker[interface{}]
	cfg       *Config

	mu     sync.RWMutex
	closed bool
}

// NewPublisher wraps pub. A nil breaker publishes unprotected.
func NewPublisher(pub message.Publisher, cfg *Config, breaker *gobreaker.CircuitBreaker[interface{}]) *Publisher {
	return &Publisher{publisher: pub, cfg: cfg, breaker: breaker}
}

// Publish sends msg to topic. The message UUID doubles as the JetStream
// Nats-Msg-Id so redelivered publishes are deduplicated by the stream.
func (p *Publisher) Publish(ctx context.Context, topic string, msg *message.Message) (err error) {
	p.mu.RLock()
	closed := p.closed
	p.mu.RUnlock()
	if closed {
		return ErrTransportClosed
	}

	defer func() { metrics.RecordEventPublished(topic, err) }()

	if msg.Metadata.Get(natsgo.MsgIdHdr) == "" {
		msg.Metadata.Set(natsgo.MsgIdHdr, msg.UUID)
	}
	msg.SetContext(ctx)

	if p.breaker == nil {
		return p.publisher.Publish(topic, msg)
	}
	_, err = p.breaker.Execute(func() (interface{}, error) {
		return nil, p.publisher.Publish(topic, msg)
	})
	return err
}

// PublishSearch validates and publishes a search.completed event.
func (p *Publisher) PublishSearch(ctx context.Context, ev *SearchCompleted) error {
	if ev == nil {
		return errors.New("search event is required")
	}
	if verr := validation.ValidateStruct(ev); verr != nil {
		return verr
	}

	correlationID := logging.CorrelationIDFromContext(ctx)
	if correlationID == "" {
		correlationID = logging.GenerateCorrelationID()
	}
	msg, err := NewMessage(EventSearchCompleted, correlationID, ev)
	if err != nil {
		return err
	}
	msg.Metadata.Set(MetadataSearchID, ev.SearchID)
	return p.Publish(ctx, p.cfg.SearchTopic, msg)
}

// PublishResult publishes an analysis.completed event.
func (p *Publisher) PublishResult(ctx context.Context, ev *AnalysisCompleted) error {
	msg, err := NewMessage(EventAnalysisCompleted, logging.CorrelationIDFromContext(ctx), ev)
	if err != nil {
		return err
	}
	msg.Metadata.Set(MetadataSearchID, ev.SearchID)
	if err := p.Publish(ctx, p.cfg.ResultTopic, msg); err != nil {
		return fmt.Errorf("publish %s: %w", EventAnalysisCompleted, err)
	}
	return nil
}

// Close stops further publishing. The underlying transport is closed by
// its owner.
func (p *Publisher) Close() {
	p.mu.Lock()
	p.closed = true
	p.mu.Unlock()
}
