// Cratedigger - Vinyl Marketplace Deal Analysis
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cratedigger

package eventprocessor

import (
	"fmt"
	"time"

	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/goccy/go-json"
	"github.com/google/uuid"

	"github.com/tomtom215/cratedigger/internal/engine"
	"github.com/tomtom215/cratedigger/internal/models"
)

// Metadata keys set on every published message.
const (
	MetadataCorrelationID = "correlation_id"
	MetadataEventType     = "event_type"
	MetadataSearchID      = "search_id"
)

// Event type names.
const (
	EventSearchCompleted   = "search.completed"
	EventAnalysisCompleted = "analysis.completed"
)

// runNamespace derives stable run ids from search ids so that a redelivered
// search overwrites its earlier report instead of creating a second one.
var runNamespace = uuid.MustParse("6f1b6a0e-3c1d-4f4e-9a55-2f8c7d9e1b20")

// SearchCompleted is published by the search layer once a marketplace
// search has finished fetching listings.
type SearchCompleted struct {
	SearchID    string             `json:"search_id" validate:"required,max=128"`
	Listings    []models.Listing   `json:"listings" validate:"required,min=1,max=10000,dive"`
	Sellers     []models.Seller    `json:"sellers,omitempty" validate:"omitempty,max=10000,dive"`
	Preferences models.Preferences `json:"preferences"`
	CompletedAt time.Time          `json:"completed_at"`
}

// RunID returns the analysis run id derived from the search id.
func (e *SearchCompleted) RunID() string {
	return uuid.NewSHA1(runNamespace, []byte(e.SearchID)).String()
}

// Request converts the event into an engine request.
func (e *SearchCompleted) Request() engine.Request {
	return engine.Request{
		ID:          e.RunID(),
		Listings:    e.Listings,
		Sellers:     e.Sellers,
		Preferences: e.Preferences,
	}
}

// AnalysisCompleted announces a stored analysis run.
type AnalysisCompleted struct {
	RunID             string                 `json:"run_id"`
	SearchID          string                 `json:"search_id"`
	CreatedAt         time.Time              `json:"created_at"`
	Summary           engine.Summary         `json:"summary"`
	TopRecommendation *models.Recommendation `json:"top_recommendation,omitempty"`
}

// NewAnalysisCompleted summarizes a report for publication.
func NewAnalysisCompleted(searchID string, report *engine.Report) *AnalysisCompleted {
	ev := &AnalysisCompleted{
		RunID:     report.RunID,
		SearchID:  searchID,
		CreatedAt: report.CreatedAt,
		Summary:   report.Summary,
	}
	if top, ok := report.TopRecommendation(); ok {
		ev.TopRecommendation = &top
	}
	return ev
}

// NewMessage serializes v into a watermill message with a random UUID.
func NewMessage(eventType, correlationID string, v interface{}) (*message.Message, error) {
	payload, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("serialize %s: %w", eventType, err)
	}
	msg := message.NewMessage(uuid.NewString(), payload)
	msg.Metadata.Set(MetadataEventType, eventType)
	if correlationID != "" {
		msg.Metadata.Set(MetadataCorrelationID, correlationID)
	}
	return msg, nil
}

// DecodeSearchCompleted parses a search.completed payload.
func DecodeSearchCompleted(payload []byte) (*SearchCompleted, error) {
	var ev SearchCompleted
	if err := json.Unmarshal(payload, &ev); err != nil {
		return nil, fmt.Errorf("decode %s: %w", EventSearchCompleted, err)
	}
	return &ev, nil
}

// DecodeAnalysisCompleted parses an analysis.completed payload.
func DecodeAnalysisCompleted(payload []byte) (*AnalysisCompleted, error) {
	var ev AnalysisCompleted
	if err := json.Unmarshal(payload, &ev); err != nil {
		return nil, fmt.Errorf("decode %s: %w", EventAnalysisCompleted, err)
	}
	return &ev, nil
}
