// Cratedigger - Vinyl Marketplace Deal Analysis
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cratedigger

package models

// Seller is a marketplace seller. Identity is platform-scoped: the same
// seller id on two platforms denotes two sellers.
type Seller struct {
	Platform Platform `json:"platform" validate:"required,oneof=discogs ebay"`
	ID       string   `json:"id" validate:"required,max=128"`
	Name     string   `json:"name,omitempty"`
	Location string   `json:"location,omitempty"`

	// Feedback fields are optional; nil means the source did not report them.
	FeedbackScore   *float64 `json:"feedback_score,omitempty" validate:"omitempty,min=0,max=100"`
	FeedbackCount   *int     `json:"feedback_count,omitempty" validate:"omitempty,min=0"`
	PositivePercent *float64 `json:"positive_percent,omitempty" validate:"omitempty,min=0,max=100"`
}

// SellerKey builds the platform-scoped seller identity.
func SellerKey(p Platform, id string) string {
	return string(p) + ":" + id
}

// Key returns the platform-scoped identity of the seller.
func (s *Seller) Key() string {
	return SellerKey(s.Platform, s.ID)
}

// DisplayName falls back to the seller id when no name was supplied.
func (s *Seller) DisplayName() string {
	if s.Name != "" {
		return s.Name
	}
	return s.ID
}
