// Cratedigger - Vinyl Marketplace Deal Analysis
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cratedigger

package models

import (
	"fmt"
	"strings"
)

// Platform identifies the marketplace a listing or seller came from.
type Platform string

const (
	PlatformDiscogs Platform = "discogs"
	PlatformEbay    Platform = "ebay"
)

// Platforms lists the known marketplaces in a stable order.
var Platforms = []Platform{PlatformDiscogs, PlatformEbay}

// ParsePlatform resolves a platform name case-insensitively.
func ParsePlatform(s string) (Platform, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "discogs":
		return PlatformDiscogs, nil
	case "ebay":
		return PlatformEbay, nil
	default:
		return "", fmt.Errorf("unknown platform %q", s)
	}
}

// Valid reports whether p is one of the known marketplaces.
func (p Platform) Valid() bool {
	return p == PlatformDiscogs || p == PlatformEbay
}

func (p Platform) String() string {
	return string(p)
}
