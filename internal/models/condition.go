// Cratedigger - Vinyl Marketplace Deal Analysis
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cratedigger

package models

import "strings"

// Condition is a Goldmine-style media grade. Higher values are better;
// ConditionUnknown sorts below every real grade but never fails a minimum
// condition check.
type Condition int

const (
	ConditionUnknown Condition = iota
	ConditionPoor
	ConditionFair
	ConditionGood
	ConditionGoodPlus
	ConditionVeryGood
	ConditionVeryGoodPlus
	ConditionNearMint
	ConditionMint
)

// ConditionTier groups grades for price comparisons.
type ConditionTier string

const (
	TierTop     ConditionTier = "top"
	TierMid     ConditionTier = "mid"
	TierLow     ConditionTier = "low"
	TierUnknown ConditionTier = "unknown"
)

var conditionNames = map[Condition]string{
	ConditionUnknown:      "",
	ConditionPoor:         "P",
	ConditionFair:         "F",
	ConditionGood:         "G",
	ConditionGoodPlus:     "G+",
	ConditionVeryGood:     "VG",
	ConditionVeryGoodPlus: "VG+",
	ConditionNearMint:     "NM",
	ConditionMint:         "M",
}

// conditionAliases maps the spellings used by Discogs and eBay sellers.
// Keys are lowercased with spaces and parentheses removed.
var conditionAliases = map[string]Condition{
	"m":                 ConditionMint,
	"mint":              ConditionMint,
	"mintm":             ConditionMint,
	"sealed":            ConditionMint,
	"new":               ConditionMint,
	"nm":                ConditionNearMint,
	"m-":                ConditionNearMint,
	"nearmint":          ConditionNearMint,
	"nearmintnm":        ConditionNearMint,
	"nearmintnmorm-":    ConditionNearMint,
	"vg+":               ConditionVeryGoodPlus,
	"verygoodplus":      ConditionVeryGoodPlus,
	"verygoodplusvg+":   ConditionVeryGoodPlus,
	"vg":                ConditionVeryGood,
	"verygood":          ConditionVeryGood,
	"verygoodvg":        ConditionVeryGood,
	"used":              ConditionVeryGood,
	"g+":                ConditionGoodPlus,
	"goodplus":          ConditionGoodPlus,
	"goodplusg+":        ConditionGoodPlus,
	"g":                 ConditionGood,
	"good":              ConditionGood,
	"goodg":             ConditionGood,
	"f":                 ConditionFair,
	"fair":              ConditionFair,
	"fairf":             ConditionFair,
	"p":                 ConditionPoor,
	"poor":              ConditionPoor,
	"poorp":             ConditionPoor,

	"forpartsnotworking": ConditionPoor,
}

// ParseCondition normalizes a free-text grade. Unrecognized input returns
// ConditionUnknown rather than an error; grades are seller-entered text.
func ParseCondition(s string) Condition {
	key := strings.ToLower(s)
	key = strings.NewReplacer(" ", "", "(", "", ")", "", "_", "", "/", "").Replace(key)
	if c, ok := conditionAliases[key]; ok {
		return c
	}
	return ConditionUnknown
}

// String returns the short grade code, or "" for ConditionUnknown.
func (c Condition) String() string {
	return conditionNames[c]
}

// Known reports whether the grade was recognized.
func (c Condition) Known() bool {
	return c > ConditionUnknown && c <= ConditionMint
}

// AtLeast reports whether c satisfies a minimum grade. Unknown grades on
// either side always pass.
func (c Condition) AtLeast(minimum Condition) bool {
	if !c.Known() || !minimum.Known() {
		return true
	}
	return c >= minimum
}

// Tier returns the price comparison tier for the grade.
func (c Condition) Tier() ConditionTier {
	switch {
	case c >= ConditionNearMint:
		return TierTop
	case c >= ConditionVeryGood:
		return TierMid
	case c.Known():
		return TierLow
	default:
		return TierUnknown
	}
}

// MarshalText implements encoding.TextMarshaler.
func (c Condition) MarshalText() ([]byte, error) {
	return []byte(c.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler. Unrecognized grades
// decode to ConditionUnknown.
func (c *Condition) UnmarshalText(b []byte) error {
	*c = ParseCondition(string(b))
	return nil
}
