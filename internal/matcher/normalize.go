// Cratedigger - Vinyl Marketplace Deal Analysis
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cratedigger

package matcher

import (
	"strings"
	"unicode"
)

// DefaultStopWords are removed from normalized text: articles and
// conjunctions.
var DefaultStopWords = []string{"a", "an", "the", "and", "or", "nor", "but", "y", "et", "und"}

// Normalizer lowercases text, strips punctuation, collapses whitespace and
// removes stop words. It is immutable after construction and safe for
// concurrent use.
type Normalizer struct {
	stopWords map[string]struct{}
}

// NewNormalizer builds a Normalizer for the given stop words. Stop words are
// themselves normalized so configuration casing does not matter.
func NewNormalizer(stopWords []string) *Normalizer {
	n := &Normalizer{stopWords: make(map[string]struct{}, len(stopWords))}
	for _, w := range stopWords {
		for _, tok := range strings.Fields(stripText(w)) {
			n.stopWords[tok] = struct{}{}
		}
	}
	return n
}

var defaultNormalizer = NewNormalizer(DefaultStopWords)

// Normalize applies the default normalizer.
func Normalize(s string) string {
	return defaultNormalizer.Normalize(s)
}

// Normalize returns the canonical form of s. The result contains only
// lowercase letters, digits and single spaces, so Normalize(Normalize(x))
// equals Normalize(x). When every word is a stop word ("The The") the words
// are kept.
func (n *Normalizer) Normalize(s string) string {
	tokens := strings.Fields(stripText(s))
	if len(tokens) == 0 {
		return ""
	}

	kept := make([]string, 0, len(tokens))
	for _, tok := range tokens {
		if _, stop := n.stopWords[tok]; !stop {
			kept = append(kept, tok)
		}
	}
	if len(kept) == 0 {
		kept = tokens
	}
	return strings.Join(kept, " ")
}

// stripText lowercases s, keeps letters, digits and whitespace, and drops
// everything else.
func stripText(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range strings.ToLower(s) {
		switch {
		case unicode.IsLetter(r) || unicode.IsDigit(r):
			b.WriteRune(unicode.ToLower(r))
		case unicode.IsSpace(r):
			b.WriteByte(' ')
		}
	}
	return b.String()
}

// FingerprintSeparator joins the title and artist parts of a fingerprint.
const FingerprintSeparator = "|"

// Fingerprint combines already-normalized title and artist. Empty parts
// still yield a valid key.
func Fingerprint(normTitle, normArtist string) string {
	return normTitle + FingerprintSeparator + normArtist
}
