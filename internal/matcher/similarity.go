// Cratedigger - Vinyl Marketplace Deal Analysis
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cratedigger

package matcher

import "unicode/utf8"

// Record is the normalized view of a listing or canonical item used for
// scoring.
type Record struct {
	Title  string
	Artist string
	Year   int
}

// Similarity scores two normalized records on a 0-100 scale.
//
// Title, artist and year similarities are combined with the configured
// weights. Year is only used when both records carry one; otherwise its
// weight is dropped and the remaining weights renormalize. When either
// title is empty the title weight moves to the artist.
func Similarity(a, b Record, w Weights, maxYearDiff int) float64 {
	titleW, artistW, yearW := w.Title, w.Artist, w.Year

	if a.Title == "" || b.Title == "" {
		artistW += titleW
		titleW = 0
	}
	if a.Year <= 0 || b.Year <= 0 {
		yearW = 0
	}

	total := titleW + artistW + yearW
	if total <= 0 {
		return 0
	}

	score := 0.0
	if titleW > 0 {
		score += titleW * Ratio(a.Title, b.Title)
	}
	if artistW > 0 {
		score += artistW * Ratio(a.Artist, b.Artist)
	}
	if yearW > 0 {
		score += yearW * yearCloseness(a.Year, b.Year, maxYearDiff)
	}

	return clampPercent(score / total * 100)
}

// Ratio is the normalized Levenshtein similarity of two strings in [0, 1].
// Two empty strings are identical.
func Ratio(a, b string) float64 {
	if a == b {
		return 1
	}
	maxLen := utf8.RuneCountInString(a)
	if l := utf8.RuneCountInString(b); l > maxLen {
		maxLen = l
	}
	if maxLen == 0 {
		return 1
	}
	return 1 - float64(Levenshtein(a, b))/float64(maxLen)
}

// Levenshtein returns the rune-level edit distance between a and b using a
// two-row dynamic programming table.
func Levenshtein(a, b string) int {
	ra, rb := []rune(a), []rune(b)
	if len(ra) == 0 {
		return len(rb)
	}
	if len(rb) == 0 {
		return len(ra)
	}

	prev := make([]int, len(rb)+1)
	curr := make([]int, len(rb)+1)
	for j := range prev {
		prev[j] = j
	}

	for i := 1; i <= len(ra); i++ {
		curr[0] = i
		for j := 1; j <= len(rb); j++ {
			cost := 1
			if ra[i-1] == rb[j-1] {
				cost = 0
			}
			curr[j] = min(prev[j]+1, curr[j-1]+1, prev[j-1]+cost)
		}
		prev, curr = curr, prev
	}
	return prev[len(rb)]
}

func yearCloseness(a, b, maxDiff int) float64 {
	if maxDiff <= 0 {
		if a == b {
			return 1
		}
		return 0
	}
	diff := a - b
	if diff < 0 {
		diff = -diff
	}
	s := 1 - float64(diff)/float64(maxDiff)
	if s < 0 {
		return 0
	}
	return s
}

func clampPercent(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 100 {
		return 100
	}
	return v
}
