// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package moderation

import (
	"regexp"
	"strings"

	"golang.org/x/text/cases"
)

var blockedPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)xhamster`),
	regexp.MustCompile(`(?i)xvideos`),
	regexp.MustCompile(`(?i)pornhub`),
	regexp.MustCompile(`(?i)xnxx`),
	regexp.MustCompile(`(?i)redtube`),
	regexp.MustCompile(`(?i)youporn`),
	regexp.MustCompile(`(?i)\bporn\b`),
	regexp.MustCompile(`(?i)\bxxx\b`),
	regexp.MustCompile(`(?i)\bsex\b`),
	regexp.MustCompile(`(?i)\badult\b`),
}

// IsInappropriate reports whether text matches any blocked pattern
func IsInappropriate(text string) bool {
	for _, p := range blockedPatterns {
		if p.MatchString(text) {
			return true
		}
	}
	return false
}

// TitleKey returns the comparison key for a candidate title: whitespace
// collapsed and Unicode case-folded, so "The  Thing" and "the thing" collide.
func TitleKey(title string) string {
	collapsed := strings.Join(strings.Fields(title), " ")
	// Casers are stateful; build one per call.
	return cases.Fold().String(collapsed)
}
