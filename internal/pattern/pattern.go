// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package pattern compiles exclusion markers into whole-token matchers.
// Markers are compiled once per configuration change and reused across
// every exclusion and redaction decision.
package pattern

import (
	"fmt"
	"regexp"
)

// compiled pairs a marker with its boundary-aware regexp.
type compiled struct {
	marker string
	re     *regexp.Regexp
}

// Matcher reports whether text contains any configured exclusion marker.
// A marker matches only as a whole token: preceded by start-of-text or
// whitespace and followed by whitespace, punctuation, or end-of-text, so
// "#privately" does not match the marker "#private". Matcher is immutable
// and safe for concurrent use.
type Matcher struct {
	patterns []compiled
}

// New compiles one matcher per marker. Marker characters with special
// regexp meaning are escaped before compilation.
func New(markers []string) (*Matcher, error) {
	patterns := make([]compiled, 0, len(markers))
	for _, marker := range markers {
		if marker == "" {
			return nil, fmt.Errorf("empty exclusion marker")
		}
		expr := `(?:^|\s)` + regexp.QuoteMeta(marker) + `(?:[\s\p{P}\p{S}]|$)`
		re, err := regexp.Compile(expr)
		if err != nil {
			return nil, fmt.Errorf("compiling marker %q: %w", marker, err)
		}
		patterns = append(patterns, compiled{marker: marker, re: re})
	}
	return &Matcher{patterns: patterns}, nil
}

// ContainsMarker reports whether text contains any marker as a whole token.
func (m *Matcher) ContainsMarker(text string) bool {
	if text == "" {
		return false
	}
	for _, p := range m.patterns {
		if p.re.MatchString(text) {
			return true
		}
	}
	return false
}

// FirstMarker returns the first configured marker found in text, in
// configuration order.
func (m *Matcher) FirstMarker(text string) (string, bool) {
	if text == "" {
		return "", false
	}
	for _, p := range m.patterns {
		if p.re.MatchString(text) {
			return p.marker, true
		}
	}
	return "", false
}

// MarkersIn returns every configured marker present in text as a whole
// token, in configuration order.
func (m *Matcher) MarkersIn(text string) []string {
	if text == "" {
		return nil
	}
	var found []string
	for _, p := range m.patterns {
		if p.re.MatchString(text) {
			found = append(found, p.marker)
		}
	}
	return found
}

// Markers returns a copy of the configured marker list.
func (m *Matcher) Markers() []string {
	out := make([]string, len(m.patterns))
	for i, p := range m.patterns {
		out[i] = p.marker
	}
	return out
}
