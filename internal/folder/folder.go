// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package folder decides whether a file path falls under an excluded-folder
// rule. Folder exclusion is a path-level guarantee: no content from a
// matching file is ever inspected.
package folder

import "strings"

// Classifier matches excluded folder names against normalized paths.
// Comparison is case-insensitive unless configured otherwise. Classifier is
// immutable and safe for concurrent use.
type Classifier struct {
	names         []string
	caseSensitive bool
}

// New builds a classifier for the given folder names. Blank names are
// dropped.
func New(names []string, caseSensitive bool) *Classifier {
	kept := make([]string, 0, len(names))
	for _, name := range names {
		if trimmed := strings.TrimSpace(name); trimmed != "" {
			kept = append(kept, trimmed)
		}
	}
	return &Classifier{names: kept, caseSensitive: caseSensitive}
}

// Normalize canonicalizes a path for segment comparison: trims whitespace,
// converts backslashes to forward slashes, collapses repeated separators,
// and strips leading and trailing separators.
func Normalize(path string) string {
	p := strings.TrimSpace(path)
	p = strings.ReplaceAll(p, `\`, "/")
	for strings.Contains(p, "//") {
		p = strings.ReplaceAll(p, "//", "/")
	}
	return strings.Trim(p, "/")
}

// IsExcluded reports whether path lies inside any excluded folder.
func (c *Classifier) IsExcluded(path string) bool {
	_, ok := c.Match(path)
	return ok
}

// Match returns the configured folder name matching path, if any. A folder
// matches only as a complete path segment, never as a substring of a longer
// segment name.
func (c *Classifier) Match(path string) (string, bool) {
	normalized := Normalize(path)
	if normalized == "" {
		return "", false
	}

	segments := strings.Split(normalized, "/")
	for _, name := range c.names {
		for _, segment := range segments {
			if c.equal(segment, name) {
				return name, true
			}
		}
	}
	return "", false
}

func (c *Classifier) equal(a, b string) bool {
	if c.caseSensitive {
		return a == b
	}
	return strings.EqualFold(a, b)
}
