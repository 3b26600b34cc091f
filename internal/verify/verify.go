// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package verify re-scans redacted output against the original to prove
// that no private content leaked and no structural corruption occurred.
// Verification is pure: it reports violations instead of raising them, so
// callers can aggregate results into audits without interrupting pipelines.
package verify

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/ErnieAtLYD/rspai/internal/pattern"
	"github.com/ErnieAtLYD/rspai/pkg/types"
)

// maxGrowthRatio bounds how much longer redacted output may be than its
// original; anything beyond it indicates placeholder explosion.
const maxGrowthRatio = 1.5

// maxLineDrift is the allowed relative change in total line count.
const maxLineDrift = 0.5

// blockExpr holds interior-capturing expressions for one marker's
// delimited-block syntaxes.
type blockExpr struct {
	marker  string
	comment *regexp.Regexp
	plain   *regexp.Regexp
}

// Checker validates (original, redacted) pairs against one configuration.
// It has no side effects and no logging; logging belongs to the callers
// that invoke it as part of an audit.
type Checker struct {
	cfg     types.PrivacyConfig
	matcher *pattern.Matcher
	blocks  []blockExpr
}

// NewChecker compiles a checker for cfg.
func NewChecker(cfg types.PrivacyConfig) (*Checker, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid privacy configuration: %w", err)
	}
	matcher, err := pattern.New(cfg.ExclusionMarkers)
	if err != nil {
		return nil, fmt.Errorf("compiling exclusion markers: %w", err)
	}

	blocks := make([]blockExpr, 0, len(cfg.ExclusionMarkers))
	for _, marker := range cfg.ExclusionMarkers {
		quoted := regexp.QuoteMeta(marker)
		comment, err := regexp.Compile(
			`(?s)<!--\s*` + quoted + `\s+start\s*-->(.*?)<!--\s*` + quoted + `\s+end\s*-->`)
		if err != nil {
			return nil, fmt.Errorf("compiling comment block for %q: %w", marker, err)
		}
		plain, err := regexp.Compile(
			`(?s)` + quoted + `\s+start\b(.*?)` + quoted + `\s+end\b`)
		if err != nil {
			return nil, fmt.Errorf("compiling plain block for %q: %w", marker, err)
		}
		blocks = append(blocks, blockExpr{marker: marker, comment: comment, plain: plain})
	}

	return &Checker{cfg: cfg.Clone(), matcher: matcher, blocks: blocks}, nil
}

// Verify checks that redacted is a faithful, leak-free redaction of
// original and returns a report listing every violation found.
func (c *Checker) Verify(original, redacted string) types.VerificationReport {
	var violations []string

	violations = append(violations, c.checkMarkersRemoved(redacted)...)
	violations = append(violations, c.checkBlocks(original, redacted)...)
	violations = append(violations, c.checkHeadings(original, redacted)...)
	violations = append(violations, c.checkIntegrity(original, redacted)...)
	violations = append(violations, c.checkPlaceholderWellFormed(redacted)...)

	report := types.VerificationReport{
		IsValid:    len(violations) == 0,
		Violations: violations,
	}
	if report.IsValid {
		report.Summary = "verification passed: no privacy leaks or integrity issues"
	} else {
		report.Summary = fmt.Sprintf("verification failed: %d violation(s)", len(violations))
	}
	return report
}

// checkMarkersRemoved flags any configured marker that survives in the
// redacted output.
func (c *Checker) checkMarkersRemoved(redacted string) []string {
	var violations []string
	for _, marker := range c.matcher.MarkersIn(redacted) {
		violations = append(violations,
			fmt.Sprintf("exclusion marker %q remains in redacted output", marker))
	}
	return violations
}

// checkBlocks verifies marker-delimited blocks two ways: interior content
// found in the original must not survive in the redacted output, and any
// block still delimited in the redacted output must hold exactly the
// placeholder. Interior text that also occurs in the original outside every
// block is legitimate duplication, not a leak, and is not flagged.
func (c *Checker) checkBlocks(original, redacted string) []string {
	var violations []string
	placeholder := c.cfg.RedactionPlaceholder

	outside := original
	for _, be := range c.blocks {
		outside = be.comment.ReplaceAllString(outside, "")
		outside = be.plain.ReplaceAllString(outside, "")
	}

	for _, be := range c.blocks {
		for _, re := range []*regexp.Regexp{be.comment, be.plain} {
			for _, m := range re.FindAllStringSubmatch(original, -1) {
				interior := strings.TrimSpace(m[1])
				if interior == "" || interior == placeholder {
					continue
				}
				if strings.Contains(outside, interior) {
					continue
				}
				if strings.Contains(redacted, interior) {
					violations = append(violations,
						fmt.Sprintf("content of a %q block survives unredacted", be.marker))
				}
			}

			for _, m := range re.FindAllStringSubmatch(redacted, -1) {
				if strings.TrimSpace(m[1]) != placeholder {
					violations = append(violations,
						fmt.Sprintf("a %q block in redacted output does not contain exactly the placeholder", be.marker))
				}
			}
		}
	}
	return violations
}

// markerHeading is a heading in the original that carried a marker, with
// the body lines of its subtree.
type markerHeading struct {
	line  string
	level int
	body  map[string]bool
}

// checkHeadings verifies that every private heading lost its original text
// and that none of its subtree body lines survive beneath a placeholder
// heading in the redacted output. Body lines that also occur in the
// original outside every private subtree are legitimate duplication and
// are not flagged.
func (c *Checker) checkHeadings(original, redacted string) []string {
	var violations []string

	headings := c.markerHeadings(original)
	if len(headings) == 0 {
		return nil
	}

	redactedLines := strings.Split(redacted, "\n")
	present := make(map[string]bool, len(redactedLines))
	for _, line := range redactedLines {
		present[strings.TrimSpace(line)] = true
	}

	outside := c.linesOutsidePrivateSubtrees(original)
	privateBody := make(map[string]bool)
	for _, h := range headings {
		if present[strings.TrimSpace(h.line)] {
			violations = append(violations,
				fmt.Sprintf("private heading %q still shows its original text", strings.TrimSpace(h.line)))
		}
		for line := range h.body {
			if !outside[line] {
				privateBody[line] = true
			}
		}
	}

	placeholder := c.cfg.RedactionPlaceholder
	for i := 0; i < len(redactedLines); i++ {
		level := headingLevel(redactedLines[i])
		if level == 0 || headingText(redactedLines[i]) != placeholder {
			continue
		}
		for j := i + 1; j < len(redactedLines); j++ {
			if next := headingLevel(redactedLines[j]); next > 0 && next <= level {
				break
			}
			trimmed := strings.TrimSpace(redactedLines[j])
			if trimmed == "" || trimmed == placeholder {
				continue
			}
			if privateBody[trimmed] {
				violations = append(violations,
					fmt.Sprintf("body line under a private heading survives in redacted output: %q", trimmed))
			}
		}
	}

	return violations
}

// markerHeadings collects every heading in the original that contains a
// marker, together with the trimmed body lines of its subtree.
func (c *Checker) markerHeadings(original string) []markerHeading {
	lines := strings.Split(original, "\n")
	var headings []markerHeading

	for i := 0; i < len(lines); i++ {
		level := headingLevel(lines[i])
		if level == 0 || !c.matcher.ContainsMarker(lines[i]) {
			continue
		}
		h := markerHeading{line: lines[i], level: level, body: make(map[string]bool)}
		for j := i + 1; j < len(lines); j++ {
			if next := headingLevel(lines[j]); next > 0 && next <= level {
				break
			}
			if trimmed := strings.TrimSpace(lines[j]); trimmed != "" {
				h.body[trimmed] = true
			}
		}
		headings = append(headings, h)
	}
	return headings
}

// linesOutsidePrivateSubtrees returns the trimmed non-blank lines of the
// original that sit outside every marker-heading subtree.
func (c *Checker) linesOutsidePrivateSubtrees(original string) map[string]bool {
	lines := strings.Split(original, "\n")
	outside := make(map[string]bool)

	for i := 0; i < len(lines); i++ {
		level := headingLevel(lines[i])
		if level > 0 && c.matcher.ContainsMarker(lines[i]) {
			for i+1 < len(lines) {
				if next := headingLevel(lines[i+1]); next > 0 && next <= level {
					break
				}
				i++
			}
			continue
		}
		if trimmed := strings.TrimSpace(lines[i]); trimmed != "" {
			outside[trimmed] = true
		}
	}
	return outside
}

// checkIntegrity guards against structural corruption: placeholder
// explosion, gratuitous rewrites of marker-free content, and gross line
// count drift.
func (c *Checker) checkIntegrity(original, redacted string) []string {
	var violations []string

	if len(original) > 0 && float64(len(redacted)) > float64(len(original))*maxGrowthRatio {
		violations = append(violations, fmt.Sprintf(
			"redacted output is %d bytes, more than %.1fx the original %d bytes",
			len(redacted), maxGrowthRatio, len(original)))
	}

	// Marker-free content must pass through byte-for-byte. Comparison is
	// deliberately exact: normalizing case or whitespace here would mask
	// real corruption.
	if !c.matcher.ContainsMarker(original) && redacted != original {
		violations = append(violations,
			"original contains no markers but redacted output differs from it")
	}

	// Redaction legitimately removes whole subtrees, so shrinkage is
	// expected; only growth beyond the drift bound signals corruption.
	origLines := strings.Count(original, "\n") + 1
	redLines := strings.Count(redacted, "\n") + 1
	if drift := float64(redLines-origLines) / float64(origLines); drift > maxLineDrift {
		violations = append(violations, fmt.Sprintf(
			"line count grew from %d to %d, beyond the allowed %.0f%% drift",
			origLines, redLines, maxLineDrift*100))
	}

	return violations
}

// checkPlaceholderWellFormed flags truncated placeholder tokens: an
// opening placeholder sequence that never closes.
func (c *Checker) checkPlaceholderWellFormed(redacted string) []string {
	placeholder := c.cfg.RedactionPlaceholder
	if len(placeholder) < 2 {
		return nil
	}

	open := placeholder[:len(placeholder)-1]
	if strings.Count(redacted, open) > strings.Count(redacted, placeholder) {
		return []string{fmt.Sprintf(
			"redacted output contains a truncated placeholder token (%q without %q)",
			open, string(placeholder[len(placeholder)-1]))}
	}
	return nil
}

// headingLevel returns the markdown heading level of line (1-6), or 0 when
// the line is not a heading.
func headingLevel(line string) int {
	trimmed := strings.TrimLeft(line, " ")
	level := 0
	for level < len(trimmed) && trimmed[level] == '#' {
		level++
	}
	if level == 0 || level > 6 {
		return 0
	}
	if level == len(trimmed) || trimmed[level] == ' ' || trimmed[level] == '\t' {
		return level
	}
	return 0
}

// headingText returns the heading's text with the marker prefix removed.
func headingText(line string) string {
	trimmed := strings.TrimLeft(strings.TrimSpace(line), "#")
	return strings.TrimSpace(trimmed)
}
