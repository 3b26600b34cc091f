// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package privacy

import (
	"strconv"
	"strings"
	"time"

	"github.com/ErnieAtLYD/rspai/pkg/types"
)

// FilterContent removes or redacts private content and returns the result.
// Empty and whitespace-only content passes through unchanged with no action
// logged. With section redaction disabled, any marker collapses the whole
// document to the placeholder. With it enabled, three strategies run in a
// fixed order: marker-delimited blocks, heading subtrees, then paragraphs.
// Block redaction must consume markers before the line-oriented strategies
// would misread marker text inside a still-open block, and heading subtrees
// must go before paragraphs so a private heading's body is removed as a
// unit instead of leaving orphaned placeholders under it.
func (e *Engine) FilterContent(content string) string {
	return e.FilterFile(contentPath, content)
}

// FilterFile is FilterContent with a real file path for the audit trail.
func (e *Engine) FilterFile(path, content string) string {
	if strings.TrimSpace(path) == "" {
		path = contentPath
	}
	if content == "" || strings.TrimSpace(content) == "" {
		return content
	}

	cfg, state := e.snapshot()
	placeholder := cfg.RedactionPlaceholder

	if !cfg.SectionRedactionEnabled {
		if !state.matcher.ContainsMarker(content) {
			return content
		}
		e.log.Record(types.Action{
			Kind:      types.ActionContentRedacted,
			FilePath:  path,
			Timestamp: time.Now(),
			Metadata:  map[string]string{"reason": "document contains privacy markers"},
		})
		return placeholder
	}

	result, blocks := redactBlocks(content, state, placeholder)
	result, headings := redactHeadings(result, state, placeholder)
	result, paragraphs := redactParagraphs(result, state, placeholder)

	sections := blocks + headings + paragraphs
	if sections > 0 {
		e.log.Record(types.Action{
			Kind:      types.ActionSectionRedacted,
			FilePath:  path,
			Timestamp: time.Now(),
			Metadata:  map[string]string{"sections": strconv.Itoa(sections)},
		})
	}

	// A document reduced to nothing but the placeholder is functionally
	// empty, which is a whole-content redaction in its own right.
	if sections > 0 && strings.TrimSpace(result) == placeholder {
		e.log.Record(types.Action{
			Kind:      types.ActionContentRedacted,
			FilePath:  path,
			Timestamp: time.Now(),
			Metadata:  map[string]string{"reason": "all content redacted"},
		})
	}

	return result
}

// redactBlocks collapses marker-delimited blocks to a single placeholder
// occurrence. The comment form keeps its enclosing comment syntax; the
// plain form is replaced by the bare placeholder. Delimiters are consumed
// along with the interior so no marker survives in the output.
func redactBlocks(content string, state *compiledState, placeholder string) (string, int) {
	count := 0
	for _, bp := range state.blocks {
		if matches := bp.comment.FindAllStringIndex(content, -1); len(matches) > 0 {
			count += len(matches)
			content = bp.comment.ReplaceAllString(content, "<!-- "+placeholder+" -->")
		}
		if matches := bp.plain.FindAllStringIndex(content, -1); len(matches) > 0 {
			count += len(matches)
			content = bp.plain.ReplaceAllString(content, placeholder)
		}
	}
	return content, count
}

// redactHeadings replaces a marker-bearing heading with a placeholder
// heading of the same level and drops every line of its subtree: all lines
// up to the next heading of equal or shallower level are removed entirely,
// not merely replaced.
func redactHeadings(content string, state *compiledState, placeholder string) (string, int) {
	lines := strings.Split(content, "\n")
	out := make([]string, 0, len(lines))
	count := 0

	for i := 0; i < len(lines); i++ {
		level := headingLevel(lines[i])
		if level == 0 || !state.matcher.ContainsMarker(lines[i]) {
			out = append(out, lines[i])
			continue
		}

		out = append(out, strings.Repeat("#", level)+" "+placeholder)
		count++

		for i+1 < len(lines) {
			if next := headingLevel(lines[i+1]); next > 0 && next <= level {
				break
			}
			i++
		}
	}

	return strings.Join(out, "\n"), count
}

// redactParagraphs replaces any remaining marker-bearing paragraph (a text
// block separated by blank lines) with the placeholder. When the
// paragraph's first line is a heading, its marker prefix is preserved and
// only the heading text becomes the placeholder.
func redactParagraphs(content string, state *compiledState, placeholder string) (string, int) {
	lines := strings.Split(content, "\n")
	out := make([]string, 0, len(lines))
	var para []string
	count := 0

	flush := func() {
		if len(para) == 0 {
			return
		}
		if state.matcher.ContainsMarker(strings.Join(para, "\n")) {
			count++
			if level := headingLevel(para[0]); level > 0 {
				out = append(out, strings.Repeat("#", level)+" "+placeholder)
			} else {
				out = append(out, placeholder)
			}
		} else {
			out = append(out, para...)
		}
		para = para[:0]
	}

	for _, line := range lines {
		if strings.TrimSpace(line) == "" {
			flush()
			out = append(out, line)
			continue
		}
		para = append(para, line)
	}
	flush()

	return strings.Join(out, "\n"), count
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
