// Package diff renders unified diffs between two versions of an entry source.
package diff

import (
	"fmt"
	"strings"

	difflib "github.com/pmezard/go-difflib/difflib"
)

// DefaultContext is the number of context lines around each hunk.
const DefaultContext = 3

// Unified returns a unified diff of before↦after labelled with the entry id,
// with the given number of context lines. An empty string means both sources
// are equal.
func Unified(id, before, after string, lines int) (string, error) {
	if before == after {
		return "", nil
	}
	if lines <= 0 {
		lines = DefaultContext
	}
	from := "a/" + id + ".org"
	if before == "" {
		from = "/dev/null"
	}
	s, err := difflib.GetUnifiedDiffString(difflib.UnifiedDiff{
		A:        splitLinesKeepNL(before),
		B:        splitLinesKeepNL(after),
		FromFile: from,
		ToFile:   "b/" + id + ".org",
		Context:  lines,
	})
	if err != nil {
		return "", fmt.Errorf("diff: %s: %w", id, err)
	}
	return s, nil
}

// splitLinesKeepNL splits into lines and keeps newline characters.
// The last line gets one so a missing final newline does not show up as a change.
func splitLinesKeepNL(s string) []string {
	if s == "" {
		return []string{}
	}
	if !strings.HasSuffix(s, "\n") {
		s += "\n"
	}
	lines := strings.SplitAfter(s, "\n")
	return lines[:len(lines)-1]
}
