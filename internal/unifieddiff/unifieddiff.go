// Package unifieddiff implements the Diff capability: producing a unified
// diff between two text blobs, used by the changedfiles and config
// inspections to report exactly what changed in a modified text file.
//
// Grounded on github.com/sergi/go-diff's diffmatchpatch, the same
// line-diff engine goreleaser's own doc tooling pulls in for changelog
// rendering (see internal/chglog usage in the pack).
package unifieddiff

import (
	"fmt"
	"strings"

	"github.com/sergi/go-diff/diffmatchpatch"
)

// Unified returns a unified-diff-style rendering of the change from before
// to after, with fromName/toName used as the a/ and b/ path labels.
func Unified(fromName, toName, before, after string) string {
	dmp := diffmatchpatch.New()
	a, b, lines := dmp.DiffLinesToChars(before, after)
	diffs := dmp.DiffMain(a, b, false)
	diffs = dmp.DiffCharsToLines(diffs, lines)
	diffs = dmp.DiffCleanupSemantic(diffs)

	var buf strings.Builder
	fmt.Fprintf(&buf, "--- a/%s\n+++ b/%s\n", fromName, toName)
	for _, d := range diffs {
		prefix := " "
		switch d.Type {
		case diffmatchpatch.DiffInsert:
			prefix = "+"
		case diffmatchpatch.DiffDelete:
			prefix = "-"
		}
		for _, line := range splitKeepEmpty(d.Text) {
			buf.WriteString(prefix)
			buf.WriteString(line)
			buf.WriteByte('\n')
		}
	}
	return buf.String()
}

func splitKeepEmpty(text string) []string {
	text = strings.TrimSuffix(text, "\n")
	if text == "" {
		return nil
	}
	return strings.Split(text, "\n")
}

// Equal reports whether before and after are identical, a cheap
// short-circuit inspections can use before asking for a full diff.
func Equal(before, after string) bool {
	return before == after
}

// LineCounts returns the number of added and removed lines a diff between
// before and after would contain, without rendering the full text.
func LineCounts(before, after string) (added, removed int) {
	dmp := diffmatchpatch.New()
	a, b, lines := dmp.DiffLinesToChars(before, after)
	diffs := dmp.DiffMain(a, b, false)
	diffs = dmp.DiffCharsToLines(diffs, lines)
	for _, d := range diffs {
		switch d.Type {
		case diffmatchpatch.DiffInsert:
			added += len(splitKeepEmpty(d.Text))
		case diffmatchpatch.DiffDelete:
			removed += len(splitKeepEmpty(d.Text))
		}
	}
	return added, removed
}
