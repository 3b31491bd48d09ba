package unifieddiff_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/rpminspect/rpminspect/internal/unifieddiff"
)

func TestUnifiedMarksAddedAndRemoved(t *testing.T) {
	before := "one\ntwo\nthree\n"
	after := "one\ntwo-changed\nthree\nfour\n"

	out := unifieddiff.Unified("a/file", "b/file", before, after)
	assert.Contains(t, out, "--- a/a/file")
	assert.Contains(t, out, "+++ b/b/file")
	assert.Contains(t, out, "-two")
	assert.Contains(t, out, "+two-changed")
	assert.Contains(t, out, "+four")
}

func TestEqual(t *testing.T) {
	assert.True(t, unifieddiff.Equal("same", "same"))
	assert.False(t, unifieddiff.Equal("a", "b"))
}

func TestLineCounts(t *testing.T) {
	before := "one\ntwo\nthree\n"
	after := "one\ntwo\nthree\nfour\nfive\n"

	added, removed := unifieddiff.LineCounts(before, after)
	assert.Equal(t, 2, added)
	assert.Equal(t, 0, removed)
}
