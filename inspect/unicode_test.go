package inspect_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rpminspect/rpminspect/config"
	"github.com/rpminspect/rpminspect/header"
	"github.com/rpminspect/rpminspect/inspect"
	"github.com/rpminspect/rpminspect/peers"
	"github.com/rpminspect/rpminspect/results"
)

// TestUnicodeFlagsForbiddenCodepoint exercises the bidi-control trap: a
// source file hiding a U+202E RIGHT-TO-LEFT OVERRIDE earns a security-
// waivable BAD with the occurrence's line and column.
func TestUnicodeFlagsForbiddenCodepoint(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "evil.c")
	content := "int ok = 1;\nint bad = 1; /*‮ cmd.exe */\n"
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	file := &header.FileEntry{LocalPath: "/usr/src/foo/evil.c", FullPath: path, Stat: header.Stat{Type: header.TypeRegular}}
	p := &peers.SubpackagePeer{
		Name:        "foo-debugsource",
		Arch:        "src",
		AfterHeader: &header.Header{Name: "foo", Version: "1.0", Release: "1.fc40", Arch: "src"},
		AfterFiles:  []*header.FileEntry{file},
	}
	cfg := &config.RunConfig{
		Threshold:                 results.Verify,
		UnicodeForbiddenCodepoints: map[rune]bool{0x202e: true},
	}
	r := newRun(t, cfg, []*peers.SubpackagePeer{p})

	ok := inspect.Unicode(r)

	assert.False(t, ok)
	recs := r.Results.ForHeader("unicode")
	require.Len(t, recs, 1)
	assert.Equal(t, results.Bad, recs[0].Severity)
	assert.Equal(t, results.Security, recs[0].Waiver)
	assert.Contains(t, recs[0].Message, "U+202E")
}

func TestUnicodeCleanFileEmitsOK(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "fine.c")
	require.NoError(t, os.WriteFile(path, []byte("int ok = 1;\n"), 0o644))

	file := &header.FileEntry{LocalPath: "/usr/src/foo/fine.c", FullPath: path, Stat: header.Stat{Type: header.TypeRegular}}
	p := &peers.SubpackagePeer{
		Name:        "foo-debugsource",
		Arch:        "src",
		AfterHeader: &header.Header{Name: "foo", Version: "1.0", Release: "1.fc40", Arch: "src"},
		AfterFiles:  []*header.FileEntry{file},
	}
	cfg := &config.RunConfig{
		Threshold:                 results.Verify,
		UnicodeForbiddenCodepoints: map[rune]bool{0x202e: true},
	}
	r := newRun(t, cfg, []*peers.SubpackagePeer{p})

	ok := inspect.Unicode(r)

	assert.True(t, ok)
	recs := r.Results.ForHeader("unicode")
	require.Len(t, recs, 1)
	assert.Equal(t, results.OK, recs[0].Severity)
}
