package fsutil_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rpminspect/rpminspect/internal/fsutil"
)

func TestMkdirpIdempotent(t *testing.T) {
	base := t.TempDir()
	target := filepath.Join(base, "a", "b", "c")
	require.NoError(t, fsutil.Mkdirp(target, 0o755))
	require.NoError(t, fsutil.Mkdirp(target, 0o755))

	info, err := os.Stat(target)
	require.NoError(t, err)
	assert.True(t, info.IsDir())
}

func TestMkdirpOverFile(t *testing.T) {
	base := t.TempDir()
	f := filepath.Join(base, "f")
	require.NoError(t, os.WriteFile(f, []byte("x"), 0o644))
	require.Error(t, fsutil.Mkdirp(f, 0o755))
}

func TestRmtreeContentsOnly(t *testing.T) {
	base := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(base, "f"), []byte("x"), 0o644))
	require.NoError(t, fsutil.Rmtree(base, false, true))

	info, err := os.Stat(base)
	require.NoError(t, err)
	assert.True(t, info.IsDir())

	entries, err := os.ReadDir(base)
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestRmtreeMissingIgnoreErrors(t *testing.T) {
	require.NoError(t, fsutil.Rmtree("/does/not/exist/at/all", true, false))
}

func TestFilecmp(t *testing.T) {
	base := t.TempDir()
	a := filepath.Join(base, "a")
	b := filepath.Join(base, "b")
	c := filepath.Join(base, "c")
	require.NoError(t, os.WriteFile(a, []byte("same content"), 0o644))
	require.NoError(t, os.WriteFile(b, []byte("same content"), 0o644))
	require.NoError(t, os.WriteFile(c, []byte("different"), 0o644))

	eq, err := fsutil.Filecmp(a, b)
	require.NoError(t, err)
	assert.True(t, eq)

	eq, err = fsutil.Filecmp(a, c)
	require.NoError(t, err)
	assert.False(t, eq)
}

func TestReadLinesStripsEndings(t *testing.T) {
	base := t.TempDir()
	p := filepath.Join(base, "f")
	require.NoError(t, os.WriteFile(p, []byte("one\ntwo\r\nthree"), 0o644))

	lines, err := fsutil.ReadLines(p)
	require.NoError(t, err)
	assert.Equal(t, []string{"one", "two", "three"}, lines)
}

func TestCopyTree(t *testing.T) {
	src := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(src, "sub"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(src, "sub", "f"), []byte("hi"), 0o644))

	dst := t.TempDir()
	require.NoError(t, fsutil.CopyTree(src, filepath.Join(dst, "out")))

	content, err := os.ReadFile(filepath.Join(dst, "out", "sub", "f"))
	require.NoError(t, err)
	assert.Equal(t, "hi", string(content))
}
