package stringutil_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rpminspect/rpminspect/internal/stringutil"
)

func TestAddIfAbsent(t *testing.T) {
	l := stringutil.List{"a", "b"}
	l = stringutil.AddIfAbsent(l, "b")
	assert.Equal(t, stringutil.List{"a", "b"}, l)
	l = stringutil.AddIfAbsent(l, "c")
	assert.Equal(t, stringutil.List{"a", "b", "c"}, l)
}

func TestSetAlgebra(t *testing.T) {
	a := stringutil.List{"a", "b", "c"}
	b := stringutil.List{"b", "c", "d"}

	assert.Equal(t, stringutil.List{"a"}, stringutil.Difference(a, b))
	assert.Equal(t, stringutil.List{"b", "c"}, stringutil.Intersection(a, b))
	assert.Equal(t, stringutil.List{"a", "b", "c", "d"}, stringutil.Union(a, b))
	assert.Equal(t, stringutil.List{"a", "d"}, stringutil.SymmetricDifference(a, b))
}

func TestSplit(t *testing.T) {
	assert.Equal(t, stringutil.List{"foo", "bar", "baz"}, stringutil.Split("foo, bar,,baz", ", "))
}

func TestShorten(t *testing.T) {
	s := stringutil.Shorten("a very long line of progress text", 12)
	require.LessOrEqual(t, len([]rune(s)), 12)
	assert.Contains(t, s, "...")
	assert.Equal(t, "short", stringutil.Shorten("short", 12))
}

func TestXMLEscape(t *testing.T) {
	assert.Equal(t, "&lt;a&gt; &amp; &quot;b&quot; &apos;c&apos;", stringutil.XMLEscape(`<a> & "b" 'c'`))
}

func TestPrintWrap(t *testing.T) {
	out := stringutil.PrintWrap("one two three four five", 11, "")
	for _, line := range splitLines(out) {
		require.LessOrEqual(t, len(line), 11)
	}
}

func splitLines(s string) []string {
	var lines []string
	start := 0
	for i, r := range s {
		if r == '\n' {
			lines = append(lines, s[start:i])
			start = i + 1
		}
	}
	lines = append(lines, s[start:])
	return lines
}
