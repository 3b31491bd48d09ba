// Package stringutil provides ordered-sequence and set-algebra containers
// (ordered lists of strings, key to string and key to list-of-string
// mappings) and a handful of text formatting helpers (wrapping, shortening,
// XML escaping). No other package of this module imports it.
package stringutil

import (
	"strings"
)

// List is an ordered sequence of text values. Duplicates are allowed unless
// AddIfAbsent is used to build it up.
type List []string

// AddIfAbsent appends item to list unless it is already present, doing a
// linear scan (lists here are small: file tables, dependency names).
func AddIfAbsent(list List, item string) List {
	for _, v := range list {
		if v == item {
			return list
		}
	}
	return append(list, item)
}

// Contains reports whether item is present in list.
func Contains(list List, item string) bool {
	for _, v := range list {
		if v == item {
			return true
		}
	}
	return false
}

// Difference returns the elements of a not present in b, preserving a's
// order and eliminating duplicates.
func Difference(a, b List) List {
	inB := make(map[string]bool, len(b))
	for _, v := range b {
		inB[v] = true
	}
	var out List
	seen := make(map[string]bool, len(a))
	for _, v := range a {
		if inB[v] || seen[v] {
			continue
		}
		seen[v] = true
		out = append(out, v)
	}
	return out
}

// Intersection returns the elements present in both a and b, preserving a's
// order and eliminating duplicates.
func Intersection(a, b List) List {
	inB := make(map[string]bool, len(b))
	for _, v := range b {
		inB[v] = true
	}
	var out List
	seen := make(map[string]bool, len(a))
	for _, v := range a {
		if !inB[v] || seen[v] {
			continue
		}
		seen[v] = true
		out = append(out, v)
	}
	return out
}

// Union returns the elements of a followed by the elements of b not already
// present, with duplicates eliminated.
func Union(a, b List) List {
	out := make(List, 0, len(a)+len(b))
	seen := make(map[string]bool, len(a)+len(b))
	for _, v := range a {
		if !seen[v] {
			seen[v] = true
			out = append(out, v)
		}
	}
	for _, v := range b {
		if !seen[v] {
			seen[v] = true
			out = append(out, v)
		}
	}
	return out
}

// SymmetricDifference returns the elements present in exactly one of a or b.
func SymmetricDifference(a, b List) List {
	return Union(Difference(a, b), Difference(b, a))
}

// Split tokenizes text on any rune in separators, skipping empty tokens.
func Split(text, separators string) List {
	return List(strings.FieldsFunc(text, func(r rune) bool {
		return strings.ContainsRune(separators, r)
	}))
}

// Shorten truncates text in the middle with an ellipsis so the result is at
// most width runes long. It exists for progress display only; it is never
// used on data that feeds a result message.
func Shorten(text string, width int) string {
	r := []rune(text)
	if len(r) <= width || width <= 3 {
		if width <= 3 {
			return string(r[:min(width, len(r))])
		}
		return text
	}
	keep := width - 3
	head := keep / 2
	tail := keep - head
	return string(r[:head]) + "..." + string(r[len(r)-tail:])
}

func min(a, b int) int {
	if a < b {
		return a
	}
	return b
}

// XMLEscape escapes the five XML-significant characters for embedding text
// in XUnit output.
func XMLEscape(text string) string {
	replacer := strings.NewReplacer(
		"&", "&amp;",
		"<", "&lt;",
		">", "&gt;",
		`"`, "&quot;",
		"'", "&apos;",
	)
	return replacer.Replace(text)
}

// PrintWrap word-wraps text to width, writing each line prefixed by indent.
// Words longer than width are never broken mid-word.
func PrintWrap(text string, width int, indent string) string {
	words := strings.Fields(text)
	if len(words) == 0 {
		return ""
	}
	var b strings.Builder
	line := indent
	lineLen := len(indent)
	first := true
	for _, w := range words {
		extra := len(w)
		if !first {
			extra++ // space
		}
		if lineLen+extra > width && lineLen > len(indent) {
			b.WriteString(line)
			b.WriteString("\n")
			line = indent + w
			lineLen = len(indent) + len(w)
			continue
		}
		if !first {
			line += " "
			lineLen++
		}
		line += w
		lineLen += len(w)
		first = false
	}
	b.WriteString(line)
	return b.String()
}

// Map is a mapping of text to text; insertion order is not significant.
type Map map[string]string

// ListMap is a mapping of text to a List.
type ListMap map[string]List

// Add appends value to the list stored under key, creating it if absent.
func (m ListMap) Add(key, value string) {
	m[key] = append(m[key], value)
}
