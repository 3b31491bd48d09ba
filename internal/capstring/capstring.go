// Package capstring implements the CapabilityParser capability: parsing
// and comparing the libcap textual capability form (cap_from_text/
// cap_to_text in libcap) attached to files via security.capability xattrs.
//
// No capability-parsing library appears anywhere in the retrieved corpus
// (see DESIGN.md); the textual grammar is small and fixed by libcap itself,
// so it is implemented directly against that grammar rather than against
// any example's code.
package capstring

import (
	"fmt"
	"sort"
	"strings"
)

// Flag is one of the three libcap capability sets a clause can target.
type Flag int

const (
	FlagEffective Flag = 1 << iota
	FlagPermitted
	FlagInheritable
)

// Set maps a capability name (e.g. "cap_net_raw") to the OR of the flags
// granted to it.
type Set map[string]Flag

// Parse parses a libcap textual capability string such as
// "cap_net_raw,cap_net_admin=eip" or "cap_sys_chroot+ep" into a Set.
//
// The grammar is a whitespace-separated list of clauses, each a
// comma-separated list of capability names followed by an operator (=, +, -)
// and a combination of e/i/p letters. The name "all" is not expanded; it is
// kept as a literal name.
func Parse(text string) (Set, error) {
	set := make(Set)
	text = strings.TrimSpace(text)
	if text == "" {
		return set, nil
	}

	for _, clause := range splitClauses(text) {
		names, op, flags, err := parseClause(clause)
		if err != nil {
			return nil, fmt.Errorf("capability clause %q: %w", clause, err)
		}
		for _, name := range names {
			switch op {
			case '=', '+':
				set[name] |= flags
			case '-':
				set[name] &^= flags
			}
		}
	}
	return set, nil
}

// splitClauses splits on operator boundaries: a new clause begins after
// each run of e/i/p letters following an operator, at the next capability
// name list.
func splitClauses(text string) []string {
	var clauses []string
	start := 0
	for i := 0; i < len(text); i++ {
		switch text[i] {
		case '=', '+', '-':
			// consume following flag letters
			j := i + 1
			for j < len(text) && isFlagLetter(text[j]) {
				j++
			}
			clauses = append(clauses, text[start:j])
			start = j
			i = j - 1
		}
	}
	if start < len(text) {
		clauses = append(clauses, text[start:])
	}
	return clauses
}

func isFlagLetter(b byte) bool {
	return b == 'e' || b == 'i' || b == 'p'
}

func parseClause(clause string) (names []string, op byte, flags Flag, err error) {
	idx := strings.IndexAny(clause, "=+-")
	if idx < 0 {
		return nil, 0, 0, fmt.Errorf("missing operator")
	}
	namePart := clause[:idx]
	op = clause[idx]
	flagPart := clause[idx+1:]

	for _, n := range strings.Split(namePart, ",") {
		n = strings.TrimSpace(strings.ToLower(n))
		if n == "" {
			continue
		}
		names = append(names, n)
	}
	if len(names) == 0 {
		return nil, 0, 0, fmt.Errorf("no capability names")
	}

	for _, c := range flagPart {
		switch c {
		case 'e':
			flags |= FlagEffective
		case 'i':
			flags |= FlagInheritable
		case 'p':
			flags |= FlagPermitted
		default:
			return nil, 0, 0, fmt.Errorf("unknown flag letter %q", c)
		}
	}
	return names, op, flags, nil
}

// String renders set back to libcap textual form, grouping capability names
// that share the same flag combination and ordering deterministically.
func (set Set) String() string {
	if len(set) == 0 {
		return ""
	}
	byFlags := make(map[Flag][]string)
	for name, flags := range set {
		byFlags[flags] = append(byFlags[flags], name)
	}

	var groups []Flag
	for flags := range byFlags {
		groups = append(groups, flags)
	}
	sort.Slice(groups, func(i, j int) bool { return groups[i] < groups[j] })

	var parts []string
	for _, flags := range groups {
		names := byFlags[flags]
		sort.Strings(names)
		parts = append(parts, fmt.Sprintf("%s=%s", strings.Join(names, ","), flagLetters(flags)))
	}
	return strings.Join(parts, " ")
}

func flagLetters(flags Flag) string {
	var b strings.Builder
	if flags&FlagEffective != 0 {
		b.WriteByte('e')
	}
	if flags&FlagInheritable != 0 {
		b.WriteByte('i')
	}
	if flags&FlagPermitted != 0 {
		b.WriteByte('p')
	}
	return b.String()
}

// Equal reports whether two Sets grant exactly the same capabilities with
// the same flags.
func Equal(a, b Set) bool {
	if len(a) != len(b) {
		return false
	}
	for name, flags := range a {
		if b[name] != flags {
			return false
		}
	}
	return true
}

// Names returns the sorted capability names present in set, regardless of
// flag combination.
func (set Set) Names() []string {
	names := make([]string, 0, len(set))
	for name := range set {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
