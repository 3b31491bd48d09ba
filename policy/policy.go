// Package policy loads per-product-release vendor policy data: fileinfo
// expectations, capability allowlists, the rebaseable package list, the
// politics table, security rules, and approved licenses. Every list is
// lazily loaded on first consumer demand and, once loaded, is immutable.
//
// Grounded on the line-oriented "whitespace-split fields, '#' comments,
// blank lines skipped" convention §4.5 specifies; the JSON license
// database is decoded with encoding/json since it is a plain keyed
// document with no layered-overlay semantics of its own.
package policy

import (
	"bufio"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"sync"

	"github.com/gobwas/glob"

	"github.com/rpminspect/rpminspect/results"
)

// FileinfoEntry is one expected (mode, owner, group) record for a path.
type FileinfoEntry struct {
	Mode     os.FileMode
	Owner    string
	Group    string
	Filepath string
}

// CapsEntry is one allow-listed capability grant.
type CapsEntry struct {
	PackageGlob    string
	FilepathGlob   string
	Capabilities   string
}

// RebaseableList is the set of package names whose runs are always treated
// as a rebase, even when the version is unchanged.
type RebaseableList map[string]bool

// PoliticsEntry is one allow/deny rule; digest == "*" matches any content.
type PoliticsEntry struct {
	Pattern string
	Digest  string
	Allow   bool
}

// SecurityRule matches a (package, version, release) triple to an action
// for one check type.
type SecurityRule struct {
	Package string
	Version string
	Release string
	Type    string
	Action  string // inform | verify | fail
}

// Severity maps a security rule's textual action to a result severity.
func (r SecurityRule) Severity() results.Severity {
	switch r.Action {
	case "fail":
		return results.Bad
	case "verify":
		return results.Verify
	default:
		return results.Info
	}
}

// LicenseEntry is one row of an approved-license database.
type LicenseEntry struct {
	FedoraAbbrev string `json:"fedora_abbrev"`
	FedoraName   string `json:"fedora_name"`
	SPDXAbbrev   string `json:"spdx_abbrev"`
	Approved     bool   `json:"approved"`
}

// Store lazily loads and caches every vendor policy list for one
// product-release under one vendor-data directory. A Store is safe to
// share across an entire run; each list is loaded at most once
// (single-flight via its own mutex).
type Store struct {
	vendorDataDir  string
	productRelease string
	licenseDBNames []string

	fileinfoOnce sync.Once
	fileinfo     []FileinfoEntry
	fileinfoErr  error

	capsOnce sync.Once
	caps     []CapsEntry
	capsErr  error

	rebaseableOnce sync.Once
	rebaseable     RebaseableList
	rebaseableErr  error

	politicsOnce sync.Once
	politics     []PoliticsEntry
	politicsErr  error

	securityOnce sync.Once
	security     []SecurityRule
	securityErr  error

	licensesOnce sync.Once
	licenses     map[string]LicenseEntry
	licensesErr  error

	warnings []string
	warnMu   sync.Mutex
}

// NewStore returns a Store rooted at vendorDataDir for productRelease.
func NewStore(vendorDataDir, productRelease string, licenseDBNames []string) *Store {
	return &Store{
		vendorDataDir:  vendorDataDir,
		productRelease: productRelease,
		licenseDBNames: licenseDBNames,
	}
}

func (s *Store) warn(format string, args ...any) {
	s.warnMu.Lock()
	defer s.warnMu.Unlock()
	s.warnings = append(s.warnings, fmt.Sprintf(format, args...))
}

// Warnings returns the accumulated per-malformed-line diagnostics, each of
// which corresponds to one DIAGNOSTIC result per §7's policy-data error
// handling.
func (s *Store) Warnings() []string {
	s.warnMu.Lock()
	defer s.warnMu.Unlock()
	out := make([]string, len(s.warnings))
	copy(out, s.warnings)
	return out
}

func (s *Store) policyPath(dir string) string {
	return filepath.Join(s.vendorDataDir, dir, s.productRelease)
}

// readLines opens path and yields its non-comment, non-blank lines split on
// whitespace. A missing file is not an error: it yields zero lines.
func (s *Store) readLines(path string, onFields func(fields []string, lineno int)) error {
	f, err := os.Open(path) //nolint:gosec
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return err
	}
	defer f.Close() // nolint: errcheck

	scanner := bufio.NewScanner(f)
	lineno := 0
	for scanner.Scan() {
		lineno++
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		onFields(strings.Fields(line), lineno)
	}
	return scanner.Err()
}

// Fileinfo returns the fileinfo policy list, loading it on first call.
func (s *Store) Fileinfo() ([]FileinfoEntry, error) {
	s.fileinfoOnce.Do(func() {
		path := s.policyPath("fileinfo")
		s.fileinfoErr = s.readLines(path, func(fields []string, lineno int) {
			if len(fields) != 4 {
				s.warn("%s:%d: expected 4 fields, got %d", path, lineno, len(fields))
				return
			}
			mode, err := strconv.ParseUint(fields[0], 8, 32)
			if err != nil {
				s.warn("%s:%d: invalid mode %q", path, lineno, fields[0])
				return
			}
			s.fileinfo = append(s.fileinfo, FileinfoEntry{
				Mode:     os.FileMode(mode),
				Owner:    fields[1],
				Group:    fields[2],
				Filepath: fields[3],
			})
		})
	})
	return s.fileinfo, s.fileinfoErr
}

// Caps returns the capabilities allowlist, loading it on first call. Lines
// are "<package-glob> <file-glob> = <cap-text...>".
func (s *Store) Caps() ([]CapsEntry, error) {
	s.capsOnce.Do(func() {
		path := s.policyPath("capabilities")
		s.capsErr = s.readLines(path, func(fields []string, lineno int) {
			eq := indexOf(fields, "=")
			if eq < 2 || eq+1 >= len(fields) {
				s.warn("%s:%d: expected '<pkg> <file> = <caps>'", path, lineno)
				return
			}
			s.caps = append(s.caps, CapsEntry{
				PackageGlob:  fields[0],
				FilepathGlob: fields[1],
				Capabilities: strings.Join(fields[eq+1:], " "),
			})
		})
	})
	return s.caps, s.capsErr
}

func indexOf(fields []string, needle string) int {
	for i, f := range fields {
		if f == needle {
			return i
		}
	}
	return -1
}

// Rebaseable returns the rebaseable package-name set, loading it on first
// call.
func (s *Store) Rebaseable() (RebaseableList, error) {
	s.rebaseableOnce.Do(func() {
		list := RebaseableList{}
		path := s.policyPath("rebaseable")
		s.rebaseableErr = s.readLines(path, func(fields []string, lineno int) {
			if len(fields) != 1 {
				s.warn("%s:%d: expected one package name", path, lineno)
				return
			}
			list[fields[0]] = true
		})
		s.rebaseable = list
	})
	return s.rebaseable, s.rebaseableErr
}

// Politics returns the politics allow/deny list, loading it on first call.
func (s *Store) Politics() ([]PoliticsEntry, error) {
	s.politicsOnce.Do(func() {
		path := s.policyPath("politics")
		s.politicsErr = s.readLines(path, func(fields []string, lineno int) {
			if len(fields) != 3 {
				s.warn("%s:%d: expected '<pattern> <digest|*> <allow|deny>'", path, lineno)
				return
			}
			allow := fields[2] == "allow"
			if fields[2] != "allow" && fields[2] != "deny" {
				s.warn("%s:%d: unknown action %q", path, lineno, fields[2])
				return
			}
			s.politics = append(s.politics, PoliticsEntry{
				Pattern: fields[0],
				Digest:  fields[1],
				Allow:   allow,
			})
		})
	})
	return s.politics, s.politicsErr
}

// MatchPolitics returns the result of scanning the politics list for
// localpath and digest: the *last* matching pattern wins, per §4.10.
func (s *Store) MatchPolitics(localpath, digest string) (PoliticsEntry, bool) {
	entries, err := s.Politics()
	if err != nil {
		return PoliticsEntry{}, false
	}
	var match PoliticsEntry
	found := false
	for _, e := range entries {
		g, err := glob.Compile(e.Pattern, '/')
		if err != nil {
			continue
		}
		if !g.Match(localpath) {
			continue
		}
		if e.Digest != "*" && e.Digest != digest {
			continue
		}
		match = e
		found = true
	}
	return match, found
}

// Security returns the security rule table, loading it on first call.
func (s *Store) Security() ([]SecurityRule, error) {
	s.securityOnce.Do(func() {
		path := s.policyPath("security")
		s.securityErr = s.readLines(path, func(fields []string, lineno int) {
			if len(fields) != 5 {
				s.warn("%s:%d: expected '<pkg> <version> <release> <type> <action>'", path, lineno)
				return
			}
			s.security = append(s.security, SecurityRule{
				Package: fields[0],
				Version: fields[1],
				Release: fields[2],
				Type:    fields[3],
				Action:  fields[4],
			})
		})
	})
	return s.security, s.securityErr
}

// MatchSecurity implements §4.5's security-rule-matching algorithm: scan in
// order, matching (name, version, release) against glob patterns; if no
// rule matches, the effective action defaults per defaultInform.
func (s *Store) MatchSecurity(name, version, release, ruleType string, defaultInform bool) results.Severity {
	rules, err := s.Security()
	if err == nil {
		for _, r := range rules {
			if r.Type != ruleType {
				continue
			}
			if !globOrLiteralMatch(r.Package, name) {
				continue
			}
			if !globOrLiteralMatch(r.Version, version) {
				continue
			}
			if !globOrLiteralMatch(r.Release, release) {
				continue
			}
			return r.Severity()
		}
	}
	if defaultInform {
		return results.Info
	}
	return results.Verify
}

func globOrLiteralMatch(pattern, value string) bool {
	if pattern == "*" || pattern == "" {
		return true
	}
	g, err := glob.Compile(pattern)
	if err != nil {
		return pattern == value
	}
	return g.Match(value)
}

// Licenses returns the merged approved-license database across every
// configured licensedb file name, loading it on first call.
func (s *Store) Licenses() (map[string]LicenseEntry, error) {
	s.licensesOnce.Do(func() {
		merged := map[string]LicenseEntry{}
		for _, name := range s.licenseDBNames {
			path := filepath.Join(s.vendorDataDir, "licenses", name)
			data, err := os.ReadFile(path) //nolint:gosec
			if err != nil {
				if os.IsNotExist(err) {
					continue
				}
				s.licensesErr = err
				return
			}
			var db map[string]LicenseEntry
			if err := json.Unmarshal(data, &db); err != nil {
				s.warn("%s: %v", path, err)
				continue
			}
			for k, v := range db {
				merged[k] = v
			}
		}
		s.licenses = merged
	})
	return s.licenses, s.licensesErr
}

// IsApprovedLicense reports whether name appears in the merged license
// database and is marked approved.
func (s *Store) IsApprovedLicense(name string) bool {
	db, err := s.Licenses()
	if err != nil {
		return false
	}
	entry, ok := db[name]
	return ok && entry.Approved
}
