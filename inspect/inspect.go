// Package inspect implements the inspection registry and dispatcher
// (§4.10): a static, fixed-order table of inspections, each a driver
// function over a Run, plus the per-file iteration helper most drivers
// are built on.
package inspect

import (
	"strings"

	"github.com/gobwas/glob"

	"github.com/rpminspect/rpminspect/header"
	"github.com/rpminspect/rpminspect/peers"
	"github.com/rpminspect/rpminspect/results"
	"github.com/rpminspect/rpminspect/run"
)

// Driver is one inspection's entry point. Its boolean return is advisory
// only — verbose pass/FAIL tracing — the authoritative outcome lives in
// r.Results.
type Driver func(r *run.Run) bool

// Inspection is one row of the registry table.
type Inspection struct {
	Flag                  uint64
	Name                  string
	RequiresBothBuilds    bool
	PerformsSecurityChecks bool
	Description           string
	Driver                Driver
}

// ForEachAfterFile walks every after-side FileEntry of every peer, in peer
// order then file order, invoking f. It does not short-circuit: every file
// is visited regardless of earlier results, so an inspection can collect
// every finding in one pass. The overall return is the logical AND of
// every invocation.
func ForEachAfterFile(r *run.Run, f func(p *peers.SubpackagePeer, file *header.FileEntry) bool) bool {
	overall := true
	for _, p := range r.Peers {
		for _, file := range p.AfterFiles {
			if !f(p, file) {
				overall = false
			}
		}
	}
	return overall
}

// ForEachBeforeFile is ForEachAfterFile's before-side counterpart, used by
// inspections that need to walk what disappeared (e.g. removedfiles).
func ForEachBeforeFile(r *run.Run, f func(p *peers.SubpackagePeer, file *header.FileEntry) bool) bool {
	overall := true
	for _, p := range r.Peers {
		for _, file := range p.BeforeFiles {
			if !f(p, file) {
				overall = false
			}
		}
	}
	return overall
}

// emitOKIfClean appends a single OK record for header when the driver
// produced nothing, per §4.9: "each driver is expected to emit at least one
// record ... on a clean pass, a single OK record."
func emitOKIfClean(r *run.Run, header string) {
	if len(r.Results.ForHeader(header)) == 0 {
		r.Add(results.Record{Severity: results.OK, Waiver: results.NotWaivable, Header: header, Verb: results.VerbOK, Noun: "clean"})
	}
}

func securityWaiver(securityPathPrefixes []string, localpath string) results.WaiverAuthority {
	for _, prefix := range securityPathPrefixes {
		if hasPrefixPath(localpath, prefix) {
			return results.Security
		}
	}
	return results.Anyone
}

func hasPrefixPath(path, prefix string) bool {
	if len(path) < len(prefix) {
		return false
	}
	return path[:len(prefix)] == prefix
}

func noun(template, file string) string {
	return strings.ReplaceAll(template, "${FILE}", file)
}

// matchAny reports whether s matches any of the glob patterns. A pattern
// that fails to compile is skipped rather than treated as an error, the
// same tolerant behavior capsAllowed uses for policy globs.
func matchAny(patterns []string, s string) bool {
	for _, pat := range patterns {
		g, err := glob.Compile(pat, '/')
		if err != nil {
			continue
		}
		if g.Match(s) {
			return true
		}
	}
	return false
}
