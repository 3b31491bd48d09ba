// Package run assembles one end-to-end comparison: the Run value every
// inspection driver receives, and the product-release derivation logic of
// §6 that picks which vendor policy files to load.
package run

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/rpminspect/rpminspect/config"
	"github.com/rpminspect/rpminspect/header"
	"github.com/rpminspect/rpminspect/peers"
	"github.com/rpminspect/rpminspect/policy"
	"github.com/rpminspect/rpminspect/rebase"
	"github.com/rpminspect/rpminspect/results"
)

// Run is the owned value threaded through every inspection driver, per
// the redesign's "no global mutable state" note: the Run replaces the
// original's process-global "ri" struct.
type Run struct {
	Config *config.RunConfig

	Workdir    string
	Worksubdir string

	BeforeSpec string
	AfterSpec  string

	Peers []*peers.SubpackagePeer

	ProductRelease string

	Results *results.Accumulator

	Arches []string

	rebaseDetector *rebase.Detector
	policy         *policy.Store
}

// New assembles a Run from its already-acquired and peer-matched parts.
// ProductRelease must already be resolved (see DeriveProductRelease) before
// calling New, since the policy store is keyed on it.
func New(cfg *config.RunConfig, workdir, worksubdir, beforeSpec, afterSpec, productRelease string, peerList []*peers.SubpackagePeer, arches []string) *Run {
	r := &Run{
		Config:         cfg,
		Workdir:        workdir,
		Worksubdir:     worksubdir,
		BeforeSpec:     beforeSpec,
		AfterSpec:      afterSpec,
		Peers:          peerList,
		ProductRelease: productRelease,
		Results:        results.NewAccumulator(),
		Arches:         arches,
	}
	r.policy = policy.NewStore(cfg.VendorDataDir, productRelease, cfg.LicenseDB)
	r.rebaseDetector = rebase.NewDetector(cfg.RebaseDetection, peerList, r.policy)
	return r
}

// Policy returns the run's lazily-loaded vendor policy store.
func (r *Run) Policy() *policy.Store { return r.policy }

// IsRebase reports whether this run is a rebase, per §4.8.
func (r *Run) IsRebase() bool { return r.rebaseDetector.IsRebase() }

// HasBefore reports whether a before build was supplied at all (as
// distinct from a subpackage within it being absent).
func (r *Run) HasBefore() bool { return r.BeforeSpec != "" }

// Add appends a result record to the run's accumulator, applying §4.8's
// rebase downgrade when header is in the diff group.
func (r *Run) Add(record results.Record) {
	if rebase.DiffGroupInspections[record.Header] {
		record.Severity = rebase.Downgrade(r.IsRebase(), record.Severity, record.Waiver)
	}
	r.Results.Add(record)
}

// PrimaryHeader returns the after side's primary package header: the
// source package if present, else the first subpackage by registry order.
func (r *Run) PrimaryHeader() *header.Header {
	var fallback *header.Header
	for _, p := range r.Peers {
		if !p.HasAfter() {
			continue
		}
		if p.AfterHeader.IsSource() {
			return p.AfterHeader
		}
		if fallback == nil {
			fallback = p.AfterHeader
		}
	}
	return fallback
}

// ExitCode derives the process exit code from the worst severity recorded
// against the configured threshold, per §6's exit-code table.
func (r *Run) ExitCode() int {
	if r.Results.WorstSeverity() >= r.Config.Threshold {
		return 1
	}
	return 0
}

// distTag returns the text after the last "." of an RPM release string
// (without the dot), or "" if release has no dot.
func distTag(release string) string {
	idx := strings.LastIndex(release, ".")
	if idx < 0 || idx == len(release)-1 {
		return ""
	}
	return release[idx+1:]
}

// DeriveProductRelease implements §6's product-release derivation: when
// override is non-empty (the `-r` flag), it wins outright. Otherwise the
// after build's dist tag is taken; if the before build's tag differs, the
// configured products regex map and favor-release policy resolve the
// conflict. Returns an error (mapping to exit code 2) when no consensus
// can be found.
func DeriveProductRelease(override string, beforeHeader, afterHeader *header.Header, products map[string]*regexp.Regexp, favor config.FavorRelease) (string, error) {
	if override != "" {
		return override, nil
	}
	if afterHeader == nil {
		return "", fmt.Errorf("derive product release: no after build")
	}

	afterTag := distTag(afterHeader.Release)
	if afterTag == "" {
		return "", fmt.Errorf("derive product release: after release %q has no dist tag", afterHeader.Release)
	}
	if beforeHeader == nil {
		return afterTag, nil
	}

	beforeTag := distTag(beforeHeader.Release)
	if beforeTag == afterTag {
		return afterTag, nil
	}
	if beforeTag == "" {
		return "", fmt.Errorf("derive product release: before release %q has no dist tag", beforeHeader.Release)
	}

	for token, matcher := range products {
		beforeMatches := matcher.MatchString(beforeHeader.Release)
		afterMatches := matcher.MatchString(afterHeader.Release)
		switch {
		case beforeMatches && afterMatches:
			return token, nil
		case afterMatches && !beforeMatches:
			if favor == config.FavorNewest || favor == config.FavorNone {
				return token, nil
			}
		case beforeMatches && !afterMatches:
			if favor == config.FavorOldest {
				return token, nil
			}
		}
	}

	return "", fmt.Errorf("derive product release: before tag %q and after tag %q disagree and no products entry resolves them", beforeTag, afterTag)
}
