// Package rebase implements the cached is_rebase(run) predicate of §4.8:
// whether the after build differs enough from the before build that most
// diff-group inspections should downgrade their severity by one tier.
package rebase

import (
	"github.com/Masterminds/semver/v3"

	"github.com/rpminspect/rpminspect/peers"
	"github.com/rpminspect/rpminspect/policy"
	"github.com/rpminspect/rpminspect/results"
)

// Detector caches the is_rebase decision for one run; the first call to
// IsRebase computes and freezes the answer.
type Detector struct {
	enabled    bool
	peers      []*peers.SubpackagePeer
	rebaseable *policy.Store

	computed bool
	result   bool
}

// NewDetector returns a Detector for one run's peer list. enabled mirrors
// RunConfig.RebaseDetection; rebaseable may be nil if no vendor policy
// store is configured.
func NewDetector(enabled bool, peerList []*peers.SubpackagePeer, rebaseable *policy.Store) *Detector {
	return &Detector{enabled: enabled, peers: peerList, rebaseable: rebaseable}
}

// IsRebase returns whether this run should be treated as a rebase, caching
// the result on first call.
func (d *Detector) IsRebase() bool {
	if d.computed {
		return d.result
	}
	d.computed = true
	d.result = d.compute()
	return d.result
}

func (d *Detector) compute() bool {
	if !d.enabled {
		return false
	}

	for _, p := range d.peers {
		if !p.IsPaired() {
			continue
		}
		if p.BeforeHeader.Name != p.AfterHeader.Name {
			continue
		}
		if p.BeforeHeader.Version != p.AfterHeader.Version {
			return true
		}
	}

	if d.rebaseable == nil {
		return false
	}
	list, err := d.rebaseable.Rebaseable()
	if err != nil {
		return false
	}
	for _, p := range d.peers {
		if p.HasAfter() && list[p.AfterHeader.Name] {
			return true
		}
	}
	return false
}

// VersionCompare orders two RPM version strings using semver where
// possible, falling back to lexicographic comparison for the many RPM
// version strings (e.g. "1.2.3~rc1", vendor snapshot tags) that are not
// strict semver. Returns -1, 0, 1 like strings.Compare.
func VersionCompare(a, b string) int {
	va, errA := semver.NewVersion(a)
	vb, errB := semver.NewVersion(b)
	if errA == nil && errB == nil {
		return va.Compare(vb)
	}
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	default:
		return 0
	}
}

// Downgrade applies §4.8's one-tier downgrade to a diff-group inspection's
// severity when the run is a rebase: VERIFY→INFO, BAD→INFO for advisory
// findings. Security-gated findings (waiver == Security) are never
// downgraded.
func Downgrade(isRebase bool, severity results.Severity, waiver results.WaiverAuthority) results.Severity {
	if !isRebase || waiver == results.Security {
		return severity
	}
	switch severity {
	case results.Verify, results.Bad:
		return results.Info
	default:
		return severity
	}
}

// DiffGroupInspections names the inspections §4.8 downgrades when a run is
// detected as a rebase.
var DiffGroupInspections = map[string]bool{
	"addedfiles":   true,
	"removedfiles": true,
	"movedfiles":   true,
	"changedfiles": true,
	"doc":          true,
	"config":       true,
	"patches":      true,
	"upstream":     true,
	"kmidiff":      true,
	"abidiff":      true,
}
