package inspect

import (
	"strings"

	"github.com/rpminspect/rpminspect/header"
	"github.com/rpminspect/rpminspect/peers"
	"github.com/rpminspect/rpminspect/results"
	"github.com/rpminspect/rpminspect/run"
)

func isPatchFile(localpath string) bool {
	return strings.HasSuffix(localpath, ".patch") || strings.HasSuffix(localpath, ".diff")
}

// Patches implements §4.10's patches inspection: a source package whose
// patch-file count or cumulative size delta exceeds the configured
// thresholds earns a VERIFY flagging excessive patch churn.
func Patches(r *run.Run) bool {
	cfg := r.Config
	if cfg == nil {
		return true
	}
	changed := 0
	var lineDelta int64
	ForEachAfterFile(r, func(p *peers.SubpackagePeer, file *header.FileEntry) bool {
		if p.AfterHeader == nil || !p.AfterHeader.IsSource() || !isPatchFile(file.LocalPath) {
			return true
		}
		if matchAny(cfg.Patches.IgnoreList, file.LocalPath) {
			return true
		}
		if file.Peer == nil {
			changed++
			lineDelta += file.Stat.Size
			return true
		}
		if file.Peer.DigestHex != file.DigestHex {
			changed++
			delta := file.Stat.Size - file.Peer.Stat.Size
			if delta < 0 {
				delta = -delta
			}
			lineDelta += delta
		}
		return true
	})

	if cfg.Patches.FileCountThreshold > 0 && changed > cfg.Patches.FileCountThreshold {
		r.Add(results.Record{
			Severity: results.Verify,
			Waiver:   results.Anyone,
			Header:   "patches",
			Message:  "patch file churn exceeds the configured file-count threshold",
			Verb:     results.VerbFailed,
			Noun:     "excessive patch churn",
		})
	}
	if cfg.Patches.LineCountThreshold > 0 && lineDelta > int64(cfg.Patches.LineCountThreshold) {
		r.Add(results.Record{
			Severity: results.Verify,
			Waiver:   results.Anyone,
			Header:   "patches",
			Message:  "patch content churn exceeds the configured line-count threshold",
			Verb:     results.VerbFailed,
			Noun:     "excessive patch churn",
		})
	}
	emitOKIfClean(r, "patches")
	return true
}

// Upstream implements §4.10's upstream inspection: the source tarball
// should not change content without a version bump.
func Upstream(r *run.Run) bool {
	ok := true
	ForEachAfterFile(r, func(p *peers.SubpackagePeer, file *header.FileEntry) bool {
		if p.AfterHeader == nil || !p.AfterHeader.IsSource() || !isUpstreamArchive(file.LocalPath) {
			return true
		}
		if file.Peer == nil || p.BeforeHeader == nil {
			return true
		}
		if p.BeforeHeader.Version == p.AfterHeader.Version && file.Peer.DigestHex != file.DigestHex {
			r.Add(results.Record{
				Severity: results.Verify,
				Waiver:   results.Anyone,
				Header:   "upstream",
				Message:  file.LocalPath + " content changed without a version bump",
				Verb:     results.VerbChanged,
				Noun:     noun("${FILE} upstream source changed silently", file.LocalPath),
				Arch:     p.Arch,
				File:     file.LocalPath,
			})
			ok = false
		}
		return true
	})
	emitOKIfClean(r, "upstream")
	return ok
}

func isUpstreamArchive(localpath string) bool {
	for _, suf := range []string{".tar.gz", ".tar.bz2", ".tar.xz", ".tar.zst", ".tgz", ".zip"} {
		if strings.HasSuffix(localpath, suf) {
			return true
		}
	}
	return false
}

// RPMDeps implements §4.10's rpmdeps inspection: Requires/Provides (and
// the other dependency tag families) are diffed per subpackage, ignoring
// configured patterns, with one VERIFY per added or removed dependency.
func RPMDeps(r *run.Run) bool {
	ok := true
	for _, p := range r.Peers {
		if !p.IsPaired() {
			continue
		}
		for kind, afterDeps := range p.AfterHeader.Deps {
			beforeDeps := p.BeforeHeader.Deps[kind]
			beforeNames := depNameSet(beforeDeps)
			afterNames := depNameSet(afterDeps)

			for name := range afterNames {
				if beforeNames[name] || rpmDepIgnored(r, kind, name) {
					continue
				}
				r.Add(results.Record{
					Severity: results.Verify,
					Waiver:   results.Anyone,
					Header:   "rpmdeps",
					Message:  p.Name + " gained dependency " + name,
					Verb:     results.VerbAdded,
					Noun:     "dependency " + name + " added",
					Arch:     p.Arch,
				})
				ok = false
			}
			for name := range beforeNames {
				if afterNames[name] || rpmDepIgnored(r, kind, name) {
					continue
				}
				r.Add(results.Record{
					Severity: results.Verify,
					Waiver:   results.Anyone,
					Header:   "rpmdeps",
					Message:  p.Name + " lost dependency " + name,
					Verb:     results.VerbRemoved,
					Noun:     "dependency " + name + " removed",
					Arch:     p.Arch,
				})
				ok = false
			}
		}
	}
	emitOKIfClean(r, "rpmdeps")
	return ok
}

func depNameSet(deps []header.Dependency) map[string]bool {
	set := make(map[string]bool, len(deps))
	for _, d := range deps {
		set[d.Name] = true
	}
	return set
}

func rpmDepIgnored(r *run.Run, kind header.DepKind, name string) bool {
	if r.Config == nil {
		return false
	}
	re, ok := r.Config.RPMDepsIgnore[kind.String()]
	return ok && re.MatchString(name)
}

// Changelog implements §4.10's changelog inspection: the after build must
// have more changelog entries than the before build, and its newest entry
// must not be older than the before build's newest. It does not check that
// each of the before build's entries is still present.
func Changelog(r *run.Run) bool {
	after := r.PrimaryHeader()
	if after == nil {
		return true
	}
	var before *header.Header
	for _, p := range r.Peers {
		if p.BeforeHeader != nil && p.BeforeHeader.IsSource() {
			before = p.BeforeHeader
			break
		}
	}
	if before == nil || len(before.Changelog) == 0 {
		emitOKIfClean(r, "changelog")
		return true
	}
	if len(after.Changelog) <= len(before.Changelog) {
		r.Add(results.Record{
			Severity: results.Verify,
			Waiver:   results.Anyone,
			Header:   "changelog",
			Message:  "changelog gained no new entries",
			Verb:     results.VerbFailed,
			Noun:     "stale changelog",
		})
	} else if after.Changelog[0].Time.Before(before.Changelog[0].Time) {
		r.Add(results.Record{
			Severity: results.Verify,
			Waiver:   results.Anyone,
			Header:   "changelog",
			Message:  "newest changelog entry is older than the before build's",
			Verb:     results.VerbFailed,
			Noun:     "changelog regressed",
		})
	}
	emitOKIfClean(r, "changelog")
	return true
}
