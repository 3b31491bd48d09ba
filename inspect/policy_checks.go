package inspect

import (
	"github.com/rpminspect/rpminspect/config"
	"github.com/rpminspect/rpminspect/header"
	"github.com/rpminspect/rpminspect/peers"
	"github.com/rpminspect/rpminspect/results"
	"github.com/rpminspect/rpminspect/run"
)

// Files implements §4.10's files inspection: the after build must not ship
// any file under a configured forbidden path.
func Files(r *run.Run) bool {
	if r.Config == nil || len(r.Config.FilesForbiddenPaths) == 0 {
		return true
	}
	ok := true
	ForEachAfterFile(r, func(p *peers.SubpackagePeer, file *header.FileEntry) bool {
		for _, forbidden := range r.Config.FilesForbiddenPaths {
			if hasPrefixPath(file.LocalPath, forbidden) {
				r.Add(results.Record{
					Severity: results.Bad,
					Waiver:   results.Anyone,
					Header:   "files",
					Message:  file.LocalPath + " is under forbidden path " + forbidden,
					Verb:     results.VerbFailed,
					Noun:     noun("${FILE} is forbidden", file.LocalPath),
					Arch:     p.Arch,
					File:     file.LocalPath,
				})
				ok = false
				return true
			}
		}
		return true
	})
	emitOKIfClean(r, "files")
	return ok
}

// Ownership implements §4.10's ownership inspection: binaries under the
// configured bin paths must carry the expected owner/group, and no file
// anywhere may carry a forbidden owner or group.
func Ownership(r *run.Run) bool {
	if r.Config == nil {
		return true
	}
	cfg := r.Config.Ownership
	ok := true
	ForEachAfterFile(r, func(p *peers.SubpackagePeer, file *header.FileEntry) bool {
		if contains(cfg.ForbiddenOwners, file.Owner) {
			r.Add(results.Record{
				Severity: results.Bad,
				Waiver:   results.Anyone,
				Header:   "ownership",
				Message:  file.LocalPath + " is owned by forbidden user " + file.Owner,
				Verb:     results.VerbFailed,
				Noun:     noun("${FILE} has a forbidden owner", file.LocalPath),
				Arch:     p.Arch,
				File:     file.LocalPath,
			})
			ok = false
		}
		if contains(cfg.ForbiddenGroups, file.Group) {
			r.Add(results.Record{
				Severity: results.Bad,
				Waiver:   results.Anyone,
				Header:   "ownership",
				Message:  file.LocalPath + " is owned by forbidden group " + file.Group,
				Verb:     results.VerbFailed,
				Noun:     noun("${FILE} has a forbidden group", file.LocalPath),
				Arch:     p.Arch,
				File:     file.LocalPath,
			})
			ok = false
		}

		inBinPath := false
		for _, dir := range cfg.BinPaths {
			if hasPrefixPath(file.LocalPath, dir) {
				inBinPath = true
				break
			}
		}
		if !inBinPath {
			return true
		}
		if cfg.BinOwner != "" && file.Owner != cfg.BinOwner {
			r.Add(results.Record{
				Severity: results.Verify,
				Waiver:   results.Anyone,
				Header:   "ownership",
				Message:  file.LocalPath + " owned by " + file.Owner + ", expected " + cfg.BinOwner,
				Verb:     results.VerbFailed,
				Noun:     noun("${FILE} has unexpected owner", file.LocalPath),
				Arch:     p.Arch,
				File:     file.LocalPath,
			})
			ok = false
		}
		if cfg.BinGroup != "" && file.Group != cfg.BinGroup {
			r.Add(results.Record{
				Severity: results.Verify,
				Waiver:   results.Anyone,
				Header:   "ownership",
				Message:  file.LocalPath + " grouped " + file.Group + ", expected " + cfg.BinGroup,
				Verb:     results.VerbFailed,
				Noun:     noun("${FILE} has unexpected group", file.LocalPath),
				Arch:     p.Arch,
				File:     file.LocalPath,
			})
			ok = false
		}
		return true
	})
	emitOKIfClean(r, "ownership")
	return ok
}

// Filesize implements §4.10's filesize inspection: a paired file that
// grew past the configured threshold is reported, VERIFY unless the
// inspection is configured info-only.
func Filesize(r *run.Run) bool {
	if r.Config == nil || r.Config.FilesizeThresholdBytes <= 0 {
		return true
	}
	severity := results.Verify
	if r.Config.FilesizeInfoOnly {
		severity = results.Info
	}

	ok := true
	ForEachAfterFile(r, func(p *peers.SubpackagePeer, file *header.FileEntry) bool {
		before := file.Peer
		if before == nil {
			return true
		}
		grew := file.Stat.Size - before.Stat.Size
		if grew < r.Config.FilesizeThresholdBytes {
			return true
		}
		r.Add(results.Record{
			Severity: severity,
			Waiver:   results.Anyone,
			Header:   "filesize",
			Message:  file.LocalPath + " grew past the configured size threshold",
			Verb:     results.VerbChanged,
			Noun:     noun("${FILE} grew significantly", file.LocalPath),
			Arch:     p.Arch,
			File:     file.LocalPath,
		})
		ok = false
		return true
	})
	emitOKIfClean(r, "filesize")
	return ok
}

// Modularity implements §4.10's modularity inspection: when the product
// release matches a configured modular release pattern and the run's
// ModularityStaticContext setting is forbidden, it emits a VERIFY. The
// required and recommend settings produce no finding, and no module
// metadata of the build is read.
func Modularity(r *run.Run) bool {
	if r.Config == nil || r.Config.ModularityStaticContext == config.ModularityUnset {
		return true
	}
	for pattern, re := range r.Config.ModularityRelease {
		if !re.MatchString(r.ProductRelease) {
			continue
		}
		if r.Config.ModularityStaticContext == config.ModularityForbidden {
			r.Add(results.Record{
				Severity: results.Verify,
				Waiver:   results.Anyone,
				Header:   "modularity",
				Message:  "product release " + r.ProductRelease + " matches modular pattern " + pattern + " but static context is forbidden here",
				Verb:     results.VerbFailed,
				Noun:     "modularity context mismatch",
			})
		}
		break
	}
	emitOKIfClean(r, "modularity")
	return true
}
