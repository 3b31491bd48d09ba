package inspect

import (
	"strings"

	"github.com/rpminspect/rpminspect/header"
	"github.com/rpminspect/rpminspect/internal/elfinfo"
	"github.com/rpminspect/rpminspect/peers"
	"github.com/rpminspect/rpminspect/results"
	"github.com/rpminspect/rpminspect/run"
)

// isDebugPath reports whether localpath is under one of the debug-info
// locations §4.10 exempts from added/removed/changed-file reporting.
func isDebugPath(localpath string) bool {
	return strings.HasPrefix(localpath, "/usr/lib/debug/") ||
		strings.HasPrefix(localpath, "/usr/src/debug/") ||
		strings.Contains(localpath, "/.build-id/")
}

func isEggInfo(localpath string) bool {
	return strings.Contains(localpath, ".egg-info")
}

func skipAddedRemoved(cfg interface {
	IgnoredFor(inspection, localpath string) bool
}, inspection, localpath string) bool {
	return cfg.IgnoredFor(inspection, localpath) || isDebugPath(localpath) || isEggInfo(localpath)
}

// AddedFiles implements §4.10's addedfiles inspection.
func AddedFiles(r *run.Run) bool {
	ok := true
	ForEachAfterFile(r, func(p *peers.SubpackagePeer, file *header.FileEntry) bool {
		if file.Peer != nil {
			return true
		}
		if skipAddedRemoved(r.Config, "addedfiles", file.LocalPath) {
			return true
		}

		waiver := results.Anyone
		if r.Config != nil {
			waiver = securityWaiver(r.Config.SecurityPathPrefix, file.LocalPath)
		}

		r.Add(results.Record{
			Severity: results.Verify,
			Waiver:   waiver,
			Header:   "addedfiles",
			Message:  "file added: " + file.LocalPath,
			Verb:     results.VerbAdded,
			Noun:     noun("${FILE} added", file.LocalPath),
			Arch:     p.Arch,
			File:     file.LocalPath,
		})
		ok = false
		return true
	})
	return ok
}

// RemovedFiles implements §4.10's removedfiles inspection, including the
// hard BAD-regardless-of-rebase rule for removed shared libraries.
func RemovedFiles(r *run.Run) bool {
	ok := true
	ForEachBeforeFile(r, func(p *peers.SubpackagePeer, file *header.FileEntry) bool {
		if file.Peer != nil {
			return true
		}
		if skipAddedRemoved(r.Config, "removedfiles", file.LocalPath) {
			return true
		}

		waiver := results.Anyone
		if r.Config != nil {
			waiver = securityWaiver(r.Config.SecurityPathPrefix, file.LocalPath)
		}

		severity := results.Verify
		message := "file removed: " + file.LocalPath
		if soname := removedSONAME(file); soname != "" {
			severity = results.Bad
			message = "shared library removed: " + file.LocalPath + " (SONAME " + soname + ")"
		}

		rec := results.Record{
			Severity: severity,
			Waiver:   waiver,
			Header:   "removedfiles",
			Message:  message,
			Verb:     results.VerbRemoved,
			Noun:     noun("${FILE} removed", file.LocalPath),
			Arch:     p.Arch,
			File:     file.LocalPath,
		}

		if severity == results.Bad {
			// Shared-library removal severity is never downgraded by rebase;
			// Run.Add only downgrades records whose Header is in the diff
			// group, so bypass it here via direct accumulation.
			r.Results.Add(rec)
		} else {
			r.Add(rec)
		}
		ok = false
		return true
	})
	return ok
}

// removedSONAME returns the file's SONAME if it is an ELF shared object,
// or "" otherwise. It reads the file directly rather than going through
// FileEntry's cached classifier, since only this inspection needs SONAME.
func removedSONAME(file *header.FileEntry) string {
	if file.FullPath == "" {
		return ""
	}
	isELF, _, _, isSO, err := elfinfo.Classify(file.FullPath)
	if err != nil || !isELF || !isSO {
		return ""
	}
	info, err := elfinfo.Read(file.FullPath)
	if err != nil {
		return ""
	}
	return info.SONAME
}
