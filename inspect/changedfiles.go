package inspect

import (
	"context"
	"strings"

	"github.com/rpminspect/rpminspect/header"
	"github.com/rpminspect/rpminspect/internal/archive"
	"github.com/rpminspect/rpminspect/internal/exttool"
	"github.com/rpminspect/rpminspect/internal/unifieddiff"
	"github.com/rpminspect/rpminspect/peers"
	"github.com/rpminspect/rpminspect/results"
	"github.com/rpminspect/rpminspect/run"
)

// ignoredBytecode reports whether localpath is a compiled Python bytecode
// file, which §4.10 says changedfiles never reports on (it changes on every
// build regardless of source changes).
func ignoredBytecode(localpath string) bool {
	return strings.HasSuffix(localpath, ".pyc") || strings.HasSuffix(localpath, ".pyo")
}

var headerExtensions = map[string]bool{
	".h": true, ".hh": true, ".hpp": true, ".hxx": true,
}

func isHeaderFile(localpath string) bool {
	for ext := range headerExtensions {
		if strings.HasSuffix(localpath, ext) {
			return true
		}
	}
	return false
}

// ChangedFiles implements §4.10's changedfiles inspection: paired files
// whose digest differs are compared by the most specific comparator that
// applies (compressed content, gettext translation strings, C/C++ header
// unified diff), falling back to a plain digest mismatch report.
func ChangedFiles(r *run.Run) bool {
	ok := true
	ForEachAfterFile(r, func(p *peers.SubpackagePeer, file *header.FileEntry) bool {
		before := file.Peer
		if before == nil || file.MovedPath || file.MovedSubpackage {
			return true
		}
		if file.DigestHex == before.DigestHex {
			return true
		}
		if ignoredBytecode(file.LocalPath) {
			return true
		}

		message, details := describeChange(before, file)

		r.Add(results.Record{
			Severity: results.Verify,
			Waiver:   securityWaiver(securityPrefixes(r), file.LocalPath),
			Header:   "changedfiles",
			Message:  message,
			Details:  details,
			Verb:     results.VerbChanged,
			Noun:     noun("${FILE} changed", file.LocalPath),
			Arch:     p.Arch,
			File:     file.LocalPath,
		})
		ok = false
		return true
	})
	return ok
}

func securityPrefixes(r *run.Run) []string {
	if r.Config == nil {
		return nil
	}
	return r.Config.SecurityPathPrefix
}

func describeChange(before, after *header.FileEntry) (message, details string) {
	message = "file changed: " + after.LocalPath

	if isCompressed(after.LocalPath) {
		beforeBytes, errB := archive.ReadAllDecompressed(before.FullPath)
		afterBytes, errA := archive.ReadAllDecompressed(after.FullPath)
		if errB == nil && errA == nil {
			if string(beforeBytes) == string(afterBytes) {
				message = "compressed file changed but decompressed content is identical: " + after.LocalPath
				return message, ""
			}
			details = unifieddiff.Unified(before.LocalPath, after.LocalPath, string(beforeBytes), string(afterBytes))
			return message, details
		}
	}

	if strings.HasSuffix(after.LocalPath, ".mo") {
		beforeText := gettextStrings(before.FullPath)
		afterText := gettextStrings(after.FullPath)
		if beforeText != "" || afterText != "" {
			details = unifieddiff.Unified(before.LocalPath, after.LocalPath, beforeText, afterText)
			return message, details
		}
	}

	if isHeaderFile(after.LocalPath) {
		beforeBytes, errB := archive.ReadAllDecompressed(before.FullPath)
		afterBytes, errA := archive.ReadAllDecompressed(after.FullPath)
		if errB == nil && errA == nil {
			details = unifieddiff.Unified(before.LocalPath, after.LocalPath, string(beforeBytes), string(afterBytes))
		}
		return message, details
	}

	return message, ""
}

func isCompressed(localpath string) bool {
	for _, suf := range []string{".gz", ".tgz", ".bz2", ".xz", ".zst"} {
		if strings.HasSuffix(localpath, suf) {
			return true
		}
	}
	return false
}

// gettextStrings shells out to msgunfmt to render a .mo file's translation
// strings as text, so the diff compares meaning rather than the compiled
// binary layout. Returns "" if msgunfmt is unavailable or fails; the caller
// falls back to reporting the bare digest mismatch in that case.
func gettextStrings(path string) string {
	if path == "" || !exttool.Available("msgunfmt") {
		return ""
	}
	res := exttool.Run(context.Background(), "msgunfmt", path)
	if !res.Ok() {
		return ""
	}
	return res.Stdout
}

