package inspect

import (
	"github.com/rpminspect/rpminspect/header"
	"github.com/rpminspect/rpminspect/peers"
	"github.com/rpminspect/rpminspect/results"
	"github.com/rpminspect/rpminspect/run"
)

// MovedFiles implements §4.10's movedfiles inspection: a paired file whose
// localpath or subpackage differs from its peer moved. Ordinary moves are
// VERIFY (INFO on rebase); moves into or out of a security path prefix are
// BAD and always security-waivable, regardless of rebase.
func MovedFiles(r *run.Run) bool {
	ok := true
	ForEachAfterFile(r, func(p *peers.SubpackagePeer, file *header.FileEntry) bool {
		if file.Peer == nil || (!file.MovedPath && !file.MovedSubpackage) {
			return true
		}

		before := file.Peer
		isSecurity := false
		if r.Config != nil {
			for _, prefix := range r.Config.SecurityPathPrefix {
				if hasPrefixPath(before.LocalPath, prefix) || hasPrefixPath(file.LocalPath, prefix) {
					isSecurity = true
					break
				}
			}
		}

		if isSecurity {
			r.Results.Add(results.Record{
				Severity: results.Bad,
				Waiver:   results.Security,
				Header:   "movedfiles",
				Message:  "security-relevant file moved from " + before.LocalPath + " to " + file.LocalPath,
				Verb:     results.VerbChanged,
				Noun:     noun("${FILE} moved", file.LocalPath),
				Arch:     p.Arch,
				File:     file.LocalPath,
			})
			ok = false
			return true
		}

		r.Add(results.Record{
			Severity: results.Verify,
			Waiver:   results.Anyone,
			Header:   "movedfiles",
			Message:  "file moved from " + before.LocalPath + " to " + file.LocalPath,
			Verb:     results.VerbChanged,
			Noun:     noun("${FILE} moved", file.LocalPath),
			Arch:     p.Arch,
			File:     file.LocalPath,
		})
		ok = false
		return true
	})
	return ok
}
