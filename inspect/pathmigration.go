package inspect

import (
	"strings"

	"github.com/rpminspect/rpminspect/header"
	"github.com/rpminspect/rpminspect/peers"
	"github.com/rpminspect/rpminspect/results"
	"github.com/rpminspect/rpminspect/run"
)

// Pathmigration implements §4.10's pathmigration inspection: a file under
// a configured migrated-path prefix that hasn't moved to its target prefix
// earns a VERIFY recommending the move, unless excluded.
func Pathmigration(r *run.Run) bool {
	if r.Config == nil || len(r.Config.PathMigration) == 0 {
		return true
	}

	ok := true
	ForEachAfterFile(r, func(p *peers.SubpackagePeer, file *header.FileEntry) bool {
		if matchAny(r.Config.PathMigrationExcluded, file.LocalPath) {
			return true
		}
		for from, to := range r.Config.PathMigration {
			if !hasPrefixPath(file.LocalPath, from) {
				continue
			}
			if hasPrefixPath(file.LocalPath, to) {
				continue
			}
			suggested := to + strings.TrimPrefix(file.LocalPath, from)
			r.Add(results.Record{
				Severity: results.Verify,
				Waiver:   results.Anyone,
				Header:   "pathmigration",
				Message:  file.LocalPath + " should migrate to " + suggested,
				Remedy:   "move " + file.LocalPath + " to " + suggested,
				Verb:     results.VerbFailed,
				Noun:     noun("${FILE} is under a migrated path", file.LocalPath),
				Arch:     p.Arch,
				File:     file.LocalPath,
			})
			ok = false
			break
		}
		return true
	})
	emitOKIfClean(r, "pathmigration")
	return ok
}
