package inspect

import (
	"github.com/rpminspect/rpminspect/header"
	"github.com/rpminspect/rpminspect/internal/archive"
	"github.com/rpminspect/rpminspect/internal/unifieddiff"
	"github.com/rpminspect/rpminspect/peers"
	"github.com/rpminspect/rpminspect/results"
	"github.com/rpminspect/rpminspect/run"
)

// Config implements §4.10's config inspection: %config flag drift (gained
// or lost) and, for files that remain %config on both sides, a content
// diff when both sides are text and a symlink-destination check when
// either side is a symlink.
func Config(r *run.Run) bool {
	return flagDriftInspection(r, "config", func(f *header.FileEntry) bool { return f.IsConfig() })
}

// Doc implements §4.10's doc inspection, the %doc analogue of Config.
func Doc(r *run.Run) bool {
	return flagDriftInspection(r, "doc", func(f *header.FileEntry) bool { return f.IsDoc() })
}

func flagDriftInspection(r *run.Run, name string, flagged func(*header.FileEntry) bool) bool {
	ok := true
	ForEachAfterFile(r, func(p *peers.SubpackagePeer, file *header.FileEntry) bool {
		before := file.Peer
		if before == nil {
			return true
		}

		beforeFlagged := flagged(before)
		afterFlagged := flagged(file)

		if beforeFlagged != afterFlagged {
			severity := results.Verify
			if r.IsRebase() {
				severity = results.Info
			}
			verb := results.VerbAdded
			message := "gained %" + name + " flag: " + file.LocalPath
			if beforeFlagged && !afterFlagged {
				verb = results.VerbRemoved
				message = "lost %" + name + " flag: " + file.LocalPath
			}
			r.Results.Add(results.Record{
				Severity: severity,
				Waiver:   results.Anyone,
				Header:   name,
				Message:  message,
				Verb:     verb,
				Noun:     noun("${FILE} "+name+" flag changed", file.LocalPath),
				Arch:     p.Arch,
				File:     file.LocalPath,
			})
			ok = false
		}

		if !afterFlagged || !beforeFlagged {
			return true
		}

		if file.Stat.Type == header.TypeSymlink || before.Stat.Type == header.TypeSymlink {
			if file.SymlinkTarget != before.SymlinkTarget {
				r.Add(results.Record{
					Severity: results.Verify,
					Waiver:   results.Anyone,
					Header:   name,
					Message:  "symlink target changed: " + file.LocalPath + " (" + before.SymlinkTarget + " -> " + file.SymlinkTarget + ")",
					Verb:     results.VerbChanged,
					Noun:     noun("${FILE} symlink target changed", file.LocalPath),
					Arch:     p.Arch,
					File:     file.LocalPath,
				})
				ok = false
			}
			return true
		}

		if file.DigestHex == before.DigestHex {
			return true
		}

		beforeBytes, errB := archive.ReadAllDecompressed(before.FullPath)
		afterBytes, errA := archive.ReadAllDecompressed(file.FullPath)
		if errB != nil || errA != nil {
			return true
		}
		if !looksText(beforeBytes) || !looksText(afterBytes) {
			return true
		}

		details := unifieddiff.Unified(before.LocalPath, file.LocalPath, string(beforeBytes), string(afterBytes))
		r.Add(results.Record{
			Severity: results.Verify,
			Waiver:   results.Anyone,
			Header:   name,
			Message:  "content changed: " + file.LocalPath,
			Details:  details,
			Verb:     results.VerbChanged,
			Noun:     noun("${FILE} content changed", file.LocalPath),
			Arch:     p.Arch,
			File:     file.LocalPath,
		})
		ok = false
		return true
	})
	return ok
}

func looksText(buf []byte) bool {
	for _, b := range buf {
		if b == 0 {
			return false
		}
	}
	return true
}
