package inspect

import (
	"github.com/rpminspect/rpminspect/header"
	"github.com/rpminspect/rpminspect/peers"
	"github.com/rpminspect/rpminspect/results"
	"github.com/rpminspect/rpminspect/run"
)

// Politics implements §4.10's politics inspection: the last politics-table
// pattern matching a file's localpath (and digest, where the pattern names
// one instead of "*") decides whether the file is allowed (INFO) or denied
// (not-waivable BAD).
func Politics(r *run.Run) bool {
	ok := true
	ForEachAfterFile(r, func(p *peers.SubpackagePeer, file *header.FileEntry) bool {
		entry, matched := r.Policy().MatchPolitics(file.LocalPath, file.DigestHex)
		if !matched {
			return true
		}

		if entry.Allow {
			r.Add(results.Record{
				Severity: results.Info,
				Waiver:   results.Anyone,
				Header:   "politics",
				Message:  file.LocalPath + " matches politics allow rule " + entry.Pattern,
				Verb:     results.VerbOK,
				Noun:     noun("${FILE} politically allowed", file.LocalPath),
				Arch:     p.Arch,
				File:     file.LocalPath,
			})
			return true
		}

		r.Results.Add(results.Record{
			Severity: results.Bad,
			Waiver:   results.NotWaivable,
			Header:   "politics",
			Message:  file.LocalPath + " matches politics deny rule " + entry.Pattern,
			Verb:     results.VerbFailed,
			Noun:     noun("${FILE} is politically sensitive", file.LocalPath),
			Arch:     p.Arch,
			File:     file.LocalPath,
		})
		ok = false
		return true
	})
	emitOKIfClean(r, "politics")
	return ok
}
