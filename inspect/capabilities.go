package inspect

import (
	"github.com/gobwas/glob"

	"github.com/rpminspect/rpminspect/header"
	"github.com/rpminspect/rpminspect/internal/capstring"
	"github.com/rpminspect/rpminspect/peers"
	"github.com/rpminspect/rpminspect/policy"
	"github.com/rpminspect/rpminspect/results"
	"github.com/rpminspect/rpminspect/run"
)

// Capabilities implements §4.10's capabilities inspection: a file's
// textual capability set is compared against its peer (drift is
// security-waivable VERIFY) and, for the after build, against the caps
// policy (a grant not on the allowlist for this package/path is
// security-waivable BAD).
func Capabilities(r *run.Run) bool {
	entries, err := r.Policy().Caps()
	if err != nil {
		r.Results.Add(results.Record{Severity: results.Diagnostic, Waiver: results.NotWaivable, Header: "capabilities", Message: "loading capabilities policy: " + err.Error(), Verb: results.VerbFailed})
		entries = nil
	}

	ok := true
	ForEachAfterFile(r, func(p *peers.SubpackagePeer, file *header.FileEntry) bool {
		if file.Capabilities == "" && (file.Peer == nil || file.Peer.Capabilities == "") {
			return true
		}

		if file.Peer != nil && file.Peer.Capabilities != file.Capabilities {
			before, errB := capstring.Parse(file.Peer.Capabilities)
			after, errA := capstring.Parse(file.Capabilities)
			if errB != nil || errA != nil || !capstring.Equal(before, after) {
				r.Add(results.Record{
					Severity: results.Verify,
					Waiver:   results.Security,
					Header:   "capabilities",
					Message:  file.LocalPath + " capabilities changed from " + describeCaps(file.Peer.Capabilities) + " to " + describeCaps(file.Capabilities),
					Verb:     results.VerbChanged,
					Noun:     noun("${FILE} capabilities changed", file.LocalPath),
					Arch:     p.Arch,
					File:     file.LocalPath,
				})
				ok = false
			}
		}

		if file.Capabilities == "" {
			return true
		}

		pkgName := p.Name
		if !capsAllowed(entries, pkgName, file.LocalPath, file.Capabilities) {
			r.Results.Add(results.Record{
				Severity: results.Bad,
				Waiver:   results.Security,
				Header:   "capabilities",
				Message:  file.LocalPath + " grants capabilities not on the policy allowlist: " + describeCaps(file.Capabilities),
				Verb:     results.VerbFailed,
				Noun:     noun("${FILE} has unapproved capabilities", file.LocalPath),
				Arch:     p.Arch,
				File:     file.LocalPath,
			})
			ok = false
		}
		return true
	})
	emitOKIfClean(r, "capabilities")
	return ok
}

func describeCaps(text string) string {
	if text == "" {
		return "(none)"
	}
	return text
}

func capsAllowed(entries []policy.CapsEntry, pkgName, localpath, capsText string) bool {
	for _, e := range entries {
		pg, err := glob.Compile(e.PackageGlob)
		if err != nil {
			continue
		}
		if !pg.Match(pkgName) {
			continue
		}
		fg, err := glob.Compile(e.FilepathGlob, '/')
		if err != nil {
			continue
		}
		if !fg.Match(localpath) {
			continue
		}
		allowed, err := capstring.Parse(e.Capabilities)
		if err != nil {
			continue
		}
		got, err := capstring.Parse(capsText)
		if err != nil {
			continue
		}
		if capstring.Equal(allowed, got) {
			return true
		}
	}
	return false
}
