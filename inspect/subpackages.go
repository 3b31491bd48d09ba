package inspect

import (
	"github.com/rpminspect/rpminspect/results"
	"github.com/rpminspect/rpminspect/run"
)

// Subpackages implements §4.10's subpackages inspection: a peer present
// only on the before side is a lost subpackage (VERIFY); present only on
// the after side is a gained one (INFO).
func Subpackages(r *run.Run) bool {
	ok := true
	for _, p := range r.Peers {
		switch {
		case p.HasBefore() && !p.HasAfter():
			r.Add(results.Record{
				Severity: results.Verify,
				Waiver:   results.Anyone,
				Header:   "subpackages",
				Message:  "subpackage lost: " + p.Name + "." + p.Arch,
				Verb:     results.VerbRemoved,
				Noun:     "subpackage " + p.Name + " lost",
				Arch:     p.Arch,
			})
			ok = false
		case p.HasAfter() && !p.HasBefore():
			r.Add(results.Record{
				Severity: results.Info,
				Waiver:   results.Anyone,
				Header:   "subpackages",
				Message:  "subpackage gained: " + p.Name + "." + p.Arch,
				Verb:     results.VerbAdded,
				Noun:     "subpackage " + p.Name + " gained",
				Arch:     p.Arch,
			})
			ok = false
		}
	}
	emitOKIfClean(r, "subpackages")
	return ok
}
