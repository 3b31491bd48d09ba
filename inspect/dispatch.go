package inspect

import (
	"github.com/rpminspect/rpminspect/results"
	"github.com/rpminspect/rpminspect/run"
)

// Dispatch runs every enabled inspection in Registry order, per §4.10's
// dispatch policy: skip disabled inspections, skip before-build-requiring
// inspections when no before build was supplied, invoke the driver, and
// synthesize a DIAGNOSTIC record for any inspection that produced nothing
// at all (so the output still shows it ran).
func Dispatch(r *run.Run) {
	for _, insp := range Registry {
		if !r.Config.IsInspectionEnabled(insp.Name) {
			continue
		}
		if insp.RequiresBothBuilds && !r.HasBefore() {
			continue
		}

		insp.Driver(r)

		if len(r.Results.ForHeader(insp.Name)) == 0 {
			r.Results.Add(results.Record{
				Severity: results.Diagnostic,
				Waiver:   results.NotWaivable,
				Header:   insp.Name,
				Message:  "inspection ran and produced no findings",
				Verb:     results.VerbSkip,
			})
		}
	}
}
