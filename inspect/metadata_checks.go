package inspect

import (
	"strings"

	"github.com/rpminspect/rpminspect/results"
	"github.com/rpminspect/rpminspect/run"
)

// License implements §4.10's license inspection: the after build's License
// tag must name only approved licenses from the vendor license database.
func License(r *run.Run) bool {
	after := r.PrimaryHeader()
	if after == nil || after.License == "" {
		return true
	}
	for _, name := range splitLicenseExpr(after.License) {
		if !r.Policy().IsApprovedLicense(name) {
			r.Add(results.Record{
				Severity: results.Verify,
				Waiver:   results.Anyone,
				Header:   "license",
				Message:  "license " + name + " is not on the approved list",
				Verb:     results.VerbFailed,
				Noun:     "license " + name + " not approved",
			})
		}
	}
	emitOKIfClean(r, "license")
	return true
}

func splitLicenseExpr(expr string) []string {
	replacer := strings.NewReplacer(" and ", "|", " AND ", "|", " or ", "|", " OR ", "|", "(", "", ")", "")
	parts := strings.Split(replacer.Replace(expr), "|")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p != "" {
			out = append(out, p)
		}
	}
	return out
}

// Disttag implements §4.10's disttag inspection: the after build's release
// string must carry a dist tag consistent with the run's derived product
// release.
func Disttag(r *run.Run) bool {
	after := r.PrimaryHeader()
	if after == nil {
		return true
	}
	tag := distTagOf(after.Release)
	if tag == "" {
		r.Add(results.Record{
			Severity: results.Verify,
			Waiver:   results.Anyone,
			Header:   "disttag",
			Message:  "release " + after.Release + " carries no dist tag",
			Verb:     results.VerbFailed,
			Noun:     "missing dist tag",
		})
	}
	emitOKIfClean(r, "disttag")
	return true
}

func distTagOf(release string) string {
	idx := strings.LastIndex(release, ".")
	if idx < 0 || idx == len(release)-1 {
		return ""
	}
	return release[idx+1:]
}

// Arch implements §4.10's arch inspection: every after-side subpackage's
// declared architecture must be one of the run's configured arches, when
// any were configured.
func Arch(r *run.Run) bool {
	if len(r.Arches) == 0 {
		return true
	}
	for _, p := range r.Peers {
		if !p.HasAfter() || p.AfterHeader.IsSource() {
			continue
		}
		if !contains(r.Arches, p.AfterHeader.Arch) {
			r.Add(results.Record{
				Severity: results.Verify,
				Waiver:   results.Anyone,
				Header:   "arch",
				Message:  p.Name + " built for unexpected architecture " + p.AfterHeader.Arch,
				Verb:     results.VerbFailed,
				Noun:     "unexpected architecture " + p.AfterHeader.Arch,
				Arch:     p.AfterHeader.Arch,
			})
		}
	}
	emitOKIfClean(r, "arch")
	return true
}

func contains(list []string, s string) bool {
	for _, item := range list {
		if item == s {
			return true
		}
	}
	return false
}

// Specname implements §4.10's specname inspection: the source package's
// spec-derived name should match its primary subpackage name, per the
// configured naming convention.
func Specname(r *run.Run) bool {
	after := r.PrimaryHeader()
	if after == nil || r.Config == nil || r.Config.SpecnamePrimary == "" {
		return true
	}
	if after.Name != r.Config.SpecnamePrimary {
		r.Add(results.Record{
			Severity: results.Verify,
			Waiver:   results.Anyone,
			Header:   "specname",
			Message:  "package name " + after.Name + " does not match expected primary name " + r.Config.SpecnamePrimary,
			Verb:     results.VerbFailed,
			Noun:     "package name mismatch",
		})
	}
	emitOKIfClean(r, "specname")
	return true
}

// Metadata implements §4.10's metadata inspection: the after build's
// Vendor tag and build host must match configured policy.
func Metadata(r *run.Run) bool {
	if r.Config == nil {
		return true
	}
	for _, p := range r.Peers {
		if !p.HasAfter() {
			continue
		}
		h := p.AfterHeader
		if r.Config.MetadataVendor != "" && h.Vendor != r.Config.MetadataVendor {
			r.Add(results.Record{
				Severity: results.Verify,
				Waiver:   results.Anyone,
				Header:   "metadata",
				Message:  p.Name + " vendor " + h.Vendor + " does not match expected " + r.Config.MetadataVendor,
				Verb:     results.VerbFailed,
				Noun:     "unexpected vendor",
				Arch:     p.Arch,
			})
		}
		if len(r.Config.MetadataBuildhostSubdomain) > 0 {
			matched := false
			for _, suffix := range r.Config.MetadataBuildhostSubdomain {
				if strings.HasSuffix(h.BuildHost, suffix) {
					matched = true
					break
				}
			}
			if !matched {
				r.Add(results.Record{
					Severity: results.Verify,
					Waiver:   results.Anyone,
					Header:   "metadata",
					Message:  p.Name + " build host " + h.BuildHost + " is outside the approved build domains",
					Verb:     results.VerbFailed,
					Noun:     "unexpected build host",
					Arch:     p.Arch,
				})
			}
		}
	}
	emitOKIfClean(r, "metadata")
	return true
}
