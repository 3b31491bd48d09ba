package inspect

import (
	"strings"

	"github.com/rpminspect/rpminspect/config"
	"github.com/rpminspect/rpminspect/header"
	"github.com/rpminspect/rpminspect/internal/elfinfo"
	"github.com/rpminspect/rpminspect/peers"
	"github.com/rpminspect/rpminspect/results"
	"github.com/rpminspect/rpminspect/run"
)

// Runpath implements §4.10's runpath inspection: carrying both DT_RPATH
// and DT_RUNPATH is a not-waivable BAD; each runpath component is then
// validated, $ORIGIN-relative ones against runpath_allowed_origin_paths
// (after trimming a configured origin prefix) and absolute ones against
// runpath_allowed_paths, with an unmatched component earning VERIFY.
func Runpath(r *run.Run) bool {
	ok := true
	ForEachAfterFile(r, func(p *peers.SubpackagePeer, file *header.FileEntry) bool {
		if file.FullPath == "" {
			return true
		}
		isELF, _, _, _, err := elfinfo.Classify(file.FullPath)
		if err != nil || !isELF {
			return true
		}
		info, err := elfinfo.Read(file.FullPath)
		if err != nil {
			return true
		}
		if info.RPath == "" && info.RunPath == "" {
			return true
		}

		if info.RPath != "" && info.RunPath != "" {
			r.Results.Add(results.Record{
				Severity: results.Bad,
				Waiver:   results.NotWaivable,
				Header:   "runpath",
				Message:  file.LocalPath + " carries both DT_RPATH and DT_RUNPATH",
				Verb:     results.VerbFailed,
				Noun:     noun("${FILE} has both DT_RPATH and DT_RUNPATH", file.LocalPath),
				Arch:     p.Arch,
				File:     file.LocalPath,
			})
			ok = false
		}

		components := splitRunpath(info.RunPath)
		if info.RunPath == "" {
			components = splitRunpath(info.RPath)
		}

		for _, comp := range components {
			if comp == "" {
				continue
			}
			var matched bool
			switch {
			case strings.HasPrefix(comp, "$ORIGIN") || strings.HasPrefix(comp, "${ORIGIN}"):
				trimmed := trimOriginPrefix(comp, r.Config)
				matched = matchAnyPrefix(allowedOriginPaths(r.Config), trimmed)
			default:
				matched = matchAnyPrefix(allowedPaths(r.Config), comp)
			}
			if !matched {
				r.Add(results.Record{
					Severity: results.Verify,
					Waiver:   results.Anyone,
					Header:   "runpath",
					Message:  file.LocalPath + " has unapproved runpath component " + comp,
					Verb:     results.VerbFailed,
					Noun:     noun("${FILE} has an unapproved runpath entry", file.LocalPath),
					Arch:     p.Arch,
					File:     file.LocalPath,
				})
				ok = false
			}
		}
		return true
	})
	emitOKIfClean(r, "runpath")
	return ok
}

func splitRunpath(s string) []string {
	if s == "" {
		return nil
	}
	return strings.Split(s, ":")
}

// trimOriginPrefix strips a configured origin_prefix_trim regexp match from
// the front of comp, so "$ORIGIN/../lib64" compares against
// runpath_allowed_origin_paths entries written relative to the library root
// rather than the binary's own directory.
func trimOriginPrefix(comp string, cfg *config.RunConfig) string {
	if cfg == nil {
		return comp
	}
	for _, re := range cfg.RunpathOriginPrefixTrim {
		if loc := re.FindStringIndex(comp); loc != nil && loc[0] == 0 {
			return comp[loc[1]:]
		}
	}
	return comp
}

func allowedPaths(cfg *config.RunConfig) []string {
	if cfg == nil {
		return nil
	}
	return cfg.RunpathAllowedPaths
}

func allowedOriginPaths(cfg *config.RunConfig) []string {
	if cfg == nil {
		return nil
	}
	return cfg.RunpathAllowedOriginPaths
}

func matchAnyPrefix(prefixes []string, s string) bool {
	for _, prefix := range prefixes {
		if hasPrefixPath(s, prefix) {
			return true
		}
	}
	return false
}
