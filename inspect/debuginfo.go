package inspect

import (
	"strings"

	"github.com/rpminspect/rpminspect/header"
	"github.com/rpminspect/rpminspect/internal/elfinfo"
	"github.com/rpminspect/rpminspect/peers"
	"github.com/rpminspect/rpminspect/results"
	"github.com/rpminspect/rpminspect/run"
)

// isDebugSubpackage reports whether a subpackage name is one of the
// -debuginfo/-debugsource family §4.10 treats specially.
func isDebugSubpackage(name string) bool {
	return strings.HasSuffix(name, "-debuginfo") || strings.HasSuffix(name, "-debugsource")
}

func hasSection(sections []string, name string) bool {
	for _, s := range sections {
		if s == name {
			return true
		}
	}
	return false
}

// Debuginfo implements §4.10's debuginfo inspection: debug sections found
// in a non-debug subpackage are BAD, downgraded to VERIFY when
// .gosymtab and .gnu_debugdata co-occur (a Go binary's normal shape);
// missing debug sections in a debug subpackage are BAD. Cross-build,
// symbols gained in a non-debug ELF are BAD and symbols lost are INFO,
// with the polarity inverted for debug subpackages.
func Debuginfo(r *run.Run) bool {
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

		debugPkg := isDebugSubpackage(p.Name)

		switch {
		case !debugPkg && info.HasDebug:
			severity := results.Bad
			if hasSection(info.Sections, ".gosymtab") && hasSection(info.Sections, ".gnu_debugdata") {
				severity = results.Verify
			}
			r.Add(results.Record{
				Severity: severity,
				Waiver:   results.Anyone,
				Header:   "debuginfo",
				Message:  file.LocalPath + " carries debug sections outside a debuginfo subpackage",
				Verb:     results.VerbFailed,
				Noun:     noun("${FILE} has unexpected debug sections", file.LocalPath),
				Arch:     p.Arch,
				File:     file.LocalPath,
			})
			ok = false
		case debugPkg && !info.HasDebug:
			r.Results.Add(results.Record{
				Severity: results.Bad,
				Waiver:   results.Anyone,
				Header:   "debuginfo",
				Message:  file.LocalPath + " is missing expected debug sections",
				Verb:     results.VerbFailed,
				Noun:     noun("${FILE} is missing debug sections", file.LocalPath),
				Arch:     p.Arch,
				File:     file.LocalPath,
			})
			ok = false
		}

		if file.Peer == nil {
			return true
		}
		beforeInfo, err := elfinfo.Read(file.Peer.FullPath)
		if err != nil {
			return true
		}
		beforeSyms := toSet(beforeInfo.Symbols)
		afterSyms := toSet(info.Symbols)

		gained, lost := 0, 0
		for s := range afterSyms {
			if !beforeSyms[s] {
				gained++
			}
		}
		for s := range beforeSyms {
			if !afterSyms[s] {
				lost++
			}
		}
		if gained == 0 && lost == 0 {
			return true
		}

		gainedSeverity, lostSeverity := results.Bad, results.Info
		if debugPkg {
			gainedSeverity, lostSeverity = results.Info, results.Bad
		}
		if gained > 0 {
			r.Add(results.Record{
				Severity: gainedSeverity,
				Waiver:   results.Anyone,
				Header:   "debuginfo",
				Message:  file.LocalPath + " gained symbols",
				Verb:     results.VerbAdded,
				Noun:     noun("${FILE} gained symbols", file.LocalPath),
				Arch:     p.Arch,
				File:     file.LocalPath,
			})
			ok = false
		}
		if lost > 0 {
			r.Add(results.Record{
				Severity: lostSeverity,
				Waiver:   results.Anyone,
				Header:   "debuginfo",
				Message:  file.LocalPath + " lost symbols",
				Verb:     results.VerbRemoved,
				Noun:     noun("${FILE} lost symbols", file.LocalPath),
				Arch:     p.Arch,
				File:     file.LocalPath,
			})
			ok = false
		}
		return true
	})
	emitOKIfClean(r, "debuginfo")
	return ok
}
