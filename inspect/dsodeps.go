package inspect

import (
	"github.com/rpminspect/rpminspect/header"
	"github.com/rpminspect/rpminspect/internal/elfinfo"
	"github.com/rpminspect/rpminspect/peers"
	"github.com/rpminspect/rpminspect/results"
	"github.com/rpminspect/rpminspect/run"
)

// DSODeps implements §4.10's dsodeps inspection: for a paired shared
// object whose version did not change, diff DT_NEEDED and report one
// VERIFY per added or removed dependency.
func DSODeps(r *run.Run) bool {
	ok := true
	ForEachAfterFile(r, func(p *peers.SubpackagePeer, file *header.FileEntry) bool {
		before := file.Peer
		if before == nil || file.FullPath == "" || before.FullPath == "" {
			return true
		}
		if p.HasBefore() && p.HasAfter() && p.BeforeHeader.Version != p.AfterHeader.Version {
			return true
		}

		isELF, _, _, isSO, err := elfinfo.Classify(file.FullPath)
		if err != nil || !isELF || !isSO {
			return true
		}
		beforeInfo, errB := elfinfo.Read(before.FullPath)
		afterInfo, errA := elfinfo.Read(file.FullPath)
		if errB != nil || errA != nil {
			return true
		}

		beforeSet := toSet(beforeInfo.NeededLibs)
		afterSet := toSet(afterInfo.NeededLibs)

		for lib := range afterSet {
			if !beforeSet[lib] {
				r.Add(results.Record{
					Severity: results.Verify,
					Waiver:   results.Anyone,
					Header:   "dsodeps",
					Message:  file.LocalPath + " gained dependency on " + lib,
					Verb:     results.VerbAdded,
					Noun:     noun("${FILE} gained a shared library dependency", file.LocalPath),
					Arch:     p.Arch,
					File:     file.LocalPath,
				})
				ok = false
			}
		}
		for lib := range beforeSet {
			if !afterSet[lib] {
				r.Add(results.Record{
					Severity: results.Verify,
					Waiver:   results.Anyone,
					Header:   "dsodeps",
					Message:  file.LocalPath + " lost dependency on " + lib,
					Verb:     results.VerbRemoved,
					Noun:     noun("${FILE} lost a shared library dependency", file.LocalPath),
					Arch:     p.Arch,
					File:     file.LocalPath,
				})
				ok = false
			}
		}
		return true
	})
	emitOKIfClean(r, "dsodeps")
	return ok
}

func toSet(items []string) map[string]bool {
	set := make(map[string]bool, len(items))
	for _, item := range items {
		set[item] = true
	}
	return set
}
