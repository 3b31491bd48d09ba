package inspect

import (
	"fmt"

	"github.com/rpminspect/rpminspect/header"
	"github.com/rpminspect/rpminspect/internal/archive"
	"github.com/rpminspect/rpminspect/internal/mimeclassify"
	"github.com/rpminspect/rpminspect/peers"
	"github.com/rpminspect/rpminspect/results"
	"github.com/rpminspect/rpminspect/run"
)

// Unicode implements §4.10's unicode inspection: source-package text files
// are scanned for configured forbidden code points (homoglyph/bidi-control
// attack characters), reported as a security-waivable BAD with the
// occurrence's line and column.
func Unicode(r *run.Run) bool {
	if r.Config == nil || len(r.Config.UnicodeForbiddenCodepoints) == 0 {
		return true
	}

	ok := true
	ForEachAfterFile(r, func(p *peers.SubpackagePeer, file *header.FileEntry) bool {
		if p.AfterHeader == nil || !p.AfterHeader.IsSource() {
			return true
		}
		if file.Stat.Type != header.TypeRegular || file.FullPath == "" {
			return true
		}
		if r.Config.UnicodeExclude != nil && r.Config.UnicodeExclude.MatchString(file.LocalPath) {
			return true
		}

		mt, err := mimeclassify.Classify(file.FullPath)
		if err != nil {
			return true
		}
		if matchAny(r.Config.UnicodeExcludedMimeTypes, mt) {
			return true
		}
		if !mimeclassify.IsText(mt) {
			return true
		}

		content, err := archive.ReadAllDecompressed(file.FullPath)
		if err != nil {
			return true
		}

		line, col := 1, 1
		for _, ch := range string(content) {
			if ch == '\n' {
				line++
				col = 1
				continue
			}
			if r.Config.UnicodeForbiddenCodepoints[ch] {
				r.Add(results.Record{
					Severity: results.Bad,
					Waiver:   results.Security,
					Header:   "unicode",
					Message:  fmt.Sprintf("%s:%d:%d: forbidden code point U+%04X", file.LocalPath, line, col, ch),
					Verb:     results.VerbFailed,
					Noun:     noun("${FILE} contains a forbidden code point", file.LocalPath),
					Arch:     p.Arch,
					File:     file.LocalPath,
				})
				ok = false
			}
			col++
		}
		return true
	})
	emitOKIfClean(r, "unicode")
	return ok
}
