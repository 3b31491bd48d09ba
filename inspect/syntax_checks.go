package inspect

import (
	"context"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/rpminspect/rpminspect/header"
	"github.com/rpminspect/rpminspect/internal/exttool"
	"github.com/rpminspect/rpminspect/peers"
	"github.com/rpminspect/rpminspect/results"
	"github.com/rpminspect/rpminspect/run"
)

// runSyntaxTool invokes tool against file.FullPath and, on a non-zero
// exit, records a BAD result carrying the tool's stderr as Details, per
// §7's external-tool error policy. Returns true if the tool was skipped
// (unavailable) or passed.
func runSyntaxTool(r *run.Run, inspectionName string, p *peers.SubpackagePeer, file *header.FileEntry, tool string, args ...string) bool {
	if !exttool.Available(tool) {
		return true
	}
	res := exttool.Run(context.Background(), tool, append(args, file.FullPath)...)
	if res.Ok() {
		return true
	}
	r.Add(results.Record{
		Severity: results.Bad,
		Waiver:   results.Anyone,
		Header:   inspectionName,
		Message:  file.LocalPath + " failed " + tool + " validation",
		Details:  res.Stderr,
		Verb:     results.VerbFailed,
		Noun:     noun("${FILE} failed syntax validation", file.LocalPath),
		Arch:     p.Arch,
		File:     file.LocalPath,
	})
	return false
}

// scriptInterpreter returns the basename of the shebang interpreter of
// path, or "" if it has none.
func scriptInterpreter(path string) string {
	f, err := os.Open(path) //nolint:gosec
	if err != nil {
		return ""
	}
	defer f.Close() // nolint: errcheck

	var buf [256]byte
	n, _ := f.Read(buf[:])
	line := string(buf[:n])
	if !strings.HasPrefix(line, "#!") {
		return ""
	}
	if idx := strings.IndexByte(line, '\n'); idx >= 0 {
		line = line[:idx]
	}
	fields := strings.Fields(strings.TrimPrefix(line, "#!"))
	if len(fields) == 0 {
		return ""
	}
	interp := fields[0]
	if strings.HasSuffix(interp, "env") && len(fields) > 1 {
		interp = fields[1]
	}
	return filepath.Base(interp)
}

func includeExclude(localpath string, include, exclude *regexp.Regexp) bool {
	if exclude != nil && exclude.MatchString(localpath) {
		return false
	}
	if include != nil && !include.MatchString(localpath) {
		return false
	}
	return true
}

// Manpage implements §4.10's manpage inspection: man pages are validated
// with mandoc's lint mode when available.
func Manpage(r *run.Run) bool {
	ok := true
	ForEachAfterFile(r, func(p *peers.SubpackagePeer, file *header.FileEntry) bool {
		if !isManpagePath(file.LocalPath) {
			return true
		}
		if r.Config != nil && !includeExclude(file.LocalPath, r.Config.ManpageIncludePath, r.Config.ManpageExcludePath) {
			return true
		}
		if !runSyntaxTool(r, "manpage", p, file, "mandoc", "-Tlint") {
			ok = false
		}
		return true
	})
	emitOKIfClean(r, "manpage")
	return ok
}

func isManpagePath(localpath string) bool {
	return strings.Contains(localpath, "/man/man") || strings.Contains(localpath, "/man/man8")
}

// XML implements §4.10's xml inspection: .xml files are well-formedness
// checked with xmllint when available.
func XML(r *run.Run) bool {
	ok := true
	ForEachAfterFile(r, func(p *peers.SubpackagePeer, file *header.FileEntry) bool {
		if !strings.HasSuffix(file.LocalPath, ".xml") {
			return true
		}
		if r.Config != nil && !includeExclude(file.LocalPath, r.Config.XMLIncludePath, r.Config.XMLExcludePath) {
			return true
		}
		if !runSyntaxTool(r, "xml", p, file, "xmllint", "--noout") {
			ok = false
		}
		return true
	})
	emitOKIfClean(r, "xml")
	return ok
}

// Desktop implements §4.10's desktop inspection: .desktop entry files
// under the configured directory are validated with desktop-file-validate.
func Desktop(r *run.Run) bool {
	ok := true
	ForEachAfterFile(r, func(p *peers.SubpackagePeer, file *header.FileEntry) bool {
		if !strings.HasSuffix(file.LocalPath, ".desktop") {
			return true
		}
		if r.Config != nil && r.Config.DesktopEntryFilesDir != "" && !hasPrefixPath(file.LocalPath, r.Config.DesktopEntryFilesDir) {
			return true
		}
		if !runSyntaxTool(r, "desktop", p, file, "desktop-file-validate") {
			ok = false
		}
		return true
	})
	emitOKIfClean(r, "desktop")
	return ok
}

// Shellsyntax implements §4.10's shellsyntax inspection: shell scripts
// whose shebang names a configured interpreter are checked with that
// interpreter's syntax-check flag.
func Shellsyntax(r *run.Run) bool {
	ok := true
	ForEachAfterFile(r, func(p *peers.SubpackagePeer, file *header.FileEntry) bool {
		if file.FullPath == "" {
			return true
		}
		interp := scriptInterpreter(file.FullPath)
		if interp == "" {
			return true
		}
		if r.Config != nil && len(r.Config.ShellInterpreters) > 0 && !contains(r.Config.ShellInterpreters, interp) {
			return true
		}
		if !runSyntaxTool(r, "shellsyntax", p, file, interp, "-n") {
			ok = false
		}
		return true
	})
	emitOKIfClean(r, "shellsyntax")
	return ok
}

// Udevrules implements §4.10's udevrules inspection: .rules files under a
// configured udev rules directory are validated with udevadm.
func Udevrules(r *run.Run) bool {
	ok := true
	ForEachAfterFile(r, func(p *peers.SubpackagePeer, file *header.FileEntry) bool {
		if !strings.HasSuffix(file.LocalPath, ".rules") {
			return true
		}
		if r.Config != nil && len(r.Config.UdevRulesDirs) > 0 {
			inDir := false
			for _, dir := range r.Config.UdevRulesDirs {
				if hasPrefixPath(file.LocalPath, dir) {
					inDir = true
					break
				}
			}
			if !inDir {
				return true
			}
		}
		if !runSyntaxTool(r, "udevrules", p, file, "udevadm", "verify") {
			ok = false
		}
		return true
	})
	emitOKIfClean(r, "udevrules")
	return ok
}
