package inspect

import (
	"context"
	"encoding/binary"
	"os"
	"strings"

	"github.com/rpminspect/rpminspect/header"
	"github.com/rpminspect/rpminspect/internal/elfinfo"
	"github.com/rpminspect/rpminspect/internal/exttool"
	"github.com/rpminspect/rpminspect/peers"
	"github.com/rpminspect/rpminspect/results"
	"github.com/rpminspect/rpminspect/run"
)

// classMajorVersion reads a .class file's major version (bytes 6-7,
// big-endian) without parsing the rest of the constant pool.
func classMajorVersion(path string) (int, error) {
	f, err := os.Open(path) //nolint:gosec
	if err != nil {
		return 0, err
	}
	defer f.Close() // nolint: errcheck

	var header [8]byte
	if _, err := f.Read(header[:]); err != nil {
		return 0, err
	}
	if binary.BigEndian.Uint32(header[0:4]) != 0xCAFEBABE {
		return 0, nil
	}
	return int(binary.BigEndian.Uint16(header[6:8])), nil
}

// Javabytecode implements §4.10's javabytecode inspection: .class files
// must carry at least the configured minimum bytecode major version.
func Javabytecode(r *run.Run) bool {
	if r.Config == nil || len(r.Config.JavaBytecodeMinVersion) == 0 {
		return true
	}
	ok := true
	ForEachAfterFile(r, func(p *peers.SubpackagePeer, file *header.FileEntry) bool {
		if !strings.HasSuffix(file.LocalPath, ".class") || file.FullPath == "" {
			return true
		}
		minVersion, hasSpecific := r.Config.JavaBytecodeMinVersion[r.ProductRelease]
		if !hasSpecific {
			minVersion, hasSpecific = r.Config.JavaBytecodeMinVersion["*"]
		}
		if !hasSpecific {
			return true
		}
		major, err := classMajorVersion(file.FullPath)
		if err != nil || major == 0 {
			return true
		}
		if major < minVersion {
			r.Add(results.Record{
				Severity: results.Verify,
				Waiver:   results.Anyone,
				Header:   "javabytecode",
				Message:  file.LocalPath + " compiled to bytecode version below the required minimum",
				Verb:     results.VerbFailed,
				Noun:     noun("${FILE} bytecode version too low", file.LocalPath),
				Arch:     p.Arch,
				File:     file.LocalPath,
			})
			ok = false
		}
		return true
	})
	emitOKIfClean(r, "javabytecode")
	return ok
}

// LTO implements §4.10's lto inspection: a shipped ELF file carrying
// leftover LTO-bytecode symbols (configured name prefixes) should have
// been stripped of them by the final link.
func LTO(r *run.Run) bool {
	if r.Config == nil || len(r.Config.LTOSymbolNamePrefixes) == 0 {
		return true
	}
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
		for _, sym := range info.Symbols {
			for _, prefix := range r.Config.LTOSymbolNamePrefixes {
				if strings.HasPrefix(sym, prefix) {
					r.Add(results.Record{
						Severity: results.Verify,
						Waiver:   results.Anyone,
						Header:   "lto",
						Message:  file.LocalPath + " carries leftover LTO symbol " + sym,
						Verb:     results.VerbFailed,
						Noun:     noun("${FILE} has leftover LTO bytecode", file.LocalPath),
						Arch:     p.Arch,
						File:     file.LocalPath,
					})
					ok = false
				}
			}
		}
		return true
	})
	emitOKIfClean(r, "lto")
	return ok
}

// Badfuncs implements §4.10's badfuncs inspection: an ELF file must not
// reference any of the configured forbidden symbol names.
func Badfuncs(r *run.Run) bool {
	if r.Config == nil || len(r.Config.BadFuncs) == 0 {
		return true
	}
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
		for _, sym := range info.Symbols {
			if contains(r.Config.BadFuncs, sym) {
				r.Add(results.Record{
					Severity: results.Bad,
					Waiver:   results.Anyone,
					Header:   "badfuncs",
					Message:  file.LocalPath + " references forbidden function " + sym,
					Verb:     results.VerbFailed,
					Noun:     noun("${FILE} uses a forbidden function", file.LocalPath),
					Arch:     p.Arch,
					File:     file.LocalPath,
				})
				ok = false
			}
		}
		return true
	})
	emitOKIfClean(r, "badfuncs")
	return ok
}

// Annocheck implements §4.10's annocheck inspection: each configured
// hardening test is run via the annocheck binary; a non-zero exit is BAD
// or VERIFY depending on the configured failure severity.
func Annocheck(r *run.Run) bool {
	if r.Config == nil || len(r.Config.Annocheck.Tests) == 0 || !exttool.Available("annocheck") {
		return true
	}
	severity := results.Bad
	if r.Config.Annocheck.FailureSeverity == "VERIFY" {
		severity = results.Verify
	}

	ok := true
	ForEachAfterFile(r, func(p *peers.SubpackagePeer, file *header.FileEntry) bool {
		isELF, _, isExec, isSO, err := elfinfo.Classify(file.FullPath)
		if err != nil || !isELF || (!isExec && !isSO) {
			return true
		}
		for test, flag := range r.Config.Annocheck.Tests {
			res := exttool.Run(context.Background(), "annocheck", flag, file.FullPath)
			if res.Ok() {
				continue
			}
			r.Add(results.Record{
				Severity: severity,
				Waiver:   results.Anyone,
				Header:   "annocheck",
				Message:  file.LocalPath + " failed annocheck test " + test,
				Details:  res.Stderr,
				Verb:     results.VerbFailed,
				Noun:     noun("${FILE} failed a hardening check", file.LocalPath),
				Arch:     p.Arch,
				File:     file.LocalPath,
			})
			ok = false
		}
		return true
	})
	emitOKIfClean(r, "annocheck")
	return ok
}
