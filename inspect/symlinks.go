package inspect

import (
	"errors"
	"os"
	"path/filepath"
	"syscall"

	"github.com/rpminspect/rpminspect/header"
	"github.com/rpminspect/rpminspect/peers"
	"github.com/rpminspect/rpminspect/results"
	"github.com/rpminspect/rpminspect/run"
)

// Symlinks implements §4.10's symlinks inspection: every symlink in the
// after build (or, with no after build, whichever side is present) is
// resolved; an unresolvable link (loop or path too long) is BAD, any other
// link is reported INFO, and a symlink replacing what used to be a real
// directory on the peer side is a hard BAD.
func Symlinks(r *run.Run) bool {
	ok := true
	walk := func(p *peers.SubpackagePeer, file *header.FileEntry) bool {
		if file.Stat.Type != header.TypeSymlink {
			return true
		}

		if file.Peer != nil && file.Peer.Stat.Type == header.TypeDirectory {
			r.Results.Add(results.Record{
				Severity: results.Bad,
				Waiver:   results.NotWaivable,
				Header:   "symlinks",
				Message:  "symlink replaced a directory: " + file.LocalPath,
				Verb:     results.VerbChanged,
				Noun:     noun("${FILE} replaced a directory with a symlink", file.LocalPath),
				Arch:     p.Arch,
				File:     file.LocalPath,
			})
			ok = false
			return true
		}

		if file.FullPath == "" {
			return true
		}
		if _, err := filepath.EvalSymlinks(file.FullPath); err != nil {
			severity := results.Info
			if errors.Is(err, syscall.ELOOP) || errors.Is(err, syscall.ENAMETOOLONG) || isLoopOrTooLong(err) {
				severity = results.Bad
			}
			r.Add(results.Record{
				Severity: severity,
				Waiver:   results.Anyone,
				Header:   "symlinks",
				Message:  "symlink " + file.LocalPath + " does not resolve: " + err.Error(),
				Verb:     results.VerbFailed,
				Noun:     noun("${FILE} unresolvable symlink", file.LocalPath),
				Arch:     p.Arch,
				File:     file.LocalPath,
			})
			ok = false
			return true
		}

		r.Add(results.Record{
			Severity: results.Info,
			Waiver:   results.Anyone,
			Header:   "symlinks",
			Message:  "symlink " + file.LocalPath + " -> " + file.SymlinkTarget,
			Verb:     results.VerbOK,
			Noun:     noun("${FILE} symlink", file.LocalPath),
			Arch:     p.Arch,
			File:     file.LocalPath,
		})
		return true
	}

	if len(r.Peers) > 0 && r.Peers[0].HasAfter() {
		ForEachAfterFile(r, walk)
	} else {
		ForEachBeforeFile(r, walk)
	}
	emitOKIfClean(r, "symlinks")
	return ok
}

// isLoopOrTooLong inspects an *os.PathError/*fs.PathError's wrapped errno
// when errors.Is doesn't unwrap it directly (platform-dependent wrapping).
func isLoopOrTooLong(err error) bool {
	var pathErr *os.PathError
	if errors.As(err, &pathErr) {
		return errors.Is(pathErr.Err, syscall.ELOOP) || errors.Is(pathErr.Err, syscall.ENAMETOOLONG)
	}
	return false
}
