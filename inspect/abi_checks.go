package inspect

import (
	"context"
	"strings"

	"github.com/rpminspect/rpminspect/header"
	"github.com/rpminspect/rpminspect/internal/elfinfo"
	"github.com/rpminspect/rpminspect/internal/exttool"
	"github.com/rpminspect/rpminspect/peers"
	"github.com/rpminspect/rpminspect/results"
	"github.com/rpminspect/rpminspect/run"
)

// Abidiff implements §4.10's abidiff inspection: paired shared objects are
// compared with the abidiff tool; a reported ABI break is VERIFY (INFO on
// rebase, per the diff-group downgrade rule).
func Abidiff(r *run.Run) bool {
	if r.Config == nil || !exttool.Available("abidiff") {
		return true
	}
	ok := true
	ForEachAfterFile(r, func(p *peers.SubpackagePeer, file *header.FileEntry) bool {
		if file.Peer == nil || file.FullPath == "" || file.Peer.FullPath == "" {
			return true
		}
		isELF, _, _, isSO, err := elfinfo.Classify(file.FullPath)
		if err != nil || !isELF || !isSO {
			return true
		}

		args := append([]string{}, r.Config.Abidiff.ExtraArgs...)
		if r.Config.Abidiff.SuppressionFile != "" {
			args = append(args, "--suppressions", r.Config.Abidiff.SuppressionFile)
		}
		if r.Config.Abidiff.DebuginfoPath != "" {
			args = append(args, "--debug-info-dir1", r.Config.Abidiff.DebuginfoPath, "--debug-info-dir2", r.Config.Abidiff.DebuginfoPath)
		}
		args = append(args, file.Peer.FullPath, file.FullPath)

		res := exttool.Run(context.Background(), "abidiff", args...)
		if res.Ok() {
			return true
		}
		r.Add(results.Record{
			Severity: results.Verify,
			Waiver:   results.Anyone,
			Header:   "abidiff",
			Message:  file.LocalPath + " ABI changed",
			Details:  res.Stdout,
			Verb:     results.VerbChanged,
			Noun:     noun("${FILE} ABI changed", file.LocalPath),
			Arch:     p.Arch,
			File:     file.LocalPath,
		})
		ok = false
		return true
	})
	emitOKIfClean(r, "abidiff")
	return ok
}

// Kmidiff implements §4.10's kmidiff inspection, the kernel-module
// analogue of Abidiff.
func Kmidiff(r *run.Run) bool {
	if r.Config == nil || !exttool.Available("kmidiff") {
		return true
	}
	ok := true
	ForEachAfterFile(r, func(p *peers.SubpackagePeer, file *header.FileEntry) bool {
		if file.Peer == nil || !strings.HasSuffix(file.LocalPath, ".ko") {
			return true
		}

		args := append([]string{}, r.Config.Kmidiff.ExtraArgs...)
		if r.Config.Kmidiff.SuppressionFile != "" {
			args = append(args, "--suppressions", r.Config.Kmidiff.SuppressionFile)
		}
		args = append(args, file.Peer.FullPath, file.FullPath)

		res := exttool.Run(context.Background(), "kmidiff", args...)
		if res.Ok() {
			return true
		}
		r.Add(results.Record{
			Severity: results.Verify,
			Waiver:   results.Anyone,
			Header:   "kmidiff",
			Message:  file.LocalPath + " kernel module ABI changed",
			Details:  res.Stdout,
			Verb:     results.VerbChanged,
			Noun:     noun("${FILE} kABI changed", file.LocalPath),
			Arch:     p.Arch,
			File:     file.LocalPath,
		})
		ok = false
		return true
	})
	emitOKIfClean(r, "kmidiff")
	return ok
}
