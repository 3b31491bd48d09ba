// Package fsutil provides the filesystem primitives every other layer of
// rpminspect is built on: recursive mkdir, recursive rmtree, byte-exact
// file comparison, and buffer/line readers. It follows the same
// small-focused-helper-package convention as the teacher's internal/tarhelper
// and internal/files packages.
package fsutil

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
)

// Mkdirp creates path and all missing parent directories with mode. It is
// idempotent; it fails if any path component exists and is not a directory.
func Mkdirp(path string, mode fs.FileMode) error {
	info, err := os.Stat(path)
	if err == nil {
		if !info.IsDir() {
			return fmt.Errorf("mkdirp %s: not a directory", path)
		}
		return nil
	}
	if !errors.Is(err, fs.ErrNotExist) {
		return err
	}
	return os.MkdirAll(path, mode)
}

// Rmtree removes path and everything under it. If contentsOnly, path itself
// is preserved. An absent path is treated as success; if ignoreErrors,
// other errors are ignored too.
func Rmtree(path string, ignoreErrors, contentsOnly bool) error {
	if _, err := os.Lstat(path); err != nil {
		if errors.Is(err, fs.ErrNotExist) && ignoreErrors {
			return nil
		}
		if errors.Is(err, fs.ErrNotExist) {
			return nil
		}
		if !ignoreErrors {
			return err
		}
		return nil
	}

	if contentsOnly {
		entries, err := os.ReadDir(path)
		if err != nil {
			if ignoreErrors {
				return nil
			}
			return err
		}
		for _, e := range entries {
			if err := os.RemoveAll(filepath.Join(path, e.Name())); err != nil && !ignoreErrors {
				return err
			}
		}
		return nil
	}

	if err := os.RemoveAll(path); err != nil && !ignoreErrors {
		return err
	}
	return nil
}

// Copyfile copies src to dst byte-for-byte. If preserveMode, dst's mode is
// set to src's. If followSymlinks is false and src is a symlink, the link
// itself is recreated at dst rather than its target's content.
func Copyfile(src, dst string, preserveMode, followSymlinks bool) (err error) {
	if !followSymlinks {
		if fi, lerr := os.Lstat(src); lerr == nil && fi.Mode()&fs.ModeSymlink != 0 {
			target, rerr := os.Readlink(src)
			if rerr != nil {
				return rerr
			}
			_ = os.Remove(dst)
			return os.Symlink(target, dst)
		}
	}

	in, err := os.Open(src) //nolint:gosec
	if err != nil {
		return err
	}
	defer in.Close() // nolint: errcheck

	out, err := os.Create(dst) //nolint:gosec
	if err != nil {
		return err
	}
	defer func() {
		cerr := out.Close()
		if err == nil {
			err = cerr
		}
	}()

	if _, err = io.Copy(out, in); err != nil {
		return err
	}

	if preserveMode {
		info, serr := in.Stat()
		if serr != nil {
			return serr
		}
		if cerr := os.Chmod(dst, info.Mode()); cerr != nil {
			return cerr
		}
	}
	return nil
}

// CopyTree recursively copies src to dst, preserving the directory
// structure and regular file modes; symlinks are recreated rather than
// followed.
func CopyTree(src, dst string) error {
	return filepath.Walk(src, func(path string, info fs.FileInfo, err error) error {
		if err != nil {
			return err
		}
		rel, err := filepath.Rel(src, path)
		if err != nil {
			return err
		}
		target := filepath.Join(dst, rel)
		if info.IsDir() {
			return Mkdirp(target, info.Mode().Perm()|0o700)
		}
		if info.Mode()&fs.ModeSymlink != 0 {
			return Copyfile(path, target, false, false)
		}
		if err := Mkdirp(filepath.Dir(target), 0o755); err != nil {
			return err
		}
		return Copyfile(path, target, true, true)
	})
}

// Filecmp returns true iff both files exist, have equal size, and equal
// bytes. Differing sizes short-circuit to a mismatch.
func Filecmp(a, b string) (bool, error) {
	fa, err := os.Stat(a)
	if err != nil {
		return false, err
	}
	fb, err := os.Stat(b)
	if err != nil {
		return false, err
	}
	if fa.Size() != fb.Size() {
		return false, nil
	}

	ra, err := os.Open(a) //nolint:gosec
	if err != nil {
		return false, err
	}
	defer ra.Close() // nolint: errcheck
	rb, err := os.Open(b) //nolint:gosec
	if err != nil {
		return false, err
	}
	defer rb.Close() // nolint: errcheck

	const chunk = 64 * 1024
	bufA := make([]byte, chunk)
	bufB := make([]byte, chunk)
	for {
		na, errA := io.ReadFull(ra, bufA)
		nb, errB := io.ReadFull(rb, bufB)
		if na != nb {
			return false, nil
		}
		if !bytesEqual(bufA[:na], bufB[:nb]) {
			return false, nil
		}
		if errA != nil || errB != nil {
			if errors.Is(errA, io.EOF) || errors.Is(errA, io.ErrUnexpectedEOF) {
				return true, nil
			}
			if errA != nil {
				return false, errA
			}
		}
	}
}

func bytesEqual(a, b []byte) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

// ReadFileBytes reads the full content of path into memory.
func ReadFileBytes(path string) ([]byte, error) {
	return os.ReadFile(path) //nolint:gosec
}

// ReadLines reads path and returns its content split into lines with
// trailing line endings stripped.
func ReadLines(path string) ([]string, error) {
	f, err := os.Open(path) //nolint:gosec
	if err != nil {
		return nil, err
	}
	defer f.Close() // nolint: errcheck

	var lines []string
	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 64*1024), 16*1024*1024)
	for scanner.Scan() {
		lines = append(lines, scanner.Text())
	}
	return lines, scanner.Err()
}
