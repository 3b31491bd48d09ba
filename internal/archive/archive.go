// Package archive extracts POSIX archives (tar and cpio, optionally
// compressed) into a destination directory, preserving file mode and
// symlink targets. Its ReadAllDecompressed helper is used by the
// changedfiles, config/doc and unicode inspections; RPM payloads are
// extracted by package header through go-rpmutils, not by this package.
//
// Grounded on internal/rpmpack's compressor set (internal/rpmpack/rpm.go's
// setupCompressor), now consumed in reverse: the same gzip/xz/zstd
// libraries the teacher writes payloads with are used here to read them.
package archive

import (
	"archive/tar"
	"bytes"
	"compress/bzip2"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/cavaliergopher/cpio"
	gzip "github.com/klauspost/pgzip"
	"github.com/klauspost/compress/zstd"
	"github.com/ulikunitz/xz"

	"github.com/rpminspect/rpminspect/internal/fsutil"
)

// Format identifies the archive container, independent of compression.
type Format int

const (
	FormatTar Format = iota
	FormatCPIO
)

// ReadAllDecompressed reads path, transparently decompressing it first if
// its extension names a known compressor, and returns the decompressed
// bytes. Used by the changedfiles inspection to compare compressed file
// content (e.g. gzipped man pages) rather than their compressed bytes.
func ReadAllDecompressed(path string) ([]byte, error) {
	f, err := os.Open(path) //nolint:gosec
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close() // nolint: errcheck

	dr, err := decompress(f, path)
	if err != nil {
		return nil, fmt.Errorf("decompress %s: %w", path, err)
	}
	return io.ReadAll(dr)
}

// decompress wraps r with the decompressor implied by name's extension, or
// returns r unchanged if name is not compressed.
func decompress(r io.Reader, name string) (io.Reader, error) {
	switch {
	case strings.HasSuffix(name, ".gz") || strings.HasSuffix(name, ".tgz"):
		return gzip.NewReader(r)
	case strings.HasSuffix(name, ".bz2"):
		return bzip2.NewReader(r), nil
	case strings.HasSuffix(name, ".xz"):
		return xz.NewReader(r)
	case strings.HasSuffix(name, ".zst"):
		zr, err := zstd.NewReader(r)
		if err != nil {
			return nil, err
		}
		return zr.IOReadCloser(), nil
	default:
		return r, nil
	}
}

func detectFormat(name string) Format {
	base := name
	for _, suf := range []string{".gz", ".tgz", ".bz2", ".xz", ".zst"} {
		base = strings.TrimSuffix(base, suf)
	}
	if strings.Contains(base, "cpio") {
		return FormatCPIO
	}
	return FormatTar
}

// Unpack extracts src into dst. If force, colliding destination entries are
// removed first. Mode and symlink targets from the archive are preserved;
// times and extended attributes are not restored.
func Unpack(src, dst string, force bool) error {
	f, err := os.Open(src) //nolint:gosec
	if err != nil {
		return fmt.Errorf("open archive %s: %w", src, err)
	}
	defer f.Close() // nolint: errcheck

	dr, err := decompress(f, src)
	if err != nil {
		return fmt.Errorf("decompress %s: %w", src, err)
	}

	if err := fsutil.Mkdirp(dst, 0o755); err != nil {
		return err
	}

	switch detectFormat(src) {
	case FormatCPIO:
		return unpackCPIO(dr, dst, force)
	default:
		return unpackTar(dr, dst, force)
	}
}

func destPath(dst, name string) (string, error) {
	clean := filepath.Clean("/" + name)
	target := filepath.Join(dst, clean)
	if !strings.HasPrefix(target, filepath.Clean(dst)+string(os.PathSeparator)) && target != filepath.Clean(dst) {
		return "", fmt.Errorf("archive entry %q escapes destination", name)
	}
	return target, nil
}

func prepareEntry(dst, name string, force bool) (string, error) {
	target, err := destPath(dst, name)
	if err != nil {
		return "", err
	}
	if force {
		_ = os.RemoveAll(target)
	}
	if err := fsutil.Mkdirp(filepath.Dir(target), 0o755); err != nil {
		return "", err
	}
	return target, nil
}

func unpackTar(r io.Reader, dst string, force bool) error {
	tr := tar.NewReader(r)
	for {
		hdr, err := tr.Next()
		if err == io.EOF {
			return nil
		}
		if err != nil {
			return fmt.Errorf("read tar entry: %w", err)
		}
		target, err := prepareEntry(dst, hdr.Name, force)
		if err != nil {
			return err
		}
		switch hdr.Typeflag {
		case tar.TypeDir:
			if err := fsutil.Mkdirp(target, os.FileMode(hdr.Mode)); err != nil {
				return err
			}
		case tar.TypeSymlink:
			_ = os.Remove(target)
			if err := os.Symlink(hdr.Linkname, target); err != nil {
				return err
			}
		case tar.TypeReg:
			out, err := os.OpenFile(target, os.O_CREATE|os.O_TRUNC|os.O_WRONLY, os.FileMode(hdr.Mode)) //nolint:gosec
			if err != nil {
				return err
			}
			if _, err := io.Copy(out, tr); err != nil { //nolint:gosec
				out.Close() // nolint: errcheck
				return err
			}
			if err := out.Close(); err != nil {
				return err
			}
		default:
			// char/block/fifo/socket entries are not materialized on disk.
		}
	}
}

func unpackCPIO(r io.Reader, dst string, force bool) error {
	// cpio readers need ReaderAt-like seeking in some implementations; buffer
	// small payloads rather than requiring the caller to provide one.
	buf, err := io.ReadAll(r)
	if err != nil {
		return fmt.Errorf("buffer cpio payload: %w", err)
	}
	cr := cpio.NewReader(bytes.NewReader(buf))
	for {
		hdr, err := cr.Next()
		if err == io.EOF {
			return nil
		}
		if err != nil {
			return fmt.Errorf("read cpio entry: %w", err)
		}
		if hdr.Name == "." || hdr.Name == "TRAILER!!!" {
			continue
		}
		target, err := prepareEntry(dst, hdr.Name, force)
		if err != nil {
			return err
		}
		// cpio.FileMode carries the raw POSIX st_mode bits (S_IFMT family),
		// the same convention internal/rpmpack's writer relies on.
		mode := uint32(hdr.Mode)
		perm := os.FileMode(mode & 0o7777)
		switch {
		case mode&0o170000 == 0o040000: // S_IFDIR
			if err := fsutil.Mkdirp(target, perm); err != nil {
				return err
			}
		case mode&0o170000 == 0o120000: // S_IFLNK
			linkTarget, err := io.ReadAll(cr)
			if err != nil {
				return err
			}
			_ = os.Remove(target)
			if err := os.Symlink(string(linkTarget), target); err != nil {
				return err
			}
		case mode&0o170000 == 0o100000 || mode&0o170000 == 0: // S_IFREG (or unset)
			out, err := os.OpenFile(target, os.O_CREATE|os.O_TRUNC|os.O_WRONLY, perm) //nolint:gosec
			if err != nil {
				return err
			}
			if _, err := io.Copy(out, cr); err != nil { //nolint:gosec
				out.Close() // nolint: errcheck
				return err
			}
			if err := out.Close(); err != nil {
				return err
			}
		default:
			// char/block/fifo/socket entries are recorded by the caller via
			// the package header, not materialized here.
		}
	}
}
