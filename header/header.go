// Package header reads one on-disk RPM package into the read-only Header
// and FileEntry view the rest of rpminspect consumes, and extracts its
// payload into a private subtree.
//
// Grounded on rpm/rpm_test.go, which already exercises
// github.com/sassoftware/go-rpmutils against packages nfpm itself builds
// (rpmutils.ReadRpm, Header.GetString/Get, Header.GetFiles, PayloadReader).
package header

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/sassoftware/go-rpmutils"

	"github.com/rpminspect/rpminspect/internal/fsutil"
)

// FileType classifies a FileEntry's on-disk kind.
type FileType int

const (
	TypeRegular FileType = iota
	TypeDirectory
	TypeSymlink
	TypeCharDevice
	TypeBlockDevice
	TypeFIFO
	TypeSocket
)

// Flag bits mirror RPM's file-flags bitmask.
type Flag uint32

const (
	FlagConfig    Flag = 1 << 0
	FlagDoc       Flag = 1 << 1
	FlagGhost     Flag = 1 << 6
	FlagNoReplace Flag = 1 << 4
	FlagLicense   Flag = 1 << 7
	FlagReadme    Flag = 1 << 8
)

// DepKind names one of RPM's dependency tag families.
type DepKind int

const (
	DepRequires DepKind = iota
	DepProvides
	DepConflicts
	DepObsoletes
	DepEnhances
	DepRecommends
	DepSuggests
	DepSupplements
)

func (k DepKind) String() string {
	switch k {
	case DepRequires:
		return "requires"
	case DepProvides:
		return "provides"
	case DepConflicts:
		return "conflicts"
	case DepObsoletes:
		return "obsoletes"
	case DepEnhances:
		return "enhances"
	case DepRecommends:
		return "recommends"
	case DepSuggests:
		return "suggests"
	case DepSupplements:
		return "supplements"
	default:
		return "unknown"
	}
}

// Dependency is one (requirement-string, operator, version, flags) tuple
// from a dependency tag family.
type Dependency struct {
	Name     string
	Operator string
	Version  string
	Flags    int32
}

// ChangelogEntry is one changelog record.
type ChangelogEntry struct {
	Time time.Time
	Name string
	Text string
}

// Stat holds the permission/type/size triple FileEntry exposes without
// pulling in os.FileInfo semantics the extraction tree may not support
// (special files are never materialized on disk).
type Stat struct {
	Mode os.FileMode // permission bits, including suid/sgid/sticky
	Type FileType
	Size int64
}

// FileEntry is one file from one package.
type FileEntry struct {
	LocalPath      string
	FullPath       string
	Stat           Stat
	Owner          string
	Group          string
	SymlinkTarget  string
	Flags          Flag
	Capabilities   string
	DigestHex      string

	Peer            *FileEntry
	MovedPath       bool
	MovedSubpackage bool

	mu       sync.Mutex
	mimeType string
	mimeDone bool
	elfClass elfClassification
	elfDone  bool
}

type elfClassification struct {
	isELF, isArchive, isExecutable, isSharedLibrary bool
}

// MimeType returns the cached MIME type for the file, computing it with
// classify on first use. classify is typically mimeclassify.Classify.
func (f *FileEntry) MimeType(classify func(path string) (string, error)) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.mimeDone {
		return f.mimeType, nil
	}
	mt, err := classify(f.FullPath)
	if err != nil {
		return "", err
	}
	f.mimeType = mt
	f.mimeDone = true
	return mt, nil
}

// ElfClassify returns the cached ELF classification, computing it with
// classify on first use.
func (f *FileEntry) ElfClassify(classify func(path string) (isELF, isArchive, isExecutable, isSharedLibrary bool, err error)) (isELF, isArchive, isExecutable, isSharedLibrary bool, err error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.elfDone {
		c := f.elfClass
		return c.isELF, c.isArchive, c.isExecutable, c.isSharedLibrary, nil
	}
	isELF, isArchive, isExecutable, isSharedLibrary, err = classify(f.FullPath)
	if err != nil {
		return false, false, false, false, err
	}
	f.elfClass = elfClassification{isELF, isArchive, isExecutable, isSharedLibrary}
	f.elfDone = true
	return
}

// IsConfig, IsDoc, IsGhost, IsNoReplace report individual flag bits.
func (f *FileEntry) IsConfig() bool    { return f.Flags&FlagConfig != 0 }
func (f *FileEntry) IsDoc() bool       { return f.Flags&FlagDoc != 0 }
func (f *FileEntry) IsGhost() bool     { return f.Flags&FlagGhost != 0 }
func (f *FileEntry) IsNoReplace() bool { return f.Flags&FlagNoReplace != 0 }

// Header is a read-only view of one package's metadata.
type Header struct {
	Name        string
	Version     string
	Release     string
	Epoch       *int64
	Arch        string
	License     string
	Summary     string
	Description string
	Vendor      string
	BuildHost   string
	SourceRPM   string
	Changelog   []ChangelogEntry

	Deps map[DepKind][]Dependency

	Files []*FileEntry

	path string
}

// IsSource reports whether this header describes a source package.
func (h *Header) IsSource() bool { return h.Arch == "src" }

// NEVRA renders name-epoch:version-release.arch, omitting a zero epoch.
func (h *Header) NEVRA() string {
	if h.Epoch != nil && *h.Epoch != 0 {
		return fmt.Sprintf("%s-%d:%s-%s.%s", h.Name, *h.Epoch, h.Version, h.Release, h.Arch)
	}
	return fmt.Sprintf("%s-%s-%s.%s", h.Name, h.Version, h.Release, h.Arch)
}

// cache avoids re-parsing the same package path twice within a run.
type cache struct {
	mu   sync.Mutex
	byPath map[string]*Header
}

var headerCache = &cache{byPath: make(map[string]*Header)}

// ErrMissingTag is returned when a required tag (name/version/release/arch)
// is absent from the package.
type ErrMissingTag struct {
	Path string
	Tag  string
}

func (e *ErrMissingTag) Error() string {
	return fmt.Sprintf("package %s missing required tag %s", e.Path, e.Tag)
}

// Read parses path into a Header, consulting the run-scoped cache first.
func Read(path string) (*Header, error) {
	headerCache.mu.Lock()
	if h, ok := headerCache.byPath[path]; ok {
		headerCache.mu.Unlock()
		return h, nil
	}
	headerCache.mu.Unlock()

	f, err := os.Open(path) //nolint:gosec
	if err != nil {
		return nil, fmt.Errorf("open package %s: %w", path, err)
	}
	defer f.Close() // nolint: errcheck

	pkg, err := rpmutils.ReadRpm(f)
	if err != nil {
		return nil, fmt.Errorf("parse package %s: %w", path, err)
	}

	h, err := fromRpmutils(path, pkg)
	if err != nil {
		return nil, err
	}

	headerCache.mu.Lock()
	headerCache.byPath[path] = h
	headerCache.mu.Unlock()
	return h, nil
}

func fromRpmutils(path string, pkg *rpmutils.Rpm) (*Header, error) {
	hdr := pkg.Header

	name, err := hdr.GetString(rpmutils.NAME)
	if err != nil || name == "" {
		return nil, &ErrMissingTag{Path: path, Tag: "name"}
	}
	version, err := hdr.GetString(rpmutils.VERSION)
	if err != nil || version == "" {
		return nil, &ErrMissingTag{Path: path, Tag: "version"}
	}
	release, err := hdr.GetString(rpmutils.RELEASE)
	if err != nil || release == "" {
		return nil, &ErrMissingTag{Path: path, Tag: "release"}
	}
	arch, err := hdr.GetString(rpmutils.ARCH)
	if err != nil {
		return nil, &ErrMissingTag{Path: path, Tag: "arch"}
	}
	if isSource, _ := hdr.GetString(rpmutils.SOURCEPACKAGE); isSource != "" {
		arch = "src"
	}

	h := &Header{
		Name:    name,
		Version: version,
		Release: release,
		Arch:    arch,
		path:    path,
		Deps:    make(map[DepKind][]Dependency),
	}

	h.License, _ = hdr.GetString(rpmutils.LICENSE)
	h.Summary, _ = hdr.GetString(rpmutils.SUMMARY)
	h.Description, _ = hdr.GetString(rpmutils.DESCRIPTION)
	h.Vendor, _ = hdr.GetString(rpmutils.VENDOR)
	h.BuildHost, _ = hdr.GetString(rpmutils.BUILDHOST)
	h.SourceRPM, _ = hdr.GetString(rpmutils.SOURCERPM)

	if raw, err := hdr.Get(rpmutils.EPOCH); err == nil {
		if vals, ok := raw.([]uint32); ok && len(vals) > 0 {
			e := int64(vals[0])
			h.Epoch = &e
		}
	}

	files, err := hdr.GetFiles()
	if err != nil {
		return nil, fmt.Errorf("package %s: read file table: %w", path, err)
	}
	for _, fi := range files {
		h.Files = append(h.Files, fileEntryFromInfo(fi))
	}

	return h, nil
}

func fileEntryFromInfo(fi rpmutils.FileInfo) *FileEntry {
	e := &FileEntry{
		LocalPath: fi.Name(),
		Owner:     fi.UserName(),
		Group:     fi.GroupName(),
		DigestHex: fi.Digest(),
	}

	mode := fi.Mode()
	perm := os.FileMode(mode) & os.ModePerm
	if mode&0o4000 != 0 {
		perm |= os.ModeSetuid
	}
	if mode&0o2000 != 0 {
		perm |= os.ModeSetgid
	}
	if mode&0o1000 != 0 {
		perm |= os.ModeSticky
	}
	e.Stat = Stat{
		Mode: perm,
		Size: fi.Size(),
	}

	switch {
	case mode&0o170000 == 0o040000:
		e.Stat.Type = TypeDirectory
	case mode&0o170000 == 0o120000:
		e.Stat.Type = TypeSymlink
		e.SymlinkTarget = fi.Linkname()
	case mode&0o170000 == 0o020000:
		e.Stat.Type = TypeCharDevice
	case mode&0o170000 == 0o060000:
		e.Stat.Type = TypeBlockDevice
	case mode&0o170000 == 0o010000:
		e.Stat.Type = TypeFIFO
	case mode&0o170000 == 0o140000:
		e.Stat.Type = TypeSocket
	default:
		e.Stat.Type = TypeRegular
	}

	e.Flags = Flag(fi.Flags())
	return e
}

// Extract unpacks a package's payload into root, materializing regular
// files, directories and symlinks. Special files are recorded in the
// Header only, per the file's Stat.Type.
func Extract(pkgPath string, h *Header, root string) error {
	f, err := os.Open(pkgPath) //nolint:gosec
	if err != nil {
		return err
	}
	defer f.Close() // nolint: errcheck

	pkg, err := rpmutils.ReadRpm(f)
	if err != nil {
		return err
	}
	pr, err := pkg.PayloadReader()
	if err != nil {
		return fmt.Errorf("open payload reader for %s: %w", pkgPath, err)
	}

	byName := make(map[string]*FileEntry, len(h.Files))
	for _, fe := range h.Files {
		byName[fe.LocalPath] = fe
	}

	for {
		entryHdr, err := pr.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			return fmt.Errorf("read payload entry in %s: %w", pkgPath, err)
		}

		name := entryHdr.Filename()
		fe := byName[name]
		target := filepath.Join(root, name)

		switch {
		case fe != nil && fe.Stat.Type == TypeDirectory:
			if err := fsutil.Mkdirp(target, fe.Stat.Mode|0o700); err != nil {
				return err
			}
		case fe != nil && fe.Stat.Type == TypeSymlink:
			_ = os.Remove(target)
			if err := fsutil.Mkdirp(filepath.Dir(target), 0o755); err != nil {
				return err
			}
			if err := os.Symlink(fe.SymlinkTarget, target); err != nil {
				return err
			}
		case fe != nil && fe.Stat.Type == TypeRegular:
			if err := fsutil.Mkdirp(filepath.Dir(target), 0o755); err != nil {
				return err
			}
			out, err := os.OpenFile(target, os.O_CREATE|os.O_TRUNC|os.O_WRONLY, fe.Stat.Mode|0o200) //nolint:gosec
			if err != nil {
				return err
			}
			if _, err := io.Copy(out, pr); err != nil { //nolint:gosec
				out.Close() // nolint: errcheck
				return err
			}
			if err := out.Close(); err != nil {
				return err
			}
		default:
			// char/block/fifo/socket entries: recorded in the Header, not
			// materialized on disk.
		}

		if fe != nil {
			fe.FullPath = target
		}
	}

	return nil
}
