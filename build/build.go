// Package build implements build acquisition (§4.6): materializing a
// before or after build specifier into <workdir>/<run>/<before|after>/
// <arch>/*.<pkg-ext>, then reading every acquired package's Header.
//
// Grounded on internal/cmd's CLI-to-collaborator wiring style (commands
// take a small set of concrete inputs and return a normalized result
// rather than reaching into global state); the remote-catalog case is
// specified here only as the CatalogClient interface the original scopes
// out as "a black box yielding a normalized build descriptor."
package build

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/rpminspect/rpminspect/header"
	"github.com/rpminspect/rpminspect/internal/fsutil"
	"github.com/rpminspect/rpminspect/peers"
	"github.com/rpminspect/rpminspect/results"
)

// Side names which half of the comparison a build belongs to.
type Side string

const (
	Before Side = "before"
	After  Side = "after"
)

// Descriptor is one remote-catalog-resolved package: an architecture, a
// package URL, and the subpackage identity it represents. A CatalogClient
// returns a sequence of these for a named build or task ID; acquisition
// treats them as an opaque resolution result to download and lay out like
// any other package.
type Descriptor struct {
	Arch           string
	PackageURL     string
	SubpackageName string
}

// ModuleMetadata carries a modular build's filter.rpms list: subpackage
// names the acquisition layer must skip downloading.
type ModuleMetadata struct {
	FilteredRPMs []string
}

// CatalogClient resolves a named build or task ID to a normalized
// descriptor list, per §4.6 case 4. It is the remote-catalog collaborator
// the original scopes out as a black box; Koji XMLRPC is the real-world
// implementation, not specified here.
type CatalogClient interface {
	ResolveBuild(nameOrTask string) ([]Descriptor, *ModuleMetadata, error)
	Download(url, dest string) error
}

// Fetcher downloads a single remote package URL, used for §4.6 case 3
// (a single remote package file given by an http or https URL).
type Fetcher interface {
	Fetch(url, dest string) error
}

// Acquired is one materialized and parsed subpackage, ready to be handed
// to the peer matcher.
type Acquired struct {
	Header *header.Header
	Root   string
	Path   string
}

// Acquire materializes spec (a local directory, a local package file, a
// remote URL, or — via catalog — a named build/task) into
// <worksubdir>/<side>/, then reads and extracts every resulting package.
// arches, if non-empty, restricts which architectures are kept.
func Acquire(spec string, side Side, worksubdir string, arches []string, catalog CatalogClient, fetcher Fetcher) ([]Acquired, []results.Record, error) {
	sideDir := filepath.Join(worksubdir, string(side))
	if err := fsutil.Mkdirp(sideDir, 0o755); err != nil {
		return nil, nil, err
	}

	info, statErr := os.Stat(spec)

	switch {
	case statErr == nil && info.IsDir():
		return acquireLocalDir(spec, sideDir, arches)
	case statErr == nil && !info.IsDir():
		return acquireLocalFile(spec, sideDir, arches)
	case looksLikeURL(spec) && fetcher != nil:
		return acquireRemoteFile(spec, sideDir, arches, fetcher)
	case catalog != nil:
		return acquireCatalogBuild(spec, sideDir, arches, catalog)
	default:
		return nil, nil, fmt.Errorf("acquire %s: no matching acquisition strategy for %q", side, spec)
	}
}

func looksLikeURL(spec string) bool {
	return strings.HasPrefix(spec, "http://") || strings.HasPrefix(spec, "https://")
}

func acquireLocalDir(src, sideDir string, arches []string) ([]Acquired, []results.Record, error) {
	entries, err := os.ReadDir(src)
	if err != nil {
		return nil, nil, fmt.Errorf("read build directory %s: %w", src, err)
	}

	var acquired []Acquired
	var diagnostics []results.Record

	for _, e := range entries {
		if !e.IsDir() {
			continue
		}
		arch := e.Name()
		if len(arches) > 0 && !contains(arches, arch) {
			continue
		}
		archDir := filepath.Join(src, arch)
		pkgFiles, err := os.ReadDir(archDir)
		if err != nil {
			diagnostics = append(diagnostics, diagnosticRecord(fmt.Sprintf("read arch dir %s: %v", archDir, err)))
			continue
		}
		for _, pf := range pkgFiles {
			if pf.IsDir() || !strings.HasSuffix(pf.Name(), ".rpm") {
				continue
			}
			srcPath := filepath.Join(archDir, pf.Name())
			a, diag, err := acquireOnePackage(srcPath, filepath.Join(sideDir, arch))
			if err != nil {
				diagnostics = append(diagnostics, diagnosticRecord(err.Error()))
				continue
			}
			if diag != nil {
				diagnostics = append(diagnostics, *diag)
			}
			acquired = append(acquired, a)
		}
	}
	return acquired, diagnostics, nil
}

func acquireLocalFile(src, sideDir string, arches []string) ([]Acquired, []results.Record, error) {
	h, err := header.Read(src)
	if err != nil {
		return nil, nil, fmt.Errorf("read package %s: %w", src, err)
	}
	if len(arches) > 0 && !contains(arches, h.Arch) {
		return nil, nil, nil
	}
	a, diag, err := acquireOnePackage(src, filepath.Join(sideDir, h.Arch))
	if err != nil {
		return nil, nil, err
	}
	var diagnostics []results.Record
	if diag != nil {
		diagnostics = append(diagnostics, *diag)
	}
	return []Acquired{a}, diagnostics, nil
}

func acquireRemoteFile(url, sideDir string, arches []string, fetcher Fetcher) ([]Acquired, []results.Record, error) {
	tmp := filepath.Join(sideDir, filepath.Base(url))
	if err := fsutil.Mkdirp(sideDir, 0o755); err != nil {
		return nil, nil, err
	}
	if err := fetcher.Fetch(url, tmp); err != nil {
		return nil, nil, fmt.Errorf("fetch %s: %w", url, err)
	}
	return acquireLocalFile(tmp, sideDir, arches)
}

func acquireCatalogBuild(nameOrTask, sideDir string, arches []string, catalog CatalogClient) ([]Acquired, []results.Record, error) {
	descriptors, moduleMeta, err := catalog.ResolveBuild(nameOrTask)
	if err != nil {
		return nil, nil, fmt.Errorf("resolve build %s: %w", nameOrTask, err)
	}

	filtered := map[string]bool{}
	if moduleMeta != nil {
		for _, name := range moduleMeta.FilteredRPMs {
			filtered[name] = true
		}
	}

	var acquired []Acquired
	var diagnostics []results.Record

	for _, d := range descriptors {
		if len(arches) > 0 && !contains(arches, d.Arch) {
			continue
		}
		if filtered[d.SubpackageName] {
			continue
		}
		archDir := filepath.Join(sideDir, d.Arch)
		if err := fsutil.Mkdirp(archDir, 0o755); err != nil {
			diagnostics = append(diagnostics, diagnosticRecord(err.Error()))
			continue
		}
		dest := filepath.Join(archDir, filepath.Base(d.PackageURL))
		if err := catalog.Download(d.PackageURL, dest); err != nil {
			diagnostics = append(diagnostics, diagnosticRecord(fmt.Sprintf("download %s: %v", d.PackageURL, err)))
			continue
		}
		a, diag, err := acquireOnePackage(dest, archDir)
		if err != nil {
			diagnostics = append(diagnostics, diagnosticRecord(err.Error()))
			continue
		}
		if diag != nil {
			diagnostics = append(diagnostics, *diag)
		}
		acquired = append(acquired, a)
	}
	return acquired, diagnostics, nil
}

// acquireOnePackage copies srcPath into destDir (if not already there),
// parses its header, and extracts its payload alongside it.
func acquireOnePackage(srcPath, destDir string) (Acquired, *results.Record, error) {
	if err := fsutil.Mkdirp(destDir, 0o755); err != nil {
		return Acquired{}, nil, err
	}
	destPath := filepath.Join(destDir, filepath.Base(srcPath))
	if mustAbs(srcPath) != mustAbs(destPath) {
		if err := fsutil.Copyfile(srcPath, destPath, true, true); err != nil {
			return Acquired{}, nil, fmt.Errorf("copy %s: %w", srcPath, err)
		}
	}

	h, err := header.Read(destPath)
	if err != nil {
		return Acquired{}, nil, fmt.Errorf("read package %s: %w", destPath, err)
	}

	root := destPath + ".d"
	if err := header.Extract(destPath, h, root); err != nil {
		rec := diagnosticRecord(fmt.Sprintf("extract %s: %v", destPath, err))
		return Acquired{Header: h, Root: root, Path: destPath}, &rec, nil
	}

	return Acquired{Header: h, Root: root, Path: destPath}, nil, nil
}

func mustAbs(path string) string {
	abs, err := filepath.Abs(path)
	if err != nil {
		return path
	}
	return abs
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}

func diagnosticRecord(message string) results.Record {
	return results.Record{Severity: results.Diagnostic, Waiver: results.NotWaivable, Header: "acquisition", Message: message, Verb: results.VerbSkip}
}

// ToBuildInputs converts acquired packages into the peer matcher's input
// shape.
func ToBuildInputs(acquired []Acquired) []peers.BuildInput {
	out := make([]peers.BuildInput, 0, len(acquired))
	for _, a := range acquired {
		out = append(out, peers.BuildInput{Header: a.Header, Root: a.Root})
	}
	return out
}
