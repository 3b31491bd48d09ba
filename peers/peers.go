// Package peers builds the Run's subpackage and file-level peer lists:
// pairing before/after subpackages by (name, arch), then pairing their
// files by localpath with move-detection fallbacks, per §4.7.
//
// A FileEntry's Peer field (header.FileEntry.Peer) is a direct pointer to
// the other side's entry, set symmetrically by this package — the §8.3
// peer-symmetry invariant is then a simple equality check, never a dangling
// reference.
package peers

import (
	"crypto/sha256"
	"encoding/hex"
	"io"
	"os"
	"path/filepath"

	"github.com/rpminspect/rpminspect/header"
)

// smallFileDigestThreshold bounds the move-detection digest fallback to
// files small enough that hashing both candidates is cheap.
const smallFileDigestThreshold = 64 * 1024

// SubpackagePeer pairs one before-side and one after-side subpackage. Per
// §3, at least one side is always present.
type SubpackagePeer struct {
	Name string
	Arch string

	BeforeHeader *header.Header
	AfterHeader  *header.Header

	BeforeRoot string
	AfterRoot  string

	BeforeFiles []*header.FileEntry
	AfterFiles  []*header.FileEntry
}

// HasBefore and HasAfter report which sides are populated.
func (p *SubpackagePeer) HasBefore() bool { return p.BeforeHeader != nil }
func (p *SubpackagePeer) HasAfter() bool  { return p.AfterHeader != nil }
func (p *SubpackagePeer) IsPaired() bool  { return p.HasBefore() && p.HasAfter() }

// BuildInput is one acquired subpackage side, handed in from build
// acquisition.
type BuildInput struct {
	Header *header.Header
	Root   string
}

func identity(h *header.Header) (name, arch string) {
	if h.IsSource() {
		return h.Name, ""
	}
	return h.Name, h.Arch
}

// Match builds the SubpackagePeer list from the before and after build's
// acquired subpackages, then matches files within each pair. Iteration
// order is deterministic: after-subpackage order first (matching §4.7
// step 1), then leftover before-subpackages. There is no pass for leftover
// after-subpackages, since step 1 already consumes every one of them.
func Match(before, after []BuildInput) []*SubpackagePeer {
	type key struct{ name, arch string }

	beforeByKey := make(map[key]BuildInput, len(before))
	beforeUsed := make(map[key]bool, len(before))
	for _, b := range before {
		name, arch := identity(b.Header)
		beforeByKey[key{name, arch}] = b
	}

	var peers []*SubpackagePeer

	for _, a := range after {
		name, arch := identity(a.Header)
		k := key{name, arch}
		p := &SubpackagePeer{Name: name, Arch: arch, AfterHeader: a.Header, AfterRoot: a.Root, AfterFiles: a.Header.Files}
		if b, ok := beforeByKey[k]; ok {
			p.BeforeHeader = b.Header
			p.BeforeRoot = b.Root
			p.BeforeFiles = b.Header.Files
			beforeUsed[k] = true
		}
		peers = append(peers, p)
	}

	for _, b := range before {
		name, arch := identity(b.Header)
		k := key{name, arch}
		if beforeUsed[k] {
			continue
		}
		peers = append(peers, &SubpackagePeer{
			Name:         name,
			Arch:         arch,
			BeforeHeader: b.Header,
			BeforeRoot:   b.Root,
			BeforeFiles:  b.Header.Files,
		})
	}

	for _, p := range peers {
		matchFiles(p, peers)
	}

	return peers
}

func matchFiles(p *SubpackagePeer, allPeers []*SubpackagePeer) {
	beforeByPath := make(map[string]*header.FileEntry, len(p.BeforeFiles))
	beforeUsed := make(map[*header.FileEntry]bool, len(p.BeforeFiles))
	for _, fe := range p.BeforeFiles {
		beforeByPath[fe.LocalPath] = fe
	}

	var unmatchedAfter []*header.FileEntry

	// Step 1: exact localpath match.
	for _, af := range p.AfterFiles {
		if bf, ok := beforeByPath[af.LocalPath]; ok && !beforeUsed[bf] {
			link(bf, af)
			beforeUsed[bf] = true
			continue
		}
		unmatchedAfter = append(unmatchedAfter, af)
	}

	// Step 2: same-subpackage move detection by basename + size (+ digest
	// for small files).
	var stillUnmatched []*header.FileEntry
	for _, af := range unmatchedAfter {
		if bf := findMoveCandidate(af, p.BeforeFiles, beforeUsed); bf != nil {
			link(bf, af)
			beforeUsed[bf] = true
			af.MovedPath = true
			bf.MovedPath = true
			continue
		}
		stillUnmatched = append(stillUnmatched, af)
	}
	unmatchedAfter = stillUnmatched

	// Step 3: cross-subpackage move detection by exact localpath against
	// other peers' unmatched before-side entries.
	stillUnmatched = nil
	for _, af := range unmatchedAfter {
		found := false
		for _, other := range allPeers {
			if other == p {
				continue
			}
			for _, bf := range other.BeforeFiles {
				if bf.Peer != nil || bf.LocalPath != af.LocalPath {
					continue
				}
				link(bf, af)
				af.MovedSubpackage = true
				bf.MovedSubpackage = true
				found = true
				break
			}
			if found {
				break
			}
		}
		if !found {
			stillUnmatched = append(stillUnmatched, af)
		}
	}
	// Remaining entries in stillUnmatched are "added"; remaining before-side
	// entries with Peer == nil are "removed". Both are read directly by the
	// addedfiles/removedfiles inspections via AfterFiles/BeforeFiles, so no
	// separate list is retained here.
}

func findMoveCandidate(af *header.FileEntry, beforeFiles []*header.FileEntry, used map[*header.FileEntry]bool) *header.FileEntry {
	base := filepath.Base(af.LocalPath)
	for _, bf := range beforeFiles {
		if used[bf] || bf.Peer != nil {
			continue
		}
		if filepath.Base(bf.LocalPath) != base {
			continue
		}
		if bf.Stat.Type != af.Stat.Type {
			continue
		}
		if bf.Stat.Type == header.TypeRegular && bf.Stat.Size != af.Stat.Size {
			continue
		}
		if af.Stat.Size < smallFileDigestThreshold {
			if ok, _ := digestsEqual(af.FullPath, bf.FullPath); !ok {
				continue
			}
		}
		return bf
	}
	return nil
}

func digestsEqual(a, b string) (bool, error) {
	da, err := digestFile(a)
	if err != nil {
		return false, err
	}
	db, err := digestFile(b)
	if err != nil {
		return false, err
	}
	return da == db, nil
}

func digestFile(path string) (string, error) {
	if path == "" {
		return "", nil
	}
	f, err := os.Open(path) //nolint:gosec
	if err != nil {
		return "", err
	}
	defer f.Close() // nolint: errcheck

	h := sha256.New()
	if _, err := io.Copy(h, f); err != nil {
		return "", err
	}
	return hex.EncodeToString(h.Sum(nil)), nil
}

func link(before, after *header.FileEntry) {
	before.Peer = after
	after.Peer = before
}
