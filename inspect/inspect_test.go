package inspect_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rpminspect/rpminspect/config"
	"github.com/rpminspect/rpminspect/header"
	"github.com/rpminspect/rpminspect/inspect"
	"github.com/rpminspect/rpminspect/peers"
	"github.com/rpminspect/rpminspect/results"
	"github.com/rpminspect/rpminspect/run"
)

func writeVendorFile(dir, list, productRelease, content string) error {
	listDir := filepath.Join(dir, list)
	if err := os.MkdirAll(listDir, 0o755); err != nil {
		return err
	}
	return os.WriteFile(filepath.Join(listDir, productRelease), []byte(content), 0o644)
}

func newRun(t *testing.T, cfg *config.RunConfig, peerList []*peers.SubpackagePeer) *run.Run {
	t.Helper()
	if cfg == nil {
		cfg = &config.RunConfig{Threshold: results.Verify}
	}
	return run.New(cfg, t.TempDir(), t.TempDir(), "before.rpm", "after.rpm", "fc40", peerList, nil)
}

func pkg(name, arch string) *header.Header {
	return &header.Header{Name: name, Version: "1.0", Release: "1.fc40", Arch: arch}
}

func TestAddedFilesReportsAfterOnlyFile(t *testing.T) {
	p := &peers.SubpackagePeer{
		Name: "foo", Arch: "x86_64",
		BeforeHeader: pkg("foo", "x86_64"),
		AfterHeader:  pkg("foo", "x86_64"),
		AfterFiles:   []*header.FileEntry{{LocalPath: "/usr/bin/newfile"}},
	}
	r := newRun(t, nil, []*peers.SubpackagePeer{p})

	inspect.AddedFiles(r)

	recs := r.Results.ForHeader("addedfiles")
	require.Len(t, recs, 1)
	assert.Equal(t, results.Verify, recs[0].Severity)
	assert.Equal(t, "/usr/bin/newfile", recs[0].File)
}

func TestAddedFilesSkipsDebugPath(t *testing.T) {
	p := &peers.SubpackagePeer{
		Name: "foo", Arch: "x86_64",
		AfterHeader: pkg("foo", "x86_64"),
		AfterFiles:  []*header.FileEntry{{LocalPath: "/usr/lib/debug/usr/bin/newfile.debug"}},
	}
	r := newRun(t, nil, []*peers.SubpackagePeer{p})

	inspect.AddedFiles(r)

	assert.Empty(t, r.Results.ForHeader("addedfiles"))
}

func TestAddedFilesHonorsGlobalIgnore(t *testing.T) {
	p := &peers.SubpackagePeer{
		Name: "foo", Arch: "x86_64",
		AfterHeader: pkg("foo", "x86_64"),
		AfterFiles:  []*header.FileEntry{{LocalPath: "/usr/share/doc/foo/CHANGES"}},
	}
	cfg := &config.RunConfig{Threshold: results.Verify, GlobalIgnore: []string{"/usr/share/doc/**"}}
	r := newRun(t, cfg, []*peers.SubpackagePeer{p})

	inspect.AddedFiles(r)

	assert.Empty(t, r.Results.ForHeader("addedfiles"))
}

func TestRemovedFilesReportsVerifyWithoutSONAME(t *testing.T) {
	// removedSONAME only escalates to BAD when FullPath resolves to a real
	// ELF shared object; with no extracted payload on disk, an ordinary
	// removed file stays at the default VERIFY severity.
	before := &header.FileEntry{LocalPath: "/usr/lib64/libfoo.so.1"}
	p := &peers.SubpackagePeer{
		Name: "foo", Arch: "x86_64",
		BeforeHeader: pkg("foo", "x86_64"),
		BeforeFiles:  []*header.FileEntry{before},
	}
	r := newRun(t, nil, []*peers.SubpackagePeer{p})

	inspect.RemovedFiles(r)

	recs := r.Results.ForHeader("removedfiles")
	require.Len(t, recs, 1)
	assert.Equal(t, results.Verify, recs[0].Severity)
}

func TestMovedFilesSecurityPathIsBadAndSecurityWaivable(t *testing.T) {
	before := &header.FileEntry{LocalPath: "/etc/security/old.conf"}
	after := &header.FileEntry{LocalPath: "/etc/security/new.conf", MovedPath: true, Peer: before}
	before.Peer = after
	p := &peers.SubpackagePeer{
		Name: "foo", Arch: "x86_64",
		BeforeHeader: pkg("foo", "x86_64"),
		AfterHeader:  pkg("foo", "x86_64"),
		AfterFiles:   []*header.FileEntry{after},
	}
	cfg := &config.RunConfig{Threshold: results.Verify, SecurityPathPrefix: []string{"/etc/security/"}}
	r := newRun(t, cfg, []*peers.SubpackagePeer{p})

	inspect.MovedFiles(r)

	recs := r.Results.ForHeader("movedfiles")
	require.Len(t, recs, 1)
	assert.Equal(t, results.Bad, recs[0].Severity)
	assert.Equal(t, results.Security, recs[0].Waiver)
}

func TestSubpackagesReportsLostAndGained(t *testing.T) {
	lost := &peers.SubpackagePeer{Name: "lost", Arch: "x86_64", BeforeHeader: pkg("lost", "x86_64")}
	gained := &peers.SubpackagePeer{Name: "gained", Arch: "x86_64", AfterHeader: pkg("gained", "x86_64")}
	r := newRun(t, nil, []*peers.SubpackagePeer{lost, gained})

	inspect.Subpackages(r)

	recs := r.Results.ForHeader("subpackages")
	require.Len(t, recs, 2)
	assert.Equal(t, results.Verify, recs[0].Severity)
	assert.Equal(t, results.Info, recs[1].Severity)
}

func TestPoliticsDenyIsNotWaivable(t *testing.T) {
	vendorDir := t.TempDir()
	require.NoError(t, writePoliticsFile(t, vendorDir, "fc40", "/usr/share/icons/flag* * deny\n"))

	p := &peers.SubpackagePeer{
		Name: "foo", Arch: "x86_64",
		AfterHeader: pkg("foo", "x86_64"),
		AfterFiles:  []*header.FileEntry{{LocalPath: "/usr/share/icons/flag.png"}},
	}
	cfg := &config.RunConfig{Threshold: results.Verify, VendorDataDir: vendorDir}
	r := newRun(t, cfg, []*peers.SubpackagePeer{p})

	inspect.Politics(r)

	recs := r.Results.ForHeader("politics")
	require.Len(t, recs, 1)
	assert.Equal(t, results.Bad, recs[0].Severity)
	assert.Equal(t, results.NotWaivable, recs[0].Waiver)
}

func TestConfigFlagDriftDowngradesOnRebase(t *testing.T) {
	// after loses the %config flag the before side had: a flag-drift
	// finding, downgraded from VERIFY to INFO because the run is a rebase.
	before := &header.FileEntry{LocalPath: "/etc/foo.conf", Flags: header.FlagConfig}
	after := &header.FileEntry{LocalPath: "/etc/foo.conf", Peer: before}
	before.Peer = after

	beforeHeader := pkg("foo", "x86_64")
	afterHeader := &header.Header{Name: "foo", Version: "2.0", Release: "1.fc40", Arch: "x86_64"}
	p := &peers.SubpackagePeer{
		Name: "foo", Arch: "x86_64",
		BeforeHeader: beforeHeader,
		AfterHeader:  afterHeader,
		AfterFiles:   []*header.FileEntry{after},
	}
	vendorDir := t.TempDir()
	require.NoError(t, writeRebaseableFile(t, vendorDir, "fc40", "foo\n"))
	cfg := &config.RunConfig{Threshold: results.Verify, VendorDataDir: vendorDir, RebaseDetection: true}
	r := newRun(t, cfg, []*peers.SubpackagePeer{p})

	inspect.Config(r)

	recs := r.Results.ForHeader("config")
	require.Len(t, recs, 1)
	assert.Equal(t, results.Info, recs[0].Severity) // downgraded: version differs + foo is rebaseable
}

func writePoliticsFile(t *testing.T, dir, productRelease, content string) error {
	t.Helper()
	return writeVendorFile(dir, "politics", productRelease, content)
}

func writeRebaseableFile(t *testing.T, dir, productRelease, content string) error {
	t.Helper()
	return writeVendorFile(dir, "rebaseable", productRelease, content)
}
