package inspect_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rpminspect/rpminspect/config"
	"github.com/rpminspect/rpminspect/header"
	"github.com/rpminspect/rpminspect/inspect"
	"github.com/rpminspect/rpminspect/peers"
	"github.com/rpminspect/rpminspect/results"
)

func TestCapabilitiesDriftIsSecurityWaivable(t *testing.T) {
	before := &header.FileEntry{LocalPath: "/usr/bin/ping", Capabilities: "cap_net_raw=ep"}
	after := &header.FileEntry{LocalPath: "/usr/bin/ping", Capabilities: "cap_net_raw,cap_net_admin=ep", Peer: before}
	before.Peer = after
	p := &peers.SubpackagePeer{
		Name: "iputils", Arch: "x86_64",
		BeforeHeader: pkg("iputils", "x86_64"),
		AfterHeader:  pkg("iputils", "x86_64"),
		AfterFiles:   []*header.FileEntry{after},
	}
	vendorDir := t.TempDir()
	// The new capability set is allowlisted, so drift is the only finding.
	require.NoError(t, writeVendorFile(vendorDir, "capabilities", "fc40", "iputils /usr/bin/ping = cap_net_raw,cap_net_admin=ep\n"))
	r := newRun(t, &config.RunConfig{Threshold: results.Verify, VendorDataDir: vendorDir}, []*peers.SubpackagePeer{p})

	ok := inspect.Capabilities(r)

	assert.False(t, ok)
	recs := r.Results.ForHeader("capabilities")
	require.Len(t, recs, 1)
	assert.Equal(t, results.Verify, recs[0].Severity)
	assert.Equal(t, results.Security, recs[0].Waiver)
}

func TestCapabilitiesUnapprovedGrantIsBad(t *testing.T) {
	after := &header.FileEntry{LocalPath: "/usr/bin/newsetuid", Capabilities: "cap_setuid=ep"}
	p := &peers.SubpackagePeer{
		Name: "foo", Arch: "x86_64",
		AfterHeader: pkg("foo", "x86_64"),
		AfterFiles:  []*header.FileEntry{after},
	}
	vendorDir := t.TempDir()
	// No caps policy file for fc40, so capsAllowed has nothing to match against.
	r := newRun(t, &config.RunConfig{Threshold: results.Verify, VendorDataDir: vendorDir}, []*peers.SubpackagePeer{p})

	ok := inspect.Capabilities(r)

	assert.False(t, ok)
	recs := r.Results.ForHeader("capabilities")
	require.Len(t, recs, 1)
	assert.Equal(t, results.Bad, recs[0].Severity)
	assert.Equal(t, results.Security, recs[0].Waiver)
}

func TestCapabilitiesAllowlistedGrantPasses(t *testing.T) {
	after := &header.FileEntry{LocalPath: "/usr/bin/ping", Capabilities: "cap_net_raw=ep"}
	p := &peers.SubpackagePeer{
		Name: "iputils", Arch: "x86_64",
		AfterHeader: pkg("iputils", "x86_64"),
		AfterFiles:  []*header.FileEntry{after},
	}
	vendorDir := t.TempDir()
	require.NoError(t, writeVendorFile(vendorDir, "capabilities", "fc40", "iputils /usr/bin/ping = cap_net_raw=ep\n"))
	r := newRun(t, &config.RunConfig{Threshold: results.Verify, VendorDataDir: vendorDir}, []*peers.SubpackagePeer{p})

	ok := inspect.Capabilities(r)

	assert.True(t, ok)
	recs := r.Results.ForHeader("capabilities")
	require.Len(t, recs, 1)
	assert.Equal(t, results.OK, recs[0].Severity)
}
