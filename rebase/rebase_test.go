package rebase_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/rpminspect/rpminspect/header"
	"github.com/rpminspect/rpminspect/peers"
	"github.com/rpminspect/rpminspect/rebase"
	"github.com/rpminspect/rpminspect/results"
)

func pairedPeer(name, beforeVersion, afterVersion string) *peers.SubpackagePeer {
	return &peers.SubpackagePeer{
		Name:         name,
		BeforeHeader: &header.Header{Name: name, Version: beforeVersion},
		AfterHeader:  &header.Header{Name: name, Version: afterVersion},
	}
}

func TestIsRebaseTrueWhenVersionDiffers(t *testing.T) {
	d := rebase.NewDetector(true, []*peers.SubpackagePeer{pairedPeer("foo", "1.0", "2.0")}, nil)
	assert.True(t, d.IsRebase())
}

func TestIsRebaseFalseWhenVersionSame(t *testing.T) {
	d := rebase.NewDetector(true, []*peers.SubpackagePeer{pairedPeer("foo", "1.0", "1.0")}, nil)
	assert.False(t, d.IsRebase())
}

func TestIsRebaseFalseWhenDisabled(t *testing.T) {
	d := rebase.NewDetector(false, []*peers.SubpackagePeer{pairedPeer("foo", "1.0", "2.0")}, nil)
	assert.False(t, d.IsRebase())
}

func TestIsRebaseCachesResult(t *testing.T) {
	p := pairedPeer("foo", "1.0", "2.0")
	d := rebase.NewDetector(true, []*peers.SubpackagePeer{p}, nil)
	assert.True(t, d.IsRebase())

	p.AfterHeader.Version = "1.0" // mutate after first call; cached result must not change
	assert.True(t, d.IsRebase())
}

func TestDowngradeAppliesOnlyWhenRebase(t *testing.T) {
	assert.Equal(t, results.Info, rebase.Downgrade(true, results.Verify, results.Anyone))
	assert.Equal(t, results.Info, rebase.Downgrade(true, results.Bad, results.Anyone))
	assert.Equal(t, results.Verify, rebase.Downgrade(false, results.Verify, results.Anyone))
}

func TestDowngradeNeverAppliesToSecurityWaivable(t *testing.T) {
	assert.Equal(t, results.Bad, rebase.Downgrade(true, results.Bad, results.Security))
}

func TestDowngradeLeavesInfoAndOKAlone(t *testing.T) {
	assert.Equal(t, results.Info, rebase.Downgrade(true, results.Info, results.Anyone))
	assert.Equal(t, results.OK, rebase.Downgrade(true, results.OK, results.Anyone))
}

func TestVersionCompare(t *testing.T) {
	assert.Equal(t, -1, rebase.VersionCompare("1.0.0", "2.0.0"))
	assert.Equal(t, 0, rebase.VersionCompare("1.0.0", "1.0.0"))
	assert.Equal(t, 1, rebase.VersionCompare("2.0.0", "1.0.0"))
}
