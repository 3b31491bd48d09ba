package peers_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rpminspect/rpminspect/header"
	"github.com/rpminspect/rpminspect/peers"
)

func pkg(name, arch string, files ...*header.FileEntry) peers.BuildInput {
	return peers.BuildInput{Header: &header.Header{Name: name, Arch: arch, Files: files}}
}

func file(localpath string, size int64) *header.FileEntry {
	return &header.FileEntry{LocalPath: localpath, Stat: header.Stat{Type: header.TypeRegular, Size: size}}
}

func TestMatchExactLocalpath(t *testing.T) {
	before := []peers.BuildInput{pkg("foo", "x86_64", file("/usr/bin/foo", 10))}
	after := []peers.BuildInput{pkg("foo", "x86_64", file("/usr/bin/foo", 10))}

	result := peers.Match(before, after)
	require.Len(t, result, 1)
	p := result[0]
	require.True(t, p.IsPaired())
	require.Len(t, p.AfterFiles, 1)
	assert.Same(t, p.BeforeFiles[0], p.AfterFiles[0].Peer)
	assert.Same(t, p.AfterFiles[0], p.BeforeFiles[0].Peer)
}

func TestMatchAddedAndRemoved(t *testing.T) {
	before := []peers.BuildInput{pkg("foo", "x86_64", file("/usr/bin/old", 5))}
	after := []peers.BuildInput{pkg("foo", "x86_64", file("/usr/bin/new", 5))}

	result := peers.Match(before, after)
	require.Len(t, result, 1)
	p := result[0]
	assert.Nil(t, p.BeforeFiles[0].Peer, "removed file has no peer")
	assert.Nil(t, p.AfterFiles[0].Peer, "added file has no peer")
}

func TestMatchSubpackageLoss(t *testing.T) {
	before := []peers.BuildInput{
		pkg("foo", "x86_64"),
		pkg("foo-extras", "x86_64"),
	}
	after := []peers.BuildInput{
		pkg("foo", "x86_64"),
	}

	result := peers.Match(before, after)
	require.Len(t, result, 2)

	var lost *peers.SubpackagePeer
	for _, p := range result {
		if p.Name == "foo-extras" {
			lost = p
		}
	}
	require.NotNil(t, lost)
	assert.True(t, lost.HasBefore())
	assert.False(t, lost.HasAfter())
}

func TestMatchSubpackageGain(t *testing.T) {
	before := []peers.BuildInput{pkg("foo", "x86_64")}
	after := []peers.BuildInput{pkg("foo", "x86_64"), pkg("foo-doc", "x86_64")}

	result := peers.Match(before, after)
	require.Len(t, result, 2)

	var gained *peers.SubpackagePeer
	for _, p := range result {
		if p.Name == "foo-doc" {
			gained = p
		}
	}
	require.NotNil(t, gained)
	assert.False(t, gained.HasBefore())
	assert.True(t, gained.HasAfter())
}

func TestMatchSamePackageMoveByBasename(t *testing.T) {
	before := []peers.BuildInput{pkg("foo", "x86_64", file("/usr/share/doc/foo/README", 0))}
	after := []peers.BuildInput{pkg("foo", "x86_64", file("/usr/share/doc/foo2/README", 0))}

	result := peers.Match(before, after)
	require.Len(t, result, 1)
	p := result[0]
	require.NotNil(t, p.BeforeFiles[0].Peer)
	assert.True(t, p.BeforeFiles[0].MovedPath)
	assert.True(t, p.AfterFiles[0].MovedPath)
}

func TestMatchCrossSubpackageMove(t *testing.T) {
	before := []peers.BuildInput{
		pkg("foo", "x86_64", file("/usr/share/foo/data", 0)),
		pkg("foo-extras", "x86_64"),
	}
	after := []peers.BuildInput{
		pkg("foo", "x86_64"),
		pkg("foo-extras", "x86_64", file("/usr/share/foo/data", 0)),
	}

	result := peers.Match(before, after)
	var extras *peers.SubpackagePeer
	for _, p := range result {
		if p.Name == "foo-extras" {
			extras = p
		}
	}
	require.NotNil(t, extras)
	require.Len(t, extras.AfterFiles, 1)
	assert.True(t, extras.AfterFiles[0].MovedSubpackage)
	require.NotNil(t, extras.AfterFiles[0].Peer)
}
