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

func TestDispatchSkipsBeforeRequiringInspectionsWithNoBeforeBuild(t *testing.T) {
	p := &peers.SubpackagePeer{Name: "foo", Arch: "x86_64", AfterHeader: pkg("foo", "x86_64")}
	r := newRun(t, &config.RunConfig{Threshold: results.Verify}, []*peers.SubpackagePeer{p})
	r.BeforeSpec = "" // HasBefore() == false

	inspect.Dispatch(r)

	assert.Empty(t, r.Results.ForHeader("addedfiles"))
}

func TestDispatchSynthesizesDiagnosticForEmptyInspection(t *testing.T) {
	p := &peers.SubpackagePeer{
		Name: "foo", Arch: "x86_64",
		BeforeHeader: pkg("foo", "x86_64"),
		AfterHeader:  pkg("foo", "x86_64"),
	}
	r := newRun(t, &config.RunConfig{Threshold: results.Verify}, []*peers.SubpackagePeer{p})

	inspect.Dispatch(r)

	recs := r.Results.ForHeader("addedfiles")
	require.Len(t, recs, 1)
	assert.Equal(t, results.Diagnostic, recs[0].Severity)
}

func TestDispatchRespectsDisabledInspections(t *testing.T) {
	p := &peers.SubpackagePeer{
		Name: "foo", Arch: "x86_64",
		BeforeHeader: pkg("foo", "x86_64"),
		AfterHeader:  pkg("foo", "x86_64"),
		AfterFiles:   []*header.FileEntry{{LocalPath: "/usr/bin/newfile"}},
	}
	cfg := &config.RunConfig{Threshold: results.Verify, EnabledInspections: map[string]bool{"addedfiles": false}}
	r := newRun(t, cfg, []*peers.SubpackagePeer{p})

	inspect.Dispatch(r)

	assert.Empty(t, r.Results.ForHeader("addedfiles"))
}
