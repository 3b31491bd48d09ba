package run_test

import (
	"regexp"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rpminspect/rpminspect/config"
	"github.com/rpminspect/rpminspect/header"
	"github.com/rpminspect/rpminspect/run"
)

func TestDeriveProductReleaseOverrideWins(t *testing.T) {
	got, err := run.DeriveProductRelease("fc99", nil, nil, nil, config.FavorNone)
	require.NoError(t, err)
	assert.Equal(t, "fc99", got)
}

func TestDeriveProductReleaseFromAfterDistTag(t *testing.T) {
	after := &header.Header{Release: "3.fc40"}
	got, err := run.DeriveProductRelease("", nil, after, nil, config.FavorNone)
	require.NoError(t, err)
	assert.Equal(t, "fc40", got)
}

func TestDeriveProductReleaseMatchingTags(t *testing.T) {
	before := &header.Header{Release: "2.fc40"}
	after := &header.Header{Release: "3.fc40"}
	got, err := run.DeriveProductRelease("", before, after, nil, config.FavorNone)
	require.NoError(t, err)
	assert.Equal(t, "fc40", got)
}

func TestDeriveProductReleaseDisagreeingTagsResolvedByProductsMap(t *testing.T) {
	before := &header.Header{Release: "2.fc39"}
	after := &header.Header{Release: "3.fc40"}
	products := map[string]*regexp.Regexp{
		"fc40": regexp.MustCompile(`\.fc40$`),
	}
	got, err := run.DeriveProductRelease("", before, after, products, config.FavorNewest)
	require.NoError(t, err)
	assert.Equal(t, "fc40", got)
}

func TestDeriveProductReleaseNoConsensusErrors(t *testing.T) {
	before := &header.Header{Release: "2.fc39"}
	after := &header.Header{Release: "3.fc40"}
	_, err := run.DeriveProductRelease("", before, after, nil, config.FavorNone)
	assert.Error(t, err)
}

func TestDeriveProductReleaseMissingAfterDistTagErrors(t *testing.T) {
	after := &header.Header{Release: "nodot"}
	_, err := run.DeriveProductRelease("", nil, after, nil, config.FavorNone)
	assert.Error(t, err)
}

func TestExitCode(t *testing.T) {
	cfg := &config.RunConfig{Threshold: 4} // results.Verify
	r := run.New(cfg, t.TempDir(), t.TempDir(), "before.rpm", "after.rpm", "fc40", nil, nil)
	assert.Equal(t, 0, r.ExitCode())
}
