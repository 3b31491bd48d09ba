package build_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/rpminspect/rpminspect/build"
)

type fakeCatalog struct {
	descriptors []build.Descriptor
	moduleMeta  *build.ModuleMetadata
	downloaded  []string
	resolveErr  error
}

func (f *fakeCatalog) ResolveBuild(nameOrTask string) ([]build.Descriptor, *build.ModuleMetadata, error) {
	return f.descriptors, f.moduleMeta, f.resolveErr
}

func (f *fakeCatalog) Download(url, dest string) error {
	f.downloaded = append(f.downloaded, url)
	return nil
}

func TestAcquireUnknownSpecErrors(t *testing.T) {
	_, _, err := build.Acquire("/does/not/exist/at/all", build.Before, t.TempDir(), nil, nil, nil)
	assert.Error(t, err)
}

func TestAcquireLocalDirEmptySucceeds(t *testing.T) {
	// A directory that does exist but is empty yields zero acquired
	// packages and zero diagnostics, not an error.
	dir := t.TempDir()
	acquired, diags, err := build.Acquire(dir, build.After, t.TempDir(), nil, nil, nil)
	assert.NoError(t, err)
	assert.Empty(t, acquired)
	assert.Empty(t, diags)
}

func TestAcquireCatalogFiltersModularRPMs(t *testing.T) {
	catalog := &fakeCatalog{
		descriptors: []build.Descriptor{
			{Arch: "x86_64", PackageURL: "http://example/foo.rpm", SubpackageName: "foo"},
			{Arch: "x86_64", PackageURL: "http://example/filtered.rpm", SubpackageName: "filtered"},
		},
		moduleMeta: &build.ModuleMetadata{FilteredRPMs: []string{"filtered"}},
	}

	// The downloaded package is not a real RPM, so header parsing fails and
	// the acquisition surfaces a diagnostic rather than erroring the run.
	_, diags, err := build.Acquire("module:stream:version", build.After, t.TempDir(), nil, catalog, nil)
	assert.NoError(t, err)
	assert.Len(t, catalog.downloaded, 1, "the filtered RPM must never be downloaded")
	assert.Equal(t, "http://example/foo.rpm", catalog.downloaded[0])
	assert.NotEmpty(t, diags)
}

func TestAcquireCatalogRestrictsArches(t *testing.T) {
	catalog := &fakeCatalog{
		descriptors: []build.Descriptor{
			{Arch: "x86_64", PackageURL: "http://example/foo.rpm", SubpackageName: "foo"},
			{Arch: "aarch64", PackageURL: "http://example/foo-arm.rpm", SubpackageName: "foo"},
		},
	}

	_, _, err := build.Acquire("module:stream:version", build.After, t.TempDir(), []string{"x86_64"}, catalog, nil)
	assert.NoError(t, err)
	assert.Len(t, catalog.downloaded, 1)
	assert.Equal(t, "http://example/foo.rpm", catalog.downloaded[0])
}
