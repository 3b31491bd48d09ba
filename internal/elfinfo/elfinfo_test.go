package elfinfo_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/rpminspect/rpminspect/internal/elfinfo"
)

func TestIsDSORequiresSONAME(t *testing.T) {
	info := &elfinfo.Info{Kind: elfinfo.KindSharedLibrary}
	assert.False(t, info.IsDSO())

	info.SONAME = "libfoo.so.1"
	assert.True(t, info.IsDSO())
}

func TestIsDSORequiresSharedKind(t *testing.T) {
	info := &elfinfo.Info{Kind: elfinfo.KindExecutable, SONAME: "libfoo.so.1"}
	assert.False(t, info.IsDSO())
}

func TestIsELFRejectsNonELF(t *testing.T) {
	ok, err := elfinfo.IsELF("elfinfo_test.go")
	assert.NoError(t, err)
	assert.False(t, ok)
}

func TestClassifyNonELF(t *testing.T) {
	isELF, isArchive, isExec, isSO, err := elfinfo.Classify("elfinfo_test.go")
	assert.NoError(t, err)
	assert.False(t, isELF)
	assert.False(t, isArchive)
	assert.False(t, isExec)
	assert.False(t, isSO)
}
