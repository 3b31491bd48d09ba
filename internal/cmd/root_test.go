package cmd

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestCmd(t *testing.T) (*rootCmd, *int) {
	t.Helper()
	code := -1
	root := newRootCmd("test", func(c int) { code = c })
	return root, &code
}

func TestListPrintsInspectionsAndFormats(t *testing.T) {
	root, code := newTestCmd(t)
	var out bytes.Buffer
	root.cmd.SetOut(&out)
	root.cmd.SetArgs([]string{"-l"})

	require.NoError(t, root.cmd.Execute())

	assert.Equal(t, -1, *code)
	assert.Contains(t, out.String(), "inspections:")
	assert.Contains(t, out.String(), "formats:")
}

func TestMutuallyExclusiveTestFlagsRejected(t *testing.T) {
	root, _ := newTestCmd(t)
	root.cmd.SetArgs([]string{"-T", "license", "-E", "runpath", "after.rpm"})

	err := root.cmd.Execute()

	require.Error(t, err)
	assert.Equal(t, 2, ExitCodeForError(err))
}

func TestMissingAfterArgumentRejected(t *testing.T) {
	root, _ := newTestCmd(t)
	root.cmd.SetArgs([]string{})

	err := root.cmd.Execute()

	require.Error(t, err)
	assert.Equal(t, 2, ExitCodeForError(err))
}

func TestUnknownOutputFormatRejected(t *testing.T) {
	root, _ := newTestCmd(t)
	cfgPath := filepath.Join(t.TempDir(), "rpminspect.yaml")
	require.NoError(t, os.WriteFile(cfgPath, []byte("{}\n"), 0o644))
	root.cmd.SetArgs([]string{"-F", "yaml", "--config", cfgPath, "after.rpm"})

	err := root.cmd.Execute()

	require.Error(t, err)
	assert.Equal(t, 2, ExitCodeForError(err))
}

func TestUnknownThresholdRejected(t *testing.T) {
	root, _ := newTestCmd(t)
	cfgPath := filepath.Join(t.TempDir(), "rpminspect.yaml")
	require.NoError(t, os.WriteFile(cfgPath, []byte("{}\n"), 0o644))
	root.cmd.SetArgs([]string{"-t", "WORSE", "--config", cfgPath, "after.rpm"})

	err := root.cmd.Execute()

	require.Error(t, err)
	assert.Equal(t, 2, ExitCodeForError(err))
}

func TestVersionFlagPrintsAndSkipsPipeline(t *testing.T) {
	root, code := newTestCmd(t)
	var out bytes.Buffer
	root.cmd.SetOut(&out)
	root.cmd.SetArgs([]string{"-V"})

	require.NoError(t, root.cmd.Execute())
	assert.Equal(t, -1, *code)
}

func TestExitCodeForErrorDefaultsToTwoForPlainErrors(t *testing.T) {
	assert.Equal(t, 2, ExitCodeForError(assert.AnError))
}
