package policy_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rpminspect/rpminspect/policy"
	"github.com/rpminspect/rpminspect/results"
)

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
}

func TestFileinfoMissingFileIsEmptyNotError(t *testing.T) {
	store := policy.NewStore(t.TempDir(), "fc40", nil)
	entries, err := store.Fileinfo()
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestFileinfoParsesLinesSkipsCommentsAndBlanks(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "fileinfo", "fc40"), "# comment\n\n0755 root root /usr/bin/foo\n0644 root root /etc/foo.conf\n")

	store := policy.NewStore(dir, "fc40", nil)
	entries, err := store.Fileinfo()
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, "/usr/bin/foo", entries[0].Filepath)
	assert.Equal(t, os.FileMode(0o755), entries[0].Mode)
}

func TestFileinfoMalformedLineIsWarningNotError(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "fileinfo", "fc40"), "not enough fields\n0644 root root /ok\n")

	store := policy.NewStore(dir, "fc40", nil)
	entries, err := store.Fileinfo()
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.NotEmpty(t, store.Warnings())
}

func TestRebaseableList(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "rebaseable", "fc40"), "kernel\nglibc\n")

	store := policy.NewStore(dir, "fc40", nil)
	list, err := store.Rebaseable()
	require.NoError(t, err)
	assert.True(t, list["kernel"])
	assert.False(t, list["curl"])
}

func TestPoliticsLastMatchWins(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "politics", "fc40"), "foo/* abcdef deny\nfoo/logo.png * allow\n")

	store := policy.NewStore(dir, "fc40", nil)
	entry, found := store.MatchPolitics("foo/logo.png", "anything")
	require.True(t, found)
	assert.True(t, entry.Allow)
}

func TestPoliticsNoMatch(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "politics", "fc40"), "bar/* * allow\n")

	store := policy.NewStore(dir, "fc40", nil)
	_, found := store.MatchPolitics("foo/logo.png", "x")
	assert.False(t, found)
}

func TestSecurityMatchDefaultsToInform(t *testing.T) {
	store := policy.NewStore(t.TempDir(), "fc40", nil)
	sev := store.MatchSecurity("foo", "1.0", "1.fc40", "caps", true)
	assert.Equal(t, results.Info, sev)
}

func TestSecurityMatchDefaultsToVerify(t *testing.T) {
	store := policy.NewStore(t.TempDir(), "fc40", nil)
	sev := store.MatchSecurity("foo", "1.0", "1.fc40", "setuid", false)
	assert.Equal(t, results.Verify, sev)
}

func TestSecurityMatchExplicitRule(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "security", "fc40"), "foo * * caps fail\n")

	store := policy.NewStore(dir, "fc40", nil)
	sev := store.MatchSecurity("foo", "1.0", "1.fc40", "caps", true)
	assert.Equal(t, results.Bad, sev)
}

func TestCapsParsesAllowlistLine(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "capabilities", "fc40"), "foo /usr/bin/foo = cap_net_raw=ep\n")

	store := policy.NewStore(dir, "fc40", nil)
	entries, err := store.Caps()
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "cap_net_raw=ep", entries[0].Capabilities)
}

func TestLicensesMergesMultipleDBs(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "licenses", "fedora"), `{"MIT": {"fedora_abbrev": "MIT", "approved": true}}`)
	writeFile(t, filepath.Join(dir, "licenses", "extra"), `{"Proprietary": {"approved": false}}`)

	store := policy.NewStore(dir, "fc40", []string{"fedora", "extra"})
	assert.True(t, store.IsApprovedLicense("MIT"))
	assert.False(t, store.IsApprovedLicense("Proprietary"))
	assert.False(t, store.IsApprovedLicense("Unknown"))
}
