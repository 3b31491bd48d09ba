package capstring_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rpminspect/rpminspect/internal/capstring"
)

func TestParseSingleClause(t *testing.T) {
	set, err := capstring.Parse("cap_net_raw=ep")
	require.NoError(t, err)
	assert.Equal(t, capstring.FlagEffective|capstring.FlagPermitted, set["cap_net_raw"])
}

func TestParseMultipleNamesOneOperator(t *testing.T) {
	set, err := capstring.Parse("cap_net_raw,cap_net_admin+ep")
	require.NoError(t, err)
	assert.Equal(t, capstring.FlagEffective|capstring.FlagPermitted, set["cap_net_raw"])
	assert.Equal(t, capstring.FlagEffective|capstring.FlagPermitted, set["cap_net_admin"])
}

func TestParseMultipleClauses(t *testing.T) {
	set, err := capstring.Parse("cap_net_raw=ep cap_sys_chroot=i")
	require.NoError(t, err)
	assert.Equal(t, capstring.FlagEffective|capstring.FlagPermitted, set["cap_net_raw"])
	assert.Equal(t, capstring.FlagInheritable, set["cap_sys_chroot"])
}

func TestParseEmpty(t *testing.T) {
	set, err := capstring.Parse("")
	require.NoError(t, err)
	assert.Empty(t, set)
}

func TestParseRejectsMissingOperator(t *testing.T) {
	_, err := capstring.Parse("cap_net_raw")
	assert.Error(t, err)
}

func TestEqual(t *testing.T) {
	a, err := capstring.Parse("cap_net_raw=ep")
	require.NoError(t, err)
	b, err := capstring.Parse("cap_net_raw+ep")
	require.NoError(t, err)
	assert.True(t, capstring.Equal(a, b))

	c, err := capstring.Parse("cap_net_raw=e")
	require.NoError(t, err)
	assert.False(t, capstring.Equal(a, c))
}

func TestStringRoundTrips(t *testing.T) {
	set, err := capstring.Parse("cap_net_raw,cap_net_admin=ep")
	require.NoError(t, err)

	reparsed, err := capstring.Parse(set.String())
	require.NoError(t, err)
	assert.True(t, capstring.Equal(set, reparsed))
}

func TestNamesSorted(t *testing.T) {
	set, err := capstring.Parse("cap_sys_admin=ep cap_net_raw=ep")
	require.NoError(t, err)
	assert.Equal(t, []string{"cap_net_raw", "cap_sys_admin"}, set.Names())
}
