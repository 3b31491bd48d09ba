package output_test

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rpminspect/rpminspect/output"
	"github.com/rpminspect/rpminspect/results"
)

func sampleRecords() []results.Record {
	return []results.Record{
		{Severity: results.OK, Waiver: results.NotWaivable, Header: "addedfiles", Message: "no new files", Verb: results.VerbOK},
		{Severity: results.Bad, Waiver: results.Security, Header: "runpath", Message: "unapproved RPATH", Verb: results.VerbFailed, Noun: "/usr/bin/foo"},
	}
}

func TestParseFormatRejectsUnknown(t *testing.T) {
	_, err := output.ParseFormat("yaml")
	assert.Error(t, err)
}

func TestWriteTextGroupsByHeader(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, output.Write(&buf, output.Text, sampleRecords()))
	out := buf.String()
	assert.Contains(t, out, "addedfiles")
	assert.Contains(t, out, "runpath")
	assert.Contains(t, out, "unapproved RPATH")
}

func TestWriteJSONRoundTrips(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, output.Write(&buf, output.JSON, sampleRecords()))

	var decoded []map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &decoded))
	require.Len(t, decoded, 2)
	assert.Equal(t, "BAD", decoded[1]["Severity"])
	assert.Equal(t, "runpath", decoded[1]["Header"])
}

func TestWriteXUnitEmitsFailureForBad(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, output.Write(&buf, output.XUnit, sampleRecords()))
	out := buf.String()
	assert.Contains(t, out, `<testcase name="/addedfiles" classname="rpminspect">`)
	assert.Contains(t, out, `<testcase name="/runpath" classname="rpminspect">`)
	assert.Contains(t, out, "<failure")
}

func TestWriteSummarySkipsDiagnostics(t *testing.T) {
	records := append(sampleRecords(), results.Record{Severity: results.Diagnostic, Header: "patches", Message: "inspection ran and produced no findings"})
	var buf bytes.Buffer
	require.NoError(t, output.Write(&buf, output.Summary, records))
	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 2)
	assert.Equal(t, "Failed /usr/bin/foo (runpath)", lines[1])
}
