package results_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/rpminspect/rpminspect/results"
)

func TestWorstSeverityMonotonic(t *testing.T) {
	acc := results.NewAccumulator()
	acc.Add(results.Record{Severity: results.Info})
	assert.Equal(t, results.Info, acc.WorstSeverity())

	acc.Add(results.Record{Severity: results.OK})
	assert.Equal(t, results.Info, acc.WorstSeverity(), "worst severity must not decrease")

	acc.Add(results.Record{Severity: results.Bad})
	assert.Equal(t, results.Bad, acc.WorstSeverity())
}

func TestDiagnosticNeverContributesToWorst(t *testing.T) {
	acc := results.NewAccumulator()
	acc.Add(results.Record{Severity: results.Diagnostic})
	assert.Equal(t, results.Diagnostic, acc.WorstSeverity())

	acc.Add(results.Record{Severity: results.Info})
	acc.Add(results.Record{Severity: results.Diagnostic})
	assert.Equal(t, results.Info, acc.WorstSeverity())
}

func TestRecordsPreserveInsertionOrder(t *testing.T) {
	acc := results.NewAccumulator()
	acc.Add(results.Record{Header: "addedfiles", File: "/a"})
	acc.Add(results.Record{Header: "addedfiles", File: "/b"})
	acc.Add(results.Record{Header: "removedfiles", File: "/c"})

	got := acc.Records()
	assert.Len(t, got, 3)
	assert.Equal(t, "/a", got[0].File)
	assert.Equal(t, "/b", got[1].File)
	assert.Equal(t, "/c", got[2].File)
}

func TestForHeaderFilters(t *testing.T) {
	acc := results.NewAccumulator()
	acc.Add(results.Record{Header: "addedfiles", File: "/a"})
	acc.Add(results.Record{Header: "removedfiles", File: "/b"})

	got := acc.ForHeader("addedfiles")
	assert.Len(t, got, 1)
	assert.Equal(t, "/a", got[0].File)
}

func TestCountSuppressed(t *testing.T) {
	acc := results.NewAccumulator()
	acc.Add(results.Record{Header: "symlinks", Severity: results.Info})
	acc.Add(results.Record{Header: "symlinks", Severity: results.Info})
	assert.True(t, acc.CountSuppressed("symlinks", results.Verify))

	acc.Add(results.Record{Header: "symlinks", Severity: results.Bad})
	assert.False(t, acc.CountSuppressed("symlinks", results.Verify))

	assert.True(t, acc.CountSuppressed("nonexistent", results.Verify))
}

func TestSeverityOrdering(t *testing.T) {
	assert.True(t, results.Diagnostic < results.Skip)
	assert.True(t, results.Skip < results.OK)
	assert.True(t, results.OK < results.Info)
	assert.True(t, results.Info < results.Verify)
	assert.True(t, results.Verify < results.Bad)
}

func TestParseSeverity(t *testing.T) {
	sev, err := results.ParseSeverity("VERIFY")
	assert.NoError(t, err)
	assert.Equal(t, results.Verify, sev)

	_, err = results.ParseSeverity("NOPE")
	assert.Error(t, err)
}
