// Package output renders a finished run's accumulated results in one of
// the four formats §6 names: text, json, xunit, and the deprecated
// summary format. Every formatter consumes only a []results.Record and
// writes to an io.Writer, so the CLI layer decides where the bytes land
// (stdout or the -o file).
package output

import (
	"encoding/json"
	"encoding/xml"
	"fmt"
	"io"

	"github.com/rpminspect/rpminspect/results"
)

// Format names one of the four renderings §6 specifies.
type Format string

const (
	Text    Format = "text"
	JSON    Format = "json"
	XUnit   Format = "xunit"
	Summary Format = "summary"
)

// ParseFormat validates the -F flag's value.
func ParseFormat(s string) (Format, error) {
	switch Format(s) {
	case Text, JSON, XUnit, Summary:
		return Format(s), nil
	default:
		return "", fmt.Errorf("unknown output format %q", s)
	}
}

// Write renders records in the given format to w. Records are assumed to
// already be in registry/peer/file order per §4.1's ordering guarantee;
// no formatter re-sorts.
func Write(w io.Writer, format Format, records []results.Record) error {
	switch format {
	case JSON:
		return writeJSON(w, records)
	case XUnit:
		return writeXUnit(w, records)
	case Summary:
		return writeSummary(w, records)
	default:
		return writeText(w, records)
	}
}

// writeText groups records by inspection header, matching the original's
// human-facing report layout: one block per inspection, one line per
// record, with details and remedy indented underneath when present.
func writeText(w io.Writer, records []results.Record) error {
	var lastHeader string
	for _, r := range records {
		if r.Header != lastHeader {
			if lastHeader != "" {
				fmt.Fprintln(w)
			}
			fmt.Fprintf(w, "%s\n", r.Header)
			lastHeader = r.Header
		}
		fmt.Fprintf(w, "  %-10s %s\n", r.Severity, r.Message)
		if r.Details != "" {
			fmt.Fprintf(w, "    %s\n", r.Details)
		}
		if r.Remedy != "" {
			fmt.Fprintf(w, "    remedy: %s\n", r.Remedy)
		}
	}
	return nil
}

// jsonRecord mirrors results.Record field-for-field per §6's "keys are the
// ResultRecord field names" requirement.
type jsonRecord struct {
	Severity string `json:"Severity"`
	Waiver   string `json:"Waiver"`
	Header   string `json:"Header"`
	Message  string `json:"Message"`
	Details  string `json:"Details,omitempty"`
	Remedy   string `json:"Remedy,omitempty"`
	Verb     string `json:"Verb"`
	Noun     string `json:"Noun,omitempty"`
	Arch     string `json:"Arch,omitempty"`
	File     string `json:"File,omitempty"`
}

func writeJSON(w io.Writer, records []results.Record) error {
	out := make([]jsonRecord, len(records))
	for i, r := range records {
		out[i] = jsonRecord{
			Severity: r.Severity.String(),
			Waiver:   r.Waiver.String(),
			Header:   r.Header,
			Message:  r.Message,
			Details:  r.Details,
			Remedy:   r.Remedy,
			Verb:     r.Verb.String(),
			Noun:     r.Noun,
			Arch:     r.Arch,
			File:     r.File,
		}
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(out)
}

type xunitFailure struct {
	Message string `xml:"message,attr"`
	Body    string `xml:",cdata"`
}

type xunitTestcase struct {
	Name      string          `xml:"name,attr"`
	Classname string          `xml:"classname,attr"`
	Failures  []*xunitFailure `xml:"failure,omitempty"`
	SystemOut string          `xml:"system-out,omitempty"`
}

type xunitTestsuite struct {
	XMLName   xml.Name        `xml:"testsuite"`
	Tests     int             `xml:"tests,attr"`
	Failures  int             `xml:"failures,attr"`
	Testcases []xunitTestcase `xml:"testcase"`
}

// writeXUnit groups by header into one testcase per inspection, nesting a
// failure element for every BAD or VERIFY record per §6.
func writeXUnit(w io.Writer, records []results.Record) error {
	order := []string{}
	byHeader := map[string][]results.Record{}
	for _, r := range records {
		if _, ok := byHeader[r.Header]; !ok {
			order = append(order, r.Header)
		}
		byHeader[r.Header] = append(byHeader[r.Header], r)
	}

	suite := xunitTestsuite{}
	for _, header := range order {
		recs := byHeader[header]
		tc := xunitTestcase{Name: "/" + header, Classname: "rpminspect"}
		var out string
		for _, r := range recs {
			out += fmt.Sprintf("%s: %s\n", r.Severity, r.Message)
			if r.Severity == results.Bad || r.Severity == results.Verify {
				tc.Failures = append(tc.Failures, &xunitFailure{Message: r.Message, Body: r.Message})
				suite.Failures++
			}
		}
		tc.SystemOut = out
		suite.Tests++
		suite.Testcases = append(suite.Testcases, tc)
	}

	if _, err := io.WriteString(w, xml.Header); err != nil {
		return err
	}
	enc := xml.NewEncoder(w)
	enc.Indent("", "  ")
	if err := enc.Encode(suite); err != nil {
		return err
	}
	_, err := io.WriteString(w, "\n")
	return err
}

// writeSummary emits the deprecated one-line-per-record form; DIAGNOSTIC
// records are skipped since they carry no verb/noun of interest.
func writeSummary(w io.Writer, records []results.Record) error {
	for _, r := range records {
		if r.Severity == results.Diagnostic {
			continue
		}
		fmt.Fprintf(w, "%s %s (%s)\n", r.Verb, r.Noun, r.Header)
	}
	return nil
}
