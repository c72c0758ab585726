// Package report renders check results and the effective policy.
//
// A Report is built once from the resolved policy and the ordered results;
// every output format (human, JSON, compact, SARIF) renders the same value.
package report

import (
	"fmt"
	"io"

	"github.com/felixgeelhaar/repo-preflight/internal/checks"
	"github.com/felixgeelhaar/repo-preflight/internal/exitcode"
	"github.com/felixgeelhaar/repo-preflight/internal/policy"
)

// Summary counts results by status.
type Summary struct {
	Pass int `json:"pass"`
	Warn int `json:"warn"`
	Fail int `json:"fail"`
}

// Total is the number of results counted.
func (s Summary) Total() int {
	return s.Pass + s.Warn + s.Fail
}

// Summarize counts results by status.
func Summarize(results []checks.CheckResult) Summary {
	var s Summary
	for _, r := range results {
		switch r.Status {
		case checks.StatusPass:
			s.Pass++
		case checks.StatusWarn:
			s.Warn++
		case checks.StatusFail:
			s.Fail++
		}
	}
	return s
}

// ExitCode maps a summary to the process exit code. Any failure is 2;
// warnings are 1, or 2 under strict mode; otherwise 0.
func ExitCode(s Summary, strict bool) int {
	switch {
	case s.Fail > 0:
		return exitcode.Failures
	case s.Warn > 0 && strict:
		return exitcode.Failures
	case s.Warn > 0:
		return exitcode.Warnings
	default:
		return exitcode.Success
	}
}

// Verdict is the one-word outcome shown in the human and compact reports.
func Verdict(s Summary, strict bool) string {
	switch {
	case ExitCode(s, strict) == exitcode.Failures:
		return "FAIL"
	case s.Warn > 0:
		return "WARN"
	default:
		return "PASS"
	}
}

// Report is one completed run.
type Report struct {
	Path     string
	Policy   *policy.Resolved
	Results  []checks.CheckResult
	Summary  Summary
	ExitCode int
}

// New builds a report. Results must be in the resolved check order.
func New(path string, pol *policy.Resolved, results []checks.CheckResult) *Report {
	s := Summarize(results)
	return &Report{
		Path:     path,
		Policy:   pol,
		Results:  results,
		Summary:  s,
		ExitCode: ExitCode(s, pol.Strict),
	}
}

// Verdict returns PASS, WARN or FAIL for this report.
func (r *Report) Verdict() string {
	return Verdict(r.Summary, r.Policy.Strict)
}

// Format selects an output renderer.
type Format string

const (
	FormatHuman   Format = "human"
	FormatJSON    Format = "json"
	FormatCompact Format = "compact"
	FormatSARIF   Format = "sarif"
)

// Options control rendering.
type Options struct {
	// Color enables lipgloss styling in the human format.
	Color bool
}

// Write renders r to w in the given format.
func Write(w io.Writer, r *Report, format Format, opts Options) error {
	switch format {
	case FormatHuman, "":
		return WriteHuman(w, r, opts.Color)
	case FormatJSON:
		return WriteJSON(w, r)
	case FormatCompact:
		return WriteCompact(w, r)
	case FormatSARIF:
		return WriteSARIF(w, r)
	default:
		return fmt.Errorf("unknown report format: %s", format)
	}
}
