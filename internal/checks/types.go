// Package checks holds the repository checks and the registry that names them.
//
// A check inspects a Target and returns exactly one CheckResult. Expected
// conditions such as a missing file, a missing tool or a path that is not a
// repository are reported as a status, never as an error. No check modifies
// the repository.
package checks

import (
	"context"
	"fmt"

	"github.com/felixgeelhaar/repo-preflight/internal/vcs"
)

// Status is the outcome of a single check.
type Status string

const (
	StatusPass Status = "pass"
	StatusWarn Status = "warn"
	StatusFail Status = "fail"
)

// Valid reports whether s is one of the three known statuses.
func (s Status) Valid() bool {
	switch s {
	case StatusPass, StatusWarn, StatusFail:
		return true
	}
	return false
}

// ParseStatus converts a config value into a Status.
func ParseStatus(s string) (Status, error) {
	st := Status(s)
	if !st.Valid() {
		return "", fmt.Errorf("invalid status %q: must be one of pass, warn, fail", s)
	}
	return st, nil
}

// CheckResult is the value produced by one check. Results are never mutated
// after creation; ApplyOverride returns a copy.
type CheckResult struct {
	ID      string `json:"id"`
	Status  Status `json:"status"`
	Message string `json:"message"`
	Fix     string `json:"fix"`

	// Location is the repository path a finding points at, when the check
	// can name one. It is not part of the JSON result.
	Location string `json:"-"`
}

func pass(id, message string) CheckResult {
	return CheckResult{ID: id, Status: StatusPass, Message: message}
}

func warn(id, message, fix string) CheckResult {
	return CheckResult{ID: id, Status: StatusWarn, Message: message, Fix: fix}
}

func fail(id, message, fix string) CheckResult {
	return CheckResult{ID: id, Status: StatusFail, Message: message, Fix: fix}
}

// Thresholds are the numeric limits used by size and diff checks. Sizes are
// in KiB.
type Thresholds struct {
	MaxTrackedFileKiB   int
	MaxHistoryBlobKiB   int
	HistoryObjectLimit  int
	MaxDiffFiles        int
	MaxDiffChangedLines int
	MaxDiffObjectKiB    int
}

// DefaultThresholds returns the built-in limits.
func DefaultThresholds() Thresholds {
	return Thresholds{
		MaxTrackedFileKiB:   5120,
		MaxHistoryBlobKiB:   10240,
		HistoryObjectLimit:  20000,
		MaxDiffFiles:        200,
		MaxDiffChangedLines: 4000,
		MaxDiffObjectKiB:    5120,
	}
}

// Target is everything a check may look at.
type Target struct {
	// Path is the working copy root on disk.
	Path string

	Git     vcs.Client
	Scanner vcs.SecretScanner

	Thresholds Thresholds

	// DiffBase is empty when no diff base is configured. DiffTarget
	// defaults to HEAD.
	DiffBase   string
	DiffTarget string
}

// Func evaluates one check against a target.
type Func func(ctx context.Context, t *Target) CheckResult

// Family groups checks by what they inspect.
type Family string

const (
	FamilyPresence Family = "presence"
	FamilyTracked  Family = "tracked"
	FamilyHistory  Family = "history"
	FamilyDiff     Family = "diff"
	FamilyScanner  Family = "scanner"
)

// NamedThreshold is a threshold with its config key and display label.
type NamedThreshold struct {
	Key   string
	Label string
	Value int
}

// Named returns the thresholds in a fixed order with their config keys.
func (t Thresholds) Named() []NamedThreshold {
	return []NamedThreshold{
		{"max_tracked_file_kib", "Max tracked file KiB", t.MaxTrackedFileKiB},
		{"max_history_blob_kib", "Max history blob KiB", t.MaxHistoryBlobKiB},
		{"history_object_limit", "History object limit", t.HistoryObjectLimit},
		{"max_diff_files", "Max diff files", t.MaxDiffFiles},
		{"max_diff_changed_lines", "Max diff changed lines", t.MaxDiffChangedLines},
		{"max_diff_object_kib", "Max diff object KiB", t.MaxDiffObjectKiB},
	}
}
