// Package policy resolves the effective check policy for one invocation.
//
// Layers are applied lowest to highest precedence: profile, rule pack,
// config file, command-line flags. Each layer is a function over a builder;
// the result is validated against the check registry and frozen into a
// Resolved value.
package policy

import (
	"sort"

	"github.com/felixgeelhaar/repo-preflight/internal/checks"
	"github.com/felixgeelhaar/repo-preflight/internal/vcs"
)

// Diff modes.
const (
	DiffModeManual = "manual"
	DiffModePR     = "pr"
)

// DefaultPRBaseRef is the base used in pr mode when nothing else applies.
const DefaultPRBaseRef = "origin/main"

// DefaultDiffTarget is the diff target when none is configured.
const DefaultDiffTarget = "HEAD"

// Options carries explicit command-line values. A nil field means the flag
// was not given and lower layers apply.
type Options struct {
	Profile  *string
	RulePack *string

	Strict     *bool
	SecretScan *bool

	MaxTrackedFileKiB   *int
	MaxHistoryBlobKiB   *int
	HistoryObjectLimit  *int
	MaxDiffFiles        *int
	MaxDiffChangedLines *int
	MaxDiffObjectKiB    *int

	DiffMode   *string
	PRBaseRef  *string
	DiffBase   *string
	DiffTarget *string
}

// Resolved is the effective policy. It is built once per invocation and
// not modified afterwards.
type Resolved struct {
	Profile  string
	RulePack string

	Strict     bool
	SecretScan bool

	CheckIDs          []string
	SeverityOverrides map[string]checks.Status
	Thresholds        checks.Thresholds

	DiffMode   string
	PRBaseRef  string
	DiffBase   string
	DiffTarget string

	// ConfigPath is the config file that contributed, empty when none.
	ConfigPath string
}

// OverrideIDs returns the severity override keys, sorted.
func (r *Resolved) OverrideIDs() []string {
	ids := make([]string, 0, len(r.SeverityOverrides))
	for id := range r.SeverityOverrides {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// Target builds the check target for a working copy under this policy.
func (r *Resolved) Target(path string, git vcs.Client, scanner vcs.SecretScanner) *checks.Target {
	return &checks.Target{
		Path:       path,
		Git:        git,
		Scanner:    scanner,
		Thresholds: r.Thresholds,
		DiffBase:   r.DiffBase,
		DiffTarget: r.DiffTarget,
	}
}
