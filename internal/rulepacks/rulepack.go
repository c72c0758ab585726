// Package rulepacks provides the built-in rule packs: named policy overlays
// applied on top of a profile.
package rulepacks

import (
	"fmt"
	"sort"

	"github.com/felixgeelhaar/repo-preflight/internal/checks"
)

// RulePack is a product-specific policy overlay. Zero thresholds inherit
// from the profile layer.
type RulePack struct {
	Name        string `yaml:"-"`
	Description string `yaml:"description"`

	// Strict overrides the profile's strict flag when set
	Strict *bool `yaml:"strict,omitempty"`

	Include []string `yaml:"include,omitempty"`
	Exclude []string `yaml:"exclude,omitempty"`

	SeverityOverrides map[string]checks.Status `yaml:"severity_overrides,omitempty"`

	MaxDiffFiles        int `yaml:"max_diff_files,omitempty"`
	MaxDiffChangedLines int `yaml:"max_diff_changed_lines,omitempty"`
	MaxDiffObjectKiB    int `yaml:"max_diff_object_kib,omitempty"`
}

// RulePackCollection is the on-disk shape of a rule pack catalog file.
type RulePackCollection struct {
	Schema    string              `yaml:"schema"`
	RulePacks map[string]RulePack `yaml:"rule_packs"`
}

// Validate checks statuses and thresholds. Check ids are validated against
// the registry by the policy resolver.
func (r *RulePack) Validate() error {
	if r.Name == "" {
		return fmt.Errorf("rule pack name is required")
	}
	if r.Description == "" {
		return fmt.Errorf("rule pack %q has no description", r.Name)
	}
	for id, status := range r.SeverityOverrides {
		if !status.Valid() {
			return fmt.Errorf("rule pack %q: severity override for %s must be one of pass, warn, fail", r.Name, id)
		}
	}
	for key, v := range map[string]int{
		"max_diff_files":         r.MaxDiffFiles,
		"max_diff_changed_lines": r.MaxDiffChangedLines,
		"max_diff_object_kib":    r.MaxDiffObjectKiB,
	} {
		if v < 0 {
			return fmt.Errorf("rule pack %q: %s must not be negative", r.Name, key)
		}
	}
	return nil
}

// OverrideIDs returns the severity override keys, sorted.
func (r *RulePack) OverrideIDs() []string {
	ids := make([]string, 0, len(r.SeverityOverrides))
	for id := range r.SeverityOverrides {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

func (r *RulePack) clone() *RulePack {
	cp := *r
	cp.Include = append([]string(nil), r.Include...)
	cp.Exclude = append([]string(nil), r.Exclude...)
	if r.Strict != nil {
		strict := *r.Strict
		cp.Strict = &strict
	}
	cp.SeverityOverrides = make(map[string]checks.Status, len(r.SeverityOverrides))
	for k, v := range r.SeverityOverrides {
		cp.SeverityOverrides[k] = v
	}
	return &cp
}
