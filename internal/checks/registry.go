package checks

import (
	"fmt"
	"sync"
)

// Check is a registry entry.
type Check struct {
	ID     string
	Title  string
	Family Family

	// Artifact is the repository file a finding points at, empty for
	// repository-wide checks.
	Artifact string

	Run Func
}

// Registry is an immutable, ordered set of checks.
type Registry struct {
	checks []Check
	index  map[string]int
}

// NewRegistry builds a registry from checks in declaration order. It panics
// on duplicate or empty ids since the set is fixed at build time.
func NewRegistry(checks ...Check) *Registry {
	r := &Registry{
		checks: make([]Check, len(checks)),
		index:  make(map[string]int, len(checks)),
	}
	copy(r.checks, checks)
	for i, c := range r.checks {
		if c.ID == "" || c.Run == nil {
			panic(fmt.Sprintf("checks: invalid registry entry at %d", i))
		}
		if _, dup := r.index[c.ID]; dup {
			panic(fmt.Sprintf("checks: duplicate id %q", c.ID))
		}
		r.index[c.ID] = i
	}
	return r
}

// Default returns the registry of built-in checks.
var Default = sync.OnceValue(func() *Registry {
	return NewRegistry(builtin()...)
})

// Lookup returns the check registered under id.
func (r *Registry) Lookup(id string) (Check, bool) {
	i, ok := r.index[id]
	if !ok {
		return Check{}, false
	}
	return r.checks[i], true
}

// Has reports whether id is registered.
func (r *Registry) Has(id string) bool {
	_, ok := r.index[id]
	return ok
}

// IDs returns every registered id in declaration order.
func (r *Registry) IDs() []string {
	ids := make([]string, len(r.checks))
	for i, c := range r.checks {
		ids[i] = c.ID
	}
	return ids
}

// Checks returns a copy of every entry in declaration order.
func (r *Registry) Checks() []Check {
	out := make([]Check, len(r.checks))
	copy(out, r.checks)
	return out
}

// Unknown returns the ids not present in the registry, de-duplicated in the
// order they first appear.
func (r *Registry) Unknown(ids []string) []string {
	var unknown []string
	seen := make(map[string]bool)
	for _, id := range ids {
		if r.Has(id) || seen[id] {
			continue
		}
		seen[id] = true
		unknown = append(unknown, id)
	}
	return unknown
}

func builtin() []Check {
	return []Check{
		{ID: "git_repository", Title: "Path is a git repository", Family: FamilyPresence, Run: checkGitRepository},
		{ID: "remote_origin", Title: "An origin remote is configured", Family: FamilyPresence, Run: checkRemoteOrigin},
		{ID: "clean_worktree", Title: "Working tree has no uncommitted changes", Family: FamilyPresence, Run: checkCleanWorktree},
		{ID: "default_branch_style", Title: "Current branch is main or master", Family: FamilyPresence, Run: checkDefaultBranch},
		{ID: "readme_present", Title: "README.md exists", Family: FamilyPresence, Artifact: "README.md", Run: checkReadme},
		{ID: "license_present", Title: "A license file exists", Family: FamilyPresence, Artifact: "LICENSE", Run: checkLicense},
		{ID: "license_identifier", Title: "License carries an SPDX identifier", Family: FamilyPresence, Artifact: "LICENSE", Run: checkLicenseIdentifier},
		{ID: "security_policy_present", Title: "SECURITY.md exists", Family: FamilyPresence, Artifact: "SECURITY.md", Run: checkSecurityPolicy},
		{ID: "gitignore_basics", Title: ".gitignore excludes env files", Family: FamilyPresence, Artifact: ".gitignore", Run: checkGitignore},
		{ID: "tracked_env_files", Title: "No .env files are tracked", Family: FamilyTracked, Run: checkTrackedEnvFiles},
		{ID: "tracked_keylike_files", Title: "No key or credential files are tracked", Family: FamilyTracked, Run: checkTrackedKeylikeFiles},
		{ID: "tracked_large_files", Title: "Tracked files stay under the size limit", Family: FamilyTracked, Run: checkTrackedLargeFiles},
		{ID: "history_large_blobs", Title: "History blobs stay under the size limit", Family: FamilyHistory, Run: checkHistoryLargeBlobs},
		{ID: "diff_changed_files", Title: "Diff touches a reviewable number of files", Family: FamilyDiff, Run: checkDiffChangedFiles},
		{ID: "diff_patch_size", Title: "Diff changes a reviewable number of lines", Family: FamilyDiff, Run: checkDiffPatchSize},
		{ID: "diff_large_files", Title: "Files changed by the diff stay under the size limit", Family: FamilyDiff, Run: checkDiffLargeFiles},
		{ID: "diff_object_sizes", Title: "Objects introduced by the diff stay under the size limit", Family: FamilyDiff, Run: checkDiffObjectSizes},
		{ID: "gitleaks_scan", Title: "gitleaks finds no secrets in history", Family: FamilyScanner, Run: checkGitleaks},
	}
}
