package vcs

import (
	"os"
	"strings"
)

// Env looks up environment variables. os.Getenv satisfies it.
type Env func(key string) string

// OSEnv returns an Env backed by the process environment.
func OSEnv() Env {
	return os.Getenv
}

var (
	baseBranchVars = []string{"GITHUB_BASE_REF", "CI_MERGE_REQUEST_TARGET_BRANCH_NAME"}
	commitSHAVars  = []string{"GITHUB_SHA", "CI_COMMIT_SHA"}
)

// BaseBranch returns the pull or merge request target branch advertised by
// the CI provider, or "".
func (e Env) BaseBranch() string {
	return e.first(baseBranchVars)
}

// CommitSHA returns the commit the CI provider is building, or "".
func (e Env) CommitSHA() string {
	return e.first(commitSHAVars)
}

func (e Env) first(keys []string) string {
	if e == nil {
		return ""
	}
	for _, k := range keys {
		if v := strings.TrimSpace(e(k)); v != "" {
			return v
		}
	}
	return ""
}

// NormalizeBaseRef turns a CI branch hint into a ref resolvable in a fresh
// clone: "main" and "refs/heads/main" both become "origin/main".
func NormalizeBaseRef(ref string) string {
	ref = strings.TrimSpace(ref)
	switch {
	case ref == "":
		return ""
	case strings.HasPrefix(ref, "origin/"):
		return ref
	case strings.HasPrefix(ref, "refs/heads/"):
		return "origin/" + strings.TrimPrefix(ref, "refs/heads/")
	case strings.HasPrefix(ref, "refs/remotes/"):
		return strings.TrimPrefix(ref, "refs/remotes/")
	default:
		return "origin/" + ref
	}
}
