package checks

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/felixgeelhaar/repo-preflight/internal/vcs"
)

func notRepo(id, skipped, fix string) CheckResult {
	return warn(id, "Not a git repository; skipped "+skipped, fix)
}

func fileExists(root, name string) bool {
	_, err := os.Stat(filepath.Join(root, name))
	return err == nil
}

func checkGitRepository(ctx context.Context, t *Target) CheckResult {
	const id = "git_repository"
	if t.Git.IsRepository(ctx) {
		return pass(id, "Path is a git repository")
	}
	return fail(id, "Path is not a git repository",
		"Run 'git init' (or use an existing repo) before running publish checks.")
}

func checkRemoteOrigin(ctx context.Context, t *Target) CheckResult {
	const id = "remote_origin"
	if !t.Git.IsRepository(ctx) {
		return notRepo(id, "origin remote check", "Initialize git and configure an origin remote.")
	}

	url, err := t.Git.RemoteURL(ctx, "origin")
	if errors.Is(err, vcs.ErrNoRemote) {
		return warn(id, "No 'origin' remote configured", "Add a publish target with: git remote add origin <url>")
	}
	if err != nil {
		return warn(id, fmt.Sprintf("Could not read 'origin' remote: %v", err), "Run 'git remote -v' manually to inspect remotes.")
	}
	return pass(id, fmt.Sprintf("origin remote configured (%s)", url))
}

func checkCleanWorktree(ctx context.Context, t *Target) CheckResult {
	const id = "clean_worktree"
	if !t.Git.IsRepository(ctx) {
		return notRepo(id, "worktree cleanliness check", "Initialize git and commit changes before publish checks.")
	}

	clean, err := t.Git.IsClean(ctx)
	if err != nil {
		return warn(id, "Could not determine git worktree state", "Run 'git status' manually and resolve repository state.")
	}
	if clean {
		return pass(id, "Working tree is clean")
	}
	return warn(id, "Working tree has uncommitted changes", "Commit or stash pending changes before publishing.")
}

func checkDefaultBranch(ctx context.Context, t *Target) CheckResult {
	const id = "default_branch_style"
	if !t.Git.IsRepository(ctx) {
		return notRepo(id, "branch check", "Initialize git and align branch naming conventions.")
	}

	branch, err := t.Git.CurrentBranch(ctx)
	if err != nil {
		return warn(id, "Could not determine current branch", "Check branch naming manually (prefer main).")
	}
	switch branch {
	case "main", "master":
		return pass(id, fmt.Sprintf("Current branch '%s' is conventional", branch))
	case "":
		return warn(id, "HEAD is detached; no current branch", "Check out a named branch (prefer main) before publishing.")
	}
	return warn(id, fmt.Sprintf("Current branch is '%s'", branch),
		"Consider using 'main' (or a documented branch policy) before public release.")
}

func checkReadme(_ context.Context, t *Target) CheckResult {
	const id = "readme_present"
	if fileExists(t.Path, "README.md") {
		return pass(id, "README.md present")
	}
	return fail(id, "README.md is missing", "Add a clear README with purpose, usage, and examples.")
}

// licenseFile returns the first license file present, or "".
func licenseFile(root string) string {
	for _, name := range []string{"LICENSE", "LICENSE.md"} {
		if fileExists(root, name) {
			return name
		}
	}
	return ""
}

func checkLicense(_ context.Context, t *Target) CheckResult {
	const id = "license_present"
	if licenseFile(t.Path) != "" {
		return pass(id, "License file present")
	}
	return warn(id, "No license file found", "Add LICENSE (e.g., MIT) so reuse terms are explicit.")
}

var licenseMarkers = []string{
	"mit license",
	"apache license",
	"mozilla public license",
	"gnu general public license",
	"bsd",
}

func checkLicenseIdentifier(_ context.Context, t *Target) CheckResult {
	const id = "license_identifier"
	name := licenseFile(t.Path)
	if name == "" {
		return warn(id, "No license file found; skipped license identifier check",
			"Add a LICENSE file and include an SPDX identifier where practical.")
	}

	data, err := os.ReadFile(filepath.Join(t.Path, name))
	if err != nil {
		return warn(id, fmt.Sprintf("Could not read %s: %v", name, err), "Check the license file permissions.")
	}

	text := strings.ToLower(string(data))
	if strings.Contains(text, "spdx-license-identifier:") {
		return pass(id, "SPDX identifier found in license file")
	}
	for _, marker := range licenseMarkers {
		if strings.Contains(text, marker) {
			return warn(id, "License text found but no explicit SPDX identifier",
				"Optional: add an SPDX identifier line for machine-readable license parsing.")
		}
	}
	return warn(id, "Could not recognize license text format",
		"Verify license file contents and consider adding an SPDX identifier.")
}

func checkSecurityPolicy(_ context.Context, t *Target) CheckResult {
	const id = "security_policy_present"
	if fileExists(t.Path, "SECURITY.md") {
		return pass(id, "SECURITY.md present")
	}
	return warn(id, "SECURITY.md is missing", "Add SECURITY.md describing disclosure/reporting process.")
}

var requiredIgnorePatterns = []string{".env", ".env.*", "!.env.example"}

func checkGitignore(_ context.Context, t *Target) CheckResult {
	const id = "gitignore_basics"
	f, err := os.Open(filepath.Join(t.Path, ".gitignore"))
	if errors.Is(err, os.ErrNotExist) {
		return fail(id, ".gitignore is missing", "Add .gitignore with secret and build artifact patterns.")
	}
	if err != nil {
		return warn(id, fmt.Sprintf("Could not read .gitignore: %v", err), "Check the .gitignore file permissions.")
	}
	defer f.Close()

	present := make(map[string]bool)
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		present[normalizeIgnoreLine(scanner.Text())] = true
	}
	if err := scanner.Err(); err != nil {
		return warn(id, fmt.Sprintf("Could not read .gitignore: %v", err), "Check the .gitignore file permissions.")
	}

	var missing []string
	for _, p := range requiredIgnorePatterns {
		if !present[p] {
			missing = append(missing, p)
		}
	}
	if len(missing) == 0 {
		return pass(id, "Secret-related .gitignore patterns present")
	}
	return warn(id, ".gitignore missing patterns: "+strings.Join(missing, ", "),
		"Add missing env ignore patterns to reduce secret leaks.")
}

// normalizeIgnoreLine maps root-anchored patterns such as "/.env" and
// "!/.env.example" onto their unanchored forms.
func normalizeIgnoreLine(line string) string {
	line = strings.TrimSpace(line)
	if rest, ok := strings.CutPrefix(line, "!/"); ok {
		return "!" + rest
	}
	return strings.TrimPrefix(line, "/")
}
