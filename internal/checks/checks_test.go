package checks

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/felixgeelhaar/repo-preflight/internal/vcs"
)

func writeFile(t *testing.T, dir, name, content string) {
	t.Helper()
	p := filepath.Join(dir, filepath.FromSlash(name))
	require.NoError(t, os.MkdirAll(filepath.Dir(p), 0o755))
	require.NoError(t, os.WriteFile(p, []byte(content), 0o644))
}

func newTarget(t *testing.T, git *fakeGit) *Target {
	t.Helper()
	return &Target{
		Path:       t.TempDir(),
		Git:        git,
		Thresholds: DefaultThresholds(),
	}
}

func TestEveryCheckReturnsItsOwnID(t *testing.T) {
	targets := map[string]*Target{
		"non-repo": newTarget(t, &fakeGit{}),
		"repo":     newTarget(t, &fakeGit{repo: true, clean: true, branch: "main"}),
	}
	for name, target := range targets {
		target.DiffBase = "origin/main"
		for _, c := range Default().Checks() {
			t.Run(name+"/"+c.ID, func(t *testing.T) {
				res := run(target, c.ID)
				assert.Equal(t, c.ID, res.ID)
				assert.True(t, res.Status.Valid())
				assert.NotEmpty(t, res.Message)
			})
		}
	}
}

func TestNonRepositoryDegradesToWarn(t *testing.T) {
	target := newTarget(t, &fakeGit{repo: false})
	target.DiffBase = "origin/main"

	assert.Equal(t, StatusFail, run(target, "git_repository").Status)

	for _, id := range []string{
		"remote_origin", "clean_worktree", "default_branch_style",
		"tracked_env_files", "tracked_keylike_files", "tracked_large_files",
		"history_large_blobs", "diff_changed_files", "diff_patch_size",
		"diff_large_files", "diff_object_sizes", "gitleaks_scan",
	} {
		t.Run(id, func(t *testing.T) {
			res := run(target, id)
			assert.Equal(t, StatusWarn, res.Status)
			assert.True(t, strings.HasPrefix(res.Message, "Not a git repository"), res.Message)
			assert.NotEmpty(t, res.Fix)
		})
	}
}

func TestRemoteOrigin(t *testing.T) {
	tests := []struct {
		name    string
		git     *fakeGit
		status  Status
		message string
	}{
		{"configured", &fakeGit{repo: true, remote: "https://example.com/r.git"}, StatusPass, "origin remote configured (https://example.com/r.git)"},
		{"missing", &fakeGit{repo: true, remoteErr: fmt.Errorf("%w: origin", vcs.ErrNoRemote)}, StatusWarn, "No 'origin' remote configured"},
		{"git failure", &fakeGit{repo: true, remoteErr: errors.New("boom")}, StatusWarn, "Could not read 'origin' remote: boom"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := run(newTarget(t, tt.git), "remote_origin")
			assert.Equal(t, tt.status, res.Status)
			assert.Equal(t, tt.message, res.Message)
		})
	}
}

func TestCleanWorktreeAndBranch(t *testing.T) {
	t.Run("dirty", func(t *testing.T) {
		res := run(newTarget(t, &fakeGit{repo: true, clean: false}), "clean_worktree")
		assert.Equal(t, StatusWarn, res.Status)
		assert.Equal(t, "Working tree has uncommitted changes", res.Message)
	})

	t.Run("status failure", func(t *testing.T) {
		res := run(newTarget(t, &fakeGit{repo: true, cleanErr: errors.New("x")}), "clean_worktree")
		assert.Equal(t, StatusWarn, res.Status)
		assert.Equal(t, "Could not determine git worktree state", res.Message)
	})

	for branch, status := range map[string]Status{
		"main":      StatusPass,
		"master":    StatusPass,
		"feature/x": StatusWarn,
		"":          StatusWarn,
	} {
		t.Run("branch "+branch, func(t *testing.T) {
			res := run(newTarget(t, &fakeGit{repo: true, branch: branch}), "default_branch_style")
			assert.Equal(t, status, res.Status)
		})
	}
}

func TestPresenceChecks(t *testing.T) {
	target := newTarget(t, &fakeGit{repo: true})

	assert.Equal(t, StatusFail, run(target, "readme_present").Status)
	assert.Equal(t, StatusWarn, run(target, "license_present").Status)
	assert.Equal(t, StatusWarn, run(target, "security_policy_present").Status)
	assert.Equal(t, StatusFail, run(target, "gitignore_basics").Status)

	lic := run(target, "license_identifier")
	assert.Equal(t, StatusWarn, lic.Status)
	assert.Contains(t, lic.Message, "skipped license identifier check")

	writeFile(t, target.Path, "README.md", "# demo\n")
	writeFile(t, target.Path, "LICENSE.md", "MIT License\n")
	writeFile(t, target.Path, "SECURITY.md", "Report issues privately.\n")

	assert.Equal(t, StatusPass, run(target, "readme_present").Status)
	assert.Equal(t, StatusPass, run(target, "license_present").Status)
	assert.Equal(t, StatusPass, run(target, "security_policy_present").Status)
}

func TestLicenseIdentifier(t *testing.T) {
	tests := []struct {
		name    string
		content string
		status  Status
		message string
	}{
		{"spdx", "SPDX-License-Identifier: MIT\n\nMIT License\n", StatusPass, "SPDX identifier found in license file"},
		{"spdx lowercase", "spdx-license-identifier: Apache-2.0\n", StatusPass, "SPDX identifier found in license file"},
		{"known text", "Apache License\nVersion 2.0, January 2004\n", StatusWarn, "License text found but no explicit SPDX identifier"},
		{"unrecognized", "All rights reserved.\n", StatusWarn, "Could not recognize license text format"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			target := newTarget(t, &fakeGit{repo: true})
			writeFile(t, target.Path, "LICENSE", tt.content)

			res := run(target, "license_identifier")
			assert.Equal(t, tt.status, res.Status)
			assert.Equal(t, tt.message, res.Message)
		})
	}
}

func TestGitignoreBasics(t *testing.T) {
	tests := []struct {
		name    string
		content string
		status  Status
		message string
	}{
		{"all patterns", "node_modules/\n.env\n.env.*\n!.env.example\n", StatusPass, "Secret-related .gitignore patterns present"},
		{"whitespace tolerated", "  .env  \n.env.*\r\n!.env.example\n", StatusPass, "Secret-related .gitignore patterns present"},
		{"missing negation", ".env\n.env.*\n", StatusWarn, ".gitignore missing patterns: !.env.example"},
		{"root-anchored patterns", "/.env\n/.env.*\n!/.env.example\n", StatusPass, "Secret-related .gitignore patterns present"},
		{"mixed anchoring", ".env\n/.env.*\n!.env.example\n", StatusPass, "Secret-related .gitignore patterns present"},
		{"substring does not count", ".envrc\n", StatusWarn, ".gitignore missing patterns: .env, .env.*, !.env.example"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			target := newTarget(t, &fakeGit{repo: true})
			writeFile(t, target.Path, ".gitignore", tt.content)

			res := run(target, "gitignore_basics")
			assert.Equal(t, tt.status, res.Status)
			assert.Equal(t, tt.message, res.Message)
		})
	}
}

func TestEnvAndKeylikeMatching(t *testing.T) {
	for p, want := range map[string]bool{
		".env":                 true,
		"config/.env":          true,
		".env.production":      true,
		"svc/.env.local":       true,
		".env.example":         false,
		"deploy/.env.example":  false,
		".envrc":               false,
		"docs/env.md":          false,
		"environment/.gitkeep": false,
	} {
		assert.Equal(t, want, IsEnvFile(p), p)
	}

	for p, want := range map[string]bool{
		"certs/server.pem":      true,
		"tls.KEY":               true,
		"store.p12":             true,
		"store.pfx":             true,
		"vault.kdbx":            true,
		".ssh/id_rsa":           true,
		"id_ed25519":            true,
		"gcp/credentials.json":  true,
		"id_rsa.pub":            false,
		"keys.go":               false,
		"credentials.json.tmpl": false,
	} {
		assert.Equal(t, want, IsKeylikeFile(p), p)
	}
}

func TestTrackedEnvFiles(t *testing.T) {
	git := &fakeGit{repo: true, tracked: []string{".env.example", "README.md"}}
	target := newTarget(t, git)
	assert.Equal(t, StatusPass, run(target, "tracked_env_files").Status)

	git.tracked = append(git.tracked, "svc/.env", ".env.prod")
	res := run(target, "tracked_env_files")
	assert.Equal(t, StatusFail, res.Status)
	assert.Equal(t, "Tracked env files detected: .env.prod, svc/.env", res.Message)
	assert.Equal(t, ".env.prod", res.Location)

	git.trackedErr = errors.New("index locked")
	res = run(target, "tracked_env_files")
	assert.Equal(t, StatusWarn, res.Status)
	assert.Contains(t, res.Message, "index locked")
}

func TestTrackedKeylikeFilesTruncatesList(t *testing.T) {
	var tracked []string
	for i := 0; i < 8; i++ {
		tracked = append(tracked, fmt.Sprintf("k%d.pem", i))
	}
	res := run(newTarget(t, &fakeGit{repo: true, tracked: tracked}), "tracked_keylike_files")

	assert.Equal(t, StatusFail, res.Status)
	assert.Equal(t, "Tracked key-like files detected: k0.pem, k1.pem, k2.pem, k3.pem, k4.pem (+3 more)", res.Message)
	assert.Equal(t, "k0.pem", res.Location)
}

func TestTrackedLargeFiles(t *testing.T) {
	git := &fakeGit{repo: true, tracked: []string{"big.bin", "small.txt", "deleted.bin", "link"}}
	target := newTarget(t, git)
	target.Thresholds.MaxTrackedFileKiB = 1

	writeFile(t, target.Path, "big.bin", strings.Repeat("x", 4096))
	writeFile(t, target.Path, "small.txt", "tiny")
	require.NoError(t, os.Symlink(filepath.Join(target.Path, "big.bin"), filepath.Join(target.Path, "link")))

	res := run(target, "tracked_large_files")
	assert.Equal(t, StatusWarn, res.Status)
	assert.Equal(t, "Tracked files over 1.0 KiB (1): big.bin (4.0 KiB)", res.Message)
	assert.Equal(t, "big.bin", res.Location)

	target.Thresholds.MaxTrackedFileKiB = 4
	assert.Equal(t, StatusPass, run(target, "tracked_large_files").Status)
}

func TestHistoryLargeBlobs(t *testing.T) {
	git := &fakeGit{
		repo: true,
		history: []vcs.Object{
			{ID: "c1"},
			{ID: "t1"},
			{ID: "b1", Path: "assets/video.mp4"},
			{ID: "b2", Path: "small.txt"},
			{ID: "b3aaaaaaaaaaaaaaaa"},
		},
		infos: map[string]vcs.ObjectInfo{
			"c1":                 {ID: "c1", Type: "commit", Size: 1 << 30},
			"t1":                 {ID: "t1", Type: "tree", Size: 1 << 30},
			"b1":                 blob("b1", 3<<20),
			"b2":                 blob("b2", 100),
			"b3aaaaaaaaaaaaaaaa": blob("b3aaaaaaaaaaaaaaaa", 2<<20),
		},
	}
	target := newTarget(t, git)
	target.Thresholds.MaxHistoryBlobKiB = 1024
	target.Thresholds.HistoryObjectLimit = 5

	res := run(target, "history_large_blobs")
	assert.Equal(t, 5, git.historyLimit)
	assert.Equal(t, StatusWarn, res.Status)
	assert.Equal(t, "History blobs over 1.0 MiB (2): assets/video.mp4 (3.0 MiB), b3aaaaaaaaaa (2.0 MiB)", res.Message)

	git.historyTruncated = true
	res = run(target, "history_large_blobs")
	assert.Equal(t, StatusWarn, res.Status, "truncation annotates without escalating")
	assert.True(t, strings.HasSuffix(res.Message, "; scan truncated at 5 objects"), res.Message)

	target.Thresholds.MaxHistoryBlobKiB = 4096
	res = run(target, "history_large_blobs")
	assert.Equal(t, StatusPass, res.Status)
	assert.Contains(t, res.Message, "scan truncated at 5 objects")
}

func TestHistoryLargeBlobsDegraded(t *testing.T) {
	git := &fakeGit{repo: true, historyErr: vcs.ErrTimeout}
	res := run(newTarget(t, git), "history_large_blobs")
	assert.Equal(t, StatusWarn, res.Status)
	assert.Contains(t, res.Message, "Could not enumerate history objects")

	git = &fakeGit{repo: true, history: []vcs.Object{{ID: "b1"}}, infoErr: errors.New("cat-file failed")}
	res = run(newTarget(t, git), "history_large_blobs")
	assert.Equal(t, StatusWarn, res.Status)
	assert.Contains(t, res.Message, "cat-file failed")
}

func TestDiffChecksWithoutBasePass(t *testing.T) {
	git := &fakeGit{repo: true, numstat: make([]vcs.FileChange, 1000)}
	target := newTarget(t, git)
	target.Thresholds.MaxDiffFiles = 1
	target.Thresholds.MaxDiffChangedLines = 1

	for _, id := range []string{"diff_changed_files", "diff_patch_size", "diff_large_files", "diff_object_sizes"} {
		res := run(target, id)
		assert.Equal(t, StatusPass, res.Status, id)
		assert.Equal(t, "No diff base configured; skipped", res.Message)
	}
	assert.Empty(t, git.diffCalls)
}

func TestDiffChangedFilesAndPatchSize(t *testing.T) {
	git := &fakeGit{
		repo: true,
		numstat: []vcs.FileChange{
			{Path: "a.go", Added: 30, Deleted: 10},
			{Path: "b.go", Added: 5},
			{Path: "logo.png", Binary: true},
		},
	}
	target := newTarget(t, git)
	target.DiffBase = "origin/main"

	res := run(target, "diff_changed_files")
	assert.Equal(t, StatusPass, res.Status)
	assert.Equal(t, "Diff origin/main...HEAD changes 3 files (limit 200)", res.Message)
	assert.Equal(t, []string{"origin/main...HEAD"}, git.diffCalls)

	target.Thresholds.MaxDiffFiles = 2
	assert.Equal(t, StatusWarn, run(target, "diff_changed_files").Status)

	target.DiffTarget = "feature"
	target.Thresholds.MaxDiffChangedLines = 45
	res = run(target, "diff_patch_size")
	assert.Equal(t, StatusPass, res.Status)
	assert.Equal(t, "Diff origin/main...feature changes 45 lines (limit 45)", res.Message)

	target.Thresholds.MaxDiffChangedLines = 44
	assert.Equal(t, StatusWarn, run(target, "diff_patch_size").Status)
}

func TestDiffUnknownRef(t *testing.T) {
	git := &fakeGit{
		repo:       true,
		numstatErr: errors.New("unknown revision"),
		blobsErr:   errors.New("unknown revision"),
		rangeErr:   errors.New("unknown revision"),
	}
	target := newTarget(t, git)
	target.DiffBase = "origin/nope"

	for _, id := range []string{"diff_changed_files", "diff_patch_size", "diff_large_files", "diff_object_sizes"} {
		res := run(target, id)
		assert.Equal(t, StatusWarn, res.Status, id)
		assert.Contains(t, res.Message, "unknown revision")
		assert.Contains(t, res.Fix, "git fetch")
	}
}

func TestDiffLargeFiles(t *testing.T) {
	git := &fakeGit{
		repo:  true,
		blobs: []vcs.Object{{ID: "b1", Path: "model.bin"}, {ID: "b2", Path: "main.go"}},
		infos: map[string]vcs.ObjectInfo{"b1": blob("b1", 8<<20), "b2": blob("b2", 2048)},
	}
	target := newTarget(t, git)
	target.DiffBase = "origin/main"

	res := run(target, "diff_large_files")
	assert.Equal(t, StatusWarn, res.Status)
	assert.Equal(t, "Changed files over 5.0 MiB (1): model.bin (8.0 MiB)", res.Message)
}

func TestDiffObjectSizes(t *testing.T) {
	git := &fakeGit{
		repo:           true,
		rangeObjects:   []vcs.Object{{ID: "c1"}, {ID: "b1", Path: "dump.sql"}},
		rangeTruncated: true,
		infos:          map[string]vcs.ObjectInfo{"c1": {ID: "c1", Type: "commit", Size: 300}, "b1": blob("b1", 6<<20)},
	}
	target := newTarget(t, git)
	target.DiffBase = "origin/main"
	target.Thresholds.HistoryObjectLimit = 2

	res := run(target, "diff_object_sizes")
	assert.Equal(t, StatusWarn, res.Status)
	assert.Equal(t, "Objects over 5.0 MiB introduced in origin/main..HEAD (1): dump.sql (6.0 MiB); scan truncated at 2 objects", res.Message)
	assert.Equal(t, []string{"origin/main..HEAD"}, git.diffCalls)
}

func TestGitleaksScan(t *testing.T) {
	tests := []struct {
		name    string
		scanner vcs.SecretScanner
		status  Status
		message string
	}{
		{"clean", fakeScanner{code: 0}, StatusPass, "gitleaks scan passed"},
		{"leaks", fakeScanner{code: 1}, StatusFail, "gitleaks reported potential secret leaks"},
		{"crash", fakeScanner{code: 126}, StatusWarn, "gitleaks did not complete successfully"},
		{"missing", fakeScanner{err: fmt.Errorf("gitleaks: %w", vcs.ErrUnavailable)}, StatusWarn, "gitleaks is not installed"},
		{"timeout", fakeScanner{err: fmt.Errorf("gitleaks: %w", vcs.ErrTimeout)}, StatusWarn, "gitleaks timed out"},
		{"no scanner", nil, StatusWarn, "gitleaks is not installed"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			target := newTarget(t, &fakeGit{repo: true})
			target.Scanner = tt.scanner

			res := run(target, "gitleaks_scan")
			assert.Equal(t, tt.status, res.Status)
			assert.Equal(t, tt.message, res.Message)
		})
	}
}
