package checks

import (
	"context"
	"fmt"
	"os"
	"path"
	"path/filepath"
	"slices"
	"strings"
)

// IsEnvFile reports whether a tracked path looks like a real env file.
// .env.example is the allow-listed placeholder.
func IsEnvFile(p string) bool {
	base := path.Base(p)
	if base == ".env" {
		return true
	}
	return strings.HasPrefix(base, ".env.") && base != ".env.example"
}

var (
	keylikeSuffixes = []string{".pem", ".key", ".p12", ".pfx", ".kdbx"}
	keylikeNames    = map[string]bool{"id_rsa": true, "id_ed25519": true, "credentials.json": true}
)

// IsKeylikeFile reports whether a tracked path looks like a private key or
// credential store.
func IsKeylikeFile(p string) bool {
	base := path.Base(p)
	if keylikeNames[base] {
		return true
	}
	lower := strings.ToLower(base)
	for _, suffix := range keylikeSuffixes {
		if strings.HasSuffix(lower, suffix) {
			return true
		}
	}
	return false
}

// trackedFiles lists tracked paths or returns the degraded result to report.
func trackedFiles(ctx context.Context, t *Target, id, skipped string) ([]string, *CheckResult) {
	if !t.Git.IsRepository(ctx) {
		r := notRepo(id, skipped, "Initialize git and re-run checks.")
		return nil, &r
	}
	files, err := t.Git.TrackedFiles(ctx)
	if err != nil {
		r := warn(id, fmt.Sprintf("Could not list tracked files: %v", err), "Run 'git ls-files' manually and resolve repository state.")
		return nil, &r
	}
	return files, nil
}

func checkTrackedEnvFiles(ctx context.Context, t *Target) CheckResult {
	const id = "tracked_env_files"
	files, degraded := trackedFiles(ctx, t, id, "tracked .env check")
	if degraded != nil {
		return *degraded
	}

	var found []string
	for _, f := range files {
		if IsEnvFile(f) {
			found = append(found, f)
		}
	}
	if len(found) == 0 {
		return pass(id, "No tracked .env files found")
	}
	res := fail(id, "Tracked env files detected: "+formatNames(found),
		"Remove from git history/index and keep only placeholders like .env.example.")
	res.Location = slices.Min(found)
	return res
}

func checkTrackedKeylikeFiles(ctx context.Context, t *Target) CheckResult {
	const id = "tracked_keylike_files"
	files, degraded := trackedFiles(ctx, t, id, "tracked key-file check")
	if degraded != nil {
		return *degraded
	}

	var found []string
	for _, f := range files {
		if IsKeylikeFile(f) {
			found = append(found, f)
		}
	}
	if len(found) == 0 {
		return pass(id, "No tracked key-like files found")
	}
	res := fail(id, "Tracked key-like files detected: "+formatNames(found),
		"Remove keys/credentials from repo and rotate exposed secrets.")
	res.Location = slices.Min(found)
	return res
}

func checkTrackedLargeFiles(ctx context.Context, t *Target) CheckResult {
	const id = "tracked_large_files"
	files, degraded := trackedFiles(ctx, t, id, "tracked file size check")
	if degraded != nil {
		return *degraded
	}

	limit := kib(t.Thresholds.MaxTrackedFileKiB)
	var large []sizedPath
	for _, f := range files {
		info, err := os.Lstat(filepath.Join(t.Path, filepath.FromSlash(f)))
		if err != nil || !info.Mode().IsRegular() {
			continue
		}
		if info.Size() > limit {
			large = append(large, sizedPath{Path: f, Size: info.Size()})
		}
	}

	threshold := HumanKiB(t.Thresholds.MaxTrackedFileKiB)
	if len(large) == 0 {
		return pass(id, fmt.Sprintf("No tracked files over %s", threshold))
	}
	res := warn(id, fmt.Sprintf("Tracked files over %s (%d): %s", threshold, len(large), formatSized(large)),
		"Move large assets to Git LFS or an artifact store, or raise max_tracked_file_kib.")
	res.Location = sortSized(large)[0].Path
	return res
}
