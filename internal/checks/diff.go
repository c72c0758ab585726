package checks

import (
	"context"
	"fmt"
)

const diffFix = "Fetch the base ref (e.g. git fetch origin <branch>) or point --diff-base at an existing ref."

// diffRefs returns the base and target refs, or a result to report when the
// diff cannot or need not be taken.
func diffRefs(ctx context.Context, t *Target, id string) (string, string, *CheckResult) {
	if t.DiffBase == "" {
		r := pass(id, "No diff base configured; skipped")
		return "", "", &r
	}
	if !t.Git.IsRepository(ctx) {
		r := notRepo(id, "diff check", "Initialize git and re-run checks.")
		return "", "", &r
	}
	target := t.DiffTarget
	if target == "" {
		target = "HEAD"
	}
	return t.DiffBase, target, nil
}

func diffFailure(id, base, target string, err error) CheckResult {
	return warn(id, fmt.Sprintf("Could not diff %s...%s: %v", base, target, err), diffFix)
}

func checkDiffChangedFiles(ctx context.Context, t *Target) CheckResult {
	const id = "diff_changed_files"
	base, target, early := diffRefs(ctx, t, id)
	if early != nil {
		return *early
	}

	changes, err := t.Git.DiffNumstat(ctx, base, target)
	if err != nil {
		return diffFailure(id, base, target, err)
	}

	limit := t.Thresholds.MaxDiffFiles
	msg := fmt.Sprintf("Diff %s...%s changes %d files (limit %d)", base, target, len(changes), limit)
	if len(changes) > limit {
		return warn(id, msg, "Split the change into smaller pull requests, or raise max_diff_files.")
	}
	return pass(id, msg)
}

func checkDiffPatchSize(ctx context.Context, t *Target) CheckResult {
	const id = "diff_patch_size"
	base, target, early := diffRefs(ctx, t, id)
	if early != nil {
		return *early
	}

	changes, err := t.Git.DiffNumstat(ctx, base, target)
	if err != nil {
		return diffFailure(id, base, target, err)
	}

	lines := 0
	for _, c := range changes {
		lines += c.Lines()
	}

	limit := t.Thresholds.MaxDiffChangedLines
	msg := fmt.Sprintf("Diff %s...%s changes %d lines (limit %d)", base, target, lines, limit)
	if lines > limit {
		return warn(id, msg, "Split the change into smaller pull requests, or raise max_diff_changed_lines.")
	}
	return pass(id, msg)
}

func checkDiffLargeFiles(ctx context.Context, t *Target) CheckResult {
	const id = "diff_large_files"
	base, target, early := diffRefs(ctx, t, id)
	if early != nil {
		return *early
	}

	blobs, err := t.Git.DiffBlobs(ctx, base, target)
	if err != nil {
		return diffFailure(id, base, target, err)
	}
	large, err := largeBlobs(ctx, t.Git, blobs, kib(t.Thresholds.MaxTrackedFileKiB))
	if err != nil {
		return warn(id, fmt.Sprintf("Could not read object sizes: %v", err), diffFix)
	}

	threshold := HumanKiB(t.Thresholds.MaxTrackedFileKiB)
	if len(large) == 0 {
		return pass(id, fmt.Sprintf("No files over %s changed in %s...%s", threshold, base, target))
	}
	return warn(id, fmt.Sprintf("Changed files over %s (%d): %s", threshold, len(large), formatSized(large)),
		"Move large assets to Git LFS or an artifact store before merging.")
}

func checkDiffObjectSizes(ctx context.Context, t *Target) CheckResult {
	const id = "diff_object_sizes"
	base, target, early := diffRefs(ctx, t, id)
	if early != nil {
		return *early
	}

	objectLimit := t.Thresholds.HistoryObjectLimit
	objects, truncated, err := t.Git.RangeObjects(ctx, base, target, objectLimit)
	if err != nil {
		return diffFailure(id, base, target, err)
	}
	large, err := largeBlobs(ctx, t.Git, objects, kib(t.Thresholds.MaxDiffObjectKiB))
	if err != nil {
		return warn(id, fmt.Sprintf("Could not read object sizes: %v", err), diffFix)
	}

	threshold := HumanKiB(t.Thresholds.MaxDiffObjectKiB)
	note := truncationNote(truncated, objectLimit)
	if len(large) == 0 {
		return pass(id, fmt.Sprintf("No objects over %s introduced in %s..%s%s", threshold, base, target, note))
	}
	return warn(id, fmt.Sprintf("Objects over %s introduced in %s..%s (%d): %s%s", threshold, base, target, len(large), formatSized(large), note),
		"Squash away commits that add large blobs, or move the files to Git LFS.")
}
