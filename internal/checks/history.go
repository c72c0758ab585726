package checks

import (
	"context"
	"fmt"

	"github.com/felixgeelhaar/repo-preflight/internal/vcs"
)

// largeBlobs sizes objects in one batch and keeps the blobs over limit bytes.
func largeBlobs(ctx context.Context, git vcs.Client, objects []vcs.Object, limit int64) ([]sizedPath, error) {
	ids := make([]string, len(objects))
	for i, o := range objects {
		ids[i] = o.ID
	}
	infos, err := git.ObjectInfo(ctx, ids)
	if err != nil {
		return nil, err
	}

	var large []sizedPath
	for _, o := range objects {
		info, ok := infos[o.ID]
		if !ok || info.Type != "blob" || info.Size <= limit {
			continue
		}
		large = append(large, sizedPath{Path: displayPath(o.Path, o.ID), Size: info.Size})
	}
	return large, nil
}

func checkHistoryLargeBlobs(ctx context.Context, t *Target) CheckResult {
	const id = "history_large_blobs"
	if !t.Git.IsRepository(ctx) {
		return notRepo(id, "history blob scan", "Initialize git and re-run checks.")
	}

	objectLimit := t.Thresholds.HistoryObjectLimit
	objects, truncated, err := t.Git.HistoryObjects(ctx, objectLimit)
	if err != nil {
		return warn(id, fmt.Sprintf("Could not enumerate history objects: %v", err),
			"Run 'git rev-list --objects --all' manually to inspect repository state.")
	}

	large, err := largeBlobs(ctx, t.Git, objects, kib(t.Thresholds.MaxHistoryBlobKiB))
	if err != nil {
		return warn(id, fmt.Sprintf("Could not read history object sizes: %v", err),
			"Run 'git cat-file --batch-check' manually to inspect repository state.")
	}

	threshold := HumanKiB(t.Thresholds.MaxHistoryBlobKiB)
	note := truncationNote(truncated, objectLimit)
	if len(large) == 0 {
		return pass(id, fmt.Sprintf("No history blobs over %s (%d objects scanned)%s", threshold, len(objects), note))
	}
	return warn(id, fmt.Sprintf("History blobs over %s (%d): %s%s", threshold, len(large), formatSized(large), note),
		"Purge large blobs with git filter-repo (then force-push) or move them to Git LFS.")
}
