package checks

import (
	"context"
	"errors"

	"github.com/felixgeelhaar/repo-preflight/internal/vcs"
)

func checkGitleaks(ctx context.Context, t *Target) CheckResult {
	const id = "gitleaks_scan"
	if !t.Git.IsRepository(ctx) {
		return notRepo(id, "gitleaks scan", "Initialize git and re-run checks.")
	}

	notInstalled := warn(id, "gitleaks is not installed", "Install gitleaks and run: gitleaks git --redact")
	if t.Scanner == nil {
		return notInstalled
	}

	code, err := t.Scanner.Scan(ctx, t.Path)
	switch {
	case errors.Is(err, vcs.ErrUnavailable):
		return notInstalled
	case errors.Is(err, vcs.ErrTimeout):
		return warn(id, "gitleaks timed out", "Run gitleaks manually, or raise --check-timeout for large histories.")
	case err != nil:
		return warn(id, "gitleaks did not complete successfully", "Run gitleaks manually to inspect configuration/runtime issues.")
	}

	switch code {
	case 0:
		return pass(id, "gitleaks scan passed")
	case 1:
		return fail(id, "gitleaks reported potential secret leaks", "Review findings, remove/rotate secrets, then re-run gitleaks.")
	}
	return warn(id, "gitleaks did not complete successfully", "Run gitleaks manually to inspect configuration/runtime issues.")
}
