package vcs

import (
	"context"
	"fmt"
)

// SecretScanner runs an external secret scanner over a repository and
// reports its exit code.
type SecretScanner interface {
	// Scan returns ErrUnavailable when the scanner is not installed and
	// ErrTimeout when it exceeded its deadline.
	Scan(ctx context.Context, dir string) (int, error)
}

// Gitleaks scans full git history with the gitleaks binary.
type Gitleaks struct {
	runner ProcessRunner
	binary string
}

// NewGitleaks creates a gitleaks scanner using runner.
func NewGitleaks(runner ProcessRunner) *Gitleaks {
	return &Gitleaks{runner: runner, binary: "gitleaks"}
}

// Scan implements SecretScanner.
func (s *Gitleaks) Scan(ctx context.Context, dir string) (int, error) {
	res, err := s.runner.Run(ctx, Command{
		Name: s.binary,
		Args: []string{"git", "--redact", "--no-banner"},
		Dir:  dir,
	})
	if err != nil {
		return -1, fmt.Errorf("gitleaks: %w", err)
	}
	return res.ExitCode, nil
}
