package exitcode

import (
	"errors"
	"fmt"
	"os"
)

// Exit codes for consistent error handling across the CLI
const (
	// Success indicates every check passed
	Success = 0

	// Warnings indicates at least one check warned and none failed (non-strict mode)
	Warnings = 1

	// Failures indicates a failed check, or warnings under strict mode
	Failures = 2

	// UsageError indicates invalid usage or configuration; no checks ran
	UsageError = 2

	// Interrupted indicates the run was cancelled by a signal
	Interrupted = 130
)

// CodeError carries an exit code without an error message of its own.
// Commands return it when the report has already been written and only the
// process status remains to be set.
type CodeError struct {
	Code int
}

func (e *CodeError) Error() string {
	return fmt.Sprintf("exit status %d", e.Code)
}

// WithCode returns nil for Success and a *CodeError otherwise.
func WithCode(code int) error {
	if code == Success {
		return nil
	}
	return &CodeError{Code: code}
}

// IsSilent reports whether err only carries an exit code.
func IsSilent(err error) bool {
	var ce *CodeError
	return errors.As(err, &ce)
}

// Exit terminates the program with the given exit code
func Exit(code int) {
	os.Exit(code)
}

// DetermineExitCode maps an error to a process exit code. Any error that is
// not a CodeError is a usage or configuration problem.
func DetermineExitCode(err error) int {
	if err == nil {
		return Success
	}

	var ce *CodeError
	if errors.As(err, &ce) {
		return ce.Code
	}

	return UsageError
}

// GetExitCodeDescription returns a human-readable description of an exit code
func GetExitCodeDescription(code int) string {
	switch code {
	case Success:
		return "All checks passed"
	case Warnings:
		return "Warnings reported"
	case Failures:
		return "Failures reported, or usage/configuration error"
	case Interrupted:
		return "Interrupted"
	default:
		return "Unknown exit code"
	}
}
