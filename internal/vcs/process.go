// Package vcs is the boundary to external tools: git and the gitleaks secret
// scanner. Everything above this package sees parsed, structured results and
// never spawns processes itself.
package vcs

import (
	"bufio"
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"strings"
	"time"
)

//go:generate mockgen -source=process.go -destination=mock_process_test.go -package=vcs

// DefaultTimeout bounds a single external invocation.
const DefaultTimeout = 2 * time.Minute

var (
	// ErrUnavailable is returned when the requested binary is not on PATH.
	ErrUnavailable = errors.New("tool unavailable")

	// ErrTimeout is returned when an invocation exceeds its deadline.
	ErrTimeout = errors.New("tool timed out")
)

// Command describes one external process invocation.
type Command struct {
	Name  string
	Args  []string
	Dir   string
	Stdin []byte
	Env   []string
}

func (c Command) String() string {
	return strings.TrimSpace(c.Name + " " + strings.Join(c.Args, " "))
}

// Result is the captured outcome of a completed process. A non-zero exit
// code is reported here, not as an error.
type Result struct {
	ExitCode int
	Stdout   []byte
	Stderr   []byte
}

// ExitError reports a streamed command that exited unsuccessfully.
type ExitError struct {
	Command string
	Code    int
	Stderr  string
}

func (e *ExitError) Error() string {
	msg := fmt.Sprintf("%s exited with status %d", e.Command, e.Code)
	if e.Stderr != "" {
		msg += ": " + e.Stderr
	}
	return msg
}

// ProcessRunner executes external commands.
type ProcessRunner interface {
	// Run executes the command to completion and captures its output.
	Run(ctx context.Context, cmd Command) (Result, error)

	// RunLines streams stdout line by line and stops the process once limit
	// lines were read (limit <= 0 reads everything). truncated reports
	// whether output remained when reading stopped.
	RunLines(ctx context.Context, cmd Command, limit int) (lines []string, truncated bool, err error)
}

// ExecRunner runs commands with os/exec.
type ExecRunner struct {
	// Timeout applies to every invocation; zero means DefaultTimeout.
	Timeout time.Duration
}

// NewExecRunner creates an ExecRunner with the given per-invocation timeout.
func NewExecRunner(timeout time.Duration) *ExecRunner {
	return &ExecRunner{Timeout: timeout}
}

func (r *ExecRunner) timeout() time.Duration {
	if r.Timeout <= 0 {
		return DefaultTimeout
	}
	return r.Timeout
}

func (r *ExecRunner) prepare(ctx context.Context, c Command) (*exec.Cmd, error) {
	path, err := exec.LookPath(c.Name)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", ErrUnavailable, c.Name)
	}

	cmd := exec.CommandContext(ctx, path, c.Args...)
	cmd.Dir = c.Dir
	cmd.Env = append(os.Environ(), "GIT_TERMINAL_PROMPT=0", "LC_ALL=C")
	cmd.Env = append(cmd.Env, c.Env...)
	if c.Stdin != nil {
		cmd.Stdin = bytes.NewReader(c.Stdin)
	}
	return cmd, nil
}

// Run implements ProcessRunner.
func (r *ExecRunner) Run(ctx context.Context, c Command) (Result, error) {
	ctx, cancel := context.WithTimeout(ctx, r.timeout())
	defer cancel()

	cmd, err := r.prepare(ctx, c)
	if err != nil {
		return Result{}, err
	}

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	runErr := cmd.Run()
	res := Result{Stdout: stdout.Bytes(), Stderr: stderr.Bytes()}

	if ctxErr := ctx.Err(); ctxErr != nil {
		if errors.Is(ctxErr, context.DeadlineExceeded) {
			return res, fmt.Errorf("%w: %s", ErrTimeout, c)
		}
		return res, ctxErr
	}

	var exitErr *exec.ExitError
	if errors.As(runErr, &exitErr) {
		res.ExitCode = exitErr.ExitCode()
		return res, nil
	}
	if runErr != nil {
		return res, fmt.Errorf("run %s: %w", c, runErr)
	}

	return res, nil
}

// RunLines implements ProcessRunner.
func (r *ExecRunner) RunLines(ctx context.Context, c Command, limit int) ([]string, bool, error) {
	timeoutCtx, cancelTimeout := context.WithTimeout(ctx, r.timeout())
	defer cancelTimeout()
	procCtx, stop := context.WithCancel(timeoutCtx)
	defer stop()

	cmd, err := r.prepare(procCtx, c)
	if err != nil {
		return nil, false, err
	}

	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return nil, false, fmt.Errorf("stdout pipe for %s: %w", c, err)
	}
	var stderr bytes.Buffer
	cmd.Stderr = &stderr

	if err := cmd.Start(); err != nil {
		return nil, false, fmt.Errorf("start %s: %w", c, err)
	}

	var lines []string
	truncated := false
	scanner := bufio.NewScanner(stdout)
	scanner.Buffer(make([]byte, 64*1024), 4*1024*1024)
	for scanner.Scan() {
		if limit > 0 && len(lines) >= limit {
			truncated = true
			break
		}
		lines = append(lines, scanner.Text())
	}
	scanErr := scanner.Err()

	if truncated {
		stop()
	}
	waitErr := cmd.Wait()

	if errors.Is(timeoutCtx.Err(), context.DeadlineExceeded) {
		return lines, truncated, fmt.Errorf("%w: %s", ErrTimeout, c)
	}
	if truncated {
		return lines, true, nil
	}
	if ctxErr := ctx.Err(); ctxErr != nil {
		return nil, false, ctxErr
	}
	if scanErr != nil {
		return nil, false, fmt.Errorf("read %s output: %w", c, scanErr)
	}

	var exitErr *exec.ExitError
	if errors.As(waitErr, &exitErr) {
		return nil, false, &ExitError{
			Command: c.String(),
			Code:    exitErr.ExitCode(),
			Stderr:  strings.TrimSpace(stderr.String()),
		}
	}
	if waitErr != nil {
		return nil, false, fmt.Errorf("wait %s: %w", c, waitErr)
	}

	return lines, false, nil
}
