// Package runner executes resolved check ids against a target and applies
// severity overrides to the results.
package runner

import (
	"context"
	"fmt"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/felixgeelhaar/repo-preflight/internal/checks"
	"github.com/felixgeelhaar/repo-preflight/internal/errors"
	"github.com/felixgeelhaar/repo-preflight/internal/log"
)

// DefaultCheckTimeout bounds a single check, including any external process
// it spawns.
const DefaultCheckTimeout = 2 * time.Minute

// Runner executes checks from a registry. Results always come back in input
// order regardless of how many checks run at once.
type Runner struct {
	registry *checks.Registry
	jobs     int
	timeout  time.Duration
	logger   *log.Logger
}

// New creates a sequential runner with the default per-check timeout.
func New(registry *checks.Registry) *Runner {
	return &Runner{
		registry: registry,
		jobs:     1,
		timeout:  DefaultCheckTimeout,
		logger:   log.DefaultLogger(),
	}
}

// WithJobs sets how many checks may run concurrently. Values below 1 mean 1.
func (r *Runner) WithJobs(jobs int) *Runner {
	if jobs < 1 {
		jobs = 1
	}
	r.jobs = jobs
	return r
}

// WithTimeout sets the per-check deadline. Zero or negative keeps the default.
func (r *Runner) WithTimeout(timeout time.Duration) *Runner {
	if timeout > 0 {
		r.timeout = timeout
	}
	return r
}

// WithLogger sets the logger used for per-check records.
func (r *Runner) WithLogger(logger *log.Logger) *Runner {
	r.logger = logger
	return r
}

// Dedupe removes repeated ids, keeping the first occurrence.
func Dedupe(ids []string) []string {
	seen := make(map[string]bool, len(ids))
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		if seen[id] {
			continue
		}
		seen[id] = true
		out = append(out, id)
	}
	return out
}

// Run executes ids against target and returns one result per distinct id in
// input order. Unknown ids are rejected before any check runs.
func (r *Runner) Run(ctx context.Context, target *checks.Target, ids []string, overrides map[string]checks.Status) ([]checks.CheckResult, error) {
	ids = Dedupe(ids)
	if unknown := r.registry.Unknown(ids); len(unknown) > 0 {
		return nil, errors.NewUnknownChecksError("check list", unknown)
	}

	list := make([]checks.Check, len(ids))
	for i, id := range ids {
		list[i], _ = r.registry.Lookup(id)
	}

	results := make([]checks.CheckResult, len(list))

	if r.jobs <= 1 {
		for i, c := range list {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
			results[i] = r.runOne(ctx, target, c, overrides)
		}
		return results, nil
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(r.jobs)
	for i, c := range list {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			results[i] = r.runOne(gctx, target, c, overrides)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return results, nil
}

func (r *Runner) runOne(ctx context.Context, target *checks.Target, c checks.Check, overrides map[string]checks.Status) checks.CheckResult {
	checkCtx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	start := time.Now()
	res := c.Run(checkCtx, target)
	elapsed := time.Since(start)

	if checkCtx.Err() == context.DeadlineExceeded && ctx.Err() == nil {
		r.logger.WarnContext(ctx, "check timed out",
			"check", c.ID,
			"timeout", r.timeout.String(),
		)
		res = checks.CheckResult{
			ID:      c.ID,
			Status:  checks.StatusWarn,
			Message: fmt.Sprintf("Check did not finish within %s", r.timeout),
			Fix:     "Re-run with a larger --check-timeout, or lower history_object_limit for very large repositories.",
		}
	}
	res.ID = c.ID

	raw := res.Status
	if status, ok := overrides[c.ID]; ok {
		res = checks.ApplyOverride(res, status)
	}

	r.logger.DebugContext(ctx, "check completed",
		"check", c.ID,
		"status", string(res.Status),
		"raw_status", string(raw),
		"duration", elapsed.Round(time.Millisecond).String(),
	)
	return res
}
