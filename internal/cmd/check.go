package cmd

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/felixgeelhaar/repo-preflight/internal/checks"
	"github.com/felixgeelhaar/repo-preflight/internal/errors"
	"github.com/felixgeelhaar/repo-preflight/internal/exitcode"
	"github.com/felixgeelhaar/repo-preflight/internal/log"
	"github.com/felixgeelhaar/repo-preflight/internal/report"
	"github.com/felixgeelhaar/repo-preflight/internal/runner"
	"github.com/felixgeelhaar/repo-preflight/internal/vcs"
)

type checkOptions struct {
	target targetFlags
	policy policyFlags

	json    bool
	compact bool
	sarif   bool

	jobs         int
	checkTimeout time.Duration
}

func (o *checkOptions) format() report.Format {
	switch {
	case o.json:
		return report.FormatJSON
	case o.compact:
		return report.FormatCompact
	case o.sarif:
		return report.FormatSARIF
	default:
		return report.FormatHuman
	}
}

func newCheckCommand() *cobra.Command {
	o := &checkOptions{}

	cmd := &cobra.Command{
		Use:   "check",
		Short: "Run preflight checks against a repository",
		Long: `Run the resolved set of checks against a local repository and report
pass, warn or fail for each.

The policy is resolved from, in increasing precedence: the profile, an
optional rule pack, the config file and command-line flags.

Examples:
  # Run the full profile against the current directory
  repo-preflight check

  # Gate a pull request in CI
  repo-preflight check --profile ci --diff-mode pr --sarif > preflight.sarif

  # Quick local pass with the open-source library rules
  repo-preflight check --profile quick --rule-pack oss-library --compact
`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runCheck(cmd, o)
		},
	}

	o.target.register(cmd)
	o.policy.register(cmd)

	fs := cmd.Flags()
	fs.BoolVar(&o.json, "json", false, "Emit machine-readable JSON")
	fs.BoolVar(&o.compact, "compact", false, "Emit a compact summary")
	fs.BoolVar(&o.sarif, "sarif", false, "Emit SARIF 2.1.0")
	cmd.MarkFlagsMutuallyExclusive("json", "compact", "sarif")

	fs.IntVar(&o.jobs, "jobs", 1, "Number of checks to run in parallel")
	fs.DurationVar(&o.checkTimeout, "check-timeout", runner.DefaultCheckTimeout, "Time limit for a single check")

	return cmd
}

func runCheck(cmd *cobra.Command, o *checkOptions) error {
	if o.jobs < 1 {
		return errors.New(errors.ErrCodeFlagInvalid, fmt.Sprintf("--jobs must be at least 1, got %d", o.jobs))
	}
	if o.checkTimeout <= 0 {
		return errors.New(errors.ErrCodeFlagInvalid, fmt.Sprintf("--check-timeout must be positive, got %s", o.checkTimeout))
	}

	dir, err := o.target.dir()
	if err != nil {
		return err
	}
	pol, err := resolvePolicy(cmd, dir, &o.target, &o.policy)
	if err != nil {
		return err
	}

	logger := log.DefaultLogger().With("path", dir)
	proc := vcs.NewExecRunner(o.checkTimeout)
	target := pol.Target(dir, vcs.NewGit(dir, proc), vcs.NewGitleaks(proc))

	r := runner.New(checks.Default()).
		WithJobs(o.jobs).
		WithTimeout(o.checkTimeout).
		WithLogger(logger)

	start := time.Now()
	results, err := r.Run(cmd.Context(), target, pol.CheckIDs, pol.SeverityOverrides)
	if err != nil {
		if errors.HasCode(err, errors.ErrCodeCheckUnknown) {
			return err
		}
		return fmt.Errorf("run checks: %w", err)
	}

	rep := report.New(dir, pol, results)
	logger.Info("preflight finished",
		"verdict", rep.Verdict(),
		"checks", rep.Summary.Total(),
		"fail", rep.Summary.Fail,
		"warn", rep.Summary.Warn,
		"pass", rep.Summary.Pass,
		"duration", time.Since(start).Round(time.Millisecond).String(),
	)

	if err := report.Write(cmd.OutOrStdout(), rep, o.format(), report.Options{Color: colorEnabled(cmd)}); err != nil {
		return errors.Wrap(errors.ErrCodeFileWriteFailed, "failed to write report", err)
	}
	return exitcode.WithCode(rep.ExitCode)
}
