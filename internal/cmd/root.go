// Package cmd implements the repo-preflight command tree.
package cmd

import (
	"context"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/felixgeelhaar/repo-preflight/internal/exitcode"
	"github.com/felixgeelhaar/repo-preflight/internal/log"
)

// NewRootCommand builds a fresh command tree. Each call returns independent
// flag state, so tests can execute commands side by side.
func NewRootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:   "repo-preflight",
		Short: "Pre-release hygiene checks for git repositories",
		Long: `repo-preflight audits a local git repository before it is published or merged.

It checks for required docs, tracked secrets and key material, oversized files
in the working tree and history, oversized branch diffs, and optionally runs
gitleaks. Results are reported per check as pass, warn or fail together with
an aggregate exit code:

  0  every check passed
  1  warnings only (non-strict mode)
  2  failures, warnings under --strict, or a usage/configuration error`,
		SilenceUsage:      true,
		SilenceErrors:     true,
		PersistentPreRunE: setupLogging,
	}

	root.PersistentFlags().String("log-level", "warn", "Log level: debug, info, warn, error")
	root.PersistentFlags().String("log-format", "text", "Log format: text or json")

	root.AddCommand(
		newCheckCommand(),
		newListChecksCommand(),
		newListRulePacksCommand(),
		newPolicyDocCommand(),
		newPolicyTemplateCommand(),
		newVersionCommand(),
	)
	return root
}

// ExecuteContext runs the root command with ctx, which is cancelled on
// interrupt by the caller.
func ExecuteContext(ctx context.Context) error {
	return NewRootCommand().ExecuteContext(ctx)
}

// HandleError reports err on stderr and returns the process exit code for
// it. Errors that only carry an exit code print nothing. Error codes,
// suggestions and causes are logged at debug level.
func HandleError(stderr io.Writer, err error) int {
	if err == nil {
		return exitcode.Success
	}

	code := exitcode.DetermineExitCode(err)
	log.DefaultLogger().WithError(err).Debug("command failed",
		"exit_code", code,
		"exit_reason", exitcode.GetExitCodeDescription(code),
	)

	if !exitcode.IsSilent(err) {
		fmt.Fprintf(stderr, "Error: %v\n", err)
	}
	return code
}
