package cmd

import (
	"fmt"
	"os"
	"slices"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/felixgeelhaar/repo-preflight/internal/errors"
	"github.com/felixgeelhaar/repo-preflight/internal/log"
	"github.com/felixgeelhaar/repo-preflight/internal/version"
)

var (
	logLevels  = []string{"debug", "info", "warn", "error"}
	logFormats = []string{"text", "json"}
)

// CommandContext holds the persistent flags shared by every subcommand.
type CommandContext struct {
	LogLevel  string
	LogFormat string
}

// NewCommandContext extracts the persistent flags from cmd.
func NewCommandContext(cmd *cobra.Command) (*CommandContext, error) {
	logLevel, err := cmd.Flags().GetString("log-level")
	if err != nil {
		return nil, err
	}

	logFormat, err := cmd.Flags().GetString("log-format")
	if err != nil {
		return nil, err
	}

	return &CommandContext{
		LogLevel:  logLevel,
		LogFormat: logFormat,
	}, nil
}

// Logger builds a logger writing to cmd's stderr.
func (c *CommandContext) Logger(cmd *cobra.Command) (*log.Logger, error) {
	if !slices.Contains(logLevels, c.LogLevel) {
		return nil, errors.New(errors.ErrCodeFlagInvalid,
			fmt.Sprintf("invalid --log-level %q", c.LogLevel)).
			WithSuggestion("Use one of: debug, info, warn, error")
	}
	if !slices.Contains(logFormats, c.LogFormat) {
		return nil, errors.New(errors.ErrCodeFlagInvalid,
			fmt.Sprintf("invalid --log-format %q", c.LogFormat)).
			WithSuggestion("Use one of: text, json")
	}

	cfg := log.DefaultConfig()
	cfg.Level = log.ParseLevel(c.LogLevel)
	cfg.Format = log.ParseFormat(c.LogFormat)
	cfg.Output = log.NewOutput(cmd.ErrOrStderr())
	cfg.ServiceVersion = version.Version
	return log.New(cfg), nil
}

// setupLogging installs the process logger before any subcommand runs.
func setupLogging(cmd *cobra.Command, _ []string) error {
	cc, err := NewCommandContext(cmd)
	if err != nil {
		return fmt.Errorf("failed to create command context: %w", err)
	}
	logger, err := cc.Logger(cmd)
	if err != nil {
		return err
	}
	log.SetDefaultLogger(logger)
	return nil
}

// colorEnabled reports whether styled output should be written to cmd's
// stdout.
func colorEnabled(cmd *cobra.Command) bool {
	if os.Getenv("NO_COLOR") != "" {
		return false
	}
	f, ok := cmd.OutOrStdout().(*os.File)
	if !ok {
		return false
	}
	return term.IsTerminal(int(f.Fd()))
}
