package cmd

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/felixgeelhaar/repo-preflight/internal/config"
	"github.com/felixgeelhaar/repo-preflight/internal/errors"
	"github.com/felixgeelhaar/repo-preflight/internal/log"
	"github.com/felixgeelhaar/repo-preflight/internal/policy"
	"github.com/felixgeelhaar/repo-preflight/internal/vcs"
)

// targetFlags select the repository and its config file.
type targetFlags struct {
	path       string
	configPath string
	noConfig   bool
}

func (f *targetFlags) register(cmd *cobra.Command) {
	fs := cmd.Flags()
	fs.StringVar(&f.path, "path", ".", "Repository path")
	fs.StringVar(&f.configPath, "config", "", "Config file (default <path>/"+config.FileName+")")
	fs.BoolVar(&f.noConfig, "no-config", false, "Ignore any config file")
	cmd.MarkFlagsMutuallyExclusive("config", "no-config")
}

// dir returns the absolute repository directory.
func (f *targetFlags) dir() (string, error) {
	abs, err := filepath.Abs(f.path)
	if err != nil {
		return "", errors.Wrap(errors.ErrCodePathInvalid, fmt.Sprintf("invalid path: %s", f.path), err)
	}
	info, err := os.Stat(abs)
	if err != nil || !info.IsDir() {
		return "", errors.New(errors.ErrCodePathInvalid, fmt.Sprintf("path is not a directory: %s", abs))
	}
	return abs, nil
}

// policyFlags are the command-line policy overrides. Only flags the user set
// reach the resolver.
type policyFlags struct {
	profile  string
	rulePack string

	strict     bool
	noStrict   bool
	gitleaks   bool
	noGitleaks bool

	maxFileKiB          int
	maxHistoryKiB       int
	historyObjectLimit  int
	maxDiffFiles        int
	maxDiffChangedLines int
	maxDiffObjectKiB    int

	diffMode   string
	prBaseRef  string
	diffBase   string
	diffTarget string
}

func (f *policyFlags) register(cmd *cobra.Command) {
	fs := cmd.Flags()
	fs.StringVar(&f.profile, "profile", "", "Check profile: quick, full, ci (default full)")
	fs.StringVar(&f.rulePack, "rule-pack", "", "Rule pack overlay (see list-rule-packs)")

	fs.BoolVar(&f.strict, "strict", false, "Treat warnings as failures")
	fs.BoolVar(&f.noStrict, "no-strict", false, "Do not treat warnings as failures")
	fs.BoolVar(&f.gitleaks, "gitleaks", false, "Run the gitleaks secret scan")
	fs.BoolVar(&f.noGitleaks, "no-gitleaks", false, "Skip the gitleaks secret scan")
	cmd.MarkFlagsMutuallyExclusive("strict", "no-strict")
	cmd.MarkFlagsMutuallyExclusive("gitleaks", "no-gitleaks")

	fs.IntVar(&f.maxFileKiB, "max-file-kib", 0, "Max tracked file size in KiB")
	fs.IntVar(&f.maxHistoryKiB, "max-history-kib", 0, "Max history blob size in KiB")
	fs.IntVar(&f.historyObjectLimit, "history-object-limit", 0, "Max history objects to scan")
	fs.IntVar(&f.maxDiffFiles, "max-diff-files", 0, "Max files changed by the diff")
	fs.IntVar(&f.maxDiffChangedLines, "max-diff-changed-lines", 0, "Max lines changed by the diff")
	fs.IntVar(&f.maxDiffObjectKiB, "max-diff-object-kib", 0, "Max size in KiB of a file or object in the diff")

	fs.StringVar(&f.diffMode, "diff-mode", "", "Diff mode: manual or pr")
	fs.StringVar(&f.prBaseRef, "pr-base-ref", "", "Base ref in pr mode when CI gives no hint (default origin/main)")
	fs.StringVar(&f.diffBase, "diff-base", "", "Diff base ref")
	fs.StringVar(&f.diffTarget, "diff-target", "", "Diff target ref (default HEAD)")
}

// options converts the flags the user set into resolver options.
func (f *policyFlags) options(cmd *cobra.Command) policy.Options {
	fs := cmd.Flags()
	var opts policy.Options

	setString := func(name string, v string) *string {
		if !fs.Changed(name) {
			return nil
		}
		return &v
	}
	setInt := func(name string, v int) *int {
		if !fs.Changed(name) {
			return nil
		}
		return &v
	}
	pair := func(on, off string) *bool {
		switch {
		case fs.Changed(on):
			v := true
			return &v
		case fs.Changed(off):
			v := false
			return &v
		}
		return nil
	}

	opts.Profile = setString("profile", f.profile)
	opts.RulePack = setString("rule-pack", f.rulePack)
	opts.Strict = pair("strict", "no-strict")
	opts.SecretScan = pair("gitleaks", "no-gitleaks")

	opts.MaxTrackedFileKiB = setInt("max-file-kib", f.maxFileKiB)
	opts.MaxHistoryBlobKiB = setInt("max-history-kib", f.maxHistoryKiB)
	opts.HistoryObjectLimit = setInt("history-object-limit", f.historyObjectLimit)
	opts.MaxDiffFiles = setInt("max-diff-files", f.maxDiffFiles)
	opts.MaxDiffChangedLines = setInt("max-diff-changed-lines", f.maxDiffChangedLines)
	opts.MaxDiffObjectKiB = setInt("max-diff-object-kib", f.maxDiffObjectKiB)

	opts.DiffMode = setString("diff-mode", f.diffMode)
	opts.PRBaseRef = setString("pr-base-ref", f.prBaseRef)
	opts.DiffBase = setString("diff-base", f.diffBase)
	opts.DiffTarget = setString("diff-target", f.diffTarget)
	return opts
}

// resolvePolicy loads the config file for dir and resolves the effective
// policy against the process environment.
func resolvePolicy(cmd *cobra.Command, dir string, target *targetFlags, flags *policyFlags) (*policy.Resolved, error) {
	logger := log.DefaultLogger()

	cfgPath, err := config.Locate(dir, target.configPath, target.noConfig)
	if err != nil {
		return nil, err
	}
	file, err := config.Load(cfgPath)
	if err != nil {
		return nil, err
	}
	if cfgPath != "" {
		logger.Debug("config loaded", "path", cfgPath)
	}

	pol, err := policy.Resolve(flags.options(cmd), file, vcs.OSEnv())
	if err != nil {
		return nil, err
	}
	logger.Debug("policy resolved",
		"profile", pol.Profile,
		"rule_pack", pol.RulePack,
		"strict", pol.Strict,
		"checks", len(pol.CheckIDs),
		"diff_mode", pol.DiffMode,
		"diff_base", pol.DiffBase,
		"diff_target", pol.DiffTarget,
	)
	return pol, nil
}
