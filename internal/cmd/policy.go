package cmd

import (
	stderrors "errors"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/felixgeelhaar/repo-preflight/internal/errors"
	"github.com/felixgeelhaar/repo-preflight/internal/log"
	"github.com/felixgeelhaar/repo-preflight/internal/profiles"
	"github.com/felixgeelhaar/repo-preflight/internal/report"
	"github.com/felixgeelhaar/repo-preflight/internal/rulepacks"
	"github.com/felixgeelhaar/repo-preflight/internal/tui"
)

// selectRulePack is replaced in tests.
var selectRulePack = defaultSelectRulePack

func defaultSelectRulePack(in io.Reader, out io.Writer) (string, error) {
	packs := rulepacks.All()
	choices := make([]tui.Choice, len(packs))
	for i, p := range packs {
		choices[i] = tui.Choice{Value: p.Name, Description: p.Description}
	}
	return tui.PromptForSelect(in, out, "Rule pack", choices)
}

// shouldPrompt is replaced in tests.
var shouldPrompt = func(in io.Reader) bool {
	return tui.ShouldPrompt(in, os.Getenv)
}

func newPolicyDocCommand() *cobra.Command {
	var (
		target targetFlags
		flags  policyFlags
		output string
	)

	cmd := &cobra.Command{
		Use:   "policy-doc",
		Short: "Render the effective policy as Markdown",
		Long: `Resolve the policy exactly as 'check' would and render it as Markdown:
profile, rule pack, thresholds, diff settings, active checks and severity
overrides. No checks are run.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			dir, err := target.dir()
			if err != nil {
				return err
			}
			pol, err := resolvePolicy(cmd, dir, &target, &flags)
			if err != nil {
				return err
			}

			doc := report.PolicyDoc(dir, pol)
			if output == "" {
				_, err := io.WriteString(cmd.OutOrStdout(), doc)
				return err
			}
			return writeOutput(output, []byte(doc), true)
		},
	}

	target.register(cmd)
	flags.register(cmd)
	cmd.Flags().StringVarP(&output, "output", "o", "", "Write to file instead of stdout")
	return cmd
}

func newPolicyTemplateCommand() *cobra.Command {
	var (
		rulePack string
		profile  string
		strict   bool
		noStrict bool
		output   string
		force    bool
	)

	cmd := &cobra.Command{
		Use:   "policy-template",
		Short: "Generate a starter .repo-preflight.toml",
		Long: `Generate a starter config file seeded from a rule pack and profile.

Without --rule-pack, an interactive terminal shows a picker; otherwise the
flag is required. An existing output file is only replaced with --force.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if rulePack == "" {
				if !shouldPrompt(cmd.InOrStdin()) {
					return errors.New(errors.ErrCodeRulePackMissing, "--rule-pack is required when not running interactively").
						WithSuggestion("Run 'repo-preflight list-rule-packs' to see available rule packs")
				}
				picked, err := selectRulePack(cmd.InOrStdin(), cmd.ErrOrStderr())
				if err != nil {
					return errors.Wrap(errors.ErrCodeRulePackMissing, "no rule pack selected", err)
				}
				rulePack = picked
			}

			var strictOverride *bool
			switch {
			case cmd.Flags().Changed("strict"):
				strictOverride = &strict
			case cmd.Flags().Changed("no-strict"):
				v := false
				strictOverride = &v
			}

			data, err := report.Template(rulePack, profile, strictOverride)
			if err != nil {
				return err
			}
			if output == "" {
				_, err := cmd.OutOrStdout().Write(data)
				return err
			}
			if err := writeOutput(output, data, force); err != nil {
				return err
			}
			log.DefaultLogger().Info("template written", "path", output, "rule_pack", rulePack)
			return nil
		},
	}

	fs := cmd.Flags()
	fs.StringVar(&rulePack, "rule-pack", "", "Rule pack to seed from (see list-rule-packs)")
	fs.StringVar(&profile, "profile", profiles.Default, "Profile to record in the template")
	fs.BoolVar(&strict, "strict", false, "Record strict = true")
	fs.BoolVar(&noStrict, "no-strict", false, "Record strict = false")
	cmd.MarkFlagsMutuallyExclusive("strict", "no-strict")
	fs.StringVarP(&output, "output", "o", "", "Write to file instead of stdout")
	fs.BoolVar(&force, "force", false, "Overwrite an existing output file")
	return cmd
}

// writeOutput writes data to path, refusing to replace an existing file
// unless overwrite is set.
func writeOutput(path string, data []byte, overwrite bool) error {
	flag := os.O_WRONLY | os.O_CREATE | os.O_TRUNC
	if !overwrite {
		flag = os.O_WRONLY | os.O_CREATE | os.O_EXCL
	}

	f, err := os.OpenFile(path, flag, 0o644)
	if err != nil {
		if stderrors.Is(err, os.ErrExist) {
			return errors.New(errors.ErrCodeOutputExists, fmt.Sprintf("output file already exists: %s", path)).
				WithSuggestion("Use --force to overwrite it")
		}
		return errors.Wrap(errors.ErrCodeFileWriteFailed, fmt.Sprintf("failed to write %s", path), err)
	}
	if _, err := f.Write(data); err != nil {
		f.Close()
		return errors.Wrap(errors.ErrCodeFileWriteFailed, fmt.Sprintf("failed to write %s", path), err)
	}
	if err := f.Close(); err != nil {
		return errors.Wrap(errors.ErrCodeFileWriteFailed, fmt.Sprintf("failed to write %s", path), err)
	}
	return nil
}
