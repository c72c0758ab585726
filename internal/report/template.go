package report

import (
	"fmt"

	"github.com/felixgeelhaar/repo-preflight/internal/config"
	"github.com/felixgeelhaar/repo-preflight/internal/errors"
	"github.com/felixgeelhaar/repo-preflight/internal/policy"
)

const templateHeader = `# repo-preflight configuration
# Generated from rule pack %q and profile %q.
# Precedence: profile < rule pack < this file < command-line flags.

`

// Template renders a starter config seeded from a rule pack and profile. The
// values are those the resolver produces for the pair without a config file,
// so a nil strict takes the rule pack's value, falling back to the profile's.
func Template(rulePack, profile string, strict *bool) ([]byte, error) {
	if rulePack == "" {
		return nil, errors.NewRulePackUnknownError(rulePack)
	}

	opts := policy.Options{RulePack: &rulePack, Strict: strict}
	if profile != "" {
		opts.Profile = &profile
	}
	pol, err := policy.Resolve(opts, nil, nil)
	if err != nil {
		return nil, err
	}

	diffMode := config.DiffModeManual
	if pol.Profile == "ci" {
		diffMode = config.DiffModePR
	}

	th := pol.Thresholds
	f := &config.File{
		Preflight: config.Preflight{
			Profile:    &pol.Profile,
			RulePack:   &pol.RulePack,
			Strict:     &pol.Strict,
			NoGitleaks: boolPtr(!pol.SecretScan),

			DiffMode:  &diffMode,
			PRBaseRef: &pol.PRBaseRef,

			MaxTrackedFileKiB:   &th.MaxTrackedFileKiB,
			MaxHistoryBlobKiB:   &th.MaxHistoryBlobKiB,
			HistoryObjectLimit:  &th.HistoryObjectLimit,
			MaxDiffFiles:        &th.MaxDiffFiles,
			MaxDiffChangedLines: &th.MaxDiffChangedLines,
			MaxDiffObjectKiB:    &th.MaxDiffObjectKiB,
		},
		SeverityOverrides: pol.SeverityOverrides,
	}

	body, err := config.Marshal(f)
	if err != nil {
		return nil, err
	}
	return append([]byte(fmt.Sprintf(templateHeader, pol.RulePack, pol.Profile)), body...), nil
}

func boolPtr(v bool) *bool { return &v }
