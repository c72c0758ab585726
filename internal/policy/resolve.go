package policy

import (
	"sort"

	"github.com/felixgeelhaar/repo-preflight/internal/checks"
	"github.com/felixgeelhaar/repo-preflight/internal/config"
	"github.com/felixgeelhaar/repo-preflight/internal/errors"
	"github.com/felixgeelhaar/repo-preflight/internal/profiles"
	"github.com/felixgeelhaar/repo-preflight/internal/rulepacks"
	"github.com/felixgeelhaar/repo-preflight/internal/vcs"
)

const secretScanCheck = "gitleaks_scan"

// builder accumulates layer contributions before validation.
type builder struct {
	profile    string
	rulePack   string
	strict     bool
	secretScan bool

	checkIDs  []string
	excluded  []string
	overrides map[string]checks.Status

	thresholds checks.Thresholds

	diffMode   string
	prBaseRef  string
	diffBase   string
	diffTarget string

	configPath string
}

// Resolve merges the built-in profile, an optional rule pack, the config
// file and explicit flags into a validated policy. file may be nil. env is
// consulted only in pr diff mode.
func Resolve(opts Options, file *config.File, env vcs.Env) (*Resolved, error) {
	return ResolveWith(checks.Default(), opts, file, env)
}

// ResolveWith is Resolve against an explicit registry.
func ResolveWith(reg *checks.Registry, opts Options, file *config.File, env vcs.Env) (*Resolved, error) {
	if file == nil {
		file = &config.File{}
	}

	b := &builder{overrides: make(map[string]checks.Status)}
	if err := applyProfile(b, opts, file); err != nil {
		return nil, err
	}
	if err := applyRulePack(b, opts, file); err != nil {
		return nil, err
	}
	applyConfig(b, file)
	if err := applyFlags(b, opts); err != nil {
		return nil, err
	}
	resolveDiffRefs(b, env)
	if err := validate(b, reg); err != nil {
		return nil, err
	}
	return b.freeze(), nil
}

func firstSet(values ...*string) string {
	for _, v := range values {
		if v != nil && *v != "" {
			return *v
		}
	}
	return ""
}

func applyProfile(b *builder, opts Options, file *config.File) error {
	name := firstSet(opts.Profile, file.Preflight.Profile)
	if name == "" {
		name = profiles.Default
	}

	p, err := profiles.Load(name)
	if err != nil {
		return errors.NewProfileUnknownError(name, profiles.List())
	}

	b.profile = p.Name
	b.strict = p.Strict
	b.secretScan = p.SecretScan
	b.checkIDs = p.CheckIDs()
	b.thresholds = checks.DefaultThresholds()
	b.diffMode = DiffModeManual
	b.prBaseRef = DefaultPRBaseRef
	return nil
}

func applyRulePack(b *builder, opts Options, file *config.File) error {
	name := firstSet(opts.RulePack, file.Preflight.RulePack)
	if name == "" {
		return nil
	}

	pack, err := rulepacks.Get(name)
	if err != nil {
		return errors.NewRulePackUnknownError(name)
	}

	b.rulePack = pack.Name
	if pack.Strict != nil {
		b.strict = *pack.Strict
	}
	b.include(pack.Include)
	b.exclude(pack.Exclude)
	for id, status := range pack.SeverityOverrides {
		b.overrides[id] = status
	}
	inheritPositive(&b.thresholds.MaxDiffFiles, pack.MaxDiffFiles)
	inheritPositive(&b.thresholds.MaxDiffChangedLines, pack.MaxDiffChangedLines)
	inheritPositive(&b.thresholds.MaxDiffObjectKiB, pack.MaxDiffObjectKiB)
	return nil
}

func inheritPositive(dst *int, v int) {
	if v > 0 {
		*dst = v
	}
}

func applyConfig(b *builder, file *config.File) {
	b.configPath = file.Path
	p := file.Preflight

	if p.Strict != nil {
		b.strict = *p.Strict
	}
	if p.NoGitleaks != nil {
		b.secretScan = !*p.NoGitleaks
	}

	b.include(file.Checks.Include)
	b.exclude(file.Checks.Exclude)
	for id, status := range file.SeverityOverrides {
		b.overrides[id] = status
	}

	setInt(&b.thresholds.MaxTrackedFileKiB, p.MaxTrackedFileKiB)
	setInt(&b.thresholds.MaxHistoryBlobKiB, p.MaxHistoryBlobKiB)
	setInt(&b.thresholds.HistoryObjectLimit, p.HistoryObjectLimit)
	setInt(&b.thresholds.MaxDiffFiles, p.MaxDiffFiles)
	setInt(&b.thresholds.MaxDiffChangedLines, p.MaxDiffChangedLines)
	setInt(&b.thresholds.MaxDiffObjectKiB, p.MaxDiffObjectKiB)

	setString(&b.diffMode, p.DiffMode)
	setString(&b.prBaseRef, p.PRBaseRef)
	setString(&b.diffBase, p.DiffBase)
	setString(&b.diffTarget, p.DiffTarget)
}

func setInt(dst *int, v *int) {
	if v != nil {
		*dst = *v
	}
}

func setString(dst *string, v *string) {
	if v != nil && *v != "" {
		*dst = *v
	}
}

func applyFlags(b *builder, opts Options) error {
	if opts.Strict != nil {
		b.strict = *opts.Strict
	}
	if opts.SecretScan != nil {
		b.secretScan = *opts.SecretScan
	}

	for _, f := range []struct {
		flag string
		v    *int
		dst  *int
	}{
		{"--max-file-kib", opts.MaxTrackedFileKiB, &b.thresholds.MaxTrackedFileKiB},
		{"--max-history-kib", opts.MaxHistoryBlobKiB, &b.thresholds.MaxHistoryBlobKiB},
		{"--history-object-limit", opts.HistoryObjectLimit, &b.thresholds.HistoryObjectLimit},
		{"--max-diff-files", opts.MaxDiffFiles, &b.thresholds.MaxDiffFiles},
		{"--max-diff-changed-lines", opts.MaxDiffChangedLines, &b.thresholds.MaxDiffChangedLines},
		{"--max-diff-object-kib", opts.MaxDiffObjectKiB, &b.thresholds.MaxDiffObjectKiB},
	} {
		if f.v == nil {
			continue
		}
		if *f.v <= 0 {
			return errors.NewThresholdError(f.flag, *f.v)
		}
		*f.dst = *f.v
	}

	if opts.DiffMode != nil {
		b.diffMode = *opts.DiffMode
	}
	setString(&b.prBaseRef, opts.PRBaseRef)
	setString(&b.diffBase, opts.DiffBase)
	setString(&b.diffTarget, opts.DiffTarget)

	if !b.secretScan {
		b.remove(secretScanCheck)
	}
	return nil
}

// resolveDiffRefs fills in base and target. Explicit values always win; pr
// mode falls back to CI hints and then to the PR base ref.
func resolveDiffRefs(b *builder, env vcs.Env) {
	if b.diffMode == DiffModePR {
		if b.diffBase == "" {
			if hint := vcs.NormalizeBaseRef(env.BaseBranch()); hint != "" {
				b.diffBase = hint
			} else {
				b.diffBase = b.prBaseRef
			}
		}
		if b.diffTarget == "" {
			b.diffTarget = env.CommitSHA()
		}
	}
	if b.diffTarget == "" {
		b.diffTarget = DefaultDiffTarget
	}
}

func validate(b *builder, reg *checks.Registry) error {
	if b.diffMode != DiffModeManual && b.diffMode != DiffModePR {
		return errors.New(errors.ErrCodeDiffModeInvalid, "diff mode must be one of: manual, pr, got "+b.diffMode)
	}

	all := append(append([]string(nil), b.checkIDs...), b.excluded...)
	if unknown := reg.Unknown(all); len(unknown) > 0 {
		return errors.NewUnknownChecksError("resolved config", unknown)
	}

	overrideIDs := make([]string, 0, len(b.overrides))
	for id := range b.overrides {
		overrideIDs = append(overrideIDs, id)
	}
	sort.Strings(overrideIDs)
	if unknown := reg.Unknown(overrideIDs); len(unknown) > 0 {
		return errors.NewUnknownOverridesError(unknown)
	}

	for _, th := range b.thresholds.Named() {
		if th.Value <= 0 {
			return errors.NewThresholdError(th.Key, th.Value)
		}
	}
	return nil
}

func (b *builder) include(ids []string) {
	for _, id := range ids {
		if !b.has(id) {
			b.checkIDs = append(b.checkIDs, id)
		}
	}
}

func (b *builder) exclude(ids []string) {
	for _, id := range ids {
		b.remove(id)
	}
	b.excluded = append(b.excluded, ids...)
}

func (b *builder) remove(id string) {
	kept := b.checkIDs[:0]
	for _, c := range b.checkIDs {
		if c != id {
			kept = append(kept, c)
		}
	}
	b.checkIDs = kept
}

func (b *builder) has(id string) bool {
	for _, c := range b.checkIDs {
		if c == id {
			return true
		}
	}
	return false
}

func (b *builder) freeze() *Resolved {
	overrides := make(map[string]checks.Status, len(b.overrides))
	for k, v := range b.overrides {
		overrides[k] = v
	}
	return &Resolved{
		Profile:           b.profile,
		RulePack:          b.rulePack,
		Strict:            b.strict,
		SecretScan:        b.secretScan,
		CheckIDs:          append([]string(nil), b.checkIDs...),
		SeverityOverrides: overrides,
		Thresholds:        b.thresholds,
		DiffMode:          b.diffMode,
		PRBaseRef:         b.prBaseRef,
		DiffBase:          b.diffBase,
		DiffTarget:        b.diffTarget,
		ConfigPath:        b.configPath,
	}
}
