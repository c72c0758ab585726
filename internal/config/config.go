// Package config loads the optional .repo-preflight.toml policy file.
//
// Every field is a pointer or a nil-able collection so the resolver can tell
// "not set" apart from an explicit value. Unknown keys, wrong types and
// invalid values are rejected with an error naming the key.
package config

import (
	"bytes"
	stderrors "errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/pelletier/go-toml/v2"

	"github.com/felixgeelhaar/repo-preflight/internal/checks"
	"github.com/felixgeelhaar/repo-preflight/internal/errors"
	"github.com/felixgeelhaar/repo-preflight/internal/profiles"
)

// FileName is the config file looked up in the target directory.
const FileName = ".repo-preflight.toml"

// Diff modes.
const (
	DiffModeManual = "manual"
	DiffModePR     = "pr"
)

// File is the parsed config file. Path is empty when no file was loaded.
type File struct {
	Path string `toml:"-"`

	Preflight         Preflight                `toml:"preflight"`
	Checks            CheckLists               `toml:"checks"`
	SeverityOverrides map[string]checks.Status `toml:"severity_overrides,omitempty"`
}

// Preflight is the [preflight] table.
type Preflight struct {
	Profile    *string `toml:"profile,omitempty"`
	RulePack   *string `toml:"rule_pack,omitempty"`
	Strict     *bool   `toml:"strict,omitempty"`
	NoGitleaks *bool   `toml:"no_gitleaks,omitempty"`

	DiffMode   *string `toml:"diff_mode,omitempty"`
	PRBaseRef  *string `toml:"pr_base_ref,omitempty"`
	DiffBase   *string `toml:"diff_base,omitempty"`
	DiffTarget *string `toml:"diff_target,omitempty"`

	MaxTrackedFileKiB   *int `toml:"max_tracked_file_kib,omitempty"`
	MaxHistoryBlobKiB   *int `toml:"max_history_blob_kib,omitempty"`
	HistoryObjectLimit  *int `toml:"history_object_limit,omitempty"`
	MaxDiffFiles        *int `toml:"max_diff_files,omitempty"`
	MaxDiffChangedLines *int `toml:"max_diff_changed_lines,omitempty"`
	MaxDiffObjectKiB    *int `toml:"max_diff_object_kib,omitempty"`
}

// CheckLists is the [checks] table.
type CheckLists struct {
	Include []string `toml:"include,omitempty"`
	Exclude []string `toml:"exclude,omitempty"`
}

// Threshold pairs a config key with its value.
type Threshold struct {
	Key   string
	Value *int
}

// Thresholds returns the six numeric settings in a fixed order.
func (p *Preflight) Thresholds() []Threshold {
	return []Threshold{
		{"max_tracked_file_kib", p.MaxTrackedFileKiB},
		{"max_history_blob_kib", p.MaxHistoryBlobKiB},
		{"history_object_limit", p.HistoryObjectLimit},
		{"max_diff_files", p.MaxDiffFiles},
		{"max_diff_changed_lines", p.MaxDiffChangedLines},
		{"max_diff_object_kib", p.MaxDiffObjectKiB},
	}
}

// Locate returns the config file to load, or "" when none applies. An
// explicit path must exist; the default path is used only if present.
func Locate(dir, explicit string, noConfig bool) (string, error) {
	if noConfig {
		return "", nil
	}

	if explicit != "" {
		path, err := filepath.Abs(expandHome(explicit))
		if err != nil {
			return "", errors.Wrap(errors.ErrCodeFileReadFailed, "failed to resolve config path", err)
		}
		if _, err := os.Stat(path); err != nil {
			return "", errors.NewFileNotFoundError(path)
		}
		return path, nil
	}

	path := filepath.Join(dir, FileName)
	if _, err := os.Stat(path); err != nil {
		return "", nil
	}
	return path, nil
}

func expandHome(p string) string {
	if p == "~" || strings.HasPrefix(p, "~/") {
		if home, err := os.UserHomeDir(); err == nil {
			return filepath.Join(home, strings.TrimPrefix(p, "~"))
		}
	}
	return p
}

// Load reads and validates the config file at path. An empty path yields
// an empty File.
func Load(path string) (*File, error) {
	if path == "" {
		return &File{}, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if stderrors.Is(err, os.ErrNotExist) {
			return nil, errors.NewFileNotFoundError(path)
		}
		return nil, errors.Wrap(errors.ErrCodeFileReadFailed, fmt.Sprintf("failed to read config file: %s", path), err)
	}
	return Parse(path, data)
}

// Parse decodes and validates config file contents. path is used in error
// messages and recorded on the result.
func Parse(path string, data []byte) (*File, error) {
	var f File
	dec := toml.NewDecoder(bytes.NewReader(data)).DisallowUnknownFields()
	if err := dec.Decode(&f); err != nil {
		return nil, decodeError(path, err)
	}

	f.Path = path
	if err := f.Validate(); err != nil {
		return nil, err
	}
	return &f, nil
}

func decodeError(path string, err error) error {
	var strict *toml.StrictMissingError
	if stderrors.As(err, &strict) {
		keys := make([]string, 0, len(strict.Errors))
		for _, e := range strict.Errors {
			keys = append(keys, strings.Join(e.Key(), "."))
		}
		return errors.New(errors.ErrCodeConfigUnknownKey,
			fmt.Sprintf("unknown config keys in %s: %s", path, strings.Join(keys, ", "))).
			WithSuggestion("Valid tables are [preflight], [checks] and [severity_overrides]").
			WithSuggestion("Generate a starter file with 'repo-preflight policy-template --rule-pack <name>'")
	}

	var decodeErr *toml.DecodeError
	if stderrors.As(err, &decodeErr) {
		row, col := decodeErr.Position()
		return errors.NewConfigUnmarshalError(fmt.Sprintf("%s:%d:%d", path, row, col),
			fmt.Errorf("%s", decodeErr.String()))
	}

	return errors.NewConfigUnmarshalError(path, err)
}

// Validate checks enum values, statuses and thresholds. Check ids are
// validated by the policy resolver against the registry.
func (f *File) Validate() error {
	p := f.Preflight

	if p.Profile != nil && !profiles.Exists(*p.Profile) {
		return errors.NewConfigValueError(f.Path, "preflight.profile",
			"must be one of: "+strings.Join(profiles.List(), ", "))
	}
	if p.RulePack != nil && strings.TrimSpace(*p.RulePack) == "" {
		return errors.NewConfigValueError(f.Path, "preflight.rule_pack", "must not be empty")
	}
	if p.DiffMode != nil && *p.DiffMode != DiffModeManual && *p.DiffMode != DiffModePR {
		return errors.NewConfigValueError(f.Path, "preflight.diff_mode", "must be one of: manual, pr")
	}

	for _, th := range p.Thresholds() {
		if th.Value != nil && *th.Value <= 0 {
			return errors.NewConfigValueError(f.Path, "preflight."+th.Key,
				fmt.Sprintf("must be a positive integer, got %d", *th.Value))
		}
	}

	for id, status := range f.SeverityOverrides {
		if !status.Valid() {
			return errors.NewConfigValueError(f.Path, "severity_overrides."+id, "must be one of: pass, warn, fail")
		}
	}
	return nil
}

// Marshal renders f as TOML.
func Marshal(f *File) ([]byte, error) {
	var buf bytes.Buffer
	enc := toml.NewEncoder(&buf).SetIndentTables(false)
	if err := enc.Encode(f); err != nil {
		return nil, fmt.Errorf("encode config: %w", err)
	}
	return buf.Bytes(), nil
}
