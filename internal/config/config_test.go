package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/felixgeelhaar/repo-preflight/internal/checks"
	"github.com/felixgeelhaar/repo-preflight/internal/errors"
)

func writeConfig(t *testing.T, dir, content string) string {
	t.Helper()
	path := filepath.Join(dir, FileName)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestParseFullFile(t *testing.T) {
	f, err := Parse("test.toml", []byte(`
[preflight]
profile = "ci"
rule_pack = "oss-library"
strict = false
no_gitleaks = true
diff_mode = "pr"
pr_base_ref = "origin/develop"
diff_base = "origin/main"
diff_target = "HEAD"
max_tracked_file_kib = 1024
max_history_blob_kib = 2048
history_object_limit = 500
max_diff_files = 50
max_diff_changed_lines = 800
max_diff_object_kib = 512

[checks]
include = ["gitleaks_scan"]
exclude = ["default_branch_style"]

[severity_overrides]
license_present = "fail"
tracked_env_files = "pass"
`))
	require.NoError(t, err)

	assert.Equal(t, "test.toml", f.Path)
	p := f.Preflight
	assert.Equal(t, "ci", *p.Profile)
	assert.Equal(t, "oss-library", *p.RulePack)
	assert.False(t, *p.Strict)
	assert.True(t, *p.NoGitleaks)
	assert.Equal(t, "pr", *p.DiffMode)
	assert.Equal(t, "origin/develop", *p.PRBaseRef)
	assert.Equal(t, "origin/main", *p.DiffBase)
	assert.Equal(t, "HEAD", *p.DiffTarget)
	assert.Equal(t, 1024, *p.MaxTrackedFileKiB)
	assert.Equal(t, 2048, *p.MaxHistoryBlobKiB)
	assert.Equal(t, 500, *p.HistoryObjectLimit)
	assert.Equal(t, 50, *p.MaxDiffFiles)
	assert.Equal(t, 800, *p.MaxDiffChangedLines)
	assert.Equal(t, 512, *p.MaxDiffObjectKiB)

	assert.Equal(t, []string{"gitleaks_scan"}, f.Checks.Include)
	assert.Equal(t, []string{"default_branch_style"}, f.Checks.Exclude)
	assert.Equal(t, map[string]checks.Status{
		"license_present":   checks.StatusFail,
		"tracked_env_files": checks.StatusPass,
	}, f.SeverityOverrides)
}

func TestParseEmptyLeavesEverythingUnset(t *testing.T) {
	f, err := Parse("empty.toml", nil)
	require.NoError(t, err)

	assert.Nil(t, f.Preflight.Profile)
	assert.Nil(t, f.Preflight.Strict)
	for _, th := range f.Preflight.Thresholds() {
		assert.Nil(t, th.Value, th.Key)
	}
	assert.Nil(t, f.Checks.Include)
	assert.Empty(t, f.SeverityOverrides)
}

func TestParseRejects(t *testing.T) {
	tests := []struct {
		name     string
		content  string
		code     errors.ErrorCode
		contains string
	}{
		{
			name:     "unknown key",
			content:  "[preflight]\nprofiel = \"ci\"\n",
			code:     errors.ErrCodeConfigUnknownKey,
			contains: "preflight.profiel",
		},
		{
			name:     "unknown table",
			content:  "[extras]\nfoo = 1\n",
			code:     errors.ErrCodeConfigUnknownKey,
			contains: "extras",
		},
		{
			name:    "wrong type",
			content: "[preflight]\nstrict = \"yes\"\n",
			code:    errors.ErrCodeConfigUnmarshal,
		},
		{
			name:    "malformed toml",
			content: "[preflight\n",
			code:    errors.ErrCodeConfigUnmarshal,
		},
		{
			name:     "unknown profile",
			content:  "[preflight]\nprofile = \"paranoid\"\n",
			code:     errors.ErrCodeConfigInvalidValue,
			contains: "preflight.profile",
		},
		{
			name:     "bad diff mode",
			content:  "[preflight]\ndiff_mode = \"auto\"\n",
			code:     errors.ErrCodeConfigInvalidValue,
			contains: "preflight.diff_mode",
		},
		{
			name:     "zero threshold",
			content:  "[preflight]\nmax_diff_files = 0\n",
			code:     errors.ErrCodeConfigInvalidValue,
			contains: "preflight.max_diff_files",
		},
		{
			name:     "negative threshold",
			content:  "[preflight]\nhistory_object_limit = -5\n",
			code:     errors.ErrCodeConfigInvalidValue,
			contains: "got -5",
		},
		{
			name:     "bad override status",
			content:  "[severity_overrides]\nreadme_present = \"error\"\n",
			code:     errors.ErrCodeConfigInvalidValue,
			contains: "severity_overrides.readme_present",
		},
		{
			name:     "empty rule pack",
			content:  "[preflight]\nrule_pack = \"\"\n",
			code:     errors.ErrCodeConfigInvalidValue,
			contains: "preflight.rule_pack",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse("bad.toml", []byte(tt.content))
			require.Error(t, err)
			assert.True(t, errors.HasCode(err, tt.code), "got %v", err)
			if tt.contains != "" {
				assert.Contains(t, err.Error(), tt.contains)
			}
		})
	}
}

func TestLocate(t *testing.T) {
	dir := t.TempDir()

	path, err := Locate(dir, "", false)
	require.NoError(t, err)
	assert.Empty(t, path, "missing default file is not an error")

	written := writeConfig(t, dir, "[preflight]\nprofile = \"quick\"\n")

	path, err = Locate(dir, "", false)
	require.NoError(t, err)
	assert.Equal(t, written, path)

	path, err = Locate(dir, "", true)
	require.NoError(t, err)
	assert.Empty(t, path)

	path, err = Locate(t.TempDir(), written, false)
	require.NoError(t, err)
	assert.Equal(t, written, path)

	_, err = Locate(dir, filepath.Join(dir, "missing.toml"), false)
	require.Error(t, err)
	assert.True(t, errors.HasCode(err, errors.ErrCodeConfigNotFound))
}

func TestLoad(t *testing.T) {
	f, err := Load("")
	require.NoError(t, err)
	assert.Empty(t, f.Path)

	path := writeConfig(t, t.TempDir(), "[checks]\nexclude = [\"gitleaks_scan\"]\n")
	f, err = Load(path)
	require.NoError(t, err)
	assert.Equal(t, path, f.Path)
	assert.Equal(t, []string{"gitleaks_scan"}, f.Checks.Exclude)

	_, err = Load(filepath.Join(t.TempDir(), "nope.toml"))
	assert.True(t, errors.HasCode(err, errors.ErrCodeConfigNotFound))
}

func TestMarshalRoundTripsThroughParse(t *testing.T) {
	profile, strict, files := "ci", true, 120
	in := &File{
		Preflight: Preflight{Profile: &profile, Strict: &strict, MaxDiffFiles: &files},
		Checks:    CheckLists{Exclude: []string{"default_branch_style"}},
		SeverityOverrides: map[string]checks.Status{
			"license_present": checks.StatusFail,
		},
	}

	data, err := Marshal(in)
	require.NoError(t, err)
	assert.Contains(t, string(data), "[preflight]")
	assert.Contains(t, string(data), "max_diff_files = 120")
	assert.NotContains(t, string(data), "max_tracked_file_kib")

	out, err := Parse("roundtrip.toml", data)
	require.NoError(t, err)
	assert.Equal(t, profile, *out.Preflight.Profile)
	assert.Equal(t, files, *out.Preflight.MaxDiffFiles)
	assert.Equal(t, in.Checks.Exclude, out.Checks.Exclude)
	assert.Equal(t, in.SeverityOverrides, out.SeverityOverrides)
}
