package report

import (
	"encoding/json"
	"io"

	"github.com/felixgeelhaar/repo-preflight/internal/checks"
)

// Payload is the machine-readable report. Field names are part of the
// output contract.
type Payload struct {
	Path       string   `json:"path"`
	Profile    string   `json:"profile"`
	RulePack   *string  `json:"rule_pack"`
	Strict     bool     `json:"strict"`
	SecretScan bool     `json:"secret_scan"`
	ConfigPath *string  `json:"config_path"`
	CheckIDs   []string `json:"check_ids"`

	MaxTrackedFileKiB   int `json:"max_tracked_file_kib"`
	MaxHistoryBlobKiB   int `json:"max_history_blob_kib"`
	HistoryObjectLimit  int `json:"history_object_limit"`
	MaxDiffFiles        int `json:"max_diff_files"`
	MaxDiffChangedLines int `json:"max_diff_changed_lines"`
	MaxDiffObjectKiB    int `json:"max_diff_object_kib"`

	DiffMode   string `json:"diff_mode"`
	PRBaseRef  string `json:"pr_base_ref"`
	DiffBase   string `json:"diff_base"`
	DiffTarget string `json:"diff_target"`

	SeverityOverrides map[string]checks.Status `json:"severity_overrides"`

	Summary  Summary         `json:"summary"`
	ExitCode int             `json:"exit_code"`
	Results  []ResultPayload `json:"results"`
}

// ResultPayload is one check result. Fix is null when the check has none.
type ResultPayload struct {
	ID      string        `json:"id"`
	Status  checks.Status `json:"status"`
	Message string        `json:"message"`
	Fix     *string       `json:"fix"`
}

// BuildPayload converts r into its JSON shape.
func BuildPayload(r *Report) Payload {
	pol := r.Policy
	th := pol.Thresholds

	overrides := pol.SeverityOverrides
	if overrides == nil {
		overrides = map[string]checks.Status{}
	}
	results := make([]ResultPayload, len(r.Results))
	for i, res := range r.Results {
		results[i] = ResultPayload{
			ID:      res.ID,
			Status:  res.Status,
			Message: res.Message,
			Fix:     optional(res.Fix),
		}
	}

	return Payload{
		Path:       r.Path,
		Profile:    pol.Profile,
		RulePack:   optional(pol.RulePack),
		Strict:     pol.Strict,
		SecretScan: pol.SecretScan,
		ConfigPath: optional(pol.ConfigPath),
		CheckIDs:   append([]string{}, pol.CheckIDs...),

		MaxTrackedFileKiB:   th.MaxTrackedFileKiB,
		MaxHistoryBlobKiB:   th.MaxHistoryBlobKiB,
		HistoryObjectLimit:  th.HistoryObjectLimit,
		MaxDiffFiles:        th.MaxDiffFiles,
		MaxDiffChangedLines: th.MaxDiffChangedLines,
		MaxDiffObjectKiB:    th.MaxDiffObjectKiB,

		DiffMode:   pol.DiffMode,
		PRBaseRef:  pol.PRBaseRef,
		DiffBase:   pol.DiffBase,
		DiffTarget: pol.DiffTarget,

		SeverityOverrides: overrides,

		Summary:  r.Summary,
		ExitCode: r.ExitCode,
		Results:  results,
	}
}

func optional(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

// WriteJSON writes the payload as indented JSON.
func WriteJSON(w io.Writer, r *Report) error {
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(BuildPayload(r))
}
