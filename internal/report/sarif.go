package report

import (
	"encoding/hex"
	"encoding/json"
	"io"
	"net/url"
	"path/filepath"

	"github.com/google/uuid"
	"github.com/zeebo/blake3"

	"github.com/felixgeelhaar/repo-preflight/internal/checks"
	"github.com/felixgeelhaar/repo-preflight/internal/version"
)

const (
	sarifVersion = "2.1.0"
	sarifSchema  = "https://raw.githubusercontent.com/oasis-tcs/sarif-spec/master/Schemata/sarif-schema-2.1.0.json"

	srcRootID      = "%SRCROOT%"
	repoRootURI    = "."
	fingerprintKey = "repoPreflight/v1"
	informationURI = "https://github.com/felixgeelhaar/repo-preflight"
)

// newGUID is replaced in tests.
var newGUID = uuid.NewString

// SARIF represents a SARIF 2.1.0 report structure
type SARIF struct {
	Version string     `json:"version"`
	Schema  string     `json:"$schema"`
	Runs    []SARIFRun `json:"runs"`
}

// SARIFRun represents a single run in a SARIF report
type SARIFRun struct {
	Tool               SARIFTool                        `json:"tool"`
	AutomationDetails  SARIFAutomationDetails           `json:"automationDetails"`
	OriginalURIBaseIDs map[string]SARIFArtifactLocation `json:"originalUriBaseIds,omitempty"`
	Results            []SARIFResult                    `json:"results"`
	Properties         map[string]any                   `json:"properties"`
}

// SARIFTool describes the tool that generated the report
type SARIFTool struct {
	Driver SARIFDriver `json:"driver"`
}

// SARIFDriver contains tool metadata
type SARIFDriver struct {
	Name           string      `json:"name"`
	InformationURI string      `json:"informationUri,omitempty"`
	Version        string      `json:"version,omitempty"`
	Rules          []SARIFRule `json:"rules"`
}

// SARIFRule describes one check
type SARIFRule struct {
	ID               string       `json:"id"`
	Name             string       `json:"name,omitempty"`
	ShortDescription SARIFMessage `json:"shortDescription"`
}

// SARIFAutomationDetails identifies the run
type SARIFAutomationDetails struct {
	ID   string `json:"id,omitempty"`
	GUID string `json:"guid"`
}

// SARIFResult represents a single finding
type SARIFResult struct {
	RuleID              string            `json:"ruleId"`
	RuleIndex           int               `json:"ruleIndex"`
	Level               string            `json:"level"` // "error" or "warning"
	Message             SARIFMessage      `json:"message"`
	Locations           []SARIFLocation   `json:"locations"`
	PartialFingerprints map[string]string `json:"partialFingerprints"`
}

// SARIFMessage contains the finding message
type SARIFMessage struct {
	Text string `json:"text"`
}

// SARIFLocation describes where the finding occurred
type SARIFLocation struct {
	PhysicalLocation SARIFPhysicalLocation `json:"physicalLocation"`
}

// SARIFPhysicalLocation provides file-level location
type SARIFPhysicalLocation struct {
	ArtifactLocation SARIFArtifactLocation `json:"artifactLocation"`
}

// SARIFArtifactLocation identifies the artifact
type SARIFArtifactLocation struct {
	URI       string `json:"uri"`
	URIBaseID string `json:"uriBaseId,omitempty"`
}

// ToSARIF converts a report to SARIF. Passing results are not emitted.
func ToSARIF(r *Report) *SARIF {
	return ToSARIFWith(checks.Default(), r)
}

// ToSARIFWith is ToSARIF with rule metadata taken from reg.
func ToSARIFWith(reg *checks.Registry, r *Report) *SARIF {
	pol := r.Policy

	rules := make([]SARIFRule, 0, len(pol.CheckIDs))
	ruleIndex := make(map[string]int, len(pol.CheckIDs))
	for _, id := range pol.CheckIDs {
		rule := SARIFRule{ID: id, ShortDescription: SARIFMessage{Text: id}}
		if c, ok := reg.Lookup(id); ok {
			rule.Name = c.Title
			rule.ShortDescription.Text = c.Title
		}
		ruleIndex[id] = len(rules)
		rules = append(rules, rule)
	}

	results := []SARIFResult{}
	for _, res := range r.Results {
		level, ok := sarifLevel(res.Status)
		if !ok {
			continue
		}
		idx, known := ruleIndex[res.ID]
		if !known {
			idx = -1
		}

		result := SARIFResult{
			RuleID:    res.ID,
			RuleIndex: idx,
			Level:     level,
			Message:   SARIFMessage{Text: resultText(res)},
			PartialFingerprints: map[string]string{
				fingerprintKey: fingerprint(res),
			},
		}
		result.Locations = []SARIFLocation{
			{
				PhysicalLocation: SARIFPhysicalLocation{
					ArtifactLocation: SARIFArtifactLocation{
						URI:       artifactURI(reg, res),
						URIBaseID: srcRootID,
					},
				},
			},
		}
		results = append(results, result)
	}

	run := SARIFRun{
		Tool: SARIFTool{
			Driver: SARIFDriver{
				Name:           version.ToolName,
				InformationURI: informationURI,
				Version:        version.Version,
				Rules:          rules,
			},
		},
		AutomationDetails: SARIFAutomationDetails{
			ID:   version.ToolName + "/" + pol.Profile + "/",
			GUID: newGUID(),
		},
		Results: results,
		Properties: map[string]any{
			"profile":     pol.Profile,
			"rule_pack":   optional(pol.RulePack),
			"strict":      pol.Strict,
			"secret_scan": pol.SecretScan,
			"config_path": optional(pol.ConfigPath),
			"diff_mode":   pol.DiffMode,
			"pr_base_ref": pol.PRBaseRef,
			"diff_base":   pol.DiffBase,
			"diff_target": pol.DiffTarget,
			"exit_code":   r.ExitCode,
		},
	}
	if uri := rootURI(r.Path); uri != "" {
		run.OriginalURIBaseIDs = map[string]SARIFArtifactLocation{
			srcRootID: {URI: uri},
		}
	}

	return &SARIF{
		Version: sarifVersion,
		Schema:  sarifSchema,
		Runs:    []SARIFRun{run},
	}
}

func sarifLevel(st checks.Status) (string, bool) {
	switch st {
	case checks.StatusFail:
		return "error", true
	case checks.StatusWarn:
		return "warning", true
	default:
		return "", false
	}
}

// artifactURI picks the path a result points at: the offending path the
// check reported, then the file the check inspects, then the repository root.
func artifactURI(reg *checks.Registry, res checks.CheckResult) string {
	if res.Location != "" {
		return res.Location
	}
	if c, ok := reg.Lookup(res.ID); ok && c.Artifact != "" {
		return c.Artifact
	}
	return repoRootURI
}

func resultText(res checks.CheckResult) string {
	if res.Fix == "" {
		return res.Message
	}
	return res.Message + " Fix: " + res.Fix
}

// fingerprint is stable for the same check reporting the same finding.
func fingerprint(res checks.CheckResult) string {
	sum := blake3.Sum256([]byte(res.ID + "\x00" + string(res.Status) + "\x00" + res.Message))
	return hex.EncodeToString(sum[:16])
}

func rootURI(path string) string {
	if path == "" {
		return ""
	}
	abs, err := filepath.Abs(path)
	if err != nil {
		return ""
	}
	u := url.URL{Scheme: "file", Path: filepath.ToSlash(abs) + "/"}
	return u.String()
}

// WriteSARIF writes the SARIF log as indented JSON.
func WriteSARIF(w io.Writer, r *Report) error {
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(ToSARIF(r))
}
