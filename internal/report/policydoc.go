package report

import (
	"fmt"
	"strings"

	"github.com/dustin/go-humanize"

	"github.com/felixgeelhaar/repo-preflight/internal/checks"
	"github.com/felixgeelhaar/repo-preflight/internal/policy"
)

// PolicyDoc renders the effective policy as Markdown.
func PolicyDoc(path string, pol *policy.Resolved) string {
	return PolicyDocWith(checks.Default(), path, pol)
}

// PolicyDocWith is PolicyDoc with check titles taken from reg.
func PolicyDocWith(reg *checks.Registry, path string, pol *policy.Resolved) string {
	var b strings.Builder

	b.WriteString("# repo-preflight policy\n\n")
	fmt.Fprintf(&b, "Generated for `%s`.\n\n", path)

	b.WriteString("## Settings\n\n")
	item := func(label, value string) {
		fmt.Fprintf(&b, "- %s: `%s`\n", label, value)
	}
	item("Profile", pol.Profile)
	item("Rule pack", orNone(pol.RulePack))
	item("Strict", fmt.Sprint(pol.Strict))
	item("Secret scan", fmt.Sprint(pol.SecretScan))
	item("Config", orNone(pol.ConfigPath))
	item("Diff mode", pol.DiffMode)
	item("PR base ref", pol.PRBaseRef)
	item("Diff base", orNone(pol.DiffBase))
	item("Diff target", pol.DiffTarget)

	b.WriteString("\n## Thresholds\n\n")
	th := pol.Thresholds
	for _, t := range []struct {
		label string
		value int
		kib   bool
	}{
		{"Max tracked file KiB", th.MaxTrackedFileKiB, true},
		{"Max history blob KiB", th.MaxHistoryBlobKiB, true},
		{"History object limit", th.HistoryObjectLimit, false},
		{"Max diff files", th.MaxDiffFiles, false},
		{"Max diff changed lines", th.MaxDiffChangedLines, false},
		{"Max diff object KiB", th.MaxDiffObjectKiB, true},
	} {
		if t.kib {
			fmt.Fprintf(&b, "- %s: `%d` (%s)\n", t.label, t.value, humanize.IBytes(uint64(t.value)*1024))
			continue
		}
		fmt.Fprintf(&b, "- %s: `%d`\n", t.label, t.value)
	}

	b.WriteString("\n## Active checks\n\n")
	for _, id := range pol.CheckIDs {
		if c, ok := reg.Lookup(id); ok {
			fmt.Fprintf(&b, "- `%s`: %s\n", id, c.Title)
			continue
		}
		fmt.Fprintf(&b, "- `%s`\n", id)
	}

	b.WriteString("\n## Severity overrides\n\n")
	ids := pol.OverrideIDs()
	if len(ids) == 0 {
		b.WriteString("None.\n")
	}
	suppressed := false
	for _, id := range ids {
		status := pol.SeverityOverrides[id]
		fmt.Fprintf(&b, "- `%s` -> `%s`\n", id, status)
		if status == checks.StatusPass {
			suppressed = true
		}
	}
	if suppressed {
		b.WriteString("\n> Overriding a check to `pass` suppresses its findings entirely; the original status only appears in the result message.\n")
	}

	return b.String()
}
