package report

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/felixgeelhaar/repo-preflight/internal/checks"
)

var (
	passStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("10")).
			Bold(true)

	warnStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("11")).
			Bold(true)

	failStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("9")).
			Bold(true)

	contextKeyStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("241"))

	fixStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("245")).
			Italic(true)
)

type painter struct {
	color bool
}

func (p painter) paint(s lipgloss.Style, text string) string {
	if !p.color {
		return text
	}
	return s.Render(text)
}

func (p painter) status(st checks.Status, text string) string {
	switch st {
	case checks.StatusPass:
		return p.paint(passStyle, text)
	case checks.StatusWarn:
		return p.paint(warnStyle, text)
	default:
		return p.paint(failStyle, text)
	}
}

func verdictStatus(verdict string) checks.Status {
	switch verdict {
	case "PASS":
		return checks.StatusPass
	case "WARN":
		return checks.StatusWarn
	default:
		return checks.StatusFail
	}
}

// WriteHuman renders the terminal report. Styling is applied only when color
// is true.
func WriteHuman(w io.Writer, r *Report, color bool) error {
	p := painter{color: color}
	pol := r.Policy
	var b strings.Builder

	verdict := r.Verdict()
	fmt.Fprintf(&b, "repo-preflight: %s (%d fail, %d warn, %d pass)\n",
		p.status(verdictStatus(verdict), verdict), r.Summary.Fail, r.Summary.Warn, r.Summary.Pass)

	line := func(key, value string) {
		fmt.Fprintf(&b, "%s %s\n", p.paint(contextKeyStyle, key+":"), value)
	}
	line("path", r.Path)
	line("profile", pol.Profile)
	line("rule pack", orNone(pol.RulePack))
	line("mode", modeName(pol.Strict))
	line("config", orNone(pol.ConfigPath))
	th := pol.Thresholds
	line("thresholds", fmt.Sprintf(
		"file=%dKiB history=%dKiB history_objects=%d diff_files=%d diff_lines=%d diff_object=%dKiB",
		th.MaxTrackedFileKiB, th.MaxHistoryBlobKiB, th.HistoryObjectLimit,
		th.MaxDiffFiles, th.MaxDiffChangedLines, th.MaxDiffObjectKiB))
	line("diff", diffLine(pol.DiffMode, pol.DiffBase, pol.DiffTarget))
	line("checks", strings.Join(pol.CheckIDs, ", "))

	for _, res := range r.Results {
		marker := "[" + strings.ToUpper(string(res.Status)) + "]"
		fmt.Fprintf(&b, "- %s %s: %s\n", p.status(res.Status, marker), res.ID, res.Message)
		if res.Fix != "" && res.Status != checks.StatusPass {
			fmt.Fprintf(&b, "  %s\n", p.paint(fixStyle, "fix: "+res.Fix))
		}
	}

	_, err := io.WriteString(w, b.String())
	return err
}

func orNone(s string) string {
	if s == "" {
		return "none"
	}
	return s
}

func modeName(strict bool) string {
	if strict {
		return "strict"
	}
	return "default"
}

func diffLine(mode, base, target string) string {
	if base == "" {
		return mode + " (no base)"
	}
	return fmt.Sprintf("%s %s...%s", mode, base, target)
}
