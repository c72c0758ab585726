// Package tui holds the interactive prompts used when a command runs on a
// terminal.
package tui

import (
	"fmt"
	"io"
	"os"

	"github.com/charmbracelet/huh"
	"golang.org/x/term"
)

// ciEnvVars mark non-interactive pipelines even when a TTY is attached.
var ciEnvVars = []string{
	"CI",
	"GITHUB_ACTIONS",
	"GITLAB_CI",
	"JENKINS_URL",
	"TRAVIS",
	"CIRCLECI",
	"BUILDKITE",
}

// Choice is one entry in a selection prompt.
type Choice struct {
	Value       string
	Description string
}

// Label renders the choice as shown in the prompt.
func (c Choice) Label() string {
	if c.Description == "" {
		return c.Value
	}
	return fmt.Sprintf("%s - %s", c.Value, c.Description)
}

// IsTerminal reports whether r is an *os.File attached to a terminal.
func IsTerminal(r io.Reader) bool {
	f, ok := r.(*os.File)
	if !ok {
		return false
	}
	return term.IsTerminal(int(f.Fd()))
}

// ShouldPrompt returns true if prompts should be shown for input read from
// in. Prompts are disabled in CI environments or when in is not a terminal.
func ShouldPrompt(in io.Reader, getenv func(string) string) bool {
	if getenv == nil {
		getenv = os.Getenv
	}
	for _, envVar := range ciEnvVars {
		if getenv(envVar) != "" {
			return false
		}
	}
	return IsTerminal(in)
}

// PromptForSelect displays a selection prompt and returns the chosen value.
func PromptForSelect(in io.Reader, out io.Writer, title string, choices []Choice) (string, error) {
	if len(choices) == 0 {
		return "", fmt.Errorf("no options provided")
	}

	options := make([]huh.Option[string], len(choices))
	for i, c := range choices {
		options[i] = huh.NewOption(c.Label(), c.Value)
	}

	selected := choices[0].Value
	selectField := huh.NewSelect[string]().
		Title(title).
		Options(options...).
		Value(&selected)

	form := huh.NewForm(huh.NewGroup(selectField)).
		WithInput(in).
		WithOutput(out)

	if err := form.Run(); err != nil {
		return "", fmt.Errorf("prompt failed: %w", err)
	}

	return selected, nil
}
