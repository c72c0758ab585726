package tui

import (
	"bytes"
	"strings"
	"testing"
)

func TestIsTerminal(t *testing.T) {
	if IsTerminal(strings.NewReader("")) {
		t.Error("a strings.Reader is never a terminal")
	}
}

func TestShouldPrompt(t *testing.T) {
	tests := []struct {
		name string
		env  map[string]string
	}{
		{"GitHub Actions", map[string]string{"GITHUB_ACTIONS": "true"}},
		{"GitLab CI", map[string]string{"GITLAB_CI": "true"}},
		{"Jenkins", map[string]string{"JENKINS_URL": "http://jenkins.local"}},
		{"Generic CI", map[string]string{"CI": "true"}},
		{"no CI but piped input", map[string]string{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			getenv := func(k string) string { return tt.env[k] }
			if ShouldPrompt(&bytes.Buffer{}, getenv) {
				t.Errorf("ShouldPrompt() = true, want false (env: %v)", tt.env)
			}
		})
	}
}

func TestChoiceLabel(t *testing.T) {
	if got := (Choice{Value: "oss-library"}).Label(); got != "oss-library" {
		t.Errorf("Label() = %q", got)
	}
	c := Choice{Value: "cli-tool", Description: "CLI defaults"}
	if got := c.Label(); got != "cli-tool - CLI defaults" {
		t.Errorf("Label() = %q", got)
	}
}

func TestPromptForSelectNoOptions(t *testing.T) {
	_, err := PromptForSelect(&bytes.Buffer{}, &bytes.Buffer{}, "Choose:", nil)
	if err == nil {
		t.Error("expected error when no options provided, got nil")
	}
}
