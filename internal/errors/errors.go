package errors

import (
	"fmt"
	"strings"
)

// ErrorCode represents a unique error identifier
type ErrorCode string

// Error categories
const (
	// Configuration errors (CONFIG-001 to CONFIG-099)
	ErrCodeConfigNotFound     ErrorCode = "CONFIG-001"
	ErrCodeConfigUnmarshal    ErrorCode = "CONFIG-002"
	ErrCodeConfigUnknownKey   ErrorCode = "CONFIG-003"
	ErrCodeConfigInvalidValue ErrorCode = "CONFIG-004"

	// Policy errors (POLICY-001 to POLICY-099)
	ErrCodeProfileUnknown   ErrorCode = "POLICY-001"
	ErrCodeRulePackUnknown  ErrorCode = "POLICY-002"
	ErrCodeCheckUnknown     ErrorCode = "POLICY-003"
	ErrCodeOverrideUnknown  ErrorCode = "POLICY-004"
	ErrCodeThresholdInvalid ErrorCode = "POLICY-005"
	ErrCodeDiffModeInvalid  ErrorCode = "POLICY-006"

	// Usage errors (USAGE-001 to USAGE-099)
	ErrCodePathInvalid     ErrorCode = "USAGE-001"
	ErrCodeFlagInvalid     ErrorCode = "USAGE-002"
	ErrCodeOutputExists    ErrorCode = "USAGE-003"
	ErrCodeRulePackMissing ErrorCode = "USAGE-004"

	// File I/O errors (IO-001 to IO-099)
	ErrCodeFileReadFailed  ErrorCode = "IO-001"
	ErrCodeFileWriteFailed ErrorCode = "IO-002"
)

const docsBase = "https://github.com/felixgeelhaar/repo-preflight"

// PreflightError represents an error with code, suggestions, and documentation
type PreflightError struct {
	Code        ErrorCode
	Message     string
	Suggestions []string
	DocsURL     string
	Cause       error
}

// Error implements the error interface
func (e *PreflightError) Error() string {
	var b strings.Builder

	b.WriteString(fmt.Sprintf("[%s] %s", e.Code, e.Message))

	if e.Cause != nil {
		b.WriteString(fmt.Sprintf(": %v", e.Cause))
	}

	if len(e.Suggestions) > 0 {
		b.WriteString("\n\nSuggestions:")
		for _, suggestion := range e.Suggestions {
			b.WriteString(fmt.Sprintf("\n  • %s", suggestion))
		}
	}

	if e.DocsURL != "" {
		b.WriteString(fmt.Sprintf("\n\nDocumentation: %s", e.DocsURL))
	}

	return b.String()
}

// Unwrap implements error unwrapping for errors.Is and errors.As
func (e *PreflightError) Unwrap() error {
	return e.Cause
}

// New creates a new PreflightError
func New(code ErrorCode, message string) *PreflightError {
	return &PreflightError{
		Code:    code,
		Message: message,
	}
}

// Wrap creates a new PreflightError wrapping an existing error
func Wrap(code ErrorCode, message string, cause error) *PreflightError {
	return &PreflightError{
		Code:    code,
		Message: message,
		Cause:   cause,
	}
}

// WithSuggestion adds a suggestion to the error
func (e *PreflightError) WithSuggestion(suggestion string) *PreflightError {
	e.Suggestions = append(e.Suggestions, suggestion)
	return e
}

// WithSuggestions adds multiple suggestions to the error
func (e *PreflightError) WithSuggestions(suggestions ...string) *PreflightError {
	e.Suggestions = append(e.Suggestions, suggestions...)
	return e
}

// WithDocs adds a documentation URL to the error
func (e *PreflightError) WithDocs(url string) *PreflightError {
	e.DocsURL = url
	return e
}

// HasCode reports whether err is a PreflightError carrying code.
func HasCode(err error, code ErrorCode) bool {
	for err != nil {
		if pe, ok := err.(*PreflightError); ok && pe.Code == code {
			return true
		}
		u, ok := err.(interface{ Unwrap() error })
		if !ok {
			return false
		}
		err = u.Unwrap()
	}
	return false
}

// Common error constructors for frequently used errors

// NewProfileUnknownError creates an unknown profile error
func NewProfileUnknownError(name string, known []string) *PreflightError {
	return New(ErrCodeProfileUnknown, fmt.Sprintf("unknown profile: %s", name)).
		WithSuggestion(fmt.Sprintf("Use one of: %s", strings.Join(known, ", "))).
		WithDocs(docsBase + "#profiles")
}

// NewRulePackUnknownError creates an unknown rule pack error
func NewRulePackUnknownError(name string) *PreflightError {
	return New(ErrCodeRulePackUnknown, fmt.Sprintf("unknown rule pack: %s", name)).
		WithSuggestion("Run 'repo-preflight list-rule-packs' to see available rule packs").
		WithDocs(docsBase + "#rule-packs")
}

// NewUnknownChecksError creates an error naming check ids missing from the registry
func NewUnknownChecksError(where string, ids []string) *PreflightError {
	return New(ErrCodeCheckUnknown, fmt.Sprintf("unknown check ids in %s: %s", where, strings.Join(ids, ", "))).
		WithSuggestion("Run 'repo-preflight list-checks' to see valid check ids")
}

// NewUnknownOverridesError creates an error naming severity override keys missing from the registry
func NewUnknownOverridesError(ids []string) *PreflightError {
	return New(ErrCodeOverrideUnknown, fmt.Sprintf("unknown check ids in severity_overrides: %s", strings.Join(ids, ", "))).
		WithSuggestion("Run 'repo-preflight list-checks' to see valid check ids")
}

// NewThresholdError creates a non-positive threshold error
func NewThresholdError(name string, value int) *PreflightError {
	return New(ErrCodeThresholdInvalid, fmt.Sprintf("%s must be a positive integer, got %d", name, value)).
		WithSuggestion("Remove the setting to inherit the default, or use a value of at least 1")
}

// NewConfigValueError creates an invalid config value error for key
func NewConfigValueError(path, key, detail string) *PreflightError {
	return New(ErrCodeConfigInvalidValue, fmt.Sprintf("config key '%s' %s", key, detail)).
		WithSuggestion(fmt.Sprintf("Fix the value in %s", path)).
		WithDocs(docsBase + "#configuration")
}

// NewConfigUnmarshalError creates a parse error for a config file
func NewConfigUnmarshalError(path string, cause error) *PreflightError {
	return Wrap(ErrCodeConfigUnmarshal, fmt.Sprintf("failed to parse config file: %s", path), cause).
		WithSuggestion("Check the file syntax and format").
		WithSuggestion("Generate a starter file with 'repo-preflight policy-template --rule-pack <name>'")
}

// NewFileNotFoundError creates a file not found error
func NewFileNotFoundError(path string) *PreflightError {
	return New(ErrCodeConfigNotFound, fmt.Sprintf("config file not found: %s", path)).
		WithSuggestion("Check if the file path is correct").
		WithSuggestion("Use --no-config to run without a config file")
}
