// SPDX-License-Identifier: MPL-2.0

package issue

import (
	"errors"
	"fmt"
	"strings"
	"testing"
)

func TestActionableError_Error(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		err      *ActionableError
		expected string
	}{
		{
			name:     "operation only",
			err:      &ActionableError{Operation: "resolve components"},
			expected: "failed to resolve components",
		},
		{
			name:     "operation with resource",
			err:      &ActionableError{Operation: "load component manifest", Resource: "/opt/ruby/cabar.cue"},
			expected: "failed to load component manifest: /opt/ruby/cabar.cue",
		},
		{
			name:     "operation with cause",
			err:      &ActionableError{Operation: "load configuration", Cause: errors.New("syntax error at line 5")},
			expected: "failed to load configuration: syntax error at line 5",
		},
		{
			name: "full context",
			err: &ActionableError{
				Operation: "load component manifest",
				Resource:  "/opt/ruby/cabar.cue",
				Cause:     errors.New("version: incomplete value"),
			},
			expected: "failed to load component manifest: /opt/ruby/cabar.cue: version: incomplete value",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if got := tt.err.Error(); got != tt.expected {
				t.Errorf("Error() = %q, want %q", got, tt.expected)
			}
		})
	}
}

func TestActionableError_ErrorsIs(t *testing.T) {
	t.Parallel()

	sentinel := errors.New("sentinel")
	err := NewErrorContext().
		WithOperation("resolve components").
		Wrap(fmt.Errorf("layer: %w", sentinel)).
		BuildError()
	if !errors.Is(err, sentinel) {
		t.Error("errors.Is must see through ActionableError")
	}
	if (&ActionableError{Operation: "x"}).Unwrap() != nil {
		t.Error("Unwrap() should return nil when no cause")
	}
}

func TestActionableError_Format(t *testing.T) {
	t.Parallel()

	err := NewErrorContext().
		WithOperation("compose facets").
		WithSuggestion("Unset JAVA_HOME").
		WithSuggestions("Run with --no-env", "Edit the manifest").
		Wrap(fmt.Errorf("outer: %w", errors.New("inner"))).
		Build()

	plain := err.Format(false)
	for _, want := range []string{"failed to compose facets", "• Unset JAVA_HOME", "• Run with --no-env", "• Edit the manifest"} {
		if !strings.Contains(plain, want) {
			t.Errorf("Format(false) missing %q:\n%s", want, plain)
		}
	}
	if strings.Contains(plain, "Error chain") {
		t.Error("Format(false) must not print the error chain")
	}

	verbose := err.Format(true)
	if !strings.Contains(verbose, "1. outer: inner") || !strings.Contains(verbose, "2. inner") {
		t.Errorf("Format(true) missing chain:\n%s", verbose)
	}
	if !err.HasSuggestions() {
		t.Error("HasSuggestions() = false")
	}
}

func TestErrorContext_BuildWithoutOperation(t *testing.T) {
	t.Parallel()

	if NewErrorContext().WithResource("x").Build() != nil {
		t.Error("Build() without operation must return nil")
	}
	if NewErrorContext().BuildError() != nil {
		t.Error("BuildError() without operation must return nil")
	}
	if WrapWithOperation(nil, "x") != nil {
		t.Error("WrapWithOperation(nil) must return nil")
	}
}

func TestIssueOf(t *testing.T) {
	t.Parallel()

	err := NewErrorContext().WithOperation("resolve components").WithIssue(UnresolvedComponentId).BuildError()
	if got := IssueOf(fmt.Errorf("cmd: %w", err)); got != UnresolvedComponentId {
		t.Errorf("IssueOf() = %d, want %d", got, UnresolvedComponentId)
	}
	if got := IssueOf(errors.New("plain")); got != 0 {
		t.Errorf("IssueOf(plain) = %d, want 0", got)
	}
}
