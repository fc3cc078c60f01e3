// SPDX-License-Identifier: MPL-2.0

package issue

import (
	"errors"
	"strings"
	"testing"
)

func TestActionableError_Error(t *testing.T) {
	tests := []struct {
		name     string
		err      *ActionableError
		expected string
	}{
		{
			name: "operation only",
			err: &ActionableError{
				Operation: "create container",
			},
			expected: "failed to create container",
		},
		{
			name: "operation with resource",
			err: &ActionableError{
				Operation: "create container",
				Resource:  "ubuntu:latest",
			},
			expected: "failed to create container: ubuntu:latest",
		},
		{
			name: "operation with cause",
			err: &ActionableError{
				Operation: "inspect container",
				Cause:     errors.New("malformed JSON"),
			},
			expected: "failed to inspect container: malformed JSON",
		},
		{
			name: "full context",
			err: &ActionableError{
				Operation: "install NVIDIA container toolkit",
				Resource:  "gentoo",
				Cause:     errors.New("unsupported distribution"),
			},
			expected: "failed to install NVIDIA container toolkit: gentoo: unsupported distribution",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := tt.err.Error()
			if got != tt.expected {
				t.Errorf("Error() = %q, want %q", got, tt.expected)
			}
		})
	}
}

func TestActionableError_Unwrap(t *testing.T) {
	cause := errors.New("underlying error")
	err := &ActionableError{
		Operation: "stop container",
		Cause:     cause,
	}

	if !errors.Is(err, cause) {
		t.Error("errors.Is should match the wrapped cause")
	}
}

func TestErrorContext_Build(t *testing.T) {
	cause := errors.New("exit status 125")

	err := NewErrorContext().
		WithOperation("create container").
		WithResource("podsmith-1700000000-a1b2c3d4").
		WithSuggestion("Check that volume mount paths exist on the host").
		WithSuggestion("Ensure port mappings don't conflict with running services").
		Wrap(cause).
		Build()

	if err == nil {
		t.Fatal("Build() returned nil with operation set")
	}
	if err.Operation != "create container" {
		t.Errorf("Operation = %q", err.Operation)
	}
	if err.Resource != "podsmith-1700000000-a1b2c3d4" {
		t.Errorf("Resource = %q", err.Resource)
	}
	if len(err.Suggestions) != 2 {
		t.Errorf("Suggestions = %d, want 2", len(err.Suggestions))
	}
	if !errors.Is(err, cause) {
		t.Error("cause not wrapped")
	}
}

func TestErrorContext_BuildWithoutOperation(t *testing.T) {
	if NewErrorContext().WithResource("x").Build() != nil {
		t.Error("Build() without operation should return nil")
	}
	if NewErrorContext().WithResource("x").BuildError() != nil {
		t.Error("BuildError() without operation should return nil")
	}
}

func TestActionableError_Format(t *testing.T) {
	err := NewErrorContext().
		WithOperation("detect GPU").
		WithSuggestion("Install the NVIDIA driver package for your distribution").
		Wrap(errors.New("nvidia-smi not found")).
		Build()

	plain := err.Format(false)
	if !strings.Contains(plain, "failed to detect GPU") {
		t.Errorf("Format(false) missing message: %q", plain)
	}
	if !strings.Contains(plain, "• Install the NVIDIA driver package") {
		t.Errorf("Format(false) missing suggestion: %q", plain)
	}
	if strings.Contains(plain, "Error chain") {
		t.Error("Format(false) should not include the error chain")
	}

	verbose := err.Format(true)
	if !strings.Contains(verbose, "Error chain:") {
		t.Errorf("Format(true) missing error chain: %q", verbose)
	}
}

func TestWrapWithOperation(t *testing.T) {
	if WrapWithOperation(nil, "noop") != nil {
		t.Error("wrapping nil should return nil")
	}

	cause := errors.New("boom")
	err := WrapWithContext(cause, "remove container", "web-1")
	if err == nil || err.Resource != "web-1" {
		t.Fatalf("WrapWithContext = %+v", err)
	}
}
