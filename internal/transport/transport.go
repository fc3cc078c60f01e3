// SPDX-License-Identifier: MPL-2.0

package transport

import (
	"context"
	"os/exec"
	"strings"
	"time"
)

const (
	// ContextLocal labels a transport that spawns processes on this host.
	ContextLocal = "local"
	// ContextSSH labels a transport that executes over a remote SSH session.
	ContextSSH = "ssh"

	// DefaultTimeout bounds a single command when the caller passes zero.
	DefaultTimeout = 120 * time.Second

	// transportFailureCode is reported when the command never produced a
	// remote exit status: spawn failure, session failure, or timeout.
	transportFailureCode = -1
)

type (
	// Transport executes a command and reports its outcome.
	// Implementations must not return partial output: stdout and stderr are
	// read to completion before the Result is built.
	Transport interface {
		// Run executes command through a shell with the given timeout.
		// A zero timeout means DefaultTimeout. Run never panics and never
		// returns an error; failures are encoded in the Result.
		Run(ctx context.Context, command string, timeout time.Duration) Result

		// Context returns the transport label ("local" or "ssh") used in logs.
		Context() string
	}

	// UserRunner is implemented by transports that can execute a command as
	// the invoking account regardless of the transport's escalation policy.
	// Callers with user-scope commands (`systemctl --user`, writes under the
	// account's home) type-assert for it and fall back to Run.
	UserRunner interface {
		RunUser(ctx context.Context, command string, timeout time.Duration) Result
	}

	// ExecCommandFunc is the function signature for creating exec.Cmd.
	// This allows injection of mock implementations for testing.
	ExecCommandFunc func(ctx context.Context, name string, arg ...string) *exec.Cmd

	// Result is the outcome of one command execution.
	Result struct {
		// ExitCode is the command's exit status. transport failures and
		// timeouts report -1, which is never a valid process exit status.
		ExitCode int
		// Stdout is the command's standard output, trailing whitespace trimmed.
		Stdout string
		// Stderr is the command's standard error, trailing whitespace trimmed.
		// For transport failures it carries the failure description instead.
		Stderr string
		// PrivilegeDenied is set when the command failed specifically because
		// non-interactive privilege escalation would have required a password.
		// It distinguishes an actionable sudo misconfiguration from a generic
		// command failure.
		PrivilegeDenied bool
	}
)

// Success reports whether the command exited zero.
func (r Result) Success() bool { return r.ExitCode == 0 }

// TransportFailed reports whether the failure happened below the command:
// the process could not be spawned, the session broke, or the timeout fired.
func (r Result) TransportFailed() bool { return r.ExitCode == transportFailureCode }

// failure builds a transport-failure Result from an error description.
func failure(desc string) Result {
	return Result{ExitCode: transportFailureCode, Stderr: strings.TrimSpace(desc)}
}

// sudoPasswordRequired matches the stderr emitted by `sudo -n` when
// interactive authentication would be needed.
func sudoPasswordRequired(stderr string) bool {
	return strings.Contains(stderr, "a password is required")
}
