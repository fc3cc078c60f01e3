// SPDX-License-Identifier: MPL-2.0

package transport

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"os"
	"os/exec"
	"strings"
	"time"
)

type (
	// LocalTransport executes commands as local processes through `sh -c`.
	//
	// The privilege policy is decided once at construction: when the process
	// is not running as root, every command is silently prefixed with
	// `sudo -n` so that container-runtime operations work on hosts where the
	// daemon is root-only. Callers never build sudo prefixes themselves.
	LocalTransport struct {
		execCommand ExecCommandFunc
		shellPath   string
		privileged  bool
	}

	// LocalOption configures a LocalTransport.
	LocalOption func(*LocalTransport)
)

// WithExecCommand sets a custom exec command function for testing.
func WithExecCommand(fn ExecCommandFunc) LocalOption {
	return func(t *LocalTransport) {
		t.execCommand = fn
	}
}

// WithPrivileged overrides the euid-based privilege detection.
// Privileged transports never prepend an escalation prefix.
func WithPrivileged(privileged bool) LocalOption {
	return func(t *LocalTransport) {
		t.privileged = privileged
	}
}

// WithShellPath sets the shell used to interpret command strings.
func WithShellPath(path string) LocalOption {
	return func(t *LocalTransport) {
		t.shellPath = path
	}
}

// NewLocalTransport creates a transport that spawns processes on this host.
func NewLocalTransport(opts ...LocalOption) *LocalTransport {
	t := &LocalTransport{
		execCommand: exec.CommandContext,
		shellPath:   "/bin/sh",
		privileged:  os.Geteuid() == 0,
	}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

// Context returns the transport label.
func (t *LocalTransport) Context() string { return ContextLocal }

// Privileged reports whether commands run without an escalation prefix.
func (t *LocalTransport) Privileged() bool { return t.privileged }

// Run executes command through the shell, escalating when required.
// Escalation wraps the whole command in `sudo -n sh -c <command>` so that
// pipelines and redirections run inside the privileged shell, not just the
// first simple command.
func (t *LocalTransport) Run(ctx context.Context, command string, timeout time.Duration) Result {
	full := command
	escalated := false
	if !t.privileged {
		// Non-interactive sudo: fail rather than hang on a password prompt.
		full = "sudo -n sh -c " + Quote(command)
		escalated = true
	}
	return t.execute(ctx, command, full, timeout, escalated)
}

// RunUser executes command as the invoking account, never escalating. Used
// for user-scope operations such as `systemctl --user` that must not run as
// root even when the transport's privilege policy escalates everything else.
func (t *LocalTransport) RunUser(ctx context.Context, command string, timeout time.Duration) Result {
	return t.execute(ctx, command, command, timeout, false)
}

func (t *LocalTransport) execute(ctx context.Context, command, full string, timeout time.Duration, escalated bool) Result {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	slog.Debug("running local command", "command", full)

	cmd := t.execCommand(ctx, t.shellPath, "-c", full)

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	err := cmd.Run()

	res := Result{
		ExitCode: 0,
		Stdout:   strings.TrimSpace(stdout.String()),
		Stderr:   strings.TrimSpace(stderr.String()),
	}

	if err != nil {
		var exitErr *exec.ExitError
		// A process killed at the deadline surfaces as an ExitError with
		// code -1, so the context has to be consulted first.
		switch {
		case errors.Is(ctx.Err(), context.DeadlineExceeded):
			return failure("command timed out after " + timeout.String())
		case ctx.Err() != nil:
			return failure("command aborted: " + ctx.Err().Error())
		case errors.As(err, &exitErr):
			res.ExitCode = exitErr.ExitCode()
		default:
			return failure(err.Error())
		}
	}

	if escalated && res.ExitCode != 0 && sudoPasswordRequired(res.Stderr) {
		slog.Error("privilege escalation requires a password", "command", command)
		res.PrivilegeDenied = true
		res.Stderr = "sudo password required or NOPASSWD not configured. " + res.Stderr
	}

	slog.Debug("local command finished",
		"exit", res.ExitCode,
		"stdout", truncate(res.Stdout, 100),
		"stderr", truncate(res.Stderr, 100))

	return res
}

// truncate shortens s for debug logging.
func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
