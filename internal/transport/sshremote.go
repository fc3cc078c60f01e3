// SPDX-License-Identifier: MPL-2.0

package transport

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"os"
	"strconv"
	"strings"
	"time"

	"golang.org/x/crypto/ssh"
)

type (
	// SSHTransport executes commands over an established SSH connection.
	// Each Run opens one session; the remote exit status is reported
	// verbatim. Privilege escalation is the remote account's concern, so
	// no sudo prefixing happens here.
	SSHTransport struct {
		client SSHSessionClient
	}

	// SSHSessionClient is the subset of *ssh.Client the transport needs.
	// Tests substitute a fake that returns scripted sessions.
	SSHSessionClient interface {
		NewSession() (*ssh.Session, error)
	}

	// SSHConfig carries the settings needed to open an SSH connection.
	SSHConfig struct {
		// Host is the remote hostname or address (required).
		Host string
		// Port is the SSH port; zero means 22.
		Port int
		// User is the remote login name (required).
		User string
		// KeyPath is a PEM private key file used for public-key auth.
		KeyPath string
		// Password enables password auth when KeyPath is empty or as fallback.
		Password string
		// HostKeyCallback verifies the server key. Nil accepts any host key,
		// which matches the interactive-provisioning use case but must not be
		// used against untrusted networks.
		HostKeyCallback ssh.HostKeyCallback
		// DialTimeout bounds connection establishment; zero means 30s.
		DialTimeout time.Duration
	}
)

// NewSSHTransport wraps an established SSH connection.
// The caller owns the connection and closes it after the last command.
func NewSSHTransport(client SSHSessionClient) *SSHTransport {
	return &SSHTransport{client: client}
}

// Context returns the transport label.
func (t *SSHTransport) Context() string { return ContextSSH }

// RunUser executes command as the authenticated SSH account. Sessions
// already run unescalated, so this is Run under another name.
func (t *SSHTransport) RunUser(ctx context.Context, command string, timeout time.Duration) Result {
	return t.Run(ctx, command, timeout)
}

// Run executes command in a fresh session on the remote host.
func (t *SSHTransport) Run(ctx context.Context, command string, timeout time.Duration) Result {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	slog.Debug("running remote command", "command", command)

	session, err := t.client.NewSession()
	if err != nil {
		return failure("open SSH session: " + err.Error())
	}
	defer session.Close()

	var stdout, stderr bytes.Buffer
	session.Stdout = &stdout
	session.Stderr = &stderr

	done := make(chan error, 1)
	go func() {
		done <- session.Run(command)
	}()

	select {
	case <-ctx.Done():
		// Closing the session unblocks the Run goroutine. The remote command
		// cannot be resumed or cancelled beyond this; callers retry fresh.
		_ = session.Close()
		return failure("remote command timed out after " + timeout.String())
	case err = <-done:
	}

	res := Result{
		Stdout: strings.TrimSpace(stdout.String()),
		Stderr: strings.TrimSpace(stderr.String()),
	}

	if err != nil {
		var exitErr *ssh.ExitError
		if errors.As(err, &exitErr) {
			res.ExitCode = exitErr.ExitStatus()
		} else {
			return failure("remote execution: " + err.Error())
		}
	}

	slog.Debug("remote command finished",
		"exit", res.ExitCode,
		"stdout", truncate(res.Stdout, 100),
		"stderr", truncate(res.Stderr, 100))

	return res
}

// Validate returns an error if required SSHConfig fields are missing.
func (c SSHConfig) Validate() error {
	if strings.TrimSpace(c.Host) == "" {
		return errors.New("ssh host is required")
	}
	if strings.TrimSpace(c.User) == "" {
		return errors.New("ssh user is required")
	}
	if c.KeyPath == "" && c.Password == "" {
		return errors.New("ssh key path or password is required")
	}
	return nil
}

// DialSSH opens an SSH connection from the given config.
func DialSSH(cfg SSHConfig) (*ssh.Client, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	var auth []ssh.AuthMethod
	if cfg.KeyPath != "" {
		key, err := os.ReadFile(cfg.KeyPath)
		if err != nil {
			return nil, fmt.Errorf("read SSH key %s: %w", cfg.KeyPath, err)
		}
		signer, err := ssh.ParsePrivateKey(key)
		if err != nil {
			return nil, fmt.Errorf("parse SSH key %s: %w", cfg.KeyPath, err)
		}
		auth = append(auth, ssh.PublicKeys(signer))
	}
	if cfg.Password != "" {
		auth = append(auth, ssh.Password(cfg.Password))
	}

	hostKey := cfg.HostKeyCallback
	if hostKey == nil {
		hostKey = ssh.InsecureIgnoreHostKey() //nolint:gosec // documented on SSHConfig
	}

	dialTimeout := cfg.DialTimeout
	if dialTimeout <= 0 {
		dialTimeout = 30 * time.Second
	}

	port := cfg.Port
	if port == 0 {
		port = 22
	}

	addr := net.JoinHostPort(cfg.Host, strconv.Itoa(port))
	client, err := ssh.Dial("tcp", addr, &ssh.ClientConfig{
		User:            cfg.User,
		Auth:            auth,
		HostKeyCallback: hostKey,
		Timeout:         dialTimeout,
	})
	if err != nil {
		return nil, fmt.Errorf("dial %s: %w", addr, err)
	}
	return client, nil
}
