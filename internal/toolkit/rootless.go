// SPDX-License-Identifier: MPL-2.0

package toolkit

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"podsmith/internal/issue"
	"podsmith/internal/transport"
)

const (
	notFoundMarker   = "not-found"
	notRunningMarker = "not-running"
	verifyFailMarker = "verification failed"

	// rootlessSocket resolves the per-user Docker socket path at execution
	// time on the target host.
	rootlessSocket = "${XDG_RUNTIME_DIR:-/run/user/$(id -u)}/docker.sock"
)

// ErrRootlessSetupFailed is returned when rootless Docker could not be
// brought up or verified.
var ErrRootlessSetupFailed = errors.New("rootless docker setup failed")

type (
	// RootlessSetup detects and provisions a rootless Docker daemon for the
	// account behind the transport. Unlike the toolkit provisioner it runs
	// unprivileged wherever possible; only package installs escalate.
	RootlessSetup struct {
		tr      transport.Transport
		timeout time.Duration
	}

	// RootlessOption configures a RootlessSetup.
	RootlessOption func(*RootlessSetup)
)

// WithRootlessTimeout bounds each setup command.
func WithRootlessTimeout(timeout time.Duration) RootlessOption {
	return func(r *RootlessSetup) {
		r.timeout = timeout
	}
}

// NewRootlessSetup creates a RootlessSetup operating over tr.
func NewRootlessSetup(tr transport.Transport, opts ...RootlessOption) *RootlessSetup {
	r := &RootlessSetup{
		tr:      tr,
		timeout: 5 * time.Minute,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// runUser executes a user-scope command without privilege escalation when
// the transport supports it. Anything touching the account's home, session
// bus, or per-user daemon must go through here, or a sudo-prefixing local
// transport would aim it at root instead of the invoking user.
func (r *RootlessSetup) runUser(ctx context.Context, command string) transport.Result {
	if ur, ok := r.tr.(transport.UserRunner); ok {
		return ur.RunUser(ctx, command, r.timeout)
	}
	return r.tr.Run(ctx, command, r.timeout)
}

// Configured reports whether a rootless Docker daemon is already up: the
// per-user socket exists and a dockerd-rootless process is running.
func (r *RootlessSetup) Configured(ctx context.Context) bool {
	log := slog.With("context", r.tr.Context())

	res := r.runUser(ctx, "ls -la "+rootlessSocket+" 2>/dev/null || echo '"+notFoundMarker+"'")
	if !res.Success() || strings.Contains(res.Stdout, notFoundMarker) {
		log.Info("rootless Docker socket not found")
		return false
	}

	res = r.runUser(ctx, "ps aux | grep -v grep | grep -i 'dockerd.*rootless' || echo '"+notRunningMarker+"'")
	if !res.Success() || strings.Contains(res.Stdout, notRunningMarker) {
		log.Warn("rootless Docker socket found but daemon is not running")
		return false
	}

	log.Info("rootless Docker daemon is running")
	return true
}

// Setup provisions rootless Docker for username (the transport's current
// user when empty): Docker CE and the rootless extras are installed if
// absent, user namespaces are enabled, the per-user daemon is started, and
// the result is verified against the rootless socket.
func (r *RootlessSetup) Setup(ctx context.Context, username string) error {
	log := slog.With("context", r.tr.Context())

	if username == "" {
		res := r.runUser(ctx, "whoami")
		if res.Success() {
			username = strings.TrimSpace(res.Stdout)
		}
	}
	log.Info("setting up rootless Docker", "user", username)

	family := DetectDistro(ctx, r.tr, r.timeout).Family()

	if !r.commandExists(ctx, "docker") {
		log.Info("docker binary not found, installing Docker CE")
		steps, ok := dockerInstallSteps(family)
		if !ok {
			return issue.NewErrorContext().
				WithOperation("install Docker CE").
				WithSuggestion("Install Docker manually: https://docs.docker.com/get-docker/").
				Wrap(ErrUnsupportedDistro).
				BuildError()
		}
		if err := r.runSteps(ctx, log, steps); err != nil {
			return err
		}
		if !r.commandExists(ctx, "docker") {
			return fmt.Errorf("%w: docker binary still missing after install", ErrRootlessSetupFailed)
		}
	}

	if !r.commandExists(ctx, "dockerd-rootless.sh") {
		log.Info("installing docker rootless extras")
		step, ok := rootlessExtrasStep(family)
		if !ok {
			return issue.NewErrorContext().
				WithOperation("install docker rootless extras").
				Wrap(ErrUnsupportedDistro).
				BuildError()
		}
		if err := r.runSteps(ctx, log, []Step{step}); err != nil {
			return err
		}
	}

	r.configureUserNamespace(ctx, log)

	// Persist DOCKER_HOST for interactive sessions of the account. Failures
	// here are cosmetic; the daemon start below does not depend on them.
	for _, cmd := range []string{
		`grep -q 'DOCKER_HOST=unix' ~/.bashrc || echo 'export DOCKER_HOST=unix://${XDG_RUNTIME_DIR}/docker.sock' >> ~/.bashrc`,
		`grep -q 'DOCKER_HOST=unix' ~/.profile || echo 'export DOCKER_HOST=unix://${XDG_RUNTIME_DIR}/docker.sock' >> ~/.profile`,
	} {
		r.runUser(ctx, cmd)
	}

	if err := r.startDaemon(ctx, log); err != nil {
		return err
	}

	res := r.runUser(ctx, "DOCKER_HOST=unix://"+rootlessSocket+" docker info 2>/dev/null || echo '"+verifyFailMarker+"'")
	if !res.Success() || strings.Contains(res.Stdout, verifyFailMarker) {
		log.Error("rootless Docker verification failed", "stderr", res.Stderr)
		return fmt.Errorf("%w: daemon did not answer on the rootless socket", ErrRootlessSetupFailed)
	}

	log.Info("rootless Docker setup verified")
	return nil
}

// configureUserNamespace enables unprivileged user namespaces when the
// kernel exposes the knob and it is off. Best-effort: kernels without the
// knob allow user namespaces unconditionally.
func (r *RootlessSetup) configureUserNamespace(ctx context.Context, log *slog.Logger) {
	res := r.runUser(ctx, "sysctl -n kernel.unprivileged_userns_clone 2>/dev/null || echo '"+notFoundMarker+"'")
	if !res.Success() || strings.Contains(res.Stdout, notFoundMarker) {
		return
	}
	if strings.TrimSpace(res.Stdout) == "0" {
		log.Info("enabling kernel.unprivileged_userns_clone")
		res = r.tr.Run(ctx, "sysctl -w kernel.unprivileged_userns_clone=1", r.timeout)
		if !res.Success() {
			log.Warn("could not enable unprivileged user namespaces", "stderr", res.Stderr)
		}
	}
}

// startDaemon brings up the per-user daemon, preferring the systemd user
// service and falling back to launching dockerd-rootless.sh directly.
func (r *RootlessSetup) startDaemon(ctx context.Context, log *slog.Logger) error {
	res := r.runUser(ctx, "systemctl --user enable docker && systemctl --user start docker")
	if res.Success() {
		log.Info("rootless Docker daemon started via user service")
		return nil
	}

	log.Info("user service unavailable, launching dockerd-rootless.sh directly")
	res = r.runUser(ctx, "dockerd-rootless.sh >/dev/null 2>&1 & echo $!")
	if !res.Success() || strings.TrimSpace(res.Stdout) == "" {
		return fmt.Errorf("%w: could not start the rootless daemon", ErrRootlessSetupFailed)
	}
	log.Info("rootless Docker daemon started", "pid", strings.TrimSpace(res.Stdout))
	return nil
}

// commandExists probes for an executable on the target's PATH.
func (r *RootlessSetup) commandExists(ctx context.Context, name string) bool {
	res := r.runUser(ctx, "command -v "+transport.Quote(name)+" >/dev/null 2>&1 && echo found || echo '"+notFoundMarker+"'")
	return res.Success() && strings.TrimSpace(res.Stdout) == "found"
}

// runSteps executes a step sequence with the same fail-fast semantics as
// the toolkit provisioner.
func (r *RootlessSetup) runSteps(ctx context.Context, log *slog.Logger, steps []Step) error {
	for i, step := range steps {
		log.Info("running setup step", "step", step.Name, "progress", fmt.Sprintf("%d/%d", i+1, len(steps)))

		res := r.tr.Run(ctx, step.Command, r.timeout)
		if res.Success() {
			continue
		}
		if !step.Critical {
			log.Warn("non-critical setup step failed, continuing", "step", step.Name, "stderr", res.Stderr)
			continue
		}
		return fmt.Errorf("%w: step %q exited %d: %s", ErrRootlessSetupFailed, step.Name, res.ExitCode, res.Stderr)
	}
	return nil
}
