// SPDX-License-Identifier: MPL-2.0

package toolkit

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"podsmith/internal/issue"
	"podsmith/internal/transport"
)

var (
	// ErrUnsupportedDistro is returned when no install sequence exists for
	// the detected distribution. No side effects have been attempted.
	ErrUnsupportedDistro = errors.New("unsupported distribution")

	// ErrInstallFailed is returned when a critical install step failed.
	ErrInstallFailed = errors.New("toolkit installation failed")

	// ErrVerificationFailed is returned when the install sequence completed
	// but the runtime still does not advertise GPU support.
	ErrVerificationFailed = errors.New("toolkit verification failed")
)

type (
	// RuntimeSupportChecker re-verifies container-runtime GPU support after
	// an install attempt. *gpu.Detector satisfies this.
	RuntimeSupportChecker interface {
		CheckRuntimeSupport(ctx context.Context) bool
	}

	// Provisioner installs the NVIDIA Container Toolkit when the capability
	// resolver reports it absent. It tracks its lifecycle state and is safe
	// to invoke repeatedly: a host already provisioned is a no-op success.
	Provisioner struct {
		tr      transport.Transport
		checker RuntimeSupportChecker
		state   State
		timeout time.Duration
	}

	// ProvisionerOption configures a Provisioner.
	ProvisionerOption func(*Provisioner)
)

// WithStepTimeout bounds each install step. Package installs are slow, so
// the default is generous.
func WithStepTimeout(timeout time.Duration) ProvisionerOption {
	return func(p *Provisioner) {
		p.timeout = timeout
	}
}

// NewProvisioner creates a Provisioner operating over tr, verifying results
// through checker.
func NewProvisioner(tr transport.Transport, checker RuntimeSupportChecker, opts ...ProvisionerOption) *Provisioner {
	p := &Provisioner{
		tr:      tr,
		checker: checker,
		state:   StateUnchecked,
		timeout: 5 * time.Minute,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// State returns the current lifecycle state.
func (p *Provisioner) State() State { return p.state }

// Ensure makes the toolkit available: Unchecked → Present|Missing →
// Installing → Verified|Failed. Present and Verified return nil
// immediately on re-invocation.
func (p *Provisioner) Ensure(ctx context.Context) error {
	log := slog.With("context", p.tr.Context())

	if p.state == StatePresent || p.state == StateVerified {
		return nil
	}

	if p.checker.CheckRuntimeSupport(ctx) {
		p.state = StatePresent
		log.Info("NVIDIA container toolkit already registered")
		return nil
	}
	p.state = StateMissing

	distro := DetectDistro(ctx, p.tr, p.timeout)
	family := distro.Family()
	steps, ok := toolkitInstallSteps(family, distro)
	if !ok {
		p.state = StateFailed
		log.Warn("cannot install NVIDIA container toolkit automatically", "distro", distro.String())
		return issue.NewErrorContext().
			WithOperation("install NVIDIA container toolkit").
			WithResource(distro.String()).
			WithSuggestion("Install nvidia-container-toolkit manually for your distribution").
			WithSuggestion("See https://docs.nvidia.com/datacenter/cloud-native/container-toolkit/install-guide.html").
			Wrap(ErrUnsupportedDistro).
			BuildError()
	}

	p.state = StateInstalling
	log.Info("installing NVIDIA container toolkit", "distro", distro.String(), "steps", len(steps))

	if err := p.runSteps(ctx, log, steps); err != nil {
		p.state = StateFailed
		return err
	}

	if !p.checker.CheckRuntimeSupport(ctx) {
		p.state = StateFailed
		log.Warn("toolkit installed but runtime still reports no GPU support")
		return fmt.Errorf("%w: runtime does not advertise an NVIDIA backend after install", ErrVerificationFailed)
	}

	p.state = StateVerified
	log.Info("NVIDIA container toolkit installed and verified")
	return nil
}

// runSteps executes an install sequence in order, fail-fast on critical
// steps.
func (p *Provisioner) runSteps(ctx context.Context, log *slog.Logger, steps []Step) error {
	for i, step := range steps {
		log.Info("running install step", "step", step.Name, "progress", fmt.Sprintf("%d/%d", i+1, len(steps)))

		res := p.tr.Run(ctx, step.Command, p.timeout)
		if res.Success() {
			continue
		}

		if !step.Critical {
			log.Warn("non-critical install step failed, continuing",
				"step", step.Name, "exit", res.ExitCode, "stderr", res.Stderr)
			continue
		}

		log.Error("install step failed", "step", step.Name, "exit", res.ExitCode, "stderr", res.Stderr)
		if res.PrivilegeDenied {
			return issue.NewErrorContext().
				WithOperation("install NVIDIA container toolkit").
				WithSuggestion("Configure passwordless sudo for this account, or run as root").
				Wrap(fmt.Errorf("%w: %s: %s", ErrInstallFailed, step.Name, res.Stderr)).
				BuildError()
		}
		return fmt.Errorf("%w: step %q exited %d: %s", ErrInstallFailed, step.Name, res.ExitCode, res.Stderr)
	}
	return nil
}
