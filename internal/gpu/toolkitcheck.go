// SPDX-License-Identifier: MPL-2.0

package gpu

import (
	"context"
	"time"

	"podsmith/internal/transport"
)

const (
	// noDockerSupportMarker is echoed by the probe command when the grep
	// finds nothing, so an empty grep result is not mistaken for an error.
	noDockerSupportMarker = "No NVIDIA Docker support"
)

type (
	// ToolkitCheck decides whether the active container runtime advertises a
	// GPU execution backend. The strategy is selected once when the Detector
	// is constructed; call sites never branch on runtime identity.
	ToolkitCheck interface {
		// Name identifies the strategy in logs ("docker", "rootless").
		Name() string
		// Check probes the runtime over the given transport.
		Check(ctx context.Context, tr transport.Transport, timeout time.Duration) bool
	}

	// DockerToolkitCheck verifies that a root Docker daemon lists the nvidia
	// runtime in its info output.
	DockerToolkitCheck struct{}

	// RootlessToolkitCheck handles CDI-era rootless engines, which do not
	// register an nvidia runtime with the daemon. Toolkit availability is
	// assumed whenever the driver stack answers, verified by enumerating
	// devices with nvidia-smi.
	RootlessToolkitCheck struct{}
)

// Name identifies the strategy.
func (DockerToolkitCheck) Name() string { return "docker" }

// Check greps the daemon info for an nvidia runtime registration.
func (DockerToolkitCheck) Check(ctx context.Context, tr transport.Transport, timeout time.Duration) bool {
	res := tr.Run(ctx, "docker info | grep -i nvidia || echo '"+noDockerSupportMarker+"'", timeout)
	if !res.Success() {
		return false
	}
	return !containsMarker(res.Stdout, noDockerSupportMarker)
}

// Name identifies the strategy.
func (RootlessToolkitCheck) Name() string { return "rootless" }

// Check treats a working driver stack as toolkit-ready.
func (RootlessToolkitCheck) Check(ctx context.Context, tr transport.Transport, timeout time.Duration) bool {
	res := tr.Run(ctx, "nvidia-smi -L", timeout)
	return res.Success() && res.Stdout != ""
}
