// SPDX-License-Identifier: MPL-2.0

package lifecycle

import "errors"

// ErrMissingImage is returned when a Spec has no image.
var ErrMissingImage = errors.New("container spec requires an image")

type (
	// Spec describes the container to create. It is input only; the
	// authoritative result of a create is the Record built from inspect
	// output, never the Spec.
	Spec struct {
		// Image is the only required field.
		Image string
		// Name is optional; a unique one is generated when empty.
		Name string
		// Ports maps container ports to host ports. An empty host port
		// requests a dynamically assigned one.
		Ports map[string]string
		// Volumes maps host paths to container paths.
		Volumes map[string]string
		// Env holds environment variables for the container.
		Env map[string]string
		// EnableGPU requests GPU passthrough. It is a request, not a
		// guarantee: hosts without a usable GPU downgrade silently.
		EnableGPU bool
		// CPULimit and MemoryLimit are passed through to the runtime
		// (e.g. "2", "4g").
		CPULimit    string
		MemoryLimit string
		// Network selects a runtime network.
		Network string
		// DinD mounts the host runtime socket and runs privileged so the
		// container can drive Docker itself.
		DinD bool
	}
)

// Validate checks that the spec can be submitted to the runtime.
func (s Spec) Validate() error {
	if s.Image == "" {
		return ErrMissingImage
	}
	return nil
}
