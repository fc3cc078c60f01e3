// SPDX-License-Identifier: MPL-2.0

package gpu

type (
	// Capability is the resolved GPU state of a host. It is built
	// incrementally by the staged probe; fields past the first failed stage
	// keep their zero values.
	//
	// Invariant: HasDrivers implies HasHardware. HasToolkit is only
	// meaningful relative to the ToolkitCheck the Detector was built with.
	Capability struct {
		// HasHardware is true when the PCI bus lists an NVIDIA device.
		HasHardware bool
		// HasDrivers is true when nvidia-smi answers a driver query.
		HasDrivers bool
		// HasToolkit is true when the container runtime advertises a GPU
		// execution backend.
		HasToolkit bool
		// Count is the number of GPUs enumerated (0 when unknown).
		Count int
		// Types holds one product name per device, in enumeration order.
		Types []string
		// Memory holds one total-memory string per device, in enumeration order.
		Memory []string
		// DriverVersion is the installed driver version, empty when unknown.
		DriverVersion string
		// CUDAVersion is the reported CUDA version, empty when unknown.
		CUDAVersion string
	}
)

// Usable reports whether containers on this host could use a GPU right now:
// hardware present, drivers loaded, and the runtime toolkit registered.
func (c Capability) Usable() bool {
	return c.HasHardware && c.HasDrivers && c.HasToolkit
}

// NeedsToolkit reports whether toolkit provisioning is the missing piece:
// hardware and drivers are present but the runtime check failed.
func (c Capability) NeedsToolkit() bool {
	return c.HasHardware && c.HasDrivers && !c.HasToolkit
}

// PrimaryType returns the first device's product name, or "None".
func (c Capability) PrimaryType() string {
	if len(c.Types) == 0 {
		return "None"
	}
	return c.Types[0]
}
