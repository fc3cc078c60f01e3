// SPDX-License-Identifier: MPL-2.0

// Package gpu probes NVIDIA GPU hardware, driver, and container-runtime
// toolkit state on the target host.
//
// Detection is a staged probe: hardware first, then drivers, then per-device
// enumeration, then the runtime toolkit registration. Each stage
// short-circuits on failure so callers always get partial information
// instead of an error. The toolkit-registration stage is a pluggable
// strategy because runtimes disagree about how GPU support is advertised
// (a root Docker daemon lists an nvidia runtime in `docker info`; rootless
// CDI-based setups do not).
package gpu
