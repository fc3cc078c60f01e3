// SPDX-License-Identifier: MPL-2.0

// Package toolkit provisions the NVIDIA Container Toolkit and rootless
// Docker support on the target host.
//
// Provisioning is an idempotent state machine: a host where the toolkit is
// already registered short-circuits to success with no side effects, an
// unsupported distribution fails terminally before any command runs, and a
// supported one walks an ordered, fail-fast install sequence whose only
// non-critical step is the final daemon restart.
package toolkit
