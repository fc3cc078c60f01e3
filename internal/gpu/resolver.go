// SPDX-License-Identifier: MPL-2.0

package gpu

import (
	"context"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"podsmith/internal/transport"
)

const (
	noHardwareMarker = "No NVIDIA GPU found"
	noDriversMarker  = "No NVIDIA drivers"
	noCUDAMarker     = "No CUDA"
)

type (
	// Detector resolves the GPU capability of the host behind a transport.
	// The toolkit-registration strategy is fixed at construction.
	Detector struct {
		tr      transport.Transport
		check   ToolkitCheck
		timeout time.Duration
	}

	// DetectorOption configures a Detector.
	DetectorOption func(*Detector)
)

// WithProbeTimeout bounds each individual probe command.
func WithProbeTimeout(timeout time.Duration) DetectorOption {
	return func(d *Detector) {
		d.timeout = timeout
	}
}

// NewDetector creates a Detector probing over tr with the given toolkit
// strategy.
func NewDetector(tr transport.Transport, check ToolkitCheck, opts ...DetectorOption) *Detector {
	d := &Detector{
		tr:      tr,
		check:   check,
		timeout: 30 * time.Second,
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Detect runs the staged probe. The boolean reports hardware presence; the
// Capability carries whatever the probe learned before its first hard stop.
func (d *Detector) Detect(ctx context.Context) (bool, Capability) {
	caps := Capability{}
	log := slog.With("context", d.tr.Context())

	// Stage 1: PCI bus scan. Absence ends the probe with an all-false
	// descriptor.
	res := d.tr.Run(ctx, "lspci | grep -i nvidia || echo '"+noHardwareMarker+"'", d.timeout)
	caps.HasHardware = res.Success() && !containsMarker(res.Stdout, noHardwareMarker)
	if !caps.HasHardware {
		log.Info("no NVIDIA GPU hardware detected")
		return false, caps
	}
	log.Info("NVIDIA GPU hardware detected")

	// Stage 2: driver query. Hardware without drivers is reported as
	// present-but-unusable.
	res = d.tr.Run(ctx, "nvidia-smi --query-gpu=driver_version --format=csv,noheader 2>/dev/null || echo '"+noDriversMarker+"'", d.timeout)
	caps.HasDrivers = res.Success() && !containsMarker(res.Stdout, noDriversMarker)
	if !caps.HasDrivers {
		log.Warn("NVIDIA GPU hardware detected but drivers are not installed")
		return true, caps
	}
	caps.DriverVersion = firstLine(res.Stdout)
	log.Info("NVIDIA drivers detected", "version", caps.DriverVersion)

	// Stage 3: enumeration. Each query is independently fault-tolerant; a
	// failure leaves its field at the zero value and the probe continues.
	res = d.tr.Run(ctx, "nvidia-smi --query-gpu=cuda_version --format=csv,noheader 2>/dev/null || echo '"+noCUDAMarker+"'", d.timeout)
	if res.Success() && !containsMarker(res.Stdout, noCUDAMarker) {
		caps.CUDAVersion = firstLine(res.Stdout)
	}

	res = d.tr.Run(ctx, "nvidia-smi --query-gpu=name --format=csv,noheader | wc -l", d.timeout)
	if res.Success() {
		if n, err := strconv.Atoi(strings.TrimSpace(res.Stdout)); err == nil && n >= 0 {
			caps.Count = n
		} else {
			// nvidia-smi answered but the count did not parse; at least one
			// device must exist for the driver query to have succeeded.
			log.Warn("could not parse GPU count, assuming 1", "output", res.Stdout)
			caps.Count = 1
		}
	}

	res = d.tr.Run(ctx, "nvidia-smi --query-gpu=name --format=csv,noheader", d.timeout)
	if res.Success() && res.Stdout != "" {
		caps.Types = splitLines(res.Stdout)
	}

	res = d.tr.Run(ctx, "nvidia-smi --query-gpu=memory.total --format=csv,noheader", d.timeout)
	if res.Success() && res.Stdout != "" {
		caps.Memory = splitLines(res.Stdout)
	}

	// Stage 4: runtime toolkit registration.
	caps.HasToolkit = d.check.Check(ctx, d.tr, d.timeout)
	if caps.HasToolkit {
		log.Info("container runtime GPU support available", "strategy", d.check.Name(), "count", caps.Count)
	} else {
		log.Warn("NVIDIA drivers found but container runtime GPU support is missing", "strategy", d.check.Name())
	}

	return true, caps
}

// CheckRuntimeSupport re-runs only the toolkit-registration stage. Callers
// use it to verify provisioning results without repeating the full probe.
func (d *Detector) CheckRuntimeSupport(ctx context.Context) bool {
	return d.check.Check(ctx, d.tr, d.timeout)
}

// containsMarker reports whether the probe output carries the fallback
// marker echoed when the probed tool found nothing.
func containsMarker(output, marker string) bool {
	return strings.Contains(output, marker)
}

func firstLine(s string) string {
	line, _, _ := strings.Cut(strings.TrimSpace(s), "\n")
	return strings.TrimSpace(line)
}

func splitLines(s string) []string {
	raw := strings.Split(strings.TrimSpace(s), "\n")
	lines := make([]string, 0, len(raw))
	for _, l := range raw {
		if trimmed := strings.TrimSpace(l); trimmed != "" {
			lines = append(lines, trimmed)
		}
	}
	return lines
}
