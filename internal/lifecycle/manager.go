// SPDX-License-Identifier: MPL-2.0

package lifecycle

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"podsmith/internal/gpu"
	"podsmith/internal/issue"
	"podsmith/internal/transport"
)

const (
	// minContainerIDLength is the shortest identifier accepted from a
	// create call; Docker prints the full 64-char ID, the abbreviated form
	// is 12.
	minContainerIDLength = 12

	// noSuchContainerMarker is the runtime's error text for an absent
	// target. Stop and Remove treat it as already-done.
	noSuchContainerMarker = "No such container"

	// containerToolMissingMarker flags an absent binary inside a container.
	containerToolMissingMarker = "not-found"

	defaultNamePrefix     = "podsmith"
	defaultSettleInterval = 2 * time.Second
)

// ErrCreationFailed is returned when the runtime's create call exits
// non-zero or yields a malformed container identifier.
var ErrCreationFailed = errors.New("container creation failed")

type (
	// CapabilityResolver resolves host GPU capability. *gpu.Detector
	// satisfies this.
	CapabilityResolver interface {
		Detect(ctx context.Context) (bool, gpu.Capability)
	}

	// ToolkitEnsurer makes the NVIDIA container toolkit available.
	// *toolkit.Provisioner satisfies this.
	ToolkitEnsurer interface {
		Ensure(ctx context.Context) error
	}

	// Manager drives container lifecycle operations over one transport
	// bound at construction. All state lives in its Registry; the Manager
	// spawns no background work, so the registry needs no lock.
	Manager struct {
		tr          transport.Transport
		resolver    CapabilityResolver
		provisioner ToolkitEnsurer
		registry    *Registry
		prefix      string
		settle      time.Duration
		timeout     time.Duration
	}

	// ManagerOption configures a Manager.
	ManagerOption func(*Manager)
)

// WithNamePrefix sets the prefix for generated container names.
func WithNamePrefix(prefix string) ManagerOption {
	return func(m *Manager) {
		m.prefix = prefix
	}
}

// WithSettleInterval sets the pause between a successful create and the
// verifying inspect, giving the container a moment to reach its steady
// state.
func WithSettleInterval(settle time.Duration) ManagerOption {
	return func(m *Manager) {
		m.settle = settle
	}
}

// WithCommandTimeout bounds each runtime CLI invocation.
func WithCommandTimeout(timeout time.Duration) ManagerOption {
	return func(m *Manager) {
		m.timeout = timeout
	}
}

// NewManager creates a Manager over tr, resolving GPU capability through
// resolver and provisioning the toolkit through provisioner when needed.
func NewManager(tr transport.Transport, resolver CapabilityResolver, provisioner ToolkitEnsurer, opts ...ManagerOption) *Manager {
	m := &Manager{
		tr:          tr,
		resolver:    resolver,
		provisioner: provisioner,
		registry:    NewRegistry(),
		prefix:      defaultNamePrefix,
		settle:      defaultSettleInterval,
		timeout:     transport.DefaultTimeout,
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Registry returns the manager's container registry.
func (m *Manager) Registry() *Registry { return m.registry }

// docker runs one Docker CLI invocation through the transport.
func (m *Manager) docker(ctx context.Context, args string) transport.Result {
	return m.tr.Run(ctx, "docker "+args, m.timeout)
}

// Create provisions a container per spec and returns its Record. On any
// failure the registry is left untouched; on success it holds exactly one
// new entry under the resolved container name.
func (m *Manager) Create(ctx context.Context, spec Spec) (*Record, error) {
	if err := spec.Validate(); err != nil {
		return nil, err
	}
	log := slog.With("context", m.tr.Context())

	name := spec.Name
	if name == "" {
		name = GenerateName(m.prefix)
		log.Info("generated container name", "name", name)
	}

	gpuEnabled, caps := m.resolveGPU(ctx, log, spec)

	args, warnings := buildRunArgs(name, spec, gpuEnabled)
	for _, w := range warnings {
		log.Warn(w, "name", name)
	}

	log.Info("creating container", "name", name, "image", spec.Image, "gpu", gpuEnabled)
	res := m.docker(ctx, strings.Join(args, " "))
	if !res.Success() {
		if res.PrivilegeDenied {
			return nil, issue.NewErrorContext().
				WithOperation("create container").
				WithResource(name).
				WithSuggestion("Configure passwordless sudo for this account, or run as root").
				Wrap(fmt.Errorf("%w: %s", ErrCreationFailed, res.Stderr)).
				BuildError()
		}
		return nil, fmt.Errorf("%w: run exited %d: %s", ErrCreationFailed, res.ExitCode, res.Stderr)
	}

	id := strings.TrimSpace(res.Stdout)
	if len(id) < minContainerIDLength {
		return nil, fmt.Errorf("%w: implausible container identifier %q", ErrCreationFailed, id)
	}

	if err := m.settleWait(ctx); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrCreationFailed, err)
	}

	res = m.docker(ctx, "inspect "+transport.Quote(id))
	if !res.Success() {
		return nil, fmt.Errorf("%w: inspect exited %d: %s", ErrMalformedInspect, res.ExitCode, res.Stderr)
	}
	report, err := parseInspect(res.Stdout)
	if err != nil {
		return nil, err
	}

	rec := Record{
		ID:           id,
		Name:         report.Name,
		Image:        report.Image,
		Ports:        report.Ports,
		GPUEnabled:   gpuEnabled,
		GPUType:      "None",
		CreationTime: time.Now(),
		Status:       statusFromRuntime(report.Status),
	}
	if gpuEnabled {
		rec.GPUCount = caps.Count
		rec.GPUType = caps.PrimaryType()
	}
	m.registry.Insert(rec)
	log.Info("container created", "name", rec.Name, "id", shortID(id), "status", rec.Status)

	if gpuEnabled && rec.Status == StatusRunning {
		m.installContainerGPUTools(ctx, log, id)
	}

	return &rec, nil
}

// resolveGPU decides whether the container gets GPU passthrough. An
// unusable GPU is a soft downgrade logged at warning level, never a
// create failure.
func (m *Manager) resolveGPU(ctx context.Context, log *slog.Logger, spec Spec) (bool, gpu.Capability) {
	if !spec.EnableGPU {
		return false, gpu.Capability{}
	}

	_, caps := m.resolver.Detect(ctx)
	switch {
	case caps.Usable():
		log.Info("GPU passthrough enabled", "count", caps.Count, "type", caps.PrimaryType())
		return true, caps

	case caps.NeedsToolkit():
		log.Info("NVIDIA container toolkit missing, provisioning")
		if err := m.provisioner.Ensure(ctx); err != nil {
			log.Warn("toolkit provisioning failed, disabling GPU for this container", "error", err)
			return false, caps
		}
		log.Info("GPU passthrough enabled after toolkit install", "count", caps.Count, "type", caps.PrimaryType())
		return true, caps

	default:
		log.Warn("GPU requested but no usable GPU hardware or drivers found, disabling")
		return false, caps
	}
}

// settleWait pauses for the settle interval, honoring cancellation.
func (m *Manager) settleWait(ctx context.Context) error {
	if m.settle <= 0 {
		return nil
	}
	select {
	case <-time.After(m.settle):
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Stop stops a container with the given grace period. An absent target is
// success: the container already reached a terminal state. Any other
// failure returns false with no registry mutation.
func (m *Manager) Stop(ctx context.Context, id string, gracePeriod time.Duration) bool {
	log := slog.With("context", m.tr.Context(), "id", shortID(id))

	res := m.docker(ctx, fmt.Sprintf("stop -t %d %s", int(gracePeriod.Seconds()), transport.Quote(id)))
	if !res.Success() {
		if strings.Contains(res.Stderr, noSuchContainerMarker) {
			log.Info("container already stopped or removed")
			m.registry.UpdateStatus(id, StatusRemoved)
			return true
		}
		log.Error("stop failed", "exit", res.ExitCode, "stderr", res.Stderr)
		return false
	}

	m.registry.UpdateStatus(id, StatusExited)
	log.Info("container stopped")
	return true
}

// Remove removes a container, optionally forcing removal while running.
// Absence is success; the matching registry entry is deleted either way.
func (m *Manager) Remove(ctx context.Context, id string, force bool) bool {
	log := slog.With("context", m.tr.Context(), "id", shortID(id))

	args := "rm "
	if force {
		args += "-f "
	}
	res := m.docker(ctx, args+transport.Quote(id))
	if !res.Success() {
		if strings.Contains(res.Stderr, noSuchContainerMarker) {
			log.Info("container already removed")
			m.registry.Delete(id)
			return true
		}
		log.Error("remove failed", "exit", res.ExitCode, "stderr", res.Stderr)
		return false
	}

	m.registry.Delete(id)
	log.Info("container removed")
	return true
}

// Status queries a container's runtime state. The query fails open: any
// execution failure reads as (false, "not found") rather than an error.
func (m *Manager) Status(ctx context.Context, id string) (bool, string) {
	res := m.docker(ctx, "inspect --format '{{.State.Status}}' "+transport.Quote(id))
	if !res.Success() {
		return false, "not found"
	}
	status := strings.TrimSpace(res.Stdout)
	return strings.EqualFold(status, "running"), status
}

// List queries the runtime for containers whose names carry the manager's
// prefix, including those created by earlier invocations that this
// registry never saw. For names the registry does know, GPU fields are
// filled from the stored record and the stored status is refreshed.
func (m *Manager) List(ctx context.Context) ([]Record, error) {
	filter := transport.Quote("^" + m.prefix + "-")
	format := transport.Quote("{{.ID}}\\t{{.Names}}\\t{{.Image}}\\t{{.State}}")

	res := m.docker(ctx, "ps -a --filter name="+filter+" --format "+format)
	if !res.Success() {
		return nil, fmt.Errorf("list containers: ps exited %d: %s", res.ExitCode, res.Stderr)
	}

	var records []Record
	for _, line := range strings.Split(res.Stdout, "\n") {
		fields := strings.Split(strings.TrimSpace(line), "\t")
		if len(fields) != 4 || fields[0] == "" {
			continue
		}
		rec := Record{
			ID:      fields[0],
			Name:    fields[1],
			Image:   fields[2],
			GPUType: "None",
			Status:  statusFromRuntime(fields[3]),
		}
		if known, ok := m.registry.Lookup(rec.Name); ok {
			rec.Ports = known.Ports
			rec.GPUEnabled = known.GPUEnabled
			rec.GPUCount = known.GPUCount
			rec.GPUType = known.GPUType
			rec.CreationTime = known.CreationTime
			m.registry.UpdateStatus(rec.Name, rec.Status)
		}
		records = append(records, rec)
	}
	return records, nil
}

// installContainerGPUTools makes nvidia-smi available inside a running
// GPU-enabled container. Best-effort throughout: every failure is logged
// and none affects the create that triggered it. Only apt-based container
// images are supported.
func (m *Manager) installContainerGPUTools(ctx context.Context, log *slog.Logger, id string) {
	qid := transport.Quote(id)

	res := m.docker(ctx, "exec "+qid+" which nvidia-smi || echo '"+containerToolMissingMarker+"'")
	if res.Success() && !strings.Contains(res.Stdout, containerToolMissingMarker) {
		log.Info("nvidia-smi already present in container", "id", shortID(id))
		return
	}

	res = m.docker(ctx, "exec "+qid+" cat /etc/os-release || echo 'unknown'")
	osInfo := strings.ToLower(res.Stdout)
	if !strings.Contains(osInfo, "ubuntu") && !strings.Contains(osInfo, "debian") {
		log.Warn("container image is not apt-based, skipping in-container NVIDIA tools install", "id", shortID(id))
		return
	}

	log.Info("installing NVIDIA tools inside container", "id", shortID(id))
	script := strings.Join([]string{
		"apt-get update",
		"DEBIAN_FRONTEND=noninteractive apt-get install -y --no-install-recommends nvidia-utils-* || echo 'nvidia-utils not found'",
		"if ! which nvidia-smi > /dev/null; then" +
			" apt-get install -y --no-install-recommends gnupg curl ca-certificates &&" +
			" curl -fsSL https://developer.download.nvidia.com/compute/cuda/repos/ubuntu2204/x86_64/3bf863cc.pub | apt-key add - &&" +
			" echo 'deb https://developer.download.nvidia.com/compute/cuda/repos/ubuntu2204/x86_64/ /' > /etc/apt/sources.list.d/cuda.list &&" +
			" apt-get update &&" +
			" apt-get install -y --no-install-recommends nvidia-utils-525;" +
			" fi",
	}, " && ")
	res = m.docker(ctx, "exec "+qid+" bash -c "+transport.Quote(script))
	if !res.Success() {
		log.Warn("in-container NVIDIA tools install reported errors", "id", shortID(id), "stderr", truncateOutput(res.Stderr))
	}

	res = m.docker(ctx, "exec "+qid+" which nvidia-smi || echo '"+containerToolMissingMarker+"'")
	if !res.Success() || strings.Contains(res.Stdout, containerToolMissingMarker) {
		log.Warn("nvidia-smi still unavailable inside container", "id", shortID(id))
		return
	}

	res = m.docker(ctx, "exec "+qid+" nvidia-smi")
	if res.Success() {
		log.Info("nvidia-smi verified inside container", "id", shortID(id))
	} else {
		log.Warn("nvidia-smi installed but failed to run inside container", "id", shortID(id), "stderr", truncateOutput(res.Stderr))
	}
}

// shortID abbreviates a container ID for logs.
func shortID(id string) string {
	if len(id) > 12 {
		return id[:12]
	}
	return id
}

func truncateOutput(s string) string {
	const max = 200
	if len(s) > max {
		return s[:max] + "..."
	}
	return s
}
