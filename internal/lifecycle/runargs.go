// SPDX-License-Identifier: MPL-2.0

package lifecycle

import (
	"fmt"
	"sort"
	"strings"

	"podsmith/internal/transport"
)

// keepAliveImages are base images whose default entrypoint exits
// immediately; containers built on them get a keep-alive command appended
// so the container survives its create.
var keepAliveImages = []string{"ubuntu", "nvidia/cuda", "docker:"}

// buildRunArgs renders the `docker run` argument list for a spec. It is
// pure: no command execution, no registry access. Every externally
// supplied value passes through shell quoting individually, never via
// string concatenation of raw input. Invalid port entries are skipped and
// reported in warnings rather than failing the build.
func buildRunArgs(name string, spec Spec, gpuEnabled bool) (args, warnings []string) {
	args = []string{"run", "-d", "--name", transport.Quote(name)}

	if spec.CPULimit != "" {
		args = append(args, "--cpus", transport.Quote(spec.CPULimit))
	}
	if spec.MemoryLimit != "" {
		args = append(args, "--memory", transport.Quote(spec.MemoryLimit))
	}
	if gpuEnabled {
		args = append(args, "--gpus=all")
	}
	if spec.Network != "" {
		args = append(args, "--network", transport.Quote(spec.Network))
	}

	for _, containerPort := range sortedKeys(spec.Ports) {
		hostPort := strings.TrimSpace(spec.Ports[containerPort])
		switch {
		case !isDigits(containerPort):
			warnings = append(warnings, fmt.Sprintf("skipping invalid container port %q", containerPort))
		case hostPort == "":
			// Dynamic host port.
			args = append(args, "-p", transport.Quote(containerPort))
		case isDigits(hostPort):
			args = append(args, "-p", transport.Quote(hostPort+":"+containerPort))
		default:
			warnings = append(warnings, fmt.Sprintf("skipping invalid host port %q for container port %s", hostPort, containerPort))
		}
	}

	for _, hostPath := range sortedKeys(spec.Volumes) {
		args = append(args, "-v", transport.Quote(hostPath)+":"+transport.Quote(spec.Volumes[hostPath]))
	}

	for _, key := range sortedKeys(spec.Env) {
		args = append(args, "-e", transport.Quote(key)+"="+transport.Quote(spec.Env[key]))
	}

	if spec.DinD {
		args = append(args, "--privileged", "-v", "/var/run/docker.sock:/var/run/docker.sock")
	}

	args = append(args, transport.Quote(spec.Image))

	if needsKeepAlive(spec.Image) {
		args = append(args, "tail", "-f", "/dev/null")
	}

	return args, warnings
}

// needsKeepAlive reports whether image is a bare base image that exits
// without a command.
func needsKeepAlive(image string) bool {
	for _, base := range keepAliveImages {
		if strings.Contains(image, base) {
			return true
		}
	}
	return false
}

func sortedKeys(m map[string]string) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func isDigits(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}
