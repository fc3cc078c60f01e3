// SPDX-License-Identifier: MPL-2.0

package lifecycle

import (
	"slices"
	"strings"
	"testing"
)

func TestBuildRunArgs(t *testing.T) {
	tests := []struct {
		name         string
		spec         Spec
		gpuEnabled   bool
		wantContains []string
		wantAbsent   []string
		wantWarnings int
	}{
		{
			name:         "minimal",
			spec:         Spec{Image: "alpine:3.20"},
			wantContains: []string{"run", "-d", "--name", "alpine:3.20"},
			wantAbsent:   []string{"--gpus=all", "--privileged", "tail"},
		},
		{
			name:       "resource limits and network",
			spec:       Spec{Image: "alpine:3.20", CPULimit: "2", MemoryLimit: "4g", Network: "podnet"},
			wantContains: []string{
				"--cpus", "2", "--memory", "4g", "--network", "podnet",
			},
		},
		{
			name:         "gpu flag only when resolved available",
			spec:         Spec{Image: "alpine:3.20", EnableGPU: true},
			gpuEnabled:   true,
			wantContains: []string{"--gpus=all"},
		},
		{
			name:         "gpu requested but downgraded",
			spec:         Spec{Image: "alpine:3.20", EnableGPU: true},
			gpuEnabled:   false,
			wantAbsent:   []string{"--gpus=all"},
		},
		{
			name:         "static and dynamic ports",
			spec:         Spec{Image: "alpine:3.20", Ports: map[string]string{"80": "8080", "9000": ""}},
			wantContains: []string{"-p", "8080:80", "9000"},
		},
		{
			name:         "invalid ports skipped with warnings",
			spec:         Spec{Image: "alpine:3.20", Ports: map[string]string{"http": "8080", "80": "eighty"}},
			wantAbsent:   []string{"-p"},
			wantWarnings: 2,
		},
		{
			name:         "volumes and env",
			spec:         Spec{Image: "alpine:3.20", Volumes: map[string]string{"/data": "/srv/data"}, Env: map[string]string{"MODE": "prod"}},
			wantContains: []string{"-v", "/data:/srv/data", "-e", "MODE=prod"},
		},
		{
			name:         "dind",
			spec:         Spec{Image: "docker:27-dind", DinD: true},
			wantContains: []string{"--privileged", "-v", "/var/run/docker.sock:/var/run/docker.sock"},
		},
		{
			name:         "keep-alive for bare ubuntu",
			spec:         Spec{Image: "ubuntu:latest"},
			wantContains: []string{"tail", "-f", "/dev/null"},
		},
		{
			name:         "keep-alive for cuda base",
			spec:         Spec{Image: "nvidia/cuda:12.2.0-base-ubuntu22.04"},
			wantContains: []string{"tail"},
		},
		{
			name:       "no keep-alive for app images",
			spec:       Spec{Image: "nginx:1.27"},
			wantAbsent: []string{"tail"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			args, warnings := buildRunArgs("podsmith-1700000000-a1b2c3d4", tt.spec, tt.gpuEnabled)

			for _, want := range tt.wantContains {
				if !slices.Contains(args, want) {
					t.Errorf("args missing %q: %v", want, args)
				}
			}
			for _, absent := range tt.wantAbsent {
				if slices.Contains(args, absent) {
					t.Errorf("args must not contain %q: %v", absent, args)
				}
			}
			if len(warnings) != tt.wantWarnings {
				t.Errorf("warnings = %v, want %d of them", warnings, tt.wantWarnings)
			}
		})
	}
}

func TestBuildRunArgsQuotesAdversarialValues(t *testing.T) {
	spec := Spec{
		Image: "alpine:3.20",
		Env:   map[string]string{"CMD": "85; rm -rf ."},
	}

	args, _ := buildRunArgs("pod; reboot", spec, false)

	// The raw values must never appear as bare argument tokens; the shell
	// would split them and execute the injected command.
	if slices.Contains(args, "pod; reboot") {
		t.Errorf("container name reached the argument list unquoted: %v", args)
	}
	if slices.Contains(args, "CMD=85; rm -rf .") {
		t.Errorf("env entry reached the argument list unquoted: %v", args)
	}
	for _, arg := range args {
		if strings.HasPrefix(arg, "CMD=") && !strings.ContainsAny(arg, "'\"\\") {
			t.Errorf("env value rendered without any quoting: %q", arg)
		}
	}
}

func TestBuildRunArgsDeterministicOrder(t *testing.T) {
	spec := Spec{
		Image: "alpine:3.20",
		Env:   map[string]string{"B": "2", "A": "1", "C": "3"},
	}

	first, _ := buildRunArgs("pod", spec, false)
	for range 20 {
		again, _ := buildRunArgs("pod", spec, false)
		if !slices.Equal(first, again) {
			t.Fatalf("argument order must be stable:\n%v\n%v", first, again)
		}
	}
}
