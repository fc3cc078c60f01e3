// SPDX-License-Identifier: MPL-2.0

package toolkit

import (
	"context"
	"errors"
	"strings"
	"testing"
)

func TestRootlessSetup_Configured(t *testing.T) {
	tests := []struct {
		name   string
		script []scriptEntry
		want   bool
	}{
		{
			name: "socket and daemon present",
			script: []scriptEntry{
				{match: "docker.sock", result: ok("srw-rw---- 1 dev dev 0 docker.sock")},
				{match: "ps aux", result: ok("dev 4242 dockerd-rootless.sh")},
			},
			want: true,
		},
		{
			name: "no socket",
			script: []scriptEntry{
				{match: "docker.sock", result: ok(notFoundMarker)},
			},
			want: false,
		},
		{
			name: "stale socket without daemon",
			script: []scriptEntry{
				{match: "docker.sock", result: ok("srw-rw---- 1 dev dev 0 docker.sock")},
				{match: "ps aux", result: ok(notRunningMarker)},
			},
			want: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := NewRootlessSetup(&scriptedTransport{script: tt.script})
			if got := r.Configured(context.Background()); got != tt.want {
				t.Errorf("Configured() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestRootlessSetup_SetupSkipsInstalledPackages(t *testing.T) {
	tr := &scriptedTransport{script: []scriptEntry{
		{match: "command -v", result: ok("found")},
		{match: "os-release", result: ok("ubuntu")},
		{match: "systemctl --user", result: ok("")},
		{match: "docker info", result: ok("Server Version: 27.0")},
	}}
	r := NewRootlessSetup(tr)

	if err := r.Setup(context.Background(), "dev"); err != nil {
		t.Fatalf("Setup() = %v", err)
	}
	for _, c := range tr.commands {
		if strings.Contains(c, "apt-get install") {
			t.Errorf("no package installs expected when binaries exist, ran %v", tr.commands)
		}
	}
}

func TestRootlessSetup_SetupInstallsExtras(t *testing.T) {
	tr := &scriptedTransport{script: []scriptEntry{
		{match: "command -v docker ", result: ok("found")},
		{match: "command -v dockerd-rootless.sh", result: ok(notFoundMarker)},
		{match: "os-release", result: ok("ubuntu")},
		{match: "systemctl --user", result: ok("")},
		{match: "docker info", result: ok("Server Version: 27.0")},
	}}
	r := NewRootlessSetup(tr)

	if err := r.Setup(context.Background(), "dev"); err != nil {
		t.Fatalf("Setup() = %v", err)
	}

	installed := false
	for _, c := range tr.commands {
		if strings.Contains(c, "docker-ce-rootless-extras") {
			installed = true
		}
	}
	if !installed {
		t.Errorf("rootless extras install missing from %v", tr.commands)
	}
}

func TestRootlessSetup_UnsupportedDistro(t *testing.T) {
	tr := &scriptedTransport{script: []scriptEntry{
		{match: "command -v", result: ok(notFoundMarker)},
		{match: "os-release", result: ok("arch")},
	}}
	r := NewRootlessSetup(tr)

	err := r.Setup(context.Background(), "dev")
	if !errors.Is(err, ErrUnsupportedDistro) {
		t.Fatalf("Setup() = %v, want ErrUnsupportedDistro", err)
	}
}

func TestRootlessSetup_EnablesUserNamespaces(t *testing.T) {
	tr := &scriptedTransport{script: []scriptEntry{
		{match: "command -v", result: ok("found")},
		{match: "os-release", result: ok("ubuntu")},
		{match: "sysctl -n", result: ok("0\n")},
		{match: "systemctl --user", result: ok("")},
		{match: "docker info", result: ok("Server Version: 27.0")},
	}}
	r := NewRootlessSetup(tr)

	if err := r.Setup(context.Background(), "dev"); err != nil {
		t.Fatalf("Setup() = %v", err)
	}

	enabled := false
	for _, c := range tr.commands {
		if strings.Contains(c, "sysctl -w kernel.unprivileged_userns_clone=1") {
			enabled = true
		}
	}
	if !enabled {
		t.Errorf("userns knob left disabled, ran %v", tr.commands)
	}
}

func TestRootlessSetup_DaemonFallback(t *testing.T) {
	tr := &scriptedTransport{script: []scriptEntry{
		{match: "command -v", result: ok("found")},
		{match: "os-release", result: ok("ubuntu")},
		{match: "systemctl --user", result: fail(1, "Failed to connect to bus")},
		{match: "dockerd-rootless.sh >/dev/null", result: ok("4242\n")},
		{match: "docker info", result: ok("Server Version: 27.0")},
	}}
	r := NewRootlessSetup(tr)

	if err := r.Setup(context.Background(), "dev"); err != nil {
		t.Fatalf("Setup() should fall back to dockerd-rootless.sh: %v", err)
	}
}

func TestRootlessSetup_UserScopeCommandsRunUnescalated(t *testing.T) {
	tr := &scriptedTransport{script: []scriptEntry{
		{match: "whoami", result: ok("dev\n")},
		{match: "command -v", result: ok("found")},
		{match: "os-release", result: ok("ubuntu")},
		{match: "sysctl -n", result: ok("0\n")},
		{match: "systemctl --user", result: fail(1, "Failed to connect to bus")},
		{match: "dockerd-rootless.sh >/dev/null", result: ok("4242\n")},
		{match: "docker info", result: ok("Server Version: 27.0")},
	}}
	r := NewRootlessSetup(tr)

	if err := r.Setup(context.Background(), ""); err != nil {
		t.Fatalf("Setup() = %v", err)
	}

	userScope := func(c string) bool {
		for _, u := range tr.userCommands {
			if u == c {
				return true
			}
		}
		return false
	}

	// These target the invoking account's session or home: escalating them
	// would aim them at root and break the setup for the real user.
	for _, c := range tr.commands {
		switch {
		case strings.Contains(c, "whoami"),
			strings.Contains(c, "systemctl --user"),
			strings.Contains(c, "dockerd-rootless.sh >/dev/null"),
			strings.Contains(c, ".bashrc"),
			strings.Contains(c, ".profile"):
			if !userScope(c) {
				t.Errorf("user-scope command ran escalated: %q", c)
			}
		case strings.Contains(c, "sysctl -w"):
			if userScope(c) {
				t.Errorf("privileged sysctl write ran unescalated: %q", c)
			}
		}
	}
}

func TestRootlessSetup_VerificationFailure(t *testing.T) {
	tr := &scriptedTransport{script: []scriptEntry{
		{match: "command -v", result: ok("found")},
		{match: "os-release", result: ok("ubuntu")},
		{match: "systemctl --user", result: ok("")},
		{match: "docker info", result: ok(verifyFailMarker)},
	}}
	r := NewRootlessSetup(tr)

	err := r.Setup(context.Background(), "dev")
	if !errors.Is(err, ErrRootlessSetupFailed) {
		t.Fatalf("Setup() = %v, want ErrRootlessSetupFailed", err)
	}
}
