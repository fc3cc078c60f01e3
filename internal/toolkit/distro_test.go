// SPDX-License-Identifier: MPL-2.0

package toolkit

import (
	"context"
	"testing"
	"time"
)

func TestDistroFamily(t *testing.T) {
	tests := []struct {
		distro Distro
		want   DistroFamily
	}{
		{"ubuntu", FamilyDebian},
		{"debian", FamilyDebian},
		{"centos", FamilyRHEL},
		{"rhel", FamilyRHEL},
		{"fedora", FamilyRHEL},
		{"rocky", FamilyRHEL},
		{"almalinux", FamilyRHEL},
		{"alpine", FamilyUnknown},
		{"arch", FamilyUnknown},
		{"", FamilyUnknown},
	}

	for _, tt := range tests {
		if got := tt.distro.Family(); got != tt.want {
			t.Errorf("Distro(%q).Family() = %q, want %q", tt.distro, got, tt.want)
		}
	}
}

func TestDetectDistro(t *testing.T) {
	tests := []struct {
		name   string
		stdout string
		exit   int
		want   Distro
	}{
		{name: "plain id", stdout: "ubuntu\n", want: "ubuntu"},
		{name: "quoted id", stdout: `"centos"` + "\n", want: "centos"},
		{name: "mixed case", stdout: "Fedora\n", want: "fedora"},
		{name: "read failure", exit: 1, want: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tr := &scriptedTransport{script: []scriptEntry{
				{match: "os-release", result: ok(tt.stdout)},
			}}
			if tt.exit != 0 {
				tr.script = []scriptEntry{{match: "os-release", result: fail(tt.exit, "no such file")}}
			}

			if got := DetectDistro(context.Background(), tr, time.Second); got != tt.want {
				t.Errorf("DetectDistro() = %q, want %q", got, tt.want)
			}
		})
	}
}
