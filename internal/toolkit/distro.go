// SPDX-License-Identifier: MPL-2.0

package toolkit

import (
	"context"
	"strings"
	"time"

	"podsmith/internal/transport"
)

const (
	// FamilyDebian covers apt-based distributions.
	FamilyDebian DistroFamily = "debian"
	// FamilyRHEL covers dnf-based distributions.
	FamilyRHEL DistroFamily = "rhel"
	// FamilyUnknown means the distribution cannot be provisioned automatically.
	FamilyUnknown DistroFamily = ""
)

type (
	// DistroFamily groups distributions by package manager.
	DistroFamily string

	// Distro is the lowercased /etc/os-release ID value (e.g. "ubuntu").
	Distro string
)

// Family maps a distro ID to its package-manager family.
func (d Distro) Family() DistroFamily {
	switch d {
	case "ubuntu", "debian":
		return FamilyDebian
	case "centos", "rhel", "fedora", "rocky", "almalinux":
		return FamilyRHEL
	default:
		return FamilyUnknown
	}
}

// String returns the distro ID.
func (d Distro) String() string { return string(d) }

// DetectDistro reads the distribution ID from /etc/os-release.
func DetectDistro(ctx context.Context, tr transport.Transport, timeout time.Duration) Distro {
	res := tr.Run(ctx, "cat /etc/os-release | grep -i '^ID=' | cut -d= -f2", timeout)
	if !res.Success() {
		return ""
	}
	id := strings.ToLower(strings.Trim(strings.TrimSpace(res.Stdout), `"`))
	return Distro(id)
}
