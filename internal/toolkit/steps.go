// SPDX-License-Identifier: MPL-2.0

package toolkit

type (
	// Step is one command in an ordered install sequence. Non-critical steps
	// log their failure and let the sequence continue; critical ones abort
	// it (fail-fast, never partial-success).
	Step struct {
		Name     string
		Command  string
		Critical bool
	}
)

// toolkitInstallSteps returns the NVIDIA Container Toolkit install sequence
// for a distro family: package repository registration, package install,
// runtime reconfiguration, runtime restart. The restart is non-critical
// because some hosts manage the daemon outside systemd.
func toolkitInstallSteps(family DistroFamily, distro Distro) ([]Step, bool) {
	switch family {
	case FamilyDebian:
		return []Step{
			{
				Name:     "refresh package index",
				Command:  "DEBIAN_FRONTEND=noninteractive apt-get update",
				Critical: true,
			},
			{
				Name:     "install repo prerequisites",
				Command:  "DEBIAN_FRONTEND=noninteractive apt-get install -y curl ca-certificates gnupg",
				Critical: true,
			},
			{
				Name:     "install NVIDIA repo keyring",
				Command:  "curl -fsSL https://nvidia.github.io/libnvidia-container/gpgkey | gpg --dearmor -o /usr/share/keyrings/nvidia-container-toolkit-keyring.gpg",
				Critical: true,
			},
			{
				Name: "register NVIDIA package repository",
				Command: "curl -s -L https://nvidia.github.io/libnvidia-container/" + distro.String() + "/libnvidia-container.list" +
					" | sed 's#deb https://#deb [signed-by=/usr/share/keyrings/nvidia-container-toolkit-keyring.gpg] https://#g'" +
					" > /etc/apt/sources.list.d/nvidia-container-toolkit.list",
				Critical: true,
			},
			{
				Name:     "refresh package index with NVIDIA repo",
				Command:  "DEBIAN_FRONTEND=noninteractive apt-get update",
				Critical: true,
			},
			{
				Name:     "install nvidia-container-toolkit",
				Command:  "DEBIAN_FRONTEND=noninteractive apt-get install -y nvidia-container-toolkit",
				Critical: true,
			},
			{
				Name:     "configure Docker runtime",
				Command:  "nvidia-ctk runtime configure --runtime=docker",
				Critical: true,
			},
			{
				Name:     "restart Docker daemon",
				Command:  "systemctl restart docker",
				Critical: false,
			},
		}, true

	case FamilyRHEL:
		return []Step{
			{
				Name:     "install curl",
				Command:  "dnf install -y curl",
				Critical: true,
			},
			{
				Name:     "register NVIDIA package repository",
				Command:  "curl -s -L https://nvidia.github.io/libnvidia-container/stable/rpm/nvidia-container-toolkit.repo | tee /etc/yum.repos.d/nvidia-container-toolkit.repo",
				Critical: true,
			},
			{
				Name:     "install nvidia-container-toolkit",
				Command:  "dnf install -y nvidia-container-toolkit",
				Critical: true,
			},
			{
				Name:     "configure Docker runtime",
				Command:  "nvidia-ctk runtime configure --runtime=docker",
				Critical: true,
			},
			{
				Name:     "restart Docker daemon",
				Command:  "systemctl restart docker",
				Critical: false,
			},
		}, true

	default:
		return nil, false
	}
}

// dockerInstallSteps returns the Docker CE install sequence used by the
// rootless setup when no docker binary is present on the host.
func dockerInstallSteps(family DistroFamily) ([]Step, bool) {
	switch family {
	case FamilyDebian:
		return []Step{
			{
				Name:     "refresh package index",
				Command:  "apt-get update",
				Critical: true,
			},
			{
				Name:     "install repo prerequisites",
				Command:  "apt-get install -y apt-transport-https ca-certificates curl gnupg lsb-release",
				Critical: true,
			},
			{
				Name:     "install Docker repo keyring",
				Command:  "curl -fsSL https://download.docker.com/linux/$(lsb_release -is | tr '[:upper:]' '[:lower:]')/gpg | gpg --dearmor -o /usr/share/keyrings/docker-archive-keyring.gpg",
				Critical: true,
			},
			{
				Name: "register Docker package repository",
				Command: `echo "deb [arch=$(dpkg --print-architecture) signed-by=/usr/share/keyrings/docker-archive-keyring.gpg]` +
					` https://download.docker.com/linux/$(lsb_release -is | tr '[:upper:]' '[:lower:]') $(lsb_release -cs) stable"` +
					` | tee /etc/apt/sources.list.d/docker.list > /dev/null`,
				Critical: true,
			},
			{
				Name:     "refresh package index with Docker repo",
				Command:  "apt-get update",
				Critical: true,
			},
			{
				Name:     "install docker-ce",
				Command:  "apt-get install -y docker-ce docker-ce-cli containerd.io",
				Critical: true,
			},
		}, true

	case FamilyRHEL:
		return []Step{
			{
				Name:     "install dnf plugins",
				Command:  "dnf -y install dnf-plugins-core",
				Critical: true,
			},
			{
				Name:     "register Docker package repository",
				Command:  "dnf config-manager --add-repo https://download.docker.com/linux/centos/docker-ce.repo",
				Critical: true,
			},
			{
				Name:     "install docker-ce",
				Command:  "dnf install -y docker-ce docker-ce-cli containerd.io",
				Critical: true,
			},
		}, true

	default:
		return nil, false
	}
}

// rootlessExtrasStep returns the package-install command for the rootless
// Docker extras of a distro family.
func rootlessExtrasStep(family DistroFamily) (Step, bool) {
	switch family {
	case FamilyDebian:
		return Step{
			Name:     "install rootless extras",
			Command:  "apt-get install -y docker-ce-rootless-extras uidmap slirp4netns fuse-overlayfs",
			Critical: true,
		}, true
	case FamilyRHEL:
		return Step{
			Name:     "install rootless extras",
			Command:  "dnf install -y docker-ce-rootless-extras fuse-overlayfs slirp4netns",
			Critical: true,
		}, true
	default:
		return Step{}, false
	}
}
