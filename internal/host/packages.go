package host

import (
	"fmt"

	"github.com/kubeuno/kubeuno/internal/provisioning"
)

const (
	aptKeyringPath  = "/etc/apt/keyrings/kubernetes-apt-keyring.gpg"
	aptSourcePath   = "/etc/apt/sources.list.d/kubernetes.list"
	yumRepoPath     = "/etc/yum.repos.d/kubernetes.repo"
	pkgsRepoBaseURL = "https://pkgs.k8s.io/core:/stable:/v%s"
)

// PackagesStage installs containerd, kubelet, kubeadm, and kubectl from the
// pkgs.k8s.io repository for the configured minor version. The stage is
// satisfied when kubeadm is already on the PATH. On RHEL-family hosts dnf
// is tried first with yum as the fallback candidate.
func PackagesStage() provisioning.Stage {
	return provisioning.Stage{
		Name: "install-packages",
		Check: func(ctx *provisioning.Context) (bool, error) {
			_, err := ctx.Host.LookPath(ctx, "kubeadm")
			return err == nil, nil
		},
		Actions: []provisioning.Action{
			installPackagesPrimary,
			installPackagesFallback,
		},
	}
}

func installPackagesPrimary(ctx *provisioning.Context) error {
	switch ctx.State.OSFamily {
	case provisioning.FamilyDebian:
		return installDebianPackages(ctx)
	case provisioning.FamilyRHEL:
		return installRHELPackages(ctx, "dnf")
	default:
		return fmt.Errorf("no package installer for OS family %q", ctx.State.OSFamily)
	}
}

// installPackagesFallback retries RHEL installation with yum for hosts
// without dnf. Debian hosts have no second candidate.
func installPackagesFallback(ctx *provisioning.Context) error {
	if ctx.State.OSFamily != provisioning.FamilyRHEL {
		return fmt.Errorf("no fallback package installer for OS family %q", ctx.State.OSFamily)
	}
	return installRHELPackages(ctx, "yum")
}

func installDebianPackages(ctx *provisioning.Context) error {
	repoURL := fmt.Sprintf(pkgsRepoBaseURL+"/deb/", ctx.Config.KubernetesVersion)

	commands := [][]string{
		{"apt-get", "update"},
		{"apt-get", "install", "-y", "apt-transport-https", "ca-certificates", "curl", "gpg", "containerd"},
		{"sh", "-c", fmt.Sprintf(
			"curl -fsSL %sRelease.key | gpg --dearmor --yes -o %s", repoURL, aptKeyringPath)},
	}
	if err := runAll(ctx, commands); err != nil {
		return err
	}

	source := fmt.Sprintf("deb [signed-by=%s] %s /\n", aptKeyringPath, repoURL)
	if err := ctx.Host.WriteFile(ctx, aptSourcePath, []byte(source), 0o644); err != nil {
		return err
	}

	return runAll(ctx, [][]string{
		{"apt-get", "update"},
		{"apt-get", "install", "-y", "kubelet", "kubeadm", "kubectl"},
		{"apt-mark", "hold", "kubelet", "kubeadm", "kubectl"},
		{"systemctl", "enable", "--now", "kubelet"},
	})
}

func installRHELPackages(ctx *provisioning.Context, tool string) error {
	repoURL := fmt.Sprintf(pkgsRepoBaseURL+"/rpm/", ctx.Config.KubernetesVersion)

	repo := fmt.Sprintf(`[kubernetes]
name=Kubernetes
baseurl=%s
enabled=1
gpgcheck=1
gpgkey=%srepodata/repomd.xml.key
exclude=kubelet kubeadm kubectl cri-tools kubernetes-cni
`, repoURL, repoURL)
	if err := ctx.Host.WriteFile(ctx, yumRepoPath, []byte(repo), 0o644); err != nil {
		return err
	}

	return runAll(ctx, [][]string{
		{tool, "install", "-y", "containerd"},
		{tool, "install", "-y", "kubelet", "kubeadm", "kubectl", "--disableexcludes=kubernetes"},
		{"systemctl", "enable", "--now", "kubelet"},
	})
}

// runAll executes commands in order, stopping at the first failure.
func runAll(ctx *provisioning.Context, commands [][]string) error {
	for _, command := range commands {
		if _, err := ctx.Host.Run(ctx, command[0], command[1:]...); err != nil {
			return err
		}
	}
	return nil
}
