package host

import (
	"fmt"
	"strings"

	"github.com/kubeuno/kubeuno/internal/config"
	"github.com/kubeuno/kubeuno/internal/provisioning"
)

const systemdCgroupMarker = "SystemdCgroup = true"

// ContainerdStage writes a containerd configuration with the systemd cgroup
// driver and restarts the service. kubelet and containerd must agree on the
// cgroup driver or pods never leave ContainerCreating.
func ContainerdStage() provisioning.Stage {
	return provisioning.Stage{
		Name: "configure-containerd",
		Check: func(ctx *provisioning.Context) (bool, error) {
			exists, err := ctx.Host.FileExists(ctx, config.ContainerdConfigPath)
			if err != nil {
				return false, fmt.Errorf("checking %s: %w", config.ContainerdConfigPath, err)
			}
			if !exists {
				return false, nil
			}
			data, err := ctx.Host.ReadFile(ctx, config.ContainerdConfigPath)
			if err != nil {
				return false, fmt.Errorf("reading %s: %w", config.ContainerdConfigPath, err)
			}
			return strings.Contains(string(data), systemdCgroupMarker), nil
		},
		Actions: []provisioning.Action{
			configureContainerd,
		},
	}
}

func configureContainerd(ctx *provisioning.Context) error {
	defaultConfig, err := ctx.Host.Run(ctx, "containerd", "config", "default")
	if err != nil {
		return err
	}

	patched := strings.Replace(string(defaultConfig),
		"SystemdCgroup = false", systemdCgroupMarker, 1)
	if !strings.Contains(patched, systemdCgroupMarker) {
		return fmt.Errorf("generated containerd config has no SystemdCgroup setting to patch")
	}

	if err := ctx.Host.WriteFile(ctx, config.ContainerdConfigPath, []byte(patched), 0o644); err != nil {
		return err
	}

	if _, err := ctx.Host.Run(ctx, "systemctl", "enable", "containerd"); err != nil {
		return err
	}
	if _, err := ctx.Host.Run(ctx, "systemctl", "restart", "containerd"); err != nil {
		return err
	}
	return nil
}
