package host

import (
	"fmt"

	"github.com/kubeuno/kubeuno/internal/provisioning"
)

const (
	modulesConfPath = "/etc/modules-load.d/kubeuno.conf"
	sysctlConfPath  = "/etc/sysctl.d/99-kubeuno-cri.conf"
)

const modulesConf = `overlay
br_netfilter
`

const sysctlConf = `net.bridge.bridge-nf-call-iptables  = 1
net.bridge.bridge-nf-call-ip6tables = 1
net.ipv4.ip_forward                 = 1
`

// PrepareStage disables swap, loads the kernel modules the container
// runtime needs, and applies the bridge/forwarding sysctls. The persisted
// config files double as the idempotency marker.
func PrepareStage() provisioning.Stage {
	return provisioning.Stage{
		Name:  "prepare-host",
		Check: filesExist(modulesConfPath, sysctlConfPath),
		Actions: []provisioning.Action{
			prepareHost,
		},
	}
}

func prepareHost(ctx *provisioning.Context) error {
	if _, err := ctx.Host.Run(ctx, "swapoff", "-a"); err != nil {
		return err
	}
	// Keep swap off across reboots.
	if _, err := ctx.Host.Run(ctx, "sh", "-c", `sed -ri '/\sswap\s/s/^#?/#/' /etc/fstab`); err != nil {
		return err
	}

	for _, module := range []string{"overlay", "br_netfilter"} {
		if _, err := ctx.Host.Run(ctx, "modprobe", module); err != nil {
			return err
		}
	}
	if err := ctx.Host.WriteFile(ctx, modulesConfPath, []byte(modulesConf), 0o644); err != nil {
		return err
	}

	if err := ctx.Host.WriteFile(ctx, sysctlConfPath, []byte(sysctlConf), 0o644); err != nil {
		return err
	}
	if _, err := ctx.Host.Run(ctx, "sysctl", "--system"); err != nil {
		return err
	}

	return nil
}

// filesExist builds an idempotency check that is satisfied when every
// listed path exists on the host.
func filesExist(paths ...string) provisioning.Predicate {
	return func(ctx *provisioning.Context) (bool, error) {
		for _, path := range paths {
			exists, err := ctx.Host.FileExists(ctx, path)
			if err != nil {
				return false, fmt.Errorf("checking %s: %w", path, err)
			}
			if !exists {
				return false, nil
			}
		}
		return true, nil
	}
}
