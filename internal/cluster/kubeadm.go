// Package cluster provides the control-plane bootstrap stages: kubeadm
// init, kubeconfig installation, and control-plane taint removal.
package cluster

import (
	"fmt"

	"github.com/kubeuno/kubeuno/internal/config"
	"github.com/kubeuno/kubeuno/internal/provisioning"
)

// InitStage initializes the control plane with kubeadm. kubeadm init is not
// re-runnable, so the admin credential file it writes doubles as the
// idempotency marker.
func InitStage() provisioning.Stage {
	return provisioning.Stage{
		Name: "kubeadm-init",
		Check: func(ctx *provisioning.Context) (bool, error) {
			exists, err := ctx.Host.FileExists(ctx, config.AdminConfPath)
			if err != nil {
				return false, fmt.Errorf("checking %s: %w", config.AdminConfPath, err)
			}
			return exists, nil
		},
		Actions: []provisioning.Action{
			initControlPlane,
		},
	}
}

func initControlPlane(ctx *provisioning.Context) error {
	args := []string{
		"init",
		"--pod-network-cidr=" + ctx.Config.PodNetworkCIDR,
	}
	if ctx.Config.ClusterName != "" {
		args = append(args, "--node-name="+ctx.Config.ClusterName)
	}

	if _, err := ctx.Host.Run(ctx, "kubeadm", args...); err != nil {
		return fmt.Errorf("kubeadm init failed: %w", err)
	}
	ctx.State.NodeName = ctx.Config.ClusterName
	return nil
}
