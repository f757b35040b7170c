package cluster

import (
	"fmt"

	"github.com/kubeuno/kubeuno/internal/config"
	"github.com/kubeuno/kubeuno/internal/provisioning"
)

// ConnectFunc builds a cluster API handle from kubeconfig bytes. Injected so
// the pipeline can be exercised without a live API server.
type ConnectFunc func(kubeconfig []byte) (provisioning.ClusterAPI, error)

// installKubeconfigScript copies the admin credential into the invoking
// user's home and, when the run came through sudo, into the original user's
// home with their ownership. Runs through sh so it behaves identically for
// local and SSH hosts.
const installKubeconfigScript = `set -e
install -d -m 755 "$HOME/.kube"
install -m 600 /etc/kubernetes/admin.conf "$HOME/.kube/config"
if [ -n "$SUDO_USER" ] && [ "$SUDO_USER" != root ]; then
  user_home=$(getent passwd "$SUDO_USER" | cut -d: -f6)
  install -d -m 755 -o "$SUDO_UID" -g "$SUDO_GID" "$user_home/.kube"
  install -m 600 -o "$SUDO_UID" -g "$SUDO_GID" /etc/kubernetes/admin.conf "$user_home/.kube/config"
fi
`

// KubeconfigStage installs the admin kubeconfig into user home directories
// and connects the cluster API handle. Every later stage reaches the cluster
// through ctx.Kube, so the stage also probes API server health before the
// sequencer moves on.
func KubeconfigStage(connect ConnectFunc, timeouts *config.Timeouts) provisioning.Stage {
	return provisioning.Stage{
		Name: "install-kubeconfig",
		Actions: []provisioning.Action{
			func(ctx *provisioning.Context) error {
				return installKubeconfig(ctx, connect)
			},
		},
		Probe: &provisioning.Probe{
			Ready: func(ctx *provisioning.Context) (bool, error) {
				return ctx.Kube.APIServerReady(ctx)
			},
			Timeout:  timeouts.APIServer,
			Interval: timeouts.PollInterval,
		},
	}
}

func installKubeconfig(ctx *provisioning.Context, connect ConnectFunc) error {
	kubeconfig, err := ctx.Host.ReadFile(ctx, config.AdminConfPath)
	if err != nil {
		return fmt.Errorf("reading %s: %w", config.AdminConfPath, err)
	}
	ctx.State.Kubeconfig = kubeconfig

	if _, err := ctx.Host.Run(ctx, "sh", "-c", installKubeconfigScript); err != nil {
		return fmt.Errorf("installing kubeconfig: %w", err)
	}

	kube, err := connect(kubeconfig)
	if err != nil {
		return fmt.Errorf("connecting to cluster: %w", err)
	}
	ctx.Kube = kube
	return nil
}
