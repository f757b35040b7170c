package handlers

import (
	"context"
	"os"
	"time"

	"github.com/kubeuno/kubeuno/internal/config"
	"github.com/kubeuno/kubeuno/internal/host"
	"github.com/kubeuno/kubeuno/internal/k8s"
	"github.com/kubeuno/kubeuno/internal/provisioning"
	"github.com/kubeuno/kubeuno/internal/ui"
	"github.com/kubeuno/kubeuno/internal/util/prerequisites"
)

// apiServerProbeTimeout bounds the doctor's reachability check so a dead
// cluster does not hang the command.
const apiServerProbeTimeout = 10 * time.Second

// Doctor checks host tools, OS support, and cluster reachability. It
// returns an error only for conditions that would make a bootstrap fail.
func Doctor(ctx context.Context, configPath string) error {
	cfg, err := loadConfig(configPath)
	if err != nil {
		return err
	}

	renderer := ui.NewRenderer(os.Stdout)

	runner, cleanup, err := buildRunner(cfg)
	if err != nil {
		return err
	}
	defer cleanup()

	bootstrap := checkTools(ctx, runner, prerequisites.BootstrapTools())
	renderer.Prerequisites("Bootstrap tools", bootstrap)
	renderer.Prerequisites("Cluster tools (installed by the package stage)",
		checkTools(ctx, runner, prerequisites.ClusterTools()))
	renderer.Prerequisites("Optional tools", checkTools(ctx, runner, prerequisites.OptionalTools()))

	info, osErr := host.Detect(ctx, runner)
	if osErr != nil {
		renderer.Errorf("OS: %v", osErr)
	} else {
		renderer.Successf("OS: %s (%s family)", info.PrettyName, info.Family)
	}

	checkCluster(ctx, renderer, runner)

	if osErr != nil {
		return osErr
	}
	return bootstrap.Error()
}

// checkCluster reports API server reachability when an admin kubeconfig is
// already on the host. A missing kubeconfig just means no bootstrap ran yet.
func checkCluster(ctx context.Context, renderer *ui.Renderer, runner provisioning.Runner) {
	kubeconfig, err := runner.ReadFile(ctx, config.AdminConfPath)
	if err != nil {
		renderer.Statusf("Cluster: no admin kubeconfig at %s yet", config.AdminConfPath)
		return
	}

	client, err := k8s.NewClientFromBytes(kubeconfig)
	if err != nil {
		renderer.Errorf("Cluster: invalid kubeconfig at %s: %v", config.AdminConfPath, err)
		return
	}

	if err := client.WaitForAPIServer(ctx, apiServerProbeTimeout); err != nil {
		renderer.Errorf("Cluster: API server not answering: %v", err)
		return
	}
	renderer.Successf("Cluster: API server is answering")
}
