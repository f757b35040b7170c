package commands

import (
	"github.com/spf13/cobra"

	"github.com/kubeuno/kubeuno/cmd/kubeuno/handlers"
)

// Up returns the command that bootstraps the cluster.
//
// The command runs every stage of the pipeline in order: host preparation,
// package installation, container runtime configuration, kubeadm init,
// kubeconfig installation, taint removal, and the enabled addons. Stages
// that are already satisfied are skipped, so re-running converges an
// interrupted bootstrap instead of redoing it.
//
// Optional flags:
//
//	--config, -c:     Path to configuration YAML file (default: auto-detect kubeuno.yaml)
//	--dry-run:        Print the stage plan without executing anything
//	--verbose, -v:    Show readiness probe progress while waiting
//	--metrics-listen: Expose Prometheus stage metrics on this address during the run
func Up() *cobra.Command {
	var opts handlers.UpOptions

	cmd := &cobra.Command{
		Use:   "up",
		Short: "Bootstrap the cluster on this host (or over SSH)",
		Long: `Bootstrap a single-node Kubernetes cluster.

The pipeline prepares the host, installs kubeadm and the container runtime,
initializes the control plane, and applies the enabled addons (CNI,
ingress-nginx, cert-manager). Each stage checks whether its work is already
done before acting, so the command is safe to re-run.

If no config file is specified, kubeuno looks for kubeuno.yaml in the
current directory and falls back to built-in defaults.

Examples:
  # Bootstrap the local machine with defaults
  sudo kubeuno up

  # Bootstrap using a specific config file
  sudo kubeuno up -c cluster.yaml

  # Show what would run without touching the host
  kubeuno up --dry-run`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return handlers.Up(cmd.Context(), opts)
		},
	}

	cmd.Flags().StringVarP(&opts.ConfigPath, "config", "c", "", "Path to configuration file (default: kubeuno.yaml)")
	cmd.Flags().BoolVar(&opts.DryRun, "dry-run", false, "Print the stage plan without executing anything")
	cmd.Flags().BoolVarP(&opts.Verbose, "verbose", "v", false, "Show readiness probe progress while waiting")
	cmd.Flags().StringVar(&opts.MetricsListen, "metrics-listen", "", "Address to expose Prometheus stage metrics on, e.g. :9090")

	return cmd
}
