package commands

import (
	"github.com/spf13/cobra"

	"github.com/kubeuno/kubeuno/cmd/kubeuno/handlers"
)

// Doctor returns the command that checks the environment before a bootstrap.
func Doctor() *cobra.Command {
	var configPath string

	cmd := &cobra.Command{
		Use:   "doctor",
		Short: "Check host tools, OS support, and cluster reachability",
		Long: `Check whether this environment can run a bootstrap.

doctor verifies the host tools the pipeline invokes, identifies the OS
family, and, if an admin kubeconfig is already present, reports whether the
cluster API answers.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return handlers.Doctor(cmd.Context(), configPath)
		},
	}

	cmd.Flags().StringVarP(&configPath, "config", "c", "", "Path to configuration file (default: kubeuno.yaml)")

	return cmd
}
