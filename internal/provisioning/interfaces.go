package provisioning

import (
	"context"
	"io/fs"
)

// Runner executes commands and file operations against the target host.
// Implemented by host.ExecRunner for the local machine and ssh.Runner for
// remote targets.
type Runner interface {
	// Run executes a command and returns its combined output.
	// A nonzero exit status is returned as an error.
	Run(ctx context.Context, name string, args ...string) ([]byte, error)

	// ReadFile returns the contents of a file on the host.
	ReadFile(ctx context.Context, path string) ([]byte, error)

	// WriteFile writes a file on the host, creating parent directories.
	WriteFile(ctx context.Context, path string, data []byte, perm fs.FileMode) error

	// FileExists reports whether a path exists on the host.
	FileExists(ctx context.Context, path string) (bool, error)

	// LookPath resolves a binary name on the host's PATH.
	LookPath(ctx context.Context, name string) (string, error)
}

// ClusterAPI is the slice of the Kubernetes API the pipeline needs.
// Implemented by k8s.Client.
type ClusterAPI interface {
	// Apply server-side-applies multi-document YAML manifests.
	Apply(ctx context.Context, manifests []byte, fieldManager string) error

	// APIServerReady reports whether the API server answers requests.
	APIServerReady(ctx context.Context) (bool, error)

	// NodeReady reports whether all nodes have a true Ready condition.
	NodeReady(ctx context.Context) (bool, error)

	// DeploymentAvailable reports whether a deployment has a true
	// Available condition.
	DeploymentAvailable(ctx context.Context, namespace, name string) (bool, error)

	// RemoveControlPlaneTaints strips control-plane scheduling taints.
	RemoveControlPlaneTaints(ctx context.Context) error
}
