// Package host implements the host-facing side of the bootstrap pipeline:
// command execution on the target machine, OS family detection, and the
// stages that prepare the machine for kubeadm (kernel settings, package
// installation, container runtime configuration).
package host

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"os/exec"
	"path/filepath"
)

// ExecRunner runs commands and file operations on the local machine.
type ExecRunner struct{}

// NewExecRunner creates a runner for the local machine.
func NewExecRunner() *ExecRunner {
	return &ExecRunner{}
}

// Run executes a command and returns its combined output.
func (r *ExecRunner) Run(ctx context.Context, name string, args ...string) ([]byte, error) {
	// #nosec G204 - commands are assembled from internal stage definitions
	cmd := exec.CommandContext(ctx, name, args...)
	output, err := cmd.CombinedOutput()
	if err != nil {
		return output, fmt.Errorf("%s failed: %w\noutput: %s", name, err, output)
	}
	return output, nil
}

// ReadFile returns the contents of a local file.
func (r *ExecRunner) ReadFile(_ context.Context, path string) ([]byte, error) {
	// #nosec G304
	return os.ReadFile(path)
}

// WriteFile writes a local file, creating parent directories.
func (r *ExecRunner) WriteFile(_ context.Context, path string, data []byte, perm fs.FileMode) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create directory for %s: %w", path, err)
	}
	if err := os.WriteFile(path, data, perm); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	return nil
}

// FileExists reports whether a local path exists.
func (r *ExecRunner) FileExists(_ context.Context, path string) (bool, error) {
	_, err := os.Stat(path)
	if err == nil {
		return true, nil
	}
	if os.IsNotExist(err) {
		return false, nil
	}
	return false, err
}

// LookPath resolves a binary on the local PATH.
func (r *ExecRunner) LookPath(_ context.Context, name string) (string, error) {
	return exec.LookPath(name)
}
