// Package fake provides in-memory implementations of the provisioning
// interfaces for tests: a scriptable host runner and a cluster API stub.
package fake

import (
	"context"
	"fmt"
	"io/fs"
	"strings"
	"sync"
)

// Runner is a scriptable in-memory provisioning.Runner.
// Commands are recorded; outputs and errors are looked up first by the full
// command line, then by the binary name.
type Runner struct {
	mu sync.Mutex

	// Files backs ReadFile/WriteFile/FileExists.
	Files map[string][]byte

	// Paths backs LookPath; missing names resolve to an error.
	Paths map[string]string

	// Outputs and Errors script Run results.
	Outputs map[string][]byte
	Errors  map[string]error

	// Commands records every Run invocation as a single command line.
	Commands []string

	// OnRun, when set, is invoked after each successful Run with the full
	// command line. Tests use it to simulate command side effects, like
	// kubeadm init writing the admin credential file.
	OnRun func(line string)
}

// NewRunner creates an empty scriptable runner.
func NewRunner() *Runner {
	return &Runner{
		Files:   make(map[string][]byte),
		Paths:   make(map[string]string),
		Outputs: make(map[string][]byte),
		Errors:  make(map[string]error),
	}
}

func commandLine(name string, args []string) string {
	if len(args) == 0 {
		return name
	}
	return name + " " + strings.Join(args, " ")
}

// Run implements provisioning.Runner.
func (r *Runner) Run(_ context.Context, name string, args ...string) ([]byte, error) {
	r.mu.Lock()
	line := commandLine(name, args)
	r.Commands = append(r.Commands, line)

	for _, key := range []string{line, name} {
		if err, ok := r.Errors[key]; ok {
			r.mu.Unlock()
			return nil, err
		}
	}

	var output []byte
	for _, key := range []string{line, name} {
		if scripted, ok := r.Outputs[key]; ok {
			output = scripted
			break
		}
	}
	r.mu.Unlock()

	if r.OnRun != nil {
		r.OnRun(line)
	}
	return output, nil
}

// Ran reports whether a command line containing the fragment was run.
func (r *Runner) Ran(fragment string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, line := range r.Commands {
		if strings.Contains(line, fragment) {
			return true
		}
	}
	return false
}

// ReadFile implements provisioning.Runner.
func (r *Runner) ReadFile(_ context.Context, path string) ([]byte, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	data, ok := r.Files[path]
	if !ok {
		return nil, fmt.Errorf("file %s does not exist", path)
	}
	return data, nil
}

// WriteFile implements provisioning.Runner.
func (r *Runner) WriteFile(_ context.Context, path string, data []byte, _ fs.FileMode) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.Files[path] = data
	return nil
}

// FileExists implements provisioning.Runner.
func (r *Runner) FileExists(_ context.Context, path string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	_, ok := r.Files[path]
	return ok, nil
}

// LookPath implements provisioning.Runner.
func (r *Runner) LookPath(_ context.Context, name string) (string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	path, ok := r.Paths[name]
	if !ok {
		return "", fmt.Errorf("%s not found in PATH", name)
	}
	return path, nil
}

// Cluster is an in-memory provisioning.ClusterAPI.
type Cluster struct {
	mu sync.Mutex

	// Applied records the field manager of every Apply call.
	Applied []string

	ApplyErr error

	// NodeReadyAfter is how many NodeReady calls report false before the
	// node turns Ready. Zero means ready immediately.
	NodeReadyAfter int
	nodeReadyCalls int

	// AvailableDeployments maps "namespace/name" to availability.
	AvailableDeployments map[string]bool

	APIServerUp   bool
	TaintRemovals int
}

// NewCluster creates a cluster stub with the API server up.
func NewCluster() *Cluster {
	return &Cluster{
		AvailableDeployments: make(map[string]bool),
		APIServerUp:          true,
	}
}

// Apply implements provisioning.ClusterAPI.
func (c *Cluster) Apply(_ context.Context, _ []byte, fieldManager string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.ApplyErr != nil {
		return c.ApplyErr
	}
	c.Applied = append(c.Applied, fieldManager)
	return nil
}

// APIServerReady implements provisioning.ClusterAPI.
func (c *Cluster) APIServerReady(context.Context) (bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.APIServerUp, nil
}

// NodeReady implements provisioning.ClusterAPI.
func (c *Cluster) NodeReady(context.Context) (bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.nodeReadyCalls++
	return c.nodeReadyCalls > c.NodeReadyAfter, nil
}

// DeploymentAvailable implements provisioning.ClusterAPI.
func (c *Cluster) DeploymentAvailable(_ context.Context, namespace, name string) (bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.AvailableDeployments[namespace+"/"+name], nil
}

// RemoveControlPlaneTaints implements provisioning.ClusterAPI.
func (c *Cluster) RemoveControlPlaneTaints(context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.TaintRemovals++
	return nil
}
