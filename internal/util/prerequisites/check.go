// Package prerequisites provides utilities for checking required host tools.
package prerequisites

import (
	"fmt"
	"os/exec"
	"strings"
)

// Tool represents a host tool that may be required.
type Tool struct {
	// Name is the binary name to look for in PATH.
	Name string

	// Required indicates if this tool is mandatory.
	Required bool

	// Description explains what the tool is used for.
	Description string

	// InstallURL provides a URL for installation instructions.
	InstallURL string
}

// BootstrapTools returns the tools the provisioning pipeline invokes directly.
// Package installation provides kubeadm and kubectl, so they are only
// required when the package stage is skipped.
func BootstrapTools() []Tool {
	return []Tool{
		{
			Name:        "systemctl",
			Required:    true,
			Description: "Required for managing the container runtime service",
			InstallURL:  "https://www.freedesktop.org/wiki/Software/systemd/",
		},
		{
			Name:        "modprobe",
			Required:    true,
			Description: "Required for loading the overlay and br_netfilter kernel modules",
			InstallURL:  "https://www.kernel.org/doc/html/latest/admin-guide/modules.html",
		},
		{
			Name:        "sysctl",
			Required:    true,
			Description: "Required for applying bridge and IP forwarding settings",
			InstallURL:  "https://www.kernel.org/doc/html/latest/admin-guide/sysctl/",
		},
	}
}

// ClusterTools returns tools expected once packages are installed.
func ClusterTools() []Tool {
	return []Tool{
		{
			Name:        "kubeadm",
			Required:    true,
			Description: "Required for initializing the control plane",
			InstallURL:  "https://kubernetes.io/docs/setup/production-environment/tools/kubeadm/install-kubeadm/",
		},
		{
			Name:        "kubectl",
			Required:    true,
			Description: "Required for inspecting the cluster from the host",
			InstallURL:  "https://kubernetes.io/docs/tasks/tools/",
		},
	}
}

// OptionalTools returns tools that are useful but not required.
func OptionalTools() []Tool {
	return []Tool{
		{
			Name:        "helm",
			Required:    false,
			Description: "Useful for installing additional charts after bootstrap",
			InstallURL:  "https://helm.sh/docs/intro/install/",
		},
	}
}

// CheckResult contains the result of checking a single tool.
type CheckResult struct {
	Tool  Tool
	Found bool
	Path  string
}

// CheckResults contains the results of checking multiple tools.
type CheckResults struct {
	Results []CheckResult
	Missing []Tool
}

// HasErrors returns true if any required tools are missing.
func (r *CheckResults) HasErrors() bool {
	for _, tool := range r.Missing {
		if tool.Required {
			return true
		}
	}
	return false
}

// Error returns an error if any required tools are missing.
func (r *CheckResults) Error() error {
	var missing []string
	for _, tool := range r.Missing {
		if tool.Required {
			missing = append(missing, fmt.Sprintf("%s (%s)", tool.Name, tool.InstallURL))
		}
	}
	if len(missing) == 0 {
		return nil
	}
	return fmt.Errorf("missing required tools: %s", strings.Join(missing, ", "))
}

// LookupFunc resolves a binary name to a path, like exec.LookPath.
type LookupFunc func(name string) (string, error)

// Check looks up each tool in the local PATH and collects the results.
func Check(tools []Tool) *CheckResults {
	return CheckWithLookup(tools, exec.LookPath)
}

// CheckWithLookup looks up each tool using the given resolver, which lets
// callers check a remote host's PATH.
func CheckWithLookup(tools []Tool, lookup LookupFunc) *CheckResults {
	results := &CheckResults{}

	for _, tool := range tools {
		result := CheckResult{Tool: tool}

		if path, err := lookup(tool.Name); err == nil {
			result.Found = true
			result.Path = path
		} else {
			results.Missing = append(results.Missing, tool)
		}

		results.Results = append(results.Results, result)
	}

	return results
}
