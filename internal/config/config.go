package config

import (
	"fmt"
	"net"
	"regexp"
)

// Config is the top-level kubeuno configuration.
type Config struct {
	// ClusterName is used for the kubeadm node name and log context.
	ClusterName string `yaml:"clusterName"`

	// KubernetesVersion is the Kubernetes minor version to install,
	// e.g. "1.31". It selects the package repository channel.
	KubernetesVersion string `yaml:"kubernetesVersion"`

	// CertManagerVersion is the cert-manager release tag, e.g. "v1.16.2".
	CertManagerVersion string `yaml:"certManagerVersion"`

	// PodNetworkCIDR is passed to kubeadm init --pod-network-cidr and must
	// match the CNI manifest's network.
	PodNetworkCIDR string `yaml:"podNetworkCIDR"`

	Addons AddonsConfig `yaml:"addons"`

	// SSH, when set, provisions a remote host over SSH instead of the
	// local machine.
	SSH *SSHConfig `yaml:"ssh,omitempty"`
}

// AddonsConfig toggles the addon stages of the pipeline.
type AddonsConfig struct {
	CNI           AddonConfig        `yaml:"cni"`
	IngressNginx  AddonConfig        `yaml:"ingressNginx"`
	CertManager   AddonConfig        `yaml:"certManager"`
	MetricsServer MetricsServerConfig `yaml:"metricsServer"`
	HelmCLI       HelmCLIConfig      `yaml:"helmCLI"`
}

// AddonConfig configures a manifest-based addon.
type AddonConfig struct {
	Enabled bool `yaml:"enabled"`

	// ManifestURL overrides the default manifest location.
	ManifestURL string `yaml:"manifestURL,omitempty"`
}

// MetricsServerConfig configures the chart-rendered metrics-server addon.
type MetricsServerConfig struct {
	Enabled bool `yaml:"enabled"`

	// ChartPath points at an unpacked metrics-server chart on disk.
	ChartPath string `yaml:"chartPath,omitempty"`

	// ValuesFile points at a YAML file with chart value overrides.
	ValuesFile string `yaml:"valuesFile,omitempty"`
}

// HelmCLIConfig configures the optional helm CLI install stage.
type HelmCLIConfig struct {
	Enabled bool `yaml:"enabled"`

	// ScriptURL overrides the default install script location.
	ScriptURL string `yaml:"scriptURL,omitempty"`
}

// SSHConfig describes a remote provisioning target.
type SSHConfig struct {
	Host    string `yaml:"host"`
	Port    int    `yaml:"port,omitempty"`
	User    string `yaml:"user"`
	KeyPath string `yaml:"keyPath"`
}

// minorVersionRe matches a Kubernetes minor version like "1.31".
var minorVersionRe = regexp.MustCompile(`^\d+\.\d+$`)

// releaseTagRe matches a release tag like "v1.16.2".
var releaseTagRe = regexp.MustCompile(`^v\d+\.\d+\.\d+$`)

// Validate checks the configuration for obvious mistakes before any stage runs.
func (c *Config) Validate() error {
	if c.ClusterName == "" {
		return fmt.Errorf("clusterName must not be empty")
	}
	if !minorVersionRe.MatchString(c.KubernetesVersion) {
		return fmt.Errorf("kubernetesVersion %q is not a minor version like \"1.31\"", c.KubernetesVersion)
	}
	if !releaseTagRe.MatchString(c.CertManagerVersion) {
		return fmt.Errorf("certManagerVersion %q is not a release tag like \"v1.16.2\"", c.CertManagerVersion)
	}
	if _, _, err := net.ParseCIDR(c.PodNetworkCIDR); err != nil {
		return fmt.Errorf("podNetworkCIDR %q is not a valid CIDR: %w", c.PodNetworkCIDR, err)
	}
	if c.SSH != nil {
		if c.SSH.Host == "" {
			return fmt.Errorf("ssh.host must not be empty when ssh is configured")
		}
		if c.SSH.User == "" {
			return fmt.Errorf("ssh.user must not be empty when ssh is configured")
		}
		if c.SSH.KeyPath == "" {
			return fmt.Errorf("ssh.keyPath must not be empty when ssh is configured")
		}
	}
	return nil
}

// CNIManifestURL returns the configured or default CNI manifest location.
func (c *Config) CNIManifestURL() string {
	if c.Addons.CNI.ManifestURL != "" {
		return c.Addons.CNI.ManifestURL
	}
	return FlannelManifestURL
}

// IngressManifestURL returns the configured or default ingress-nginx manifest location.
func (c *Config) IngressManifestURL() string {
	if c.Addons.IngressNginx.ManifestURL != "" {
		return c.Addons.IngressNginx.ManifestURL
	}
	return IngressNginxManifestURL
}

// CertManagerManifestURL returns the configured manifest location, or the
// release asset URL for the configured cert-manager version.
func (c *Config) CertManagerManifestURL() string {
	if c.Addons.CertManager.ManifestURL != "" {
		return c.Addons.CertManager.ManifestURL
	}
	return fmt.Sprintf(certManagerManifestURLFormat, c.CertManagerVersion)
}

// HelmInstallScriptURL returns the configured or default helm install script location.
func (c *Config) HelmInstallScriptURL() string {
	if c.Addons.HelmCLI.ScriptURL != "" {
		return c.Addons.HelmCLI.ScriptURL
	}
	return helmInstallScriptURL
}
