package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Default returns a configuration with all defaults applied and the
// manifest-based addons enabled. It matches what Load produces for an empty
// config document.
func Default() *Config {
	cfg := &Config{}
	applyDefaults(cfg, nil)
	return cfg
}

// LoadFile reads and parses the configuration from a YAML file.
func LoadFile(path string) (*Config, error) {
	// #nosec G304
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}
	return Load(data)
}

// Load parses configuration from YAML bytes, applies defaults, and validates.
func Load(data []byte) (*Config, error) {
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal yaml: %w", err)
	}

	// A second unmarshal into a raw map distinguishes "enabled: false" from
	// an absent addon section, which defaults to enabled.
	var raw map[string]interface{}
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("failed to unmarshal yaml: %w", err)
	}

	applyDefaults(&cfg, raw)

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return &cfg, nil
}

func applyDefaults(cfg *Config, raw map[string]interface{}) {
	if cfg.ClusterName == "" {
		cfg.ClusterName = DefaultClusterName
	}
	if cfg.KubernetesVersion == "" {
		cfg.KubernetesVersion = DefaultKubernetesVersion
	}
	if cfg.CertManagerVersion == "" {
		cfg.CertManagerVersion = DefaultCertManagerVersion
	}
	if cfg.PodNetworkCIDR == "" {
		cfg.PodNetworkCIDR = DefaultPodNetworkCIDR
	}

	// CNI, ingress, and cert-manager are what make a bare control plane
	// usable, so they default to enabled unless explicitly switched off.
	// metrics-server and the helm CLI are opt-in.
	if !cfg.Addons.CNI.Enabled {
		cfg.Addons.CNI.Enabled = !enabledExplicitlySet(raw, "cni")
	}
	if !cfg.Addons.IngressNginx.Enabled {
		cfg.Addons.IngressNginx.Enabled = !enabledExplicitlySet(raw, "ingressNginx")
	}
	if !cfg.Addons.CertManager.Enabled {
		cfg.Addons.CertManager.Enabled = !enabledExplicitlySet(raw, "certManager")
	}

	if cfg.SSH != nil && cfg.SSH.Port == 0 {
		cfg.SSH.Port = 22
	}
}

// enabledExplicitlySet reports whether addons.<name>.enabled was present in
// the raw config document.
func enabledExplicitlySet(raw map[string]interface{}, name string) bool {
	addonsMap, ok := raw["addons"].(map[string]interface{})
	if !ok {
		return false
	}

	addonMap, ok := addonsMap[name].(map[string]interface{})
	if !ok {
		return false
	}

	_, set := addonMap["enabled"]
	return set
}
