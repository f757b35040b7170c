// Package config defines the kubeuno configuration model: the cluster
// settings loaded from the YAML config file, fixed defaults for component
// versions and manifest locations, and timeout values tunable through
// environment variables.
package config
