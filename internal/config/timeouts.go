package config

import (
	"os"
	"strconv"
	"time"
)

// Timeouts holds all configurable timeout values.
// These values can be customized via environment variables.
type Timeouts struct {
	NodeReady       time.Duration // Timeout for the node Ready readiness probe
	DeploymentReady time.Duration // Timeout for deployment Available readiness probes
	APIServer       time.Duration // Timeout for waiting for the API server after kubeadm init
	PollInterval    time.Duration // Interval between readiness probe evaluations
	FetchRetries    int           // Maximum number of manifest download retry attempts
	FetchRetryDelay time.Duration // Initial delay between manifest download retries
}

// LoadTimeouts loads timeout configuration from environment variables.
// If an environment variable is not set or invalid, a default value is used.
//
// Environment Variables:
//   - KUBEUNO_TIMEOUT_NODE_READY (default: 120s)
//   - KUBEUNO_TIMEOUT_DEPLOYMENT_READY (default: 180s)
//   - KUBEUNO_TIMEOUT_APISERVER (default: 90s)
//   - KUBEUNO_POLL_INTERVAL (default: 5s)
//   - KUBEUNO_FETCH_RETRIES (default: 3)
//   - KUBEUNO_FETCH_RETRY_DELAY (default: 2s)
func LoadTimeouts() *Timeouts {
	return &Timeouts{
		NodeReady:       parseDuration("KUBEUNO_TIMEOUT_NODE_READY", 120*time.Second),
		DeploymentReady: parseDuration("KUBEUNO_TIMEOUT_DEPLOYMENT_READY", 180*time.Second),
		APIServer:       parseDuration("KUBEUNO_TIMEOUT_APISERVER", 90*time.Second),
		PollInterval:    parseDuration("KUBEUNO_POLL_INTERVAL", 5*time.Second),
		FetchRetries:    parseInt("KUBEUNO_FETCH_RETRIES", 3),
		FetchRetryDelay: parseDuration("KUBEUNO_FETCH_RETRY_DELAY", 2*time.Second),
	}
}

// parseDuration parses a duration from an environment variable.
// If the variable is not set or parsing fails, the default value is returned.
func parseDuration(envVar string, defaultVal time.Duration) time.Duration {
	val := os.Getenv(envVar)
	if val == "" {
		return defaultVal
	}

	d, err := time.ParseDuration(val)
	if err != nil {
		return defaultVal
	}

	return d
}

// parseInt parses an integer from an environment variable.
// If the variable is not set or parsing fails, the default value is returned.
func parseInt(envVar string, defaultVal int) int {
	val := os.Getenv(envVar)
	if val == "" {
		return defaultVal
	}

	i, err := strconv.Atoi(val)
	if err != nil {
		return defaultVal
	}

	return i
}
