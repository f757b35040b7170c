package addons

import (
	"fmt"
	"os"

	sigsyaml "sigs.k8s.io/yaml"

	"github.com/kubeuno/kubeuno/internal/addons/helm"
	"github.com/kubeuno/kubeuno/internal/config"
	"github.com/kubeuno/kubeuno/internal/provisioning"
)

// fieldManager identifies kubeuno as the server-side apply owner of addon
// resources.
const fieldManager = "kubeuno"

const helmScriptPath = "/tmp/kubeuno-get-helm.sh"

// Manifest-based addon stages carry no idempotency check: server-side apply
// is idempotent on the API side, and re-applying picks up drift.

// CNIStage applies the CNI manifest and waits for the node to turn Ready,
// which only happens once pod networking works.
func CNIStage(fetch FetchFunc, timeouts *config.Timeouts) provisioning.Stage {
	return provisioning.Stage{
		Name: "apply-cni",
		Actions: []provisioning.Action{
			func(ctx *provisioning.Context) error {
				return applyManifestFromURL(ctx, fetch, ctx.Config.CNIManifestURL())
			},
		},
		Probe: &provisioning.Probe{
			Ready: func(ctx *provisioning.Context) (bool, error) {
				return ctx.Kube.NodeReady(ctx)
			},
			Timeout:  timeouts.NodeReady,
			Interval: timeouts.PollInterval,
		},
	}
}

// IngressStage applies the ingress-nginx manifest and waits for the
// controller deployment to become Available.
func IngressStage(fetch FetchFunc, timeouts *config.Timeouts) provisioning.Stage {
	return provisioning.Stage{
		Name: "ingress-nginx",
		Actions: []provisioning.Action{
			func(ctx *provisioning.Context) error {
				return applyManifestFromURL(ctx, fetch, ctx.Config.IngressManifestURL())
			},
		},
		Probe: deploymentProbe("ingress-nginx", "ingress-nginx-controller", timeouts),
	}
}

// CertManagerStage applies the cert-manager release manifest and waits for
// the webhook deployment, the last cert-manager component to come up.
func CertManagerStage(fetch FetchFunc, timeouts *config.Timeouts) provisioning.Stage {
	return provisioning.Stage{
		Name: "cert-manager",
		Actions: []provisioning.Action{
			func(ctx *provisioning.Context) error {
				return applyManifestFromURL(ctx, fetch, ctx.Config.CertManagerManifestURL())
			},
		},
		Probe: deploymentProbe("cert-manager", "cert-manager-webhook", timeouts),
	}
}

// MetricsServerStage renders the metrics-server chart from disk and applies
// the result like any other manifest.
func MetricsServerStage(timeouts *config.Timeouts) provisioning.Stage {
	return provisioning.Stage{
		Name: "metrics-server",
		Actions: []provisioning.Action{
			applyMetricsServer,
		},
		Probe: deploymentProbe("kube-system", "metrics-server", timeouts),
	}
}

func applyMetricsServer(ctx *provisioning.Context) error {
	chartPath := ctx.Config.Addons.MetricsServer.ChartPath
	if chartPath == "" {
		return fmt.Errorf("metrics-server is enabled but addons.metricsServer.chartPath is not set")
	}

	// Self-signed kubelet certs on a kubeadm node.
	values := helm.Values{
		"args": []interface{}{"--kubelet-insecure-tls"},
	}
	if valuesFile := ctx.Config.Addons.MetricsServer.ValuesFile; valuesFile != "" {
		overrides, err := loadChartValues(valuesFile)
		if err != nil {
			return err
		}
		for key, value := range overrides {
			values[key] = value
		}
	}

	manifests, err := helm.RenderFromPath(chartPath, "metrics-server", "kube-system",
		ctx.Config.KubernetesVersion, values)
	if err != nil {
		return err
	}
	return ctx.Kube.Apply(ctx, manifests, fieldManager)
}

// loadChartValues reads a values file into the JSON-compatible map shape the
// helm render engine expects.
func loadChartValues(path string) (helm.Values, error) {
	// #nosec G304
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading chart values %s: %w", path, err)
	}

	var values helm.Values
	if err := sigsyaml.Unmarshal(data, &values); err != nil {
		return nil, fmt.Errorf("parsing chart values %s: %w", path, err)
	}
	return values, nil
}

// HelmCLIStage downloads the upstream helm install script and runs it on
// the host. The stage is optional: a failed download degrades the run
// instead of aborting it.
func HelmCLIStage(fetch FetchFunc) provisioning.Stage {
	return provisioning.Stage{
		Name:     "install-helm",
		Optional: true,
		Check: func(ctx *provisioning.Context) (bool, error) {
			_, err := ctx.Host.LookPath(ctx, "helm")
			return err == nil, nil
		},
		Actions: []provisioning.Action{
			func(ctx *provisioning.Context) error {
				return installHelmCLI(ctx, fetch)
			},
		},
	}
}

func installHelmCLI(ctx *provisioning.Context, fetch FetchFunc) error {
	script, err := fetch(ctx, ctx.Config.HelmInstallScriptURL())
	if err != nil {
		return err
	}
	if err := ctx.Host.WriteFile(ctx, helmScriptPath, script, 0o755); err != nil {
		return err
	}
	if _, err := ctx.Host.Run(ctx, "sh", helmScriptPath); err != nil {
		return fmt.Errorf("helm install script failed: %w", err)
	}
	return nil
}

func applyManifestFromURL(ctx *provisioning.Context, fetch FetchFunc, url string) error {
	manifests, err := fetch(ctx, url)
	if err != nil {
		return err
	}
	return ctx.Kube.Apply(ctx, manifests, fieldManager)
}

func deploymentProbe(namespace, name string, timeouts *config.Timeouts) *provisioning.Probe {
	return &provisioning.Probe{
		Ready: func(ctx *provisioning.Context) (bool, error) {
			return ctx.Kube.DeploymentAvailable(ctx, namespace, name)
		},
		Timeout:  timeouts.DeploymentReady,
		Interval: timeouts.PollInterval,
	}
}
