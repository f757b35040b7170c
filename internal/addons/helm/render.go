// Package helm renders Helm charts to plain Kubernetes manifests so they
// can be server-side applied like any other addon. No tiller, no release
// bookkeeping: load, template, concatenate.
package helm

import (
	"bytes"
	"fmt"
	"path/filepath"
	"strings"

	"helm.sh/helm/v3/pkg/chart/loader"
	"helm.sh/helm/v3/pkg/chartutil"
	"helm.sh/helm/v3/pkg/engine"
)

// Values are chart values overriding the chart's own defaults.
type Values map[string]interface{}

// RenderFromPath loads an unpacked or archived chart from disk and renders
// it into a single multi-document manifest stream.
func RenderFromPath(chartPath, releaseName, namespace, kubeVersion string, values Values) ([]byte, error) {
	ch, err := loader.Load(chartPath)
	if err != nil {
		return nil, fmt.Errorf("loading chart from %s: %w", chartPath, err)
	}

	merged := chartutil.CoalesceTables(map[string]interface{}(values), ch.Values)

	releaseOptions := chartutil.ReleaseOptions{
		Name:      releaseName,
		Namespace: namespace,
		IsInstall: true,
	}

	// Pin capabilities to the target cluster version so templates pick
	// current API groups instead of deprecated ones.
	capabilities := chartutil.DefaultCapabilities.Copy()
	if kubeVersion != "" {
		parsed, err := chartutil.ParseKubeVersion("v" + strings.TrimPrefix(kubeVersion, "v"))
		if err != nil {
			return nil, fmt.Errorf("parsing kube version %q: %w", kubeVersion, err)
		}
		capabilities.KubeVersion = *parsed
	}

	renderValues, err := chartutil.ToRenderValues(ch, merged, releaseOptions, capabilities)
	if err != nil {
		return nil, fmt.Errorf("preparing render values: %w", err)
	}

	rendered, err := (engine.Engine{}).Render(ch, renderValues)
	if err != nil {
		return nil, fmt.Errorf("rendering chart %s: %w", ch.Name(), err)
	}

	var combined bytes.Buffer
	for name, content := range rendered {
		if filepath.Base(name) == "NOTES.txt" {
			continue
		}
		trimmed := strings.TrimSpace(content)
		if trimmed == "" {
			continue
		}
		if combined.Len() > 0 {
			combined.WriteString("\n---\n")
		}
		combined.WriteString(trimmed)
		combined.WriteString("\n")
	}
	return combined.Bytes(), nil
}
