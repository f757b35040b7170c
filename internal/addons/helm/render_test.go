package helm

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeTestChart(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()

	files := map[string]string{
		"Chart.yaml": "apiVersion: v2\nname: testchart\nversion: 0.1.0\n",
		"values.yaml": "replicas: 1\nmessage: default\n",
		"templates/configmap.yaml": `apiVersion: v1
kind: ConfigMap
metadata:
  name: {{ .Release.Name }}-config
  namespace: {{ .Release.Namespace }}
data:
  message: {{ .Values.message }}
  replicas: {{ .Values.replicas | quote }}
`,
		"templates/NOTES.txt": "installed\n",
	}
	for name, content := range files {
		path := filepath.Join(dir, name)
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
		require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	}
	return dir
}

func TestRenderFromPath(t *testing.T) {
	chartDir := writeTestChart(t)

	manifests, err := RenderFromPath(chartDir, "metrics-server", "kube-system", "1.31", Values{
		"message": "overridden",
	})
	require.NoError(t, err)

	rendered := string(manifests)
	assert.Contains(t, rendered, "name: metrics-server-config")
	assert.Contains(t, rendered, "namespace: kube-system")
	assert.Contains(t, rendered, "message: overridden")
	// Chart defaults survive for values not overridden.
	assert.Contains(t, rendered, `replicas: "1"`)
	assert.NotContains(t, rendered, "installed")
}

func TestRenderFromPath_MissingChart(t *testing.T) {
	_, err := RenderFromPath("/nonexistent/chart", "x", "default", "", nil)
	assert.Error(t, err)
}

func TestRenderFromPath_BadKubeVersion(t *testing.T) {
	chartDir := writeTestChart(t)
	_, err := RenderFromPath(chartDir, "x", "default", "not-a-version", nil)
	assert.Error(t, err)
}
