package prerequisites

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCheck_ToolFound(t *testing.T) {
	// "sh" exists on every platform these tests run on.
	results := Check([]Tool{{Name: "sh", Required: true}})

	require.Len(t, results.Results, 1)
	assert.True(t, results.Results[0].Found)
	assert.NotEmpty(t, results.Results[0].Path)
	assert.False(t, results.HasErrors())
	assert.NoError(t, results.Error())
}

func TestCheck_RequiredToolMissing(t *testing.T) {
	results := Check([]Tool{{
		Name:       "definitely-not-a-real-binary-kubeuno",
		Required:   true,
		InstallURL: "https://example.com/install",
	}})

	assert.True(t, results.HasErrors())
	err := results.Error()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "definitely-not-a-real-binary-kubeuno")
	assert.Contains(t, err.Error(), "https://example.com/install")
}

func TestCheck_OptionalToolMissing(t *testing.T) {
	results := Check([]Tool{{Name: "definitely-not-a-real-binary-kubeuno", Required: false}})

	assert.Len(t, results.Missing, 1)
	assert.False(t, results.HasErrors())
	assert.NoError(t, results.Error())
}

func TestCheckWithLookup(t *testing.T) {
	lookup := func(name string) (string, error) {
		if name == "kubeadm" {
			return "/usr/bin/kubeadm", nil
		}
		return "", assert.AnError
	}

	results := CheckWithLookup([]Tool{
		{Name: "kubeadm", Required: true},
		{Name: "helm"},
	}, lookup)

	require.Len(t, results.Results, 2)
	assert.True(t, results.Results[0].Found)
	assert.Equal(t, "/usr/bin/kubeadm", results.Results[0].Path)
	assert.False(t, results.Results[1].Found)
	assert.False(t, results.HasErrors())
}

func TestToolLists(t *testing.T) {
	for _, tool := range BootstrapTools() {
		assert.True(t, tool.Required, "bootstrap tool %s should be required", tool.Name)
		assert.NotEmpty(t, tool.InstallURL)
	}
	for _, tool := range OptionalTools() {
		assert.False(t, tool.Required, "optional tool %s should not be required", tool.Name)
	}
	assert.NotEmpty(t, ClusterTools())
}
