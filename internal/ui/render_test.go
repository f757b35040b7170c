package ui

import (
	"bytes"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/kubeuno/kubeuno/internal/provisioning"
	"github.com/kubeuno/kubeuno/internal/util/prerequisites"
)

func TestRenderer_PlainWhenNotTerminal(t *testing.T) {
	var buf bytes.Buffer
	renderer := NewRenderer(&buf)
	assert.False(t, renderer.colored)

	renderer.Successf("done")
	assert.Equal(t, "done\n", buf.String())
}

func TestRenderer_Report(t *testing.T) {
	report := &provisioning.Report{Results: []provisioning.StageResult{
		{Name: "prepare-host", Outcome: provisioning.OutcomeSkipped},
		{Name: "kubeadm-init", Outcome: provisioning.OutcomeSucceeded, Duration: 42 * time.Second},
		{Name: "apply-cni", Outcome: provisioning.OutcomeSucceeded, Duration: 15 * time.Second, ProbeAttempts: 4},
		{Name: "ingress-nginx", Outcome: provisioning.OutcomeTimedOut, Duration: 180 * time.Second, ProbeAttempts: 36},
	}}

	var buf bytes.Buffer
	NewRenderer(&buf).Report(report)
	out := buf.String()

	assert.Contains(t, out, "[--] prepare-host")
	assert.Contains(t, out, "[OK] kubeadm-init")
	assert.Contains(t, out, "4 probe evaluations")
	assert.Contains(t, out, "[??] ingress-nginx")
	assert.Contains(t, out, "Completed with warnings: ingress-nginx.")
	assert.NotContains(t, out, "aborted")
}

func TestRenderer_ReportFailure(t *testing.T) {
	report := &provisioning.Report{Results: []provisioning.StageResult{
		{Name: "prepare-host", Outcome: provisioning.OutcomeSucceeded, Duration: time.Second},
		{Name: "install-packages", Outcome: provisioning.OutcomeFailed, Err: errors.New("apt-get exited 100")},
	}}

	var buf bytes.Buffer
	NewRenderer(&buf).Report(report)
	out := buf.String()

	assert.Contains(t, out, "[!!] install-packages")
	assert.Contains(t, out, "apt-get exited 100")
	assert.Contains(t, out, "Bootstrap aborted at stage install-packages.")
}

func TestRenderer_Prerequisites(t *testing.T) {
	results := &prerequisites.CheckResults{
		Results: []prerequisites.CheckResult{
			{Tool: prerequisites.Tool{Name: "systemctl", Required: true}, Found: true, Path: "/usr/bin/systemctl"},
			{Tool: prerequisites.Tool{Name: "kubeadm", Required: true, InstallURL: "https://kubernetes.io"}},
			{Tool: prerequisites.Tool{Name: "helm", InstallURL: "https://helm.sh"}},
		},
	}

	var buf bytes.Buffer
	NewRenderer(&buf).Prerequisites("Host tools", results)
	out := buf.String()

	assert.Contains(t, out, "Host tools")
	assert.Contains(t, out, "[OK] systemctl")
	assert.Contains(t, out, "[!!] kubeadm")
	assert.Contains(t, out, "[??] helm")
	assert.Contains(t, out, "optional")
}
