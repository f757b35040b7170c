package host

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kubeuno/kubeuno/internal/config"
	"github.com/kubeuno/kubeuno/internal/provisioning"
	"github.com/kubeuno/kubeuno/internal/testing/fake"
)

func newTestContext(t *testing.T, runner *fake.Runner) *provisioning.Context {
	t.Helper()
	return provisioning.NewContext(t.Context(), config.Default(), runner)
}

func TestDetect(t *testing.T) {
	tests := []struct {
		name       string
		osRelease  string
		wantFamily string
		wantErr    bool
	}{
		{
			name:       "ubuntu",
			osRelease:  "ID=ubuntu\nID_LIKE=debian\nPRETTY_NAME=\"Ubuntu 24.04 LTS\"\n",
			wantFamily: provisioning.FamilyDebian,
		},
		{
			name:       "debian",
			osRelease:  "ID=debian\nPRETTY_NAME=\"Debian GNU/Linux 12\"\n",
			wantFamily: provisioning.FamilyDebian,
		},
		{
			name:       "rocky via ID_LIKE",
			osRelease:  "ID=rocky\nID_LIKE=\"rhel centos fedora\"\nPRETTY_NAME=\"Rocky Linux 9\"\n",
			wantFamily: provisioning.FamilyRHEL,
		},
		{
			name:       "fedora",
			osRelease:  "ID=fedora\nPRETTY_NAME=\"Fedora Linux 41\"\n",
			wantFamily: provisioning.FamilyRHEL,
		},
		{
			name:      "unsupported",
			osRelease: "ID=alpine\nPRETTY_NAME=\"Alpine Linux v3.20\"\n",
			wantErr:   true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			runner := fake.NewRunner()
			runner.Files[osReleasePath] = []byte(tt.osRelease)

			info, err := Detect(context.Background(), runner)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantFamily, info.Family)
			assert.NotEmpty(t, info.PrettyName)
		})
	}
}

func TestDetect_MissingOSRelease(t *testing.T) {
	_, err := Detect(context.Background(), fake.NewRunner())
	assert.Error(t, err)
}

func TestPrepareStage(t *testing.T) {
	runner := fake.NewRunner()
	ctx := newTestContext(t, runner)
	stage := PrepareStage()

	// Fresh host: check unsatisfied, action writes markers and runs commands.
	satisfied, err := stage.Check(ctx)
	require.NoError(t, err)
	assert.False(t, satisfied)

	require.NoError(t, stage.Actions[0](ctx))
	assert.True(t, runner.Ran("swapoff -a"))
	assert.True(t, runner.Ran("modprobe overlay"))
	assert.True(t, runner.Ran("modprobe br_netfilter"))
	assert.True(t, runner.Ran("sysctl --system"))
	assert.Contains(t, string(runner.Files[sysctlConfPath]), "ip_forward")

	// Second run: markers present, stage is satisfied.
	satisfied, err = stage.Check(ctx)
	require.NoError(t, err)
	assert.True(t, satisfied)
}

func TestPackagesStage_CheckSatisfiedByKubeadm(t *testing.T) {
	runner := fake.NewRunner()
	runner.Paths["kubeadm"] = "/usr/bin/kubeadm"
	ctx := newTestContext(t, runner)

	satisfied, err := PackagesStage().Check(ctx)
	require.NoError(t, err)
	assert.True(t, satisfied)
}

func TestPackagesStage_Debian(t *testing.T) {
	runner := fake.NewRunner()
	ctx := newTestContext(t, runner)
	ctx.State.OSFamily = provisioning.FamilyDebian

	stage := PackagesStage()
	require.NoError(t, stage.Actions[0](ctx))

	assert.True(t, runner.Ran("apt-get update"))
	assert.True(t, runner.Ran("apt-get install -y kubelet kubeadm kubectl"))
	assert.True(t, runner.Ran("apt-mark hold"))
	assert.True(t, runner.Ran("systemctl enable --now kubelet"))

	source := string(runner.Files[aptSourcePath])
	assert.Contains(t, source, "pkgs.k8s.io/core:/stable:/v"+config.DefaultKubernetesVersion)
}

func TestPackagesStage_RHELFallsBackToYum(t *testing.T) {
	runner := fake.NewRunner()
	runner.Errors["dnf"] = errors.New("dnf: command not found")
	ctx := newTestContext(t, runner)
	ctx.State.OSFamily = provisioning.FamilyRHEL

	stage := PackagesStage()

	// Primary candidate uses dnf and fails on this host.
	require.Error(t, stage.Actions[0](ctx))
	// Fallback candidate succeeds with yum.
	require.NoError(t, stage.Actions[1](ctx))

	assert.True(t, runner.Ran("yum install -y kubelet kubeadm kubectl --disableexcludes=kubernetes"))
	assert.Contains(t, string(runner.Files[yumRepoPath]), "[kubernetes]")
}

func TestPackagesStage_DebianHasNoFallback(t *testing.T) {
	runner := fake.NewRunner()
	ctx := newTestContext(t, runner)
	ctx.State.OSFamily = provisioning.FamilyDebian

	assert.Error(t, PackagesStage().Actions[1](ctx))
}

func TestContainerdStage(t *testing.T) {
	runner := fake.NewRunner()
	runner.Outputs["containerd config default"] = []byte("[plugins]\n  SystemdCgroup = false\n")
	ctx := newTestContext(t, runner)

	stage := ContainerdStage()

	satisfied, err := stage.Check(ctx)
	require.NoError(t, err)
	assert.False(t, satisfied)

	require.NoError(t, stage.Actions[0](ctx))
	assert.Contains(t, string(runner.Files[config.ContainerdConfigPath]), "SystemdCgroup = true")
	assert.True(t, runner.Ran("systemctl restart containerd"))

	// The patched config satisfies the check on the next run.
	satisfied, err = stage.Check(ctx)
	require.NoError(t, err)
	assert.True(t, satisfied)
}

func TestContainerdStage_UnpatchableConfig(t *testing.T) {
	runner := fake.NewRunner()
	runner.Outputs["containerd config default"] = []byte("[plugins]\n")
	ctx := newTestContext(t, runner)

	assert.Error(t, ContainerdStage().Actions[0](ctx))
}
