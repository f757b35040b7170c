package e2e

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/go-logr/logr"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/kubeuno/kubeuno/cmd/kubeuno/handlers"
	"github.com/kubeuno/kubeuno/internal/config"
	"github.com/kubeuno/kubeuno/internal/provisioning"
	"github.com/kubeuno/kubeuno/internal/testing/fake"
)

// harness wires the pipeline against in-memory fakes. The runner simulates
// a Debian host where kubeadm init writes the admin credential and package
// installation puts kubeadm on the PATH.
type harness struct {
	runner   *fake.Runner
	cluster  *fake.Cluster
	cfg      *config.Config
	timeouts *config.Timeouts
}

func newHarness() *harness {
	h := &harness{
		runner:  fake.NewRunner(),
		cluster: fake.NewCluster(),
		cfg:     config.Default(),
		timeouts: &config.Timeouts{
			NodeReady:       100 * time.Millisecond,
			DeploymentReady: 100 * time.Millisecond,
			APIServer:       100 * time.Millisecond,
			PollInterval:    10 * time.Millisecond,
			FetchRetries:    1,
			FetchRetryDelay: time.Millisecond,
		},
	}

	h.runner.Outputs["containerd config default"] = []byte("[plugins]\n  SystemdCgroup = false\n")
	h.runner.OnRun = func(line string) {
		switch {
		case strings.HasPrefix(line, "kubeadm init"):
			h.runner.Files[config.AdminConfPath] = []byte("apiVersion: v1\nkind: Config\n")
		case strings.Contains(line, "install -y kubelet kubeadm kubectl"):
			h.runner.Paths["kubeadm"] = "/usr/bin/kubeadm"
		}
	}

	h.cluster.AvailableDeployments["ingress-nginx/ingress-nginx-controller"] = true
	h.cluster.AvailableDeployments["cert-manager/cert-manager-webhook"] = true

	return h
}

func (h *harness) fetch(_ context.Context, url string) ([]byte, error) {
	return []byte("# manifest from " + url), nil
}

func (h *harness) connect([]byte) (provisioning.ClusterAPI, error) {
	return h.cluster, nil
}

// run executes the whole pipeline once, the way the up handler does.
func (h *harness) run() (*provisioning.Report, error) {
	ctx := provisioning.NewContext(context.Background(), h.cfg, h.runner)
	ctx.State.OSFamily = provisioning.FamilyDebian
	ctx.Timeouts = h.timeouts
	ctx.Observer = provisioning.NewLogrObserver(logr.Discard())

	stages := handlers.Stages(h.cfg, h.fetch, h.connect, h.timeouts)
	sequencer := provisioning.NewSequencer(
		provisioning.WithObserver(provisioning.NewLogrObserver(logr.Discard())))
	return sequencer.Run(ctx, stages)
}

func outcomes(report *provisioning.Report) map[string]provisioning.Outcome {
	m := make(map[string]provisioning.Outcome, len(report.Results))
	for _, result := range report.Results {
		m[result.Name] = result.Outcome
	}
	return m
}

var _ = Describe("Bootstrap pipeline", func() {
	var h *harness

	BeforeEach(func() {
		h = newHarness()
	})

	Describe("on a fresh host", func() {
		It("runs every stage to success", func() {
			report, err := h.run()
			Expect(err).NotTo(HaveOccurred())

			Expect(report.Results).To(HaveLen(9))
			for _, result := range report.Results {
				Expect(result.Outcome).To(Equal(provisioning.OutcomeSucceeded),
					"stage %s", result.Name)
			}
			Expect(report.Warnings()).To(BeEmpty())
		})

		It("prepares the host before initializing the control plane", func() {
			_, err := h.run()
			Expect(err).NotTo(HaveOccurred())

			Expect(h.runner.Ran("swapoff -a")).To(BeTrue())
			Expect(h.runner.Ran("apt-get update")).To(BeTrue())
			Expect(h.runner.Ran("systemctl restart containerd")).To(BeTrue())
			Expect(h.runner.Ran("kubeadm init")).To(BeTrue())
		})

		It("applies the three default addon manifests", func() {
			_, err := h.run()
			Expect(err).NotTo(HaveOccurred())
			Expect(h.cluster.Applied).To(HaveLen(3))
			Expect(h.cluster.TaintRemovals).To(Equal(1))
		})
	})

	Describe("re-running on a provisioned host", func() {
		It("skips guarded stages and converges", func() {
			_, err := h.run()
			Expect(err).NotTo(HaveOccurred())

			report, err := h.run()
			Expect(err).NotTo(HaveOccurred())

			byName := outcomes(report)
			Expect(byName["prepare-host"]).To(Equal(provisioning.OutcomeSkipped))
			Expect(byName["install-packages"]).To(Equal(provisioning.OutcomeSkipped))
			Expect(byName["configure-containerd"]).To(Equal(provisioning.OutcomeSkipped))
			Expect(byName["kubeadm-init"]).To(Equal(provisioning.OutcomeSkipped))

			// Unguarded stages re-execute and rely on the API's
			// idempotent apply semantics.
			Expect(byName["remove-taints"]).To(Equal(provisioning.OutcomeSucceeded))
			Expect(byName["apply-cni"]).To(Equal(provisioning.OutcomeSucceeded))
			Expect(h.cluster.Applied).To(HaveLen(6))
			Expect(h.cluster.TaintRemovals).To(Equal(2))
		})
	})

	Describe("when the control plane fails to initialize", func() {
		It("aborts before any later stage and reports prior outcomes", func() {
			h.runner.Errors["kubeadm"] = errors.New("exit status 1")

			report, err := h.run()
			Expect(err).To(HaveOccurred())
			Expect(err.Error()).To(ContainSubstring("kubeadm-init"))

			Expect(report.Results).To(HaveLen(4))
			Expect(report.Results[3].Name).To(Equal("kubeadm-init"))
			Expect(report.Results[3].Outcome).To(Equal(provisioning.OutcomeFailed))
			Expect(report.Failed()).NotTo(BeNil())

			Expect(h.cluster.Applied).To(BeEmpty())
			Expect(h.cluster.TaintRemovals).To(BeZero())
		})
	})

	Describe("when a readiness probe never turns true", func() {
		It("records a warning and keeps going", func() {
			delete(h.cluster.AvailableDeployments, "ingress-nginx/ingress-nginx-controller")

			report, err := h.run()
			Expect(err).NotTo(HaveOccurred())

			byName := outcomes(report)
			Expect(byName["ingress-nginx"]).To(Equal(provisioning.OutcomeTimedOut))
			// The run continued past the warning.
			Expect(byName["cert-manager"]).To(Equal(provisioning.OutcomeSucceeded))
			Expect(report.Warnings()).To(HaveLen(1))
		})
	})

	Describe("with the optional helm stage enabled", func() {
		It("degrades instead of aborting when the download fails", func() {
			h.cfg.Addons.HelmCLI.Enabled = true
			h.cfg.Addons.HelmCLI.ScriptURL = "https://example.invalid/get-helm"

			failingFetch := func(ctx context.Context, url string) ([]byte, error) {
				if strings.Contains(url, "get-helm") {
					return nil, errors.New("download failed")
				}
				return h.fetch(ctx, url)
			}

			ctx := provisioning.NewContext(context.Background(), h.cfg, h.runner)
			ctx.State.OSFamily = provisioning.FamilyDebian
			ctx.Timeouts = h.timeouts

			stages := handlers.Stages(h.cfg, failingFetch, h.connect, h.timeouts)
			sequencer := provisioning.NewSequencer(
				provisioning.WithObserver(provisioning.NewLogrObserver(logr.Discard())))

			report, err := sequencer.Run(ctx, stages)
			Expect(err).NotTo(HaveOccurred())

			byName := outcomes(report)
			Expect(byName["install-helm"]).To(Equal(provisioning.OutcomeDegraded))
			Expect(report.Warnings()).To(HaveLen(1))
		})
	})
})
