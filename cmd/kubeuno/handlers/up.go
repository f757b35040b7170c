// Package handlers implements the CLI command logic: wiring configuration,
// the host runner, and the cluster client into the provisioning pipeline.
package handlers

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"time"

	"github.com/go-logr/logr"
	"github.com/go-logr/logr/funcr"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/kubeuno/kubeuno/internal/addons"
	"github.com/kubeuno/kubeuno/internal/cluster"
	"github.com/kubeuno/kubeuno/internal/config"
	"github.com/kubeuno/kubeuno/internal/host"
	"github.com/kubeuno/kubeuno/internal/k8s"
	"github.com/kubeuno/kubeuno/internal/platform/ssh"
	"github.com/kubeuno/kubeuno/internal/provisioning"
	"github.com/kubeuno/kubeuno/internal/ui"
	"github.com/kubeuno/kubeuno/internal/util/prerequisites"
)

// defaultConfigFile is picked up from the working directory when no
// --config flag is given.
const defaultConfigFile = "kubeuno.yaml"

// UpOptions carries the up command's flags.
type UpOptions struct {
	ConfigPath    string
	DryRun        bool
	Verbose       bool
	MetricsListen string
}

// Up runs the bootstrap pipeline. Readiness warnings do not fail the
// command; a fatal stage or an unsupported OS does.
func Up(ctx context.Context, opts UpOptions) error {
	cfg, err := loadConfig(opts.ConfigPath)
	if err != nil {
		return err
	}

	renderer := ui.NewRenderer(os.Stdout)

	runner, cleanup, err := buildRunner(cfg)
	if err != nil {
		return err
	}
	defer cleanup()

	pctx := provisioning.NewContext(ctx, cfg, runner)

	info, err := host.Detect(ctx, runner)
	if err != nil {
		return err
	}
	pctx.State.OSFamily = info.Family
	pctx.State.OSName = info.PrettyName
	renderer.Statusf("Detected %s (%s family)", info.PrettyName, info.Family)

	fetcher := addons.NewFetcher(pctx.Timeouts)
	stages := Stages(cfg, fetcher.Fetch, connectCluster, pctx.Timeouts)

	if opts.DryRun {
		renderer.Statusf("Stage plan for cluster %q:", cfg.ClusterName)
		for i, stage := range stages {
			suffix := ""
			if stage.Optional {
				suffix = " (optional)"
			}
			renderer.Statusf("%2d. %s%s", i+1, stage.Name, suffix)
		}
		return nil
	}

	if results := checkTools(ctx, runner, prerequisites.BootstrapTools()); results.HasErrors() {
		renderer.Prerequisites("Missing host tools", results)
		return results.Error()
	}

	seqOpts := []provisioning.SequencerOption{
		provisioning.WithObserver(provisioning.NewLogrObserver(stageLogger(renderer, opts.Verbose))),
	}
	if opts.MetricsListen != "" {
		metrics := provisioning.NewMetrics()
		registry := prometheus.NewRegistry()
		metrics.MustRegister(registry)

		server := serveMetrics(opts.MetricsListen, registry)
		defer func() { _ = server.Close() }()

		seqOpts = append(seqOpts, provisioning.WithMetrics(metrics))
		renderer.Statusf("Serving stage metrics on %s/metrics", opts.MetricsListen)
	}

	report, runErr := provisioning.NewSequencer(seqOpts...).Run(pctx, stages)
	renderer.Report(report)

	if runErr != nil {
		return fmt.Errorf("bootstrap failed: %w", runErr)
	}
	return nil
}

// Stages assembles the full pipeline for a configuration. The fetch and
// connect functions are parameters so tests can run the pipeline without
// network access.
func Stages(cfg *config.Config, fetch addons.FetchFunc, connect cluster.ConnectFunc, timeouts *config.Timeouts) []provisioning.Stage {
	stages := []provisioning.Stage{
		host.PrepareStage(),
		host.PackagesStage(),
		host.ContainerdStage(),
		cluster.InitStage(),
		cluster.KubeconfigStage(connect, timeouts),
		cluster.TaintsStage(),
	}

	if cfg.Addons.CNI.Enabled {
		stages = append(stages, addons.CNIStage(fetch, timeouts))
	}
	if cfg.Addons.IngressNginx.Enabled {
		stages = append(stages, addons.IngressStage(fetch, timeouts))
	}
	if cfg.Addons.CertManager.Enabled {
		stages = append(stages, addons.CertManagerStage(fetch, timeouts))
	}
	if cfg.Addons.MetricsServer.Enabled {
		stages = append(stages, addons.MetricsServerStage(timeouts))
	}
	if cfg.Addons.HelmCLI.Enabled {
		stages = append(stages, addons.HelmCLIStage(fetch))
	}

	return stages
}

func loadConfig(path string) (*config.Config, error) {
	if path != "" {
		return config.LoadFile(path)
	}
	if _, err := os.Stat(defaultConfigFile); err == nil {
		return config.LoadFile(defaultConfigFile)
	}
	return config.Default(), nil
}

// buildRunner chooses between the local machine and an SSH target. The
// cleanup function closes the SSH connection if one was opened.
func buildRunner(cfg *config.Config) (provisioning.Runner, func(), error) {
	if cfg.SSH == nil {
		return host.NewExecRunner(), func() {}, nil
	}

	key, err := os.ReadFile(cfg.SSH.KeyPath)
	if err != nil {
		return nil, nil, fmt.Errorf("reading ssh key %s: %w", cfg.SSH.KeyPath, err)
	}

	client, err := ssh.NewClient(&ssh.Config{
		Host:       cfg.SSH.Host,
		Port:       cfg.SSH.Port,
		User:       cfg.SSH.User,
		PrivateKey: key,
	})
	if err != nil {
		return nil, nil, err
	}

	return ssh.NewRunner(client), func() { _ = client.Close() }, nil
}

// connectCluster is the production ConnectFunc: a real client-go client
// built from the freshly installed kubeconfig.
func connectCluster(kubeconfig []byte) (provisioning.ClusterAPI, error) {
	return k8s.NewClientFromBytes(kubeconfig)
}

// checkTools resolves tool prerequisites through the runner, so SSH targets
// are checked on the remote PATH rather than the operator's machine.
func checkTools(ctx context.Context, runner provisioning.Runner, tools []prerequisites.Tool) *prerequisites.CheckResults {
	return prerequisites.CheckWithLookup(tools, func(name string) (string, error) {
		return runner.LookPath(ctx, name)
	})
}

// stageLogger routes the sequencer's structured events through the
// renderer. Probe progress lines log at V(1) and only show with --verbose.
func stageLogger(renderer *ui.Renderer, verbose bool) logr.Logger {
	verbosity := 0
	if verbose {
		verbosity = 1
	}
	return funcr.New(func(prefix, args string) {
		if prefix != "" {
			renderer.Statusf("%s %s", prefix, args)
			return
		}
		renderer.Statusf("%s", args)
	}, funcr.Options{Verbosity: verbosity})
}

func serveMetrics(addr string, registry *prometheus.Registry) *http.Server {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(registry, promhttp.HandlerOpts{}))

	server := &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}
	go func() { _ = server.ListenAndServe() }()
	return server
}
