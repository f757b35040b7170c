// Package main is the entry point for the kubeuno CLI.
//
// kubeuno bootstraps a single-node Kubernetes cluster on a Linux host,
// local or remote over SSH, by driving kubeadm, the OS package manager,
// and the cluster API through an idempotent staged pipeline.
//
// Commands: up, doctor, version, completion.
//
// For detailed usage information, run:
//
//	kubeuno --help
package main

import (
	"fmt"
	"os"

	"github.com/kubeuno/kubeuno/cmd/kubeuno/commands"
)

// Version information set by goreleaser at build time.
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

func main() {
	commands.SetVersionInfo(version, commit, date)
	if err := commands.Root().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
