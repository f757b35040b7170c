package provisioning

import (
	"context"

	"github.com/kubeuno/kubeuno/internal/config"
)

// Context wraps all dependencies and state needed by the stages. The
// external system is only ever reached through the Host and Kube handles;
// the pipeline holds no ambient global state.
type Context struct {
	context.Context
	Config   *config.Config
	State    *State
	Host     Runner
	Observer Observer
	Timeouts *config.Timeouts

	// Kube is nil until the kubeconfig stage connects to the cluster.
	Kube ClusterAPI
}

// NewContext creates a new provisioning context.
func NewContext(ctx context.Context, cfg *config.Config, host Runner) *Context {
	return &Context{
		Context:  ctx,
		Config:   cfg,
		State:    NewState(),
		Host:     host,
		Observer: NewConsoleObserver(),
		Timeouts: config.LoadTimeouts(),
	}
}
