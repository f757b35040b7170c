package cluster

import (
	"github.com/kubeuno/kubeuno/internal/provisioning"
)

// TaintsStage removes the control-plane NoSchedule taints so workloads can
// run on the single node. It carries no idempotency check: removing taints
// that are already gone is a no-op on the API side.
func TaintsStage() provisioning.Stage {
	return provisioning.Stage{
		Name: "remove-taints",
		Actions: []provisioning.Action{
			func(ctx *provisioning.Context) error {
				return ctx.Kube.RemoveControlPlaneTaints(ctx)
			},
		},
	}
}
