// Package provisioning contains the stage sequencer that bootstraps a
// one-node Kubernetes cluster.
//
// A bootstrap run is an ordered list of [Stage] values executed strictly in
// sequence by a [Sequencer]. Each stage is guarded by an optional idempotency
// check, runs one of an ordered list of candidate actions, and may poll a
// readiness probe afterwards. The sequencer itself holds no durable state:
// everything it knows about the host and cluster is re-derived from the
// external system through the [Runner] and [ClusterAPI] handles, so a run
// can be restarted freely and converges instead of duplicating side effects.
//
// Stage implementations live in the internal/host, internal/cluster, and
// internal/addons packages; this package defines the contract and the
// execution engine.
package provisioning
