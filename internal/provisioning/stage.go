package provisioning

import "time"

// Action is one external side-effecting operation of a stage.
type Action func(ctx *Context) error

// Predicate answers a yes/no question about the external system.
// Errors from readiness probes are treated as "not ready".
type Predicate func(ctx *Context) (bool, error)

// Probe polls a predicate at a fixed interval until it reports ready or the
// timeout elapses. A probe that times out degrades the stage to a warning;
// it never aborts the run.
type Probe struct {
	Ready    Predicate
	Timeout  time.Duration
	Interval time.Duration
}

// Attempts returns how many times the probe is evaluated before giving up:
// ceil(Timeout / Interval).
func (p *Probe) Attempts() int {
	if p.Interval <= 0 {
		return 1
	}
	attempts := int(p.Timeout / p.Interval)
	if p.Timeout%p.Interval != 0 {
		attempts++
	}
	if attempts < 1 {
		attempts = 1
	}
	return attempts
}

// Stage is one named, ordered unit of provisioning work.
type Stage struct {
	// Name identifies the stage in logs, the report, and metrics.
	Name string

	// Check is the idempotency predicate: when it reports true the stage
	// is already satisfied and is skipped. A nil Check means the stage
	// always runs and must rely on the external API's own idempotency.
	Check Predicate

	// Actions are the ordered candidate operations for this stage, tried
	// in sequence until one succeeds. All candidates failing is fatal
	// unless the stage is Optional.
	Actions []Action

	// Probe, when set, is polled after the actions succeed.
	Probe *Probe

	// Optional marks a stage whose failure degrades the run to a warning
	// instead of aborting it.
	Optional bool
}
