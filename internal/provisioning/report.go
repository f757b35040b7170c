package provisioning

import (
	"fmt"
	"strings"
	"time"
)

// Outcome is the terminal state of a stage.
type Outcome string

const (
	// OutcomeSkipped means the idempotency check found the stage already satisfied.
	OutcomeSkipped Outcome = "skipped"
	// OutcomeSucceeded means the stage's action ran and any probe reported ready.
	OutcomeSucceeded Outcome = "succeeded"
	// OutcomeTimedOut means the action ran but the readiness probe never reported ready.
	OutcomeTimedOut Outcome = "timed-out"
	// OutcomeDegraded means an optional stage's actions all failed.
	OutcomeDegraded Outcome = "degraded"
	// OutcomeFailed means the stage's actions all failed; the run aborted here.
	OutcomeFailed Outcome = "failed"
)

// IsWarning reports whether the outcome completes the run with a warning.
func (o Outcome) IsWarning() bool {
	return o == OutcomeTimedOut || o == OutcomeDegraded
}

// StageResult records how a single stage ended.
type StageResult struct {
	Name     string
	Outcome  Outcome
	Duration time.Duration

	// ProbeAttempts counts readiness probe evaluations, zero for stages
	// without a probe or skipped stages.
	ProbeAttempts int

	// Err holds the action error for failed and degraded stages.
	Err error
}

// Report accumulates stage results in execution order.
type Report struct {
	Results []StageResult
}

func (r *Report) record(result StageResult) {
	r.Results = append(r.Results, result)
}

// Warnings returns the results that completed with a warning.
func (r *Report) Warnings() []StageResult {
	var warnings []StageResult
	for _, result := range r.Results {
		if result.Outcome.IsWarning() {
			warnings = append(warnings, result)
		}
	}
	return warnings
}

// Failed returns the failing stage result, if the run aborted.
func (r *Report) Failed() *StageResult {
	for i := range r.Results {
		if r.Results[i].Outcome == OutcomeFailed {
			return &r.Results[i]
		}
	}
	return nil
}

// Summary renders a one-line-per-stage plain text summary.
func (r *Report) Summary() string {
	var b strings.Builder
	for _, result := range r.Results {
		fmt.Fprintf(&b, "%-24s %s", result.Name, result.Outcome)
		if result.ProbeAttempts > 0 {
			fmt.Fprintf(&b, " (%d probe evaluations)", result.ProbeAttempts)
		}
		if result.Err != nil {
			fmt.Fprintf(&b, ": %v", result.Err)
		}
		b.WriteString("\n")
	}
	return b.String()
}
