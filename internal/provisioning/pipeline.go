package provisioning

import (
	"fmt"
	"time"
)

// Sequencer executes an ordered list of stages strictly in sequence.
//
// A stage whose actions all fail is fatal: the run aborts immediately with
// the accumulated report. A readiness probe timing out is not fatal; it is
// recorded as a warning and the run continues. The sequencer never retries
// a stage on its own — provisioning actions are expensive and only safe to
// re-run after the idempotency check has been re-evaluated, which happens
// naturally when the whole sequence is run again.
type Sequencer struct {
	observer Observer
	metrics  *Metrics
	sleep    func(time.Duration)
}

// SequencerOption configures a Sequencer.
type SequencerOption func(*Sequencer)

// WithObserver sets the observer receiving stage events.
func WithObserver(observer Observer) SequencerOption {
	return func(s *Sequencer) {
		s.observer = observer
	}
}

// WithMetrics sets the Prometheus metrics sink for stage outcomes.
func WithMetrics(metrics *Metrics) SequencerOption {
	return func(s *Sequencer) {
		s.metrics = metrics
	}
}

// withSleep replaces the probe sleep function. Tests use this to run
// polling loops without real delays.
func withSleep(sleep func(time.Duration)) SequencerOption {
	return func(s *Sequencer) {
		s.sleep = sleep
	}
}

// NewSequencer creates a sequencer with the given options.
func NewSequencer(opts ...SequencerOption) *Sequencer {
	s := &Sequencer{
		observer: NewConsoleObserver(),
		sleep:    time.Sleep,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Run executes the stages in order and returns the accumulated report.
// The report is returned for fatal runs too, listing every outcome up to
// and including the failing stage.
func (s *Sequencer) Run(ctx *Context, stages []Stage) (*Report, error) {
	start := time.Now()
	report := &Report{}

	s.observer.Printf("Starting bootstrap with %d stages...", len(stages))

	for i, stage := range stages {
		label := fmt.Sprintf("%s (%d/%d)", stage.Name, i+1, len(stages))
		s.observer.Event(Event{Type: EventStageStarted, Stage: label, Timestamp: time.Now()})

		result := s.runStage(ctx, stage)
		report.record(result)
		s.metrics.observe(result)

		switch result.Outcome {
		case OutcomeSkipped:
			s.observer.Event(Event{Type: EventStageSkipped, Stage: label, Timestamp: time.Now()})
		case OutcomeSucceeded:
			s.observer.Event(Event{
				Type: EventStageCompleted, Stage: label, Timestamp: time.Now(),
				Fields: map[string]string{"duration": result.Duration.Round(time.Millisecond).String()},
			})
		case OutcomeTimedOut:
			s.observer.Event(Event{
				Type: EventStageTimedOut, Stage: label, Timestamp: time.Now(),
				Message: fmt.Sprintf("not ready after %d probe evaluations, continuing", result.ProbeAttempts),
			})
		case OutcomeDegraded:
			s.observer.Event(Event{
				Type: EventStageDegraded, Stage: label, Timestamp: time.Now(),
				Message: fmt.Sprintf("optional stage failed: %v", result.Err),
			})
		case OutcomeFailed:
			s.observer.Event(Event{
				Type: EventStageFailed, Stage: label, Timestamp: time.Now(),
				Message: result.Err.Error(),
			})
			return report, fmt.Errorf("stage %s failed: %w", stage.Name, result.Err)
		}
	}

	s.observer.Printf("Bootstrap completed in %v (%d warnings)",
		time.Since(start).Round(time.Millisecond), len(report.Warnings()))
	return report, nil
}

// runStage takes a single stage to its terminal outcome.
func (s *Sequencer) runStage(ctx *Context, stage Stage) StageResult {
	start := time.Now()
	result := StageResult{Name: stage.Name}

	if stage.Check != nil {
		satisfied, err := stage.Check(ctx)
		if err != nil {
			// An erroring check means the guard cannot be trusted;
			// running the action anyway could duplicate side effects.
			result.Outcome = OutcomeFailed
			result.Err = fmt.Errorf("idempotency check: %w", err)
			result.Duration = time.Since(start)
			return result
		}
		if satisfied {
			result.Outcome = OutcomeSkipped
			result.Duration = time.Since(start)
			return result
		}
	}

	if err := s.runActions(ctx, stage); err != nil {
		if stage.Optional {
			result.Outcome = OutcomeDegraded
		} else {
			result.Outcome = OutcomeFailed
		}
		result.Err = err
		result.Duration = time.Since(start)
		return result
	}

	if stage.Probe != nil {
		ready, attempts := s.poll(ctx, stage.Name, stage.Probe)
		result.ProbeAttempts = attempts
		if ready {
			result.Outcome = OutcomeSucceeded
		} else {
			result.Outcome = OutcomeTimedOut
		}
		result.Duration = time.Since(start)
		return result
	}

	result.Outcome = OutcomeSucceeded
	result.Duration = time.Since(start)
	return result
}

// runActions tries the stage's candidate actions in order until one
// succeeds. The last error is returned when all candidates fail.
func (s *Sequencer) runActions(ctx *Context, stage Stage) error {
	var lastErr error
	for i, action := range stage.Actions {
		lastErr = action(ctx)
		if lastErr == nil {
			return nil
		}
		if i < len(stage.Actions)-1 {
			s.observer.Printf("[%s] candidate %d/%d failed (%v), trying next",
				stage.Name, i+1, len(stage.Actions), lastErr)
		}
	}
	return lastErr
}

// poll evaluates the probe up to ceil(timeout/interval) times, sleeping the
// interval between evaluations. It returns readiness and the number of
// evaluations performed. Probe errors count as "not ready".
func (s *Sequencer) poll(ctx *Context, name string, probe *Probe) (bool, int) {
	total := probe.Attempts()
	for attempt := 1; attempt <= total; attempt++ {
		ready, err := probe.Ready(ctx)
		if err == nil && ready {
			return true, attempt
		}
		s.observer.Progress(name, attempt, total)
		if attempt < total {
			s.sleep(probe.Interval)
		}
	}
	return false, total
}
