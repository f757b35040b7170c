package provisioning

import (
	"fmt"
	"log"
	"sort"
	"strings"
	"time"

	"github.com/go-logr/logr"
)

// Observer receives structured events from the sequencer as stages run.
type Observer interface {
	// Printf emits a free-form log line.
	Printf(format string, v ...interface{})

	// Event emits a structured event.
	Event(event Event)

	// Progress reports probe polling progress for a stage.
	Progress(stage string, attempt, total int)
}

// Event represents a structured provisioning event.
type Event struct {
	Type      EventType
	Stage     string
	Message   string
	Timestamp time.Time
	Fields    map[string]string
}

// EventType represents the type of provisioning event.
type EventType string

const (
	// EventStageStarted indicates a stage has started.
	EventStageStarted EventType = "stage.started"
	// EventStageSkipped indicates a stage's idempotency check was already satisfied.
	EventStageSkipped EventType = "stage.skipped"
	// EventStageCompleted indicates a stage completed successfully.
	EventStageCompleted EventType = "stage.completed"
	// EventStageTimedOut indicates a stage's readiness probe timed out.
	EventStageTimedOut EventType = "stage.timed-out"
	// EventStageDegraded indicates an optional stage failed.
	EventStageDegraded EventType = "stage.degraded"
	// EventStageFailed indicates a stage failed and the run aborted.
	EventStageFailed EventType = "stage.failed"
)

// ConsoleObserver implements Observer using the standard log package.
type ConsoleObserver struct{}

// NewConsoleObserver creates a new console-based observer.
func NewConsoleObserver() *ConsoleObserver {
	return &ConsoleObserver{}
}

// Printf implements Observer.
func (o *ConsoleObserver) Printf(format string, v ...interface{}) {
	log.Printf(format, v...)
}

// Event implements Observer.
func (o *ConsoleObserver) Event(event Event) {
	log.Print(formatEvent(event))
}

// Progress implements Observer.
func (o *ConsoleObserver) Progress(stage string, attempt, total int) {
	log.Printf("[%s] waiting for readiness (%d/%d)", stage, attempt, total)
}

func formatEvent(event Event) string {
	var b strings.Builder
	fmt.Fprintf(&b, "[%s] %s", event.Stage, event.Type)
	if event.Message != "" {
		fmt.Fprintf(&b, ": %s", event.Message)
	}
	if len(event.Fields) > 0 {
		keys := make([]string, 0, len(event.Fields))
		for k := range event.Fields {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			fmt.Fprintf(&b, " %s=%s", k, event.Fields[k])
		}
	}
	return b.String()
}

// LogrObserver adapts a logr.Logger to the Observer interface so the
// pipeline can log through whatever sink the caller already uses.
type LogrObserver struct {
	logger logr.Logger
}

// NewLogrObserver creates an Observer backed by the given logger.
func NewLogrObserver(logger logr.Logger) *LogrObserver {
	return &LogrObserver{logger: logger}
}

// Printf implements Observer.
func (o *LogrObserver) Printf(format string, v ...interface{}) {
	o.logger.Info(fmt.Sprintf(format, v...))
}

// Event implements Observer.
func (o *LogrObserver) Event(event Event) {
	keysAndValues := []interface{}{"stage", event.Stage, "type", string(event.Type)}
	for k, v := range event.Fields {
		keysAndValues = append(keysAndValues, k, v)
	}
	o.logger.Info(event.Message, keysAndValues...)
}

// Progress implements Observer.
func (o *LogrObserver) Progress(stage string, attempt, total int) {
	o.logger.V(1).Info("waiting for readiness", "stage", stage, "attempt", attempt, "total", total)
}
