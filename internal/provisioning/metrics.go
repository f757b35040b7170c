package provisioning

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics exposes stage-level Prometheus metrics for a bootstrap run.
type Metrics struct {
	stageDuration *prometheus.HistogramVec
	stageOutcome  *prometheus.CounterVec
}

// NewMetrics creates the stage metrics collectors.
func NewMetrics() *Metrics {
	return &Metrics{
		stageDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: "kubeuno",
				Subsystem: "bootstrap",
				Name:      "stage_duration_seconds",
				Help:      "Duration of provisioning stages in seconds",
				Buckets:   prometheus.ExponentialBuckets(0.1, 2, 12), // 100ms to ~3.5min
			},
			[]string{"stage"},
		),
		stageOutcome: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "kubeuno",
				Subsystem: "bootstrap",
				Name:      "stage_outcome_total",
				Help:      "Stage outcomes by stage name and outcome",
			},
			[]string{"stage", "outcome"},
		),
	}
}

// MustRegister registers the collectors with the given registerer.
func (m *Metrics) MustRegister(reg prometheus.Registerer) {
	reg.MustRegister(m.stageDuration, m.stageOutcome)
}

func (m *Metrics) observe(result StageResult) {
	if m == nil {
		return
	}
	m.stageDuration.WithLabelValues(result.Name).Observe(result.Duration.Seconds())
	m.stageOutcome.WithLabelValues(result.Name, string(result.Outcome)).Inc()
}
