// Package observability exports refresh cycle metrics to Prometheus.
package observability

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/agentstation/catalogsync/pkg/refresh"
)

var (
	registerOnce sync.Once

	cyclesStarted = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "catalogsync",
			Subsystem: "refresh",
			Name:      "cycles_started_total",
			Help:      "Refresh cycles started.",
		},
		[]string{"provider"},
	)
	cyclesFinished = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "catalogsync",
			Subsystem: "refresh",
			Name:      "cycles_total",
			Help:      "Refresh cycles finished, by result.",
		},
		[]string{"provider", "result"},
	)
	cyclesSkipped = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "catalogsync",
			Subsystem: "refresh",
			Name:      "cycles_skipped_total",
			Help:      "Scheduled cycles skipped because the previous one was still running.",
		},
		[]string{"provider"},
	)
	cycleDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "catalogsync",
			Subsystem: "refresh",
			Name:      "cycle_duration_seconds",
			Help:      "Refresh cycle duration in seconds.",
			Buckets:   []float64{0.1, 0.5, 1, 5, 15, 30, 60, 180, 600},
		},
		[]string{"provider", "result"},
	)
	entities = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Namespace: "catalogsync",
			Subsystem: "catalog",
			Name:      "entities",
			Help:      "Entities applied by the last successful cycle.",
		},
		[]string{"provider"},
	)
	lastSuccess = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Namespace: "catalogsync",
			Subsystem: "refresh",
			Name:      "last_success_timestamp_seconds",
			Help:      "Unix time of the last successful cycle.",
		},
		[]string{"provider"},
	)
)

// RegisterMetrics registers the collectors with the default registry.
func RegisterMetrics() {
	registerOnce.Do(func() {
		prometheus.MustRegister(cyclesStarted, cyclesFinished, cyclesSkipped, cycleDuration, entities, lastSuccess)
	})
}

// Recorder implements refresh.Recorder on the package collectors.
type Recorder struct{}

var _ refresh.Recorder = Recorder{}

// NewRecorder registers the metrics and returns a Recorder.
func NewRecorder() Recorder {
	RegisterMetrics()
	return Recorder{}
}

// CycleStarted implements refresh.Recorder.
func (Recorder) CycleStarted(provider string) {
	cyclesStarted.WithLabelValues(provider).Inc()
}

// CycleSkipped implements refresh.Recorder.
func (Recorder) CycleSkipped(provider string) {
	cyclesSkipped.WithLabelValues(provider).Inc()
}

// CycleFinished implements refresh.Recorder.
func (Recorder) CycleFinished(provider string, status refresh.Status) {
	result := "success"
	if status.LastError != "" {
		result = "failure"
	}
	cyclesFinished.WithLabelValues(provider, result).Inc()
	cycleDuration.WithLabelValues(provider, result).Observe(status.LastDuration.Seconds())
	if result == "success" {
		entities.WithLabelValues(provider).Set(float64(status.Entities))
		lastSuccess.WithLabelValues(provider).Set(float64(status.LastSuccess.Unix()))
	}
}
