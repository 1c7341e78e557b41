package observability

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// RunnerCollector exposes Prometheus metrics for the script runner: per-step
// throughput and latency plus the size of the script being replayed.
type RunnerCollector struct {
	gatherer prometheus.Gatherer

	Steps         *prometheus.CounterVec
	StepDurations prometheus.Histogram
	StepFailures  prometheus.Counter
	ScriptSteps   prometheus.Gauge
}

// NewRunnerCollector registers runner metrics against the provided
// registerer, defaulting to the global Prometheus registry when nil.
func NewRunnerCollector(reg prometheus.Registerer) (*RunnerCollector, error) {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	gatherer := prometheus.DefaultGatherer
	if g, ok := reg.(prometheus.Gatherer); ok {
		gatherer = g
	}

	steps := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "runner_steps_total",
		Help: "Total script steps executed, labeled by step action.",
	}, []string{"action"})
	steps, err := registerCounterVec(reg, steps, "runner_steps_total")
	if err != nil {
		return nil, err
	}

	durations := prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "runner_step_duration_seconds",
		Help:    "Latency of individual script steps.",
		Buckets: []float64{0.0005, 0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1, 2},
	})
	durations, err = registerHistogram(reg, durations, "runner_step_duration_seconds")
	if err != nil {
		return nil, err
	}

	failures := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "runner_step_failures_total",
		Help: "Total script steps that returned an error.",
	})
	failures, err = registerCounter(reg, failures, "runner_step_failures_total")
	if err != nil {
		return nil, err
	}

	scriptSteps := prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "runner_script_steps",
		Help: "Number of steps in the script currently being replayed.",
	})
	scriptSteps, err = registerGauge(reg, scriptSteps, "runner_script_steps")
	if err != nil {
		return nil, err
	}

	return &RunnerCollector{
		gatherer:      gatherer,
		Steps:         steps,
		StepDurations: durations,
		StepFailures:  failures,
		ScriptSteps:   scriptSteps,
	}, nil
}

// Gatherer returns the Prometheus gatherer associated with the collector.
func (c *RunnerCollector) Gatherer() prometheus.Gatherer {
	if c == nil {
		return nil
	}
	return c.gatherer
}

// ObserveStep records one executed script step with its latency.
func (c *RunnerCollector) ObserveStep(action string, d time.Duration) {
	if c == nil {
		return
	}
	if c.Steps != nil {
		c.Steps.WithLabelValues(action).Inc()
	}
	if c.StepDurations != nil {
		c.StepDurations.Observe(d.Seconds())
	}
}

// IncStepFailure counts one failed script step.
func (c *RunnerCollector) IncStepFailure() {
	if c == nil || c.StepFailures == nil {
		return
	}
	c.StepFailures.Inc()
}

// SetScriptSteps publishes the size of the loaded script.
func (c *RunnerCollector) SetScriptSteps(n int) {
	if c == nil || c.ScriptSteps == nil {
		return
	}
	c.ScriptSteps.Set(float64(n))
}
