package observability

import (
	"fmt"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// ViewerCollector bundles Prometheus metrics for the viewer bridge: message
// and attribute traffic, validation failures, scene submission latency, and
// current scene size gauges. It satisfies the viewer package's
// MetricsRecorder interface.
type ViewerCollector struct {
	gatherer prometheus.Gatherer

	MethodMessages     *prometheus.CounterVec
	AttributeWrites    *prometheus.CounterVec
	ValidationFailures *prometheus.CounterVec

	SceneSubmits    prometheus.Counter
	SubmitDurations prometheus.Histogram
	BatchUpdates    prometheus.Histogram

	Tracks     prometheus.Gauge
	TreeStates prometheus.Gauge
}

// NewViewerCollector registers bridge Prometheus metrics against the provided
// registerer, defaulting to the global Prometheus registry when nil.
func NewViewerCollector(reg prometheus.Registerer) (*ViewerCollector, error) {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	gatherer := prometheus.DefaultGatherer
	if g, ok := reg.(prometheus.Gatherer); ok {
		gatherer = g
	}

	messages := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "cadviewer_method_messages_total",
		Help: "Total method invocation messages sent to the front-end, labeled by path root.",
	}, []string{"method_root"})
	messages, err := registerCounterVec(reg, messages, "cadviewer_method_messages_total")
	if err != nil {
		return nil, err
	}

	writes := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "cadviewer_attribute_writes_total",
		Help: "Total committed attribute writes, labeled by attribute name.",
	}, []string{"attribute"})
	writes, err = registerCounterVec(reg, writes, "cadviewer_attribute_writes_total")
	if err != nil {
		return nil, err
	}

	failures := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "cadviewer_validation_failures_total",
		Help: "Total rejected attribute writes, labeled by attribute name.",
	}, []string{"attribute"})
	failures, err = registerCounterVec(reg, failures, "cadviewer_validation_failures_total")
	if err != nil {
		return nil, err
	}

	submits, err := registerCounter(reg, prometheus.NewCounter(prometheus.CounterOpts{
		Name: "cadviewer_scene_submits_total",
		Help: "Total scene submissions.",
	}), "cadviewer_scene_submits_total")
	if err != nil {
		return nil, err
	}

	durations, err := registerHistogram(reg, prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "cadviewer_scene_submit_duration_seconds",
		Help:    "Scene submission latency in seconds.",
		Buckets: []float64{0.0005, 0.001, 0.0025, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1},
	}), "cadviewer_scene_submit_duration_seconds")
	if err != nil {
		return nil, err
	}

	batch, err := registerHistogram(reg, prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "cadviewer_scene_batch_updates",
		Help:    "Attribute updates committed per scene submission batch.",
		Buckets: []float64{5, 10, 15, 20, 25, 30, 40, 50},
	}), "cadviewer_scene_batch_updates")
	if err != nil {
		return nil, err
	}

	tracks, err := registerGauge(reg, prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "cadviewer_tracks",
		Help: "Current number of animation tracks held by the proxy.",
	}), "cadviewer_tracks")
	if err != nil {
		return nil, err
	}
	states, err := registerGauge(reg, prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "cadviewer_tree_states",
		Help: "Current number of navigation tree entries in the scene.",
	}), "cadviewer_tree_states")
	if err != nil {
		return nil, err
	}

	return &ViewerCollector{
		gatherer:           gatherer,
		MethodMessages:     messages,
		AttributeWrites:    writes,
		ValidationFailures: failures,
		SceneSubmits:       submits,
		SubmitDurations:    durations,
		BatchUpdates:       batch,
		Tracks:             tracks,
		TreeStates:         states,
	}, nil
}

// ObserveSubmit records one scene submission with its latency and the number
// of attribute updates the batch carried.
func (c *ViewerCollector) ObserveSubmit(d time.Duration, updateCount int) {
	if c == nil {
		return
	}
	if c.SceneSubmits != nil {
		c.SceneSubmits.Inc()
	}
	if c.SubmitDurations != nil {
		c.SubmitDurations.Observe(d.Seconds())
	}
	if c.BatchUpdates != nil {
		c.BatchUpdates.Observe(float64(updateCount))
	}
}

// IncMethodMessage counts one sent method invocation message.
func (c *ViewerCollector) IncMethodMessage(methodRoot string) {
	if c == nil || c.MethodMessages == nil {
		return
	}
	c.MethodMessages.WithLabelValues(methodRoot).Inc()
}

// IncAttributeWrite counts one committed attribute write.
func (c *ViewerCollector) IncAttributeWrite(attribute string) {
	if c == nil || c.AttributeWrites == nil {
		return
	}
	c.AttributeWrites.WithLabelValues(attribute).Inc()
}

// IncValidationFailure counts one rejected attribute write.
func (c *ViewerCollector) IncValidationFailure(attribute string) {
	if c == nil || c.ValidationFailures == nil {
		return
	}
	c.ValidationFailures.WithLabelValues(attribute).Inc()
}

// SetSceneCounts drives the scene size gauges straight from the proxy's
// mutators.
func (c *ViewerCollector) SetSceneCounts(states, tracks int) {
	if c == nil {
		return
	}
	if c.TreeStates != nil {
		c.TreeStates.Set(float64(states))
	}
	if c.Tracks != nil {
		c.Tracks.Set(float64(tracks))
	}
}

// Handler exposes a ready-to-use /metrics handler.
func (c *ViewerCollector) Handler() http.Handler {
	gatherer := c.gatherer
	if gatherer == nil {
		gatherer = prometheus.DefaultGatherer
	}
	return promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})
}

func registerCounterVec(reg prometheus.Registerer, vec *prometheus.CounterVec, name string) (*prometheus.CounterVec, error) {
	if err := reg.Register(vec); err != nil {
		if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
			if existing, ok := are.ExistingCollector.(*prometheus.CounterVec); ok {
				return existing, nil
			}
			return nil, fmt.Errorf("collector %s already registered with incompatible type", name)
		}
		return nil, err
	}
	return vec, nil
}

func registerCounter(reg prometheus.Registerer, counter prometheus.Counter, name string) (prometheus.Counter, error) {
	if err := reg.Register(counter); err != nil {
		if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
			if existing, ok := are.ExistingCollector.(prometheus.Counter); ok {
				return existing, nil
			}
			return nil, fmt.Errorf("collector %s already registered with incompatible type", name)
		}
		return nil, err
	}
	return counter, nil
}

func registerHistogram(reg prometheus.Registerer, hist prometheus.Histogram, name string) (prometheus.Histogram, error) {
	if err := reg.Register(hist); err != nil {
		if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
			if existing, ok := are.ExistingCollector.(prometheus.Histogram); ok {
				return existing, nil
			}
			return nil, fmt.Errorf("collector %s already registered with incompatible type", name)
		}
		return nil, err
	}
	return hist, nil
}

func registerGauge(reg prometheus.Registerer, gauge prometheus.Gauge, name string) (prometheus.Gauge, error) {
	if err := reg.Register(gauge); err != nil {
		if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
			if existing, ok := are.ExistingCollector.(prometheus.Gauge); ok {
				return existing, nil
			}
			return nil, fmt.Errorf("collector %s already registered with incompatible type", name)
		}
		return nil, err
	}
	return gauge, nil
}
