package observability

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	dto "github.com/prometheus/client_model/go"
)

func TestViewerCollectorRecordsActivity(t *testing.T) {
	reg := prometheus.NewRegistry()
	collector, err := NewViewerCollector(reg)
	if err != nil {
		t.Fatalf("NewViewerCollector: %v", err)
	}

	collector.IncMethodMessage("animate")
	collector.IncMethodMessage("animate")
	collector.IncMethodMessage("viewer")
	collector.IncAttributeWrite("axes")
	collector.IncValidationFailure("control")
	collector.ObserveSubmit(12*time.Millisecond, 18)
	collector.SetSceneCounts(7, 2)

	if got := testutil.ToFloat64(collector.MethodMessages.WithLabelValues("animate")); got != 2 {
		t.Fatalf("cadviewer_method_messages_total{method_root=animate} = %v, want 2", got)
	}
	if got := testutil.ToFloat64(collector.AttributeWrites.WithLabelValues("axes")); got != 1 {
		t.Fatalf("cadviewer_attribute_writes_total{attribute=axes} = %v, want 1", got)
	}
	if got := testutil.ToFloat64(collector.ValidationFailures.WithLabelValues("control")); got != 1 {
		t.Fatalf("cadviewer_validation_failures_total{attribute=control} = %v, want 1", got)
	}
	if got := testutil.ToFloat64(collector.SceneSubmits); got != 1 {
		t.Fatalf("cadviewer_scene_submits_total = %v, want 1", got)
	}
	if got := testutil.ToFloat64(collector.TreeStates); got != 7 {
		t.Fatalf("cadviewer_tree_states = %v, want 7", got)
	}
	if got := testutil.ToFloat64(collector.Tracks); got != 2 {
		t.Fatalf("cadviewer_tracks = %v, want 2", got)
	}

	if count := histogramSampleCount(t, reg, "cadviewer_scene_submit_duration_seconds", nil); count != 1 {
		t.Fatalf("cadviewer_scene_submit_duration_seconds sample_count = %d, want 1", count)
	}
	if count := histogramSampleCount(t, reg, "cadviewer_scene_batch_updates", nil); count != 1 {
		t.Fatalf("cadviewer_scene_batch_updates sample_count = %d, want 1", count)
	}
}

func TestViewerCollectorToleratesDoubleRegistration(t *testing.T) {
	reg := prometheus.NewRegistry()
	first, err := NewViewerCollector(reg)
	if err != nil {
		t.Fatalf("first NewViewerCollector: %v", err)
	}
	second, err := NewViewerCollector(reg)
	if err != nil {
		t.Fatalf("second NewViewerCollector: %v", err)
	}

	first.IncMethodMessage("animate")
	second.IncMethodMessage("animate")

	// Both collectors share the registered instruments.
	if got := testutil.ToFloat64(second.MethodMessages.WithLabelValues("animate")); got != 2 {
		t.Fatalf("shared counter = %v, want 2", got)
	}
}

func TestMetricsHandlerExposesViewerMetrics(t *testing.T) {
	reg := prometheus.NewRegistry()
	collector, err := NewViewerCollector(reg)
	if err != nil {
		t.Fatalf("NewViewerCollector: %v", err)
	}
	collector.IncMethodMessage("animate")
	collector.ObserveSubmit(3*time.Millisecond, 15)
	collector.SetSceneCounts(4, 1)

	req := httptest.NewRequest(http.MethodGet, "/metrics", nil)
	rr := httptest.NewRecorder()
	collector.Handler().ServeHTTP(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("/metrics status = %d, want 200", rr.Code)
	}
	body := rr.Body.String()
	for _, metric := range []string{
		"cadviewer_method_messages_total",
		"cadviewer_scene_submits_total",
		"cadviewer_scene_submit_duration_seconds",
		"cadviewer_scene_batch_updates",
		"cadviewer_tracks",
		"cadviewer_tree_states",
	} {
		if !strings.Contains(body, metric) {
			t.Fatalf("expected %q in /metrics output", metric)
		}
	}
}

func TestRunnerCollectorRecordsSteps(t *testing.T) {
	reg := prometheus.NewRegistry()
	collector, err := NewRunnerCollector(reg)
	if err != nil {
		t.Fatalf("NewRunnerCollector: %v", err)
	}

	collector.ObserveStep("submit_scene", 5*time.Millisecond)
	collector.ObserveStep("set", time.Millisecond)
	collector.ObserveStep("set", time.Millisecond)
	collector.IncStepFailure()
	collector.SetScriptSteps(12)

	if got := testutil.ToFloat64(collector.Steps.WithLabelValues("set")); got != 2 {
		t.Fatalf("runner_steps_total{action=set} = %v, want 2", got)
	}
	if got := testutil.ToFloat64(collector.StepFailures); got != 1 {
		t.Fatalf("runner_step_failures_total = %v, want 1", got)
	}
	if got := testutil.ToFloat64(collector.ScriptSteps); got != 12 {
		t.Fatalf("runner_script_steps = %v, want 12", got)
	}
	if count := histogramSampleCount(t, reg, "runner_step_duration_seconds", nil); count != 3 {
		t.Fatalf("runner_step_duration_seconds sample_count = %d, want 3", count)
	}
}

func histogramSampleCount(t *testing.T, gatherer prometheus.Gatherer, name string, labels map[string]string) uint64 {
	t.Helper()

	metrics, err := gatherer.Gather()
	if err != nil {
		t.Fatalf("gather metrics: %v", err)
	}
	for _, mf := range metrics {
		if mf.GetName() != name {
			continue
		}
		for _, m := range mf.Metric {
			if matchLabels(m.GetLabel(), labels) && m.GetHistogram() != nil {
				return m.GetHistogram().GetSampleCount()
			}
		}
	}
	return 0
}

func matchLabels(got []*dto.LabelPair, want map[string]string) bool {
	if len(got) < len(want) {
		return false
	}
	matched := 0
	for _, lp := range got {
		if val, ok := want[lp.GetName()]; ok && val == lp.GetValue() {
			matched++
		}
	}
	return matched == len(want)
}
