package metrics

import (
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestCollector_RecordsComponentRenders(t *testing.T) {
	reg := prometheus.NewRegistry()
	collector := New(WithRegistry(reg))

	collector.ObserveComponent("card", 5*time.Millisecond, nil)
	collector.ObserveComponent("card", 7*time.Millisecond, nil)
	collector.ObserveComponent("card", time.Millisecond, errors.New("boom"))

	if got := testutil.ToFloat64(collector.renders.WithLabelValues("card", "success")); got != 2 {
		t.Fatalf("expected 2 successful renders, got %v", got)
	}
	if got := testutil.ToFloat64(collector.renders.WithLabelValues("card", "error")); got != 1 {
		t.Fatalf("expected 1 failed render, got %v", got)
	}
	if got := testutil.CollectAndCount(collector.duration, "componentkit_component_render_duration_seconds"); got != 1 {
		t.Fatalf("expected one duration series, got %d", got)
	}
}

func TestCollector_RecordsPartialLookups(t *testing.T) {
	reg := prometheus.NewRegistry()
	collector := New(WithRegistry(reg), WithNamespace("app"), WithSubsystem("views"))

	collector.ObservePartial("row", false)
	collector.ObservePartial("row", true)
	collector.ObservePartial("row", true)

	expected := `
# HELP app_views_partial_cache_requests_total Total number of partial cache lookups by result
# TYPE app_views_partial_cache_requests_total counter
app_views_partial_cache_requests_total{result="hit"} 2
app_views_partial_cache_requests_total{result="miss"} 1
`
	if err := testutil.GatherAndCompare(reg, strings.NewReader(expected), "app_views_partial_cache_requests_total"); err != nil {
		t.Fatalf("unexpected metrics: %v", err)
	}
}

func TestCollector_ConstLabels(t *testing.T) {
	reg := prometheus.NewRegistry()
	collector := New(WithRegistry(reg), WithConstLabels(prometheus.Labels{"app": "docs"}))

	collector.ObservePartial("row", true)

	families, err := reg.Gather()
	if err != nil {
		t.Fatalf("gather: %v", err)
	}
	found := false
	for _, family := range families {
		if family.GetName() != "componentkit_partial_cache_requests_total" {
			continue
		}
		for _, metric := range family.GetMetric() {
			for _, label := range metric.GetLabel() {
				if label.GetName() == "app" && label.GetValue() == "docs" {
					found = true
				}
			}
		}
	}
	if !found {
		t.Fatalf("expected const label app=docs on partial metric")
	}
}

func TestCollector_NilIsNoop(t *testing.T) {
	var collector *Collector
	collector.ObserveComponent("card", time.Millisecond, nil)
	collector.ObservePartial("row", true)
}
