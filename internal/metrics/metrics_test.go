package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"
)

func gather(t *testing.T, name string) *dto.MetricFamily {
	t.Helper()
	families, err := prometheus.DefaultGatherer.Gather()
	if err != nil {
		t.Fatalf("gather: %v", err)
	}
	for _, mf := range families {
		if mf.GetName() == name {
			return mf
		}
	}
	return nil
}

func counterValue(mf *dto.MetricFamily, label, value string) float64 {
	if mf == nil {
		return 0
	}
	for _, m := range mf.GetMetric() {
		for _, lp := range m.GetLabel() {
			if lp.GetName() == label && lp.GetValue() == value {
				return m.GetCounter().GetValue()
			}
		}
	}
	return 0
}

func TestRecordRead(t *testing.T) {
	before := counterValue(gather(t, "eggcracker_reads_total"), "outcome", OutcomeForbidden)
	RecordRead(OutcomeForbidden)
	RecordRead(OutcomeForbidden)
	after := counterValue(gather(t, "eggcracker_reads_total"), "outcome", OutcomeForbidden)
	if after-before != 2 {
		t.Fatalf("expected 2 increments, got %v", after-before)
	}
}

func TestRecordPipeline(t *testing.T) {
	truncBefore := 0.0
	if mf := gather(t, "eggcracker_excerpts_truncated_total"); mf != nil {
		truncBefore = mf.GetMetric()[0].GetCounter().GetValue()
	}
	RecordPipeline("density", 0.002, 2500, true)
	RecordPipeline("density", 0.001, 10, false)

	mf := gather(t, "eggcracker_excerpts_truncated_total")
	if mf == nil || mf.GetMetric()[0].GetCounter().GetValue()-truncBefore != 1 {
		t.Fatalf("expected one truncated excerpt")
	}
	hist := gather(t, "eggcracker_pipeline_duration_seconds")
	if hist == nil {
		t.Fatalf("pipeline histogram not registered")
	}
	var found bool
	for _, m := range hist.GetMetric() {
		for _, lp := range m.GetLabel() {
			if lp.GetValue() == "density" && m.GetHistogram().GetSampleCount() >= 2 {
				found = true
			}
		}
	}
	if !found {
		t.Fatalf("expected density samples")
	}
}

func TestRecordFetchError(t *testing.T) {
	before := counterValue(gather(t, "eggcracker_fetch_errors_total"), "kind", "status")
	RecordFetchError("status")
	after := counterValue(gather(t, "eggcracker_fetch_errors_total"), "kind", "status")
	if after-before != 1 {
		t.Fatalf("expected 1 increment, got %v", after-before)
	}
}
