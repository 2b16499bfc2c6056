package perf

import (
	"context"
	"testing"

	"github.com/hibiken/asynq"
	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"

	jobmetrics "github.com/odyssey-erp/recon-portal/internal/jobs"
	"github.com/odyssey-erp/recon-portal/jobs"
	"github.com/odyssey-erp/recon-portal/report"
)

type flakyRenderer struct {
	runs     int
	failEach int
}

func (f *flakyRenderer) Run(ctx context.Context) (report.Summary, error) {
	f.runs++
	if f.failEach > 0 && f.runs%f.failEach == 0 {
		return report.Summary{}, context.DeadlineExceeded
	}
	return report.Summary{Generated: 6}, nil
}

func TestRenderJobReliabilityMetrics(t *testing.T) {
	reg := prometheus.NewRegistry()
	metrics := jobmetrics.NewMetrics(reg)
	job := jobs.NewRenderJob(&flakyRenderer{failEach: 20}, nil, metrics)

	task, err := jobs.NewRenderTask(jobs.RenderPayload{Source: jobs.SourceCron})
	if err != nil {
		t.Fatalf("task: %v", err)
	}
	failures := 0
	for i := 0; i < 61; i++ {
		if err := job.Handle(context.Background(), asynq.NewTask(task.Type(), task.Payload())); err != nil {
			failures++
		}
	}
	if failures != 3 {
		t.Fatalf("expected 3 interrupted runs, got %d", failures)
	}

	families, err := reg.Gather()
	if err != nil {
		t.Fatalf("failed to gather metrics: %v", err)
	}
	success := metricValue(t, families, "recon_jobs_total", map[string]string{"job": jobs.TaskRenderReports, "status": "success"})
	failure := metricValue(t, families, "recon_jobs_total", map[string]string{"job": jobs.TaskRenderReports, "status": "failure"})
	if ratio := success / (success + failure); ratio < 0.9 {
		t.Fatalf("render success ratio too low: %f", ratio)
	}
	if mean := histogramMean(t, families, "recon_job_duration_seconds", map[string]string{"job": jobs.TaskRenderReports}); mean > 0.5 {
		t.Fatalf("render job duration above budget: %f", mean)
	}
	if generated := metricValue(t, families, "recon_report_last_generated_sections", nil); generated != 6 {
		t.Fatalf("expected last generated gauge 6, got %f", generated)
	}
}

func metricValue(t *testing.T, families []*dto.MetricFamily, name string, labels map[string]string) float64 {
	t.Helper()
	for _, fam := range families {
		if fam.GetName() != name {
			continue
		}
		for _, metric := range fam.GetMetric() {
			if !hasLabels(metric, labels) {
				continue
			}
			switch fam.GetType() {
			case dto.MetricType_COUNTER:
				return metric.GetCounter().GetValue()
			case dto.MetricType_GAUGE:
				return metric.GetGauge().GetValue()
			}
		}
	}
	t.Fatalf("metric %s with labels %v not found", name, labels)
	return 0
}

func histogramMean(t *testing.T, families []*dto.MetricFamily, name string, labels map[string]string) float64 {
	t.Helper()
	for _, fam := range families {
		if fam.GetName() != name {
			continue
		}
		for _, metric := range fam.GetMetric() {
			if hasLabels(metric, labels) {
				hist := metric.GetHistogram()
				if hist == nil || hist.GetSampleCount() == 0 {
					t.Fatalf("histogram %s missing samples", name)
				}
				return hist.GetSampleSum() / float64(hist.GetSampleCount())
			}
		}
	}
	t.Fatalf("histogram %s with labels %v not found", name, labels)
	return 0
}

func hasLabels(metric *dto.Metric, labels map[string]string) bool {
	present := make(map[string]string, len(metric.GetLabel()))
	for _, lp := range metric.GetLabel() {
		present[lp.GetName()] = lp.GetValue()
	}
	for key, want := range labels {
		if got, ok := present[key]; !ok || got != want {
			return false
		}
	}
	return true
}
