package jobs

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/hibiken/asynq"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	jobmetrics "github.com/odyssey-erp/recon-portal/internal/jobs"
	"github.com/odyssey-erp/recon-portal/report"
)

type fakeRenderer struct {
	summary report.Summary
	err     error
	calls   int
}

func (f *fakeRenderer) Run(ctx context.Context) (report.Summary, error) {
	f.calls++
	return f.summary, f.err
}

func renderTask(t *testing.T, source string) *asynq.Task {
	t.Helper()
	task, err := NewRenderTask(RenderPayload{Source: source})
	require.NoError(t, err)
	return task
}

func TestNewRenderTask(t *testing.T) {
	task := renderTask(t, SourceCron)
	assert.Equal(t, TaskRenderReports, task.Type())

	var payload RenderPayload
	require.NoError(t, json.Unmarshal(task.Payload(), &payload))
	assert.Equal(t, SourceCron, payload.Source)
}

func TestRenderJobPartialFailureIsNotRetried(t *testing.T) {
	renderer := &fakeRenderer{summary: report.Summary{Generated: 6, Failed: 1}}
	job := NewRenderJob(renderer, nil, jobmetrics.NewMetrics(prometheus.NewRegistry()))

	assert.NoError(t, job.Handle(context.Background(), renderTask(t, SourceAPI)))
	assert.Equal(t, 1, renderer.calls)
}

func TestRenderJobInterruptedRunFails(t *testing.T) {
	renderer := &fakeRenderer{err: context.Canceled}
	job := NewRenderJob(renderer, nil, jobmetrics.NewMetrics(prometheus.NewRegistry()))

	err := job.Handle(context.Background(), renderTask(t, SourceAPI))
	assert.ErrorIs(t, err, context.Canceled)
}

func TestRenderJobBadPayloadSkipsRetry(t *testing.T) {
	renderer := &fakeRenderer{}
	job := NewRenderJob(renderer, nil, jobmetrics.NewMetrics(prometheus.NewRegistry()))

	err := job.Handle(context.Background(), asynq.NewTask(TaskRenderReports, []byte("{")))
	assert.True(t, errors.Is(err, asynq.SkipRetry))
	assert.Zero(t, renderer.calls)
}

func TestRenderJobNotConfigured(t *testing.T) {
	var job *RenderJob
	assert.Error(t, job.Handle(context.Background(), renderTask(t, SourceAPI)))
}
