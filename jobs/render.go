package jobs

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	"github.com/hibiken/asynq"

	jobmetrics "github.com/odyssey-erp/recon-portal/internal/jobs"
	"github.com/odyssey-erp/recon-portal/report"
)

var defaultJobMetrics = jobmetrics.NewMetrics(nil)

// Renderer is the part of report.Renderer the job depends on.
type Renderer interface {
	Run(ctx context.Context) (report.Summary, error)
}

// RenderJob runs the report renderer for queued render tasks.
type RenderJob struct {
	Renderer Renderer
	Logger   *slog.Logger
	Metrics  *jobmetrics.Metrics
}

// NewRenderJob wires dependencies for the render handler.
func NewRenderJob(renderer Renderer, logger *slog.Logger, metrics *jobmetrics.Metrics) *RenderJob {
	return &RenderJob{Renderer: renderer, Logger: logger, Metrics: metrics}
}

// Handle processes TaskRenderReports tasks. Per-section failures are part of
// the summary and do not fail the task; only a run that could not complete
// is retried.
func (j *RenderJob) Handle(ctx context.Context, t *asynq.Task) (resultErr error) {
	if j == nil || j.Renderer == nil {
		return errors.New("render job: handler not configured")
	}
	var payload RenderPayload
	if err := json.Unmarshal(t.Payload(), &payload); err != nil {
		return fmt.Errorf("render job: decode payload: %v: %w", err, asynq.SkipRetry)
	}

	tracker := j.metrics().Track(TaskRenderReports)
	defer func() {
		resultErr = tracker.End(resultErr)
	}()

	logger := j.logger().With(slog.String("source", payload.Source))
	logger.Info("starting report render")
	summary, err := j.Renderer.Run(ctx)
	j.metrics().SetLastRender(summary.Generated, summary.Failed)
	if err != nil {
		logger.Error("report render interrupted", slog.Any("error", err))
		return fmt.Errorf("render job: %w", err)
	}
	if summary.Failed > 0 {
		logger.Warn("report render finished with failures",
			slog.Int("generated", summary.Generated),
			slog.Int("failed", summary.Failed),
		)
		return nil
	}
	logger.Info("report render finished", slog.Int("generated", summary.Generated))
	return nil
}

func (j *RenderJob) logger() *slog.Logger {
	if j.Logger != nil {
		return j.Logger.With(slog.String("job", TaskRenderReports))
	}
	return slog.Default().With(slog.String("job", TaskRenderReports))
}

func (j *RenderJob) metrics() *jobmetrics.Metrics {
	if j.Metrics != nil {
		return j.Metrics
	}
	return defaultJobMetrics
}
