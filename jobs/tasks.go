package jobs

import (
	"encoding/json"
	"time"

	"github.com/hibiken/asynq"
)

const (
	// QueueDefault is the default queue name for background jobs.
	QueueDefault = "default"
	// TaskRenderReports regenerates every report page from the data directory.
	TaskRenderReports = "report:render"

	// renderUniqueTTL collapses repeated triggers while a render is pending.
	renderUniqueTTL = 10 * time.Minute
)

// Render trigger sources.
const (
	SourceAPI  = "api"
	SourceCron = "cron"
	SourceCLI  = "cli"
)

// RenderPayload describes what triggered a render.
type RenderPayload struct {
	Source string `json:"source"`
}

// NewRenderTask constructs an Asynq task for a report render.
func NewRenderTask(payload RenderPayload) (*asynq.Task, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskRenderReports, body, renderOptions()...), nil
}

func renderOptions() []asynq.Option {
	return []asynq.Option{
		asynq.Queue(QueueDefault),
		asynq.Unique(renderUniqueTTL),
		asynq.MaxRetry(3),
	}
}
