package tasks

import (
	"context"
	"fmt"
	"time"

	"github.com/mikestefanello/backlite"
)

// JobRunner executes a stored render job.
type JobRunner interface {
	Run(ctx context.Context, jobID string) error
}

// RenderPDFTask renders one worksheet PDF job.
type RenderPDFTask struct {
	JobID string `json:"job_id"`
}

// Config returns the queue configuration for PDF render tasks.
func (t RenderPDFTask) Config() backlite.QueueConfig {
	return backlite.QueueConfig{
		Name:        "render_pdf",
		MaxAttempts: 2,
		Backoff:     30 * time.Second,
		Timeout:     3 * time.Minute,
		Retention: &backlite.Retention{
			Duration: 24 * time.Hour,
			Data:     &backlite.RetainData{OnlyFailed: true},
		},
	}
}

// RenderPDFProcessor creates a processor function for RenderPDFTask.
func RenderPDFProcessor(runner JobRunner) backlite.QueueProcessor[RenderPDFTask] {
	return func(ctx context.Context, task RenderPDFTask) error {
		if runner == nil {
			return fmt.Errorf("renderer not configured")
		}
		return runner.Run(ctx, task.JobID)
	}
}

// NewRenderPDFQueue creates a backlite queue for PDF render tasks.
func NewRenderPDFQueue(runner JobRunner) backlite.Queue {
	return backlite.NewQueue(RenderPDFProcessor(runner))
}
