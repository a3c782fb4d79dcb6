package tasks

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/mikestefanello/backlite"

	"github.com/edoomio/studio/internal/logger"
)

const defaultRetentionDays = 30

// AuditEventCleaner deletes audit events older than a retention period.
type AuditEventCleaner interface {
	DeleteOldEvents(retention time.Duration) (int64, error)
}

// RenderJobCleaner deletes finished render jobs.
type RenderJobCleaner interface {
	DeleteFinishedBefore(cutoff time.Time) (int64, error)
}

// CleanupHistoryTask prunes audit events and finished render jobs that are
// older than RetentionDays.
type CleanupHistoryTask struct {
	RetentionDays int `json:"retention_days"`
}

func (t CleanupHistoryTask) Config() backlite.QueueConfig {
	return backlite.QueueConfig{
		Name:        "cleanup_history",
		MaxAttempts: 3,
		Backoff:     5 * time.Minute,
		Timeout:     2 * time.Minute,
		Retention: &backlite.Retention{
			Duration: 24 * time.Hour,
			Data:     &backlite.RetainData{OnlyFailed: true},
		},
	}
}

// CleanupHistoryProcessor runs both cleanups. A failing cleanup does not stop
// the other one; the joined error makes backlite retry the task.
func CleanupHistoryProcessor(audit AuditEventCleaner, jobs RenderJobCleaner, log *logger.Logger) backlite.QueueProcessor[CleanupHistoryTask] {
	return func(ctx context.Context, task CleanupHistoryTask) error {
		if audit == nil && jobs == nil {
			return fmt.Errorf("no history cleaner configured")
		}

		days := task.RetentionDays
		if days <= 0 {
			days = defaultRetentionDays
		}
		retention := time.Duration(days) * 24 * time.Hour

		var errs []error
		if audit != nil {
			deleted, err := audit.DeleteOldEvents(retention)
			if err != nil {
				errs = append(errs, fmt.Errorf("cleanup audit events: %w", err))
			} else {
				log.Info("Cleaned up audit events", "deleted", deleted, "retention_days", days)
			}
		}
		if jobs != nil {
			deleted, err := jobs.DeleteFinishedBefore(time.Now().Add(-retention))
			if err != nil {
				errs = append(errs, fmt.Errorf("cleanup render jobs: %w", err))
			} else {
				log.Info("Cleaned up render jobs", "deleted", deleted, "retention_days", days)
			}
		}
		return errors.Join(errs...)
	}
}

func NewCleanupHistoryQueue(audit AuditEventCleaner, jobs RenderJobCleaner, log *logger.Logger) backlite.Queue {
	return backlite.NewQueue(CleanupHistoryProcessor(audit, jobs, log))
}
