// Package renderjobs stores the state of PDF render jobs.
package renderjobs

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/edoomio/studio/internal/database"
	"github.com/edoomio/studio/internal/entities"
)

// Repository handles all render job database operations.
type Repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// Create inserts a job. New jobs start pending unless a status is set.
func (r *Repository) Create(job *entities.RenderJob) error {
	if job.ID == "" {
		job.ID = uuid.NewString()
	}
	if job.Status == "" {
		job.Status = entities.RenderStatusPending
	}
	if err := r.db.Create(job).Error; err != nil {
		return fmt.Errorf("failed to create render job: %w", err)
	}
	return nil
}

func (r *Repository) GetByID(id string) (*entities.RenderJob, error) {
	var job entities.RenderJob
	if err := r.db.Where("id = ?", id).First(&job).Error; err != nil {
		return nil, database.Translate(err)
	}
	return &job, nil
}

func (r *Repository) GetForOwner(id, userID string) (*entities.RenderJob, error) {
	var job entities.RenderJob
	err := r.db.Scopes(database.OwnerScope(userID)).Where("id = ?", id).First(&job).Error
	if err != nil {
		return nil, database.Translate(err)
	}
	return &job, nil
}

func (r *Repository) MarkRunning(id string) error {
	return r.setStatus(id, map[string]any{"status": entities.RenderStatusRunning, "error": ""})
}

// MarkDone records the blob holding the rendered PDF.
func (r *Repository) MarkDone(id, blobKey string) error {
	return r.setStatus(id, map[string]any{"status": entities.RenderStatusDone, "blob_key": blobKey, "error": ""})
}

// MarkFailed records why a job failed. Other jobs are unaffected.
func (r *Repository) MarkFailed(id string, cause error) error {
	msg := ""
	if cause != nil {
		msg = cause.Error()
		if len(msg) > 1000 {
			msg = msg[:1000]
		}
	}
	return r.setStatus(id, map[string]any{"status": entities.RenderStatusFailed, "error": msg})
}

func (r *Repository) setStatus(id string, updates map[string]any) error {
	result := r.db.Model(&entities.RenderJob{}).Where("id = ?", id).Updates(updates)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return database.ErrNotFound
	}
	return nil
}

// DeleteForWorksheet removes every job of a worksheet.
func (r *Repository) DeleteForWorksheet(worksheetID string) error {
	return r.db.Where("worksheet_id = ?", worksheetID).Delete(&entities.RenderJob{}).Error
}

// DeleteFinishedBefore removes done and failed jobs last touched before cutoff.
// Rendered blobs stay in storage; only the job rows go.
func (r *Repository) DeleteFinishedBefore(cutoff time.Time) (int64, error) {
	result := r.db.
		Where("status IN ?", []entities.RenderStatus{entities.RenderStatusDone, entities.RenderStatusFailed}).
		Where("updated_at < ?", cutoff).
		Delete(&entities.RenderJob{})
	return result.RowsAffected, result.Error
}
