package http

import (
	"context"
	"io"

	"github.com/mikestefanello/backlite"

	"github.com/edoomio/studio/internal/database"
	"github.com/edoomio/studio/internal/database/courses"
	"github.com/edoomio/studio/internal/database/ebooks"
	"github.com/edoomio/studio/internal/database/folders"
	"github.com/edoomio/studio/internal/database/worksheets"
	"github.com/edoomio/studio/internal/entities"
	"github.com/edoomio/studio/internal/translation"
)

// WorksheetStore is the worksheet persistence the controllers need.
type WorksheetStore interface {
	Create(w *entities.Worksheet) error
	GetByID(id string) (*entities.Worksheet, error)
	GetForOwner(id, userID string) (*entities.Worksheet, error)
	GetBySlug(slug string) (*entities.Worksheet, error)
	List(f worksheets.Filter) ([]entities.Worksheet, error)
	FindByIDs(ids []string) (map[string]entities.Worksheet, error)
	Update(id, userID string, patch database.Patch) (*entities.Worksheet, error)
	Delete(id, userID string) error
	Duplicate(id, userID string) (*entities.Worksheet, error)
}

// CourseStore is the course persistence the controllers need.
type CourseStore interface {
	Create(c *entities.Course) error
	GetByID(id string) (*entities.Course, error)
	GetForOwner(id, userID string) (*entities.Course, error)
	GetBySlug(slug string) (*entities.Course, error)
	List(f courses.Filter) ([]entities.Course, error)
	Update(id, userID string, patch database.Patch) (*entities.Course, error)
	Delete(id, userID string) error
}

// EBookStore is the e-book persistence the controllers need.
type EBookStore interface {
	Create(e *entities.EBook) error
	GetForOwner(id, userID string) (*entities.EBook, error)
	GetBySlug(slug string) (*entities.EBook, error)
	List(f ebooks.Filter) ([]entities.EBook, error)
	Update(id, userID string, patch database.Patch) (*entities.EBook, error)
	Delete(id, userID string) error
}

// FolderStore is the folder tree persistence the controllers need.
type FolderStore interface {
	List(userID, parentID string) ([]folders.Folder, error)
	GetForOwner(id, userID string) (*folders.Folder, error)
	Create(userID, name string, parentID *string) (*folders.Folder, error)
	Update(id, userID string, patch database.Patch) (*folders.Folder, error)
	Delete(id, userID string) error
}

// RenderJobStore loads render jobs for their owner.
type RenderJobStore interface {
	GetForOwner(id, userID string) (*entities.RenderJob, error)
}

// PDFRenderer requests, runs and serves worksheet PDF renders.
type PDFRenderer interface {
	Request(ctx context.Context, w *entities.Worksheet, userID string, locale entities.RenderLocale, solutions bool) (*entities.RenderJob, error)
	Run(ctx context.Context, jobID string) error
	Open(ctx context.Context, job *entities.RenderJob) (io.ReadCloser, error)
	SignedURL(ctx context.Context, job *entities.RenderJob) (string, bool, error)
	Forget(ctx context.Context, worksheetID string)
}

// Translator runs the course translation pipeline synchronously.
type Translator interface {
	Push(ctx context.Context, c *entities.Course) (*translation.PushResult, error)
	Pull(ctx context.Context, c *entities.Course) (*translation.PullResult, error)
	Status(c *entities.Course) (*translation.Status, error)
}

// TaskQueue hands work to the background queue and reports on it.
type TaskQueue interface {
	Enqueue(ctx context.Context, tasks ...backlite.Task) ([]string, error)
	Status(ctx context.Context, taskID string) (backlite.TaskStatus, error)
}

// DocumentAuditor records document and translation activity.
type DocumentAuditor interface {
	LogDocument(userID string, eventType entities.AuditEventType, entityType, entityID, title string)
	LogTranslation(userID, courseID, action, description string, metadata map[string]any, err error)
}

type nopAuditor struct{}

func (nopAuditor) LogDocument(string, entities.AuditEventType, string, string, string) {}
func (nopAuditor) LogTranslation(string, string, string, string, map[string]any, error) {}
