package tasks

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/mikestefanello/backlite"

	"github.com/edoomio/studio/internal/database"
	"github.com/edoomio/studio/internal/entities"
	"github.com/edoomio/studio/internal/logger"
	"github.com/edoomio/studio/internal/translation"
)

// CourseLoader loads courses regardless of owner.
type CourseLoader interface {
	GetByID(id string) (*entities.Course, error)
}

// Translator runs the push and pull halves of the translation pipeline.
type Translator interface {
	Push(ctx context.Context, c *entities.Course) (*translation.PushResult, error)
	Pull(ctx context.Context, c *entities.Course) (*translation.PullResult, error)
}

// TranslationAuditor records translation runs in the activity log.
type TranslationAuditor interface {
	LogTranslation(userID, courseID, action, description string, metadata map[string]any, err error)
}

// TranslationPushTask sends a course's base language strings to the translation service.
type TranslationPushTask struct {
	CourseID string `json:"course_id"`
	UserID   string `json:"user_id"`
}

// Config returns the queue configuration for translation push tasks.
func (t TranslationPushTask) Config() backlite.QueueConfig {
	return backlite.QueueConfig{
		Name:        "translation_push",
		MaxAttempts: 2,
		Backoff:     time.Minute,
		Timeout:     30 * time.Minute,
		Retention: &backlite.Retention{
			Duration: 24 * time.Hour,
			Data:     &backlite.RetainData{OnlyFailed: true},
		},
	}
}

// TranslationPullTask replaces a course's translation bundles with fresh ones.
type TranslationPullTask struct {
	CourseID string `json:"course_id"`
	UserID   string `json:"user_id"`
}

// Config returns the queue configuration for translation pull tasks.
func (t TranslationPullTask) Config() backlite.QueueConfig {
	return backlite.QueueConfig{
		Name:        "translation_pull",
		MaxAttempts: 3,
		Backoff:     2 * time.Minute,
		Timeout:     10 * time.Minute,
		Retention: &backlite.Retention{
			Duration: 24 * time.Hour,
			Data:     &backlite.RetainData{OnlyFailed: true},
		},
	}
}

// loadCourse returns nil without error when the course is gone, since retrying cannot help.
func loadCourse(courses CourseLoader, id string, log *logger.Logger) (*entities.Course, error) {
	c, err := courses.GetByID(id)
	if errors.Is(err, database.ErrNotFound) {
		log.Warn("Course no longer exists, dropping task", "course_id", id)
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("load course %s: %w", id, err)
	}
	return c, nil
}

// TranslationPushProcessor creates a processor function for TranslationPushTask.
func TranslationPushProcessor(courses CourseLoader, translator Translator, audit TranslationAuditor, log *logger.Logger) backlite.QueueProcessor[TranslationPushTask] {
	return func(ctx context.Context, task TranslationPushTask) error {
		if translator == nil {
			return fmt.Errorf("translator not configured")
		}
		c, err := loadCourse(courses, task.CourseID, log)
		if err != nil || c == nil {
			return err
		}

		result, err := translator.Push(ctx, c)
		if audit != nil {
			meta := map[string]any{}
			if result != nil {
				meta["namespace"] = result.Namespace
				meta["strings"] = result.StringCount
				meta["created"] = result.Created
			}
			audit.LogTranslation(task.UserID, c.ID, "push", "Pushed strings of course: "+c.Title, meta, err)
		}
		if err != nil {
			return fmt.Errorf("push course %s: %w", c.ID, err)
		}
		return nil
	}
}

// TranslationPullProcessor creates a processor function for TranslationPullTask.
func TranslationPullProcessor(courses CourseLoader, translator Translator, audit TranslationAuditor, log *logger.Logger) backlite.QueueProcessor[TranslationPullTask] {
	return func(ctx context.Context, task TranslationPullTask) error {
		if translator == nil {
			return fmt.Errorf("translator not configured")
		}
		c, err := loadCourse(courses, task.CourseID, log)
		if err != nil || c == nil {
			return err
		}

		result, err := translator.Pull(ctx, c)
		if audit != nil {
			meta := map[string]any{}
			if result != nil {
				meta["languages"] = result.Languages
				meta["skipped"] = len(result.Skipped)
			}
			audit.LogTranslation(task.UserID, c.ID, "pull", "Pulled translations of course: "+c.Title, meta, err)
		}
		if errors.Is(err, translation.ErrNoNamespace) {
			log.Warn("Course was never pushed, skipping pull", "course_id", c.ID)
			return nil
		}
		if err != nil {
			return fmt.Errorf("pull course %s: %w", c.ID, err)
		}
		return nil
	}
}

// NewTranslationPushQueue creates a backlite queue for translation push tasks.
func NewTranslationPushQueue(courses CourseLoader, translator Translator, audit TranslationAuditor, log *logger.Logger) backlite.Queue {
	return backlite.NewQueue(TranslationPushProcessor(courses, translator, audit, log))
}

// NewTranslationPullQueue creates a backlite queue for translation pull tasks.
func NewTranslationPullQueue(courses CourseLoader, translator Translator, audit TranslationAuditor, log *logger.Logger) backlite.Queue {
	return backlite.NewQueue(TranslationPullProcessor(courses, translator, audit, log))
}
