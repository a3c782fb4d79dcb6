package scheduler

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/mikestefanello/backlite"
	"github.com/robfig/cron/v3"

	"github.com/edoomio/studio/internal/entities"
	"github.com/edoomio/studio/internal/logger"
	"github.com/edoomio/studio/internal/settingsstore"
	"github.com/edoomio/studio/internal/tasks"
)

// SyncSettings provides the schedule and records the outcome of each run.
type SyncSettings interface {
	GetTranslationSyncConfig() settingsstore.TranslationSyncConfig
	SetTranslationSyncStatus(status, message string) error
}

// SyncableCourses lists published courses that have been pushed for translation.
type SyncableCourses interface {
	ListSyncable() ([]entities.Course, error)
}

// Enqueuer hands tasks to the background queue.
type Enqueuer interface {
	Enqueue(ctx context.Context, tasks ...backlite.Task) ([]string, error)
}

// TranslationSyncScheduler periodically enqueues translation pulls
type TranslationSyncScheduler struct {
	settings SyncSettings
	courses  SyncableCourses
	queue    Enqueuer
	log      *logger.Logger

	cron       *cron.Cron
	entryID    cron.EntryID
	mu         sync.RWMutex
	isRunning  bool
	isSyncing  bool
	cancelFunc context.CancelFunc
}

func NewTranslationSyncScheduler(settings SyncSettings, courses SyncableCourses, queue Enqueuer, log *logger.Logger) *TranslationSyncScheduler {
	return &TranslationSyncScheduler{
		settings: settings,
		courses:  courses,
		queue:    queue,
		log:      log.With("component", "translation_sync"),
		cron:     cron.New(cron.WithParser(cron.NewParser(cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow))),
	}
}

// Start begins the scheduler if sync is enabled
func (s *TranslationSyncScheduler) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.isRunning {
		return nil
	}

	config := s.settings.GetTranslationSyncConfig()
	if !config.Enabled {
		s.log.Info("Translation sync scheduler disabled")
		return nil
	}

	if err := settingsstore.ValidateCronSchedule(config.Schedule); err != nil {
		return fmt.Errorf("invalid cron schedule '%s': %w", config.Schedule, err)
	}

	entryID, err := s.cron.AddFunc(config.Schedule, func() {
		s.runSync(context.Background())
	})
	if err != nil {
		return fmt.Errorf("failed to schedule sync job: %w", err)
	}
	s.entryID = entryID

	var cancelCtx context.Context
	cancelCtx, s.cancelFunc = context.WithCancel(ctx)

	s.cron.Start()
	s.isRunning = true

	nextRun, _ := settingsstore.GetNextRunTime(config.Schedule, time.Now())
	s.log.Info("Translation sync scheduler started",
		"schedule", config.Schedule,
		"description", settingsstore.GetCronDescription(config.Schedule),
		"next_run", nextRun)

	go func() {
		<-cancelCtx.Done()
		// only the caller's context ending stops the scheduler; Stop cancels too
		if ctx.Err() != nil {
			s.Stop()
		}
	}()

	return nil
}

// Stop gracefully stops the scheduler
func (s *TranslationSyncScheduler) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.isRunning {
		return
	}

	ctx := s.cron.Stop()
	<-ctx.Done()

	s.cron.Remove(s.entryID)
	if s.cancelFunc != nil {
		s.cancelFunc()
		s.cancelFunc = nil
	}
	s.isRunning = false

	s.log.Info("Translation sync scheduler stopped")
}

// Reschedule updates the schedule (call after settings change)
func (s *TranslationSyncScheduler) Reschedule(ctx context.Context) error {
	s.Stop()
	return s.Start(ctx)
}

// RunNow triggers an immediate sync and reports how many pulls were enqueued.
func (s *TranslationSyncScheduler) RunNow(ctx context.Context) (int, error) {
	return s.runSync(ctx)
}

func (s *TranslationSyncScheduler) IsRunning() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.isRunning
}

// GetNextRunTime returns when the next sync will occur
func (s *TranslationSyncScheduler) GetNextRunTime() *time.Time {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if !s.isRunning {
		return nil
	}
	for _, entry := range s.cron.Entries() {
		if entry.ID == s.entryID {
			t := entry.Next
			return &t
		}
	}
	return nil
}

// runSync enqueues one pull per syncable course. Each course is pulled in its
// own task, so one failing course never blocks the others.
func (s *TranslationSyncScheduler) runSync(ctx context.Context) (int, error) {
	s.mu.Lock()
	if s.isSyncing {
		s.mu.Unlock()
		s.log.Info("Translation sync skipped, already running")
		return 0, nil
	}
	s.isSyncing = true
	s.mu.Unlock()

	defer func() {
		s.mu.Lock()
		s.isSyncing = false
		s.mu.Unlock()
	}()

	courses, err := s.courses.ListSyncable()
	if err != nil {
		msg := fmt.Sprintf("Failed to list courses: %v", err)
		s.log.Error("Translation sync failed", "error", err)
		_ = s.settings.SetTranslationSyncStatus("failed", msg)
		return 0, err
	}
	if len(courses) == 0 {
		_ = s.settings.SetTranslationSyncStatus("success", "No published courses to sync")
		return 0, nil
	}

	batch := make([]backlite.Task, 0, len(courses))
	for _, c := range courses {
		userID := ""
		if c.UserID != nil {
			userID = *c.UserID
		}
		batch = append(batch, tasks.TranslationPullTask{CourseID: c.ID, UserID: userID})
	}
	if _, err := s.queue.Enqueue(ctx, batch...); err != nil {
		s.log.Error("Translation sync failed", "error", err)
		_ = s.settings.SetTranslationSyncStatus("failed", err.Error())
		return 0, err
	}

	msg := fmt.Sprintf("Queued translation pull for %d courses", len(batch))
	s.log.Info("Translation sync queued", "courses", len(batch))
	_ = s.settings.SetTranslationSyncStatus("success", msg)
	return len(batch), nil
}
