package scheduler

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/mikestefanello/backlite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"github.com/edoomio/studio/internal/entities"
	"github.com/edoomio/studio/internal/logger"
	"github.com/edoomio/studio/internal/settingsstore"
	"github.com/edoomio/studio/internal/tasks"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

type fakeSettings struct {
	config   settingsstore.TranslationSyncConfig
	statuses []string
	messages []string
}

func (f *fakeSettings) GetTranslationSyncConfig() settingsstore.TranslationSyncConfig {
	return f.config
}

func (f *fakeSettings) SetTranslationSyncStatus(status, message string) error {
	f.statuses = append(f.statuses, status)
	f.messages = append(f.messages, message)
	return nil
}

type fakeCourses struct {
	courses []entities.Course
	err     error
}

func (f *fakeCourses) ListSyncable() ([]entities.Course, error) {
	return f.courses, f.err
}

type fakeQueue struct {
	tasks []backlite.Task
}

func (f *fakeQueue) Enqueue(_ context.Context, ts ...backlite.Task) ([]string, error) {
	f.tasks = append(f.tasks, ts...)
	ids := make([]string, len(ts))
	return ids, nil
}

func strPtr(s string) *string { return &s }

func TestRunNow_EnqueuesPullPerCourse(t *testing.T) {
	settings := &fakeSettings{}
	courses := &fakeCourses{courses: []entities.Course{
		{ID: "c1", UserID: strPtr("u1")},
		{ID: "c2"},
	}}
	queue := &fakeQueue{}
	s := NewTranslationSyncScheduler(settings, courses, queue, logger.Nop())

	n, err := s.RunNow(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, n)
	assert.Equal(t, []backlite.Task{
		tasks.TranslationPullTask{CourseID: "c1", UserID: "u1"},
		tasks.TranslationPullTask{CourseID: "c2"},
	}, queue.tasks)
	assert.Equal(t, []string{"success"}, settings.statuses)
}

func TestRunNow_ListFailure(t *testing.T) {
	settings := &fakeSettings{}
	s := NewTranslationSyncScheduler(settings, &fakeCourses{err: errors.New("db closed")}, &fakeQueue{}, logger.Nop())

	_, err := s.RunNow(context.Background())
	assert.Error(t, err)
	assert.Equal(t, []string{"failed"}, settings.statuses)
}

func TestStart_Disabled(t *testing.T) {
	s := NewTranslationSyncScheduler(&fakeSettings{}, &fakeCourses{}, &fakeQueue{}, logger.Nop())
	require.NoError(t, s.Start(context.Background()))
	assert.False(t, s.IsRunning())
	assert.Nil(t, s.GetNextRunTime())
}

func TestStart_InvalidSchedule(t *testing.T) {
	settings := &fakeSettings{config: settingsstore.TranslationSyncConfig{Enabled: true, Schedule: "never"}}
	s := NewTranslationSyncScheduler(settings, &fakeCourses{}, &fakeQueue{}, logger.Nop())
	assert.Error(t, s.Start(context.Background()))
}

func TestStartStop(t *testing.T) {
	settings := &fakeSettings{config: settingsstore.TranslationSyncConfig{Enabled: true, Schedule: "0 */6 * * *"}}
	s := NewTranslationSyncScheduler(settings, &fakeCourses{}, &fakeQueue{}, logger.Nop())

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	require.NoError(t, s.Start(ctx))
	assert.True(t, s.IsRunning())

	next := s.GetNextRunTime()
	require.NotNil(t, next)
	assert.True(t, next.After(time.Now()))

	cancel()
	assert.Eventually(t, func() bool { return !s.IsRunning() }, time.Second, 10*time.Millisecond)
}
