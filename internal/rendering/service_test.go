package rendering

import (
	"context"
	"errors"
	"io"
	"os"
	"sync"
	"testing"
	"time"

	mr "github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/edoomio/studio/internal/cache"
	"github.com/edoomio/studio/internal/database/renderjobs"
	"github.com/edoomio/studio/internal/database/worksheets"
	"github.com/edoomio/studio/internal/entities"
	"github.com/edoomio/studio/internal/logger"
	"github.com/edoomio/studio/internal/storage/providers/local"
)

type fakeRenderer struct {
	mu   sync.Mutex
	urls []string
	err  error
}

func (f *fakeRenderer) Render(_ context.Context, url string) ([]byte, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.urls = append(f.urls, url)
	if f.err != nil {
		return nil, f.err
	}
	return []byte("%PDF-1.7 " + url), nil
}

type recordingAuditor struct {
	errs []error
}

func (a *recordingAuditor) LogRender(_, _, _ string, err error) {
	a.errs = append(a.errs, err)
}

type fixture struct {
	svc        *Service
	jobs       *renderjobs.Repository
	worksheets *worksheets.Repository
	renderer   *fakeRenderer
	auditor    *recordingAuditor
	redis      *mr.Miniredis
}

func setupTestService(t *testing.T) *fixture {
	t.Helper()
	dbPath := "./test_rendering_" + t.Name() + ".db"
	db, err := gorm.Open(sqlite.Open(dbPath), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&entities.Worksheet{}, &entities.RenderJob{}))
	t.Cleanup(func() {
		sqlDB, _ := db.DB()
		sqlDB.Close()
		os.Remove(dbPath)
	})

	m, err := mr.Run()
	require.NoError(t, err)
	t.Cleanup(m.Close)
	client := redis.NewClient(&redis.Options{Addr: m.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	blobs, err := local.NewClient(t.TempDir())
	require.NoError(t, err)

	f := &fixture{
		jobs:       renderjobs.NewRepository(db),
		worksheets: worksheets.NewRepository(db),
		renderer:   &fakeRenderer{},
		auditor:    &recordingAuditor{},
		redis:      m,
	}
	f.svc = NewService(f.jobs, f.worksheets, f.renderer, blobs,
		cache.NewRedisRenderCache(client, "", time.Hour, logger.Nop()), f.auditor,
		Options{PrintBaseURL: "http://frontend"}, logger.Nop())
	return f
}

func (f *fixture) worksheet(t *testing.T) *entities.Worksheet {
	t.Helper()
	owner := "u1"
	w := &entities.Worksheet{Title: "Verben", Slug: "abcdefghij", UserID: &owner}
	require.NoError(t, f.worksheets.Create(w))
	return w
}

func TestService_RequestAndRun(t *testing.T) {
	f := setupTestService(t)
	ctx := context.Background()
	w := f.worksheet(t)

	job, err := f.svc.Request(ctx, w, "u1", entities.RenderLocaleCH, true)
	require.NoError(t, err)
	assert.Equal(t, entities.RenderStatusPending, job.Status)

	require.NoError(t, f.svc.Run(ctx, job.ID))
	assert.Equal(t, []string{"http://frontend/de/worksheet/abcdefghij/print?ch=1&solutions=1"}, f.renderer.urls)

	done, err := f.jobs.GetByID(job.ID)
	require.NoError(t, err)
	assert.Equal(t, entities.RenderStatusDone, done.Status)
	assert.Equal(t, "pdf/"+w.ID+"/"+job.Version+"-ch-solutions.pdf", done.BlobKey)

	r, err := f.svc.Open(ctx, done)
	require.NoError(t, err)
	defer r.Close()
	data, err := io.ReadAll(r)
	require.NoError(t, err)
	assert.Contains(t, string(data), "%PDF-1.7")

	_, signed, err := f.svc.SignedURL(ctx, done)
	require.NoError(t, err)
	assert.False(t, signed)
}

func TestService_RequestHitsCache(t *testing.T) {
	f := setupTestService(t)
	ctx := context.Background()
	w := f.worksheet(t)

	first, err := f.svc.Request(ctx, w, "u1", entities.RenderLocaleDE, false)
	require.NoError(t, err)
	require.NoError(t, f.svc.Run(ctx, first.ID))

	second, err := f.svc.Request(ctx, w, "u1", entities.RenderLocaleDE, false)
	require.NoError(t, err)
	assert.Equal(t, entities.RenderStatusDone, second.Status)
	assert.NotEmpty(t, second.BlobKey)

	require.NoError(t, f.svc.Run(ctx, second.ID))
	assert.Len(t, f.renderer.urls, 1)

	w.UpdatedAt = w.UpdatedAt.Add(time.Second)
	third, err := f.svc.Request(ctx, w, "u1", entities.RenderLocaleDE, false)
	require.NoError(t, err)
	assert.Equal(t, entities.RenderStatusPending, third.Status)
}

func TestService_FailureIsolated(t *testing.T) {
	f := setupTestService(t)
	ctx := context.Background()
	w := f.worksheet(t)

	ok, err := f.svc.Request(ctx, w, "u1", entities.RenderLocaleDE, false)
	require.NoError(t, err)
	bad, err := f.svc.Request(ctx, w, "u1", entities.RenderLocaleCH, false)
	require.NoError(t, err)

	f.renderer.err = errors.New("browser crashed")
	assert.Error(t, f.svc.Run(ctx, bad.ID))
	f.renderer.err = nil
	require.NoError(t, f.svc.Run(ctx, ok.ID))

	failed, err := f.jobs.GetByID(bad.ID)
	require.NoError(t, err)
	assert.Equal(t, entities.RenderStatusFailed, failed.Status)
	assert.Equal(t, "browser crashed", failed.Error)

	done, err := f.jobs.GetByID(ok.ID)
	require.NoError(t, err)
	assert.Equal(t, entities.RenderStatusDone, done.Status)

	require.Len(t, f.auditor.errs, 2)
	assert.Error(t, f.auditor.errs[0])
	assert.NoError(t, f.auditor.errs[1])

	_, err = f.svc.Open(ctx, failed)
	assert.ErrorIs(t, err, ErrNotReady)
}

func TestService_DeletedWorksheet(t *testing.T) {
	f := setupTestService(t)
	ctx := context.Background()
	w := f.worksheet(t)

	job, err := f.svc.Request(ctx, w, "u1", entities.RenderLocaleDE, false)
	require.NoError(t, err)
	require.NoError(t, f.worksheets.Delete(w.ID, "u1"))

	assert.Error(t, f.svc.Run(ctx, job.ID))
	failed, err := f.jobs.GetByID(job.ID)
	require.NoError(t, err)
	assert.Equal(t, entities.RenderStatusFailed, failed.Status)
	assert.Empty(t, f.renderer.urls)
}

func TestService_Forget(t *testing.T) {
	f := setupTestService(t)
	ctx := context.Background()
	w := f.worksheet(t)

	job, err := f.svc.Request(ctx, w, "u1", entities.RenderLocaleDE, false)
	require.NoError(t, err)
	require.NoError(t, f.svc.Run(ctx, job.ID))
	require.NotEmpty(t, f.redis.Keys())

	f.svc.Forget(ctx, w.ID)
	assert.Empty(t, f.redis.Keys())

	done, err := f.jobs.GetByID(job.ID)
	require.NoError(t, err)
	_, err = f.svc.Open(ctx, done)
	assert.Error(t, err)
}
