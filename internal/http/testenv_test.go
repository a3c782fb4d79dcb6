package http

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/mikestefanello/backlite"
	"github.com/stretchr/testify/require"
	"gorm.io/datatypes"

	"github.com/edoomio/studio/internal/auth"
	"github.com/edoomio/studio/internal/database"
	"github.com/edoomio/studio/internal/database/courses"
	"github.com/edoomio/studio/internal/database/ebooks"
	"github.com/edoomio/studio/internal/database/folders"
	"github.com/edoomio/studio/internal/database/renderjobs"
	"github.com/edoomio/studio/internal/database/worksheets"
	"github.com/edoomio/studio/internal/entities"
	"github.com/edoomio/studio/internal/logger"
	"github.com/edoomio/studio/internal/rendering"
	"github.com/edoomio/studio/internal/translation"
)

func init() {
	gin.SetMode(gin.TestMode)
}

const (
	ownerID    = auth.DefaultUserID
	strangerID = "someone-else"
)

type testEnv struct {
	db         *database.Database
	worksheets *worksheets.Repository
	courses    *courses.Repository
	ebooks     *ebooks.Repository
	folders    *folders.Repository
	jobs       *renderjobs.Repository
	renderer   *fakeRenderer
	translator *fakeTranslator
	router     *gin.Engine
}

// newTestEnv wires the router against real repositories on a temporary
// SQLite file. Authentication is off, so requests act as ownerID.
func newTestEnv(t *testing.T, configure ...func(*RouterConfig)) *testEnv {
	t.Helper()

	db, err := database.NewDatabase(filepath.Join(t.TempDir(), "studio.db"), logger.Nop())
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	env := &testEnv{
		db:         db,
		worksheets: worksheets.NewRepository(db.DB),
		courses:    courses.NewRepository(db.DB),
		ebooks:     ebooks.NewRepository(db.DB),
		folders:    folders.NewRepository(db.DB),
		jobs:       renderjobs.NewRepository(db.DB),
		translator: &fakeTranslator{},
	}
	env.renderer = &fakeRenderer{jobs: env.jobs}

	cfg := RouterConfig{
		Worksheets: env.worksheets,
		Courses:    env.courses,
		EBooks:     env.ebooks,
		Folders:    env.folders,
		RenderJobs: env.jobs,
		Renderer:   env.renderer,
		Translator: env.translator,
		Database:   db,
		Version:    "test",
		Logger:     logger.Nop(),
	}
	for _, fn := range configure {
		fn(&cfg)
	}
	env.router = NewRouter(cfg)
	return env
}

func (e *testEnv) do(t *testing.T, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var reader io.Reader
	switch b := body.(type) {
	case nil:
	case string:
		reader = strings.NewReader(b)
	default:
		data, err := json.Marshal(b)
		require.NoError(t, err)
		reader = bytes.NewReader(data)
	}
	req := httptest.NewRequest(method, path, reader)
	if reader != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	w := httptest.NewRecorder()
	e.router.ServeHTTP(w, req)
	return w
}

func decode[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var out T
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out), w.Body.String())
	return out
}

func (e *testEnv) worksheet(t *testing.T, owner string, mutate ...func(*entities.Worksheet)) *entities.Worksheet {
	t.Helper()
	w := &entities.Worksheet{
		Title:    "Verben",
		Type:     entities.WorksheetTypeWorksheet,
		Blocks:   datatypes.JSON(`[{"id":"b1","type":"heading","text":"Die Straße"}]`),
		Settings: datatypes.JSON(`{}`),
		UserID:   &owner,
	}
	for _, fn := range mutate {
		fn(w)
	}
	require.NoError(t, e.worksheets.Create(w))
	return w
}

func (e *testEnv) course(t *testing.T, owner string, mutate ...func(*entities.Course)) *entities.Course {
	t.Helper()
	c := &entities.Course{
		Title:     "Deutsch A1",
		Structure: datatypes.JSON(`[]`),
		UserID:    &owner,
	}
	for _, fn := range mutate {
		fn(c)
	}
	require.NoError(t, e.courses.Create(c))
	return c
}

func (e *testEnv) ebook(t *testing.T, owner string, mutate ...func(*entities.EBook)) *entities.EBook {
	t.Helper()
	b := &entities.EBook{
		Title:    "Grammatik",
		Chapters: datatypes.JSON(`[]`),
		UserID:   &owner,
	}
	for _, fn := range mutate {
		fn(b)
	}
	require.NoError(t, e.ebooks.Create(b))
	return b
}

// fakeRenderer records render requests. Jobs are stored in the real
// repository so the render-job routes can load them.
type fakeRenderer struct {
	mu        sync.Mutex
	jobs      *renderjobs.Repository
	cached    bool
	signedURL string
	content   string
	ran       []string
	forgotten []string
}

func (f *fakeRenderer) Request(_ context.Context, w *entities.Worksheet, userID string, loc entities.RenderLocale, solutions bool) (*entities.RenderJob, error) {
	job := &entities.RenderJob{
		WorksheetID: w.ID,
		UserID:      &userID,
		Locale:      loc,
		Solutions:   solutions,
		Version:     "v1",
	}
	if f.cached {
		job.Status = entities.RenderStatusDone
		job.BlobKey = "renders/" + w.ID + ".pdf"
	}
	if err := f.jobs.Create(job); err != nil {
		return nil, err
	}
	return job, nil
}

func (f *fakeRenderer) Run(_ context.Context, jobID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.ran = append(f.ran, jobID)
	return nil
}

func (f *fakeRenderer) Open(_ context.Context, job *entities.RenderJob) (io.ReadCloser, error) {
	if job.Status != entities.RenderStatusDone {
		return nil, rendering.ErrNotReady
	}
	return io.NopCloser(strings.NewReader(f.content)), nil
}

func (f *fakeRenderer) SignedURL(_ context.Context, job *entities.RenderJob) (string, bool, error) {
	if job.Status != entities.RenderStatusDone {
		return "", false, rendering.ErrNotReady
	}
	if f.signedURL == "" {
		return "", false, nil
	}
	return f.signedURL, true, nil
}

func (f *fakeRenderer) Forget(_ context.Context, worksheetID string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.forgotten = append(f.forgotten, worksheetID)
}

type fakeTranslator struct {
	pushed  []string
	pushErr error
	pullErr error
}

func (f *fakeTranslator) Push(_ context.Context, c *entities.Course) (*translation.PushResult, error) {
	if f.pushErr != nil {
		return nil, f.pushErr
	}
	f.pushed = append(f.pushed, c.ID)
	return &translation.PushResult{Namespace: translation.NamespaceFor(c), StringCount: 3, Created: 3}, nil
}

func (f *fakeTranslator) Pull(_ context.Context, c *entities.Course) (*translation.PullResult, error) {
	if f.pullErr != nil {
		return nil, f.pullErr
	}
	return &translation.PullResult{Languages: []string{"en", "fr"}}, nil
}

func (f *fakeTranslator) Status(c *entities.Course) (*translation.Status, error) {
	return &translation.Status{Languages: []string{}, Namespace: c.I18nNamespace}, nil
}

type fakeQueue struct {
	mu    sync.Mutex
	tasks []backlite.Task
	err   error
}

func (q *fakeQueue) Enqueue(_ context.Context, tasks ...backlite.Task) ([]string, error) {
	if q.err != nil {
		return nil, q.err
	}
	q.mu.Lock()
	defer q.mu.Unlock()
	ids := make([]string, len(tasks))
	for i := range tasks {
		ids[i] = uuid.NewString()
	}
	q.tasks = append(q.tasks, tasks...)
	return ids, nil
}

func (q *fakeQueue) Status(context.Context, string) (backlite.TaskStatus, error) {
	return backlite.TaskStatusPending, nil
}

var errQueueDown = errors.New("queue unavailable")
