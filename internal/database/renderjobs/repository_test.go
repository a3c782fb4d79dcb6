package renderjobs

import (
	"errors"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/edoomio/studio/internal/database"
	"github.com/edoomio/studio/internal/entities"
)

func setupTestDB(t *testing.T) (*Repository, func()) {
	dbPath := "./test_renderjobs_" + t.Name() + ".db"

	db, err := gorm.Open(sqlite.Open(dbPath), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	err = db.AutoMigrate(&entities.RenderJob{})
	require.NoError(t, err)

	repo := NewRepository(db)

	cleanup := func() {
		sqlDB, _ := db.DB()
		sqlDB.Close()
		os.Remove(dbPath)
	}

	return repo, cleanup
}

func newJob(t *testing.T, repo *Repository, worksheetID string) *entities.RenderJob {
	t.Helper()
	user := "u1"
	job := &entities.RenderJob{
		WorksheetID: worksheetID,
		UserID:      &user,
		Locale:      entities.RenderLocaleCH,
		Version:     "v1",
	}
	require.NoError(t, repo.Create(job))
	return job
}

func TestRepository_Lifecycle(t *testing.T) {
	repo, cleanup := setupTestDB(t)
	defer cleanup()

	job := newJob(t, repo, "w1")
	assert.Equal(t, entities.RenderStatusPending, job.Status)

	require.NoError(t, repo.MarkRunning(job.ID))
	require.NoError(t, repo.MarkDone(job.ID, "pdf/w1/v1-CH.pdf"))

	got, err := repo.GetForOwner(job.ID, "u1")
	require.NoError(t, err)
	assert.Equal(t, entities.RenderStatusDone, got.Status)
	assert.Equal(t, "pdf/w1/v1-CH.pdf", got.BlobKey)

	_, err = repo.GetForOwner(job.ID, "u2")
	assert.ErrorIs(t, err, database.ErrNotFound)
}

func TestRepository_MarkFailed_IsolatedPerJob(t *testing.T) {
	repo, cleanup := setupTestDB(t)
	defer cleanup()

	failing := newJob(t, repo, "w1")
	healthy := newJob(t, repo, "w2")

	require.NoError(t, repo.MarkFailed(failing.ID, errors.New(strings.Repeat("x", 1500))))
	require.NoError(t, repo.MarkDone(healthy.ID, "pdf/w2/v1-CH.pdf"))

	f, err := repo.GetByID(failing.ID)
	require.NoError(t, err)
	assert.Equal(t, entities.RenderStatusFailed, f.Status)
	assert.Len(t, f.Error, 1000)

	h, err := repo.GetByID(healthy.ID)
	require.NoError(t, err)
	assert.Equal(t, entities.RenderStatusDone, h.Status)
	assert.Empty(t, h.Error)
}

func TestRepository_MarkUnknownJob(t *testing.T) {
	repo, cleanup := setupTestDB(t)
	defer cleanup()

	assert.ErrorIs(t, repo.MarkRunning("missing"), database.ErrNotFound)
}

func TestRepository_DeleteForWorksheet(t *testing.T) {
	repo, cleanup := setupTestDB(t)
	defer cleanup()

	a := newJob(t, repo, "w1")
	b := newJob(t, repo, "w2")

	require.NoError(t, repo.DeleteForWorksheet("w1"))

	_, err := repo.GetByID(a.ID)
	assert.ErrorIs(t, err, database.ErrNotFound)
	_, err = repo.GetByID(b.ID)
	assert.NoError(t, err)
}

func TestRepository_DeleteFinishedBefore(t *testing.T) {
	repo, cleanup := setupTestDB(t)
	defer cleanup()

	oldDone := newJob(t, repo, "w1")
	require.NoError(t, repo.MarkDone(oldDone.ID, "renders/w1.pdf"))
	oldFailed := newJob(t, repo, "w1")
	require.NoError(t, repo.MarkFailed(oldFailed.ID, errors.New("chrome crashed")))
	oldPending := newJob(t, repo, "w2")
	recentDone := newJob(t, repo, "w2")
	require.NoError(t, repo.MarkDone(recentDone.ID, "renders/w2.pdf"))

	past := time.Now().Add(-90 * 24 * time.Hour)
	for _, id := range []string{oldDone.ID, oldFailed.ID, oldPending.ID} {
		require.NoError(t, repo.db.Model(&entities.RenderJob{}).Where("id = ?", id).UpdateColumn("updated_at", past).Error)
	}

	deleted, err := repo.DeleteFinishedBefore(time.Now().Add(-30 * 24 * time.Hour))
	require.NoError(t, err)
	assert.EqualValues(t, 2, deleted)

	for _, id := range []string{oldPending.ID, recentDone.ID} {
		_, err := repo.GetByID(id)
		assert.NoError(t, err)
	}
	_, err = repo.GetByID(oldDone.ID)
	assert.ErrorIs(t, err, database.ErrNotFound)
}
