package users

import (
	"os"
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
	dbPath := "./test_users_" + t.Name() + ".db"

	db, err := gorm.Open(sqlite.Open(dbPath), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	err = db.AutoMigrate(&entities.User{})
	require.NoError(t, err)

	repo := NewRepository(db)

	cleanup := func() {
		sqlDB, _ := db.DB()
		sqlDB.Close()
		os.Remove(dbPath)
	}

	return repo, cleanup
}

func createUser(t *testing.T, repo *Repository, username, email string) *entities.User {
	t.Helper()
	user := &entities.User{Username: username, Email: email, PasswordHash: "hash", Role: entities.UserRoleEditor}
	require.NoError(t, repo.CreateUser(user))
	return user
}

func TestRepository_CreateUser(t *testing.T) {
	repo, cleanup := setupTestDB(t)
	defer cleanup()

	user := createUser(t, repo, "testuser", "test@example.com")

	assert.Len(t, user.ID, 36)
	assert.Equal(t, "testuser", user.Username)
}

func TestRepository_CreateUser_DuplicateUsername(t *testing.T) {
	repo, cleanup := setupTestDB(t)
	defer cleanup()

	createUser(t, repo, "testuser", "a@example.com")

	err := repo.CreateUser(&entities.User{Username: "testuser", Email: "b@example.com"})
	assert.Error(t, err)
}

func TestRepository_GetUserByID(t *testing.T) {
	repo, cleanup := setupTestDB(t)
	defer cleanup()

	created := createUser(t, repo, "testuser", "test@example.com")

	user, err := repo.GetUserByID(created.ID)
	require.NoError(t, err)
	assert.Equal(t, "testuser", user.Username)

	_, err = repo.GetUserByID("missing")
	assert.ErrorIs(t, err, database.ErrNotFound)
}

func TestRepository_GetUserByLogin(t *testing.T) {
	repo, cleanup := setupTestDB(t)
	defer cleanup()

	created := createUser(t, repo, "testuser", "test@example.com")

	byName, err := repo.GetUserByLogin("testuser")
	require.NoError(t, err)
	assert.Equal(t, created.ID, byName.ID)

	byEmail, err := repo.GetUserByLogin("test@example.com")
	require.NoError(t, err)
	assert.Equal(t, created.ID, byEmail.ID)

	_, err = repo.GetUserByLogin("nobody")
	assert.ErrorIs(t, err, database.ErrNotFound)
}

func TestRepository_ExistsAndCount(t *testing.T) {
	repo, cleanup := setupTestDB(t)
	defer cleanup()

	count, err := repo.Count()
	require.NoError(t, err)
	assert.Zero(t, count)

	createUser(t, repo, "testuser", "test@example.com")

	exists, err := repo.Exists("other", "test@example.com")
	require.NoError(t, err)
	assert.True(t, exists)

	exists, err = repo.Exists("other", "other@example.com")
	require.NoError(t, err)
	assert.False(t, exists)

	count, err = repo.Count()
	require.NoError(t, err)
	assert.Equal(t, int64(1), count)
}

func TestRepository_LoginBookkeeping(t *testing.T) {
	repo, cleanup := setupTestDB(t)
	defer cleanup()

	user := createUser(t, repo, "testuser", "test@example.com")
	lock := time.Now().Add(time.Hour)

	require.NoError(t, repo.RecordFailedLogin(user.ID, 5, &lock))
	locked, err := repo.GetUserByID(user.ID)
	require.NoError(t, err)
	assert.Equal(t, 5, locked.FailedLoginCount)
	require.NotNil(t, locked.LockedUntil)

	require.NoError(t, repo.RecordLogin(user.ID, time.Now()))
	reset, err := repo.GetUserByID(user.ID)
	require.NoError(t, err)
	assert.Zero(t, reset.FailedLoginCount)
	assert.Nil(t, reset.LockedUntil)
	assert.NotNil(t, reset.LastLoginAt)
}

func TestRepository_SetPasswordHash(t *testing.T) {
	repo, cleanup := setupTestDB(t)
	defer cleanup()

	user := createUser(t, repo, "testuser", "test@example.com")

	require.NoError(t, repo.SetPasswordHash(user.ID, "new-hash"))
	got, err := repo.GetUserByID(user.ID)
	require.NoError(t, err)
	assert.Equal(t, "new-hash", got.PasswordHash)

	assert.ErrorIs(t, repo.SetPasswordHash("missing", "x"), database.ErrNotFound)
}
