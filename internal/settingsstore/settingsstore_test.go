package settingsstore

import (
	"context"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/edoomio/studio/internal/crypto"
	"github.com/edoomio/studio/internal/database"
	"github.com/edoomio/studio/internal/database/settings"
	"github.com/edoomio/studio/internal/entities"
)

func setupTestStore(t *testing.T) (*SettingsStore, *settings.Repository, func()) {
	t.Helper()
	dbPath := "./test_settings_" + strings.ReplaceAll(t.Name(), "/", "_") + ".db"
	db, err := database.NewDatabase(dbPath, nil)
	require.NoError(t, err)

	key, err := crypto.GenerateKeyBytes()
	require.NoError(t, err)
	enc, err := crypto.NewEncryptor(key)
	require.NoError(t, err)

	repo := settings.NewRepository(db.DB)
	cleanup := func() {
		db.Close()
		os.Remove(dbPath)
	}
	return New(repo, enc), repo, cleanup
}

func TestCredentials_Precedence(t *testing.T) {
	t.Run("environment when database not set", func(t *testing.T) {
		store, _, cleanup := setupTestStore(t)
		defer cleanup()
		t.Setenv(envI18nexusAPIKey, "env-key")
		t.Setenv(envI18nexusToken, "")

		creds, err := store.Credentials(context.Background())
		require.NoError(t, err)
		assert.Equal(t, "env-key", creds.APIKey)
		assert.Empty(t, creds.AccessToken)
	})

	t.Run("database wins over environment", func(t *testing.T) {
		store, _, cleanup := setupTestStore(t)
		defer cleanup()
		t.Setenv(envI18nexusAPIKey, "env-key")
		t.Setenv(envI18nexusToken, "env-token")

		require.NoError(t, store.SetI18nexusAPIKey("db-key"))
		require.NoError(t, store.SetI18nexusToken("db-token"))

		creds, err := store.Credentials(context.Background())
		require.NoError(t, err)
		assert.Equal(t, "db-key", creds.APIKey)
		assert.Equal(t, "db-token", creds.AccessToken)
	})

	t.Run("clearing reverts to environment", func(t *testing.T) {
		store, _, cleanup := setupTestStore(t)
		defer cleanup()
		t.Setenv(envI18nexusAPIKey, "env-key")

		require.NoError(t, store.SetI18nexusAPIKey("db-key"))
		require.NoError(t, store.ClearI18nexusCredentials())

		creds, err := store.Credentials(context.Background())
		require.NoError(t, err)
		assert.Equal(t, "env-key", creds.APIKey)
	})
}

func TestSecretsEncryptedAtRest(t *testing.T) {
	store, repo, cleanup := setupTestStore(t)
	defer cleanup()

	require.NoError(t, store.SetI18nexusToken("pat_secret_value"))

	raw, err := repo.GetSetting(entities.SettingKeyI18nexusToken)
	require.NoError(t, err)
	assert.NotContains(t, raw.Value, "pat_secret_value")
}

func TestSecretCopiedToOtherKeyIsIgnored(t *testing.T) {
	store, repo, cleanup := setupTestStore(t)
	defer cleanup()
	t.Setenv(envI18nexusAPIKey, "from-env")

	require.NoError(t, store.SetI18nexusToken("pat_secret_value"))
	raw, err := repo.GetSetting(entities.SettingKeyI18nexusToken)
	require.NoError(t, err)
	require.NoError(t, repo.SetSetting(entities.SettingKeyI18nexusAPIKey, raw.Value))

	creds, err := store.Credentials(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "from-env", creds.APIKey)
	assert.Equal(t, SourceEnvironment, store.GetI18nexusConfigInfo().APIKeySource)
}

func TestSecretWithoutEncryptor(t *testing.T) {
	_, repo, cleanup := setupTestStore(t)
	defer cleanup()

	store := New(repo, nil)
	assert.ErrorIs(t, store.SetI18nexusAPIKey("key"), errNoEncryptor)
}

func TestGetI18nexusConfigInfo(t *testing.T) {
	store, _, cleanup := setupTestStore(t)
	defer cleanup()
	t.Setenv(envI18nexusAPIKey, "")
	t.Setenv(envI18nexusToken, "")

	require.NoError(t, store.SetI18nexusAPIKey("abcd1234efgh5678"))

	info := store.GetI18nexusConfigInfo()
	assert.Equal(t, "abcd****5678", info.APIKey)
	assert.Equal(t, SourceDatabase, info.APIKeySource)
	assert.True(t, info.HasAPIKey)
	assert.Equal(t, SourceDefault, info.TokenSource)
	assert.False(t, info.HasToken)
}

func TestTranslationSyncConfig(t *testing.T) {
	t.Run("defaults", func(t *testing.T) {
		store, _, cleanup := setupTestStore(t)
		defer cleanup()
		t.Setenv(envTranslationSyncEnabled, "")
		t.Setenv(envTranslationSyncSchedule, "")

		cfg := store.GetTranslationSyncConfig()
		assert.False(t, cfg.Enabled)
		assert.Equal(t, SourceDefault, cfg.EnabledSource)
		assert.Equal(t, DefaultTranslationSyncSchedule, cfg.Schedule)
	})

	t.Run("environment then database", func(t *testing.T) {
		store, _, cleanup := setupTestStore(t)
		defer cleanup()
		t.Setenv(envTranslationSyncEnabled, "1")
		t.Setenv(envTranslationSyncSchedule, "0 * * * *")

		assert.True(t, store.GetTranslationSyncEnabled())
		assert.Equal(t, "0 * * * *", store.GetTranslationSyncSchedule())

		require.NoError(t, store.SetTranslationSyncEnabled(false))
		require.NoError(t, store.SetTranslationSyncSchedule("30 2 * * *"))

		cfg := store.GetTranslationSyncConfig()
		assert.False(t, cfg.Enabled)
		assert.Equal(t, SourceDatabase, cfg.EnabledSource)
		assert.Equal(t, "30 2 * * *", cfg.Schedule)

		require.NoError(t, store.ClearTranslationSyncSettings())
		assert.True(t, store.GetTranslationSyncEnabled())
	})
}

func TestSaveTranslationSync(t *testing.T) {
	store, repo, cleanup := setupTestStore(t)
	defer cleanup()

	enabled := true
	bad := "every day"
	assert.Error(t, store.SaveTranslationSync(&enabled, &bad))
	_, err := repo.GetSetting(entities.SettingKeyTranslationSyncEnabled)
	assert.ErrorIs(t, err, database.ErrNotFound)

	schedule := "15 4 * * *"
	require.NoError(t, store.SaveTranslationSync(&enabled, &schedule))
	cfg := store.GetTranslationSyncConfig()
	assert.True(t, cfg.Enabled)
	assert.Equal(t, "15 4 * * *", cfg.Schedule)

	require.NoError(t, store.SaveTranslationSync(nil, nil))
}

func TestTranslationSyncStatus(t *testing.T) {
	store, _, cleanup := setupTestStore(t)
	defer cleanup()

	assert.Equal(t, TranslationSyncStatus{}, store.GetTranslationSyncStatus())

	require.NoError(t, store.SetTranslationSyncStatus("success", "pulled 3 courses"))

	status := store.GetTranslationSyncStatus()
	assert.Equal(t, "success", status.Status)
	assert.Equal(t, "pulled 3 courses", status.Message)
	require.NotNil(t, status.LastSyncAt)
}

func TestMaskToken(t *testing.T) {
	assert.Equal(t, "", maskToken(""))
	assert.Equal(t, "****", maskToken("short"))
	assert.Equal(t, "abcd****wxyz", maskToken("abcdefghijklmnopqrstuvwxyz"))
}

func TestCronHelpers(t *testing.T) {
	assert.NoError(t, ValidateCronSchedule(DefaultTranslationSyncSchedule))
	assert.Error(t, ValidateCronSchedule("every day"))

	assert.Equal(t, "Every 6 hours", GetCronDescription("0 */6 * * *"))
	assert.Equal(t, "Custom schedule: 5 4 * * *", GetCronDescription("5 4 * * *"))

	from := time.Date(2026, 5, 1, 7, 30, 0, 0, time.UTC)
	next, err := GetNextRunTime("0 */6 * * *", from)
	require.NoError(t, err)
	assert.Equal(t, time.Date(2026, 5, 1, 12, 0, 0, 0, time.UTC), *next)
}
