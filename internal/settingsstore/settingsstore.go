// Package settingsstore resolves runtime settings that can be changed without
// a restart. Priority: database > environment > default.
package settingsstore

import (
	"errors"
	"os"

	"github.com/edoomio/studio/internal/crypto"
	"github.com/edoomio/studio/internal/database"
	"github.com/edoomio/studio/internal/entities"
)

const (
	SourceDatabase    = "database"
	SourceEnvironment = "environment"
	SourceDefault     = "default"
)

// Repository is the settings table.
type Repository interface {
	GetSetting(key string) (*entities.Setting, error)
	GetValues(keys ...string) (map[string]string, error)
	SetSettings(values map[string]string) error
	DeleteSettings(keys ...string) error
}

type SettingsStore struct {
	repo Repository
	enc  *crypto.Encryptor
}

// New creates a store. enc seals secret values at rest; it may be nil when
// no secrets are written.
func New(repo Repository, enc *crypto.Encryptor) *SettingsStore {
	return &SettingsStore{repo: repo, enc: enc}
}

// lookup resolves key from the database, then envName, then def.
func (s *SettingsStore) lookup(key, envName, def string) (string, string) {
	if setting, err := s.repo.GetSetting(key); err == nil && setting.Value != "" {
		return setting.Value, SourceDatabase
	}
	if envVal := os.Getenv(envName); envVal != "" {
		return envVal, SourceEnvironment
	}
	return def, SourceDefault
}

// lookupSecret is lookup for sealed values. A value that no longer opens (key
// rotated, or copied from another setting) falls through to the environment.
func (s *SettingsStore) lookupSecret(key, envName string) (string, string) {
	if setting, err := s.repo.GetSetting(key); err == nil && setting.Value != "" && s.enc != nil {
		if plain, err := s.enc.Open(key, setting.Value); err == nil && plain != "" {
			return plain, SourceDatabase
		}
	}
	if envVal := os.Getenv(envName); envVal != "" {
		return envVal, SourceEnvironment
	}
	return "", SourceDefault
}

var errNoEncryptor = errors.New("settings store has no encryption key")

func (s *SettingsStore) setSecret(key, value string) error {
	if value == "" {
		return s.clear(key)
	}
	if s.enc == nil {
		return errNoEncryptor
	}
	sealed, err := s.enc.Seal(key, value)
	if err != nil {
		return err
	}
	return s.repo.SetSettings(map[string]string{key: sealed})
}

func (s *SettingsStore) clear(keys ...string) error {
	if err := s.repo.DeleteSettings(keys...); err != nil && !errors.Is(err, database.ErrNotFound) {
		return err
	}
	return nil
}

// maskToken returns a masked version of the token for display
func maskToken(token string) string {
	if token == "" {
		return ""
	}
	if len(token) <= 8 {
		return "****"
	}
	return token[:4] + "****" + token[len(token)-4:]
}
