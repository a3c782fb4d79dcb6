// Package settings stores runtime settings as key/value rows.
//
// # Usage
//
//	repo := settings.NewRepository(db)
//	err := repo.SetSettings(map[string]string{
//		entities.SettingKeyTranslationSyncEnabled:  "true",
//		entities.SettingKeyTranslationSyncSchedule: "0 3 * * *",
//	})
package settings

import (
	"sort"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/edoomio/studio/internal/database"
	"github.com/edoomio/studio/internal/entities"
)

type Repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// GetSetting returns one row. Missing keys return database.ErrNotFound.
func (r *Repository) GetSetting(key string) (*entities.Setting, error) {
	var setting entities.Setting
	if err := r.db.Where("key = ?", key).First(&setting).Error; err != nil {
		return nil, database.Translate(err)
	}
	return &setting, nil
}

// GetValues returns the stored values of keys. Missing keys are absent from the map.
func (r *Repository) GetValues(keys ...string) (map[string]string, error) {
	out := make(map[string]string, len(keys))
	if len(keys) == 0 {
		return out, nil
	}
	var rows []entities.Setting
	if err := r.db.Where("key IN ?", keys).Find(&rows).Error; err != nil {
		return nil, err
	}
	for _, row := range rows {
		out[row.Key] = row.Value
	}
	return out, nil
}

func (r *Repository) SetSetting(key, value string) error {
	return r.SetSettings(map[string]string{key: value})
}

// SetSettings upserts all values in one transaction, so readers never see a
// half-applied group (e.g. a sync status without its timestamp).
func (r *Repository) SetSettings(values map[string]string) error {
	if len(values) == 0 {
		return nil
	}
	rows := make([]entities.Setting, 0, len(values))
	for key, value := range values {
		rows = append(rows, entities.Setting{Key: key, Value: value})
	}
	// stable statement order keeps SQLite lock acquisition predictable
	sort.Slice(rows, func(i, j int) bool { return rows[i].Key < rows[j].Key })

	return r.db.Transaction(func(tx *gorm.DB) error {
		return tx.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "key"}},
			DoUpdates: clause.AssignmentColumns([]string{"value", "updated_at"}),
		}).Create(&rows).Error
	})
}

// DeleteSettings removes keys. Missing keys are not an error.
func (r *Repository) DeleteSettings(keys ...string) error {
	if len(keys) == 0 {
		return nil
	}
	return r.db.Where("key IN ?", keys).Delete(&entities.Setting{}).Error
}
