package entities

import (
	"time"
)

type Setting struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	Key       string    `gorm:"uniqueIndex;size:100" json:"key"`
	Value     string    `gorm:"type:text" json:"value"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (Setting) TableName() string {
	return "settings"
}

// Known setting keys
const (
	// Translation source credentials (values are encrypted at rest)
	SettingKeyI18nexusAPIKey = "i18nexus_api_key"
	SettingKeyI18nexusToken  = "i18nexus_personal_access_token"

	// Translation sync settings
	SettingKeyTranslationSyncEnabled     = "translation_sync_enabled"
	SettingKeyTranslationSyncSchedule    = "translation_sync_schedule"
	SettingKeyTranslationSyncLastAt      = "translation_sync_last_at"
	SettingKeyTranslationSyncLastStatus  = "translation_sync_last_status"
	SettingKeyTranslationSyncLastMessage = "translation_sync_last_message"
)
