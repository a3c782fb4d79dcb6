package settingsstore

import (
	"strconv"
	"time"

	"github.com/edoomio/studio/internal/entities"
)

const (
	envTranslationSyncEnabled  = "TRANSLATION_SYNC_ENABLED"
	envTranslationSyncSchedule = "TRANSLATION_SYNC_SCHEDULE"

	// DefaultTranslationSyncSchedule pulls every 6 hours.
	DefaultTranslationSyncSchedule = "0 */6 * * *"
)

// TranslationSyncConfig is the effective configuration of the periodic pull.
type TranslationSyncConfig struct {
	Enabled        bool   `json:"enabled"`
	EnabledSource  string `json:"enabled_source"`
	Schedule       string `json:"schedule"`
	ScheduleSource string `json:"schedule_source"`
}

// TranslationSyncStatus is the outcome of the last periodic pull.
type TranslationSyncStatus struct {
	LastSyncAt *time.Time `json:"last_sync_at,omitempty"`
	Status     string     `json:"status,omitempty"` // "success", "failed", "running", ""
	Message    string     `json:"message,omitempty"`
}

// GetTranslationSyncEnabled returns whether periodic pulls run (database > env > default)
func (s *SettingsStore) GetTranslationSyncEnabled() bool {
	value, _ := s.lookup(entities.SettingKeyTranslationSyncEnabled, envTranslationSyncEnabled, "false")
	return parseBool(value)
}

func (s *SettingsStore) SetTranslationSyncEnabled(enabled bool) error {
	return s.SaveTranslationSync(&enabled, nil)
}

// GetTranslationSyncSchedule returns the cron schedule (database > env > default)
func (s *SettingsStore) GetTranslationSyncSchedule() string {
	value, _ := s.lookup(entities.SettingKeyTranslationSyncSchedule, envTranslationSyncSchedule, DefaultTranslationSyncSchedule)
	return value
}

func (s *SettingsStore) SetTranslationSyncSchedule(schedule string) error {
	return s.SaveTranslationSync(nil, &schedule)
}

// SaveTranslationSync stores whichever of enabled and schedule is non-nil in
// one write. The schedule is validated first.
func (s *SettingsStore) SaveTranslationSync(enabled *bool, schedule *string) error {
	values := make(map[string]string, 2)
	if schedule != nil {
		if err := ValidateCronSchedule(*schedule); err != nil {
			return err
		}
		values[entities.SettingKeyTranslationSyncSchedule] = *schedule
	}
	if enabled != nil {
		values[entities.SettingKeyTranslationSyncEnabled] = strconv.FormatBool(*enabled)
	}
	return s.repo.SetSettings(values)
}

func (s *SettingsStore) GetTranslationSyncConfig() TranslationSyncConfig {
	enabled, enabledSource := s.lookup(entities.SettingKeyTranslationSyncEnabled, envTranslationSyncEnabled, "false")
	schedule, scheduleSource := s.lookup(entities.SettingKeyTranslationSyncSchedule, envTranslationSyncSchedule, DefaultTranslationSyncSchedule)
	return TranslationSyncConfig{
		Enabled:        parseBool(enabled),
		EnabledSource:  enabledSource,
		Schedule:       schedule,
		ScheduleSource: scheduleSource,
	}
}

// GetTranslationSyncStatus returns the last sync status
func (s *SettingsStore) GetTranslationSyncStatus() TranslationSyncStatus {
	values, err := s.repo.GetValues(
		entities.SettingKeyTranslationSyncLastAt,
		entities.SettingKeyTranslationSyncLastStatus,
		entities.SettingKeyTranslationSyncLastMessage,
	)
	if err != nil {
		return TranslationSyncStatus{}
	}

	status := TranslationSyncStatus{
		Status:  values[entities.SettingKeyTranslationSyncLastStatus],
		Message: values[entities.SettingKeyTranslationSyncLastMessage],
	}
	if ts, err := time.Parse(time.RFC3339, values[entities.SettingKeyTranslationSyncLastAt]); err == nil {
		status.LastSyncAt = &ts
	}
	return status
}

// SetTranslationSyncStatus records the outcome of a sync run with the current time.
func (s *SettingsStore) SetTranslationSyncStatus(status, message string) error {
	return s.repo.SetSettings(map[string]string{
		entities.SettingKeyTranslationSyncLastAt:      time.Now().UTC().Format(time.RFC3339),
		entities.SettingKeyTranslationSyncLastStatus:  status,
		entities.SettingKeyTranslationSyncLastMessage: message,
	})
}

// ClearTranslationSyncSettings clears all database overrides, reverting to env/default
func (s *SettingsStore) ClearTranslationSyncSettings() error {
	return s.clear(entities.SettingKeyTranslationSyncEnabled, entities.SettingKeyTranslationSyncSchedule)
}

func parseBool(v string) bool {
	return v == "true" || v == "1"
}
