package http

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/edoomio/studio/internal/i18nexus"
	"github.com/edoomio/studio/internal/logger"
	"github.com/edoomio/studio/internal/settingsstore"
)

// SettingsStore holds the runtime settings editable from the API.
type SettingsStore interface {
	GetI18nexusConfigInfo() settingsstore.I18nexusConfigInfo
	SetI18nexusAPIKey(apiKey string) error
	SetI18nexusToken(token string) error
	ClearI18nexusCredentials() error
	GetTranslationSyncConfig() settingsstore.TranslationSyncConfig
	GetTranslationSyncStatus() settingsstore.TranslationSyncStatus
	SaveTranslationSync(enabled *bool, schedule *string) error
}

// SyncScheduler controls the periodic translation pull.
type SyncScheduler interface {
	Reschedule(ctx context.Context) error
	RunNow(ctx context.Context) (int, error)
	IsRunning() bool
	GetNextRunTime() *time.Time
}

// LanguageLister is used to check the stored translation service credentials.
type LanguageLister interface {
	Languages(ctx context.Context) ([]i18nexus.Language, error)
}

type SettingsController struct {
	store     SettingsStore
	scheduler SyncScheduler
	languages LanguageLister
	log       *logger.Logger
}

func NewSettingsController(store SettingsStore, scheduler SyncScheduler, languages LanguageLister, log *logger.Logger) *SettingsController {
	return &SettingsController{
		store:     store,
		scheduler: scheduler,
		languages: languages,
		log:       log.With("component", "settings_api"),
	}
}

// GetI18nexus handles GET /api/settings/i18nexus. Secrets are masked.
func (sc *SettingsController) GetI18nexus(c *gin.Context) {
	c.JSON(http.StatusOK, sc.store.GetI18nexusConfigInfo())
}

type i18nexusCredentialsRequest struct {
	APIKey *string `json:"api_key" form:"api_key"`
	Token  *string `json:"token" form:"token"`
}

// SaveI18nexus handles PUT /api/settings/i18nexus. Fields left out keep their
// current value; an empty string reverts to the environment.
func (sc *SettingsController) SaveI18nexus(c *gin.Context) {
	var req i18nexusCredentialsRequest
	if err := c.ShouldBind(&req); err != nil {
		respondBadRequest(c, "invalid request body")
		return
	}
	if req.APIKey != nil {
		if err := sc.store.SetI18nexusAPIKey(strings.TrimSpace(*req.APIKey)); err != nil {
			respondInternalError(c, sc.log, err, "save i18nexus api key")
			return
		}
	}
	if req.Token != nil {
		if err := sc.store.SetI18nexusToken(strings.TrimSpace(*req.Token)); err != nil {
			respondInternalError(c, sc.log, err, "save i18nexus token")
			return
		}
	}
	c.JSON(http.StatusOK, sc.store.GetI18nexusConfigInfo())
}

// ClearI18nexus handles DELETE /api/settings/i18nexus
func (sc *SettingsController) ClearI18nexus(c *gin.Context) {
	if err := sc.store.ClearI18nexusCredentials(); err != nil {
		respondInternalError(c, sc.log, err, "clear i18nexus credentials")
		return
	}
	c.JSON(http.StatusOK, sc.store.GetI18nexusConfigInfo())
}

// TestI18nexus handles POST /api/settings/i18nexus/test by listing the
// project's languages with the effective credentials.
func (sc *SettingsController) TestI18nexus(c *gin.Context) {
	if sc.languages == nil {
		respondError(c, http.StatusServiceUnavailable, "translation service is not configured")
		return
	}
	ctx, cancel := context.WithTimeout(c.Request.Context(), 15*time.Second)
	defer cancel()

	langs, err := sc.languages.Languages(ctx)
	switch {
	case err == nil:
	case i18nexus.IsUnavailable(err):
		respondBadGateway(c, "translation service unavailable")
		return
	default:
		c.JSON(http.StatusOK, gin.H{"ok": false, "error": err.Error()})
		return
	}

	codes := make([]string, 0, len(langs))
	base := ""
	for _, l := range langs {
		codes = append(codes, l.LanguageCode)
		if l.BaseLanguage {
			base = l.LanguageCode
		}
	}
	c.JSON(http.StatusOK, gin.H{"ok": true, "languages": codes, "baseLanguage": base})
}

// TranslationSyncResponse describes the periodic pull configuration and state.
type TranslationSyncResponse struct {
	settingsstore.TranslationSyncConfig
	Description string                              `json:"description"`
	Running     bool                                `json:"running"`
	NextRunAt   *time.Time                          `json:"next_run_at,omitempty"`
	LastRun     settingsstore.TranslationSyncStatus `json:"last_run"`
}

func (sc *SettingsController) syncResponse() TranslationSyncResponse {
	cfg := sc.store.GetTranslationSyncConfig()
	resp := TranslationSyncResponse{
		TranslationSyncConfig: cfg,
		Description:           settingsstore.GetCronDescription(cfg.Schedule),
		LastRun:               sc.store.GetTranslationSyncStatus(),
	}
	if sc.scheduler != nil {
		resp.Running = sc.scheduler.IsRunning()
		resp.NextRunAt = sc.scheduler.GetNextRunTime()
	}
	return resp
}

// GetTranslationSync handles GET /api/settings/translation-sync
func (sc *SettingsController) GetTranslationSync(c *gin.Context) {
	c.JSON(http.StatusOK, sc.syncResponse())
}

type translationSyncRequest struct {
	Enabled  *bool   `json:"enabled" form:"enabled"`
	Schedule *string `json:"schedule" form:"schedule"`
}

// SaveTranslationSync handles PUT /api/settings/translation-sync and
// reschedules the running scheduler.
func (sc *SettingsController) SaveTranslationSync(c *gin.Context) {
	var req translationSyncRequest
	if err := c.ShouldBind(&req); err != nil {
		respondBadRequest(c, "invalid request body")
		return
	}
	if req.Schedule != nil {
		schedule := strings.TrimSpace(*req.Schedule)
		if err := settingsstore.ValidateCronSchedule(schedule); err != nil {
			respondValidationError(c, FieldError{Field: "schedule", Reason: err.Error()})
			return
		}
		req.Schedule = &schedule
	}
	if err := sc.store.SaveTranslationSync(req.Enabled, req.Schedule); err != nil {
		respondInternalError(c, sc.log, err, "save translation sync")
		return
	}

	if sc.scheduler != nil {
		if err := sc.scheduler.Reschedule(context.WithoutCancel(c.Request.Context())); err != nil {
			sc.log.Warn("Failed to reschedule translation sync", "error", err)
		}
	}
	c.JSON(http.StatusOK, sc.syncResponse())
}

// RunTranslationSync handles POST /api/settings/translation-sync/run
func (sc *SettingsController) RunTranslationSync(c *gin.Context) {
	if sc.scheduler == nil {
		respondError(c, http.StatusServiceUnavailable, "task queue is disabled")
		return
	}
	n, err := sc.scheduler.RunNow(c.Request.Context())
	if err != nil {
		respondInternalError(c, sc.log, err, "run translation sync")
		return
	}
	respondAccepted(c, "translation pulls enqueued", gin.H{"courses": n})
}
