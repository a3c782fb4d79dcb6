package interfaces

// This file contains compile-time interface implementation checks.
// These ensure that concrete types satisfy their interfaces at compile time,
// catching missing methods before runtime.
//
// To verify all checks pass: go build ./internal/interfaces/...

import (
	"github.com/edoomio/studio/internal/audit"
	"github.com/edoomio/studio/internal/auth"
	"github.com/edoomio/studio/internal/cache"
	"github.com/edoomio/studio/internal/cli"
	"github.com/edoomio/studio/internal/database"
	"github.com/edoomio/studio/internal/database/courses"
	"github.com/edoomio/studio/internal/database/ebooks"
	"github.com/edoomio/studio/internal/database/folders"
	"github.com/edoomio/studio/internal/database/renderjobs"
	"github.com/edoomio/studio/internal/database/settings"
	"github.com/edoomio/studio/internal/database/users"
	"github.com/edoomio/studio/internal/database/worksheets"
	"github.com/edoomio/studio/internal/http"
	"github.com/edoomio/studio/internal/i18nexus"
	"github.com/edoomio/studio/internal/pdf"
	"github.com/edoomio/studio/internal/rendering"
	"github.com/edoomio/studio/internal/scheduler"
	"github.com/edoomio/studio/internal/settingsstore"
	"github.com/edoomio/studio/internal/storage"
	"github.com/edoomio/studio/internal/storage/providers/gcs"
	"github.com/edoomio/studio/internal/storage/providers/local"
	"github.com/edoomio/studio/internal/storage/providers/minio"
	"github.com/edoomio/studio/internal/tasks"
	"github.com/edoomio/studio/internal/translation"
)

// =============================================================================
// Data Access Layer
// =============================================================================

var _ http.WorksheetStore = (*worksheets.Repository)(nil)
var _ http.CourseStore = (*courses.Repository)(nil)
var _ http.EBookStore = (*ebooks.Repository)(nil)
var _ http.FolderStore = (*folders.Repository)(nil)
var _ http.RenderJobStore = (*renderjobs.Repository)(nil)
var _ http.Pinger = (*database.Database)(nil)

var _ auth.UserRepository = (*users.Repository)(nil)
var _ settingsstore.Repository = (*settings.Repository)(nil)

var _ rendering.JobStore = (*renderjobs.Repository)(nil)
var _ rendering.WorksheetLookup = (*worksheets.Repository)(nil)

var _ translation.CourseStore = (*courses.Repository)(nil)
var _ tasks.CourseLoader = (*courses.Repository)(nil)
var _ scheduler.SyncableCourses = (*courses.Repository)(nil)
var _ cli.StructureStore = (*courses.Repository)(nil)

// =============================================================================
// Services
// =============================================================================

var _ http.PDFRenderer = (*rendering.Service)(nil)
var _ tasks.JobRunner = (*rendering.Service)(nil)

var _ http.Translator = (*translation.Service)(nil)
var _ tasks.Translator = (*translation.Service)(nil)

var _ http.DocumentAuditor = (*audit.Service)(nil)
var _ http.AuditEventReader = (*audit.Service)(nil)
var _ auth.Auditor = (*audit.Service)(nil)
var _ rendering.Auditor = (*audit.Service)(nil)
var _ tasks.TranslationAuditor = (*audit.Service)(nil)
var _ tasks.AuditEventCleaner = (*audit.Service)(nil)
var _ tasks.RenderJobCleaner = (*renderjobs.Repository)(nil)

var _ http.SettingsStore = (*settingsstore.SettingsStore)(nil)
var _ scheduler.SyncSettings = (*settingsstore.SettingsStore)(nil)
var _ i18nexus.CredentialSource = (*settingsstore.SettingsStore)(nil)
var _ i18nexus.CredentialSource = i18nexus.StaticCredentials{}

// =============================================================================
// Background Work
// =============================================================================

var _ http.TaskQueue = (*tasks.Client)(nil)
var _ http.Pinger = (*tasks.Client)(nil)
var _ scheduler.Enqueuer = (*tasks.Client)(nil)
var _ http.SyncScheduler = (*scheduler.TranslationSyncScheduler)(nil)

// =============================================================================
// External Services
// =============================================================================

var _ translation.Source = (*i18nexus.Client)(nil)
var _ http.LanguageLister = (*i18nexus.Client)(nil)

var _ pdf.Renderer = (*pdf.ChromeRenderer)(nil)

var _ cache.RenderCache = (*cache.RedisRenderCache)(nil)
var _ cache.RenderCache = cache.Nop{}

var _ storage.Client = (*local.Client)(nil)
var _ storage.Client = (*minio.Client)(nil)
var _ storage.Client = (*gcs.Client)(nil)
var _ storage.Signer = (*minio.Client)(nil)
var _ storage.Signer = (*gcs.Client)(nil)
