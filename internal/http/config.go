package http

import (
	"github.com/prometheus/client_golang/prometheus"

	"github.com/edoomio/studio/internal/auth"
	"github.com/edoomio/studio/internal/config"
	"github.com/edoomio/studio/internal/logger"
)

// RouterConfig contains all dependencies and configuration needed
// to create the HTTP router.
type RouterConfig struct {
	// Document stores
	Worksheets WorksheetStore
	Courses    CourseStore
	EBooks     EBookStore
	Folders    FolderStore
	RenderJobs RenderJobStore

	// Services (optional ones disable their routes when nil)
	Renderer   PDFRenderer
	Translator Translator
	TaskQueue  TaskQueue
	Auditor    DocumentAuditor
	AuditLog   AuditEventReader
	Settings   SettingsStore
	Scheduler  SyncScheduler
	Languages  LanguageLister

	// Authentication
	AuthConfig     config.Auth
	AuthService    *auth.Service
	SessionManager *auth.SessionManager
	AuthAuditor    auth.Auditor
	CSRFSecret     []byte

	// CORS and metrics
	AllowedOrigins  []string
	MetricsEnabled  bool
	MetricsPath     string
	MetricsGatherer prometheus.Gatherer

	// Health
	Database Pinger
	Version  string

	AuditRetentionInDays int

	Logger *logger.Logger
}
