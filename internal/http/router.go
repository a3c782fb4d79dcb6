package http

import (
	"net/http"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/edoomio/studio/internal/auth"
	"github.com/edoomio/studio/internal/config"
	"github.com/edoomio/studio/internal/entities"
	"github.com/edoomio/studio/internal/metrics"
)

const hstsMaxAge = 31536000

// NewRouter creates and configures the HTTP router with all endpoints.
// Uses RouterConfig to receive all dependencies, improving testability
// and reducing parameter count.
func NewRouter(cfg RouterConfig) *gin.Engine {
	router := gin.New()
	router.Use(gin.Logger())
	router.Use(gin.Recovery())
	if cfg.MetricsEnabled {
		router.Use(metrics.Middleware())
	}

	if len(cfg.AllowedOrigins) > 0 {
		router.Use(cors.New(cors.Config{
			AllowOrigins:     cfg.AllowedOrigins,
			AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
			AllowHeaders:     []string{"Content-Type", "X-CSRF-Token", "X-Requested-With"},
			AllowCredentials: true,
		}))
	}

	// Apply security headers to all responses
	router.Use(auth.SecurityHeadersMiddleware())

	authCfg := cfg.AuthConfig
	if cfg.AuthService == nil || cfg.SessionManager == nil {
		authCfg.Mode = config.AuthModeNone
	}
	localAuth := authCfg.Mode == config.AuthModeLocal

	if localAuth {
		if authCfg.SecureCookies {
			router.Use(auth.StrictTransportSecurityMiddleware(hstsMaxAge))
		}
		// CSRF must run before session so that session context is preserved
		if len(cfg.CSRFSecret) > 0 {
			router.Use(auth.CSRFMiddleware(cfg.CSRFSecret, authCfg.SecureCookies, cfg.AllowedOrigins))
		}
		router.Use(cfg.SessionManager.SessionLoadSave())
	}

	authMiddleware := auth.NewMiddleware(cfg.AuthService, cfg.SessionManager, authCfg)
	router.Use(authMiddleware.Handler())

	writers := authMiddleware.RequireRole(entities.UserRoleAdmin, entities.UserRoleEditor)
	admins := authMiddleware.RequireRole(entities.UserRoleAdmin)

	log := cfg.Logger

	// Health and metrics
	health := NewHealthController(cfg.Version, healthChecks(cfg)...)
	router.GET("/health", health.Status)
	if cfg.MetricsEnabled {
		gatherer := cfg.MetricsGatherer
		if gatherer == nil {
			gatherer = prometheus.DefaultGatherer
		}
		path := cfg.MetricsPath
		if path == "" {
			path = "/metrics"
		}
		router.GET(path, gin.WrapH(promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})))
	}

	if localAuth {
		authController := auth.NewAuthController(cfg.AuthService, cfg.SessionManager, authCfg, cfg.AuthAuditor, log)
		authController.RegisterRoutes(router)
	}

	api := router.Group("/api")

	// Worksheets and their PDFs
	worksheetsController := NewWorksheetsController(cfg.Worksheets, cfg.Folders, cfg.Renderer, cfg.RenderJobs, cfg.TaskQueue, cfg.Auditor, log)
	api.GET("/worksheets", worksheetsController.List)
	api.POST("/worksheets", writers, worksheetsController.Create)
	api.GET("/worksheets/:id", worksheetsController.Get)
	api.PUT("/worksheets/:id", writers, worksheetsController.Update)
	api.DELETE("/worksheets/:id", writers, worksheetsController.Delete)
	api.POST("/worksheets/:id/duplicate", writers, worksheetsController.Duplicate)
	if cfg.Renderer != nil {
		api.POST("/worksheets/:id/pdf", writers, worksheetsController.RenderPDF)
		renderJobs := NewRenderJobsController(cfg.RenderJobs, cfg.Worksheets, cfg.Renderer, log)
		api.GET("/render-jobs/:id", renderJobs.Get)
		api.GET("/render-jobs/:id/download", renderJobs.Download)
	}

	// Courses and their translations
	coursesController := NewCoursesController(cfg.Courses, cfg.Worksheets, cfg.Auditor, log)
	api.GET("/courses", coursesController.List)
	api.POST("/courses", writers, coursesController.Create)
	api.GET("/courses/:id", coursesController.Get)
	api.GET("/courses/:id/populated", coursesController.Populated)
	api.PUT("/courses/:id", writers, coursesController.Update)
	api.DELETE("/courses/:id", writers, coursesController.Delete)
	api.POST("/courses/:id/lesson-worksheet", writers, coursesController.CreateLessonWorksheet)

	translations := NewTranslationsController(cfg.Courses, cfg.Translator, cfg.TaskQueue, cfg.Auditor, log)
	api.POST("/courses/:id/translations/push", writers, translations.Push)
	api.POST("/courses/:id/translations/pull", writers, translations.Pull)
	api.GET("/courses/:id/translations/status", translations.Status)

	// E-books
	ebooksController := NewEBooksController(cfg.EBooks, cfg.Worksheets, cfg.Auditor, log)
	api.GET("/ebooks", ebooksController.List)
	api.POST("/ebooks", writers, ebooksController.Create)
	api.GET("/ebooks/:id", ebooksController.Get)
	api.PUT("/ebooks/:id", writers, ebooksController.Update)
	api.DELETE("/ebooks/:id", writers, ebooksController.Delete)

	// Folders and the combined library view
	foldersController := NewFoldersController(cfg.Folders, cfg.Auditor, log)
	api.GET("/folders", foldersController.List)
	api.POST("/folders", writers, foldersController.Create)
	api.PUT("/folders/:id", writers, foldersController.Update)
	api.DELETE("/folders/:id", writers, foldersController.Delete)

	library := NewLibraryController(cfg.Worksheets, cfg.EBooks, log)
	api.GET("/library", library.List)

	// Task management endpoints
	if cfg.TaskQueue != nil {
		tasksController := NewTasksController(cfg.TaskQueue, cfg.Courses, cfg.AuditRetentionInDays, log)
		api.GET("/tasks/types", admins, tasksController.ListTaskTypes)
		api.GET("/tasks/:id", tasksController.GetTaskStatus)
		api.POST("/tasks/:type/run", admins, tasksController.RunTask)
	}

	if cfg.AuditLog != nil {
		auditController := NewAuditController(cfg.AuditLog, log)
		api.GET("/audit", admins, auditController.GetAuditEvents)
	}

	// Integration settings
	if cfg.Settings != nil {
		settingsController := NewSettingsController(cfg.Settings, cfg.Scheduler, cfg.Languages, log)
		settings := api.Group("/settings", admins)
		settings.GET("/i18nexus", settingsController.GetI18nexus)
		settings.PUT("/i18nexus", settingsController.SaveI18nexus)
		settings.DELETE("/i18nexus", settingsController.ClearI18nexus)
		settings.POST("/i18nexus/test", settingsController.TestI18nexus)
		settings.GET("/translation-sync", settingsController.GetTranslationSync)
		settings.PUT("/translation-sync", settingsController.SaveTranslationSync)
		settings.POST("/translation-sync/run", settingsController.RunTranslationSync)
	}

	// Anonymous readers
	public := NewPublicController(cfg.Worksheets, cfg.Courses, cfg.EBooks, log)
	api.GET("/public/worksheets/:slug", public.Worksheet)
	api.GET("/public/courses/:slug", public.Course)
	api.GET("/public/ebooks/:slug", public.EBook)

	router.NoRoute(func(c *gin.Context) {
		c.JSON(http.StatusNotFound, ErrorResponse{Error: notFoundMessage})
	})

	return router
}
