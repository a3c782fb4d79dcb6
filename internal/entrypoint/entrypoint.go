package entrypoint

import (
	"context"
	"encoding/hex"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"github.com/edoomio/studio/internal/auth"
	"github.com/edoomio/studio/internal/config"
	http_controllers "github.com/edoomio/studio/internal/http"
	"github.com/edoomio/studio/internal/logger"
	"github.com/edoomio/studio/internal/metrics"
	"github.com/edoomio/studio/internal/scheduler"
	"github.com/edoomio/studio/internal/tasks"
)

// ShutdownFunc is called during graceful shutdown to clean up resources.
type ShutdownFunc func(ctx context.Context)

// Serve runs the HTTP server until SIGINT or SIGTERM, then shuts it down
// within the configured timeout.
func Serve(router *gin.Engine, cfg *config.Config, log *logger.Logger, onShutdown ShutdownFunc) error {
	timeout := time.Duration(cfg.Global.ShutdownTimeoutInSeconds) * time.Second
	if timeout <= 0 {
		timeout = 10 * time.Second
	}

	srv := &http.Server{
		Addr:              fmt.Sprintf("%s:%d", cfg.HTTP.Host, cfg.HTTP.Port),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	serveErr := make(chan error, 1)
	go func() {
		log.Info("Starting server", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
	}()

	quit := make(chan os.Signal, 1)
	// SIGKILL can't be caught
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(quit)

	select {
	case err := <-serveErr:
		return fmt.Errorf("listen: %w", err)
	case <-quit:
	}
	log.Info("Shutting down server", "timeout", timeout)

	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	// stop background work before the listener so in-flight tasks can finish
	if onShutdown != nil {
		onShutdown(ctx)
	}

	if err := srv.Shutdown(ctx); err != nil {
		return fmt.Errorf("server shutdown: %w", err)
	}

	log.Info("Server exiting")
	return nil
}

// Run wires every service into the router and serves until interrupted.
func Run(cfg *config.Config, version string) error {
	log, err := logger.New(cfg.App.Env, cfg.App.LogLevel)
	if err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}
	defer log.Sync()

	log.Info("Starting Studio", "version", version, "env", cfg.App.Env)
	if cfg.App.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	app, err := Build(context.Background(), cfg, log)
	if err != nil {
		return err
	}
	defer func() {
		if err := app.Close(); err != nil {
			log.Error("Error releasing resources", "error", err)
		}
	}()

	routerCfg := http_controllers.RouterConfig{
		Worksheets:           app.Worksheets,
		Courses:              app.Courses,
		EBooks:               app.EBooks,
		Folders:              app.Folders,
		RenderJobs:           app.RenderJobs,
		Renderer:             app.Rendering,
		Translator:           app.Translation,
		Auditor:              app.Audit,
		AuditLog:             app.Audit,
		Settings:             app.Settings,
		Languages:            app.I18nexus,
		AuthConfig:           cfg.Auth,
		AuthAuditor:          app.Audit,
		AllowedOrigins:       cfg.CORS.AllowedOrigins,
		MetricsEnabled:       cfg.Metrics.Enabled,
		MetricsPath:          cfg.Metrics.Path,
		Database:             app.DB,
		Version:              version,
		AuditRetentionInDays: cfg.Audit.RetentionDays,
		Logger:               log,
	}

	if cfg.Metrics.Enabled {
		reg := prometheus.NewRegistry()
		reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
		metrics.RegisterCollectors(reg)
		routerCfg.MetricsGatherer = reg
	}

	// Initialize task queue if enabled
	var queue *taskQueue
	if cfg.Tasks.Enabled {
		queue, err = startTaskQueue(cfg, app, log)
		if err != nil {
			return err
		}
		defer queue.close()

		routerCfg.TaskQueue = queue.client
		routerCfg.Scheduler = queue.scheduler
	} else {
		log.Info("Task queue disabled, renders run inline and translation sync is off")
	}

	if cfg.Auth.Mode == config.AuthModeLocal {
		log.Info("Authentication mode: local")

		authService := auth.NewService(app.Users, cfg.Auth)

		sqlDB, err := app.DB.DB.DB()
		if err != nil {
			return fmt.Errorf("failed to get SQL DB for sessions: %w", err)
		}
		sessionManager, err := auth.NewSessionManager(sqlDB, cfg.Auth)
		if err != nil {
			return fmt.Errorf("failed to initialize session manager: %w", err)
		}

		csrfSecret, err := resolveCSRFSecret(cfg.Auth.SessionSecret)
		if err != nil {
			return err
		}
		if cfg.Auth.SessionSecret == "" {
			log.Warn("Generated session secret (set AUTH_SESSION_SECRET to persist)")
		}

		if hasUsers, _ := authService.HasUsers(); !hasUsers {
			log.Info("No users found. POST /setup to create an administrator account.")
		}

		routerCfg.AuthService = authService
		routerCfg.SessionManager = sessionManager
		routerCfg.CSRFSecret = csrfSecret
	} else {
		log.Info("Authentication mode: none (no authentication required)")
	}

	router := http_controllers.NewRouter(routerCfg)

	onShutdown := func(ctx context.Context) {
		if queue != nil {
			queue.shutdown(ctx)
		}
	}

	return Serve(router, cfg, log, onShutdown)
}

// resolveCSRFSecret decodes a hex session secret, falls back to the raw bytes of a
// non-hex one, and generates a fresh secret when none is configured.
func resolveCSRFSecret(configured string) ([]byte, error) {
	if configured != "" {
		if secret, err := hex.DecodeString(configured); err == nil {
			return secret, nil
		}
		return []byte(configured), nil
	}
	generated, err := auth.GenerateSessionSecret()
	if err != nil {
		return nil, fmt.Errorf("failed to generate CSRF secret: %w", err)
	}
	return hex.DecodeString(generated)
}

// taskQueue is the running background side of the server: the backlite
// client, the translation sync scheduler and the context both run under.
type taskQueue struct {
	client    *tasks.Client
	scheduler *scheduler.TranslationSyncScheduler
	ctx       context.Context
	cancel    context.CancelFunc
	log       *logger.Logger
}

// startTaskQueue registers every queue, starts the workers and the scheduler
// and enqueues the startup history cleanup.
func startTaskQueue(cfg *config.Config, app *App, log *logger.Logger) (*taskQueue, error) {
	client, err := tasks.NewClient(cfg.Database.Path, tasks.FromConfig(cfg.Tasks), log)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize task queue: %w", err)
	}
	client.Register(
		tasks.NewRenderPDFQueue(app.Rendering),
		tasks.NewTranslationPushQueue(app.Courses, app.Translation, app.Audit, log),
		tasks.NewTranslationPullQueue(app.Courses, app.Translation, app.Audit, log),
		tasks.NewCleanupHistoryQueue(app.Audit, app.RenderJobs, log),
	)

	ctx, cancel := context.WithCancel(context.Background())
	q := &taskQueue{client: client, ctx: ctx, cancel: cancel, log: log}
	go client.Start(ctx)

	if _, err := client.Enqueue(ctx, tasks.CleanupHistoryTask{RetentionDays: cfg.Audit.RetentionDays}); err != nil {
		log.Warn("Failed to enqueue history cleanup", "error", err)
	}

	q.scheduler = scheduler.NewTranslationSyncScheduler(app.Settings, app.Courses, client, log)
	if err := q.scheduler.Start(ctx); err != nil {
		log.Warn("Translation sync scheduler not started", "error", err)
	}
	return q, nil
}

// shutdown stops the scheduler and waits for running tasks until ctx expires.
func (q *taskQueue) shutdown(ctx context.Context) {
	q.scheduler.Stop()
	q.client.Stop(ctx)
	q.cancel()
}

// close cancels the queue context and releases the queue database. It is safe
// after shutdown and on early error returns.
func (q *taskQueue) close() {
	q.scheduler.Stop()
	q.cancel()
	if err := q.client.Close(); err != nil {
		q.log.Error("Error closing task client", "error", err)
	}
}
