package entrypoint

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/edoomio/studio/internal/audit"
	"github.com/edoomio/studio/internal/cache"
	"github.com/edoomio/studio/internal/config"
	"github.com/edoomio/studio/internal/crypto"
	"github.com/edoomio/studio/internal/database"
	dbaudit "github.com/edoomio/studio/internal/database/audit"
	"github.com/edoomio/studio/internal/database/courses"
	"github.com/edoomio/studio/internal/database/ebooks"
	"github.com/edoomio/studio/internal/database/folders"
	"github.com/edoomio/studio/internal/database/renderjobs"
	"github.com/edoomio/studio/internal/database/settings"
	"github.com/edoomio/studio/internal/database/users"
	"github.com/edoomio/studio/internal/database/worksheets"
	"github.com/edoomio/studio/internal/i18nexus"
	"github.com/edoomio/studio/internal/logger"
	"github.com/edoomio/studio/internal/pdf"
	"github.com/edoomio/studio/internal/rendering"
	"github.com/edoomio/studio/internal/settingsstore"
	"github.com/edoomio/studio/internal/storage/providers"
	"github.com/edoomio/studio/internal/translation"
)

// App holds the long-lived services shared by the server and the CLI commands.
type App struct {
	Config *config.Config
	Log    *logger.Logger
	DB     *database.Database

	Worksheets *worksheets.Repository
	Courses    *courses.Repository
	EBooks     *ebooks.Repository
	Folders    *folders.Repository
	RenderJobs *renderjobs.Repository
	Users      *users.Repository

	Audit       *audit.Service
	Settings    *settingsstore.SettingsStore
	I18nexus    *i18nexus.Client
	Translation *translation.Service
	Rendering   *rendering.Service

	closers []func() error
}

// Build opens the database and constructs every service that does not need a
// running server. Call Close when done.
func Build(ctx context.Context, cfg *config.Config, log *logger.Logger) (*App, error) {
	app := &App{Config: cfg, Log: log}

	db, err := database.NewDatabase(cfg.Database.Path, log)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize database: %w", err)
	}
	app.DB = db
	app.closers = append(app.closers, db.Close)

	app.Worksheets = worksheets.NewRepository(db.DB)
	app.Courses = courses.NewRepository(db.DB)
	app.EBooks = ebooks.NewRepository(db.DB)
	app.Folders = folders.NewRepository(db.DB)
	app.RenderJobs = renderjobs.NewRepository(db.DB)
	app.Users = users.NewRepository(db.DB)

	app.Audit = audit.NewService(dbaudit.NewRepository(db.DB), log)

	enc, created, err := crypto.LoadOrCreate(cfg.Translation.EncryptionKeyPath)
	if err != nil {
		log.Warn("Stored credentials will not be encrypted", "error", err)
		enc = nil
	} else if created {
		log.Info("Generated credential encryption key", "path", cfg.Translation.EncryptionKeyPath)
	}
	app.Settings = settingsstore.New(settings.NewRepository(db.DB), enc)

	app.I18nexus = i18nexus.NewClient(cfg.I18nexus.BaseURL, cfg.I18nexus.Timeout, app.Settings)
	app.Translation = translation.NewService(app.I18nexus, app.Courses, translation.Options{
		BaseLanguage:     cfg.Translation.BaseLanguage,
		StringsPerSecond: cfg.Translation.StringsPerSecond,
		PullConcurrency:  cfg.Translation.PullConcurrency,
	}, log)

	blobs, err := providers.New(ctx, cfg.Storage, log)
	if err != nil {
		_ = app.Close()
		return nil, fmt.Errorf("failed to initialize blob storage: %w", err)
	}
	if c, ok := blobs.(io.Closer); ok {
		app.closers = append(app.closers, c.Close)
	}

	renderCache, closeCache, err := cache.New(ctx, cfg.Cache, log)
	if err != nil {
		log.Warn("Render cache unavailable, every render hits Chrome", "error", err)
		renderCache, closeCache = cache.Nop{}, nil
	}
	if closeCache != nil {
		app.closers = append(app.closers, closeCache)
	}

	chrome := pdf.NewChromeRenderer(pdf.Options{
		ChromePath:    cfg.PDF.ChromePath,
		Production:    cfg.App.IsProduction(),
		RenderTimeout: cfg.PDF.RenderTimeout,
		SettleDelay:   cfg.PDF.SettleDelay,
	}, log)
	app.closers = append(app.closers, chrome.Close)

	app.Rendering = rendering.NewService(app.RenderJobs, app.Worksheets, chrome, blobs, renderCache, app.Audit,
		rendering.Options{
			PrintBaseURL:    cfg.PDF.PrintBaseURL,
			PresignLifetime: cfg.Storage.PresignLifetime,
		}, log)

	return app, nil
}

// Close waits for pending audit writes and releases resources in reverse
// order of creation.
func (a *App) Close() error {
	if a.Audit != nil {
		a.Audit.Wait()
	}
	var errs []error
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i](); err != nil {
			errs = append(errs, err)
		}
	}
	a.closers = nil
	return errors.Join(errs...)
}
