// Package rendering turns worksheet render requests into stored PDFs.
package rendering

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/edoomio/studio/internal/cache"
	"github.com/edoomio/studio/internal/database"
	"github.com/edoomio/studio/internal/entities"
	"github.com/edoomio/studio/internal/logger"
	"github.com/edoomio/studio/internal/metrics"
	"github.com/edoomio/studio/internal/pdf"
	"github.com/edoomio/studio/internal/storage"
)

// ErrNotReady is returned when downloading a job that has not finished.
var ErrNotReady = errors.New("render job has not finished")

type JobStore interface {
	Create(job *entities.RenderJob) error
	GetByID(id string) (*entities.RenderJob, error)
	MarkRunning(id string) error
	MarkDone(id, blobKey string) error
	MarkFailed(id string, cause error) error
}

type WorksheetLookup interface {
	GetByID(id string) (*entities.Worksheet, error)
}

type Auditor interface {
	LogRender(userID, worksheetID, jobID string, err error)
}

type Options struct {
	PrintBaseURL    string
	PresignLifetime time.Duration
}

type Service struct {
	jobs       JobStore
	worksheets WorksheetLookup
	renderer   pdf.Renderer
	blobs      storage.Client
	cache      cache.RenderCache
	audit      Auditor
	opts       Options
	log        *logger.Logger
}

func NewService(jobs JobStore, worksheets WorksheetLookup, renderer pdf.Renderer, blobs storage.Client,
	renderCache cache.RenderCache, audit Auditor, opts Options, log *logger.Logger) *Service {
	if renderCache == nil {
		renderCache = cache.Nop{}
	}
	if opts.PresignLifetime <= 0 {
		opts.PresignLifetime = 15 * time.Minute
	}
	return &Service{
		jobs:       jobs,
		worksheets: worksheets,
		renderer:   renderer,
		blobs:      blobs,
		cache:      renderCache,
		audit:      audit,
		opts:       opts,
		log:        log.With("component", "rendering"),
	}
}

func cacheKey(job *entities.RenderJob) cache.RenderKey {
	return cache.RenderKey{
		WorksheetID: job.WorksheetID,
		Version:     job.Version,
		Locale:      string(job.Locale),
		Solutions:   job.Solutions,
	}
}

// Request records a render job for the worksheet's current version. When the
// same version was rendered before and its blob still exists, the job is
// created already done and needs no processing.
func (s *Service) Request(ctx context.Context, w *entities.Worksheet, userID string, locale entities.RenderLocale, solutions bool) (*entities.RenderJob, error) {
	job := &entities.RenderJob{
		WorksheetID: w.ID,
		Locale:      locale,
		Solutions:   solutions,
		Version:     pdf.Version(w.ID, w.UpdatedAt),
		Status:      entities.RenderStatusPending,
	}
	if userID != "" {
		job.UserID = &userID
	}

	if blobKey, ok := s.cached(ctx, job); ok {
		job.Status = entities.RenderStatusDone
		job.BlobKey = blobKey
	}
	if err := s.jobs.Create(job); err != nil {
		return nil, err
	}
	return job, nil
}

func (s *Service) cached(ctx context.Context, job *entities.RenderJob) (string, bool) {
	blobKey, ok, err := s.cache.Get(ctx, cacheKey(job))
	if err != nil {
		s.log.Warn("Render cache lookup failed", "worksheet_id", job.WorksheetID, "error", err)
		return "", false
	}
	if ok {
		exists, err := s.blobs.Exists(ctx, blobKey)
		if err == nil && exists {
			metrics.RenderCache.WithLabelValues("hit").Inc()
			return blobKey, true
		}
	}
	metrics.RenderCache.WithLabelValues("miss").Inc()
	return "", false
}

// Run renders one job. Failures are recorded on the job and returned so the
// caller can decide about retries; they never touch other jobs.
func (s *Service) Run(ctx context.Context, jobID string) error {
	job, err := s.jobs.GetByID(jobID)
	if err != nil {
		return fmt.Errorf("load render job %s: %w", jobID, err)
	}
	if job.Status == entities.RenderStatusDone {
		return nil
	}

	blobKey, err := s.render(ctx, job)
	userID := ""
	if job.UserID != nil {
		userID = *job.UserID
	}
	if s.audit != nil {
		s.audit.LogRender(userID, job.WorksheetID, job.ID, err)
	}
	if err != nil {
		metrics.RenderJobs.WithLabelValues("failed").Inc()
		if markErr := s.jobs.MarkFailed(job.ID, err); markErr != nil {
			s.log.Error("Failed to record render failure", "job_id", job.ID, "error", markErr)
		}
		s.log.Warn("Render job failed", "job_id", job.ID, "worksheet_id", job.WorksheetID, "error", err)
		return err
	}

	metrics.RenderJobs.WithLabelValues("done").Inc()
	if err := s.jobs.MarkDone(job.ID, blobKey); err != nil {
		return err
	}
	if err := s.cache.Set(ctx, cacheKey(job), blobKey); err != nil {
		s.log.Warn("Failed to cache render", "job_id", job.ID, "error", err)
	}
	s.log.Info("Render job finished", "job_id", job.ID, "worksheet_id", job.WorksheetID, "blob_key", blobKey)
	return nil
}

func (s *Service) render(ctx context.Context, job *entities.RenderJob) (string, error) {
	w, err := s.worksheets.GetByID(job.WorksheetID)
	if err != nil {
		if errors.Is(err, database.ErrNotFound) {
			return "", fmt.Errorf("worksheet %s no longer exists", job.WorksheetID)
		}
		return "", err
	}
	if err := s.jobs.MarkRunning(job.ID); err != nil {
		return "", err
	}

	url := pdf.PrintURL(s.opts.PrintBaseURL, w.Slug, string(job.Locale), job.Solutions)
	data, err := s.renderer.Render(ctx, url)
	if err != nil {
		return "", err
	}

	blobKey := storage.PDFKey(job.WorksheetID, job.Version, string(job.Locale), job.Solutions)
	if err := storage.UploadBytes(ctx, s.blobs, blobKey, data, "application/pdf"); err != nil {
		return "", fmt.Errorf("store PDF: %w", err)
	}
	return blobKey, nil
}

// Open streams the PDF of a finished job.
func (s *Service) Open(ctx context.Context, job *entities.RenderJob) (io.ReadCloser, error) {
	if job.Status != entities.RenderStatusDone || job.BlobKey == "" {
		return nil, ErrNotReady
	}
	return s.blobs.Download(ctx, job.BlobKey)
}

// SignedURL returns a direct download link when the storage backend supports it.
func (s *Service) SignedURL(ctx context.Context, job *entities.RenderJob) (string, bool, error) {
	if job.Status != entities.RenderStatusDone || job.BlobKey == "" {
		return "", false, ErrNotReady
	}
	signer, ok := s.blobs.(storage.Signer)
	if !ok {
		return "", false, nil
	}
	u, err := signer.SignedURL(ctx, job.BlobKey, s.opts.PresignLifetime)
	if err != nil {
		return "", false, err
	}
	return u, true, nil
}

// Forget drops stored renders of a deleted worksheet.
func (s *Service) Forget(ctx context.Context, worksheetID string) {
	if err := s.cache.Invalidate(ctx, worksheetID); err != nil {
		s.log.Warn("Failed to invalidate render cache", "worksheet_id", worksheetID, "error", err)
	}
	if _, err := storage.DeletePrefix(ctx, s.blobs, storage.PDFPrefix(worksheetID)); err != nil {
		s.log.Warn("Failed to delete rendered PDFs", "worksheet_id", worksheetID, "error", err)
	}
}
