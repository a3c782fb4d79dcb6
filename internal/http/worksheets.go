package http

import (
	"context"
	"errors"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/datatypes"

	"github.com/edoomio/studio/internal/database/worksheets"
	"github.com/edoomio/studio/internal/documents"
	"github.com/edoomio/studio/internal/entities"
	"github.com/edoomio/studio/internal/logger"
	"github.com/edoomio/studio/internal/rendering"
	"github.com/edoomio/studio/internal/tasks"
	"github.com/edoomio/studio/internal/utils"
)

const defaultWorksheetTitle = "Untitled Worksheet"

// WorksheetsController serves the owner routes of worksheets and their variants.
type WorksheetsController struct {
	worksheets WorksheetStore
	folders    FolderStore
	renderer   PDFRenderer
	jobs       RenderJobStore
	queue      TaskQueue
	audit      DocumentAuditor
	log        *logger.Logger
}

func NewWorksheetsController(store WorksheetStore, folderStore FolderStore, renderer PDFRenderer, jobs RenderJobStore,
	queue TaskQueue, audit DocumentAuditor, log *logger.Logger) *WorksheetsController {
	if audit == nil {
		audit = nopAuditor{}
	}
	return &WorksheetsController{
		worksheets: store,
		folders:    folderStore,
		renderer:   renderer,
		jobs:       jobs,
		queue:      queue,
		audit:      audit,
		log:        log.With("component", "worksheets_api"),
	}
}

// List handles GET /api/worksheets?folderId=root|<id>&type=&search=
func (wc *WorksheetsController) List(c *gin.Context) {
	filter := worksheets.Filter{
		UserID:   GetUserID(c),
		FolderID: folderFilter(c, "folderId"),
		Type:     entities.WorksheetType(c.Query("type")),
		Search:   strings.TrimSpace(c.Query("search")),
	}
	if filter.Type != "" && !filter.Type.Valid() {
		respondBadRequest(c, "unknown worksheet type")
		return
	}

	list, err := wc.worksheets.List(filter)
	if err != nil {
		respondInternalError(c, wc.log, err, "list worksheets")
		return
	}
	views := make([]*documents.WorksheetView, 0, len(list))
	for i := range list {
		v, err := documents.ListedWorksheet(&list[i])
		if err != nil {
			wc.log.Warn("Skipping unreadable worksheet in listing", "worksheet_id", list[i].ID, "error", err)
			continue
		}
		views = append(views, v)
	}
	c.JSON(http.StatusOK, views)
}

// Create handles POST /api/worksheets
func (wc *WorksheetsController) Create(c *gin.Context) {
	var body payload
	if err := c.ShouldBindJSON(&body); err != nil && !errors.Is(err, io.EOF) {
		respondBadRequest(c, "invalid JSON body")
		return
	}
	userID := GetUserID(c)

	w, ferrs := wc.newWorksheet(c, body, userID)
	if ferrs != nil {
		respondValidationError(c, ferrs...)
		return
	}
	if c.IsAborted() {
		return
	}
	if err := wc.worksheets.Create(w); err != nil {
		respondInternalError(c, wc.log, err, "create worksheet")
		return
	}
	wc.audit.LogDocument(userID, entities.AuditEventCreate, "worksheet", w.ID, w.Title)

	view, err := documents.NormalizeWorksheet(w)
	if err != nil {
		respondDocumentError(c, wc.log, err, "normalize worksheet")
		return
	}
	respondCreated(c, view)
}

func (wc *WorksheetsController) newWorksheet(c *gin.Context, body payload, userID string) (*entities.Worksheet, []FieldError) {
	w := &entities.Worksheet{
		Title:  defaultWorksheetTitle,
		Type:   entities.WorksheetTypeWorksheet,
		Blocks: datatypes.JSON("[]"),
		UserID: &userID,
	}
	var errs []FieldError
	add := func(ferr *FieldError) {
		if ferr != nil {
			errs = append(errs, *ferr)
		}
	}

	if body.has("title") {
		title, ferr := body.string("title")
		add(ferr)
		if title != "" {
			w.Title = title
		}
	}
	if body.has("type") {
		t, ferr := body.string("type")
		add(ferr)
		if t != "" {
			w.Type = entities.WorksheetType(t)
			if !w.Type.Valid() {
				add(&FieldError{Field: "type", Reason: "unknown worksheet type"})
			}
		}
	}
	if body.has("description") {
		d, ferr := body.optionalString("description")
		add(ferr)
		w.Description = d
	}
	if body.has("blocks") {
		b, ferr := body.array("blocks")
		add(ferr)
		w.Blocks = b
	}
	if body.has("published") {
		p, ferr := body.bool("published")
		add(ferr)
		w.Published = p
	}
	if body.has("folderId") {
		f, ferr := body.optionalString("folderId")
		add(ferr)
		w.FolderID = f
	}
	if len(errs) > 0 {
		return nil, errs
	}

	settings, ferr := defaultSettings(body, "settings", documents.WorksheetKind(w.Type))
	if ferr != nil {
		return nil, []FieldError{*ferr}
	}
	w.Settings = settings

	if !wc.ownsFolder(c, w.FolderID, userID) {
		return nil, nil
	}
	return w, nil
}

// ownsFolder answers 404 and returns false when folderID is set but not owned by userID.
func (wc *WorksheetsController) ownsFolder(c *gin.Context, folderID *string, userID string) bool {
	if folderID == nil || wc.folders == nil {
		return true
	}
	if _, err := wc.folders.GetForOwner(*folderID, userID); err != nil {
		respondDocumentError(c, wc.log, err, "load folder")
		c.Abort()
		return false
	}
	return true
}

// Get handles GET /api/worksheets/:id
func (wc *WorksheetsController) Get(c *gin.Context) {
	w, err := wc.worksheets.GetByID(c.Param("id"))
	if err == nil {
		err = documents.RequireOwner(w.UserID, viewer(c))
	}
	if err != nil {
		respondDocumentError(c, wc.log, err, "load worksheet")
		return
	}
	view, err := documents.NormalizeWorksheet(w)
	if err != nil {
		respondDocumentError(c, wc.log, err, "normalize worksheet")
		return
	}
	c.JSON(http.StatusOK, view)
}

// Update handles PUT /api/worksheets/:id. Only the fields present in the body
// are written; folderId "" moves the worksheet to the top level.
func (wc *WorksheetsController) Update(c *gin.Context) {
	var body payload
	if err := c.ShouldBindJSON(&body); err != nil {
		respondBadRequest(c, "invalid JSON body")
		return
	}
	userID := GetUserID(c)
	id := c.Param("id")

	existing, err := wc.worksheets.GetForOwner(id, userID)
	if err != nil {
		respondDocumentError(c, wc.log, err, "load worksheet")
		return
	}

	kind := documents.WorksheetKind(existing.Type)
	fields := []patchField{
		textField("title", "title"),
		optionalTextField("description", "description"),
		arrayField("blocks", "blocks", nil),
		boolField("published", "published"),
		optionalTextField("folderId", "folder_id"),
	}
	if body.has("type") {
		t, ferr := body.string("type")
		if ferr == nil && !entities.WorksheetType(t).Valid() {
			ferr = &FieldError{Field: "type", Reason: "unknown worksheet type"}
		}
		if ferr != nil {
			respondValidationError(c, *ferr)
			return
		}
		kind = documents.WorksheetKind(entities.WorksheetType(t))
		fields = append(fields, textField("type", "type"))
	}
	fields = append(fields, settingsField("settings", "settings", kind))

	patch, ferrs := buildPatch(body, fields...)
	if len(ferrs) > 0 {
		respondValidationError(c, ferrs...)
		return
	}
	if folderID, ok := patch["folder_id"].(*string); ok && !wc.ownsFolder(c, folderID, userID) {
		return
	}

	w, err := wc.worksheets.Update(id, userID, patch)
	if err != nil {
		respondDocumentError(c, wc.log, err, "update worksheet")
		return
	}
	wc.auditUpdate(userID, existing, w)

	view, err := documents.NormalizeWorksheet(w)
	if err != nil {
		respondDocumentError(c, wc.log, err, "normalize worksheet")
		return
	}
	c.JSON(http.StatusOK, view)
}

func (wc *WorksheetsController) auditUpdate(userID string, before, after *entities.Worksheet) {
	if !before.Published && after.Published {
		wc.audit.LogDocument(userID, entities.AuditEventPublish, "worksheet", after.ID, after.Title)
		return
	}
	wc.audit.LogDocument(userID, entities.AuditEventUpdate, "worksheet", after.ID, after.Title)
}

// Delete handles DELETE /api/worksheets/:id
func (wc *WorksheetsController) Delete(c *gin.Context) {
	userID := GetUserID(c)
	id := c.Param("id")

	w, err := wc.worksheets.GetForOwner(id, userID)
	if err != nil {
		respondDocumentError(c, wc.log, err, "load worksheet")
		return
	}
	if err := wc.worksheets.Delete(id, userID); err != nil {
		respondDocumentError(c, wc.log, err, "delete worksheet")
		return
	}
	if wc.renderer != nil {
		ctx, cancel := context.WithTimeout(context.WithoutCancel(c.Request.Context()), 30*time.Second)
		defer cancel()
		wc.renderer.Forget(ctx, id)
	}
	wc.audit.LogDocument(userID, entities.AuditEventDelete, "worksheet", id, w.Title)
	c.JSON(http.StatusOK, gin.H{"success": true})
}

// Duplicate handles POST /api/worksheets/:id/duplicate
func (wc *WorksheetsController) Duplicate(c *gin.Context) {
	userID := GetUserID(c)
	dup, err := wc.worksheets.Duplicate(c.Param("id"), userID)
	if err != nil {
		respondDocumentError(c, wc.log, err, "duplicate worksheet")
		return
	}
	wc.audit.LogDocument(userID, entities.AuditEventCreate, "worksheet", dup.ID, dup.Title)

	view, err := documents.NormalizeWorksheet(dup)
	if err != nil {
		respondDocumentError(c, wc.log, err, "normalize worksheet")
		return
	}
	respondCreated(c, view)
}

// RenderPDF handles POST /api/worksheets/:id/pdf?locale=DE|CH&solutions=1.
// A cached render answers 200 with a finished job, otherwise the job is
// queued and the answer is 202.
func (wc *WorksheetsController) RenderPDF(c *gin.Context) {
	if wc.renderer == nil {
		respondError(c, http.StatusServiceUnavailable, "PDF rendering is not configured")
		return
	}
	userID := GetUserID(c)

	loc := entities.RenderLocale(strings.ToUpper(c.DefaultQuery("locale", string(entities.RenderLocaleDE))))
	switch loc {
	case entities.RenderLocaleDE, entities.RenderLocaleCH, entities.RenderLocaleNeutral:
	default:
		respondBadRequest(c, "locale must be DE, CH or NEUTRAL")
		return
	}

	w, err := wc.worksheets.GetForOwner(c.Param("id"), userID)
	if err != nil {
		respondDocumentError(c, wc.log, err, "load worksheet")
		return
	}

	job, err := wc.renderer.Request(c.Request.Context(), w, userID, loc, queryFlag(c, "solutions"))
	if err != nil {
		respondInternalError(c, wc.log, err, "request render")
		return
	}
	if job.Status == entities.RenderStatusDone {
		c.JSON(http.StatusOK, job)
		return
	}

	if wc.queue != nil {
		if _, err := wc.queue.Enqueue(c.Request.Context(), tasks.RenderPDFTask{JobID: job.ID}); err != nil {
			respondInternalError(c, wc.log, err, "enqueue render")
			return
		}
		c.JSON(http.StatusAccepted, job)
		return
	}

	// Without a task queue the render runs in the background of this process.
	go func(jobID string) {
		if err := wc.renderer.Run(context.Background(), jobID); err != nil {
			wc.log.Warn("Inline render failed", "job_id", jobID, "error", err)
		}
	}(job.ID)
	c.JSON(http.StatusAccepted, job)
}

// RenderJobsController reports on and serves PDF render jobs.
type RenderJobsController struct {
	jobs       RenderJobStore
	worksheets WorksheetStore
	renderer   PDFRenderer
	log        *logger.Logger
}

func NewRenderJobsController(jobs RenderJobStore, worksheets WorksheetStore, renderer PDFRenderer, log *logger.Logger) *RenderJobsController {
	return &RenderJobsController{jobs: jobs, worksheets: worksheets, renderer: renderer, log: log.With("component", "render_jobs_api")}
}

// Get handles GET /api/render-jobs/:id
func (rc *RenderJobsController) Get(c *gin.Context) {
	job, err := rc.jobs.GetForOwner(c.Param("id"), GetUserID(c))
	if err != nil {
		respondDocumentError(c, rc.log, err, "load render job")
		return
	}
	c.JSON(http.StatusOK, job)
}

// Download handles GET /api/render-jobs/:id/download. Backends that can sign
// URLs get a redirect; otherwise the PDF is streamed.
func (rc *RenderJobsController) Download(c *gin.Context) {
	job, err := rc.jobs.GetForOwner(c.Param("id"), GetUserID(c))
	if err != nil {
		respondDocumentError(c, rc.log, err, "load render job")
		return
	}

	url, signed, err := rc.renderer.SignedURL(c.Request.Context(), job)
	if errors.Is(err, rendering.ErrNotReady) {
		c.JSON(http.StatusConflict, ErrorResponse{Error: "render job is " + string(job.Status), Code: "not_ready"})
		return
	}
	if err != nil {
		respondInternalError(c, rc.log, err, "sign download")
		return
	}
	if signed {
		c.Redirect(http.StatusFound, url)
		return
	}

	body, err := rc.renderer.Open(c.Request.Context(), job)
	if err != nil {
		respondInternalError(c, rc.log, err, "open render")
		return
	}
	defer body.Close()

	c.Header("Content-Disposition", utils.ContentDisposition(rc.pdfFilename(job)))
	c.Header("Content-Type", "application/pdf")
	c.Status(http.StatusOK)
	if _, err := io.Copy(c.Writer, body); err != nil {
		rc.log.Warn("PDF download interrupted", "job_id", job.ID, "error", err)
	}
}

// pdfFilename names the download after the worksheet title. A deleted
// worksheet falls back to its ID.
func (rc *RenderJobsController) pdfFilename(job *entities.RenderJob) string {
	title := "worksheet-" + job.WorksheetID
	if rc.worksheets != nil {
		if w, err := rc.worksheets.GetByID(job.WorksheetID); err == nil {
			title = w.Title
		}
	}
	return utils.PDFFilename(title, string(job.Locale), job.Solutions)
}
