package http

import (
	"errors"
	"io"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"gorm.io/datatypes"

	"github.com/edoomio/studio/internal/database/ebooks"
	"github.com/edoomio/studio/internal/docsettings"
	"github.com/edoomio/studio/internal/documents"
	"github.com/edoomio/studio/internal/entities"
	"github.com/edoomio/studio/internal/logger"
)

const defaultEBookTitle = "Untitled E-Book"

// EBooksController serves the owner routes of e-books.
type EBooksController struct {
	ebooks     EBookStore
	worksheets WorksheetStore
	audit      DocumentAuditor
	log        *logger.Logger
}

func NewEBooksController(store EBookStore, worksheetStore WorksheetStore, audit DocumentAuditor, log *logger.Logger) *EBooksController {
	if audit == nil {
		audit = nopAuditor{}
	}
	return &EBooksController{
		ebooks:     store,
		worksheets: worksheetStore,
		audit:      audit,
		log:        log.With("component", "ebooks_api"),
	}
}

// PopulatedEBook is an e-book whose chapters list the referenced worksheets.
type PopulatedEBook struct {
	*documents.EBookView
	Chapters []documents.PopulatedChapter `json:"chapters"`
}

func checkChapters(raw datatypes.JSON) error {
	if _, err := documents.ParseChapters(raw); err != nil {
		return errors.New("must be a list of chapters")
	}
	return nil
}

func populateEBook(e *entities.EBook, store WorksheetStore) (*PopulatedEBook, error) {
	view, err := documents.NormalizeEBook(e)
	if err != nil {
		return nil, err
	}
	found, err := store.FindByIDs(documents.ChapterWorksheetIDs(view.Chapters))
	if err != nil {
		return nil, err
	}
	return &PopulatedEBook{EBookView: view, Chapters: documents.PopulateChapters(view.Chapters, found)}, nil
}

// List handles GET /api/ebooks?folderId=&search=
func (ec *EBooksController) List(c *gin.Context) {
	list, err := ec.ebooks.List(ebooks.Filter{
		UserID:   GetUserID(c),
		FolderID: folderFilter(c, "folderId"),
		Search:   strings.TrimSpace(c.Query("search")),
	})
	if err != nil {
		respondInternalError(c, ec.log, err, "list ebooks")
		return
	}
	views := make([]*documents.EBookView, 0, len(list))
	for i := range list {
		v, err := documents.ListedEBook(&list[i])
		if err != nil {
			ec.log.Warn("Skipping unreadable ebook in listing", "ebook_id", list[i].ID, "error", err)
			continue
		}
		views = append(views, v)
	}
	c.JSON(http.StatusOK, views)
}

// Create handles POST /api/ebooks
func (ec *EBooksController) Create(c *gin.Context) {
	var body payload
	if err := c.ShouldBindJSON(&body); err != nil && !errors.Is(err, io.EOF) {
		respondBadRequest(c, "invalid JSON body")
		return
	}
	userID := GetUserID(c)

	patch, ferrs := buildPatch(body,
		textField("title", "title"),
		arrayField("chapters", "chapters", checkChapters),
		settingsField("coverSettings", "cover_settings", docsettings.KindEBookCover),
		settingsField("settings", "settings", docsettings.KindEBook),
		optionalTextField("folderId", "folder_id"),
	)
	if len(ferrs) > 0 {
		respondValidationError(c, ferrs...)
		return
	}

	e := &entities.EBook{Title: defaultEBookTitle, UserID: &userID}
	if title, _ := patch["title"].(string); title != "" {
		e.Title = title
	}
	if v, ok := patch["chapters"].(datatypes.JSON); ok {
		e.Chapters = v
	}
	if v, ok := patch["cover_settings"].(datatypes.JSON); ok {
		e.CoverSettings = v
	}
	if v, ok := patch["settings"].(datatypes.JSON); ok {
		e.Settings = v
	}
	if v, ok := patch["folder_id"].(*string); ok {
		e.FolderID = v
	}

	if err := ec.ebooks.Create(e); err != nil {
		respondInternalError(c, ec.log, err, "create ebook")
		return
	}
	ec.audit.LogDocument(userID, entities.AuditEventCreate, "ebook", e.ID, e.Title)

	view, err := documents.NormalizeEBook(e)
	if err != nil {
		respondDocumentError(c, ec.log, err, "normalize ebook")
		return
	}
	respondCreated(c, view)
}

// Get handles GET /api/ebooks/:id. Chapters come back with their worksheets
// resolved; a deleted worksheet shows up as {id, missing: true}.
func (ec *EBooksController) Get(c *gin.Context) {
	e, err := ec.ebooks.GetForOwner(c.Param("id"), GetUserID(c))
	if err != nil {
		respondDocumentError(c, ec.log, err, "load ebook")
		return
	}
	populated, err := populateEBook(e, ec.worksheets)
	if err != nil {
		respondDocumentError(c, ec.log, err, "populate ebook")
		return
	}
	c.JSON(http.StatusOK, populated)
}

// Update handles PUT /api/ebooks/:id
func (ec *EBooksController) Update(c *gin.Context) {
	var body payload
	if err := c.ShouldBindJSON(&body); err != nil {
		respondBadRequest(c, "invalid JSON body")
		return
	}
	userID := GetUserID(c)
	id := c.Param("id")

	existing, err := ec.ebooks.GetForOwner(id, userID)
	if err != nil {
		respondDocumentError(c, ec.log, err, "load ebook")
		return
	}

	patch, ferrs := buildPatch(body,
		textField("title", "title"),
		arrayField("chapters", "chapters", checkChapters),
		settingsField("coverSettings", "cover_settings", docsettings.KindEBookCover),
		settingsField("settings", "settings", docsettings.KindEBook),
		boolField("published", "published"),
		optionalTextField("folderId", "folder_id"),
	)
	if len(ferrs) > 0 {
		respondValidationError(c, ferrs...)
		return
	}

	e, err := ec.ebooks.Update(id, userID, patch)
	if err != nil {
		respondDocumentError(c, ec.log, err, "update ebook")
		return
	}
	eventType := entities.AuditEventUpdate
	if !existing.Published && e.Published {
		eventType = entities.AuditEventPublish
	}
	ec.audit.LogDocument(userID, eventType, "ebook", e.ID, e.Title)

	view, err := documents.NormalizeEBook(e)
	if err != nil {
		respondDocumentError(c, ec.log, err, "normalize ebook")
		return
	}
	c.JSON(http.StatusOK, view)
}

// Delete handles DELETE /api/ebooks/:id
func (ec *EBooksController) Delete(c *gin.Context) {
	userID := GetUserID(c)
	id := c.Param("id")

	e, err := ec.ebooks.GetForOwner(id, userID)
	if err != nil {
		respondDocumentError(c, ec.log, err, "load ebook")
		return
	}
	if err := ec.ebooks.Delete(id, userID); err != nil {
		respondDocumentError(c, ec.log, err, "delete ebook")
		return
	}
	ec.audit.LogDocument(userID, entities.AuditEventDelete, "ebook", id, e.Title)
	c.JSON(http.StatusOK, gin.H{"success": true})
}
