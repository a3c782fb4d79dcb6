package http

import (
	"errors"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/edoomio/studio/internal/database/folders"
	"github.com/edoomio/studio/internal/entities"
	"github.com/edoomio/studio/internal/logger"
)

// FoldersController manages the per-user folder tree.
type FoldersController struct {
	folders FolderStore
	audit   DocumentAuditor
	log     *logger.Logger
}

func NewFoldersController(store FolderStore, audit DocumentAuditor, log *logger.Logger) *FoldersController {
	if audit == nil {
		audit = nopAuditor{}
	}
	return &FoldersController{folders: store, audit: audit, log: log.With("component", "folders_api")}
}

// List handles GET /api/folders?parentId=root|<id>
func (fc *FoldersController) List(c *gin.Context) {
	list, err := fc.folders.List(GetUserID(c), folderFilter(c, "parentId"))
	if err != nil {
		respondInternalError(c, fc.log, err, "list folders")
		return
	}
	if list == nil {
		list = []folders.Folder{}
	}
	c.JSON(http.StatusOK, list)
}

// Create handles POST /api/folders
func (fc *FoldersController) Create(c *gin.Context) {
	var body payload
	if err := c.ShouldBindJSON(&body); err != nil && !errors.Is(err, io.EOF) {
		respondBadRequest(c, "invalid JSON body")
		return
	}

	var (
		name     string
		parentID *string
		errs     []FieldError
	)
	if body.has("name") {
		n, ferr := body.string("name")
		if ferr != nil {
			errs = append(errs, *ferr)
		}
		name = n
	}
	if body.has("parentId") {
		p, ferr := body.optionalString("parentId")
		if ferr != nil {
			errs = append(errs, *ferr)
		}
		parentID = p
	}
	if len(errs) > 0 {
		respondValidationError(c, errs...)
		return
	}

	userID := GetUserID(c)
	f, err := fc.folders.Create(userID, name, parentID)
	if err != nil {
		respondDocumentError(c, fc.log, err, "create folder")
		return
	}
	fc.audit.LogDocument(userID, entities.AuditEventCreate, "folder", f.ID, f.Name)
	respondCreated(c, f)
}

// Update handles PUT /api/folders/:id (rename and/or move).
func (fc *FoldersController) Update(c *gin.Context) {
	var body payload
	if err := c.ShouldBindJSON(&body); err != nil {
		respondBadRequest(c, "invalid JSON body")
		return
	}

	patch, ferrs := buildPatch(body,
		textField("name", "name"),
		optionalTextField("parentId", "parent_id"),
	)
	if len(ferrs) > 0 {
		respondValidationError(c, ferrs...)
		return
	}
	if name, ok := patch["name"].(string); ok && name == "" {
		patch.Set("name", folders.DefaultName)
	}

	userID := GetUserID(c)
	if parent, ok := patch["parent_id"].(*string); ok && parent != nil {
		if _, err := fc.folders.GetForOwner(*parent, userID); err != nil {
			respondDocumentError(c, fc.log, err, "load parent folder")
			return
		}
	}

	f, err := fc.folders.Update(c.Param("id"), userID, patch)
	if errors.Is(err, folders.ErrCycle) {
		respondValidationError(c, FieldError{Field: "parentId", Reason: err.Error()})
		return
	}
	if err != nil {
		respondDocumentError(c, fc.log, err, "update folder")
		return
	}
	c.JSON(http.StatusOK, f)
}

// Delete handles DELETE /api/folders/:id. Descendant folders and every
// document inside them are removed too.
func (fc *FoldersController) Delete(c *gin.Context) {
	userID := GetUserID(c)
	id := c.Param("id")

	f, err := fc.folders.GetForOwner(id, userID)
	if err != nil {
		respondDocumentError(c, fc.log, err, "load folder")
		return
	}
	if err := fc.folders.Delete(id, userID); err != nil {
		respondDocumentError(c, fc.log, err, "delete folder")
		return
	}
	fc.audit.LogDocument(userID, entities.AuditEventDelete, "folder", id, f.Name)
	c.JSON(http.StatusOK, gin.H{"success": true})
}
