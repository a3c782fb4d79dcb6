package http

import (
	"encoding/json"
	"net/http"
	"sort"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/edoomio/studio/internal/database/ebooks"
	"github.com/edoomio/studio/internal/database/worksheets"
	"github.com/edoomio/studio/internal/documents"
	"github.com/edoomio/studio/internal/entities"
	"github.com/edoomio/studio/internal/logger"
)

const libraryTypeEBook = "ebook"

// LibraryItem is one entry of the unified worksheet and e-book listing.
type LibraryItem struct {
	ID           string  `json:"id"`
	Type         string  `json:"type"`
	Title        string  `json:"title"`
	Slug         string  `json:"slug"`
	Description  *string `json:"description"`
	Orientation  string  `json:"orientation"`
	HasThumbnail bool    `json:"hasThumbnail"`
	ItemCount    int     `json:"itemCount"`
	Published    bool    `json:"published"`
	FolderID     *string `json:"folderId"`
	CreatedAt    string  `json:"createdAt"`
	UpdatedAt    string  `json:"updatedAt"`

	updated time.Time
}

// LibraryController lists a user's worksheets and e-books together.
type LibraryController struct {
	worksheets WorksheetStore
	ebooks     EBookStore
	log        *logger.Logger
}

func NewLibraryController(worksheetStore WorksheetStore, ebookStore EBookStore, log *logger.Logger) *LibraryController {
	return &LibraryController{worksheets: worksheetStore, ebooks: ebookStore, log: log.With("component", "library_api")}
}

// List handles GET /api/library?folderId=&type=&search=. Items are sorted by
// last update, newest first.
func (lc *LibraryController) List(c *gin.Context) {
	userID := GetUserID(c)
	folderID := folderFilter(c, "folderId")
	search := strings.TrimSpace(c.Query("search"))
	kind := c.Query("type")

	if kind != "" && kind != libraryTypeEBook && !entities.WorksheetType(kind).Valid() {
		respondBadRequest(c, "unknown library type")
		return
	}

	items := []LibraryItem{}
	if kind != libraryTypeEBook {
		list, err := lc.worksheets.List(worksheets.Filter{
			UserID:   userID,
			FolderID: folderID,
			Type:     entities.WorksheetType(kind),
			Search:   search,
		})
		if err != nil {
			respondInternalError(c, lc.log, err, "list worksheets")
			return
		}
		for i := range list {
			items = append(items, worksheetItem(&list[i]))
		}
	}
	if kind == "" || kind == libraryTypeEBook {
		list, err := lc.ebooks.List(ebooks.Filter{UserID: userID, FolderID: folderID, Search: search})
		if err != nil {
			respondInternalError(c, lc.log, err, "list ebooks")
			return
		}
		for i := range list {
			items = append(items, ebookItem(&list[i]))
		}
	}

	sort.SliceStable(items, func(i, j int) bool {
		return items[i].updated.After(items[j].updated)
	})
	c.JSON(http.StatusOK, items)
}

// landscapeTypes are laid out in landscape unless their settings say otherwise.
var landscapeTypes = map[entities.WorksheetType]bool{
	entities.WorksheetTypeCards:        true,
	entities.WorksheetTypeFlashcards:   true,
	entities.WorksheetTypeGrammarTable: true,
}

func worksheetItem(w *entities.Worksheet) LibraryItem {
	fallback := "portrait"
	if landscapeTypes[w.Type] {
		fallback = "landscape"
	}
	t := w.Type
	if t == "" {
		t = entities.WorksheetTypeWorksheet
	}
	return LibraryItem{
		ID:           w.ID,
		Type:         string(t),
		Title:        w.Title,
		Slug:         w.Slug,
		Description:  w.Description,
		Orientation:  storedOrientation(w.Settings, fallback),
		HasThumbnail: w.ThumbnailKey != nil,
		ItemCount:    arrayLen(w.Blocks),
		Published:    w.Published,
		FolderID:     w.FolderID,
		CreatedAt:    documents.Timestamp(w.CreatedAt),
		UpdatedAt:    documents.Timestamp(w.UpdatedAt),
		updated:      w.UpdatedAt,
	}
}

func ebookItem(e *entities.EBook) LibraryItem {
	return LibraryItem{
		ID:           e.ID,
		Type:         libraryTypeEBook,
		Title:        e.Title,
		Slug:         e.Slug,
		Orientation:  storedOrientation(e.CoverSettings, "portrait"),
		HasThumbnail: e.ThumbnailKey != nil,
		ItemCount:    arrayLen(e.Chapters),
		Published:    e.Published,
		FolderID:     e.FolderID,
		CreatedAt:    documents.Timestamp(e.CreatedAt),
		UpdatedAt:    documents.Timestamp(e.UpdatedAt),
		updated:      e.UpdatedAt,
	}
}

// storedOrientation reads the orientation the author stored explicitly. The
// resolved defaults are not consulted so type-specific fallbacks still apply.
func storedOrientation(raw []byte, fallback string) string {
	var s struct {
		Orientation string `json:"orientation"`
	}
	if len(raw) == 0 || json.Unmarshal(raw, &s) != nil {
		return fallback
	}
	switch s.Orientation {
	case "portrait", "landscape":
		return s.Orientation
	}
	return fallback
}

func arrayLen(raw []byte) int {
	var list []json.RawMessage
	if len(raw) == 0 || json.Unmarshal(raw, &list) != nil {
		return 0
	}
	return len(list)
}
