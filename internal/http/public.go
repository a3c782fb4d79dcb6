package http

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/edoomio/studio/internal/documents"
	"github.com/edoomio/studio/internal/locale"
	"github.com/edoomio/studio/internal/logger"
	"github.com/edoomio/studio/internal/translation"
)

// PublicController serves published documents to anonymous readers. Anything
// missing or unpublished answers the same 404 body.
type PublicController struct {
	worksheets WorksheetStore
	courses    CourseStore
	ebooks     EBookStore
	log        *logger.Logger
}

func NewPublicController(worksheetStore WorksheetStore, courseStore CourseStore, ebookStore EBookStore, log *logger.Logger) *PublicController {
	return &PublicController{
		worksheets: worksheetStore,
		courses:    courseStore,
		ebooks:     ebookStore,
		log:        log.With("component", "public_api"),
	}
}

// Worksheet handles GET /api/public/worksheets/:slug. With ?ch=1 the Swiss
// German variant is returned.
func (pc *PublicController) Worksheet(c *gin.Context) {
	w, err := pc.worksheets.GetBySlug(c.Param("slug"))
	if err == nil {
		err = documents.RequirePublished(w.Published)
	}
	if err != nil {
		respondDocumentError(c, pc.log, err, "load public worksheet")
		return
	}

	view, err := documents.NormalizeWorksheet(w)
	if err != nil {
		respondDocumentError(c, pc.log, err, "normalize worksheet")
		return
	}
	mode := locale.ModeDE
	if queryFlag(c, "ch") {
		mode = locale.ModeCH
	}
	c.JSON(http.StatusOK, view.Localized(mode))
}

// Course handles GET /api/public/courses/:slug. ?lang= selects a translation
// bundle; without one the base language content is returned.
func (pc *PublicController) Course(c *gin.Context) {
	crs, err := pc.courses.GetBySlug(c.Param("slug"))
	if err == nil {
		err = documents.RequirePublished(crs.Published)
	}
	if err != nil {
		respondDocumentError(c, pc.log, err, "load public course")
		return
	}

	view, err := documents.NormalizeCourse(crs)
	if err != nil {
		respondDocumentError(c, pc.log, err, "normalize course")
		return
	}
	if lang := strings.TrimSpace(c.Query("lang")); lang != "" {
		view = pc.translated(view, crs.ID, lang, crs.Translations)
	}

	populated, err := populateCourseView(view, pc.worksheets)
	if err != nil {
		respondDocumentError(c, pc.log, err, "populate course")
		return
	}
	c.JSON(http.StatusOK, populated)
}

func (pc *PublicController) translated(view *documents.CourseView, courseID, lang string, raw []byte) *documents.CourseView {
	bundles, err := translation.DecodeBundles(raw)
	if err != nil {
		pc.log.Warn("Ignoring unreadable translations", "course_id", courseID, "error", err)
		return view
	}
	key, ok := bundleKey(bundles, lang)
	if !ok {
		return view
	}
	return view.Translated(key, bundles[key])
}

// bundleKey resolves lang to the stored bundle code. Codes are kept as the
// translation source returns them (pt-BR, zh-Hans), so an exact match wins
// and a case-insensitive one is the fallback.
func bundleKey(bundles map[string]translation.Bundle, lang string) (string, bool) {
	if _, ok := bundles[lang]; ok {
		return lang, true
	}
	for _, key := range translation.Languages(bundles) {
		if strings.EqualFold(key, lang) {
			return key, true
		}
	}
	return "", false
}

// EBook handles GET /api/public/ebooks/:slug
func (pc *PublicController) EBook(c *gin.Context) {
	e, err := pc.ebooks.GetBySlug(c.Param("slug"))
	if err == nil {
		err = documents.RequirePublished(e.Published)
	}
	if err != nil {
		respondDocumentError(c, pc.log, err, "load public ebook")
		return
	}
	populated, err := populateEBook(e, pc.worksheets)
	if err != nil {
		respondDocumentError(c, pc.log, err, "populate ebook")
		return
	}
	c.JSON(http.StatusOK, populated)
}
