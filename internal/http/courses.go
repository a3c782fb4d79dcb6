package http

import (
	"errors"
	"io"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"gorm.io/datatypes"

	"github.com/edoomio/studio/internal/course"
	"github.com/edoomio/studio/internal/database/courses"
	"github.com/edoomio/studio/internal/docsettings"
	"github.com/edoomio/studio/internal/documents"
	"github.com/edoomio/studio/internal/entities"
	"github.com/edoomio/studio/internal/logger"
)

const (
	defaultCourseTitle = "Untitled Course"
	defaultLessonTitle = "Untitled Lesson"
)

// CoursesController serves the owner routes of courses.
type CoursesController struct {
	courses    CourseStore
	worksheets WorksheetStore
	audit      DocumentAuditor
	log        *logger.Logger
}

func NewCoursesController(store CourseStore, worksheetStore WorksheetStore, audit DocumentAuditor, log *logger.Logger) *CoursesController {
	if audit == nil {
		audit = nopAuditor{}
	}
	return &CoursesController{
		courses:    store,
		worksheets: worksheetStore,
		audit:      audit,
		log:        log.With("component", "courses_api"),
	}
}

// PopulatedCourse is a course with every lesson's worksheet references resolved.
type PopulatedCourse struct {
	*documents.CourseView
	Modules []course.ModuleView `json:"modules"`
}

func checkStructure(raw datatypes.JSON) error {
	if _, err := course.Parse(raw); err != nil {
		return errors.New("must be a list of modules")
	}
	return nil
}

// List handles GET /api/courses?folderId=&search=
func (cc *CoursesController) List(c *gin.Context) {
	list, err := cc.courses.List(courses.Filter{
		UserID:   GetUserID(c),
		FolderID: folderFilter(c, "folderId"),
		Search:   strings.TrimSpace(c.Query("search")),
	})
	if err != nil {
		respondInternalError(c, cc.log, err, "list courses")
		return
	}
	views := make([]*documents.CourseView, 0, len(list))
	for i := range list {
		v, err := documents.ListedCourse(&list[i])
		if err != nil {
			cc.log.Warn("Skipping unreadable course in listing", "course_id", list[i].ID, "error", err)
			continue
		}
		views = append(views, v)
	}
	c.JSON(http.StatusOK, views)
}

// Create handles POST /api/courses
func (cc *CoursesController) Create(c *gin.Context) {
	var body payload
	if err := c.ShouldBindJSON(&body); err != nil && !errors.Is(err, io.EOF) {
		respondBadRequest(c, "invalid JSON body")
		return
	}
	userID := GetUserID(c)

	patch, ferrs := buildPatch(body,
		textField("title", "title"),
		arrayField("structure", "structure", checkStructure),
		settingsField("coverSettings", "cover_settings", docsettings.KindCourseCover),
		settingsField("settings", "settings", docsettings.KindCourse),
		optionalTextField("folderId", "folder_id"),
	)
	if len(ferrs) > 0 {
		respondValidationError(c, ferrs...)
		return
	}

	crs := &entities.Course{Title: defaultCourseTitle, UserID: &userID}
	if title, _ := patch["title"].(string); title != "" {
		crs.Title = title
	}
	if v, ok := patch["structure"].(datatypes.JSON); ok {
		crs.Structure = v
	}
	if v, ok := patch["cover_settings"].(datatypes.JSON); ok {
		crs.CoverSettings = v
	}
	if v, ok := patch["settings"].(datatypes.JSON); ok {
		crs.Settings = v
	}
	if v, ok := patch["folder_id"].(*string); ok {
		crs.FolderID = v
	}

	if err := cc.courses.Create(crs); err != nil {
		respondInternalError(c, cc.log, err, "create course")
		return
	}
	cc.audit.LogDocument(userID, entities.AuditEventCreate, "course", crs.ID, crs.Title)

	view, err := documents.NormalizeCourse(crs)
	if err != nil {
		respondDocumentError(c, cc.log, err, "normalize course")
		return
	}
	respondCreated(c, view)
}

// Get handles GET /api/courses/:id. Legacy lesson references are migrated in
// the returned structure.
func (cc *CoursesController) Get(c *gin.Context) {
	crs, err := cc.courses.GetByID(c.Param("id"))
	if err == nil {
		err = documents.RequireOwner(crs.UserID, viewer(c))
	}
	if err != nil {
		respondDocumentError(c, cc.log, err, "load course")
		return
	}
	view, err := documents.NormalizeCourse(crs)
	if err != nil {
		respondDocumentError(c, cc.log, err, "normalize course")
		return
	}
	c.JSON(http.StatusOK, view)
}

// Populated handles GET /api/courses/:id/populated
func (cc *CoursesController) Populated(c *gin.Context) {
	crs, err := cc.courses.GetForOwner(c.Param("id"), GetUserID(c))
	if err != nil {
		respondDocumentError(c, cc.log, err, "load course")
		return
	}
	populated, err := populateCourse(crs, cc.worksheets)
	if err != nil {
		respondDocumentError(c, cc.log, err, "populate course")
		return
	}
	c.JSON(http.StatusOK, populated)
}

func populateCourse(crs *entities.Course, store WorksheetStore) (*PopulatedCourse, error) {
	view, err := documents.NormalizeCourse(crs)
	if err != nil {
		return nil, err
	}
	return populateCourseView(view, store)
}

// populateCourseView resolves the worksheet references of an already
// normalized (and possibly translated) course view.
func populateCourseView(view *documents.CourseView, store WorksheetStore) (*PopulatedCourse, error) {
	found, err := store.FindByIDs(course.CollectWorksheetIDs(view.Structure))
	if err != nil {
		return nil, err
	}
	summaries := make(map[string]course.WorksheetSummary, len(found))
	for id, w := range found {
		summaries[id] = course.WorksheetSummary{ID: w.ID, Title: w.Title, Slug: w.Slug}
	}
	return &PopulatedCourse{CourseView: view, Modules: course.Populate(view.Structure, summaries)}, nil
}

// Update handles PUT /api/courses/:id. Changing the structure or either
// settings object drops the stored thumbnail.
func (cc *CoursesController) Update(c *gin.Context) {
	var body payload
	if err := c.ShouldBindJSON(&body); err != nil {
		respondBadRequest(c, "invalid JSON body")
		return
	}
	userID := GetUserID(c)
	id := c.Param("id")

	existing, err := cc.courses.GetForOwner(id, userID)
	if err != nil {
		respondDocumentError(c, cc.log, err, "load course")
		return
	}

	patch, ferrs := buildPatch(body,
		textField("title", "title"),
		arrayField("structure", "structure", checkStructure),
		settingsField("coverSettings", "cover_settings", docsettings.KindCourseCover),
		settingsField("settings", "settings", docsettings.KindCourse),
		boolField("published", "published"),
		optionalTextField("folderId", "folder_id"),
	)
	if len(ferrs) > 0 {
		respondValidationError(c, ferrs...)
		return
	}

	crs, err := cc.courses.Update(id, userID, patch)
	if err != nil {
		respondDocumentError(c, cc.log, err, "update course")
		return
	}
	eventType := entities.AuditEventUpdate
	if !existing.Published && crs.Published {
		eventType = entities.AuditEventPublish
	}
	cc.audit.LogDocument(userID, eventType, "course", crs.ID, crs.Title)

	view, err := documents.NormalizeCourse(crs)
	if err != nil {
		respondDocumentError(c, cc.log, err, "normalize course")
		return
	}
	c.JSON(http.StatusOK, view)
}

// Delete handles DELETE /api/courses/:id
func (cc *CoursesController) Delete(c *gin.Context) {
	userID := GetUserID(c)
	id := c.Param("id")

	crs, err := cc.courses.GetForOwner(id, userID)
	if err != nil {
		respondDocumentError(c, cc.log, err, "load course")
		return
	}
	if err := cc.courses.Delete(id, userID); err != nil {
		respondDocumentError(c, cc.log, err, "delete course")
		return
	}
	cc.audit.LogDocument(userID, entities.AuditEventDelete, "course", id, crs.Title)
	c.JSON(http.StatusOK, gin.H{"success": true})
}

// LessonWorksheetRequest is the body of POST /api/courses/:id/lesson-worksheet.
type LessonWorksheetRequest struct {
	LessonTitle string `json:"lessonTitle"`
}

// CreateLessonWorksheet handles POST /api/courses/:id/lesson-worksheet. The new
// empty worksheet is titled after the lesson and placed in the course's folder.
func (cc *CoursesController) CreateLessonWorksheet(c *gin.Context) {
	userID := GetUserID(c)
	crs, err := cc.courses.GetForOwner(c.Param("id"), userID)
	if err != nil {
		respondDocumentError(c, cc.log, err, "load course")
		return
	}

	var req LessonWorksheetRequest
	if err := c.ShouldBindJSON(&req); err != nil && !errors.Is(err, io.EOF) {
		respondBadRequest(c, "invalid JSON body")
		return
	}
	title := strings.TrimSpace(req.LessonTitle)
	if title == "" {
		title = defaultLessonTitle
	}

	w := &entities.Worksheet{
		Title:    title,
		Type:     entities.WorksheetTypeWorksheet,
		Blocks:   datatypes.JSON("[]"),
		Settings: datatypes.JSON("{}"),
		FolderID: crs.FolderID,
		UserID:   &userID,
	}
	if err := cc.worksheets.Create(w); err != nil {
		respondInternalError(c, cc.log, err, "create lesson worksheet")
		return
	}
	cc.audit.LogDocument(userID, entities.AuditEventCreate, "worksheet", w.ID, w.Title)

	respondCreated(c, course.WorksheetSummary{ID: w.ID, Title: w.Title, Slug: w.Slug})
}
