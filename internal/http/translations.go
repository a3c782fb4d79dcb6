package http

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/mikestefanello/backlite"

	"github.com/edoomio/studio/internal/entities"
	"github.com/edoomio/studio/internal/i18nexus"
	"github.com/edoomio/studio/internal/logger"
	"github.com/edoomio/studio/internal/tasks"
	"github.com/edoomio/studio/internal/translation"
)

// TranslationsController pushes course strings to the translation service and
// pulls translated bundles back, either inline or through the task queue.
type TranslationsController struct {
	courses    CourseStore
	translator Translator
	queue      TaskQueue
	audit      DocumentAuditor
	log        *logger.Logger
}

func NewTranslationsController(store CourseStore, translator Translator, queue TaskQueue, audit DocumentAuditor, log *logger.Logger) *TranslationsController {
	if audit == nil {
		audit = nopAuditor{}
	}
	return &TranslationsController{
		courses:    store,
		translator: translator,
		queue:      queue,
		audit:      audit,
		log:        log.With("component", "translations_api"),
	}
}

// Push handles POST /api/courses/:id/translations/push (?async=1 to queue).
func (tc *TranslationsController) Push(c *gin.Context) {
	crs, ok := tc.loadCourse(c)
	if !ok {
		return
	}
	userID := GetUserID(c)

	if tc.enqueue(c, tasks.TranslationPushTask{CourseID: crs.ID, UserID: userID}) {
		return
	}

	result, err := tc.translator.Push(c.Request.Context(), crs)
	meta := map[string]any{}
	if result != nil {
		meta["namespace"] = result.Namespace
		meta["strings"] = result.StringCount
		meta["created"] = result.Created
		meta["failed"] = result.Failed
	}
	tc.audit.LogTranslation(userID, crs.ID, "push", "Pushed strings of course: "+crs.Title, meta, err)
	if err != nil {
		tc.respondTranslationError(c, err, "push translations")
		return
	}
	c.JSON(http.StatusOK, result)
}

// Pull handles POST /api/courses/:id/translations/pull (?async=1 to queue).
func (tc *TranslationsController) Pull(c *gin.Context) {
	crs, ok := tc.loadCourse(c)
	if !ok {
		return
	}
	userID := GetUserID(c)

	if crs.I18nNamespace == nil || *crs.I18nNamespace == "" {
		respondBadRequest(c, translation.ErrNoNamespace.Error())
		return
	}
	if tc.enqueue(c, tasks.TranslationPullTask{CourseID: crs.ID, UserID: userID}) {
		return
	}

	result, err := tc.translator.Pull(c.Request.Context(), crs)
	meta := map[string]any{}
	if result != nil {
		meta["languages"] = result.Languages
		meta["skipped"] = len(result.Skipped)
	}
	tc.audit.LogTranslation(userID, crs.ID, "pull", "Pulled translations of course: "+crs.Title, meta, err)
	if err != nil {
		tc.respondTranslationError(c, err, "pull translations")
		return
	}
	c.JSON(http.StatusOK, result)
}

// Status handles GET /api/courses/:id/translations/status
func (tc *TranslationsController) Status(c *gin.Context) {
	crs, ok := tc.loadCourse(c)
	if !ok {
		return
	}
	status, err := tc.translator.Status(crs)
	if err != nil {
		respondInternalError(c, tc.log, err, "translation status")
		return
	}
	c.JSON(http.StatusOK, status)
}

func (tc *TranslationsController) loadCourse(c *gin.Context) (*entities.Course, bool) {
	crs, err := tc.courses.GetForOwner(c.Param("id"), GetUserID(c))
	if err != nil {
		respondDocumentError(c, tc.log, err, "load course")
		return nil, false
	}
	if tc.translator == nil {
		respondError(c, http.StatusServiceUnavailable, "translation service is not configured")
		return nil, false
	}
	return crs, true
}

// enqueue queues task when the caller asked for async processing and a queue
// is available. It reports whether a response was written.
func (tc *TranslationsController) enqueue(c *gin.Context, task backlite.Task) bool {
	if !queryFlag(c, "async") || tc.queue == nil {
		return false
	}
	ids, err := tc.queue.Enqueue(c.Request.Context(), task)
	if err != nil {
		respondInternalError(c, tc.log, err, "enqueue translation task")
		return true
	}
	respondAccepted(c, "task enqueued", gin.H{"taskId": ids[0]})
	return true
}

func (tc *TranslationsController) respondTranslationError(c *gin.Context, err error, context string) {
	switch {
	case errors.Is(err, translation.ErrNoNamespace):
		respondBadRequest(c, err.Error())
	case errors.Is(err, i18nexus.ErrNotConfigured):
		respondBadRequest(c, err.Error())
	case errors.Is(err, i18nexus.ErrInvalidToken):
		respondBadGateway(c, err.Error())
	case errors.Is(err, translation.ErrSourceUnavailable), i18nexus.IsUnavailable(err):
		tc.log.Warn("Translation service unavailable", "context", context, "error", err)
		respondBadGateway(c, "translation service unavailable")
	default:
		respondInternalError(c, tc.log, err, context)
	}
}
