package http

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/edoomio/studio/internal/database/audit"
	"github.com/edoomio/studio/internal/entities"
	"github.com/edoomio/studio/internal/logger"
)

// AuditEventReader pages through the activity log.
type AuditEventReader interface {
	GetEvents(q audit.Query) ([]entities.AuditEvent, int64, error)
}

type AuditController struct {
	events AuditEventReader
	log    *logger.Logger
}

func NewAuditController(events AuditEventReader, log *logger.Logger) *AuditController {
	return &AuditController{events: events, log: log.With("component", "audit_api")}
}

// GetAuditEvents returns paginated audit events as JSON
// GET /api/audit?page=&limit=&type=&entityType=&entityId=
func (ac *AuditController) GetAuditEvents(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "25"))

	if page < 1 {
		page = 1
	}
	if limit < 1 || limit > 100 {
		limit = 25
	}

	events, total, err := ac.events.GetEvents(audit.Query{
		UserID:     GetUserID(c),
		EventType:  entities.AuditEventType(c.Query("type")),
		EntityType: c.Query("entityType"),
		EntityID:   c.Query("entityId"),
		Limit:      limit,
		Offset:     (page - 1) * limit,
	})
	if err != nil {
		respondInternalError(c, ac.log, err, "load audit events")
		return
	}

	totalPages := (int(total) + limit - 1) / limit
	if totalPages < 1 {
		totalPages = 1
	}

	c.JSON(http.StatusOK, gin.H{
		"events":       events,
		"page":         page,
		"limit":        limit,
		"total_pages":  totalPages,
		"total_events": total,
	})
}
