// Package audit records document, translation, render and login activity.
package audit

import (
	"encoding/json"
	"sync"
	"time"

	"github.com/edoomio/studio/internal/database/audit"
	"github.com/edoomio/studio/internal/entities"
	"github.com/edoomio/studio/internal/logger"
)

// Service provides high-level audit logging functionality.
type Service struct {
	repo    *audit.Repository
	log     *logger.Logger
	pending sync.WaitGroup
}

// NewService creates a new audit service.
func NewService(repo *audit.Repository, log *logger.Logger) *Service {
	if log == nil {
		log = logger.Nop()
	}
	return &Service{repo: repo, log: log.With("component", "audit")}
}

// Log records a generic audit event.
func (s *Service) Log(event *entities.AuditEvent) error {
	return s.repo.LogEvent(event)
}

// LogAsync records an audit event in the background (non-blocking).
func (s *Service) LogAsync(event *entities.AuditEvent) {
	s.pending.Add(1)
	go func() {
		defer s.pending.Done()
		if err := s.repo.LogEvent(event); err != nil {
			s.log.Error("failed to log audit event", "action", event.Action, "error", err)
		}
	}()
}

// Wait blocks until every pending async event has been written.
func (s *Service) Wait() {
	s.pending.Wait()
}

// LogDocument records a create, update, publish or delete of a document.
func (s *Service) LogDocument(userID string, eventType entities.AuditEventType, entityType, entityID, title string) {
	event := &entities.AuditEvent{
		UserID:      userID,
		EventType:   eventType,
		Action:      entityType + "_" + string(eventType),
		Description: describe(eventType, entityType, title),
		EntityType:  entityType,
		EntityID:    entityID,
		Status:      entities.AuditStatusSuccess,
	}
	s.LogAsync(event)
}

// LogTranslation records a push or pull of a course. metadata is stored as JSON.
func (s *Service) LogTranslation(userID, courseID, action, description string, metadata map[string]any, err error) {
	event := &entities.AuditEvent{
		UserID:      userID,
		EventType:   entities.AuditEventTranslation,
		Action:      action,
		Description: description,
		EntityType:  "course",
		EntityID:    courseID,
		Status:      entities.AuditStatusSuccess,
	}
	if len(metadata) > 0 {
		if md, e := json.Marshal(metadata); e == nil {
			event.Metadata = string(md)
		}
	}
	markFailed(event, err)
	s.LogAsync(event)
}

// LogRender records the outcome of a PDF render job.
func (s *Service) LogRender(userID, worksheetID, jobID string, err error) {
	event := &entities.AuditEvent{
		UserID:      userID,
		EventType:   entities.AuditEventRender,
		Action:      "worksheet_render",
		Description: "Rendered PDF job " + jobID,
		EntityType:  "worksheet",
		EntityID:    worksheetID,
		Status:      entities.AuditStatusSuccess,
	}
	markFailed(event, err)
	s.LogAsync(event)
}

// LogAuth records an authentication event.
func (s *Service) LogAuth(userID, action, ipAddr string, success bool) {
	event := &entities.AuditEvent{
		UserID:    userID,
		EventType: entities.AuditEventAuth,
		Action:    action,
		IPAddress: ipAddr,
		Status:    entities.AuditStatusSuccess,
	}
	if !success {
		event.Status = entities.AuditStatusFailed
	}
	s.LogAsync(event)
}

// GetEvents retrieves paginated audit events.
func (s *Service) GetEvents(q audit.Query) ([]entities.AuditEvent, int64, error) {
	return s.repo.GetEvents(q)
}

// DeleteOldEvents removes events older than the specified duration.
func (s *Service) DeleteOldEvents(retention time.Duration) (int64, error) {
	cutoff := time.Now().Add(-retention)
	return s.repo.DeleteOldEvents(cutoff)
}

func describe(eventType entities.AuditEventType, entityType, title string) string {
	verb := map[entities.AuditEventType]string{
		entities.AuditEventCreate:  "Created",
		entities.AuditEventUpdate:  "Updated",
		entities.AuditEventDelete:  "Deleted",
		entities.AuditEventPublish: "Published",
	}[eventType]
	if verb == "" {
		verb = string(eventType)
	}
	return truncate(verb+" "+entityType+": "+title, 500)
}

func markFailed(event *entities.AuditEvent, err error) {
	if err != nil {
		event.Status = entities.AuditStatusFailed
		event.ErrorMsg = truncate(err.Error(), 500)
	}
}

// truncate shortens a string to max length.
func truncate(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	return s[:maxLen-3] + "..."
}
