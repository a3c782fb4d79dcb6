package entities

import "time"

type RenderStatus string

const (
	RenderStatusPending RenderStatus = "pending"
	RenderStatusRunning RenderStatus = "running"
	RenderStatusDone    RenderStatus = "done"
	RenderStatusFailed  RenderStatus = "failed"
)

type RenderLocale string

const (
	RenderLocaleDE      RenderLocale = "DE"
	RenderLocaleCH      RenderLocale = "CH"
	RenderLocaleNeutral RenderLocale = "NEUTRAL"
)

// RenderJob tracks one PDF rendering of a worksheet. Jobs fail independently.
type RenderJob struct {
	ID          string       `gorm:"primaryKey;size:36" json:"id"`
	WorksheetID string       `gorm:"index;size:36" json:"worksheetId"`
	UserID      *string      `gorm:"index;size:36" json:"-"`
	Locale      RenderLocale `gorm:"size:10" json:"locale"`
	Solutions   bool         `json:"solutions"`
	Version     string       `gorm:"size:64" json:"version"`
	Status      RenderStatus `gorm:"index;size:20" json:"status"`
	BlobKey     string       `gorm:"size:512" json:"-"`
	Error       string       `gorm:"size:1000" json:"error,omitempty"`
	CreatedAt   time.Time    `json:"createdAt"`
	UpdatedAt   time.Time    `json:"updatedAt"`
}
