package entities

import (
	"time"

	"gorm.io/datatypes"
)

// WorksheetType discriminates the document variants stored in the worksheets table.
type WorksheetType string

const (
	WorksheetTypeWorksheet    WorksheetType = "worksheet"
	WorksheetTypeCards        WorksheetType = "cards"
	WorksheetTypeFlashcards   WorksheetType = "flashcards"
	WorksheetTypeCovers       WorksheetType = "covers"
	WorksheetTypeGrammarTable WorksheetType = "grammar-table"
)

// Valid reports whether t is one of the known worksheet variants.
func (t WorksheetType) Valid() bool {
	switch t {
	case WorksheetTypeWorksheet, WorksheetTypeCards, WorksheetTypeFlashcards,
		WorksheetTypeCovers, WorksheetTypeGrammarTable:
		return true
	}
	return false
}

// Folder is a node in a user's folder tree. Deleting a folder removes its
// descendants and every document placed in them.
type Folder struct {
	ID        string    `gorm:"primaryKey;size:36" json:"id"`
	Name      string    `gorm:"size:255" json:"name"`
	ParentID  *string   `gorm:"index;size:36" json:"parentId"`
	UserID    *string   `gorm:"index;size:36" json:"userId"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// Worksheet stores worksheets, card sets, flashcards, covers and grammar tables.
// Blocks and Settings are schema-on-read JSON resolved by the documents package.
type Worksheet struct {
	ID           string         `gorm:"primaryKey;size:36"`
	Title        string         `gorm:"size:512"`
	Description  *string        `gorm:"type:text"`
	Slug         string         `gorm:"uniqueIndex;size:32"`
	Type         WorksheetType  `gorm:"index;size:32;default:worksheet"`
	Blocks       datatypes.JSON `gorm:"type:json"`
	Settings     datatypes.JSON `gorm:"type:json"`
	Published    bool           `gorm:"index"`
	FolderID     *string        `gorm:"index;size:36"`
	UserID       *string        `gorm:"index;size:36"`
	ThumbnailKey *string        `gorm:"size:512"`
	CreatedAt    time.Time
	UpdatedAt    time.Time `gorm:"index"`
}

// Course holds a module/topic/lesson structure plus its translation bundle.
type Course struct {
	ID            string         `gorm:"primaryKey;size:36"`
	Title         string         `gorm:"size:512"`
	Slug          string         `gorm:"uniqueIndex;size:32"`
	Structure     datatypes.JSON `gorm:"type:json"`
	CoverSettings datatypes.JSON `gorm:"type:json"`
	Settings      datatypes.JSON `gorm:"type:json"`
	Translations  datatypes.JSON `gorm:"type:json"`
	TranslatedAt  *time.Time
	I18nNamespace *string `gorm:"column:i18n_namespace;size:255"`
	Published     bool    `gorm:"index"`
	FolderID      *string `gorm:"index;size:36"`
	UserID        *string `gorm:"index;size:36"`
	ThumbnailKey  *string `gorm:"size:512"`
	CreatedAt     time.Time
	UpdatedAt     time.Time `gorm:"index"`
}

// EBook groups worksheets into chapters.
type EBook struct {
	ID            string         `gorm:"primaryKey;size:36"`
	Title         string         `gorm:"size:512"`
	Slug          string         `gorm:"uniqueIndex;size:32"`
	Chapters      datatypes.JSON `gorm:"type:json"`
	CoverSettings datatypes.JSON `gorm:"type:json"`
	Settings      datatypes.JSON `gorm:"type:json"`
	Published     bool           `gorm:"index"`
	FolderID      *string        `gorm:"index;size:36"`
	UserID        *string        `gorm:"index;size:36"`
	ThumbnailKey  *string        `gorm:"size:512"`
	CreatedAt     time.Time
	UpdatedAt     time.Time `gorm:"index"`
}

func (EBook) TableName() string {
	return "ebooks"
}
