// Package ebooks provides database operations for e-books.
package ebooks

import (
	"errors"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/edoomio/studio/internal/database"
	"github.com/edoomio/studio/internal/entities"
)

type Filter struct {
	UserID   string
	FolderID string
	Search   string
}

// Repository handles all e-book database operations.
type Repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// Create inserts e, assigning an ID, a unique slug and an empty chapter list when missing.
func (r *Repository) Create(e *entities.EBook) error {
	if e.ID == "" {
		e.ID = uuid.NewString()
	}
	if e.Slug == "" {
		slug, err := database.UniqueSlug(r.db, &entities.EBook{})
		if err != nil {
			return err
		}
		e.Slug = slug
	}
	if len(e.Chapters) == 0 {
		e.Chapters = datatypes.JSON("[]")
	}
	if err := r.db.Create(e).Error; err != nil {
		return fmt.Errorf("failed to create ebook: %w", err)
	}
	return nil
}

func (r *Repository) GetForOwner(id, userID string) (*entities.EBook, error) {
	var e entities.EBook
	err := r.db.Scopes(database.OwnerScope(userID)).Where("id = ?", id).First(&e).Error
	if err != nil {
		return nil, database.Translate(err)
	}
	return &e, nil
}

func (r *Repository) GetBySlug(slug string) (*entities.EBook, error) {
	var e entities.EBook
	if err := r.db.Where("slug = ?", slug).First(&e).Error; err != nil {
		return nil, database.Translate(err)
	}
	return &e, nil
}

// List returns e-books matching f, most recently updated first.
func (r *Repository) List(f Filter) ([]entities.EBook, error) {
	q := r.db.Model(&entities.EBook{}).Scopes(
		database.FolderScope("folder_id", f.FolderID),
		database.SearchScope(f.Search),
	)
	if f.UserID != "" {
		q = q.Scopes(database.OwnerScope(f.UserID))
	}
	var list []entities.EBook
	if err := q.Order("updated_at DESC").Find(&list).Error; err != nil {
		return nil, err
	}
	return list, nil
}

// Update writes only the columns present in patch. Content changes drop the thumbnail.
func (r *Repository) Update(id, userID string, patch database.Patch) (*entities.EBook, error) {
	if patch.Has("chapters") || patch.Has("settings") || patch.Has("cover_settings") {
		patch.Set("thumbnail_key", nil)
	}
	if err := database.UpdateOwned(r.db, &entities.EBook{}, id, userID, patch); err != nil {
		if errors.Is(err, database.ErrNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to update ebook: %w", err)
	}
	return r.GetForOwner(id, userID)
}

func (r *Repository) Delete(id, userID string) error {
	return database.DeleteOwned(r.db, &entities.EBook{}, id, userID)
}
