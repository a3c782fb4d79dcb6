// Package worksheets provides database operations for worksheets and their
// variants (cards, flashcards, covers, grammar tables).
//
// # Usage
//
//	repo := worksheets.NewRepository(db)
//	list, err := repo.List(worksheets.Filter{UserID: uid, FolderID: database.RootFolder})
package worksheets

import (
	"errors"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/edoomio/studio/internal/database"
	"github.com/edoomio/studio/internal/entities"
)

// Filter narrows List. Zero fields apply no restriction.
type Filter struct {
	UserID   string
	FolderID string // database.RootFolder selects worksheets outside any folder
	Type     entities.WorksheetType
	Search   string
}

// Repository handles all worksheet database operations.
type Repository struct {
	db *gorm.DB
}

// NewRepository creates a new worksheets repository.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// Create inserts w, assigning an ID and a unique slug when they are empty.
func (r *Repository) Create(w *entities.Worksheet) error {
	if w.ID == "" {
		w.ID = uuid.NewString()
	}
	if w.Slug == "" {
		slug, err := database.UniqueSlug(r.db, &entities.Worksheet{})
		if err != nil {
			return err
		}
		w.Slug = slug
	}
	if w.Type == "" {
		w.Type = entities.WorksheetTypeWorksheet
	}
	if err := r.db.Create(w).Error; err != nil {
		return fmt.Errorf("failed to create worksheet: %w", err)
	}
	return nil
}

// GetByID retrieves a worksheet regardless of owner.
func (r *Repository) GetByID(id string) (*entities.Worksheet, error) {
	var w entities.Worksheet
	if err := r.db.Where("id = ?", id).First(&w).Error; err != nil {
		return nil, database.Translate(err)
	}
	return &w, nil
}

// GetForOwner retrieves a worksheet only when userID owns it.
func (r *Repository) GetForOwner(id, userID string) (*entities.Worksheet, error) {
	var w entities.Worksheet
	err := r.db.Scopes(database.OwnerScope(userID)).Where("id = ?", id).First(&w).Error
	if err != nil {
		return nil, database.Translate(err)
	}
	return &w, nil
}

// GetBySlug retrieves a worksheet by its public slug.
func (r *Repository) GetBySlug(slug string) (*entities.Worksheet, error) {
	var w entities.Worksheet
	if err := r.db.Where("slug = ?", slug).First(&w).Error; err != nil {
		return nil, database.Translate(err)
	}
	return &w, nil
}

// List returns worksheets matching f, most recently updated first.
func (r *Repository) List(f Filter) ([]entities.Worksheet, error) {
	q := r.db.Model(&entities.Worksheet{}).Scopes(
		database.FolderScope("folder_id", f.FolderID),
		database.SearchScope(f.Search),
	)
	if f.UserID != "" {
		q = q.Scopes(database.OwnerScope(f.UserID))
	}
	if f.Type != "" {
		q = q.Where("type = ?", f.Type)
	}

	var list []entities.Worksheet
	if err := q.Order("updated_at DESC").Find(&list).Error; err != nil {
		return nil, err
	}
	return list, nil
}

// FindByIDs loads the worksheets with the given IDs keyed by ID. Unknown IDs
// are simply absent from the result.
func (r *Repository) FindByIDs(ids []string) (map[string]entities.Worksheet, error) {
	out := make(map[string]entities.Worksheet, len(ids))
	if len(ids) == 0 {
		return out, nil
	}
	var list []entities.Worksheet
	if err := r.db.Where("id IN ?", ids).Find(&list).Error; err != nil {
		return nil, err
	}
	for _, w := range list {
		out[w.ID] = w
	}
	return out, nil
}

// Update writes only the columns present in patch and returns the stored row.
func (r *Repository) Update(id, userID string, patch database.Patch) (*entities.Worksheet, error) {
	if err := database.UpdateOwned(r.db, &entities.Worksheet{}, id, userID, patch); err != nil {
		if errors.Is(err, database.ErrNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to update worksheet: %w", err)
	}
	return r.GetForOwner(id, userID)
}

// Delete removes a worksheet owned by userID.
func (r *Repository) Delete(id, userID string) error {
	return database.DeleteOwned(r.db, &entities.Worksheet{}, id, userID)
}

// Duplicate copies a worksheet into a new unpublished row with a fresh slug.
func (r *Repository) Duplicate(id, userID string) (*entities.Worksheet, error) {
	src, err := r.GetForOwner(id, userID)
	if err != nil {
		return nil, err
	}
	dup := &entities.Worksheet{
		Title:       src.Title + " (Copy)",
		Description: src.Description,
		Type:        src.Type,
		Blocks:      src.Blocks,
		Settings:    src.Settings,
		FolderID:    src.FolderID,
		UserID:      src.UserID,
	}
	if err := r.Create(dup); err != nil {
		return nil, err
	}
	return dup, nil
}
