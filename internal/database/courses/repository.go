// Package courses provides database operations for courses and their
// translation state.
package courses

import (
	"errors"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/edoomio/studio/internal/database"
	"github.com/edoomio/studio/internal/entities"
	"github.com/edoomio/studio/internal/translation"
)

// Filter narrows List. Zero fields apply no restriction.
type Filter struct {
	UserID   string
	FolderID string
	Search   string
}

// Repository handles all course database operations.
type Repository struct {
	db *gorm.DB
}

var _ translation.CourseStore = (*Repository)(nil)

// NewRepository creates a new courses repository.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// Create inserts c, assigning an ID and a unique slug when they are empty.
func (r *Repository) Create(c *entities.Course) error {
	if c.ID == "" {
		c.ID = uuid.NewString()
	}
	if c.Slug == "" {
		slug, err := database.UniqueSlug(r.db, &entities.Course{})
		if err != nil {
			return err
		}
		c.Slug = slug
	}
	if len(c.Structure) == 0 {
		c.Structure = datatypes.JSON("[]")
	}
	if err := r.db.Create(c).Error; err != nil {
		return fmt.Errorf("failed to create course: %w", err)
	}
	return nil
}

func (r *Repository) GetByID(id string) (*entities.Course, error) {
	var c entities.Course
	if err := r.db.Where("id = ?", id).First(&c).Error; err != nil {
		return nil, database.Translate(err)
	}
	return &c, nil
}

func (r *Repository) GetForOwner(id, userID string) (*entities.Course, error) {
	var c entities.Course
	err := r.db.Scopes(database.OwnerScope(userID)).Where("id = ?", id).First(&c).Error
	if err != nil {
		return nil, database.Translate(err)
	}
	return &c, nil
}

func (r *Repository) GetBySlug(slug string) (*entities.Course, error) {
	var c entities.Course
	if err := r.db.Where("slug = ?", slug).First(&c).Error; err != nil {
		return nil, database.Translate(err)
	}
	return &c, nil
}

// List returns courses matching f, most recently updated first.
func (r *Repository) List(f Filter) ([]entities.Course, error) {
	q := r.db.Model(&entities.Course{}).Scopes(
		database.FolderScope("folder_id", f.FolderID),
		database.SearchScope(f.Search),
	)
	if f.UserID != "" {
		q = q.Scopes(database.OwnerScope(f.UserID))
	}
	var list []entities.Course
	if err := q.Order("updated_at DESC").Find(&list).Error; err != nil {
		return nil, err
	}
	return list, nil
}

// ListAll returns every course. Used by maintenance commands.
func (r *Repository) ListAll() ([]entities.Course, error) {
	var list []entities.Course
	if err := r.db.Order("created_at ASC").Find(&list).Error; err != nil {
		return nil, err
	}
	return list, nil
}

// ListSyncable returns published courses that have been pushed for translation.
func (r *Repository) ListSyncable() ([]entities.Course, error) {
	var list []entities.Course
	err := r.db.
		Where("published = ?", true).
		Where("i18n_namespace IS NOT NULL AND i18n_namespace <> ''").
		Find(&list).Error
	if err != nil {
		return nil, err
	}
	return list, nil
}

// Update writes only the columns present in patch. A change to the structure
// or either settings column also clears the cached thumbnail.
func (r *Repository) Update(id, userID string, patch database.Patch) (*entities.Course, error) {
	if patch.Has("structure") || patch.Has("settings") || patch.Has("cover_settings") {
		patch.Set("thumbnail_key", nil)
	}
	if err := database.UpdateOwned(r.db, &entities.Course{}, id, userID, patch); err != nil {
		if errors.Is(err, database.ErrNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to update course: %w", err)
	}
	return r.GetForOwner(id, userID)
}

// SaveStructure replaces a course's structure without touching its timestamps.
func (r *Repository) SaveStructure(id string, structure []byte) error {
	result := r.db.Model(&entities.Course{}).Where("id = ?", id).
		UpdateColumn("structure", datatypes.JSON(structure))
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return database.ErrNotFound
	}
	return nil
}

func (r *Repository) Delete(id, userID string) error {
	return database.DeleteOwned(r.db, &entities.Course{}, id, userID)
}

// SetNamespace records the translation namespace a course was pushed to.
func (r *Repository) SetNamespace(courseID, namespace string) error {
	result := r.db.Model(&entities.Course{}).Where("id = ?", courseID).
		UpdateColumn("i18n_namespace", namespace)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return database.ErrNotFound
	}
	return nil
}

// SetTranslations replaces the whole bundle map of a course.
func (r *Repository) SetTranslations(courseID string, bundles map[string]translation.Bundle, translatedAt time.Time) error {
	data, err := json.Marshal(bundles)
	if err != nil {
		return fmt.Errorf("encode translations: %w", err)
	}
	result := r.db.Model(&entities.Course{}).Where("id = ?", courseID).
		UpdateColumns(map[string]any{
			"translations":  datatypes.JSON(data),
			"translated_at": translatedAt,
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return database.ErrNotFound
	}
	return nil
}
