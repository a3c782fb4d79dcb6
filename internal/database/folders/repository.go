// Package folders provides database operations for the folder tree that
// organizes documents.
package folders

import (
	"errors"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/edoomio/studio/internal/database"
	"github.com/edoomio/studio/internal/entities"
)

// ErrCycle is returned when a move would place a folder inside itself.
var ErrCycle = errors.New("folder cannot be moved into itself or a descendant")

// DefaultName is used when a folder is created without a name.
const DefaultName = "New Folder"

type Counts struct {
	Children   int64 `json:"children"`
	Worksheets int64 `json:"worksheets"`
}

// Folder is a folder row together with its direct child counts.
type Folder struct {
	entities.Folder
	Count Counts `json:"_count"`
}

// Repository handles all folder database operations.
type Repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// List returns the folders directly below parentID (database.RootFolder or ""
// for top level), sorted by name.
func (r *Repository) List(userID, parentID string) ([]Folder, error) {
	if parentID == "" {
		parentID = database.RootFolder
	}
	var rows []entities.Folder
	err := r.db.Scopes(
		database.OwnerScope(userID),
		database.FolderScope("parent_id", parentID),
	).Order("name ASC").Find(&rows).Error
	if err != nil {
		return nil, err
	}
	return r.withCounts(rows)
}

func (r *Repository) GetForOwner(id, userID string) (*Folder, error) {
	var f entities.Folder
	if err := r.db.Scopes(database.OwnerScope(userID)).Where("id = ?", id).First(&f).Error; err != nil {
		return nil, database.Translate(err)
	}
	list, err := r.withCounts([]entities.Folder{f})
	if err != nil {
		return nil, err
	}
	return &list[0], nil
}

// Create inserts a folder for userID. The parent must belong to the same user.
func (r *Repository) Create(userID, name string, parentID *string) (*Folder, error) {
	if name == "" {
		name = DefaultName
	}
	if parentID != nil && *parentID == "" {
		parentID = nil
	}
	if parentID != nil {
		if _, err := r.GetForOwner(*parentID, userID); err != nil {
			return nil, err
		}
	}
	f := entities.Folder{
		ID:       uuid.NewString(),
		Name:     name,
		ParentID: parentID,
		UserID:   &userID,
	}
	if err := r.db.Create(&f).Error; err != nil {
		return nil, fmt.Errorf("failed to create folder: %w", err)
	}
	return &Folder{Folder: f}, nil
}

// Update renames and/or moves a folder. Only fields present in patch change.
// Moving into the folder itself or one of its descendants returns ErrCycle.
func (r *Repository) Update(id, userID string, patch database.Patch) (*Folder, error) {
	if _, err := r.GetForOwner(id, userID); err != nil {
		return nil, err
	}
	if patch.Has("parent_id") {
		if parent, ok := patch["parent_id"].(*string); ok && parent != nil {
			if err := r.checkMove(id, *parent, userID); err != nil {
				return nil, err
			}
		}
	}
	if err := database.UpdateOwned(r.db, &entities.Folder{}, id, userID, patch); err != nil {
		return nil, err
	}
	return r.GetForOwner(id, userID)
}

func (r *Repository) checkMove(id, newParentID, userID string) error {
	current := newParentID
	for current != "" {
		if current == id {
			return ErrCycle
		}
		var f entities.Folder
		err := r.db.Scopes(database.OwnerScope(userID)).Where("id = ?", current).First(&f).Error
		if err != nil {
			return database.Translate(err)
		}
		if f.ParentID == nil {
			return nil
		}
		current = *f.ParentID
	}
	return nil
}

// Delete removes a folder, every descendant folder and all documents placed
// in any of them.
func (r *Repository) Delete(id, userID string) error {
	if _, err := r.GetForOwner(id, userID); err != nil {
		return err
	}
	return r.db.Transaction(func(tx *gorm.DB) error {
		ids, err := descendants(tx, id)
		if err != nil {
			return err
		}
		for _, model := range []any{&entities.Worksheet{}, &entities.Course{}, &entities.EBook{}} {
			if err := tx.Where("folder_id IN ?", ids).Delete(model).Error; err != nil {
				return fmt.Errorf("failed to delete folder contents: %w", err)
			}
		}
		return tx.Where("id IN ?", ids).Delete(&entities.Folder{}).Error
	})
}

// descendants returns rootID and the IDs of every folder below it.
func descendants(tx *gorm.DB, rootID string) ([]string, error) {
	all := []string{rootID}
	frontier := []string{rootID}
	for len(frontier) > 0 {
		var next []string
		if err := tx.Model(&entities.Folder{}).Where("parent_id IN ?", frontier).Pluck("id", &next).Error; err != nil {
			return nil, err
		}
		all = append(all, next...)
		frontier = next
	}
	return all, nil
}

func (r *Repository) withCounts(rows []entities.Folder) ([]Folder, error) {
	out := make([]Folder, len(rows))
	if len(rows) == 0 {
		return out, nil
	}
	ids := make([]string, len(rows))
	for i, f := range rows {
		ids[i] = f.ID
	}

	children, err := countBy(r.db.Model(&entities.Folder{}), "parent_id", ids)
	if err != nil {
		return nil, err
	}
	worksheets, err := countBy(r.db.Model(&entities.Worksheet{}), "folder_id", ids)
	if err != nil {
		return nil, err
	}

	for i, f := range rows {
		out[i] = Folder{
			Folder: f,
			Count:  Counts{Children: children[f.ID], Worksheets: worksheets[f.ID]},
		}
	}
	return out, nil
}

func countBy(q *gorm.DB, column string, ids []string) (map[string]int64, error) {
	var rows []struct {
		GroupID string
		Count   int64
	}
	err := q.Select(column+" AS group_id, COUNT(*) AS count").
		Where(column+" IN ?", ids).
		Group(column).
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	out := make(map[string]int64, len(rows))
	for _, row := range rows {
		out[row.GroupID] = row.Count
	}
	return out, nil
}
