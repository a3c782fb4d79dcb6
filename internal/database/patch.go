package database

import "gorm.io/gorm"

// Patch is a set of column updates. Only the columns present are written.
type Patch map[string]any

// Set records a column update and returns the patch for chaining.
func (p Patch) Set(column string, value any) Patch {
	p[column] = value
	return p
}

// Has reports whether column is part of the patch.
func (p Patch) Has(column string) bool {
	_, ok := p[column]
	return ok
}

// Empty reports whether nothing would be written.
func (p Patch) Empty() bool {
	return len(p) == 0
}

// UpdateOwned writes patch to the row of model's table with the given id owned
// by userID. It returns ErrNotFound when no such row exists.
func UpdateOwned(db *gorm.DB, model any, id, userID string, patch Patch) error {
	if patch.Empty() {
		return nil
	}
	result := db.Model(model).
		Scopes(OwnerScope(userID)).
		Where("id = ?", id).
		Updates(map[string]any(patch))
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// DeleteOwned hard-deletes the row with the given id owned by userID.
func DeleteOwned(db *gorm.DB, model any, id, userID string) error {
	result := db.Scopes(OwnerScope(userID)).Where("id = ?", id).Delete(model)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}
