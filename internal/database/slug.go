package database

import (
	"errors"
	"fmt"

	"gorm.io/gorm"

	"github.com/edoomio/studio/internal/utils"
)

const slugAttempts = 5

// ErrSlugExhausted means no free slug was found after several attempts.
var ErrSlugExhausted = errors.New("could not generate a unique slug")

// UniqueSlug generates a random slug that no row of model's table uses yet.
func UniqueSlug(db *gorm.DB, model any) (string, error) {
	for i := 0; i < slugAttempts; i++ {
		slug, err := utils.NewSlug()
		if err != nil {
			return "", fmt.Errorf("generate slug: %w", err)
		}
		var count int64
		if err := db.Model(model).Where("slug = ?", slug).Count(&count).Error; err != nil {
			return "", err
		}
		if count == 0 {
			return slug, nil
		}
	}
	return "", ErrSlugExhausted
}
