package store

import (
	"strings"

	"gorm.io/gorm"

	"github.com/justmeandopensource/cashio-api/internal/models"
)

// ListTags returns the user's tags ordered by name.
func (s *Store) ListTags(userID uint) ([]models.Tag, error) {
	var tags []models.Tag
	err := s.db.Where("user_id = ?", userID).Order("name asc").Find(&tags).Error
	if err != nil {
		return nil, err
	}
	return tags, nil
}

// findOrCreateTags resolves tag names to user-scoped tags, creating the
// ones that do not exist yet.
func findOrCreateTags(tx *gorm.DB, userID uint, names []string) ([]*models.Tag, error) {
	tags := make([]*models.Tag, 0, len(names))
	seen := make(map[string]bool, len(names))
	for _, name := range names {
		name = strings.TrimSpace(name)
		if name == "" || seen[name] {
			continue
		}
		seen[name] = true

		var tag models.Tag
		err := tx.Where("user_id = ? AND name = ?", userID, name).First(&tag).Error
		if isNotFound(err) {
			tag = models.Tag{UserID: userID, Name: name}
			err = tx.Create(&tag).Error
		}
		if err != nil {
			return nil, err
		}
		tags = append(tags, &tag)
	}
	return tags, nil
}
