package store

import (
	"gorm.io/gorm"

	"github.com/justmeandopensource/cashio-api/internal/models"
)

// CategoryInput carries the fields for creating a category.
type CategoryInput struct {
	Name             string
	Type             models.CategoryType
	IsGroup          bool
	ParentCategoryID *uint
}

// CreateCategory creates a user-scoped category. A parent, when given,
// must be a group category of the same user.
func (s *Store) CreateCategory(userID uint, in CategoryInput) (*models.Category, error) {
	if in.Name == "" {
		return nil, validationf("category name is required")
	}
	if !in.Type.Valid() {
		return nil, validationf("invalid category type %q", in.Type)
	}

	var category *models.Category
	err := s.db.Transaction(func(tx *gorm.DB) error {
		var count int64
		if err := tx.Model(&models.Category{}).
			Where("user_id = ? AND name = ?", userID, in.Name).
			Count(&count).Error; err != nil {
			return err
		}
		if count > 0 {
			return validationf("category %q already exists", in.Name)
		}

		if in.ParentCategoryID != nil {
			var parent models.Category
			err := tx.Where("id = ? AND user_id = ?", *in.ParentCategoryID, userID).
				First(&parent).Error
			if isNotFound(err) {
				return validationf("parent category must exist and belong to the user")
			}
			if err != nil {
				return err
			}
			if !parent.IsGroup {
				return validationf("parent category must be a group category")
			}
			if parent.Type != in.Type {
				return validationf("parent category type %q does not match %q", parent.Type, in.Type)
			}
		}

		category = &models.Category{
			UserID:           userID,
			ParentCategoryID: in.ParentCategoryID,
			Name:             in.Name,
			Type:             in.Type,
			IsGroup:          in.IsGroup,
		}
		return tx.Create(category).Error
	})
	if err != nil {
		return nil, err
	}
	return category, nil
}

// ListCategories returns the user's categories, optionally filtered by
// type and with group categories excluded.
func (s *Store) ListCategories(userID uint, categoryType models.CategoryType, ignoreGroup bool) ([]models.Category, error) {
	q := s.db.Where("user_id = ?", userID)
	if categoryType != "" {
		q = q.Where("type = ?", categoryType)
	}
	if ignoreGroup {
		q = q.Where("is_group = ?", false)
	}
	var categories []models.Category
	if err := q.Order("name asc").Find(&categories).Error; err != nil {
		return nil, err
	}
	return categories, nil
}

// categoryOfType fetches a user's category enforcing its type, used for
// charge-category validation on investment transactions.
func categoryOfType(tx *gorm.DB, userID, categoryID uint, want models.CategoryType) (*models.Category, error) {
	var category models.Category
	err := tx.Where("id = ? AND user_id = ?", categoryID, userID).First(&category).Error
	if isNotFound(err) {
		return nil, validationf("invalid %s category", want)
	}
	if err != nil {
		return nil, err
	}
	if category.Type != want {
		return nil, validationf("category %q is not of type %s", category.Name, want)
	}
	return &category, nil
}
