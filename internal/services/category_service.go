package services

import (
	"errors"

	"gorm.io/gorm"

	apperrors "paisa/internal/errors"
	"paisa/internal/models"
)

// categoryService handles category-related business logic.
type categoryService struct {
	db *gorm.DB
}

// NewCategoryService creates a new CategoryServicer.
func NewCategoryService(db *gorm.DB) CategoryServicer {
	return &categoryService{db: db}
}

// CreateCategory creates a category. Subcategories must share their parent's
// type, and the hierarchy is one level deep.
func (s *categoryService) CreateCategory(name string, categoryType models.CategoryType, icon, color string, parentID *string) (*models.Category, error) {
	if name == "" {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "category name is required")
	}

	if parentID != nil {
		parent, err := s.GetCategoryByID(*parentID)
		if err != nil {
			return nil, err
		}
		if parent.ParentID != nil {
			return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "subcategories cannot have children")
		}
		if parent.Type != categoryType {
			return nil, apperrors.ErrCategoryTypeMismatch
		}
	}

	category := &models.Category{
		Name:     name,
		Type:     categoryType,
		Icon:     icon,
		Color:    color,
		ParentID: parentID,
	}

	if err := s.db.Create(category).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	return category, nil
}

// GetCategories returns a flat list, optionally filtered by type, ordered
// by name.
func (s *categoryService) GetCategories(categoryType *models.CategoryType) ([]models.Category, error) {
	query := s.db.Model(&models.Category{})
	if categoryType != nil {
		query = query.Where("type = ?", *categoryType)
	}

	var categories []models.Category
	if err := query.Order("name ASC").Find(&categories).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return categories, nil
}

// GetCategoryTree returns top-level categories with their children preloaded.
func (s *categoryService) GetCategoryTree(categoryType *models.CategoryType) ([]models.Category, error) {
	query := s.db.Model(&models.Category{}).Where("parent_id IS NULL")
	if categoryType != nil {
		query = query.Where("type = ?", *categoryType)
	}

	var categories []models.Category
	if err := query.Preload("Children", func(db *gorm.DB) *gorm.DB {
		return db.Order("name ASC")
	}).Order("name ASC").Find(&categories).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return categories, nil
}

// GetCategoryByID retrieves a single category.
func (s *categoryService) GetCategoryByID(id string) (*models.Category, error) {
	var category models.Category
	if err := s.db.Where("id = ?", id).First(&category).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrCategoryNotFound
		}
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return &category, nil
}

// UpdateCategory updates the editable fields. Passing a parentID re-parents
// the category; type changes are not allowed.
func (s *categoryService) UpdateCategory(id string, name, icon, color *string, parentID *string) (*models.Category, error) {
	category, err := s.GetCategoryByID(id)
	if err != nil {
		return nil, err
	}

	updates := map[string]interface{}{}
	if name != nil {
		if *name == "" {
			return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "category name cannot be empty")
		}
		updates["name"] = *name
	}
	if icon != nil {
		updates["icon"] = *icon
	}
	if color != nil {
		updates["color"] = *color
	}
	if parentID != nil {
		if *parentID == id {
			return nil, apperrors.ErrSelfParentCategory
		}
		var children int64
		if err := s.db.Model(&models.Category{}).Where("parent_id = ?", id).Count(&children).Error; err != nil {
			return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
		}
		if children > 0 {
			return nil, apperrors.ErrCategoryHasChildren
		}
		parent, err := s.GetCategoryByID(*parentID)
		if err != nil {
			return nil, err
		}
		if parent.ParentID != nil {
			return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "subcategories cannot have children")
		}
		if parent.Type != category.Type {
			return nil, apperrors.ErrCategoryTypeMismatch
		}
		updates["parent_id"] = *parentID
	}

	if len(updates) > 0 {
		if err := s.db.Model(category).Updates(updates).Error; err != nil {
			return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
		}
	}

	return category, nil
}

// DeleteCategory soft-deletes a category. Categories used by transactions or
// tag patterns, or with children, are protected.
func (s *categoryService) DeleteCategory(id string) error {
	category, err := s.GetCategoryByID(id)
	if err != nil {
		return err
	}

	var children int64
	if err := s.db.Model(&models.Category{}).Where("parent_id = ?", id).Count(&children).Error; err != nil {
		return apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	if children > 0 {
		return apperrors.ErrCategoryHasChildren
	}

	var used int64
	if err := s.db.Model(&models.Transaction{}).Where("category_id = ?", id).Count(&used).Error; err != nil {
		return apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	if used > 0 {
		return apperrors.ErrCategoryInUse
	}

	return s.db.Transaction(func(tx *gorm.DB) error {
		// Learned patterns pointing at the category go with it.
		if err := tx.Where("category_id = ?", id).Delete(&models.TagPattern{}).Error; err != nil {
			return apperrors.Wrap(apperrors.ErrInternalServer, err)
		}
		if err := tx.Delete(category).Error; err != nil {
			return apperrors.Wrap(apperrors.ErrInternalServer, err)
		}
		return nil
	})
}

// DisplayName renders a category as "Parent > Child" for reports and exports.
func (s *categoryService) DisplayName(id string) (string, error) {
	category, err := s.GetCategoryByID(id)
	if err != nil {
		return "", err
	}
	if category.ParentID == nil {
		return category.Name, nil
	}
	parent, err := s.GetCategoryByID(*category.ParentID)
	if err != nil {
		return category.Name, nil
	}
	return parent.Name + " > " + category.Name, nil
}
