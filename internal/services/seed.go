package services

import (
	"errors"

	"gorm.io/gorm"

	apperrors "paisa/internal/errors"
	"paisa/internal/logger"
	"paisa/internal/models"
)

type seedCategory struct {
	name     string
	catType  models.CategoryType
	icon     string
	color    string
	children []string
}

// defaultCategories is the starter set created on first run.
var defaultCategories = []seedCategory{
	{name: "Salary", catType: models.CategoryTypeIncome, icon: "briefcase", color: "#16A34A"},
	{name: "Interest", catType: models.CategoryTypeIncome, icon: "percent", color: "#0D9488"},
	{name: "Other Income", catType: models.CategoryTypeIncome, icon: "plus-circle", color: "#65A30D"},
	{name: "Food & Dining", catType: models.CategoryTypeExpense, icon: "utensils", color: "#DC2626",
		children: []string{"Groceries", "Restaurants", "Food Delivery"}},
	{name: "Transport", catType: models.CategoryTypeExpense, icon: "car", color: "#EA580C"},
	{name: "Shopping", catType: models.CategoryTypeExpense, icon: "shopping-bag", color: "#D97706"},
	{name: "Utilities", catType: models.CategoryTypeExpense, icon: "zap", color: "#CA8A04",
		children: []string{"Electricity", "Water", "Internet", "Mobile"}},
	{name: "Personal", catType: models.CategoryTypeExpense, icon: "user", color: "#9333EA",
		children: []string{"Health", "Education", "Entertainment"}},
	{name: "Rent", catType: models.CategoryTypeExpense, icon: "home", color: "#C026D3"},
	{name: "Other Expense", catType: models.CategoryTypeExpense, icon: "minus-circle", color: "#64748B"},
}

// SeedDefaults creates the default categories and the default cash account.
// Idempotent: existing rows are left alone, so it is safe to run on every
// startup.
func SeedDefaults(db *gorm.DB) error {
	for _, seed := range defaultCategories {
		parent, err := findOrCreateCategory(db, seed.name, seed.catType, seed.icon, seed.color, nil)
		if err != nil {
			return err
		}
		for _, childName := range seed.children {
			if _, err := findOrCreateCategory(db, childName, seed.catType, "", seed.color, &parent.ID); err != nil {
				return err
			}
		}
	}

	var cash models.Account
	err := db.Where("category = ? AND name = ?", models.AccountCategoryCash, DefaultCashAccountName).
		First(&cash).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		cash = models.Account{
			Name:        DefaultCashAccountName,
			Category:    models.AccountCategoryCash,
			Description: "Default cash account",
		}
		if err := db.Create(&cash).Error; err != nil {
			return apperrors.Wrap(apperrors.ErrInternalServer, err)
		}
	} else if err != nil {
		return apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	logger.Get().Info("Default categories and accounts seeded")
	return nil
}

func findOrCreateCategory(db *gorm.DB, name string, catType models.CategoryType, icon, color string, parentID *string) (*models.Category, error) {
	var category models.Category
	query := db.Where("name = ? AND type = ?", name, catType)
	if parentID == nil {
		query = query.Where("parent_id IS NULL")
	} else {
		query = query.Where("parent_id = ?", *parentID)
	}

	err := query.First(&category).Error
	if err == nil {
		return &category, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	category = models.Category{
		Name:     name,
		Type:     catType,
		Icon:     icon,
		Color:    color,
		ParentID: parentID,
	}
	if err := db.Create(&category).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return &category, nil
}
