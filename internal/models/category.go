package models

// CategoryType represents the type of category
type CategoryType string

const (
	CategoryTypeIncome  CategoryType = "income"
	CategoryTypeExpense CategoryType = "expense"
)

// Category is an income/expense classification. Hierarchy is one level deep:
// a category either has a parent or is a parent, never both.
type Category struct {
	Base
	Name     string       `gorm:"not null" json:"name"`
	Type     CategoryType `gorm:"not null" json:"type"`
	Icon     string       `json:"icon"`
	Color    string       `json:"color"`
	ParentID *string      `gorm:"type:uuid" json:"parent_id,omitempty"`

	Parent   *Category  `gorm:"foreignKey:ParentID" json:"parent,omitempty"`
	Children []Category `gorm:"foreignKey:ParentID" json:"children,omitempty"`
}
