package models

// CategoryType classifies a category (and by extension a transaction)
// as income or expense.
type CategoryType string

const (
	CategoryTypeIncome  CategoryType = "income"
	CategoryTypeExpense CategoryType = "expense"
)

// Valid reports whether t is one of the known category types.
func (t CategoryType) Valid() bool {
	return t == CategoryTypeIncome || t == CategoryTypeExpense
}

// Category represents an income/expense category. Categories belong to a
// user (not a ledger) and form a tree; group categories are non-leaf.
type Category struct {
	ID               uint         `gorm:"primaryKey"`
	UserID           uint         `gorm:"index;not null"`
	ParentCategoryID *uint        `gorm:"index;uniqueIndex:uq_parent_category_name"`
	Name             string       `gorm:"size:100;not null;uniqueIndex:uq_parent_category_name"`
	Type             CategoryType `gorm:"size:16;index;not null"`
	IsGroup          bool         `gorm:"not null;default:false"`

	ParentCategory  *Category   `gorm:"foreignKey:ParentCategoryID"`
	ChildCategories []*Category `gorm:"foreignKey:ParentCategoryID"`
}
