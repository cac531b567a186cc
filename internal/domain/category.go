package domain

import "time"

// ============================================================
// Categories (shared catalog)
// ============================================================

// CategoryType says which transaction direction a catalog entry applies to.
type CategoryType string

const (
	CategoryIncome  CategoryType = "income"
	CategoryExpense CategoryType = "expense"
	CategoryBoth    CategoryType = "both"
)

// ValidCategoryType reports whether t is income, expense or both.
func ValidCategoryType(t CategoryType) bool {
	switch t {
	case CategoryIncome, CategoryExpense, CategoryBoth:
		return true
	}
	return false
}

// Category is a catalog entry shared by all users. Transactions store the
// category name as free text, so deleting a catalog entry never invalidates
// existing transactions.
type Category struct {
	ID        string       `json:"id"`
	Name      string       `json:"name"`
	Type      CategoryType `json:"type"`
	Icon      string       `json:"icon"`
	Color     string       `json:"color"`
	CreatedAt time.Time    `json:"created_at"`
}

// CategoryRequest is the payload for creating or updating a catalog entry.
type CategoryRequest struct {
	Name  string       `json:"name"`
	Type  CategoryType `json:"type"`
	Icon  string       `json:"icon"`
	Color string       `json:"color"`
}
