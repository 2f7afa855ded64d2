package models

import "time"

const (
	DefaultCategoryIcon  = "📁"
	DefaultCategoryColor = "#6366f1"
)

type Category struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	UserID    *uint     `gorm:"index:idx_category_owner_name,priority:1" json:"user_id"` // nil = shared system category
	Name      string    `gorm:"size:50;not null;index:idx_category_owner_name,priority:2" json:"name"`
	Kind      string    `gorm:"size:10;not null;index:idx_category_owner_name,priority:3" json:"type"`
	Icon      string    `gorm:"size:16" json:"icon"`
	Color     string    `gorm:"size:7" json:"color"`
	IsDefault bool      `json:"is_default"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// DefaultCategory is one of the categories seeded for every new user.
type DefaultCategory struct {
	Name  string
	Kind  string
	Icon  string
	Color string
}

var DefaultCategories = []DefaultCategory{
	{Name: "Salary", Kind: KindIncome, Icon: "💰", Color: "#10b981"},
	{Name: "Freelance", Kind: KindIncome, Icon: "💼", Color: "#3b82f6"},
	{Name: "Investment", Kind: KindIncome, Icon: "📈", Color: "#8b5cf6"},
	{Name: "Food & Dining", Kind: KindExpense, Icon: "🍔", Color: "#ef4444"},
	{Name: "Transportation", Kind: KindExpense, Icon: "🚗", Color: "#f59e0b"},
	{Name: "Shopping", Kind: KindExpense, Icon: "🛍️", Color: "#ec4899"},
	{Name: "Entertainment", Kind: KindExpense, Icon: "🎮", Color: "#6366f1"},
	{Name: "Bills & Utilities", Kind: KindExpense, Icon: "📄", Color: "#14b8a6"},
	{Name: "Healthcare", Kind: KindExpense, Icon: "🏥", Color: "#f43f5e"},
	{Name: "Education", Kind: KindExpense, Icon: "📚", Color: "#0ea5e9"},
}

// VisibleTo reports whether owner may reference the category.
func (c *Category) VisibleTo(owner uint) bool {
	return c.UserID == nil || *c.UserID == owner
}
