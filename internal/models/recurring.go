package models

import (
	"time"

	"github.com/shopspring/decimal"
)

type RecurringTemplate struct {
	ID              uint            `gorm:"primaryKey" json:"id"`
	UserID          uint            `gorm:"index;not null" json:"user_id"`
	Amount          decimal.Decimal `gorm:"type:numeric(19,4);not null" json:"amount"`
	Kind            string          `gorm:"size:10;not null" json:"type"`
	CategoryID      uint            `gorm:"index;not null" json:"category_id"`
	Category        *Category       `gorm:"foreignKey:CategoryID" json:"category,omitempty"`
	Frequency       string          `gorm:"size:10;not null" json:"frequency"`
	DayOfMonth      int             `gorm:"not null" json:"day_of_month"`
	Notes           string          `gorm:"size:500" json:"notes"`
	Enabled         bool            `gorm:"not null" json:"is_active"`
	LastGeneratedAt *time.Time      `json:"last_generated"`
	CreatedAt       time.Time       `json:"created_at"`
	UpdatedAt       time.Time       `json:"updated_at"`
}

// All persisted models, in dependency order.
func All() []any {
	return []any{&User{}, &Category{}, &Transaction{}, &Budget{}, &RecurringTemplate{}}
}
