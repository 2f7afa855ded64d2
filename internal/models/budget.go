package models

import (
	"time"

	"github.com/shopspring/decimal"
)

type Budget struct {
	ID          uint            `gorm:"primaryKey" json:"id"`
	UserID      uint            `gorm:"uniqueIndex:idx_budget_period,priority:1;not null" json:"user_id"`
	CategoryID  uint            `gorm:"uniqueIndex:idx_budget_period,priority:2;not null" json:"category_id"`
	Category    *Category       `gorm:"foreignKey:CategoryID" json:"category,omitempty"`
	Month       int             `gorm:"uniqueIndex:idx_budget_period,priority:3;not null" json:"month"`
	Year        int             `gorm:"uniqueIndex:idx_budget_period,priority:4;not null" json:"year"`
	LimitAmount decimal.Decimal `gorm:"type:numeric(19,4);not null" json:"limit"`
	Spent       decimal.Decimal `gorm:"type:numeric(19,4);not null;default:0" json:"spent"` // written only by reconciliation
	CreatedAt   time.Time       `json:"created_at"`
	UpdatedAt   time.Time       `json:"updated_at"`
}
