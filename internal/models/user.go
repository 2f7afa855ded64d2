package models

import (
	"time"

	"github.com/shopspring/decimal"
)

type FinancialGoals struct {
	MonthlySavings decimal.Decimal `gorm:"type:numeric(19,4);default:0" json:"monthly_savings"`
}

type User struct {
	ID             uint           `gorm:"primaryKey" json:"id"`
	UUID           string         `gorm:"uniqueIndex;size:36" json:"uuid"` // Public ID, exposed instead of the row ID in logs
	Name           string         `gorm:"size:100" json:"name"`
	Email          string         `gorm:"uniqueIndex;size:255" json:"email"`
	PasswordHash   string         `json:"-"` // Bcrypt hash, hidden from JSON
	Currency       string         `gorm:"size:3" json:"currency"`
	FinancialGoals FinancialGoals `gorm:"embedded;embeddedPrefix:goal_" json:"financial_goals"`
	RefreshToken   *string        `json:"-"` // Single active session; nil after logout
	CreatedAt      time.Time      `json:"created_at"`
	UpdatedAt      time.Time      `json:"updated_at"`
}
