package models

import (
	"time"

	"github.com/shopspring/decimal"
)

const MaxNotesLength = 500

type Transaction struct {
	ID         uint            `gorm:"primaryKey" json:"id"`
	UserID     uint            `gorm:"index:idx_txn_owner_date,priority:1;not null" json:"user_id"`
	Amount     decimal.Decimal `gorm:"type:numeric(19,4);not null" json:"amount"`
	Kind       string          `gorm:"size:10;not null" json:"type"`
	CategoryID uint            `gorm:"index;not null" json:"category_id"`
	Category   *Category       `gorm:"foreignKey:CategoryID" json:"category,omitempty"`
	OccurredAt time.Time       `gorm:"index:idx_txn_owner_date,priority:2;not null" json:"date"`
	Notes      string          `gorm:"size:500" json:"notes"`
	CreatedAt  time.Time       `json:"created_at"`
	UpdatedAt  time.Time       `json:"updated_at"`
}

// Month and Year locate the transaction in the UTC calendar.
func (t *Transaction) Month() int { return int(t.OccurredAt.UTC().Month()) }
func (t *Transaction) Year() int  { return t.OccurredAt.UTC().Year() }

func (t *Transaction) IsExpense() bool { return t.Kind == KindExpense }
