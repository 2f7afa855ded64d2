// Package report renders transaction exports.
package report

import (
	"time"

	"github.com/shopspring/decimal"

	"finance-tracker-go/internal/models"
)

type Row struct {
	Date     time.Time       `json:"date"`
	Kind     string          `json:"type"`
	Category string          `json:"category"`
	Amount   decimal.Decimal `json:"amount"`
	Notes    string          `json:"notes"`
}

type Summary struct {
	TotalIncome  decimal.Decimal `json:"total_income"`
	TotalExpense decimal.Decimal `json:"total_expense"`
	Balance      decimal.Decimal `json:"balance"`
}

type Report struct {
	Rows    []Row   `json:"rows"`
	Summary Summary `json:"summary"`
}

// Build flattens transactions into rows and totals them. Transactions are
// expected to carry their Category.
func Build(txns []models.Transaction) Report {
	rows := make([]Row, 0, len(txns))
	for _, t := range txns {
		name := ""
		if t.Category != nil {
			name = t.Category.Name
		}
		rows = append(rows, Row{
			Date:     t.OccurredAt.UTC(),
			Kind:     t.Kind,
			Category: name,
			Amount:   t.Amount,
			Notes:    t.Notes,
		})
	}
	return Report{Rows: rows, Summary: Summarize(rows)}
}

func Summarize(rows []Row) Summary {
	var s Summary
	for _, r := range rows {
		switch r.Kind {
		case models.KindIncome:
			s.TotalIncome = s.TotalIncome.Add(r.Amount)
		case models.KindExpense:
			s.TotalExpense = s.TotalExpense.Add(r.Amount)
		}
	}
	s.Balance = s.TotalIncome.Sub(s.TotalExpense)
	return s
}

// formatAmount prints at least two decimal places and never drops precision.
func formatAmount(d decimal.Decimal) string {
	if d.Exponent() < -2 && !d.Equal(d.Truncate(2)) {
		return d.String()
	}
	return d.StringFixed(2)
}
