package ledger

import (
	"context"
	"errors"
	"time"

	"github.com/shopspring/decimal"

	"finance-tracker-go/internal/models"
)

var errBoom = errors.New("boom")

// memLedger keeps transactions, budgets and templates in memory.
type memLedger struct {
	txns      map[uint]*models.Transaction
	budgets   map[Location]decimal.Decimal
	templates []models.RecurringTemplate
	nextID    uint

	failSum         bool
	failMaterialize map[uint]bool
}

func newMemLedger() *memLedger {
	return &memLedger{
		txns:            map[uint]*models.Transaction{},
		budgets:         map[Location]decimal.Decimal{},
		failMaterialize: map[uint]bool{},
	}
}

func (m *memLedger) addBudget(owner, category uint, month, year int) {
	m.budgets[Location{owner, category, month, year}] = decimal.Zero
}

func (m *memLedger) spent(owner, category uint, month, year int) decimal.Decimal {
	return m.budgets[Location{owner, category, month, year}]
}

func (m *memLedger) put(t models.Transaction) *models.Transaction {
	m.nextID++
	t.ID = m.nextID
	m.txns[t.ID] = &t
	return &t
}

func (m *memLedger) SumExpenses(_ context.Context, owner, category uint, p Period) (decimal.Decimal, error) {
	if m.failSum {
		return decimal.Zero, errBoom
	}
	sum := decimal.Zero
	for _, t := range m.txns {
		if t.UserID == owner && t.CategoryID == category && t.IsExpense() && p.Contains(t.OccurredAt) {
			sum = sum.Add(t.Amount)
		}
	}
	return sum, nil
}

func (m *memLedger) SetBudgetSpent(_ context.Context, owner, category uint, month, year int, spent decimal.Decimal) error {
	loc := Location{owner, category, month, year}
	if _, ok := m.budgets[loc]; ok {
		m.budgets[loc] = spent
	}
	return nil
}

func (m *memLedger) ListEnabledTemplates(_ context.Context, owner uint) ([]models.RecurringTemplate, error) {
	var out []models.RecurringTemplate
	for _, t := range m.templates {
		if t.UserID == owner && t.Enabled {
			out = append(out, t)
		}
	}
	return out, nil
}

func (m *memLedger) Materialize(_ context.Context, tmpl *models.RecurringTemplate, txn *models.Transaction, asOf time.Time) (bool, error) {
	if m.failMaterialize[tmpl.ID] {
		return false, errBoom
	}
	for i := range m.templates {
		stored := &m.templates[i]
		if stored.ID != tmpl.ID {
			continue
		}
		if last := stored.LastGeneratedAt; last != nil && last.Year() == asOf.Year() && last.Month() == asOf.Month() {
			return false, nil
		}
		stamp := asOf
		stored.LastGeneratedAt = &stamp
		*txn = *m.put(*txn)
		return true, nil
	}
	return false, nil
}

func day(year int, month time.Month, d int) time.Time {
	return time.Date(year, month, d, 12, 0, 0, 0, time.UTC)
}

func amount(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}
