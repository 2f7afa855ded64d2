package ledger

import (
	"context"
	"fmt"
	"strings"
	"time"

	"finance-tracker-go/internal/models"
)

const autoGeneratedSuffix = " (Auto-generated)"

// TemplateStore is the slice of the ledger store the generator needs.
type TemplateStore interface {
	ListEnabledTemplates(ctx context.Context, owner uint) ([]models.RecurringTemplate, error)
	// Materialize inserts txn and stamps the template's last generation with
	// asOf in one atomic step. It returns false, without writing, when the
	// template was already generated in asOf's month.
	Materialize(ctx context.Context, tmpl *models.RecurringTemplate, txn *models.Transaction, asOf time.Time) (bool, error)
}

type Generator struct {
	store TemplateStore
}

func NewGenerator(store TemplateStore) *Generator {
	return &Generator{store: store}
}

// IsDue reports whether a monthly template still owes a transaction for asOf's month.
func IsDue(tmpl *models.RecurringTemplate, asOf time.Time) bool {
	asOf = asOf.UTC()
	if tmpl.LastGeneratedAt != nil {
		last := tmpl.LastGeneratedAt.UTC()
		if last.Year() == asOf.Year() && last.Month() == asOf.Month() {
			return false
		}
	}
	return asOf.Day() >= tmpl.DayOfMonth
}

// Instantiate builds the transaction a template produces for asOf's month.
func Instantiate(tmpl *models.RecurringTemplate, asOf time.Time) models.Transaction {
	asOf = asOf.UTC()
	return models.Transaction{
		UserID:     tmpl.UserID,
		Amount:     tmpl.Amount,
		Kind:       tmpl.Kind,
		CategoryID: tmpl.CategoryID,
		OccurredAt: time.Date(asOf.Year(), asOf.Month(), tmpl.DayOfMonth, 0, 0, 0, 0, time.UTC),
		Notes:      strings.TrimSpace(tmpl.Notes + autoGeneratedSuffix),
	}
}

// GenerateDue materializes every due template of owner. On failure it returns
// what was generated before the failing template along with the error; earlier
// writes are kept.
func (g *Generator) GenerateDue(ctx context.Context, owner uint, asOf time.Time) ([]models.Transaction, error) {
	templates, err := g.store.ListEnabledTemplates(ctx, owner)
	if err != nil {
		return nil, fmt.Errorf("%w: list templates: %v", ErrStore, err)
	}

	generated := []models.Transaction{}
	for i := range templates {
		tmpl := &templates[i]
		if !tmpl.Enabled || !IsDue(tmpl, asOf) {
			continue
		}
		txn := Instantiate(tmpl, asOf)
		ok, err := g.store.Materialize(ctx, tmpl, &txn, asOf.UTC())
		if err != nil {
			return generated, fmt.Errorf("%w: materialize template %d: %v", ErrStore, tmpl.ID, err)
		}
		if !ok {
			continue
		}
		stamp := asOf.UTC()
		tmpl.LastGeneratedAt = &stamp
		generated = append(generated, txn)
	}
	return generated, nil
}
