package ledger

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"

	"finance-tracker-go/internal/models"
)

// SpendStore is the slice of the ledger store the reconciler needs.
type SpendStore interface {
	// SumExpenses totals expense amounts for owner/category inside p.
	SumExpenses(ctx context.Context, owner, category uint, p Period) (decimal.Decimal, error)
	// SetBudgetSpent writes spent into the matching budget; a missing budget is not an error.
	SetBudgetSpent(ctx context.Context, owner, category uint, month, year int, spent decimal.Decimal) error
}

// Location identifies one budget cell.
type Location struct {
	Owner    uint
	Category uint
	Month    int
	Year     int
}

func LocationOf(t *models.Transaction) Location {
	return Location{Owner: t.UserID, Category: t.CategoryID, Month: t.Month(), Year: t.Year()}
}

type Reconciler struct {
	store SpendStore
}

func NewReconciler(store SpendStore) *Reconciler {
	return &Reconciler{store: store}
}

// Reconcile recomputes spent for one budget cell and returns the new total.
func (r *Reconciler) Reconcile(ctx context.Context, owner, category uint, month, year int) (decimal.Decimal, error) {
	p, err := MonthPeriod(month, year)
	if err != nil {
		return decimal.Zero, err
	}
	spent, err := r.store.SumExpenses(ctx, owner, category, p)
	if err != nil {
		return decimal.Zero, fmt.Errorf("%w: sum expenses: %v", ErrStore, err)
	}
	if err := r.store.SetBudgetSpent(ctx, owner, category, month, year, spent); err != nil {
		return decimal.Zero, fmt.Errorf("%w: update budget: %v", ErrStore, err)
	}
	return spent, nil
}

// ReconcileChange reconciles every cell touched by a mutation. before is nil
// for a create, after is nil for a delete.
func (r *Reconciler) ReconcileChange(ctx context.Context, before, after *models.Transaction) error {
	for _, loc := range AffectedLocations(before, after) {
		if _, err := r.Reconcile(ctx, loc.Owner, loc.Category, loc.Month, loc.Year); err != nil {
			return err
		}
	}
	return nil
}

// AffectedLocations lists the budget cells whose spend may have changed.
// Income transactions never count toward a budget.
func AffectedLocations(before, after *models.Transaction) []Location {
	var locs []Location
	if before != nil && before.IsExpense() {
		locs = append(locs, LocationOf(before))
	}
	if after != nil && after.IsExpense() {
		loc := LocationOf(after)
		if len(locs) == 0 || locs[0] != loc {
			locs = append(locs, loc)
		}
	}
	return locs
}
