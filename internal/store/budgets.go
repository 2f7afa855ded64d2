package store

import (
	"context"
	"errors"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"finance-tracker-go/internal/ledger"
	"finance-tracker-go/internal/models"
)

// SumExpenses implements ledger.SpendStore.
func (s *Store) SumExpenses(ctx context.Context, owner, category uint, p ledger.Period) (decimal.Decimal, error) {
	var sum decimal.Decimal
	err := s.conn(ctx).Model(&models.Transaction{}).
		Select("COALESCE(SUM(amount), 0)").
		Where("user_id = ? AND category_id = ? AND kind = ?", owner, category, models.KindExpense).
		Where("occurred_at >= ? AND occurred_at < ?", p.Start, p.End).
		Row().Scan(&sum)
	if err != nil {
		return decimal.Zero, wrap(err, "sum expenses")
	}
	// sqlite sums REAL values; amounts never carry more than AmountScale
	// places, so rounding there only drops float noise.
	return sum.Round(models.AmountScale), nil
}

// SetBudgetSpent implements ledger.SpendStore.
func (s *Store) SetBudgetSpent(ctx context.Context, owner, category uint, month, year int, spent decimal.Decimal) error {
	err := s.conn(ctx).Model(&models.Budget{}).
		Where("user_id = ? AND category_id = ? AND month = ? AND year = ?", owner, category, month, year).
		Update("spent", spent).Error
	return wrap(err, "budget")
}

// UpsertBudget inserts the budget for its (owner, category, month, year) key
// or, when one exists, replaces its limit. It reports whether a row was created.
func (s *Store) UpsertBudget(ctx context.Context, budget *models.Budget) (bool, error) {
	created := false
	err := s.conn(ctx).Transaction(func(tx *gorm.DB) error {
		var existing models.Budget
		err := tx.Where("user_id = ? AND category_id = ? AND month = ? AND year = ?",
			budget.UserID, budget.CategoryID, budget.Month, budget.Year).First(&existing).Error
		switch {
		case errors.Is(err, gorm.ErrRecordNotFound):
			created = true
			budget.Spent = decimal.Zero
			return wrap(tx.Omit("Category").Create(budget).Error, "budget")
		case err != nil:
			return wrap(err, "budget")
		}
		existing.LimitAmount = budget.LimitAmount
		if err := tx.Model(&existing).Update("limit_amount", budget.LimitAmount).Error; err != nil {
			return wrap(err, "budget")
		}
		*budget = existing
		return nil
	})
	return created, err
}

func (s *Store) BudgetByID(ctx context.Context, owner, id uint) (*models.Budget, error) {
	var budget models.Budget
	if err := s.conn(ctx).Preload("Category").Where("id = ? AND user_id = ?", id, owner).First(&budget).Error; err != nil {
		return nil, wrap(err, "budget")
	}
	return &budget, nil
}

// ListBudgets returns owner's budgets for one month, by category name.
func (s *Store) ListBudgets(ctx context.Context, owner uint, month, year int) ([]models.Budget, error) {
	budgets := []models.Budget{}
	err := s.conn(ctx).Preload("Category").
		Joins("JOIN categories ON categories.id = budgets.category_id").
		Where("budgets.user_id = ? AND budgets.month = ? AND budgets.year = ?", owner, month, year).
		Order("categories.name asc").
		Order("budgets.id asc").
		Find(&budgets).Error
	if err != nil {
		return nil, wrap(err, "budgets")
	}
	return budgets, nil
}

// BudgetHistory returns up to n of the category's budgets, newest first.
func (s *Store) BudgetHistory(ctx context.Context, owner, category uint, n int) ([]models.Budget, error) {
	budgets := []models.Budget{}
	err := s.conn(ctx).Preload("Category").
		Where("user_id = ? AND category_id = ?", owner, category).
		Order("year desc").Order("month desc").
		Limit(n).
		Find(&budgets).Error
	if err != nil {
		return nil, wrap(err, "budgets")
	}
	return budgets, nil
}

func (s *Store) UpdateBudgetLimit(ctx context.Context, budget *models.Budget, limit decimal.Decimal) error {
	if err := s.conn(ctx).Model(budget).Update("limit_amount", limit).Error; err != nil {
		return wrap(err, "budget")
	}
	budget.LimitAmount = limit
	return nil
}

func (s *Store) DeleteBudget(ctx context.Context, owner, id uint) error {
	res := s.conn(ctx).Where("id = ? AND user_id = ?", id, owner).Delete(&models.Budget{})
	if res.Error != nil {
		return wrap(res.Error, "budget")
	}
	if res.RowsAffected == 0 {
		return wrap(gorm.ErrRecordNotFound, "budget")
	}
	return nil
}

// BudgetTotals sums limits and spend of owner's budgets for one month.
func (s *Store) BudgetTotals(ctx context.Context, owner uint, month, year int) (limit, spent decimal.Decimal, err error) {
	err = s.conn(ctx).Model(&models.Budget{}).
		Select("COALESCE(SUM(limit_amount), 0), COALESCE(SUM(spent), 0)").
		Where("user_id = ? AND month = ? AND year = ?", owner, month, year).
		Row().Scan(&limit, &spent)
	if err != nil {
		return decimal.Zero, decimal.Zero, wrap(err, "budget totals")
	}
	return limit.Round(models.AmountScale), spent.Round(models.AmountScale), nil
}
