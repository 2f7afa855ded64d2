package service

import (
	"context"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"

	"finance-tracker-go/internal/ledger"
	"finance-tracker-go/internal/models"
)

const (
	DefaultHistoryMonths = 6
	MaxHistoryMonths     = 36

	warningPercent = 80
	dangerPercent  = 100
)

type BudgetInput struct {
	CategoryID uint
	Month      int
	Year       int
	Limit      decimal.Decimal
}

type Alert struct {
	Level   string `json:"type"`
	Message string `json:"message"`
}

// BudgetStatus is a budget with its utilization.
type BudgetStatus struct {
	models.Budget
	Percentage int64  `json:"percentage"`
	Alert      *Alert `json:"alert"`
}

func statusOf(b models.Budget) BudgetStatus {
	st := BudgetStatus{Budget: b, Percentage: percentOf(b.Spent, b.LimitAmount)}
	switch {
	case st.Percentage >= dangerPercent:
		st.Alert = &Alert{Level: "danger", Message: "Budget exceeded!"}
	case st.Percentage >= warningPercent:
		st.Alert = &Alert{Level: "warning", Message: "Approaching budget limit"}
	}
	return st
}

func validYear(year int) error {
	if year < 1970 || year > 9999 {
		return invalid("year %d is out of range", year)
	}
	return nil
}

func (s *Service) ListBudgets(ctx context.Context, owner uint, month, year int) ([]BudgetStatus, error) {
	if err := ledger.ValidateMonth(month); err != nil {
		return nil, err
	}
	budgets, err := s.store.ListBudgets(ctx, owner, month, year)
	if err != nil {
		return nil, err
	}
	out := make([]BudgetStatus, 0, len(budgets))
	for _, b := range budgets {
		out = append(out, statusOf(b))
	}
	return out, nil
}

func (s *Service) Budget(ctx context.Context, owner, id uint) (*BudgetStatus, error) {
	b, err := s.store.BudgetByID(ctx, owner, id)
	if err != nil {
		return nil, err
	}
	st := statusOf(*b)
	return &st, nil
}

// SetBudget creates the budget for (category, month, year) or replaces the
// limit of the existing one, then reconciles its spend.
func (s *Service) SetBudget(ctx context.Context, owner uint, in BudgetInput) (*BudgetStatus, bool, error) {
	if err := ledger.ValidateMonth(in.Month); err != nil {
		return nil, false, err
	}
	if err := validYear(in.Year); err != nil {
		return nil, false, err
	}
	limit, err := positiveMoney("limit", in.Limit)
	if err != nil {
		return nil, false, err
	}
	category, err := s.categoryFor(ctx, owner, in.CategoryID, models.KindExpense)
	if err != nil {
		return nil, false, err
	}

	budget := &models.Budget{UserID: owner, CategoryID: category.ID, Month: in.Month, Year: in.Year, LimitAmount: limit}
	created, err := s.store.UpsertBudget(ctx, budget)
	if err != nil {
		return nil, false, err
	}
	spent, err := s.reconciler.Reconcile(ctx, owner, category.ID, in.Month, in.Year)
	if err != nil {
		return nil, false, err
	}
	budget.Spent = spent
	budget.Category = category

	s.log.WithFields(logrus.Fields{"user_id": owner, "budget_id": budget.ID, "created": created}).Info("budget saved")
	st := statusOf(*budget)
	return &st, created, nil
}

func (s *Service) UpdateBudgetLimit(ctx context.Context, owner, id uint, limit decimal.Decimal) (*BudgetStatus, error) {
	limit, err := positiveMoney("limit", limit)
	if err != nil {
		return nil, err
	}
	budget, err := s.store.BudgetByID(ctx, owner, id)
	if err != nil {
		return nil, err
	}
	if err := s.store.UpdateBudgetLimit(ctx, budget, limit); err != nil {
		return nil, err
	}
	st := statusOf(*budget)
	return &st, nil
}

func (s *Service) DeleteBudget(ctx context.Context, owner, id uint) error {
	return s.store.DeleteBudget(ctx, owner, id)
}

// BudgetHistory returns the category's most recent budgets, newest first.
func (s *Service) BudgetHistory(ctx context.Context, owner, categoryID uint, months int) ([]BudgetStatus, error) {
	if months <= 0 {
		months = DefaultHistoryMonths
	}
	if months > MaxHistoryMonths {
		months = MaxHistoryMonths
	}
	if _, err := s.store.CategoryByID(ctx, owner, categoryID); err != nil {
		return nil, err
	}
	budgets, err := s.store.BudgetHistory(ctx, owner, categoryID, months)
	if err != nil {
		return nil, err
	}
	out := make([]BudgetStatus, 0, len(budgets))
	for _, b := range budgets {
		out = append(out, statusOf(b))
	}
	return out, nil
}
