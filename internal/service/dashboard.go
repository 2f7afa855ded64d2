package service

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
	"golang.org/x/sync/errgroup"

	"finance-tracker-go/internal/ledger"
	"finance-tracker-go/internal/models"
)

const recentTransactions = 5

type Dashboard struct {
	Month              int                  `json:"month"`
	Year               int                  `json:"year"`
	Income             decimal.Decimal      `json:"income"`
	Expenses           decimal.Decimal      `json:"expenses"`
	Balance            decimal.Decimal      `json:"balance"`
	SavingsGoal        decimal.Decimal      `json:"savings_goal"`
	SavingsPercentage  int64                `json:"savings_percentage"`
	BudgetUtilization  int64                `json:"budget_utilization"`
	RecentTransactions []models.Transaction `json:"recent_transactions"`
}

// Dashboard summarizes the month containing now. The independent reads run
// concurrently.
func (s *Service) Dashboard(ctx context.Context, owner uint, now time.Time) (*Dashboard, error) {
	now = now.UTC()
	month, year := int(now.Month()), now.Year()
	p, err := ledger.MonthPeriod(month, year)
	if err != nil {
		return nil, err
	}

	var (
		user                     *models.User
		totals                   []models.KindTotal
		budgetLimit, budgetSpent decimal.Decimal
		recent                   []models.Transaction
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		user, err = s.store.UserByID(gctx, owner)
		return err
	})
	g.Go(func() error {
		var err error
		totals, err = s.store.KindTotals(gctx, owner, p)
		return err
	})
	g.Go(func() error {
		var err error
		budgetLimit, budgetSpent, err = s.store.BudgetTotals(gctx, owner, month, year)
		return err
	})
	g.Go(func() error {
		var err error
		recent, err = s.store.RecentTransactions(gctx, owner, recentTransactions)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	d := &Dashboard{
		Month:              month,
		Year:               year,
		SavingsGoal:        user.FinancialGoals.MonthlySavings,
		RecentTransactions: recent,
	}
	for _, t := range totals {
		switch t.Kind {
		case models.KindIncome:
			d.Income = t.Total
		case models.KindExpense:
			d.Expenses = t.Total
		}
	}
	d.Balance = d.Income.Sub(d.Expenses)
	d.SavingsPercentage = percentOf(d.Balance, d.SavingsGoal)
	d.BudgetUtilization = percentOf(budgetSpent, budgetLimit)
	return d, nil
}
