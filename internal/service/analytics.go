package service

import (
	"context"

	"finance-tracker-go/internal/ledger"
	"finance-tracker-go/internal/models"
)

const (
	PeriodMonthly = "monthly"
	PeriodYearly  = "yearly"

	yearlyWindow = 5
)

// IncomeExpense returns the income-vs-expense series. Monthly buckets cover
// the given year; yearly buckets cover it and the five years before.
func (s *Service) IncomeExpense(ctx context.Context, owner uint, period string, year int) ([]models.SeriesPoint, error) {
	if period == "" {
		period = PeriodMonthly
	}
	switch period {
	case PeriodMonthly:
		return s.store.IncomeExpenseSeries(ctx, owner, ledger.YearPeriod(year), true)
	case PeriodYearly:
		return s.store.IncomeExpenseSeries(ctx, owner, ledger.YearsPeriod(year-yearlyWindow, year), false)
	default:
		return nil, invalid("period must be %q or %q", PeriodMonthly, PeriodYearly)
	}
}

// CategoryBreakdown groups one month's transactions of kind by category.
// kind defaults to expense.
func (s *Service) CategoryBreakdown(ctx context.Context, owner uint, kind string, month, year int) ([]models.CategoryTotal, error) {
	if kind == "" {
		kind = models.KindExpense
	}
	kind, err := normalizeKind(kind)
	if err != nil {
		return nil, err
	}
	p, err := ledger.MonthPeriod(month, year)
	if err != nil {
		return nil, err
	}
	return s.store.CategoryBreakdown(ctx, owner, kind, p)
}

func (s *Service) DailyTrends(ctx context.Context, owner uint, month, year int) ([]models.DailyPoint, error) {
	p, err := ledger.MonthPeriod(month, year)
	if err != nil {
		return nil, err
	}
	return s.store.DailyTrend(ctx, owner, p)
}
