package store

import (
	"context"
	"sort"
	"time"

	"github.com/shopspring/decimal"

	"finance-tracker-go/internal/ledger"
	"finance-tracker-go/internal/models"
)

// KindTotals sums owner's transactions in p per kind.
func (s *Store) KindTotals(ctx context.Context, owner uint, p ledger.Period) ([]models.KindTotal, error) {
	totals := []models.KindTotal{}
	err := s.conn(ctx).Model(&models.Transaction{}).
		Select("kind, SUM(amount) AS total, COUNT(*) AS count").
		Where("user_id = ? AND occurred_at >= ? AND occurred_at < ?", owner, p.Start, p.End).
		Group("kind").
		Order("kind asc").
		Scan(&totals).Error
	if err != nil {
		return nil, wrap(err, "kind totals")
	}
	for i := range totals {
		totals[i].Total = totals[i].Total.Round(models.AmountScale)
	}
	return totals, nil
}

// CategoryKindTotals sums one category's transactions in p per kind.
func (s *Store) CategoryKindTotals(ctx context.Context, owner, category uint, p ledger.Period) ([]models.KindTotal, error) {
	totals := []models.KindTotal{}
	err := s.conn(ctx).Model(&models.Transaction{}).
		Select("kind, SUM(amount) AS total, COUNT(*) AS count").
		Where("user_id = ? AND category_id = ? AND occurred_at >= ? AND occurred_at < ?", owner, category, p.Start, p.End).
		Group("kind").
		Order("kind asc").
		Scan(&totals).Error
	if err != nil {
		return nil, wrap(err, "category totals")
	}
	for i := range totals {
		totals[i].Total = totals[i].Total.Round(models.AmountScale)
	}
	return totals, nil
}

// CategoryBreakdown groups owner's transactions of one kind in p by
// category, largest total first.
func (s *Store) CategoryBreakdown(ctx context.Context, owner uint, kind string, p ledger.Period) ([]models.CategoryTotal, error) {
	rows := []models.CategoryTotal{}
	err := s.conn(ctx).Table("transactions AS t").
		Select("t.category_id, c.name, c.icon, c.color, SUM(t.amount) AS total, COUNT(*) AS count").
		Joins("JOIN categories AS c ON c.id = t.category_id").
		Where("t.user_id = ? AND t.kind = ? AND t.occurred_at >= ? AND t.occurred_at < ?", owner, kind, p.Start, p.End).
		Group("t.category_id, c.name, c.icon, c.color").
		Order("total desc").Order("c.name asc").
		Scan(&rows).Error
	if err != nil {
		return nil, wrap(err, "category breakdown")
	}
	for i := range rows {
		rows[i].Total = rows[i].Total.Round(models.AmountScale)
	}
	return rows, nil
}

type amountRow struct {
	Kind       string
	Amount     decimal.Decimal
	OccurredAt time.Time
}

func (s *Store) amountsIn(ctx context.Context, owner uint, p ledger.Period) ([]amountRow, error) {
	var rows []amountRow
	err := s.conn(ctx).Model(&models.Transaction{}).
		Select("kind, amount, occurred_at").
		Where("user_id = ? AND occurred_at >= ? AND occurred_at < ?", owner, p.Start, p.End).
		Scan(&rows).Error
	if err != nil {
		return nil, wrap(err, "transactions")
	}
	return rows, nil
}

// IncomeExpenseSeries buckets owner's transactions in p by kind and month, or
// by kind and year when monthly is false. Buckets are ordered by year, month
// then kind. Bucketing happens in Go because date-part SQL differs between
// the supported databases.
func (s *Store) IncomeExpenseSeries(ctx context.Context, owner uint, p ledger.Period, monthly bool) ([]models.SeriesPoint, error) {
	rows, err := s.amountsIn(ctx, owner, p)
	if err != nil {
		return nil, err
	}

	type key struct {
		kind        string
		year, month int
	}
	buckets := map[key]*models.SeriesPoint{}
	for _, r := range rows {
		at := r.OccurredAt.UTC()
		k := key{kind: r.Kind, year: at.Year()}
		if monthly {
			k.month = int(at.Month())
		}
		b, ok := buckets[k]
		if !ok {
			b = &models.SeriesPoint{Kind: k.kind, Year: k.year, Month: k.month}
			buckets[k] = b
		}
		b.Total = b.Total.Add(r.Amount)
		b.Count++
	}

	series := make([]models.SeriesPoint, 0, len(buckets))
	for _, b := range buckets {
		b.Total = b.Total.Round(models.AmountScale)
		series = append(series, *b)
	}
	sort.Slice(series, func(i, j int) bool {
		a, b := series[i], series[j]
		if a.Year != b.Year {
			return a.Year < b.Year
		}
		if a.Month != b.Month {
			return a.Month < b.Month
		}
		return a.Kind < b.Kind
	})
	return series, nil
}

// DailyTrend buckets owner's transactions in p by day of month and kind.
func (s *Store) DailyTrend(ctx context.Context, owner uint, p ledger.Period) ([]models.DailyPoint, error) {
	rows, err := s.amountsIn(ctx, owner, p)
	if err != nil {
		return nil, err
	}

	type key struct {
		day  int
		kind string
	}
	buckets := map[key]*models.DailyPoint{}
	for _, r := range rows {
		k := key{day: r.OccurredAt.UTC().Day(), kind: r.Kind}
		b, ok := buckets[k]
		if !ok {
			b = &models.DailyPoint{Day: k.day, Kind: k.kind}
			buckets[k] = b
		}
		b.Total = b.Total.Add(r.Amount)
		b.Count++
	}

	trend := make([]models.DailyPoint, 0, len(buckets))
	for _, b := range buckets {
		b.Total = b.Total.Round(models.AmountScale)
		trend = append(trend, *b)
	}
	sort.Slice(trend, func(i, j int) bool {
		if trend[i].Day != trend[j].Day {
			return trend[i].Day < trend[j].Day
		}
		return trend[i].Kind < trend[j].Kind
	})
	return trend, nil
}
