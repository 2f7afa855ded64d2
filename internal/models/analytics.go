package models

import "github.com/shopspring/decimal"

// SeriesPoint is one bucket of the income-vs-expense series. Month is zero
// for yearly buckets.
type SeriesPoint struct {
	Kind  string          `json:"type"`
	Year  int             `json:"year"`
	Month int             `json:"month,omitempty"`
	Total decimal.Decimal `json:"total"`
	Count int64           `json:"count"`
}

type CategoryTotal struct {
	CategoryID uint            `json:"category_id"`
	Name       string          `json:"name"`
	Icon       string          `json:"icon"`
	Color      string          `json:"color"`
	Total      decimal.Decimal `json:"total"`
	Count      int64           `json:"count"`
}

type DailyPoint struct {
	Day   int             `json:"day"`
	Kind  string          `json:"type"`
	Total decimal.Decimal `json:"total"`
	Count int64           `json:"count"`
}

type KindTotal struct {
	Kind  string          `json:"type"`
	Total decimal.Decimal `json:"total"`
	Count int64           `json:"count"`
}
