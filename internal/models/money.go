package models

import "github.com/shopspring/decimal"

const (
	KindIncome  = "income"
	KindExpense = "expense"

	FrequencyMonthly = "monthly"

	// AmountScale is the most decimal places an amount may carry. It covers
	// three-decimal currencies with one place to spare.
	AmountScale = 4
)

// HasValidScale reports whether d fits in AmountScale decimal places.
func HasValidScale(d decimal.Decimal) bool {
	return d.Equal(d.Truncate(AmountScale))
}

func ValidKind(kind string) bool {
	return kind == KindIncome || kind == KindExpense
}
