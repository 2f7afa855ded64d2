package service

import (
	"context"

	"finance-tracker-go/internal/report"
	"finance-tracker-go/internal/store"
)

// Report collects every transaction matching f, newest first, with totals.
func (s *Service) Report(ctx context.Context, owner uint, f store.TransactionFilter) (report.Report, error) {
	if f.Kind != "" {
		kind, err := normalizeKind(f.Kind)
		if err != nil {
			return report.Report{}, err
		}
		f.Kind = kind
	}
	f.Sort, f.Page, f.Limit = "-date", 0, 0
	txns, _, err := s.store.ListTransactions(ctx, owner, f)
	if err != nil {
		return report.Report{}, err
	}
	return report.Build(txns), nil
}
