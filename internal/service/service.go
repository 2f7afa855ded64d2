// Package service implements the finance operations on top of the store and
// keeps budgets reconciled after every mutation.
package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"

	"finance-tracker-go/internal/auth"
	"finance-tracker-go/internal/ledger"
	"finance-tracker-go/internal/models"
	"finance-tracker-go/internal/store"
)

type Service struct {
	store           *store.Store
	reconciler      *ledger.Reconciler
	generator       *ledger.Generator
	tokens          *auth.Tokens
	log             logrus.FieldLogger
	defaultCurrency string
}

func New(st *store.Store, tokens *auth.Tokens, log logrus.FieldLogger, defaultCurrency string) *Service {
	if defaultCurrency == "" {
		defaultCurrency = "USD"
	}
	return &Service{
		store:           st,
		reconciler:      ledger.NewReconciler(st),
		generator:       ledger.NewGenerator(st),
		tokens:          tokens,
		log:             log,
		defaultCurrency: defaultCurrency,
	}
}

// Ping reports whether the store is reachable.
func (s *Service) Ping(ctx context.Context) error {
	return s.store.Ping(ctx)
}

func invalid(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ledger.ErrValidation, fmt.Sprintf(format, args...))
}

// normalizeAmount requires a positive amount of at most AmountScale decimal
// places. Amounts are stored as given, never rounded.
func normalizeAmount(amount decimal.Decimal) (decimal.Decimal, error) {
	return positiveMoney("amount", amount)
}

func positiveMoney(field string, v decimal.Decimal) (decimal.Decimal, error) {
	if !v.IsPositive() {
		return decimal.Zero, invalid("%s must be greater than 0", field)
	}
	if !models.HasValidScale(v) {
		return decimal.Zero, invalid("%s must have at most %d decimal places", field, models.AmountScale)
	}
	return v, nil
}

func normalizeKind(kind string) (string, error) {
	kind = strings.ToLower(strings.TrimSpace(kind))
	if !models.ValidKind(kind) {
		return "", invalid("type must be %q or %q", models.KindIncome, models.KindExpense)
	}
	return kind, nil
}

func normalizeNotes(notes string) (string, error) {
	notes = strings.TrimSpace(notes)
	if len([]rune(notes)) > models.MaxNotesLength {
		return "", invalid("notes must be at most %d characters", models.MaxNotesLength)
	}
	return notes, nil
}

// categoryFor loads a category visible to owner and checks it carries kind.
func (s *Service) categoryFor(ctx context.Context, owner, categoryID uint, kind string) (*models.Category, error) {
	if categoryID == 0 {
		return nil, invalid("category is required")
	}
	category, err := s.store.CategoryByID(ctx, owner, categoryID)
	if err != nil {
		return nil, err
	}
	if category.Kind != kind {
		return nil, invalid("category %q is an %s category", category.Name, category.Kind)
	}
	return category, nil
}

// percentOf returns part/whole as a whole percentage, 0 when whole is zero.
func percentOf(part, whole decimal.Decimal) int64 {
	if whole.IsZero() {
		return 0
	}
	return part.Div(whole).Mul(decimal.NewFromInt(100)).Round(0).IntPart()
}
