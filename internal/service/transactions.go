package service

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"

	"finance-tracker-go/internal/models"
	"finance-tracker-go/internal/store"
)

type TransactionInput struct {
	Amount     decimal.Decimal
	Kind       string
	CategoryID uint
	Date       time.Time
	Notes      string
}

// TransactionPatch carries the fields of a partial update; nil means unchanged.
type TransactionPatch struct {
	Amount     *decimal.Decimal
	Kind       *string
	CategoryID *uint
	Date       *time.Time
	Notes      *string
}

type TransactionPage struct {
	Transactions []models.Transaction `json:"transactions"`
	Total        int64                `json:"total"`
	Page         int                  `json:"page"`
	Limit        int                  `json:"limit"`
	TotalPages   int64                `json:"total_pages"`
}

const (
	DefaultPageSize = 10
	MaxPageSize     = 100
)

func (s *Service) ListTransactions(ctx context.Context, owner uint, f store.TransactionFilter) (*TransactionPage, error) {
	if f.Kind != "" {
		kind, err := normalizeKind(f.Kind)
		if err != nil {
			return nil, err
		}
		f.Kind = kind
	}
	if !store.ValidSort(f.Sort) {
		return nil, invalid("unsupported sort %q", f.Sort)
	}
	if f.Page < 1 {
		f.Page = 1
	}
	if f.Limit < 1 {
		f.Limit = DefaultPageSize
	}
	if f.Limit > MaxPageSize {
		f.Limit = MaxPageSize
	}
	txns, total, err := s.store.ListTransactions(ctx, owner, f)
	if err != nil {
		return nil, err
	}
	pages := (total + int64(f.Limit) - 1) / int64(f.Limit)
	return &TransactionPage{Transactions: txns, Total: total, Page: f.Page, Limit: f.Limit, TotalPages: pages}, nil
}

func (s *Service) Transaction(ctx context.Context, owner, id uint) (*models.Transaction, error) {
	return s.store.TransactionByID(ctx, owner, id)
}

func (s *Service) validateTransaction(ctx context.Context, txn *models.Transaction) error {
	amount, err := normalizeAmount(txn.Amount)
	if err != nil {
		return err
	}
	kind, err := normalizeKind(txn.Kind)
	if err != nil {
		return err
	}
	notes, err := normalizeNotes(txn.Notes)
	if err != nil {
		return err
	}
	if txn.OccurredAt.IsZero() {
		return invalid("date is required")
	}
	category, err := s.categoryFor(ctx, txn.UserID, txn.CategoryID, kind)
	if err != nil {
		return err
	}
	txn.Amount, txn.Kind, txn.Notes = amount, kind, notes
	txn.OccurredAt = txn.OccurredAt.UTC()
	txn.Category = category
	return nil
}

// CreateTransaction records a transaction and reconciles the budget it lands in.
func (s *Service) CreateTransaction(ctx context.Context, owner uint, in TransactionInput) (*models.Transaction, error) {
	txn := &models.Transaction{
		UserID:     owner,
		Amount:     in.Amount,
		Kind:       in.Kind,
		CategoryID: in.CategoryID,
		OccurredAt: in.Date,
		Notes:      in.Notes,
	}
	if err := s.validateTransaction(ctx, txn); err != nil {
		return nil, err
	}
	if err := s.store.CreateTransaction(ctx, txn); err != nil {
		return nil, err
	}
	if err := s.reconciler.ReconcileChange(ctx, nil, txn); err != nil {
		return nil, err
	}
	s.log.WithFields(logrus.Fields{"user_id": owner, "transaction_id": txn.ID, "type": txn.Kind}).Info("transaction created")
	return txn, nil
}

// UpdateTransaction applies patch and reconciles both the old and the new
// budget location.
func (s *Service) UpdateTransaction(ctx context.Context, owner, id uint, patch TransactionPatch) (*models.Transaction, error) {
	txn, err := s.store.TransactionByID(ctx, owner, id)
	if err != nil {
		return nil, err
	}
	before := *txn

	if patch.Amount != nil {
		txn.Amount = *patch.Amount
	}
	if patch.Kind != nil {
		txn.Kind = *patch.Kind
	}
	if patch.CategoryID != nil {
		txn.CategoryID = *patch.CategoryID
	}
	if patch.Date != nil {
		txn.OccurredAt = *patch.Date
	}
	if patch.Notes != nil {
		txn.Notes = *patch.Notes
	}
	if err := s.validateTransaction(ctx, txn); err != nil {
		return nil, err
	}
	if err := s.store.SaveTransaction(ctx, txn); err != nil {
		return nil, err
	}
	if err := s.reconciler.ReconcileChange(ctx, &before, txn); err != nil {
		return nil, err
	}
	s.log.WithFields(logrus.Fields{"user_id": owner, "transaction_id": txn.ID}).Info("transaction updated")
	return txn, nil
}

func (s *Service) DeleteTransaction(ctx context.Context, owner, id uint) error {
	txn, err := s.store.TransactionByID(ctx, owner, id)
	if err != nil {
		return err
	}
	if err := s.store.DeleteTransaction(ctx, owner, id); err != nil {
		return err
	}
	if err := s.reconciler.ReconcileChange(ctx, txn, nil); err != nil {
		return err
	}
	s.log.WithFields(logrus.Fields{"user_id": owner, "transaction_id": id}).Info("transaction deleted")
	return nil
}
