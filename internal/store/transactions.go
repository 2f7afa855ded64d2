package store

import (
	"context"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"finance-tracker-go/internal/models"
)

// TransactionFilter narrows a transaction listing. Zero values mean no
// constraint; Limit 0 returns every match.
type TransactionFilter struct {
	Kind       string
	CategoryID uint
	From       *time.Time // inclusive
	To         *time.Time // exclusive
	Sort       string     // date, -date, amount, -amount
	Page       int
	Limit      int
}

var sortColumns = map[string]string{
	"date":    "occurred_at asc, id asc",
	"-date":   "occurred_at desc, id desc",
	"amount":  "amount asc, id asc",
	"-amount": "amount desc, id desc",
}

// ValidSort reports whether the sort key is supported.
func ValidSort(sort string) bool {
	_, ok := sortColumns[sort]
	return sort == "" || ok
}

func (f TransactionFilter) apply(db *gorm.DB) *gorm.DB {
	if f.Kind != "" {
		db = db.Where("kind = ?", f.Kind)
	}
	if f.CategoryID != 0 {
		db = db.Where("category_id = ?", f.CategoryID)
	}
	if f.From != nil {
		db = db.Where("occurred_at >= ?", f.From.UTC())
	}
	if f.To != nil {
		db = db.Where("occurred_at < ?", f.To.UTC())
	}
	return db
}

// ListTransactions returns one page of owner's transactions and the total
// number of matches.
func (s *Store) ListTransactions(ctx context.Context, owner uint, f TransactionFilter) ([]models.Transaction, int64, error) {
	base := s.conn(ctx).Model(&models.Transaction{}).Where("user_id = ?", owner).Scopes(f.apply)

	var total int64
	if err := base.Session(&gorm.Session{}).Count(&total).Error; err != nil {
		return nil, 0, wrap(err, "transactions")
	}

	order, ok := sortColumns[f.Sort]
	if !ok {
		order = sortColumns["-date"]
	}
	q := base.Session(&gorm.Session{}).Preload("Category").Order(order)
	if f.Limit > 0 {
		page := f.Page
		if page < 1 {
			page = 1
		}
		q = q.Limit(f.Limit).Offset((page - 1) * f.Limit)
	}

	txns := []models.Transaction{}
	if err := q.Find(&txns).Error; err != nil {
		return nil, 0, wrap(err, "transactions")
	}
	return txns, total, nil
}

func (s *Store) RecentTransactions(ctx context.Context, owner uint, n int) ([]models.Transaction, error) {
	txns, _, err := s.ListTransactions(ctx, owner, TransactionFilter{Sort: "-date", Limit: n})
	return txns, err
}

func (s *Store) TransactionByID(ctx context.Context, owner, id uint) (*models.Transaction, error) {
	var txn models.Transaction
	if err := s.conn(ctx).Preload("Category").Where("id = ? AND user_id = ?", id, owner).First(&txn).Error; err != nil {
		return nil, wrap(err, "transaction")
	}
	return &txn, nil
}

func (s *Store) CreateTransaction(ctx context.Context, txn *models.Transaction) error {
	return wrap(s.conn(ctx).Omit(clause.Associations).Create(txn).Error, "transaction")
}

func (s *Store) SaveTransaction(ctx context.Context, txn *models.Transaction) error {
	return wrap(s.conn(ctx).Omit(clause.Associations).Save(txn).Error, "transaction")
}

func (s *Store) DeleteTransaction(ctx context.Context, owner, id uint) error {
	res := s.conn(ctx).Where("id = ? AND user_id = ?", id, owner).Delete(&models.Transaction{})
	if res.Error != nil {
		return wrap(res.Error, "transaction")
	}
	if res.RowsAffected == 0 {
		return wrap(gorm.ErrRecordNotFound, "transaction")
	}
	return nil
}
