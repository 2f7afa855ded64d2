package store

import (
	"context"
	"fmt"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"finance-tracker-go/internal/ledger"
	"finance-tracker-go/internal/models"
)

func visibleTo(owner uint) func(*gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		return db.Where("(user_id = ? OR user_id IS NULL)", owner)
	}
}

// ListCategories returns the categories visible to owner, by name. kind may be empty.
func (s *Store) ListCategories(ctx context.Context, owner uint, kind string) ([]models.Category, error) {
	q := s.conn(ctx).Scopes(visibleTo(owner)).Order("name asc").Order("id asc")
	if kind != "" {
		q = q.Where("kind = ?", kind)
	}
	categories := []models.Category{}
	if err := q.Find(&categories).Error; err != nil {
		return nil, wrap(err, "categories")
	}
	return categories, nil
}

// CategoryByID returns a category visible to owner.
func (s *Store) CategoryByID(ctx context.Context, owner, id uint) (*models.Category, error) {
	var category models.Category
	if err := s.conn(ctx).Scopes(visibleTo(owner)).Where("id = ?", id).First(&category).Error; err != nil {
		return nil, wrap(err, "category")
	}
	return &category, nil
}

// CategoryNameTaken reports whether owner already sees a category with this
// name and kind, ignoring exceptID.
func (s *Store) CategoryNameTaken(ctx context.Context, owner uint, name, kind string, exceptID uint) (bool, error) {
	var count int64
	err := s.conn(ctx).Model(&models.Category{}).Scopes(visibleTo(owner)).
		Where("LOWER(name) = LOWER(?) AND kind = ? AND id <> ?", name, kind, exceptID).
		Count(&count).Error
	if err != nil {
		return false, wrap(err, "category")
	}
	return count > 0, nil
}

func (s *Store) CreateCategory(ctx context.Context, category *models.Category) error {
	return wrap(s.conn(ctx).Create(category).Error, "category")
}

func (s *Store) SaveCategory(ctx context.Context, category *models.Category) error {
	return wrap(s.conn(ctx).Omit(clause.Associations).Save(category).Error, "category")
}

// DeleteCategory removes an unused category owned by owner and the budgets
// that reference it. Categories still referenced by transactions or
// recurring templates are rejected with ledger.ErrConflict.
func (s *Store) DeleteCategory(ctx context.Context, owner, id uint) error {
	return s.conn(ctx).Transaction(func(tx *gorm.DB) error {
		var txnCount, tmplCount int64
		if err := tx.Model(&models.Transaction{}).Where("category_id = ?", id).Count(&txnCount).Error; err != nil {
			return wrap(err, "transactions")
		}
		if txnCount > 0 {
			return fmt.Errorf("%w: category has %d transactions", ledger.ErrConflict, txnCount)
		}
		if err := tx.Model(&models.RecurringTemplate{}).Where("category_id = ?", id).Count(&tmplCount).Error; err != nil {
			return wrap(err, "recurring templates")
		}
		if tmplCount > 0 {
			return fmt.Errorf("%w: category is used by %d recurring templates", ledger.ErrConflict, tmplCount)
		}
		if err := tx.Where("category_id = ? AND user_id = ?", id, owner).Delete(&models.Budget{}).Error; err != nil {
			return wrap(err, "budgets")
		}
		res := tx.Where("id = ? AND user_id = ?", id, owner).Delete(&models.Category{})
		if res.Error != nil {
			return wrap(res.Error, "category")
		}
		if res.RowsAffected == 0 {
			return wrap(gorm.ErrRecordNotFound, "category")
		}
		return nil
	})
}
