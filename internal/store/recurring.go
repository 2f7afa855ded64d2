package store

import (
	"context"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"finance-tracker-go/internal/ledger"
	"finance-tracker-go/internal/models"
)

func (s *Store) ListTemplates(ctx context.Context, owner uint) ([]models.RecurringTemplate, error) {
	templates := []models.RecurringTemplate{}
	err := s.conn(ctx).Preload("Category").Where("user_id = ?", owner).Order("day_of_month asc, id asc").Find(&templates).Error
	if err != nil {
		return nil, wrap(err, "recurring templates")
	}
	return templates, nil
}

// ListEnabledTemplates implements ledger.TemplateStore.
func (s *Store) ListEnabledTemplates(ctx context.Context, owner uint) ([]models.RecurringTemplate, error) {
	templates := []models.RecurringTemplate{}
	err := s.conn(ctx).Where("user_id = ? AND enabled = ?", owner, true).Order("id asc").Find(&templates).Error
	if err != nil {
		return nil, wrap(err, "recurring templates")
	}
	return templates, nil
}

func (s *Store) TemplateByID(ctx context.Context, owner, id uint) (*models.RecurringTemplate, error) {
	var tmpl models.RecurringTemplate
	if err := s.conn(ctx).Preload("Category").Where("id = ? AND user_id = ?", id, owner).First(&tmpl).Error; err != nil {
		return nil, wrap(err, "recurring template")
	}
	return &tmpl, nil
}

func (s *Store) CreateTemplate(ctx context.Context, tmpl *models.RecurringTemplate) error {
	return wrap(s.conn(ctx).Omit(clause.Associations).Create(tmpl).Error, "recurring template")
}

func (s *Store) SaveTemplate(ctx context.Context, tmpl *models.RecurringTemplate) error {
	return wrap(s.conn(ctx).Omit(clause.Associations).Save(tmpl).Error, "recurring template")
}

func (s *Store) DeleteTemplate(ctx context.Context, owner, id uint) error {
	res := s.conn(ctx).Where("id = ? AND user_id = ?", id, owner).Delete(&models.RecurringTemplate{})
	if res.Error != nil {
		return wrap(res.Error, "recurring template")
	}
	if res.RowsAffected == 0 {
		return wrap(gorm.ErrRecordNotFound, "recurring template")
	}
	return nil
}

// Materialize implements ledger.TemplateStore. The generation marker is
// claimed with a conditional update so concurrent runs for the same month
// insert at most one transaction.
func (s *Store) Materialize(ctx context.Context, tmpl *models.RecurringTemplate, txn *models.Transaction, asOf time.Time) (bool, error) {
	month, err := ledger.MonthPeriod(int(asOf.Month()), asOf.Year())
	if err != nil {
		return false, err
	}
	claimed := false
	err = s.conn(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&models.RecurringTemplate{}).
			Where("id = ? AND user_id = ? AND enabled = ?", tmpl.ID, tmpl.UserID, true).
			Where("(last_generated_at IS NULL OR last_generated_at < ? OR last_generated_at >= ?)", month.Start, month.End).
			Update("last_generated_at", asOf)
		if res.Error != nil {
			return wrap(res.Error, "claim recurring template")
		}
		if res.RowsAffected == 0 {
			return nil
		}
		if err := tx.Omit(clause.Associations).Create(txn).Error; err != nil {
			return wrap(err, "generated transaction")
		}
		claimed = true
		return nil
	})
	return claimed, err
}
