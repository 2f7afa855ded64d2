package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"

	"finance-tracker-go/internal/models"
)

type RecurringInput struct {
	Amount     decimal.Decimal
	Kind       string
	CategoryID uint
	Frequency  string
	DayOfMonth int
	Notes      string
	Enabled    *bool
}

type RecurringPatch struct {
	Amount     *decimal.Decimal
	Kind       *string
	CategoryID *uint
	Frequency  *string
	DayOfMonth *int
	Notes      *string
	Enabled    *bool
}

func (s *Service) ListRecurring(ctx context.Context, owner uint) ([]models.RecurringTemplate, error) {
	return s.store.ListTemplates(ctx, owner)
}

func (s *Service) Recurring(ctx context.Context, owner, id uint) (*models.RecurringTemplate, error) {
	return s.store.TemplateByID(ctx, owner, id)
}

func (s *Service) validateTemplate(ctx context.Context, tmpl *models.RecurringTemplate) error {
	amount, err := normalizeAmount(tmpl.Amount)
	if err != nil {
		return err
	}
	kind, err := normalizeKind(tmpl.Kind)
	if err != nil {
		return err
	}
	frequency := strings.ToLower(strings.TrimSpace(tmpl.Frequency))
	if frequency == "" {
		frequency = models.FrequencyMonthly
	}
	if frequency != models.FrequencyMonthly {
		return invalid("frequency must be %q", models.FrequencyMonthly)
	}
	if tmpl.DayOfMonth == 0 {
		tmpl.DayOfMonth = 1
	}
	if tmpl.DayOfMonth < 1 || tmpl.DayOfMonth > 31 {
		return invalid("day_of_month must be between 1 and 31")
	}
	notes, err := normalizeNotes(tmpl.Notes)
	if err != nil {
		return err
	}
	category, err := s.categoryFor(ctx, tmpl.UserID, tmpl.CategoryID, kind)
	if err != nil {
		return err
	}
	tmpl.Amount, tmpl.Kind, tmpl.Frequency, tmpl.Notes, tmpl.Category = amount, kind, frequency, notes, category
	return nil
}

func (s *Service) CreateRecurring(ctx context.Context, owner uint, in RecurringInput) (*models.RecurringTemplate, error) {
	tmpl := &models.RecurringTemplate{
		UserID:     owner,
		Amount:     in.Amount,
		Kind:       in.Kind,
		CategoryID: in.CategoryID,
		Frequency:  in.Frequency,
		DayOfMonth: in.DayOfMonth,
		Notes:      in.Notes,
		Enabled:    true,
	}
	if in.Enabled != nil {
		tmpl.Enabled = *in.Enabled
	}
	if err := s.validateTemplate(ctx, tmpl); err != nil {
		return nil, err
	}
	if err := s.store.CreateTemplate(ctx, tmpl); err != nil {
		return nil, err
	}
	s.log.WithFields(logrus.Fields{"user_id": owner, "template_id": tmpl.ID}).Info("recurring template created")
	return tmpl, nil
}

func (s *Service) UpdateRecurring(ctx context.Context, owner, id uint, patch RecurringPatch) (*models.RecurringTemplate, error) {
	tmpl, err := s.store.TemplateByID(ctx, owner, id)
	if err != nil {
		return nil, err
	}
	if patch.Amount != nil {
		tmpl.Amount = *patch.Amount
	}
	if patch.Kind != nil {
		tmpl.Kind = *patch.Kind
	}
	if patch.CategoryID != nil {
		tmpl.CategoryID = *patch.CategoryID
	}
	if patch.Frequency != nil {
		tmpl.Frequency = *patch.Frequency
	}
	if patch.DayOfMonth != nil {
		if *patch.DayOfMonth == 0 {
			return nil, invalid("day_of_month must be between 1 and 31")
		}
		tmpl.DayOfMonth = *patch.DayOfMonth
	}
	if patch.Notes != nil {
		tmpl.Notes = *patch.Notes
	}
	if patch.Enabled != nil {
		tmpl.Enabled = *patch.Enabled
	}
	if err := s.validateTemplate(ctx, tmpl); err != nil {
		return nil, err
	}
	if err := s.store.SaveTemplate(ctx, tmpl); err != nil {
		return nil, err
	}
	return tmpl, nil
}

func (s *Service) DeleteRecurring(ctx context.Context, owner, id uint) error {
	return s.store.DeleteTemplate(ctx, owner, id)
}

// GenerateRecurring materializes owner's due templates as of asOf and
// reconciles the budgets the new expenses land in. On failure the
// transactions generated so far are returned with the error.
func (s *Service) GenerateRecurring(ctx context.Context, owner uint, asOf time.Time) ([]models.Transaction, error) {
	generated, genErr := s.generator.GenerateDue(ctx, owner, asOf)
	for i := range generated {
		if err := s.reconciler.ReconcileChange(ctx, nil, &generated[i]); err != nil {
			return generated, errors.Join(genErr, err)
		}
	}
	log := s.log.WithFields(logrus.Fields{"user_id": owner, "generated": len(generated), "as_of": asOf.UTC().Format("2006-01-02")})
	if genErr != nil {
		log.WithError(genErr).Error("recurring generation stopped early")
		return generated, genErr
	}
	if len(generated) > 0 {
		log.Info("recurring transactions generated")
	}
	return generated, nil
}

// GenerateAll runs GenerateRecurring for every user and returns the total
// number of generated transactions. A failing user does not stop the others.
func (s *Service) GenerateAll(ctx context.Context, asOf time.Time) (int, error) {
	ids, err := s.store.ListUserIDs(ctx)
	if err != nil {
		return 0, err
	}
	total := 0
	var errs []error
	for _, id := range ids {
		if err := ctx.Err(); err != nil {
			errs = append(errs, err)
			break
		}
		generated, err := s.GenerateRecurring(ctx, id, asOf)
		total += len(generated)
		if err != nil {
			errs = append(errs, err)
		}
	}
	s.log.WithFields(logrus.Fields{"users": len(ids), "generated": total, "failures": len(errs)}).Info("recurring run complete")
	return total, errors.Join(errs...)
}
