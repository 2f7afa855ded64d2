package service

import (
	"context"
	"strings"

	"github.com/shopspring/decimal"

	"finance-tracker-go/internal/models"
)

type ProfileUpdate struct {
	Name           *string
	Currency       *string
	MonthlySavings *decimal.Decimal
}

func (s *Service) Profile(ctx context.Context, userID uint) (*models.User, error) {
	return s.store.UserByID(ctx, userID)
}

func (s *Service) UpdateProfile(ctx context.Context, userID uint, in ProfileUpdate) (*models.User, error) {
	user, err := s.store.UserByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if in.Name != nil {
		name := strings.TrimSpace(*in.Name)
		if name == "" {
			return nil, invalid("name cannot be empty")
		}
		user.Name = name
	}
	if in.Currency != nil {
		currency := strings.ToUpper(strings.TrimSpace(*in.Currency))
		if len(currency) != 3 {
			return nil, invalid("currency must be a 3-letter code")
		}
		user.Currency = currency
	}
	if in.MonthlySavings != nil {
		if in.MonthlySavings.IsNegative() {
			return nil, invalid("monthly savings goal cannot be negative")
		}
		if !models.HasValidScale(*in.MonthlySavings) {
			return nil, invalid("monthly savings goal must have at most %d decimal places", models.AmountScale)
		}
		user.FinancialGoals.MonthlySavings = *in.MonthlySavings
	}
	if err := s.store.SaveUser(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}

// DeleteAccount removes the user and all of its data.
func (s *Service) DeleteAccount(ctx context.Context, userID uint) error {
	if err := s.store.DeleteUser(ctx, userID); err != nil {
		return err
	}
	s.log.WithField("user_id", userID).Warn("account deleted")
	return nil
}
