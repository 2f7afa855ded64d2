package service

import (
	"context"
	"fmt"
	"regexp"
	"strings"

	"github.com/sirupsen/logrus"

	"finance-tracker-go/internal/ledger"
	"finance-tracker-go/internal/models"
)

const maxCategoryName = 50

var hexColor = regexp.MustCompile(`^#[0-9a-fA-F]{6}$`)

type CategoryInput struct {
	Name  string
	Kind  string
	Icon  string
	Color string
}

type CategoryUpdate struct {
	Name  *string
	Icon  *string
	Color *string
}

type CategorySummary struct {
	Category *models.Category   `json:"category"`
	Month    int                `json:"month"`
	Year     int                `json:"year"`
	Totals   []models.KindTotal `json:"summary"`
}

func (s *Service) ListCategories(ctx context.Context, owner uint, kind string) ([]models.Category, error) {
	if kind != "" {
		var err error
		if kind, err = normalizeKind(kind); err != nil {
			return nil, err
		}
	}
	return s.store.ListCategories(ctx, owner, kind)
}

func (s *Service) Category(ctx context.Context, owner, id uint) (*models.Category, error) {
	return s.store.CategoryByID(ctx, owner, id)
}

func validName(name string) (string, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return "", invalid("name is required")
	}
	if len([]rune(name)) > maxCategoryName {
		return "", invalid("name must be at most %d characters", maxCategoryName)
	}
	return name, nil
}

func validColor(color string) (string, error) {
	color = strings.TrimSpace(color)
	if !hexColor.MatchString(color) {
		return "", invalid("color must look like #rrggbb")
	}
	return strings.ToLower(color), nil
}

func (s *Service) ensureNameFree(ctx context.Context, owner uint, name, kind string, exceptID uint) error {
	taken, err := s.store.CategoryNameTaken(ctx, owner, name, kind, exceptID)
	if err != nil {
		return err
	}
	if taken {
		return fmt.Errorf("%w: category %q already exists", ledger.ErrConflict, name)
	}
	return nil
}

func (s *Service) CreateCategory(ctx context.Context, owner uint, in CategoryInput) (*models.Category, error) {
	name, err := validName(in.Name)
	if err != nil {
		return nil, err
	}
	kind, err := normalizeKind(in.Kind)
	if err != nil {
		return nil, err
	}
	icon := strings.TrimSpace(in.Icon)
	if icon == "" {
		icon = models.DefaultCategoryIcon
	}
	color := models.DefaultCategoryColor
	if strings.TrimSpace(in.Color) != "" {
		if color, err = validColor(in.Color); err != nil {
			return nil, err
		}
	}
	if err := s.ensureNameFree(ctx, owner, name, kind, 0); err != nil {
		return nil, err
	}

	category := &models.Category{UserID: &owner, Name: name, Kind: kind, Icon: icon, Color: color}
	if err := s.store.CreateCategory(ctx, category); err != nil {
		return nil, err
	}
	s.log.WithFields(logrus.Fields{"user_id": owner, "category_id": category.ID}).Info("category created")
	return category, nil
}

// ownedCategory loads a category owner may change.
func (s *Service) ownedCategory(ctx context.Context, owner, id uint) (*models.Category, error) {
	category, err := s.store.CategoryByID(ctx, owner, id)
	if err != nil {
		return nil, err
	}
	if category.IsDefault || category.UserID == nil {
		return nil, invalid("default categories cannot be changed")
	}
	return category, nil
}

func (s *Service) UpdateCategory(ctx context.Context, owner, id uint, in CategoryUpdate) (*models.Category, error) {
	category, err := s.ownedCategory(ctx, owner, id)
	if err != nil {
		return nil, err
	}
	if in.Name != nil {
		name, err := validName(*in.Name)
		if err != nil {
			return nil, err
		}
		if err := s.ensureNameFree(ctx, owner, name, category.Kind, category.ID); err != nil {
			return nil, err
		}
		category.Name = name
	}
	if in.Icon != nil && strings.TrimSpace(*in.Icon) != "" {
		category.Icon = strings.TrimSpace(*in.Icon)
	}
	if in.Color != nil {
		color, err := validColor(*in.Color)
		if err != nil {
			return nil, err
		}
		category.Color = color
	}
	if err := s.store.SaveCategory(ctx, category); err != nil {
		return nil, err
	}
	return category, nil
}

// DeleteCategory removes an unused, non-default category and its budgets.
func (s *Service) DeleteCategory(ctx context.Context, owner, id uint) error {
	if _, err := s.ownedCategory(ctx, owner, id); err != nil {
		return err
	}
	if err := s.store.DeleteCategory(ctx, owner, id); err != nil {
		return err
	}
	s.log.WithFields(logrus.Fields{"user_id": owner, "category_id": id}).Info("category deleted")
	return nil
}

// CategorySummary totals one category's transactions per kind for a month.
func (s *Service) CategorySummary(ctx context.Context, owner, id uint, month, year int) (*CategorySummary, error) {
	p, err := ledger.MonthPeriod(month, year)
	if err != nil {
		return nil, err
	}
	category, err := s.store.CategoryByID(ctx, owner, id)
	if err != nil {
		return nil, err
	}
	totals, err := s.store.CategoryKindTotals(ctx, owner, id, p)
	if err != nil {
		return nil, err
	}
	return &CategorySummary{Category: category, Month: month, Year: year, Totals: totals}, nil
}
