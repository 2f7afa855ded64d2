package store

import (
	"context"
	"strings"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"finance-tracker-go/internal/models"
)

// CreateUser inserts the user together with its seeded categories.
func (s *Store) CreateUser(ctx context.Context, user *models.User, seed []models.Category) error {
	err := s.conn(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(user).Error; err != nil {
			return wrap(err, "user")
		}
		if len(seed) == 0 {
			return nil
		}
		for i := range seed {
			seed[i].UserID = &user.ID
		}
		return wrap(tx.Create(&seed).Error, "seed categories")
	})
	return err
}

func (s *Store) UserByID(ctx context.Context, id uint) (*models.User, error) {
	var user models.User
	if err := s.conn(ctx).First(&user, id).Error; err != nil {
		return nil, wrap(err, "user")
	}
	return &user, nil
}

func (s *Store) UserByEmail(ctx context.Context, email string) (*models.User, error) {
	var user models.User
	if err := s.conn(ctx).Where("email = ?", strings.ToLower(strings.TrimSpace(email))).First(&user).Error; err != nil {
		return nil, wrap(err, "user")
	}
	return &user, nil
}

func (s *Store) SaveUser(ctx context.Context, user *models.User) error {
	return wrap(s.conn(ctx).Omit(clause.Associations).Save(user).Error, "user")
}

// SetRefreshToken replaces the single active refresh token; nil clears it.
func (s *Store) SetRefreshToken(ctx context.Context, userID uint, token *string) error {
	res := s.conn(ctx).Model(&models.User{}).Where("id = ?", userID).Update("refresh_token", token)
	if res.Error != nil {
		return wrap(res.Error, "user")
	}
	if res.RowsAffected == 0 {
		return wrap(gorm.ErrRecordNotFound, "user")
	}
	return nil
}

func (s *Store) ListUserIDs(ctx context.Context) ([]uint, error) {
	var ids []uint
	if err := s.conn(ctx).Model(&models.User{}).Order("id").Pluck("id", &ids).Error; err != nil {
		return nil, wrap(err, "users")
	}
	return ids, nil
}

// DeleteUser removes the user and everything it owns.
func (s *Store) DeleteUser(ctx context.Context, userID uint) error {
	return s.conn(ctx).Transaction(func(tx *gorm.DB) error {
		owned := []any{&models.Transaction{}, &models.Budget{}, &models.RecurringTemplate{}, &models.Category{}}
		for _, m := range owned {
			if err := tx.Where("user_id = ?", userID).Delete(m).Error; err != nil {
				return wrap(err, "owned records")
			}
		}
		res := tx.Delete(&models.User{}, userID)
		if res.Error != nil {
			return wrap(res.Error, "user")
		}
		if res.RowsAffected == 0 {
			return wrap(gorm.ErrRecordNotFound, "user")
		}
		return nil
	})
}
