package service

import (
	"context"
	"crypto/subtle"
	"errors"
	"fmt"
	"net/mail"
	"strings"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"finance-tracker-go/internal/auth"
	"finance-tracker-go/internal/ledger"
	"finance-tracker-go/internal/models"
)

type RegisterInput struct {
	Name     string
	Email    string
	Password string
	Currency string
}

type Session struct {
	AccessToken  string       `json:"access_token"`
	RefreshToken string       `json:"refresh_token"`
	ExpiresIn    int64        `json:"expires_in"`
	User         *models.User `json:"user"`
}

var errInvalidCredentials = fmt.Errorf("%w: invalid credentials", ledger.ErrUnauthorized)

// Register creates the user, seeds its default categories and opens a session.
func (s *Service) Register(ctx context.Context, in RegisterInput) (*Session, error) {
	name := strings.TrimSpace(in.Name)
	if name == "" {
		return nil, invalid("name is required")
	}
	email := strings.ToLower(strings.TrimSpace(in.Email))
	if addr, err := mail.ParseAddress(email); err != nil || addr.Address != email {
		return nil, invalid("email is invalid")
	}
	if len(in.Password) < auth.MinPasswordLength {
		return nil, invalid("password must be at least %d characters", auth.MinPasswordLength)
	}
	currency := strings.ToUpper(strings.TrimSpace(in.Currency))
	if currency == "" {
		currency = s.defaultCurrency
	}
	if len(currency) != 3 {
		return nil, invalid("currency must be a 3-letter code")
	}

	if _, err := s.store.UserByEmail(ctx, email); err == nil {
		return nil, fmt.Errorf("%w: user already exists", ledger.ErrConflict)
	} else if !errors.Is(err, ledger.ErrNotFound) {
		return nil, err
	}

	hash, err := auth.HashPassword(in.Password)
	if err != nil {
		return nil, err
	}

	user := &models.User{
		UUID:         uuid.NewString(),
		Name:         name,
		Email:        email,
		PasswordHash: hash,
		Currency:     currency,
	}
	seed := make([]models.Category, 0, len(models.DefaultCategories))
	for _, d := range models.DefaultCategories {
		seed = append(seed, models.Category{Name: d.Name, Kind: d.Kind, Icon: d.Icon, Color: d.Color, IsDefault: true})
	}
	if err := s.store.CreateUser(ctx, user, seed); err != nil {
		return nil, err
	}

	s.log.WithFields(logrus.Fields{"user_id": user.ID, "user_uuid": user.UUID}).Info("user registered")
	return s.openSession(ctx, user)
}

func (s *Service) Login(ctx context.Context, email, password string) (*Session, error) {
	user, err := s.store.UserByEmail(ctx, email)
	if errors.Is(err, ledger.ErrNotFound) {
		return nil, errInvalidCredentials
	}
	if err != nil {
		return nil, err
	}
	if !auth.CheckPassword(user.PasswordHash, password) {
		return nil, errInvalidCredentials
	}
	s.log.WithField("user_id", user.ID).Info("user logged in")
	return s.openSession(ctx, user)
}

// Refresh exchanges the user's current refresh token for a new session.
func (s *Service) Refresh(ctx context.Context, refreshToken string) (*Session, error) {
	userID, err := s.tokens.ParseRefresh(refreshToken)
	if err != nil {
		return nil, err
	}
	user, err := s.store.UserByID(ctx, userID)
	if errors.Is(err, ledger.ErrNotFound) {
		return nil, fmt.Errorf("%w: unknown user", ledger.ErrUnauthorized)
	}
	if err != nil {
		return nil, err
	}
	if user.RefreshToken == nil || subtle.ConstantTimeCompare([]byte(*user.RefreshToken), []byte(refreshToken)) != 1 {
		return nil, fmt.Errorf("%w: refresh token revoked", ledger.ErrUnauthorized)
	}
	return s.openSession(ctx, user)
}

func (s *Service) Logout(ctx context.Context, userID uint) error {
	if err := s.store.SetRefreshToken(ctx, userID, nil); err != nil {
		return err
	}
	s.log.WithField("user_id", userID).Info("user logged out")
	return nil
}

// Authenticate resolves an access token to its user.
func (s *Service) Authenticate(ctx context.Context, accessToken string) (*models.User, error) {
	userID, err := s.tokens.ParseAccess(accessToken)
	if err != nil {
		return nil, err
	}
	user, err := s.store.UserByID(ctx, userID)
	if errors.Is(err, ledger.ErrNotFound) {
		return nil, fmt.Errorf("%w: unknown user", ledger.ErrUnauthorized)
	}
	return user, err
}

func (s *Service) openSession(ctx context.Context, user *models.User) (*Session, error) {
	access, err := s.tokens.IssueAccess(user.ID)
	if err != nil {
		return nil, err
	}
	refresh, err := s.tokens.IssueRefresh(user.ID)
	if err != nil {
		return nil, err
	}
	if err := s.store.SetRefreshToken(ctx, user.ID, &refresh); err != nil {
		return nil, err
	}
	user.RefreshToken = &refresh
	return &Session{
		AccessToken:  access,
		RefreshToken: refresh,
		ExpiresIn:    int64(s.tokens.AccessTTL().Seconds()),
		User:         user,
	}, nil
}
