// Package store persists the ledger with gorm.
package store

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"gorm.io/gorm"

	"finance-tracker-go/internal/ledger"
)

type Store struct {
	db *gorm.DB
}

func New(db *gorm.DB) *Store {
	return &Store{db: db}
}

func (s *Store) conn(ctx context.Context) *gorm.DB {
	return s.db.WithContext(ctx)
}

// Ping checks the underlying connection.
func (s *Store) Ping(ctx context.Context) error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return wrap(err, "database handle")
	}
	if err := sqlDB.PingContext(ctx); err != nil {
		return wrap(err, "ping")
	}
	return nil
}

// wrap maps gorm errors onto the ledger error kinds.
func wrap(err error, what string) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, ledger.ErrNotFound), errors.Is(err, ledger.ErrConflict), errors.Is(err, ledger.ErrValidation):
		return err
	case errors.Is(err, gorm.ErrRecordNotFound):
		return fmt.Errorf("%w: %s", ledger.ErrNotFound, what)
	case errors.Is(err, gorm.ErrDuplicatedKey), isUniqueViolation(err):
		return fmt.Errorf("%w: %s already exists", ledger.ErrConflict, what)
	default:
		return fmt.Errorf("%w: %s: %v", ledger.ErrStore, what, err)
	}
}

// isUniqueViolation catches driver errors that gorm does not translate.
func isUniqueViolation(err error) bool {
	msg := err.Error()
	return strings.Contains(msg, "UNIQUE constraint failed") || strings.Contains(msg, "duplicate key value")
}
