// Package ledger holds the domain rules that keep budgets and recurring
// transactions consistent with the transaction log.
package ledger

import "errors"

// Callers wrap these with fmt.Errorf("%w: ...") and match with errors.Is.
var (
	ErrNotFound     = errors.New("not found")
	ErrValidation   = errors.New("validation failed")
	ErrConflict     = errors.New("conflict")
	ErrUnauthorized = errors.New("unauthorized")
	ErrStore        = errors.New("store failure")
)
