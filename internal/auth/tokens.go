package auth

import (
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"finance-tracker-go/internal/ledger"
)

const (
	TypeAccess  = "access"
	TypeRefresh = "refresh"
)

type Claims struct {
	Type string `json:"typ"`
	jwt.RegisteredClaims
}

// Tokens issues and verifies HS256 access and refresh tokens.
type Tokens struct {
	secret     []byte
	accessTTL  time.Duration
	refreshTTL time.Duration
	now        func() time.Time
}

func NewTokens(secret string, accessTTL, refreshTTL time.Duration) *Tokens {
	return &Tokens{secret: []byte(secret), accessTTL: accessTTL, refreshTTL: refreshTTL, now: time.Now}
}

// WithClock replaces the time source used for issuing and validating.
func (t *Tokens) WithClock(now func() time.Time) *Tokens {
	t.now = now
	return t
}

func (t *Tokens) AccessTTL() time.Duration { return t.accessTTL }

func (t *Tokens) IssueAccess(userID uint) (string, error) {
	return t.sign(userID, TypeAccess, t.accessTTL, "")
}

// IssueRefresh returns a refresh token; each carries a unique ID so that
// rotation always changes the stored value.
func (t *Tokens) IssueRefresh(userID uint) (string, error) {
	return t.sign(userID, TypeRefresh, t.refreshTTL, uuid.NewString())
}

func (t *Tokens) sign(userID uint, typ string, ttl time.Duration, id string) (string, error) {
	now := t.now()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{
		Type: typ,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   strconv.FormatUint(uint64(userID), 10),
			ID:        id,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	})
	signed, err := token.SignedString(t.secret)
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %w", err)
	}
	return signed, nil
}

func (t *Tokens) ParseAccess(token string) (uint, error) {
	return t.parse(token, TypeAccess)
}

func (t *Tokens) ParseRefresh(token string) (uint, error) {
	return t.parse(token, TypeRefresh)
}

func (t *Tokens) parse(raw, typ string) (uint, error) {
	var claims Claims
	_, err := jwt.ParseWithClaims(raw, &claims, func(*jwt.Token) (any, error) {
		return t.secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}), jwt.WithTimeFunc(t.now))
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return 0, fmt.Errorf("%w: token expired", ledger.ErrUnauthorized)
		}
		return 0, fmt.Errorf("%w: invalid token", ledger.ErrUnauthorized)
	}
	if claims.Type != typ {
		return 0, fmt.Errorf("%w: expected %s token", ledger.ErrUnauthorized, typ)
	}
	id, err := strconv.ParseUint(claims.Subject, 10, 64)
	if err != nil || id == 0 {
		return 0, fmt.Errorf("%w: invalid subject", ledger.ErrUnauthorized)
	}
	return uint(id), nil
}
