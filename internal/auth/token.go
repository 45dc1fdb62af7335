// Package auth signs in the store admin and issues the bearer tokens the
// admin API accepts.
package auth

import (
	"context"
	"crypto/subtle"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/dukerupert/flipcart/internal/domain"
)

// DefaultTokenTTL is how long an admin token stays valid.
const DefaultTokenTTL = 30 * 24 * time.Hour

// Account is the single admin account configured for the store.
type Account struct {
	ID           int64
	Username     string
	Name         string
	PasswordHash string
}

// Claims are the custom claims embedded in every admin token.
type Claims struct {
	Username string `json:"username"`
	Name     string `json:"name"`
	Role     string `json:"role"`
	jwt.RegisteredClaims
}

// Service verifies admin credentials and tokens.
type Service struct {
	secret  []byte
	ttl     time.Duration
	account Account
	now     func() time.Time
}

// Option configures a Service.
type Option func(*Service)

// WithTTL overrides DefaultTokenTTL.
func WithTTL(ttl time.Duration) Option {
	return func(s *Service) { s.ttl = ttl }
}

// WithClock replaces time.Now.
func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

// NewService creates a token service signing with secret.
func NewService(secret string, account Account, opts ...Option) (*Service, error) {
	if secret == "" {
		return nil, errors.New("auth: signing secret is empty")
	}
	if account.ID == 0 {
		account.ID = 1
	}
	s := &Service{
		secret:  []byte(secret),
		ttl:     DefaultTokenTTL,
		account: account,
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// Login checks credentials and returns a signed token for the admin.
func (s *Service) Login(ctx context.Context, username, password string) (string, *domain.Admin, error) {
	const op = "auth.login"
	invalid := domain.Unauthorized(op, "Invalid username or password")

	if s.account.PasswordHash == "" {
		return "", nil, invalid
	}
	if subtle.ConstantTimeCompare([]byte(username), []byte(s.account.Username)) != 1 {
		return "", nil, invalid
	}
	if err := VerifyPassword(password, s.account.PasswordHash); err != nil {
		if errors.Is(err, ErrPasswordMismatch) {
			return "", nil, invalid
		}
		return "", nil, domain.Internal(err, op, "failed to verify credentials")
	}

	admin := s.admin()
	token, err := s.Issue(admin)
	if err != nil {
		return "", nil, domain.Internal(err, op, "failed to issue token")
	}
	return token, admin, nil
}

// Issue signs a token for admin.
func (s *Service) Issue(admin *domain.Admin) (string, error) {
	now := s.now()
	claims := Claims{
		Username: admin.Username,
		Name:     admin.Name,
		Role:     admin.Role,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   strconv.FormatInt(admin.ID, 10),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.ttl)),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(s.secret)
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}
	return signed, nil
}

// Verify parses a bearer token and returns the admin it names.
func (s *Service) Verify(tokenStr string) (*domain.Admin, error) {
	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenStr, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, jwt.ErrSignatureInvalid
		}
		return s.secret, nil
	}, jwt.WithTimeFunc(s.now))
	if err != nil || !token.Valid {
		return nil, domain.ErrAdminRequired
	}

	id, err := strconv.ParseInt(claims.Subject, 10, 64)
	if err != nil || claims.Username != s.account.Username {
		return nil, domain.ErrAdminRequired
	}
	return &domain.Admin{
		ID:       id,
		Username: claims.Username,
		Name:     claims.Name,
		Role:     claims.Role,
	}, nil
}

func (s *Service) admin() *domain.Admin {
	name := s.account.Name
	if name == "" {
		name = s.account.Username
	}
	return &domain.Admin{
		ID:       s.account.ID,
		Username: s.account.Username,
		Name:     name,
		Role:     "admin",
	}
}
