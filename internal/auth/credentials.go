package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/harapan-ngo/harapan-cms/internal/apperr"
	"github.com/harapan-ngo/harapan-cms/internal/users"
)

// TokenManager issues and verifies HS256 credentials.
type TokenManager struct {
	secret []byte
	issuer string
	ttl    time.Duration
	leeway time.Duration
	now    func() time.Time
}

// NewTokenManager constructs a TokenManager. secret must not be empty.
func NewTokenManager(secret, issuer string, ttl, leeway time.Duration) (*TokenManager, error) {
	if secret == "" {
		return nil, errors.New("auth: empty signing secret")
	}
	if ttl <= 0 {
		return nil, errors.New("auth: token ttl must be positive")
	}
	return &TokenManager{
		secret: []byte(secret),
		issuer: issuer,
		ttl:    ttl,
		leeway: leeway,
		now:    time.Now,
	}, nil
}

// TTL exposes the configured credential lifetime.
func (m *TokenManager) TTL() time.Duration {
	return m.ttl
}

// Leeway exposes the clock skew tolerated on expiry.
func (m *TokenManager) Leeway() time.Duration {
	return m.leeway
}

// Issue signs a credential for acc.
func (m *TokenManager) Issue(acc *users.Account) (string, *Claims, error) {
	now := m.now()
	claims := &Claims{
		Role: string(acc.Role),
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			Subject:   acc.ID.String(),
			Issuer:    m.issuer,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(m.ttl)),
		},
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(m.secret)
	if err != nil {
		return "", nil, fmt.Errorf("auth: sign token: %w", err)
	}
	return signed, claims, nil
}

// Parse verifies signature and expiry. Failures are classified as
// apperr.KindTokenExpired or apperr.KindInvalidToken.
func (m *TokenManager) Parse(token string) (*Claims, error) {
	opts := []jwt.ParserOption{
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithLeeway(m.leeway),
		jwt.WithTimeFunc(m.now),
	}
	if m.issuer != "" {
		opts = append(opts, jwt.WithIssuer(m.issuer))
	}
	claims := &Claims{}
	parsed, err := jwt.NewParser(opts...).ParseWithClaims(token, claims, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("auth: invalid signing method")
		}
		return m.secret, nil
	})
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, apperr.TokenExpired(err)
		}
		return nil, apperr.InvalidToken(err)
	}
	if !parsed.Valid {
		return nil, apperr.InvalidToken(errors.New("auth: invalid token"))
	}
	return claims, nil
}
