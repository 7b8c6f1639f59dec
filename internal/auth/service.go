package auth

import (
	"context"
	"errors"
	"sync"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/harapan-ngo/harapan-cms/internal/apperr"
	"github.com/harapan-ngo/harapan-cms/internal/users"
)

// MsgInvalidCredentials is returned for any failed login attempt.
const MsgInvalidCredentials = "Invalid email or password"

// dummyHash is compared on unknown emails so every failed login pays the
// same bcrypt cost.
var dummyHash = sync.OnceValue(func() []byte {
	hash, err := bcrypt.GenerateFromPassword([]byte("harapan-unknown-account"), bcrypt.DefaultCost)
	if err != nil {
		panic(err)
	}
	return hash
})

// AccountLookup fetches accounts by login email.
type AccountLookup interface {
	FindByEmail(ctx context.Context, email string) (*users.Account, error)
}

// Service wraps login and logout rules.
type Service struct {
	accounts    AccountLookup
	tokens      *TokenManager
	revocations RevocationStore
}

// NewService constructs a new Service. revocations may be nil, in which case
// logout only clears the cookie.
func NewService(accounts AccountLookup, tokens *TokenManager, revocations RevocationStore) *Service {
	return &Service{accounts: accounts, tokens: tokens, revocations: revocations}
}

// Login validates email/password credentials and issues a signed token.
func (s *Service) Login(ctx context.Context, email, password string) (string, *Claims, *users.Account, error) {
	acc, err := s.accounts.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, users.ErrNotFound) {
			_ = bcrypt.CompareHashAndPassword(dummyHash(), []byte(password))
			return "", nil, nil, apperr.Unauthenticated(MsgInvalidCredentials, nil)
		}
		return "", nil, nil, err
	}
	if err := bcrypt.CompareHashAndPassword([]byte(acc.PasswordHash), []byte(password)); err != nil {
		return "", nil, nil, apperr.Unauthenticated(MsgInvalidCredentials, nil)
	}
	if !acc.IsActive {
		return "", nil, nil, apperr.Deactivated()
	}
	token, claims, err := s.tokens.Issue(acc)
	if err != nil {
		return "", nil, nil, err
	}
	return token, claims, acc, nil
}

// Logout revokes the credential identified by tokenID. The revocation
// outlives expiresAt by the parser leeway.
func (s *Service) Logout(ctx context.Context, tokenID string, expiresAt time.Time) error {
	if s.revocations == nil || tokenID == "" {
		return nil
	}
	return s.revocations.Revoke(ctx, tokenID, expiresAt.Add(s.tokens.Leeway()))
}
