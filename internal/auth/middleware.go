package auth

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/google/uuid"

	"github.com/harapan-ngo/harapan-cms/internal/apperr"
	"github.com/harapan-ngo/harapan-cms/internal/platform/httpx"
	"github.com/harapan-ngo/harapan-cms/internal/users"
)

var errRevoked = errors.New("auth: token revoked")

// AccountFinder loads accounts by primary key.
type AccountFinder interface {
	FindAccount(ctx context.Context, id uuid.UUID) (*users.Account, error)
}

// DecisionRecorder counts pipeline outcomes. Implemented by observability.Metrics.
type DecisionRecorder interface {
	RecordAuthDecision(stage, outcome string)
}

// Authenticator resolves the request credential into an active account.
type Authenticator struct {
	Tokens      *TokenManager
	Accounts    AccountFinder
	Revocations RevocationStore
	Errors      *httpx.ErrorResponder
	Logger      *slog.Logger
	Metrics     DecisionRecorder
}

// Middleware extracts and verifies the credential, loads the account, rejects
// deactivated accounts and stores the Identity in the request context.
func (a *Authenticator) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		identity, err := a.Resolve(r)
		if err != nil {
			a.record(err)
			a.Errors.Respond(w, r, err)
			return
		}
		a.recordOutcome("identity", "allowed")
		next.ServeHTTP(w, r.WithContext(ContextWithIdentity(r.Context(), identity)))
	})
}

// Resolve runs token extraction, verification, account lookup and the
// activation gate for r.
func (a *Authenticator) Resolve(r *http.Request) (*Identity, error) {
	token, ok := ExtractToken(r)
	if !ok {
		return nil, apperr.Unauthenticated(apperr.MsgTokenMissing, nil)
	}

	claims, err := a.Tokens.Parse(token)
	if err != nil {
		return nil, apperr.Unauthenticated(apperr.MsgTokenMissing, err)
	}
	accountID, err := uuid.Parse(claims.Subject)
	if err != nil {
		return nil, apperr.Unauthenticated(apperr.MsgTokenMissing, err)
	}

	if a.Revocations != nil {
		revoked, err := a.Revocations.IsRevoked(r.Context(), claims.ID)
		if err != nil {
			return nil, apperr.Unauthenticated(apperr.MsgUnauthorizedAccess, err)
		}
		if revoked {
			return nil, apperr.Unauthenticated(apperr.MsgTokenMissing, errRevoked)
		}
	}

	acc, err := a.Accounts.FindAccount(r.Context(), accountID)
	if err != nil {
		if errors.Is(err, users.ErrNotFound) {
			return nil, apperr.Unauthenticated(apperr.MsgUserNotFound, err)
		}
		return nil, apperr.Unauthenticated(apperr.MsgUnauthorizedAccess, err)
	}
	if acc == nil {
		return nil, apperr.Unauthenticated(apperr.MsgUserNotFound, nil)
	}

	if !acc.IsActive {
		return nil, apperr.Deactivated()
	}

	identity := &Identity{Account: acc, TokenID: claims.ID}
	if claims.ExpiresAt != nil {
		identity.ExpiresAt = claims.ExpiresAt.Time
	}
	return identity, nil
}

func (a *Authenticator) record(err error) {
	appErr := apperr.From(err)
	if appErr.Kind == apperr.KindDeactivated {
		a.recordOutcome("account_gate", "deactivated")
		return
	}
	if a.Logger != nil {
		a.Logger.Debug("authentication failed", slog.Any("error", err))
	}
	a.recordOutcome("identity", "unauthenticated")
}

func (a *Authenticator) recordOutcome(stage, outcome string) {
	if a.Metrics != nil {
		a.Metrics.RecordAuthDecision(stage, outcome)
	}
}
