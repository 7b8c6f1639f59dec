package auth

import (
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/harapan-ngo/harapan-cms/internal/users"
)

// CookieName is the HTTP-only cookie carrying the session credential.
const CookieName = "jwt"

// Claims represents the JWT claims issued at login.
type Claims struct {
	Role string `json:"role,omitempty"`
	jwt.RegisteredClaims
}

// Identity is the request-scoped result of authentication.
type Identity struct {
	Account   *users.Account
	TokenID   string
	ExpiresAt time.Time
}
