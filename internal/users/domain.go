package users

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// ErrNotFound indicates that the requested account does not exist.
var ErrNotFound = errors.New("users: account not found")

// Role is the coarse-grained access level of an account.
type Role string

const (
	RoleAdmin  Role = "admin"
	RoleEditor Role = "editor"
	RoleViewer Role = "viewer"
)

// ParseRole normalises raw into a known Role.
func ParseRole(raw string) (Role, bool) {
	switch Role(strings.ToLower(strings.TrimSpace(raw))) {
	case RoleAdmin:
		return RoleAdmin, true
	case RoleEditor:
		return RoleEditor, true
	case RoleViewer:
		return RoleViewer, true
	}
	return "", false
}

// Permissions is either Unrestricted or Restricted to a set of page grants.
//
// Unrestricted only ever comes from an admin account whose stored permissions
// are NULL. An admin storing `{}` is Restricted with no pages granted, and a
// NULL column on any other role is Restricted as well.
type Permissions struct {
	unrestricted bool
	pages        map[string]bool
}

// Unrestricted returns the super-admin variant.
func Unrestricted() Permissions {
	return Permissions{unrestricted: true}
}

// Restricted returns the variant granting exactly the pages set to true.
func Restricted(pages map[string]bool) Permissions {
	copied := make(map[string]bool, len(pages))
	for k, v := range pages {
		copied[k] = v
	}
	return Permissions{pages: copied}
}

// IsUnrestricted reports the super-admin variant.
func (p Permissions) IsUnrestricted() bool {
	return p.unrestricted
}

// Grants reports whether page is explicitly granted. Always false for the
// unrestricted variant; the bypass is decided by the authorizer.
func (p Permissions) Grants(page string) bool {
	if p.unrestricted {
		return false
	}
	return p.pages[page]
}

// Pages returns a copy of the page grants.
func (p Permissions) Pages() map[string]bool {
	if p.unrestricted {
		return nil
	}
	return Restricted(p.pages).pages
}

// MarshalJSON renders Unrestricted as null and Restricted as the grant map.
func (p Permissions) MarshalJSON() ([]byte, error) {
	if p.unrestricted {
		return []byte("null"), nil
	}
	if p.pages == nil {
		return []byte("{}"), nil
	}
	return json.Marshal(p.pages)
}

// PermissionsFromStored decodes the permissions column for an account of role.
func PermissionsFromStored(role Role, raw []byte) (Permissions, error) {
	if len(raw) == 0 || string(raw) == "null" {
		if role == RoleAdmin {
			return Unrestricted(), nil
		}
		return Restricted(nil), nil
	}
	var pages map[string]bool
	if err := json.Unmarshal(raw, &pages); err != nil {
		return Permissions{}, fmt.Errorf("users: decode permissions: %w", err)
	}
	return Restricted(pages), nil
}

// Account is a principal able to sign in to the dashboard.
type Account struct {
	ID           uuid.UUID   `json:"id"`
	Email        string      `json:"email"`
	Name         string      `json:"name"`
	PasswordHash string      `json:"-"`
	Role         Role        `json:"role"`
	IsActive     bool        `json:"is_active"`
	Permissions  Permissions `json:"permissions"`
	CreatedAt    time.Time   `json:"created_at"`
	UpdatedAt    time.Time   `json:"updated_at"`
}

// IsSuperAdmin reports the admin role combined with unrestricted permissions.
func (a *Account) IsSuperAdmin() bool {
	return a != nil && a.Role == RoleAdmin && a.Permissions.IsUnrestricted()
}
