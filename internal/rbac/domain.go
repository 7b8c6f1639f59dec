package rbac

import (
	"fmt"

	"github.com/harapan-ngo/harapan-cms/internal/apperr"
	"github.com/harapan-ngo/harapan-cms/internal/users"
)

// Dashboard page keys used as the unit of fine-grained permission.
const (
	PagePrograms      = "programs"
	PageLatest        = "latest"
	PageAnnouncements = "announcements"
	PageUsers         = "users"
)

// Pages lists every known page key.
func Pages() []string {
	return []string{PagePrograms, PageLatest, PageAnnouncements, PageUsers}
}

// Decision reasons.
const (
	ReasonSuperAdmin      = "super_admin"
	ReasonGranted         = "granted"
	ReasonRoleMatched     = "role_matched"
	ReasonUnauthenticated = "unauthenticated"
	ReasonNotGranted      = "not_granted"
	ReasonRoleMismatch    = "role_mismatch"
)

// Decision is the outcome of a single authorization check.
type Decision struct {
	Allowed bool
	Reason  string
	Page    string
}

// Err converts a denial into the matching application error.
func (d Decision) Err() error {
	switch {
	case d.Allowed:
		return nil
	case d.Reason == ReasonUnauthenticated:
		return apperr.Unauthenticated(apperr.MsgTokenMissing, nil)
	case d.Page != "":
		return apperr.Forbidden(fmt.Sprintf("Access denied: you do not have permission to access %s", d.Page))
	default:
		return apperr.Forbidden(apperr.MsgInsufficient)
	}
}

// Evaluate applies the page permission rule for acc:
// an admin with unrestricted permissions passes every page, otherwise page
// must be explicitly granted.
func Evaluate(acc *users.Account, page string) Decision {
	switch {
	case acc == nil:
		return Decision{Reason: ReasonUnauthenticated, Page: page}
	case acc.IsSuperAdmin():
		return Decision{Allowed: true, Reason: ReasonSuperAdmin, Page: page}
	case acc.Permissions.Grants(page):
		return Decision{Allowed: true, Reason: ReasonGranted, Page: page}
	default:
		return Decision{Reason: ReasonNotGranted, Page: page}
	}
}

// EvaluateRole checks acc's role against the accepted set.
func EvaluateRole(acc *users.Account, roles []users.Role) Decision {
	if acc == nil {
		return Decision{Reason: ReasonRoleMismatch}
	}
	for _, role := range roles {
		if acc.Role == role {
			return Decision{Allowed: true, Reason: ReasonRoleMatched}
		}
	}
	return Decision{Reason: ReasonRoleMismatch}
}
