package users

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPermissionsFromStored(t *testing.T) {
	tests := []struct {
		name         string
		role         Role
		raw          string
		unrestricted bool
		granted      []string
		denied       []string
	}{
		{name: "admin null", role: RoleAdmin, raw: "", unrestricted: true},
		{name: "admin json null", role: RoleAdmin, raw: "null", unrestricted: true},
		{name: "admin empty object", role: RoleAdmin, raw: "{}", denied: []string{"programs", "users"}},
		{name: "admin subset", role: RoleAdmin, raw: `{"users":true}`, granted: []string{"users"}, denied: []string{"programs"}},
		{name: "editor null", role: RoleEditor, raw: "", denied: []string{"programs"}},
		{name: "false grant", role: RoleEditor, raw: `{"programs":false,"latest":true}`, granted: []string{"latest"}, denied: []string{"programs"}},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			perms, err := PermissionsFromStored(tc.role, []byte(tc.raw))
			require.NoError(t, err)
			assert.Equal(t, tc.unrestricted, perms.IsUnrestricted())
			for _, page := range tc.granted {
				assert.True(t, perms.Grants(page), page)
			}
			for _, page := range tc.denied {
				assert.False(t, perms.Grants(page), page)
			}

			acc := &Account{Role: tc.role, Permissions: perms}
			assert.Equal(t, tc.unrestricted, acc.IsSuperAdmin())
		})
	}
}

func TestPermissionsFromStoredRejectsGarbage(t *testing.T) {
	_, err := PermissionsFromStored(RoleEditor, []byte(`["programs"]`))
	assert.Error(t, err)
}

func TestRestrictedCopiesInput(t *testing.T) {
	grants := map[string]bool{"programs": true}
	perms := Restricted(grants)
	grants["users"] = true
	assert.False(t, perms.Grants("users"))

	pages := perms.Pages()
	pages["latest"] = true
	assert.False(t, perms.Grants("latest"))
}

func TestParseRole(t *testing.T) {
	role, ok := ParseRole(" Admin ")
	assert.True(t, ok)
	assert.Equal(t, RoleAdmin, role)

	_, ok = ParseRole("owner")
	assert.False(t, ok)
}

func TestSuperAdminRequiresAdminRole(t *testing.T) {
	var nilAccount *Account
	assert.False(t, nilAccount.IsSuperAdmin())
	assert.False(t, (&Account{Role: RoleEditor, Permissions: Unrestricted()}).IsSuperAdmin())
}
