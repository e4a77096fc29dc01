package client

import (
	"testing"

	"plafondhub/internal/core/domain"

	"github.com/stretchr/testify/assert"
)

func policyWithRoles(t *testing.T, roles ...string) *Policy {
	t.Helper()
	store := NewMemoryStore()
	if len(roles) > 0 {
		store.Save(testToken(t, roles, 60), Identity{ID: 1, Username: "u", Roles: roles})
	}
	return NewPolicy(NewSession(store))
}

func TestRequireAuth(t *testing.T) {
	denied := policyWithRoles(t).RequireAuth()
	assert.False(t, denied.Allowed)
	assert.Equal(t, "/login", denied.Redirect)

	allowed := policyWithRoles(t, "CUSTOMER").RequireAuth()
	assert.True(t, allowed.Allowed)
}

func TestRequireGuest(t *testing.T) {
	allowed := policyWithRoles(t).RequireGuest()
	assert.True(t, allowed.Allowed)

	// A logged-in marketing user is routed to their own dashboard
	denied := policyWithRoles(t, "MARKETING").RequireGuest()
	assert.False(t, denied.Allowed)
	assert.Equal(t, "/dashboard/review", denied.Redirect)
}

func TestCanEnterRoleMatrix(t *testing.T) {
	tests := []struct {
		name     string
		roles    []string
		required []domain.Role
		allowed  bool
		redirect string
	}{
		{"marketing enters review desk", []string{"MARKETING"}, []domain.Role{domain.RoleMarketing}, true, ""},
		{"customer denied review desk", []string{"CUSTOMER"}, []domain.Role{domain.RoleMarketing}, false, "/dashboard/history"},
		{"back office denied approval desk", []string{"BACK_OFFICE"}, []domain.Role{domain.RoleBranchManager}, false, "/dashboard/disbursement"},
		{"manager denied disbursement desk", []string{"BRANCH_MANAGER"}, []domain.Role{domain.RoleBackOffice}, false, "/dashboard/approval"},
		{"multi-role picks highest priority redirect", []string{"BACK_OFFICE", "MARKETING"}, []domain.Role{domain.RoleBranchManager}, false, "/dashboard/review"},
		{"any of several required", []string{"BACK_OFFICE"}, []domain.Role{domain.RoleMarketing, domain.RoleBackOffice}, true, ""},
		{"empty required set admits any session", []string{"CUSTOMER"}, nil, true, ""},
		{"empty required set still wants a session", nil, nil, false, "/login"},
		{"logged out goes to login", nil, []domain.Role{domain.RoleMarketing}, false, "/login"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := policyWithRoles(t, tt.roles...).CanEnter(tt.required...)
			assert.Equal(t, tt.allowed, d.Allowed)
			assert.Equal(t, tt.redirect, d.Redirect)
		})
	}
}

func TestHomeForFallback(t *testing.T) {
	assert.Equal(t, "/dashboard/history", policyWithRoles(t, "CUSTOMER").HomeFor())
	assert.Equal(t, "/dashboard/history", policyWithRoles(t, "SUPER_ADMIN").HomeFor())
	assert.Equal(t, "/dashboard/approval", policyWithRoles(t, "BRANCH_MANAGER").HomeFor())
}
